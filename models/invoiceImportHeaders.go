package models

import (
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/xuri/excelize/v2"
)

type importField string

const (
	fieldInvoiceNumber  importField = "invoice_number"
	fieldInvoiceDate    importField = "invoice_date"
	fieldDay            importField = "day"
	fieldMonth          importField = "month"
	fieldYear           importField = "year"
	fieldDueDate        importField = "due_date"
	fieldClientName     importField = "client_name"
	fieldClientEmail    importField = "client_email"
	fieldClientCountry  importField = "client_country"
	fieldClientState    importField = "client_state"
	fieldPlaceOfSupply  importField = "place_of_supply"
	fieldService        importField = "service"
	fieldEngagementType importField = "engagement_type"
	fieldPeriodMonth    importField = "period_month"
	fieldPeriodYear     importField = "period_year"
	fieldCurrency       importField = "currency"
	fieldExchangeRate   importField = "exchange_rate"
	fieldBaseAmount     importField = "base_amount"
	fieldGstPercentage  importField = "gst_percentage"
	fieldTdsPercentage  importField = "tds_percentage"
	fieldTcsPercentage  importField = "tcs_percentage"
	fieldRemittance     importField = "remittance_charges"
	fieldStatus         importField = "status"
	fieldReceivedAmount importField = "received_amount"
	fieldNotes          importField = "notes"
)

type fieldAliases struct {
	field   importField
	aliases []string
	// headers containing any of these never match the field by substring
	exclude []string
}

// importFieldAliases is ordered: earlier fields win the substring pass.
var importFieldAliases = []fieldAliases{
	{field: fieldInvoiceNumber, aliases: []string{"invoice number", "invoice no", "invoice #", "inv no", "invoice num", "bill no"},
		exclude: []string{"date", "total", "amount", "currency", "status", "type"}},
	{field: fieldDueDate, aliases: []string{"due date", "payment due", "due on"}},
	{field: fieldPeriodMonth, aliases: []string{"period month", "service month", "billing month", "for month"}},
	{field: fieldPeriodYear, aliases: []string{"period year", "service year", "billing year", "for year"}},
	{field: fieldInvoiceDate, aliases: []string{"invoice date", "date", "bill date", "inv date"}, exclude: []string{"due"}},
	{field: fieldDay, aliases: []string{"day"}},
	{field: fieldMonth, aliases: []string{"month", "month name"}},
	{field: fieldYear, aliases: []string{"year"}},
	{field: fieldClientEmail, aliases: []string{"client email", "customer email", "email", "email id"}},
	{field: fieldClientCountry, aliases: []string{"country", "client country", "customer country"}},
	{field: fieldPlaceOfSupply, aliases: []string{"place of supply", "pos", "supply state"}},
	{field: fieldClientState, aliases: []string{"state", "client state", "customer state"}, exclude: []string{"supply"}},
	{field: fieldClientName, aliases: []string{"client name", "client", "customer name", "customer", "party name", "company name", "company"}},
	{field: fieldService, aliases: []string{"service", "service description", "service name", "services", "description", "particulars", "item"}},
	{field: fieldEngagementType, aliases: []string{"engagement type", "engagement", "project type", "billing type"}},
	{field: fieldCurrency, aliases: []string{"currency", "invoice currency", "curr"}},
	{field: fieldExchangeRate, aliases: []string{"exchange rate", "conversion rate", "fx rate", "ex rate"}},
	{field: fieldGstPercentage, aliases: []string{"gst %", "gst percentage", "gst rate", "gst"}, exclude: []string{"amount", "amt", "total"}},
	{field: fieldTdsPercentage, aliases: []string{"tds %", "tds percentage", "tds rate", "tds"}, exclude: []string{"amount", "amt", "total"}},
	{field: fieldTcsPercentage, aliases: []string{"tcs %", "tcs percentage", "tcs rate", "tcs"}, exclude: []string{"amount", "amt", "total"}},
	{field: fieldRemittance, aliases: []string{"remittance charges", "remittance", "bank charges"}},
	{field: fieldStatus, aliases: []string{"status", "payment status", "invoice status"}},
	{field: fieldReceivedAmount, aliases: []string{"received amount", "amount received", "received", "paid amount", "amount paid"}},
	{field: fieldBaseAmount, aliases: []string{"base amount", "amount", "taxable amount", "taxable value", "net amount", "base"},
		exclude: []string{"total", "gst", "tds", "tcs", "received", "paid", "receivable", "equivalent"}},
	{field: fieldNotes, aliases: []string{"notes", "remarks", "comments"}},
}

// normalizeHeader lowercases and drops everything but letters and digits, so
// "Invoice_No.", "invoice no" and "INVOICE NO" compare equal.
func normalizeHeader(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// matchHeaders maps each field to one original header. Exact matches are taken for every field
// first; the remaining fields then match by substring on aliases of four or more characters.
// A header is used at most once.
func matchHeaders(headers []string) map[importField]string {
	sorted := append([]string(nil), headers...)
	sort.Strings(sorted)
	normalized := make(map[string]string, len(sorted))
	for _, h := range sorted {
		if n := normalizeHeader(h); n != "" {
			normalized[h] = n
		}
	}

	used := make(map[string]bool)
	out := make(map[importField]string)
	for _, fa := range importFieldAliases {
		for _, alias := range fa.aliases {
			a := normalizeHeader(alias)
			if h, ok := findHeader(sorted, normalized, used, func(n string) bool { return n == a }); ok {
				out[fa.field] = h
				used[h] = true
				break
			}
		}
	}
	for _, fa := range importFieldAliases {
		if _, ok := out[fa.field]; ok {
			continue
		}
		for _, alias := range fa.aliases {
			a := normalizeHeader(alias)
			if len(a) < 4 {
				continue
			}
			h, ok := findHeader(sorted, normalized, used, func(n string) bool {
				return strings.Contains(n, a) && !containsAny(n, fa.exclude)
			})
			if ok {
				out[fa.field] = h
				used[h] = true
				break
			}
		}
	}
	return out
}

func findHeader(sorted []string, normalized map[string]string, used map[string]bool, match func(string) bool) (string, bool) {
	for _, h := range sorted {
		n, ok := normalized[h]
		if !ok || used[h] {
			continue
		}
		if match(n) {
			return h, true
		}
	}
	return "", false
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, normalizeHeader(w)) {
			return true
		}
	}
	return false
}

var importDateLayouts = []string{"2006-01-02", "2/1/2006", "2-Jan-2006"}

// parseImportDate reads one date cell: an Excel serial number, then ISO, dd/mm/yyyy and dd-Mon-yyyy.
func parseImportDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	if serial, err := strconv.ParseFloat(value, 64); err == nil {
		if serial < 1 || serial > 2958465 {
			return time.Time{}, false
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, false
		}
		return dateOnly(t), true
	}
	// ISO timestamps from CSV exports carry a time part
	if len(value) > 10 && value[4] == '-' && value[7] == '-' {
		value = value[:10]
	}
	for _, layout := range importDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return dateOnly(t), true
		}
	}
	return time.Time{}, false
}

// parseMonth accepts 1-12 or an English month name or abbreviation.
func parseMonth(value string) (time.Month, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if n, err := strconv.ParseFloat(value, 64); err == nil {
		if n >= 1 && n <= 12 && n == float64(int(n)) {
			return time.Month(int(n)), true
		}
		return 0, false
	}
	v := strings.ToLower(value)
	for m := time.January; m <= time.December; m++ {
		name := strings.ToLower(m.String())
		if v == name || (len(v) >= 3 && strings.HasPrefix(name, v)) {
			return m, true
		}
	}
	return 0, false
}

// parseYear accepts four digits or two digits meaning 20xx.
func parseYear(value string) (int, bool) {
	n, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || n != float64(int(n)) {
		return 0, false
	}
	y := int(n)
	if y >= 0 && y < 100 {
		y += 2000
	}
	if y < 1900 || y > 2200 {
		return 0, false
	}
	return y, true
}

func parseDateTriple(day, month, year string) (time.Time, bool) {
	d, err := strconv.ParseFloat(strings.TrimSpace(day), 64)
	if err != nil || d < 1 || d > 31 || d != float64(int(d)) {
		return time.Time{}, false
	}
	m, ok := parseMonth(month)
	if !ok {
		return time.Time{}, false
	}
	y, ok := parseYear(year)
	if !ok {
		return time.Time{}, false
	}
	t := time.Date(y, m, int(d), 0, 0, 0, 0, time.UTC)
	// reject 31 Feb and friends instead of letting them roll over
	if t.Day() != int(d) {
		return time.Time{}, false
	}
	return t, true
}
