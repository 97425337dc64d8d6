package models

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/URVIL2512/Finance-Suite-sub001/config"
	"github.com/URVIL2512/Finance-Suite-sub001/currency"
	"github.com/URVIL2512/Finance-Suite-sub001/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

// ImportRow is one spreadsheet row keyed by its original header text.
type ImportRow struct {
	RowNumber int
	Values    map[string]string
}

type ImportReport struct {
	BatchId             string   `json:"batch_id"`
	TotalRows           int      `json:"total_rows"`
	Created             int      `json:"created"`
	Skipped             int      `json:"skipped"`
	Failed              int      `json:"failed"`
	CustomersCreated    int      `json:"customers_created"`
	ServiceItemsCreated int      `json:"service_items_created"`
	InvoiceNumbers      []string `json:"invoice_numbers"`
	Messages            []string `json:"messages"`
}

func (r *ImportReport) addMessage(row int, format string, args ...any) {
	r.Messages = append(r.Messages, fmt.Sprintf("Row %d: ", row)+fmt.Sprintf(format, args...))
}

// parsedImportRow is a row that passed field-level checks and is ready to be created.
type parsedImportRow struct {
	row   int
	input *NewInvoice
}

// importDedupeKey identifies an invoice by day, client, service, engagement, period and base amount.
func importDedupeKey(date time.Time, client, service, engagement string, month, year int, base decimal.Decimal) string {
	return strings.Join([]string{
		dateOnly(date).Format("2006-01-02"),
		collapseSpaces(client),
		collapseSpaces(service),
		collapseSpaces(engagement),
		fmt.Sprint(month),
		fmt.Sprint(year),
		roundMoney(base).StringFixed(2),
	}, "|")
}

// ImportInvoicesFromFile reads an .xlsx or .csv file and imports its rows.
func ImportInvoicesFromFile(ctx context.Context, fileName string, r io.Reader) (*ImportReport, error) {
	rows, err := ReadImportRows(fileName, r)
	if err != nil {
		return nil, err
	}
	return ImportInvoices(ctx, rows)
}

// ImportInvoices creates invoices from spreadsheet rows. Bad rows are reported and skipped;
// duplicates of existing invoices are skipped. Each created row commits on its own.
func ImportInvoices(ctx context.Context, rows []ImportRow) (*ImportReport, error) {
	businessId, err := utils.RequireBusinessId(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, utils.NewValidationError("the file has no data rows")
	}
	if limit := config.MaxImportRows(); len(rows) > limit {
		return nil, utils.NewValidationError("the file has %d rows; at most %d can be imported at once", len(rows), limit)
	}

	ctx, span := tracer.Start(ctx, "ImportInvoices")
	defer span.End()

	report := &ImportReport{BatchId: uuid.NewString(), TotalRows: len(rows)}
	span.SetAttributes(
		attribute.String("business_id", businessId),
		attribute.String("batch_id", report.BatchId),
		attribute.Int("rows", len(rows)),
	)
	logger := config.GetLogger()

	release, err := utils.BusinessLock(ctx, businessId, "invoice_import", "Invoice", "ImportInvoices")
	if err != nil {
		return nil, err
	}
	defer release()

	fields := matchHeaders(collectHeaders(rows))
	if _, ok := fields[fieldBaseAmount]; !ok {
		return nil, utils.NewValidationError("no base amount column found")
	}
	if _, ok := fields[fieldClientName]; !ok {
		return nil, utils.NewValidationError("no client column found")
	}
	if _, ok := fields[fieldService]; !ok {
		return nil, utils.NewValidationError("no service column found")
	}

	var parsed []parsedImportRow
	for _, row := range rows {
		input, err := parseImportRow(row, fields)
		if err != nil {
			report.Failed++
			report.addMessage(row.RowNumber, "%s", err.Error())
			continue
		}
		input.importBatchId = report.BatchId
		input.statusReason = StatusReasonImported
		input.paidInFull = true
		parsed = append(parsed, parsedImportRow{row: row.RowNumber, input: input})
	}

	db := config.GetDB().WithContext(ctx)
	if err := prepareImportMasters(db, businessId, parsed, report); err != nil {
		config.LogError(logger, "Invoice", "ImportInvoices", "creating placeholder masters", report.BatchId, err)
		return nil, err
	}
	index, err := loadImportIndex(db, businessId, parsed)
	if err != nil {
		return nil, err
	}

	numbers := newBatchNumbering(businessId)
	for _, p := range parsed {
		in := p.input
		key := importDedupeKey(in.InvoiceDate, in.ClientName, in.ServiceDescription, in.EngagementType, in.PeriodMonth, in.PeriodYear, in.BaseAmount)
		if number, ok := index.keys[key]; ok {
			report.Skipped++
			report.addMessage(p.row, "duplicate of invoice %s", number)
			continue
		}
		if n := strings.TrimSpace(in.InvoiceNumber); n != "" && index.numbers[n] {
			report.Skipped++
			report.addMessage(p.row, "invoice number %s already exists", n)
			continue
		}

		inv, err := importOneRow(ctx, db, businessId, in, numbers)
		if err != nil {
			if utils.IsConflictError(err) {
				report.Skipped++
			} else {
				report.Failed++
			}
			if !utils.IsValidationError(err) && !utils.IsConflictError(err) {
				config.LogError(logger, "Invoice", "ImportInvoices", fmt.Sprintf("row %d", p.row), report.BatchId, err)
			}
			report.addMessage(p.row, "%s", err.Error())
			continue
		}
		index.keys[key] = inv.InvoiceNumber
		index.numbers[inv.InvoiceNumber] = true
		report.Created++
		report.InvoiceNumbers = append(report.InvoiceNumbers, inv.InvoiceNumber)
		enqueueDocument(ctx, inv, "invoice.imported")
	}

	span.SetAttributes(attribute.Int("created", report.Created), attribute.Int("skipped", report.Skipped), attribute.Int("failed", report.Failed))
	return report, nil
}

func importOneRow(ctx context.Context, db *gorm.DB, businessId string, input *NewInvoice, numbers *batchNumbering) (inv *Invoice, err error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	restore := numbers.checkpoint(input.InvoiceDate.Year())
	tx := db.Begin()
	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback().Error
			panic(r)
		}
	}()
	defer func() {
		if err != nil {
			_ = tx.Rollback().Error
			restore()
		}
	}()

	inv, err = createInvoiceTx(ctx, tx, businessId, input, numbers)
	if err != nil {
		return nil, err
	}
	if err = tx.Commit().Error; err != nil {
		return nil, err
	}
	reconcileInvoiceState(ctx, inv)
	return inv, nil
}

func collectHeaders(rows []ImportRow) []string {
	seen := make(map[string]bool)
	var headers []string
	for _, row := range rows {
		for h := range row.Values {
			if !seen[h] {
				seen[h] = true
				headers = append(headers, h)
			}
		}
	}
	sort.Strings(headers)
	return headers
}

// parseImportRow turns one row into invoice input. Amount, client and service are mandatory.
func parseImportRow(row ImportRow, fields map[importField]string) (*NewInvoice, error) {
	cell := func(f importField) string {
		h, ok := fields[f]
		if !ok {
			return ""
		}
		return strings.TrimSpace(row.Values[h])
	}
	has := func(f importField) bool {
		_, ok := fields[f]
		return ok
	}

	input := &NewInvoice{
		ClientName:         collapseSpaces(cell(fieldClientName)),
		ClientEmail:        cell(fieldClientEmail),
		ClientCountry:      cell(fieldClientCountry),
		ClientState:        cell(fieldClientState),
		PlaceOfSupply:      cell(fieldPlaceOfSupply),
		ServiceDescription: collapseSpaces(cell(fieldService)),
		EngagementType:     collapseSpaces(cell(fieldEngagementType)),
		InvoiceNumber:      cell(fieldInvoiceNumber),
		Notes:              cell(fieldNotes),
	}

	base, err := utils.ParseDecimal(cell(fieldBaseAmount))
	if err != nil || !base.IsPositive() {
		return nil, utils.NewValidationError("base amount must be greater than 0")
	}
	input.BaseAmount = roundMoney(base)
	if input.ClientName == "" {
		return nil, utils.NewValidationError("client name is blank")
	}
	if input.ServiceDescription == "" {
		return nil, utils.NewValidationError("service is blank")
	}
	if input.ClientEmail != "" && !utils.IsValidEmail(input.ClientEmail) {
		input.ClientEmail = ""
	}

	date, ok := importRowDate(cell)
	if !ok {
		return nil, utils.NewValidationError("invoice date is missing or unreadable")
	}
	input.InvoiceDate = date
	if v := cell(fieldDueDate); v != "" {
		due, ok := parseImportDate(v)
		if !ok {
			return nil, utils.NewValidationError("due date %q is unreadable", v)
		}
		if !due.Before(date) {
			input.DueDate = &due
		}
	}

	input.PeriodMonth = int(date.Month())
	if v := cell(fieldPeriodMonth); v != "" {
		m, ok := parseMonth(v)
		if !ok {
			return nil, utils.NewValidationError("period month %q is unreadable", v)
		}
		input.PeriodMonth = int(m)
	}
	input.PeriodYear = date.Year()
	if v := cell(fieldPeriodYear); v != "" {
		y, ok := parseYear(v)
		if !ok {
			return nil, utils.NewValidationError("period year %q is unreadable", v)
		}
		input.PeriodYear = y
	}

	input.Currency = currency.Normalize(cell(fieldCurrency))
	if input.Currency == "" {
		input.Currency = config.HomeCurrency()
	}
	if v := cell(fieldExchangeRate); v != "" {
		rate, err := utils.ParseDecimal(v)
		if err != nil || rate.IsNegative() {
			return nil, utils.NewValidationError("exchange rate %q is invalid", v)
		}
		input.ExchangeRate = rate
	}

	if has(fieldGstPercentage) {
		gst, err := parsePercentCell(cell(fieldGstPercentage), true)
		if err != nil {
			return nil, err
		}
		input.GstPercentage = gst
	} else {
		input.GstPercentage = config.DefaultGstPercentage()
	}
	if input.TdsPercentage, err = parsePercentCell(cell(fieldTdsPercentage), false); err != nil {
		return nil, err
	}
	if input.TcsPercentage, err = parsePercentCell(cell(fieldTcsPercentage), false); err != nil {
		return nil, err
	}
	if IsForeignClient(input.ClientCountry, input.Currency) {
		input.GstPercentage = decimal.Zero
		input.TdsPercentage = decimal.Zero
		input.TcsPercentage = decimal.Zero
	}
	if v := cell(fieldRemittance); v != "" {
		rem, err := utils.ParseDecimal(v)
		if err != nil || rem.IsNegative() {
			return nil, utils.NewValidationError("remittance charges %q are invalid", v)
		}
		input.RemittanceCharges = roundMoney(rem)
	}

	if v := cell(fieldStatus); v != "" {
		status, err := ParseInvoiceStatus(v)
		if err != nil {
			return nil, utils.NewValidationError("status %q is not recognised", v)
		}
		input.Status = &status
	}
	if v := cell(fieldReceivedAmount); v != "" {
		received, err := utils.ParseDecimal(v)
		if err != nil || received.IsNegative() {
			return nil, utils.NewValidationError("received amount %q is invalid", v)
		}
		received = roundMoney(received)
		input.ReceivedAmount = &received
	}
	return input, nil
}

func importRowDate(cell func(importField) string) (time.Time, bool) {
	if d, m, y := cell(fieldDay), cell(fieldMonth), cell(fieldYear); d != "" && m != "" && y != "" {
		if t, ok := parseDateTriple(d, m, y); ok {
			return t, true
		}
	}
	return parseImportDate(cell(fieldInvoiceDate))
}

// parsePercentCell reads a percentage. A blank cell is 0. With fractions set, values below 1 are
// read as Excel percentages (0.18 means 18%).
func parsePercentCell(value string, fractions bool) (decimal.Decimal, error) {
	value = strings.TrimSuffix(strings.TrimSpace(value), "%")
	if value == "" {
		return decimal.Zero, nil
	}
	pct, err := utils.ParseDecimal(value)
	if err != nil {
		return decimal.Zero, utils.NewValidationError("percentage %q is invalid", value)
	}
	if fractions && pct.IsPositive() && pct.LessThan(decimal.NewFromInt(1)) {
		pct = pct.Mul(decimalOneHundred)
	}
	if err := validatePercentage("percentage", pct); err != nil {
		return decimal.Zero, err
	}
	return pct, nil
}

// prepareImportMasters creates placeholder customers and service items for every name the
// rows reference, and rewrites row client names to the stored spelling.
func prepareImportMasters(db *gorm.DB, businessId string, parsed []parsedImportRow, report *ImportReport) error {
	if len(parsed) == 0 {
		return nil
	}
	return db.Transaction(func(tx *gorm.DB) error {
		customers := make(map[string]string)
		services := make(map[string]bool)
		for _, p := range parsed {
			in := p.input
			ck := strings.ToLower(in.ClientName)
			if name, ok := customers[ck]; ok {
				in.ClientName = name
			} else {
				customer, created, err := findOrCreateCustomer(tx, businessId, Customer{
					Name:    in.ClientName,
					Email:   in.ClientEmail,
					Country: in.ClientCountry,
					State:   in.ClientState,
				})
				if err != nil {
					return err
				}
				if created {
					report.CustomersCreated++
				}
				customers[ck] = customer.Name
				in.ClientName = customer.Name
			}

			sk := strings.ToLower(in.ServiceDescription)
			if !services[sk] {
				_, created, err := findOrCreateServiceItem(tx, businessId, in.ServiceDescription)
				if err != nil {
					return err
				}
				if created {
					report.ServiceItemsCreated++
				}
				services[sk] = true
			}
		}
		return nil
	})
}

type importIndex struct {
	keys    map[string]string
	numbers map[string]bool
}

// loadImportIndex loads dedupe keys for stored invoices inside the batch's date range and the
// stored invoice numbers the rows name explicitly.
func loadImportIndex(db *gorm.DB, businessId string, parsed []parsedImportRow) (*importIndex, error) {
	index := &importIndex{keys: make(map[string]string), numbers: make(map[string]bool)}
	if len(parsed) == 0 {
		return index, nil
	}
	from, to := parsed[0].input.InvoiceDate, parsed[0].input.InvoiceDate
	var wanted []string
	for _, p := range parsed {
		from = minTime(from, p.input.InvoiceDate)
		to = maxTime(to, p.input.InvoiceDate)
		if n := strings.TrimSpace(p.input.InvoiceNumber); n != "" {
			wanted = append(wanted, n)
		}
	}

	var existing []Invoice
	err := db.Model(&Invoice{}).
		Select("invoice_number", "invoice_date", "client_name", "service_description", "engagement_type", "period_month", "period_year", "base_amount").
		Where("business_id = ? AND invoice_date >= ? AND invoice_date < ?", businessId, dateOnly(from), dateOnly(to).AddDate(0, 0, 1)).
		Find(&existing).Error
	if err != nil {
		return nil, err
	}
	for _, inv := range existing {
		key := importDedupeKey(inv.InvoiceDate, inv.ClientName, inv.ServiceDescription, inv.EngagementType, inv.PeriodMonth, inv.PeriodYear, inv.BaseAmount)
		index.keys[key] = inv.InvoiceNumber
	}

	if len(wanted) > 0 {
		var numbers []string
		err := db.Model(&Invoice{}).Where("business_id = ? AND invoice_number IN ?", businessId, utils.UniqueSlice(wanted)).
			Pluck("invoice_number", &numbers).Error
		if err != nil {
			return nil, err
		}
		for _, n := range numbers {
			index.numbers[n] = true
		}
	}
	return index, nil
}

func minTime(a, b time.Time) time.Time {
	if b.Before(a) {
		return b
	}
	return a
}

func maxTime(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}
