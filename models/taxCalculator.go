package models

import (
	"strings"

	"github.com/URVIL2512/Finance-Suite-sub001/config"
	"github.com/shopspring/decimal"
)

var decimalOneHundred = decimal.NewFromInt(100)

// roundMoney rounds to paise, half away from zero.
func roundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

func percentOf(base decimal.Decimal, pct decimal.Decimal) decimal.Decimal {
	return base.Mul(pct).Div(decimalOneHundred)
}

type TaxInput struct {
	BaseAmount    decimal.Decimal
	GstPercentage decimal.Decimal
	TdsPercentage decimal.Decimal
	TcsPercentage decimal.Decimal
	ClientCountry string
	Currency      string
	PlaceOfSupply string
	ClientState   string
	HomeState     string
}

type TaxBreakdown struct {
	Cgst      decimal.Decimal
	Sgst      decimal.Decimal
	Igst      decimal.Decimal
	TotalGst  decimal.Decimal
	GstType   GstType
	TdsAmount decimal.Decimal
	TcsAmount decimal.Decimal
	IsForeign bool
}

// CalculateTaxes splits GST and computes TDS/TCS. Foreign clients carry no tax.
func CalculateTaxes(in TaxInput) TaxBreakdown {
	if IsForeignClient(in.ClientCountry, in.Currency) {
		return TaxBreakdown{
			Cgst:      decimal.Zero,
			Sgst:      decimal.Zero,
			Igst:      decimal.Zero,
			TotalGst:  decimal.Zero,
			GstType:   GstTypeIgst,
			TdsAmount: decimal.Zero,
			TcsAmount: decimal.Zero,
			IsForeign: true,
		}
	}

	out := TaxBreakdown{
		Cgst:      decimal.Zero,
		Sgst:      decimal.Zero,
		Igst:      decimal.Zero,
		TdsAmount: roundMoney(percentOf(in.BaseAmount, in.TdsPercentage)),
		TcsAmount: roundMoney(percentOf(in.BaseAmount, in.TcsPercentage)),
	}
	// total is rounded once; an odd paisa from the split goes to SGST
	out.TotalGst = roundMoney(percentOf(in.BaseAmount, in.GstPercentage))
	if IsIntraState(in.PlaceOfSupply, in.ClientState, in.HomeState) {
		out.Cgst = roundMoney(out.TotalGst.Div(decimal.NewFromInt(2)))
		out.Sgst = out.TotalGst.Sub(out.Cgst)
		out.GstType = GstTypeCgstSgst
	} else {
		out.Igst = out.TotalGst
		out.GstType = GstTypeIgst
	}
	return out
}

// IsIntraState compares the supply location (place of supply, else client state) with the home state.
// An unknown supply location is treated as intra-state.
func IsIntraState(placeOfSupply string, clientState string, homeState string) bool {
	supply := normalizeState(placeOfSupply)
	if supply == "" {
		supply = normalizeState(clientState)
	}
	if supply == "" {
		return true
	}
	return supply == normalizeState(homeState)
}

func normalizeState(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// IsForeignClient reports whether the client is outside the home country or billed in another currency.
// Blank country and currency mean home.
func IsForeignClient(country string, currency string) bool {
	if c := strings.ToUpper(strings.TrimSpace(currency)); c != "" && c != config.HomeCurrency() {
		return true
	}
	return !isHomeCountry(country)
}

func isHomeCountry(country string) bool {
	c := strings.ToLower(strings.TrimSpace(country))
	if c == "" {
		return true
	}
	home := strings.ToLower(config.HomeCountry())
	if c == home {
		return true
	}
	if home == "india" {
		switch c {
		case "in", "ind", "bharat":
			return true
		}
	}
	return false
}

type InvoiceAmounts struct {
	SubTotal         decimal.Decimal
	InvoiceTotal     decimal.Decimal
	ReceivableAmount decimal.Decimal
}

// ComposeAmounts: invoiceTotal = base + gst; receivable = base + gst - tds - remittance.
// TCS is reported but does not change the receivable.
func ComposeAmounts(base, totalGst, tds, _, remittance decimal.Decimal) InvoiceAmounts {
	total := base.Add(totalGst)
	return InvoiceAmounts{
		SubTotal:         roundMoney(base),
		InvoiceTotal:     roundMoney(total),
		ReceivableAmount: roundMoney(total.Sub(tds).Sub(remittance)),
	}
}
