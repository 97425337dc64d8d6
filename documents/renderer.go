package documents

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Renderer turns a snapshot into an attachment.
type Renderer interface {
	Render(snapshot InvoiceSnapshot) ([]byte, error)
	ContentType() string
}

// XLSXRenderer lays an invoice out on a single worksheet.
type XLSXRenderer struct{}

const invoiceSheet = "Invoice"

func (XLSXRenderer) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (XLSXRenderer) Render(s InvoiceSnapshot) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", invoiceSheet); err != nil {
		return nil, err
	}

	header := [][2]interface{}{
		{"Invoice No", s.InvoiceNumber},
		{"Invoice Date", s.InvoiceDate.Format("02-Jan-2006")},
		{"Due Date", s.DueDate.Format("02-Jan-2006")},
		{"Bill To", s.CustomerName},
		{"Currency", s.Currency},
		{"Status", s.Status},
	}
	row := 1
	for _, kv := range header {
		if err := setRow(f, row, kv[0], kv[1]); err != nil {
			return nil, err
		}
		row++
	}

	row++
	if err := setRow(f, row, "Description", "Quantity", "Rate", "Amount"); err != nil {
		return nil, err
	}
	row++
	for _, item := range s.Items {
		if err := setRow(f, row, item.Description, num(item.Quantity), num(item.Rate), num(item.Amount)); err != nil {
			return nil, err
		}
		row++
	}

	row++
	totals := []struct {
		label string
		value decimal.Decimal
		skip  bool
	}{
		{"Sub Total", s.BaseAmount, false},
		{"CGST", s.Cgst, s.GstType != "CGST_SGST"},
		{"SGST", s.Sgst, s.GstType != "CGST_SGST"},
		{"IGST", s.Igst, s.GstType == "CGST_SGST"},
		{"Invoice Total", s.InvoiceTotal, false},
		{"TDS", s.TdsAmount, s.TdsAmount.IsZero()},
		{"TCS", s.TcsAmount, s.TcsAmount.IsZero()},
		{"Remittance Charges", s.Remittance, s.Remittance.IsZero()},
		{"Receivable", s.ReceivableAmount, false},
		{"Received", s.ReceivedAmount, false},
	}
	for _, t := range totals {
		if t.skip {
			continue
		}
		if err := setRow(f, row, "", "", t.label, num(t.value)); err != nil {
			return nil, err
		}
		row++
	}
	if s.Currency != "" && s.Currency != "INR" {
		if err := setRow(f, row, "", "", fmt.Sprintf("INR equivalent @ %s", s.ExchangeRate.String()), num(s.InrEquivalent)); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, row int, values ...interface{}) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(invoiceSheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

func num(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
