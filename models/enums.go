package models

import (
	"encoding/json"
	"errors"
	"strings"
)

type InvoiceStatus string

const (
	InvoiceStatusUnpaid  InvoiceStatus = "Unpaid"
	InvoiceStatusPartial InvoiceStatus = "Partial"
	InvoiceStatusPaid    InvoiceStatus = "Paid"
	InvoiceStatusVoid    InvoiceStatus = "Void"
)

var invoiceStatusAliases = map[string]InvoiceStatus{
	"unpaid":         InvoiceStatusUnpaid,
	"pending":        InvoiceStatusUnpaid,
	"due":            InvoiceStatusUnpaid,
	"partial":        InvoiceStatusPartial,
	"partially paid": InvoiceStatusPartial,
	"partial paid":   InvoiceStatusPartial,
	"paid":           InvoiceStatusPaid,
	"received":       InvoiceStatusPaid,
	"void":           InvoiceStatusVoid,
	"cancelled":      InvoiceStatusVoid,
	"canceled":       InvoiceStatusVoid,
}

// ParseInvoiceStatus accepts the canonical names and common spreadsheet spellings.
func ParseInvoiceStatus(s string) (InvoiceStatus, error) {
	key := strings.Join(strings.Fields(strings.ToLower(s)), " ")
	status, ok := invoiceStatusAliases[key]
	if !ok {
		return "", errors.New("invalid invoice status")
	}
	return status, nil
}

func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusUnpaid, InvoiceStatusPartial, InvoiceStatusPaid, InvoiceStatusVoid:
		return true
	}
	return false
}

func (s *InvoiceStatus) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return errors.New("invoice status must be string")
	}
	if str == "" {
		*s = ""
		return nil
	}
	status, err := ParseInvoiceStatus(str)
	if err != nil {
		return err
	}
	*s = status
	return nil
}

type GstType string

const (
	GstTypeCgstSgst GstType = "CGST_SGST"
	GstTypeIgst     GstType = "IGST"
)

type PaymentMode string

const (
	PaymentModeBankTransfer PaymentMode = "Bank Transfer"
	PaymentModeUpi          PaymentMode = "UPI"
	PaymentModeCheque       PaymentMode = "Cheque"
	PaymentModeCash         PaymentMode = "Cash"
	PaymentModeCard         PaymentMode = "Card"
	PaymentModeOther        PaymentMode = "Other"
)

func (m PaymentMode) IsValid() bool {
	switch m {
	case PaymentModeBankTransfer, PaymentModeUpi, PaymentModeCheque, PaymentModeCash, PaymentModeCard, PaymentModeOther:
		return true
	}
	return false
}

type ServiceCategory string

const (
	ServiceCategoryWebsiteDevelopment  ServiceCategory = "Website Development"
	ServiceCategoryMobileApp           ServiceCategory = "Mobile App Development"
	ServiceCategorySeo                 ServiceCategory = "SEO"
	ServiceCategoryDigitalMarketing    ServiceCategory = "Digital Marketing"
	ServiceCategoryGraphicDesign       ServiceCategory = "Graphic Design"
	ServiceCategoryContentWriting      ServiceCategory = "Content Writing"
	ServiceCategoryHosting             ServiceCategory = "Hosting"
	ServiceCategoryMaintenance         ServiceCategory = "Maintenance & Support"
	ServiceCategorySoftwareDevelopment ServiceCategory = "Software Development"
	ServiceCategoryConsulting          ServiceCategory = "Consulting"
	ServiceCategoryOther               ServiceCategory = "Other"
)

const (
	StatusReasonCreated       = "created"
	StatusReasonImported      = "imported"
	StatusReasonPayment       = "payment recorded"
	StatusReasonEdited        = "edited"
	StatusReasonAmountsEdited = "amounts changed on a paid invoice"
	StatusReasonVoided        = "voided"
	StatusReasonConsistency   = "status corrected after save"
)
