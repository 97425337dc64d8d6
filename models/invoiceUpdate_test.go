package models

import (
	"strings"
	"testing"
	"time"

	"github.com/URVIL2512/Finance-Suite-sub001/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func createPaidInvoice(t *testing.T, client string, amount string) *Invoice {
	t.Helper()
	input := newDomesticInvoice(client, amount, date(2024, time.April, 1))
	input.Status = statusPtr(InvoiceStatusPaid)
	input.ReceivedAmount = decPtr(amount)
	inv, err := CreateInvoice(testContext(), input)
	require.NoError(t, err)
	require.NotNil(t, inv.RevenueId)
	return inv
}

func TestUpdateInvoice_AmountChangeDemotesPaidInvoice(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := testContext()
	inv := createPaidInvoice(t, "Acme", "5000")
	revenueId := *inv.RevenueId

	got, err := UpdateInvoice(ctx, inv.ID, &InvoiceUpdate{BaseAmount: decPtr("6000")})
	require.NoError(t, err)
	assert.Equal(t, InvoiceStatusUnpaid, got.Status)
	assertDecimal(t, "0", got.ReceivedAmount, "received")
	assertDecimal(t, "6000", got.ReceivableAmount, "receivable")

	stored, err := GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assertDecimal(t, "6000", stored.Items[0].Amount, "item")

	history, err := GetInvoiceStatusHistory(ctx, inv.ID)
	require.NoError(t, err)
	last := history[len(history)-1]
	assert.Equal(t, InvoiceStatusPaid, last.FromStatus)
	assert.Equal(t, InvoiceStatusUnpaid, last.ToStatus)
	assert.Equal(t, StatusReasonAmountsEdited, last.Reason)

	// the mirrored entry keeps the last paid figures until the invoice is paid again
	rev, err := GetRevenue(ctx, revenueId)
	require.NoError(t, err)
	assertDecimal(t, "5000", rev.ReceivableAmount, "revenue before repayment")

	got, err = UpdateInvoice(ctx, inv.ID, &InvoiceUpdate{Status: statusPtr(InvoiceStatusPaid), ReceivedAmount: decPtr("6000")})
	require.NoError(t, err)
	assert.Equal(t, InvoiceStatusPaid, got.Status)
	require.NotNil(t, got.RevenueId)
	assert.Equal(t, revenueId, *got.RevenueId)

	rev, err = GetRevenue(ctx, revenueId)
	require.NoError(t, err)
	assertDecimal(t, "6000", rev.ReceivableAmount, "revenue after repayment")
	assert.Equal(t, int64(1), countRows[Revenue](t, db, ""))
}

func TestUpdateInvoice_PaidInvoiceKeepsItsStatusWithoutAmountChange(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := testContext()
	inv := createPaidInvoice(t, "Acme", "5000")

	got, err := UpdateInvoice(ctx, inv.ID, &InvoiceUpdate{Notes: strPtr("thanks for the prompt payment")})
	require.NoError(t, err)
	assert.Equal(t, InvoiceStatusPaid, got.Status)
	assert.Equal(t, int64(1), countRows[Revenue](t, db, ""))

	_, err = UpdateInvoice(ctx, inv.ID, &InvoiceUpdate{Status: statusPtr(InvoiceStatusUnpaid)})
	require.Error(t, err)
	assert.True(t, utils.IsValidationError(err))

	stored, err := GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, InvoiceStatusPaid, stored.Status)
	assert.Equal(t, "thanks for the prompt payment", stored.Notes)
}

func TestUpdateInvoice_ExchangeRateEditKeepsPaidStatus(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := testContext()
	inv, err := CreateInvoice(ctx, &NewInvoice{
		ClientName:         "Globex Inc",
		ClientCountry:      "USA",
		Currency:           "USD",
		ExchangeRate:       dec("83"),
		ServiceDescription: "Android app",
		InvoiceDate:        date(2024, time.May, 2),
		BaseAmount:         dec("1000"),
		Status:             statusPtr(InvoiceStatusPaid),
		ReceivedAmount:     decPtr("1000"),
	})
	require.NoError(t, err)
	require.Equal(t, InvoiceStatusPaid, inv.Status)
	require.NotNil(t, inv.RevenueId)
	revenueId := *inv.RevenueId

	got, err := UpdateInvoice(ctx, inv.ID, &InvoiceUpdate{ExchangeRate: decPtr("84")})
	require.NoError(t, err)
	assert.Equal(t, InvoiceStatusPaid, got.Status)
	assertDecimal(t, "1000", got.ReceivedAmount, "received")
	assertDecimal(t, "1000", got.ReceivableAmount, "receivable")
	assertDecimal(t, "84000", got.InrEquivalent, "inr equivalent")

	rev, err := GetRevenue(ctx, revenueId)
	require.NoError(t, err)
	assertDecimal(t, "84000", rev.ReceivableAmount, "revenue follows the new rate")
	assert.Equal(t, int64(1), countRows[Revenue](t, db, ""))

	history, err := GetInvoiceStatusHistory(ctx, inv.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestUpdateInvoice_TaxPercentageEditDemotesPaidInvoice(t *testing.T) {
	newTestDB(t)
	ctx := testContext()
	inv := createPaidInvoice(t, "Acme", "5000")

	got, err := UpdateInvoice(ctx, inv.ID, &InvoiceUpdate{TcsPercentage: decPtr("1")})
	require.NoError(t, err)
	assert.Equal(t, InvoiceStatusUnpaid, got.Status)
	assertDecimal(t, "0", got.ReceivedAmount, "received")
	assertDecimal(t, "5000", got.ReceivableAmount, "tcs leaves the receivable alone")
}

func TestUpdateInvoice_RecomputesTaxesOnPlaceOfSupply(t *testing.T) {
	newTestDB(t)
	ctx := testContext()
	input := newDomesticInvoice("Acme", "10000", date(2024, time.April, 1))
	input.GstPercentage = dec("18")
	inv, err := CreateInvoice(ctx, input)
	require.NoError(t, err)
	require.Equal(t, GstTypeCgstSgst, inv.GstType)

	got, err := UpdateInvoice(ctx, inv.ID, &InvoiceUpdate{PlaceOfSupply: strPtr("Maharashtra")})
	require.NoError(t, err)
	assert.Equal(t, GstTypeIgst, got.GstType)
	assertDecimal(t, "0", got.Cgst, "cgst")
	assertDecimal(t, "1800", got.Igst, "igst")
	assertDecimal(t, "11800", got.ReceivableAmount, "receivable")
	assert.Equal(t, InvoiceStatusUnpaid, got.Status)

	history, err := GetInvoiceStatusHistory(ctx, inv.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestUpdateInvoice_DatesAndService(t *testing.T) {
	newTestDB(t)
	ctx := testContext()
	inv, err := CreateInvoice(ctx, newDomesticInvoice("Acme", "1000", date(2024, time.April, 1)))
	require.NoError(t, err)

	newDate := date(2024, time.May, 10)
	got, err := UpdateInvoice(ctx, inv.ID, &InvoiceUpdate{InvoiceDate: &newDate, ServiceDescription: strPtr("SEO retainer")})
	require.NoError(t, err)
	assert.Equal(t, "2024-05-25", got.DueDate.Format("2006-01-02"))
	assert.Equal(t, ServiceCategorySeo, got.ServiceCategory)

	early := date(2024, time.May, 1)
	_, err = UpdateInvoice(ctx, inv.ID, &InvoiceUpdate{DueDate: &early})
	assert.True(t, utils.IsValidationError(err))
}

func TestUpdateInvoice_ItemsAndBaseAmount(t *testing.T) {
	newTestDB(t)
	ctx := testContext()
	inv, err := CreateInvoice(ctx, &NewInvoice{
		ClientName:    "Acme",
		PlaceOfSupply: "Gujarat",
		InvoiceDate:   date(2024, time.April, 1),
		Items: []NewInvoiceItem{
			{Description: "Design", Rate: dec("1000")},
			{Description: "Hosting", Rate: dec("500")},
		},
	})
	require.NoError(t, err)

	_, err = UpdateInvoice(ctx, inv.ID, &InvoiceUpdate{BaseAmount: decPtr("2000")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "edit the items")

	items := []NewInvoiceItem{{Description: "Design", Quantity: dec("3"), Rate: dec("1000")}}
	got, err := UpdateInvoice(ctx, inv.ID, &InvoiceUpdate{Items: &items})
	require.NoError(t, err)
	assertDecimal(t, "3000", got.BaseAmount, "base")

	stored, err := GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assertDecimal(t, "3", stored.Items[0].Quantity, "quantity")

	empty := []NewInvoiceItem{}
	_, err = UpdateInvoice(ctx, inv.ID, &InvoiceUpdate{Items: &empty})
	assert.True(t, utils.IsValidationError(err))
}

func TestUpdateInvoice_ClientRename(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := testContext()
	inv, err := CreateInvoice(ctx, newDomesticInvoice("Acme", "1000", date(2024, time.April, 1)))
	require.NoError(t, err)

	got, err := UpdateInvoice(ctx, inv.ID, &InvoiceUpdate{ClientName: strPtr("Initech")})
	require.NoError(t, err)
	assert.Equal(t, "Initech", got.ClientName)
	assert.NotEqual(t, inv.CustomerId, got.CustomerId)
	assert.Equal(t, int64(2), countRows[Customer](t, db, ""))

	_, err = UpdateInvoice(ctx, inv.ID, &InvoiceUpdate{ClientName: strPtr("  ")})
	assert.True(t, utils.IsValidationError(err))
}

func TestUpdateInvoice_CurrencyChangeLooksUpRate(t *testing.T) {
	newTestDB(t)
	ctx := testContext()
	inv, err := CreateInvoice(ctx, newDomesticInvoice("Acme", "1000", date(2024, time.April, 1)))
	require.NoError(t, err)

	got, err := UpdateInvoice(ctx, inv.ID, &InvoiceUpdate{Currency: strPtr("eur"), ClientCountry: strPtr("Germany")})
	require.NoError(t, err)
	assert.Equal(t, "EUR", got.Currency)
	assertDecimal(t, "90", got.ExchangeRate, "rate")
	assertDecimal(t, "90000", got.InrEquivalent, "inr equivalent")

	_, err = UpdateInvoice(ctx, inv.ID, &InvoiceUpdate{Currency: strPtr("ABC")})
	assert.True(t, utils.IsValidationError(err))
}

func TestVoidInvoice_AndReopen(t *testing.T) {
	newTestDB(t)
	ctx := testContext()
	inv, err := CreateInvoice(ctx, newDomesticInvoice("Acme", "1000", date(2024, time.April, 1)))
	require.NoError(t, err)

	got, err := VoidInvoice(ctx, inv.ID, "client cancelled")
	require.NoError(t, err)
	assert.Equal(t, InvoiceStatusVoid, got.Status)

	_, err = VoidInvoice(ctx, inv.ID, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already void")

	_, err = UpdateInvoice(ctx, inv.ID, &InvoiceUpdate{Status: statusPtr(InvoiceStatusPaid), ReceivedAmount: decPtr("1000")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reopen it as Unpaid")

	got, err = UpdateInvoice(ctx, inv.ID, &InvoiceUpdate{Status: statusPtr(InvoiceStatusUnpaid)})
	require.NoError(t, err)
	assert.Equal(t, InvoiceStatusUnpaid, got.Status)

	history, err := GetInvoiceStatusHistory(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "voided: client cancelled", history[1].Reason)
	assert.Equal(t, InvoiceStatusVoid, history[2].FromStatus)
	assert.Equal(t, StatusReasonEdited, history[2].Reason)
}

func TestVoidInvoice_RejectsPartialAndLongReasonsAreCut(t *testing.T) {
	newTestDB(t)
	ctx := testContext()
	partial, err := CreateInvoice(ctx, newDomesticInvoice("Acme", "1000", date(2024, time.April, 1)))
	require.NoError(t, err)
	_, err = RecordInvoicePayment(ctx, partial.ID, &NewInvoicePayment{PaymentDate: date(2024, time.April, 2), Amount: dec("100")})
	require.NoError(t, err)
	_, err = VoidInvoice(ctx, partial.ID, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "can only move to Paid")

	other, err := CreateInvoice(ctx, newDomesticInvoice("Acme", "1000", date(2024, time.April, 3)))
	require.NoError(t, err)
	_, err = VoidInvoice(ctx, other.ID, strings.Repeat("x", 400))
	require.NoError(t, err)
	history, err := GetInvoiceStatusHistory(ctx, other.ID)
	require.NoError(t, err)
	assert.Len(t, history[len(history)-1].Reason, 255)
}
