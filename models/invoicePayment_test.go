package models

import (
	"testing"
	"time"

	"github.com/URVIL2512/Finance-Suite-sub001/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordInvoicePayment_PartialThenPaid(t *testing.T) {
	db, queue := newTestDB(t)
	ctx := testContext()

	inv, err := CreateInvoice(ctx, newDomesticInvoice("Acme", "5000", date(2024, time.April, 1)))
	require.NoError(t, err)
	assertDecimal(t, "5000", inv.ReceivableAmount, "receivable")

	got, err := RecordInvoicePayment(ctx, inv.ID, &NewInvoicePayment{
		PaymentDate: date(2024, time.April, 5),
		Amount:      dec("2000"),
		PaymentMode: PaymentModeUpi,
	})
	require.NoError(t, err)
	assert.Equal(t, InvoiceStatusPartial, got.Status)
	assertDecimal(t, "2000", got.ReceivedAmount, "received after first payment")
	assert.Nil(t, got.RevenueId)
	assert.Zero(t, countRows[Revenue](t, db, ""))

	got, err = RecordInvoicePayment(ctx, inv.ID, &NewInvoicePayment{
		PaymentDate: date(2024, time.April, 20),
		Amount:      dec("3000"),
	})
	require.NoError(t, err)
	assert.Equal(t, InvoiceStatusPaid, got.Status)
	assertDecimal(t, "5000", got.ReceivedAmount, "received after second payment")
	assertDecimal(t, "5000", got.PaidAmount, "paid amount")
	require.NotNil(t, got.RevenueId)
	assert.Equal(t, int64(1), countRows[Revenue](t, db, ""))

	rev, err := GetRevenue(ctx, *got.RevenueId)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, *rev.InvoiceId)
	assert.True(t, *rev.InvoiceGenerated)
	assertDecimal(t, "5000", rev.ReceivableAmount, "revenue receivable")
	assertDecimal(t, "5000", rev.ReceivedAmount, "revenue received")

	_, err = RecordInvoicePayment(ctx, inv.ID, &NewInvoicePayment{PaymentDate: date(2024, time.April, 21), Amount: dec("1")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already paid")

	payments, err := GetInvoicePayments(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.Equal(t, PaymentModeUpi, payments[0].PaymentMode)
	assert.Equal(t, PaymentModeBankTransfer, payments[1].PaymentMode)

	history, err := GetInvoiceStatusHistory(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, InvoiceStatusPartial, history[1].ToStatus)
	assert.Equal(t, StatusReasonPayment, history[1].Reason)
	assert.Equal(t, InvoiceStatusPartial, history[2].FromStatus)
	assert.Equal(t, InvoiceStatusPaid, history[2].ToStatus)

	stored, err := GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Payments, 2)
	require.NotNil(t, stored.Revenue)

	assert.Equal(t, []string{"invoice.created", "invoice.payment_recorded", "invoice.payment_recorded"}, queue.events)
}

func TestRecordInvoicePayment_Rejections(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := testContext()

	inv, err := CreateInvoice(ctx, newDomesticInvoice("Acme", "5000", date(2024, time.April, 1)))
	require.NoError(t, err)

	_, err = RecordInvoicePayment(ctx, inv.ID, &NewInvoicePayment{PaymentDate: date(2024, time.April, 2), Amount: dec("0")})
	assert.True(t, utils.IsValidationError(err))

	_, err = RecordInvoicePayment(ctx, inv.ID, &NewInvoicePayment{PaymentDate: date(2024, time.April, 2), Amount: dec("10"), PaymentMode: "Barter"})
	assert.True(t, utils.IsValidationError(err))

	_, err = RecordInvoicePayment(ctx, 9999, &NewInvoicePayment{PaymentDate: date(2024, time.April, 2), Amount: dec("10")})
	assert.True(t, utils.IsNotFound(err))

	_, err = VoidInvoice(ctx, inv.ID, "")
	require.NoError(t, err)
	_, err = RecordInvoicePayment(ctx, inv.ID, &NewInvoicePayment{PaymentDate: date(2024, time.April, 2), Amount: dec("10")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Void")

	assert.Zero(t, countRows[InvoicePayment](t, db, ""))
}

func TestRecordInvoicePayment_OverpaymentStillMarksPaid(t *testing.T) {
	newTestDB(t)
	ctx := testContext()

	inv, err := CreateInvoice(ctx, newDomesticInvoice("Acme", "1000", date(2024, time.April, 1)))
	require.NoError(t, err)
	got, err := RecordInvoicePayment(ctx, inv.ID, &NewInvoicePayment{PaymentDate: date(2024, time.April, 2), Amount: dec("1200.50")})
	require.NoError(t, err)
	assert.Equal(t, InvoiceStatusPaid, got.Status)
	assertDecimal(t, "1200.5", got.ReceivedAmount, "received")
}
