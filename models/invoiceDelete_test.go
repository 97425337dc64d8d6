package models

import (
	"testing"
	"time"

	"github.com/URVIL2512/Finance-Suite-sub001/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteInvoice_ReleasesRevenueAndRemovesChildren(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := testContext()

	rev, err := CreateRevenue(ctx, &NewRevenue{
		ClientName:         "Initech",
		ServiceDescription: "Website development",
		RevenueDate:        date(2024, time.March, 1),
		BaseAmount:         dec("4000"),
	})
	require.NoError(t, err)
	inv, err := CreateInvoiceFromRevenue(ctx, rev.ID)
	require.NoError(t, err)
	_, err = RecordInvoicePayment(ctx, inv.ID, &NewInvoicePayment{PaymentDate: date(2024, time.March, 2), Amount: dec("4000")})
	require.NoError(t, err)

	deleted, err := DeleteInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, deleted.ID)

	_, err = GetInvoice(ctx, inv.ID)
	assert.True(t, utils.IsNotFound(err))
	assert.Zero(t, countRows[InvoicePayment](t, db, ""))
	assert.Zero(t, countRows[InvoiceItem](t, db, ""))
	assert.Zero(t, countRows[InvoiceStatusHistory](t, db, ""))

	stored, err := GetRevenue(ctx, rev.ID)
	require.NoError(t, err)
	assert.False(t, *stored.InvoiceGenerated)
	assert.Nil(t, stored.InvoiceId)

	// the released entry can be invoiced again
	again, err := CreateInvoiceFromRevenue(ctx, rev.ID)
	require.NoError(t, err)
	assert.NotEqual(t, inv.InvoiceNumber, again.InvoiceNumber)

	_, err = DeleteInvoice(ctx, inv.ID)
	assert.True(t, utils.IsNotFound(err))
}

func TestDeleteInvoice_KeepsMirroredRevenueButDetachesIt(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := testContext()
	inv := createPaidInvoice(t, "Acme", "5000")

	_, err := DeleteInvoice(ctx, inv.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(1), countRows[Revenue](t, db, ""))
	rev, err := GetRevenue(ctx, *inv.RevenueId)
	require.NoError(t, err)
	assert.Nil(t, rev.InvoiceId)
	assert.False(t, *rev.InvoiceGenerated)
}

func TestBulkDeleteInvoices_AllOrNothing(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := testContext()
	a, err := CreateInvoice(ctx, newDomesticInvoice("Acme", "100", date(2024, time.April, 1)))
	require.NoError(t, err)
	b, err := CreateInvoice(ctx, newDomesticInvoice("Globex", "200", date(2024, time.April, 2)))
	require.NoError(t, err)

	_, err = BulkDeleteInvoices(ctx, nil)
	assert.True(t, utils.IsValidationError(err))

	_, err = BulkDeleteInvoices(ctx, []int{a.ID, 9999})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invoice 9999 not found")
	assert.Equal(t, int64(2), countRows[Invoice](t, db, ""))

	deleted, err := BulkDeleteInvoices(ctx, []int{a.ID, b.ID, a.ID})
	require.NoError(t, err)
	assert.Equal(t, []int{a.ID, b.ID}, deleted)
	assert.Zero(t, countRows[Invoice](t, db, ""))
}
