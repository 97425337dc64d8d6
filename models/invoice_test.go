package models

import (
	"context"
	"testing"
	"time"

	"github.com/URVIL2512/Finance-Suite-sub001/config"
	"github.com/URVIL2512/Finance-Suite-sub001/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateInvoice_IntraStateSplitsGst(t *testing.T) {
	db, queue := newTestDB(t)
	ctx := testContext()

	inv, err := CreateInvoice(ctx, &NewInvoice{
		ClientName:         "Acme   Corp",
		PlaceOfSupply:      "Gujarat",
		ServiceDescription: "SEO retainer",
		InvoiceDate:        date(2024, time.April, 10),
		BaseAmount:         dec("10000"),
		GstPercentage:      dec("18"),
	})
	require.NoError(t, err)

	assert.Equal(t, "INV2024001", inv.InvoiceNumber)
	assert.Equal(t, 1, inv.SequenceNo)
	assert.Equal(t, 2024, inv.InvoiceYear)
	assert.Equal(t, "Acme Corp", inv.ClientName)
	assert.Equal(t, InvoiceStatusUnpaid, inv.Status)
	assert.Equal(t, GstTypeCgstSgst, inv.GstType)
	assert.Equal(t, ServiceCategorySeo, inv.ServiceCategory)
	assertDecimal(t, "900", inv.Cgst, "cgst")
	assertDecimal(t, "900", inv.Sgst, "sgst")
	assertDecimal(t, "0", inv.Igst, "igst")
	assertDecimal(t, "11800", inv.InvoiceTotal, "total")
	assertDecimal(t, "11800", inv.ReceivableAmount, "receivable")
	assertDecimal(t, "1", inv.ExchangeRate, "rate")
	assertDecimal(t, "11800", inv.InrEquivalent, "inr equivalent")
	assertDecimal(t, "0", inv.ReceivedAmount, "received")
	assert.Equal(t, "2024-04-25", inv.DueDate.Format("2006-01-02"))
	assert.Equal(t, 4, inv.PeriodMonth)
	assert.Equal(t, 2024, inv.PeriodYear)
	assert.Nil(t, inv.RevenueId)

	stored, err := GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assertDecimal(t, "10000", stored.Items[0].Amount, "item amount")
	assertDecimal(t, "11800", stored.InvoiceTotal, "stored total")

	customer, err := GetCustomer(ctx, inv.CustomerId)
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", customer.Name)
	assert.True(t, *customer.IsPlaceholder)
	assert.Equal(t, placeholderContact, customer.ContactPerson)

	history, err := GetInvoiceStatusHistory(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, InvoiceStatus(""), history[0].FromStatus)
	assert.Equal(t, InvoiceStatusUnpaid, history[0].ToStatus)
	assert.Equal(t, StatusReasonCreated, history[0].Reason)
	assert.Equal(t, "Test", history[0].UserName)
	assert.Equal(t, 7, history[0].UserId)

	assert.Zero(t, countRows[Revenue](t, db, ""))
	assert.Equal(t, []string{"invoice.created"}, queue.events)
}

func TestCreateInvoice_InterStateChargesIgst(t *testing.T) {
	newTestDB(t)
	inv, err := CreateInvoice(testContext(), &NewInvoice{
		ClientName:         "Wayne Enterprises",
		ClientState:        "Maharashtra",
		ServiceDescription: "CRM integration",
		InvoiceDate:        date(2024, time.June, 1),
		BaseAmount:         dec("20000"),
		GstPercentage:      dec("18"),
		TdsPercentage:      dec("10"),
		RemittanceCharges:  dec("500"),
	})
	require.NoError(t, err)
	assert.Equal(t, GstTypeIgst, inv.GstType)
	assertDecimal(t, "3600", inv.Igst, "igst")
	assertDecimal(t, "2000", inv.TdsAmount, "tds")
	assertDecimal(t, "23600", inv.InvoiceTotal, "total")
	assertDecimal(t, "21100", inv.ReceivableAmount, "receivable")
}

func TestCreateInvoice_ForeignClientHasNoTax(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := testContext()

	inv, err := CreateInvoice(ctx, &NewInvoice{
		ClientName:         "Globex Inc",
		ClientCountry:      "USA",
		Currency:           "usd",
		ServiceDescription: "Android app",
		InvoiceDate:        date(2024, time.May, 2),
		BaseAmount:         dec("1000"),
		GstPercentage:      dec("18"),
		TdsPercentage:      dec("10"),
	})
	require.NoError(t, err)
	assert.Equal(t, "USD", inv.Currency)
	assertDecimal(t, "0", inv.TotalGst, "gst")
	assertDecimal(t, "0", inv.TdsAmount, "tds")
	assertDecimal(t, "0", inv.GstPercentage, "gst percentage")
	assertDecimal(t, "1000", inv.ReceivableAmount, "receivable")
	assertDecimal(t, "83", inv.ExchangeRate, "rate")
	assertDecimal(t, "83000", inv.InrEquivalent, "inr equivalent")

	paid, err := RecordInvoicePayment(ctx, inv.ID, &NewInvoicePayment{PaymentDate: date(2024, time.May, 20), Amount: dec("1000")})
	require.NoError(t, err)
	require.Equal(t, InvoiceStatusPaid, paid.Status)
	require.NotNil(t, paid.RevenueId)

	rev, err := GetRevenue(ctx, *paid.RevenueId)
	require.NoError(t, err)
	assert.Equal(t, "INR", rev.Currency)
	assert.Equal(t, "USD", rev.OriginalCurrency)
	assertDecimal(t, "83000", rev.BaseAmount, "revenue base")
	assertDecimal(t, "83000", rev.ReceivableAmount, "revenue receivable")
	assertDecimal(t, "83000", rev.ReceivedAmount, "revenue received")
	assert.Equal(t, int64(1), countRows[Revenue](t, db, ""))
}

func TestCreateInvoice_ItemsSetTheBaseAmount(t *testing.T) {
	newTestDB(t)
	inv, err := CreateInvoice(testContext(), &NewInvoice{
		ClientName:  "Stark Industries",
		InvoiceDate: date(2024, time.July, 1),
		Items: []NewInvoiceItem{
			{Description: "Logo design", Quantity: dec("2"), Rate: dec("1500")},
			{Description: "Hosting", Rate: dec("1000")},
		},
	})
	require.NoError(t, err)
	assertDecimal(t, "4000", inv.BaseAmount, "base")
	assert.Equal(t, "Logo design", inv.ServiceDescription)
	assert.Equal(t, ServiceCategoryGraphicDesign, inv.ServiceCategory)
	require.Len(t, inv.Items, 2)
	assertDecimal(t, "1", inv.Items[1].Quantity, "default quantity")
	assertDecimal(t, "1000", inv.Items[1].Amount, "second item")
}

func TestCreateInvoice_RejectsBadInput(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := testContext()
	due := date(2024, time.March, 1)

	tests := []struct {
		name  string
		ctx   context.Context
		input *NewInvoice
	}{
		{"no business", context.Background(), newDomesticInvoice("Acme", "100", date(2024, time.April, 1))},
		{"no client", ctx, &NewInvoice{ServiceDescription: "SEO", InvoiceDate: date(2024, time.April, 1), BaseAmount: dec("100")}},
		{"gst above 100", ctx, &NewInvoice{ClientName: "Acme", ServiceDescription: "SEO", InvoiceDate: date(2024, time.April, 1), BaseAmount: dec("100"), GstPercentage: dec("120")}},
		{"due before invoice date", ctx, &NewInvoice{ClientName: "Acme", ServiceDescription: "SEO", InvoiceDate: date(2024, time.April, 1), DueDate: &due, BaseAmount: dec("100")}},
		{"zero base", ctx, newDomesticInvoice("Acme", "0", date(2024, time.April, 1))},
		{"unsupported currency", ctx, &NewInvoice{ClientName: "Acme", ServiceDescription: "SEO", InvoiceDate: date(2024, time.April, 1), BaseAmount: dec("100"), Currency: "XYZ"}},
		{"paid with nothing received", ctx, &NewInvoice{ClientName: "Acme", ServiceDescription: "SEO", InvoiceDate: date(2024, time.April, 1), BaseAmount: dec("100"), Status: statusPtr(InvoiceStatusPaid)}},
		{"missing customer", ctx, &NewInvoice{CustomerId: 404, ServiceDescription: "SEO", InvoiceDate: date(2024, time.April, 1), BaseAmount: dec("100")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CreateInvoice(tt.ctx, tt.input)
			require.Error(t, err)
			assert.True(t, utils.IsValidationError(err), err.Error())
		})
	}
	assert.Zero(t, countRows[Invoice](t, db, ""))
	assert.Zero(t, countRows[Customer](t, db, ""))
}

func TestCreateInvoice_PaidWithFullAmountCreatesRevenue(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := testContext()

	input := newDomesticInvoice("Acme", "5000", date(2024, time.April, 1))
	input.Status = statusPtr(InvoiceStatusPaid)
	input.ReceivedAmount = decPtr("5000")
	inv, err := CreateInvoice(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, InvoiceStatusPaid, inv.Status)
	require.NotNil(t, inv.RevenueId)
	require.NotNil(t, inv.Revenue)
	assert.Equal(t, inv.ID, *inv.Revenue.InvoiceId)
	assert.True(t, *inv.Revenue.InvoiceGenerated)
	assert.Equal(t, int64(1), countRows[Revenue](t, db, "invoice_id = ?", inv.ID))

	stored, err := GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Revenue)
	assertDecimal(t, "5000", stored.Revenue.ReceivableAmount, "revenue receivable")
}

func TestCreateInvoice_NumbersRunPerYear(t *testing.T) {
	newTestDB(t)
	ctx := testContext()

	create := func(on time.Time, number string) (*Invoice, error) {
		input := newDomesticInvoice("Acme", "100", on)
		input.InvoiceNumber = number
		return CreateInvoice(ctx, input)
	}
	var numbers []string
	for _, on := range []time.Time{date(2024, time.May, 1), date(2024, time.June, 1), date(2025, time.January, 2)} {
		inv, err := create(on, "")
		require.NoError(t, err)
		numbers = append(numbers, inv.InvoiceNumber)
	}
	assert.Equal(t, []string{"INV2024001", "INV2024002", "INV2025001"}, numbers)

	manual, err := create(date(2024, time.July, 1), "INV2024010")
	require.NoError(t, err)
	assert.Equal(t, 10, manual.SequenceNo)

	next, err := create(date(2024, time.July, 2), "")
	require.NoError(t, err)
	assert.Equal(t, "INV2024011", next.InvoiceNumber)

	_, err = create(date(2024, time.July, 3), "INV2024010")
	require.Error(t, err)
	assert.True(t, utils.IsConflictError(err))

	free, err := create(date(2024, time.July, 4), "ACME-7")
	require.NoError(t, err)
	assert.Equal(t, 0, free.SequenceNo)

	next, err = create(date(2024, time.July, 5), "")
	require.NoError(t, err)
	assert.Equal(t, "INV2024012", next.InvoiceNumber)
}

func TestFormatAndParseInvoiceNumber(t *testing.T) {
	assert.Equal(t, "INV2024007", FormatInvoiceNumber("INV", 2024, 7))
	assert.Equal(t, "INV20241234", FormatInvoiceNumber("INV", 2024, 1234))

	year, seq, ok := ParseInvoiceNumber("INV", "INV2024007")
	require.True(t, ok)
	assert.Equal(t, 2024, year)
	assert.Equal(t, 7, seq)

	for _, bad := range []string{"INV2024", "ABC2024001", "INV2024000", "INVabcd001"} {
		_, _, ok := ParseInvoiceNumber("INV", bad)
		assert.False(t, ok, bad)
	}
}

func TestListInvoices_Filters(t *testing.T) {
	newTestDB(t)
	ctx := testContext()

	paidInput := newDomesticInvoice("Acme Corp", "5000", date(2024, time.April, 1))
	paidInput.Status = statusPtr(InvoiceStatusPaid)
	paidInput.ReceivedAmount = decPtr("5000")
	paid, err := CreateInvoice(ctx, paidInput)
	require.NoError(t, err)
	globex, err := CreateInvoice(ctx, newDomesticInvoice("Globex", "700", date(2024, time.May, 10)))
	require.NoError(t, err)
	latest, err := CreateInvoice(ctx, newDomesticInvoice("Acme Corp", "900", date(2025, time.January, 15)))
	require.NoError(t, err)

	all, err := ListInvoices(ctx, InvoiceFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, latest.ID, all[0].ID)
	assert.Equal(t, paid.ID, all[2].ID)
	assert.NotNil(t, all[2].Revenue)
	assert.Len(t, all[2].Items, 1)

	status := InvoiceStatusPaid
	got, err := ListInvoices(ctx, InvoiceFilter{Status: &status})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, paid.ID, got[0].ID)

	client := "acme"
	got, err = ListInvoices(ctx, InvoiceFilter{ClientName: &client})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	year := 2024
	got, err = ListInvoices(ctx, InvoiceFilter{Year: &year})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	from, to := date(2024, time.May, 1), date(2024, time.May, 31)
	got, err = ListInvoices(ctx, InvoiceFilter{FromDate: &from, ToDate: &to})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, globex.ID, got[0].ID)

	got, err = ListInvoices(ctx, InvoiceFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, globex.ID, got[0].ID)
}

func TestInvoices_AreScopedToTheirBusiness(t *testing.T) {
	newTestDB(t)
	inv, err := CreateInvoice(testContext(), newDomesticInvoice("Acme", "100", date(2024, time.April, 1)))
	require.NoError(t, err)

	other := utils.SetBusinessIdInContext(context.Background(), "biz-other")
	_, err = GetInvoice(other, inv.ID)
	assert.True(t, utils.IsNotFound(err))

	list, err := ListInvoices(other, InvoiceFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)

	// numbering is per business
	theirs, err := CreateInvoice(other, newDomesticInvoice("Acme", "100", date(2024, time.April, 1)))
	require.NoError(t, err)
	assert.Equal(t, "INV2024001", theirs.InvoiceNumber)

	// unfiltered queries are scoped by the plugin unless the context opts out
	var count int64
	require.NoError(t, config.GetDB().WithContext(other).Model(&Invoice{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	require.NoError(t, config.GetDB().WithContext(utils.WithoutTenantScope(other)).Model(&Invoice{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestInvoiceSnapshot_CopiesAmountsAndItems(t *testing.T) {
	inv := &Invoice{
		ID:            3,
		BusinessId:    testBusinessId,
		InvoiceNumber: "INV2024003",
		ClientName:    "Acme",
		Status:        InvoiceStatusPartial,
		GstType:       GstTypeIgst,
		Igst:          dec("180"),
		InvoiceTotal:  dec("1180"),
		Items:         []InvoiceItem{{Description: "SEO", Quantity: decimal.NewFromInt(1), Rate: dec("1000"), Amount: dec("1000")}},
	}
	s := inv.Snapshot("invoice.updated")
	assert.Equal(t, "invoice.updated", s.Event)
	assert.Equal(t, "Partial", s.Status)
	assert.Equal(t, "INV2024003", s.InvoiceNumber)
	assertDecimal(t, "180", s.Igst, "igst")
	require.Len(t, s.Items, 1)
	assert.Equal(t, "SEO", s.Items[0].Description)
}

func TestReconcileInvoiceState_ForcesBackAStrayWrite(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := testContext()
	inv, err := CreateInvoice(ctx, newDomesticInvoice("Acme", "1000", date(2024, time.April, 1)))
	require.NoError(t, err)

	// a write that bypasses the lifecycle and leaves updated_at alone
	require.NoError(t, db.Model(&Invoice{}).Where("id = ?", inv.ID).UpdateColumns(map[string]interface{}{
		"status":          InvoiceStatusPartial,
		"received_amount": dec("100"),
	}).Error)

	reconcileInvoiceState(ctx, inv)
	stored, err := GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, InvoiceStatusUnpaid, stored.Status)
	assertDecimal(t, "0", stored.ReceivedAmount, "received")
}

func TestReconcileInvoiceState_KeepsALaterEdit(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := testContext()
	inv, err := CreateInvoice(ctx, newDomesticInvoice("Acme", "1000", date(2024, time.April, 1)))
	require.NoError(t, err)

	require.NoError(t, db.Model(&Invoice{}).Where("id = ?", inv.ID).UpdateColumns(map[string]interface{}{
		"status":          InvoiceStatusPartial,
		"received_amount": dec("100"),
		"updated_at":      inv.UpdatedAt.Add(time.Minute),
	}).Error)

	reconcileInvoiceState(ctx, inv)
	stored, err := GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, InvoiceStatusPartial, stored.Status)
	assertDecimal(t, "100", stored.ReceivedAmount, "received")
}
