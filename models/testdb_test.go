package models

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/URVIL2512/Finance-Suite-sub001/config"
	"github.com/URVIL2512/Finance-Suite-sub001/documents"
	"github.com/URVIL2512/Finance-Suite-sub001/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testBusinessId = "biz-test-0001"

// newTestDB swaps the global connection for a fresh in-memory SQLite database with the
// tenant scope plugin installed. One open connection keeps the database alive.
func newTestDB(t *testing.T) (*gorm.DB, *recordingQueue) {
	t.Helper()
	t.Setenv("HOME_STATE", "Gujarat")
	t.Setenv("HOME_CURRENCY", "INR")
	t.Setenv("INVOICE_PREFIX", "INV")

	db, err := gorm.Open(sqlite.Open(":memory:"), config.GormConfig())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.Use(config.NewTenantScopePlugin()))
	require.NoError(t, MigrateModels(db))

	prev := config.GetDB()
	config.SetDB(db)
	SetRateConverter(fixedRates{"USD": decimal.NewFromInt(83), "EUR": decimal.NewFromInt(90)})
	queue := &recordingQueue{}
	SetDocumentQueue(queue)
	t.Cleanup(func() {
		config.SetDB(prev)
		SetRateConverter(nil)
		SetDocumentQueue(nil)
		_ = sqlDB.Close()
	})
	return db, queue
}

func testContext() context.Context {
	ctx := utils.SetBusinessIdInContext(context.Background(), testBusinessId)
	ctx = utils.SetUserIdInContext(ctx, 7)
	return utils.SetUserNameInContext(ctx, "Test")
}

// fixedRates converts a foreign currency to home at a set rate; everything else is 1.
type fixedRates map[string]decimal.Decimal

func (f fixedRates) Rate(_ context.Context, from string, _ string) decimal.Decimal {
	if r, ok := f[from]; ok {
		return r
	}
	return decimal.NewFromInt(1)
}

type recordingQueue struct {
	mu     sync.Mutex
	events []string
}

func (q *recordingQueue) Enqueue(s documents.InvoiceSnapshot) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.events = append(q.events, s.Event)
	return true
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func countRows[T any](t *testing.T, db *gorm.DB, where string, args ...any) int64 {
	t.Helper()
	var count int64
	q := db.Model(new(T))
	if where != "" {
		q = q.Where(where, args...)
	}
	require.NoError(t, q.Count(&count).Error)
	return count
}

// newDomesticInvoice is a Gujarat client billed from Gujarat with no GST, so receivable equals base.
func newDomesticInvoice(client string, base string, on time.Time) *NewInvoice {
	return &NewInvoice{
		ClientName:         client,
		PlaceOfSupply:      "Gujarat",
		ServiceDescription: "Website development",
		InvoiceDate:        on,
		BaseAmount:         dec(base),
	}
}
