package models

import (
	"context"
	"sync"

	"github.com/URVIL2512/Finance-Suite-sub001/config"
	"github.com/URVIL2512/Finance-Suite-sub001/currency"
	"github.com/URVIL2512/Finance-Suite-sub001/documents"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("github.com/URVIL2512/Finance-Suite-sub001/models")

// RateConverter returns units of `to` per unit of `from`. It must not fail.
type RateConverter interface {
	Rate(ctx context.Context, from string, to string) decimal.Decimal
}

// DocumentQueue accepts snapshots for rendering and mailing after commit.
type DocumentQueue interface {
	Enqueue(snapshot documents.InvoiceSnapshot) bool
}

var (
	collaboratorsMu sync.RWMutex
	rateConverter   RateConverter
	documentQueue   DocumentQueue
)

func SetRateConverter(c RateConverter) {
	collaboratorsMu.Lock()
	rateConverter = c
	collaboratorsMu.Unlock()
}

func SetDocumentQueue(q DocumentQueue) {
	collaboratorsMu.Lock()
	documentQueue = q
	collaboratorsMu.Unlock()
}

func getRateConverter() RateConverter {
	collaboratorsMu.RLock()
	c := rateConverter
	collaboratorsMu.RUnlock()
	if c == nil {
		return currency.NewConverter(config.HomeCurrency(), nil, nil)
	}
	return c
}

func enqueueDocument(ctx context.Context, inv *Invoice, event string) {
	collaboratorsMu.RLock()
	q := documentQueue
	collaboratorsMu.RUnlock()
	if q == nil || inv == nil {
		return
	}
	s := inv.Snapshot(event)
	s.CorrelationId = correlationId(ctx)
	q.Enqueue(s)
}
