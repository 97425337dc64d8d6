package currency

import (
	"context"
	"sync"
	"time"

	"github.com/URVIL2512/Finance-Suite-sub001/config"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

const moduleName = "Currency"

// Converter answers rate(from, to). It never fails: a provider outage falls back
// to the last good table, then to StaticRates.
type Converter struct {
	home    string
	source  RateSource
	cache   *RateCache
	timeout time.Duration
	backoff time.Duration
	now     func() time.Time

	group singleflight.Group

	mu       sync.Mutex
	failedAt time.Time
}

type Option func(*Converter)

func WithClock(now func() time.Time) Option {
	return func(c *Converter) { c.now = now }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Converter) { c.timeout = d }
}

func WithFailureBackoff(d time.Duration) Option {
	return func(c *Converter) { c.backoff = d }
}

// NewConverter builds a converter. source may be nil, in which case only static rates are used.
func NewConverter(home string, source RateSource, cache *RateCache, opts ...Option) *Converter {
	c := &Converter{
		home:    Normalize(home),
		source:  source,
		cache:   cache,
		timeout: 5 * time.Second,
		backoff: 5 * time.Minute,
		now:     time.Now,
	}
	if c.cache == nil {
		c.cache = NewRateCache(time.Hour)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewConverterFromEnv wires the HTTP source and cache from settings.
func NewConverterFromEnv() *Converter {
	var source RateSource
	if url := config.ExchangeRateAPIURL(); url != "" {
		source = NewHTTPRateSource(url, config.ExchangeRateTimeout())
	}
	return NewConverter(
		config.HomeCurrency(),
		source,
		NewRateCache(config.ExchangeRateTTL()),
		WithTimeout(config.ExchangeRateTimeout()),
		WithFailureBackoff(config.ExchangeRateFailureBackoff()),
	)
}

func (c *Converter) Home() string { return c.home }

// Rate returns how many units of to one unit of from is worth.
func (c *Converter) Rate(ctx context.Context, from string, to string) decimal.Decimal {
	from, to = Normalize(from), Normalize(to)
	if from == "" || to == "" || from == to {
		return decimal.NewFromInt(1)
	}

	table := c.table(ctx)
	fromValue, okFrom := lookupWithFallback(table, c.home, from)
	toValue, okTo := lookupWithFallback(table, c.home, to)
	if !okFrom || !okTo {
		config.LogWarn(config.GetLogger(), moduleName, "Rate", "unknown currency; using 1", map[string]string{"from": from, "to": to}, nil)
		return decimal.NewFromInt(1)
	}
	return fromValue.DivRound(toValue, 6)
}

func lookupWithFallback(table RateTable, home string, code string) (decimal.Decimal, bool) {
	if v, ok := table.Lookup(home, code); ok {
		return v, true
	}
	return staticRates.Lookup(home, code)
}

func (c *Converter) table(ctx context.Context) RateTable {
	now := c.now()
	cached, fresh := c.cache.Get(now)
	if fresh {
		return cached
	}
	if c.source == nil || c.inBackoff(now) {
		return orStatic(cached)
	}

	v, err, _ := c.group.Do(c.home, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		return c.source.FetchRates(fetchCtx, c.home)
	})
	if err != nil {
		c.markFailed(now)
		config.LogWarn(config.GetLogger(), moduleName, "table", "rate fetch failed; using fallback rates", c.home, err)
		return orStatic(cached)
	}
	table := v.(RateTable)
	c.cache.Store(table, now)
	return table
}

func orStatic(cached RateTable) RateTable {
	if cached != nil {
		return cached
	}
	return staticRates
}

func (c *Converter) inBackoff(now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.failedAt.IsZero() && now.Before(c.failedAt.Add(c.backoff))
}

func (c *Converter) markFailed(now time.Time) {
	c.mu.Lock()
	c.failedAt = now
	c.mu.Unlock()
}
