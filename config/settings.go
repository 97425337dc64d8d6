package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	defaultHomeCountry      = "India"
	defaultHomeCurrency     = "INR"
	defaultInvoicePrefix    = "INV"
	defaultPaymentTermsDays = 15
	defaultExchangeRateURL  = "https://open.er-api.com/v6/latest"
)

func intFromEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func boolFromEnv(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func decimalFromEnv(key string, def decimal.Decimal) decimal.Decimal {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return def
	}
	return d
}

func stringFromEnv(key string, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func HomeCountry() string {
	return stringFromEnv("HOME_COUNTRY", defaultHomeCountry)
}

func HomeCurrency() string {
	return strings.ToUpper(stringFromEnv("HOME_CURRENCY", defaultHomeCurrency))
}

// HomeState is the registered state of the business; intra-state supplies split GST into CGST and SGST.
func HomeState() string {
	return stringFromEnv("HOME_STATE", "")
}

func InvoicePrefix() string {
	return stringFromEnv("INVOICE_PREFIX", defaultInvoicePrefix)
}

func PaymentTermsDays() int {
	return intFromEnv("PAYMENT_TERMS_DAYS", defaultPaymentTermsDays)
}

func ExchangeRateAPIURL() string {
	return stringFromEnv("EXCHANGE_RATE_API_URL", defaultExchangeRateURL)
}

func ExchangeRateTTL() time.Duration {
	return time.Duration(intFromEnv("EXCHANGE_RATE_TTL_SECONDS", 3600)) * time.Second
}

func ExchangeRateTimeout() time.Duration {
	return time.Duration(intFromEnv("EXCHANGE_RATE_TIMEOUT_SECONDS", 5)) * time.Second
}

// ExchangeRateFailureBackoff is how long the converter serves static rates after a failed fetch.
func ExchangeRateFailureBackoff() time.Duration {
	return time.Duration(intFromEnv("EXCHANGE_RATE_FAILURE_BACKOFF_SECONDS", 300)) * time.Second
}

// DefaultGstPercentage applies to domestic import rows without a GST column.
func DefaultGstPercentage() decimal.Decimal {
	return decimalFromEnv("DEFAULT_GST_PERCENTAGE", decimal.NewFromInt(18))
}

// MaxImportRows caps a single spreadsheet upload.
func MaxImportRows() int {
	return intFromEnv("IMPORT_MAX_ROWS", 5000)
}

func DocumentBucket() string {
	return os.Getenv("DOCUMENT_BUCKET")
}

func NotificationTopic() string {
	return os.Getenv("NOTIFICATION_TOPIC")
}

func DocumentWorkers() int {
	return max(intFromEnv("DOCUMENT_WORKERS", 2), 1)
}

func DocumentQueueSize() int {
	return max(intFromEnv("DOCUMENT_QUEUE_SIZE", 64), 1)
}

func ServerPort() string {
	return stringFromEnv("PORT", "8080")
}

func AllowedOrigins() []string {
	raw := stringFromEnv("CORS_ALLOWED_ORIGINS", "*")
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
