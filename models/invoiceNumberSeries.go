package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/URVIL2512/Finance-Suite-sub001/config"
	"github.com/URVIL2512/Finance-Suite-sub001/utils"
	"gorm.io/gorm"
)

// maxNumberProbes bounds the search past numbers that already exist (manual or imported).
const maxNumberProbes = 1000

// InvoiceNumberCounter holds the last issued sequence per business, prefix and year.
type InvoiceNumberCounter struct {
	ID         int       `gorm:"primary_key" json:"id"`
	BusinessId string    `gorm:"size:64;not null;uniqueIndex:idx_invoice_counter_scope,priority:1" json:"business_id"`
	Prefix     string    `gorm:"size:20;not null;uniqueIndex:idx_invoice_counter_scope,priority:2" json:"prefix"`
	Year       int       `gorm:"not null;uniqueIndex:idx_invoice_counter_scope,priority:3" json:"year"`
	LastValue  int       `gorm:"not null;default:0" json:"last_value"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// FormatInvoiceNumber renders PREFIX + year + 3-digit sequence, e.g. INV2024007.
func FormatInvoiceNumber(prefix string, year int, seq int) string {
	return fmt.Sprintf("%s%d%03d", prefix, year, seq)
}

// ParseInvoiceNumber is the inverse of FormatInvoiceNumber.
func ParseInvoiceNumber(prefix string, number string) (year int, seq int, ok bool) {
	rest, found := strings.CutPrefix(strings.TrimSpace(number), prefix)
	if !found || len(rest) < 7 {
		return 0, 0, false
	}
	year, err := strconv.Atoi(rest[:4])
	if err != nil {
		return 0, 0, false
	}
	seq, err = strconv.Atoi(rest[4:])
	if err != nil || seq <= 0 {
		return 0, 0, false
	}
	return year, seq, true
}

func invoiceNumberExists(tx *gorm.DB, businessId string, number string) (bool, error) {
	var count int64
	err := tx.Model(&Invoice{}).Where("business_id = ? AND invoice_number = ?", businessId, number).Count(&count).Error
	return count > 0, err
}

func maxSequenceNo(tx *gorm.DB, businessId string, prefix string, year int) (int, error) {
	var maxSeq int
	err := tx.Model(&Invoice{}).Select("COALESCE(MAX(sequence_no), 0)").
		Where("business_id = ? AND invoice_year = ? AND invoice_number LIKE ?", businessId, year, prefix+"%").
		Scan(&maxSeq).Error
	return maxSeq, err
}

// loadCounter returns the counter row, creating it from the highest stored sequence on first use.
func loadCounter(tx *gorm.DB, businessId string, prefix string, year int) (*InvoiceNumberCounter, error) {
	var counter InvoiceNumberCounter
	err := tx.Where("business_id = ? AND prefix = ? AND year = ?", businessId, prefix, year).First(&counter).Error
	if err == nil {
		return &counter, nil
	}
	if !utils.IsNotFound(err) {
		return nil, err
	}
	seed, err := maxSequenceNo(tx, businessId, prefix, year)
	if err != nil {
		return nil, err
	}
	counter = InvoiceNumberCounter{BusinessId: businessId, Prefix: prefix, Year: year, LastValue: seed}
	if err := tx.Create(&counter).Error; err != nil {
		if !utils.IsDuplicateKeyErr(err) {
			return nil, err
		}
		if err := tx.Where("business_id = ? AND prefix = ? AND year = ?", businessId, prefix, year).First(&counter).Error; err != nil {
			return nil, err
		}
	}
	return &counter, nil
}

// nextInvoiceNumber increments the counter row in tx. The row stays locked until commit,
// so concurrent creators for the same year queue behind each other.
func nextInvoiceNumber(tx *gorm.DB, businessId string, prefix string, year int) (int, string, error) {
	counter, err := loadCounter(tx, businessId, prefix, year)
	if err != nil {
		return 0, "", err
	}
	for i := 0; i < maxNumberProbes; i++ {
		if err := tx.Model(&InvoiceNumberCounter{}).Where("id = ?", counter.ID).
			UpdateColumn("last_value", gorm.Expr("last_value + ?", 1)).Error; err != nil {
			return 0, "", err
		}
		if err := tx.Select("last_value").First(counter, counter.ID).Error; err != nil {
			return 0, "", err
		}
		number := FormatInvoiceNumber(prefix, year, counter.LastValue)
		exists, err := invoiceNumberExists(tx, businessId, number)
		if err != nil {
			return 0, "", err
		}
		if !exists {
			return counter.LastValue, number, nil
		}
	}
	return 0, "", fmt.Errorf("no free invoice number for %s%d", prefix, year)
}

// advanceCounter moves the stored counter forward to at least seq.
func advanceCounter(tx *gorm.DB, businessId string, prefix string, year int, seq int) error {
	counter, err := loadCounter(tx, businessId, prefix, year)
	if err != nil {
		return err
	}
	return tx.Model(&InvoiceNumberCounter{}).
		Where("id = ? AND last_value < ?", counter.ID, seq).
		UpdateColumn("last_value", seq).Error
}

// batchNumbering hands out numbers for one import batch. Each year is seeded once from the
// counter row and the stored invoices; later rows count up in memory.
type batchNumbering struct {
	businessId string
	prefix     string
	last       map[int]int
	used       map[string]bool
}

func newBatchNumbering(businessId string) *batchNumbering {
	return &batchNumbering{
		businessId: businessId,
		prefix:     config.InvoicePrefix(),
		last:       make(map[int]int),
		used:       make(map[string]bool),
	}
}

func (b *batchNumbering) seed(tx *gorm.DB, year int) error {
	if _, ok := b.last[year]; ok {
		return nil
	}
	counter, err := loadCounter(tx, b.businessId, b.prefix, year)
	if err != nil {
		return err
	}
	maxSeq, err := maxSequenceNo(tx, b.businessId, b.prefix, year)
	if err != nil {
		return err
	}
	b.last[year] = max(counter.LastValue, maxSeq)
	return nil
}

func (b *batchNumbering) next(tx *gorm.DB, year int) (int, string, error) {
	if err := b.seed(tx, year); err != nil {
		return 0, "", err
	}
	for i := 0; i < maxNumberProbes; i++ {
		b.last[year]++
		seq := b.last[year]
		number := FormatInvoiceNumber(b.prefix, year, seq)
		if b.used[number] {
			continue
		}
		exists, err := invoiceNumberExists(tx, b.businessId, number)
		if err != nil {
			return 0, "", err
		}
		if !exists {
			b.used[number] = true
			return seq, number, nil
		}
	}
	return 0, "", fmt.Errorf("no free invoice number for %s%d", b.prefix, year)
}

// assignInvoiceNumber sets InvoiceNumber and SequenceNo. A manual number is kept as given
// and, when it follows the prefix format, pushes the counter past it.
func assignInvoiceNumber(tx *gorm.DB, inv *Invoice, manual string, numbers *batchNumbering) error {
	prefix := config.InvoicePrefix()
	manual = strings.TrimSpace(manual)
	if manual != "" {
		exists, err := invoiceNumberExists(tx, inv.BusinessId, manual)
		if err != nil {
			return err
		}
		if exists {
			return utils.NewConflictError("invoice number %s already exists", manual)
		}
		inv.InvoiceNumber = manual
		if year, seq, ok := ParseInvoiceNumber(prefix, manual); ok {
			if year == inv.InvoiceYear {
				inv.SequenceNo = seq
			}
			if numbers != nil {
				numbers.used[manual] = true
			}
			return advanceCounter(tx, inv.BusinessId, prefix, year, seq)
		}
		return nil
	}

	var (
		seq    int
		number string
		err    error
	)
	if numbers != nil {
		seq, number, err = numbers.next(tx, inv.InvoiceYear)
		if err == nil {
			err = advanceCounter(tx, inv.BusinessId, prefix, inv.InvoiceYear, seq)
		}
	} else {
		seq, number, err = nextInvoiceNumber(tx, inv.BusinessId, prefix, inv.InvoiceYear)
	}
	if err != nil {
		return err
	}
	inv.SequenceNo = seq
	inv.InvoiceNumber = number
	return nil
}

// checkpoint returns a func that restores the year's counter, used when a row's transaction rolls back.
func (b *batchNumbering) checkpoint(year int) func() {
	last, seeded := b.last[year]
	return func() {
		for seq := last + 1; seq <= b.last[year]; seq++ {
			delete(b.used, FormatInvoiceNumber(b.prefix, year, seq))
		}
		if seeded {
			b.last[year] = last
		} else {
			delete(b.last, year)
		}
	}
}
