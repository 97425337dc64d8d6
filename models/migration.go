package models

import (
	"log"

	"github.com/URVIL2512/Finance-Suite-sub001/config"
	"gorm.io/gorm"
)

func MigrateModels(db *gorm.DB) error {
	return db.AutoMigrate(
		&Customer{}, &ServiceItem{},
		&Invoice{}, &InvoiceItem{}, &InvoicePayment{}, &InvoiceStatusHistory{}, &InvoiceNumberCounter{},
		&Revenue{},
	)
}

func MigrateTable() {
	if err := MigrateModels(config.GetDB()); err != nil {
		log.Fatal(err)
	}
}
