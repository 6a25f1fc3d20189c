package models

import (
	"log"

	"bitbucket.org/mmdatafocus/leden_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Member{}, &Company{}, &Tag{},
		&Invoice{}, &InvoiceItem{}, &InvoiceNumberSequence{},
		&Contribution{}, &Donation{},
		&Income{}, &Expense{}, &Document{},
		&InventoryItem{}, &Budget{},
		&Event{}, &EventRegistration{},
		&Mailing{},
		&User{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
