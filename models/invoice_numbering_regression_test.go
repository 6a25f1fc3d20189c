package models

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// Regression: concurrent invoice creation must hand out unique, gapless
// sequence numbers within the year.
func TestCreateInvoice_ConcurrentNumberingIsGapless(t *testing.T) {
	setupIntegrationEnv(t)
	ctx := context.Background()

	invoiceDate := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	const creators = 8

	invoices := make(chan *Invoice, creators)
	errs := make(chan error, creators)
	var wg sync.WaitGroup
	for i := 0; i < creators; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			invoice, err := CreateInvoice(ctx, &NewInvoice{
				InvoiceDate: invoiceDate,
				Items: []NewInvoiceItem{{
					Description: "Contributie 2026",
					Quantity:    decimal.NewFromInt(1),
					UnitPrice:   decimal.NewFromInt(50),
					VatRate:     decimal.NewFromInt(21),
				}},
			})
			if err != nil {
				errs <- err
				return
			}
			invoices <- invoice
		}()
	}
	wg.Wait()
	close(invoices)
	close(errs)
	for err := range errs {
		t.Fatalf("CreateInvoice: %v", err)
	}

	seen := make(map[int]bool, creators)
	for invoice := range invoices {
		if invoice.InvoiceYear != 2026 {
			t.Fatalf("expected invoice year 2026; got %d", invoice.InvoiceYear)
		}
		if invoice.InvoiceSequence < 1 || invoice.InvoiceSequence > creators {
			t.Fatalf("sequence %d outside 1..%d", invoice.InvoiceSequence, creators)
		}
		if seen[invoice.InvoiceSequence] {
			t.Fatalf("sequence %d handed out twice", invoice.InvoiceSequence)
		}
		seen[invoice.InvoiceSequence] = true

		if want := FormatInvoiceNumber(invoice.InvoiceYear, invoice.InvoiceSequence); invoice.InvoiceNumber != want {
			t.Fatalf("invoice number %q does not match %q", invoice.InvoiceNumber, want)
		}
	}
	if len(seen) != creators {
		t.Fatalf("expected %d invoices; got %d", creators, len(seen))
	}
}
