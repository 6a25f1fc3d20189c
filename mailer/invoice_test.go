package mailer

import (
	"strings"
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/leden_backend/models"
	"github.com/shopspring/decimal"
)

func TestInvoiceSubject(t *testing.T) {
	invoice := &models.Invoice{InvoiceNumber: "2026-7"}
	if got := invoiceSubject(invoice); got != "Factuur 2026-7" {
		t.Fatalf("invoiceSubject = %q", got)
	}
}

func TestReminderSubject_CountsFromOne(t *testing.T) {
	invoice := &models.Invoice{InvoiceNumber: "2026-7", ReminderCount: 0}
	if got := reminderSubject(invoice); got != "Herinnering 1: factuur 2026-7" {
		t.Fatalf("reminderSubject = %q", got)
	}

	invoice.ReminderCount = 2
	if got := reminderSubject(invoice); got != "Herinnering 3: factuur 2026-7" {
		t.Fatalf("reminderSubject after 2 reminders = %q", got)
	}
}

func TestRenderInvoiceBody(t *testing.T) {
	invoice := &models.Invoice{
		InvoiceNumber: "2026-7",
		Total:         decimal.NewFromFloat(60.50),
		DueDate:       time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC),
		Items: []models.InvoiceItem{
			{Description: "Contributie 2026", LineTotal: decimal.NewFromFloat(60.50)},
		},
	}

	body := renderInvoiceBody(invoice, "Jan Jansen", "Hierbij ontvangt u onze factuur.")

	for _, fragment := range []string{
		"<p>Beste Jan Jansen,</p>",
		"<p>Hierbij ontvangt u onze factuur.</p>",
		"<li>Contributie 2026: &euro; 60.50</li>",
		"<p>Totaal: &euro; 60.50</p>",
		"<p>Te voldoen voor 15-04-2026.</p>",
	} {
		if !strings.Contains(body, fragment) {
			t.Fatalf("body missing %q:\n%s", fragment, body)
		}
	}
}

func TestRenderInvoiceBody_NoDueDate(t *testing.T) {
	invoice := &models.Invoice{Total: decimal.Zero}
	body := renderInvoiceBody(invoice, "Jan", "intro")
	if strings.Contains(body, "Te voldoen") {
		t.Fatalf("body should omit the due date line when none is set:\n%s", body)
	}
}
