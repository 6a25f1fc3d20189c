package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestCalculateInvoiceTotals_MixedRates(t *testing.T) {
	items := []NewInvoiceItem{
		{Description: "Lidmaatschap", Quantity: dec("2"), UnitPrice: dec("10.00"), VatRate: dec("21")},
		{Description: "Consumpties", Quantity: dec("1"), UnitPrice: dec("5.00"), VatRate: dec("6")},
	}

	totals := CalculateInvoiceTotals(items)

	if !totals.Subtotal.Equal(dec("25.00")) {
		t.Fatalf("subtotal expected 25.00, got %s", totals.Subtotal)
	}
	if !totals.VatAmount.Equal(dec("4.50")) {
		t.Fatalf("vat expected 4.50, got %s", totals.VatAmount)
	}
	if !totals.Total.Equal(dec("29.50")) {
		t.Fatalf("total expected 29.50, got %s", totals.Total)
	}
	if !totals.AvgVatRate.Equal(dec("18.00")) {
		t.Fatalf("avg rate expected 18.00, got %s", totals.AvgVatRate)
	}
}

func TestCalculateInvoiceTotals_EmptyFallsBackToDefaultRate(t *testing.T) {
	totals := CalculateInvoiceTotals(nil)

	if !totals.Subtotal.IsZero() || !totals.VatAmount.IsZero() || !totals.Total.IsZero() {
		t.Fatalf("empty item set should produce zero amounts, got %s/%s/%s",
			totals.Subtotal, totals.VatAmount, totals.Total)
	}
	if !totals.AvgVatRate.Equal(dec("21")) {
		t.Fatalf("avg rate expected fallback 21, got %s", totals.AvgVatRate)
	}
}

// The total must equal subtotal plus vat on the cent, also when the
// unrounded components carry more precision.
func TestCalculateInvoiceTotals_TotalIsSumOfRoundedParts(t *testing.T) {
	cases := [][]NewInvoiceItem{
		{
			{Quantity: dec("3"), UnitPrice: dec("0.333"), VatRate: dec("21")},
		},
		{
			{Quantity: dec("7"), UnitPrice: dec("1.111"), VatRate: dec("9")},
			{Quantity: dec("1"), UnitPrice: dec("0.005"), VatRate: dec("21")},
		},
		{
			{Quantity: dec("2"), UnitPrice: dec("10.00"), VatRate: dec("21")},
			{Quantity: dec("1"), UnitPrice: dec("5.00"), VatRate: dec("6")},
		},
	}

	for i, items := range cases {
		totals := CalculateInvoiceTotals(items)
		if !totals.Total.Equal(totals.Subtotal.Add(totals.VatAmount)) {
			t.Fatalf("case %d: total %s != subtotal %s + vat %s",
				i, totals.Total, totals.Subtotal, totals.VatAmount)
		}
		if totals.Subtotal.Exponent() < -2 || totals.VatAmount.Exponent() < -2 {
			t.Fatalf("case %d: amounts not rounded to cents: %s / %s",
				i, totals.Subtotal, totals.VatAmount)
		}
	}
}

func TestCalculateLineTotal(t *testing.T) {
	got := CalculateLineTotal(dec("2"), dec("10.00"), dec("21"))
	if !got.Equal(dec("24.20")) {
		t.Fatalf("line total expected 24.20, got %s", got)
	}
}

func TestInvoiceNumberRoundTrip(t *testing.T) {
	number := FormatInvoiceNumber(2026, 17)
	if number != "2026-17" {
		t.Fatalf("expected 2026-17, got %s", number)
	}

	year, seq, err := ParseInvoiceNumber(number)
	if err != nil {
		t.Fatalf("ParseInvoiceNumber(%q) error: %v", number, err)
	}
	if year != 2026 || seq != 17 {
		t.Fatalf("expected 2026/17, got %d/%d", year, seq)
	}
}

func TestParseInvoiceNumber_Invalid(t *testing.T) {
	for _, in := range []string{"", "2026", "abcd-1", "2026-x", "2026-0"} {
		if _, _, err := ParseInvoiceNumber(in); err == nil {
			t.Fatalf("ParseInvoiceNumber(%q) expected error", in)
		}
	}
}
