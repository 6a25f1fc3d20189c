package models

import "testing"

func TestMapProviderStatus(t *testing.T) {
	cases := []struct {
		in         string
		expected   PaymentStatus
		actionable bool
	}{
		{"paid", PaymentStatusPaid, true},
		{"failed", PaymentStatusFailed, true},
		{"canceled", PaymentStatusFailed, true},
		{"expired", PaymentStatusFailed, true},
		{"pending", PaymentStatusPending, false},
		{"open", PaymentStatusPending, false},
		{"authorized", PaymentStatusPending, false},
		{"", PaymentStatusPending, false},
	}

	for _, tc := range cases {
		status, actionable := MapProviderStatus(tc.in)
		if status != tc.expected || actionable != tc.actionable {
			t.Fatalf("MapProviderStatus(%q) = %s/%v, expected %s/%v",
				tc.in, status, actionable, tc.expected, tc.actionable)
		}
	}
}

func TestPaymentStatusIsTerminal(t *testing.T) {
	if PaymentStatusPending.IsTerminal() {
		t.Fatal("pending must not be terminal")
	}
	if !PaymentStatusPaid.IsTerminal() {
		t.Fatal("paid must be terminal")
	}
	if !PaymentStatusFailed.IsTerminal() {
		t.Fatal("failed must be terminal")
	}
}

func TestParseMemberSegment(t *testing.T) {
	if _, err := ParseMemberSegment("Newsletter"); err != nil {
		t.Fatalf("Newsletter should parse: %v", err)
	}
	if _, err := ParseMemberSegment("newsletter"); err == nil {
		t.Fatal("lowercase segment should not parse")
	}
}
