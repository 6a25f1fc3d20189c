package utils

import "testing"

func TestEscapeAndParseRoundTrip(t *testing.T) {
	fields := []string{
		"plain",
		"with, comma",
		`with "quotes"`,
		"",
		`mixed, "both"`,
	}

	line := ""
	for i, f := range fields {
		if i > 0 {
			line += ","
		}
		line += EscapeCSVField(f)
	}

	parsed := ParseCSVLine(line, ',')
	if len(parsed) != len(fields) {
		t.Fatalf("expected %d fields, got %d: %v", len(fields), len(parsed), parsed)
	}
	for i, f := range fields {
		if parsed[i] != f {
			t.Fatalf("field %d: expected %q, got %q", i, f, parsed[i])
		}
	}
}

func TestDetectDelimiter(t *testing.T) {
	cases := []struct {
		header   string
		expected rune
	}{
		{"Voornaam,Achternaam,Email", ','},
		{"Voornaam;Achternaam;Email", ';'},
		{"Voornaam;Achternaam,Email", ','}, // tie goes to comma
		{`"a;b;c;d",x`, ';'},               // counts are textual, quotes included
	}
	for _, tc := range cases {
		if got := DetectDelimiter(tc.header); got != tc.expected {
			t.Fatalf("DetectDelimiter(%q) = %q, expected %q", tc.header, got, tc.expected)
		}
	}
}

func TestParseCSVLine_Semicolon(t *testing.T) {
	parsed := ParseCSVLine(`Jan;Jansen;"Utrecht; centrum"`, ';')
	if len(parsed) != 3 {
		t.Fatalf("expected 3 fields, got %d: %v", len(parsed), parsed)
	}
	if parsed[2] != "Utrecht; centrum" {
		t.Fatalf("quoted delimiter lost: %q", parsed[2])
	}
}

func TestParseDutchBool(t *testing.T) {
	trues := []string{"ja", "Ja", "JA", "true", "1", "waar", " ja "}
	for _, in := range trues {
		if !ParseDutchBool(in, false) {
			t.Fatalf("ParseDutchBool(%q) expected true", in)
		}
	}
	falses := []string{"nee", "Nee", "false", "0", "onwaar"}
	for _, in := range falses {
		if ParseDutchBool(in, true) {
			t.Fatalf("ParseDutchBool(%q) expected false", in)
		}
	}
	// unrecognised input keeps the per-field default
	if !ParseDutchBool("misschien", true) || ParseDutchBool("misschien", false) {
		t.Fatal("unrecognised value must fall back to the default")
	}
}

func TestDutchBoolRoundTrip(t *testing.T) {
	if !ParseDutchBool(FormatDutchBool(true), false) {
		t.Fatal("Ja must round-trip to true")
	}
	if ParseDutchBool(FormatDutchBool(false), true) {
		t.Fatal("Nee must round-trip to false")
	}
}

func TestNormalizeDate(t *testing.T) {
	cases := []struct {
		in       string
		expected string
	}{
		{"01/02/1990", "1990-02-01"},
		{"1/2/1990", "1990-02-01"},
		{"1990-02-01", "1990-02-01"},
		{"onbekend", "onbekend"}, // silent passthrough, not a failure
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeDate(tc.in); got != tc.expected {
			t.Fatalf("NormalizeDate(%q) = %q, expected %q", tc.in, got, tc.expected)
		}
	}
}

func TestDutchDateRoundTrip(t *testing.T) {
	if got := FormatDutchDate("1990-02-01"); got != "01/02/1990" {
		t.Fatalf("FormatDutchDate expected 01/02/1990, got %q", got)
	}
	if got := NormalizeDate(FormatDutchDate("1990-02-01")); got != "1990-02-01" {
		t.Fatalf("date round-trip broke: %q", got)
	}
	// non-ISO input passes through both ways
	if got := FormatDutchDate("eind jaren 80"); got != "eind jaren 80" {
		t.Fatalf("non-ISO input modified: %q", got)
	}
}
