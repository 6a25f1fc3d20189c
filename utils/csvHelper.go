package utils

import (
	"regexp"
	"strings"
)

// UTF8BOM is prefixed to CSV exports so spreadsheet programs pick up the encoding.
const UTF8BOM = "\xEF\xBB\xBF"

// EscapeCSVField quote-wraps a field when it contains a comma, quote or
// newline, doubling any internal quotes.
func EscapeCSVField(field string) string {
	if strings.ContainsAny(field, ",\"\n\r") {
		return "\"" + strings.ReplaceAll(field, "\"", "\"\"") + "\""
	}
	return field
}

// DetectDelimiter picks the field separator for an import file by comparing
// comma vs semicolon counts on the header line. Majority wins, comma on a tie.
func DetectDelimiter(headerLine string) rune {
	if strings.Count(headerLine, ";") > strings.Count(headerLine, ",") {
		return ';'
	}
	return ','
}

// ParseCSVLine splits one line into fields, honouring quoted fields with
// doubled internal quotes. Not a full RFC 4180 parser: the file is split into
// lines before this runs, so newlines inside quoted fields are not supported.
func ParseCSVLine(line string, delimiter rune) []string {
	fields := make([]string, 0)
	var current strings.Builder
	inQuotes := false

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		switch {
		case ch == '"':
			if inQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				current.WriteRune('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case ch == delimiter && !inQuotes:
			fields = append(fields, current.String())
			current.Reset()
		default:
			current.WriteRune(ch)
		}
	}
	fields = append(fields, current.String())
	return fields
}

// ParseDutchBool reads the permissive boolean spellings used in member
// spreadsheets. Anything unrecognised falls back to the per-field default.
func ParseDutchBool(value string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "ja", "true", "1", "waar":
		return true
	case "nee", "false", "0", "onwaar":
		return false
	default:
		return def
	}
}

// FormatDutchBool is the export-side counterpart of ParseDutchBool.
func FormatDutchBool(value bool) string {
	if value {
		return "Ja"
	}
	return "Nee"
}

var (
	dmyDatePattern = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// NormalizeDate converts DD/MM/YYYY into ISO YYYY-MM-DD and passes ISO dates
// through. Anything else is returned unmodified rather than rejected.
func NormalizeDate(value string) string {
	value = strings.TrimSpace(value)
	if isoDatePattern.MatchString(value) {
		return value
	}
	if m := dmyDatePattern.FindStringSubmatch(value); m != nil {
		day := m[1]
		month := m[2]
		if len(day) == 1 {
			day = "0" + day
		}
		if len(month) == 1 {
			month = "0" + month
		}
		return m[3] + "-" + month + "-" + day
	}
	return value
}

// FormatDutchDate converts an ISO date back into DD/MM/YYYY for exports.
// Non-ISO input is returned unmodified.
func FormatDutchDate(value string) string {
	value = strings.TrimSpace(value)
	if !isoDatePattern.MatchString(value) {
		return value
	}
	return value[8:10] + "/" + value[5:7] + "/" + value[0:4]
}
