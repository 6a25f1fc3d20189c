package models

import (
	"context"
	"fmt"
	"strings"

	"bitbucket.org/mmdatafocus/leden_backend/config"
	"bitbucket.org/mmdatafocus/leden_backend/utils"
)

type ImportRowError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

type ImportResult struct {
	Imported int              `json:"imported"`
	Failed   int              `json:"failed"`
	Errors   []ImportRowError `json:"errors"`
}

// importHeaderIndex maps normalized column titles to their position so column
// order in the uploaded file does not matter.
func importHeaderIndex(fields []string) map[string]int {
	index := make(map[string]int, len(fields))
	for i, f := range fields {
		index[strings.ToLower(strings.TrimSpace(f))] = i
	}
	return index
}

func importField(fields []string, index map[string]int, column string) string {
	i, ok := index[column]
	if !ok || i >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[i])
}

// resolveImportCompany looks a company up by name, creating it on first
// occurrence. The memo map keeps one batch from hitting the database once
// per row for the same company.
func resolveImportCompany(ctx context.Context, name string, memo map[string]int) (int, error) {
	if name == "" {
		return 0, nil
	}
	key := strings.ToLower(name)
	if id, ok := memo[key]; ok {
		return id, nil
	}

	company, err := FindCompanyByName(ctx, name)
	if err != nil {
		return 0, err
	}
	if company == nil {
		db := config.GetDB()
		company = &Company{Name: name}
		// db action
		if err := db.WithContext(ctx).Create(company).Error; err != nil {
			return 0, err
		}
		utils.ClearRedisList[Company]()
	}
	memo[key] = company.ID
	return company.ID, nil
}

func importSegments(fields []string, index map[string]int) string {
	segments := make([]MemberSegment, 0, 4)
	if utils.ParseDutchBool(importField(fields, index, "nieuwsbrief"), false) {
		segments = append(segments, MemberSegmentNewsletter)
	}
	if utils.ParseDutchBool(importField(fields, index, "vrijwilliger"), false) {
		segments = append(segments, MemberSegmentVolunteer)
	}
	if utils.ParseDutchBool(importField(fields, index, "donateur"), false) {
		segments = append(segments, MemberSegmentDonor)
	}
	if utils.ParseDutchBool(importField(fields, index, "bestuurslid"), false) {
		segments = append(segments, MemberSegmentBoard)
	}
	return joinSegments(segments)
}

// ImportMembersCSV reads an uploaded member spreadsheet. Rows are inserted
// one by one without a wrapping transaction: a bad row is reported and
// skipped, rows imported before it stay committed.
func ImportMembersCSV(ctx context.Context, data string) (*ImportResult, error) {
	data = strings.TrimPrefix(data, utils.UTF8BOM)
	lines := strings.Split(strings.ReplaceAll(data, "\r\n", "\n"), "\n")

	result := &ImportResult{Errors: []ImportRowError{}}
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return nil, fmt.Errorf("empty import file")
	}

	delimiter := utils.DetectDelimiter(lines[0])
	index := importHeaderIndex(utils.ParseCSVLine(lines[0], delimiter))

	companyMemo := make(map[string]int)
	db := config.GetDB()

	for lineNo, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := utils.ParseCSVLine(line, delimiter)

		firstName := importField(fields, index, "voornaam")
		lastName := importField(fields, index, "achternaam")
		if firstName == "" || lastName == "" {
			result.Failed++
			result.Errors = append(result.Errors, ImportRowError{
				Line:    lineNo + 2,
				Message: "first and last name are required",
			})
			continue
		}

		companyId, err := resolveImportCompany(ctx, importField(fields, index, "bedrijf"), companyMemo)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, ImportRowError{
				Line:    lineNo + 2,
				Message: fmt.Sprintf("company: %v", err),
			})
			continue
		}

		membershipType := MembershipTypeRegular
		if raw := importField(fields, index, "lidmaatschap"); raw != "" {
			membershipType = MembershipType(raw)
		}

		member := Member{
			FirstName:      firstName,
			LastName:       lastName,
			Email:          importField(fields, index, "email"),
			Phone:          importField(fields, index, "telefoon"),
			Address:        importField(fields, index, "adres"),
			PostalCode:     importField(fields, index, "postcode"),
			City:           importField(fields, index, "woonplaats"),
			Iban:           importField(fields, index, "iban"),
			BirthDate:      utils.NormalizeDate(importField(fields, index, "geboortedatum")),
			MemberSince:    utils.NormalizeDate(importField(fields, index, "lid sinds")),
			MembershipType: membershipType,
			CompanyId:      companyId,
			Segments:       importSegments(fields, index),
			Notes:          importField(fields, index, "notities"),
		}

		// db action
		if err := db.WithContext(ctx).Create(&member).Error; err != nil {
			result.Failed++
			result.Errors = append(result.Errors, ImportRowError{
				Line:    lineNo + 2,
				Message: err.Error(),
			})
			continue
		}
		result.Imported++
	}

	return result, nil
}
