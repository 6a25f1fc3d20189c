package models

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"bitbucket.org/mmdatafocus/leden_backend/config"
	"bitbucket.org/mmdatafocus/leden_backend/utils"
	"github.com/xuri/excelize/v2"
)

// memberExportColumns is the fixed spreadsheet schema shared by the CSV and
// xlsx exports and the CSV import.
var memberExportColumns = []string{
	"Voornaam",
	"Achternaam",
	"Email",
	"Telefoon",
	"Adres",
	"Postcode",
	"Woonplaats",
	"IBAN",
	"Geboortedatum",
	"Lid sinds",
	"Lidmaatschap",
	"Bedrijf",
	"Nieuwsbrief",
	"Vrijwilliger",
	"Donateur",
	"Bestuurslid",
	"Notities",
}

// companyNamesById loads the company names for an export in one query; the
// member rows only carry the foreign key.
func companyNamesById(ctx context.Context) (map[int]string, error) {
	db := config.GetDB()
	var companies []*Company
	if err := db.WithContext(ctx).Find(&companies).Error; err != nil {
		return nil, err
	}
	names := make(map[int]string, len(companies))
	for _, c := range companies {
		names[c.ID] = c.Name
	}
	return names, nil
}

func memberExportRow(member *Member, companyNames map[int]string) []string {
	return []string{
		member.FirstName,
		member.LastName,
		member.Email,
		member.Phone,
		member.Address,
		member.PostalCode,
		member.City,
		member.Iban,
		utils.FormatDutchDate(member.BirthDate),
		utils.FormatDutchDate(member.MemberSince),
		string(member.MembershipType),
		companyNames[member.CompanyId],
		utils.FormatDutchBool(member.HasSegment(MemberSegmentNewsletter)),
		utils.FormatDutchBool(member.HasSegment(MemberSegmentVolunteer)),
		utils.FormatDutchBool(member.HasSegment(MemberSegmentDonor)),
		utils.FormatDutchBool(member.HasSegment(MemberSegmentBoard)),
		member.Notes,
	}
}

// ExportMembersCSV renders all members as a comma separated file with a UTF-8
// BOM prefix so spreadsheet programs open it with the right encoding.
func ExportMembersCSV(ctx context.Context) (string, error) {
	members, err := GetMembers(ctx, nil, nil, nil)
	if err != nil {
		return "", err
	}
	companyNames, err := companyNamesById(ctx)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(utils.UTF8BOM)
	sb.WriteString(strings.Join(memberExportColumns, ","))
	sb.WriteString("\n")

	for _, member := range members {
		fields := memberExportRow(member, companyNames)
		escaped := make([]string, len(fields))
		for i, f := range fields {
			escaped[i] = utils.EscapeCSVField(f)
		}
		sb.WriteString(strings.Join(escaped, ","))
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// ExportMembersXlsx renders the same columns as the CSV export into a
// single-sheet workbook.
func ExportMembersXlsx(ctx context.Context) (*bytes.Buffer, error) {
	members, err := GetMembers(ctx, nil, nil, nil)
	if err != nil {
		return nil, err
	}
	companyNames, err := companyNamesById(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := "Leden"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for col, title := range memberExportColumns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return nil, err
		}
	}

	for row, member := range members {
		fields := memberExportRow(member, companyNames)
		for col, value := range fields {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf, nil
}
