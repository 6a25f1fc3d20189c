package models

import (
	"context"
	"testing"

	"bitbucket.org/mmdatafocus/leden_backend/config"
)

// Regression: a CSV export must import back losslessly, including Dutch
// date and boolean formatting, quoted free text and company re-resolution.
func TestMemberCSVExportImportRoundTrip(t *testing.T) {
	setupIntegrationEnv(t)
	ctx := context.Background()

	company, err := CreateCompany(ctx, &NewCompany{Name: "Bakkerij De Vries"})
	if err != nil {
		t.Fatalf("CreateCompany: %v", err)
	}
	original, err := CreateMember(ctx, &NewMember{
		FirstName:   "Anna",
		LastName:    "de Vries",
		Email:       "anna@devries.nl",
		Iban:        "NL91ABNA0417164300",
		BirthDate:   "12/05/1980",
		MemberSince: "01/01/2015",
		CompanyId:   company.ID,
		Segments:    []MemberSegment{MemberSegmentNewsletter, MemberSegmentVolunteer},
		Notes:       `Zegt "hoi", betaalt contant`,
	})
	if err != nil {
		t.Fatalf("CreateMember: %v", err)
	}
	if original.BirthDate != "1980-05-12" {
		t.Fatalf("expected normalized birth date 1980-05-12; got %q", original.BirthDate)
	}

	data, err := ExportMembersCSV(ctx)
	if err != nil {
		t.Fatalf("ExportMembersCSV: %v", err)
	}

	// wipe the members so the import starts clean; the company stays and must
	// be resolved by name instead of recreated
	db := config.GetDB()
	if err := db.Exec("DELETE FROM member_tags").Error; err != nil {
		t.Fatalf("clear member_tags: %v", err)
	}
	if err := db.Exec("DELETE FROM members").Error; err != nil {
		t.Fatalf("clear members: %v", err)
	}

	result, err := ImportMembersCSV(ctx, data)
	if err != nil {
		t.Fatalf("ImportMembersCSV: %v", err)
	}
	if result.Failed != 0 {
		t.Fatalf("expected no failed rows; got %d (%v)", result.Failed, result.Errors)
	}
	if result.Imported != 1 {
		t.Fatalf("expected 1 imported row; got %d", result.Imported)
	}

	members, err := GetMembers(ctx, nil, nil, nil)
	if err != nil {
		t.Fatalf("GetMembers: %v", err)
	}
	if len(members) != 1 {
		t.Fatalf("expected 1 member after import; got %d", len(members))
	}

	got := members[0]
	if got.FirstName != "Anna" || got.LastName != "de Vries" {
		t.Fatalf("name did not round trip: %q %q", got.FirstName, got.LastName)
	}
	if got.Email != "anna@devries.nl" {
		t.Fatalf("email did not round trip: %q", got.Email)
	}
	if got.Iban != "NL91ABNA0417164300" {
		t.Fatalf("iban did not round trip: %q", got.Iban)
	}
	if got.BirthDate != "1980-05-12" {
		t.Fatalf("birth date did not round trip: %q", got.BirthDate)
	}
	if got.MemberSince != "2015-01-01" {
		t.Fatalf("member since did not round trip: %q", got.MemberSince)
	}
	if got.CompanyId != company.ID {
		t.Fatalf("expected company %d resolved by name; got %d", company.ID, got.CompanyId)
	}
	if !got.HasSegment(MemberSegmentNewsletter) || !got.HasSegment(MemberSegmentVolunteer) {
		t.Fatalf("segments did not round trip: %q", got.Segments)
	}
	if got.HasSegment(MemberSegmentBoard) || got.HasSegment(MemberSegmentDonor) {
		t.Fatalf("unexpected segments after import: %q", got.Segments)
	}
	if got.Notes != `Zegt "hoi", betaalt contant` {
		t.Fatalf("notes did not round trip: %q", got.Notes)
	}
}
