package models

import (
	"context"
	"testing"

	"bitbucket.org/mmdatafocus/leden_backend/config"
)

// Regression: single-record company reads go through the redis cache, and
// mutations invalidate the cached record so the next read sees fresh data.
func TestGetCompany_CacheReadThroughAndInvalidation(t *testing.T) {
	setupIntegrationEnv(t)
	ctx := context.Background()

	company, err := CreateCompany(ctx, &NewCompany{Name: "Slagerij Smit"})
	if err != nil {
		t.Fatalf("CreateCompany: %v", err)
	}

	// first read populates the cache
	if _, err := GetCompany(ctx, company.ID); err != nil {
		t.Fatalf("GetCompany: %v", err)
	}

	// change the row behind the cache; a cached read must still serve the
	// old name, proving the database was not hit
	db := config.GetDB()
	if err := db.Model(&Company{}).Where("id = ?", company.ID).
		Update("name", "Slagerij Smit & Zonen").Error; err != nil {
		t.Fatalf("update company row: %v", err)
	}
	cached, err := GetCompany(ctx, company.ID)
	if err != nil {
		t.Fatalf("GetCompany (cached): %v", err)
	}
	if cached.Name != "Slagerij Smit" {
		t.Fatalf("expected cached name; got %q", cached.Name)
	}

	// a regular update clears the key, the next read is fresh
	if _, err := UpdateCompany(ctx, company.ID, &NewCompany{Name: "Slagerij Jansen"}); err != nil {
		t.Fatalf("UpdateCompany: %v", err)
	}
	fresh, err := GetCompany(ctx, company.ID)
	if err != nil {
		t.Fatalf("GetCompany (after update): %v", err)
	}
	if fresh.Name != "Slagerij Jansen" {
		t.Fatalf("expected fresh name after invalidation; got %q", fresh.Name)
	}
}
