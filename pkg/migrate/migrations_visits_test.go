package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readMigration(t *testing.T, pattern string) string {
	t.Helper()

	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matches %q", pattern)
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestVisitsMigrationEnforcesSingleOpenVisit(t *testing.T) {
	content := readMigration(t, "*_create_visits_and_photos.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS visits",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_visits_open_promoter",
		"WHERE check_out_at IS NULL",
		"CHECK (check_out_at IS NULL OR check_out_at >= check_in_at)",
		"DROP TABLE IF EXISTS visits",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestPhotosMigrationEnforcesFacadeUniqueness(t *testing.T) {
	content := readMigration(t, "*_create_visits_and_photos.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS photos",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_photos_visit_facade",
		"WHERE type <> 'other'",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_photo_industries_pair ON photo_industries (photo_id, industry_id)",
		"FOREIGN KEY (visit_id) REFERENCES visits(id) ON DELETE CASCADE",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestRoutesMigrationEnforcesUniqueStops(t *testing.T) {
	content := readMigration(t, "*_create_routes_and_quotas.sql")

	checks := []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_route_assignments_stop ON route_assignments (promoter_id, store_id)",
		"CHECK (expected_hours IS NULL OR expected_hours >= 0)",
		"CHECK (expected_photos >= 0)",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
