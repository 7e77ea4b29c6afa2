package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReservationMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_reservation_tables.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no reservation migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE customers",
		"CREATE TABLE reservations",
		"CONSTRAINT uq_reservations_table_slot UNIQUE (table_number, start_time)",
		"CHECK (status IN ('pending', 'active'))",
		"calendar_token_ciphertext text NOT NULL",
		"CREATE TABLE calendar_events",
		"CREATE TABLE app_configs",
		"DROP TABLE reservations",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
