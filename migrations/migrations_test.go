package migrations

import (
	"testing"

	"github.com/danthegoodman1/hitmerge/utils"
)

func TestEmbeddedMigrationsParse(t *testing.T) {
	found, err := source().FindMigrations()
	if err != nil {
		t.Fatal(err)
	}
	if len(found) == 0 {
		t.Fatal("no migrations embedded")
	}
	if found[0].Id != "1_combine_runs.sql" {
		t.Fatalf("unexpected first migration %s", found[0].Id)
	}
	if len(found[0].Up) == 0 || len(found[0].Down) == 0 {
		t.Fatal("expected up and down statements")
	}
}

func TestRunMigrations(t *testing.T) {
	if utils.CRDB_DSN == "" {
		t.Skip("CRDB_DSN not set")
	}
	if _, err := RunMigrations(utils.CRDB_DSN); err != nil {
		t.Fatal(err)
	}
	if err := CheckMigrations(utils.CRDB_DSN); err != nil {
		t.Fatal(err)
	}
}
