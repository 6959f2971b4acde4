package config

import (
	"fmt"
	"os"
	"testing"
)

// TestMain refuses to run unless GO_ENV=test. Load and ConnectDatabase read
// .env files and DATABASE_URL, so a development shell could otherwise point
// these tests at a real NageshCare database.
func TestMain(m *testing.M) {
	if env := os.Getenv("GO_ENV"); env != "test" {
		fmt.Fprintf(os.Stderr, "config tests need GO_ENV=test (got %q); run: GO_ENV=test go test ./config/...\n", env)
		os.Exit(1)
	}

	code := m.Run()
	DB = nil
	appConfig = nil
	os.Exit(code)
}
