package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadPrefersFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key")
	if err := os.WriteFile(path, []byte("  from-file\n"), 0o600); err != nil {
		t.Fatalf("write secret: %v", err)
	}

	t.Setenv("CV_SCREENER_TEST_SECRET", "from-env")

	got, err := Load(Source{Name: "api key", File: path, Env: "CV_SCREENER_TEST_SECRET", Value: "inline"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "from-file" {
		t.Fatalf("expected file secret, got %q", got)
	}
}

func TestLoadFallsBackToEnvThenValue(t *testing.T) {
	t.Setenv("CV_SCREENER_TEST_SECRET", "from-env")

	got, err := Load(Source{Env: "CV_SCREENER_TEST_SECRET", Value: "inline"})
	if err != nil || got != "from-env" {
		t.Fatalf("expected env secret, got %q (%v)", got, err)
	}

	got, err = Load(Source{Env: "CV_SCREENER_TEST_UNSET", Value: " inline "})
	if err != nil || got != "inline" {
		t.Fatalf("expected inline secret, got %q (%v)", got, err)
	}
}

func TestLoadErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty")
	if err := os.WriteFile(path, []byte("   "), 0o600); err != nil {
		t.Fatalf("write secret: %v", err)
	}

	if _, err := Load(Source{Name: "token", File: path}); err == nil || !strings.Contains(err.Error(), "is empty") {
		t.Fatalf("expected empty file error, got %v", err)
	}

	if _, err := Load(Source{Name: "token", Env: "CV_SCREENER_TEST_UNSET"}); err == nil || !strings.Contains(err.Error(), "CV_SCREENER_TEST_UNSET") {
		t.Fatalf("expected hint about env variable, got %v", err)
	}
}
