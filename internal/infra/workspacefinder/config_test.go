package workspacefinder

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Nina181/kcat-flux-relationship/internal/domain"
)

func TestLoadConfig_AppliesDefaults(t *testing.T) {
	t.Setenv("KCATFLUX_CONTACT_EMAIL", "")
	t.Setenv("KCATFLUX_API_KEY", "")
	t.Setenv("NCBI_API_KEY", "")

	root := filepath.Join(t.TempDir(), "ws")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	// Partial config (no cache/paths)
	content := []byte("kcatflux:\n  directory:\n    contact_email: lab@example.org\n")
	if err := os.WriteFile(filepath.Join(root, ConfigFile), content, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}

	if cfg.Directory.ContactEmail != "lab@example.org" {
		t.Fatalf("expected email from file, got=%q", cfg.Directory.ContactEmail)
	}
	if cfg.Directory.MinInterval != 340*time.Millisecond {
		t.Fatalf("expected default min interval, got=%v", cfg.Directory.MinInterval)
	}
	if want := filepath.Join(root, ".kcatflux", "lineages.json.gz"); cfg.Cache.Path != want {
		t.Fatalf("expected cache path=%s, got=%s", want, cfg.Cache.Path)
	}
	if want := filepath.Join(root, "reports"); cfg.Paths.ReportsDir != want {
		t.Fatalf("expected reports dir=%s, got=%s", want, cfg.Paths.ReportsDir)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(t.TempDir())
	if !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected KindNotFound, got: %v", err)
	}
}
