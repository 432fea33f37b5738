package usecase

import (
	"errors"
	"strings"
	"testing"

	"github.com/Nina181/kcat-flux-relationship/internal/domain"
)

func TestValidateConfig_MissingCredential(t *testing.T) {
	err := NewValidateConfig().Execute(domain.DefaultConfig())
	if !errors.Is(err, domain.ErrMissingCredential) || !domain.IsKind(err, domain.KindInvalidConfig) {
		t.Fatalf("expected missing credential config error, got %v", err)
	}
}

func TestValidateConfig_CollectsProblems(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.Directory.ContactEmail = "me@example.org"
	cfg.Directory.MaxRetries = -1
	cfg.Mapping.Depth = 0
	cfg.Kcat.MinBiGGAccuracy = 2

	err := NewValidateConfig().Execute(cfg)
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	msg := err.Error()
	for _, want := range []string{"max_retries", "mapping.depth", "min_bigg_accuracy"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected %q in %q", want, msg)
		}
	}
}

func TestValidateConfig_OK(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.Directory.ContactEmail = "me@example.org"
	if err := NewValidateConfig().Execute(cfg); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}
