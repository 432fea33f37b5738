package usecase

import (
	"errors"
	"strings"

	"github.com/Nina181/kcat-flux-relationship/internal/domain"
)

// ValidateConfig checks a loaded configuration without touching the network.
type ValidateConfig struct{}

func NewValidateConfig() *ValidateConfig {
	return &ValidateConfig{}
}

func (uc *ValidateConfig) Execute(cfg domain.Config) error {
	if err := cfg.Directory.Validate(); err != nil {
		if errors.Is(err, domain.ErrMissingCredential) {
			return err
		}
		var ve *domain.ValidationError
		if !errors.As(err, &ve) {
			return err
		}
		return uc.collect(cfg, ve.Problems)
	}
	return uc.collect(cfg, nil)
}

func (uc *ValidateConfig) collect(cfg domain.Config, problems []string) error {
	if strings.TrimSpace(cfg.Cache.Path) == "" {
		problems = append(problems, "cache.path is required")
	}
	if strings.TrimSpace(cfg.Mapping.KeyColumn) == "" {
		problems = append(problems, "mapping.key_column is required")
	}
	if cfg.Mapping.Depth <= 0 {
		problems = append(problems, "mapping.depth must be positive")
	}
	if cfg.Kcat.MinBiGGAccuracy < 0 || cfg.Kcat.MinBiGGAccuracy > 1 {
		problems = append(problems, "kcat.min_bigg_accuracy must be within [0, 1]")
	}
	if len(problems) == 0 {
		return nil
	}
	return &domain.OpError{
		Op:   "config.validate",
		Kind: domain.KindInvalidConfig,
		Err:  &domain.ValidationError{Problems: problems},
	}
}
