package workspacefinder

import (
	"os"
	"path/filepath"

	"github.com/Nina181/kcat-flux-relationship/internal/domain"
	"github.com/Nina181/kcat-flux-relationship/internal/infra/config"
)

// ConfigFile marks a workspace root.
const ConfigFile = "kcatflux.yaml"

// LoadConfig loads kcatflux.yaml from the workspace root, applies defaults and
// environment overrides, and anchors relative paths at the root.
func LoadConfig(root string) (domain.Config, error) {
	path := filepath.Join(root, ConfigFile)
	if _, err := os.Stat(path); err != nil {
		return domain.DefaultConfig(), &domain.OpError{
			Op:   "workspacefinder.loadconfig",
			Kind: domain.KindNotFound,
			Path: path,
			Err:  err,
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}

	cfg.Cache.Path = anchor(root, cfg.Cache.Path)
	cfg.Paths.ReportsDir = anchor(root, cfg.Paths.ReportsDir)
	return cfg, nil
}

func anchor(root, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}
