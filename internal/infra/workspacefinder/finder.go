package workspacefinder

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/Nina181/kcat-flux-relationship/internal/domain"
	"github.com/Nina181/kcat-flux-relationship/internal/ports"
)

// StateDir holds the lineage cache and logs. A directory that has one but lost
// its kcatflux.yaml still counts as a workspace so the cache is not orphaned.
const StateDir = ".kcatflux"

// Finder walks upward from a directory until it meets a workspace marker.
type Finder struct {
	// Markers are checked in order in every directory. The first one is the config file.
	Markers []string
}

var _ ports.WorkspaceLocator = (*Finder)(nil)

func NewFinder() *Finder {
	return &Finder{Markers: []string{ConfigFile, StateDir}}
}

func (f *Finder) FindRoot(startDir string) (string, error) {
	if startDir == "" {
		return "", findErr(startDir, domain.KindInvalidConfig, errors.New("start directory is empty"))
	}

	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", findErr(startDir, domain.KindExecution, err)
	}
	if fi, serr := os.Stat(dir); serr == nil && !fi.IsDir() {
		dir = filepath.Dir(dir)
	}

	for dir = filepath.Clean(dir); ; dir = filepath.Dir(dir) {
		if f.isRoot(dir) {
			return dir, nil
		}
		if filepath.Dir(dir) == dir {
			return "", findErr(startDir, domain.KindNotFound, domain.ErrNotFound)
		}
	}
}

func (f *Finder) isRoot(dir string) bool {
	markers := f.Markers
	if len(markers) == 0 {
		markers = []string{ConfigFile}
	}
	for _, m := range markers {
		if _, err := os.Stat(filepath.Join(dir, m)); err == nil {
			return true
		}
	}
	return false
}

func findErr(start string, kind domain.ErrorKind, err error) error {
	return &domain.OpError{Op: "workspacefinder.findroot", Kind: kind, Path: start, Err: err}
}
