package usecase

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/Nina181/kcat-flux-relationship/internal/domain"
	"github.com/Nina181/kcat-flux-relationship/internal/ports"
)

type InitWorkspace struct {
	initializer ports.WorkspaceInitializer
}

func NewInitWorkspace(initializer ports.WorkspaceInitializer) *InitWorkspace {
	return &InitWorkspace{initializer: initializer}
}

// Execute checks the workspace settings before touching the filesystem. The contact email
// may be left for later, but a malformed one would only fail on the first lookup.
func (uc *InitWorkspace) Execute(spec domain.WorkspaceSpec, force bool) error {
	spec.Root = strings.TrimSpace(spec.Root)
	spec.ContactEmail = strings.TrimSpace(spec.ContactEmail)
	spec.APIKey = strings.TrimSpace(spec.APIKey)

	if spec.Root == "" {
		return initInvalid("", errors.New("workspace root is empty"))
	}
	if spec.ContactEmail != "" && !strings.Contains(spec.ContactEmail, "@") {
		return initInvalid(spec.Root, errors.New("contact email must be an email address"))
	}
	spec.Root = filepath.Clean(spec.Root)

	return uc.initializer.Init(spec, force)
}

func initInvalid(path string, err error) error {
	return &domain.OpError{Op: "usecase.init", Kind: domain.KindInvalidConfig, Path: path, Err: err}
}
