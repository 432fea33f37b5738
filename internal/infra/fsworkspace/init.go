package fsworkspace

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Nina181/kcat-flux-relationship/internal/app/template"
	"github.com/Nina181/kcat-flux-relationship/internal/domain"
	"github.com/Nina181/kcat-flux-relationship/internal/ports"
)

type Initializer struct{}

var _ ports.WorkspaceInitializer = (*Initializer)(nil)

func NewInitializer() *Initializer {
	return &Initializer{}
}

// Init lays out a workspace. Existing files are kept unless force is set.
func (i *Initializer) Init(spec domain.WorkspaceSpec, force bool) error {
	root := filepath.Clean(spec.Root)

	dirs := []string{
		filepath.Join(root, "data"),
		filepath.Join(root, "reports"),
		filepath.Join(root, ".kcatflux", "logs"),
	}

	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return initErr(d, err)
		}
	}

	if err := ensureGitignore(root); err != nil {
		return initErr(filepath.Join(root, ".gitignore"), err)
	}

	vars := spec.TemplateVars()
	return fs.WalkDir(templatesFS, "templates", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel := strings.TrimPrefix(p, "templates/")
		dst := filepath.Join(root, filepath.FromSlash(rel))

		if !force {
			if _, statErr := os.Stat(dst); statErr == nil {
				return nil
			}
		}

		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return initErr(dst, err)
		}

		b, err := fs.ReadFile(templatesFS, p)
		if err != nil {
			return initErr(p, err)
		}

		content := string(b)
		mode := fs.FileMode(0o644)
		if strings.HasSuffix(rel, ".yaml") {
			content, err = template.RenderString(content, vars)
			if err != nil {
				return err
			}
			// The config may carry an API key.
			if spec.APIKey != "" {
				mode = 0o600
			}
		}

		if err := os.WriteFile(dst, []byte(content), mode); err != nil {
			return initErr(dst, err)
		}
		return nil
	})
}

// ignored keeps caches, logs, reports and interrupted atomic writes out of git.
// Input tables under data/ stay tracked.
var ignored = []string{".kcatflux/", "reports/", "*.tmp"}

const ignoreHeader = "# kcatflux"

// ensureGitignore appends whatever kcatflux entries are missing, under one header.
func ensureGitignore(root string) error {
	path := filepath.Join(root, ".gitignore")

	b, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	existing := string(b)

	have := map[string]bool{}
	for _, line := range strings.Split(existing, "\n") {
		have[strings.TrimSpace(line)] = true
	}

	var block []string
	if !have[ignoreHeader] {
		block = append(block, ignoreHeader)
	}
	added := 0
	for _, e := range ignored {
		if !have[e] {
			block = append(block, e)
			added++
		}
	}
	if added == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(existing)
	if existing != "" {
		if !strings.HasSuffix(existing, "\n") {
			sb.WriteByte('\n')
		}
		sb.WriteByte('\n')
	}
	sb.WriteString(strings.Join(block, "\n"))
	sb.WriteByte('\n')

	return os.WriteFile(path, []byte(sb.String()), 0o644)
}

func initErr(path string, err error) error {
	return &domain.OpError{
		Op:   "fsworkspace.init",
		Kind: domain.KindExecution,
		Path: path,
		Err:  err,
	}
}
