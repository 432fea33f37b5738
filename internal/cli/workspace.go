package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Nina181/kcat-flux-relationship/internal/domain"
	"github.com/Nina181/kcat-flux-relationship/internal/infra/entrez"
	"github.com/Nina181/kcat-flux-relationship/internal/infra/lineagestore"
	"github.com/Nina181/kcat-flux-relationship/internal/infra/logger"
	"github.com/Nina181/kcat-flux-relationship/internal/infra/reportstore"
	"github.com/Nina181/kcat-flux-relationship/internal/infra/tablefile"
	"github.com/Nina181/kcat-flux-relationship/internal/infra/workspacefinder"
	"github.com/Nina181/kcat-flux-relationship/internal/ports"
	"github.com/Nina181/kcat-flux-relationship/internal/usecase"
)

type workspaceCtx struct {
	root string
	cfg  domain.Config

	cache   *lineagestore.Store
	tables  *tablefile.Store
	reports *reportstore.JSONStore
}

func loadWorkspace(workspaceFlag string) (*workspaceCtx, error) {
	root, err := resolveWorkspaceRoot(workspaceFlag)
	if err != nil {
		return nil, err
	}

	cfg, err := workspacefinder.LoadConfig(root)
	if err != nil {
		return nil, err
	}

	return &workspaceCtx{
		root:    root,
		cfg:     cfg,
		cache:   lineagestore.NewStore(cfg.Cache.Path, lineagestore.WithLogger(logger.L())),
		tables:  tablefile.NewStore(),
		reports: reportstore.NewJSONStore(cfg.Paths.ReportsDir, reportstore.WithIndex(true)),
	}, nil
}

func resolveWorkspaceRoot(workspaceFlag string) (string, error) {
	w := strings.TrimSpace(workspaceFlag)
	if w != "" {
		abs, err := filepath.Abs(w)
		if err != nil {
			return "", fmt.Errorf("invalid workspace path: %w", err)
		}
		return abs, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	locator := workspacefinder.NewFinder()
	root, err := locator.FindRoot(wd)
	if err != nil {
		return "", fmt.Errorf("workspace not found from %q (tip: run `kcatflux init`): %w", wd, err)
	}
	return root, nil
}

// resolveDataPath accepts paths relative to the working directory or the workspace root.
func resolveDataPath(ws *workspaceCtx, arg string) (string, error) {
	in := strings.TrimSpace(arg)
	if in == "" {
		return "", fmt.Errorf("path is required")
	}
	if filepath.IsAbs(in) || fileExists(in) {
		return filepath.Abs(in)
	}
	return filepath.Join(ws.root, in), nil
}

// outputPath resolves a path that may not exist yet.
func outputPath(ws *workspaceCtx, arg string) (string, error) {
	in := strings.TrimSpace(arg)
	if in == "" {
		return "", fmt.Errorf("output path is required")
	}
	if filepath.IsAbs(in) {
		return in, nil
	}
	if dir := filepath.Dir(in); dir == "." || fileExists(dir) {
		return filepath.Abs(in)
	}
	return filepath.Join(ws.root, in), nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

type resolveOptions struct {
	source   string
	save     bool
	progress bool
	stderr   io.Writer
}

// savedReport remembers the id the report store assigned.
type savedReport struct {
	ports.ReportStore
	id string
}

func (s *savedReport) SaveReport(r domain.ResolutionReport) (string, error) {
	id, err := s.ReportStore.SaveReport(r)
	s.id = id
	return id, err
}

// resolveIdentifiers runs a batch inside a cache scope. The directory client is
// built (and its config validated) before the cache or network is touched.
func resolveIdentifiers(ctx context.Context, ws *workspaceCtx, ids []string, opts resolveOptions) (domain.ResolutionReport, string, error) {
	client, err := entrez.New(ws.cfg.Directory, entrez.WithLogger(logger.L()))
	if err != nil {
		return domain.ResolutionReport{}, "", err
	}

	ucOpts := []usecase.ResolveOption{usecase.WithLogger(logger.L())}

	saved := &savedReport{ReportStore: ws.reports}
	if opts.save {
		ucOpts = append(ucOpts, usecase.WithReportStore(saved))
	}

	var finish func()
	if opts.progress && opts.stderr != nil {
		var tick usecase.ProgressFunc
		tick, finish = newProgress(opts.stderr)
		ucOpts = append(ucOpts, usecase.WithProgress(tick))
	}

	var report domain.ResolutionReport
	err = usecase.WithCache(ws.cache, func(cerr error) {
		logger.L().Warn("lineagestore.load.corrupt", "path", ws.cache.Path(), "error", cerr.Error())
		printWarning(opts.stderr, "lineage cache unreadable, starting empty: %v", cerr)
	}, func() error {
		var rerr error
		report, rerr = usecase.NewResolveBatch(ws.cache, client, ucOpts...).Execute(ctx, opts.source, ids)
		return rerr
	})
	if finish != nil {
		finish()
	}

	return report, saved.id, err
}
