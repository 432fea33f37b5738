package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	DefaultDir  = ".kcatflux/logs"
	DefaultFile = "kcatflux.log"
)

type Config struct {
	Root  string
	Debug bool
}

var (
	mu      sync.RWMutex
	global  = discard()
	logFile *os.File
	logPath string
)

// Setup points the global logger at <root>/.kcatflux/logs/kcatflux.log.
// On failure the logger stays silent and the error is returned.
func Setup(cfg Config) (func() error, error) {
	root := filepath.Clean(cfg.Root)
	if cfg.Root == "" {
		root = "."
	}

	dir := filepath.Join(root, filepath.FromSlash(DefaultDir))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		_ = Close()
		return nil, err
	}

	path := filepath.Join(dir, DefaultFile)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		_ = Close()
		return nil, err
	}

	l := New(f, cfg.Debug)

	mu.Lock()
	if logFile != nil {
		_ = logFile.Close()
	}
	global = l
	logFile = f
	logPath = path
	mu.Unlock()

	l.Info("logger.initialized", "path", path, "debug", cfg.Debug)

	return Close, nil
}

// Close releases the log file and silences the global logger. Safe to call twice.
func Close() error {
	mu.Lock()
	defer mu.Unlock()

	var cerr error
	if logFile != nil {
		cerr = logFile.Close()
	}
	logFile = nil
	logPath = ""
	global = discard()
	return cerr
}

// New builds the JSON logger used by every component: UTC timestamps and
// secret-looking attributes masked.
func New(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && a.Value.Kind() == slog.KindTime {
				a.Value = slog.StringValue(a.Value.Time().UTC().Format(time.RFC3339Nano))
			}
			if isSecret(a.Key) {
				a.Value = slog.StringValue("********")
			}
			return a
		},
	})
	return slog.New(h)
}

func L() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

func Path() string {
	mu.RLock()
	defer mu.RUnlock()
	return logPath
}

func isSecret(key string) bool {
	k := strings.ToLower(key)
	return k == "api_key" || strings.Contains(k, "token") || strings.Contains(k, "secret")
}

func discard() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}
