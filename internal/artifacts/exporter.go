package artifacts

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"artidicia/internal/logging"
	"artidicia/internal/services"
)

const (
	lockFileName   = ".artidicia-export.lock"
	lockRetryDelay = 100 * time.Millisecond
)

// Exporter writes artifacts into one directory.
type Exporter struct {
	dir    string
	lock   *flock.Flock
	logger *slog.Logger
}

// NewExporter returns an exporter rooted at dir.
func NewExporter(dir string, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Exporter{
		dir:    dir,
		lock:   flock.New(filepath.Join(dir, lockFileName)),
		logger: logging.NewComponentLogger(logger, "exporter"),
	}
}

// Dir returns the export directory.
func (e *Exporter) Dir() string { return e.dir }

// Write stores each artifact and returns the paths written. Existing files
// are never overwritten; a numeric suffix is added instead.
func (e *Exporter) Write(ctx context.Context, artifacts ...Artifact) ([]string, error) {
	if len(artifacts) == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "export", "create dir", e.dir, err)
	}
	locked, err := e.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("acquire export lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("acquire export lock: %s busy", e.dir)
	}
	defer func() {
		if err := e.lock.Unlock(); err != nil {
			e.logger.Warn("failed to release export lock", logging.Error(err))
		}
	}()

	paths := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		path, err := e.writeOne(a)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
		e.logger.Debug("artifact written", logging.String("path", path), logging.Int("bytes", len(a.Data)))
	}
	e.logger.Info("artifacts exported", logging.String("dir", e.dir), logging.Int("count", len(paths)))
	return paths, nil
}

func (e *Exporter) writeOne(a Artifact) (string, error) {
	name := filepath.Base(strings.TrimSpace(a.Name))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "", services.Wrap(services.ErrValidation, "export", "write", "artifact has no name", nil)
	}
	path, err := e.freePath(name)
	if err != nil {
		return "", err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, a.Data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("rename %s: %w", name, err)
	}
	return path, nil
}

func (e *Exporter) freePath(name string) (string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	candidate := filepath.Join(e.dir, name)
	for n := 2; ; n++ {
		_, err := os.Stat(candidate)
		if errors.Is(err, fs.ErrNotExist) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("stat %s: %w", candidate, err)
		}
		candidate = filepath.Join(e.dir, stem+"_"+strconv.Itoa(n)+ext)
	}
}
