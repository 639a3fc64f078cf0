// internal/storage/archive/archiver.go
package archive

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/charmingdata/stock-market-trading/internal/core"
)

// NewStorage creates a storage backend by kind ("localfs" or "s3").
func NewStorage(kind, path string, s3cfg S3Config) (Storage, error) {
	switch kind {
	case "localfs":
		return NewLocalFS(path)
	case "s3":
		return NewS3(s3cfg)
	default:
		return nil, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown archive type %q", kind))
	}
}

// Archiver stores one simulation run's output files under a unique
// run ID so past runs can be compared after the inputs change.
type Archiver struct {
	store Storage
	log   *zap.Logger
}

// NewArchiver creates an Archiver on the given backend.
func NewArchiver(store Storage, log *zap.Logger) *Archiver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Archiver{store: store, log: log}
}

// ArchiveRun writes the named files under a date-prefixed run ID and
// returns the ID. Keys are "<YYYY-MM-DD>/<uuid>/<filename>".
func (a *Archiver) ArchiveRun(ctx context.Context, files map[string]string) (string, error) {
	runID := fmt.Sprintf("%s/%s", time.Now().UTC().Format("2006-01-02"), uuid.NewString())

	for name, content := range files {
		key := runID + "/" + name
		if err := a.store.Write(ctx, key, []byte(content)); err != nil {
			return "", core.WrapError(core.ErrArchiveFailed,
				fmt.Errorf("writing %s: %w", key, err))
		}
	}

	a.log.Info("archived run output",
		zap.String("run_id", runID),
		zap.Int("files", len(files)))
	return runID, nil
}

// ListRuns returns the archived file keys under a date prefix
// ("YYYY-MM-DD"), or all keys when the prefix is empty.
func (a *Archiver) ListRuns(ctx context.Context, datePrefix string) ([]string, error) {
	keys, err := a.store.List(ctx, datePrefix)
	if err != nil {
		return nil, core.WrapError(core.ErrArchiveFailed,
			fmt.Errorf("listing %q: %w", datePrefix, err))
	}
	return keys, nil
}
