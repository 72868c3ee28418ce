package drive

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// Watcher imports new or modified statements from one folder. A file is
// re-imported only when its modification time changes.
type Watcher struct {
	source Source
	ingest *IngestService

	mu   sync.Mutex
	seen map[string]string
}

func NewWatcher(source Source, ingest *IngestService) *Watcher {
	return &Watcher{source: source, ingest: ingest, seen: make(map[string]string)}
}

// Sync ingests every unseen statement under folderPath for userID. A failed
// file is reported in its result and retried on the next sync.
func (w *Watcher) Sync(ctx context.Context, userID int64, folderPath string) ([]IngestResult, error) {
	folderID, err := w.source.FindFolderByPath(ctx, folderPath)
	if err != nil {
		return nil, err
	}

	files, err := w.source.ListFiles(ctx, folderID)
	if err != nil {
		return nil, err
	}

	results := make([]IngestResult, 0)
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		if f.MimeType == folderMimeType || !Supported(f.Name) || !w.changed(f) {
			continue
		}

		res, err := w.ingest.IngestFile(ctx, userID, f)
		if err != nil {
			log.Warn().Err(err).Str("file", f.Name).Msg("Statement ingest failed")
			res.Error = err.Error()
		} else {
			w.markSeen(f)
		}
		results = append(results, res)
	}

	return results, nil
}

func (w *Watcher) changed(f *File) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	modified, ok := w.seen[f.ID]
	return !ok || modified != f.ModifiedTime
}

func (w *Watcher) markSeen(f *File) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.seen[f.ID] = f.ModifiedTime
}
