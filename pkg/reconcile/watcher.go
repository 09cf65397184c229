package reconcile

import (
	"context"
	"path"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch observes the receipts directory and logs files that appear without a
// matching ledger row (manual copies, interrupted uploads). It blocks until
// ctx is cancelled.
func (r *Reconciler) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir := filepath.Join(r.uploadDir, "receipts")
	if err := watcher.Add(dir); err != nil {
		return err
	}
	r.log.Info("watching receipts directory", zap.String("dir", dir))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) {
				continue
			}
			name := filepath.Base(ev.Name)
			if !isImageName(name) {
				continue
			}
			url := path.Join("/uploads/receipts", name)
			known, err := r.ledger.HasReceipt(ctx, url)
			if err != nil {
				r.log.Error("orphan check failed", zap.String("file", name), zap.Error(err))
				continue
			}
			if !known {
				r.log.Warn("receipt file has no ledger row", zap.String("file", name))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.log.Error("receipts watcher error", zap.Error(err))
		}
	}
}

func isImageName(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}
