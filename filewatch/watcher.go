package filewatch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/aguxez/dine/logger"
)

// SessionWatcher reports changes to the persistent session file, such as a
// logout from another terminal.
type SessionWatcher struct {
	path     string
	watcher  *fsnotify.Watcher
	onChange func()
}

// NewSessionWatcher watches the directory holding path, since the file
// itself may not exist yet.
func NewSessionWatcher(path string, onChange func()) (*SessionWatcher, error) {
	path = filepath.Clean(path)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dir, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}

	return &SessionWatcher{path: path, watcher: w, onChange: onChange}, nil
}

// Watch blocks until ctx is done.
func (sw *SessionWatcher) Watch(ctx context.Context) {
	defer sw.watcher.Close()

	const relevant = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != sw.path || event.Op&relevant == 0 {
				continue
			}
			logger.Debug("session file changed", zap.String("path", event.Name), zap.String("op", event.Op.String()))
			sw.onChange()
		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			logger.Error("session watcher", zap.Error(err))
		}
	}
}
