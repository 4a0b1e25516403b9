package ui

import (
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

type reloadMsg struct{}

// watcher reports writes to a single file. The parent directory is watched
// so editors that replace the file on save are noticed too.
type watcher struct {
	fs   *fsnotify.Watcher
	path string
}

func newWatcher(path string) (*watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	dir := filepath.Dir(path)
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, err //nolint:wrapcheck
	}
	log.Info("fsnotify watching dir", "dir", dir)
	return &watcher{fs: fw, path: path}, nil
}

// wait blocks until the file is written or created, or the watcher closes.
func (w *watcher) wait() tea.Msg {
	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if event.Name != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			log.Debug("fsnotify event", "file", event.Name, "event", event.Op)
			return reloadMsg{}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			log.Debug("fsnotify error", "path", w.path, "error", err)
		}
	}
}

func (w *watcher) close() {
	if err := w.fs.Close(); err != nil {
		log.Error("fsnotify fail to close watcher", "path", w.path, "error", err)
	}
}
