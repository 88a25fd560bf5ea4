package app

import (
	"errors"

	"github.com/sirupsen/logrus"
	"gopkg.in/tomb.v2"

	"github.com/dshills/vuno/internal/engine/buffer"
	"github.com/dshills/vuno/internal/project/watcher"
)

// attachWatcher starts the file watcher and keeps its watch set in step with
// the files bound to open buffers.
func (app *Application) attachWatcher() error {
	w, err := watcher.NewFSNotifyWatcher(
		watcher.WithDebounceDelay(app.cfg.Files.WatchDebounce),
	)
	if err != nil {
		return err
	}
	app.watcher = w

	log := WithComponent(app.log, "watcher")
	watch := func(id buffer.ID, path string) {
		err := w.Watch(path)
		switch {
		case err == nil:
			log.WithField("path", path).Debug("watching")
		case errors.Is(err, watcher.ErrAlreadyWatching):
		default:
			log.WithError(err).WithFields(logrus.Fields{"buffer": id, "path": path}).Debug("cannot watch")
		}
	}
	app.manager.OnOpen(watch)
	app.manager.OnSave(watch)
	app.manager.OnClose(func(id buffer.ID, path string) {
		if path == "" || len(app.manager.BuffersForPath(path)) > 0 {
			return
		}
		if err := w.Unwatch(path); err == nil {
			log.WithField("path", path).Debug("unwatched")
		}
	})
	return nil
}

// watchLoop flags buffers whose files change on disk until t is dying.
func (app *Application) watchLoop(t *tomb.Tomb) error {
	log := WithComponent(app.log, "watcher")
	for {
		select {
		case <-t.Dying():
			return nil
		case ev, ok := <-app.watcher.Events():
			if !ok {
				return nil
			}
			ids := app.manager.CheckExternalChange(ev.Path)
			log.WithFields(logrus.Fields{
				"path":    ev.Path,
				"op":      ev.Op.String(),
				"buffers": ids,
			}).Debug("file event")
		case err, ok := <-app.watcher.Errors():
			if !ok {
				return nil
			}
			log.WithError(err).Warn("watch error")
		}
	}
}
