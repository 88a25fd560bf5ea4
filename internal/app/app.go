// Package app wires configuration, logging, the buffer engine, the file
// watcher and the request dispatcher into a running vuno process.
package app

import (
	"context"
	"errors"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/tomb.v2"

	"github.com/dshills/vuno/internal/config"
	"github.com/dshills/vuno/internal/dispatcher"
	"github.com/dshills/vuno/internal/engine"
	"github.com/dshills/vuno/internal/project/vfs"
	"github.com/dshills/vuno/internal/project/watcher"
)

// ShutdownTimeout bounds how long Run waits for queued requests on exit.
const ShutdownTimeout = 5 * time.Second

// Options configures the application.
type Options struct {
	// ConfigPath is the path to a TOML or YAML configuration file.
	ConfigPath string

	// Config replaces loading from ConfigPath when set.
	Config *config.Config

	// LogLevel overrides the configured log level.
	LogLevel string

	// Files are the files named on the command line.
	Files []string

	// In and Out carry the request and response lines.
	// They default to stdin and stdout.
	In  io.Reader
	Out io.Writer

	// LogOutput receives log lines. Defaults to stderr.
	LogOutput io.Writer

	// VFS is the file system used by the engine. Defaults to the OS.
	VFS vfs.VFS
}

// Application owns the long-lived components.
type Application struct {
	cfg        *config.Config
	log        *logrus.Logger
	manager    *engine.Manager
	dispatcher *dispatcher.Dispatcher
	watcher    *watcher.FSNotifyWatcher

	in  io.Reader
	out io.Writer

	running atomic.Bool
}

// New builds every component in dependency order.
func New(opts Options) (*Application, error) {
	cfg := opts.Config
	if cfg == nil {
		var err error
		cfg, err = config.Load(opts.ConfigPath)
		if err != nil {
			return nil, &InitError{Component: "config", Err: err}
		}
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}

	app := &Application{
		cfg: cfg,
		log: NewLogger(LoggerConfig{
			Level:  cfg.Log.Level,
			Format: cfg.Log.Format,
			Output: opts.LogOutput,
		}),
		in:  opts.In,
		out: opts.Out,
	}
	if app.in == nil {
		app.in = os.Stdin
	}
	if app.out == nil {
		app.out = os.Stdout
	}

	app.manager = engine.New(
		engine.WithVFS(opts.VFS),
		engine.WithHistoryCapacity(cfg.History.Capacity),
		engine.WithMaxFileSize(cfg.Files.MaxSize),
		engine.WithLogger(WithComponent(app.log, "engine")),
	)

	if cfg.Files.Watch {
		if err := app.attachWatcher(); err != nil {
			// External change detection is optional.
			app.log.WithError(err).Warn("file watcher unavailable")
		}
	}

	app.dispatcher = dispatcher.New(app.manager,
		dispatcher.WithLogger(WithComponent(app.log, "dispatcher")),
		dispatcher.WithCLIFiles(opts.Files),
		dispatcher.WithPoolOptions(
			dispatcher.WithWorkers(cfg.Workers.Count),
			dispatcher.WithQueueSize(cfg.Workers.QueueSize),
		),
	)

	app.log.WithFields(logrus.Fields{
		"config":  opts.ConfigPath,
		"workers": cfg.Workers.Count,
		"watch":   app.watcher != nil,
	}).Debug("application initialized")
	return app, nil
}

// Config returns the effective configuration.
func (app *Application) Config() *config.Config { return app.cfg }

// Logger returns the root logger.
func (app *Application) Logger() *logrus.Logger { return app.log }

// Manager returns the buffer registry.
func (app *Application) Manager() *engine.Manager { return app.manager }

// Dispatcher returns the request dispatcher.
func (app *Application) Dispatcher() *dispatcher.Dispatcher { return app.dispatcher }

// Run serves requests until the input ends or ctx is cancelled, then drains
// the worker pool and releases the watcher.
func (app *Application) Run(ctx context.Context) error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	if err := app.dispatcher.Start(); err != nil {
		return &InitError{Component: "dispatcher", Err: err}
	}

	t, tctx := tomb.WithContext(ctx)
	if app.watcher != nil {
		t.Go(func() error { return app.watchLoop(t) })
	}
	t.Go(func() error {
		err := app.dispatcher.Serve(tctx, app.in, app.out)
		// Input is done; stop the watch loop too.
		t.Kill(err)
		return err
	})

	app.log.Info("serving requests")
	runErr := t.Wait()
	if errors.Is(runErr, context.Canceled) && ctx.Err() != nil {
		// Cancellation by the caller is a normal shutdown.
		runErr = nil
	}

	if err := app.shutdown(); err != nil && runErr == nil {
		runErr = err
	}
	if runErr != nil {
		app.log.WithError(runErr).Warn("stopped with error")
	} else {
		app.log.Info("stopped")
	}
	return runErr
}

func (app *Application) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := app.dispatcher.Stop(ctx); err != nil && !errors.Is(err, dispatcher.ErrNotRunning) {
		if errors.Is(err, context.DeadlineExceeded) {
			err = ErrShutdownTimeout
		}
		errs = append(errs, err)
	}
	if err := app.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Close releases the watcher. It is safe to call more than once.
func (app *Application) Close() error {
	if app.watcher == nil {
		return nil
	}
	return app.watcher.Close()
}
