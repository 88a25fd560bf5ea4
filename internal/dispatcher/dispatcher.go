package dispatcher

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dshills/vuno/internal/engine"
)

// MaxLineSize is the longest request line Serve accepts.
const MaxLineSize = 64 << 20

// Dispatcher decodes requests, runs them against a Manager and encodes the
// responses.
type Dispatcher struct {
	manager  *engine.Manager
	pool     *Pool
	poolOpts []PoolOption
	metrics  *Metrics
	log      *logrus.Entry

	cliMu    sync.Mutex
	cliFiles []string
	cliTaken bool
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the request logger.
func WithLogger(log *logrus.Entry) Option {
	return func(d *Dispatcher) {
		if log != nil {
			d.log = log
		}
	}
}

// WithCLIFiles records the files named on the command line.
func WithCLIFiles(files []string) Option {
	return func(d *Dispatcher) {
		d.cliFiles = append([]string(nil), files...)
	}
}

// WithPoolOptions configures the worker pool.
func WithPoolOptions(opts ...PoolOption) Option {
	return func(d *Dispatcher) {
		d.poolOpts = append(d.poolOpts, opts...)
	}
}

// New creates a Dispatcher for m. The worker pool is not started.
func New(m *engine.Manager, opts ...Option) *Dispatcher {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	d := &Dispatcher{
		manager: m,
		metrics: NewMetrics(),
		log:     logrus.NewEntry(discard),
	}
	for _, opt := range opts {
		opt(d)
	}

	poolOpts := append([]PoolOption{WithPanicHandler(d.poolPanic)}, d.poolOpts...)
	d.pool = NewPool(poolOpts...)
	return d
}

// Start launches the worker pool.
func (d *Dispatcher) Start() error {
	return d.pool.Start()
}

// Stop drains the worker pool.
func (d *Dispatcher) Stop(ctx context.Context) error {
	return d.pool.Stop(ctx)
}

// Metrics returns the request counters.
func (d *Dispatcher) Metrics() *Metrics {
	return d.metrics
}

// Handle runs one request line on the calling goroutine and returns the
// response line, without a trailing newline.
func (d *Dispatcher) Handle(ctx context.Context, line []byte) []byte {
	req, err := Decode(line)
	if err != nil {
		return d.reject(req, err)
	}
	return d.execute(ctx, req)
}

// Submit queues one request line on the worker pool. reply is called exactly
// once with the response line, from a worker or, when the request is
// rejected before queueing, from the caller's goroutine.
//
// Submit does not wait for queue space; a full queue is reported as
// ErrQueueFull.
func (d *Dispatcher) Submit(ctx context.Context, line []byte, reply func([]byte)) error {
	return d.submit(ctx, ctx, line, reply, false)
}

// submit queues line with reply as Submit does. With wait set it waits for
// queue space until waitCtx is done instead of failing fast.
func (d *Dispatcher) submit(waitCtx, ctx context.Context, line []byte, reply func([]byte), wait bool) error {
	req, err := Decode(line)
	if err != nil {
		reply(d.reject(req, err))
		return err
	}

	fn := func(ctx context.Context) {
		reply(d.execute(ctx, req))
	}
	if wait {
		err = d.pool.SubmitWait(waitCtx, ctx, fn)
	} else {
		err = d.pool.Submit(ctx, fn)
	}
	if err != nil {
		reply(d.reject(req, err))
		return err
	}
	return nil
}

// Serve reads request lines from r and writes response lines to w until r is
// exhausted or ctx is done. Requests run on the worker pool, so responses may
// be written out of order. A full queue slows reading rather than
// rejecting requests. Serve returns after every accepted request has been
// answered.
func (d *Dispatcher) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	var (
		writeMu  sync.Mutex
		inflight sync.WaitGroup
	)
	reply := func(line []byte) {
		defer inflight.Done()
		writeMu.Lock()
		defer writeMu.Unlock()
		if _, err := w.Write(append(line, '\n')); err != nil {
			d.log.WithError(err).Warn("write response failed")
		}
	}

	lines := make(chan []byte)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 64*1024), MaxLineSize)
		for scanner.Scan() {
			line := bytes.Clone(scanner.Bytes())
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	// Accepted requests finish even when ctx is cancelled.
	taskCtx := context.WithoutCancel(ctx)
	defer inflight.Wait()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					return err
				default:
					return nil
				}
			}
			if len(bytes.TrimSpace(line)) == 0 {
				continue
			}
			inflight.Add(1)
			_ = d.submit(ctx, taskCtx, line, reply, true)
		}
	}
}

func (d *Dispatcher) reject(req *Request, err error) []byte {
	d.metrics.Record(req.Kind, 0, ErrorKind(err))
	d.log.WithError(err).WithFields(logrus.Fields{
		"request_id": req.RequestID(),
		"cmd":        req.Name,
	}).Warn("request rejected")
	return EncodeError(req.ID, err)
}

func (d *Dispatcher) execute(ctx context.Context, req *Request) []byte {
	start := time.Now()
	result, err := d.call(ctx, req)

	var out []byte
	if err == nil {
		out, err = EncodeResult(req.ID, result)
	}
	elapsed := time.Since(start)

	fields := logrus.Fields{
		"request_id": req.RequestID(),
		"cmd":        req.Kind.String(),
		"duration":   elapsed,
	}
	if err != nil {
		kind := ErrorKind(err)
		d.metrics.Record(req.Kind, elapsed, kind)
		d.log.WithError(err).WithFields(fields).WithField("kind", kind).Warn("request failed")
		return EncodeError(req.ID, err)
	}

	d.metrics.Record(req.Kind, elapsed, "")
	d.log.WithFields(fields).Debug("request handled")
	return out
}

// call runs the handler, turning a panic into ErrPanic.
func (d *Dispatcher) call(ctx context.Context, req *Request) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			d.metrics.RecordPanic()
			d.log.WithFields(logrus.Fields{
				"request_id": req.RequestID(),
				"cmd":        req.Kind.String(),
			}).Errorf("handler panic: %v", r)
			result, err = nil, fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()

	if !req.Kind.Valid() {
		return nil, ErrUnknownCommand
	}
	h := handlerTable[req.Kind]
	if h == nil {
		return nil, ErrUnknownCommand
	}
	return h(ctx, d, req.Args)
}

func (d *Dispatcher) poolPanic(recovered any, stack []byte) {
	d.metrics.RecordPanic()
	d.log.WithField("stack", string(stack)).Errorf("worker panic: %v", recovered)
}

// takeCLIFile returns the first command-line file on the first call only.
func (d *Dispatcher) takeCLIFile() (string, bool) {
	d.cliMu.Lock()
	defer d.cliMu.Unlock()

	if d.cliTaken || len(d.cliFiles) == 0 {
		return "", false
	}
	d.cliTaken = true
	return d.cliFiles[0], true
}
