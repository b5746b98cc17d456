// Package dispatcher routes decoded host pushes and overlay actions to
// their handlers by message type.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/qc-advancedmedic/nui/internal/dispatcher"

var (
	// ErrUnknownCommand is returned when no handler is registered for a message type.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrQueueFull is returned when a buffered handler drops an event.
	ErrQueueFull = errors.New("queue full")
)

// Event is a decoded host push or overlay action. Command is its message type.
type Event struct {
	Command   string
	Payload   any
	Timestamp time.Time
}

// HandlerFunc processes an event and returns a result for the caller.
type HandlerFunc func(ctx context.Context, e Event) (any, error)

// Logger interface for pluggable logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Option configures handler registration.
type Option func(*registration)

type registration struct {
	queue    int
	blocking bool
	logged   bool
}

// Buffered runs the handler on its own goroutine behind a queue of size
// events. Dispatch returns as soon as the event is queued.
func Buffered(size int) Option {
	return func(r *registration) { r.queue = size }
}

// Blocking makes a buffered handler wait for queue space instead of dropping.
func Blocking() Option {
	return func(r *registration) { r.blocking = true }
}

// Logged logs each event and its outcome.
func Logged() Option {
	return func(r *registration) { r.logged = true }
}

type instruments struct {
	queueSize metric.Int64ObservableGauge
	processed metric.Int64Counter
	dropped   metric.Int64Counter
	duration  metric.Float64Histogram
}

// Dispatcher routes events to registered handlers.
type Dispatcher struct {
	logger Logger
	inst   instruments

	mu       sync.RWMutex
	handlers map[string]HandlerFunc
	queues   map[string]chan Event
}

// New creates a dispatcher reporting to the global OTel meter, which is a
// no-op until a meter provider is installed.
func New(logger Logger) (*Dispatcher, error) {
	return NewWithMeter(logger, otel.Meter(meterName))
}

// NewWithMeter creates a dispatcher reporting to m.
func NewWithMeter(logger Logger, m metric.Meter) (*Dispatcher, error) {
	d := &Dispatcher{
		logger:   logger,
		handlers: make(map[string]HandlerFunc),
		queues:   make(map[string]chan Event),
	}
	if err := d.instrument(m); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Dispatcher) instrument(m metric.Meter) error {
	var err error
	if d.inst.queueSize, err = m.Int64ObservableGauge("dispatcher.queue.size",
		metric.WithDescription("Events waiting in a buffered handler's queue"),
	); err != nil {
		return fmt.Errorf("creating queue size gauge: %w", err)
	}
	if _, err = m.RegisterCallback(d.observeQueues, d.inst.queueSize); err != nil {
		return fmt.Errorf("registering queue callback: %w", err)
	}
	if d.inst.processed, err = m.Int64Counter("dispatcher.events.processed",
		metric.WithDescription("Events handled, by message type and result"),
	); err != nil {
		return fmt.Errorf("creating processed counter: %w", err)
	}
	if d.inst.dropped, err = m.Int64Counter("dispatcher.events.dropped",
		metric.WithDescription("Events dropped because a handler queue was full"),
	); err != nil {
		return fmt.Errorf("creating dropped counter: %w", err)
	}
	if d.inst.duration, err = m.Float64Histogram("dispatcher.handler.duration",
		metric.WithDescription("Handler run time"),
		metric.WithUnit("ms"),
	); err != nil {
		return fmt.Errorf("creating duration histogram: %w", err)
	}
	return nil
}

func (d *Dispatcher) observeQueues(_ context.Context, o metric.Observer) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for cmd, q := range d.queues {
		o.ObserveInt64(d.inst.queueSize, int64(len(q)),
			metric.WithAttributes(attribute.String("command", cmd)))
	}
	return nil
}

// Register adds the handler for a message type, replacing any earlier one.
func (d *Dispatcher) Register(command string, h HandlerFunc, opts ...Option) {
	var reg registration
	for _, opt := range opts {
		opt(&reg)
	}

	handler := d.measured(command, h)
	if reg.queue > 0 {
		handler = d.queued(command, reg.queue, reg.blocking, handler)
	}
	if reg.logged {
		handler = d.logged(command, handler)
	}

	d.mu.Lock()
	d.handlers[command] = handler
	d.mu.Unlock()
}

// Dispatch runs the handler registered for e.Command.
func (d *Dispatcher) Dispatch(ctx context.Context, e Event) (any, error) {
	d.mu.RLock()
	h, ok := d.handlers[e.Command]
	d.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, e.Command)
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	return h(ctx, e)
}

// HasHandler returns true if a handler is registered for the command.
func (d *Dispatcher) HasHandler(command string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.handlers[command]
	return ok
}

// Commands lists the registered message types in order.
func (d *Dispatcher) Commands() []string {
	d.mu.RLock()
	out := make([]string, 0, len(d.handlers))
	for cmd := range d.handlers {
		out = append(out, cmd)
	}
	d.mu.RUnlock()
	sort.Strings(out)
	return out
}

// measured records the run time and result of every handler call.
func (d *Dispatcher) measured(command string, h HandlerFunc) HandlerFunc {
	return func(ctx context.Context, e Event) (any, error) {
		start := time.Now()
		result, err := h(ctx, e)

		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		attrs := metric.WithAttributes(
			attribute.String("command", command),
			attribute.String("result", outcome),
		)
		d.inst.processed.Add(ctx, 1, attrs)
		d.inst.duration.Record(ctx, float64(time.Since(start).Microseconds())/1000, attrs)
		return result, err
	}
}

func (d *Dispatcher) queued(command string, size int, blocking bool, h HandlerFunc) HandlerFunc {
	q := make(chan Event, size)
	d.mu.Lock()
	d.queues[command] = q
	d.mu.Unlock()

	go func() {
		for e := range q {
			if _, err := h(context.Background(), e); err != nil {
				d.logger.Error("Queued event failed", "command", command, "error", err)
			}
		}
	}()

	if blocking {
		return func(ctx context.Context, e Event) (any, error) {
			select {
			case q <- e:
				return "queued", nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	cmdAttr := metric.WithAttributes(attribute.String("command", command))
	return func(ctx context.Context, e Event) (any, error) {
		select {
		case q <- e:
			return "queued", nil
		default:
			d.inst.dropped.Add(ctx, 1, cmdAttr)
			return nil, fmt.Errorf("%w: %s", ErrQueueFull, command)
		}
	}
}

func (d *Dispatcher) logged(command string, h HandlerFunc) HandlerFunc {
	return func(ctx context.Context, e Event) (any, error) {
		start := time.Now()
		d.logger.Debug("Handling message", "command", command, "age", start.Sub(e.Timestamp))

		result, err := h(ctx, e)
		if err != nil {
			d.logger.Error("Message failed", "command", command, "duration", time.Since(start), "error", err)
			return result, err
		}
		d.logger.Debug("Message handled", "command", command, "duration", time.Since(start))
		return result, nil
	}
}
