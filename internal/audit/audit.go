// Package audit writes the structured audit trail of pipeline decisions.
// Entries are zap JSON lines tagged log_type=audit, queued in memory, and
// appended by a single worker to a Sink stream per target.
package audit

import (
	"bytes"
	"context"
	"log/slog"
	"maps"
	"slices"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/JaimeStill/rively/internal/metrics"
	"github.com/JaimeStill/rively/pkg/lifecycle"
)

// Recorder accepts audit events. Record never blocks and never fails the caller.
type Recorder interface {
	Record(ctx context.Context, target string, fields map[string]any)
}

type entry struct {
	target string
	data   []byte
}

// Logger is the queued zap-encoded Recorder.
type Logger struct {
	sink    Sink
	encoder zapcore.Encoder
	queue   chan entry
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New creates a Logger with a queue of queueSize entries. Call Start to
// begin draining the queue into sink.
func New(sink Sink, queueSize int, m *metrics.Metrics, logger *slog.Logger) *Logger {
	return &Logger{
		sink:    sink,
		encoder: newEncoder(),
		queue:   make(chan entry, queueSize),
		metrics: m,
		logger:  logger.With("system", "audit"),
	}
}

func newEncoder() zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "timestamp"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.CallerKey = zapcore.OmitKey
	cfg.StacktraceKey = zapcore.OmitKey

	enc := zapcore.NewJSONEncoder(cfg)
	enc.AddString("log_type", "audit")
	return enc
}

// Sink returns the underlying sink for readers of the trail.
func (l *Logger) Sink() Sink {
	return l.sink
}

// Start registers the queue worker. It drains every queued entry once the
// lifecycle context is cancelled.
func (l *Logger) Start(lc *lifecycle.Coordinator) error {
	l.logger.Info("starting audit logger")

	lc.OnShutdown(func() {
		for {
			select {
			case e := <-l.queue:
				l.write(e)
			case <-lc.Context().Done():
				l.drain()
				l.logger.Info("audit logger stopped")
				return
			}
		}
	})

	return nil
}

func (l *Logger) Record(ctx context.Context, target string, fields map[string]any) {
	if err := ValidateTarget(target); err != nil {
		l.logger.WarnContext(ctx, "audit target rejected", "error", err)
		return
	}

	data, err := l.encode(target, fields)
	if err != nil {
		l.logger.WarnContext(ctx, "audit encode failed", "target", target, "error", err)
		return
	}

	select {
	case l.queue <- entry{target: target, data: data}:
	default:
		l.metrics.AuditDropped.Inc()
		l.logger.WarnContext(ctx, "audit queue full, entry dropped", "target", target)
	}
}

func (l *Logger) encode(target string, fields map[string]any) ([]byte, error) {
	zf := make([]zapcore.Field, 0, len(fields)+1)
	zf = append(zf, zap.String("target", target))
	for _, k := range slices.Sorted(maps.Keys(fields)) {
		zf = append(zf, zap.Any(k, fields[k]))
	}

	buf, err := l.encoder.EncodeEntry(zapcore.Entry{
		Level:   zapcore.InfoLevel,
		Time:    time.Now(),
		Message: "audit_event",
	}, zf)
	if err != nil {
		return nil, err
	}
	defer buf.Free()

	return bytes.Clone(buf.Bytes()), nil
}

func (l *Logger) drain() {
	for {
		select {
		case e := <-l.queue:
			l.write(e)
		default:
			return
		}
	}
}

func (l *Logger) write(e entry) {
	if err := l.sink.Append(context.Background(), e.target, e.data); err != nil {
		l.logger.Error("audit append failed", "target", e.target, "error", err)
	}
}

type discard struct{}

func (discard) Record(context.Context, string, map[string]any) {}

// Discard is a Recorder that drops every event.
var Discard Recorder = discard{}
