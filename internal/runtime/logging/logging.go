// Package logging emits single-line JSON log records enriched with the
// active trace context. The minimum level is resolved once per process,
// but a transaction sampled for debug logging is logged at DEBUG on every
// hop regardless of that setting.
package logging

import (
	"io"
	"os"
	"strconv"
	"sync"

	"github.com/drblury/hoplog/internal/runtime/jsoncodec"
	"github.com/drblury/hoplog/internal/runtime/lifecycle"
	"github.com/drblury/hoplog/internal/runtime/propagation"
)

// LogFields is the bag of structured key/value pairs attached to a record.
type LogFields map[string]any

// Reserved record keys. Caller-supplied fields win over context and static
// fields, but these three can never be overridden.
const (
	FieldMessage   = "message"
	FieldLevel     = "level"
	FieldLevelName = "levelName"

	// FieldInvocationID carries the hop-local invocation identifier.
	FieldInvocationID = "invocation_id"
)

// Options configures a Logger.
type Options struct {
	// Sink receives the JSON lines. Defaults to os.Stdout. Write failures
	// are the sink's problem and are not surfaced to log call sites.
	Sink io.Writer

	// MinLevel is the configured minimum level, resolved once at process
	// start. Records below it are dropped unless the active transaction
	// was sampled for debug logging.
	MinLevel Level

	// Static holds process-wide attributes stamped onto every record
	// (deployment stage, environment identifier).
	Static LogFields

	// Guard supplies the active trace context. Defaults to the ambient
	// guard.
	Guard *lifecycle.Guard
}

// Logger is the structured emitter. It is safe for concurrent use; each
// record is marshalled and flushed synchronously.
type Logger struct {
	mu     sync.Mutex
	sink   io.Writer
	min    Level
	static LogFields
	base   LogFields
	guard  *lifecycle.Guard
}

// New constructs a Logger from opts.
func New(opts Options) *Logger {
	sink := opts.Sink
	if sink == nil {
		sink = os.Stdout
	}
	min := opts.MinLevel
	if min == 0 {
		min = LevelInfo
	}
	guard := opts.Guard
	if guard == nil {
		guard = lifecycle.Default
	}
	return &Logger{
		sink:   sink,
		min:    min,
		static: opts.Static,
		guard:  guard,
	}
}

// With returns a child logger whose records always carry the given fields.
// The child shares the parent's sink and level configuration.
func (l *Logger) With(fields LogFields) *Logger {
	if len(fields) == 0 {
		return l
	}

	merged := make(LogFields, len(l.base)+len(fields))
	for k, v := range l.base {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &Logger{
		sink:   l.sink,
		min:    l.min,
		static: l.static,
		base:   merged,
		guard:  l.guard,
	}
}

// Debug emits a DEBUG record.
func (l *Logger) Debug(msg string, fields LogFields) { l.Log(LevelDebug, msg, fields) }

// Info emits an INFO record.
func (l *Logger) Info(msg string, fields LogFields) { l.Log(LevelInfo, msg, fields) }

// Warn emits a WARN record.
func (l *Logger) Warn(msg string, fields LogFields) { l.Log(LevelWarn, msg, fields) }

// Error emits an ERROR record. A non-nil err is added as an "error" field.
func (l *Logger) Error(msg string, err error, fields LogFields) {
	if err != nil {
		enriched := make(LogFields, len(fields)+1)
		for k, v := range fields {
			enriched[k] = v
		}
		enriched["error"] = err.Error()
		fields = enriched
	}
	l.Log(LevelError, msg, fields)
}

// Log emits a record when level clears the effective minimum. The
// effective minimum is DEBUG when the active transaction was sampled for
// debug logging, the configured minimum otherwise.
func (l *Logger) Log(level Level, msg string, fields LogFields) {
	tc, active := l.guard.Current()

	effective := l.min
	if active && tc.DebugEnabled {
		effective = LevelDebug
	}
	if level < effective {
		return
	}

	record := make(map[string]any, len(l.static)+len(l.base)+len(fields)+8)
	for k, v := range l.static {
		record[k] = v
	}
	if active {
		record[propagation.KeyCorrelationID] = tc.CorrelationID
		record[propagation.KeyChainLength] = tc.ChainLength
		record[propagation.KeyDebugEnabled] = tc.DebugEnabled
		record[FieldInvocationID] = tc.InvocationID
	}
	for k, v := range l.base {
		record[k] = v
	}
	for k, v := range fields {
		record[k] = v
	}
	record[FieldMessage] = msg
	record[FieldLevel] = int(level)
	record[FieldLevelName] = level.Name()

	line, err := jsoncodec.Marshal(record)
	if err != nil {
		// A field that cannot be serialised must not kill the invocation;
		// fall back to a minimal record.
		line = []byte(`{"message":` + strconv.Quote(msg) +
			`,"level":` + strconv.Itoa(int(level)) +
			`,"levelName":"` + level.Name() + `"}`)
	}
	line = append(line, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = l.sink.Write(line)
}
