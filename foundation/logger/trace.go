package logger

import "go.uber.org/zap"

// Trace adapts a sugared logger to the operation-level events the database
// packages emit: entering and leaving an operation, progress information,
// warnings, and errors. Every event carries the fields bound with With.
type Trace struct {
	log    *zap.SugaredLogger
	fields []any
}

// NewTrace constructs a Trace that writes through the specified logger.
func NewTrace(log *zap.SugaredLogger, keysAndValues ...any) *Trace {
	return &Trace{
		log:    log,
		fields: keysAndValues,
	}
}

// With returns a copy of the trace with additional fields bound to
// every event it writes.
func (t *Trace) With(keysAndValues ...any) *Trace {
	fields := make([]any, 0, len(t.fields)+len(keysAndValues))
	fields = append(fields, t.fields...)
	fields = append(fields, keysAndValues...)

	return &Trace{
		log:    t.log,
		fields: fields,
	}
}

// Enter records the start of an operation.
func (t *Trace) Enter(op string) {
	t.log.Infow("enter", t.kv("op", op)...)
}

// Exit records the end of an operation.
func (t *Trace) Exit(op string) {
	t.log.Infow("exit", t.kv("op", op)...)
}

// Info records progress information.
func (t *Trace) Info(msg string, keysAndValues ...any) {
	t.log.Infow(msg, t.kv(keysAndValues...)...)
}

// Warning records a condition that did not stop the operation.
func (t *Trace) Warning(msg string, keysAndValues ...any) {
	t.log.Warnw(msg, t.kv(keysAndValues...)...)
}

// Error records a failure. The caller still owns the error.
func (t *Trace) Error(msg string, err error, keysAndValues ...any) {
	t.log.Errorw(msg, t.kv(append([]any{"ERROR", err}, keysAndValues...)...)...)
}

func (t *Trace) kv(keysAndValues ...any) []any {
	if len(t.fields) == 0 {
		return keysAndValues
	}

	out := make([]any, 0, len(t.fields)+len(keysAndValues))
	out = append(out, t.fields...)
	return append(out, keysAndValues...)
}
