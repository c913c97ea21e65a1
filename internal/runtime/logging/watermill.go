package logging

import "github.com/ThreeDotsLabs/watermill"

// watermillAdapter lets the router, publishers, and subscribers log through
// the correlated JSON emitter instead of their own sinks. Watermill's trace
// level maps onto DEBUG.
type watermillAdapter struct {
	logger *Logger
}

// NewWatermillAdapter wraps a Logger as a watermill.LoggerAdapter.
func NewWatermillAdapter(logger *Logger) watermill.LoggerAdapter {
	if logger == nil {
		panic("hoplog: logger cannot be nil")
	}
	return &watermillAdapter{logger: logger}
}

func (a *watermillAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.logger.Error(msg, err, fromWatermillFields(fields))
}

func (a *watermillAdapter) Info(msg string, fields watermill.LogFields) {
	a.logger.Info(msg, fromWatermillFields(fields))
}

func (a *watermillAdapter) Debug(msg string, fields watermill.LogFields) {
	a.logger.Debug(msg, fromWatermillFields(fields))
}

func (a *watermillAdapter) Trace(msg string, fields watermill.LogFields) {
	a.logger.Debug(msg, fromWatermillFields(fields))
}

func (a *watermillAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &watermillAdapter{logger: a.logger.With(fromWatermillFields(fields))}
}

func fromWatermillFields(fields watermill.LogFields) LogFields {
	if len(fields) == 0 {
		return nil
	}
	return LogFields(fields)
}
