package logging

import (
	"strings"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
)

var (
	defaultLogger = log.NewNopLogger()

	messageKey   interface{} = "msg"
	errorKey     interface{} = "error"
	timestampKey interface{} = "ts"
)

// MessageKey returns the logging key used for the textual message of a log entry
func MessageKey() interface{} {
	return messageKey
}

// ErrorKey returns the logging key used for error instances
func ErrorKey() interface{} {
	return errorKey
}

// TimestampKey returns the logging key used for the timestamp
func TimestampKey() interface{} {
	return timestampKey
}

// DefaultLogger returns a global singleton NOP logger.
// The returned instance is safe for concurrent use.
func DefaultLogger() log.Logger {
	return defaultLogger
}

// New creates a go-kit Logger from a set of options.  The options object may be
// nil, in which case a logfmt logger that writes to os.Stdout is returned.  The
// returned logger emits timestamps in UTC and filters according to the Level field.
func New(o *Options) log.Logger {
	return NewFilter(
		log.WithPrefix(
			o.loggerFactory()(o.output()),
			TimestampKey(), log.DefaultTimestampUTC,
		),
		o,
	)
}

// NewFilter applies this package's level filtering rules to an arbitrary go-kit
// Logger.  Any level other than DEBUG, INFO, or WARN, including the empty string,
// results in a logger that only allows errors.
func NewFilter(next log.Logger, o *Options) log.Logger {
	switch strings.ToUpper(o.level()) {
	case "DEBUG":
		return level.NewFilter(next, level.AllowDebug())

	case "INFO":
		return level.NewFilter(next, level.AllowInfo())

	case "WARN":
		return level.NewFilter(next, level.AllowWarn())

	default:
		return level.NewFilter(next, level.AllowError())
	}
}

// Debug prepends a constant debug level to the returned logger, together with
// any additional key value pairs.
func Debug(next log.Logger, keyvals ...interface{}) log.Logger {
	return log.WithPrefix(
		next,
		append([]interface{}{level.Key(), level.DebugValue()}, keyvals...)...,
	)
}

// Warn prepends a constant warn level to the returned logger, together with
// any additional key value pairs.
func Warn(next log.Logger, keyvals ...interface{}) log.Logger {
	return log.WithPrefix(
		next,
		append([]interface{}{level.Key(), level.WarnValue()}, keyvals...)...,
	)
}

// Error prepends a constant error level to the returned logger, together with
// any additional key value pairs.
func Error(next log.Logger, keyvals ...interface{}) log.Logger {
	return log.WithPrefix(
		next,
		append([]interface{}{level.Key(), level.ErrorValue()}, keyvals...)...,
	)
}
