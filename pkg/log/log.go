// Package log wraps go-kit leveled logging for idkit.
//
// Loggers emit key/value pairs. By convention "msg" holds a human readable
// message, "err" an error and "component" the emitting subsystem.
package log

import (
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
)

type Logger interface {
	Log(keyvals ...interface{}) error
}

func Debug(logger Logger) Logger { return level.Debug(logger) }
func Info(logger Logger) Logger  { return level.Info(logger) }
func Error(logger Logger) Logger { return level.Error(logger) }

// With returns a Logger that prepends keyvals to every entry.
func With(logger Logger, keyvals ...interface{}) Logger { return log.With(logger, keyvals...) }

// Nop returns a Logger that discards everything.
func Nop() Logger { return log.NewNopLogger() }
