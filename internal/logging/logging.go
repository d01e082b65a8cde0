// Copyright (c) 2026 ToeiRei
// Keyferry - Bitwarden SSH key loader
// This source code is licensed under the MIT license found in the LICENSE file.

// package logging wraps the application logger. Callers use the helper
// functions below; the underlying logger is exported for the rare case
// where direct access is needed.
package logging

import (
	"fmt"
	"os"

	clog "github.com/charmbracelet/log"
)

// L is the package-level logger. Callers should use the helper functions
// below for compatibility with existing calls.
var L = clog.New(os.Stderr)

// Configure sets the log level from the CLI verbosity flags. Debug wins
// over quiet; quiet keeps warnings and errors visible.
func Configure(debug, quiet bool) {
	switch {
	case debug:
		L.SetLevel(clog.DebugLevel)
	case quiet:
		L.SetLevel(clog.WarnLevel)
	default:
		L.SetLevel(clog.InfoLevel)
	}
}

// Debugf logs a debug-level formatted message.
func Debugf(format string, v ...interface{}) {
	L.Debug(fmt.Sprintf(format, v...))
}

// Infof logs an info-level formatted message.
func Infof(format string, v ...interface{}) {
	L.Info(fmt.Sprintf(format, v...))
}

// Warnf logs a warning-level formatted message.
func Warnf(format string, v ...interface{}) {
	L.Warn(fmt.Sprintf(format, v...))
}

// Errorf logs an error-level formatted message.
func Errorf(format string, v ...interface{}) {
	L.Error(fmt.Sprintf(format, v...))
}

// Fatalf logs an error-level formatted message and exits with status 1.
// It is reserved for the top-level handler; libraries return errors.
func Fatalf(format string, v ...interface{}) {
	L.Fatal(fmt.Sprintf(format, v...))
}
