// Package errors handles the CLI shell's error presentation: fatal paths log
// the failure and print one "Error: ..." line on stderr before exiting.
package errors

import (
	"fmt"
	"os"

	"github.com/julianstephens/weeklit/internal/logger"
)

// Format renders err as the standard single-line CLI message.
func Format(err error) string {
	if err == nil {
		return ""
	}
	return "Error: " + err.Error()
}

// Fatal logs err, prints it on stderr, and exits nonzero. A nil err is a
// no-op so callers can pass command results through unconditionally.
func Fatal(err error) {
	if err == nil {
		return
	}
	logger.Error("command failed", "error", err)
	fmt.Fprintln(os.Stderr, Format(err))
	os.Exit(1)
}

// Fatalf is Fatal with a formatted message.
func Fatalf(format string, args ...any) {
	Fatal(fmt.Errorf(format, args...))
}
