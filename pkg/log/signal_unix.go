//go:build !windows

package log

import (
	"os"
	"syscall"
)

// DefaultSwapSignal toggles debug logging unless SwapSignal overrides it.
var DefaultSwapSignal os.Signal = syscall.SIGUSR2
