package log

import (
	"os"
	"syscall"
)

// DefaultSwapSignal toggles debug logging unless SwapSignal overrides it.
// Windows has no user signals, SIGBREAK is the closest.
var DefaultSwapSignal os.Signal = syscall.Signal(0x15)
