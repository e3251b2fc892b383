package log

import (
	"fmt"
	"io"
	"os"
	"sync"
)

const (
	levelDebug = iota
	levelInfo
	levelWarn
	levelError
)

var (
	mu          sync.Mutex
	verbose     = false
	disableLogs = false
	forceStdErr = false
	stdout      io.Writer = os.Stdout
	stderr      io.Writer = os.Stderr
	exitFunc              = os.Exit
	logPrefixes           = map[int]string{
		levelDebug: "\033[37m[DBG]\033[0m", // White
		levelInfo:  "\033[36m[INF]\033[0m", // Cyan
		levelWarn:  "\033[33m[WRN]\033[0m", // Yellow
		levelError: "\033[31m[ERR]\033[0m", // Red
	}
)

// SetVerbose sets the logging verbosity. If true, debug messages are displayed.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose logging is enabled.
func IsVerbose() bool {
	mu.Lock()
	defer mu.Unlock()
	return verbose
}

// DisableLogs disables all logging.
func DisableLogs() {
	mu.Lock()
	defer mu.Unlock()
	disableLogs = true
}

// SetForceStdErr routes every level to stderr.
func SetForceStdErr(v bool) {
	mu.Lock()
	defer mu.Unlock()
	forceStdErr = v
}

// SetOutput replaces the writers used for regular and error output.
// A nil writer restores the corresponding os stream.
func SetOutput(out, errOut io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	stdout = out
	stderr = errOut
}

// SetExitFunc replaces the function Fatalf uses to terminate the process
// and returns the previous one.
func SetExitFunc(fn func(code int)) func(code int) {
	mu.Lock()
	defer mu.Unlock()
	prev := exitFunc
	if fn == nil {
		fn = os.Exit
	}
	exitFunc = fn
	return prev
}

// Debugf logs a debug message if verbose is true.
func Debugf(format string, args ...interface{}) {
	if IsVerbose() {
		logMessage(levelDebug, format, args...)
	}
}

// Infof logs an info message.
func Infof(format string, args ...interface{}) {
	logMessage(levelInfo, format, args...)
}

// Warnf logs a warning message.
func Warnf(format string, args ...interface{}) {
	logMessage(levelWarn, format, args...)
}

// Errorf logs an error message.
func Errorf(format string, args ...interface{}) {
	logMessage(levelError, format, args...)
}

// Fatalf logs an error message and exits the program with status 1.
func Fatalf(format string, args ...interface{}) {
	logMessage(levelError, format, args...)

	mu.Lock()
	exit := exitFunc
	mu.Unlock()
	exit(1)
}

// logMessage formats and writes a log message with the specified log level.
func logMessage(level int, format string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()

	if disableLogs {
		return
	}
	output := logPrefixes[level] + " " + fmt.Sprintf(format, args...) + "\n"

	if forceStdErr || level == levelError {
		_, _ = io.WriteString(stderr, output)
	} else {
		_, _ = io.WriteString(stdout, output)
	}
}
