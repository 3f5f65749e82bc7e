// Package log provides the leveled, colorized logger used throughout xshm.
package log

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"
)

const (
	LevelTrace = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelNoPrint
)

var (
	magenta = string([]byte{27, 91, 57, 53, 109}) // Trace
	green   = string([]byte{27, 91, 57, 50, 109}) // Debug
	blue    = string([]byte{27, 91, 57, 52, 109}) // Info
	yellow  = string([]byte{27, 91, 57, 51, 109}) // Warn
	red     = string([]byte{27, 91, 57, 49, 109}) // Error
	reset   = string([]byte{27, 91, 48, 109})

	colors    = []string{magenta, green, blue, yellow, red}
	levelName = []string{"Trace", "Debug", "Info", "Warn", "Error"}

	level     int
	debugMode bool

	// Default is the package-wide logger; callers that want a distinct
	// name (for grouping log lines from one component) use New instead.
	Default = New("")
)

func init() {
	level = LevelWarn
	if v := os.Getenv("XSHM_LOG_LEVEL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n <= LevelNoPrint {
			level = n
		}
	}
	if os.Getenv("XSHM_DEBUG_MODE") != "" {
		debugMode = true
	}
}

// SetLevel changes the package-wide minimum log level; default is Warn.
// The process env XSHM_LOG_LEVEL overrides this at init time.
func SetLevel(l int) {
	if l <= LevelNoPrint {
		level = l
	}
}

// DebugMode reports whether XSHM_DEBUG_MODE was set at process start.
func DebugMode() bool { return debugMode }

// Logger is a named, leveled writer with caller file:line prefixes.
type Logger struct {
	name      string
	out       io.Writer
	callDepth int
}

// New creates a Logger writing to stdout with the given name; an empty
// name omits the name field from the prefix.
func New(name string) *Logger {
	return &Logger{name: name, out: os.Stdout, callDepth: 4}
}

// WithOutput returns a copy of l writing to out instead of stdout.
func (l *Logger) WithOutput(out io.Writer) *Logger {
	if out == nil {
		out = os.Stdout
	}
	return &Logger{name: l.name, out: out, callDepth: l.callDepth}
}

func (l *Logger) Errorf(format string, a ...interface{}) { l.logf(LevelError, format, a...) }
func (l *Logger) Warnf(format string, a ...interface{})  { l.logf(LevelWarn, format, a...) }
func (l *Logger) Infof(format string, a ...interface{})  { l.logf(LevelInfo, format, a...) }
func (l *Logger) Debugf(format string, a ...interface{}) { l.logf(LevelDebug, format, a...) }
func (l *Logger) Tracef(format string, a ...interface{}) { l.logf(LevelTrace, format, a...) }

func (l *Logger) logf(lvl int, format string, a ...interface{}) {
	if level > lvl {
		return
	}
	if _, err := fmt.Fprintf(l.out, l.prefix(lvl)+format+reset+"\n", a...); err != nil {
		fmt.Fprintf(os.Stderr, "xshm: logger write failed: %v\n", err)
	}
}

func (l *Logger) prefix(lvl int) string {
	var buf bytes.Buffer
	buf.WriteString(colors[lvl])
	buf.WriteString(levelName[lvl])
	buf.WriteByte(' ')
	buf.WriteString(time.Now().Format("2006-01-02 15:04:05.999999"))
	buf.WriteByte(' ')
	buf.WriteString(l.location())
	buf.WriteByte(' ')
	if l.name != "" {
		buf.WriteString(l.name)
		buf.WriteByte(' ')
	}
	return buf.String()
}

func (l *Logger) location() string {
	_, file, line, ok := runtime.Caller(l.callDepth)
	if !ok {
		file, line = "???", 0
	}
	return filepath.Base(file) + ":" + strconv.Itoa(line)
}
