package sandbox

import (
	"time"
)

// Config defines runtime configuration
type Config struct {
	Timeout       time.Duration // Per-script execution timeout
	EnableConsole bool          // Capture console.log/warn/error
	MaxCallStack  int           // Maximum call stack depth, 0 for the goja default
}

// Result holds execution result
type Result struct {
	Value    interface{}   // Completion value
	Console  []LogEntry    // Console output produced by this execution
	Duration time.Duration // Execution time
}

// LogEntry represents console output
type LogEntry struct {
	Level   string    // log, info, warn, error, debug
	Message string    // Joined arguments
	Source  string    // Script name
	Time    time.Time // Timestamp
}

// ConsoleSink receives console entries as they are produced
type ConsoleSink func(LogEntry)

// Element is the view of a document node exposed to scripts
type Element interface {
	TagName() string
	ID() string
	TextContent() string
	Attribute(name string) (string, bool)
	SetAttribute(name, value string)
}

// DOM is the host document a runtime is bound to
type DOM interface {
	QuerySelector(selector string) (Element, bool)
	QuerySelectorAll(selector string) []Element
	Title() string
}

// DefaultConfig returns the default runtime configuration
func DefaultConfig() Config {
	return Config{
		Timeout:       5 * time.Second,
		EnableConsole: true,
		MaxCallStack:  1024,
	}
}
