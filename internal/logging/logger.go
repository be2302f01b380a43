// Package logging provides leveled logging and decision tracing for recsim.
// It offers two complementary outputs:
//   - A leveled slog.Logger for stderr (operational output)
//   - A DecisionLogger for structured JSONL consideration traces (<output dir>/decisions.jsonl)
package logging

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/goccy/go-json"
)

// LevelTrace is a custom slog level below Debug for per-person logging.
// At this level every person's tick outcome is logged.
const LevelTrace = slog.LevelDebug - 4

// DecisionsFile is the name of the JSONL trace written into the output directory.
const DecisionsFile = "decisions.jsonl"

// ParseLevel maps a string level name to a slog.Level.
// Supported values: "info", "debug", "trace" (case-insensitive).
// Unknown values default to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "trace":
		return LevelTrace
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a leveled slog.Logger writing to w.
func NewLogger(level string, w io.Writer) *slog.Logger {
	lvl := ParseLevel(level)
	opts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Label the custom trace level
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Decision is one consideration of a recommended good.
type Decision struct {
	Experiment      int     `json:"experiment"`
	Phase           string  `json:"phase"`
	Tick            int     `json:"tick"`
	Person          string  `json:"person"`
	Good            int     `json:"good"`
	TrueUtility     float64 `json:"true_utility"`
	ExpectedUtility float64 `json:"expected_utility"`
	Consumed        bool    `json:"consumed"`
	Rating          *int    `json:"rating,omitempty"`
	BudgetLeft      int     `json:"budget_left"`
}

// DecisionLogger writes decisions to a JSONL file.
// It is safe for concurrent use. A nil DecisionLogger is safe to use;
// all methods are no-ops on nil receiver.
//
// Experiments running in parallel should each log into their own Buffer and
// Flush in experiment order, so the file lists every experiment's decisions
// contiguously.
type DecisionLogger struct {
	mu   sync.Mutex
	file *os.File

	// Set on buffers only.
	parent *DecisionLogger
	buf    bytes.Buffer
}

// NewDecisionLogger creates a decision logger writing to dir/decisions.jsonl.
// At "info" level (the default), returns nil and no file is created.
// At "debug" or "trace" level, the file is truncated so it holds one run.
// Returns nil if the file cannot be opened. All methods are nil-safe.
func NewDecisionLogger(dir string, level string) *DecisionLogger {
	lvl := ParseLevel(level)
	if lvl == slog.LevelInfo {
		return nil
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil
	}

	path := filepath.Join(dir, DecisionsFile)
	f, err := os.OpenFile(path, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil
	}

	return &DecisionLogger{file: f}
}

// Log writes a decision as a single JSONL line.
// Safe to call on nil receiver.
func (dl *DecisionLogger) Log(d Decision) {
	if dl == nil {
		return
	}

	data, err := json.Marshal(d)
	if err != nil {
		return
	}
	data = append(data, '\n')

	dl.write(data)
}

func (dl *DecisionLogger) write(data []byte) {
	dl.mu.Lock()
	defer dl.mu.Unlock()
	if dl.parent != nil {
		dl.buf.Write(data)
		return
	}
	if dl.file == nil {
		return
	}
	_, _ = dl.file.Write(data)
}

// Buffer returns a logger that holds decisions in memory until Flush.
// It returns nil when dl is nil.
func (dl *DecisionLogger) Buffer() *DecisionLogger {
	if dl == nil {
		return nil
	}
	return &DecisionLogger{parent: dl}
}

// Flush appends the buffered decisions to the parent file in one write and
// empties the buffer. It does nothing on a logger that is not a buffer.
func (dl *DecisionLogger) Flush() {
	if dl == nil || dl.parent == nil {
		return
	}
	dl.mu.Lock()
	data := bytes.Clone(dl.buf.Bytes())
	dl.buf.Reset()
	dl.mu.Unlock()
	if len(data) > 0 {
		dl.parent.write(data)
	}
}

// Close closes the underlying file. Safe to call on nil receiver.
func (dl *DecisionLogger) Close() {
	if dl == nil {
		return
	}

	dl.mu.Lock()
	defer dl.mu.Unlock()
	if dl.file == nil {
		return
	}

	dl.file.Close()
	dl.file = nil
}
