package eval

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// RunLog persists the full evaluation transcript to a timestamped file so a
// run can be reviewed after the terminal output is gone.
type RunLog struct {
	file *os.File
	path string
}

// NewRunLog creates the log directory if needed and opens a fresh log file
// named after the pipeline and start time.
func NewRunLog(dir, pipeline string) (*RunLog, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("eval: failed to create log dir: %w", err)
	}

	name := fmt.Sprintf("%s_%s.log", pipeline, time.Now().Format("20060102_150405"))
	path := filepath.Join(dir, name)

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("eval: failed to create log file: %w", err)
	}
	return &RunLog{file: file, path: path}, nil
}

// Line appends one timestamped line. Errors are swallowed; losing a log
// line must not interrupt an evaluation run.
func (l *RunLog) Line(text string) {
	if l == nil || l.file == nil {
		return
	}
	fmt.Fprintf(l.file, "%s - %s\n", time.Now().Format("2006-01-02 15:04:05"), text)
}

// Path returns the log file location.
func (l *RunLog) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Close flushes and closes the underlying file.
func (l *RunLog) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}
