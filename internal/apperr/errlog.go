package apperr

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
)

// Log is the append-only error log.  Each entry is one line.
type Log struct {
	l *log.Logger
}

// OpenLog opens path for appending, creating parent directories.
func OpenLog(path string) (*Log, *os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open error log: %w", err)
	}
	return NewLog(f), f, nil
}

func NewLog(w io.Writer) *Log {
	return &Log{l: log.New(w, "", log.LstdFlags|log.LUTC)}
}

// Record writes one failure.  A nil Log discards it.
func (l *Log) Record(requestID, method, path string, status int, err error) {
	if l == nil {
		return
	}
	if requestID == "" {
		requestID = "-"
	}
	l.l.Printf("%s %s %s %d %v", requestID, method, path, status, err)
}
