// Package audit writes an append-only, size-rotated JSON-lines log of every
// gateway operation. Auditing is strictly best-effort: nothing here may fail
// the operation that produced the entry.
package audit

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Entry is one immutable audit record. Ordering is per-process append order.
type Entry struct {
	Timestamp time.Time      `json:"ts"`
	Operation string         `json:"op"`
	Args      map[string]any `json:"args"`
	OK        bool           `json:"ok"`
	Meta      map[string]any `json:"meta,omitempty"`
}

// Log is the audit sink. Safe for concurrent use; entries from one process
// preserve call order.
type Log struct {
	mu         sync.Mutex
	path       string
	maxBytes   int64
	maxBackups int
	logger     *slog.Logger
}

// NewLog creates an audit log at path, rotating once the file exceeds
// maxBytes and keeping maxBackups numbered backups.
func NewLog(path string, maxBytes int64, maxBackups int, logger *slog.Logger) *Log {
	return &Log{path: path, maxBytes: maxBytes, maxBackups: maxBackups, logger: logger}
}

// Path returns the configured log location.
func (l *Log) Path() string { return l.path }

// Append serializes the entry to one JSON line and writes it. All failures
// (serialization, rotation, disk) are swallowed; the most they get is a
// debug log line.
func (l *Log) Append(e Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := json.Marshal(e)
	if err != nil {
		l.debug("audit_marshal_failed", err)
		return
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o750); err != nil {
		l.debug("audit_mkdir_failed", err)
		return
	}
	l.rotateIfNeeded()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		l.debug("audit_open_failed", err)
		return
	}
	defer func() { _ = f.Close() }()
	if _, err := f.Write(append(data, '\n')); err != nil {
		l.debug("audit_write_failed", err)
	}
}

// rotateIfNeeded shifts numbered backups upward and starts a fresh log when
// the current file exceeds the byte threshold. The oldest backup past
// maxBackups is discarded. Caller holds the lock; errors are swallowed.
func (l *Log) rotateIfNeeded() {
	info, err := os.Stat(l.path)
	if err != nil || info.Size() <= l.maxBytes {
		return
	}
	for i := l.maxBackups; i >= 1; i-- {
		src := l.path
		if i > 1 {
			src = fmt.Sprintf("%s.%d", l.path, i-1)
		}
		dst := fmt.Sprintf("%s.%d", l.path, i)
		if _, err := os.Stat(src); err != nil {
			continue
		}
		_ = os.Remove(dst)
		if err := os.Rename(src, dst); err != nil {
			l.debug("audit_rotate_failed", err)
		}
	}
}

func (l *Log) debug(msg string, err error) {
	if l.logger != nil {
		l.logger.Debug(msg, "error", err)
	}
}
