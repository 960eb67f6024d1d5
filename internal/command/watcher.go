package command

import (
	"log/slog"
	"sync"
	"time"
)

// Execution status values reported by the watcher.
const (
	StatusSpawning  = "spawning"
	StatusExecuting = "executing"
	StatusCompleted = "completed"
	StatusTimeout   = "timeout"
	StatusError     = "error"
)

// ActiveCommand tracks one in-flight execution. It lives only for the
// duration of the invocation that created it.
type ActiveCommand struct {
	ID        string    `json:"id"`
	Command   string    `json:"command"`
	StartTime time.Time `json:"start_time"`
	Status    string    `json:"status"`
}

// Outcome is one completed execution kept in the diagnostics ring.
type Outcome struct {
	Command    string    `json:"command"`
	Success    bool      `json:"success"`
	ReturnCode int       `json:"returncode"`
	ElapsedMs  int64     `json:"elapsed_ms"`
	Timestamp  time.Time `json:"timestamp"`
}

// Status is the watcher snapshot returned by diagnostics.
type Status struct {
	Enabled        bool      `json:"enabled"`
	ActiveCommands int       `json:"active_commands"`
	Recent         []Outcome `json:"recent_commands"`
}

// Watcher observes command execution: live status for in-flight commands and
// a bounded ring of recent outcomes. It never affects execution correctness.
type Watcher struct {
	mu       sync.Mutex
	enabled  bool
	active   map[string]*ActiveCommand
	history  []Outcome
	capacity int
	logger   *slog.Logger
}

// NewWatcher creates a watcher keeping up to capacity recent outcomes.
func NewWatcher(enabled bool, capacity int, logger *slog.Logger) *Watcher {
	return &Watcher{
		enabled:  enabled,
		active:   make(map[string]*ActiveCommand),
		capacity: capacity,
		logger:   logger,
	}
}

// Start records a new in-flight command.
func (w *Watcher) Start(id, command string) {
	if !w.enabled {
		return
	}
	w.mu.Lock()
	w.active[id] = &ActiveCommand{
		ID:        id,
		Command:   command,
		StartTime: time.Now(),
		Status:    StatusSpawning,
	}
	w.mu.Unlock()
	w.logger.Info("command_start", "id", id, "command", truncate(command, 80))
}

// Update changes the live status of an in-flight command.
func (w *Watcher) Update(id, status, message string) {
	if !w.enabled {
		return
	}
	w.mu.Lock()
	if ac, ok := w.active[id]; ok {
		ac.Status = status
	}
	w.mu.Unlock()
	if message != "" {
		w.logger.Info("command_status", "id", id, "status", status, "message", message)
	}
}

// End retires an in-flight command into the outcome ring.
func (w *Watcher) End(id string, success bool, returncode int, elapsedMs int64) {
	if !w.enabled {
		return
	}
	w.mu.Lock()
	ac, ok := w.active[id]
	if !ok {
		w.mu.Unlock()
		return
	}
	delete(w.active, id)
	w.history = append(w.history, Outcome{
		Command:    ac.Command,
		Success:    success,
		ReturnCode: returncode,
		ElapsedMs:  elapsedMs,
		Timestamp:  time.Now(),
	})
	if len(w.history) > w.capacity {
		w.history = w.history[len(w.history)-w.capacity:]
	}
	w.mu.Unlock()
	w.logger.Info("command_end",
		"id", id,
		"command", truncate(ac.Command, 60),
		"success", success,
		"returncode", returncode,
		"elapsed_ms", elapsedMs,
	)
}

// Snapshot returns the watcher status with at most n recent outcomes.
func (w *Watcher) Snapshot(n int) Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	recent := w.history
	if len(recent) > n {
		recent = recent[len(recent)-n:]
	}
	out := make([]Outcome, len(recent))
	copy(out, recent)
	return Status{
		Enabled:        w.enabled,
		ActiveCommands: len(w.active),
		Recent:         out,
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
