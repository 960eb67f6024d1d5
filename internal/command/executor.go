package command

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AltairaLabs/toolgate/internal/types"
)

// Result is the outcome of one completed execution.
type Result struct {
	ReturnCode int    `json:"returncode"`
	Stdout     string `json:"stdout"`
	Stderr     string `json:"stderr"`
	ElapsedMs  int64  `json:"elapsed_ms"`
}

// Executor supervises subprocess execution: bounded by a timeout, forcibly
// terminated on expiry, output captured to completion. Validation happens
// before the executor is reached; by the time Run is called the command text
// has passed the whitelist.
type Executor struct {
	workDir string
	watcher *Watcher
}

// NewExecutor creates an executor running commands in workDir.
func NewExecutor(workDir string, watcher *Watcher) *Executor {
	return &Executor{workDir: workDir, watcher: watcher}
}

// Run executes the command with the given timeout. On expiry the process is
// killed and awaited before Timeout is reported. Output that is not valid
// UTF-8 is decoded with replacement characters, never an error.
func (e *Executor) Run(ctx context.Context, commandText string, timeout time.Duration) (*Result, error) {
	id := uuid.NewString()
	e.watcher.Start(id, commandText)

	commandText = hardenGitInvocation(id, commandText, e.watcher)

	fields := strings.Fields(commandText)
	if len(fields) == 0 {
		e.watcher.End(id, false, -1, 0)
		return nil, types.E(types.KindCommandRejected, "run_command", "empty command")
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// #nosec G204 - command text has passed the anchored whitelist
	cmd := exec.CommandContext(ctx, fields[0], fields[1:]...)
	cmd.Dir = e.workDir
	cmd.Env = nonInteractiveEnv()
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	e.watcher.Update(id, StatusExecuting, "")
	err := cmd.Run()
	elapsed := time.Since(start)
	elapsedMs := elapsed.Milliseconds()

	// Timeout: CommandContext has killed the process and Run has awaited
	// its actual exit before returning here.
	if ctx.Err() == context.DeadlineExceeded {
		e.watcher.Update(id, StatusTimeout, "")
		e.watcher.End(id, false, -1, elapsedMs)
		return nil, types.E(types.KindTimeout, "run_command",
			"command timed out after %s", timeout)
	}

	res := &Result{
		Stdout:    strings.ToValidUTF8(stdout.String(), "�"),
		Stderr:    strings.ToValidUTF8(stderr.String(), "�"),
		ElapsedMs: elapsedMs,
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// Non-zero exit is a completed execution, not a failure of
			// the operation.
			res.ReturnCode = exitErr.ExitCode()
			e.watcher.Update(id, StatusCompleted, "")
			e.watcher.End(id, false, res.ReturnCode, elapsedMs)
			return res, nil
		}
		e.watcher.Update(id, StatusError, err.Error())
		e.watcher.End(id, false, -1, elapsedMs)
		return nil, types.Wrap(types.KindSubprocessError, "run_command", err)
	}

	res.ReturnCode = 0
	e.watcher.Update(id, StatusCompleted, "")
	e.watcher.End(id, true, 0, elapsedMs)
	return res, nil
}

// hardenGitInvocation injects --no-pager into git commands that lack it, so
// a pager can never block the call.
func hardenGitInvocation(id, commandText string, w *Watcher) string {
	trimmed := strings.TrimSpace(commandText)
	if !strings.HasPrefix(trimmed, "git ") || strings.Contains(trimmed, "--no-pager") {
		return commandText
	}
	rest := strings.TrimSpace(strings.TrimPrefix(trimmed, "git"))
	w.Update(id, StatusSpawning, "injected --no-pager")
	if rest == "" {
		return "git --no-pager"
	}
	return "git --no-pager " + rest
}

// nonInteractiveEnv forces child processes into non-interactive behavior:
// no pagers, no credential prompts.
func nonInteractiveEnv() []string {
	return append(os.Environ(),
		"GIT_PAGER=cat",
		"PAGER=cat",
		"GIT_TERMINAL_PROMPT=0",
		"GIT_ASKPASS=",
		"GCM_INTERACTIVE=never",
	)
}
