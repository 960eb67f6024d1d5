package gateway

import (
	"context"
	"time"

	"github.com/AltairaLabs/toolgate/internal/command"
)

// RunCommand validates commandText against the whitelist and executes it in
// the workspace root under the given timeout. Rejections and timeouts are
// errors; a non-zero exit from an allowed command is a successful result.
func (g *Gateway) RunCommand(ctx context.Context, commandText string, timeout time.Duration) (*command.Result, error) {
	const op = "run_command"
	if err := g.allow(classCommand, op); err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = g.cfg.CommandTimeout()
	}
	args := map[string]any{"command": commandText, "timeout_s": timeout.Seconds()}

	if err := g.valid.Validate(commandText); err != nil {
		g.audit(op, args, false, map[string]any{"error": err.Error()})
		return nil, err
	}

	res, err := g.executor.Run(ctx, commandText, timeout)
	if err != nil {
		g.audit(op, args, false, map[string]any{"error": err.Error()})
		return nil, err
	}

	g.audit(op, args, true, map[string]any{
		"returncode": res.ReturnCode,
		"elapsed_ms": res.ElapsedMs,
	})
	return res, nil
}
