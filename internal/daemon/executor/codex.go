package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"agentmarket/internal/domain/model"

	"github.com/rs/zerolog"
)

// CodexExecutor wraps `codex exec --json`. Its event stream is much
// flatter than claude's: message events become text updates, command
// events become terminal updates, everything else is ignored.
type CodexExecutor struct {
	bin string
	log *zerolog.Logger
}

var _ Executor = (*CodexExecutor)(nil)

func NewCodexExecutor(logger *zerolog.Logger) *CodexExecutor {
	bin := "codex"
	if path, err := exec.LookPath("codex"); err == nil {
		bin = path
	}
	l := logger.With().Str("component", "CodexExecutor").Logger()
	return &CodexExecutor{bin: bin, log: &l}
}

func (e *CodexExecutor) Execute(ctx context.Context, job *model.Job, workDir string, onUpdate OnUpdate, _ Interactivity) (ExecutionResult, error) {
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return failedResult("cannot create work dir: " + err.Error()), nil
	}
	prompt := BuildPrompt(job, workDir)

	cmd := exec.CommandContext(ctx, e.bin, "exec", prompt, "--json")
	cmd.Dir = workDir
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return failedResult("codex pipe: " + err.Error()), nil
	}
	cmd.Stderr = os.Stderr

	e.log.Info().Str("bin", e.bin).Str("job_id", job.ID).Msg("spawning codex")
	if err := cmd.Start(); err != nil {
		msg := "Failed to spawn codex: " + err.Error()
		onUpdate(KindText, msg)
		return failedResult(msg), nil
	}

	onUpdate(KindText, "Agent started via Codex")
	e.consumeStream(stdout, onUpdate)

	waitErr := cmd.Wait()
	if ctx.Err() != nil {
		return ExecutionResult{}, ctx.Err()
	}

	files := CollectFiles(workDir)
	var summary string
	if waitErr == nil {
		summary = fmt.Sprintf("Job completed via Codex. %d file(s) created.", len(files))
	} else {
		summary = fmt.Sprintf("Job finished with exit code %d. %d file(s) in working directory.", exitCode(waitErr), len(files))
	}
	onUpdate(KindText, summary)
	return ExecutionResult{Success: waitErr == nil, Files: files, Summary: summary}, nil
}

func (e *CodexExecutor) consumeStream(r io.Reader, onUpdate OnUpdate) {
	var splitter LineSplitter
	buf := make([]byte, 16*1024)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			for _, line := range splitter.Feed(buf[:n]) {
				e.handleLine(line, onUpdate)
			}
		}
		if err != nil {
			break
		}
	}
	if tail := splitter.Flush(); strings.TrimSpace(tail) != "" {
		e.handleLine(tail, onUpdate)
	}
}

func (e *CodexExecutor) handleLine(line string, onUpdate OnUpdate) {
	if strings.TrimSpace(line) == "" {
		return
	}
	var event map[string]any
	if err := json.Unmarshal([]byte(line), &event); err != nil {
		fmt.Fprintln(os.Stdout, line)
		return
	}
	switch event["type"] {
	case "message":
		if content, ok := event["content"].(string); ok {
			onUpdate(KindText, truncate(content, 200))
		}
	case "command":
		if command, ok := event["command"].(string); ok {
			onUpdate(KindTerminal, truncate(command, 200))
		}
	}
}
