package executor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"agentmarket/internal/domain/model"

	"github.com/rs/zerolog"
)

// ClaudeCodeExecutor drives the `claude` CLI in stream-json mode and
// translates its event stream into progress updates. Lines that are not
// JSON are passed through to stdout untouched.
type ClaudeCodeExecutor struct {
	bin            string
	maxTurns       int
	rollupInterval time.Duration
	log            *zerolog.Logger
}

var _ Executor = (*ClaudeCodeExecutor)(nil)

func NewClaudeCodeExecutor(maxTurns int, logger *zerolog.Logger) *ClaudeCodeExecutor {
	if maxTurns <= 0 {
		maxTurns = 50
	}
	bin := "claude"
	if path, err := exec.LookPath("claude"); err == nil {
		bin = path
	}
	l := logger.With().Str("component", "ClaudeCodeExecutor").Logger()
	return &ClaudeCodeExecutor{bin: bin, maxTurns: maxTurns, rollupInterval: rollupInterval, log: &l}
}

func (e *ClaudeCodeExecutor) Execute(ctx context.Context, job *model.Job, workDir string, onUpdate OnUpdate, _ Interactivity) (ExecutionResult, error) {
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return failedResult("cannot create work dir: " + err.Error()), nil
	}
	prompt := BuildPrompt(job, workDir)

	cmd := exec.CommandContext(ctx, e.bin,
		"-p", prompt,
		"--output-format", "stream-json",
		"--verbose",
		"--max-turns", strconv.Itoa(e.maxTurns),
		"--dangerously-skip-permissions",
	)
	cmd.Dir = workDir
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return failedResult("claude pipe: " + err.Error()), nil
	}
	cmd.Stderr = os.Stderr

	e.log.Info().Str("bin", e.bin).Str("job_id", job.ID).Msg("spawning claude")
	if err := cmd.Start(); err != nil {
		msg := "Failed to spawn claude: " + err.Error()
		onUpdate(KindText, msg)
		return failedResult(msg), nil
	}

	onUpdate(KindText, "Agent started working")
	e.consumeStream(stdout, workDir, onUpdate)

	waitErr := cmd.Wait()
	if ctx.Err() != nil {
		return ExecutionResult{}, ctx.Err()
	}

	files := CollectFiles(workDir)
	var summary string
	if waitErr == nil {
		summary = fmt.Sprintf("Job completed successfully. %d file(s) created.", len(files))
	} else {
		summary = fmt.Sprintf("Job finished with exit code %d. %d file(s) in working directory.", exitCode(waitErr), len(files))
	}
	onUpdate(KindText, summary)
	return ExecutionResult{Success: waitErr == nil, Files: files, Summary: summary}, nil
}

// consumeStream reads NDJSON events until EOF, relaying tool activity
// immediately and batching action labels for the broker.
func (e *ClaudeCodeExecutor) consumeStream(r io.Reader, workDir string, onUpdate OnUpdate) {
	roll := newRollup(e.rollupInterval)
	var splitter LineSplitter
	buf := make([]byte, 16*1024)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			for _, line := range splitter.Feed(buf[:n]) {
				e.handleLine(line, workDir, onUpdate, roll)
			}
		}
		if err != nil {
			break
		}
	}
	if tail := splitter.Flush(); strings.TrimSpace(tail) != "" {
		e.handleLine(tail, workDir, onUpdate, roll)
	}
	if digest, ok := roll.Flush(); ok {
		onUpdate(KindText, digest)
	}
}

func (e *ClaudeCodeExecutor) handleLine(line string, workDir string, onUpdate OnUpdate, roll *rollup) {
	if strings.TrimSpace(line) == "" {
		return
	}
	var event map[string]any
	if err := json.Unmarshal([]byte(line), &event); err != nil {
		// Not an event; pass through.
		fmt.Fprintln(os.Stdout, line)
		return
	}
	strip := pathStripper(workDir)

	switch event["type"] {
	case "assistant":
		msg, _ := event["message"].(map[string]any)
		blocks, _ := msg["content"].([]any)
		for _, raw := range blocks {
			block, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			switch block["type"] {
			case "text":
				if text, ok := block["text"].(string); ok {
					roll.Add(truncate(strip(text), 500))
				}
			case "tool_use":
				e.handleToolUse(block, strip, onUpdate, roll)
			}
		}
		if digest, ok := roll.MaybeFlush(); ok {
			onUpdate(KindText, digest)
		}
	case "result":
		if result, ok := event["result"].(string); ok {
			onUpdate(KindText, truncate(strip(result), 200))
		}
	}
}

func (e *ClaudeCodeExecutor) handleToolUse(block map[string]any, strip func(string) string, onUpdate OnUpdate, roll *rollup) {
	toolName, _ := block["name"].(string)
	if toolName == "" {
		toolName = "tool"
	}
	input, _ := block["input"].(map[string]any)
	target := truncate(strip(firstString(input, "file_path", "path", "command", "pattern")), 60)
	label := toolName
	if target != "" {
		label = toolName + ": " + target
	}
	roll.Add(label)
	onUpdate(KindTerminal, label)

	filePath, _ := input["file_path"].(string)
	switch toolName {
	case "Write":
		content, ok := input["content"].(string)
		if filePath == "" || !ok {
			return
		}
		payload, _ := json.Marshal(map[string]string{"path": strip(filePath), "content": content})
		onUpdate(KindFileWrite, string(payload))
	case "Edit":
		if filePath == "" {
			return
		}
		payload, _ := json.Marshal(map[string]any{
			"path": strip(filePath),
			"edit": map[string]any{"old_string": input["old_string"], "new_string": input["new_string"]},
		})
		onUpdate(KindFileWrite, string(payload))
	}
}

func failedResult(summary string) ExecutionResult {
	return ExecutionResult{Success: false, Files: []model.FileRecord{}, Summary: summary}
}

func pathStripper(workDir string) func(string) string {
	return func(s string) string {
		s = strings.ReplaceAll(s, workDir+"/", "")
		return strings.ReplaceAll(s, workDir, "")
	}
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func exitCode(err error) int {
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode()
	}
	return -1
}
