package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"agentmarket/internal/domain/model"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/rs/zerolog"
)

const instructionPollInterval = 3 * time.Second

// sdkSystemPrompt teaches the model the file protocol: since a bare chat
// completion cannot touch the filesystem, deliverable files travel inline
// as fenced blocks that the executor materializes into the work directory.
const sdkSystemPrompt = `You are an autonomous coding agent. You cannot run commands. ` +
	`To create a deliverable file, emit a fenced code block whose info string is ` +
	"`path=<relative/file/path>`" + `; the block body becomes the file content. ` +
	`Emit one block per file. Finish with a short summary of what you built.`

// SDKExecutor runs jobs over streaming chat completions instead of a local
// CLI. It is the only backend with an interactivity channel: a polling
// loop injects pending poster instructions as follow-up turns while the
// job runs.
type SDKExecutor struct {
	client       openai.Client
	model        string
	maxTurns     int
	pollInterval time.Duration
	log          *zerolog.Logger
}

var _ Executor = (*SDKExecutor)(nil)

func NewSDKExecutor(apiKey, baseURL, model string, maxTurns int, logger *zerolog.Logger) *SDKExecutor {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if model == "" {
		model = "gpt-4o"
	}
	if maxTurns <= 0 {
		maxTurns = 50
	}
	l := logger.With().Str("component", "SDKExecutor").Logger()
	return &SDKExecutor{
		client:       openai.NewClient(opts...),
		model:        model,
		maxTurns:     maxTurns,
		pollInterval: instructionPollInterval,
		log:          &l,
	}
}

func (e *SDKExecutor) Execute(ctx context.Context, job *model.Job, workDir string, onUpdate OnUpdate, interactivity Interactivity) (ExecutionResult, error) {
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return failedResult("cannot create work dir: " + err.Error()), nil
	}
	onUpdate(KindText, "Agent started via SDK")

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(sdkSystemPrompt),
		openai.UserMessage(BuildPrompt(job, workDir)),
	}

	// Instructions arrive out of band; the poll loop queues them and the
	// turn loop turns each one into a follow-up user message.
	instrCh := make(chan string, 16)
	done := make(chan struct{})
	var wg sync.WaitGroup
	if interactivity != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.pollInstructions(ctx, interactivity, instrCh, done, onUpdate)
		}()
	}

	var lastText string
	for turn := 0; turn < e.maxTurns; turn++ {
		text, err := e.runTurn(ctx, messages, onUpdate)
		if err != nil {
			close(done)
			wg.Wait()
			if ctx.Err() != nil {
				return ExecutionResult{}, ctx.Err()
			}
			msg := "Error: " + err.Error()
			onUpdate(KindText, msg)
			return ExecutionResult{Success: false, Files: CollectFiles(workDir), Summary: msg}, nil
		}
		lastText = text
		messages = append(messages, openai.AssistantMessage(text))
		e.materializeFiles(text, workDir, onUpdate)

		instruction, ok := e.nextInstruction(instrCh)
		if !ok {
			break
		}
		messages = append(messages, openai.UserMessage(instruction))
	}

	close(done)
	wg.Wait()

	files := CollectFiles(workDir)
	summary := strings.TrimSpace(lastText)
	if summary == "" {
		summary = fmt.Sprintf("Job completed via SDK. %d file(s) created.", len(files))
	}
	summary = truncate(summary, 200)
	onUpdate(KindText, summary)
	return ExecutionResult{Success: true, Files: files, Summary: summary}, nil
}

// runTurn streams one completion and returns the full assistant text.
func (e *SDKExecutor) runTurn(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion, onUpdate OnUpdate) (string, error) {
	stream := e.client.Chat.Completions.NewStreaming(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(e.model),
		Messages: messages,
	})
	defer stream.Close()

	var text strings.Builder
	for stream.Next() {
		chunk := stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		text.WriteString(chunk.Choices[0].Delta.Content)
	}
	if err := stream.Err(); err != nil {
		return "", err
	}
	if t := strings.TrimSpace(text.String()); t != "" {
		onUpdate(KindText, truncate(t, 200))
	}
	return text.String(), nil
}

// pollInstructions forwards pending poster instructions until done closes.
// It acks each instruction after queueing it and always exits within one
// poll interval of the run ending.
func (e *SDKExecutor) pollInstructions(ctx context.Context, interactivity Interactivity, instrCh chan<- string, done <-chan struct{}, onUpdate OnUpdate) {
	ticker := time.NewTicker(e.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		instructions, err := interactivity.PendingInstructions(ctx)
		if err != nil {
			continue
		}
		for _, in := range instructions {
			onUpdate(KindText, "Received instruction: "+truncate(in.Content, 100))
			select {
			case instrCh <- in.Content:
			case <-done:
				return
			}
			if err := interactivity.MarkDelivered(ctx, in.ID); err != nil {
				e.log.Warn().Err(err).Str("instruction_id", in.ID).Msg("instruction ack failed")
			}
		}
	}
}

func (e *SDKExecutor) nextInstruction(instrCh <-chan string) (string, bool) {
	select {
	case instruction := <-instrCh:
		return instruction, true
	default:
		return "", false
	}
}

// materializeFiles writes every `path=` fenced block in text into workDir.
func (e *SDKExecutor) materializeFiles(text, workDir string, onUpdate OnUpdate) {
	for _, f := range parseFileBlocks(text) {
		full := filepath.Join(workDir, filepath.FromSlash(f.Path))
		if !strings.HasPrefix(full, filepath.Clean(workDir)+string(os.PathSeparator)) {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			continue
		}
		if err := os.WriteFile(full, []byte(f.Content), 0o644); err != nil {
			e.log.Warn().Err(err).Str("path", f.Path).Msg("file write failed")
			continue
		}
		onUpdate(KindTerminal, "Write: "+truncate(f.Path, 60))
		payload, _ := json.Marshal(map[string]string{"path": f.Path, "content": f.Content})
		onUpdate(KindFileWrite, string(payload))
	}
}

// parseFileBlocks extracts ```path=... fenced blocks from assistant text.
func parseFileBlocks(text string) []model.FileRecord {
	var files []model.FileRecord
	lines := strings.Split(text, "\n")
	for i := 0; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(trimmed, "```path=") {
			continue
		}
		path := strings.TrimSpace(strings.TrimPrefix(trimmed, "```path="))
		if path == "" {
			continue
		}
		var body []string
		closed := false
		for i++; i < len(lines); i++ {
			if strings.TrimSpace(lines[i]) == "```" {
				closed = true
				break
			}
			body = append(body, lines[i])
		}
		if !closed {
			break
		}
		files = append(files, model.FileRecord{
			Path:    filepath.ToSlash(filepath.Clean(path)),
			Content: strings.Join(body, "\n") + "\n",
		})
	}
	return files
}
