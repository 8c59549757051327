package executor

import (
	"fmt"
	"strings"

	"agentmarket/internal/domain/model"
)

// BuildPrompt renders the work order handed to every backend.
func BuildPrompt(job *model.Job, workDir string) string {
	lines := []string{
		"You are an autonomous agent executing a job from a marketplace.",
		"",
		"## Job Details",
		fmt.Sprintf("- Title: %s", job.Title),
		fmt.Sprintf("- Description: %s", job.Description),
		fmt.Sprintf("- Budget: %g USDC", job.Budget),
		"",
		"## Instructions",
		fmt.Sprintf("1. Work in the current directory: %s", workDir),
		"2. Complete the job as described above",
		"3. Create all necessary files in the current directory",
		"4. Make sure everything works and is complete",
		"5. When done, provide a brief summary of what you built",
		"",
		"Do your best work. The job poster will review your deliverables.",
	}
	return strings.Join(lines, "\n")
}
