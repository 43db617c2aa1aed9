// Package agent assembles the career assistant: a gemini-backed llmagent
// wired to the tracker, outreach, discovery, letters, portfolio and
// scratchpad tools.
package agent

import (
	"context"
	"fmt"

	adkagent "google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/model/gemini"
	"google.golang.org/genai"
)

// Config carries everything New needs. Model and Name fall back to the
// usual defaults when empty; Candidate personalizes the instruction.
type Config struct {
	APIKey    string
	Model     string
	Name      string
	Candidate string
	Toolset   *Toolset
}

// New builds the llm agent with the full toolset attached.
func New(ctx context.Context, cfg Config) (adkagent.Agent, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("agent: api key is required")
	}
	if cfg.Toolset == nil {
		return nil, fmt.Errorf("agent: toolset is required")
	}
	modelName := cfg.Model
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}
	name := cfg.Name
	if name == "" {
		name = "career_assistant"
	}

	model, err := gemini.NewModel(ctx, modelName, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create model: %v", err)
	}

	tools, err := cfg.Toolset.Tools()
	if err != nil {
		return nil, err
	}

	assistant, err := llmagent.New(llmagent.Config{
		Name:        name,
		Model:       model,
		Description: "Personal career assistant for job applications, cold outreach and opportunity discovery",
		Instruction: prompt(cfg.Candidate),
		Tools:       tools,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create agent: %v", err)
	}

	return assistant, nil
}
