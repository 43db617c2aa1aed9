package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	adkagent "google.golang.org/adk/agent"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
	"google.golang.org/genai"

	"careerpilot.local/internal/agent"
	"careerpilot.local/internal/llm"
)

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Talk to the assistant interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()
			return a.runChat(cmd.Context())
		},
	}
}

func newAskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <message>",
		Short: "Send the assistant a single message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()
			return a.runAsk(cmd.Context(), args[0])
		},
	}
}

// assistantSession holds one runner-backed conversation.
type assistantSession struct {
	runner    *runner.Runner
	userID    string
	sessionID string
}

func (a *app) newAssistant(ctx context.Context) (*assistantSession, error) {
	let, err := a.newLetters(ctx)
	if err != nil {
		return nil, err
	}

	assistant, err := agent.New(ctx, agent.Config{
		APIKey:    a.cfg.GoogleAPIKey,
		Model:     a.cfg.Model,
		Name:      a.cfg.AgentName,
		Candidate: a.cfg.CandidateName,
		Toolset: &agent.Toolset{
			Docs:      a.docs,
			Pad:       a.pad,
			Tracker:   a.tracker,
			Outreach:  a.outreach,
			Discovery: a.discovery,
			Letters:   let,
			Portfolio: a.portfolio,
		},
	})
	if err != nil {
		return nil, err
	}

	inMemoryService := session.InMemoryService()
	r, err := runner.New(runner.Config{
		AppName:        assistant.Name(),
		Agent:          assistant,
		SessionService: inMemoryService,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create runner: %v", err)
	}

	created, err := inMemoryService.Create(ctx, &session.CreateRequest{
		AppName:   assistant.Name(),
		UserID:    "local",
		SessionID: uuid.NewString(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %v", err)
	}

	return &assistantSession{
		runner:    r,
		userID:    created.Session.UserID(),
		sessionID: created.Session.ID(),
	}, nil
}

// turn sends one user message and collects the final response from the
// event stream, retrying transient stream failures.
func (s *assistantSession) turn(ctx context.Context, msg string) (string, error) {
	return llm.Retry(2, func() (string, error) {
		stream := s.runner.Run(ctx, s.userID, s.sessionID, &genai.Content{
			Role:  "user",
			Parts: []*genai.Part{{Text: msg}},
		}, adkagent.RunConfig{})

		var output string
		for event, err := range stream {
			if err != nil {
				return "", err
			}
			if event != nil && event.IsFinalResponse() && len(event.Content.Parts) > 0 {
				output = event.Content.Parts[0].Text
			}
		}
		if output == "" {
			return "", fmt.Errorf("empty agent response")
		}
		return output, nil
	})
}

func (a *app) runChat(ctx context.Context) error {
	sess, err := a.newAssistant(ctx)
	if err != nil {
		return err
	}

	fmt.Println("Career assistant ready. Type a message, or exit to quit.")
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	fmt.Print("\nyou> ")
	for scanner.Scan() {
		msg := strings.TrimSpace(scanner.Text())
		if msg == "" {
			fmt.Print("you> ")
			continue
		}
		if msg == "exit" || msg == "quit" {
			break
		}
		reply, err := sess.turn(ctx, msg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "agent error: %v\n", err)
			fmt.Print("\nyou> ")
			continue
		}
		fmt.Printf("\n%s\n\nyou> ", reply)
	}
	return scanner.Err()
}

func (a *app) runAsk(ctx context.Context, msg string) error {
	sess, err := a.newAssistant(ctx)
	if err != nil {
		return err
	}
	reply, err := sess.turn(ctx, msg)
	if err != nil {
		return err
	}
	fmt.Println(reply)
	return nil
}
