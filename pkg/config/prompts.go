package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Prompts holds the LLM prompt templates used by meeting analysis.
// The user template must contain exactly one %s verb for the transcript.
// The chunk addendum receives the 1-based chunk number and the chunk count.
type Prompts struct {
	System        string `yaml:"system"`
	User          string `yaml:"user"`
	ChunkAddendum string `yaml:"chunk_addendum"`
	SchemaHint    string `yaml:"schema_hint"`
}

// DefaultPrompts returns the baked-in prompt set.
func DefaultPrompts() Prompts {
	return Prompts{
		System: `You are a meeting analyst. You receive a meeting transcript from which small talk has
already been removed. Extract what the team decided and what must be done next.
Never invent owners, dates or tasks that are not supported by the transcript.
Respond with a single JSON object and nothing else.`,
		User: "Analyze the following meeting transcript:\n\n%s",
		ChunkAddendum: `

This transcript is part %d of %d of one meeting. Analyze only this part;
the other parts are analyzed separately and merged afterwards.`,
		SchemaHint: `{
  "summary": string,
  "action_items": [{"task": string, "assignee": string, "deadline": string, "priority": "high"|"medium"|"low"}],
  "decisions": [string],
  "key_points": [string],
  "next_steps": [string],
  "participants": [string]
}`,
	}
}

// LoadPrompts reads a YAML prompt file on top of DefaultPrompts.
// An empty path returns the defaults.
func LoadPrompts(path string) (Prompts, error) {
	prompts := DefaultPrompts()
	if path == "" {
		return prompts, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return prompts, nil
		}
		return prompts, fmt.Errorf("read prompts file: %w", err)
	}

	var override Prompts
	if err := yaml.Unmarshal(raw, &override); err != nil {
		return prompts, fmt.Errorf("parse prompts file %s: %w", path, err)
	}

	if strings.TrimSpace(override.System) != "" {
		prompts.System = override.System
	}
	if strings.TrimSpace(override.User) != "" {
		if strings.Count(override.User, "%s") != 1 {
			return prompts, fmt.Errorf("prompts file %s: user template needs exactly one %%s", path)
		}
		prompts.User = override.User
	}
	if strings.TrimSpace(override.ChunkAddendum) != "" {
		prompts.ChunkAddendum = override.ChunkAddendum
	}
	if strings.TrimSpace(override.SchemaHint) != "" {
		prompts.SchemaHint = override.SchemaHint
	}
	return prompts, nil
}
