package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/johnquangdev/meeting-filter/internal/domain/entities"
)

// MaxRawResponseRunes bounds the raw text kept in a failure payload.
const MaxRawResponseRunes = 1000

const jsonFence = "```json"

// ExtractJSON finds the JSON object in a model response. A fenced ```json
// block wins; otherwise the text from the first "{" to the last "}" is used.
func ExtractJSON(content string) (string, bool) {
	if start := strings.Index(content, jsonFence); start >= 0 {
		body := content[start+len(jsonFence):]
		if end := strings.Index(body, "```"); end >= 0 {
			if block := strings.TrimSpace(body[:end]); block != "" {
				return block, true
			}
		}
	}

	first := strings.Index(content, "{")
	last := strings.LastIndex(content, "}")
	if first < 0 || last <= first {
		return "", false
	}
	return content[first : last+1], true
}

// ParseAnalysis turns a model response into an AnalysisResult. It never
// fails: unparseable output yields a failure payload holding the raw text.
func ParseAnalysis(content string) entities.AnalysisResult {
	body, ok := ExtractJSON(content)
	if !ok {
		return entities.NewFailedAnalysis("JSON parsing failed: no JSON object in response", truncateRunes(content, MaxRawResponseRunes))
	}

	var raw rawAnalysis
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return entities.NewFailedAnalysis(fmt.Sprintf("JSON parsing failed: %v", err), truncateRunes(content, MaxRawResponseRunes))
	}
	return raw.toResult()
}

// rawAnalysis accepts the shapes models actually produce: decisions as
// strings or objects, "title" in place of "task", a legacy summary key.
type rawAnalysis struct {
	Summary          string          `json:"summary"`
	ExecutiveSummary string          `json:"executive_summary"`
	ActionItems      []rawActionItem `json:"action_items"`
	Decisions        flexStrings     `json:"decisions"`
	KeyPoints        flexStrings     `json:"key_points"`
	NextSteps        flexStrings     `json:"next_steps"`
	Participants     flexStrings     `json:"participants"`
}

type rawActionItem struct {
	Task       string `json:"task"`
	Title      string `json:"title"`
	Assignee   string `json:"assignee"`
	AssignedTo string `json:"assigned_to"`
	Deadline   string `json:"deadline"`
	Priority   string `json:"priority"`
}

func (r rawAnalysis) toResult() entities.AnalysisResult {
	result := entities.AnalysisResult{
		Summary:      strings.TrimSpace(firstNonEmpty(r.Summary, r.ExecutiveSummary)),
		ActionItems:  make([]entities.ActionItem, 0, len(r.ActionItems)),
		Decisions:    r.Decisions.values(),
		KeyPoints:    r.KeyPoints.values(),
		NextSteps:    r.NextSteps.values(),
		Participants: r.Participants.values(),
	}
	for _, item := range r.ActionItems {
		task := strings.TrimSpace(firstNonEmpty(item.Task, item.Title))
		if task == "" {
			continue
		}
		result.ActionItems = append(result.ActionItems, entities.ActionItem{
			Task:     task,
			Assignee: strings.TrimSpace(firstNonEmpty(item.Assignee, item.AssignedTo)),
			Deadline: strings.TrimSpace(item.Deadline),
			Priority: strings.ToLower(strings.TrimSpace(item.Priority)),
		})
	}
	return result
}

// flexStrings decodes a list whose elements are strings or objects with a
// text-like field. A bare string decodes as a one-element list.
type flexStrings []string

var textKeys = []string{"text", "decision", "decision_text", "point", "description", "step", "name", "title"}

func (f *flexStrings) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*f = flexStrings{single}
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	out := make(flexStrings, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			out = append(out, s)
			continue
		}
		var obj map[string]any
		if err := json.Unmarshal(item, &obj); err != nil {
			continue
		}
		for _, key := range textKeys {
			if v, ok := obj[key].(string); ok && strings.TrimSpace(v) != "" {
				out = append(out, v)
				break
			}
		}
	}
	*f = out
	return nil
}

func (f flexStrings) values() []string {
	out := make([]string, 0, len(f))
	for _, s := range f {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
