package entities

import (
	"fmt"
	"strings"
)

// Boundary markers around the target utterance inside a triplet.
const (
	TargetOpen  = "[TGT]"
	TargetClose = "[/TGT]"
)

// Label is the importance class of an utterance as emitted by the classifier.
type Label int

const (
	LabelImportant Label = 0
	LabelNoise     Label = 1
)

// Valid reports whether l is one of the two known classes.
func (l Label) Valid() bool {
	return l == LabelImportant || l == LabelNoise
}

func (l Label) String() string {
	switch l {
	case LabelImportant:
		return "important"
	case LabelNoise:
		return "noise"
	default:
		return fmt.Sprintf("label(%d)", int(l))
	}
}

// ClassificationResult is the classifier verdict for one triplet.
type ClassificationResult struct {
	Label      Label   `json:"label"`
	Confidence float64 `json:"confidence"`
}

// FailOpenConfidence is reported when the classifier could not judge an item.
const FailOpenConfidence = 0.5

// FailOpen is the verdict used whenever classification fails: keep the content.
func FailOpen() ClassificationResult {
	return ClassificationResult{Label: LabelImportant, Confidence: FailOpenConfidence}
}

// Triplet binds one utterance to its surrounding context for classification.
// Label and Confidence stay nil until the classifier adapter runs.
type Triplet struct {
	Timestamp   string   `json:"timestamp"`
	OrderKey    string   `json:"order_key"`
	Speaker     string   `json:"speaker"`
	PrevContext string   `json:"prev_context"`
	Target      string   `json:"target"`
	NextContext string   `json:"next_context"`
	Label       *Label   `json:"label"`
	Confidence  *float64 `json:"confidence,omitempty"`
}

// Apply records a classification result on the triplet.
func (t *Triplet) Apply(r ClassificationResult) {
	label, confidence := r.Label, r.Confidence
	t.Label = &label
	t.Confidence = &confidence
}

// Labeled reports whether a classification has been applied.
func (t Triplet) Labeled() bool {
	return t.Label != nil
}

// IsNoise reports whether the triplet was classified as noise.
func (t Triplet) IsNoise() bool {
	return t.Label != nil && *t.Label == LabelNoise
}

// Text returns the target utterance without boundary markers.
func (t Triplet) Text() string {
	return StripTarget(t.Target)
}

// WrapTarget surrounds text with the target boundary markers.
func WrapTarget(text string) string {
	return TargetOpen + " " + text + " " + TargetClose
}

// StripTarget removes the boundary markers added by WrapTarget.
func StripTarget(target string) string {
	s := strings.TrimSpace(target)
	s = strings.TrimPrefix(s, TargetOpen)
	s = strings.TrimSuffix(s, TargetClose)
	return strings.TrimSpace(s)
}
