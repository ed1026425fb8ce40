package transcript

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-filter/internal/domain/entities"
	"github.com/johnquangdev/meeting-filter/pkg/textutil"
)

// Format names the shape of a raw transcript.
type Format string

const (
	FormatSegments Format = "segments"
	FormatText     Format = "text"
	FormatJSONL    Format = "jsonl"
)

// ParseFormat validates a format name. An empty name means segments.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatSegments, nil
	case FormatSegments, FormatText, FormatJSONL:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported transcript format %q", s)
	}
}

const maxSpeakerRunes = 32

// maxLineBytes bounds a single JSONL line.
const maxLineBytes = 1 << 20

// Normalizer turns raw transcripts into ordered utterances, one per sentence.
type Normalizer struct {
	logger *zap.Logger
}

// NewNormalizer creates a Normalizer. A nil logger disables logging.
func NewNormalizer(logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{logger: logger}
}

// FromSegments splits every segment into sentences. Segments without text are
// skipped but still consume a segment index, so order keys stay tied to the
// position in the input.
func (n *Normalizer) FromSegments(segments []entities.Segment) []entities.Utterance {
	utterances := make([]entities.Utterance, 0, len(segments))
	skipped := 0

	for i, seg := range segments {
		if !seg.HasText() {
			skipped++
			continue
		}
		speaker := strings.TrimSpace(seg.Speaker)
		if speaker == "" {
			speaker = entities.DefaultSpeaker
		}
		utterances = appendSentences(utterances, i+1, textutil.FormatTimestamp(seg.Start), speaker, *seg.Text)
	}

	if skipped > 0 {
		n.logger.Warn("skipped segments without text",
			zap.Int("skipped", skipped),
			zap.Int("segments", len(segments)),
		)
	}
	return utterances
}

// FromText treats every non-blank line as a segment. A line of the form
// "speaker: text" is attributed to speaker; other lines get the default
// speaker. Timestamps are synthetic: the n-th non-blank line is at n seconds.
func (n *Normalizer) FromText(text string) []entities.Utterance {
	var utterances []entities.Utterance
	index := 0

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		index++
		speaker, body := splitSpeaker(line)
		utterances = appendSentences(utterances, index, textutil.FormatTimestamp(float64(index)), speaker, body)
	}
	return utterances
}

type jsonlLine struct {
	Timestamp string   `json:"timestamp"`
	Start     *float64 `json:"start"`
	Speaker   string   `json:"speaker"`
	Text      *string  `json:"text"`
}

// FromJSONL reads one {timestamp?, start?, speaker?, text} object per line.
// Blank and malformed lines are skipped; line numbers count every line.
// Only a read failure is returned as an error.
func (n *Normalizer) FromJSONL(r io.Reader) ([]entities.Utterance, error) {
	var utterances []entities.Utterance

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var rec jsonlLine
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			n.logger.Warn("skipping malformed transcript line",
				zap.Int("line", lineNum),
				zap.Error(err),
			)
			continue
		}
		if rec.Text == nil || strings.TrimSpace(*rec.Text) == "" {
			continue
		}

		timestamp := strings.TrimSpace(rec.Timestamp)
		if timestamp == "" {
			if rec.Start != nil {
				timestamp = textutil.FormatTimestamp(*rec.Start)
			} else {
				timestamp = textutil.FormatTimestamp(float64(lineNum))
			}
		}
		speaker := strings.TrimSpace(rec.Speaker)
		if speaker == "" {
			speaker = entities.DefaultSpeaker
		}
		utterances = appendSentences(utterances, lineNum, timestamp, speaker, *rec.Text)
	}
	if err := scanner.Err(); err != nil {
		return utterances, fmt.Errorf("read transcript lines: %w", err)
	}
	return utterances, nil
}

func appendSentences(dst []entities.Utterance, segment int, timestamp, speaker, text string) []entities.Utterance {
	for i, sentence := range textutil.SplitSentences(text) {
		dst = append(dst, entities.Utterance{
			Timestamp: timestamp,
			OrderKey:  entities.NewOrderKey(segment, i+1),
			Speaker:   speaker,
			Text:      sentence,
		})
	}
	return dst
}

// splitSpeaker detects a "speaker: text" line. The speaker token must be short,
// contain a letter and no sentence punctuation, and the remainder must not look
// like the rest of a URL.
func splitSpeaker(line string) (speaker, text string) {
	head, rest, found := strings.Cut(line, ":")
	if !found {
		return entities.DefaultSpeaker, line
	}
	head = strings.TrimSpace(head)
	rest = strings.TrimSpace(rest)

	if rest == "" || strings.HasPrefix(rest, "//") || !isSpeakerToken(head) {
		return entities.DefaultSpeaker, line
	}
	return head, rest
}

func isSpeakerToken(s string) bool {
	if s == "" || utf8.RuneCountInString(s) > maxSpeakerRunes {
		return false
	}
	hasLetter := false
	for _, r := range s {
		if textutil.IsTerminal(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}
