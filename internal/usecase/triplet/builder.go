// Package triplet builds the context windows fed to the importance classifier.
package triplet

import (
	"slices"
	"strings"

	"github.com/johnquangdev/meeting-filter/internal/domain/entities"
)

// Window is how many neighbouring utterances on each side form the context.
const Window = 2

// Build returns one unlabeled triplet per utterance, ordered naturally by
// order key. The input slice is not modified.
func Build(utterances []entities.Utterance) []entities.Triplet {
	if len(utterances) == 0 {
		return nil
	}

	sorted := slices.Clone(utterances)
	slices.SortStableFunc(sorted, func(a, b entities.Utterance) int {
		return entities.CompareOrderKeys(a.OrderKey, b.OrderKey)
	})

	triplets := make([]entities.Triplet, len(sorted))
	for i, u := range sorted {
		triplets[i] = entities.Triplet{
			Timestamp:   u.Timestamp,
			OrderKey:    u.OrderKey,
			Speaker:     u.Speaker,
			PrevContext: joinTexts(sorted[max(0, i-Window):i]),
			Target:      entities.WrapTarget(u.Text),
			NextContext: joinTexts(sorted[i+1 : min(len(sorted), i+1+Window)]),
		}
	}
	return triplets
}

func joinTexts(window []entities.Utterance) string {
	parts := make([]string, 0, len(window))
	for _, u := range window {
		parts = append(parts, u.Text)
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}
