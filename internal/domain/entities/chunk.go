package entities

// SentenceSplitIndex marks the sentence range of a chunk cut out of a single
// oversized sentence.
const SentenceSplitIndex = -1

// Chunk is a token-bounded slice of a long text.
// SentenceStart and SentenceEnd are inclusive indices into the sentence list.
type Chunk struct {
	ID              int    `json:"chunk_id"`
	Text            string `json:"text"`
	EstimatedTokens int    `json:"estimated_tokens"`
	SentenceStart   int    `json:"sentence_start"`
	SentenceEnd     int    `json:"sentence_end"`
	HasOverlap      bool   `json:"has_overlap"`
	IsSentenceSplit bool   `json:"is_sentence_split"`
}

// ChunkInfo is the per-chunk entry of analysis metadata.
type ChunkInfo struct {
	ChunkID         int  `json:"chunk_id"`
	Tokens          int  `json:"tokens"`
	HasOverlap      bool `json:"has_overlap"`
	IsSentenceSplit bool `json:"is_sentence_split,omitempty"`
}

// Info returns the metadata view of the chunk.
func (c Chunk) Info() ChunkInfo {
	return ChunkInfo{
		ChunkID:         c.ID,
		Tokens:          c.EstimatedTokens,
		HasOverlap:      c.HasOverlap,
		IsSentenceSplit: c.IsSentenceSplit,
	}
}
