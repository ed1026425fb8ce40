package presenter

import (
	dto "github.com/johnquangdev/meeting-filter/internal/adapter/dto/pipeline"
	"github.com/johnquangdev/meeting-filter/internal/domain/entities"
)

// ToRunResponse converts a PipelineRun entity to RunResponse DTO
func ToRunResponse(r *entities.PipelineRun) *dto.RunResponse {
	if r == nil {
		return nil
	}

	response := &dto.RunResponse{
		ID:           r.ID.String(),
		Type:         string(r.RunType),
		Status:       string(r.Status),
		StartedAt:    r.StartedAt,
		CompletedAt:  r.CompletedAt,
		DurationMs:   r.Metadata.ProcessingTimeMs,
		Utterances:   r.Metadata.Utterances,
		Stats:        r.Metadata.Stats,
		TotalChunks:  r.Metadata.TotalChunks,
		FailedChunks: r.Metadata.FailedChunks,
	}

	// Set optional fields
	if r.LastError != nil {
		response.Error = *r.LastError
	}

	return response
}

// ToRunListResponse converts a slice of PipelineRun entities to RunListResponse
func ToRunListResponse(runs []*entities.PipelineRun) *dto.RunListResponse {
	responses := make([]*dto.RunResponse, len(runs))
	for i, r := range runs {
		responses[i] = ToRunResponse(r)
	}
	return &dto.RunListResponse{
		Runs:  responses,
		Count: len(responses),
	}
}

// ToAnalysisResponse converts a stored MeetingAnalysis to AnalysisResponse DTO
func ToAnalysisResponse(a *entities.MeetingAnalysis) *dto.AnalysisResponse {
	if a == nil {
		return nil
	}
	return &dto.AnalysisResponse{
		ID:              a.ID.String(),
		RunID:           a.RunID.String(),
		Result:          a.Result.Data(),
		ChunkingApplied: a.ChunkingApplied,
		TotalChunks:     a.TotalChunks,
		FailedChunks:    a.FailedChunks,
		OriginalTokens:  a.OriginalTokens,
		CreatedAt:       a.CreatedAt,
	}
}
