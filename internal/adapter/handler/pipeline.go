package handler

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-filter/errors"
	dto "github.com/johnquangdev/meeting-filter/internal/adapter/dto/pipeline"
	"github.com/johnquangdev/meeting-filter/internal/adapter/presenter"
	"github.com/johnquangdev/meeting-filter/internal/domain/entities"
	"github.com/johnquangdev/meeting-filter/internal/usecase/models"
	"github.com/johnquangdev/meeting-filter/internal/usecase/pipeline"
	"github.com/johnquangdev/meeting-filter/internal/usecase/transcript"
)

const (
	defaultRunLimit = 20
	maxRunLimit     = 100
)

// Pipeline exposes the filtering and analysis pipelines over HTTP
type Pipeline struct {
	svc      pipeline.Service
	registry *models.Registry
	logger   *zap.Logger
}

// NewPipelineHandler creates a new pipeline handler
func NewPipelineHandler(svc pipeline.Service, registry *models.Registry, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{svc: svc, registry: registry, logger: logger}
}

// FilterTranscript godoc
// @Summary      Filter a transcript
// @Description  Removes small talk from a transcript given as segments, plain text or JSON lines. Without a classifier the transcript is returned unfiltered. Input without any utterance gives an empty result.
// @Tags         Transcripts
// @Accept       json
// @Produce      json
// @Param        request  body      pipeline.FilterTranscriptRequest  true  "Transcript"
// @Success      200      {object}  map[string]interface{}  "run_id, filtered_text, kept, stats"
// @Failure      400      {object}  map[string]interface{}  "Invalid payload or unsupported format"
// @Router       /transcripts/filter [post]
func (h *Pipeline) FilterTranscript(c echo.Context) error {
	var req dto.FilterTranscriptRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	format, err := transcript.ParseFormat(req.ResolvedFormat())
	if err != nil {
		return HandleError(h.logger, c, errors.ErrUnsupportedFormat(req.Format))
	}

	ctx := c.Request().Context()
	opts := pipeline.FilterOptions{BatchSize: req.BatchSize}

	var out *pipeline.FilterOutput
	switch format {
	case transcript.FormatSegments:
		segments := make([]entities.Segment, len(req.Segments))
		for i, s := range req.Segments {
			segments[i] = s.ToEntity()
		}
		out, err = h.svc.FilterSegments(ctx, segments, opts)
	case transcript.FormatJSONL:
		out, err = h.svc.FilterJSONL(ctx, strings.NewReader(req.Text), opts)
	default:
		out, err = h.svc.FilterText(ctx, req.Text, opts)
	}
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, out)
}

// FilterAudio godoc
// @Summary      Transcribe and filter audio
// @Description  Transcribes an audio file with speaker labels and filters the transcript
// @Tags         Transcripts
// @Accept       json
// @Produce      json
// @Param        request  body      pipeline.FilterAudioRequest  true  "Audio location"
// @Success      200      {object}  map[string]interface{}  "run_id, filtered_text, kept, stats"
// @Failure      400      {object}  map[string]interface{}  "Invalid payload"
// @Failure      502      {object}  map[string]interface{}  "Transcription failed"
// @Failure      503      {object}  map[string]interface{}  "Transcriber unavailable"
// @Router       /transcripts/audio [post]
func (h *Pipeline) FilterAudio(c echo.Context) error {
	var req dto.FilterAudioRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	out, err := h.svc.FilterAudio(c.Request().Context(), req.AudioURL, req.LanguageCode, pipeline.FilterOptions{BatchSize: req.BatchSize})
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, out)
}

// Analyze godoc
// @Summary      Analyze a meeting transcript
// @Description  Extracts summary, action items and decisions. Long transcripts are analyzed in chunks and merged.
// @Tags         Analysis
// @Accept       json
// @Produce      json
// @Param        request  body      pipeline.AnalysisRequest  true  "Transcript text"
// @Success      200      {object}  map[string]interface{}  "run_id, analysis_id, result"
// @Failure      400      {object}  map[string]interface{}  "Invalid payload"
// @Failure      503      {object}  map[string]interface{}  "Generator unavailable"
// @Router       /analysis [post]
func (h *Pipeline) Analyze(c echo.Context) error {
	var req dto.AnalysisRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	out, err := h.svc.Analyze(c.Request().Context(), req.Text, req.Filter)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, out)
}

// GetRunNoise godoc
// @Summary      Get the noise audit trail of a run
// @Tags         Runs
// @Produce      json
// @Param        run_id  path      string  true  "Run ID (UUID)"
// @Success      200     {object}  map[string]interface{}  "run_id, count, records"
// @Failure      400     {object}  map[string]interface{}  "Invalid run ID"
// @Router       /runs/{run_id}/noise [get]
func (h *Pipeline) GetRunNoise(c echo.Context) error {
	runID, err := uuid.Parse(c.Param("run_id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("run_id must be a UUID"))
	}

	records, err := h.svc.NoiseRecords(c.Request().Context(), runID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, dto.NoiseRecordsResponse{
		RunID:   runID,
		Count:   len(records),
		Records: records,
	})
}

// GetAnalysis godoc
// @Summary      Get a stored analysis
// @Tags         Analysis
// @Produce      json
// @Param        id   path      string  true  "Analysis ID (UUID)"
// @Success      200  {object}  map[string]interface{}  "Stored analysis"
// @Failure      404  {object}  map[string]interface{}  "Analysis not found"
// @Router       /analyses/{id} [get]
func (h *Pipeline) GetAnalysis(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("id must be a UUID"))
	}

	analysis, err := h.svc.GetAnalysis(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, presenter.ToAnalysisResponse(analysis))
}

// GetRun godoc
// @Summary      Get a pipeline run
// @Tags         Runs
// @Produce      json
// @Param        run_id  path      string  true  "Run ID (UUID)"
// @Success      200     {object}  map[string]interface{}  "Run status and stats"
// @Failure      404     {object}  map[string]interface{}  "Run not found"
// @Router       /runs/{run_id} [get]
func (h *Pipeline) GetRun(c echo.Context) error {
	runID, err := uuid.Parse(c.Param("run_id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("run_id must be a UUID"))
	}

	run, err := h.svc.GetRun(c.Request().Context(), runID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, presenter.ToRunResponse(run))
}

// ListRuns godoc
// @Summary      List recent pipeline runs
// @Tags         Runs
// @Produce      json
// @Param        limit  query     int  false  "Maximum runs to return (1-100, default 20)"
// @Success      200    {object}  map[string]interface{}  "runs, count"
// @Failure      400    {object}  map[string]interface{}  "Invalid limit"
// @Router       /runs [get]
func (h *Pipeline) ListRuns(c echo.Context) error {
	limit := defaultRunLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxRunLimit {
			return HandleError(h.logger, c, errors.ErrInvalidArgument("limit must be between 1 and 100"))
		}
		limit = n
	}

	runs, err := h.svc.ListRuns(c.Request().Context(), limit)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, presenter.ToRunListResponse(runs))
}

// ListModels godoc
// @Summary      List model load states
// @Tags         Models
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "models"
// @Router       /models [get]
func (h *Pipeline) ListModels(c echo.Context) error {
	var statuses []models.Status
	if h.registry != nil {
		statuses = h.registry.Statuses()
	}
	return HandleSuccess(h.logger, c, dto.ModelsResponse{Models: statuses})
}
