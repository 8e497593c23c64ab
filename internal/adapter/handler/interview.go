package handler

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/interview-assistant/internal/adapter/dto/interview"
	"github.com/johnquangdev/interview-assistant/internal/adapter/presenter"
	"github.com/johnquangdev/interview-assistant/internal/domain/entities"
	interviewUsecase "github.com/johnquangdev/interview-assistant/internal/usecase/interview"
)

// Interview handles interview HTTP requests
type Interview struct {
	service interviewUsecase.Service
	logger  *zap.Logger
}

// NewInterviewHandler creates a new interview handler
func NewInterviewHandler(service interviewUsecase.Service, logger *zap.Logger) *Interview {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Interview{
		service: service,
		logger:  logger,
	}
}

// Create handles POST /interviews
// @Summary      Create an interview
// @Description  Creates an interview session, provisions its LiveKit room and starts live orchestration
// @Tags         Interviews
// @Accept       json
// @Produce      json
// @Param        request  body      interview.CreateInterviewRequest  true  "Interview creation request"
// @Success      201      {object}  common.SuccessResponse{data=interview.CreateInterviewResponse}
// @Failure      400      {object}  common.ErrorResponse
// @Failure      502      {object}  common.ErrorResponse  "LiveKit unavailable"
// @Router       /interviews [post]
func (h *Interview) Create(c echo.Context) error {
	var req interview.CreateInterviewRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	questions := make([]entities.Question, 0, len(req.Questions))
	for _, q := range req.Questions {
		questions = append(questions, entities.Question{
			Text:      q.Text,
			Criterion: q.Criterion,
			RoundID:   q.RoundID,
		})
	}

	out, err := h.service.Create(c.Request().Context(), interviewUsecase.CreateInput{
		TenantID:      req.TenantID,
		JobID:         req.JobID,
		CandidateName: req.CandidateName,
		JobContext:    req.JobContext,
		Questions:     questions,
		Duration:      time.Duration(req.DurationMinutes) * time.Minute,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleCreated(h.logger, c, presenter.ToCreateInterviewResponse(out))
}

// Get handles GET /interviews/:id
// @Summary      Get an interview
// @Description  Returns the session with its live state when it is running
// @Tags         Interviews
// @Produce      json
// @Param        id   path      string  true  "Interview ID"
// @Success      200  {object}  common.SuccessResponse{data=interview.InterviewResponse}
// @Failure      404  {object}  common.ErrorResponse
// @Router       /interviews/{id} [get]
func (h *Interview) Get(c echo.Context) error {
	id, err := sessionIDParam(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	view, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, presenter.ToSessionViewResponse(view))
}

// DispatchEvents handles POST /interviews/:id/events
// @Summary      Relay live events
// @Description  Applies a batch of live events in order. The response carries the synchronous
// @Description  instructions followed by any asynchronous ones queued so far.
// @Tags         Interviews
// @Accept       json
// @Produce      json
// @Param        id       path      string                            true  "Interview ID"
// @Param        request  body      interview.DispatchEventsRequest  true  "Events"
// @Success      200      {object}  common.SuccessResponse{data=interview.DispatchEventsResponse}
// @Failure      400      {object}  common.ErrorResponse
// @Failure      409      {object}  common.ErrorResponse  "Interview not live"
// @Router       /interviews/{id}/events [post]
func (h *Interview) DispatchEvents(c echo.Context) error {
	id, err := sessionIDParam(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req interview.DispatchEventsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	ctx := c.Request().Context()
	var instructions []interviewUsecase.Instruction
	for _, ev := range req.Events {
		out, err := h.service.Dispatch(ctx, id, interviewUsecase.Event{
			Type:  interviewUsecase.EventType(ev.Type),
			Text:  ev.Text,
			Delta: ev.Delta,
		})
		if err != nil {
			return HandleError(h.logger, c, err)
		}
		instructions = append(instructions, out...)
	}

	queued, err := h.service.Drain(ctx, id)
	if err == nil {
		instructions = append(instructions, queued...)
	}

	return HandleSuccess(h.logger, c, interview.DispatchEventsResponse{
		Instructions: presenter.ToInstructionResponses(instructions),
	})
}

// End handles POST /interviews/:id/end
// @Summary      End an interview
// @Description  Stops live orchestration and tears down the room without scoring
// @Tags         Interviews
// @Produce      json
// @Param        id   path      string  true  "Interview ID"
// @Success      200  {object}  common.SuccessResponse
// @Failure      404  {object}  common.ErrorResponse
// @Router       /interviews/{id}/end [post]
func (h *Interview) End(c echo.Context) error {
	id, err := sessionIDParam(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	if err := h.service.End(c.Request().Context(), id); err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, map[string]string{"status": "ended"})
}

// Finalize handles POST /interviews/:id/finalize
// @Summary      Finalize an interview
// @Description  Scores the interview exactly once and returns the canonical report
// @Tags         Interviews
// @Produce      json
// @Param        id   path      string  true  "Interview ID"
// @Success      200  {object}  common.SuccessResponse{data=interview.ReportResponse}
// @Failure      404  {object}  common.ErrorResponse
// @Failure      409  {object}  common.ErrorResponse  "Incomplete or already completed"
// @Failure      422  {object}  common.ErrorResponse  "Configuration error"
// @Failure      502  {object}  common.ErrorResponse  "Scoring failed"
// @Router       /interviews/{id}/finalize [post]
func (h *Interview) Finalize(c echo.Context) error {
	id, err := sessionIDParam(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	report, err := h.service.Finalize(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, presenter.ToReportResponse(report))
}

// Transcript handles GET /interviews/:id/transcript
// @Summary      Get the transcript
// @Tags         Interviews
// @Produce      json
// @Param        id   path      string  true  "Interview ID"
// @Success      200  {object}  common.SuccessResponse{data=interview.TranscriptResponse}
// @Failure      404  {object}  common.ErrorResponse
// @Router       /interviews/{id}/transcript [get]
func (h *Interview) Transcript(c echo.Context) error {
	id, err := sessionIDParam(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	turns, err := h.service.Transcript(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, presenter.ToTranscriptResponse(id.String(), turns))
}

// Report handles GET /interviews/:id/report
// @Summary      Get the report
// @Tags         Interviews
// @Produce      json
// @Param        id   path      string  true  "Interview ID"
// @Success      200  {object}  common.SuccessResponse{data=interview.ReportResponse}
// @Failure      404  {object}  common.ErrorResponse
// @Router       /interviews/{id}/report [get]
func (h *Interview) Report(c echo.Context) error {
	id, err := sessionIDParam(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	report, err := h.service.Report(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, presenter.ToReportResponse(report))
}
