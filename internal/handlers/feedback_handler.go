package handlers

import (
	"net/http"
	"strconv"

	"feedbackboard/internal/config"
	"feedbackboard/internal/models"
	"feedbackboard/internal/observability"
	"feedbackboard/internal/serviceinterfaces"
	contextutils "feedbackboard/internal/utils"

	"github.com/gin-gonic/gin"
)

// Status values for destructive calls that did not run
const (
	StatusCancelled = "cancelled"
	StatusDeleted   = "deleted"
	StatusNotFound  = "not_found"
	StatusCleared   = "cleared"
)

// FeedbackHandler serves the JSON API under /v1
type FeedbackHandler struct {
	registry serviceinterfaces.BoardRegistryInterface
	notifier serviceinterfaces.NotifierInterface
	config   *config.Config
	locale   contextutils.Locale
	logger   *observability.Logger
}

// NewFeedbackHandler creates a FeedbackHandler. notifier may be nil.
func NewFeedbackHandler(registry serviceinterfaces.BoardRegistryInterface, notifier serviceinterfaces.NotifierInterface, cfg *config.Config, logger *observability.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		registry: registry,
		notifier: notifier,
		config:   cfg,
		locale:   contextutils.ParseLocale(cfg.Board.Locale),
		logger:   logger,
	}
}

// FeedbackListResponse is the body of GET /v1/feedback
type FeedbackListResponse struct {
	View  models.FeedbackView  `json:"view"`
	Stats models.FeedbackStats `json:"stats"`
}

// FeedbackCreatedResponse is the body of POST /v1/feedback
type FeedbackCreatedResponse struct {
	Feedback models.FeedbackRecord `json:"feedback"`
	Message  string                `json:"message"`
	Stats    models.FeedbackStats  `json:"stats"`
}

// FilterRequest is the body of PUT /v1/feedback/filter
type FilterRequest struct {
	Rating string `json:"rating"`
}

// board resolves the caller's board, writing the error response on failure
func (h *FeedbackHandler) board(c *gin.Context) (serviceinterfaces.FeedbackBoardInterface, string, bool) {
	board, boardID, err := openBoard(c, h.registry)
	if err != nil {
		h.fail(c, err)
		return nil, boardID, false
	}
	return board, boardID, true
}

// fail logs err at its severity and writes the localized error response
func (h *FeedbackHandler) fail(c *gin.Context, err error) {
	h.logger.AppError(c.Request.Context(), "Feedback request failed", err, map[string]interface{}{
		"board_id": BoardIDFromSession(c),
		"route":    c.FullPath(),
	})
	HandleLocalizedAppError(c, err, h.locale)
}

func confirmed(c *gin.Context) bool {
	ok, _ := strconv.ParseBool(c.Query("confirm"))
	return ok
}

// ListFeedback handles GET /v1/feedback. A rating query parameter changes the board filter.
func (h *FeedbackHandler) ListFeedback(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "list_feedback")
	defer observability.FinishSpan(span, nil)

	board, boardID, ok := h.board(c)
	if !ok {
		return
	}
	span.SetAttributes(observability.AttributeBoardID(boardID))

	if rating, present := c.GetQuery("rating"); present {
		if _, err := board.SetFilter(ctx, rating); err != nil {
			h.fail(c, err)
			return
		}
	}

	snapshot, err := board.Snapshot(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, FeedbackListResponse{View: snapshot.View, Stats: snapshot.Stats})
}

// SubmitFeedback handles POST /v1/feedback
func (h *FeedbackHandler) SubmitFeedback(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "submit_feedback")
	defer observability.FinishSpan(span, nil)

	var req models.FeedbackSubmission
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleValidationError(c, "Invalid request body", err, h.locale)
		return
	}

	board, boardID, ok := h.board(c)
	if !ok {
		return
	}
	span.SetAttributes(observability.AttributeBoardID(boardID))

	record, message, err := board.Add(ctx, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	span.SetAttributes(observability.AttributeFeedback(record)...)

	if h.notifier != nil && h.notifier.Enabled() {
		h.notifier.NotifyInBackground(ctx, boardID, record)
	}

	stats, err := board.Stats(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.logger.Info(ctx, "Feedback submitted", map[string]interface{}{
		"board_id":    boardID,
		"feedback_id": record.ID,
		"rating":      record.Rating,
	})
	c.JSON(http.StatusCreated, FeedbackCreatedResponse{Feedback: record, Message: message, Stats: stats})
}

// DeleteFeedback handles DELETE /v1/feedback/:id?confirm=true
func (h *FeedbackHandler) DeleteFeedback(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "delete_feedback")
	defer observability.FinishSpan(span, nil)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		HandleLocalizedAppError(c, contextutils.NewAppErrorWithCause(
			contextutils.ErrorCodeInvalidFormat,
			contextutils.SeverityWarn,
			"Invalid feedback id",
			c.Param("id"),
			err,
		), h.locale)
		return
	}
	span.SetAttributes(observability.AttributeFeedbackID(id))

	if !confirmed(c) {
		c.JSON(http.StatusOK, gin.H{
			"status":  StatusCancelled,
			"message": contextutils.Text(h.locale, contextutils.TextDeleteCancelled),
		})
		return
	}

	board, _, ok := h.board(c)
	if !ok {
		return
	}

	removed, err := board.Delete(ctx, id, true)
	if err != nil {
		h.fail(c, err)
		return
	}

	// An unknown id is not an error; the board is simply unchanged
	status := StatusNotFound
	message := ""
	if removed {
		status = StatusDeleted
		message = contextutils.Text(h.locale, contextutils.TextFeedbackDeleted)
	}
	c.JSON(http.StatusOK, gin.H{"status": status, "id": id, "message": message})
}

// ClearFeedback handles DELETE /v1/feedback?confirm=true
func (h *FeedbackHandler) ClearFeedback(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "clear_feedback")
	defer observability.FinishSpan(span, nil)

	board, boardID, ok := h.board(c)
	if !ok {
		return
	}
	span.SetAttributes(observability.AttributeBoardID(boardID))

	isConfirmed := confirmed(c)
	message, err := board.ClearAll(ctx, isConfirmed)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !isConfirmed {
		c.JSON(http.StatusOK, gin.H{
			"status":  StatusCancelled,
			"message": contextutils.Text(h.locale, contextutils.TextClearCancelled),
		})
		return
	}

	h.logger.Info(ctx, "Board cleared", map[string]interface{}{"board_id": boardID})
	c.JSON(http.StatusOK, gin.H{"status": StatusCleared, "message": message})
}

// SetFilter handles PUT /v1/feedback/filter
func (h *FeedbackHandler) SetFilter(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "set_filter")
	defer observability.FinishSpan(span, nil)

	var req FilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleValidationError(c, "Invalid request body", err, h.locale)
		return
	}
	span.SetAttributes(observability.AttributeFilter(models.RatingFilter(req.Rating)))

	board, _, ok := h.board(c)
	if !ok {
		return
	}

	view, err := board.SetFilter(ctx, req.Rating)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetStats handles GET /v1/feedback/stats
func (h *FeedbackHandler) GetStats(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "get_stats")
	defer observability.FinishSpan(span, nil)

	board, _, ok := h.board(c)
	if !ok {
		return
	}

	stats, err := board.Stats(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ExportFeedback handles GET /v1/feedback/export
func (h *FeedbackHandler) ExportFeedback(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "export_feedback")
	defer observability.FinishSpan(span, nil)

	board, _, ok := h.board(c)
	if !ok {
		return
	}

	file, err := board.Export(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}
	writeExport(c, file)
}

// GetDarkMode handles GET /v1/preferences/dark-mode
func (h *FeedbackHandler) GetDarkMode(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "get_dark_mode")
	defer observability.FinishSpan(span, nil)

	board, _, ok := h.board(c)
	if !ok {
		return
	}

	mode, err := board.DisplayMode(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, mode)
}

// ToggleDarkMode handles POST /v1/preferences/dark-mode/toggle
func (h *FeedbackHandler) ToggleDarkMode(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "toggle_dark_mode")
	defer observability.FinishSpan(span, nil)

	board, _, ok := h.board(c)
	if !ok {
		return
	}

	mode, err := board.ToggleDarkMode(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, mode)
}

// writeExport sends a generated file as a download
func writeExport(c *gin.Context, file models.ExportFile) {
	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
