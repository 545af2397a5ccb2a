package handlers

import (
	"net/http"
	"strconv"

	"feedbackboard/internal/config"
	"feedbackboard/internal/models"
	"feedbackboard/internal/observability"
	"feedbackboard/internal/serviceinterfaces"
	"feedbackboard/internal/services"
	contextutils "feedbackboard/internal/utils"

	"github.com/gin-gonic/gin"
)

// PageHandler serves the server-rendered board page and its form posts
type PageHandler struct {
	registry serviceinterfaces.BoardRegistryInterface
	notifier serviceinterfaces.NotifierInterface
	config   *config.Config
	locale   contextutils.Locale
	texts    map[string]string
	logger   *observability.Logger
}

// NewPageHandler creates a PageHandler. notifier may be nil.
func NewPageHandler(registry serviceinterfaces.BoardRegistryInterface, notifier serviceinterfaces.NotifierInterface, cfg *config.Config, logger *observability.Logger) *PageHandler {
	locale := contextutils.ParseLocale(cfg.Board.Locale)
	texts := make(map[string]string, len(contextutils.AllUITexts))
	for _, key := range contextutils.AllUITexts {
		texts[string(key)] = contextutils.Text(locale, key)
	}
	return &PageHandler{
		registry: registry,
		notifier: notifier,
		config:   cfg,
		locale:   locale,
		texts:    texts,
		logger:   logger,
	}
}

type selectOption struct {
	Value    string
	Label    string
	Selected bool
}

// formValues is what the user typed, echoed back when a submission is rejected
type formValues struct {
	Name    string `form:"name"`
	Message string `form:"message"`
	Rating  string `form:"rating"`
}

type pageData struct {
	Locale        contextutils.Locale
	T             map[string]string
	Snapshot      models.BoardSnapshot
	Flashes       []string
	Error         string
	Form          formValues
	RatingOptions []selectOption
	FilterOptions []selectOption
}

type errorPageData struct {
	Locale  contextutils.Locale
	Title   string
	Message string
	Back    string
}

func (h *PageHandler) board(c *gin.Context) (serviceinterfaces.FeedbackBoardInterface, string, bool) {
	board, boardID, err := openBoard(c, h.registry)
	if err != nil {
		h.renderError(c, err)
		return nil, boardID, false
	}
	return board, boardID, true
}

// renderPage draws the board with status; form and errMsg are set when re-showing a rejected submission
func (h *PageHandler) renderPage(c *gin.Context, status int, board serviceinterfaces.FeedbackBoardInterface, form formValues, errMsg string) {
	snapshot, err := board.Snapshot(c.Request.Context())
	if err != nil {
		h.renderError(c, err)
		return
	}
	if form.Rating == "" {
		form.Rating = strconv.Itoa(models.MaxRating)
	}

	ratingOptions := make([]selectOption, 0, models.MaxRating)
	for r := models.MaxRating; r >= models.MinRating; r-- {
		value := strconv.Itoa(r)
		ratingOptions = append(ratingOptions, selectOption{
			Value:    value,
			Label:    services.Stars(r) + " (" + value + ")",
			Selected: value == form.Rating,
		})
	}

	filterOptions := []selectOption{{
		Value:    string(models.FilterAll),
		Label:    h.texts[string(contextutils.TextFilterAllOption)],
		Selected: snapshot.View.Filter.IsAll(),
	}}
	for r := models.MaxRating; r >= models.MinRating; r-- {
		filterOptions = append(filterOptions, selectOption{
			Value:    strconv.Itoa(r),
			Label:    services.Stars(r),
			Selected: snapshot.View.Filter.Rating() == r,
		})
	}

	c.HTML(status, "index.html", pageData{
		Locale:        h.locale,
		T:             h.texts,
		Snapshot:      snapshot,
		Flashes:       PopFlashes(c),
		Error:         errMsg,
		Form:          form,
		RatingOptions: ratingOptions,
		FilterOptions: filterOptions,
	})
}

func (h *PageHandler) renderError(c *gin.Context, err error) {
	h.logger.AppError(c.Request.Context(), "Page request failed", err, map[string]interface{}{
		"board_id": BoardIDFromSession(c),
		"route":    c.FullPath(),
	})
	_ = c.Error(err)
	c.HTML(errorStatus(err), "error.html", errorPageData{
		Locale:  h.locale,
		Title:   h.texts[string(contextutils.TextPageTitle)],
		Message: contextutils.GetErrorLocalizedMessage(err, string(h.locale)),
		Back:    h.texts[string(contextutils.TextBackLink)],
	})
}

func (h *PageHandler) redirectHome(c *gin.Context) {
	c.Redirect(http.StatusSeeOther, "/")
}

// Index handles GET /. The filter comes from the rating query parameter on every load, so a
// plain reload shows all ratings again.
func (h *PageHandler) Index(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "index_page")
	defer observability.FinishSpan(span, nil)

	board, boardID, ok := h.board(c)
	if !ok {
		return
	}
	span.SetAttributes(observability.AttributeBoardID(boardID))

	status := http.StatusOK
	errMsg := ""
	if _, err := board.SetFilter(ctx, c.DefaultQuery("rating", string(models.FilterAll))); err != nil {
		if !contextutils.IsError(err, contextutils.ErrInvalidInput) {
			h.renderError(c, err)
			return
		}
		_ = c.Error(err)
		status = errorStatus(err)
		errMsg = contextutils.GetErrorLocalizedMessage(err, string(h.locale))
		if _, err := board.SetFilter(ctx, string(models.FilterAll)); err != nil {
			h.renderError(c, err)
			return
		}
	}
	h.renderPage(c, status, board, formValues{}, errMsg)
}

// Submit handles POST /feedback
func (h *PageHandler) Submit(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "submit_page")
	defer observability.FinishSpan(span, nil)

	var form formValues
	_ = c.ShouldBind(&form)

	board, boardID, ok := h.board(c)
	if !ok {
		return
	}
	span.SetAttributes(observability.AttributeBoardID(boardID))

	// A non-numeric rating cannot come from the select; 0 fails the rating check and gets
	// the rating message rather than the name/message one
	rating, _ := strconv.Atoi(form.Rating)
	record, message, err := board.Add(ctx, models.FeedbackSubmission{
		Name:    form.Name,
		Message: form.Message,
		Rating:  rating,
	})
	if err != nil {
		if contextutils.IsError(err, contextutils.ErrValidationFailed) {
			_ = c.Error(err)
			h.renderPage(c, http.StatusBadRequest, board, form,
				contextutils.GetErrorLocalizedMessage(err, string(h.locale)))
			return
		}
		h.renderError(c, err)
		return
	}

	if h.notifier != nil && h.notifier.Enabled() {
		h.notifier.NotifyInBackground(ctx, boardID, record)
	}
	AddFlash(c, message)
	h.redirectHome(c)
}

// Delete handles POST /feedback/:id/delete
func (h *PageHandler) Delete(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "delete_page")
	defer observability.FinishSpan(span, nil)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.renderError(c, contextutils.NewAppErrorWithCause(
			contextutils.ErrorCodeInvalidFormat,
			contextutils.SeverityWarn,
			"Invalid feedback id",
			c.Param("id"),
			err,
		))
		return
	}
	span.SetAttributes(observability.AttributeFeedbackID(id))

	board, _, ok := h.board(c)
	if !ok {
		return
	}

	if _, err := board.Delete(ctx, id, c.PostForm("confirmed") == "true"); err != nil {
		h.renderError(c, err)
		return
	}
	h.redirectHome(c)
}

// ClearAll handles POST /feedback/clear
func (h *PageHandler) ClearAll(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "clear_page")
	defer observability.FinishSpan(span, nil)

	board, _, ok := h.board(c)
	if !ok {
		return
	}

	message, err := board.ClearAll(ctx, c.PostForm("confirmed") == "true")
	switch {
	case contextutils.IsError(err, contextutils.ErrNothingToClear):
		AddFlash(c, contextutils.GetErrorLocalizedMessage(err, string(h.locale)))
	case err != nil:
		h.renderError(c, err)
		return
	default:
		AddFlash(c, message)
	}
	h.redirectHome(c)
}

// Export handles GET /export
func (h *PageHandler) Export(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "export_page")
	defer observability.FinishSpan(span, nil)

	board, _, ok := h.board(c)
	if !ok {
		return
	}

	file, err := board.Export(ctx)
	switch {
	case contextutils.IsError(err, contextutils.ErrNothingToExport):
		AddFlash(c, contextutils.GetErrorLocalizedMessage(err, string(h.locale)))
		h.redirectHome(c)
	case err != nil:
		h.renderError(c, err)
	default:
		writeExport(c, file)
	}
}

// ToggleDarkMode handles POST /dark-mode
func (h *PageHandler) ToggleDarkMode(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "dark_mode_page")
	defer observability.FinishSpan(span, nil)

	board, _, ok := h.board(c)
	if !ok {
		return
	}

	if _, err := board.ToggleDarkMode(ctx); err != nil {
		h.renderError(c, err)
		return
	}
	h.redirectHome(c)
}
