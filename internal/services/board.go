package services

import (
	"context"
	"slices"
	"sync"
	"time"

	"feedbackboard/internal/config"
	"feedbackboard/internal/models"
	"feedbackboard/internal/observability"
	"feedbackboard/internal/storage"
	contextutils "feedbackboard/internal/utils"

	"go.opentelemetry.io/otel/attribute"
)

// BoardOptions control how a board dates, words and names its output
type BoardOptions struct {
	Locale         contextutils.Locale
	Location       *time.Location
	DateLayout     string
	ExportFilename string
	// Now is the board clock; nil means time.Now
	Now func() time.Time

	// IdleTimeout and MaxBoards bound how many session boards a BoardRegistry keeps
	IdleTimeout time.Duration
	MaxBoards   int
}

// BoardOptionsFromConfig builds BoardOptions from the board section of the config
func BoardOptionsFromConfig(cfg config.BoardConfig) BoardOptions {
	loc, _ := contextutils.LoadLocationOrUTC(cfg.Timezone)
	return BoardOptions{
		Locale:         contextutils.ParseLocale(cfg.Locale),
		Location:       loc,
		DateLayout:     cfg.DateLayout,
		ExportFilename: cfg.ExportFilename,
		IdleTimeout:    cfg.IdleTimeout,
		MaxBoards:      cfg.MaxBoards,
	}
}

func (o BoardOptions) withDefaults() BoardOptions {
	if o.Locale == "" || !contextutils.IsSupportedLocale(o.Locale) {
		o.Locale = contextutils.DefaultLocale
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.DateLayout == "" {
		o.DateLayout = config.DefaultDateLayout
	}
	if o.ExportFilename == "" {
		o.ExportFilename = config.DefaultExportFilename
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.IdleTimeout <= 0 {
		o.IdleTimeout = config.DefaultBoardIdleTimeout
	}
	if o.MaxBoards <= 0 {
		o.MaxBoards = config.DefaultMaxBoards
	}
	return o
}

// FeedbackBoard owns one board's record list, rating filter and dark-mode flag. Every
// operation re-reads the list from storage first, so writes from another process sharing
// the store are not overwritten. A mutation writes the whole list back before the
// in-memory copy changes.
type FeedbackBoard struct {
	mu      sync.Mutex
	store   storage.KVStore
	logger  *observability.Logger
	metrics *observability.BoardMetrics
	opts    BoardOptions

	records []models.FeedbackRecord
	filter  models.RatingFilter
	dark    bool
}

// NewFeedbackBoard creates a board over store. State is read on every use.
func NewFeedbackBoard(store storage.KVStore, logger *observability.Logger, opts BoardOptions) *FeedbackBoard {
	if store == nil {
		panic("NewFeedbackBoard: store is nil")
	}
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &FeedbackBoard{
		store:   store,
		logger:  logger,
		metrics: observability.GetBoardMetrics(),
		opts:    opts.withDefaults(),
		records: []models.FeedbackRecord{},
		filter:  models.FilterAll,
	}
}

// Load reads the persisted state, reporting a backend that cannot be reached
func (b *FeedbackBoard) Load(ctx context.Context) (err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.reload(ctx)
}

// reload replaces the in-memory list and display mode with what storage holds now; callers
// hold b.mu. The rating filter is view state and is left alone.
func (b *FeedbackBoard) reload(ctx context.Context) (err error) {
	ctx, span := observability.TraceBoardFunction(ctx, "load")
	defer observability.FinishSpan(span, &err)

	raw, found, err := b.store.Get(ctx, config.FeedbackStorageKey)
	if err != nil {
		return contextutils.WrapError(err, "failed to read stored feedback")
	}
	records := []models.FeedbackRecord{}
	if found {
		decoded, decodeErr := DecodeFeedback(raw)
		if decodeErr != nil {
			b.logger.Warn(ctx, "Stored feedback is unreadable, starting with an empty board", map[string]interface{}{
				"error": decodeErr.Error(),
				"bytes": len(raw),
			})
		} else {
			records = decoded
		}
	}

	rawDark, _, err := b.store.Get(ctx, config.DarkModeStorageKey)
	if err != nil {
		return contextutils.WrapError(err, "failed to read stored display mode")
	}

	b.records = records
	b.dark = DecodeDarkMode(rawDark)
	span.SetAttributes(attribute.Int("feedback.count", len(records)), attribute.Bool("display.dark", b.dark))
	return nil
}

// persist writes the full list; callers hold b.mu and swap b.records only on success
func (b *FeedbackBoard) persist(ctx context.Context, records []models.FeedbackRecord) error {
	encoded, err := EncodeFeedback(records)
	if err != nil {
		return err
	}
	if err := b.store.Set(ctx, config.FeedbackStorageKey, encoded); err != nil {
		return contextutils.WrapError(err, "failed to save feedback")
	}
	return nil
}

// nextID is now in milliseconds, bumped past the newest record when the clock has not advanced
func (b *FeedbackBoard) nextID(now time.Time) int64 {
	id := now.UnixMilli()
	if len(b.records) > 0 && id <= b.records[0].ID {
		id = b.records[0].ID + 1
	}
	return id
}

// Add validates and prepends a submission, returning the stored record and the thank-you text
func (b *FeedbackBoard) Add(ctx context.Context, submission models.FeedbackSubmission) (result0 models.FeedbackRecord, result1 string, err error) {
	ctx, span := observability.TraceBoardFunction(ctx, "add", observability.AttributeRating(submission.Rating))
	defer observability.FinishSpan(span, &err)

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.reload(ctx); err != nil {
		return models.FeedbackRecord{}, "", err
	}

	submission = submission.Normalize()
	if err := contextutils.ValidateStruct(submission); err != nil {
		b.metrics.RecordValidationFailure(ctx, "submission")
		return models.FeedbackRecord{}, "", err
	}

	now := b.opts.Now()
	record := models.FeedbackRecord{
		ID:      b.nextID(now),
		Name:    submission.Name,
		Message: submission.Message,
		Rating:  submission.Rating,
		Date:    now.In(b.opts.Location).Format(b.opts.DateLayout),
	}

	updated := make([]models.FeedbackRecord, 0, len(b.records)+1)
	updated = append(updated, record)
	updated = append(updated, b.records...)
	if err := b.persist(ctx, updated); err != nil {
		return models.FeedbackRecord{}, "", err
	}
	b.records = updated

	span.SetAttributes(observability.AttributeFeedbackID(record.ID))
	b.metrics.RecordSubmitted(ctx, record.Rating)
	return record, contextutils.Text(b.opts.Locale, contextutils.TextSubmitted), nil
}

// Delete removes the record with id when confirmed. It reports whether a record was removed;
// an unconfirmed call or an unknown id changes nothing.
func (b *FeedbackBoard) Delete(ctx context.Context, id int64, confirmed bool) (result0 bool, err error) {
	ctx, span := observability.TraceBoardFunction(ctx, "delete",
		observability.AttributeFeedbackID(id),
		attribute.Bool("confirmed", confirmed),
	)
	defer observability.FinishSpan(span, &err)

	if !confirmed {
		return false, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.reload(ctx); err != nil {
		return false, err
	}

	idx := slices.IndexFunc(b.records, func(r models.FeedbackRecord) bool { return r.ID == id })
	if idx < 0 {
		return false, nil
	}

	updated := slices.Delete(slices.Clone(b.records), idx, idx+1)
	if err := b.persist(ctx, updated); err != nil {
		return false, err
	}
	b.records = updated
	b.metrics.RecordDeleted(ctx)
	return true, nil
}

// ClearAll empties the board when confirmed and returns the confirmation text. An empty
// board fails with NOTHING_TO_CLEAR whether or not the call was confirmed.
func (b *FeedbackBoard) ClearAll(ctx context.Context, confirmed bool) (result0 string, err error) {
	ctx, span := observability.TraceBoardFunction(ctx, "clear_all", attribute.Bool("confirmed", confirmed))
	defer observability.FinishSpan(span, &err)

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.reload(ctx); err != nil {
		return "", err
	}

	if len(b.records) == 0 {
		return "", contextutils.ErrNothingToClear
	}
	if !confirmed {
		return "", nil
	}

	removed := len(b.records)
	if err := b.persist(ctx, []models.FeedbackRecord{}); err != nil {
		return "", err
	}
	b.records = []models.FeedbackRecord{}
	b.metrics.RecordCleared(ctx, removed)
	return contextutils.Text(b.opts.Locale, contextutils.TextCleared), nil
}

// SetFilter selects "all" or a single rating and returns the re-rendered view
func (b *FeedbackBoard) SetFilter(ctx context.Context, value string) (result0 models.FeedbackView, err error) {
	ctx, span := observability.TraceBoardFunction(ctx, "set_filter", attribute.String("feedback.filter", value))
	defer observability.FinishSpan(span, &err)

	filter, ok := models.ParseRatingFilter(value)
	if !ok {
		b.metrics.RecordValidationFailure(ctx, "filter")
		return models.FeedbackView{}, contextutils.NewAppError(
			contextutils.ErrorCodeInvalidInput,
			contextutils.SeverityWarn,
			"Invalid rating filter",
			"rating: must be all or 1 to 5",
		)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.reload(ctx); err != nil {
		return models.FeedbackView{}, err
	}
	b.filter = filter
	return RenderView(b.records, b.filter, b.opts.Locale), nil
}

// Filter returns the current rating filter
func (b *FeedbackBoard) Filter() models.RatingFilter {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.filter
}

// Records returns a copy of the full list, newest first
func (b *FeedbackBoard) Records(ctx context.Context) ([]models.FeedbackRecord, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.reload(ctx); err != nil {
		return nil, err
	}
	return slices.Clone(b.records), nil
}

// View renders the list under the current filter
func (b *FeedbackBoard) View(ctx context.Context) (models.FeedbackView, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.reload(ctx); err != nil {
		return models.FeedbackView{}, err
	}
	return RenderView(b.records, b.filter, b.opts.Locale), nil
}

// Stats computes the figures over the full, unfiltered list
func (b *FeedbackBoard) Stats(ctx context.Context) (models.FeedbackStats, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.reload(ctx); err != nil {
		return models.FeedbackStats{}, err
	}
	return ComputeStats(b.records, b.opts.Now(), b.opts.Location), nil
}

// Export renders the full list as CSV. An empty board fails with NOTHING_TO_EXPORT.
func (b *FeedbackBoard) Export(ctx context.Context) (result0 models.ExportFile, err error) {
	ctx, span := observability.TraceBoardFunction(ctx, "export")
	defer observability.FinishSpan(span, &err)

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.reload(ctx); err != nil {
		return models.ExportFile{}, err
	}
	if len(b.records) == 0 {
		return models.ExportFile{}, contextutils.ErrNothingToExport
	}

	span.SetAttributes(attribute.Int("export.rows", len(b.records)))
	b.metrics.RecordExported(ctx, len(b.records))
	return models.ExportFile{
		Filename:    b.opts.ExportFilename,
		ContentType: config.ExportContentType,
		Data:        BuildCSV(b.records),
	}, nil
}

// ToggleDarkMode flips and persists the display mode
func (b *FeedbackBoard) ToggleDarkMode(ctx context.Context) (result0 models.DisplayMode, err error) {
	ctx, span := observability.TraceBoardFunction(ctx, "toggle_dark_mode")
	defer observability.FinishSpan(span, &err)

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.reload(ctx); err != nil {
		return models.DisplayMode{}, err
	}

	dark := !b.dark
	if err := b.store.Set(ctx, config.DarkModeStorageKey, EncodeDarkMode(dark)); err != nil {
		return models.DisplayMode{}, contextutils.WrapError(err, "failed to save display mode")
	}
	b.dark = dark
	span.SetAttributes(attribute.Bool("display.dark", dark))
	return b.displayMode(), nil
}

// DisplayMode returns the current mode and toggle label
func (b *FeedbackBoard) DisplayMode(ctx context.Context) (models.DisplayMode, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.reload(ctx); err != nil {
		return models.DisplayMode{}, err
	}
	return b.displayMode(), nil
}

func (b *FeedbackBoard) displayMode() models.DisplayMode {
	return models.DisplayMode{Dark: b.dark, ToggleLabel: ToggleLabel(b.dark, b.opts.Locale)}
}

// Snapshot returns view, stats and display mode from one consistent state
func (b *FeedbackBoard) Snapshot(ctx context.Context) (models.BoardSnapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.reload(ctx); err != nil {
		return models.BoardSnapshot{}, err
	}
	return models.BoardSnapshot{
		View:        RenderView(b.records, b.filter, b.opts.Locale),
		Stats:       ComputeStats(b.records, b.opts.Now(), b.opts.Location),
		DisplayMode: b.displayMode(),
	}, nil
}

// Locale returns the language the board's texts are rendered in
func (b *FeedbackBoard) Locale() contextutils.Locale {
	return b.opts.Locale
}
