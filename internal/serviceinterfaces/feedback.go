// Package serviceinterfaces defines service interfaces for dependency injection and testing.
package serviceinterfaces

import (
	"context"

	"feedbackboard/internal/models"
)

// FeedbackBoardInterface is one board: the record list, its filter and its display mode.
// Every method runs to completion before the next one on the same board starts.
type FeedbackBoardInterface interface {
	Load(ctx context.Context) error
	Add(ctx context.Context, submission models.FeedbackSubmission) (models.FeedbackRecord, string, error)
	Delete(ctx context.Context, id int64, confirmed bool) (bool, error)
	ClearAll(ctx context.Context, confirmed bool) (string, error)
	SetFilter(ctx context.Context, value string) (models.FeedbackView, error)
	Filter() models.RatingFilter
	Records(ctx context.Context) ([]models.FeedbackRecord, error)
	View(ctx context.Context) (models.FeedbackView, error)
	Stats(ctx context.Context) (models.FeedbackStats, error)
	Export(ctx context.Context) (models.ExportFile, error)
	ToggleDarkMode(ctx context.Context) (models.DisplayMode, error)
	DisplayMode(ctx context.Context) (models.DisplayMode, error)
	Snapshot(ctx context.Context) (models.BoardSnapshot, error)
}

// BoardRegistryInterface hands out the board for a browser session id
type BoardRegistryInterface interface {
	Board(ctx context.Context, boardID string) (FeedbackBoardInterface, error)
	// TransientBoard serves reads for a session the registry has not opened a board for
	// without keeping one open
	TransientBoard(ctx context.Context, boardID string) (FeedbackBoardInterface, error)
}

// NotifierInterface announces new feedback to an external system
type NotifierInterface interface {
	NotifySubmitted(ctx context.Context, boardID string, record models.FeedbackRecord) error
	NotifyInBackground(ctx context.Context, boardID string, record models.FeedbackRecord)
	Enabled() bool
}
