// Package models contains the feedback board's data types.
package models

import (
	"strconv"
	"strings"
)

// FeedbackRecord is one feedback submission. The JSON shape is the persisted layout
// of the libraryFeedbacks key and must not change.
type FeedbackRecord struct {
	// ID is the creation time in milliseconds since the epoch
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Message string `json:"message"`
	Rating  int    `json:"rating"`
	// Date is the localized creation timestamp, for display only
	Date string `json:"date"`
}

// FeedbackSubmission is the user input for a new record, validated after trimming
type FeedbackSubmission struct {
	Name    string `json:"name" form:"name" validate:"required"`
	Message string `json:"message" form:"message" validate:"required"`
	Rating  int    `json:"rating" form:"rating" validate:"min=1,max=5"`
}

// Normalize trims surrounding whitespace from the free-text fields
func (s FeedbackSubmission) Normalize() FeedbackSubmission {
	s.Name = strings.TrimSpace(s.Name)
	s.Message = strings.TrimSpace(s.Message)
	return s
}

// MinRating and MaxRating bound FeedbackRecord.Rating
const (
	MinRating = 1
	MaxRating = 5
)

// RatingFilter selects which records the view shows: "all" or a rating "1".."5"
type RatingFilter string

// FilterAll is the identity filter
const FilterAll RatingFilter = "all"

// ParseRatingFilter accepts "all" (or an empty value) and the ratings 1 to 5
func ParseRatingFilter(value string) (RatingFilter, bool) {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, string(FilterAll)) {
		return FilterAll, true
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < MinRating || n > MaxRating {
		return "", false
	}
	return RatingFilter(strconv.Itoa(n)), true
}

// IsAll reports whether the filter is the identity filter
func (f RatingFilter) IsAll() bool {
	return f == FilterAll || f == ""
}

// Rating returns the selected rating, or 0 for "all"
func (f RatingFilter) Rating() int {
	if f.IsAll() {
		return 0
	}
	n, _ := strconv.Atoi(string(f))
	return n
}

// Matches reports whether a record with the given rating passes the filter
func (f RatingFilter) Matches(rating int) bool {
	return f.IsAll() || f.Rating() == rating
}

// FeedbackStats are derived over the full, unfiltered list
type FeedbackStats struct {
	Total int `json:"total"`
	// AverageRating is the mean rounded to one decimal ("4.0"), or "0" for an empty board
	AverageRating string `json:"average_rating"`
	TodayCount    int    `json:"today_count"`
}

// FeedbackViewItem is the display block for one record
type FeedbackViewItem struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Stars   string `json:"stars"`
	Rating  int    `json:"rating"`
	Message string `json:"message"`
	Date    string `json:"date"`
}

// FeedbackView is the rendered, filtered list
type FeedbackView struct {
	Filter RatingFilter       `json:"filter"`
	Count  int                `json:"count"`
	Items  []FeedbackViewItem `json:"items"`
	// EmptyTitle and EmptyMessage are set only when Count is zero
	EmptyTitle   string `json:"empty_title,omitempty"`
	EmptyMessage string `json:"empty_message,omitempty"`
}

// IsEmpty reports whether the view shows the empty state
func (v FeedbackView) IsEmpty() bool {
	return v.Count == 0
}

// DisplayMode is the persisted light/dark preference with the toggle's label
type DisplayMode struct {
	Dark        bool   `json:"dark"`
	ToggleLabel string `json:"toggle_label"`
}

// ExportFile is a generated download
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// BoardSnapshot bundles everything a page render needs
type BoardSnapshot struct {
	View        FeedbackView  `json:"view"`
	Stats       FeedbackStats `json:"stats"`
	DisplayMode DisplayMode   `json:"display_mode"`
}
