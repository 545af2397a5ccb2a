package services

import (
	"bytes"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"feedbackboard/internal/config"
	"feedbackboard/internal/models"
	contextutils "feedbackboard/internal/utils"
)

// StarGlyph is repeated once per rating point
const StarGlyph = "⭐"

// FilterFeedback returns the records passing the filter, order preserved
func FilterFeedback(records []models.FeedbackRecord, filter models.RatingFilter) []models.FeedbackRecord {
	filtered := make([]models.FeedbackRecord, 0, len(records))
	for _, r := range records {
		if filter.Matches(r.Rating) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// Stars renders a rating as star glyphs
func Stars(rating int) string {
	if rating <= 0 {
		return ""
	}
	return strings.Repeat(StarGlyph, rating)
}

// RenderView builds the displayed list for a filter
func RenderView(records []models.FeedbackRecord, filter models.RatingFilter, locale contextutils.Locale) models.FeedbackView {
	if filter == "" {
		filter = models.FilterAll
	}
	filtered := FilterFeedback(records, filter)
	view := models.FeedbackView{
		Filter: filter,
		Count:  len(filtered),
		Items:  make([]models.FeedbackViewItem, 0, len(filtered)),
	}

	if len(filtered) == 0 {
		view.EmptyTitle = contextutils.Text(locale, contextutils.TextEmptyTitle)
		if filter.IsAll() {
			view.EmptyMessage = contextutils.Text(locale, contextutils.TextEmptyAll)
		} else {
			view.EmptyMessage = contextutils.Text(locale, contextutils.TextEmptyRating)
		}
		return view
	}

	for _, r := range filtered {
		view.Items = append(view.Items, models.FeedbackViewItem{
			ID:      r.ID,
			Name:    r.Name,
			Stars:   Stars(r.Rating),
			Rating:  r.Rating,
			Message: r.Message,
			Date:    r.Date,
		})
	}
	return view
}

// FormatAverage renders sum/count with one decimal ("4.0"). A zero count yields "0".
// The quotient is rounded as the float64 it is stored as, ties going up, so 87/20 is
// "4.3" (4.35 is 4.3499... as a float64) while 17/4 is "4.3".
func FormatAverage(sum, count int) string {
	if count <= 0 {
		return "0"
	}
	avg := new(big.Rat).SetFloat64(float64(sum) / float64(count))
	avg.Mul(avg, big.NewRat(10, 1))
	avg.Add(avg, big.NewRat(1, 2))
	tenths := new(big.Int).Quo(avg.Num(), avg.Denom()).Int64()
	return fmt.Sprintf("%d.%d", tenths/10, tenths%10)
}

// ComputeStats derives totals over the full list. A record counts as today's when its
// id-derived time falls on the same calendar date as now in loc.
func ComputeStats(records []models.FeedbackRecord, now time.Time, loc *time.Location) models.FeedbackStats {
	stats := models.FeedbackStats{Total: len(records), AverageRating: "0"}
	if len(records) == 0 {
		return stats
	}

	sum := 0
	for _, r := range records {
		sum += r.Rating
		if contextutils.SameCalendarDay(time.UnixMilli(r.ID), now, loc) {
			stats.TodayCount++
		}
	}
	stats.AverageRating = FormatAverage(sum, len(records))
	return stats
}

// csvQuote wraps a field in double quotes, doubling embedded quotes
func csvQuote(field string) string {
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

// FormatCSVRow renders one export row without its line terminator
func FormatCSVRow(r models.FeedbackRecord) string {
	return csvQuote(r.Name) + "," + csvQuote(r.Message) + "," + strconv.Itoa(r.Rating) + "," + csvQuote(r.Date)
}

// BuildCSV renders the header and one row per record, each terminated by "\n"
func BuildCSV(records []models.FeedbackRecord) []byte {
	var buf bytes.Buffer
	buf.WriteString(config.ExportCSVHeader)
	buf.WriteByte('\n')
	for _, r := range records {
		buf.WriteString(FormatCSVRow(r))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// ToggleLabel is the dark-mode button text: it names the mode a click switches to
func ToggleLabel(dark bool, locale contextutils.Locale) string {
	if dark {
		return contextutils.Text(locale, contextutils.TextLightModeLabel)
	}
	return contextutils.Text(locale, contextutils.TextDarkModeLabel)
}
