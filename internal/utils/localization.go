package contextutils

import (
	"strings"
)

// Locale represents a language locale (e.g., "id", "en")
type Locale string

const (
	// LocaleIndonesian represents Indonesian, the board's default language
	LocaleIndonesian Locale = "id"
	// LocaleEnglish represents English language
	LocaleEnglish Locale = "en"
)

// DefaultLocale is used when no locale is configured or requested
const DefaultLocale = LocaleIndonesian

// LocalizedMessages contains localized error messages for different locales. Validation
// failures can carry a per-field message that replaces the code's message.
type LocalizedMessages struct {
	messages map[ErrorCode]map[Locale]string
	fields   map[string]map[Locale]string
}

// NewLocalizedMessages creates a new instance of localized messages
func NewLocalizedMessages() *LocalizedMessages {
	return &LocalizedMessages{
		messages: make(map[ErrorCode]map[Locale]string),
		fields:   make(map[string]map[Locale]string),
	}
}

// AddFieldMessage adds a localized validation message for one field
func (lm *LocalizedMessages) AddFieldMessage(field string, locale Locale, message string) {
	if lm.fields[field] == nil {
		lm.fields[field] = make(map[Locale]string)
	}
	lm.fields[field][locale] = message
}

// GetFieldMessage returns the validation message for field, if one is registered
func (lm *LocalizedMessages) GetFieldMessage(field string, locale Locale) (string, bool) {
	localeMessages, exists := lm.fields[field]
	if !exists {
		return "", false
	}
	if message, exists := localeMessages[locale]; exists {
		return message, true
	}
	message, exists := localeMessages[LocaleEnglish]
	return message, exists
}

// AddMessage adds a localized message for a specific error code and locale
func (lm *LocalizedMessages) AddMessage(code ErrorCode, locale Locale, message string) {
	if lm.messages[code] == nil {
		lm.messages[code] = make(map[Locale]string)
	}
	lm.messages[code][locale] = message
}

// GetMessage returns the localized message for an error code and locale
func (lm *LocalizedMessages) GetMessage(code ErrorCode, locale Locale) string {
	if localeMessages, exists := lm.messages[code]; exists {
		if message, exists := localeMessages[locale]; exists {
			return message
		}

		// Fallback to English if the specific locale doesn't have a message
		if message, exists := localeMessages[LocaleEnglish]; exists {
			return message
		}
	}

	return getDefaultMessage(code)
}

// getDefaultMessage returns a default English message for error codes
func getDefaultMessage(code ErrorCode) string {
	switch code {
	case ErrorCodeDatabaseConnection:
		return "Database connection failed"
	case ErrorCodeDatabaseQuery:
		return "Database query failed"
	case ErrorCodeStorage:
		return "Storage operation failed"
	case ErrorCodeRecordNotFound:
		return "Record not found"
	case ErrorCodeInvalidInput:
		return "Invalid input"
	case ErrorCodeInvalidFormat:
		return "Invalid format"
	case ErrorCodeValidationFailed:
		return "Validation failed"
	case ErrorCodeNothingToExport:
		return "Nothing to export"
	case ErrorCodeNothingToClear:
		return "Nothing to clear"
	case ErrorCodeServiceUnavailable:
		return "Service temporarily unavailable"
	case ErrorCodeTimeout:
		return "Request timeout"
	case ErrorCodeInternalError:
		return "Internal server error"
	default:
		return "An error occurred"
	}
}

// ParseLocale parses a locale string (e.g., "id-ID", "en-US") and returns the language part
func ParseLocale(localeStr string) Locale {
	parts := strings.Split(strings.TrimSpace(localeStr), "-")
	if len(parts) > 0 && parts[0] != "" {
		return Locale(strings.ToLower(parts[0]))
	}
	return DefaultLocale
}

var globalLocalizedMessages = NewLocalizedMessages()

func init() {
	globalLocalizedMessages.AddMessage(ErrorCodeValidationFailed, LocaleIndonesian, "Harap isi nama dan pesan!")
	globalLocalizedMessages.AddMessage(ErrorCodeValidationFailed, LocaleEnglish, "Please fill in your name and message!")

	// The name/message text above is wrong for a rating outside 1 to 5
	globalLocalizedMessages.AddFieldMessage("rating", LocaleIndonesian, "Rating harus antara 1 dan 5!")
	globalLocalizedMessages.AddFieldMessage("rating", LocaleEnglish, "Rating must be between 1 and 5!")

	globalLocalizedMessages.AddMessage(ErrorCodeNothingToExport, LocaleIndonesian, "Tidak ada data untuk di-export!")
	globalLocalizedMessages.AddMessage(ErrorCodeNothingToExport, LocaleEnglish, "There is no data to export!")

	globalLocalizedMessages.AddMessage(ErrorCodeNothingToClear, LocaleIndonesian, "Tidak ada data untuk dihapus!")
	globalLocalizedMessages.AddMessage(ErrorCodeNothingToClear, LocaleEnglish, "There is no data to delete!")

	globalLocalizedMessages.AddMessage(ErrorCodeInvalidInput, LocaleIndonesian, "Input tidak valid")
	globalLocalizedMessages.AddMessage(ErrorCodeInvalidFormat, LocaleIndonesian, "Format tidak valid")
	globalLocalizedMessages.AddMessage(ErrorCodeStorage, LocaleIndonesian, "Penyimpanan tidak dapat diakses")
	globalLocalizedMessages.AddMessage(ErrorCodeInternalError, LocaleIndonesian, "Terjadi kesalahan pada server")
}

// GetLocalizedMessage returns a localized error message using the global instance
func GetLocalizedMessage(code ErrorCode, locale Locale) string {
	return globalLocalizedMessages.GetMessage(code, locale)
}

// GetLocalizedFieldMessage returns the global validation message for field, if any
func GetLocalizedFieldMessage(field string, locale Locale) (string, bool) {
	return globalLocalizedMessages.GetFieldMessage(field, locale)
}

// UIText identifies a user-facing board string that is not an error
type UIText string

// Board texts shown as notifications, prompts, labels and empty states.
const (
	TextSubmitted        UIText = "submitted"
	TextCleared          UIText = "cleared"
	TextConfirmDelete    UIText = "confirm_delete"
	TextConfirmClear     UIText = "confirm_clear"
	TextEmptyTitle       UIText = "empty_title"
	TextEmptyAll         UIText = "empty_all"
	TextEmptyRating      UIText = "empty_rating"
	TextDarkModeLabel    UIText = "dark_mode_label"
	TextLightModeLabel   UIText = "light_mode_label"
	TextDeleteButton     UIText = "delete_button"
	TextDeleteCancelled  UIText = "delete_cancelled"
	TextClearCancelled   UIText = "clear_cancelled"
	TextFeedbackDeleted  UIText = "feedback_deleted"
	TextFilterAllOption  UIText = "filter_all"
	TextExportButton     UIText = "export_button"
	TextClearAllButton   UIText = "clear_all_button"
	TextSubmitButton     UIText = "submit_button"
	TextStatsTotal       UIText = "stats_total"
	TextStatsAverage     UIText = "stats_average"
	TextStatsToday       UIText = "stats_today"
	TextStatsFilterCount UIText = "stats_filter_count"
	TextPageTitle        UIText = "page_title"
	TextNameLabel        UIText = "name_label"
	TextMessageLabel     UIText = "message_label"
	TextRatingLabel      UIText = "rating_label"
	TextFilterLabel      UIText = "filter_label"
	TextBackLink         UIText = "back_link"
)

// AllUITexts lists every board text key, in no particular order
var AllUITexts = []UIText{
	TextSubmitted, TextCleared, TextConfirmDelete, TextConfirmClear, TextEmptyTitle,
	TextEmptyAll, TextEmptyRating, TextDarkModeLabel, TextLightModeLabel, TextDeleteButton,
	TextDeleteCancelled, TextClearCancelled, TextFeedbackDeleted, TextFilterAllOption,
	TextExportButton, TextClearAllButton, TextSubmitButton, TextStatsTotal, TextStatsAverage,
	TextStatsToday, TextStatsFilterCount, TextPageTitle, TextNameLabel, TextMessageLabel,
	TextRatingLabel, TextFilterLabel, TextBackLink,
}

var uiTexts = map[Locale]map[UIText]string{
	LocaleIndonesian: {
		TextSubmitted:        "Terima kasih atas feedbacknya! 📖",
		TextCleared:          "Semua feedback telah dihapus!",
		TextConfirmDelete:    "Hapus feedback ini?",
		TextConfirmClear:     "Apakah Anda yakin ingin menghapus semua feedback?",
		TextEmptyTitle:       "📝 Tidak ada feedback",
		TextEmptyAll:         "Jadilah yang pertama memberikan feedback!",
		TextEmptyRating:      "Tidak ada feedback dengan rating ini",
		TextDarkModeLabel:    "🌙 Dark Mode",
		TextLightModeLabel:   "☀️ Light Mode",
		TextDeleteButton:     "Hapus",
		TextDeleteCancelled:  "Penghapusan dibatalkan",
		TextClearCancelled:   "Penghapusan semua feedback dibatalkan",
		TextFeedbackDeleted:  "Feedback telah dihapus",
		TextFilterAllOption:  "Semua Rating",
		TextExportButton:     "Export CSV",
		TextClearAllButton:   "Hapus Semua",
		TextSubmitButton:     "Kirim Feedback",
		TextStatsTotal:       "Total Feedback",
		TextStatsAverage:     "Rata-rata Rating",
		TextStatsToday:       "Feedback Hari Ini",
		TextStatsFilterCount: "Feedback Ditampilkan",
		TextPageTitle:        "📚 Feedback Perpustakaan",
		TextNameLabel:        "Nama",
		TextMessageLabel:     "Pesan",
		TextRatingLabel:      "Rating",
		TextFilterLabel:      "Filter Rating",
		TextBackLink:         "Kembali",
	},
	LocaleEnglish: {
		TextSubmitted:        "Thank you for your feedback! 📖",
		TextCleared:          "All feedback has been deleted!",
		TextConfirmDelete:    "Delete this feedback?",
		TextConfirmClear:     "Are you sure you want to delete all feedback?",
		TextEmptyTitle:       "📝 No feedback",
		TextEmptyAll:         "Be the first to leave feedback!",
		TextEmptyRating:      "No feedback with this rating",
		TextDarkModeLabel:    "🌙 Dark Mode",
		TextLightModeLabel:   "☀️ Light Mode",
		TextDeleteButton:     "Delete",
		TextDeleteCancelled:  "Deletion cancelled",
		TextClearCancelled:   "Clearing all feedback cancelled",
		TextFeedbackDeleted:  "Feedback deleted",
		TextFilterAllOption:  "All Ratings",
		TextExportButton:     "Export CSV",
		TextClearAllButton:   "Clear All",
		TextSubmitButton:     "Send Feedback",
		TextStatsTotal:       "Total Feedback",
		TextStatsAverage:     "Average Rating",
		TextStatsToday:       "Today's Feedback",
		TextStatsFilterCount: "Shown",
		TextPageTitle:        "📚 Library Feedback",
		TextNameLabel:        "Name",
		TextMessageLabel:     "Message",
		TextRatingLabel:      "Rating",
		TextFilterLabel:      "Filter by Rating",
		TextBackLink:         "Back",
	},
}

// Text returns the board text for the locale, falling back to the default locale
func Text(locale Locale, key UIText) string {
	if texts, ok := uiTexts[locale]; ok {
		if text, ok := texts[key]; ok {
			return text
		}
	}
	return uiTexts[DefaultLocale][key]
}

// IsSupportedLocale reports whether board texts exist for the locale
func IsSupportedLocale(locale Locale) bool {
	_, ok := uiTexts[locale]
	return ok
}
