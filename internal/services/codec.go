package services

import (
	"encoding/json"
	"strings"

	"feedbackboard/internal/models"
	contextutils "feedbackboard/internal/utils"

	"github.com/xeipuuv/gojsonschema"
)

// feedbackListSchema describes the value stored under the feedback key. Unknown properties
// are tolerated so documents written by other clients still load.
const feedbackListSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "name", "message", "rating", "date"],
    "properties": {
      "id": {"type": "integer"},
      "name": {"type": "string"},
      "message": {"type": "string"},
      "rating": {"type": "integer", "minimum": 1, "maximum": 5},
      "date": {"type": "string"}
    }
  }
}`

var feedbackListSchemaLoader = gojsonschema.NewStringLoader(feedbackListSchema)

// EncodeFeedback serializes the full record list. An empty list encodes as "[]".
func EncodeFeedback(records []models.FeedbackRecord) (string, error) {
	if records == nil {
		records = []models.FeedbackRecord{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return "", contextutils.WrapError(err, "failed to encode feedback list")
	}
	return string(data), nil
}

// DecodeFeedback parses a stored feedback list. It fails with INVALID_FORMAT when the value
// is not JSON or does not match the persisted layout.
func DecodeFeedback(value string) ([]models.FeedbackRecord, error) {
	result, err := gojsonschema.Validate(feedbackListSchemaLoader, gojsonschema.NewStringLoader(value))
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrInvalidFormat, "stored feedback is not valid JSON: %w", err)
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return nil, contextutils.NewAppError(contextutils.ErrorCodeInvalidFormat, contextutils.SeverityWarn,
			"stored feedback does not match the expected layout", strings.Join(problems, "; "))
	}

	var records []models.FeedbackRecord
	if err := json.Unmarshal([]byte(value), &records); err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrInvalidFormat, "failed to decode stored feedback: %w", err)
	}
	if records == nil {
		records = []models.FeedbackRecord{}
	}
	return records, nil
}

// EncodeDarkMode returns the stored form of the dark-mode flag
func EncodeDarkMode(dark bool) string {
	if dark {
		return "true"
	}
	return "false"
}

// DecodeDarkMode treats only the exact string "true" as dark
func DecodeDarkMode(value string) bool {
	return value == "true"
}
