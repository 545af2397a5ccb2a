package services

import (
	"testing"

	"feedbackboard/internal/models"
	contextutils "feedbackboard/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeFeedback_EmptyIsArray(t *testing.T) {
	encoded, err := EncodeFeedback(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", encoded)
}

func TestDecodeFeedback_AcceptsBrowserLayout(t *testing.T) {
	raw := `[{"id":1704067200000,"name":"Ana","message":"Great, place","rating":4,"date":"1/1/2024, 07.00.00","extra":true}]`

	records, err := DecodeFeedback(raw)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, models.FeedbackRecord{ID: 1704067200000, Name: "Ana", Message: "Great, place", Rating: 4, Date: "1/1/2024, 07.00.00"}, records[0])

	empty, err := DecodeFeedback("[]")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestDecodeFeedback_RejectsUnexpectedDocuments(t *testing.T) {
	tests := map[string]string{
		"not json":       `{{{`,
		"object":         `{"id":1}`,
		"null":           `null`,
		"missing fields": `[{"id":1,"name":"A"}]`,
		"string id":      `[{"id":"1","name":"A","message":"m","rating":3,"date":"d"}]`,
		"rating range":   `[{"id":1,"name":"A","message":"m","rating":0,"date":"d"}]`,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeFeedback(raw)
			require.Error(t, err)
			assert.Equal(t, contextutils.ErrorCodeInvalidFormat, contextutils.GetErrorCode(err))
		})
	}
}

func TestDarkModeCodec(t *testing.T) {
	assert.Equal(t, "true", EncodeDarkMode(true))
	assert.Equal(t, "false", EncodeDarkMode(false))
	assert.True(t, DecodeDarkMode("true"))
	assert.False(t, DecodeDarkMode("false"))
	assert.False(t, DecodeDarkMode(""))
	assert.False(t, DecodeDarkMode("TRUE"))
}
