package notify

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/temmie0232/ShiftManager/internal/domain"
)

func TestDecodeMessage_DispatchesOnType(t *testing.T) {
	submittedAt := time.Date(2025, 2, 10, 10, 0, 0, 0, time.UTC)
	body, err := json.Marshal(&domain.NotificationMessage{
		Type: domain.NotificationShiftSubmitted,
		To:   "tanaka@example.com",
		Data: domain.ShiftSubmittedMailData{
			FullName:    "田中",
			Year:        2025,
			Month:       3,
			DetailCount: 12,
			SubmittedAt: submittedAt,
		},
	})
	require.NoError(t, err)

	msg, err := DecodeMessage(body)
	require.NoError(t, err)

	data, ok := msg.Data.(domain.ShiftSubmittedMailData)
	require.True(t, ok)
	assert.Equal(t, "田中", data.FullName)
	assert.Equal(t, 12, data.DetailCount)
	assert.True(t, submittedAt.Equal(data.SubmittedAt))
	assert.Equal(t, "2025年3月的班次已提交", Subject(msg))
}

func TestDecodeMessage_Document(t *testing.T) {
	body := []byte(`{"type":"shift_document","to":"staff@example.com","data":{"message":"三月排班","filePath":"/data/a.pdf","fileName":"a.pdf"}}`)

	msg, err := DecodeMessage(body)
	require.NoError(t, err)

	data, ok := msg.Data.(domain.ShiftDocumentMailData)
	require.True(t, ok)
	assert.Equal(t, "/data/a.pdf", data.FilePath)
}

func TestDecodeMessage_Rejects(t *testing.T) {
	_, err := DecodeMessage([]byte(`{"type":"reset_password","to":"a@example.com","data":{}}`))
	assert.Error(t, err)

	_, err = DecodeMessage([]byte(`{"type":"shift_form","data":{"formURL":"https://example.com"}}`))
	assert.Error(t, err)

	_, err = DecodeMessage([]byte(`not json`))
	assert.Error(t, err)
}
