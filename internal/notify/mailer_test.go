package notify

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/temmie0232/ShiftManager/internal/domain"
)

func writeTemplates(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	for _, name := range templateFiles {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(`<p>{{ . }}</p>`), 0o644))
	}
	return dir
}

func TestBuildMail_Submitted(t *testing.T) {
	dir := writeTemplates(t)

	m, err := BuildMail("shop@example.com", dir, &domain.NotificationMessage{
		Type: domain.NotificationShiftSubmitted,
		To:   "staff@example.com",
		Data: domain.ShiftSubmittedMailData{FullName: "田中", Year: 2025, Month: 3, SubmittedAt: time.Now()},
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = m.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "staff@example.com")
	assert.Empty(t, m.GetAttachments())
}

func TestBuildMail_DocumentAttachesPDF(t *testing.T) {
	dir := writeTemplates(t)
	pdf := filepath.Join(t.TempDir(), "stored.pdf")
	require.NoError(t, os.WriteFile(pdf, []byte("%PDF-1.4\n"), 0o644))

	m, err := BuildMail("shop@example.com", dir, &domain.NotificationMessage{
		Type: domain.NotificationShiftDocument,
		To:   "group@example.com",
		Data: domain.ShiftDocumentMailData{Message: "三月排班", FilePath: pdf, FileName: "march.pdf"},
	})
	require.NoError(t, err)

	attachments := m.GetAttachments()
	require.Len(t, attachments, 1)
	assert.Equal(t, "march.pdf", attachments[0].Name)
}

func TestBuildMail_Errors(t *testing.T) {
	dir := writeTemplates(t)

	_, err := BuildMail("shop@example.com", dir, &domain.NotificationMessage{Type: "create_user", To: "a@example.com"})
	assert.Error(t, err)

	_, err = BuildMail("shop@example.com", t.TempDir(), &domain.NotificationMessage{
		Type: domain.NotificationShiftForm,
		To:   "a@example.com",
		Data: domain.ShiftFormMailData{},
	})
	assert.Error(t, err)

	_, err = BuildMail("shop@example.com", dir, &domain.NotificationMessage{
		Type: domain.NotificationShiftForm,
		To:   "not-an-address",
		Data: domain.ShiftFormMailData{},
	})
	assert.Error(t, err)
}
