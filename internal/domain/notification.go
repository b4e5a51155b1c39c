package domain

import "time"

const (
	NotificationShiftForm      = "shift_form"
	NotificationShiftDocument  = "shift_document"
	NotificationShiftSubmitted = "shift_submitted"
)

type NotificationMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type ShiftFormMailData struct {
	Deadline time.Time `json:"deadline"`
	FormURL  string    `json:"formURL"`
	Message  string    `json:"message"`
}

type ShiftDocumentMailData struct {
	Message  string `json:"message"`
	FilePath string `json:"filePath"`
	FileName string `json:"fileName"`
}

type ShiftSubmittedMailData struct {
	FullName    string    `json:"fullName"`
	Year        int       `json:"year"`
	Month       int       `json:"month"`
	DetailCount int       `json:"detailCount"`
	SubmittedAt time.Time `json:"submittedAt"`
}

type ShiftSubmissionForm struct {
	ID         int64     `json:"id"`
	Deadline   time.Time `json:"deadline"`
	FormURL    string    `json:"formURL"`
	Message    string    `json:"message"`
	IsTemplate bool      `json:"isTemplate"`
	SentAt     time.Time `json:"sentAt"`
}

type ShiftDocument struct {
	ID       int64     `json:"id"`
	FileName string    `json:"fileName"`
	FilePath string    `json:"-"`
	Message  string    `json:"message"`
	SentAt   time.Time `json:"sentAt"`
}
