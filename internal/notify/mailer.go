package notify

import (
	"fmt"
	"html/template"
	"path/filepath"

	"github.com/temmie0232/ShiftManager/internal/domain"
	"github.com/wneessen/go-mail"
)

var templateFiles = map[string]string{
	domain.NotificationShiftForm:      "shift_form_email.html",
	domain.NotificationShiftDocument:  "shift_document_email.html",
	domain.NotificationShiftSubmitted: "shift_submitted_email.html",
}

// BuildMail 根据通知类型渲染邮件，排班表通知会附带 PDF
func BuildMail(from, templateDir string, msg *domain.NotificationMessage) (*mail.Msg, error) {
	name, ok := templateFiles[msg.Type]
	if !ok {
		return nil, fmt.Errorf("不支持的通知类型 %q", msg.Type)
	}

	m := mail.NewMsg()
	if err := m.From(from); err != nil {
		return nil, fmt.Errorf("无法设置邮件发件人: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("无法设置邮件收件人: %w", err)
	}

	tmpl, err := template.ParseFiles(filepath.Join(templateDir, name))
	if err != nil {
		return nil, fmt.Errorf("无法解析邮件模板: %w", err)
	}
	if err := m.SetBodyHTMLTemplate(tmpl, msg.Data); err != nil {
		return nil, fmt.Errorf("无法设置邮件正文: %w", err)
	}
	m.Subject(Subject(msg))

	if data, ok := msg.Data.(domain.ShiftDocumentMailData); ok && data.FilePath != "" {
		m.AttachFile(data.FilePath, mail.WithFileName(data.FileName))
	}

	return m, nil
}
