package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/temmie0232/ShiftManager/internal/domain"
)

func (h *Handler) SendShiftForm(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Deadline       time.Time `json:"deadline" validate:"required"`
		FormURL        string    `json:"formURL" validate:"required,url"`
		Message        string    `json:"message" validate:"max=2000"`
		SaveAsTemplate bool      `json:"saveAsTemplate"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if h.config.Notification.GroupAddress == "" {
		h.errorResponse(w, r, http.StatusServiceUnavailable, "未配置通知收件地址", nil)
		return
	}

	form := &domain.ShiftSubmissionForm{
		Deadline:   req.Deadline,
		FormURL:    req.FormURL,
		Message:    req.Message,
		IsTemplate: req.SaveAsTemplate,
	}
	if err := h.repository.CreateShiftSubmissionForm(r.Context(), form); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.publish(r.Context(), &domain.NotificationMessage{
		Type: domain.NotificationShiftForm,
		To:   h.config.Notification.GroupAddress,
		Data: domain.ShiftFormMailData{
			Deadline: form.Deadline,
			FormURL:  form.FormURL,
			Message:  form.Message,
		},
	})

	h.createdResponse(w, r, "提交表单通知已发送", form)
}

func (h *Handler) GetShiftFormTemplate(w http.ResponseWriter, r *http.Request) {
	form, err := h.repository.GetLatestShiftFormTemplate(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.notFound(w, r, "尚未保存模板")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "获取模板成功", form)
}

// SendShiftDocument 接收 multipart 上传的 PDF 排班表，保存后通知所有员工
func (h *Handler) SendShiftDocument(w http.ResponseWriter, r *http.Request) {
	if h.config.Notification.GroupAddress == "" {
		h.errorResponse(w, r, http.StatusServiceUnavailable, "未配置通知收件地址", nil)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.config.Storage.MaxUploadSize)
	if err := r.ParseMultipartForm(h.config.Storage.MaxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytesErr):
			h.errorResponse(w, r, http.StatusRequestEntityTooLarge, "文件过大", nil)
		default:
			h.badRequest(w, r, errors.New("无效的上传内容"))
		}
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.badRequest(w, r, errors.New("缺少文件"))
		return
	}
	defer file.Close()

	// 只接受 PDF
	sniff := make([]byte, 512)
	n, err := io.ReadFull(file, sniff)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		h.internalServerError(w, r, err)
		return
	}
	if http.DetectContentType(sniff[:n]) != "application/pdf" {
		h.badRequest(w, r, errors.New("只支持 PDF 文件"))
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	fileName := filepath.Base(header.Filename)
	if !strings.EqualFold(filepath.Ext(fileName), ".pdf") {
		fileName += ".pdf"
	}

	if err := os.MkdirAll(h.config.Storage.DocumentRoot, 0o755); err != nil {
		h.internalServerError(w, r, err)
		return
	}
	filePath := filepath.Join(h.config.Storage.DocumentRoot, fmt.Sprintf("%d_%s", time.Now().UnixNano(), fileName))

	dst, err := os.Create(filePath)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if _, err := io.Copy(dst, file); err != nil {
		_ = dst.Close()
		_ = os.Remove(filePath)
		h.internalServerError(w, r, err)
		return
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(filePath)
		h.internalServerError(w, r, err)
		return
	}

	document := &domain.ShiftDocument{
		FileName: fileName,
		FilePath: filePath,
		Message:  r.FormValue("message"),
	}
	if err := h.repository.CreateShiftDocument(r.Context(), document); err != nil {
		_ = os.Remove(filePath)
		h.internalServerError(w, r, err)
		return
	}

	h.publish(r.Context(), &domain.NotificationMessage{
		Type: domain.NotificationShiftDocument,
		To:   h.config.Notification.GroupAddress,
		Data: domain.ShiftDocumentMailData{
			Message:  document.Message,
			FilePath: document.FilePath,
			FileName: document.FileName,
		},
	})

	h.createdResponse(w, r, "排班表已发送", document)
}

func (h *Handler) GetShiftDocuments(w http.ResponseWriter, r *http.Request) {
	documents, err := h.repository.GetAllShiftDocuments(r.Context())
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取排班表列表成功", documents)
}
