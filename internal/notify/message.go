package notify

import (
	"encoding/json"
	"fmt"

	"github.com/temmie0232/ShiftManager/internal/domain"
)

// DecodeMessage 按 type 把 data 解析为对应的结构体
func DecodeMessage(body []byte) (*domain.NotificationMessage, error) {
	var raw struct {
		Type string          `json:"type"`
		To   string          `json:"to"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}

	msg := &domain.NotificationMessage{
		Type: raw.Type,
		To:   raw.To,
	}

	switch raw.Type {
	case domain.NotificationShiftForm:
		var data domain.ShiftFormMailData
		if err := json.Unmarshal(raw.Data, &data); err != nil {
			return nil, err
		}
		msg.Data = data
	case domain.NotificationShiftDocument:
		var data domain.ShiftDocumentMailData
		if err := json.Unmarshal(raw.Data, &data); err != nil {
			return nil, err
		}
		msg.Data = data
	case domain.NotificationShiftSubmitted:
		var data domain.ShiftSubmittedMailData
		if err := json.Unmarshal(raw.Data, &data); err != nil {
			return nil, err
		}
		msg.Data = data
	default:
		return nil, fmt.Errorf("未知的通知类型 %q", raw.Type)
	}

	if msg.To == "" {
		return nil, fmt.Errorf("通知 %s 缺少收件人", raw.Type)
	}

	return msg, nil
}

// Subject 返回邮件标题
func Subject(msg *domain.NotificationMessage) string {
	switch data := msg.Data.(type) {
	case domain.ShiftFormMailData:
		return fmt.Sprintf("请在 %s 前提交班次", data.Deadline.Format("01月02日 15:04"))
	case domain.ShiftDocumentMailData:
		return "排班表已发布"
	case domain.ShiftSubmittedMailData:
		return fmt.Sprintf("%d年%d月的班次已提交", data.Year, data.Month)
	default:
		return "通知"
	}
}
