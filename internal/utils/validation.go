package utils

import (
	"fmt"
	"time"

	"github.com/temmie0232/ShiftManager/internal/domain"
)

const ClockLayout = "15:04"

// ParseClock 解析 HH:MM 格式的时刻，同时兼容数据库返回的 HH:MM:SS
func ParseClock(s string) (time.Time, error) {
	t, err := time.Parse(ClockLayout, s)
	if err == nil {
		return t, nil
	}
	return time.Parse("15:04:05", s)
}

// NormalizeClock 将时刻统一为 HH:MM
func NormalizeClock(s string) (string, error) {
	t, err := ParseClock(s)
	if err != nil {
		return "", err
	}
	return t.Format(ClockLayout), nil
}

// ValidateTimeRange 要求开始时间严格早于结束时间
func ValidateTimeRange(field string, start, end string) error {
	startTime, err := ParseClock(start)
	if err != nil {
		return domain.NewValidationError(field+".startTime", "开始时间格式错误")
	}
	endTime, err := ParseClock(end)
	if err != nil {
		return domain.NewValidationError(field+".endTime", "结束时间格式错误")
	}
	if !startTime.Before(endTime) {
		return domain.NewValidationError(field, "开始时间必须早于结束时间")
	}
	return nil
}

func ValidateTimePreset(preset *domain.TimePreset) error {
	if err := ValidateTimeRange("preset", preset.StartTime, preset.EndTime); err != nil {
		return err
	}

	// 统一格式后再入库
	preset.StartTime, _ = NormalizeClock(preset.StartTime)
	preset.EndTime, _ = NormalizeClock(preset.EndTime)
	return nil
}

func ValidatePIN(pin string) error {
	if len(pin) != 4 {
		return fmt.Errorf("PIN 必须是 4 位数字")
	}
	for _, c := range pin {
		if c < '0' || c > '9' {
			return fmt.Errorf("PIN 必须是 4 位数字")
		}
	}
	return nil
}
