package planning

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/temmie0232/ShiftManager/internal/domain"
	"github.com/temmie0232/ShiftManager/internal/utils"
)

var hexColorRX = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

func detailField(i int) string {
	return fmt.Sprintf("shiftDetails[%d]", i)
}

// normalizeDetails 校验一组每日条目并返回按日期排序的副本，时刻统一为 HH:MM
func normalizeDetails(period domain.Period, entries []domain.ShiftDetail) ([]domain.ShiftDetail, error) {
	details := make([]domain.ShiftDetail, 0, len(entries))
	seen := make(map[string]int, len(entries))

	for i, entry := range entries {
		field := detailField(i)

		date, err := time.Parse(domain.DateLayout, entry.Date)
		if err != nil {
			return nil, domain.NewValidationError(field+".date", "日期格式错误，应为 YYYY-MM-DD")
		}
		if !period.Contains(date) {
			return nil, domain.NewValidationError(field+".date", "日期 %s 不在 %s 内", entry.Date, period)
		}
		normalizedDate := date.Format(domain.DateLayout)
		if first, ok := seen[normalizedDate]; ok {
			return nil, domain.NewValidationError(field+".date", "日期 %s 与 shiftDetails[%d] 重复", normalizedDate, first)
		}
		seen[normalizedDate] = i

		detail := domain.ShiftDetail{
			Date:      normalizedDate,
			IsHoliday: entry.IsHoliday,
		}

		if entry.StartTime != nil && *entry.StartTime != "" {
			s, err := utils.NormalizeClock(*entry.StartTime)
			if err != nil {
				return nil, domain.NewValidationError(field+".startTime", "时间格式错误，应为 HH:MM")
			}
			detail.StartTime = &s
		}
		if entry.EndTime != nil && *entry.EndTime != "" {
			s, err := utils.NormalizeClock(*entry.EndTime)
			if err != nil {
				return nil, domain.NewValidationError(field+".endTime", "时间格式错误，应为 HH:MM")
			}
			detail.EndTime = &s
		}
		if entry.Color != nil && *entry.Color != "" {
			if !hexColorRX.MatchString(*entry.Color) {
				return nil, domain.NewValidationError(field+".color", "颜色必须是十六进制格式")
			}
			color := *entry.Color
			detail.Color = &color
		}

		details = append(details, detail)
	}

	slices.SortFunc(details, func(a, b domain.ShiftDetail) int {
		return strings.Compare(a.Date, b.Date)
	})
	return details, nil
}

func validatePreferencePatch(patch domain.Preferences) error {
	fields := []struct {
		name  string
		value *int32
	}{
		{"minHours", patch.MinHours},
		{"maxHours", patch.MaxHours},
		{"minDaysPerWeek", patch.MinDaysPerWeek},
		{"maxDaysPerWeek", patch.MaxDaysPerWeek},
	}
	for _, f := range fields {
		if f.value != nil && *f.value < 0 {
			return domain.NewValidationError(f.name, "不能为负数")
		}
	}
	if patch.MaxDaysPerWeek != nil && *patch.MaxDaysPerWeek > 7 {
		return domain.NewValidationError("maxDaysPerWeek", "每周最多 7 天")
	}
	if patch.MinDaysPerWeek != nil && *patch.MinDaysPerWeek > 7 {
		return domain.NewValidationError("minDaysPerWeek", "每周最多 7 天")
	}
	return nil
}

func applyPreferences(dst *domain.Preferences, patch domain.Preferences) {
	if patch.MinHours != nil {
		dst.MinHours = patch.MinHours
	}
	if patch.MaxHours != nil {
		dst.MaxHours = patch.MaxHours
	}
	if patch.MinDaysPerWeek != nil {
		dst.MinDaysPerWeek = patch.MinDaysPerWeek
	}
	if patch.MaxDaysPerWeek != nil {
		dst.MaxDaysPerWeek = patch.MaxDaysPerWeek
	}
}

// buildShiftRequest 校验提交内容并生成正式记录
func buildShiftRequest(key domain.ShiftKey, prefs domain.Preferences, details []domain.ShiftDetail, now time.Time) (*domain.ShiftRequest, error) {
	if err := validatePreferencePatch(prefs); err != nil {
		return nil, err
	}

	required := []struct {
		name  string
		value *int32
	}{
		{"minHours", prefs.MinHours},
		{"maxHours", prefs.MaxHours},
		{"minDaysPerWeek", prefs.MinDaysPerWeek},
		{"maxDaysPerWeek", prefs.MaxDaysPerWeek},
	}
	for _, f := range required {
		if f.value == nil {
			return nil, domain.NewValidationError(f.name, "提交前必须填写")
		}
	}

	if *prefs.MinHours > *prefs.MaxHours {
		return nil, domain.NewValidationError("minHours", "最少工时不能大于最多工时")
	}
	if *prefs.MinDaysPerWeek > *prefs.MaxDaysPerWeek {
		return nil, domain.NewValidationError("minDaysPerWeek", "每周最少天数不能大于最多天数")
	}

	for i, detail := range details {
		if detail.StartTime == nil || detail.EndTime == nil {
			continue
		}
		if err := utils.ValidateTimeRange(detailField(i), *detail.StartTime, *detail.EndTime); err != nil {
			return nil, err
		}
	}

	return &domain.ShiftRequest{
		EmployeeID:     key.EmployeeID,
		Year:           key.Period.Year,
		Month:          key.Period.Month,
		MinHours:       *prefs.MinHours,
		MaxHours:       *prefs.MaxHours,
		MinDaysPerWeek: *prefs.MinDaysPerWeek,
		MaxDaysPerWeek: *prefs.MaxDaysPerWeek,
		Details:        details,
		SubmittedAt:    now,
	}, nil
}
