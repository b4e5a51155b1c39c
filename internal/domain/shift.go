package domain

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// Period 表示一个排班周期，即某年某月
type Period struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

func (p Period) Valid() bool {
	return p.Year >= 1 && p.Month >= 1 && p.Month <= 12
}

func (p Period) Contains(date time.Time) bool {
	return date.Year() == p.Year && int(date.Month()) == p.Month
}

func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Period{}, fmt.Errorf("无效的周期 %q", s)
	}
	return Period{Year: t.Year(), Month: int(t.Month())}, nil
}

// ShiftKey 是排班状态机的互斥单元
type ShiftKey struct {
	EmployeeID int64
	Period     Period
}

func (k ShiftKey) String() string {
	return fmt.Sprintf("%d:%s", k.EmployeeID, k.Period)
}

type SubmissionStatus struct {
	EmployeeID  int64      `json:"employeeID"`
	Year        int        `json:"year"`
	Month       int        `json:"month"`
	IsSubmitted bool       `json:"isSubmitted"`
	SubmittedAt *time.Time `json:"submittedAt"`
	CreatedAt   time.Time  `json:"-"`
}

// ShiftDetail 同时用于草稿和已提交记录中的每日条目
type ShiftDetail struct {
	Date      string  `json:"date"`
	StartTime *string `json:"startTime"`
	EndTime   *string `json:"endTime"`
	IsHoliday bool    `json:"isHoliday"`
	Color     *string `json:"color"`
}

// Preferences 是草稿和已提交记录共有的数值偏好，草稿中未填写的字段为 nil
type Preferences struct {
	MinHours       *int32 `json:"minHours"`
	MaxHours       *int32 `json:"maxHours"`
	MinDaysPerWeek *int32 `json:"minDaysPerWeek"`
	MaxDaysPerWeek *int32 `json:"maxDaysPerWeek"`
}

type DraftShiftRequest struct {
	ID         int64 `json:"id"`
	EmployeeID int64 `json:"employeeID"`
	Year       int   `json:"year"`
	Month      int   `json:"month"`
	Preferences
	Details   []ShiftDetail `json:"shiftDetails"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

func (d *DraftShiftRequest) Period() Period {
	return Period{Year: d.Year, Month: d.Month}
}

type ShiftRequest struct {
	ID             int64         `json:"id"`
	EmployeeID     int64         `json:"employeeID"`
	FullName       string        `json:"fullName,omitempty"` // 只在按周期列出所有员工的提交时填充
	Year           int           `json:"year"`
	Month          int           `json:"month"`
	MinHours       int32         `json:"minHours"`
	MaxHours       int32         `json:"maxHours"`
	MinDaysPerWeek int32         `json:"minDaysPerWeek"`
	MaxDaysPerWeek int32         `json:"maxDaysPerWeek"`
	Details        []ShiftDetail `json:"shiftDetails"`
	SubmittedAt    time.Time     `json:"submittedAt"`
}

type HistoryFilter struct {
	Year  *int
	Month *int
}
