package planning

import (
	"fmt"
	"time"

	"github.com/temmie0232/ShiftManager/internal/domain"
)

type PeriodMode string

const (
	// PeriodNext 员工在本月填写下个月的班次
	PeriodNext PeriodMode = "next"
	// PeriodCurrent 员工填写当月的班次
	PeriodCurrent PeriodMode = "current"
)

// Clock 决定当前的目标周期，所有组件共用同一个 Clock
type Clock struct {
	mode     PeriodMode
	location *time.Location
	now      func() time.Time
}

func NewClock(mode PeriodMode, timezone string) (*Clock, error) {
	if mode != PeriodNext && mode != PeriodCurrent {
		return nil, fmt.Errorf("无效的周期模式 %q", mode)
	}

	location, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("无效的时区 %q: %w", timezone, err)
	}

	return &Clock{
		mode:     mode,
		location: location,
		now:      time.Now,
	}, nil
}

// WithNow 替换时间来源，测试中用于固定当前时间
func (c *Clock) WithNow(now func() time.Time) *Clock {
	cp := *c
	cp.now = now
	return &cp
}

func (c *Clock) Now() time.Time {
	return c.now().In(c.location)
}

func (c *Clock) Location() *time.Location {
	return c.location
}

// TargetPeriod 返回 now 所对应的目标周期
func (c *Clock) TargetPeriod(now time.Time) domain.Period {
	start := c.CycleStart(now)
	if c.mode == PeriodNext {
		start = start.AddDate(0, 1, 0)
	}
	return domain.Period{Year: start.Year(), Month: int(start.Month())}
}

// CycleStart 返回 now 所在自然月的第一个时刻，即当前填写窗口的开始
func (c *Clock) CycleStart(now time.Time) time.Time {
	t := now.In(c.location)
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, c.location)
}

func (c *Clock) CurrentPeriod() domain.Period {
	return c.TargetPeriod(c.Now())
}

// IsCurrent 判断 period 是否是 now 时刻的目标周期
func (c *Clock) IsCurrent(period domain.Period, now time.Time) bool {
	return c.TargetPeriod(now) == period
}
