package planning

import (
	"errors"
	"time"

	"github.com/temmie0232/ShiftManager/internal/domain"
)

// upsertPolicy 描述一种按周期惰性创建的记录
type upsertPolicy[T any] struct {
	load   func() (T, error)
	create func() (T, error)
	// stale 判断记录是否是上一个填写窗口遗留下来的
	stale func(row T, cycleStart time.Time) (bool, error)
	reset func(row T) (T, error)
}

// upsertWithPolicy 读取记录，不存在则创建；
// 如果 key 是当前目标周期且记录已过期，则重置后返回。
// 返回值 reset 表示本次调用是否发生了重置
func upsertWithPolicy[T any](clock *Clock, now time.Time, key domain.ShiftKey, p upsertPolicy[T]) (row T, reset bool, err error) {
	row, err = p.load()
	if errors.Is(err, domain.ErrNotFound) {
		row, err = p.create()
		if err != nil {
			return row, false, err
		}
	} else if err != nil {
		return row, false, err
	}

	if !clock.IsCurrent(key.Period, now) {
		return row, false, nil
	}
	stale, err := p.stale(row, clock.CycleStart(now))
	if err != nil || !stale {
		return row, false, err
	}

	row, err = p.reset(row)
	if err != nil {
		return row, false, err
	}
	return row, true, nil
}

// 提前填写或提交未来的周期是正常操作，所以早于窗口开始只是必要条件，
// 还要看历史记录：archived 表示该 key 已经有正式提交记录

// statusIsStale 已提交标记早于本窗口，且没有对应的提交记录，说明是遗留的标记
func statusIsStale(status *domain.SubmissionStatus, cycleStart time.Time, archived bool) bool {
	if !status.IsSubmitted || archived {
		return false
	}
	return status.SubmittedAt == nil || status.SubmittedAt.Before(cycleStart)
}

// draftIsStale 草稿早于本窗口创建，且该 key 已经归档，说明草稿属于已经结束的填写
func draftIsStale(draft *domain.DraftShiftRequest, cycleStart time.Time, archived bool) bool {
	return archived && draft.CreatedAt.Before(cycleStart)
}
