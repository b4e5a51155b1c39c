package planning

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/temmie0232/ShiftManager/internal/domain"
)

// Service 实现每月班次填写的状态机：提交状态、草稿、提交与历史
type Service struct {
	store  Store
	clock  *Clock
	locker Locker
	logger *slog.Logger
}

// NewService 中 locker 可以为 nil，此时提交只依赖数据库的行锁和唯一约束
func NewService(store Store, clock *Clock, locker Locker, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  store,
		clock:  clock,
		locker: locker,
		logger: logger,
	}
}

func (s *Service) Clock() *Clock {
	return s.clock
}

// SubmitOverride 提交时显式给出的内容，非 nil 的部分覆盖草稿中的值
type SubmitOverride struct {
	Preferences *domain.Preferences
	Details     []domain.ShiftDetail
}

func (s *Service) GetOrCreateStatus(ctx context.Context, key domain.ShiftKey) (*domain.SubmissionStatus, error) {
	now := s.clock.Now()

	var status *domain.SubmissionStatus
	err := s.store.WithTx(ctx, func(tx Tx) error {
		if err := ensureEmployee(ctx, tx, key.EmployeeID); err != nil {
			return err
		}

		var err error
		status, err = s.resolveStatus(ctx, tx, key, now)
		return err
	})
	if err != nil {
		return nil, wrapErr("获取提交状态", err)
	}

	return status, nil
}

// IsFinalized 只读，不会创建状态行
func (s *Service) IsFinalized(ctx context.Context, key domain.ShiftKey) (bool, error) {
	status, err := s.store.GetSubmissionStatus(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, wrapErr("查询提交状态", err)
	}

	now := s.clock.Now()
	if s.clock.IsCurrent(key.Period, now) && statusIsStale(status, s.clock.CycleStart(now), false) {
		archived, err := s.store.ListShiftRequests(ctx, key.EmployeeID, domain.HistoryFilter{
			Year:  &key.Period.Year,
			Month: &key.Period.Month,
		})
		if err != nil {
			return false, wrapErr("查询提交状态", err)
		}
		if len(archived) == 0 {
			return false, nil
		}
	}

	return status.IsSubmitted, nil
}

func (s *Service) GetOrCreateDraft(ctx context.Context, key domain.ShiftKey) (*domain.DraftShiftRequest, error) {
	now := s.clock.Now()

	var draft *domain.DraftShiftRequest
	err := s.store.WithTx(ctx, func(tx Tx) error {
		if err := ensureEmployee(ctx, tx, key.EmployeeID); err != nil {
			return err
		}
		if _, err := s.resolveStatus(ctx, tx, key, now); err != nil {
			return err
		}

		var err error
		draft, err = s.resolveDraft(ctx, tx, key, now)
		return err
	})
	if err != nil {
		return nil, wrapErr("获取草稿", err)
	}

	return draft, nil
}

func (s *Service) UpdateDraft(ctx context.Context, key domain.ShiftKey, patch domain.Preferences) (*domain.DraftShiftRequest, error) {
	if err := validatePreferencePatch(patch); err != nil {
		return nil, err
	}

	now := s.clock.Now()

	var draft *domain.DraftShiftRequest
	err := s.store.WithTx(ctx, func(tx Tx) error {
		var err error
		draft, err = s.openDraft(ctx, tx, key, now)
		if err != nil {
			return err
		}

		applyPreferences(&draft.Preferences, patch)
		draft.UpdatedAt = now
		return tx.UpdateDraftPreferences(ctx, draft)
	})
	if err != nil {
		return nil, wrapErr("更新草稿", err)
	}

	return draft, nil
}

// ReplaceDraftDetails 用 entries 整体替换草稿条目，未出现的日期会被删除
func (s *Service) ReplaceDraftDetails(ctx context.Context, key domain.ShiftKey, entries []domain.ShiftDetail) ([]domain.ShiftDetail, error) {
	details, err := normalizeDetails(key.Period, entries)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()

	err = s.store.WithTx(ctx, func(tx Tx) error {
		draft, err := s.openDraft(ctx, tx, key, now)
		if err != nil {
			return err
		}

		draft.Details = details
		draft.UpdatedAt = now
		return tx.ReplaceDraftDetails(ctx, draft)
	})
	if err != nil {
		return nil, wrapErr("替换草稿条目", err)
	}

	return details, nil
}

// Submit 将草稿转为正式记录，整个过程在一个事务中完成
func (s *Service) Submit(ctx context.Context, key domain.ShiftKey, override *SubmitOverride) (*domain.ShiftRequest, error) {
	var overrideDetails []domain.ShiftDetail
	if override != nil && override.Details != nil {
		var err error
		overrideDetails, err = normalizeDetails(key.Period, override.Details)
		if err != nil {
			return nil, err
		}
	}

	if s.locker != nil {
		release, acquired, err := s.locker.Acquire(ctx, "submit:"+key.String())
		switch {
		case err != nil:
			// 锁服务不可用时退回到数据库的行锁
			s.logger.Warn("获取提交锁失败", slog.String("key", key.String()), slog.String("error", err.Error()))
		case !acquired:
			return nil, domain.ErrConflict
		default:
			defer release()
		}
	}

	now := s.clock.Now()

	var request *domain.ShiftRequest
	err := s.store.WithTx(ctx, func(tx Tx) error {
		if err := ensureEmployee(ctx, tx, key.EmployeeID); err != nil {
			return err
		}

		status, err := s.resolveStatus(ctx, tx, key, now)
		if err != nil {
			return err
		}
		if status.IsSubmitted {
			return domain.ErrAlreadySubmitted
		}

		draft, err := tx.GetDraft(ctx, key)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNoDraft
			}
			return err
		}
		if s.clock.IsCurrent(key.Period, now) {
			stale, err := s.draftStale(ctx, tx, key)(draft, s.clock.CycleStart(now))
			if err != nil {
				return err
			}
			if stale {
				return domain.ErrNoDraft
			}
		}

		prefs := draft.Preferences
		details := draft.Details
		if override != nil {
			if override.Preferences != nil {
				applyPreferences(&prefs, *override.Preferences)
			}
			if override.Details != nil {
				details = overrideDetails
			}
		}

		request, err = buildShiftRequest(key, prefs, details, now)
		if err != nil {
			return err
		}
		if err := tx.InsertShiftRequest(ctx, request); err != nil {
			return err
		}

		status.IsSubmitted = true
		status.SubmittedAt = &now
		if err := tx.UpdateSubmissionStatus(ctx, status); err != nil {
			return err
		}

		return tx.DeleteDraft(ctx, draft.ID)
	})
	if err != nil {
		return nil, wrapErr("提交班次", err)
	}

	s.logger.Info("班次已提交",
		slog.Int64("employeeID", key.EmployeeID),
		slog.String("period", key.Period.String()),
		slog.Int("details", len(request.Details)),
	)

	return request, nil
}

func (s *Service) ListHistory(ctx context.Context, employeeID int64, filter domain.HistoryFilter) ([]*domain.ShiftRequest, error) {
	if filter.Month != nil && (*filter.Month < 1 || *filter.Month > 12) {
		return nil, domain.NewValidationError("month", "月份必须在 1 到 12 之间")
	}

	requests, err := s.store.ListShiftRequests(ctx, employeeID, filter)
	if err != nil {
		return nil, wrapErr("查询历史记录", err)
	}
	if requests == nil {
		requests = []*domain.ShiftRequest{}
	}

	return requests, nil
}

// openDraft 锁定状态行，确认未提交后返回可写的草稿
func (s *Service) openDraft(ctx context.Context, tx Tx, key domain.ShiftKey, now time.Time) (*domain.DraftShiftRequest, error) {
	if err := ensureEmployee(ctx, tx, key.EmployeeID); err != nil {
		return nil, err
	}

	status, err := s.resolveStatus(ctx, tx, key, now)
	if err != nil {
		return nil, err
	}
	if status.IsSubmitted {
		return nil, domain.ErrAlreadySubmitted
	}

	return s.resolveDraft(ctx, tx, key, now)
}

func (s *Service) resolveStatus(ctx context.Context, tx Tx, key domain.ShiftKey, now time.Time) (*domain.SubmissionStatus, error) {
	status, reset, err := upsertWithPolicy(s.clock, now, key, upsertPolicy[*domain.SubmissionStatus]{
		load: func() (*domain.SubmissionStatus, error) {
			return tx.LockSubmissionStatus(ctx, key)
		},
		create: func() (*domain.SubmissionStatus, error) {
			return tx.InsertSubmissionStatus(ctx, key, now)
		},
		stale: func(status *domain.SubmissionStatus, cycleStart time.Time) (bool, error) {
			if !statusIsStale(status, cycleStart, false) {
				return false, nil
			}
			archived, err := tx.ShiftRequestExists(ctx, key)
			if err != nil {
				return false, err
			}
			return statusIsStale(status, cycleStart, archived), nil
		},
		reset: func(status *domain.SubmissionStatus) (*domain.SubmissionStatus, error) {
			status.IsSubmitted = false
			status.SubmittedAt = nil
			return status, tx.UpdateSubmissionStatus(ctx, status)
		},
	})
	if err != nil {
		return nil, err
	}

	if reset {
		s.logger.Info("提交状态已重置", slog.Int64("employeeID", key.EmployeeID), slog.String("period", key.Period.String()))
	}
	return status, nil
}

func (s *Service) resolveDraft(ctx context.Context, tx Tx, key domain.ShiftKey, now time.Time) (*domain.DraftShiftRequest, error) {
	draft, reset, err := upsertWithPolicy(s.clock, now, key, upsertPolicy[*domain.DraftShiftRequest]{
		load: func() (*domain.DraftShiftRequest, error) {
			return tx.GetDraft(ctx, key)
		},
		create: func() (*domain.DraftShiftRequest, error) {
			return s.createDraft(ctx, tx, key, now)
		},
		stale: s.draftStale(ctx, tx, key),
		reset: func(draft *domain.DraftShiftRequest) (*domain.DraftShiftRequest, error) {
			if err := tx.DeleteDraft(ctx, draft.ID); err != nil {
				return nil, err
			}
			return s.createDraft(ctx, tx, key, now)
		},
	})
	if err != nil {
		return nil, err
	}

	if reset {
		s.logger.Info("草稿已重建", slog.Int64("employeeID", key.EmployeeID), slog.String("period", key.Period.String()))
	}
	return draft, nil
}

// draftStale 只有草稿早于本窗口时才查询是否已归档
func (s *Service) draftStale(ctx context.Context, tx Tx, key domain.ShiftKey) func(*domain.DraftShiftRequest, time.Time) (bool, error) {
	return func(draft *domain.DraftShiftRequest, cycleStart time.Time) (bool, error) {
		if !draftIsStale(draft, cycleStart, true) {
			return false, nil
		}
		archived, err := tx.ShiftRequestExists(ctx, key)
		if err != nil {
			return false, err
		}
		return draftIsStale(draft, cycleStart, archived), nil
	}
}

// createDraft 新草稿沿用员工最近一次提交的数值偏好
func (s *Service) createDraft(ctx context.Context, tx Tx, key domain.ShiftKey, now time.Time) (*domain.DraftShiftRequest, error) {
	draft := &domain.DraftShiftRequest{
		EmployeeID: key.EmployeeID,
		Year:       key.Period.Year,
		Month:      key.Period.Month,
		Details:    []domain.ShiftDetail{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	latest, err := tx.GetLatestShiftRequest(ctx, key.EmployeeID)
	switch {
	case err == nil:
		draft.MinHours = int32Ptr(latest.MinHours)
		draft.MaxHours = int32Ptr(latest.MaxHours)
		draft.MinDaysPerWeek = int32Ptr(latest.MinDaysPerWeek)
		draft.MaxDaysPerWeek = int32Ptr(latest.MaxDaysPerWeek)
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	if err := tx.InsertDraft(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

func ensureEmployee(ctx context.Context, tx Tx, employeeID int64) error {
	exists, err := tx.EmployeeExists(ctx, employeeID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrNotFound
	}
	return nil
}

// wrapErr 保留业务错误，其余错误包装为 StorageError
func wrapErr(op string, err error) error {
	for _, target := range []error{
		domain.ErrNotFound,
		domain.ErrAlreadySubmitted,
		domain.ErrNoDraft,
		domain.ErrValidation,
		domain.ErrConflict,
		domain.ErrStorage,
	} {
		if errors.Is(err, target) {
			return err
		}
	}
	return &domain.StorageError{Op: op, Err: err}
}

func int32Ptr(v int32) *int32 {
	return &v
}
