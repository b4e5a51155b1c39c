package planning

import (
	"context"
	"time"

	"github.com/temmie0232/ShiftManager/internal/domain"
)

// Store 是状态机依赖的持久化接口，读操作不加锁，写操作都在 WithTx 中完成
type Store interface {
	WithTx(ctx context.Context, fn func(tx Tx) error) error
	GetSubmissionStatus(ctx context.Context, key domain.ShiftKey) (*domain.SubmissionStatus, error)
	ListShiftRequests(ctx context.Context, employeeID int64, filter domain.HistoryFilter) ([]*domain.ShiftRequest, error)
}

// Tx 中所有“不存在”的情况都返回 domain.ErrNotFound
type Tx interface {
	EmployeeExists(ctx context.Context, employeeID int64) (bool, error)

	// LockSubmissionStatus 读取并锁定状态行，同一 (员工, 年, 月) 的写操作由此串行化
	LockSubmissionStatus(ctx context.Context, key domain.ShiftKey) (*domain.SubmissionStatus, error)
	// InsertSubmissionStatus 插入未提交的状态行，已存在时返回现有行
	InsertSubmissionStatus(ctx context.Context, key domain.ShiftKey, createdAt time.Time) (*domain.SubmissionStatus, error)
	UpdateSubmissionStatus(ctx context.Context, status *domain.SubmissionStatus) error

	GetDraft(ctx context.Context, key domain.ShiftKey) (*domain.DraftShiftRequest, error)
	InsertDraft(ctx context.Context, draft *domain.DraftShiftRequest) error
	UpdateDraftPreferences(ctx context.Context, draft *domain.DraftShiftRequest) error
	// ReplaceDraftDetails 删除草稿的全部条目后写入 draft.Details
	ReplaceDraftDetails(ctx context.Context, draft *domain.DraftShiftRequest) error
	DeleteDraft(ctx context.Context, draftID int64) error

	GetLatestShiftRequest(ctx context.Context, employeeID int64) (*domain.ShiftRequest, error)
	ShiftRequestExists(ctx context.Context, key domain.ShiftKey) (bool, error)
	InsertShiftRequest(ctx context.Context, request *domain.ShiftRequest) error
}

// Locker 是提交时使用的短期分布式锁
type Locker interface {
	// Acquire 在锁已被占用时返回 acquired=false
	Acquire(ctx context.Context, key string) (release func(), acquired bool, err error)
}
