package planning

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/temmie0232/ShiftManager/internal/domain"
)

// memoryStore 是 Store 的内存实现，WithTx 失败时整体回滚到事务开始前的快照
type memoryStore struct {
	mu sync.Mutex

	employees map[int64]bool
	statuses  map[domain.ShiftKey]*domain.SubmissionStatus
	drafts    map[domain.ShiftKey]*domain.DraftShiftRequest
	requests  []*domain.ShiftRequest
	nextID    int64

	// failOn 指定某个方法返回的错误，用于测试事务回滚
	failOn map[string]error
}

func newMemoryStore(employeeIDs ...int64) *memoryStore {
	s := &memoryStore{
		employees: map[int64]bool{},
		statuses:  map[domain.ShiftKey]*domain.SubmissionStatus{},
		drafts:    map[domain.ShiftKey]*domain.DraftShiftRequest{},
		failOn:    map[string]error{},
	}
	for _, id := range employeeIDs {
		s.employees[id] = true
	}
	return s
}

type memorySnapshot struct {
	statuses map[domain.ShiftKey]*domain.SubmissionStatus
	drafts   map[domain.ShiftKey]*domain.DraftShiftRequest
	requests []*domain.ShiftRequest
	nextID   int64
}

func (s *memoryStore) snapshot() memorySnapshot {
	snap := memorySnapshot{
		statuses: map[domain.ShiftKey]*domain.SubmissionStatus{},
		drafts:   map[domain.ShiftKey]*domain.DraftShiftRequest{},
		requests: make([]*domain.ShiftRequest, 0, len(s.requests)),
		nextID:   s.nextID,
	}
	for k, v := range s.statuses {
		snap.statuses[k] = copyStatus(v)
	}
	for k, v := range s.drafts {
		snap.drafts[k] = copyDraft(v)
	}
	for _, r := range s.requests {
		snap.requests = append(snap.requests, copyRequest(r))
	}
	return snap
}

func (s *memoryStore) restore(snap memorySnapshot) {
	s.statuses = snap.statuses
	s.drafts = snap.drafts
	s.requests = snap.requests
	s.nextID = snap.nextID
}

func (s *memoryStore) WithTx(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	snap := s.snapshot()
	if err := fn(&memoryTx{s: s}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *memoryStore) GetSubmissionStatus(ctx context.Context, key domain.ShiftKey) (*domain.SubmissionStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	status, ok := s.statuses[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyStatus(status), nil
}

func (s *memoryStore) ListShiftRequests(ctx context.Context, employeeID int64, filter domain.HistoryFilter) ([]*domain.ShiftRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*domain.ShiftRequest
	for _, r := range s.requests {
		if r.EmployeeID != employeeID {
			continue
		}
		if filter.Year != nil && r.Year != *filter.Year {
			continue
		}
		if filter.Month != nil && r.Month != *filter.Month {
			continue
		}
		out = append(out, copyRequest(r))
	}
	slices.SortFunc(out, func(a, b *domain.ShiftRequest) int {
		if c := cmp.Compare(b.Year, a.Year); c != 0 {
			return c
		}
		return cmp.Compare(b.Month, a.Month)
	})
	return out, nil
}

func (s *memoryStore) draftCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.drafts)
}

func (s *memoryStore) requestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func (s *memoryStore) id() int64 {
	s.nextID++
	return s.nextID
}

type memoryTx struct {
	s *memoryStore
}

func (tx *memoryTx) fail(method string) error {
	return tx.s.failOn[method]
}

func (tx *memoryTx) EmployeeExists(ctx context.Context, employeeID int64) (bool, error) {
	return tx.s.employees[employeeID], nil
}

func (tx *memoryTx) LockSubmissionStatus(ctx context.Context, key domain.ShiftKey) (*domain.SubmissionStatus, error) {
	status, ok := tx.s.statuses[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyStatus(status), nil
}

func (tx *memoryTx) InsertSubmissionStatus(ctx context.Context, key domain.ShiftKey, createdAt time.Time) (*domain.SubmissionStatus, error) {
	if existing, ok := tx.s.statuses[key]; ok {
		return copyStatus(existing), nil
	}
	status := &domain.SubmissionStatus{
		EmployeeID: key.EmployeeID,
		Year:       key.Period.Year,
		Month:      key.Period.Month,
		CreatedAt:  createdAt,
	}
	tx.s.statuses[key] = status
	return copyStatus(status), nil
}

func (tx *memoryTx) UpdateSubmissionStatus(ctx context.Context, status *domain.SubmissionStatus) error {
	if err := tx.fail("UpdateSubmissionStatus"); err != nil {
		return err
	}
	key := domain.ShiftKey{EmployeeID: status.EmployeeID, Period: domain.Period{Year: status.Year, Month: status.Month}}
	if _, ok := tx.s.statuses[key]; !ok {
		return domain.ErrNotFound
	}
	tx.s.statuses[key] = copyStatus(status)
	return nil
}

func (tx *memoryTx) GetDraft(ctx context.Context, key domain.ShiftKey) (*domain.DraftShiftRequest, error) {
	draft, ok := tx.s.drafts[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyDraft(draft), nil
}

func (tx *memoryTx) InsertDraft(ctx context.Context, draft *domain.DraftShiftRequest) error {
	key := domain.ShiftKey{EmployeeID: draft.EmployeeID, Period: draft.Period()}
	if _, ok := tx.s.drafts[key]; ok {
		return domain.ErrConflict
	}
	draft.ID = tx.s.id()
	tx.s.drafts[key] = copyDraft(draft)
	return nil
}

func (tx *memoryTx) UpdateDraftPreferences(ctx context.Context, draft *domain.DraftShiftRequest) error {
	stored, err := tx.draftByID(draft.ID)
	if err != nil {
		return err
	}
	stored.Preferences = copyPreferences(draft.Preferences)
	stored.UpdatedAt = draft.UpdatedAt
	return nil
}

func (tx *memoryTx) ReplaceDraftDetails(ctx context.Context, draft *domain.DraftShiftRequest) error {
	if err := tx.fail("ReplaceDraftDetails"); err != nil {
		return err
	}
	stored, err := tx.draftByID(draft.ID)
	if err != nil {
		return err
	}
	stored.Details = slices.Clone(draft.Details)
	stored.UpdatedAt = draft.UpdatedAt
	return nil
}

func (tx *memoryTx) DeleteDraft(ctx context.Context, draftID int64) error {
	if err := tx.fail("DeleteDraft"); err != nil {
		return err
	}
	for key, d := range tx.s.drafts {
		if d.ID == draftID {
			delete(tx.s.drafts, key)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (tx *memoryTx) GetLatestShiftRequest(ctx context.Context, employeeID int64) (*domain.ShiftRequest, error) {
	var latest *domain.ShiftRequest
	for _, r := range tx.s.requests {
		if r.EmployeeID != employeeID {
			continue
		}
		if latest == nil || r.Year > latest.Year || (r.Year == latest.Year && r.Month > latest.Month) {
			latest = r
		}
	}
	if latest == nil {
		return nil, domain.ErrNotFound
	}
	return copyRequest(latest), nil
}

func (tx *memoryTx) ShiftRequestExists(ctx context.Context, key domain.ShiftKey) (bool, error) {
	if err := tx.fail("ShiftRequestExists"); err != nil {
		return false, err
	}
	for _, r := range tx.s.requests {
		if r.EmployeeID == key.EmployeeID && r.Year == key.Period.Year && r.Month == key.Period.Month {
			return true, nil
		}
	}
	return false, nil
}

func (tx *memoryTx) InsertShiftRequest(ctx context.Context, request *domain.ShiftRequest) error {
	if err := tx.fail("InsertShiftRequest"); err != nil {
		return err
	}
	for _, r := range tx.s.requests {
		if r.EmployeeID == request.EmployeeID && r.Year == request.Year && r.Month == request.Month {
			return domain.ErrConflict
		}
	}
	request.ID = tx.s.id()
	tx.s.requests = append(tx.s.requests, copyRequest(request))
	return nil
}

func (tx *memoryTx) draftByID(id int64) (*domain.DraftShiftRequest, error) {
	for _, d := range tx.s.drafts {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, domain.ErrNotFound
}

func copyStatus(s *domain.SubmissionStatus) *domain.SubmissionStatus {
	cp := *s
	if s.SubmittedAt != nil {
		t := *s.SubmittedAt
		cp.SubmittedAt = &t
	}
	return &cp
}

func copyPreferences(p domain.Preferences) domain.Preferences {
	clone := func(v *int32) *int32 {
		if v == nil {
			return nil
		}
		c := *v
		return &c
	}
	return domain.Preferences{
		MinHours:       clone(p.MinHours),
		MaxHours:       clone(p.MaxHours),
		MinDaysPerWeek: clone(p.MinDaysPerWeek),
		MaxDaysPerWeek: clone(p.MaxDaysPerWeek),
	}
}

func copyDraft(d *domain.DraftShiftRequest) *domain.DraftShiftRequest {
	cp := *d
	cp.Preferences = copyPreferences(d.Preferences)
	cp.Details = slices.Clone(d.Details)
	return &cp
}

func copyRequest(r *domain.ShiftRequest) *domain.ShiftRequest {
	cp := *r
	cp.Details = slices.Clone(r.Details)
	return &cp
}

// memoryLocker 模拟分布式锁，held 中的键视为已被其他进程持有
type memoryLocker struct {
	mu   sync.Mutex
	held map[string]bool
	err  error
}

func newMemoryLocker() *memoryLocker {
	return &memoryLocker{held: map[string]bool{}}
}

func (l *memoryLocker) Acquire(ctx context.Context, key string) (func(), bool, error) {
	if l.err != nil {
		return nil, false, l.err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.held[key] {
		return nil, false, nil
	}
	l.held[key] = true

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, key)
	}, true, nil
}
