package service

import (
	"context"
	"encoding/json"
	"path"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-proctor-api/internal/dto"
	"github.com/noah-isme/exam-proctor-api/internal/models"
	"github.com/noah-isme/exam-proctor-api/internal/optimizer"
	"github.com/noah-isme/exam-proctor-api/pkg/config"
	appErrors "github.com/noah-isme/exam-proctor-api/pkg/errors"
)

type staffReaderStub struct {
	staff []models.Staff
}

func (s *staffReaderStub) ListAll(ctx context.Context) ([]models.Staff, error) {
	return s.staff, nil
}

func (s *staffReaderStub) CountOptedOutByGrade(ctx context.Context) (map[string]int, error) {
	out := map[string]int{}
	for _, member := range s.staff {
		if !member.Participates {
			out[member.Grade]++
		}
	}
	return out, nil
}

type gradeReaderStub struct {
	grades []models.Grade
}

func (s *gradeReaderStub) List(ctx context.Context) ([]models.Grade, error) {
	return s.grades, nil
}

type scheduleReaderStub struct {
	records  []models.RoomRecord
	calendar []models.CalendarEntry
}

func (s *scheduleReaderStub) ListRecords(ctx context.Context, sessionID string) ([]models.RoomRecord, error) {
	return s.records, nil
}

func (s *scheduleReaderStub) ListCalendar(ctx context.Context, sessionID string) ([]models.CalendarEntry, error) {
	return s.calendar, nil
}

type wishReaderStub struct {
	wishes []models.Wish
}

func (s *wishReaderStub) ListBySession(ctx context.Context, sessionID string) ([]models.Wish, error) {
	return s.wishes, nil
}

type sessionStoreStub struct {
	session *models.Session
	runs    []*models.SolveRun
	updated []*models.SolveRun
}

func (s *sessionStoreStub) GetByID(ctx context.Context, id string) (*models.Session, error) {
	if s.session == nil || s.session.ID != id {
		return nil, appErrors.ErrNotFound
	}
	return s.session, nil
}

func (s *sessionStoreStub) CreateRun(ctx context.Context, run *models.SolveRun) error {
	copied := *run
	s.runs = append(s.runs, &copied)
	return nil
}

func (s *sessionStoreStub) UpdateRun(ctx context.Context, run *models.SolveRun) error {
	copied := *run
	s.updated = append(s.updated, &copied)
	return nil
}

func (s *sessionStoreStub) LatestRun(ctx context.Context, sessionID string) (*models.SolveRun, error) {
	if len(s.updated) > 0 {
		return s.updated[len(s.updated)-1], nil
	}
	if len(s.runs) > 0 {
		return s.runs[len(s.runs)-1], nil
	}
	return nil, appErrors.ErrNotFound
}

type assignmentStoreStub struct {
	saved   []models.Assignment
	deleted int
}

func (s *assignmentStoreStub) ReplaceForSession(ctx context.Context, sessionID string, assignments []models.Assignment) error {
	s.saved = assignments
	return nil
}

func (s *assignmentStoreStub) DeleteBySession(ctx context.Context, sessionID string) error {
	s.deleted++
	s.saved = nil
	return nil
}

type ledgerStoreStub struct {
	saved   []models.LedgerEntry
	prior   map[string]int
	deleted int
}

func (s *ledgerStoreStub) ReplaceForSession(ctx context.Context, sessionID string, entries []models.LedgerEntry) error {
	s.saved = entries
	return nil
}

func (s *ledgerStoreStub) DeleteBySession(ctx context.Context, sessionID string) error {
	s.deleted++
	s.saved = nil
	return nil
}

func (s *ledgerStoreStub) PriorAdjustedQuotas(ctx context.Context, sessionID string) (map[string]int, error) {
	if s.prior == nil {
		return map[string]int{}, nil
	}
	return s.prior, nil
}

func (s *ledgerStoreStub) ListBySession(ctx context.Context, sessionID string) ([]models.LedgerEntry, error) {
	return s.saved, nil
}

type cacheStub struct {
	values map[string][]byte
}

func (s *cacheStub) Get(ctx context.Context, key string, dest interface{}) error {
	if s.values == nil {
		return appErrors.ErrCacheMiss
	}
	raw, ok := s.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (s *cacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if s.values == nil {
		s.values = map[string][]byte{}
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.values[key] = raw
	return nil
}

func (s *cacheStub) Delete(ctx context.Context, key string) error {
	delete(s.values, key)
	return nil
}

func (s *cacheStub) DeleteByPattern(ctx context.Context, pattern string) error {
	for key := range s.values {
		if ok, _ := path.Match(pattern, key); ok {
			delete(s.values, key)
		}
	}
	return nil
}

type metricsStub struct {
	observed []string
}

func (s *metricsStub) ObserveSolve(status string, duration time.Duration) {
	s.observed = append(s.observed, status)
}

type optimizeFixture struct {
	svc         *OptimizeService
	sessions    *sessionStoreStub
	assignments *assignmentStoreStub
	ledger      *ledgerStoreStub
	wishes      *wishReaderStub
	cache       *cacheStub
	metrics     *metricsStub
}

func newOptimizeFixture(t *testing.T) *optimizeFixture {
	t.Helper()

	examDate := time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)
	owner := "m1"
	f := &optimizeFixture{
		sessions: &sessionStoreStub{session: &models.Session{
			ID:        "session-1",
			Name:      "June 2026",
			StartDate: examDate,
			EndDate:   examDate,
		}},
		assignments: &assignmentStoreStub{},
		ledger:      &ledgerStoreStub{},
		wishes:      &wishReaderStub{},
		cache:       &cacheStub{},
		metrics:     &metricsStub{},
	}

	staff := &staffReaderStub{staff: []models.Staff{
		{ID: "m1", FullName: "Amina Bazi", Grade: "MA", Participates: true},
		{ID: "m2", FullName: "Karim Hadj", Grade: "MA", Participates: true},
		{ID: "p1", FullName: "Lina Saad", Grade: "PR", Participates: true},
		{ID: "p2", FullName: "Omar Tlili", Grade: "PR", Participates: true},
	}}
	grades := &gradeReaderStub{grades: []models.Grade{
		{ID: "MA", Name: "Assistant", Ceiling: 5},
		{ID: "PR", Name: "Professor", Ceiling: 5},
	}}
	schedule := &scheduleReaderStub{records: []models.RoomRecord{
		{RoomName: "A", ExamDate: examDate, StartTime: "08:30:00", EndTime: "10:30:00", OwnerID: &owner},
		{RoomName: "B", ExamDate: examDate, StartTime: "08:30:00", EndTime: "10:30:00"},
	}}

	f.svc = NewOptimizeService(
		staff, grades, schedule, f.wishes,
		f.sessions, f.assignments, f.ledger, f.cache, f.metrics,
		nil, nil,
		config.SolverConfig{TimeBudget: 5 * time.Second, Workers: 2, StatusTTL: time.Minute},
	)
	return f
}

func solveRequestNoReserves() dto.SolveRequest {
	zero := 0
	return dto.SolveRequest{Save: true, ReservesPerSlot: &zero}
}

func TestOptimizeServiceSolveSavesPlan(t *testing.T) {
	f := newOptimizeFixture(t)

	status, err := f.svc.Solve(context.Background(), "session-1", solveRequestNoReserves())
	require.NoError(t, err)
	require.NotEqual(t, optimizer.StatusInfeasible, status.Status)
	assert.True(t, status.Saved)
	assert.Equal(t, 4, status.Assignments)
	assert.NotNil(t, status.Objective)

	require.Len(t, f.assignments.saved, 4)
	for _, a := range f.assignments.saved {
		assert.Equal(t, status.RunID, a.RunID)
		if a.StaffID == "m1" {
			assert.NotEqual(t, "A", a.RoomName, "owners never supervise their own room")
		}
	}
	require.Len(t, f.ledger.saved, 4)
	for _, entry := range f.ledger.saved {
		assert.Equal(t, 1, entry.Realized)
	}

	require.Len(t, f.metrics.observed, 1)
	require.Len(t, f.sessions.updated, 1)
	assert.True(t, f.sessions.updated[0].Saved)
	assert.Contains(t, f.cache.values, solveStatusKeyPrefix+"session-1")
	assert.Contains(t, f.cache.values, solveStatsKeyPrefix+"session-1")
}

func TestOptimizeServiceSolveWithoutSaveLeavesStoreUntouched(t *testing.T) {
	f := newOptimizeFixture(t)
	req := solveRequestNoReserves()
	req.Save = false

	status, err := f.svc.Solve(context.Background(), "session-1", req)
	require.NoError(t, err)
	assert.False(t, status.Saved)
	assert.Empty(t, f.assignments.saved)
	assert.Empty(t, f.ledger.saved)
}

func TestOptimizeServiceRejectsConcurrentSolves(t *testing.T) {
	f := newOptimizeFixture(t)
	require.True(t, f.svc.tryAcquire("session-1"))
	defer f.svc.release("session-1")

	_, err := f.svc.Solve(context.Background(), "session-1", solveRequestNoReserves())
	assert.ErrorIs(t, err, appErrors.ErrSolveInProgress)
}

func TestOptimizeServiceSolveUnknownSession(t *testing.T) {
	f := newOptimizeFixture(t)
	_, err := f.svc.Solve(context.Background(), "missing", solveRequestNoReserves())
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestOptimizeServiceStatusFallsBackToStore(t *testing.T) {
	f := newOptimizeFixture(t)
	_, err := f.svc.Solve(context.Background(), "session-1", solveRequestNoReserves())
	require.NoError(t, err)

	f.cache.values = nil // cold cache

	status, err := f.svc.Status(context.Background(), "session-1")
	require.NoError(t, err)
	assert.NotEqual(t, models.RunStatusRunning, status.Status)
	assert.True(t, status.Saved)
}

func TestOptimizeServiceStatsMissIsNotFound(t *testing.T) {
	f := newOptimizeFixture(t)
	_, err := f.svc.Stats(context.Background(), "session-1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestOptimizeServiceStatsAfterSolve(t *testing.T) {
	f := newOptimizeFixture(t)
	_, err := f.svc.Solve(context.Background(), "session-1", solveRequestNoReserves())
	require.NoError(t, err)

	stats, err := f.svc.Stats(context.Background(), "session-1")
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Demand)
	assert.Equal(t, 1, stats.SlotCount)
	assert.Equal(t, map[string]int{"MA": 1, "PR": 1}, stats.CountsByGrade)

	assert.Equal(t, map[int]int{1: 4}, stats.AssignmentsByDay)
	assert.Equal(t, map[string]int{optimizer.RolePrimary: 4}, stats.AssignmentsByRole)
	assert.Equal(t, map[string]int{"MA": 2, "PR": 2}, stats.AssignmentsByGrade)
	assert.Equal(t, 1, stats.AssignmentsByStaff["m1"])
	assert.Zero(t, stats.WishViolations)
}

func TestOptimizeServiceStatsCountWishViolations(t *testing.T) {
	f := newOptimizeFixture(t)
	// One slot covers the whole session, so m1's wish to avoid it cannot
	// be honoured and must surface as a violation.
	f.wishes.wishes = []models.Wish{{StaffID: "m1", DayIndex: 1, Period: "S1"}}

	_, err := f.svc.Solve(context.Background(), "session-1", solveRequestNoReserves())
	require.NoError(t, err)

	stats, err := f.svc.Stats(context.Background(), "session-1")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.WishCount)
	assert.Equal(t, 1, stats.WishViolations)
}

func TestOptimizeServiceWorkloadJoinsStaffNames(t *testing.T) {
	f := newOptimizeFixture(t)
	_, err := f.svc.Solve(context.Background(), "session-1", solveRequestNoReserves())
	require.NoError(t, err)

	workload, err := f.svc.Workload(context.Background(), "session-1")
	require.NoError(t, err)
	require.Len(t, workload.Entries, 4)
	assert.Equal(t, 4, workload.TotalRealized)
	for _, entry := range workload.Entries {
		assert.NotEmpty(t, entry.StaffName)
	}
}

func TestOptimizeServiceClearDropsPlanAndCache(t *testing.T) {
	f := newOptimizeFixture(t)
	_, err := f.svc.Solve(context.Background(), "session-1", solveRequestNoReserves())
	require.NoError(t, err)

	require.NoError(t, f.svc.Clear(context.Background(), "session-1"))
	assert.Equal(t, 1, f.assignments.deleted)
	assert.Equal(t, 1, f.ledger.deleted)
	assert.NotContains(t, f.cache.values, solveStatusKeyPrefix+"session-1")
	assert.NotContains(t, f.cache.values, solveStatsKeyPrefix+"session-1")
}

func TestOptimizeServiceValidatesPayload(t *testing.T) {
	f := newOptimizeFixture(t)
	_, err := f.svc.Solve(context.Background(), "session-1", dto.SolveRequest{TimeBudgetSeconds: -4})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}
