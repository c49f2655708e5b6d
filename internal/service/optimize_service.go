package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-proctor-api/internal/dto"
	"github.com/noah-isme/exam-proctor-api/internal/models"
	"github.com/noah-isme/exam-proctor-api/internal/optimizer"
	"github.com/noah-isme/exam-proctor-api/pkg/config"
	appErrors "github.com/noah-isme/exam-proctor-api/pkg/errors"
	"github.com/noah-isme/exam-proctor-api/pkg/jobs"
)

const (
	solveStatusKeyPrefix = "solve:status:"
	solveStatsKeyPrefix  = "solve:stats:"
)

type solveStaffReader interface {
	ListAll(ctx context.Context) ([]models.Staff, error)
	CountOptedOutByGrade(ctx context.Context) (map[string]int, error)
}

type solveGradeReader interface {
	List(ctx context.Context) ([]models.Grade, error)
}

type solveScheduleReader interface {
	ListRecords(ctx context.Context, sessionID string) ([]models.RoomRecord, error)
	ListCalendar(ctx context.Context, sessionID string) ([]models.CalendarEntry, error)
}

type solveWishReader interface {
	ListBySession(ctx context.Context, sessionID string) ([]models.Wish, error)
}

type solveSessionStore interface {
	GetByID(ctx context.Context, id string) (*models.Session, error)
	CreateRun(ctx context.Context, run *models.SolveRun) error
	UpdateRun(ctx context.Context, run *models.SolveRun) error
	LatestRun(ctx context.Context, sessionID string) (*models.SolveRun, error)
}

type solveAssignmentStore interface {
	ReplaceForSession(ctx context.Context, sessionID string, assignments []models.Assignment) error
	DeleteBySession(ctx context.Context, sessionID string) error
}

type solveLedgerStore interface {
	ReplaceForSession(ctx context.Context, sessionID string, entries []models.LedgerEntry) error
	DeleteBySession(ctx context.Context, sessionID string) error
	PriorAdjustedQuotas(ctx context.Context, sessionID string) (map[string]int, error)
	ListBySession(ctx context.Context, sessionID string) ([]models.LedgerEntry, error)
}

type solveCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type solveMetricsRecorder interface {
	ObserveSolve(status string, duration time.Duration)
}

// OptimizeService orchestrates duty assignment runs: it loads session data,
// feeds the optimizer, persists accepted plans and caches run outcomes.
type OptimizeService struct {
	staff       solveStaffReader
	grades      solveGradeReader
	schedule    solveScheduleReader
	wishes      solveWishReader
	sessions    solveSessionStore
	assignments solveAssignmentStore
	ledger      solveLedgerStore
	cache       solveCache
	metrics     solveMetricsRecorder

	engine    *optimizer.Optimizer
	queue     *jobs.Queue
	validator *validator.Validate
	logger    *zap.Logger
	cfg       config.SolverConfig

	mu      sync.Mutex
	running map[string]bool
}

type solveJobPayload struct {
	session *models.Session
	run     *models.SolveRun
	req     dto.SolveRequest
}

// NewOptimizeService wires solve dependencies.
func NewOptimizeService(
	staff solveStaffReader,
	grades solveGradeReader,
	schedule solveScheduleReader,
	wishes solveWishReader,
	sessions solveSessionStore,
	assignments solveAssignmentStore,
	ledger solveLedgerStore,
	cache solveCache,
	metrics solveMetricsRecorder,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg config.SolverConfig,
) *OptimizeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.StatusTTL <= 0 {
		cfg.StatusTTL = time.Hour
	}

	svc := &OptimizeService{
		staff:       staff,
		grades:      grades,
		schedule:    schedule,
		wishes:      wishes,
		sessions:    sessions,
		assignments: assignments,
		ledger:      ledger,
		cache:       cache,
		metrics:     metrics,
		engine:      optimizer.New(logger),
		validator:   validate,
		logger:      logger,
		cfg:         cfg,
		running:     map[string]bool{},
	}
	svc.queue = jobs.NewQueue("solver", svc.handleSolveJob, jobs.QueueConfig{
		Workers:    cfg.QueueWorkers,
		BufferSize: cfg.QueueBuffer,
		MaxRetries: cfg.QueueRetries,
		Logger:     logger,
	})
	return svc
}

// Start launches the background solve workers.
func (s *OptimizeService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the background solve workers.
func (s *OptimizeService) Stop() {
	s.queue.Stop()
}

// Solve runs or queues one optimization for a session. Only one run per
// session may be in flight at a time.
func (s *OptimizeService) Solve(ctx context.Context, sessionID string, req dto.SolveRequest) (*dto.SolveStatusResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid solve payload")
	}

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if !s.tryAcquire(session.ID) {
		return nil, appErrors.ErrSolveInProgress
	}

	run := &models.SolveRun{
		ID:        uuid.NewString(),
		SessionID: session.ID,
		Status:    models.RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}
	if err := s.sessions.CreateRun(ctx, run); err != nil {
		s.release(session.ID)
		return nil, err
	}
	s.cacheStatus(ctx, s.statusFromRun(run, nil))

	if req.Async {
		job := jobs.Job{
			ID:      run.ID,
			Type:    "solve",
			Payload: solveJobPayload{session: session, run: run, req: req},
		}
		if err := s.queue.Enqueue(job); err != nil {
			s.failRun(context.Background(), run, err)
			s.release(session.ID)
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "queue solve run")
		}
		return s.statusFromRun(run, nil), nil
	}

	return s.execute(ctx, session, run, req)
}

// handleSolveJob runs a queued solve. Failures land on the run row, so the
// job itself never retries.
func (s *OptimizeService) handleSolveJob(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(solveJobPayload)
	if !ok {
		s.logger.Error("unexpected solve job payload", zap.String("job_id", job.ID))
		return nil
	}
	if _, err := s.execute(ctx, payload.session, payload.run, payload.req); err != nil {
		s.logger.Error("queued solve failed",
			zap.String("session_id", payload.session.ID),
			zap.String("run_id", payload.run.ID),
			zap.Error(err))
	}
	return nil
}

// execute performs the full solve pipeline for one acquired session.
func (s *OptimizeService) execute(ctx context.Context, session *models.Session, run *models.SolveRun, req dto.SolveRequest) (*dto.SolveStatusResponse, error) {
	defer s.release(session.ID)

	input, err := s.loadInput(ctx, session.ID, req)
	if err != nil {
		s.failRun(ctx, run, err)
		return nil, err
	}

	result, err := s.engine.Run(ctx, *input)
	if err != nil {
		s.failRun(ctx, run, err)
		switch {
		case errors.Is(err, optimizer.ErrEmptyRoster):
			return nil, appErrors.Wrap(err, appErrors.ErrEmptyRoster.Code, appErrors.ErrEmptyRoster.Status, appErrors.ErrEmptyRoster.Message)
		case errors.Is(err, optimizer.ErrNoSlots):
			return nil, appErrors.Wrap(err, appErrors.ErrEmptySchedule.Code, appErrors.ErrEmptySchedule.Status, appErrors.ErrEmptySchedule.Message)
		}
		return nil, err
	}

	now := time.Now().UTC()
	objective := result.Objective
	run.Status = result.Status
	run.Objective = &objective
	run.WallMillis = result.WallTime.Milliseconds()
	run.CompletedAt = &now

	if req.Save && result.Status != optimizer.StatusInfeasible {
		if err := s.persist(ctx, session.ID, run.ID, result); err != nil {
			s.failRun(ctx, run, err)
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "persist solve result")
		}
		run.Saved = true
	}

	if err := s.sessions.UpdateRun(ctx, run); err != nil {
		s.logger.Error("update solve run", zap.String("run_id", run.ID), zap.Error(err))
	}
	if s.metrics != nil {
		s.metrics.ObserveSolve(result.Status, result.WallTime)
	}

	status := s.statusFromRun(run, result)
	s.cacheStatus(ctx, status)
	s.cacheStats(ctx, session.ID, input, result)

	return status, nil
}

// loadInput gathers session data into an optimizer input.
func (s *OptimizeService) loadInput(ctx context.Context, sessionID string, req dto.SolveRequest) (*optimizer.Input, error) {
	staff, err := s.staff.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	grades, err := s.grades.List(ctx)
	if err != nil {
		return nil, err
	}
	records, err := s.schedule.ListRecords(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	calendar, err := s.schedule.ListCalendar(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	wishes, err := s.wishes.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	prior, err := s.ledger.PriorAdjustedQuotas(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	input := &optimizer.Input{PriorAdjusted: prior}

	for _, member := range staff {
		input.Staff = append(input.Staff, optimizer.StaffMember{
			ID:     member.ID,
			Name:   member.FullName,
			Grade:  member.Grade,
			OptsIn: member.Participates,
		})
	}
	for _, grade := range grades {
		input.Grades = append(input.Grades, optimizer.GradeRef{Code: grade.ID, Ceiling: grade.Ceiling})
	}
	for _, rec := range records {
		owner := ""
		if rec.OwnerID != nil {
			owner = *rec.OwnerID
		}
		input.Records = append(input.Records, optimizer.RoomTimeRecord{
			Date:    rec.ExamDate.Format("2006-01-02"),
			Start:   rec.StartTime,
			End:     rec.EndTime,
			Room:    rec.RoomName,
			OwnerID: owner,
		})
	}
	for _, entry := range calendar {
		input.Calendar = append(input.Calendar, optimizer.CalendarDay{
			Date:     entry.Date.Format("2006-01-02"),
			Start:    entry.StartTime,
			DayIndex: entry.DayIndex,
			Period:   entry.Period,
		})
	}
	for _, wish := range wishes {
		input.Wishes = append(input.Wishes, optimizer.Wish{
			StaffID:  wish.StaffID,
			DayIndex: wish.DayIndex,
			Period:   wish.Period,
		})
	}

	input.Slots = optimizer.SlotOptions{
		ReserveCap:    s.cfg.ReserveCap,
		FixedReserves: req.ReservesPerSlot,
	}
	input.Solve = optimizer.SolveOptions{
		TimeBudget: s.cfg.TimeBudget,
		Workers:    s.cfg.Workers,
	}
	if req.TimeBudgetSeconds > 0 {
		input.Solve.TimeBudget = time.Duration(req.TimeBudgetSeconds) * time.Second
	}
	if req.Workers > 0 {
		input.Solve.Workers = req.Workers
	}

	return input, nil
}

// persist stores assignments and the ledger of an accepted plan.
func (s *OptimizeService) persist(ctx context.Context, sessionID, runID string, result *optimizer.Result) error {
	assignments := make([]models.Assignment, 0, len(result.Assignments))
	for _, a := range result.Assignments {
		examDate, err := time.Parse("2006-01-02", a.Date)
		if err != nil {
			return fmt.Errorf("parse exam date %q: %w", a.Date, err)
		}
		assignments = append(assignments, models.Assignment{
			RunID:    runID,
			StaffID:  a.StaffID,
			SlotKey:  a.SlotID,
			RoomName: a.Room,
			Role:     a.Role,
			DayIndex: a.DayIndex,
			Period:   a.Period,
			ExamDate: examDate,
		})
	}
	if err := s.assignments.ReplaceForSession(ctx, sessionID, assignments); err != nil {
		return err
	}

	entries := make([]models.LedgerEntry, 0, len(result.Ledger))
	for _, entry := range result.Ledger {
		entries = append(entries, models.LedgerEntry{
			StaffID:          entry.StaffID,
			Grade:            entry.Grade,
			Realized:         entry.Realized,
			GradeQuota:       entry.GradeQuota,
			MajorityRealized: entry.Majority,
			DeltaGrade:       entry.DeltaGrade,
			DeltaMajority:    entry.DeltaMajority,
			AdjustedQuota:    entry.AdjustedQuota,
			AdjustedMajority: entry.AdjustedMajority,
		})
	}
	return s.ledger.ReplaceForSession(ctx, sessionID, entries)
}

// Status reports the latest run of a session, served from cache when warm.
func (s *OptimizeService) Status(ctx context.Context, sessionID string) (*dto.SolveStatusResponse, error) {
	var cached dto.SolveStatusResponse
	if err := s.cache.Get(ctx, solveStatusKeyPrefix+sessionID, &cached); err == nil {
		return &cached, nil
	} else if !errors.Is(err, appErrors.ErrCacheMiss) {
		s.logger.Warn("solve status cache read failed", zap.Error(err))
	}

	run, err := s.sessions.LatestRun(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.statusFromRun(run, nil), nil
}

// Stats reports solve statistics for a session. Statistics live only in the
// cache; they expire with the status TTL.
func (s *OptimizeService) Stats(ctx context.Context, sessionID string) (*dto.SolveStatsResponse, error) {
	var stats dto.SolveStatsResponse
	if err := s.cache.Get(ctx, solveStatsKeyPrefix+sessionID, &stats); err != nil {
		if errors.Is(err, appErrors.ErrCacheMiss) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no solve statistics available; run a solve first")
		}
		return nil, err
	}
	return &stats, nil
}

// Workload returns the saved workload ledger of a session with staff names
// attached.
func (s *OptimizeService) Workload(ctx context.Context, sessionID string) (*dto.WorkloadResponse, error) {
	entries, err := s.ledger.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	staff, err := s.staff.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(staff))
	for _, member := range staff {
		names[member.ID] = member.FullName
	}

	resp := &dto.WorkloadResponse{SessionID: sessionID, Entries: []dto.WorkloadEntry{}}
	for _, entry := range entries {
		resp.Entries = append(resp.Entries, dto.WorkloadEntry{
			StaffID:          entry.StaffID,
			StaffName:        names[entry.StaffID],
			Grade:            entry.Grade,
			Realized:         entry.Realized,
			GradeQuota:       entry.GradeQuota,
			MajorityRealized: entry.MajorityRealized,
			DeltaGrade:       entry.DeltaGrade,
			DeltaMajority:    entry.DeltaMajority,
			AdjustedQuota:    entry.AdjustedQuota,
			AdjustedMajority: entry.AdjustedMajority,
		})
		resp.TotalRealized += entry.Realized
	}
	return resp, nil
}

// Clear drops saved assignments and the ledger of a session along with any
// cached run outcome.
func (s *OptimizeService) Clear(ctx context.Context, sessionID string) error {
	if _, err := s.sessions.GetByID(ctx, sessionID); err != nil {
		return err
	}
	if err := s.assignments.DeleteBySession(ctx, sessionID); err != nil {
		return err
	}
	if err := s.ledger.DeleteBySession(ctx, sessionID); err != nil {
		return err
	}
	if err := s.cache.DeleteByPattern(ctx, "solve:*:"+sessionID); err != nil {
		s.logger.Warn("clear solve cache", zap.Error(err))
	}
	return nil
}

func (s *OptimizeService) tryAcquire(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running[sessionID] {
		return false
	}
	s.running[sessionID] = true
	return true
}

func (s *OptimizeService) release(sessionID string) {
	s.mu.Lock()
	delete(s.running, sessionID)
	s.mu.Unlock()
}

func (s *OptimizeService) failRun(ctx context.Context, run *models.SolveRun, cause error) {
	now := time.Now().UTC()
	run.Status = models.RunStatusFailed
	run.CompletedAt = &now
	if err := s.sessions.UpdateRun(ctx, run); err != nil {
		s.logger.Error("mark solve run failed", zap.String("run_id", run.ID), zap.Error(err))
	}
	s.cacheStatus(ctx, s.statusFromRun(run, nil))
	// Cached stats describe an earlier run; drop them so they cannot be
	// mistaken for this one.
	if err := s.cache.Delete(ctx, solveStatsKeyPrefix+run.SessionID); err != nil {
		s.logger.Warn("drop stale solve stats", zap.Error(err))
	}
	s.logger.Warn("solve run failed",
		zap.String("session_id", run.SessionID),
		zap.String("run_id", run.ID),
		zap.Error(cause))
}

func (s *OptimizeService) statusFromRun(run *models.SolveRun, result *optimizer.Result) *dto.SolveStatusResponse {
	status := &dto.SolveStatusResponse{
		RunID:       run.ID,
		SessionID:   run.SessionID,
		Status:      run.Status,
		Objective:   run.Objective,
		WallMillis:  run.WallMillis,
		Saved:       run.Saved,
		StartedAt:   run.StartedAt,
		CompletedAt: run.CompletedAt,
	}
	if result != nil {
		status.Assignments = len(result.Assignments)
		status.Diagnosis = result.Diagnosis
	}
	return status
}

func (s *OptimizeService) cacheStatus(ctx context.Context, status *dto.SolveStatusResponse) {
	if err := s.cache.Set(ctx, solveStatusKeyPrefix+status.SessionID, status, s.cfg.StatusTTL); err != nil {
		s.logger.Warn("cache solve status", zap.Error(err))
	}
}

func (s *OptimizeService) cacheStats(ctx context.Context, sessionID string, input *optimizer.Input, result *optimizer.Result) {
	optedOut, err := s.staff.CountOptedOutByGrade(ctx)
	if err != nil {
		s.logger.Warn("load opted-out counts", zap.Error(err))
	}

	stats := dto.SolveStatsResponse{
		SessionID:       sessionID,
		Status:          result.Status,
		Objective:       result.Objective,
		Demand:          result.QuotaPlan.Demand,
		Capacity:        result.QuotaPlan.Capacity,
		Quotas:          result.QuotaPlan.Quotas,
		CountsByGrade:   result.CountsByGrade,
		OptedOut:        optedOut,
		SlotCount:       len(result.Slots),
		WishCount:       len(input.Wishes),
		OwnerExclusions: result.Exclusions,
		RowErrors:       result.RowErrors,
		ExcludedSlots:   result.ExcludedSlots,
		StaffRejected:   result.StaffRejected,
		LedgerWarnings:  result.LedgerWarnings,
	}
	addPlanBreakdowns(&stats, input, result.Assignments)

	if err := s.cache.Set(ctx, solveStatsKeyPrefix+sessionID, stats, s.cfg.StatusTTL); err != nil {
		s.logger.Warn("cache solve stats", zap.Error(err))
	}
}

// addPlanBreakdowns cross-tabulates a solved plan by day, role, grade and
// staff member, and counts assignments that land on a wished-away slot.
func addPlanBreakdowns(stats *dto.SolveStatsResponse, input *optimizer.Input, assignments []optimizer.Assignment) {
	if len(assignments) == 0 {
		return
	}

	gradeOf := make(map[string]string, len(input.Staff))
	for _, member := range input.Staff {
		gradeOf[member.ID] = member.Grade
	}
	wished := make(map[string]bool, len(input.Wishes))
	for _, w := range input.Wishes {
		wished[wishPairKey(w.StaffID, w.DayIndex, w.Period)] = true
	}

	stats.AssignmentsByDay = map[int]int{}
	stats.AssignmentsByRole = map[string]int{}
	stats.AssignmentsByGrade = map[string]int{}
	stats.AssignmentsByStaff = map[string]int{}
	for _, a := range assignments {
		stats.AssignmentsByDay[a.DayIndex]++
		stats.AssignmentsByRole[a.Role]++
		stats.AssignmentsByGrade[gradeOf[a.StaffID]]++
		stats.AssignmentsByStaff[a.StaffID]++
		if wished[wishPairKey(a.StaffID, a.DayIndex, a.Period)] {
			stats.WishViolations++
		}
	}
}

func wishPairKey(staffID string, dayIndex int, period string) string {
	return fmt.Sprintf("%s|%d|%s", staffID, dayIndex, period)
}
