package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-proctor-api/internal/dto"
	"github.com/noah-isme/exam-proctor-api/internal/models"
	"github.com/noah-isme/exam-proctor-api/internal/optimizer"
	appErrors "github.com/noah-isme/exam-proctor-api/pkg/errors"
)

type scheduleSessionStore interface {
	List(ctx context.Context) ([]models.Session, error)
	GetByID(ctx context.Context, id string) (*models.Session, error)
	Create(ctx context.Context, s *models.Session) error
}

type scheduleSlotStore interface {
	ListRecords(ctx context.Context, sessionID string) ([]models.RoomRecord, error)
	ReplaceRecords(ctx context.Context, sessionID string, records []models.RoomRecord) error
	ListCalendar(ctx context.Context, sessionID string) ([]models.CalendarEntry, error)
	ReplaceCalendar(ctx context.Context, sessionID string, entries []models.CalendarEntry) error
}

type scheduleWishStore interface {
	ListBySession(ctx context.Context, sessionID string) ([]models.Wish, error)
	ReplaceForStaff(ctx context.Context, sessionID, staffID string, wishes []models.Wish) error
}

type scheduleStaffReader interface {
	GetByID(ctx context.Context, id string) (*models.Staff, error)
}

// ScheduleService manages sessions, their exam room schedule and staff
// wishes. Replacing a schedule rebuilds the session calendar from the
// records.
type ScheduleService struct {
	sessions  scheduleSessionStore
	slots     scheduleSlotStore
	wishes    scheduleWishStore
	staff     scheduleStaffReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScheduleService wires schedule dependencies.
func NewScheduleService(
	sessions scheduleSessionStore,
	slots scheduleSlotStore,
	wishes scheduleWishStore,
	staff scheduleStaffReader,
	validate *validator.Validate,
	logger *zap.Logger,
) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{
		sessions:  sessions,
		slots:     slots,
		wishes:    wishes,
		staff:     staff,
		validator: validate,
		logger:    logger,
	}
}

// ListSessions returns all sessions, newest first.
func (s *ScheduleService) ListSessions(ctx context.Context) ([]models.Session, error) {
	return s.sessions.List(ctx)
}

// GetSession returns one session.
func (s *ScheduleService) GetSession(ctx context.Context, id string) (*models.Session, error) {
	return s.sessions.GetByID(ctx, id)
}

// CreateSession opens a new examination session.
func (s *ScheduleService) CreateSession(ctx context.Context, req dto.CreateSessionRequest) (*models.Session, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}
	start, _ := time.Parse("2006-01-02", req.StartDate)
	end, _ := time.Parse("2006-01-02", req.EndDate)
	if end.Before(start) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "endDate precedes startDate")
	}

	session := &models.Session{Name: req.Name, StartDate: start, EndDate: end}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// ListSchedule returns the room records of a session.
func (s *ScheduleService) ListSchedule(ctx context.Context, sessionID string) ([]models.RoomRecord, error) {
	if _, err := s.sessions.GetByID(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.slots.ListRecords(ctx, sessionID)
}

// ReplaceSchedule swaps the full room schedule of a session and rebuilds the
// day/period calendar from the new records.
func (s *ScheduleService) ReplaceSchedule(ctx context.Context, sessionID string, req dto.ReplaceScheduleRequest) ([]models.RoomRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}
	if _, err := s.sessions.GetByID(ctx, sessionID); err != nil {
		return nil, err
	}

	records := make([]models.RoomRecord, 0, len(req.Records))
	raw := make([]optimizer.RoomTimeRecord, 0, len(req.Records))
	for _, rec := range req.Records {
		examDate, _ := time.Parse("2006-01-02", rec.ExamDate)
		records = append(records, models.RoomRecord{
			RoomName:  rec.RoomName,
			ExamDate:  examDate,
			StartTime: rec.Start,
			EndTime:   rec.End,
			OwnerID:   rec.OwnerID,
		})
		raw = append(raw, optimizer.RoomTimeRecord{
			Date:  rec.ExamDate,
			Start: rec.Start,
			End:   rec.End,
			Room:  rec.RoomName,
		})
	}

	if err := s.slots.ReplaceRecords(ctx, sessionID, records); err != nil {
		return nil, err
	}

	calendar := optimizer.GenerateCalendar(raw)
	entries := make([]models.CalendarEntry, 0, len(calendar))
	for _, day := range calendar {
		date, err := time.Parse("2006-01-02", day.Date)
		if err != nil {
			continue
		}
		entries = append(entries, models.CalendarEntry{
			Date:      date,
			StartTime: day.Start,
			DayIndex:  day.DayIndex,
			Period:    day.Period,
		})
	}
	if err := s.slots.ReplaceCalendar(ctx, sessionID, entries); err != nil {
		return nil, err
	}
	s.logger.Info("schedule replaced",
		zap.String("session_id", sessionID),
		zap.Int("records", len(records)),
		zap.Int("calendar_entries", len(entries)))

	return s.slots.ListRecords(ctx, sessionID)
}

// ListWishes returns all wishes of a session.
func (s *ScheduleService) ListWishes(ctx context.Context, sessionID string) ([]models.Wish, error) {
	if _, err := s.sessions.GetByID(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.wishes.ListBySession(ctx, sessionID)
}

// ReplaceWishes swaps one staff member's wish list for a session.
func (s *ScheduleService) ReplaceWishes(ctx context.Context, sessionID, staffID string, req dto.ReplaceWishesRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid wishes payload")
	}
	if _, err := s.sessions.GetByID(ctx, sessionID); err != nil {
		return err
	}
	if _, err := s.staff.GetByID(ctx, staffID); err != nil {
		return err
	}

	wishes := make([]models.Wish, 0, len(req.Wishes))
	for _, wish := range req.Wishes {
		wishes = append(wishes, models.Wish{DayIndex: wish.DayIndex, Period: wish.Period})
	}
	return s.wishes.ReplaceForStaff(ctx, sessionID, staffID, wishes)
}
