package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	sessionserrors "campusgate/internal/sessions/errors"
	"campusgate/internal/sessions/repository"
	"campusgate/pkg/config"
	apperrors "campusgate/pkg/errors"
	"campusgate/pkg/kafka"
	"campusgate/pkg/model"
)

const (
	EventGateEntry     = "gate.entry"
	EventGateExit      = "gate.exit"
	EventGateAutoClose = "gate.autoclose"
)

// ScanResult is the ledger's answer to one gate scan.
type ScanResult struct {
	Action    string
	Timestamp time.Time
}

// StudentDirectory resolves student identities for listing enrichment.
type StudentDirectory interface {
	FindByIDs(ctx context.Context, ids []string) (map[string]*model.Student, error)
}

// GateEventPublisher emits gate events to the stream. Publish failures
// are reported to the caller but must never fail the scan itself.
type GateEventPublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type SessionService interface {
	RecordScan(ctx context.Context, studentID string) (*ScanResult, error)
	ListOpen(ctx context.Context) ([]*model.OpenSessionRow, error)
	ListLogs(ctx context.Context, filter model.LogFilter) ([]*model.SessionLog, error)
	ActiveCount(ctx context.Context) (int64, error)
	CloseAllOpen(ctx context.Context) (int64, error)
}

type sessionService struct {
	repo     repository.SessionRepository
	lockRepo repository.ScanLockRepository
	students StudentDirectory
	events   GateEventPublisher
	cfg      *config.Config
}

func NewSessionService(
	repo repository.SessionRepository,
	lockRepo repository.ScanLockRepository,
	students StudentDirectory,
	events GateEventPublisher,
	cfg *config.Config,
) SessionService {
	return &sessionService{
		repo:     repo,
		lockRepo: lockRepo,
		students: students,
		events:   events,
		cfg:      cfg,
	}
}

// RecordScan toggles the student's gate state: no open session means this
// scan is an entry, an open session means it is the matching exit. The
// read-then-write toggle runs under a per-student advisory lock and a
// transaction so concurrent scans cannot both observe "no open session".
func (s *sessionService) RecordScan(ctx context.Context, studentID string) (*ScanResult, error) {
	if studentID == "" {
		return nil, apperrors.InvalidInput("Student ID cannot be empty")
	}

	lockID, err := s.acquireScanLock(ctx, studentID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if releaseErr := s.lockRepo.Delete(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release scan lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	now := time.Now().UTC().Truncate(time.Millisecond)
	var action string

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		last, err := s.repo.FindLatestByStudent(sessCtx, studentID)
		if err != nil && !errors.Is(err, sessionserrors.ErrNotFound) {
			return apperrors.Internal("Failed to look up latest session", err)
		}

		if last != nil && last.Open() {
			if err := s.repo.Close(sessCtx, last.ID, now); err != nil {
				return apperrors.Internal("Failed to close session", err)
			}
			action = model.ScanActionExit
			return nil
		}

		session := &model.Session{
			StudentID: studentID,
			EntryTime: now,
			ExitTime:  nil,
			Status:    model.SessionStatusIn,
		}
		if err := s.repo.Create(sessCtx, session); err != nil {
			return apperrors.Internal("Failed to create session", err)
		}
		action = model.ScanActionEntry
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to record scan", "student_id", studentID, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Scan recorded", "student_id", studentID, "action", action, "timestamp", now)
	s.publishGateEvent(ctx, studentID, action, now)

	return &ScanResult{Action: action, Timestamp: now}, nil
}

func (s *sessionService) ListOpen(ctx context.Context) ([]*model.OpenSessionRow, error) {
	sessions, err := s.repo.FindOpen(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list open sessions", "error", err)
		return nil, apperrors.Internal("Failed to list open sessions", err)
	}

	directory, err := s.lookupStudents(ctx, sessions)
	if err != nil {
		return nil, err
	}

	rows := make([]*model.OpenSessionRow, 0, len(sessions))
	for _, sess := range sessions {
		row := &model.OpenSessionRow{
			StudentID: sess.StudentID,
			EntryTime: sess.EntryTime,
		}
		if student, ok := directory[sess.StudentID]; ok {
			row.StudentName = student.Name
			row.Course = student.Course
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ListLogs returns up to 500 sessions newest-first, each carrying the
// elapsed duration: closed sessions use their exit time, open ones the
// current time.
func (s *sessionService) ListLogs(ctx context.Context, filter model.LogFilter) ([]*model.SessionLog, error) {
	sessions, err := s.repo.FindLogs(ctx, filter)
	if err != nil {
		s.cfg.Log.Error("Failed to list session logs", "error", err)
		return nil, apperrors.Internal("Failed to list session logs", err)
	}

	directory, err := s.lookupStudents(ctx, sessions)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	logs := make([]*model.SessionLog, 0, len(sessions))
	for _, sess := range sessions {
		end := now
		if sess.ExitTime != nil {
			end = *sess.ExitTime
		}

		entry := &model.SessionLog{
			ID:          sess.ID,
			StudentID:   sess.StudentID,
			EntryTime:   sess.EntryTime,
			ExitTime:    sess.ExitTime,
			DurationSec: int64(end.Sub(sess.EntryTime).Seconds()),
		}
		if student, ok := directory[sess.StudentID]; ok {
			entry.StudentName = student.Name
		}
		logs = append(logs, entry)
	}
	return logs, nil
}

func (s *sessionService) ActiveCount(ctx context.Context) (int64, error) {
	count, err := s.repo.CountOpen(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to count open sessions", "error", err)
		return 0, apperrors.Internal("Failed to count open sessions", err)
	}
	return count, nil
}

// CloseAllOpen is the reconciliation sweep: every open session gets the
// current time as its exit stamp in one bulk write.
func (s *sessionService) CloseAllOpen(ctx context.Context) (int64, error) {
	now := time.Now().UTC().Truncate(time.Millisecond)

	closed, err := s.repo.CloseAllOpen(ctx, now)
	if err != nil {
		return 0, apperrors.Internal("Failed to close open sessions", err)
	}

	if closed > 0 {
		s.publishGateEvent(ctx, "", EventGateAutoClose, now)
	}
	s.cfg.Log.Info("Closed all open sessions", "closed", closed, "timestamp", now)
	return closed, nil
}

// --- Helpers ---

func (s *sessionService) acquireScanLock(ctx context.Context, studentID string) (string, error) {
	lockID := fmt.Sprintf("scan_lock_%s", studentID)

	lock := &model.AdvisoryLock{
		ID:        lockID,
		ExpiresAt: time.Now().Add(s.cfg.ScanLockTTL),
	}

	if err := s.lockRepo.Create(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.Conflict("A scan for this student is already being processed. Please try again.")
		}
		return "", apperrors.Internal("Failed to acquire scan lock", err)
	}

	return lockID, nil
}

func (s *sessionService) lookupStudents(ctx context.Context, sessions []*model.Session) (map[string]*model.Student, error) {
	if len(sessions) == 0 {
		return map[string]*model.Student{}, nil
	}

	seen := make(map[string]struct{}, len(sessions))
	ids := make([]string, 0, len(sessions))
	for _, sess := range sessions {
		if _, ok := seen[sess.StudentID]; ok {
			continue
		}
		seen[sess.StudentID] = struct{}{}
		ids = append(ids, sess.StudentID)
	}

	directory, err := s.students.FindByIDs(ctx, ids)
	if err != nil {
		s.cfg.Log.Error("Failed to resolve student names", "error", err)
		return nil, apperrors.Internal("Failed to resolve student names", err)
	}
	return directory, nil
}

func (s *sessionService) publishGateEvent(ctx context.Context, studentID, action string, timestamp time.Time) {
	if s.events == nil {
		return
	}

	eventType := EventGateAutoClose
	switch action {
	case model.ScanActionEntry:
		eventType = EventGateEntry
	case model.ScanActionExit:
		eventType = EventGateExit
	}

	payload := map[string]any{
		"event":     eventType,
		"timestamp": timestamp,
	}
	if studentID != "" {
		payload["student_id"] = studentID
		payload["action"] = action
	}

	msg, err := kafka.NewMessage().
		WithKey(studentID).
		WithEventType(eventType).
		WithSource("campusgate").
		WithValue(payload).
		Build()
	if err != nil {
		s.cfg.Log.Error("Failed to build gate event", "error", err)
		return
	}

	if err := s.events.Publish(ctx, msg); err != nil {
		s.cfg.Log.Error("Failed to publish gate event", "event_type", eventType, "error", err)
	}
}
