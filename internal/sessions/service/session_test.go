package service

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	sessionserrors "campusgate/internal/sessions/errors"
	"campusgate/pkg/config"
	apperrors "campusgate/pkg/errors"
	mongotx "campusgate/pkg/db/mongo"
	"campusgate/pkg/logger"
	"campusgate/pkg/model"
)

type mockSessionRepository struct {
	findLatestFunc   func(ctx context.Context, studentID string) (*model.Session, error)
	createFunc       func(ctx context.Context, session *model.Session) error
	closeFunc        func(ctx context.Context, id string, exitTime time.Time) error
	closeAllOpenFunc func(ctx context.Context, exitTime time.Time) (int64, error)
	findOpenFunc     func(ctx context.Context) ([]*model.Session, error)
	findLogsFunc     func(ctx context.Context, filter model.LogFilter) ([]*model.Session, error)
	countOpenFunc    func(ctx context.Context) (int64, error)
}

func (m *mockSessionRepository) Create(ctx context.Context, session *model.Session) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, session)
	}
	return nil
}

func (m *mockSessionRepository) FindLatestByStudent(ctx context.Context, studentID string) (*model.Session, error) {
	if m.findLatestFunc != nil {
		return m.findLatestFunc(ctx, studentID)
	}
	return nil, sessionserrors.ErrNotFound
}

func (m *mockSessionRepository) Close(ctx context.Context, id string, exitTime time.Time) error {
	if m.closeFunc != nil {
		return m.closeFunc(ctx, id, exitTime)
	}
	return nil
}

func (m *mockSessionRepository) CloseAllOpen(ctx context.Context, exitTime time.Time) (int64, error) {
	if m.closeAllOpenFunc != nil {
		return m.closeAllOpenFunc(ctx, exitTime)
	}
	return 0, nil
}

func (m *mockSessionRepository) FindOpen(ctx context.Context) ([]*model.Session, error) {
	if m.findOpenFunc != nil {
		return m.findOpenFunc(ctx)
	}
	return []*model.Session{}, nil
}

func (m *mockSessionRepository) FindLogs(ctx context.Context, filter model.LogFilter) ([]*model.Session, error) {
	if m.findLogsFunc != nil {
		return m.findLogsFunc(ctx, filter)
	}
	return []*model.Session{}, nil
}

func (m *mockSessionRepository) CountOpen(ctx context.Context) (int64, error) {
	if m.countOpenFunc != nil {
		return m.countOpenFunc(ctx)
	}
	return 0, nil
}

func (m *mockSessionRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

type mockScanLockRepository struct {
	createFunc func(ctx context.Context, lock *model.AdvisoryLock) error
	deleted    []string
}

func (m *mockScanLockRepository) Create(ctx context.Context, lock *model.AdvisoryLock) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, lock)
	}
	return nil
}

func (m *mockScanLockRepository) Delete(ctx context.Context, lockID string) error {
	m.deleted = append(m.deleted, lockID)
	return nil
}

type mockStudentDirectory struct {
	students map[string]*model.Student
}

func (m *mockStudentDirectory) FindByIDs(ctx context.Context, ids []string) (map[string]*model.Student, error) {
	out := map[string]*model.Student{}
	for _, id := range ids {
		if s, ok := m.students[id]; ok {
			out[id] = s
		}
	}
	return out, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:   "error",
			Format:  logger.JSON,
			Service: "test",
		}),
		ScanLockTTL:  10 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
}

func newTestService(repo *mockSessionRepository, locks *mockScanLockRepository, students *mockStudentDirectory) SessionService {
	if locks == nil {
		locks = &mockScanLockRepository{}
	}
	if students == nil {
		students = &mockStudentDirectory{students: map[string]*model.Student{}}
	}
	return NewSessionService(repo, locks, students, nil, testConfig())
}

func TestRecordScan_FirstScanIsEntry(t *testing.T) {
	var created *model.Session
	repo := &mockSessionRepository{
		findLatestFunc: func(ctx context.Context, studentID string) (*model.Session, error) {
			return nil, sessionserrors.ErrNotFound
		},
		createFunc: func(ctx context.Context, session *model.Session) error {
			created = session
			return nil
		},
	}

	result, err := newTestService(repo, nil, nil).RecordScan(context.Background(), "S1001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Action != model.ScanActionEntry {
		t.Errorf("expected action %q, got %q", model.ScanActionEntry, result.Action)
	}
	if created == nil {
		t.Fatal("expected a session to be created")
	}
	if created.Status != model.SessionStatusIn {
		t.Errorf("expected new session status IN, got %s", created.Status)
	}
	if created.ExitTime != nil {
		t.Error("expected new session exit time to be nil")
	}
	if !created.EntryTime.Equal(result.Timestamp) {
		t.Error("expected entry time to match the reported timestamp")
	}
}

func TestRecordScan_OpenSessionTogglesToExit(t *testing.T) {
	var closedID string
	var closedAt time.Time
	createCalled := false

	repo := &mockSessionRepository{
		findLatestFunc: func(ctx context.Context, studentID string) (*model.Session, error) {
			return &model.Session{
				ID:        "sess-1",
				StudentID: studentID,
				EntryTime: time.Now().Add(-time.Hour),
				Status:    model.SessionStatusIn,
			}, nil
		},
		closeFunc: func(ctx context.Context, id string, exitTime time.Time) error {
			closedID = id
			closedAt = exitTime
			return nil
		},
		createFunc: func(ctx context.Context, session *model.Session) error {
			createCalled = true
			return nil
		},
	}

	result, err := newTestService(repo, nil, nil).RecordScan(context.Background(), "S1001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Action != model.ScanActionExit {
		t.Errorf("expected action %q, got %q", model.ScanActionExit, result.Action)
	}
	if closedID != "sess-1" {
		t.Errorf("expected session sess-1 to be closed, got %q", closedID)
	}
	if !closedAt.Equal(result.Timestamp) {
		t.Error("expected exit time to match the reported timestamp")
	}
	if createCalled {
		t.Error("an exit scan must not create a new session row")
	}
}

func TestRecordScan_ClosedSessionTogglesBackToEntry(t *testing.T) {
	exit := time.Now().Add(-time.Hour)
	createCalled := false

	repo := &mockSessionRepository{
		findLatestFunc: func(ctx context.Context, studentID string) (*model.Session, error) {
			return &model.Session{
				ID:        "sess-1",
				StudentID: studentID,
				EntryTime: exit.Add(-time.Hour),
				ExitTime:  &exit,
				Status:    model.SessionStatusOut,
			}, nil
		},
		createFunc: func(ctx context.Context, session *model.Session) error {
			createCalled = true
			return nil
		},
	}

	result, err := newTestService(repo, nil, nil).RecordScan(context.Background(), "S1001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Action != model.ScanActionEntry {
		t.Errorf("expected action %q after a closed session, got %q", model.ScanActionEntry, result.Action)
	}
	if !createCalled {
		t.Error("expected a fresh session row for the re-entry")
	}
}

func TestRecordScan_EmptyStudentIDRejected(t *testing.T) {
	_, err := newTestService(&mockSessionRepository{}, nil, nil).RecordScan(context.Background(), "")
	if err == nil {
		t.Fatal("expected error for empty student ID")
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeInvalidInput {
		t.Errorf("expected code %s, got %s", apperrors.CodeInvalidInput, appErr.Code)
	}
}

func TestRecordScan_ConcurrentScanConflicts(t *testing.T) {
	locks := &mockScanLockRepository{
		createFunc: func(ctx context.Context, lock *model.AdvisoryLock) error {
			return mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
		},
	}

	_, err := newTestService(&mockSessionRepository{}, locks, nil).RecordScan(context.Background(), "S1001")
	if err == nil {
		t.Fatal("expected conflict when the scan lock is held")
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeConflict {
		t.Errorf("expected code %s, got %s", apperrors.CodeConflict, appErr.Code)
	}
}

func TestRecordScan_ReleasesLock(t *testing.T) {
	locks := &mockScanLockRepository{}

	if _, err := newTestService(&mockSessionRepository{}, locks, nil).RecordScan(context.Background(), "S1001"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(locks.deleted) != 1 || locks.deleted[0] != "scan_lock_S1001" {
		t.Errorf("expected scan_lock_S1001 to be released, got %v", locks.deleted)
	}
}

func TestCloseAllOpen(t *testing.T) {
	var stamped time.Time
	repo := &mockSessionRepository{
		closeAllOpenFunc: func(ctx context.Context, exitTime time.Time) (int64, error) {
			stamped = exitTime
			return 7, nil
		},
	}

	closed, err := newTestService(repo, nil, nil).CloseAllOpen(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if closed != 7 {
		t.Errorf("expected 7 closed sessions, got %d", closed)
	}
	if stamped.IsZero() {
		t.Error("expected a concrete exit timestamp for the sweep")
	}
}

func TestListLogs_Durations(t *testing.T) {
	entry := time.Now().Add(-2 * time.Hour)
	exit := entry.Add(90 * time.Minute)

	repo := &mockSessionRepository{
		findLogsFunc: func(ctx context.Context, filter model.LogFilter) ([]*model.Session, error) {
			return []*model.Session{
				{ID: "closed", StudentID: "S1", EntryTime: entry, ExitTime: &exit, Status: model.SessionStatusOut},
				{ID: "open", StudentID: "S2", EntryTime: entry, Status: model.SessionStatusIn},
			}, nil
		},
	}
	students := &mockStudentDirectory{students: map[string]*model.Student{
		"S1": {StudentID: "S1", Name: "Priya Nair", Course: "Physics"},
		"S2": {StudentID: "S2", Name: "Omar Haddad", Course: "History"},
	}}

	logs, err := newTestService(repo, nil, students).ListLogs(context.Background(), model.LogFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(logs))
	}

	if logs[0].DurationSec != int64(90*60) {
		t.Errorf("expected closed session duration %d, got %d", 90*60, logs[0].DurationSec)
	}
	if logs[0].StudentName != "Priya Nair" {
		t.Errorf("expected enriched student name, got %q", logs[0].StudentName)
	}

	// The open session's duration runs up to "now".
	wantAtLeast := int64((2 * time.Hour).Seconds()) - 1
	if logs[1].DurationSec < wantAtLeast {
		t.Errorf("expected open session duration >= %d, got %d", wantAtLeast, logs[1].DurationSec)
	}
	if logs[1].ExitTime != nil {
		t.Error("expected open session exit time to stay nil")
	}
}

func TestListOpen_EnrichesStudents(t *testing.T) {
	entry := time.Now().Add(-time.Hour)
	repo := &mockSessionRepository{
		findOpenFunc: func(ctx context.Context) ([]*model.Session, error) {
			return []*model.Session{
				{ID: "sess-1", StudentID: "S1", EntryTime: entry, Status: model.SessionStatusIn},
			}, nil
		},
	}
	students := &mockStudentDirectory{students: map[string]*model.Student{
		"S1": {StudentID: "S1", Name: "Priya Nair", Course: "Physics"},
	}}

	rows, err := newTestService(repo, nil, students).ListOpen(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].StudentName != "Priya Nair" || rows[0].Course != "Physics" {
		t.Errorf("expected enriched row, got %+v", rows[0])
	}
	if !rows[0].EntryTime.Equal(entry) {
		t.Error("expected entry time to pass through")
	}
}

func TestActiveCount(t *testing.T) {
	repo := &mockSessionRepository{
		countOpenFunc: func(ctx context.Context) (int64, error) {
			return 12, nil
		},
	}

	count, err := newTestService(repo, nil, nil).ActiveCount(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 12 {
		t.Errorf("expected 12, got %d", count)
	}
}
