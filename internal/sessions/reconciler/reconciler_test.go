package reconciler

import (
	"context"
	"testing"
	"time"

	"campusgate/internal/sessions/service"
	"campusgate/pkg/logger"
	"campusgate/pkg/model"
)

type stubSessionService struct {
	closeAllOpenFunc func(ctx context.Context) (int64, error)
}

func (s *stubSessionService) RecordScan(ctx context.Context, studentID string) (*service.ScanResult, error) {
	return nil, nil
}

func (s *stubSessionService) ListOpen(ctx context.Context) ([]*model.OpenSessionRow, error) {
	return nil, nil
}

func (s *stubSessionService) ListLogs(ctx context.Context, filter model.LogFilter) ([]*model.SessionLog, error) {
	return nil, nil
}

func (s *stubSessionService) ActiveCount(ctx context.Context) (int64, error) {
	return 0, nil
}

func (s *stubSessionService) CloseAllOpen(ctx context.Context) (int64, error) {
	if s.closeAllOpenFunc != nil {
		return s.closeAllOpenFunc(ctx)
	}
	return 0, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Format: logger.JSON, Service: "test"})
}

func TestNew_RejectsBadInputs(t *testing.T) {
	tests := []struct {
		name     string
		at       string
		timezone string
	}{
		{name: "not a clock time", at: "ten pm", timezone: "UTC"},
		{name: "hour out of range", at: "24:00", timezone: "UTC"},
		{name: "minute out of range", at: "22:60", timezone: "UTC"},
		{name: "bad timezone", at: "22:00", timezone: "Mars/Olympus"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(&stubSessionService{}, testLogger(), tt.at, tt.timezone); err == nil {
				t.Errorf("expected error for at=%q tz=%q", tt.at, tt.timezone)
			}
		})
	}
}

func TestNextFiring(t *testing.T) {
	r, err := New(&stubSessionService{}, testLogger(), "22:00", "UTC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "before the firing time fires today",
			now:  time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC),
			want: time.Date(2026, 3, 10, 22, 0, 0, 0, time.UTC),
		},
		{
			name: "exactly at the firing time fires tomorrow",
			now:  time.Date(2026, 3, 10, 22, 0, 0, 0, time.UTC),
			want: time.Date(2026, 3, 11, 22, 0, 0, 0, time.UTC),
		},
		{
			name: "after the firing time fires tomorrow",
			now:  time.Date(2026, 3, 10, 23, 15, 0, 0, time.UTC),
			want: time.Date(2026, 3, 11, 22, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.nextFiring(tt.now)
			if !got.Equal(tt.want) {
				t.Errorf("nextFiring(%s) = %s, want %s", tt.now, got, tt.want)
			}
		})
	}
}

func TestSweep_LogsAndContinuesOnError(t *testing.T) {
	calls := 0
	svc := &stubSessionService{
		closeAllOpenFunc: func(ctx context.Context) (int64, error) {
			calls++
			return 0, context.DeadlineExceeded
		},
	}

	r, err := New(svc, testLogger(), "22:00", "UTC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A failing sweep must not panic or abort; the loop schedules the
	// next firing regardless.
	r.sweep(context.Background())
	r.sweep(context.Background())

	if calls != 2 {
		t.Errorf("expected 2 sweep attempts, got %d", calls)
	}
}

func TestStartStop(t *testing.T) {
	r, err := New(&stubSessionService{}, testLogger(), "22:00", "UTC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r.Start(ctx)

	done := make(chan struct{})
	go func() {
		r.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
}

func TestStop_WithoutStart(t *testing.T) {
	r, err := New(&stubSessionService{}, testLogger(), "22:00", "UTC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	done := make(chan struct{})
	go func() {
		r.Stop()
		r.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop blocked without a running loop")
	}
}
