package model

import "time"

const (
	SessionStatusIn  = "IN"
	SessionStatusOut = "OUT"
)

const (
	ScanActionEntry = "Entry"
	ScanActionExit  = "Exit"
)

// Session is one entry/exit cycle for a student. A session is open while
// Status is IN and ExitTime is nil; at most one open session may exist
// per student at any time.
type Session struct {
	ID        string     `json:"id,omitempty" bson:"_id,omitempty"`
	StudentID string     `json:"student_id" bson:"student_id"`
	EntryTime time.Time  `json:"entry_time" bson:"entry_time"`
	ExitTime  *time.Time `json:"exit_time" bson:"exit_time"`
	Status    string     `json:"status" bson:"status"`
}

// Open reports whether the session is still in progress.
func (s *Session) Open() bool {
	return s.Status == SessionStatusIn && s.ExitTime == nil
}

// SessionLog is a session enriched for the admin logs listing.
type SessionLog struct {
	ID          string     `json:"id"`
	StudentID   string     `json:"student_id"`
	StudentName string     `json:"student_name"`
	EntryTime   time.Time  `json:"entry_time"`
	ExitTime    *time.Time `json:"exit_time"`
	DurationSec int64      `json:"duration_sec"`
}

// OpenSessionRow is one currently-inside student.
type OpenSessionRow struct {
	StudentID   string    `json:"student_id"`
	StudentName string    `json:"student_name"`
	Course      string    `json:"course"`
	EntryTime   time.Time `json:"entry_time"`
}

// LogFilter narrows the admin logs listing. Nil fields are skipped; when
// both From and To are set the entry-time bounds are inclusive.
type LogFilter struct {
	StudentID string
	From      *time.Time
	To        *time.Time
}
