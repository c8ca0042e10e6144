package model

import "time"

const (
	BookingStatusConfirmed = "CONFIRMED"
	BookingStatusCancelled = "CANCELLED"
)

type Booking struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty"`
	StudentID string    `json:"student_id" bson:"student_id"`
	RoomID    string    `json:"room_id" bson:"room_id"`
	StartTime time.Time `json:"start_time" bson:"start_time"`
	EndTime   time.Time `json:"end_time" bson:"end_time"`
	Status    string    `json:"status" bson:"status"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// BookingRequest is the validated reservation request body.
type BookingRequest struct {
	StudentID string    `json:"student_id" validate:"required"`
	RoomID    string    `json:"room_id" validate:"required,mongodb"`
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required,gtfield=StartTime"`
}

// SlotQuery asks for free windows of at least DurationMinutes within
// [StartDate, EndDate) for one room.
type SlotQuery struct {
	RoomID          string    `json:"room_id" validate:"required,mongodb"`
	StartDate       time.Time `json:"start_date" validate:"required"`
	EndDate         time.Time `json:"end_date" validate:"required,gtfield=StartDate"`
	DurationMinutes int       `json:"duration" validate:"required,min=1"`
}

// Slot is one maximal free window.
type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}
