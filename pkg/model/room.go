package model

import "time"

type Room struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty"`
	Name      string    `json:"name" bson:"name"`
	Capacity  int       `json:"capacity" bson:"capacity"`
	Location  string    `json:"location" bson:"location"`
	Amenities []string  `json:"amenities" bson:"amenities"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`

	// Bookings is a read-only back-reference populated on room reads;
	// the booking lifecycle is owned by the bookings subsystem.
	Bookings []*Booking `json:"bookings,omitempty" bson:"-"`
}

// RoomRequest is the validated room creation body.
type RoomRequest struct {
	Name      string   `json:"name" validate:"required,min=2,max=100"`
	Capacity  int      `json:"capacity" validate:"required,min=1"`
	Location  string   `json:"location" validate:"required,min=1,max=200"`
	Amenities []string `json:"amenities" validate:"required,dive,min=1"`
}

// RoomUpdate carries partial room changes; nil fields are left untouched.
type RoomUpdate struct {
	Name      *string   `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Capacity  *int      `json:"capacity,omitempty" validate:"omitempty,min=1"`
	Location  *string   `json:"location,omitempty" validate:"omitempty,min=1,max=200"`
	Amenities *[]string `json:"amenities,omitempty" validate:"omitempty,dive,min=1"`
}
