package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	bookingserrors "campusgate/internal/bookings/errors"
	"campusgate/internal/bookings/repository"
	"campusgate/internal/bookings/validator"
	"campusgate/pkg/config"
	apperrors "campusgate/pkg/errors"
	"campusgate/pkg/model"
)

// RoomFinder answers whether a room exists. Satisfied by the rooms
// service; bookings never touch the rooms collection directly.
type RoomFinder interface {
	Exists(ctx context.Context, roomID string) (bool, error)
}

// StudentFinder answers whether a student is registered.
type StudentFinder interface {
	Exists(ctx context.Context, studentID string) (bool, error)
}

type BookingService interface {
	Create(ctx context.Context, req *model.BookingRequest) (*model.Booking, error)
	Cancel(ctx context.Context, id string) (*model.Booking, error)
	AvailableSlots(ctx context.Context, query *model.SlotQuery) ([]model.Slot, error)
	ListByStudent(ctx context.Context, studentID string) ([]*model.Booking, error)
	ListAll(ctx context.Context) ([]*model.Booking, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	lockRepo  repository.BookingLockRepository
	rooms     RoomFinder
	students  StudentFinder
	validator *validator.BookingValidator
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.BookingLockRepository,
	rooms RoomFinder,
	students StudentFinder,
	validator *validator.BookingValidator,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		lockRepo:  lockRepo,
		rooms:     rooms,
		students:  students,
		validator: validator,
		cfg:       cfg,
	}
}

// Create reserves [start, end) for the student if no CONFIRMED booking
// for the room overlaps it. Checks run cheapest-first and the order is
// part of the contract: field validation, then room existence, then
// student existence, then the conflict scan. The scan and insert run
// under a room-keyed advisory lock plus a transaction so two requests
// for overlapping intervals cannot both pass the scan.
func (s *bookingService) Create(ctx context.Context, req *model.BookingRequest) (*model.Booking, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	roomExists, err := s.rooms.Exists(ctx, req.RoomID)
	if err != nil {
		return nil, apperrors.Internal("Failed to verify room", err)
	}
	if !roomExists {
		return nil, apperrors.NotFoundWithID("Room", req.RoomID)
	}

	studentExists, err := s.students.Exists(ctx, req.StudentID)
	if err != nil {
		return nil, apperrors.Internal("Failed to verify student", err)
	}
	if !studentExists {
		return nil, apperrors.NotFoundWithID("Student", req.StudentID)
	}

	lockID, err := s.acquireRoomLock(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if releaseErr := s.lockRepo.Delete(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release booking lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	booking := &model.Booking{
		StudentID: req.StudentID,
		RoomID:    req.RoomID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Status:    model.BookingStatusConfirmed,
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		// Re-check the room under the transaction: an admin delete landing
		// after the check above must not strand a booking for a dead room.
		roomExists, err := s.rooms.Exists(sessCtx, req.RoomID)
		if err != nil {
			return apperrors.Internal("Failed to verify room", err)
		}
		if !roomExists {
			return apperrors.NotFoundWithID("Room", req.RoomID)
		}

		existing, err := s.repo.FindConfirmedOverlapping(sessCtx, req.RoomID, req.StartTime, req.EndTime)
		if err != nil {
			return apperrors.Internal("Failed to check existing bookings", err)
		}
		if len(existing) > 0 {
			return apperrors.Conflict(fmt.Sprintf(
				"Room is already booked from %s to %s",
				existing[0].StartTime.Format(time.RFC3339),
				existing[0].EndTime.Format(time.RFC3339),
			))
		}

		if err := s.repo.Create(sessCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Booking created",
		"id", booking.ID,
		"room_id", booking.RoomID,
		"student_id", booking.StudentID,
		"start_time", booking.StartTime,
	)
	return booking, nil
}

// Cancel flips a CONFIRMED booking to CANCELLED. The row is never
// deleted; the audit trail keeps every reservation ever made.
func (s *bookingService) Cancel(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	if existing.Status == model.BookingStatusCancelled {
		return nil, apperrors.Conflict("Booking is already cancelled")
	}

	booking, err := s.repo.UpdateStatus(ctx, id, model.BookingStatusConfirmed, model.BookingStatusCancelled)
	if err != nil {
		// A concurrent cancel can win between the read and the flip; the
		// filtered update then matches nothing.
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.Conflict("Booking is already cancelled")
		}
		return nil, apperrors.Internal("Failed to cancel booking", err)
	}

	s.cfg.Log.Info("Booking cancelled", "id", booking.ID, "room_id", booking.RoomID)
	return booking, nil
}

// AvailableSlots lists every maximal free window of at least the
// requested duration within [StartDate, EndDate), given the room's
// CONFIRMED bookings. Single linear sweep: the cursor starts at
// StartDate and only ever advances, so overlapping or out-of-order
// bookings collapse correctly without any merging pass.
func (s *bookingService) AvailableSlots(ctx context.Context, query *model.SlotQuery) ([]model.Slot, error) {
	if err := s.validateSlotQuery(query); err != nil {
		return nil, err
	}

	roomExists, err := s.rooms.Exists(ctx, query.RoomID)
	if err != nil {
		return nil, apperrors.Internal("Failed to verify room", err)
	}
	if !roomExists {
		return nil, apperrors.NotFoundWithID("Room", query.RoomID)
	}

	bookings, err := s.repo.FindConfirmedInRange(ctx, query.RoomID, query.StartDate, query.EndDate)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}

	duration := time.Duration(query.DurationMinutes) * time.Minute
	slots := []model.Slot{}
	cursor := query.StartDate

	for _, b := range bookings {
		if b.StartTime.Sub(cursor) >= duration {
			slots = append(slots, model.Slot{Start: cursor, End: b.StartTime})
		}
		if b.EndTime.After(cursor) {
			cursor = b.EndTime
		}
	}

	if query.EndDate.Sub(cursor) >= duration {
		slots = append(slots, model.Slot{Start: cursor, End: query.EndDate})
	}

	return slots, nil
}

func (s *bookingService) ListByStudent(ctx context.Context, studentID string) ([]*model.Booking, error) {
	if studentID == "" {
		return nil, apperrors.InvalidInput("Student ID cannot be empty")
	}

	bookings, err := s.repo.FindByStudent(ctx, studentID)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve student bookings", err)
	}
	return bookings, nil
}

func (s *bookingService) ListAll(ctx context.Context) ([]*model.Booking, error) {
	bookings, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}
	return bookings, nil
}

func (s *bookingService) validate(req *model.BookingRequest) error {
	if err := s.validator.Validate(req); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

func (s *bookingService) validateSlotQuery(query *model.SlotQuery) error {
	if err := s.validator.ValidateSlotQuery(query); err != nil {
		s.cfg.Log.Warn("Slot query validation failed", "error", err)
		return apperrors.Validation("Slot query validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

// RoomBookingLister adapts the bookings store for room read enrichment:
// the rooms subsystem attaches a room's upcoming CONFIRMED reservations
// without owning the collection.
type RoomBookingLister struct {
	repo repository.BookingRepository
}

func NewRoomBookingLister(repo repository.BookingRepository) *RoomBookingLister {
	return &RoomBookingLister{repo: repo}
}

// upcomingHorizon bounds how far ahead room enrichment looks.
const upcomingHorizon = 365 * 24 * time.Hour

func (l *RoomBookingLister) UpcomingForRoom(ctx context.Context, roomID string) ([]*model.Booking, error) {
	now := time.Now().UTC()
	return l.repo.FindConfirmedInRange(ctx, roomID, now, now.Add(upcomingHorizon))
}

func (s *bookingService) acquireRoomLock(ctx context.Context, roomID string) (string, error) {
	lockID := fmt.Sprintf("booking_lock_%s", roomID)
	lock := &model.AdvisoryLock{
		ID:        lockID,
		ExpiresAt: time.Now().Add(s.cfg.BookingLockTTL),
	}

	if err := s.lockRepo.Create(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.Conflict("Another booking for this room is already being processed")
		}
		return "", apperrors.Internal("Failed to acquire booking lock", err)
	}
	return lockID, nil
}
