package service

import (
	"context"
	"errors"

	roomserrors "campusgate/internal/rooms/errors"
	"campusgate/internal/rooms/repository"
	"campusgate/internal/rooms/validator"
	"campusgate/pkg/config"
	apperrors "campusgate/pkg/errors"
	"campusgate/pkg/model"
)

// BookingLister supplies a room's upcoming reservations for read
// enrichment. Nil disables enrichment; the booking lifecycle stays with
// the bookings subsystem either way.
type BookingLister interface {
	UpcomingForRoom(ctx context.Context, roomID string) ([]*model.Booking, error)
}

type RoomService interface {
	Create(ctx context.Context, req *model.RoomRequest) (*model.Room, error)
	GetByID(ctx context.Context, id string) (*model.Room, error)
	GetAll(ctx context.Context) ([]*model.Room, error)
	Filter(ctx context.Context, filter repository.RoomFilter) ([]*model.Room, error)
	Update(ctx context.Context, id string, update *model.RoomUpdate) (*model.Room, error)
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
}

type roomService struct {
	repo      repository.RoomRepository
	bookings  BookingLister
	validator *validator.RoomValidator
	cfg       *config.Config
}

func NewRoomService(
	repo repository.RoomRepository,
	bookings BookingLister,
	validator *validator.RoomValidator,
	cfg *config.Config,
) RoomService {
	return &roomService{
		repo:      repo,
		bookings:  bookings,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *roomService) Create(ctx context.Context, req *model.RoomRequest) (*model.Room, error) {
	if err := s.validator.Validate(req); err != nil {
		s.cfg.Log.Warn("Room validation failed", "error", err)
		return nil, apperrors.Validation("Room validation failed", map[string]any{"error": err.Error()})
	}

	room := &model.Room{
		Name:      req.Name,
		Capacity:  req.Capacity,
		Location:  req.Location,
		Amenities: req.Amenities,
	}
	if err := s.repo.Create(ctx, room); err != nil {
		return nil, apperrors.Internal("Failed to create room", err)
	}

	s.cfg.Log.Info("Room created", "id", room.ID, "name", room.Name)
	return room, nil
}

// GetByID returns the room with its upcoming CONFIRMED bookings
// attached when a booking lister is wired.
func (s *roomService) GetByID(ctx context.Context, id string) (*model.Room, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Room ID cannot be empty")
	}

	room, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translateLookupError(err, id)
	}

	s.attachBookings(ctx, room)
	return room, nil
}

// GetAll lists every room, each carrying its upcoming bookings.
func (s *roomService) GetAll(ctx context.Context) ([]*model.Room, error) {
	rooms, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve rooms", err)
	}

	for _, room := range rooms {
		s.attachBookings(ctx, room)
	}
	return rooms, nil
}

func (s *roomService) Filter(ctx context.Context, filter repository.RoomFilter) ([]*model.Room, error) {
	if filter.MinCapacity < 0 {
		return nil, apperrors.InvalidInput("Minimum capacity cannot be negative")
	}

	rooms, err := s.repo.FindByFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.Internal("Failed to filter rooms", err)
	}

	for _, room := range rooms {
		s.attachBookings(ctx, room)
	}
	return rooms, nil
}

// attachBookings fills the room's upcoming CONFIRMED bookings when a
// lister is wired. Enrichment is best-effort; the room itself is the
// answer.
func (s *roomService) attachBookings(ctx context.Context, room *model.Room) {
	if s.bookings == nil {
		return
	}

	bookings, err := s.bookings.UpcomingForRoom(ctx, room.ID)
	if err != nil {
		s.cfg.Log.Warn("Failed to attach room bookings", "room_id", room.ID, "error", err)
		return
	}
	room.Bookings = bookings
}

func (s *roomService) Update(ctx context.Context, id string, update *model.RoomUpdate) (*model.Room, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Room ID cannot be empty")
	}
	if err := s.validator.ValidateUpdate(update); err != nil {
		s.cfg.Log.Warn("Room update validation failed", "error", err)
		return nil, apperrors.Validation("Room update validation failed", map[string]any{"error": err.Error()})
	}

	room, err := s.repo.Update(ctx, id, update)
	if err != nil {
		return nil, s.translateLookupError(err, id)
	}

	s.cfg.Log.Info("Room updated", "id", room.ID)
	return room, nil
}

func (s *roomService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Room ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.translateLookupError(err, id)
	}

	s.cfg.Log.Info("Room deleted", "id", id)
	return nil
}

func (s *roomService) Exists(ctx context.Context, id string) (bool, error) {
	return s.repo.Exists(ctx, id)
}

func (s *roomService) translateLookupError(err error, id string) error {
	if errors.Is(err, roomserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Room", id)
	}
	if errors.Is(err, roomserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid room ID format")
	}
	return apperrors.Internal("Room lookup failed", err)
}
