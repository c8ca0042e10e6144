package service

import (
	"context"
	"testing"
	"time"

	roomserrors "campusgate/internal/rooms/errors"
	"campusgate/internal/rooms/repository"
	"campusgate/internal/rooms/validator"
	"campusgate/pkg/config"
	apperrors "campusgate/pkg/errors"
	"campusgate/pkg/logger"
	"campusgate/pkg/model"
)

const testRoomID = "665f1f77bcf86cd799439011"

type mockRoomRepository struct {
	createFunc       func(ctx context.Context, room *model.Room) error
	findByIDFunc     func(ctx context.Context, id string) (*model.Room, error)
	findAllFunc      func(ctx context.Context) ([]*model.Room, error)
	findByFilterFunc func(ctx context.Context, filter repository.RoomFilter) ([]*model.Room, error)
	updateFunc       func(ctx context.Context, id string, update *model.RoomUpdate) (*model.Room, error)
	deleteFunc       func(ctx context.Context, id string) error
	existsFunc       func(ctx context.Context, id string) (bool, error)
}

func (m *mockRoomRepository) Create(ctx context.Context, room *model.Room) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, room)
	}
	room.ID = testRoomID
	return nil
}

func (m *mockRoomRepository) FindByID(ctx context.Context, id string) (*model.Room, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, roomserrors.ErrNotFound
}

func (m *mockRoomRepository) FindAll(ctx context.Context) ([]*model.Room, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx)
	}
	return []*model.Room{}, nil
}

func (m *mockRoomRepository) FindByFilter(ctx context.Context, filter repository.RoomFilter) ([]*model.Room, error) {
	if m.findByFilterFunc != nil {
		return m.findByFilterFunc(ctx, filter)
	}
	return []*model.Room{}, nil
}

func (m *mockRoomRepository) Update(ctx context.Context, id string, update *model.RoomUpdate) (*model.Room, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, update)
	}
	return nil, roomserrors.ErrNotFound
}

func (m *mockRoomRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockRoomRepository) Exists(ctx context.Context, id string) (bool, error) {
	if m.existsFunc != nil {
		return m.existsFunc(ctx, id)
	}
	return true, nil
}

type mockBookingLister struct {
	bookings            []*model.Booking
	err                 error
	upcomingForRoomFunc func(ctx context.Context, roomID string) ([]*model.Booking, error)
}

func (m *mockBookingLister) UpcomingForRoom(ctx context.Context, roomID string) ([]*model.Booking, error) {
	if m.upcomingForRoomFunc != nil {
		return m.upcomingForRoomFunc(ctx, roomID)
	}
	return m.bookings, m.err
}

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:   "error",
			Format:  logger.JSON,
			Service: "test",
		}),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
}

func newTestService(repo *mockRoomRepository, bookings BookingLister) RoomService {
	cfg := testConfig()
	return NewRoomService(repo, bookings, validator.NewRoomValidator(cfg.Log), cfg)
}

func TestCreate(t *testing.T) {
	tests := []struct {
		name     string
		req      *model.RoomRequest
		wantCode string
	}{
		{
			name: "valid room",
			req: &model.RoomRequest{
				Name:      "Lab 204",
				Capacity:  30,
				Location:  "Building B",
				Amenities: []string{"projector", "whiteboard"},
			},
		},
		{
			name: "missing name",
			req: &model.RoomRequest{
				Capacity:  30,
				Location:  "Building B",
				Amenities: []string{"projector"},
			},
			wantCode: apperrors.CodeValidation,
		},
		{
			name: "zero capacity",
			req: &model.RoomRequest{
				Name:      "Lab 204",
				Location:  "Building B",
				Amenities: []string{"projector"},
			},
			wantCode: apperrors.CodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			room, err := newTestService(&mockRoomRepository{}, nil).Create(context.Background(), tt.req)

			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if room.ID != testRoomID {
					t.Errorf("expected assigned ID, got %q", room.ID)
				}
				return
			}

			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if appErr := apperrors.AsAppError(err); appErr.Code != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, appErr.Code)
			}
		})
	}
}

func TestGetByID_AttachesUpcomingBookings(t *testing.T) {
	repo := &mockRoomRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Room, error) {
			return &model.Room{ID: id, Name: "Lab 204"}, nil
		},
	}
	lister := &mockBookingLister{
		bookings: []*model.Booking{{ID: "b1", RoomID: testRoomID}},
	}

	room, err := newTestService(repo, lister).GetByID(context.Background(), testRoomID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(room.Bookings) != 1 {
		t.Errorf("expected 1 attached booking, got %d", len(room.Bookings))
	}
}

func TestGetByID_EnrichmentFailureIsNotFatal(t *testing.T) {
	repo := &mockRoomRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Room, error) {
			return &model.Room{ID: id, Name: "Lab 204"}, nil
		},
	}
	lister := &mockBookingLister{err: context.DeadlineExceeded}

	room, err := newTestService(repo, lister).GetByID(context.Background(), testRoomID)
	if err != nil {
		t.Fatalf("expected room despite enrichment failure, got error: %v", err)
	}
	if room.Bookings != nil {
		t.Errorf("expected no attached bookings, got %d", len(room.Bookings))
	}
}

func TestGetByID_NotFound(t *testing.T) {
	_, err := newTestService(&mockRoomRepository{}, nil).GetByID(context.Background(), testRoomID)
	if err == nil {
		t.Fatal("expected not-found error")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeNotFound {
		t.Errorf("expected code %s, got %s", apperrors.CodeNotFound, appErr.Code)
	}
}

func TestGetAll_AttachesUpcomingBookings(t *testing.T) {
	repo := &mockRoomRepository{
		findAllFunc: func(ctx context.Context) ([]*model.Room, error) {
			return []*model.Room{
				{ID: testRoomID, Name: "Lab 204"},
				{ID: "665f1f77bcf86cd799439012", Name: "Lab 205"},
			}, nil
		},
	}
	lister := &mockBookingLister{
		upcomingForRoomFunc: func(ctx context.Context, roomID string) ([]*model.Booking, error) {
			if roomID == testRoomID {
				return []*model.Booking{{ID: "b1", RoomID: roomID, Status: model.BookingStatusConfirmed}}, nil
			}
			return []*model.Booking{}, nil
		},
	}

	rooms, err := newTestService(repo, lister).GetAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rooms) != 2 {
		t.Fatalf("expected 2 rooms, got %d", len(rooms))
	}
	if len(rooms[0].Bookings) != 1 {
		t.Errorf("expected 1 attached booking on %s, got %d", rooms[0].ID, len(rooms[0].Bookings))
	}
	if len(rooms[1].Bookings) != 0 {
		t.Errorf("expected no attached bookings on %s, got %d", rooms[1].ID, len(rooms[1].Bookings))
	}
}

func TestFilter_AttachesUpcomingBookings(t *testing.T) {
	repo := &mockRoomRepository{
		findByFilterFunc: func(ctx context.Context, filter repository.RoomFilter) ([]*model.Room, error) {
			return []*model.Room{{ID: testRoomID, Name: "Lab 204"}}, nil
		},
	}
	lister := &mockBookingLister{
		bookings: []*model.Booking{{ID: "b1", RoomID: testRoomID, Status: model.BookingStatusConfirmed}},
	}

	rooms, err := newTestService(repo, lister).Filter(context.Background(), repository.RoomFilter{MinCapacity: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rooms) != 1 || len(rooms[0].Bookings) != 1 {
		t.Errorf("expected filtered room to carry its bookings, got %+v", rooms)
	}
}

func TestFilter_PassesCriteria(t *testing.T) {
	var got repository.RoomFilter
	repo := &mockRoomRepository{
		findByFilterFunc: func(ctx context.Context, filter repository.RoomFilter) ([]*model.Room, error) {
			got = filter
			return []*model.Room{}, nil
		},
	}

	want := repository.RoomFilter{MinCapacity: 20, Location: "Building B", Amenities: []string{"projector"}}
	if _, err := newTestService(repo, nil).Filter(context.Background(), want); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.MinCapacity != want.MinCapacity || got.Location != want.Location || len(got.Amenities) != 1 {
		t.Errorf("filter not passed through: %+v", got)
	}
}

func TestUpdate_PartialFields(t *testing.T) {
	name := "Lab 205"
	repo := &mockRoomRepository{
		updateFunc: func(ctx context.Context, id string, update *model.RoomUpdate) (*model.Room, error) {
			return &model.Room{ID: id, Name: *update.Name}, nil
		},
	}

	room, err := newTestService(repo, nil).Update(context.Background(), testRoomID, &model.RoomUpdate{Name: &name})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if room.Name != name {
		t.Errorf("expected updated name %q, got %q", name, room.Name)
	}
}

func TestDelete_UnknownRoom(t *testing.T) {
	repo := &mockRoomRepository{
		deleteFunc: func(ctx context.Context, id string) error {
			return roomserrors.ErrNotFound
		},
	}

	err := newTestService(repo, nil).Delete(context.Background(), testRoomID)
	if err == nil {
		t.Fatal("expected not-found error")
	}
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeNotFound {
		t.Errorf("expected code %s, got %s", apperrors.CodeNotFound, appErr.Code)
	}
}
