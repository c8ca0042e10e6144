package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	studentserrors "campusgate/internal/students/errors"
	"campusgate/pkg/config"
	"campusgate/pkg/credentials"
	apperrors "campusgate/pkg/errors"
	"campusgate/pkg/logger"
	"campusgate/pkg/model"
	"campusgate/pkg/token"
)

type mockStudentRepository struct {
	findByIDFunc func(ctx context.Context, studentID string) (*model.Student, error)
	findAllFunc  func(ctx context.Context) ([]*model.Student, error)
}

func (m *mockStudentRepository) FindByID(ctx context.Context, studentID string) (*model.Student, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, studentID)
	}
	return nil, studentserrors.ErrNotFound
}

func (m *mockStudentRepository) FindByIDs(ctx context.Context, studentIDs []string) (map[string]*model.Student, error) {
	return map[string]*model.Student{}, nil
}

func (m *mockStudentRepository) FindAll(ctx context.Context) ([]*model.Student, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx)
	}
	return []*model.Student{}, nil
}

func (m *mockStudentRepository) Exists(ctx context.Context, studentID string) (bool, error) {
	return false, nil
}

func testService(t *testing.T, repo *mockStudentRepository) (StudentService, *token.Manager) {
	t.Helper()

	tokens, err := token.NewManager("0123456789abcdef0123456789abcdef", 8*time.Hour, 720*time.Hour)
	if err != nil {
		t.Fatalf("failed to build token manager: %v", err)
	}
	cfg := &config.Config{
		Log: logger.New(logger.Config{Level: "error", Format: logger.JSON, Service: "test"}),
	}
	return NewStudentService(repo, tokens, cfg), tokens
}

func TestLogin(t *testing.T) {
	hash, err := credentials.Hash("open-sesame")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	student := &model.Student{
		StudentID:    "S1001",
		Name:         "Priya Nair",
		Course:       "Physics",
		PasswordHash: hash,
	}
	repo := &mockStudentRepository{
		findByIDFunc: func(ctx context.Context, studentID string) (*model.Student, error) {
			if studentID == student.StudentID {
				return student, nil
			}
			return nil, studentserrors.ErrNotFound
		},
	}

	svc, tokens := testService(t, repo)

	t.Run("issues a scannable token", func(t *testing.T) {
		result, err := svc.Login(context.Background(), "S1001", "open-sesame")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		claims, err := tokens.VerifyScan(result.Token)
		if err != nil {
			t.Fatalf("issued token failed scan verification: %v", err)
		}
		if claims.StudentID != "S1001" || claims.StudentName != "Priya Nair" || claims.Course != "Physics" {
			t.Errorf("unexpected claims: %+v", claims)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(context.Background(), "S1001", "wrong")
		if err == nil {
			t.Fatal("expected error for wrong password")
		}
		if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeUnauthorized {
			t.Errorf("expected code %s, got %s", apperrors.CodeUnauthorized, appErr.Code)
		}
	})

	t.Run("unknown student looks like wrong password", func(t *testing.T) {
		_, err := svc.Login(context.Background(), "S9999", "open-sesame")
		if err == nil {
			t.Fatal("expected error for unknown student")
		}
		appErr := apperrors.AsAppError(err)
		if appErr.Code != apperrors.CodeUnauthorized {
			t.Errorf("expected code %s, got %s", apperrors.CodeUnauthorized, appErr.Code)
		}
		if appErr.Message != "Invalid credentials" {
			t.Errorf("unknown-student message must not leak existence, got %q", appErr.Message)
		}
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := svc.Login(context.Background(), "", "")
		if err == nil {
			t.Fatal("expected error for missing fields")
		}
		if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeInvalidInput {
			t.Errorf("expected code %s, got %s", apperrors.CodeInvalidInput, appErr.Code)
		}
	})
}

func TestListAll_NeverExposesPasswordHash(t *testing.T) {
	repo := &mockStudentRepository{
		findAllFunc: func(ctx context.Context) ([]*model.Student, error) {
			return []*model.Student{
				{StudentID: "S1001", Name: "Priya Nair", PasswordHash: "$2a$12$secret"},
			}, nil
		},
	}

	svc, _ := testService(t, repo)
	students, err := svc.ListAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(students) != 1 {
		t.Fatalf("expected 1 student, got %d", len(students))
	}

	body, err := json.Marshal(students)
	if err != nil {
		t.Fatalf("failed to marshal students: %v", err)
	}
	if strings.Contains(string(body), "secret") {
		t.Errorf("serialized listing leaks the password hash: %s", body)
	}
}
