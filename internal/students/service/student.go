package service

import (
	"context"
	"errors"

	studentserrors "campusgate/internal/students/errors"
	"campusgate/internal/students/repository"
	"campusgate/pkg/config"
	"campusgate/pkg/credentials"
	apperrors "campusgate/pkg/errors"
	"campusgate/pkg/model"
	"campusgate/pkg/token"
)

// LoginResult carries the signed token together with the student it
// asserts. The same token serves API calls and the gate scanner.
type LoginResult struct {
	Token   string         `json:"token"`
	Student *model.Student `json:"student"`
}

type StudentService interface {
	Login(ctx context.Context, studentID, password string) (*LoginResult, error)
	ListAll(ctx context.Context) ([]*model.Student, error)
	FindByIDs(ctx context.Context, studentIDs []string) (map[string]*model.Student, error)
	Exists(ctx context.Context, studentID string) (bool, error)
}

type studentService struct {
	repo   repository.StudentRepository
	tokens *token.Manager
	cfg    *config.Config
}

func NewStudentService(repo repository.StudentRepository, tokens *token.Manager, cfg *config.Config) StudentService {
	return &studentService{
		repo:   repo,
		tokens: tokens,
		cfg:    cfg,
	}
}

// Login verifies the student's password and issues the long-lived
// student token. Unknown student and wrong password are
// indistinguishable to the caller.
func (s *studentService) Login(ctx context.Context, studentID, password string) (*LoginResult, error) {
	if studentID == "" || password == "" {
		return nil, apperrors.InvalidInput("Student ID and password are required")
	}

	student, err := s.repo.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, studentserrors.ErrNotFound) {
			return nil, apperrors.Unauthorized("Invalid credentials")
		}
		return nil, apperrors.Internal("Failed to retrieve student", err)
	}

	if err := credentials.Compare(student.PasswordHash, password); err != nil {
		if errors.Is(err, credentials.ErrMismatch) {
			s.cfg.Log.Warn("Student login rejected", "student_id", studentID)
			return nil, apperrors.Unauthorized("Invalid credentials")
		}
		return nil, apperrors.Internal("Failed to verify credentials", err)
	}

	signed, err := s.tokens.SignStudent(student.StudentID, student.Name, student.Course)
	if err != nil {
		return nil, apperrors.Internal("Failed to sign student token", err)
	}

	s.cfg.Log.Info("Student logged in", "student_id", student.StudentID)
	return &LoginResult{Token: signed, Student: student}, nil
}

func (s *studentService) ListAll(ctx context.Context) ([]*model.Student, error) {
	students, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve students", err)
	}
	return students, nil
}

func (s *studentService) FindByIDs(ctx context.Context, studentIDs []string) (map[string]*model.Student, error) {
	return s.repo.FindByIDs(ctx, studentIDs)
}

func (s *studentService) Exists(ctx context.Context, studentID string) (bool, error) {
	return s.repo.Exists(ctx, studentID)
}
