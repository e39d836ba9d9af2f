package service

import (
	"context"
	"strings"

	"github.com/spec-kit/logistics-console/internal/domain"
)

// DriverService manages the driver roster.
type DriverService struct {
	backend DriverBackend
}

// NewDriverService constructs the service.
func NewDriverService(b DriverBackend) *DriverService {
	return &DriverService{backend: b}
}

// CreateDriverInput describes a new driver account.
type CreateDriverInput struct {
	Email     string
	FirstName string
	LastName  string
}

// List returns every driver.
func (s *DriverService) List(ctx context.Context, session *domain.Session) ([]domain.User, error) {
	drivers, err := s.backend.ListDrivers(ctx, session.BackendJWT)
	if err != nil {
		return nil, err
	}
	if drivers == nil {
		drivers = []domain.User{}
	}
	return drivers, nil
}

// Create registers a driver. The backend mails a temporary password and the
// driver must replace it on first login.
func (s *DriverService) Create(ctx context.Context, session *domain.Session, input CreateDriverInput) (*domain.User, error) {
	errs := fieldErrors{}
	errs.email("email", input.Email)
	errs.require("first_name", input.FirstName)
	errs.require("last_name", input.LastName)
	if err := errs.err(); err != nil {
		return nil, err
	}

	fullName := strings.TrimSpace(input.FirstName) + " " + strings.TrimSpace(input.LastName)
	return s.backend.CreateDriver(ctx, session.BackendJWT, strings.TrimSpace(input.Email), fullName)
}
