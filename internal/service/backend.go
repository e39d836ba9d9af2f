package service

import (
	"context"

	"github.com/spec-kit/logistics-console/internal/backend"
	"github.com/spec-kit/logistics-console/internal/domain"
)

// AuthBackend is the slice of the logistics API used by AuthService.
type AuthBackend interface {
	Register(ctx context.Context, req backend.RegisterRequest) (*backend.MessageResponse, error)
	ConfirmEmail(ctx context.Context, token string) (*backend.MessageResponse, error)
	Login(ctx context.Context, email, password string) (*backend.LoginResult, error)
	SetInitialPassword(ctx context.Context, token string, req backend.SetInitialPasswordRequest) (*backend.MessageResponse, error)
	ForgotPassword(ctx context.Context, email string) (*backend.ForgotPasswordResult, error)
	ResetPassword(ctx context.Context, req backend.ResetPasswordRequest) (*backend.MessageResponse, error)
	Me(ctx context.Context, token string) (*domain.User, error)
}

// ShipmentBackend is the slice of the logistics API used by ShipmentService.
type ShipmentBackend interface {
	CreateShipment(ctx context.Context, token string, req backend.CreateShipmentRequest) (*backend.CreateShipmentResult, error)
	ListShipments(ctx context.Context, token string) ([]domain.Shipment, error)
	ListAssignedShipments(ctx context.Context, token string) ([]domain.Shipment, error)
	ListUserShipments(ctx context.Context, token, userID string) ([]domain.Shipment, error)
	GetShipment(ctx context.Context, token, id string) (*domain.Shipment, error)
	UpdateShipmentStatus(ctx context.Context, token, id string, status domain.ShipmentStatus, note string) (*domain.Shipment, error)
	AssignDriver(ctx context.Context, token, id, driverID string) (*domain.Shipment, error)
	ShipmentStatistics(ctx context.Context, token string) (*domain.ShipmentStatistics, error)
	FetchOrderHistory(ctx context.Context, token, orderID string) ([]domain.OrderHistoryEntry, error)
}

// DriverBackend is the slice of the logistics API used by DriverService.
type DriverBackend interface {
	ListDrivers(ctx context.Context, token string) ([]domain.User, error)
	CreateDriver(ctx context.Context, token, email, fullName string) (*domain.User, error)
}
