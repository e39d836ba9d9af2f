package service

import (
	"context"
	"sync"

	"github.com/spec-kit/logistics-console/internal/backend"
	"github.com/spec-kit/logistics-console/internal/domain"
)

// fakeBackend implements AuthBackend, ShipmentBackend and DriverBackend.
type fakeBackend struct {
	mu    sync.Mutex
	calls []string

	loginResult *backend.LoginResult
	loginErr    error
	err         error

	shipment  *domain.Shipment
	shipments []domain.Shipment
	history   []domain.OrderHistoryEntry

	lastToken         string
	lastUserID        string
	lastInitial       backend.SetInitialPasswordRequest
	lastCreate        backend.CreateShipmentRequest
	lastDriverName    string
	lastStatusRequest domain.ShipmentStatus
}

func (f *fakeBackend) record(call, token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	f.lastToken = token
}

func (f *fakeBackend) called() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeBackend) Register(_ context.Context, req backend.RegisterRequest) (*backend.MessageResponse, error) {
	f.record("register", "")
	if f.err != nil {
		return nil, f.err
	}
	return &backend.MessageResponse{Message: "registered " + req.Email}, nil
}

func (f *fakeBackend) ConfirmEmail(_ context.Context, token string) (*backend.MessageResponse, error) {
	f.record("confirm", "")
	return &backend.MessageResponse{Message: "confirmed"}, f.err
}

func (f *fakeBackend) Login(context.Context, string, string) (*backend.LoginResult, error) {
	f.record("login", "")
	return f.loginResult, f.loginErr
}

func (f *fakeBackend) SetInitialPassword(_ context.Context, token string, req backend.SetInitialPasswordRequest) (*backend.MessageResponse, error) {
	f.record("set-initial-password", token)
	f.lastInitial = req
	if f.err != nil {
		return nil, f.err
	}
	return &backend.MessageResponse{Message: "password updated"}, nil
}

func (f *fakeBackend) ForgotPassword(_ context.Context, email string) (*backend.ForgotPasswordResult, error) {
	f.record("forgot", "")
	return &backend.ForgotPasswordResult{Message: "sent", UserExists: true}, f.err
}

func (f *fakeBackend) ResetPassword(context.Context, backend.ResetPasswordRequest) (*backend.MessageResponse, error) {
	f.record("reset", "")
	return &backend.MessageResponse{Message: "reset"}, f.err
}

func (f *fakeBackend) Me(_ context.Context, token string) (*domain.User, error) {
	f.record("me", token)
	return &domain.User{ID: "u-1", Email: "ana@example.com"}, f.err
}

func (f *fakeBackend) CreateShipment(_ context.Context, token string, req backend.CreateShipmentRequest) (*backend.CreateShipmentResult, error) {
	f.record("create", token)
	f.lastCreate = req
	if f.err != nil {
		return nil, f.err
	}
	return &backend.CreateShipmentResult{ID: "s-1", Status: domain.ShipmentStatusPending}, nil
}

func (f *fakeBackend) ListShipments(_ context.Context, token string) ([]domain.Shipment, error) {
	f.record("list-all", token)
	return f.shipments, f.err
}

func (f *fakeBackend) ListAssignedShipments(_ context.Context, token string) ([]domain.Shipment, error) {
	f.record("list-assigned", token)
	return f.shipments, f.err
}

func (f *fakeBackend) ListUserShipments(_ context.Context, token, userID string) ([]domain.Shipment, error) {
	f.record("list-user", token)
	f.lastUserID = userID
	return f.shipments, f.err
}

func (f *fakeBackend) GetShipment(_ context.Context, token, id string) (*domain.Shipment, error) {
	f.record("get", token)
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Shipment{ID: id}, nil
}

func (f *fakeBackend) UpdateShipmentStatus(_ context.Context, token, id string, status domain.ShipmentStatus, note string) (*domain.Shipment, error) {
	f.record("update-status", token)
	f.lastStatusRequest = status
	if f.err != nil {
		return nil, f.err
	}
	if f.shipment != nil {
		return f.shipment, nil
	}
	return &domain.Shipment{ID: id, Status: status}, nil
}

func (f *fakeBackend) AssignDriver(_ context.Context, token, id, driverID string) (*domain.Shipment, error) {
	f.record("assign", token)
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Shipment{ID: id, Status: domain.ShipmentStatusAssigned, DriverID: &driverID}, nil
}

func (f *fakeBackend) ShipmentStatistics(_ context.Context, token string) (*domain.ShipmentStatistics, error) {
	f.record("statistics", token)
	return &domain.ShipmentStatistics{TotalShipments: 3}, f.err
}

func (f *fakeBackend) FetchOrderHistory(_ context.Context, token, orderID string) ([]domain.OrderHistoryEntry, error) {
	f.record("history", token)
	return f.history, f.err
}

func (f *fakeBackend) ListDrivers(_ context.Context, token string) ([]domain.User, error) {
	f.record("list-drivers", token)
	return nil, f.err
}

func (f *fakeBackend) CreateDriver(_ context.Context, token, email, fullName string) (*domain.User, error) {
	f.record("create-driver", token)
	f.lastDriverName = fullName
	if f.err != nil {
		return nil, f.err
	}
	return &domain.User{ID: "d-1", Email: email, FullName: fullName, Role: domain.RoleDriver, RequiresPasswordChange: true}, nil
}

type capturedPublisher struct {
	mu     sync.Mutex
	events []domain.OrderStatusEvent
}

func (p *capturedPublisher) PublishEvent(_ context.Context, event domain.OrderStatusEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturedPublisher) all() []domain.OrderStatusEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.OrderStatusEvent(nil), p.events...)
}

func session(role domain.Role) *domain.Session {
	return &domain.Session{
		ID:         "sess-1",
		KeyHash:    "hash-1",
		UserID:     "u-1",
		Email:      "ana@example.com",
		Role:       role,
		Kind:       domain.SessionKindFull,
		BackendJWT: "jwt-" + string(role),
	}
}
