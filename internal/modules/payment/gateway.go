package payment

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Gateway is the provider-agnostic interface a hosted checkout adapter implements.
type Gateway interface {
	// CreateSession registers a payment with the provider and returns the
	// hosted page the customer pays on.
	CreateSession(ctx context.Context, req *GatewayRequest) (*GatewaySession, error)
	// Retrieve queries the provider for the current state of a session.
	Retrieve(ctx context.Context, providerRef string) (*GatewaySession, error)
}

// GatewayRequest describes the payment to collect.
type GatewayRequest struct {
	SessionID  uuid.UUID
	Amount     decimal.Decimal
	Currency   string
	SuccessURL string
	CancelURL  string
}

// GatewaySession is what a gateway reports about a hosted checkout.
type GatewaySession struct {
	ProviderRef    string
	URL            string
	ProviderStatus string
}

// NormaliseStatus maps a provider status string to a SessionStatus.
func NormaliseStatus(providerStatus string) SessionStatus {
	switch strings.ToLower(providerStatus) {
	case "complete", "paid", "succeeded":
		return SessionPaid
	case "expired", "canceled", "cancelled":
		return SessionExpired
	default:
		return SessionPending
	}
}

// sandboxGateway stands in for the hosted checkout provider. Pages live at
// <baseURL>/pay/<session id>; sessions report "complete" once created unless
// SetStatus says otherwise.
type sandboxGateway struct {
	baseURL  string
	mu       sync.Mutex
	statuses map[string]string
}

// SandboxGateway exposes the sandbox's test hook alongside the Gateway methods.
type SandboxGateway interface {
	Gateway
	SetStatus(providerRef, status string)
}

func NewSandboxGateway(baseURL string) SandboxGateway {
	return &sandboxGateway{baseURL: strings.TrimRight(baseURL, "/"), statuses: map[string]string{}}
}

func (g *sandboxGateway) CreateSession(ctx context.Context, req *GatewayRequest) (*GatewaySession, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("amount must be greater than 0")
	}
	ref := "cs_sandbox_" + req.SessionID.String()
	g.mu.Lock()
	g.statuses[ref] = "complete"
	g.mu.Unlock()
	return &GatewaySession{
		ProviderRef:    ref,
		URL:            fmt.Sprintf("%s/pay/%s", g.baseURL, req.SessionID),
		ProviderStatus: "open",
	}, nil
}

func (g *sandboxGateway) Retrieve(ctx context.Context, providerRef string) (*GatewaySession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	status, ok := g.statuses[providerRef]
	if !ok {
		return nil, fmt.Errorf("sandbox: unknown session %q", providerRef)
	}
	return &GatewaySession{ProviderRef: providerRef, ProviderStatus: status}, nil
}

func (g *sandboxGateway) SetStatus(providerRef, status string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.statuses[providerRef] = status
}
