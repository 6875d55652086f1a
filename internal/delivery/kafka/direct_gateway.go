package kafka

import (
	"context"

	"github.com/azizikri/claims-management/internal/domain"
	"github.com/azizikri/claims-management/internal/usecase"
)

// DirectGateway calls the record service in-process. It is used when event
// driven mode is off.
type DirectGateway struct {
	service *usecase.RecordService
}

func NewDirectGateway(service *usecase.RecordService) usecase.RecordGateway {
	return &DirectGateway{service: service}
}

func (g *DirectGateway) CreateClaim(ctx context.Context, claim domain.Claim) (*domain.Claim, error) {
	return g.service.CreateClaim(ctx, claim)
}

func (g *DirectGateway) ListClaims(ctx context.Context) ([]domain.Claim, error) {
	return g.service.ListClaims(ctx)
}

func (g *DirectGateway) CreateUser(ctx context.Context, user domain.User) (*domain.User, error) {
	return g.service.CreateUser(ctx, user)
}

func (g *DirectGateway) ListUsers(ctx context.Context) ([]domain.User, error) {
	return g.service.ListUsers(ctx)
}

func (g *DirectGateway) CreatePolicy(ctx context.Context, policy domain.Policy) (*domain.Policy, error) {
	return g.service.CreatePolicy(ctx, policy)
}

func (g *DirectGateway) ListPolicies(ctx context.Context) ([]domain.Policy, error) {
	return g.service.ListPolicies(ctx)
}
