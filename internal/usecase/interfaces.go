package usecase

import (
	"context"

	"github.com/azizikri/claims-management/internal/domain"
)

// RecordGateway is what the HTTP transport calls. It is implemented in-process
// by the direct gateway and over Kafka by the event-driven gateway.
type RecordGateway interface {
	CreateClaim(ctx context.Context, claim domain.Claim) (*domain.Claim, error)
	ListClaims(ctx context.Context) ([]domain.Claim, error)
	CreateUser(ctx context.Context, user domain.User) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	CreatePolicy(ctx context.Context, policy domain.Policy) (*domain.Policy, error)
	ListPolicies(ctx context.Context) ([]domain.Policy, error)
}
