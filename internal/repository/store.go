package repository

import (
	"context"
	"errors"
	"iter"

	"github.com/azizikri/claims-management/internal/domain"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrMalformedRecord is yielded by the List methods for a stored document
	// that lacks a required field. The sequence continues after it.
	ErrMalformedRecord = errors.New("malformed record")
)

// Store is the record store adapter: one collection per entity with
// insert-one, find-one by a single field and find-all. Insert methods return
// the store-generated identifier. A unique index violation is reported as
// the matching domain duplicate error.
type Store interface {
	Ping(ctx context.Context) error

	InsertClaim(ctx context.Context, claim domain.Claim) (string, error)
	FindClaimByDescription(ctx context.Context, description string) (domain.Claim, error)
	ListClaims(ctx context.Context) iter.Seq2[domain.Claim, error]

	InsertUser(ctx context.Context, user domain.User) (string, error)
	FindUserByEmail(ctx context.Context, email string) (domain.User, error)
	ListUsers(ctx context.Context) iter.Seq2[domain.User, error]

	InsertPolicy(ctx context.Context, policy domain.Policy) (string, error)
	FindPolicyByNumber(ctx context.Context, policyNumber string) (domain.Policy, error)
	ListPolicies(ctx context.Context) iter.Seq2[domain.Policy, error]
}

// Collection names and the document field carrying each unique key.
const (
	CollectionClaims   = "claims"
	CollectionUsers    = "users"
	CollectionPolicies = "policies"

	FieldDescription  = "description"
	FieldEmail        = "email"
	FieldPolicyNumber = "policyNumber"
)
