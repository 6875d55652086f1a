package usecase

import (
	"context"
	"errors"
	"iter"
	"log/slog"
	"strings"

	"github.com/asaskevich/govalidator"

	"github.com/azizikri/claims-management/internal/domain"
	"github.com/azizikri/claims-management/internal/metrics"
	"github.com/azizikri/claims-management/internal/repository"
)

// RecordService validates candidate records against the current store state
// before inserting them.
//
// The lookups and the insert are not atomic. The store's unique indexes are
// the authority on duplicates: a concurrent writer that slips between check
// and insert still gets the duplicate error from the insert.
type RecordService struct {
	store   repository.Store
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewRecordService(store repository.Store, m *metrics.Metrics, logger *slog.Logger) *RecordService {
	return &RecordService{store: store, metrics: m, logger: logger}
}

func (s *RecordService) CreateClaim(ctx context.Context, claim domain.Claim) (*domain.Claim, error) {
	if err := checkClaimFields(claim); err != nil {
		return nil, s.reject(domain.KindClaim, err)
	}

	_, err := s.store.FindClaimByDescription(ctx, claim.Description)
	exists, err := found(err)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, s.reject(domain.KindClaim, domain.ErrDuplicateDescription)
	}

	if claim.PolicyNumber != "" {
		policy, err := s.store.FindPolicyByNumber(ctx, claim.PolicyNumber)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, s.reject(domain.KindClaim, domain.ErrPolicyNotFound)
			}
			return nil, err
		}
		if claim.Amount.GreaterThan(policy.Amount) {
			return nil, s.reject(domain.KindClaim, domain.ErrAmountExceedsPolicy)
		}
	}

	id, err := s.store.InsertClaim(ctx, claim)
	if err != nil {
		return nil, s.reject(domain.KindClaim, err)
	}
	claim.ID = id
	s.created(domain.KindClaim, id)
	return &claim, nil
}

func (s *RecordService) CreateUser(ctx context.Context, user domain.User) (*domain.User, error) {
	switch {
	case blank(user.Name):
		return nil, s.reject(domain.KindUser, domain.MissingField("name"))
	case blank(user.Email):
		return nil, s.reject(domain.KindUser, domain.MissingField("email"))
	}

	_, err := s.store.FindUserByEmail(ctx, user.Email)
	exists, err := found(err)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, s.reject(domain.KindUser, domain.ErrDuplicateEmail)
	}

	if !govalidator.IsEmail(user.Email) {
		return nil, s.reject(domain.KindUser, domain.ErrInvalidEmailFormat)
	}

	id, err := s.store.InsertUser(ctx, user)
	if err != nil {
		return nil, s.reject(domain.KindUser, err)
	}
	user.ID = id
	s.created(domain.KindUser, id)
	return &user, nil
}

func (s *RecordService) CreatePolicy(ctx context.Context, policy domain.Policy) (*domain.Policy, error) {
	switch {
	case blank(policy.PolicyNumber):
		return nil, s.reject(domain.KindPolicy, domain.MissingField("policyNumber"))
	case blank(policy.PolicyType):
		return nil, s.reject(domain.KindPolicy, domain.MissingField("policyType"))
	}

	_, err := s.store.FindPolicyByNumber(ctx, policy.PolicyNumber)
	exists, err := found(err)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, s.reject(domain.KindPolicy, domain.ErrDuplicatePolicyNumber)
	}

	if !policy.Amount.IsPositive() {
		return nil, s.reject(domain.KindPolicy, domain.ErrNonPositiveAmount)
	}

	id, err := s.store.InsertPolicy(ctx, policy)
	if err != nil {
		return nil, s.reject(domain.KindPolicy, err)
	}
	policy.ID = id
	s.created(domain.KindPolicy, id)
	return &policy, nil
}

func (s *RecordService) ListClaims(ctx context.Context) ([]domain.Claim, error) {
	return collect(s, domain.KindClaim, s.store.ListClaims(ctx))
}

func (s *RecordService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return collect(s, domain.KindUser, s.store.ListUsers(ctx))
}

func (s *RecordService) ListPolicies(ctx context.Context) ([]domain.Policy, error) {
	return collect(s, domain.KindPolicy, s.store.ListPolicies(ctx))
}

// collect drains seq. Malformed stored records are dropped and logged; any
// other error fails the whole listing.
func collect[T any](s *RecordService, kind string, seq iter.Seq2[T, error]) ([]T, error) {
	records := make([]T, 0)
	for record, err := range seq {
		if err != nil {
			if errors.Is(err, repository.ErrMalformedRecord) {
				s.logger.Warn("dropping malformed record from listing", "kind", kind, "error", err)
				s.metrics.IncrementRecordsDropped(kind)
				continue
			}
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func checkClaimFields(claim domain.Claim) error {
	switch {
	case blank(claim.Description):
		return domain.MissingField("description")
	case blank(claim.Status):
		return domain.MissingField("status")
	case claim.Amount.IsNegative():
		return domain.ErrNegativeAmount
	}
	return nil
}

// found turns the error of a find-one lookup into an existence answer. A
// stored record that fails to decode still occupies its key.
func found(err error) (bool, error) {
	switch {
	case err == nil, errors.Is(err, repository.ErrMalformedRecord):
		return true, nil
	case errors.Is(err, repository.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// reject counts validation failures and passes every error through.
func (s *RecordService) reject(kind string, err error) error {
	if code, ok := domain.ValidationCode(err); ok {
		s.metrics.IncrementValidationRejections(kind, code)
		s.logger.Debug("record rejected", "kind", kind, "code", code)
	}
	return err
}

func (s *RecordService) created(kind, id string) {
	s.metrics.IncrementRecordsCreated(kind)
	s.logger.Info("record created", "kind", kind, "id", id)
}
