package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/azizikri/claims-management/internal/domain"
	"github.com/azizikri/claims-management/internal/metrics"
	"github.com/azizikri/claims-management/internal/repository"
	"github.com/azizikri/claims-management/internal/repository/mocks"
)

func newTestService(t *testing.T) (*RecordService, *mocks.MockStore, *metrics.Metrics) {
	t.Helper()
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	m := metrics.New(prometheus.NewRegistry())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRecordService(store, m, logger), store, m
}

func seqOf[T any](items ...T) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for _, item := range items {
			if !yield(item, nil) {
				return
			}
		}
	}
}

var errDial = fmt.Errorf("%w: dial tcp 127.0.0.1:5432: connection refused", domain.ErrStoreUnavailable)

func TestCreateClaim_Success(t *testing.T) {
	svc, store, m := newTestService(t)
	ctx := context.Background()
	claim := domain.Claim{Description: "fender", Status: "open", Amount: decimal.NewFromInt(500), PolicyNumber: "P1"}

	store.EXPECT().FindClaimByDescription(ctx, "fender").Return(domain.Claim{}, repository.ErrNotFound)
	store.EXPECT().FindPolicyByNumber(ctx, "P1").Return(domain.Policy{ID: "p-1", PolicyNumber: "P1", Amount: decimal.NewFromInt(1000)}, nil)
	store.EXPECT().InsertClaim(ctx, claim).Return("c-1", nil)

	created, err := svc.CreateClaim(ctx, claim)
	require.NoError(t, err)
	assert.Equal(t, "c-1", created.ID)
	assert.Equal(t, "fender", created.Description)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RecordsCreated.WithLabelValues(domain.KindClaim)))
}

func TestCreateClaim_AmountEqualToPolicyIsAccepted(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	claim := domain.Claim{Description: "roof", Status: "open", Amount: decimal.NewFromInt(1000), PolicyNumber: "P1"}

	store.EXPECT().FindClaimByDescription(ctx, "roof").Return(domain.Claim{}, repository.ErrNotFound)
	store.EXPECT().FindPolicyByNumber(ctx, "P1").Return(domain.Policy{PolicyNumber: "P1", Amount: decimal.RequireFromString("1000.00")}, nil)
	store.EXPECT().InsertClaim(ctx, claim).Return("c-2", nil)

	_, err := svc.CreateClaim(ctx, claim)
	require.NoError(t, err)
}

func TestCreateClaim_WithoutPolicySkipsReferentialChecks(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	claim := domain.Claim{Description: "window", Status: "open"}

	store.EXPECT().FindClaimByDescription(ctx, "window").Return(domain.Claim{}, repository.ErrNotFound)
	store.EXPECT().InsertClaim(ctx, claim).Return("c-3", nil)

	created, err := svc.CreateClaim(ctx, claim)
	require.NoError(t, err)
	assert.Equal(t, "c-3", created.ID)
}

func TestCreateClaim_DuplicateDescription(t *testing.T) {
	svc, store, m := newTestService(t)
	ctx := context.Background()

	store.EXPECT().FindClaimByDescription(ctx, "fender").Return(domain.Claim{ID: "c-1", Description: "fender"}, nil)

	_, err := svc.CreateClaim(ctx, domain.Claim{Description: "fender", Status: "open", Amount: decimal.NewFromInt(100), PolicyNumber: "P1"})
	require.ErrorIs(t, err, domain.ErrDuplicateDescription)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ValidationRejections.WithLabelValues(domain.KindClaim, domain.CodeDuplicateDescription)))
}

func TestCreateClaim_MalformedExistingRecordCountsAsDuplicate(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	store.EXPECT().FindClaimByDescription(ctx, "fender").
		Return(domain.Claim{}, fmt.Errorf("%w: claims/c-1 has missing or invalid status", repository.ErrMalformedRecord))

	_, err := svc.CreateClaim(ctx, domain.Claim{Description: "fender", Status: "open"})
	require.ErrorIs(t, err, domain.ErrDuplicateDescription)
}

func TestCreateClaim_PolicyNotFound(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	store.EXPECT().FindClaimByDescription(ctx, "roof2").Return(domain.Claim{}, repository.ErrNotFound)
	store.EXPECT().FindPolicyByNumber(ctx, "P2").Return(domain.Policy{}, repository.ErrNotFound)

	_, err := svc.CreateClaim(ctx, domain.Claim{Description: "roof2", Status: "open", Amount: decimal.NewFromInt(100), PolicyNumber: "P2"})
	require.ErrorIs(t, err, domain.ErrPolicyNotFound)
}

func TestCreateClaim_AmountExceedsPolicy(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	store.EXPECT().FindClaimByDescription(ctx, "roof").Return(domain.Claim{}, repository.ErrNotFound)
	store.EXPECT().FindPolicyByNumber(ctx, "P1").Return(domain.Policy{PolicyNumber: "P1", Amount: decimal.NewFromInt(1000)}, nil)

	_, err := svc.CreateClaim(ctx, domain.Claim{Description: "roof", Status: "open", Amount: decimal.NewFromInt(2000), PolicyNumber: "P1"})
	require.ErrorIs(t, err, domain.ErrAmountExceedsPolicy)
}

func TestCreateClaim_FieldChecks(t *testing.T) {
	tests := []struct {
		name  string
		claim domain.Claim
		want  error
	}{
		{"blank description", domain.Claim{Description: "  ", Status: "open"}, domain.ErrMissingField},
		{"missing status", domain.Claim{Description: "fender"}, domain.ErrMissingField},
		{"negative amount", domain.Claim{Description: "fender", Status: "open", Amount: decimal.NewFromInt(-1)}, domain.ErrNegativeAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newTestService(t)
			_, err := svc.CreateClaim(context.Background(), tt.claim)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCreateClaim_StoreRaceReportedAsDuplicate(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	claim := domain.Claim{Description: "fender", Status: "open"}

	store.EXPECT().FindClaimByDescription(ctx, "fender").Return(domain.Claim{}, repository.ErrNotFound)
	store.EXPECT().InsertClaim(ctx, claim).Return("", domain.ErrDuplicateDescription)

	_, err := svc.CreateClaim(ctx, claim)
	require.ErrorIs(t, err, domain.ErrDuplicateDescription)
}

func TestCreateClaim_StoreUnavailable(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	store.EXPECT().FindClaimByDescription(ctx, "fender").Return(domain.Claim{}, errDial)

	_, err := svc.CreateClaim(ctx, domain.Claim{Description: "fender", Status: "open"})
	require.ErrorIs(t, err, domain.ErrStoreUnavailable)
	_, isValidation := domain.ValidationCode(err)
	assert.False(t, isValidation)
}

func TestCreateUser_Success(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	user := domain.User{Name: "Ada", Email: "ada@example.com"}

	store.EXPECT().FindUserByEmail(ctx, "ada@example.com").Return(domain.User{}, repository.ErrNotFound)
	store.EXPECT().InsertUser(ctx, user).Return("u-1", nil)

	created, err := svc.CreateUser(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, domain.User{ID: "u-1", Name: "Ada", Email: "ada@example.com"}, *created)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	store.EXPECT().FindUserByEmail(ctx, "ada@example.com").Return(domain.User{ID: "u-1"}, nil)

	_, err := svc.CreateUser(ctx, domain.User{Name: "Ada", Email: "ada@example.com"})
	require.ErrorIs(t, err, domain.ErrDuplicateEmail)
}

func TestCreateUser_InvalidEmailFormat(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	store.EXPECT().FindUserByEmail(ctx, "not-an-email").Return(domain.User{}, repository.ErrNotFound)

	_, err := svc.CreateUser(ctx, domain.User{Name: "Ada", Email: "not-an-email"})
	require.ErrorIs(t, err, domain.ErrInvalidEmailFormat)
}

func TestCreateUser_MissingFields(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.CreateUser(context.Background(), domain.User{Email: "ada@example.com"})
	require.ErrorIs(t, err, domain.ErrMissingField)
	assert.Contains(t, err.Error(), "name")

	_, err = svc.CreateUser(context.Background(), domain.User{Name: "Ada"})
	require.ErrorIs(t, err, domain.ErrMissingField)
	assert.Contains(t, err.Error(), "email")
}

func TestCreatePolicy_Success(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	policy := domain.Policy{PolicyNumber: "P1", PolicyType: "auto", Amount: decimal.NewFromInt(1000)}

	store.EXPECT().FindPolicyByNumber(ctx, "P1").Return(domain.Policy{}, repository.ErrNotFound)
	store.EXPECT().InsertPolicy(ctx, policy).Return("p-1", nil)

	created, err := svc.CreatePolicy(ctx, policy)
	require.NoError(t, err)
	assert.Equal(t, "p-1", created.ID)
}

func TestCreatePolicy_NonPositiveAmount(t *testing.T) {
	for _, amount := range []string{"0", "-0.01", "-1000"} {
		t.Run(amount, func(t *testing.T) {
			svc, store, _ := newTestService(t)
			ctx := context.Background()

			store.EXPECT().FindPolicyByNumber(ctx, "P1").Return(domain.Policy{}, repository.ErrNotFound)

			_, err := svc.CreatePolicy(ctx, domain.Policy{PolicyNumber: "P1", PolicyType: "auto", Amount: decimal.RequireFromString(amount)})
			require.ErrorIs(t, err, domain.ErrNonPositiveAmount)
		})
	}
}

func TestCreatePolicy_DuplicateCheckedBeforeAmount(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	store.EXPECT().FindPolicyByNumber(ctx, "P1").Return(domain.Policy{ID: "p-1"}, nil)

	_, err := svc.CreatePolicy(ctx, domain.Policy{PolicyNumber: "P1", PolicyType: "auto", Amount: decimal.Zero})
	require.ErrorIs(t, err, domain.ErrDuplicatePolicyNumber)
}

func TestCreatePolicy_StoreWriteError(t *testing.T) {
	svc, store, m := newTestService(t)
	ctx := context.Background()
	policy := domain.Policy{PolicyNumber: "P1", PolicyType: "auto", Amount: decimal.NewFromInt(1)}
	writeErr := fmt.Errorf("%w: insert into policies: disk full", domain.ErrStoreWrite)

	store.EXPECT().FindPolicyByNumber(ctx, "P1").Return(domain.Policy{}, repository.ErrNotFound)
	store.EXPECT().InsertPolicy(ctx, policy).Return("", writeErr)

	_, err := svc.CreatePolicy(ctx, policy)
	require.ErrorIs(t, err, domain.ErrStoreWrite)
	assert.Equal(t, 0, testutil.CollectAndCount(m.ValidationRejections))
}

func TestListClaims_DropsMalformedRecords(t *testing.T) {
	svc, store, m := newTestService(t)
	ctx := context.Background()

	store.EXPECT().ListClaims(ctx).Return(func(yield func(domain.Claim, error) bool) {
		if !yield(domain.Claim{ID: "c-1", Description: "fender", Status: "open"}, nil) {
			return
		}
		if !yield(domain.Claim{}, fmt.Errorf("%w: claims/c-2 has missing or invalid description", repository.ErrMalformedRecord)) {
			return
		}
		yield(domain.Claim{ID: "c-3", Description: "roof", Status: "open"}, nil)
	})

	claims, err := svc.ListClaims(ctx)
	require.NoError(t, err)
	require.Len(t, claims, 2)
	assert.Equal(t, "c-1", claims[0].ID)
	assert.Equal(t, "c-3", claims[1].ID)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RecordsDropped.WithLabelValues(domain.KindClaim)))
}

func TestListUsers_StoreFailureFailsListing(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	store.EXPECT().ListUsers(ctx).Return(func(yield func(domain.User, error) bool) {
		if !yield(domain.User{ID: "u-1", Name: "Ada", Email: "ada@example.com"}, nil) {
			return
		}
		yield(domain.User{}, errDial)
	})

	users, err := svc.ListUsers(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStoreUnavailable))
	assert.Nil(t, users)
}

func TestListPolicies_EmptyIsNotNil(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	store.EXPECT().ListPolicies(ctx).Return(seqOf[domain.Policy]())

	policies, err := svc.ListPolicies(ctx)
	require.NoError(t, err)
	assert.NotNil(t, policies)
	assert.Empty(t, policies)
}

func TestListUsers_ReturnsAll(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	store.EXPECT().ListUsers(ctx).Return(seqOf(
		domain.User{ID: "u-1", Name: "Ada", Email: "ada@example.com"},
		domain.User{ID: "u-2", Name: "Grace", Email: "grace@example.com"},
	))

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}
