package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/azizikri/claims-management/internal/domain"
)

// storeSuite holds the behaviour every Store backend shares. Backend suites
// embed it and set store and insertRaw in their setup.
type storeSuite struct {
	suite.Suite
	ctx   context.Context
	store Store
	// insertRaw writes a JSON document to a collection without going through
	// the Store, to simulate records written by other revisions.
	insertRaw func(collection, raw string)
}

func (s *storeSuite) TestClaims() {
	claim := domain.Claim{
		Description:  "fender",
		Status:       "open",
		Amount:       decimal.RequireFromString("500.25"),
		PolicyNumber: "P1",
	}

	s.Run("insert assigns an identifier", func() {
		id, err := s.store.InsertClaim(s.ctx, claim)
		s.Require().NoError(err)
		s.NotEmpty(id)
		claim.ID = id
	})

	s.Run("find by description returns the stored fields", func() {
		found, err := s.store.FindClaimByDescription(s.ctx, "fender")
		s.Require().NoError(err)
		s.Equal(claim.ID, found.ID)
		s.Equal("open", found.Status)
		s.Equal("P1", found.PolicyNumber)
		s.True(claim.Amount.Equal(found.Amount), "amount %s", found.Amount)
	})

	s.Run("duplicate description is rejected by the store", func() {
		_, err := s.store.InsertClaim(s.ctx, domain.Claim{Description: "fender", Status: "closed"})
		s.Require().ErrorIs(err, domain.ErrDuplicateDescription)
	})

	s.Run("unknown description is not found", func() {
		_, err := s.store.FindClaimByDescription(s.ctx, "roof")
		s.Require().ErrorIs(err, ErrNotFound)
	})

	s.Run("unlinked claim round-trips without policy number", func() {
		id, err := s.store.InsertClaim(s.ctx, domain.Claim{Description: "window", Status: "open"})
		s.Require().NoError(err)

		found, err := s.store.FindClaimByDescription(s.ctx, "window")
		s.Require().NoError(err)
		s.Equal(id, found.ID)
		s.Empty(found.PolicyNumber)
		s.True(found.Amount.IsZero())
	})
}

func (s *storeSuite) TestUsers() {
	id, err := s.store.InsertUser(s.ctx, domain.User{Name: "Ada", Email: "ada@example.com"})
	s.Require().NoError(err)
	s.NotEmpty(id)

	found, err := s.store.FindUserByEmail(s.ctx, "ada@example.com")
	s.Require().NoError(err)
	s.Equal(domain.User{ID: id, Name: "Ada", Email: "ada@example.com"}, found)

	_, err = s.store.InsertUser(s.ctx, domain.User{Name: "Other Ada", Email: "ada@example.com"})
	s.Require().ErrorIs(err, domain.ErrDuplicateEmail)

	_, err = s.store.FindUserByEmail(s.ctx, "grace@example.com")
	s.Require().ErrorIs(err, ErrNotFound)
}

func (s *storeSuite) TestPolicies() {
	policy := domain.Policy{PolicyNumber: "P1", PolicyType: "auto", Amount: decimal.NewFromInt(1000)}
	id, err := s.store.InsertPolicy(s.ctx, policy)
	s.Require().NoError(err)
	s.NotEmpty(id)

	found, err := s.store.FindPolicyByNumber(s.ctx, "P1")
	s.Require().NoError(err)
	s.Equal(id, found.ID)
	s.Equal("auto", found.PolicyType)
	s.True(policy.Amount.Equal(found.Amount))

	_, err = s.store.InsertPolicy(s.ctx, domain.Policy{PolicyNumber: "P1", PolicyType: "home", Amount: decimal.NewFromInt(5)})
	s.Require().ErrorIs(err, domain.ErrDuplicatePolicyNumber)

	_, err = s.store.FindPolicyByNumber(s.ctx, "P2")
	s.Require().ErrorIs(err, ErrNotFound)
}

func (s *storeSuite) TestListsAreRestartableAndOrdered() {
	var ids []string
	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		id, err := s.store.InsertUser(s.ctx, domain.User{Name: email, Email: email})
		s.Require().NoError(err)
		ids = append(ids, id)
	}

	for range 2 {
		var got []string
		for user, err := range s.store.ListUsers(s.ctx) {
			s.Require().NoError(err)
			got = append(got, user.ID)
		}
		s.Equal(ids, got)
	}

	s.Run("stops when the consumer breaks", func() {
		n := 0
		for _, err := range s.store.ListUsers(s.ctx) {
			s.Require().NoError(err)
			n++
			break
		}
		s.Equal(1, n)
	})
}

func (s *storeSuite) TestUniqueIdentifiers() {
	seen := map[string]bool{}
	for _, number := range []string{"P1", "P2", "P3"} {
		id, err := s.store.InsertPolicy(s.ctx, domain.Policy{PolicyNumber: number, PolicyType: "auto", Amount: decimal.NewFromInt(10)})
		s.Require().NoError(err)
		s.False(seen[id], "identifier %s reused", id)
		seen[id] = true
	}

	n := 0
	for policy, err := range s.store.ListPolicies(s.ctx) {
		s.Require().NoError(err)
		s.True(seen[policy.ID])
		n++
	}
	s.Equal(3, n)
}

func (s *storeSuite) TestListYieldsMalformedRecords() {
	_, err := s.store.InsertClaim(s.ctx, domain.Claim{Description: "fender", Status: "open"})
	s.Require().NoError(err)
	s.insertRaw(CollectionClaims, `{"status": "open"}`)
	_, err = s.store.InsertClaim(s.ctx, domain.Claim{Description: "roof", Status: "open"})
	s.Require().NoError(err)

	var (
		descriptions []string
		malformed    int
	)
	for claim, err := range s.store.ListClaims(s.ctx) {
		if err != nil {
			s.Require().ErrorIs(err, ErrMalformedRecord)
			malformed++
			continue
		}
		descriptions = append(descriptions, claim.Description)
	}
	s.Equal(1, malformed)
	s.ElementsMatch([]string{"fender", "roof"}, descriptions)
}

func (s *storeSuite) TestNumericAmountsFromOtherWriters() {
	s.insertRaw(CollectionPolicies, `{"policyNumber": "P1", "policyType": "auto", "amount": 1000.0}`)
	s.insertRaw(CollectionClaims, `{"description": "fender", "status": "open", "amount": 500, "policyNumber": "P1"}`)

	policy, err := s.store.FindPolicyByNumber(s.ctx, "P1")
	s.Require().NoError(err)
	s.True(decimal.NewFromInt(1000).Equal(policy.Amount), "amount %s", policy.Amount)

	var policies []domain.Policy
	for p, err := range s.store.ListPolicies(s.ctx) {
		s.Require().NoError(err)
		policies = append(policies, p)
	}
	s.Require().Len(policies, 1)
	s.True(decimal.NewFromInt(1000).Equal(policies[0].Amount))

	claim, err := s.store.FindClaimByDescription(s.ctx, "fender")
	s.Require().NoError(err)
	s.True(decimal.NewFromInt(500).Equal(claim.Amount))
}

func (s *storeSuite) TestFindReportsMalformedRecords() {
	s.insertRaw(CollectionPolicies, `{"policyNumber": "P9", "policyType": "auto", "amount": true}`)

	_, err := s.store.FindPolicyByNumber(s.ctx, "P9")
	s.Require().ErrorIs(err, ErrMalformedRecord)
	s.NotErrorIs(err, domain.ErrStoreUnavailable)
}
