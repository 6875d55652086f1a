package repository

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/azizikri/claims-management/internal/domain"
)

// Stored document shapes. Fields are pointers so that a document written by
// an older revision, or by hand, can be told apart from one holding an empty
// value.

type claimDoc struct {
	Description  *string      `json:"description,omitempty"`
	Status       *string      `json:"status,omitempty"`
	Amount       *json.Number `json:"amount,omitempty"`
	PolicyNumber *string      `json:"policyNumber,omitempty"`
}

type userDoc struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
}

type policyDoc struct {
	PolicyNumber *string      `json:"policyNumber,omitempty"`
	PolicyType   *string      `json:"policyType,omitempty"`
	Amount       *json.Number `json:"amount,omitempty"`
}

func newClaimDoc(c domain.Claim) claimDoc {
	doc := claimDoc{
		Description: &c.Description,
		Status:      &c.Status,
		Amount:      number(c.Amount),
	}
	if c.PolicyNumber != "" {
		doc.PolicyNumber = &c.PolicyNumber
	}
	return doc
}

func (d claimDoc) claim(id string) (domain.Claim, error) {
	var missing []string
	if d.Description == nil {
		missing = append(missing, "description")
	}
	if d.Status == nil {
		missing = append(missing, "status")
	}
	amount, err := amountOf(d.Amount)
	if err != nil {
		missing = append(missing, "amount")
	}
	if len(missing) > 0 {
		return domain.Claim{}, malformed(CollectionClaims, id, missing)
	}

	c := domain.Claim{
		ID:          id,
		Description: *d.Description,
		Status:      *d.Status,
		Amount:      amount,
	}
	if d.PolicyNumber != nil {
		c.PolicyNumber = *d.PolicyNumber
	}
	return c, nil
}

func newUserDoc(u domain.User) userDoc {
	return userDoc{Name: &u.Name, Email: &u.Email}
}

func (d userDoc) user(id string) (domain.User, error) {
	var missing []string
	if d.Name == nil {
		missing = append(missing, "name")
	}
	if d.Email == nil {
		missing = append(missing, "email")
	}
	if len(missing) > 0 {
		return domain.User{}, malformed(CollectionUsers, id, missing)
	}
	return domain.User{ID: id, Name: *d.Name, Email: *d.Email}, nil
}

func newPolicyDoc(p domain.Policy) policyDoc {
	return policyDoc{
		PolicyNumber: &p.PolicyNumber,
		PolicyType:   &p.PolicyType,
		Amount:       number(p.Amount),
	}
}

func (d policyDoc) policy(id string) (domain.Policy, error) {
	var missing []string
	if d.PolicyNumber == nil {
		missing = append(missing, "policyNumber")
	}
	if d.PolicyType == nil {
		missing = append(missing, "policyType")
	}
	if d.Amount == nil {
		missing = append(missing, "amount")
	}
	amount, err := amountOf(d.Amount)
	if err != nil && d.Amount != nil {
		missing = append(missing, "amount")
	}
	if len(missing) > 0 {
		return domain.Policy{}, malformed(CollectionPolicies, id, missing)
	}
	return domain.Policy{
		ID:           id,
		PolicyNumber: *d.PolicyNumber,
		PolicyType:   *d.PolicyType,
		Amount:       amount,
	}, nil
}

func number(d decimal.Decimal) *json.Number {
	n := json.Number(d.String())
	return &n
}

// amountOf parses a stored amount. An absent amount reads as zero; claims
// stored before amounts existed have none.
func amountOf(n *json.Number) (decimal.Decimal, error) {
	if n == nil {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(n.String())
}

func malformed(collection, id string, missing []string) error {
	return fmt.Errorf("%w: %s/%s has missing or invalid %s", ErrMalformedRecord, collection, id, strings.Join(missing, ", "))
}
