package domain

import "github.com/shopspring/decimal"

// Record kinds, used as metric labels and in log fields.
const (
	KindClaim  = "claim"
	KindUser   = "user"
	KindPolicy = "policy"
)

type Claim struct {
	ID           string          `json:"id,omitempty"`
	Description  string          `json:"description"`
	Status       string          `json:"status"`
	Amount       decimal.Decimal `json:"amount"`
	PolicyNumber string          `json:"policy_number,omitempty"`
}

type User struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Policy struct {
	ID           string          `json:"id,omitempty"`
	PolicyNumber string          `json:"policy_number"`
	PolicyType   string          `json:"policy_type"`
	Amount       decimal.Decimal `json:"amount"`
}
