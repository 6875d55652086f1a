package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/azizikri/claims-management/internal/domain"
	"github.com/azizikri/claims-management/internal/usecase"
)

type CreateClaimRequest struct {
	Description  string          `json:"description"`
	Status       string          `json:"status"`
	Amount       decimal.Decimal `json:"amount"`
	PolicyNumber string          `json:"policyNumber"`
}

type CreateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type CreatePolicyRequest struct {
	PolicyNumber string          `json:"policyNumber"`
	PolicyType   string          `json:"policyType"`
	Amount       decimal.Decimal `json:"amount"`
}

type ClaimResponse struct {
	ID           string      `json:"id"`
	Description  string      `json:"description"`
	Status       string      `json:"status"`
	Amount       json.Number `json:"amount"`
	PolicyNumber string      `json:"policyNumber,omitempty"`
}

type UserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type PolicyResponse struct {
	ID           string      `json:"id"`
	PolicyNumber string      `json:"policyNumber"`
	PolicyType   string      `json:"policyType"`
	Amount       json.Number `json:"amount"`
}

type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

type Handler struct {
	gateway usecase.RecordGateway
	logger  *slog.Logger
}

func NewHandler(gateway usecase.RecordGateway, logger *slog.Logger) *Handler {
	return &Handler{gateway: gateway, logger: logger}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.Root)
	r.Route("/claims", func(r chi.Router) {
		r.Post("/", h.CreateClaim)
		r.Get("/", h.ListClaims)
	})
	r.Route("/users", func(r chi.Router) {
		r.Post("/", h.CreateUser)
		r.Get("/", h.ListUsers)
	})
	r.Route("/policies", func(r chi.Router) {
		r.Post("/", h.CreatePolicy)
		r.Get("/", h.ListPolicies)
	})
}

func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Claims Management System"})
}

func (h *Handler) CreateClaim(w http.ResponseWriter, r *http.Request) {
	var req CreateClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, domain.CodeInvalidRequest, "invalid request body")
		return
	}

	claim, err := h.gateway.CreateClaim(r.Context(), domain.Claim{
		Description:  req.Description,
		Status:       req.Status,
		Amount:       req.Amount,
		PolicyNumber: req.PolicyNumber,
	})
	if err != nil {
		h.fail(w, r, "error creating claim", err)
		return
	}

	writeJSON(w, http.StatusOK, claimResponse(*claim))
}

func (h *Handler) ListClaims(w http.ResponseWriter, r *http.Request) {
	claims, err := h.gateway.ListClaims(r.Context())
	if err != nil {
		h.fail(w, r, "error listing claims", err)
		return
	}

	resp := make([]ClaimResponse, 0, len(claims))
	for _, c := range claims {
		resp = append(resp, claimResponse(c))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, domain.CodeInvalidRequest, "invalid request body")
		return
	}

	user, err := h.gateway.CreateUser(r.Context(), domain.User{Name: req.Name, Email: req.Email})
	if err != nil {
		h.fail(w, r, "error creating user", err)
		return
	}

	writeJSON(w, http.StatusOK, userResponse(*user))
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.gateway.ListUsers(r.Context())
	if err != nil {
		h.fail(w, r, "error listing users", err)
		return
	}

	resp := make([]UserResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, userResponse(u))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) CreatePolicy(w http.ResponseWriter, r *http.Request) {
	var req CreatePolicyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, domain.CodeInvalidRequest, "invalid request body")
		return
	}

	policy, err := h.gateway.CreatePolicy(r.Context(), domain.Policy{
		PolicyNumber: req.PolicyNumber,
		PolicyType:   req.PolicyType,
		Amount:       req.Amount,
	})
	if err != nil {
		h.fail(w, r, "error creating policy", err)
		return
	}

	writeJSON(w, http.StatusOK, policyResponse(*policy))
}

func (h *Handler) ListPolicies(w http.ResponseWriter, r *http.Request) {
	policies, err := h.gateway.ListPolicies(r.Context())
	if err != nil {
		h.fail(w, r, "error listing policies", err)
		return
	}

	resp := make([]PolicyResponse, 0, len(policies))
	for _, p := range policies {
		resp = append(resp, policyResponse(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

// fail writes 400 for validation errors and 500 for everything else.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, action string, err error) {
	if code, ok := domain.ValidationCode(err); ok {
		writeError(w, http.StatusBadRequest, code, err.Error())
		return
	}

	h.logger.ErrorContext(r.Context(), action, "method", r.Method, "path", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, domain.CodeInternal, action+": "+err.Error())
}

func claimResponse(c domain.Claim) ClaimResponse {
	return ClaimResponse{
		ID:           c.ID,
		Description:  c.Description,
		Status:       c.Status,
		Amount:       json.Number(c.Amount.String()),
		PolicyNumber: c.PolicyNumber,
	}
}

func userResponse(u domain.User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, Email: u.Email}
}

func policyResponse(p domain.Policy) PolicyResponse {
	return PolicyResponse{
		ID:           p.ID,
		PolicyNumber: p.PolicyNumber,
		PolicyType:   p.PolicyType,
		Amount:       json.Number(p.Amount.String()),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	writeJSON(w, status, ErrorResponse{Error: code, Detail: detail})
}
