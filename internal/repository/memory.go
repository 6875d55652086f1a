package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"sync"

	"github.com/google/uuid"

	"github.com/azizikri/claims-management/internal/domain"
)

type memDoc struct {
	id  string
	key string
	raw []byte
}

// InMemory is a process-local Store for development and tests. Documents are
// kept as JSON, the same shape the Postgres store writes, and the key field
// of each collection is unique.
type InMemory struct {
	mu          sync.RWMutex
	collections map[string][]memDoc
}

func NewInMemory() *InMemory {
	return &InMemory{collections: make(map[string][]memDoc)}
}

func (s *InMemory) Ping(context.Context) error {
	return nil
}

func (s *InMemory) InsertClaim(_ context.Context, claim domain.Claim) (string, error) {
	return s.insert(CollectionClaims, claim.Description, newClaimDoc(claim), domain.ErrDuplicateDescription)
}

func (s *InMemory) FindClaimByDescription(_ context.Context, description string) (domain.Claim, error) {
	id, doc, err := memFindOne[claimDoc](s, CollectionClaims, description)
	if err != nil {
		return domain.Claim{}, err
	}
	return doc.claim(id)
}

func (s *InMemory) ListClaims(context.Context) iter.Seq2[domain.Claim, error] {
	return memFindAll(s, CollectionClaims, func(id string, d claimDoc) (domain.Claim, error) {
		return d.claim(id)
	})
}

func (s *InMemory) InsertUser(_ context.Context, user domain.User) (string, error) {
	return s.insert(CollectionUsers, user.Email, newUserDoc(user), domain.ErrDuplicateEmail)
}

func (s *InMemory) FindUserByEmail(_ context.Context, email string) (domain.User, error) {
	id, doc, err := memFindOne[userDoc](s, CollectionUsers, email)
	if err != nil {
		return domain.User{}, err
	}
	return doc.user(id)
}

func (s *InMemory) ListUsers(context.Context) iter.Seq2[domain.User, error] {
	return memFindAll(s, CollectionUsers, func(id string, d userDoc) (domain.User, error) {
		return d.user(id)
	})
}

func (s *InMemory) InsertPolicy(_ context.Context, policy domain.Policy) (string, error) {
	return s.insert(CollectionPolicies, policy.PolicyNumber, newPolicyDoc(policy), domain.ErrDuplicatePolicyNumber)
}

func (s *InMemory) FindPolicyByNumber(_ context.Context, policyNumber string) (domain.Policy, error) {
	id, doc, err := memFindOne[policyDoc](s, CollectionPolicies, policyNumber)
	if err != nil {
		return domain.Policy{}, err
	}
	return doc.policy(id)
}

func (s *InMemory) ListPolicies(context.Context) iter.Seq2[domain.Policy, error] {
	return memFindAll(s, CollectionPolicies, func(id string, d policyDoc) (domain.Policy, error) {
		return d.policy(id)
	})
}

func (s *InMemory) insert(collection, key string, doc any, duplicate error) (string, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("%w: encode %s document: %w", domain.ErrStoreWrite, collection, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, d := range s.collections[collection] {
		if d.key == key {
			return "", duplicate
		}
	}
	id := uuid.NewString()
	s.collections[collection] = append(s.collections[collection], memDoc{id: id, key: key, raw: raw})
	return id, nil
}

func memFindOne[D any](s *InMemory, collection, key string) (string, D, error) {
	var doc D

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, d := range s.collections[collection] {
		if d.key != key {
			continue
		}
		if err := json.Unmarshal(d.raw, &doc); err != nil {
			return "", doc, fmt.Errorf("%w: %s/%s: %v", ErrMalformedRecord, collection, d.id, err)
		}
		return d.id, doc, nil
	}
	return "", doc, ErrNotFound
}

// memFindAll iterates over a snapshot taken when ranging starts.
func memFindAll[D, T any](s *InMemory, collection string, convert func(string, D) (T, error)) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		s.mu.RLock()
		snapshot := append([]memDoc(nil), s.collections[collection]...)
		s.mu.RUnlock()

		var zero T
		for _, d := range snapshot {
			var doc D
			if err := json.Unmarshal(d.raw, &doc); err != nil {
				if !yield(zero, fmt.Errorf("%w: %s/%s: %v", ErrMalformedRecord, collection, d.id, err)) {
					return
				}
				continue
			}
			if !yield(convert(d.id, doc)) {
				return
			}
		}
	}
}
