package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/azizikri/claims-management/internal/domain"
)

const pgUniqueViolation = "23505"

// PostgresStore keeps each collection in a table of JSONB documents. The
// migrations create one unique expression index per table on its key field.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *PostgresStore) InsertClaim(ctx context.Context, claim domain.Claim) (string, error) {
	return s.insert(ctx, CollectionClaims, newClaimDoc(claim), domain.ErrDuplicateDescription)
}

func (s *PostgresStore) FindClaimByDescription(ctx context.Context, description string) (domain.Claim, error) {
	id, doc, err := pgFindOne[claimDoc](ctx, s.pool, CollectionClaims, FieldDescription, description)
	if err != nil {
		return domain.Claim{}, err
	}
	return doc.claim(id)
}

func (s *PostgresStore) ListClaims(ctx context.Context) iter.Seq2[domain.Claim, error] {
	return pgFindAll(ctx, s.pool, CollectionClaims, func(id string, d claimDoc) (domain.Claim, error) {
		return d.claim(id)
	})
}

func (s *PostgresStore) InsertUser(ctx context.Context, user domain.User) (string, error) {
	return s.insert(ctx, CollectionUsers, newUserDoc(user), domain.ErrDuplicateEmail)
}

func (s *PostgresStore) FindUserByEmail(ctx context.Context, email string) (domain.User, error) {
	id, doc, err := pgFindOne[userDoc](ctx, s.pool, CollectionUsers, FieldEmail, email)
	if err != nil {
		return domain.User{}, err
	}
	return doc.user(id)
}

func (s *PostgresStore) ListUsers(ctx context.Context) iter.Seq2[domain.User, error] {
	return pgFindAll(ctx, s.pool, CollectionUsers, func(id string, d userDoc) (domain.User, error) {
		return d.user(id)
	})
}

func (s *PostgresStore) InsertPolicy(ctx context.Context, policy domain.Policy) (string, error) {
	return s.insert(ctx, CollectionPolicies, newPolicyDoc(policy), domain.ErrDuplicatePolicyNumber)
}

func (s *PostgresStore) FindPolicyByNumber(ctx context.Context, policyNumber string) (domain.Policy, error) {
	id, doc, err := pgFindOne[policyDoc](ctx, s.pool, CollectionPolicies, FieldPolicyNumber, policyNumber)
	if err != nil {
		return domain.Policy{}, err
	}
	return doc.policy(id)
}

func (s *PostgresStore) ListPolicies(ctx context.Context) iter.Seq2[domain.Policy, error] {
	return pgFindAll(ctx, s.pool, CollectionPolicies, func(id string, d policyDoc) (domain.Policy, error) {
		return d.policy(id)
	})
}

func (s *PostgresStore) insert(ctx context.Context, table string, doc any, duplicate error) (string, error) {
	payload, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("%w: encode %s document: %w", domain.ErrStoreWrite, table, err)
	}

	var id string
	query := fmt.Sprintf("INSERT INTO %s (doc) VALUES ($1) RETURNING id::text", table)
	if err := s.pool.QueryRow(ctx, query, payload).Scan(&id); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == pgUniqueViolation {
				return "", duplicate
			}
			return "", fmt.Errorf("%w: insert into %s: %w", domain.ErrStoreWrite, table, err)
		}
		return "", fmt.Errorf("%w: insert into %s: %w", domain.ErrStoreUnavailable, table, err)
	}
	return id, nil
}

func pgFindOne[D any](ctx context.Context, pool *pgxpool.Pool, table, field, value string) (string, D, error) {
	var (
		id  string
		raw []byte
		doc D
	)
	err := pool.QueryRow(ctx, findOneQuery(table, field), value).Scan(&id, &raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", doc, ErrNotFound
		}
		return "", doc, readError(table, err)
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return "", doc, fmt.Errorf("%w: %s/%s: %v", ErrMalformedRecord, table, id, err)
	}
	return id, doc, nil
}

// findOneQuery spells the field as a literal so the planner can match the
// expression index on doc->>'field'. field is always a package constant.
func findOneQuery(table, field string) string {
	return fmt.Sprintf("SELECT id::text, doc FROM %s WHERE doc->>'%s' = $1 ORDER BY seq LIMIT 1", table, field)
}

// pgFindAll issues a fresh query each time the returned sequence is ranged
// over. Rows are decoded lazily; the connection is held until the loop ends.
func pgFindAll[D, T any](ctx context.Context, pool *pgxpool.Pool, table string, convert func(string, D) (T, error)) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		query := fmt.Sprintf("SELECT id::text, doc FROM %s ORDER BY seq", table)
		rows, err := pool.Query(ctx, query)
		if err != nil {
			yield(zero, readError(table, err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var (
				id  string
				raw []byte
				doc D
			)
			if err := rows.Scan(&id, &raw); err != nil {
				yield(zero, readError(table, err))
				return
			}
			if err := json.Unmarshal(raw, &doc); err != nil {
				if !yield(zero, fmt.Errorf("%w: %s/%s: %v", ErrMalformedRecord, table, id, err)) {
					return
				}
				continue
			}
			if !yield(convert(id, doc)) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(zero, readError(table, err))
		}
	}
}

func readError(table string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("query %s: %w", table, err)
	}
	return fmt.Errorf("%w: query %s: %w", domain.ErrStoreUnavailable, table, err)
}
