package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"strconv"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/azizikri/claims-management/internal/domain"
)

// MongoStore keeps each entity in its own collection with ObjectID
// identifiers. EnsureIndexes must have run for duplicate detection on insert.
type MongoStore struct {
	db *mongo.Database
}

func NewMongo(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

// EnsureIndexes creates the unique index on the key field of every
// collection. Creating an index that already exists is a no-op.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	keys := map[string]string{
		CollectionClaims:   FieldDescription,
		CollectionUsers:    FieldEmail,
		CollectionPolicies: FieldPolicyNumber,
	}
	for collection, field := range keys {
		_, err := db.Collection(collection).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: field, Value: 1}},
			Options: options.Index().SetUnique(true).SetName(collection + "_" + field + "_key"),
		})
		if err != nil {
			return fmt.Errorf("create unique index on %s.%s: %w", collection, field, err)
		}
	}
	return nil
}

// Mongo document shapes. Amounts are written as Decimal128 and read back from
// any numeric BSON type, or a numeric string.

type mongoClaim struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Description  *string            `bson:"description,omitempty"`
	Status       *string            `bson:"status,omitempty"`
	Amount       *mongoAmount       `bson:"amount,omitempty"`
	PolicyNumber *string            `bson:"policyNumber,omitempty"`
}

func (m mongoClaim) claim() (domain.Claim, error) {
	return claimDoc{
		Description:  m.Description,
		Status:       m.Status,
		Amount:       m.Amount.number(),
		PolicyNumber: m.PolicyNumber,
	}.claim(m.ID.Hex())
}

type mongoUser struct {
	ID    primitive.ObjectID `bson:"_id,omitempty"`
	Name  *string            `bson:"name,omitempty"`
	Email *string            `bson:"email,omitempty"`
}

func (m mongoUser) user() (domain.User, error) {
	return userDoc{Name: m.Name, Email: m.Email}.user(m.ID.Hex())
}

type mongoPolicy struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	PolicyNumber *string            `bson:"policyNumber,omitempty"`
	PolicyType   *string            `bson:"policyType,omitempty"`
	Amount       *mongoAmount       `bson:"amount,omitempty"`
}

func (m mongoPolicy) policy() (domain.Policy, error) {
	return policyDoc{
		PolicyNumber: m.PolicyNumber,
		PolicyType:   m.PolicyType,
		Amount:       m.Amount.number(),
	}.policy(m.ID.Hex())
}

// mongoAmount holds the decimal text of a stored amount.
type mongoAmount json.Number

func newMongoAmount(d decimal.Decimal) *mongoAmount {
	a := mongoAmount(d.String())
	return &a
}

func (a mongoAmount) MarshalBSONValue() (bsontype.Type, []byte, error) {
	d, err := primitive.ParseDecimal128(string(a))
	if err != nil {
		return 0, nil, fmt.Errorf("encode amount %q: %w", string(a), err)
	}
	return bson.MarshalValue(d)
}

func (a *mongoAmount) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	v := bson.RawValue{Type: t, Value: data}
	switch t {
	case bson.TypeDecimal128:
		*a = mongoAmount(v.Decimal128().String())
	case bson.TypeDouble:
		*a = mongoAmount(strconv.FormatFloat(v.Double(), 'f', -1, 64))
	case bson.TypeInt32:
		*a = mongoAmount(strconv.FormatInt(int64(v.Int32()), 10))
	case bson.TypeInt64:
		*a = mongoAmount(strconv.FormatInt(v.Int64(), 10))
	case bson.TypeString:
		*a = mongoAmount(v.StringValue())
	default:
		return fmt.Errorf("cannot decode %s into an amount", t)
	}
	return nil
}

func (a *mongoAmount) number() *json.Number {
	if a == nil {
		return nil
	}
	n := json.Number(*a)
	return &n
}

func (s *MongoStore) Ping(ctx context.Context) error {
	if err := s.db.Client().Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *MongoStore) InsertClaim(ctx context.Context, claim domain.Claim) (string, error) {
	doc := mongoClaim{
		Description: &claim.Description,
		Status:      &claim.Status,
		Amount:      newMongoAmount(claim.Amount),
	}
	if claim.PolicyNumber != "" {
		doc.PolicyNumber = &claim.PolicyNumber
	}
	return s.insert(ctx, CollectionClaims, doc, domain.ErrDuplicateDescription)
}

func (s *MongoStore) FindClaimByDescription(ctx context.Context, description string) (domain.Claim, error) {
	doc, err := mongoFindOne[mongoClaim](ctx, s.db.Collection(CollectionClaims), FieldDescription, description)
	if err != nil {
		return domain.Claim{}, err
	}
	return doc.claim()
}

func (s *MongoStore) ListClaims(ctx context.Context) iter.Seq2[domain.Claim, error] {
	return mongoFindAll(ctx, s.db.Collection(CollectionClaims), mongoClaim.claim)
}

func (s *MongoStore) InsertUser(ctx context.Context, user domain.User) (string, error) {
	doc := mongoUser{Name: &user.Name, Email: &user.Email}
	return s.insert(ctx, CollectionUsers, doc, domain.ErrDuplicateEmail)
}

func (s *MongoStore) FindUserByEmail(ctx context.Context, email string) (domain.User, error) {
	doc, err := mongoFindOne[mongoUser](ctx, s.db.Collection(CollectionUsers), FieldEmail, email)
	if err != nil {
		return domain.User{}, err
	}
	return doc.user()
}

func (s *MongoStore) ListUsers(ctx context.Context) iter.Seq2[domain.User, error] {
	return mongoFindAll(ctx, s.db.Collection(CollectionUsers), mongoUser.user)
}

func (s *MongoStore) InsertPolicy(ctx context.Context, policy domain.Policy) (string, error) {
	doc := mongoPolicy{
		PolicyNumber: &policy.PolicyNumber,
		PolicyType:   &policy.PolicyType,
		Amount:       newMongoAmount(policy.Amount),
	}
	return s.insert(ctx, CollectionPolicies, doc, domain.ErrDuplicatePolicyNumber)
}

func (s *MongoStore) FindPolicyByNumber(ctx context.Context, policyNumber string) (domain.Policy, error) {
	doc, err := mongoFindOne[mongoPolicy](ctx, s.db.Collection(CollectionPolicies), FieldPolicyNumber, policyNumber)
	if err != nil {
		return domain.Policy{}, err
	}
	return doc.policy()
}

func (s *MongoStore) ListPolicies(ctx context.Context) iter.Seq2[domain.Policy, error] {
	return mongoFindAll(ctx, s.db.Collection(CollectionPolicies), mongoPolicy.policy)
}

func (s *MongoStore) insert(ctx context.Context, collection string, doc any, duplicate error) (string, error) {
	res, err := s.db.Collection(collection).InsertOne(ctx, doc)
	if err != nil {
		switch {
		case mongo.IsDuplicateKeyError(err):
			return "", duplicate
		case mongo.IsNetworkError(err), mongo.IsTimeout(err), errors.Is(err, mongo.ErrClientDisconnected):
			return "", fmt.Errorf("%w: insert into %s: %w", domain.ErrStoreUnavailable, collection, err)
		default:
			return "", fmt.Errorf("%w: insert into %s: %w", domain.ErrStoreWrite, collection, err)
		}
	}

	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("%w: unexpected %s id type %T", domain.ErrStoreWrite, collection, res.InsertedID)
	}
	return id.Hex(), nil
}

// mongoFindOne separates query failures from documents that exist but do
// not decode; the latter still occupy their key.
func mongoFindOne[D any](ctx context.Context, coll *mongo.Collection, field, value string) (D, error) {
	var doc D
	res := coll.FindOne(ctx, bson.D{{Key: field, Value: value}})
	if err := res.Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return doc, ErrNotFound
		}
		return doc, mongoReadError(coll.Name(), err)
	}
	if err := res.Decode(&doc); err != nil {
		return doc, fmt.Errorf("%w: %s/%s: %v", ErrMalformedRecord, coll.Name(), field, err)
	}
	return doc, nil
}

// mongoFindAll opens a new cursor each time the sequence is ranged over.
func mongoFindAll[D, T any](ctx context.Context, coll *mongo.Collection, convert func(D) (T, error)) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		cursor, err := coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
		if err != nil {
			yield(zero, mongoReadError(coll.Name(), err))
			return
		}
		defer cursor.Close(ctx)

		for cursor.Next(ctx) {
			var doc D
			if err := cursor.Decode(&doc); err != nil {
				if !yield(zero, fmt.Errorf("%w: %s: %v", ErrMalformedRecord, coll.Name(), err)) {
					return
				}
				continue
			}
			if !yield(convert(doc)) {
				return
			}
		}
		if err := cursor.Err(); err != nil {
			yield(zero, mongoReadError(coll.Name(), err))
		}
	}
}

func mongoReadError(collection string, err error) error {
	return fmt.Errorf("%w: query %s: %w", domain.ErrStoreUnavailable, collection, err)
}
