package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/azizikri/claims-management/internal/config"
	"github.com/azizikri/claims-management/internal/domain"
	"github.com/azizikri/claims-management/internal/usecase"
)

var ErrRequestTimeout = errors.New("timeout waiting for response")

// Gateway sends creates through Kafka and waits for the consumer's reply.
// Listings do not need ordering against creates and go straight to the
// service.
type Gateway struct {
	client      *kgo.Client
	replyTo     string
	service     *usecase.RecordService
	logger      *slog.Logger
	pendingResp sync.Map
}

func NewGateway(cfg *config.Config, client *kgo.Client, service *usecase.RecordService, logger *slog.Logger) *Gateway {
	return &Gateway{
		client:  client,
		replyTo: ReplyTopic(cfg.KafkaInstanceID),
		service: service,
		logger:  logger,
	}
}

func (g *Gateway) CreateClaim(ctx context.Context, claim domain.Claim) (*domain.Claim, error) {
	req := g.newRequest()
	req.Claim = &claim

	resp, err := g.requestReply(ctx, TopicClaimCreateRequest, claim.Description, req)
	if err != nil {
		return nil, err
	}
	return resp.Claim, nil
}

func (g *Gateway) ListClaims(ctx context.Context) ([]domain.Claim, error) {
	return g.service.ListClaims(ctx)
}

func (g *Gateway) CreateUser(ctx context.Context, user domain.User) (*domain.User, error) {
	req := g.newRequest()
	req.User = &user

	resp, err := g.requestReply(ctx, TopicUserCreateRequest, user.Email, req)
	if err != nil {
		return nil, err
	}
	return resp.User, nil
}

func (g *Gateway) ListUsers(ctx context.Context) ([]domain.User, error) {
	return g.service.ListUsers(ctx)
}

func (g *Gateway) CreatePolicy(ctx context.Context, policy domain.Policy) (*domain.Policy, error) {
	req := g.newRequest()
	req.Policy = &policy

	resp, err := g.requestReply(ctx, TopicPolicyCreateRequest, policy.PolicyNumber, req)
	if err != nil {
		return nil, err
	}
	return resp.Policy, nil
}

func (g *Gateway) ListPolicies(ctx context.Context) ([]domain.Policy, error) {
	return g.service.ListPolicies(ctx)
}

func (g *Gateway) newRequest() RequestPayload {
	return RequestPayload{
		SchemaVersion: SchemaVersion,
		CorrelationID: uuid.New().String(),
		ReplyTo:       g.replyTo,
	}
}

// requestReply produces req keyed by key and blocks until the matching reply
// arrives, ctx is done or RequestTimeout passes. Error replies are returned
// as errors.
func (g *Gateway) requestReply(ctx context.Context, topic, key string, req RequestPayload) (*ResponsePayload, error) {
	respChan := make(chan *ResponsePayload, 1)
	g.pendingResp.Store(req.CorrelationID, respChan)
	defer g.pendingResp.Delete(req.CorrelationID)

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	record := &kgo.Record{
		Topic: topic,
		Key:   []byte(key),
		Value: payload,
	}

	if err := g.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return nil, fmt.Errorf("produce to %s: %w", topic, err)
	}

	timer := time.NewTimer(RequestTimeout)
	defer timer.Stop()

	select {
	case resp := <-respChan:
		if resp.Status == StatusError {
			return nil, mapError(resp.ErrorCode, resp.ErrorMessage)
		}
		return resp, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, ErrRequestTimeout
	}
}

// ConsumeReplies feeds records from the reply topic to HandleResponse until
// ctx is cancelled or client is closed.
func (g *Gateway) ConsumeReplies(ctx context.Context, client *kgo.Client) {
	for {
		fetches := client.PollFetches(ctx)
		if fetches.IsClientClosed() || ctx.Err() != nil {
			return
		}
		iter := fetches.RecordIter()
		for !iter.Done() {
			g.HandleResponse(iter.Next().Value)
		}
	}
}

func (g *Gateway) HandleResponse(payload []byte) {
	var resp ResponsePayload
	if err := json.Unmarshal(payload, &resp); err != nil {
		g.logger.Warn("failed to decode response payload", "error", err)
		return
	}

	ch, ok := g.pendingResp.Load(resp.CorrelationID)
	if !ok {
		g.logger.Debug("no pending request for response", "correlation_id", resp.CorrelationID)
		return
	}
	select {
	case ch.(chan *ResponsePayload) <- &resp:
	default:
		g.logger.Warn("duplicate response", "correlation_id", resp.CorrelationID)
	}
}

// remoteError keeps the consumer's message while matching the domain
// sentinel for its code.
type remoteError struct {
	msg string
	err error
}

func (e *remoteError) Error() string { return e.msg }

func (e *remoteError) Unwrap() error { return e.err }

func mapError(code, message string) error {
	if sentinel := domain.ErrorForCode(code); sentinel != nil {
		return &remoteError{msg: message, err: sentinel}
	}
	if message == "" {
		message = code
	}
	return errors.New(message)
}

var _ usecase.RecordGateway = (*Gateway)(nil)
