package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/azizikri/claims-management/internal/domain"
	"github.com/azizikri/claims-management/internal/usecase"
)

var errMissingRecord = errors.New("request carries no record for its topic")

// Consumer runs create requests from the request topics through the record
// service and answers on the reply topic named in each request. Records with
// the same key land on the same partition, so creates for one description,
// email or policy number are applied one at a time.
type Consumer struct {
	client  *kgo.Client
	service *usecase.RecordService
	logger  *slog.Logger
	ready   chan struct{}
}

func NewConsumer(client *kgo.Client, service *usecase.RecordService, logger *slog.Logger) *Consumer {
	return &Consumer{
		client:  client,
		service: service,
		logger:  logger,
		ready:   make(chan struct{}),
	}
}

// Start polls until ctx is cancelled or the client is closed. Offsets are
// committed after each batch has been answered.
func (c *Consumer) Start(ctx context.Context) {
	close(c.ready)
	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() || ctx.Err() != nil {
			return
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			c.logger.Error("consumer poll error", "topic", topic, "partition", partition, "error", err)
		})

		iter := fetches.RecordIter()
		for !iter.Done() {
			c.processRecord(ctx, iter.Next())
		}

		if err := c.client.CommitRecords(ctx, fetches.Records()...); err != nil {
			c.logger.Error("failed to commit records", "error", err)
		}
	}
}

func (c *Consumer) Ready() <-chan struct{} {
	return c.ready
}

func (c *Consumer) processRecord(ctx context.Context, record *kgo.Record) {
	var req RequestPayload
	if err := json.Unmarshal(record.Value, &req); err != nil {
		c.sendError(ctx, record, req, "invalid request payload")
		return
	}

	resp, err := c.handle(ctx, record.Topic, req)
	switch {
	case errors.Is(err, errMissingRecord):
		c.sendError(ctx, record, req, err.Error())
		return
	case err != nil:
		resp = errorResponse(req.CorrelationID, err)
	}
	c.sendResponse(ctx, req.ReplyTo, resp)
}

func (c *Consumer) handle(ctx context.Context, topic string, req RequestPayload) (*ResponsePayload, error) {
	resp := successResponse(req.CorrelationID)
	var err error

	switch topic {
	case TopicClaimCreateRequest:
		if req.Claim == nil {
			return nil, errMissingRecord
		}
		resp.Claim, err = c.service.CreateClaim(ctx, *req.Claim)
	case TopicUserCreateRequest:
		if req.User == nil {
			return nil, errMissingRecord
		}
		resp.User, err = c.service.CreateUser(ctx, *req.User)
	case TopicPolicyCreateRequest:
		if req.Policy == nil {
			return nil, errMissingRecord
		}
		resp.Policy, err = c.service.CreatePolicy(ctx, *req.Policy)
	default:
		return nil, errMissingRecord
	}

	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Consumer) sendResponse(ctx context.Context, topic string, resp *ResponsePayload) {
	if topic == "" {
		c.logger.Warn("request has no reply topic", "correlation_id", resp.CorrelationID)
		return
	}
	payload, err := json.Marshal(resp)
	if err != nil {
		c.logger.Error("failed to encode response", "correlation_id", resp.CorrelationID, "error", err)
		return
	}
	record := &kgo.Record{
		Topic: topic,
		Value: payload,
	}
	if err := c.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		c.logger.Error("failed to send response", "topic", topic, "error", err)
	}
}

// sendError answers an unprocessable request with INVALID_REQUEST, when a
// reply topic can be recovered, and copies it to the topic's DLQ.
func (c *Consumer) sendError(ctx context.Context, record *kgo.Record, req RequestPayload, message string) {
	if req.ReplyTo != "" {
		c.sendResponse(ctx, req.ReplyTo, &ResponsePayload{
			SchemaVersion: SchemaVersion,
			CorrelationID: req.CorrelationID,
			Status:        StatusError,
			ErrorCode:     domain.CodeInvalidRequest,
			ErrorMessage:  message,
		})
	}

	dlqRecord := &kgo.Record{
		Topic: record.Topic + TopicDLQSuffix,
		Key:   record.Key,
		Value: record.Value,
		Headers: []kgo.RecordHeader{
			{Key: ErrorHeaderKey, Value: []byte(message)},
		},
	}
	if err := c.client.ProduceSync(ctx, dlqRecord).FirstErr(); err != nil {
		c.logger.Error("failed to dead-letter record", "topic", dlqRecord.Topic, "error", err)
	}
}

func successResponse(correlationID string) *ResponsePayload {
	return &ResponsePayload{
		SchemaVersion: SchemaVersion,
		CorrelationID: correlationID,
		Status:        StatusSuccess,
	}
}

// errorResponse carries validation failures as their code. Anything else is
// INTERNAL_ERROR with the error text.
func errorResponse(correlationID string, err error) *ResponsePayload {
	code, ok := domain.ValidationCode(err)
	if !ok {
		code = domain.CodeInternal
	}
	return &ResponsePayload{
		SchemaVersion: SchemaVersion,
		CorrelationID: correlationID,
		Status:        StatusError,
		ErrorCode:     code,
		ErrorMessage:  err.Error(),
	}
}
