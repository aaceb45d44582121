package service

import (
	"context"
	"encoding/json"
	"time"

	"notable-be/internal/dto"
	"notable-be/internal/entity"
	"notable-be/internal/pkg/logger"
	"notable-be/internal/repository/unitofwork"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// IAuditPublisher records audit trail entries. Record never returns an
// error: an audit failure must not affect the request being audited.
type IAuditPublisher interface {
	Record(ctx context.Context, entry dto.AuditEntry)
}

type auditPublisher struct {
	pubSub    *gochannel.GoChannel
	topicName string
	logger    logger.ILogger
}

func NewAuditPublisher(pubSub *gochannel.GoChannel, topicName string, logger logger.ILogger) IAuditPublisher {
	return &auditPublisher{
		pubSub:    pubSub,
		topicName: topicName,
		logger:    logger,
	}
}

func (p *auditPublisher) Record(ctx context.Context, entry dto.AuditEntry) {
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = time.Now()
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		p.logger.Warn("audit", "Failed to marshal audit entry", map[string]interface{}{
			"action": entry.Action,
			"error":  err.Error(),
		})
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := p.pubSub.Publish(p.topicName, msg); err != nil {
		p.logger.Warn("audit", "Failed to publish audit entry", map[string]interface{}{
			"action": entry.Action,
			"error":  err.Error(),
		})
	}
}

type IAuditConsumerService interface {
	Consume(ctx context.Context) error
}

type auditConsumerService struct {
	pubSub     *gochannel.GoChannel
	topicName  string
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewAuditConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	logger logger.ILogger,
) IAuditConsumerService {
	return &auditConsumerService{
		pubSub:     pubSub,
		topicName:  topicName,
		uowFactory: uowFactory,
		logger:     logger,
	}
}

func (cs *auditConsumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *auditConsumerService) processMessage(ctx context.Context, msg *message.Message) {
	var entry dto.AuditEntry
	if err := json.Unmarshal(msg.Payload, &entry); err != nil {
		cs.logger.Warn("audit", "Failed to unmarshal audit message", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // invalid messages are not retriable
		return
	}

	record := &entity.AuditLog{
		Id:           uuid.New(),
		UserId:       entry.UserId,
		Action:       entity.AuditAction(entry.Action),
		ResourceType: entry.ResourceType,
		ResourceId:   entry.ResourceId,
		IpAddress:    entry.IpAddress,
		UserAgent:    entry.UserAgent,
		Metadata:     entry.Metadata,
		CreatedAt:    entry.OccurredAt,
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.AuditLogRepository().Create(ctx, record); err != nil {
		// The referenced user may already be gone (account deletion races
		// with in-flight entries). Keep the trail row, drop the reference.
		record.UserId = nil
		if err := uow.AuditLogRepository().Create(ctx, record); err != nil {
			cs.logger.Warn("audit", "Failed to persist audit entry", map[string]interface{}{
				"action": entry.Action,
				"error":  err.Error(),
			})
		}
	}
	msg.Ack()
}
