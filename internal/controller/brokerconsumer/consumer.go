package brokerconsumer

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/Imm0bilize/xai-prediction-gateway/internal/config"
	"github.com/Imm0bilize/xai-prediction-gateway/internal/entities"
	"github.com/Imm0bilize/xai-prediction-gateway/internal/ucase"
	"github.com/Shopify/sarama"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/contrib/instrumentation/github.com/Shopify/sarama/otelsarama"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

type MessageProcessor interface {
	Predict(ctx context.Context, domain entities.Domain, values map[string]string) (entities.View, error)
}

// KafkaConsumer feeds form submissions that arrive over the broker into the same
// use case the HTTP pages use.
type KafkaConsumer struct {
	logger    *zap.Logger
	processor MessageProcessor
	group     sarama.ConsumerGroup
	topic     string

	readyOnce sync.Once
	ready     chan struct{}
	inflight  sync.WaitGroup
}

func NewKafkaConsumer(
	cfg config.KafkaConsumerConfig, logger *zap.Logger, processor MessageProcessor,
) (*KafkaConsumer, error) {
	version, err := sarama.ParseKafkaVersion(cfg.Version)
	if err != nil {
		return nil, errors.Wrap(err, "invalid kafka version")
	}

	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = version
	saramaConfig.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.BalanceStrategyRoundRobin}
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	saramaConfig.Consumer.Group.Session.Timeout = 20 * time.Second
	saramaConfig.Consumer.Group.Heartbeat.Interval = 6 * time.Second
	saramaConfig.Consumer.MaxProcessingTime = 3 * time.Second

	group, err := sarama.NewConsumerGroup(strings.Split(cfg.Peers, ","), cfg.GroupName, saramaConfig)
	if err != nil {
		return nil, errors.Wrap(err, "error creating consumer group client")
	}

	return newKafkaConsumer(group, cfg.Topic, logger, processor), nil
}

func newKafkaConsumer(group sarama.ConsumerGroup, topic string, logger *zap.Logger, processor MessageProcessor) *KafkaConsumer {
	return &KafkaConsumer{
		logger:    logger.Named("kafka-consumer"),
		group:     group,
		topic:     topic,
		processor: processor,
		ready:     make(chan struct{}),
	}
}

// Run consumes until ctx is cancelled or the group fails. Handlers still running
// when the consume loop exits are awaited before the group is closed.
func (k *KafkaConsumer) Run(ctx context.Context) error {
	errChan := make(chan error, 1)
	consumeDone := make(chan struct{})

	go func() {
		defer close(consumeDone)
		for {
			if err := k.group.Consume(ctx, []string{k.topic}, k); err != nil {
				k.logger.Error("error from consumer", zap.Error(err))
				errChan <- err
				return
			}

			if ctx.Err() != nil {
				return
			}
		}
	}()

	select {
	case <-k.ready:
		k.logger.Info("consumer group session started", zap.String("topic", k.topic))
	case <-ctx.Done():
	case <-consumeDone:
	}

	var runErr error
	select {
	case <-ctx.Done():
		k.logger.Info("terminating consume: context canceled")
	case <-consumeDone:
	}
	<-consumeDone

	select {
	case runErr = <-errChan:
	default:
	}

	k.inflight.Wait()

	if err := k.group.Close(); err != nil && runErr == nil {
		runErr = errors.Wrap(err, "error closing consumer group")
	}

	return runErr
}

func (k *KafkaConsumer) Setup(sarama.ConsumerGroupSession) error {
	k.logger.Debug("setup")
	k.readyOnce.Do(func() { close(k.ready) })
	return nil
}

func (k *KafkaConsumer) Cleanup(sarama.ConsumerGroupSession) error {
	k.logger.Debug("cleanup")
	return nil
}

func (k *KafkaConsumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			if session.Context().Err() != nil {
				return nil
			}

			k.inflight.Add(1)
			go func() {
				defer k.inflight.Done()

				ctx := otel.GetTextMapPropagator().Extract(
					context.Background(), otelsarama.NewConsumerMessageCarrier(message),
				)

				if err := k.handle(ctx, message.Value); err != nil {
					k.logger.Error("error processing submission",
						zap.ByteString("data", message.Value),
						zap.Error(err),
					)
				}

				session.MarkMessage(message, "")
			}()
		case <-session.Context().Done():
			return nil
		}
	}
}

// handle runs one submission. Malformed messages are reported and dropped; they are
// never redelivered.
func (k *KafkaConsumer) handle(ctx context.Context, value []byte) error {
	var msg entities.SubmissionMessage
	if err := json.Unmarshal(value, &msg); err != nil {
		return errors.Wrap(err, "json.Unmarshal")
	}

	domain, err := entities.ParseDomain(msg.Domain)
	if err != nil {
		return err
	}

	if msg.RequestID == uuid.Nil {
		msg.RequestID = uuid.New()
	}
	ctx = ucase.WithRequestID(ctx, msg.RequestID)

	view, err := k.processor.Predict(ctx, domain, msg.Fields)
	if err != nil {
		k.logger.Info(
			"submission rejected",
			zap.String("requestID", msg.RequestID.String()),
			zap.String("domain", string(domain)),
			zap.String("message", entities.UserMessage(err)),
		)
		return nil
	}

	k.logger.Info(
		"submission predicted",
		zap.String("requestID", msg.RequestID.String()),
		zap.String("domain", string(domain)),
		zap.Float64("prediction", view.Prediction),
	)

	return nil
}
