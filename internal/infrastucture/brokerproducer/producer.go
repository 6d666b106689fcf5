package brokerproducer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Imm0bilize/xai-prediction-gateway/internal/entities"
	"github.com/Shopify/sarama"
	"github.com/pkg/errors"
	"go.opentelemetry.io/contrib/instrumentation/github.com/Shopify/sarama/otelsarama"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type KafkaProducer struct {
	topic    string
	tracer   trace.Tracer
	producer sarama.SyncProducer
	logger   *zap.Logger
}

func NewKafkaProducer(logger *zap.Logger, producer sarama.SyncProducer, topic string) *KafkaProducer {
	tracer := otel.Tracer("msbroker")

	return &KafkaProducer{
		tracer:   tracer,
		producer: producer,
		logger:   logger.Named("kafka-producer"),
		topic:    topic,
	}
}

// Notify publishes the outcome of one submission, keyed by request id.
func (k KafkaProducer) Notify(ctx context.Context, event entities.PredictionEvent) error {
	ctx, span := k.tracer.Start(ctx, "msbroker.Send")
	defer span.End()

	msgBytes, err := json.Marshal(&event)
	if err != nil {
		return errors.Wrap(err, "json.Marshal")
	}

	producerMsg := &sarama.ProducerMessage{
		Topic:     k.topic,
		Key:       sarama.StringEncoder(event.RequestID.String()),
		Value:     sarama.ByteEncoder(msgBytes),
		Timestamp: time.Now(),
		Headers: []sarama.RecordHeader{
			{Key: []byte("domain"), Value: []byte(event.Domain)},
			{Key: []byte("outcome"), Value: []byte(event.Outcome)},
		},
	}

	otel.GetTextMapPropagator().Inject(ctx, otelsarama.NewProducerMessageCarrier(producerMsg))

	partition, offset, err := k.producer.SendMessage(producerMsg)
	if err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "can't send message into kafka")
	}

	k.logger.Debug(
		"prediction event sent to broker",
		zap.String("requestID", event.RequestID.String()),
		zap.String("outcome", string(event.Outcome)),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset),
	)

	return nil
}

func (k KafkaProducer) Close() error {
	return k.producer.Close()
}
