package ucase

import (
	"context"
	"time"

	"github.com/Imm0bilize/xai-prediction-gateway/internal/entities"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type (
	PredictorUCase interface {
		Predict(ctx context.Context, domain entities.Domain, payload any) (entities.PredictionResponse, error)
	}

	RendererUCase interface {
		Render(ctx context.Context, domain entities.Domain, resp entities.PredictionResponse) (entities.View, error)
	}

	NotifierUCase interface {
		Notify(ctx context.Context, event entities.PredictionEvent) error
	}
)

type UseCase struct {
	predictor PredictorUCase
	renderer  RendererUCase
	notifier  NotifierUCase

	logger *zap.Logger
	tracer trace.Tracer
	now    func() time.Time
}

func NewUseCase(
	predictor PredictorUCase,
	renderer RendererUCase,
	notifier NotifierUCase,
	logger *zap.Logger,
) *UseCase {
	return &UseCase{
		predictor: predictor,
		renderer:  renderer,
		notifier:  notifier,
		logger:    logger.Named("ucase"),
		tracer:    otel.GetTracerProvider().Tracer("uCase"),
		now:       time.Now,
	}
}

// Predict runs one submission: validate, call the prediction service, render.
// A validation failure never reaches the network.
func (u UseCase) Predict(ctx context.Context, domain entities.Domain, values map[string]string) (entities.View, error) {
	ctx, span := u.tracer.Start(ctx, "Predict")
	defer span.End()
	span.SetAttributes(attribute.String("prediction.domain", string(domain)))

	event := entities.PredictionEvent{RequestID: RequestIDFromContext(ctx), Domain: domain}

	payload, err := Validate(domain, values)
	if err != nil {
		span.RecordError(err)
		event.Outcome = entities.OutcomeValidationError
		event.Message = entities.UserMessage(err)
		u.notify(ctx, event)
		return entities.View{}, errors.Wrap(err, "Validate")
	}

	resp, err := u.predictor.Predict(ctx, domain, payload)
	if err != nil {
		span.RecordError(err)
		event.Outcome = entities.OutcomeFailure
		event.Message = entities.UserMessage(err)
		u.notify(ctx, event)
		return entities.View{}, errors.Wrap(err, "predictor.Predict")
	}

	view, err := u.renderer.Render(ctx, domain, resp)
	if err != nil {
		span.RecordError(err)
		event.Outcome = entities.OutcomeFailure
		event.Message = entities.UserMessage(err)
		u.notify(ctx, event)
		return entities.View{}, errors.Wrap(err, "renderer.Render")
	}

	event.Outcome = entities.OutcomeSuccess
	event.Prediction = resp.Prediction
	u.notify(ctx, event)

	return view, nil
}

func (u UseCase) notify(ctx context.Context, event entities.PredictionEvent) {
	if u.notifier == nil {
		return
	}
	if event.RequestID == uuid.Nil {
		event.RequestID = uuid.New()
	}
	event.Timestamp = u.now().UTC()

	if err := u.notifier.Notify(ctx, event); err != nil {
		u.logger.Error(
			"error publishing prediction event",
			zap.String("requestID", event.RequestID.String()),
			zap.Error(err),
		)
	}
}

type requestIDKey struct{}

func WithRequestID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestIDFromContext(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(requestIDKey{}).(uuid.UUID)
	return id
}
