package predictionservice

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Imm0bilize/xai-prediction-gateway/internal/config"
	"github.com/Imm0bilize/xai-prediction-gateway/internal/entities"
	"github.com/avast/retry-go"
	"github.com/pkg/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type Client struct {
	httpClient *http.Client
	healthURL  string
	endpoints  map[entities.Domain]string
	tracer     trace.Tracer
	logger     *zap.Logger
}

// NewClient builds a client for the prediction service. Prediction calls carry no
// client-side timeout: they end when the service answers or the caller's context ends.
func NewClient(cfg config.PredictionServiceConfig, logger *zap.Logger) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if base == "" {
		return nil, errors.New("prediction service url is empty")
	}

	return &Client{
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		healthURL:  base + cfg.HealthPath,
		endpoints: map[entities.Domain]string{
			entities.DomainLoan:     base + cfg.LoanPath,
			entities.DomainProperty: base + cfg.PropertyPath,
			entities.DomainStock:    base + cfg.StockPath,
		},
		logger: logger.Named("prediction-service-client"),
		tracer: otel.Tracer("predictionservice-client"),
	}, nil
}

func (c Client) Predict(ctx context.Context, domain entities.Domain, payload any) (entities.PredictionResponse, error) {
	ctx, span := c.tracer.Start(ctx, "PredictionServiceClient.Predict")
	defer span.End()
	span.SetAttributes(attribute.String("prediction.domain", string(domain)))

	url, ok := c.endpoints[domain]
	if !ok {
		span.RecordError(entities.ErrUnknownDomain)
		return entities.PredictionResponse{}, entities.ErrUnknownDomain
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return entities.PredictionResponse{}, errors.Wrap(err, "json.Marshal")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return entities.PredictionResponse{}, errors.Wrap(err, "http.NewRequestWithContext")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		c.logger.Error("prediction request failed", zap.String("domain", string(domain)), zap.Error(err))
		return entities.PredictionResponse{}, &entities.NetworkError{Err: err}
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		err := &entities.TransportError{StatusCode: resp.StatusCode}
		span.RecordError(err)
		c.logger.Warn(
			"prediction service returned non-success status",
			zap.String("domain", string(domain)),
			zap.Int("status", resp.StatusCode),
		)
		return entities.PredictionResponse{}, err
	}

	var result entities.PredictionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		span.RecordError(err)
		return entities.PredictionResponse{}, &entities.DecodeError{Err: err}
	}
	if result.Prediction == nil {
		err := &entities.DecodeError{Err: errors.New("response has no prediction field")}
		span.RecordError(err)
		return entities.PredictionResponse{}, err
	}

	return result, nil
}

// Ping checks that the prediction service answers on its health path. It is used at
// start-up only, which is the one place this client retries.
func (c Client) Ping(ctx context.Context) error {
	ctx, span := c.tracer.Start(ctx, "PredictionServiceClient.Ping")
	defer span.End()

	if err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.healthURL, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}

			resp, err := c.httpClient.Do(req)
			if err != nil {
				span.AddEvent("ping error, use retry")
				return err
			}
			defer resp.Body.Close()
			_, _ = io.Copy(io.Discard, resp.Body)

			if resp.StatusCode < 200 || resp.StatusCode > 299 {
				return &entities.TransportError{StatusCode: resp.StatusCode}
			}

			return nil
		},
		retry.Attempts(3),
		retry.Delay(50*time.Millisecond),
		retry.Context(ctx),
	); err != nil {
		span.RecordError(err)
		return errors.Wrap(err, "prediction service is not reachable")
	}

	return nil
}

func (c Client) Shutdown(_ context.Context) error {
	c.httpClient.CloseIdleConnections()
	return nil
}
