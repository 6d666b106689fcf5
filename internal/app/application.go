package app

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Imm0bilize/xai-prediction-gateway/internal/config"
	"github.com/Imm0bilize/xai-prediction-gateway/internal/controller/brokerconsumer"
	"github.com/Imm0bilize/xai-prediction-gateway/internal/controller/httpserver"
	"github.com/Imm0bilize/xai-prediction-gateway/internal/infrastucture/brokerproducer"
	"github.com/Imm0bilize/xai-prediction-gateway/internal/ucase"
	"github.com/Imm0bilize/xai-prediction-gateway/pkg/predictionservice"
	"github.com/Shopify/sarama"
	"github.com/pkg/errors"
	"go.opentelemetry.io/contrib/instrumentation/github.com/Shopify/sarama/otelsarama"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	zapCfg := zap.NewDevelopmentConfig()
	if strings.EqualFold(cfg.Env, "production") {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, errors.Wrap(err, "invalid log level")
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}

func createTraceProvider(cfg config.OTELConfig) (func(context.Context) error, error) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}))

	if cfg.Host == "" {
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := otlptrace.New(
		context.Background(),
		otlptracegrpc.NewClient(
			otlptracegrpc.WithInsecure(),
			otlptracegrpc.WithEndpoint(net.JoinHostPort(cfg.Host, cfg.Port)),
		),
	)
	if err != nil {
		return nil, errors.Wrap(err, "error creating otlp exporter")
	}

	resources, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			attribute.String("service.name", cfg.ServiceName),
			attribute.String("library.language", "go"),
		),
	)
	if err != nil {
		log.Printf("could not set resources: %v", err)
	}

	otel.SetTracerProvider(
		sdktrace.NewTracerProvider(
			sdktrace.WithSampler(sdktrace.AlwaysSample()),
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(resources),
		),
	)

	return exporter.Shutdown, nil
}

var requiredAcks = map[string]sarama.RequiredAcks{
	"none":  sarama.NoResponse,
	"local": sarama.WaitForLocal,
	"all":   sarama.WaitForAll,
}

func newProducerConfig(cfg config.KafkaProducerConfig) (*sarama.Config, error) {
	version, err := sarama.ParseKafkaVersion(cfg.Version)
	if err != nil {
		return nil, errors.Wrap(err, "invalid kafka version")
	}

	acks, ok := requiredAcks[strings.ToLower(cfg.RequiredAcks)]
	if !ok {
		return nil, errors.Errorf("invalid required acks %q, want none, local or all", cfg.RequiredAcks)
	}

	kfkCfg := sarama.NewConfig()
	kfkCfg.Version = version
	kfkCfg.ClientID = "xai-prediction-gateway"
	kfkCfg.Producer.RequiredAcks = acks
	kfkCfg.Producer.Retry.Max = cfg.RetryMax
	kfkCfg.Producer.Return.Successes = true

	if err := kfkCfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid producer config")
	}

	return kfkCfg, nil
}

func createKafkaProducer(cfg config.KafkaProducerConfig) (sarama.SyncProducer, error) {
	kfkCfg, err := newProducerConfig(cfg)
	if err != nil {
		return nil, err
	}

	producer, err := sarama.NewSyncProducer(strings.Split(cfg.Peers, ","), kfkCfg)
	if err != nil {
		return nil, errors.Wrapf(err, "error creating producer for %s", cfg.Peers)
	}

	return otelsarama.WrapSyncProducer(kfkCfg, producer), nil
}

func Run(cfg *config.Config) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	logger, err := newLogger(cfg.Log)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Debug("logger initialized")

	shutdownTraceProvider, err := createTraceProvider(cfg.OTEL)
	if err != nil {
		logger.Fatal("error creating trace provider", zap.Error(err))
	}

	predictor, err := predictionservice.NewClient(cfg.PredictionService, logger)
	if err != nil {
		logger.Fatal("error creating prediction service client", zap.Error(err))
	}
	logger.Debug("prediction service client created", zap.String("url", cfg.PredictionService.URL))

	go func() {
		if err := predictor.Ping(ctx); err != nil {
			logger.Warn("prediction service is not reachable yet, pages will report errors until it is", zap.Error(err))
			return
		}
		logger.Info("prediction service reachable")
	}()

	var (
		notifier ucase.NotifierUCase
		producer *brokerproducer.KafkaProducer
	)
	if cfg.Producer.Peers != "" {
		syncProducer, err := createKafkaProducer(cfg.Producer)
		if err != nil {
			logger.Fatal("error creating Kafka producer", zap.Error(err))
		}
		producer = brokerproducer.NewKafkaProducer(logger, syncProducer, cfg.Producer.Topic)
		notifier = producer
		logger.Debug("kafka producer created", zap.String("topic", cfg.Producer.Topic))
	}

	uCase := ucase.NewUseCase(
		predictor,
		ucase.NewRenderUseCase(logger),
		notifier,
		logger,
	)

	consumerDone := make(chan struct{})
	if cfg.Consumer.Peers != "" {
		consumer, err := brokerconsumer.NewKafkaConsumer(cfg.Consumer, logger, uCase)
		if err != nil {
			logger.Fatal("error creating Kafka consumer", zap.Error(err))
		}

		go func() {
			defer close(consumerDone)
			if err := consumer.Run(ctx); err != nil {
				logger.Error("error running consumer", zap.Error(err))
				cancel()
			}
		}()

		logger.Debug("kafka consumer run")
	} else {
		close(consumerDone)
	}

	handler, err := httpserver.NewHandler(uCase, logger)
	if err != nil {
		logger.Fatal("error creating http handler", zap.Error(err))
	}

	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           httpserver.NewRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("error running http server", zap.Error(err))
			cancel()
		}
	}()

	<-ctx.Done()

	shCtx, shCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shCancel()

	if err = server.Shutdown(shCtx); err != nil {
		logger.Error("error stopping http server", zap.Error(err))
	}

	select {
	case <-consumerDone:
	case <-shCtx.Done():
		logger.Error("consumer did not stop in time")
	}

	if producer != nil {
		if err = producer.Close(); err != nil {
			logger.Error("error stopping kafka producer", zap.Error(err))
		}
	}

	if err = predictor.Shutdown(shCtx); err != nil {
		logger.Error("error stopping prediction service client", zap.Error(err))
	}

	if err = shutdownTraceProvider(shCtx); err != nil {
		logger.Error("error stopping trace provider", zap.Error(err))
	}
}
