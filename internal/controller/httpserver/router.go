package httpserver

import (
	"context"
	"net/http"

	"github.com/Imm0bilize/xai-prediction-gateway/internal/entities"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

type Processor interface {
	Predict(ctx context.Context, domain entities.Domain, values map[string]string) (entities.View, error)
}

type Handler struct {
	processor Processor
	pages     *pages
	logger    *zap.Logger
}

func NewHandler(processor Processor, logger *zap.Logger) (*Handler, error) {
	p, err := loadPages()
	if err != nil {
		return nil, err
	}

	return &Handler{
		processor: processor,
		pages:     p,
		logger:    logger.Named("http"),
	}, nil
}

func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(h.accessLog)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { writeSuccess(w, http.StatusOK, "ok", nil) })
	r.Get("/", h.index)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/forms/{domain}", h.getForm)
		r.Post("/predict/{domain}", h.predict)
	})

	r.Get("/{domain}", h.showForm)
	r.Post("/{domain}", h.submitForm)

	return otelhttp.NewHandler(r, "xai-prediction-gateway")
}
