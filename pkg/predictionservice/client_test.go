package predictionservice

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/Imm0bilize/xai-prediction-gateway/internal/config"
	"github.com/Imm0bilize/xai-prediction-gateway/internal/entities"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	c, err := NewClient(config.PredictionServiceConfig{
		URL:          url,
		LoanPath:     "/predict_loan",
		PropertyPath: "/predict_property",
		StockPath:    "/predict_stock",
		HealthPath:   "/",
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestPredictPostsJSON(t *testing.T) {
	var (
		gotPath        string
		gotMethod      string
		gotContentType string
		gotBody        map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"prediction": 123.4, "shap_plot": "aGVsbG8="}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL+"/")
	resp, err := c.Predict(context.Background(), entities.DomainStock, entities.StockRequest{Open: 1, High: 2, Low: 0.5, Volume: 10, Change: -0.25, PrevPrice: 1.5})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}

	if gotMethod != http.MethodPost || gotPath != "/predict_stock" {
		t.Fatalf("unexpected request: %s %s", gotMethod, gotPath)
	}
	if gotContentType != "application/json" {
		t.Fatalf("unexpected content type: %q", gotContentType)
	}
	if gotBody["change"] != -0.25 || gotBody["prev_price"] != 1.5 || len(gotBody) != 6 {
		t.Fatalf("unexpected body: %v", gotBody)
	}
	if resp.Prediction == nil || *resp.Prediction != 123.4 {
		t.Fatalf("unexpected prediction: %+v", resp.Prediction)
	}
	if resp.ShapPlot != "aGVsbG8=" {
		t.Fatalf("unexpected shap plot: %q", resp.ShapPlot)
	}
}

func TestPredictRoutesEachDomain(t *testing.T) {
	var gotPath atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath.Store(r.URL.Path)
		_, _ = io.WriteString(w, `{"prediction": 1}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	for domain, want := range map[entities.Domain]string{
		entities.DomainLoan:     "/predict_loan",
		entities.DomainProperty: "/predict_property",
		entities.DomainStock:    "/predict_stock",
	} {
		if _, err := c.Predict(context.Background(), domain, map[string]any{}); err != nil {
			t.Fatalf("%s: Predict: %v", domain, err)
		}
		if got := gotPath.Load(); got != want {
			t.Fatalf("%s: posted to %v, want %s", domain, got, want)
		}
	}
}

func TestPredictNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"prediction": 1}`)
	}))
	defer srv.Close()

	resp, err := newTestClient(t, srv.URL).Predict(context.Background(), entities.DomainLoan, entities.LoanRequest{})

	var transportErr *entities.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if transportErr.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("unexpected status: %d", transportErr.StatusCode)
	}
	if !strings.Contains(err.Error(), "503") {
		t.Fatalf("message must embed the status: %q", err.Error())
	}
	if resp.Prediction != nil {
		t.Fatalf("prediction must stay unset, got %v", *resp.Prediction)
	}
}

func TestPredictDecodeErrors(t *testing.T) {
	cases := map[string]string{
		"invalid json":       `<html>oops</html>`,
		"missing prediction": `{"lime_plot": "aGVsbG8="}`,
	}

	for name, body := range cases {
		body := body
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, body)
			}))
			defer srv.Close()

			_, err := newTestClient(t, srv.URL).Predict(context.Background(), entities.DomainProperty, entities.PropertyRequest{})

			var decodeErr *entities.DecodeError
			if !errors.As(err, &decodeErr) {
				t.Fatalf("expected decode error, got %v", err)
			}
			if got := entities.UserMessage(err); got != entities.FallbackMessage {
				t.Fatalf("unexpected user message: %q", got)
			}
		})
	}
}

func TestPredictNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newTestClient(t, url).Predict(context.Background(), entities.DomainLoan, entities.LoanRequest{})

	var networkErr *entities.NetworkError
	if !errors.As(err, &networkErr) {
		t.Fatalf("expected network error, got %v", err)
	}
	if entities.UserMessage(err) == "" {
		t.Fatal("network error must produce a message")
	}
}

func TestPredictUnknownDomain(t *testing.T) {
	c := newTestClient(t, "http://127.0.0.1:1")
	if _, err := c.Predict(context.Background(), entities.Domain("weather"), nil); !errors.Is(err, entities.ErrUnknownDomain) {
		t.Fatalf("expected ErrUnknownDomain, got %v", err)
	}
}

func TestPingRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = io.WriteString(w, `{"status": 200}`)
	}))
	defer srv.Close()

	if err := newTestClient(t, srv.URL).Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestPredictDoesNotRetry(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, _ = newTestClient(t, srv.URL).Predict(context.Background(), entities.DomainStock, entities.StockRequest{})
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected a single attempt, got %d", got)
	}
}

func TestNewClientRequiresURL(t *testing.T) {
	if _, err := NewClient(config.PredictionServiceConfig{URL: "  "}, zap.NewNop()); err == nil {
		t.Fatal("expected error for empty url")
	}
}
