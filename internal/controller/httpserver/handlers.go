package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/Imm0bilize/xai-prediction-gateway/internal/entities"
	"github.com/Imm0bilize/xai-prediction-gateway/internal/ucase"
	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	if err := h.pages.render(w, http.StatusOK, h.pages.index, newPageData("Explainable Predictions")); err != nil {
		h.logger.Error("error rendering index", zap.Error(err))
	}
}

func (h *Handler) showForm(w http.ResponseWriter, r *http.Request) {
	form, ok := h.formFromPath(w, r)
	if !ok {
		return
	}

	h.renderForm(w, form.Snapshot())
}

func (h *Handler) submitForm(w http.ResponseWriter, r *http.Request) {
	form, ok := h.formFromPath(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form body", http.StatusBadRequest)
		return
	}

	for _, f := range entities.Fields(form.Domain()) {
		if v, ok := r.PostForm[f.Name]; ok && len(v) > 0 {
			if err := form.Set(f.Name, v[0]); err != nil {
				h.logger.Warn("form field rejected", zap.String("field", f.Name), zap.Error(err))
			}
		}
	}

	if err := form.Submit(r.Context(), h.processor); err != nil {
		h.logger.Debug(
			"form submission failed",
			zap.String("domain", string(form.Domain())),
			zap.String("requestID", requestIDFromRequest(r)),
			zap.Error(err),
		)
	}

	h.renderForm(w, form.Snapshot())
}

func (h *Handler) formFromPath(w http.ResponseWriter, r *http.Request) (*ucase.Form, bool) {
	domain, err := entities.ParseDomain(chi.URLParam(r, "domain"))
	if err != nil {
		http.NotFound(w, r)
		return nil, false
	}

	form, err := ucase.NewForm(domain)
	if err != nil {
		http.NotFound(w, r)
		return nil, false
	}

	return form, true
}

func (h *Handler) renderForm(w http.ResponseWriter, s ucase.Snapshot) {
	if err := h.pages.render(w, http.StatusOK, h.pages.form, formPageData(s)); err != nil {
		h.logger.Error("error rendering form", zap.String("domain", string(s.Domain)), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

type formResponse struct {
	Domain entities.Domain  `json:"domain"`
	Title  string           `json:"title"`
	Fields []entities.Field `json:"fields"`
}

func (h *Handler) getForm(w http.ResponseWriter, r *http.Request) {
	domain, err := entities.ParseDomain(chi.URLParam(r, "domain"))
	if err != nil {
		status, code := mapSubmissionError(err)
		writeError(w, status, errorPayload{Code: code, Message: err.Error(), RequestID: requestIDFromRequest(r)})
		return
	}

	writeSuccess(w, http.StatusOK, "", formResponse{Domain: domain, Title: domain.Title(), Fields: entities.Fields(domain)})
}

// predict accepts field values as JSON strings or numbers and answers with the
// rendered view of the prediction.
func (h *Handler) predict(w http.ResponseWriter, r *http.Request) {
	requestID := requestIDFromRequest(r)

	form, err := h.apiForm(r)
	if err != nil {
		status, code := mapSubmissionError(err)
		writeError(w, status, errorPayload{Code: code, Message: err.Error(), RequestID: requestID})
		return
	}

	if err := form.Submit(r.Context(), h.processor); err != nil {
		status, code := mapSubmissionError(err)
		payload := errorPayload{Code: code, Message: entities.UserMessage(err), RequestID: requestID}

		var validationErr *entities.ValidationError
		if errors.As(err, &validationErr) {
			payload.Field = validationErr.Field
		}

		writeError(w, status, payload)
		return
	}

	writeSuccess(w, http.StatusOK, "", form.Snapshot().View)
}

var errInvalidBody = errors.New("invalid json body")

func (h *Handler) apiForm(r *http.Request) (*ucase.Form, error) {
	domain, err := entities.ParseDomain(chi.URLParam(r, "domain"))
	if err != nil {
		return nil, err
	}

	form, err := ucase.NewForm(domain)
	if err != nil {
		return nil, err
	}

	var body map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, errors.Wrap(errInvalidBody, err.Error())
	}

	for name, raw := range body {
		if err := form.Set(name, rawValue(raw)); err != nil {
			return nil, err
		}
	}

	return form, nil
}

func rawValue(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	}
	if bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	return string(trimmed)
}
