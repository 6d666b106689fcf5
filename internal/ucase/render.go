package ucase

import (
	"context"
	"encoding/base64"
	"fmt"
	"html/template"
	"math"

	"github.com/Imm0bilize/xai-prediction-gateway/internal/entities"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

type RenderUseCase struct {
	tracer trace.Tracer
	logger *zap.Logger

	inr *message.Printer
	usd *message.Printer
}

var (
	_ RendererUCase = RenderUseCase{}
)

func NewRenderUseCase(logger *zap.Logger) *RenderUseCase {
	return &RenderUseCase{
		tracer: otel.GetTracerProvider().Tracer("RenderUseCase"),
		logger: logger.Named("renderer"),
		inr:    message.NewPrinter(language.MustParse("en-IN")),
		usd:    message.NewPrinter(language.AmericanEnglish),
	}
}

func (r RenderUseCase) Render(ctx context.Context, domain entities.Domain, resp entities.PredictionResponse) (entities.View, error) {
	_, span := r.tracer.Start(ctx, "Render")
	defer span.End()

	if resp.Prediction == nil {
		err := &entities.DecodeError{}
		span.RecordError(err)
		return entities.View{}, err
	}

	view := entities.View{Domain: domain, Prediction: *resp.Prediction}

	switch domain {
	case entities.DomainLoan:
		r.loan(&view, resp)
	case entities.DomainProperty:
		view.Value = "₹" + r.inr.Sprintf("%v", number.Decimal(roundHalfAway(view.Prediction, 3))) + " Lakh"
		view.Headline = "Estimated Property Value"
		view.Detail = "Based on the provided property details"
	case entities.DomainStock:
		view.Value = "$" + r.usd.Sprintf("%v", number.Decimal(
			roundHalfAway(view.Prediction, 2),
			number.MinFractionDigits(2),
			number.MaxFractionDigits(2),
		))
		view.Headline = "Predicted Stock Price"
		view.Detail = "Based on the provided stock data"
		if img, ok := r.image(resp.ShapPlot); ok {
			view.Image = img
			view.ImageTitle = "SHAP Explanation"
		}
	default:
		span.RecordError(entities.ErrUnknownDomain)
		return entities.View{}, entities.ErrUnknownDomain
	}

	return view, nil
}

func (r RenderUseCase) loan(view *entities.View, resp entities.PredictionResponse) {
	if view.Prediction == 0 {
		view.Verdict = entities.VerdictApproved
		view.Headline = "Loan Approved"
		view.Detail = "The model predicts this loan will NOT default. The loan is considered safe."
	} else {
		view.Verdict = entities.VerdictHighRisk
		view.Headline = "Loan High Risk"
		view.Detail = "The model predicts this loan will DEFAULT. Consider additional risk assessment."
	}

	if img, ok := r.image(resp.LimePlot); ok {
		view.Image = img
		view.ImageTitle = "LIME Explanation"
	}

	for _, w := range resp.LimeWeights {
		view.Weights = append(view.Weights, WeightRow(w))
	}
}

// WeightRow labels a LIME weight. Zero counts as increasing risk.
func WeightRow(w entities.FeatureWeight) entities.WeightRow {
	row := entities.WeightRow{
		Feature:    w.Feature,
		Weight:     w.Weight,
		WeightText: fmt.Sprintf("%.3f", w.Weight),
		Effect:     entities.EffectIncreasesRisk,
	}
	if w.Weight > 0 {
		row.Effect = entities.EffectIncreasesApproval
		row.ReducesRisk = true
	}
	return row
}

func (r RenderUseCase) image(payload string) (template.URL, bool) {
	if payload == "" {
		return "", false
	}
	if _, err := base64.StdEncoding.DecodeString(payload); err != nil {
		r.logger.Warn("dropping plot with invalid base64 payload", zap.Error(err))
		return "", false
	}
	return template.URL("data:image/png;base64," + payload), true
}

// roundHalfAway rounds to the given number of decimals with ties away from zero.
// x/text formats with half-even rounding, which would show 0.125 as 0.12.
func roundHalfAway(v float64, decimals int) float64 {
	scale := math.Pow10(decimals)
	return math.Round(v*scale) / scale
}
