package entities

import "html/template"

type FeatureWeight struct {
	Feature string  `json:"feature"`
	Weight  float64 `json:"weight"`
}

// PredictionResponse is the union of every shape the prediction service returns.
// Prediction is a pointer so that a body without the field can be told apart from 0.
type PredictionResponse struct {
	Prediction  *float64        `json:"prediction"`
	LimePlot    string          `json:"lime_plot,omitempty"`
	LimeWeights []FeatureWeight `json:"lime_weights,omitempty"`
	ShapPlot    string          `json:"shap_plot,omitempty"`
}

type Verdict string

const (
	VerdictApproved Verdict = "approved"
	VerdictHighRisk Verdict = "high_risk"
)

type Effect string

const (
	EffectIncreasesApproval Effect = "Increases Approval"
	EffectIncreasesRisk     Effect = "Increases Risk"
)

type WeightRow struct {
	Feature     string  `json:"feature"`
	Weight      float64 `json:"weight"`
	WeightText  string  `json:"weight_text"`
	Effect      Effect  `json:"effect"`
	ReducesRisk bool    `json:"reduces_risk"`
}

// View is the presentation of one successful prediction.
type View struct {
	Domain     Domain       `json:"domain"`
	Prediction float64      `json:"prediction"`
	Verdict    Verdict      `json:"verdict,omitempty"`
	Headline   string       `json:"headline"`
	Value      string       `json:"value,omitempty"`
	Detail     string       `json:"detail"`
	Image      template.URL `json:"image,omitempty"`
	ImageTitle string       `json:"image_title,omitempty"`
	Weights    []WeightRow  `json:"weights,omitempty"`
}

func (v View) HasExplanation() bool {
	return v.Image != "" || len(v.Weights) > 0
}
