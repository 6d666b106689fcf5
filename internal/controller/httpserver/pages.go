package httpserver

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/Imm0bilize/xai-prediction-gateway/internal/entities"
	"github.com/Imm0bilize/xai-prediction-gateway/internal/ucase"
	"github.com/pkg/errors"
)

//go:embed templates/*.html
var templateFS embed.FS

type pages struct {
	index *template.Template
	form  *template.Template
}

func loadPages() (*pages, error) {
	index, err := template.ParseFS(templateFS, "templates/layout.html", "templates/index.html")
	if err != nil {
		return nil, errors.Wrap(err, "parse index template")
	}

	form, err := template.ParseFS(templateFS, "templates/layout.html", "templates/form.html")
	if err != nil {
		return nil, errors.Wrap(err, "parse form template")
	}

	return &pages{index: index, form: form}, nil
}

type domainLink struct {
	Domain entities.Domain
	Title  string
}

type optionView struct {
	Value    string
	Label    string
	Selected bool
}

type fieldView struct {
	entities.Field
	Value     string
	InputType string
	Choices   []optionView
}

type pageData struct {
	Title   string
	Domains []domainLink
	Domain  entities.Domain
	Fields  []fieldView
	Phase   string
	Error   string
	View    *entities.View
}

func newPageData(title string) pageData {
	data := pageData{Title: title}
	for _, d := range entities.Domains() {
		data.Domains = append(data.Domains, domainLink{Domain: d, Title: d.Title()})
	}
	return data
}

func formPageData(s ucase.Snapshot) pageData {
	data := newPageData(s.Domain.Title())
	data.Domain = s.Domain
	data.Phase = s.Phase.String()
	data.Error = s.Error
	data.View = s.View

	for _, f := range entities.Fields(s.Domain) {
		fv := fieldView{Field: f, Value: s.Values[f.Name]}
		switch {
		case len(f.Options) > 0:
			fv.InputType = "select"
			for _, o := range f.Options {
				fv.Choices = append(fv.Choices, optionView{Value: o.Value, Label: o.Label, Selected: o.Value == fv.Value})
			}
		case f.Kind == entities.KindText:
			fv.InputType = "text"
		default:
			fv.InputType = "number"
		}
		data.Fields = append(data.Fields, fv)
	}

	return data
}

func (p *pages) render(w http.ResponseWriter, status int, tmpl *template.Template, data pageData) error {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return errors.Wrap(err, "execute template")
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
