package dashboard

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

// Template function helpers.
var templateFuncs = template.FuncMap{
	"formatTime": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}

		return t.Format("2006-01-02 15:04:05")
	},
}

// Renderer handles HTML template rendering.
type Renderer struct {
	pageTmpl  *template.Template
	errorTmpl *template.Template
}

// NewRenderer creates a new template renderer.
func NewRenderer() (*Renderer, error) {
	pageTmpl, err := template.New("dashboard.html").
		Funcs(templateFuncs).
		ParseFS(templateFS, "templates/dashboard.html")
	if err != nil {
		return nil, fmt.Errorf("parse dashboard template: %w", err)
	}

	errorTmpl, err := template.New("error.html").
		ParseFS(templateFS, "templates/error.html")
	if err != nil {
		return nil, fmt.Errorf("parse error template: %w", err)
	}

	return &Renderer{
		pageTmpl:  pageTmpl,
		errorTmpl: errorTmpl,
	}, nil
}

// SubjectOption is one entry of the subject multiselect.
type SubjectOption struct {
	Code     string
	Label    string
	Selected bool
}

// SectionView is one chart panel of the page.
type SectionView struct {
	Title    string
	Chart    string
	SVG      template.HTML // Inline chart produced by the chart renderer
	ImageURL template.URL
	PNGURL   template.URL
}

// PageData contains all data for rendering the dashboard page.
type PageData struct {
	Subjects      []SubjectOption
	Sections      []SectionView
	SelectedCount int
	NoneSelected  bool // Filter submitted with every subject cleared
	TotalRecords  int
	ShownRecords  int
	Dropped       int
	DatasetPath   string
	LoadedAt      time.Time
	RequestID     string
}

// ErrorData contains data for rendering error pages.
type ErrorData struct {
	Code      int
	Title     string
	Message   string
	RequestID string
}

// RenderPage renders the dashboard page.
func (r *Renderer) RenderPage(w io.Writer, data *PageData) error {
	if err := r.pageTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("execute dashboard template: %w", err)
	}

	return nil
}

// RenderError renders an error page.
func (r *Renderer) RenderError(w io.Writer, data *ErrorData) error {
	if err := r.errorTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("execute error template: %w", err)
	}

	return nil
}
