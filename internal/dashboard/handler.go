// Package dashboard serves the question-bank dashboard: the filter page with
// inline charts, chart images and a JSON view of the aggregates.
package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/lueurxax/ege-dashboard/internal/analytics"
	"github.com/lueurxax/ege-dashboard/internal/charts"
	apperrors "github.com/lueurxax/ege-dashboard/internal/core/errors"
	"github.com/lueurxax/ege-dashboard/internal/dataset"
	"github.com/lueurxax/ege-dashboard/internal/platform/config"
)

const rateLimitWindow = time.Minute

// Log field constants.
const (
	logFieldRequestID = "request_id"
	logFieldPath      = "path"
	logFieldChart     = "chart"
	logFieldSubjects  = "subjects"
)

// HTTP header constants.
const (
	headerContentType = "Content-Type"
	headerRequestID   = "X-Request-ID"
	contentTypeHTML   = "text/html; charset=utf-8"
	contentTypeJSON   = "application/json; charset=utf-8"
)

// Section headings in page order.
var sectionTitles = map[charts.Name]string{
	charts.ChartTypes:       "Количество вопросов по предмету и типу",
	charts.ChartTotals:      "Общее количество заданий по каждому предмету",
	charts.ChartAttachments: "Количество заданий с прикреплёнными файлами по предметам",
}

// DatasetSource provides the current dataset snapshot.
type DatasetSource interface {
	Load(ctx context.Context) (*dataset.Dataset, error)
}

// ChartRenderer draws one chart for a set of aggregates.
type ChartRenderer interface {
	Render(w io.Writer, name charts.Name, format charts.Format, agg analytics.Aggregates) error
}

// Handler serves the dashboard routes.
type Handler struct {
	cfg      *config.Config
	source   DatasetSource
	charts   ChartRenderer
	renderer *Renderer
	logger   *zerolog.Logger
	mux      *http.ServeMux

	// IP-based rate limiting
	limiters   map[string]*rate.Limiter
	limitersMu sync.Mutex
}

// NewHandler creates a new dashboard handler.
func NewHandler(cfg *config.Config, source DatasetSource, chartRenderer ChartRenderer, logger *zerolog.Logger) (*Handler, error) {
	renderer, err := NewRenderer()
	if err != nil {
		return nil, err
	}

	h := &Handler{
		cfg:      cfg,
		source:   source,
		charts:   chartRenderer,
		renderer: renderer,
		logger:   logger,
		limiters: make(map[string]*rate.Limiter),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.servePage)
	mux.HandleFunc("GET /api/aggregates", h.serveAggregates)
	mux.HandleFunc("GET /charts/{file}", h.serveChart)
	mux.HandleFunc("/", h.serveNotFound)
	h.mux = mux

	return h, nil
}

// ServeHTTP applies headers, request ids and rate limiting before routing.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	defer func() {
		LatencyHistogram.Observe(time.Since(start).Seconds())
	}()

	requestID := requestIDFrom(r)

	// Set security headers
	w.Header().Set(headerRequestID, requestID)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Referrer-Policy", "no-referrer")
	w.Header().Set("Cache-Control", "no-store")

	logger := h.logger.With().Str(logFieldRequestID, requestID).Logger()
	ctx := logger.WithContext(r.Context())
	r = r.WithContext(withRequestID(ctx, requestID))

	// Rate limiting
	clientIP := getClientIP(r)

	if !h.allowRequest(clientIP) {
		h.renderError(w, r, http.StatusTooManyRequests, "Слишком много запросов", "Подождите немного и обновите страницу.")
		HitsTotal.WithLabelValues(RouteAnonymous, StatusLimited).Inc()
		DeniedTotal.WithLabelValues(ReasonRateLimited).Inc()
		logger.Warn().Str("client_ip", clientIP).Err(apperrors.ErrRateLimited).Msg("Dashboard request denied")

		return
	}

	h.mux.ServeHTTP(w, r)
}

func (h *Handler) servePage(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	ds, ok := h.loadDataset(w, r, RoutePage)
	if !ok {
		return
	}

	available := analytics.Subjects(ds.Records)
	selection := ParseSelection(r.URL.Query(), available)
	agg := analytics.Compute(ds.Records, selection.Subjects)

	sections := make([]SectionView, 0, len(charts.Names))

	for _, name := range charts.Names {
		var buf bytes.Buffer
		if err := h.charts.Render(&buf, name, charts.FormatSVG, agg); err != nil {
			logger.Error().Err(err).Str(logFieldChart, string(name)).Msg("Failed to render chart")
			h.renderError(w, r, http.StatusInternalServerError, "Ошибка построения графика", err.Error())
			HitsTotal.WithLabelValues(RoutePage, StatusError).Inc()
			ErrorsTotal.WithLabelValues(ErrorTypeRender).Inc()

			return
		}

		ChartRendersTotal.WithLabelValues(string(name), string(charts.FormatSVG)).Inc()

		svg := template.HTML(buf.String()) //nolint:gosec // chart renderer escapes every label

		sections = append(sections, SectionView{
			Title:    sectionTitles[name],
			Chart:    string(name),
			SVG:      svg,
			ImageURL: chartURL(name, charts.FormatSVG, selection),
			PNGURL:   chartURL(name, charts.FormatPNG, selection),
		})
	}

	options := make([]SubjectOption, len(available))
	for i, code := range available {
		options[i] = SubjectOption{Code: code, Label: analytics.Label(code), Selected: selection.Contains(code)}
	}

	data := &PageData{
		Subjects:      options,
		Sections:      sections,
		SelectedCount: len(selection.Subjects),
		NoneSelected:  selection.Explicit && len(selection.Subjects) == 0,
		TotalRecords:  len(ds.Records),
		ShownRecords:  agg.Records,
		Dropped:       ds.Incomplete(),
		DatasetPath:   ds.Path,
		LoadedAt:      ds.LoadedAt,
		RequestID:     requestIDFromContext(r.Context()),
	}

	var page bytes.Buffer
	if err := h.renderer.RenderPage(&page, data); err != nil {
		logger.Error().Err(err).Msg("Failed to render dashboard page")
		h.renderError(w, r, http.StatusInternalServerError, "Ошибка отображения", err.Error())
		HitsTotal.WithLabelValues(RoutePage, StatusError).Inc()
		ErrorsTotal.WithLabelValues(ErrorTypeRender).Inc()

		return
	}

	w.Header().Set(headerContentType, contentTypeHTML)
	_, _ = page.WriteTo(w)

	HitsTotal.WithLabelValues(RoutePage, StatusOK).Inc()
	logger.Debug().Strs(logFieldSubjects, selection.Subjects).Int("records", agg.Records).Msg("Dashboard rendered")
}

// aggregatesResponse is the JSON body of the aggregates endpoint.
type aggregatesResponse struct {
	Subjects   []string               `json:"subjects"`
	Labels     map[string]string      `json:"labels"`
	Aggregates analytics.Aggregates   `json:"aggregates"`
	Dataset    aggregatesDatasetStats `json:"dataset"`
}

type aggregatesDatasetStats struct {
	Path     string    `json:"path"`
	Records  int       `json:"records"`
	Dropped  int       `json:"dropped"`
	LoadedAt time.Time `json:"loaded_at"`
}

func (h *Handler) serveAggregates(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	ds, ok := h.loadDataset(w, r, RouteAPI)
	if !ok {
		return
	}

	available := analytics.Subjects(ds.Records)
	selection := ParseSelection(r.URL.Query(), available)

	labels := make(map[string]string, len(available))
	for _, code := range available {
		labels[code] = analytics.Label(code)
	}

	body, err := json.Marshal(aggregatesResponse{
		Subjects:   available,
		Labels:     labels,
		Aggregates: analytics.Compute(ds.Records, selection.Subjects),
		Dataset: aggregatesDatasetStats{
			Path:     ds.Path,
			Records:  len(ds.Records),
			Dropped:  ds.Incomplete(),
			LoadedAt: ds.LoadedAt,
		},
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to encode aggregates")
		h.renderError(w, r, http.StatusInternalServerError, "Ошибка", err.Error())
		HitsTotal.WithLabelValues(RouteAPI, StatusError).Inc()
		ErrorsTotal.WithLabelValues(ErrorTypeEncode).Inc()

		return
	}

	w.Header().Set(headerContentType, contentTypeJSON)
	_, _ = w.Write(body)

	HitsTotal.WithLabelValues(RouteAPI, StatusOK).Inc()
}

func (h *Handler) serveChart(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	name, format, err := parseChartFile(r.PathValue("file"))
	if err != nil {
		h.renderError(w, r, http.StatusNotFound, "Не найдено", err.Error())
		HitsTotal.WithLabelValues(RouteChart, StatusNotFound).Inc()

		return
	}

	ds, ok := h.loadDataset(w, r, RouteChart)
	if !ok {
		return
	}

	selection := ParseSelection(r.URL.Query(), analytics.Subjects(ds.Records))
	agg := analytics.Compute(ds.Records, selection.Subjects)

	var buf bytes.Buffer
	if err := h.charts.Render(&buf, name, format, agg); err != nil {
		logger.Error().Err(err).Str(logFieldChart, string(name)).Msg("Failed to render chart")
		h.renderError(w, r, http.StatusInternalServerError, "Ошибка построения графика", err.Error())
		HitsTotal.WithLabelValues(RouteChart, StatusError).Inc()
		ErrorsTotal.WithLabelValues(ErrorTypeRender).Inc()

		return
	}

	ChartRendersTotal.WithLabelValues(string(name), string(format)).Inc()

	w.Header().Set(headerContentType, format.ContentType())
	_, _ = buf.WriteTo(w)

	HitsTotal.WithLabelValues(RouteChart, StatusOK).Inc()
}

func (h *Handler) serveNotFound(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		h.renderError(w, r, http.StatusMethodNotAllowed, "Метод не поддерживается", r.Method)
		HitsTotal.WithLabelValues(RouteNotFound, StatusMethod).Inc()

		return
	}

	h.renderError(w, r, http.StatusNotFound, "Не найдено", "Страница "+r.URL.Path+" не существует.")
	HitsTotal.WithLabelValues(RouteNotFound, StatusNotFound).Inc()
}

// loadDataset fetches the dataset or writes the error page. Load failures are
// fatal for the request, as with a missing file or a broken header.
func (h *Handler) loadDataset(w http.ResponseWriter, r *http.Request, route string) (*dataset.Dataset, bool) {
	ds, err := h.source.Load(r.Context())
	if err == nil {
		return ds, true
	}

	zerolog.Ctx(r.Context()).Error().Err(err).Str(logFieldPath, h.cfg.DatasetPath).Msg("Failed to load dataset")
	h.renderError(w, r, http.StatusInternalServerError, datasetErrorTitle(err), err.Error())
	HitsTotal.WithLabelValues(route, StatusError).Inc()
	ErrorsTotal.WithLabelValues(ErrorTypeDataset).Inc()

	return nil, false
}

func datasetErrorTitle(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrDatasetNotFound):
		return "Файл с данными не найден"
	case errors.Is(err, apperrors.ErrMissingColumn), errors.Is(err, apperrors.ErrDuplicateColumn),
		errors.Is(err, apperrors.ErrMalformedRow), errors.Is(err, apperrors.ErrEmptyHeader):
		return "Некорректный CSV"
	case errors.Is(err, apperrors.ErrInvalidEncoding):
		return "Неверная кодировка файла"
	default:
		return "Ошибка загрузки данных"
	}
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, code int, title, message string) {
	w.Header().Set(headerContentType, contentTypeHTML)
	w.WriteHeader(code)

	if err := h.renderer.RenderError(w, &ErrorData{
		Code:      code,
		Title:     title,
		Message:   message,
		RequestID: requestIDFromContext(r.Context()),
	}); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Failed to render error page")
	}
}

func (h *Handler) allowRequest(ip string) bool {
	h.limitersMu.Lock()

	limiter, ok := h.limiters[ip]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(rateLimitWindow/time.Duration(h.cfg.RateLimitRPM)), h.cfg.RateLimitBurst)
		h.limiters[ip] = limiter
	}

	h.limitersMu.Unlock()

	return limiter.Allow()
}

func parseChartFile(file string) (charts.Name, charts.Format, error) {
	base, ext, ok := strings.Cut(file, ".")
	if !ok {
		return "", "", fmt.Errorf("%w: %q", apperrors.ErrUnknownFormat, file)
	}

	name, err := charts.ParseName(base)
	if err != nil {
		return "", "", err
	}

	format, err := charts.ParseFormat(ext)
	if err != nil {
		return "", "", err
	}

	return name, format, nil
}

func chartURL(name charts.Name, format charts.Format, selection Selection) template.URL {
	u := url.URL{
		Path:     "/charts/" + string(name) + "." + string(format),
		RawQuery: selection.Query().Encode(),
	}

	//nolint:gosec // path and query are built from validated names and url-encoded values
	return template.URL(u.String())
}

type requestIDKey struct{}

func withRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)

	return id
}

// requestIDFrom keeps a well-formed incoming request id and generates one otherwise.
func requestIDFrom(r *http.Request) string {
	if incoming := r.Header.Get(headerRequestID); incoming != "" {
		if id, err := uuid.Parse(incoming); err == nil {
			return id.String()
		}
	}

	return uuid.NewString()
}

func getClientIP(r *http.Request) string {
	// Check X-Forwarded-For header (common with reverse proxies)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}

	// Check X-Real-IP header
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	// Fall back to RemoteAddr without the port
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}

	return r.RemoteAddr
}
