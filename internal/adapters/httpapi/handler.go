// Package httpapi exposes the cross service over a JSON HTTP API.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/text/language"

	"mendel/internal/core"
	"mendel/internal/i18n"
	"mendel/pkg/domain"
	"mendel/pkg/genetics"
)

const maxBodyBytes = 1 << 20

// Handler serves the /api/v1 routes.
type Handler struct {
	Service    *core.Service
	Translator *i18n.Translator
	Logger     *slog.Logger
	// Metrics is mounted at /metrics when set.
	Metrics http.Handler
}

// NewHandler constructs a handler. A nil logger discards output.
func NewHandler(svc *core.Service, tr *i18n.Translator, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Handler{Service: svc, Translator: tr, Logger: logger}
}

// Routes builds the router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(h.Logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if h.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.Metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/validate", h.handleValidate)
		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", h.handleCreateSession)
			r.Get("/", h.handleListSessions)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.handleGetSession)
				r.Delete("/", h.handleDeleteSession)
				r.Put("/arity", h.handleSetArity)
				r.Post("/cross", h.handleSubmitCross)
				r.Get("/cross", h.handleCurrentCross)
				r.Get("/cross/records/{index}", h.handleCrossDetail)
				r.Post("/probability/genotype", h.handleGenotypeProbability)
				r.Post("/probability/phenotype", h.handlePhenotypeProbability)
				r.Get("/inheritance", h.handleGetInheritance)
				r.Put("/inheritance/{gene}", h.handleSetInheritance)
				r.Post("/exports", h.handleExport)
			})
		})
	})
	return r
}

func (h *Handler) lang(w http.ResponseWriter, r *http.Request) language.Tag {
	tag := h.Translator.Match(r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"))
	w.Header().Set("Content-Language", tag.String())
	return tag
}

// decode reads a JSON body. An empty body leaves dst untouched.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, tag language.Tag, dst any) bool {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	writeError(w, http.StatusBadRequest, h.Translator.Text(tag, "error.invalid_input", "payload", err.Error()))
	return false
}

type validateRequest struct {
	Arity   string `json:"arity"`
	Parent1 string `json:"parent1"`
	Parent2 string `json:"parent2"`
}

func requestArity(raw string) genetics.CrossArity {
	if strings.TrimSpace(raw) == "" {
		return genetics.Mono
	}
	if a, ok := genetics.ParseCrossArity(raw); ok {
		return a
	}
	return genetics.CrossArity(raw)
}

func (h *Handler) localizeForm(tag language.Tag, form core.FormValidation) core.FormValidation {
	form.Parent1 = h.Translator.Validation(tag, form.Parent1)
	form.Parent2 = h.Translator.Validation(tag, form.Parent2)
	form.Compatibility = h.Translator.Validation(tag, form.Compatibility)
	if form.Error != nil {
		v := h.Translator.FieldValidation(tag, string(form.ErrorField), *form.Error)
		form.Error = &v
	}
	return form
}

func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	tag := h.lang(w, r)
	var req validateRequest
	if !h.decode(w, r, tag, &req) {
		return
	}
	form := core.ValidateForm(requestArity(req.Arity), req.Parent1, req.Parent2)
	writeJSON(w, http.StatusOK, h.localizeForm(tag, form))
}

type arityRequest struct {
	Arity string `json:"arity"`
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	tag := h.lang(w, r)
	var req arityRequest
	if !h.decode(w, r, tag, &req) {
		return
	}
	session, err := h.Service.CreateSession(r.Context(), req.Arity)
	if err != nil {
		h.writeServiceError(w, r, tag, err)
		return
	}
	w.Header().Set("Location", "/api/v1/sessions/"+session.ID)
	writeJSON(w, http.StatusCreated, session)
}

func (h *Handler) handleListSessions(w http.ResponseWriter, r *http.Request) {
	tag := h.lang(w, r)
	sessions, err := h.Service.ListSessions(r.Context())
	if err != nil {
		h.writeServiceError(w, r, tag, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	tag := h.lang(w, r)
	session, err := h.Service.GetSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, tag, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *Handler) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	tag := h.lang(w, r)
	if err := h.Service.DeleteSession(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, tag, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSetArity(w http.ResponseWriter, r *http.Request) {
	tag := h.lang(w, r)
	var req arityRequest
	if !h.decode(w, r, tag, &req) {
		return
	}
	if strings.TrimSpace(req.Arity) == "" {
		writeError(w, http.StatusBadRequest, h.Translator.Text(tag, "error.invalid_input", "arity", "required"))
		return
	}
	session, err := h.Service.SetArity(r.Context(), chi.URLParam(r, "id"), req.Arity)
	if err != nil {
		h.writeServiceError(w, r, tag, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

type crossRequest struct {
	Parent1 string `json:"parent1"`
	Parent2 string `json:"parent2"`
}

func (h *Handler) localizeCross(tag language.Tag, res core.CrossResult) core.CrossResult {
	res.Law = h.Translator.Law(tag, res.Arity)
	return res
}

func (h *Handler) handleSubmitCross(w http.ResponseWriter, r *http.Request) {
	tag := h.lang(w, r)
	var req crossRequest
	if !h.decode(w, r, tag, &req) {
		return
	}
	res, err := h.Service.SubmitCross(r.Context(), chi.URLParam(r, "id"), req.Parent1, req.Parent2)
	if err != nil {
		h.writeServiceError(w, r, tag, err)
		return
	}
	writeJSON(w, http.StatusOK, h.localizeCross(tag, res))
}

func (h *Handler) handleCurrentCross(w http.ResponseWriter, r *http.Request) {
	tag := h.lang(w, r)
	res, err := h.Service.CurrentCross(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, tag, err)
		return
	}
	writeJSON(w, http.StatusOK, h.localizeCross(tag, res))
}

func (h *Handler) handleCrossDetail(w http.ResponseWriter, r *http.Request) {
	tag := h.lang(w, r)
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, h.Translator.Text(tag, "error.invalid_input", "index", err.Error()))
		return
	}
	detail, err := h.Service.CrossDetail(r.Context(), chi.URLParam(r, "id"), index)
	if err != nil {
		h.writeServiceError(w, r, tag, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

type genotypeRequest struct {
	Genotype string `json:"genotype"`
}

func (h *Handler) writeProbability(w http.ResponseWriter, tag language.Tag, res genetics.ProbabilityResult) {
	status := http.StatusOK
	if !res.Valid {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, h.Translator.Result(tag, res))
}

func (h *Handler) handleGenotypeProbability(w http.ResponseWriter, r *http.Request) {
	tag := h.lang(w, r)
	var req genotypeRequest
	if !h.decode(w, r, tag, &req) {
		return
	}
	res, err := h.Service.GenotypeProbability(r.Context(), chi.URLParam(r, "id"), req.Genotype)
	if err != nil {
		h.writeServiceError(w, r, tag, err)
		return
	}
	h.writeProbability(w, tag, res)
}

type phenotypeRequest struct {
	Selections []string `json:"selections"`
}

func (h *Handler) handlePhenotypeProbability(w http.ResponseWriter, r *http.Request) {
	tag := h.lang(w, r)
	var req phenotypeRequest
	if !h.decode(w, r, tag, &req) {
		return
	}
	res, err := h.Service.PhenotypeProbability(r.Context(), chi.URLParam(r, "id"), req.Selections)
	if err != nil {
		h.writeServiceError(w, r, tag, err)
		return
	}
	h.writeProbability(w, tag, res)
}

func (h *Handler) handleGetInheritance(w http.ResponseWriter, r *http.Request) {
	tag := h.lang(w, r)
	cfg, err := h.Service.Inheritance(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, tag, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"inheritance": cfg})
}

type inheritanceRequest struct {
	Type       string           `json:"type"`
	Labels     genetics.Labels  `json:"labels"`
	Phenotypes *genetics.Labels `json:"phenotypes,omitempty"`
}

func (h *Handler) handleSetInheritance(w http.ResponseWriter, r *http.Request) {
	tag := h.lang(w, r)
	var req inheritanceRequest
	if !h.decode(w, r, tag, &req) {
		return
	}
	labels := req.Labels
	if req.Phenotypes != nil {
		labels = *req.Phenotypes
	}
	gi, err := h.Service.SetInheritance(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "gene"), genetics.GeneInheritance{
		Type:   genetics.InheritanceType(req.Type),
		Labels: labels,
	})
	if err != nil {
		h.writeServiceError(w, r, tag, err)
		return
	}
	writeJSON(w, http.StatusOK, gi)
}

type exportRequest struct {
	Format string `json:"format"`
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	tag := h.lang(w, r)
	var req exportRequest
	if !h.decode(w, r, tag, &req) {
		return
	}
	res, err := h.Service.Export(r.Context(), chi.URLParam(r, "id"), req.Format)
	if err != nil {
		h.writeServiceError(w, r, tag, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, tag language.Tag, err error) {
	var (
		notFound   domain.ErrSessionNotFound
		invalid    core.ErrInvalidInput
		outOfRange core.ErrRecordOutOfRange
		formErr    core.ErrFormInvalid
	)
	switch {
	case errors.As(err, &notFound):
		writeError(w, http.StatusNotFound, h.Translator.Text(tag, "error.session_not_found", notFound.ID))
	case errors.Is(err, core.ErrNoActiveCross):
		writeError(w, http.StatusConflict, h.Translator.Text(tag, "error.no_active_cross"))
	case errors.As(err, &outOfRange):
		writeError(w, http.StatusNotFound, h.Translator.Text(tag, "error.record_out_of_range", strconv.Itoa(outOfRange.Index)))
	case errors.As(err, &invalid):
		writeError(w, http.StatusBadRequest, h.Translator.Text(tag, "error.invalid_input", invalid.Field, invalid.Reason))
	case errors.As(err, &formErr):
		form := h.localizeForm(tag, formErr.Form)
		msg := h.Translator.Text(tag, "error.invalid_input", "parents", "incomplete")
		if form.Error != nil {
			msg = form.Error.Message
		}
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"error": msg, "form": form})
	default:
		h.Logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method, "path", r.URL.Path, "error", err,
			"request_id", middleware.GetReqID(r.Context()))
		writeError(w, http.StatusInternalServerError, h.Translator.Text(tag, "error.internal"))
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
