package site

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/JaimeStill/scrivener/internal/artifacts"
	"github.com/JaimeStill/scrivener/internal/extraction"
	"github.com/JaimeStill/scrivener/pkg/flash"
	"github.com/JaimeStill/scrivener/pkg/routes"
	"github.com/JaimeStill/scrivener/pkg/web"
	"github.com/JaimeStill/scrivener/web/app"
)

const (
	// multipartMemory is the part of a multipart body kept in memory before
	// spilling to temporary files.
	multipartMemory = 8 << 20
	// multipartOverhead is the room allowed on top of the upload limit for
	// part headers, boundaries and the other form fields.
	multipartOverhead = 64 << 10
)

// Handler serves the site's HTTP endpoints.
type Handler struct {
	extraction    extraction.System
	artifacts     artifacts.System
	flash         *flash.Store
	views         *web.TemplateSet
	logger        *slog.Logger
	maxUploadSize int64

	submissions metric.Int64Counter
	downloads   metric.Int64Counter
}

// NewHandler creates the site handler.
func NewHandler(
	ext extraction.System,
	art artifacts.System,
	store *flash.Store,
	views *web.TemplateSet,
	meter metric.Meter,
	logger *slog.Logger,
	maxUploadSize int64,
) (*Handler, error) {
	submissions, err := meter.Int64Counter(
		"scrivener.submissions",
		metric.WithDescription("Image submissions by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("create submissions counter: %w", err)
	}

	downloads, err := meter.Int64Counter(
		"scrivener.downloads",
		metric.WithDescription("Artifact download requests by format and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("create downloads counter: %w", err)
	}

	return &Handler{
		extraction:    ext,
		artifacts:     art,
		flash:         store,
		views:         views,
		logger:        logger.With("handler", "site"),
		maxUploadSize: maxUploadSize,
		submissions:   submissions,
		downloads:     downloads,
	}, nil
}

// Routes returns the site route group mounted at the views' base path.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: h.views.BasePath(),
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{$}", Handler: h.Index},
			{Method: "POST", Pattern: "/{$}", Handler: h.Submit},
			{Method: "GET", Pattern: "/download/{file}", Handler: h.Download},
			{Method: "GET", Pattern: "/static/", Handler: app.Static(h.views.BasePath() + "/static/")},
		},
	}
}

// Index renders the empty submission form along with any pending warning.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, indexView, nil)
}

// Submit runs extraction on the uploaded image, writes the artifact set,
// and renders the result. User input problems redirect back to the form
// with a warning.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	cmd, err := h.readUpload(w, r)
	if err != nil {
		h.reject(w, r, err)
		return
	}

	result, err := h.extraction.Extract(r.Context(), cmd)
	if err != nil {
		if _, ok := extraction.Warning(err); ok {
			h.reject(w, r, err)
			return
		}
		h.fail(w, r, "extraction failed", err)
		return
	}

	set, err := h.artifacts.Create(r.Context(), result.Text)
	if err != nil {
		h.fail(w, r, "artifact write failed", err)
		return
	}

	h.submissions.Add(r.Context(), 1, metric.WithAttributes(attribute.String("outcome", "ok")))

	h.render(w, r, http.StatusOK, indexView, &resultPage{
		Text:      result.Text,
		Corrected: result.Corrected,
		TextURL:   downloadURL(h.views.BasePath(), set.ID, artifacts.FormatText),
		DocxURL:   downloadURL(h.views.BasePath(), set.ID, artifacts.FormatDocx),
	})
}

// Download streams one artifact as an attachment. The path value has the
// form <id>.<ext>; the extension is checked before the identifier.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	file := r.PathValue("file")

	idPart, ext := file, ""
	if i := strings.LastIndex(file, "."); i >= 0 {
		idPart, ext = file[:i], file[i+1:]
	}

	format, err := artifacts.ParseFormat(ext)
	if err != nil {
		h.countDownload(r, "unknown", "invalid")
		h.warn(w, r, err)
		return
	}

	id, err := uuid.Parse(idPart)
	if err != nil || id.String() != idPart {
		h.countDownload(r, string(format), "missing")
		h.warn(w, r, artifacts.ErrNotFound)
		return
	}

	obj, err := h.artifacts.Open(r.Context(), id, format)
	if err != nil {
		if _, ok := artifacts.Warning(err); ok {
			h.countDownload(r, string(format), "missing")
			h.warn(w, r, err)
			return
		}
		h.countDownload(r, string(format), "error")
		h.fail(w, r, "artifact open failed", err)
		return
	}
	defer obj.Body.Close()

	h.countDownload(r, string(format), "ok")

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, format.Filename()))
	http.ServeContent(w, r, format.Filename(), obj.ModTime, obj.Body)
}

// Failure renders the generic failure page with 500.
func (h *Handler) Failure(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusInternalServerError, errorView, "Something went wrong while processing your image. Please try again.")
}

// NotFound renders the not-found page with 404.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, notFoundView, "There is nothing at this address.")
}

// readUpload applies the upload limit to the image part. The request body
// as a whole may exceed it by multipartOverhead.
func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request) (extraction.Command, error) {
	bodyLimit := h.maxUploadSize + multipartOverhead
	if r.ContentLength > bodyLimit {
		return extraction.Command{}, extraction.ErrFileTooLarge
	}
	r.Body = http.MaxBytesReader(w, r.Body, bodyLimit)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return extraction.Command{}, extraction.ErrFileTooLarge
		}
		return extraction.Command{}, fmt.Errorf("%w: %w", extraction.ErrNoFile, err)
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("image")
	if err != nil {
		return extraction.Command{}, fmt.Errorf("%w: %w", extraction.ErrNoFile, err)
	}
	defer file.Close()

	if header.Size > h.maxUploadSize {
		return extraction.Command{}, extraction.ErrFileTooLarge
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return extraction.Command{}, fmt.Errorf("read upload: %w", err)
	}

	return extraction.Command{
		Data:     data,
		Filename: header.Filename,
		Correct:  r.FormValue("spell") == "on",
	}, nil
}

// reject flashes the warning for a user input error and returns to the form.
func (h *Handler) reject(w http.ResponseWriter, r *http.Request, err error) {
	msg, ok := extraction.Warning(err)
	if !ok {
		h.fail(w, r, "upload read failed", err)
		return
	}

	h.logger.Info("submission rejected", "reason", msg, "error", err)
	h.submissions.Add(r.Context(), 1, metric.WithAttributes(attribute.String("outcome", "rejected")))
	h.flash.Redirect(w, r, h.views.BasePath()+"/", msg)
}

func (h *Handler) warn(w http.ResponseWriter, r *http.Request, err error) {
	msg, _ := artifacts.Warning(err)
	h.flash.Redirect(w, r, h.views.BasePath()+"/", msg)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.Error(msg, "error", err, "method", r.Method, "uri", r.URL.RequestURI())
	if r.Method == http.MethodPost {
		h.submissions.Add(r.Context(), 1, metric.WithAttributes(attribute.String("outcome", "failed")))
	}
	h.Failure(w, r)
}

func (h *Handler) countDownload(r *http.Request, format, outcome string) {
	h.downloads.Add(r.Context(), 1, metric.WithAttributes(
		attribute.String("format", format),
		attribute.String("outcome", outcome),
	))
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, view web.ViewDef, payload any) {
	data := h.views.Data(view, payload)
	data.Flash = h.flash.Pop(w, r)

	if err := h.views.Render(w, status, app.Layout, view.Template, data); err != nil {
		h.logger.Error("render failed", "view", view.Template, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
