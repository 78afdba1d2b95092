package convert

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/adrianliechti/scanpress/config"
	"github.com/adrianliechti/scanpress/pkg/converter"
	"github.com/adrianliechti/scanpress/pkg/extractor"
	"github.com/adrianliechti/scanpress/pkg/provider"
	"github.com/adrianliechti/scanpress/pkg/raster"
	"github.com/adrianliechti/scanpress/server/api"

	"github.com/go-chi/chi/v5"
)

// MaxUploadSize bounds the multipart body of a conversion request.
const MaxUploadSize = 64 << 20

type Handler struct {
	*config.Config
}

func New(cfg *config.Config) *Handler {
	return &Handler{
		Config: cfg,
	}
}

func (h *Handler) Attach(r chi.Router) {
	r.Get("/models", h.handleModels)
	r.Post("/convert", h.handleConvert)
}

func writeJson(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	if code >= 500 {
		slog.Error("server error", "status", code, "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	errorType := "invalid_request_error"

	switch {
	case code == http.StatusNotFound:
		errorType = "not_found_error"
	case code == http.StatusUnsupportedMediaType:
		errorType = "unsupported_media_type"
	case code == http.StatusUnprocessableEntity:
		errorType = "no_text_error"
	case code == http.StatusTooManyRequests:
		errorType = "rate_limit_error"
	case code >= 500:
		errorType = "api_error"
	}

	resp := api.ErrorResponse{
		Error: api.Error{
			Type:    errorType,
			Message: err.Error(),
		},
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.Encode(resp)
}

// statusCode maps conversion failures to HTTP status codes.
func statusCode(err error) int {
	var perr *provider.Error

	switch {
	case errors.Is(err, config.ErrModelNotFound):
		return http.StatusNotFound

	case errors.Is(err, converter.ErrUnsupportedType), errors.Is(err, extractor.ErrUnsupported):
		return http.StatusUnsupportedMediaType

	case errors.Is(err, converter.ErrNoText):
		return http.StatusUnprocessableEntity

	case errors.Is(err, raster.ErrUnavailable):
		return http.StatusServiceUnavailable

	case errors.As(err, &perr):
		if perr.StatusCode == http.StatusTooManyRequests {
			return http.StatusTooManyRequests
		}

		return http.StatusBadGateway
	}

	return http.StatusInternalServerError
}
