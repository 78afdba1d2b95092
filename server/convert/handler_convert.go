package convert

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/adrianliechti/scanpress/pkg/converter"
	"github.com/adrianliechti/scanpress/server/api"

	"github.com/google/uuid"
)

func (h *Handler) handleConvert(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	file, header, err := r.FormFile("file")

	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("missing file: %w", err))
		return
	}

	defer file.Close()

	data, err := io.ReadAll(file)

	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, errors.New("empty file"))
		return
	}

	c, err := h.NewConverter(r.FormValue("model"))

	if err != nil {
		writeError(w, statusCode(err), err)
		return
	}

	result, err := c.Convert(r.Context(), converter.File{
		Name:    header.Filename,
		Content: data,
	})

	if err != nil {
		writeError(w, statusCode(err), err)
		return
	}

	if r.URL.Query().Get("format") == "json" {
		writeJson(w, toConversion(result))
		return
	}

	w.Header().Set(api.HeaderPageCount, strconv.Itoa(result.Pages))
	w.Header().Set(api.HeaderImageCount, strconv.Itoa(len(result.Images)))

	w.Header().Set(api.HeaderInputTokens, strconv.Itoa(result.Usage.InputTokens))
	w.Header().Set(api.HeaderOutputTokens, strconv.Itoa(result.Usage.OutputTokens))
	w.Header().Set(api.HeaderTotalTokens, strconv.Itoa(result.Usage.TotalTokens))

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Length", strconv.Itoa(len(result.PDF)))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", converter.OutputName(header.Filename)))

	w.Write(result.PDF)
}

func toConversion(result *converter.Result) *api.Conversion {
	conversion := &api.Conversion{
		ID:    uuid.NewString(),
		Model: result.Model,

		Markdown: result.Markdown,

		Pages:  result.Pages,
		Images: len(result.Images),
	}

	if !result.Usage.IsZero() {
		conversion.Usage = &api.Usage{
			InputTokens:  result.Usage.InputTokens,
			OutputTokens: result.Usage.OutputTokens,
			TotalTokens:  result.Usage.TotalTokens,

			Pages:         result.Usage.Pages,
			DocumentBytes: result.Usage.DocumentBytes,
		}
	}

	return conversion
}
