package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/adrianliechti/scanpress/server/api"
)

type ConversionService struct {
	Options []RequestOption
}

func NewConversionService(opts ...RequestOption) ConversionService {
	return ConversionService{
		Options: opts,
	}
}

// Conversion is a rendered PDF together with the counters reported by the
// server.
type Conversion struct {
	Content     []byte
	ContentType string

	Pages  int
	Images int

	Usage Usage
}

type Usage = api.Usage

type ConversionRequest struct {
	Model string

	Name   string
	Reader io.Reader
}

// New converts a document into a PDF.
func (r *ConversionService) New(ctx context.Context, input ConversionRequest, opts ...RequestOption) (*Conversion, error) {
	resp, err := r.post(ctx, input, "", opts...)

	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()

	content, err := io.ReadAll(resp.Body)

	if err != nil {
		return nil, err
	}

	return &Conversion{
		Content:     content,
		ContentType: resp.Header.Get("Content-Type"),

		Pages:  headerInt(resp.Header, api.HeaderPageCount),
		Images: headerInt(resp.Header, api.HeaderImageCount),

		Usage: Usage{
			InputTokens:  headerInt(resp.Header, api.HeaderInputTokens),
			OutputTokens: headerInt(resp.Header, api.HeaderOutputTokens),
			TotalTokens:  headerInt(resp.Header, api.HeaderTotalTokens),
		},
	}, nil
}

// Markdown converts a document and returns the recognized markdown instead
// of the PDF.
func (r *ConversionService) Markdown(ctx context.Context, input ConversionRequest, opts ...RequestOption) (*api.Conversion, error) {
	resp, err := r.post(ctx, input, "json", opts...)

	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()

	var result api.Conversion

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *ConversionService) post(ctx context.Context, input ConversionRequest, format string, opts ...RequestOption) (*http.Response, error) {
	c := newRequestConfig(append(r.Options, opts...)...)

	if input.Reader == nil {
		return nil, errors.New("missing input")
	}

	var data bytes.Buffer
	w := multipart.NewWriter(&data)

	if input.Model != "" {
		w.WriteField("model", input.Model)
	}

	name := input.Name

	if name == "" {
		name = "file"
	}

	f, err := w.CreateFormFile("file", name)

	if err != nil {
		return nil, err
	}

	if _, err := io.Copy(f, input.Reader); err != nil {
		return nil, err
	}

	w.Close()

	url := c.URL + "/v1/convert"

	if format != "" {
		url += "?format=" + format
	}

	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, url, &data)
	req.Header.Set("Content-Type", w.FormDataContentType())

	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.Client.Do(req)

	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, convertError(resp)
	}

	return resp, nil
}

func headerInt(h http.Header, key string) int {
	val, _ := strconv.Atoi(h.Get(key))
	return val
}

func convertError(resp *http.Response) error {
	var result api.ErrorResponse

	if err := json.NewDecoder(resp.Body).Decode(&result); err == nil && result.Error.Message != "" {
		return errors.New(result.Error.Message)
	}

	return errors.New(resp.Status)
}
