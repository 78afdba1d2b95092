package mistral

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/adrianliechti/scanpress/pkg/extractor"
	"github.com/adrianliechti/scanpress/pkg/provider"

	"github.com/tidwall/gjson"
)

var _ extractor.Provider = (*Client)(nil)

const DefaultModel = "mistral-ocr-2505"

type Client struct {
	url string

	token string
	model string

	client *http.Client
}

type Option func(*Client)

func WithClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

func WithModel(model string) Option {
	return func(c *Client) {
		c.model = model
	}
}

func New(url string, options ...Option) (*Client, error) {
	if url == "" {
		url = "https://api.mistral.ai"
	}

	c := &Client{
		url:   strings.TrimRight(url, "/"),
		model: DefaultModel,

		client: http.DefaultClient,
	}

	for _, option := range options {
		option(c)
	}

	return c, nil
}

func (c *Client) Extract(ctx context.Context, file extractor.File, options *extractor.ExtractOptions) (*extractor.Document, error) {
	if options == nil {
		options = &extractor.ExtractOptions{
			Images: true,
		}
	}

	document, err := convertDocument(file)

	if err != nil {
		return nil, err
	}

	body := map[string]any{
		"model":    c.model,
		"document": document,

		"include_image_base64": options.Images,
	}

	data, _ := json.Marshal(body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/v1/ocr", bytes.NewReader(data))

	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)

	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()

	result, err := io.ReadAll(resp.Body)

	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, convertError(resp.StatusCode, result)
	}

	return c.parseResponse(result)
}

func convertDocument(file extractor.File) (map[string]string, error) {
	url := "data:" + file.ContentType + ";base64," + base64.StdEncoding.EncodeToString(file.Content)

	switch file.ContentType {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return map[string]string{
			"type":      "image_url",
			"image_url": url,
		}, nil

	case "application/pdf":
		return map[string]string{
			"type":         "document_url",
			"document_url": url,
		}, nil
	}

	return nil, extractor.ErrUnsupported
}

// parseResponse reads the OCR envelope. Page text is taken from markdown,
// then text, then content, whichever is first non-empty.
func (c *Client) parseResponse(data []byte) (*extractor.Document, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid ocr response")
	}

	root := gjson.ParseBytes(data)

	result := &extractor.Document{
		Model: c.model,
	}

	if model := root.Get("model").String(); model != "" {
		result.Model = model
	}

	for i, page := range root.Get("pages").Array() {
		p := extractor.Page{
			Index: i,
		}

		if index := page.Get("index"); index.Exists() {
			p.Index = int(index.Int())
		}

		for _, key := range []string{"markdown", "text", "content"} {
			if text := page.Get(key).String(); text != "" {
				p.Text = text
				break
			}
		}

		for _, img := range page.Get("images").Array() {
			id := img.Get("id").String()
			encoded := img.Get("image_base64").String()

			if id == "" || encoded == "" {
				continue
			}

			content, contentType, err := decodeImage(encoded)

			if err != nil {
				return nil, fmt.Errorf("image %s: %w", id, err)
			}

			p.Images = append(p.Images, extractor.Image{
				ID: id,

				Content:     content,
				ContentType: contentType,
			})
		}

		result.Pages = append(result.Pages, p)
	}

	if info := root.Get("usage_info"); info.Exists() {
		result.Usage = &provider.Usage{
			Pages:         int(info.Get("pages_processed").Int()),
			DocumentBytes: int(info.Get("doc_size_bytes").Int()),
		}
	}

	return result, nil
}

// decodeImage accepts plain base64 or a data URL.
func decodeImage(encoded string) ([]byte, string, error) {
	contentType := ""

	if strings.HasPrefix(encoded, "data:") {
		header, payload, ok := strings.Cut(encoded, ",")

		if !ok {
			return nil, "", fmt.Errorf("malformed data url")
		}

		contentType = strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
		encoded = payload
	}

	content, err := base64.StdEncoding.DecodeString(encoded)

	if err != nil {
		return nil, "", err
	}

	if contentType == "" {
		contentType = http.DetectContentType(content)
	}

	return content, contentType, nil
}

func convertError(status int, body []byte) error {
	message := strings.TrimSpace(string(body))

	if gjson.ValidBytes(body) {
		for _, path := range []string{"message", "error.message", "detail"} {
			if val := gjson.GetBytes(body, path); val.Type == gjson.String {
				message = val.String()
				break
			}
		}
	}

	return &provider.Error{
		StatusCode: status,
		Message:    message,
	}
}
