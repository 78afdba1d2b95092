package client_test

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http/httptest"
	"testing"

	"github.com/adrianliechti/scanpress/config"
	"github.com/adrianliechti/scanpress/pkg/client"
	"github.com/adrianliechti/scanpress/pkg/provider"
	"github.com/adrianliechti/scanpress/server"

	"github.com/stretchr/testify/require"
)

type completer struct{}

func (completer) Complete(ctx context.Context, messages []provider.Message, options *provider.CompleteOptions) (*provider.Completion, error) {
	return &provider.Completion{
		Message: &provider.Message{
			Role:    provider.MessageRoleAssistant,
			Content: provider.MessageContent{provider.TextContent("Hello from the scanner")},
		},

		Usage: &provider.Usage{InputTokens: 12, OutputTokens: 4, TotalTokens: 16},
	}, nil
}

func newClient(t *testing.T, token string) *client.Client {
	t.Helper()

	cfg := config.New()
	cfg.Token = "secret"
	cfg.RegisterCompleter("deepseek-ocr", completer{})

	s, err := server.New(cfg)
	require.NoError(t, err)

	ts := httptest.NewServer(s)
	t.Cleanup(ts.Close)

	return client.New(ts.URL, client.WithToken(token))
}

func scan(t *testing.T) *bytes.Reader {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 16, 16))))

	return bytes.NewReader(buf.Bytes())
}

func TestConversions(t *testing.T) {
	c := newClient(t, "secret")

	conversion, err := c.Conversions.New(context.Background(), client.ConversionRequest{
		Name:   "scan.png",
		Reader: scan(t),
	})

	require.NoError(t, err)

	require.Equal(t, "application/pdf", conversion.ContentType)
	require.True(t, bytes.HasPrefix(conversion.Content, []byte("%PDF-")))
	require.Equal(t, 1, conversion.Pages)
	require.Equal(t, 0, conversion.Images)
	require.Equal(t, 16, conversion.Usage.TotalTokens)

	markdown, err := c.Conversions.Markdown(context.Background(), client.ConversionRequest{
		Model:  "deepseek-ocr",
		Name:   "scan.png",
		Reader: scan(t),
	})

	require.NoError(t, err)
	require.Equal(t, "Hello from the scanner", markdown.Markdown)
}

func TestConversionErrors(t *testing.T) {
	c := newClient(t, "secret")

	_, err := c.Conversions.New(context.Background(), client.ConversionRequest{Name: "scan.png"})
	require.Error(t, err)

	_, err = c.Conversions.New(context.Background(), client.ConversionRequest{
		Model:  "unknown",
		Name:   "scan.png",
		Reader: scan(t),
	})

	require.ErrorContains(t, err, "model not found")
}

func TestModels(t *testing.T) {
	models, err := newClient(t, "secret").Models.List(context.Background())
	require.NoError(t, err)

	require.Len(t, models, 1)
	require.Equal(t, "deepseek-ocr", models[0].ID)

	_, err = newClient(t, "").Models.List(context.Background())
	require.Error(t, err)
}
