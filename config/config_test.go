package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adrianliechti/scanpress/pkg/grounding"

	"github.com/stretchr/testify/require"
)

const testConfig = `
server:
  token: ${SCANPRESS_TEST_TOKEN}

providers:
  - type: openai
    url: http://localhost:4000/v1
    token: ${SCANPRESS_TEST_KEY}
    models:
      deepseek-ocr:
        id: deepseek-ai/DeepSeek-OCR
      deepseek-ocr-backup: {}

  - type: mistral
    token: secret
    models:
      mistral-ocr: {}

routers:
  deepseek-pool:
    type: roundrobin
    models:
      - deepseek-ocr
      - deepseek-ocr-backup

converter:
  model: deepseek-pool
  concurrency: 2
  rate_limit: 2
  coordinates: pixel

document:
  page_size: a4
  footer: ""
`

func TestParse(t *testing.T) {
	t.Setenv("SCANPRESS_TEST_TOKEN", "t0k3n")
	t.Setenv("SCANPRESS_TEST_KEY", "sk-test")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o600))

	cfg, err := Parse(path)
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.Address)
	require.Equal(t, "t0k3n", cfg.Token)

	require.Equal(t, []string{"deepseek-ocr", "deepseek-ocr-backup", "mistral-ocr", "deepseek-pool"}, cfg.Models())
	require.Equal(t, "deepseek-pool", cfg.DefaultModel())

	_, err = cfg.Completer("deepseek-pool")
	require.NoError(t, err)

	_, err = cfg.Extractor("mistral-ocr")
	require.NoError(t, err)

	_, err = cfg.Completer("mistral-ocr")
	require.ErrorIs(t, err, ErrModelNotFound)

	c, err := cfg.NewConverter("")
	require.NoError(t, err)
	require.Equal(t, "deepseek-pool", c.Model())

	c, err = cfg.NewConverter("mistral-ocr")
	require.NoError(t, err)
	require.Equal(t, "mistral-ocr", c.Model())

	_, err = cfg.NewConverter("unknown")
	require.ErrorIs(t, err, ErrModelNotFound)

	require.NotNil(t, cfg.document.Footer)
	require.Empty(t, *cfg.document.Footer)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ``},
		{"unknown provider", "providers:\n  - type: foo\n    models:\n      a: {}\n"},
		{"no models", "providers:\n  - type: openai\n"},
		{"unknown router model", "providers:\n  - type: openai\n    models:\n      a: {}\nrouters:\n  r:\n    type: roundrobin\n    models: [b]\n"},
		{"unknown router type", "providers:\n  - type: openai\n    models:\n      a: {}\nrouters:\n  r:\n    type: auto\n    models: [a]\n"},
		{"unknown converter model", "providers:\n  - type: openai\n    models:\n      a: {}\nconverter:\n  model: b\n"},
	}

	for _, tt := range tests {
		_, err := parse([]byte(tt.data))
		require.Error(t, err, tt.name)
	}
}

func TestParseSpace(t *testing.T) {
	space, err := parseSpace("")
	require.NoError(t, err)
	require.Equal(t, grounding.SpaceNormalized, space)

	space, err = parseSpace("Pixel")
	require.NoError(t, err)
	require.Equal(t, grounding.SpacePixel, space)

	_, err = parseSpace("polar")
	require.Error(t, err)
}

func TestConverterOptionsRejectsPageSize(t *testing.T) {
	cfg, err := parse([]byte("providers:\n  - type: openai\n    models:\n      a: {}\ndocument:\n  page_size: legal\n"))
	require.NoError(t, err)

	_, err = cfg.NewConverter("a")
	require.Error(t, err)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("API_KEY", "sk-test")
	t.Setenv("BASE_URL", "http://localhost:4000")

	t.Setenv("OCR_MODEL", "")

	cfg, err := FromEnv()
	require.NoError(t, err)
	require.Equal(t, []string{"deepseek-ocr"}, cfg.Models())

	_, err = cfg.Completer("deepseek-ocr")
	require.NoError(t, err)

	t.Setenv("OCR_MODEL", "mistral-ocr-2505")

	cfg, err = FromEnv()
	require.NoError(t, err)

	_, err = cfg.Extractor("mistral-ocr-2505")
	require.NoError(t, err)
}
