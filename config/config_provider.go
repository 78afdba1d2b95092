package config

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/adrianliechti/scanpress/pkg/extractor"
	"github.com/adrianliechti/scanpress/pkg/extractor/mistral"
	"github.com/adrianliechti/scanpress/pkg/extractor/tesseract"
	"github.com/adrianliechti/scanpress/pkg/otel"
	"github.com/adrianliechti/scanpress/pkg/provider"
	"github.com/adrianliechti/scanpress/pkg/provider/anthropic"
	"github.com/adrianliechti/scanpress/pkg/provider/gemini"
	"github.com/adrianliechti/scanpress/pkg/provider/openai"
)

type providerConfig struct {
	Type string `yaml:"type"`

	URL   string `yaml:"url"`
	Token string `yaml:"token"`

	Languages []string `yaml:"languages"`

	Models map[string]modelConfig `yaml:"models"`
}

type modelConfig struct {
	// ID is the upstream model name when it differs from the configured one.
	ID string `yaml:"id"`
}

type modelContext struct {
	ID string

	Client *http.Client
}

func (cfg *Config) registerProviders(f *configFile) error {
	client := otel.HTTPClient()

	for _, p := range f.Providers {
		if len(p.Models) == 0 {
			return fmt.Errorf("provider %q has no models", p.Type)
		}

		for _, id := range sortedKeys(p.Models) {
			m := p.Models[id]

			context := modelContext{
				ID: id,

				Client: client,
			}

			if m.ID != "" {
				context.ID = m.ID
			}

			result, err := createProvider(p, context)

			if err != nil {
				return fmt.Errorf("model %q: %w", id, err)
			}

			switch result := result.(type) {
			case provider.Completer:
				cfg.RegisterCompleter(id, otel.NewCompleter(p.Type, id, result))

			case extractor.Provider:
				cfg.RegisterExtractor(id, otel.NewExtractor(p.Type, id, result))
			}
		}
	}

	return nil
}

func createProvider(cfg providerConfig, context modelContext) (any, error) {
	switch strings.ToLower(cfg.Type) {
	case "openai", "litellm", "deepseek":
		return openaiProvider(cfg, context)

	case "anthropic", "bedrock":
		return anthropicProvider(cfg, context)

	case "gemini", "google":
		return geminiProvider(cfg, context)

	case "mistral":
		return mistralProvider(cfg, context)

	case "tesseract":
		return tesseractProvider(cfg, context)

	default:
		return nil, errors.New("invalid provider type: " + cfg.Type)
	}
}

func openaiProvider(cfg providerConfig, context modelContext) (any, error) {
	var options []openai.Option

	if cfg.Token != "" {
		options = append(options, openai.WithToken(cfg.Token))
	}

	options = append(options, openai.WithClient(context.Client))

	return openai.NewCompleter(cfg.URL, context.ID, options...)
}

func anthropicProvider(cfg providerConfig, context modelContext) (any, error) {
	var options []anthropic.Option

	if cfg.Token != "" {
		options = append(options, anthropic.WithToken(cfg.Token))
	}

	options = append(options, anthropic.WithClient(context.Client))

	return anthropic.NewCompleter(cfg.URL, context.ID, options...)
}

func geminiProvider(cfg providerConfig, context modelContext) (any, error) {
	var options []gemini.Option

	if cfg.Token != "" {
		options = append(options, gemini.WithToken(cfg.Token))
	}

	options = append(options, gemini.WithClient(context.Client))

	return gemini.NewCompleter(cfg.URL, context.ID, options...)
}

func mistralProvider(cfg providerConfig, context modelContext) (any, error) {
	options := []mistral.Option{
		mistral.WithModel(context.ID),
		mistral.WithClient(context.Client),
	}

	if cfg.Token != "" {
		options = append(options, mistral.WithToken(cfg.Token))
	}

	return mistral.New(cfg.URL, options...)
}

func tesseractProvider(cfg providerConfig, context modelContext) (any, error) {
	var options []tesseract.Option

	if len(cfg.Languages) > 0 {
		options = append(options, tesseract.WithLanguages(cfg.Languages...))
	}

	return tesseract.New(options...)
}
