package config

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/adrianliechti/scanpress/pkg/converter"
	"github.com/adrianliechti/scanpress/pkg/document"
	"github.com/adrianliechti/scanpress/pkg/grounding"
	"github.com/adrianliechti/scanpress/pkg/raster"
)

type converterConfig struct {
	Model string `yaml:"model"`

	Rasterizer string `yaml:"rasterizer"`

	DPI         int     `yaml:"dpi"`
	Concurrency int     `yaml:"concurrency"`
	RateLimit   float64 `yaml:"rate_limit"`

	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float32 `yaml:"temperature"`

	Prompts promptsConfig `yaml:"prompts"`

	Coordinates string `yaml:"coordinates"`
}

type promptsConfig struct {
	Document string `yaml:"document"`
	Image    string `yaml:"image"`
}

type documentConfig struct {
	PageSize string `yaml:"page_size"`

	Font   string  `yaml:"font"`
	Footer *string `yaml:"footer"`

	ImageDPI float64 `yaml:"image_dpi"`
}

// NewConverter builds a converter for the named model, or the default model
// when name is empty.
func (cfg *Config) NewConverter(model string) (*converter.Converter, error) {
	if model == "" {
		model = cfg.DefaultModel()
	}

	options, err := cfg.converterOptions()

	if err != nil {
		return nil, err
	}

	if e, ok := cfg.extractors[model]; ok {
		options = append(options, converter.WithExtractor(model, e))
	} else if c, ok := cfg.completers[model]; ok {
		options = append(options, converter.WithCompleter(model, c))
	} else {
		return nil, fmt.Errorf("model %q: %w", model, ErrModelNotFound)
	}

	return converter.New(options...)
}

func (cfg *Config) converterOptions() ([]converter.Option, error) {
	c := cfg.converter

	space, err := parseSpace(c.Coordinates)

	if err != nil {
		return nil, err
	}

	rasterizer, err := raster.New(c.Rasterizer)

	if err != nil {
		return nil, err
	}

	documentOptions, err := cfg.documentOptions()

	if err != nil {
		return nil, err
	}

	return []converter.Option{
		converter.WithRasterizer(rasterizer),
		converter.WithParser(grounding.NewParser(grounding.WithSpace(space))),

		converter.WithDPI(c.DPI),
		converter.WithConcurrency(c.Concurrency),
		converter.WithRateLimit(c.RateLimit),

		converter.WithMaxTokens(c.MaxTokens),
		converter.WithTemperature(c.Temperature),
		converter.WithPrompts(c.Prompts.Document, c.Prompts.Image),

		converter.WithDocumentOptions(documentOptions...),
	}, nil
}

func (cfg *Config) documentOptions() ([]document.Option, error) {
	d := cfg.document

	size, err := document.ParsePageSize(d.PageSize)

	if err != nil {
		return nil, err
	}

	options := []document.Option{
		document.WithPageSize(size),
	}

	if d.Font != "" {
		options = append(options, document.WithFont(d.Font))
	}

	if d.Footer != nil {
		options = append(options, document.WithFooter(*d.Footer))
	}

	if d.ImageDPI > 0 {
		options = append(options, document.WithImageResolution(d.ImageDPI))
	}

	return options, nil
}

func parseSpace(s string) (grounding.Space, error) {
	switch strings.ToLower(s) {
	case "", "normalized":
		return grounding.SpaceNormalized, nil

	case "pixel", "pixels", "absolute":
		return grounding.SpacePixel, nil
	}

	return 0, fmt.Errorf("invalid coordinate space %q", s)
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
