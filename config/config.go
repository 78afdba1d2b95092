package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/adrianliechti/scanpress/pkg/extractor"
	"github.com/adrianliechti/scanpress/pkg/provider"

	"gopkg.in/yaml.v3"
)

var ErrModelNotFound = errors.New("model not found")

type Config struct {
	Address string
	Token   string

	converter converterConfig
	document  documentConfig

	models []string

	completers map[string]provider.Completer
	extractors map[string]extractor.Provider
}

type configFile struct {
	Server serverConfig `yaml:"server"`

	Providers []providerConfig `yaml:"providers"`
	Routers   yaml.Node        `yaml:"routers"`

	Converter converterConfig `yaml:"converter"`
	Document  documentConfig  `yaml:"document"`
}

type serverConfig struct {
	Address string `yaml:"address"`
	Token   string `yaml:"token"`
}

// New returns an empty registry with default settings.
func New() *Config {
	return &Config{
		Address: ":8080",

		completers: make(map[string]provider.Completer),
		extractors: make(map[string]extractor.Provider),
	}
}

// Parse reads a YAML configuration file. Environment variables in the file
// are expanded before parsing.
func Parse(path string) (*Config, error) {
	data, err := os.ReadFile(path)

	if err != nil {
		return nil, err
	}

	return parse(data)
}

func parse(data []byte) (*Config, error) {
	data = []byte(os.ExpandEnv(string(data)))

	var file configFile

	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return load(&file)
}

// FromEnv configures a single model from API_KEY, BASE_URL and OCR_MODEL.
// Models named mistral-ocr-* use the document OCR endpoint, everything else
// is treated as an OpenAI compatible chat model.
func FromEnv() (*Config, error) {
	model := os.Getenv("OCR_MODEL")

	if model == "" {
		model = "deepseek-ocr"
	}

	kind := "openai"

	if strings.HasPrefix(model, "mistral-ocr") {
		kind = "mistral"
	}

	file := &configFile{
		Server: serverConfig{
			Token: os.Getenv("SCANPRESS_TOKEN"),
		},

		Providers: []providerConfig{
			{
				Type: kind,

				URL:   os.Getenv("BASE_URL"),
				Token: os.Getenv("API_KEY"),

				Models: map[string]modelConfig{
					model: {},
				},
			},
		},
	}

	return load(file)
}

func load(file *configFile) (*Config, error) {
	cfg := New()

	cfg.converter = file.Converter
	cfg.document = file.Document

	if file.Server.Address != "" {
		cfg.Address = file.Server.Address
	}

	cfg.Token = file.Server.Token

	if err := cfg.registerProviders(file); err != nil {
		return nil, err
	}

	if err := cfg.registerRouters(file); err != nil {
		return nil, err
	}

	if len(cfg.models) == 0 {
		return nil, errors.New("no models configured")
	}

	if m := cfg.converter.Model; m != "" && !slices.Contains(cfg.models, m) {
		return nil, fmt.Errorf("converter model %q: %w", m, ErrModelNotFound)
	}

	return cfg, nil
}

// Models lists the configured model names in declaration order.
func (cfg *Config) Models() []string {
	return slices.Clone(cfg.models)
}

// DefaultModel is the converter model, or the first declared model.
func (cfg *Config) DefaultModel() string {
	if cfg.converter.Model != "" {
		return cfg.converter.Model
	}

	if len(cfg.models) == 0 {
		return ""
	}

	return cfg.models[0]
}

func (cfg *Config) RegisterCompleter(id string, c provider.Completer) {
	cfg.register(id)
	cfg.completers[id] = c
}

func (cfg *Config) RegisterExtractor(id string, e extractor.Provider) {
	cfg.register(id)
	cfg.extractors[id] = e
}

func (cfg *Config) register(id string) {
	if !slices.Contains(cfg.models, id) {
		cfg.models = append(cfg.models, id)
	}
}

func (cfg *Config) Completer(id string) (provider.Completer, error) {
	if c, ok := cfg.completers[id]; ok {
		return c, nil
	}

	return nil, fmt.Errorf("completer %q: %w", id, ErrModelNotFound)
}

func (cfg *Config) Extractor(id string) (extractor.Provider, error) {
	if e, ok := cfg.extractors[id]; ok {
		return e, nil
	}

	return nil, fmt.Errorf("extractor %q: %w", id, ErrModelNotFound)
}
