package config

import (
	"errors"
	"strings"

	"github.com/adrianliechti/scanpress/pkg/otel"
	"github.com/adrianliechti/scanpress/pkg/provider"
	"github.com/adrianliechti/scanpress/pkg/router"
	"github.com/adrianliechti/scanpress/pkg/router/roundrobin"
)

type routerConfig struct {
	Type string `yaml:"type"`

	Models []string `yaml:"models"`
}

type routerContext struct {
	Routes []router.Route
}

func (cfg *Config) registerRouters(f *configFile) error {
	if f.Routers.IsZero() {
		return nil
	}

	var configs map[string]routerConfig

	if err := f.Routers.Decode(&configs); err != nil {
		return err
	}

	// mapping nodes alternate key and value
	for i := 0; i+1 < len(f.Routers.Content); i += 2 {
		id := f.Routers.Content[i].Value

		config, ok := configs[id]

		if !ok {
			continue
		}

		context := routerContext{
			Routes: []router.Route{},
		}

		for _, model := range config.Models {
			completer, err := cfg.Completer(model)

			if err != nil {
				return err
			}

			context.Routes = append(context.Routes, router.Route{
				Name: model,

				Completer: completer,
			})
		}

		router, err := createRouter(config, context)

		if err != nil {
			return err
		}

		if completer, ok := router.(provider.Completer); ok {
			cfg.RegisterCompleter(id, otel.NewCompleter(config.Type, id, completer))
		}
	}

	return nil
}

func createRouter(cfg routerConfig, context routerContext) (any, error) {
	switch strings.ToLower(cfg.Type) {
	case "roundrobin":
		return roundrobinRouter(cfg, context)

	default:
		return nil, errors.New("invalid router type: " + cfg.Type)
	}
}

func roundrobinRouter(cfg routerConfig, context routerContext) (any, error) {
	return roundrobin.NewCompleter(context.Routes...)
}
