package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/adrianliechti/scanpress/config"
	"github.com/adrianliechti/scanpress/pkg/otel"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath string
	debug      bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "scanpress",
		Short: "Turn scanned PDFs and images into clean PDFs through vision OCR models",

		SilenceUsage: true,

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			godotenv.Load()

			level := slog.LevelInfo

			if debug {
				level = slog.LevelDebug
			}

			shutdown, err := otel.Setup(cmd.Context(), "scanpress", level)

			if err != nil {
				return err
			}

			cobra.OnFinalize(func() {
				shutdown(context.Background())
			})

			return nil
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "configuration file")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	root.AddCommand(convertCommand())
	root.AddCommand(serveCommand())

	return root
}

// loadConfig reads the configuration file and falls back to the API_KEY,
// BASE_URL and OCR_MODEL environment when it does not exist.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Parse(configPath)

	if errors.Is(err, fs.ErrNotExist) {
		slog.Debug("no config file, using environment", "path", configPath)
		return config.FromEnv()
	}

	return cfg, err
}
