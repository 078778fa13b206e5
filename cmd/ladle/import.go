package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/recipeops/ladle/internal/catalog"
	"github.com/recipeops/ladle/internal/config"
	"github.com/recipeops/ladle/internal/eventlog"
	"github.com/recipeops/ladle/internal/extract"
	"github.com/recipeops/ladle/internal/home"
	"github.com/recipeops/ladle/internal/parse"
	"github.com/recipeops/ladle/internal/pipeline"
	"github.com/recipeops/ladle/internal/providers"
	"github.com/recipeops/ladle/internal/store"
)

var catalogFlag string

var importCmd = &cobra.Command{
	Use:   "import <file>...",
	Short: "Import recipe documents into costed recipe records",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := home.Resolve(homeDir)
		if err != nil {
			return err
		}
		if err := dir.Ensure(); err != nil {
			return err
		}

		cfgPath := cfgFile
		if cfgPath == "" {
			if _, statErr := os.Stat(dir.ConfigPath()); statErr == nil {
				cfgPath = dir.ConfigPath()
			}
		}
		cm, err := config.NewManager(cfgPath)
		if err != nil {
			return err
		}
		cm.WatchConfig()
		cfg := cm.Get()

		log := slog.Default()

		catalogPath := catalogFlag
		if catalogPath == "" {
			catalogPath = cfg.Defaults.CatalogPath
		}
		if catalogPath == "" {
			catalogPath = dir.CatalogPath()
		}
		snap, err := catalog.Load(catalogPath)
		if err != nil {
			return fmt.Errorf("catalog unavailable (use --catalog or place one at %s): %w", dir.CatalogPath(), err)
		}

		events, err := eventlog.Open(dir.EventLogPath(), log)
		if err != nil {
			return err
		}
		defer events.Close()

		st, err := store.New(dir.RecipesDir())
		if err != nil {
			return err
		}

		structuring, vision, err := buildProviders(cfg)
		if err != nil {
			return err
		}

		proc := pipeline.New(pipeline.Options{
			Extractor:  extract.New(vision, cfg.Routing, cfg.Limits, log),
			Parser:     parse.New(structuring, log),
			Catalog:    snap,
			Tiers:      cfg.Mapping,
			Validation: cfg.Validation,
			Store:      st,
			Events:     events,
			MaxWorkers: cfg.Defaults.MaxWorkers,
			Log:        log,
		})

		inputs := make([]pipeline.Input, 0, len(args))
		for _, path := range args {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}
			inputs = append(inputs, pipeline.Input{Name: path, Data: data})
		}

		outcomes := proc.Run(cmd.Context(), inputs)
		return printOutput(outcomes)
	},
}

func init() {
	importCmd.Flags().StringVar(&catalogFlag, "catalog", "", "product catalog CSV (default: configured path or ~/.ladle/catalog.csv)")
}

// buildProviders constructs the structuring and vision clients from config.
// The "mock" type keeps the pipeline runnable without network access.
func buildProviders(cfg *config.Config) (providers.StructuringClient, providers.VisionProvider, error) {
	var structuring providers.StructuringClient
	switch cfg.Structuring.Type {
	case "openrouter", "":
		structuring = providers.NewOpenRouterClient(providers.OpenRouterConfig{
			APIKey:     config.ResolveEnvVars(cfg.Structuring.APIKey),
			Model:      cfg.Structuring.Model,
			Timeout:    time.Duration(cfg.Structuring.TimeoutSeconds) * time.Second,
			RateLimit:  int(cfg.Structuring.RateLimit),
			MaxRetries: cfg.Structuring.MaxRetries,
		})
	case "mock":
		structuring = &providers.MockStructuring{}
	default:
		return nil, nil, fmt.Errorf("unknown structuring provider type %q", cfg.Structuring.Type)
	}

	var vision providers.VisionProvider
	switch cfg.Vision.Type {
	case "openai", "":
		vision = providers.NewOpenAIVisionClient(providers.OpenAIVisionConfig{
			APIKey:     config.ResolveEnvVars(cfg.Vision.APIKey),
			Model:      cfg.Vision.Model,
			Timeout:    time.Duration(cfg.Vision.TimeoutSeconds) * time.Second,
			MaxRetries: cfg.Vision.MaxRetries,
		})
	case "mock":
		vision = &providers.MockVision{}
	default:
		return nil, nil, fmt.Errorf("unknown vision provider type %q", cfg.Vision.Type)
	}

	return structuring, vision, nil
}

// printOutput renders a value in the selected output format.
func printOutput(v any) error {
	switch outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		data, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	}
}
