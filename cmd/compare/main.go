// README: Comparison runner; sends one prompt to every selected model and prints a result table.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"shutterplan/internal/ai"
	"shutterplan/internal/compare"
	"shutterplan/internal/config"
	"shutterplan/internal/modules/pricing"
	"shutterplan/internal/observe"
)

const defaultPrompt = "Plan a 3 day photography trip to Kyoto focused on architecture and night shots."

type Config struct {
	Prompt       string
	SystemPrompt string
	Models       string
	ModelsFile   string
	Workers      int
	Timeout      time.Duration
	ReportPath   string
	LogLevel     string
}

func main() {
	cfg := loadConfig()
	logger := observe.SetupLogger(os.Stderr, cfg.LogLevel)

	all, err := config.LoadModels(cfg.ModelsFile)
	if err != nil {
		log.Fatalf("load models: %v", err)
	}
	catalog, err := ai.NewCatalog(all)
	if err != nil {
		log.Fatal(err)
	}
	models, err := selectModels(catalog, cfg.Models)
	if err != nil {
		log.Fatal(err)
	}

	pricingSvc := pricing.NewService()
	dispatcher := ai.NewDispatcher(ai.Options{Logger: logger})
	runner := compare.NewRunner(dispatcher, compare.Options{
		Workers: cfg.Workers,
		Timeout: cfg.Timeout,
		Pricing: pricingSvc,
		Logger:  logger,
	})

	ctx, cancel := context.WithTimeout(context.Background(), overallTimeout(len(models), cfg.Workers, cfg.Timeout))
	defer cancel()

	results, err := runner.Run(ctx, cfg.Prompt, cfg.SystemPrompt, models)
	if err != nil {
		log.Fatal(err)
	}
	printResults(os.Stdout, results)

	summary := compare.Summarize(results)
	fmt.Println("\n== Summary ==")
	fmt.Printf("OK=%d FAIL=%d SKIP=%d total=%s\n", summary.OK, summary.Failed, summary.Skipped, summary.TotalCost)
	if summary.Fastest != "" {
		fmt.Printf("fastest=%s cheapest=%s\n", summary.Fastest, summary.Cheapest)
	}

	if cfg.ReportPath != "" {
		if err := writeReport(cfg.ReportPath, results, summary); err != nil {
			log.Fatalf("write report: %v", err)
		}
	}

	if summary.Failed > 0 {
		os.Exit(1)
	}
}

func loadConfig() Config {
	var cfg Config
	flag.StringVar(&cfg.Prompt, "prompt", envOrDefault("SHUTTERPLAN_COMPARE_PROMPT", defaultPrompt), "Prompt sent to every model")
	flag.StringVar(&cfg.SystemPrompt, "system", "", "System prompt override")
	flag.StringVar(&cfg.Models, "models", "", "Comma-separated model ids (default: all enabled)")
	flag.StringVar(&cfg.ModelsFile, "models-file", os.Getenv("SHUTTERPLAN_MODELS_FILE"), "YAML or TOML model catalog")
	flag.IntVar(&cfg.Workers, "workers", envOrDefaultInt("SHUTTERPLAN_COMPARE_WORKERS", compare.DefaultWorkers), "Concurrent model calls")
	flag.DurationVar(&cfg.Timeout, "timeout", envOrDefaultDuration("SHUTTERPLAN_COMPARE_TIMEOUT", compare.DefaultTimeout), "Per-model timeout")
	flag.StringVar(&cfg.ReportPath, "json", "", "Write a JSON report to this path")
	flag.StringVar(&cfg.LogLevel, "log-level", envOrDefault("SHUTTERPLAN_LOG_LEVEL", "warn"), "Log level")
	flag.Parse()
	cfg.Prompt = strings.TrimSpace(cfg.Prompt)
	return cfg
}

// overallTimeout allows every batch of workers its full per-model timeout.
func overallTimeout(models, workers int, perModel time.Duration) time.Duration {
	if workers <= 0 {
		workers = compare.DefaultWorkers
	}
	batches := (models + workers - 1) / workers
	if batches < 1 {
		batches = 1
	}
	return time.Duration(batches) * perModel
}

// selectModels resolves a comma-separated id list against the catalog.
// An empty list selects every enabled model.
func selectModels(catalog *ai.Catalog, ids string) ([]ai.ModelConfig, error) {
	if strings.TrimSpace(ids) == "" {
		return catalog.Enabled(), nil
	}
	var models []ai.ModelConfig
	for _, id := range strings.Split(ids, ",") {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		m, err := catalog.Find(id)
		if err != nil {
			return nil, err
		}
		models = append(models, m)
	}
	return models, nil
}

func printResults(w io.Writer, results []compare.Result) {
	for _, r := range results {
		fmt.Fprintf(w, "%-5s %-20s", r.Status, r.ModelID)
		if r.Response != nil {
			fmt.Fprintf(w, " %6dms %s", r.Response.LatencyMs, r.Cost)
			if r.Response.InputTokens != nil && r.Response.OutputTokens != nil {
				fmt.Fprintf(w, " (%d in / %d out)", *r.Response.InputTokens, *r.Response.OutputTokens)
			}
		}
		if r.Note != "" {
			fmt.Fprintf(w, " - %s", r.Note)
		}
		fmt.Fprintln(w)
	}
}

type report struct {
	GeneratedAt time.Time        `json:"generatedAt"`
	Results     []compare.Result `json:"results"`
	Summary     compare.Summary  `json:"summary"`
}

func writeReport(path string, results []compare.Result, summary compare.Summary) error {
	data, err := json.MarshalIndent(report{GeneratedAt: time.Now().UTC(), Results: results, Summary: summary}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		var n int
		_, _ = fmt.Sscanf(v, "%d", &n)
		if n > 0 {
			return n
		}
	}
	return def
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
