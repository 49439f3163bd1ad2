package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"shutterplan/internal/ai"
	"shutterplan/internal/modules/planparams"
	"shutterplan/internal/modules/pricing"
	"shutterplan/internal/service"
)

func main() {
	modelID := flag.String("model", "gemini-2.0-flash", "Catalog model id")
	flag.Parse()

	userMessage := "I'm going to Kyoto for 3 days and love architecture and night photography"
	if flag.NArg() > 0 {
		userMessage = flag.Arg(0)
	}

	catalog, err := ai.NewCatalog(ai.DefaultModels)
	if err != nil {
		log.Fatal(err)
	}
	model, err := catalog.Find(*modelID)
	if err != nil {
		log.Fatal(err)
	}

	dispatcher := ai.NewDispatcher(ai.Options{})
	if !dispatcher.IsAvailable(model) {
		log.Fatalf("%s environment variable not set", ai.CredentialEnv[model.Provider])
	}

	params := planparams.Extract(userMessage)
	fmt.Printf("User: %s\n", userMessage)
	fmt.Printf("Destination: %s\n", orDash(params.Destination))
	fmt.Printf("Interests: %s\n", orDash(params.Interests))
	fmt.Printf("Duration: %s\n", orDash(params.Duration))
	if key, ok := planparams.CacheKey(params); ok {
		fmt.Printf("Cache key: %s\n", key)
	}

	systemPrompt := ai.BuildSystemPrompt(dispatcher.SystemPrompt(), service.TripContext(params), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	resp, err := dispatcher.Dispatch(ctx, model, []ai.Message{{Role: ai.RoleUser, Content: userMessage}}, systemPrompt)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error dispatching: %v\n", err)
		os.Exit(1)
	}

	cost := pricing.NewService().Estimate(model, resp.InputTokens, resp.OutputTokens)
	fmt.Printf("\n%s (%dms, %s):\n%s\n", resp.Model, resp.LatencyMs, cost, resp.Text)
}

func orDash(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
