package main

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"llm-bench/bench"
	"llm-bench/client"
)

// runCheck verifies connectivity before a real benchmark run: health
// endpoint, model listing, and one small timed generation.
func runCheck(ctx context.Context, cl *client.Client) error {
	log.Printf("Checking %s", cl.Endpoint())

	if err := cl.HealthCheck(ctx); err != nil {
		return err
	}
	log.Printf("  health: ok")

	models, err := cl.Models(ctx)
	if err != nil {
		return err
	}
	log.Printf("  models: %s", strings.Join(models, ", "))

	start := time.Now()
	text, err := cl.Generate(ctx, "Say hello.", 10)
	if err != nil {
		return fmt.Errorf("test generation failed: %w", err)
	}
	log.Printf("  generation: ok in %.2fs (~%d tokens)", time.Since(start).Seconds(), bench.ApproxTokens(text))

	return nil
}
