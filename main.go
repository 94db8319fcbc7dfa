package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"llm-bench/bench"
	"llm-bench/client"
	"llm-bench/monitor"
	"llm-bench/storage"
	"llm-bench/visualisation"
)

var (
	url         = flag.String("url", "http://localhost:8000", "Base URL of the inference server")
	apiKey      = flag.String("api-key", "", "API key for authentication (or LLM_BENCH_API_KEY)")
	model       = flag.String("model", "", "Model name (default: first model reported by the server)")
	mode        = flag.String("mode", "full", "Benchmark mode (latency|throughput|concurrency|full|check)")
	quick       = flag.Bool("quick", false, "Run abbreviated benchmarks")
	numRequests = flag.Int("num-requests", 0, "Number of requests for the latency benchmark (0 = mode default)")
	duration    = flag.Int("duration", 0, "Duration in seconds for the throughput benchmark (0 = mode default)")
	concurrent  = flag.Int("concurrent", 0, "Number of concurrent clients (0 = mode default)")
	perClient   = flag.Int("requests-per-client", 0, "Requests per concurrent client (0 = mode default)")
	maxTokens   = flag.Int("max-tokens", 0, "Token budget per request (0 = benchmark default)")
	temperature = flag.Float64("temperature", 0.7, "Sampling temperature")
	timeout     = flag.Duration("timeout", 60*time.Second, "Per-request timeout")

	output         = flag.String("output", "", "Output file for the JSON report")
	parquetDir     = flag.String("parquet-dir", "", "Directory for raw per-request parquet results (disabled when empty)")
	prometheusAddr = flag.String("prometheus-addr", "", "Prometheus metrics server address, e.g. :9100 (disabled when empty)")
	grafanaOut     = flag.String("grafana-out", "", "Write a Grafana dashboard JSON to this path and exit")

	s3Bucket    = flag.String("s3-bucket", "", "Upload the finished report to this S3 bucket (disabled when empty)")
	s3KeyPrefix = flag.String("s3-key-prefix", "llm-bench", "Key prefix for uploaded reports")
	s3Region    = flag.String("s3-region", "us-east-1", "Region for the report bucket")
	s3Endpoint  = flag.String("s3-endpoint", "", "Custom S3-compatible endpoint (e.g. Cloudflare R2)")
)

func main() {
	flag.Parse()

	if *grafanaOut != "" {
		dashboard := visualisation.CreateBenchmarkDashboard()
		if err := visualisation.SaveDashboard(dashboard, *grafanaOut); err != nil {
			log.Fatalf("Failed to write dashboard: %v", err)
		}
		log.Printf("Grafana dashboard written to %s", *grafanaOut)
		return
	}

	if *url == "" {
		log.Fatal("URL is required")
	}

	key := *apiKey
	if key == "" {
		key = os.Getenv("LLM_BENCH_API_KEY")
	}

	cl := client.New(client.Config{
		BaseURL:     *url,
		APIKey:      key,
		Model:       *model,
		Temperature: float32(*temperature),
		Timeout:     *timeout,
	})

	ctx := context.Background()

	if *mode == "check" {
		if err := runCheck(ctx, cl); err != nil {
			log.Fatalf("Connectivity check failed: %v", err)
		}
		return
	}

	switch *mode {
	case bench.ModeLatency, bench.ModeThroughput, bench.ModeConcurrency, bench.ModeFull:
	default:
		log.Fatalf("Unknown mode %q", *mode)
	}

	log.Printf("Starting LLM benchmark for %s (mode=%s, quick=%v)", *url, *mode, *quick)

	// Result sinks.
	var parquetWriter *storage.ParquetWriter
	if *parquetDir != "" {
		var err error
		parquetWriter, err = storage.NewParquetWriter(*parquetDir, 1000)
		if err != nil {
			log.Fatalf("Failed to create parquet writer: %v", err)
		}
	}

	stopMonitor := make(chan struct{})
	var promExporter *storage.PrometheusExporter
	if *prometheusAddr != "" {
		promExporter = storage.NewPrometheusExporter()
		go func() {
			log.Printf("Starting Prometheus server on %s", *prometheusAddr)
			if err := promExporter.StartServer(*prometheusAddr); err != nil {
				log.Printf("Prometheus server error: %v", err)
			}
		}()
		go watchHost(promExporter, stopMonitor)
	}

	if err := cl.HealthCheck(ctx); err != nil {
		log.Printf("Warning: health check failed: %v", err)
	}

	runner := &bench.Runner{
		Gen:               cl,
		Server:            *url,
		Model:             *model,
		Quick:             *quick,
		NumRequests:       *numRequests,
		Duration:          time.Duration(*duration) * time.Second,
		Concurrent:        *concurrent,
		RequestsPerClient: *perClient,
		MaxTokens:         *maxTokens,
	}
	if promExporter != nil {
		promExporter.UpdateConcurrency(runner.ConcurrentClients())
	}
	if promExporter != nil || parquetWriter != nil {
		runner.OnOutcome = func(benchmark string, o bench.Outcome) {
			recordOutcome(promExporter, parquetWriter, cl, runner, benchmark, o)
		}
	}

	report := runner.Run(ctx, *mode)
	close(stopMonitor)

	// The default model is resolved lazily by the first request.
	if report.Metadata.Model == "" {
		report.Metadata.Model = cl.Model()
	}

	if parquetWriter != nil {
		if err := parquetWriter.Close(); err != nil {
			log.Printf("Error closing parquet writer: %v", err)
		} else {
			log.Printf("Raw results saved to %s", parquetWriter.FilePath())
		}
	}

	if *output != "" {
		if err := storage.WriteReport(*output, report); err != nil {
			log.Printf("Error saving report: %v", err)
		} else {
			log.Printf("Results saved to %s", *output)
		}
	}

	if *s3Bucket != "" {
		if err := uploadReport(ctx, report); err != nil {
			log.Printf("Error uploading report: %v", err)
		}
	}

	if report.Status == "failed" {
		log.Fatalf("Benchmark failed: %s", report.Error)
	}
	log.Printf("Benchmark completed")
}

// recordOutcome feeds one request attempt to the configured sinks.
func recordOutcome(promExporter *storage.PrometheusExporter, parquetWriter *storage.ParquetWriter, cl *client.Client, runner *bench.Runner, benchmark string, o bench.Outcome) {
	if promExporter != nil {
		promExporter.RecordOutcome(benchmark, o.LatencyS, o.Tokens, o.OK)
	}
	if parquetWriter != nil {
		concurrency := 1
		if benchmark == bench.ModeConcurrency {
			concurrency = runner.ConcurrentClients()
		}
		row := storage.ResultRow{
			TimestampMs: time.Now().UnixMilli(),
			Benchmark:   benchmark,
			RequestID:   int32(o.RequestID),
			LatencyMs:   o.LatencyS * 1000,
			Tokens:      int32(o.Tokens),
			Success:     o.OK,
			ErrMsg:      o.Err,
			Model:       cl.Model(),
			Concurrency: int32(concurrency),
		}
		if err := parquetWriter.WriteRow(row); err != nil {
			log.Printf("Error writing result: %v", err)
		}
	}
}

// uploadReport pushes the JSON report to the configured bucket.
func uploadReport(ctx context.Context, report *bench.Report) error {
	data, err := storage.MarshalReport(report)
	if err != nil {
		return err
	}

	uploader, err := storage.NewReportUploader(ctx, *s3Bucket, *s3Region, *s3Endpoint)
	if err != nil {
		return err
	}

	objectKey := fmt.Sprintf("%s/report-%s.json", *s3KeyPrefix, report.Metadata.RunID)
	if err := uploader.UploadReport(ctx, objectKey, data); err != nil {
		return err
	}

	log.Printf("Report uploaded to s3://%s/%s", *s3Bucket, objectKey)
	return nil
}

// watchHost samples load-generator host stats while a benchmark runs.
func watchHost(promExporter *storage.PrometheusExporter, stop <-chan struct{}) {
	mon := monitor.New()
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if stats, err := mon.GetSystemStats(); err == nil {
				promExporter.UpdateSystemStats(stats.CPUUtilization, stats.MemoryUsage)
			}
		case <-stop:
			return
		}
	}
}
