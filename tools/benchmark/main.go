// Package main implements a load benchmark against a running TrustFlow API.
// It registers throwaway accounts, submits credit scoring requests and polls
// them to a terminal state, then reports latency and outcome statistics.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"
	"time"
)

const (
	defaultBaseURL      = "http://localhost:8000"
	defaultPollInterval = 200 * time.Millisecond
)

type Config struct {
	BaseURL        string
	Users          int           // Number of concurrent simulated users
	RequestsPerRun int           // Scoring requests submitted per user
	UseBlockchain  bool          // Request ledger recording for every submission
	PollInterval   time.Duration // How often to check if a request is terminal
	RequestTimeout time.Duration // Timeout for each HTTP call
	RunTimeout     time.Duration // Overall deadline for one user's scenario
	OutputFile     string        // Output markdown file path (optional)
}

type RequestStats struct {
	SubmitLatency time.Duration
	TotalLatency  time.Duration // Submission to terminal status
	Status        string
	Err           error
}

type RunStats struct {
	User     string
	Requests []RequestStats
	Err      error
}

func main() {
	cfg := parseFlags()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nInterrupted, collecting partial results...")
		cancel()
	}()

	fmt.Printf("Benchmarking %s with %d users x %d requests (blockchain=%v)\n\n",
		cfg.BaseURL, cfg.Users, cfg.RequestsPerRun, cfg.UseBlockchain)

	start := time.Now()
	runs := runAll(ctx, cfg)
	elapsed := time.Since(start)

	report := buildReport(cfg, runs, elapsed)
	fmt.Print(report)

	if cfg.OutputFile != "" {
		if err := os.WriteFile(cfg.OutputFile, []byte(report), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write report: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\nReport written to %s\n", cfg.OutputFile)
	}
}

func parseFlags() Config {
	cfg := Config{}
	configPath := flag.String("config", "", "Path to JSON config file")
	flag.StringVar(&cfg.BaseURL, "base-url", defaultBaseURL, "API base URL")
	flag.IntVar(&cfg.Users, "users", 5, "Number of concurrent simulated users")
	flag.IntVar(&cfg.RequestsPerRun, "requests", 10, "Scoring requests per user")
	flag.BoolVar(&cfg.UseBlockchain, "blockchain", false, "Request ledger recording")
	flag.DurationVar(&cfg.PollInterval, "poll-interval", defaultPollInterval, "Status poll interval")
	flag.DurationVar(&cfg.RequestTimeout, "request-timeout", 10*time.Second, "Per-call HTTP timeout")
	flag.DurationVar(&cfg.RunTimeout, "run-timeout", 5*time.Minute, "Deadline for one user's scenario")
	flag.StringVar(&cfg.OutputFile, "output", "", "Markdown report output path")
	flag.Parse()

	if *configPath != "" {
		fileCfg, err := LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
			os.Exit(1)
		}
		if fileCfg.BaseURL != "" {
			cfg.BaseURL = fileCfg.BaseURL
		}
	}

	return cfg
}

func runAll(ctx context.Context, cfg Config) []RunStats {
	runs := make([]RunStats, cfg.Users)
	var wg sync.WaitGroup
	for i := 0; i < cfg.Users; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			runs[i] = runUser(ctx, cfg, i)
		}(i)
	}
	wg.Wait()
	return runs
}

// runUser drives one register/login/submit/poll scenario
func runUser(ctx context.Context, cfg Config, index int) RunStats {
	ctx, cancel := context.WithTimeout(ctx, cfg.RunTimeout)
	defer cancel()

	client := &http.Client{Timeout: cfg.RequestTimeout}
	email := fmt.Sprintf("bench-%d-%d@trustflow.local", time.Now().UnixNano(), index)
	password := "benchmark-pass-1"
	stats := RunStats{User: email}

	if _, err := call(ctx, client, cfg.BaseURL, http.MethodPost, "/api/auth/register", "", map[string]any{
		"email":    email,
		"password": password,
	}); err != nil {
		stats.Err = fmt.Errorf("register: %w", err)
		return stats
	}

	login, err := call(ctx, client, cfg.BaseURL, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email":    email,
		"password": password,
	})
	if err != nil {
		stats.Err = fmt.Errorf("login: %w", err)
		return stats
	}
	token, _ := login["access_token"].(string)
	if token == "" {
		stats.Err = fmt.Errorf("login returned no token")
		return stats
	}

	for r := 0; r < cfg.RequestsPerRun; r++ {
		stats.Requests = append(stats.Requests, runRequest(ctx, client, cfg, token))
		if ctx.Err() != nil {
			break
		}
	}

	return stats
}

// runRequest submits one scoring request and polls it to a terminal status
func runRequest(ctx context.Context, client *http.Client, cfg Config, token string) RequestStats {
	start := time.Now()
	submitted, err := call(ctx, client, cfg.BaseURL, http.MethodPost, "/api/credit/request", token, map[string]any{
		"use_blockchain": cfg.UseBlockchain,
	})
	if err != nil {
		return RequestStats{Err: fmt.Errorf("submit: %w", err)}
	}
	submitLatency := time.Since(start)

	id, ok := submitted["id"].(float64)
	if !ok {
		return RequestStats{SubmitLatency: submitLatency, Err: fmt.Errorf("submit returned no id")}
	}

	path := fmt.Sprintf("/api/credit/request/%d", int64(id))
	for {
		select {
		case <-ctx.Done():
			return RequestStats{SubmitLatency: submitLatency, Status: "timeout", Err: ctx.Err()}
		case <-time.After(cfg.PollInterval):
		}

		current, err := call(ctx, client, cfg.BaseURL, http.MethodGet, path, token, nil)
		if err != nil {
			return RequestStats{SubmitLatency: submitLatency, Err: fmt.Errorf("poll: %w", err)}
		}
		status, _ := current["status"].(string)
		if status == "completed" || status == "failed" {
			return RequestStats{
				SubmitLatency: submitLatency,
				TotalLatency:  time.Since(start),
				Status:        status,
			}
		}
	}
}

// call performs one JSON API call and decodes the response body
func call(ctx context.Context, client *http.Client, baseURL, method, path, token string, body any) (map[string]any, error) {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}

	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, err
	}
	return decoded, nil
}

// buildReport renders the aggregate statistics as markdown
func buildReport(cfg Config, runs []RunStats, elapsed time.Duration) string {
	var completed, failed, errored int
	var totals []time.Duration
	var submits []time.Duration
	brokenRuns := 0

	for _, run := range runs {
		if run.Err != nil {
			brokenRuns++
			continue
		}
		for _, r := range run.Requests {
			switch {
			case r.Err != nil:
				errored++
			case r.Status == "completed":
				completed++
				totals = append(totals, r.TotalLatency)
				submits = append(submits, r.SubmitLatency)
			case r.Status == "failed":
				failed++
			}
		}
	}

	total := completed + failed + errored

	var b bytes.Buffer
	fmt.Fprintf(&b, "# TrustFlow Scoring Benchmark\n\n")
	fmt.Fprintf(&b, "- Base URL: %s\n", cfg.BaseURL)
	fmt.Fprintf(&b, "- Users: %d, requests per user: %d, blockchain: %v\n", cfg.Users, cfg.RequestsPerRun, cfg.UseBlockchain)
	fmt.Fprintf(&b, "- Wall time: %s, throughput: %s\n\n", formatDuration(elapsed), formatRate(completed, elapsed))
	fmt.Fprintf(&b, "| Outcome | Count | Share |\n|---|---|---|\n")
	fmt.Fprintf(&b, "| %s completed | %d | %s |\n", statusEmoji(completed, failed+errored), completed, percentageString(completed, total))
	fmt.Fprintf(&b, "| failed | %d | %s |\n", failed, percentageString(failed, total))
	fmt.Fprintf(&b, "| errored | %d | %s |\n", errored, percentageString(errored, total))
	if brokenRuns > 0 {
		fmt.Fprintf(&b, "\n%d user scenario(s) aborted before submitting.\n", brokenRuns)
	}

	if len(totals) > 0 {
		sort.Slice(totals, func(i, j int) bool { return totals[i] < totals[j] })
		sort.Slice(submits, func(i, j int) bool { return submits[i] < submits[j] })
		fmt.Fprintf(&b, "\n## Latency (submission to terminal status)\n\n")
		fmt.Fprintf(&b, "- p50: %s, p90: %s, p99: %s, max: %s\n",
			formatDuration(percentile(totals, 50)),
			formatDuration(percentile(totals, 90)),
			formatDuration(percentile(totals, 99)),
			formatDuration(totals[len(totals)-1]))
		fmt.Fprintf(&b, "\n## Submit latency (HTTP only)\n\n")
		fmt.Fprintf(&b, "- p50: %s, p90: %s, p99: %s\n",
			formatDuration(percentile(submits, 50)),
			formatDuration(percentile(submits, 90)),
			formatDuration(percentile(submits, 99)))
	}

	return b.String()
}
