// Command fitgate-smoke exercises a fitness backend through the client and
// prints the resulting metrics in Prometheus text format.
//
// It logs in with the given credentials, restores nothing (fresh session),
// then hammers the profile endpoint with concurrent workers so refresh
// coalescing and the retry path get real concurrency. Session state is kept
// in Redis; without -redis-addr an embedded miniredis is used.
//
//	go run ./cmd/fitgate-smoke -base-url http://localhost:8000/api \
//	  -username alice -password correct-horse -workers 16 -ops 500
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	fitgate "github.com/fittrack/fitgate"
	"github.com/fittrack/fitgate/metrics/export/prometheus"
)

func main() {
	var (
		baseURL   = flag.String("base-url", "", "backend root URL (required)")
		username  = flag.String("username", "", "login username (required)")
		password  = flag.String("password", "", "login password (required)")
		workers   = flag.Int("workers", 8, "number of concurrent workers")
		ops       = flag.Int("ops", 100, "profile fetches per worker")
		redisAddr = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
	)
	flag.Parse()

	if *baseURL == "" || *username == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "base-url, username, and password are required")
		os.Exit(2)
	}
	if *workers <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "workers and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		defer mr.Close()
		addr = mr.Addr()
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()

	cfg := fitgate.DefaultConfig()
	cfg.BaseURL = *baseURL
	cfg.Metrics.EnableLatencyHistograms = true
	cfg.Storage.TTL = time.Hour

	client, err := fitgate.New().
		WithConfig(cfg).
		WithRedis(rdb).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build client: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	if _, err := client.Login(ctx, fitgate.Credentials{
		Username: *username,
		Password: *password,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "login: %v\n", err)
		os.Exit(1)
	}

	var failures atomic.Int64
	start := time.Now()

	var wg sync.WaitGroup
	for w := 0; w < *workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < *ops; i++ {
				if _, err := client.Profile(ctx); err != nil {
					failures.Add(1)
				}
			}
		}()
	}
	wg.Wait()

	elapsed := time.Since(start)
	total := int64(*workers) * int64(*ops)
	fmt.Printf("ran %d profile fetches in %s (%.0f ops/s), %d failed\n",
		total, elapsed.Round(time.Millisecond),
		float64(total)/elapsed.Seconds(), failures.Load())

	if err := client.Logout(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "logout: %v\n", err)
	}

	fmt.Println()
	fmt.Print(prometheus.NewExporter(client).Render())
}
