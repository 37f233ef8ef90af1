package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pastoralpass/internal/config"
	"pastoralpass/internal/directory"
	"pastoralpass/internal/insights"
	"pastoralpass/internal/ledger"
	"pastoralpass/internal/metrics"
	"pastoralpass/internal/queue"
	"pastoralpass/internal/store"
)

// Worker consumes insight jobs, calls the language-model service, and stores
// the rendered summary where the API serves it from.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	redisClient := store.NewRedis(cfg.RedisAddr)

	var kv store.Store
	switch cfg.StorageBackend {
	case "postgres":
		pg, err := store.NewPostgres(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("postgres connect failed: %v", err)
		}
		defer pg.Close()
		kv = pg
	case "redis":
		kv = redisClient
	default:
		// An in-process store is useless here: the worker would not see the
		// API's data. Run the API with QUEUE_BACKEND=memory instead.
		log.Fatal("worker requires STORAGE_BACKEND=redis or postgres")
	}

	q := queue.NewRedisQueue(redisClient.Client, "pastoralpass:insights")

	dir := directory.New(kv)
	led := ledger.New(kv)
	ai := insights.New(cfg.InsightsURL, cfg.InsightsModel, cfg.GeminiAPIKey, cfg.InsightsSkip)

	jobs, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("worker started, waiting for insight jobs...")
	for job := range jobs {
		log.Printf("processing insight job %s", job.ID)

		students, err := dir.List(ctx)
		if err != nil {
			log.Printf("job %s: directory snapshot failed: %v", job.ID, err)
			continue
		}
		records, err := led.List(ctx)
		if err != nil {
			log.Printf("job %s: ledger snapshot failed: %v", job.ID, err)
			continue
		}

		summary := insights.Summary{
			Text:        ai.Summarize(ctx, students, records),
			GeneratedAt: time.Now().UTC(),
		}
		if err := kv.Save(ctx, store.InsightsKey, summary); err != nil {
			log.Printf("job %s: save failed: %v", job.ID, err)
			continue
		}
		metrics.InsightJobs.WithLabelValues("processed").Inc()
		log.Printf("job %s processed", job.ID)
	}

	log.Println("worker stopped")
}
