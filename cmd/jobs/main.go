package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"ticket-waitlist/config"
	"ticket-waitlist/internal/cache"
	"ticket-waitlist/internal/database"
	"ticket-waitlist/internal/jobs"
	"ticket-waitlist/internal/repository"
	"time"
)

// One-shot runner for the scheduled jobs, meant to be invoked by cron or a
// container scheduler: `jobs -job sweep` or `jobs -job promote`.
func main() {
	job := flag.String("job", "", "job to run: sweep or promote")
	flag.Parse()

	cfg := config.LoadConfig()

	pool, err := database.InitDatabase(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer pool.Close()

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to initialize redis: %v", err)
	}
	defer rdb.Close()

	store := cache.NewRedisStore(rdb, cfg.Cache.OpTimeout)
	orchestrator := cache.NewOrchestrator(store)

	eventRepo := repository.NewEventRepository(pool)
	waitlistRepo := repository.NewWaitlistRepository(pool)

	ctx := context.Background()

	var summary jobs.Summary
	switch *job {
	case "sweep":
		sweeper := jobs.NewSweeper(pool, waitlistRepo, eventRepo, orchestrator)
		summary, err = sweeper.Run(ctx, time.Now(), cfg.Admission.SweepBatch)
	case "promote":
		promoter := jobs.NewPromoter(pool, waitlistRepo, eventRepo, orchestrator, cfg.Admission.OfferWindow)
		summary, err = promoter.Run(ctx, time.Now(), cfg.Admission.PromoteBatch)
	default:
		fmt.Fprintln(os.Stderr, "usage: jobs -job sweep|promote")
		os.Exit(2)
	}

	if err != nil {
		log.Fatalf("job %s failed: %v", *job, err)
	}

	out, _ := json.Marshal(summary)
	fmt.Println(string(out))
}
