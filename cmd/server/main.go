package main

import (
	"context"
	"log"
	"ticket-waitlist/config"
	"ticket-waitlist/internal/cache"
	"ticket-waitlist/internal/database"
	"ticket-waitlist/internal/handler"
	"ticket-waitlist/internal/jobs"
	"ticket-waitlist/internal/payment"
	"ticket-waitlist/internal/repository"
	"ticket-waitlist/internal/service"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := config.LoadConfig()

	pool, err := database.InitDatabase(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer pool.Close()

	if err := database.InitSchema(context.Background(), pool); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to initialize redis: %v", err)
	}
	defer rdb.Close()

	store := cache.NewRedisStore(rdb, cfg.Cache.OpTimeout)
	orchestrator := cache.NewOrchestrator(store)

	eventRepo := repository.NewEventRepository(pool)
	waitlistRepo := repository.NewWaitlistRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)

	provider := payment.NewBreakerProvider(
		payment.NewHTTPProvider(cfg.Payment.BaseURL, cfg.Payment.Secret),
		payment.NewBreaker(5, 30*time.Second),
		cfg.Payment.Timeout,
	)

	waitlistService := service.NewWaitlistService(pool, waitlistRepo, eventRepo, orchestrator, cfg.Cache, cfg.Admission)
	eventService := service.NewEventService(pool, eventRepo, ticketRepo, waitlistRepo, provider, orchestrator, cfg.Cache)
	purchaseService := service.NewPurchaseService(pool, waitlistRepo, eventRepo, ticketRepo)
	ticketService := service.NewTicketService(ticketRepo)

	sweeper := jobs.NewSweeper(pool, waitlistRepo, eventRepo, orchestrator)
	promoter := jobs.NewPromoter(pool, waitlistRepo, eventRepo, orchestrator, cfg.Admission.OfferWindow)

	router := gin.Default()
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handler.NewWaitlistHandler(waitlistService).RegisterRoutes(router)
	handler.NewEventHandler(eventService).RegisterRoutes(router)
	handler.NewWebhookHandler(purchaseService).RegisterRoutes(router)
	handler.NewTicketHandler(ticketService).RegisterRoutes(router)
	handler.NewJobsHandler(sweeper, promoter, cfg.Admission.SweepBatch, cfg.Admission.PromoteBatch).RegisterRoutes(router)

	router.Run()
}
