package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/LuisGnzlz1/test-rimac-backend/pkg/cache"
	"github.com/LuisGnzlz1/test-rimac-backend/pkg/config"
	"github.com/LuisGnzlz1/test-rimac-backend/pkg/db"
	"github.com/LuisGnzlz1/test-rimac-backend/pkg/mq"
	"github.com/LuisGnzlz1/test-rimac-backend/pkg/obs"
	cons "github.com/LuisGnzlz1/test-rimac-backend/services/appointment-service/internal/consumer"
	"github.com/LuisGnzlz1/test-rimac-backend/services/appointment-service/internal/events"
	"github.com/LuisGnzlz1/test-rimac-backend/services/appointment-service/internal/handlers"
	"github.com/LuisGnzlz1/test-rimac-backend/services/appointment-service/internal/repository"
	"github.com/LuisGnzlz1/test-rimac-backend/services/appointment-service/internal/service"
)

func must[T any](v T, err error) T {
	if err != nil {
		log.Fatal(err)
	}
	return v
}

func main() {
	_ = godotenv.Load()
	cfg := must(config.LoadAppointment())

	obs.InitLogger()
	shutdownTracer := obs.InitTracer("appointment-service")
	defer func() { _ = shutdownTracer(context.Background()) }()

	// keyed record store
	gdb := must(db.OpenPostgres(cfg.PGAppointmentsDSN))
	repo := repository.NewAppointmentRepo(gdb)
	must(0, repo.Migrate())

	// fan-out publisher
	fanoutPub := must(mq.NewPublisher(cfg.RabbitURL, cfg.AppointmentExchange))
	defer fanoutPub.Close()

	var listCache cache.Cache
	if cfg.RedisAddr != "" {
		listCache = cache.NewRedis(cfg.RedisAddr, "appointment-service")
	}

	svc := service.NewAppointmentSvc(repo, events.NewFanoutPublisher(fanoutPub), listCache, cfg.ListCacheTTL)

	// completion consumer (last hop of the saga)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	completionCons := must(mq.NewConsumer(mq.ConsumerConfig{
		URL:      cfg.RabbitURL,
		Exchange: cfg.CompletionExchange,
		Queue:    cfg.CompletionQueue,
		Bindings: []string{events.RKAppointmentProcessed + ".*"},
		Prefetch: cfg.CompletionPrefetch,
		UseDLX:   true,
		DLXName:  cfg.CompletionDLX,
		DLXQueue: cfg.CompletionDLQ,
		Name:     "appointment-service",
	}))
	defer completionCons.Close()
	must(0, cons.NewCompletionConsumer(repo, completionCons).Run(ctx))
	log.Println("[appointment] completion consumer started")

	// HTTP API
	r := gin.Default()
	handlers.Register(r, handlers.NewAppointmentHandler(svc))
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}
	go func() {
		log.Println("[appointment] http listening on", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	// graceful shutdown
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch
	cancel()
	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	_ = srv.Shutdown(shutdownCtx)
	log.Println("[appointment] stopped")
}
