package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/LuisGnzlz1/test-rimac-backend/pkg/config"
	"github.com/LuisGnzlz1/test-rimac-backend/pkg/db"
	"github.com/LuisGnzlz1/test-rimac-backend/pkg/mq"
	"github.com/LuisGnzlz1/test-rimac-backend/pkg/obs"
	cons "github.com/LuisGnzlz1/test-rimac-backend/services/country-service/internal/consumer"
	"github.com/LuisGnzlz1/test-rimac-backend/services/country-service/internal/events"
	"github.com/LuisGnzlz1/test-rimac-backend/services/country-service/internal/processor"
	"github.com/LuisGnzlz1/test-rimac-backend/services/country-service/internal/repository"
)

func must[T any](v T, err error) T {
	if err != nil {
		log.Fatal(err)
	}
	return v
}

func main() {
	_ = godotenv.Load()
	cfg := must(config.LoadCountry())

	obs.InitLogger()
	shutdownTracer := obs.InitTracer("country-service-" + cfg.CountryISO)
	defer func() { _ = shutdownTracer(context.Background()) }()

	// country-authoritative relational store
	gdb := must(db.OpenMySQL(cfg.MySQLDSN))
	repo := repository.NewCountryRepo(gdb, cfg.CountryISO)
	must(0, repo.Migrate())

	// completion publisher back toward the appointment service
	completionPub := must(mq.NewPublisher(cfg.RabbitURL, cfg.CompletionExchange))
	defer completionPub.Close()

	proc := processor.New(
		cfg.CountryISO,
		repo,
		events.NewCompletionPublisher(completionPub),
		processor.DefaultRules(),
		cfg.ProcessingDelay,
	)

	// fan-out consumer bound to this shard's routing key only
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fanoutCons := must(mq.NewConsumer(mq.ConsumerConfig{
		URL:      cfg.RabbitURL,
		Exchange: cfg.AppointmentExchange,
		Queue:    cfg.Queue,
		Bindings: []string{events.RKAppointmentCreated + "." + cfg.CountryISO},
		Prefetch: cfg.Prefetch,
		UseDLX:   true,
		DLXName:  cfg.DLX,
		DLXQueue: cfg.DLQ,
		Name:     "country-service-" + cfg.CountryISO,
	}))
	defer fanoutCons.Close()
	must(0, cons.NewAppointmentConsumer(proc, fanoutCons).Run(ctx))
	log.Printf("[country:%s] consuming %s", cfg.CountryISO, cfg.Queue)

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch
	cancel()
	log.Printf("[country:%s] stopped", cfg.CountryISO)
}
