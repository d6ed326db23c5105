package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/cloud"
	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/config"
	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/database"
	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/events"
	httpHandlers "github.com/ANIKETSHETTY47/solar-partner-portal/internal/http"
	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if err := config.Load(config.Backend...); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(config.DatabaseDSN())
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("db migrate failed")
	}

	opts := []service.Option{}

	if broker := config.MQTTBroker(); broker != "" {
		client, err := events.Dial(broker, config.MQTTClientID()+"-api")
		if err != nil {
			log.Warn().Err(err).Msg("mqtt unavailable, events disabled")
		} else {
			pub := events.NewMQTT(client)
			defer pub.Close()
			opts = append(opts, service.WithPublisher(pub))
		}
	}

	if config.UseCloudServices() || config.QuotationStore() == "dynamodb" {
		awsCfg, err := cloud.LoadConfig(ctx, config.AWSRegion(), config.DynamoDBEndpoint())
		if err != nil {
			log.Fatal().Err(err).Msg("aws config failed")
		}
		if config.QuotationStore() == "dynamodb" {
			ddb := cloud.NewDynamoDBClient(awsCfg, config.DynamoDBEndpoint())
			opts = append(opts, service.WithQuotationStore(cloud.NewDynamoDBQuotations(ddb, config.QuotationsTable())))
			log.Info().Str("table", config.QuotationsTable()).Msg("quotations stored in dynamodb")
		}
		if config.UseCloudServices() {
			opts = append(opts, service.WithArchive(cloud.NewS3Archive(awsCfg, config.S3Bucket())))
			log.Info().Str("bucket", config.S3Bucket()).Msg("quotation documents enabled")
		}
	}

	svcs := service.New(db, config.AuthKey(), opts...)
	app := fiber.New(fiber.Config{
		AppName:      "solar-partner-api",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})
	app.Use(recover.New())

	httpHandlers.Register(app, svcs)

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	addr := config.APIAddr()
	log.Info().Str("addr", addr).Msg("api listening")
	if err := app.Listen(addr); err != nil {
		log.Fatal().Err(err).Msg("server exit")
	}
}
