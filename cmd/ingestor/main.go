package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/cloud"
	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/config"
	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/database"
	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/events"
	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/ingest"
	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/service"
)

func main() {
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

	client, err := events.Dial(config.MQTTBroker(), config.MQTTClientID()+"-ingestor")
	if err != nil {
		log.Fatal().Err(err).Msg("mqtt connect")
	}
	defer client.Disconnect(250)

	svcs := service.New(db, config.AuthKey(), service.WithPublisher(events.NewMQTT(client)))

	var alerts ingest.Alerter
	if config.UseCloudServices() && config.SNSTopicArn() != "" {
		awsCfg, err := cloud.LoadConfig(ctx, config.AWSRegion(), "")
		if err != nil {
			log.Fatal().Err(err).Msg("aws config failed")
		}
		alerts = cloud.NewSNSNotifier(cloud.NewSNSClient(awsCfg), config.SNSTopicArn())
	}
	handler := ingest.NewHandler(svcs.Leads, alerts)

	// paho callbacks must not block, so messages are handed to one worker.
	inbox := make(chan ingest.Message, 256)
	onMessage := func(_ mqtt.Client, msg mqtt.Message) {
		select {
		case inbox <- ingest.Message{Topic: msg.Topic(), Payload: msg.Payload()}:
		default:
			log.Warn().Str("topic", msg.Topic()).Msg("ingest queue full, message dropped")
		}
	}

	topics := map[string]byte{
		events.QuoteRequestTopic:      1,
		events.EventTopicPrefix + "#": 1,
	}
	if token := client.SubscribeMultiple(topics, onMessage); token.Wait() && token.Error() != nil {
		log.Fatal().Err(token.Error()).Msg("subscribe failed")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case m := <-inbox:
				if err := handler.Handle(gctx, m); err != nil {
					log.Error().Err(err).Str("topic", m.Topic).Msg("ingest failed")
				}
			}
		}
	})

	log.Info().Str("broker", config.MQTTBroker()).Msg("ingestor running; Ctrl+C to stop")
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("ingestor stopped")
	}
	log.Info().Msg("ingestor stopped")
}
