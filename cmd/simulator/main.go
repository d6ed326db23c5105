package main

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/config"
	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/domain"
	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/events"
	"github.com/ANIKETSHETTY47/solar-partner-portal/internal/pricing"
)

var names = []string{"Asha", "Ravi", "Meera", "Arjun", "Kavya", "Rohan", "Divya", "Vikram"}

func randomRequest(i int) domain.QuoteRequest {
	name := names[rand.IntN(len(names))]
	loc := pricing.Locations[rand.IntN(len(pricing.Locations))]
	sys := pricing.SystemTypes[rand.IntN(len(pricing.SystemTypes))]
	steps := int((pricing.BillRange.Max - pricing.BillRange.Min) / pricing.BillRange.Step)
	return domain.QuoteRequest{
		Name:        name,
		Email:       fmt.Sprintf("%s.%d@example.in", name, i),
		Phone:       fmt.Sprintf("+91 9%09d", rand.IntN(1_000_000_000)),
		Location:    loc.Key,
		MonthlyBill: pricing.BillRange.Min + float64(rand.IntN(steps+1))*pricing.BillRange.Step,
		SystemType:  sys.Key,
		Message:     "Generated by simulator",
	}
}

func run(count int, interval time.Duration) error {
	if err := config.Load(); err != nil {
		return err
	}

	client, err := events.Dial(config.MQTTBroker(), config.MQTTClientID()+"-simulator")
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	for i := 0; i < count; i++ {
		payload, _ := json.Marshal(randomRequest(i))
		token := client.Publish(events.QuoteRequestTopic, 1, false, payload)
		if token.Wait() && token.Error() != nil {
			log.Error().Err(token.Error()).Msg("publish failed")
		}
		time.Sleep(interval)
	}
	log.Info().Int("count", count).Msg("simulation done")
	return nil
}

func main() {
	var (
		count    int
		interval time.Duration
	)
	cmd := &cobra.Command{
		Use:          "simulator",
		Short:        "Publish synthetic quote requests over MQTT",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(count, interval)
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 20, "number of quote requests to publish")
	cmd.Flags().DurationVar(&interval, "interval", 500*time.Millisecond, "delay between requests")

	if err := cmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("simulator failed")
	}
}
