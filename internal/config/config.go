package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// ErrMissingBackend is returned by Load when a required endpoint or key is unset.
var ErrMissingBackend = errors.New("missing backend configuration")

// Backend lists the keys the API and ingestor cannot start without.
var Backend = []string{"DB_DSN", "AUTH_KEY"}

// Frontend lists the keys the web process cannot start without.
var Frontend = []string{"API_URL", "AUTH_KEY"}

// Load applies defaults, reads the environment and checks that every key in
// required is set.
func Load(required ...string) error {
	// API / web configuration
	viper.SetDefault("API_ADDR", ":8080")
	viper.SetDefault("WEB_ADDR", ":3000")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("CALCULATOR_DEBOUNCE", "500ms")

	// Messaging
	viper.SetDefault("MQTT_BROKER", "tcp://localhost:1883")
	viper.SetDefault("MQTT_CLIENT_ID", "solar-portal")

	// AWS Configuration
	viper.SetDefault("AWS_REGION", "ap-south-1")
	viper.SetDefault("AWS_S3_BUCKET", "solar-quotations")
	viper.SetDefault("AWS_SNS_TOPIC_ARN", "")
	viper.SetDefault("USE_CLOUD_SERVICES", "false") // Toggle for local vs cloud
	viper.SetDefault("QUOTATION_STORE", "postgres")
	viper.SetDefault("DYNAMODB_ENDPOINT", "")
	viper.SetDefault("DYNAMODB_QUOTATIONS_TABLE", "partner_quotations")

	viper.AutomaticEnv()

	var missing []string
	for _, key := range required {
		if strings.TrimSpace(viper.GetString(key)) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingBackend, strings.Join(missing, ", "))
	}

	level, err := zerolog.ParseLevel(strings.ToLower(viper.GetString("LOG_LEVEL")))
	if err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	zerolog.SetGlobalLevel(level)
	return nil
}

func DatabaseDSN() string { return viper.GetString("DB_DSN") }
func AuthKey() string { return viper.GetString("AUTH_KEY") }
func APIAddr() string { return viper.GetString("API_ADDR") }
func WebAddr() string { return viper.GetString("WEB_ADDR") }
func APIURL() string { return strings.TrimRight(viper.GetString("API_URL"), "/") }
func MQTTBroker() string { return viper.GetString("MQTT_BROKER") }
func MQTTClientID() string { return viper.GetString("MQTT_CLIENT_ID") }
func AWSRegion() string { return viper.GetString("AWS_REGION") }
func S3Bucket() string { return viper.GetString("AWS_S3_BUCKET") }
func SNSTopicArn() string { return viper.GetString("AWS_SNS_TOPIC_ARN") }
func UseCloudServices() bool { return viper.GetBool("USE_CLOUD_SERVICES") }
func QuotationStore() string { return strings.ToLower(viper.GetString("QUOTATION_STORE")) }
func DynamoDBEndpoint() string { return viper.GetString("DYNAMODB_ENDPOINT") }
func QuotationsTable() string { return viper.GetString("DYNAMODB_QUOTATIONS_TABLE") }
func CalculatorDebounce() time.Duration {
	d := viper.GetDuration("CALCULATOR_DEBOUNCE")
	if d <= 0 {
		return 500 * time.Millisecond
	}
	return d
}
