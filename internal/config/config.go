package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

type HTTPConfig struct {
	Host string `envconfig:"HOST" default:"0.0.0.0"`
	Port string `envconfig:"PORT" default:"8080"`
}

type PredictionServiceConfig struct {
	URL          string `envconfig:"URL" default:"http://127.0.0.1:5000"`
	LoanPath     string `envconfig:"LOAN_PATH" default:"/predict_loan"`
	PropertyPath string `envconfig:"PROPERTY_PATH" default:"/predict_property"`
	StockPath    string `envconfig:"STOCK_PATH" default:"/predict_stock"`
	HealthPath   string `envconfig:"HEALTH_PATH" default:"/"`
}

type OTELConfig struct {
	Host        string `envconfig:"HOST"`
	Port        string `envconfig:"PORT" default:"4317"`
	ServiceName string `envconfig:"SERVICE_NAME" default:"xai-prediction-gateway"`
}

type KafkaConsumerConfig struct {
	Peers     string `envconfig:"PEERS"`
	Version   string `envconfig:"VERSION" default:"3.3.0"`
	Topic     string `envconfig:"TOPIC" default:"PredictionSubmissions"`
	GroupName string `envconfig:"GROUP_NAME" default:"xai-prediction-gateway"`
}

type KafkaProducerConfig struct {
	Peers        string `envconfig:"PEERS"`
	Topic        string `envconfig:"TOPIC" default:"PredictionEvents"`
	Version      string `envconfig:"VERSION" default:"3.3.0"`
	RequiredAcks string `envconfig:"REQUIRED_ACKS" default:"all"`
	RetryMax     int    `envconfig:"RETRY_MAX" default:"3"`
}

type LogConfig struct {
	Env   string `envconfig:"ENV" default:"development"`
	Level string `envconfig:"LEVEL" default:"debug"`
}

type Config struct {
	HTTP              HTTPConfig              `envconfig:"HTTP"`
	PredictionService PredictionServiceConfig `envconfig:"PREDICTION_SERVICE"`
	OTEL              OTELConfig              `envconfig:"OTEL"`
	Producer          KafkaProducerConfig     `envconfig:"PRODUCER"`
	Consumer          KafkaConsumerConfig     `envconfig:"CONSUMER"`
	Log               LogConfig               `envconfig:"LOG"`
}

// New loads the given .env files (missing files are skipped) and then reads the
// process environment. Variables already set in the environment win over the files.
func New(envFiles ...string) (*Config, error) {
	var present []string
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}

	if len(present) > 0 {
		if err := godotenv.Load(present...); err != nil {
			return nil, errors.Wrap(err, "error while load from .env file")
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "error while transfer env to config")
	}

	return &cfg, nil
}
