package config

import (
	"log"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

type PaymentConfig struct {
	Env string `yaml:"env"`
	HTTPServer      `yaml:"http_server"`
	PaymentDB       `yaml:"payment_db"`
	LogConfig       `yaml:"log_config"`
	KafkaService    `yaml:"kafka-service"`
	Commission      `yaml:"commission"`
	Escrow          `yaml:"escrow"`
	Antifraud       `yaml:"antifraud"`
	Providers       `yaml:"providers"`
	CallbackBaseURL string `yaml:"callback_base_url"`
}

type HTTPServer struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

type PaymentDB struct {
	Dsn            string `yaml:"dsn"`
	MigrationsPath string `yaml:"migrations_path"`
}

type LogConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	LogOutput string `yaml:"log_output"`
}

type KafkaService struct {
	Host  string `yaml:"host"`
	Port  string `yaml:"port"`
	Topic string `yaml:"topic" env-default:"payment-events"`
}

type Commission struct {
	Standard      float64 `yaml:"standard" env-default:"0.05"`
	Premium       float64 `yaml:"premium" env-default:"0.03"`
	Service       float64 `yaml:"service" env-default:"0.10"`
	MinimumAmount float64 `yaml:"minimum_amount" env-default:"50"`
}

type Escrow struct {
	PeriodDays            int `yaml:"period_days" env-default:"14"`
	PendingTimeoutMinutes int `yaml:"pending_timeout_minutes" env-default:"30"`
	SweepIntervalSeconds  int `yaml:"sweep_interval_seconds" env-default:"60"`
}

type Antifraud struct {
	MaxOrderValue            float64  `yaml:"max_order_value" env-default:"50000"`
	MaxOrdersPerDay          int      `yaml:"max_orders_per_day" env-default:"10"`
	SuspiciousKeywords       []string `yaml:"suspicious_keywords"`
	RequireVerificationAbove float64  `yaml:"require_verification_above" env-default:"10000"`
	RiskScoreThreshold       int      `yaml:"risk_score_threshold" env-default:"75"`
}

// ProviderBundle carries endpoint, credentials and the presentation
// metadata shown with payment instructions.
type ProviderBundle struct {
	Name                string `yaml:"name"`
	Enabled             bool   `yaml:"enabled"`
	APIURL              string `yaml:"api_url"`
	APIKey              string `yaml:"api_key"`
	PublicKey           string `yaml:"public_key"`
	MerchantID          string `yaml:"merchant_id"`
	ServiceProviderCode string `yaml:"service_provider_code"`
	Icon                string `yaml:"icon"`
	Color               string `yaml:"color"`
}

type Providers struct {
	MPesa      ProviderBundle `yaml:"mpesa"`
	EMola      ProviderBundle `yaml:"emola"`
	MKesh      ProviderBundle `yaml:"mkesh"`
	Visa       ProviderBundle `yaml:"visa"`
	Mastercard ProviderBundle `yaml:"mastercard"`
}

func MustLoad() *PaymentConfig {

	// Processing env config variable and file
	configPath := os.Getenv("PAYMENT_CONFIG_PATH")

	if configPath == "" {
		log.Fatalf("PAYMENT_CONFIG_PATH was not found\n")
	}

	if _, err := os.Stat(configPath); err != nil {
		log.Fatalf("failed to find config file: %v\n", err)
	}

	// YAML to struct object
	var cfg PaymentConfig
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("failed to read config file: %v", err)
	}

	return &cfg
}
