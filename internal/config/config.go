package config

import "github.com/caarlos0/env/v9"

type Config struct {
	Port       string `env:"PORT" envDefault:"8000"`
	DBUser     string `env:"MYSQL_USER" envDefault:"isucari"`
	DBPassword string `env:"MYSQL_PASS" envDefault:"isucari"`
	DBHost     string `env:"MYSQL_HOST" envDefault:"127.0.0.1"`
	DBPort     string `env:"MYSQL_PORT" envDefault:"3306"`
	DBName     string `env:"MYSQL_DBNAME" envDefault:"isucari"`

	// UploadDir holds listing images when no bucket is configured.
	UploadDir     string `env:"UPLOAD_DIR" envDefault:"../public/upload"`
	StorageBucket string `env:"STORAGE_BUCKET"`

	// Fallbacks when the configs table has no row yet.
	DefaultPaymentServiceURL  string `env:"PAYMENT_SERVICE_URL" envDefault:"http://localhost:5555"`
	DefaultShipmentServiceURL string `env:"SHIPMENT_SERVICE_URL" envDefault:"http://localhost:7000"`

	GatewayTimeoutSeconds int `env:"GATEWAY_TIMEOUT_SECONDS" envDefault:"5"`

	// InitScript is executed by POST /initialize to reset the dataset.
	InitScript string `env:"INIT_SCRIPT" envDefault:"../sql/init.sh"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
