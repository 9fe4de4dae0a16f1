package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del engine de features.
type Config struct {
	Features FeaturesConfig `yaml:"features"`
	API      APIConfig      `yaml:"api"`
	Output   OutputConfig   `yaml:"output"`
	Storage  StorageConfig  `yaml:"storage"`
	Log      LogConfig      `yaml:"log"`
}

// FeaturesConfig controla los límites de la agregación diaria.
type FeaturesConfig struct {
	DaysToExpiry           int `yaml:"days_to_expiry"`            // modo rolling: expiry objetivo = día + offset
	DaysBeforeExpiry       int `yaml:"days_before_expiry"`        // modo fixed: inicio del rango
	DaysAfterExpiry        int `yaml:"days_after_expiry"`         // modo fixed: fin del rango (normalmente 0)
	ContractsLimit         int `yaml:"contracts_limit"`           // truncado duro, en orden del provider
	TradesLimitPerContract int `yaml:"trades_limit_per_contract"` // truncado duro por contrato y día
	MinTradesPerDay        int `yaml:"min_trades_per_day"`        // umbral de exclusión de días escasos
	FetchWorkers           int `yaml:"fetch_workers"`             // pool de fetch; acotado por rate limits
}

// APIConfig contiene el base URL y el api key del provider.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"` // si falta, el client consulta POLYGON_API_KEY
}

// OutputConfig controla dónde se escriben los CSV.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// StorageConfig controla dónde se persisten los runs.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del .env sobreescriben los del YAML para las keys que correspondan.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
// Los defaults de límites son los del diseño original.
func setDefaults(cfg *Config) {
	if cfg.Features.DaysToExpiry <= 0 {
		cfg.Features.DaysToExpiry = 30
	}
	if cfg.Features.DaysBeforeExpiry <= 0 {
		cfg.Features.DaysBeforeExpiry = 30
	}
	if cfg.Features.DaysAfterExpiry < 0 {
		cfg.Features.DaysAfterExpiry = 0
	}
	if cfg.Features.ContractsLimit <= 0 {
		cfg.Features.ContractsLimit = 100
	}
	if cfg.Features.TradesLimitPerContract <= 0 {
		cfg.Features.TradesLimitPerContract = 50000
	}
	if cfg.Features.MinTradesPerDay <= 0 {
		cfg.Features.MinTradesPerDay = 1
	}
	if cfg.Features.FetchWorkers <= 0 {
		cfg.Features.FetchWorkers = 4
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "."
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "optflow.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
