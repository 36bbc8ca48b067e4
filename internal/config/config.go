// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек клиента
type Config struct {
	Env         string `yaml:"env" env:"QC_ENV" env-default:"local"`
	APIBaseURL  string `yaml:"api_base_url" env:"QC_API_BASE_URL" env-required:"true"`
	StateFile   string `yaml:"state_file" env:"QC_STATE_FILE"`
	HTTPClient  `yaml:"http_client"`
	LabelStudio `yaml:"label_studio"`
}

// HTTPClient структура для настройки исходящих запросов к бэкенду
type HTTPClient struct {
	Timeout           time.Duration `yaml:"timeout" env:"QC_HTTP_TIMEOUT" env-default:"15s"`
	DownloadTimeout   time.Duration `yaml:"download_timeout" env:"QC_DOWNLOAD_TIMEOUT" env-default:"5m"`
	RequestsPerSecond float64       `yaml:"requests_per_second" env:"QC_REQUESTS_PER_SECOND" env-default:"0"`
}

// LabelStudio структура для настройки интеграции с инструментом разметки
type LabelStudio struct {
	PollInterval   time.Duration `yaml:"poll_interval" env:"QC_LS_POLL_INTERVAL" env-default:"10s"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"QC_LS_REQUEST_TIMEOUT" env-default:"30s"`
}

// MustLoad функция для загрузки конфига, завершает процесс при ошибке.
//
// Если CONFIG_PATH не задан, конфиг собирается только из переменных окружения,
// чтобы клиент можно было запустить без yaml-файла.
func MustLoad() *Config {
	var cfg Config

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			log.Fatalf("cannot read config from environment: %s", err)
		}
		applyDefaults(&cfg)
		return &cfg
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	applyDefaults(&cfg)
	return &cfg
}

// applyDefaults заполняет путь к файлу состояния, если он не задан явно.
func applyDefaults(cfg *Config) {
	if cfg.StateFile != "" {
		return
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	cfg.StateFile = filepath.Join(dir, "qc-admin", "state.json")
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"APIBaseURL: %s\n"+
			"StateFile: %s\n"+
			"HTTPClient:\n"+
			"  Timeout: %s\n"+
			"  DownloadTimeout: %s\n"+
			"  RequestsPerSecond: %g\n"+
			"LabelStudio:\n"+
			"  PollInterval: %s\n"+
			"  RequestTimeout: %s\n",
		c.Env,
		c.APIBaseURL,
		c.StateFile,
		c.Timeout,
		c.DownloadTimeout,
		c.RequestsPerSecond,
		c.PollInterval,
		c.RequestTimeout,
	)
}
