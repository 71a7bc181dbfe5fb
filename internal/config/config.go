package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Cache    CacheConfig
	Log      LogConfig
	Backend  BackendConfig
	Map      MapConfig
	Session  SessionConfig
	Worker   WorkerConfig
}

type ServerConfig struct {
	Host        string
	Port        int
	Env         string
	CORSOrigins string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	MigrationsPath  string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CacheConfig struct {
	CellsCacheTTL time.Duration
}

type LogConfig struct {
	Level string
}

// BackendConfig - доступ к API агрегированных оценок
type BackendConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	// circuit breaker
	BreakerMaxFailures uint32
	BreakerOpenTimeout time.Duration
}

// MapConfig - параметры отображения карты
type MapConfig struct {
	DefaultLat  float64
	DefaultLng  float64
	DefaultZoom int
	CellEdge    float64
	FitPadding  int
	Years       []int
}

type SessionConfig struct {
	TTL             time.Duration
	CleanupInterval time.Duration
}

type WorkerConfig struct {
	Enabled           bool
	ConsumerGroup     string
	StreamReadTimeout time.Duration
	MaxRetries        int
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	years, err := parseYears(viper.GetString("MAP_YEARS"))
	if err != nil {
		return nil, fmt.Errorf("invalid MAP_YEARS: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:        viper.GetString("API_HOST"),
			Port:        viper.GetInt("API_PORT"),
			Env:         viper.GetString("API_ENV"),
			CORSOrigins: viper.GetString("API_CORS_ORIGINS"),
		},
		Database: DatabaseConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetInt("DB_PORT"),
			User:            viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			DBName:          viper.GetString("DB_NAME"),
			SSLMode:         viper.GetString("DB_SSLMODE"),
			MaxConns:        viper.GetInt("DB_MAX_CONNS"),
			MaxIdleConns:    viper.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: time.Duration(viper.GetInt("DB_CONN_MAX_LIFETIME")) * time.Second,
			ConnMaxIdleTime: time.Duration(viper.GetInt("DB_CONN_MAX_IDLE_TIME")) * time.Second,
			MigrationsPath:  viper.GetString("DB_MIGRATIONS_PATH"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetInt("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Cache: CacheConfig{
			CellsCacheTTL: time.Duration(viper.GetInt("CELLS_CACHE_TTL")) * time.Second,
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
		Backend: BackendConfig{
			BaseURL:            strings.TrimRight(viper.GetString("BACKEND_BASE_URL"), "/"),
			Token:              viper.GetString("BACKEND_TOKEN"),
			Timeout:            time.Duration(viper.GetInt("BACKEND_TIMEOUT")) * time.Second,
			BreakerMaxFailures: viper.GetUint32("BACKEND_BREAKER_MAX_FAILURES"),
			BreakerOpenTimeout: time.Duration(viper.GetInt("BACKEND_BREAKER_OPEN_TIMEOUT")) * time.Second,
		},
		Map: MapConfig{
			DefaultLat:  viper.GetFloat64("MAP_DEFAULT_LAT"),
			DefaultLng:  viper.GetFloat64("MAP_DEFAULT_LNG"),
			DefaultZoom: viper.GetInt("MAP_DEFAULT_ZOOM"),
			CellEdge:    viper.GetFloat64("MAP_CELL_EDGE"),
			FitPadding:  viper.GetInt("MAP_FIT_PADDING"),
			Years:       years,
		},
		Session: SessionConfig{
			TTL:             time.Duration(viper.GetInt("SESSION_TTL")) * time.Second,
			CleanupInterval: time.Duration(viper.GetInt("SESSION_CLEANUP_INTERVAL")) * time.Second,
		},
		Worker: WorkerConfig{
			Enabled:           viper.GetBool("WORKER_ENABLED"),
			ConsumerGroup:     viper.GetString("WORKER_CONSUMER_GROUP"),
			StreamReadTimeout: time.Duration(viper.GetInt("WORKER_STREAM_READ_TIMEOUT")) * time.Millisecond,
			MaxRetries:        viper.GetInt("WORKER_MAX_RETRIES"),
		},
	}

	cfg.setDefaults()
	return cfg, nil
}

// Set default values if not provided
func (c *Config) setDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.CORSOrigins == "" {
		c.Server.CORSOrigins = "http://localhost:3000,http://localhost:5173"
	}
	if c.Database.MigrationsPath == "" {
		c.Database.MigrationsPath = "migrations"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Cache.CellsCacheTTL == 0 {
		c.Cache.CellsCacheTTL = 10 * time.Minute
	}

	if c.Backend.BaseURL == "" {
		c.Backend.BaseURL = "http://localhost:8000"
	}
	if c.Backend.Timeout == 0 {
		c.Backend.Timeout = 15 * time.Second
	}
	if c.Backend.BreakerMaxFailures == 0 {
		c.Backend.BreakerMaxFailures = 5
	}
	if c.Backend.BreakerOpenTimeout == 0 {
		c.Backend.BreakerOpenTimeout = 30 * time.Second
	}

	// Гренобль
	if c.Map.DefaultLat == 0 && c.Map.DefaultLng == 0 {
		c.Map.DefaultLat = 45.18
		c.Map.DefaultLng = 5.72
	}
	if c.Map.DefaultZoom == 0 {
		c.Map.DefaultZoom = 13
	}
	if c.Map.CellEdge <= 0 {
		c.Map.CellEdge = 0.002
	}
	if c.Map.FitPadding == 0 {
		c.Map.FitPadding = 50
	}
	if len(c.Map.Years) == 0 {
		c.Map.Years = yearRange(2016, 2024)
	}

	if c.Session.TTL == 0 {
		c.Session.TTL = 30 * time.Minute
	}
	if c.Session.CleanupInterval == 0 {
		c.Session.CleanupInterval = time.Minute
	}

	if c.Worker.ConsumerGroup == "" {
		c.Worker.ConsumerGroup = "map-prerender-workers"
	}
	if c.Worker.StreamReadTimeout == 0 {
		c.Worker.StreamReadTimeout = 5000 * time.Millisecond
	}
	if c.Worker.MaxRetries == 0 {
		c.Worker.MaxRetries = 3
	}
}

// parseYears accepts a comma separated list ("2019,2020") or a range ("2016-2024").
func parseYears(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	if from, to, ok := strings.Cut(s, "-"); ok && !strings.Contains(s, ",") {
		a, err := strconv.Atoi(strings.TrimSpace(from))
		if err != nil {
			return nil, err
		}
		b, err := strconv.Atoi(strings.TrimSpace(to))
		if err != nil {
			return nil, err
		}
		if b < a {
			return nil, fmt.Errorf("empty range %d-%d", a, b)
		}
		return yearRange(a, b), nil
	}

	parts := strings.Split(s, ",")
	result := make([]int, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed == "" {
			continue
		}
		y, err := strconv.Atoi(trimmed)
		if err != nil {
			return nil, err
		}
		result = append(result, y)
	}
	return result, nil
}

func yearRange(from, to int) []int {
	years := make([]int, 0, to-from+1)
	for y := from; y <= to; y++ {
		years = append(years, y)
	}
	return years
}

// LatestYear - год, выбранный по умолчанию
func (c *Config) LatestYear() int {
	latest := 0
	for _, y := range c.Map.Years {
		if y > latest {
			latest = y
		}
	}
	return latest
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
