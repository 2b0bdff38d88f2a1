package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/FrenchMajesty/emotion-classifier/pkg/validate"
)

// RedisCfg holds the connection settings of the shared prediction cache.
type RedisCfg struct {
	Addr     string // REDIS_ADDR=localhost:6379
	Password string // REDIS_PASSWORD
	DB       int    // REDIS_DB=0
}

// S3Cfg holds the settings used to fetch s3:// model artifacts.
type S3Cfg struct {
	Region          string // AWS_REGION=us-east-1
	Endpoint        string // S3_ENDPOINT, for MinIO and other compatible stores
	AccessKeyID     string // AWS_ACCESS_KEY_ID
	SecretAccessKey string // AWS_SECRET_ACCESS_KEY
}

// Cfg holds all runtime configuration.
type Cfg struct {
	// Model
	ModelPath    string // EMOTION_MODEL_PATH, a file path or s3://bucket/key
	DefaultLabel string // EMOTION_DEFAULT_LABEL=neutral

	// Validation
	MinLetters     int     // EMOTION_MIN_LETTERS=2
	UnicodeLetters bool    // EMOTION_UNICODE_LETTERS=true counts any Unicode letter
	SumTolerance   float64 // EMOTION_SUM_TOLERANCE=1e-3

	// Cache
	CacheBackend string        // EMOTION_CACHE=none|memory|redis
	CacheTTL     time.Duration // EMOTION_CACHE_TTL=10m
	Redis        RedisCfg

	S3 S3Cfg

	BatchConcurrency int // EMOTION_BATCH_CONCURRENCY=4

	// Logging
	LogLevel  slog.Level // LOG_LEVEL=debug|info|warn|error
	LogFormat string     // LOG_FORMAT=text|json

	// Server
	Port       int    // PORT=8080
	ListenAddr string // derived from Port, e.g. :8080
}

// Cache backends.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Default returns the configuration used when nothing is set.
func Default() *Cfg {
	return &Cfg{
		ModelPath:        "./models/emotion_classifier.json",
		DefaultLabel:     "neutral",
		MinLetters:       2,
		SumTolerance:     1e-3,
		CacheBackend:     CacheNone,
		CacheTTL:         10 * time.Minute,
		Redis:            RedisCfg{Addr: "localhost:6379"},
		S3:               S3Cfg{Region: "us-east-1"},
		BatchConcurrency: 4,
		LogLevel:         slog.LevelInfo,
		LogFormat:        "text",
		Port:             8080,
		ListenAddr:       ":8080",
	}
}

// Load reads .env (if present), then the TOML file named by EMOTION_CONFIG
// (if any), then environment variables, and returns Cfg. Later layers win.
func Load() (*Cfg, error) {
	return LoadFrom(".env")
}

// LoadFrom is Load with an explicit .env path.
func LoadFrom(dotenvPath string) (*Cfg, error) {
	cfg := Default()

	dotenv, err := godotenv.Read(dotenvPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", dotenvPath, err)
		}
		dotenv = map[string]string{}
	}
	if err := cfg.applyEnv(func(key string) string { return dotenv[key] }); err != nil {
		return nil, fmt.Errorf("%s: %w", dotenvPath, err)
	}

	path := strings.TrimSpace(os.Getenv("EMOTION_CONFIG"))
	if path == "" {
		path = strings.TrimSpace(dotenv["EMOTION_CONFIG"])
	}
	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.ListenAddr = ":" + strconv.Itoa(cfg.Port)
	return cfg, nil
}

// fileCfg mirrors the TOML layout:
//
//	[model]      path, default_label
//	[validation] min_letters, unicode_letters, sum_tolerance
//	[cache]      backend, ttl
//	[redis]      addr, password, db
//	[s3]         region, endpoint, access_key_id, secret_access_key
//	[server]     port, batch_concurrency
//	[log]        level, format
type fileCfg struct {
	Model struct {
		Path         string `toml:"path"`
		DefaultLabel string `toml:"default_label"`
	} `toml:"model"`
	Validation struct {
		MinLetters     int     `toml:"min_letters"`
		UnicodeLetters bool    `toml:"unicode_letters"`
		SumTolerance   float64 `toml:"sum_tolerance"`
	} `toml:"validation"`
	Cache struct {
		Backend string `toml:"backend"`
		TTL     string `toml:"ttl"`
	} `toml:"cache"`
	Redis struct {
		Addr     string `toml:"addr"`
		Password string `toml:"password"`
		DB       int    `toml:"db"`
	} `toml:"redis"`
	S3 struct {
		Region          string `toml:"region"`
		Endpoint        string `toml:"endpoint"`
		AccessKeyID     string `toml:"access_key_id"`
		SecretAccessKey string `toml:"secret_access_key"`
	} `toml:"s3"`
	Server struct {
		Port             int `toml:"port"`
		BatchConcurrency int `toml:"batch_concurrency"`
	} `toml:"server"`
	Log struct {
		Level  string `toml:"level"`
		Format string `toml:"format"`
	} `toml:"log"`
}

func (c *Cfg) applyFile(path string) error {
	var f fileCfg
	meta, err := toml.DecodeFile(path, &f)
	if err != nil {
		return fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("%s: unknown key %s", path, undecoded[0])
	}

	if meta.IsDefined("model", "path") {
		c.ModelPath = f.Model.Path
	}
	if meta.IsDefined("model", "default_label") {
		c.DefaultLabel = f.Model.DefaultLabel
	}
	if meta.IsDefined("validation", "min_letters") {
		c.MinLetters = f.Validation.MinLetters
	}
	if meta.IsDefined("validation", "unicode_letters") {
		c.UnicodeLetters = f.Validation.UnicodeLetters
	}
	if meta.IsDefined("validation", "sum_tolerance") {
		c.SumTolerance = f.Validation.SumTolerance
	}
	if meta.IsDefined("cache", "backend") {
		c.CacheBackend = strings.ToLower(f.Cache.Backend)
	}
	if meta.IsDefined("cache", "ttl") {
		ttl, err := time.ParseDuration(f.Cache.TTL)
		if err != nil {
			return fmt.Errorf("%s: [cache].ttl: %w", path, err)
		}
		c.CacheTTL = ttl
	}
	if meta.IsDefined("redis", "addr") {
		c.Redis.Addr = f.Redis.Addr
	}
	if meta.IsDefined("redis", "password") {
		c.Redis.Password = f.Redis.Password
	}
	if meta.IsDefined("redis", "db") {
		c.Redis.DB = f.Redis.DB
	}
	if meta.IsDefined("s3", "region") {
		c.S3.Region = f.S3.Region
	}
	if meta.IsDefined("s3", "endpoint") {
		c.S3.Endpoint = f.S3.Endpoint
	}
	if meta.IsDefined("s3", "access_key_id") {
		c.S3.AccessKeyID = f.S3.AccessKeyID
	}
	if meta.IsDefined("s3", "secret_access_key") {
		c.S3.SecretAccessKey = f.S3.SecretAccessKey
	}
	if meta.IsDefined("server", "port") {
		c.Port = f.Server.Port
	}
	if meta.IsDefined("server", "batch_concurrency") {
		c.BatchConcurrency = f.Server.BatchConcurrency
	}
	if meta.IsDefined("log", "level") {
		if err := c.LogLevel.UnmarshalText([]byte(f.Log.Level)); err != nil {
			return fmt.Errorf("%s: [log].level: %w", path, err)
		}
	}
	if meta.IsDefined("log", "format") {
		c.LogFormat = strings.ToLower(f.Log.Format)
	}
	return nil
}

// applyEnv overrides fields whose variable is set to a non-blank value.
func (c *Cfg) applyEnv(getenv func(string) string) error {
	get := func(key string) (string, bool) {
		v := strings.TrimSpace(getenv(key))
		return v, v != ""
	}

	if v, ok := get("EMOTION_MODEL_PATH"); ok {
		c.ModelPath = v
	}
	if v, ok := get("EMOTION_DEFAULT_LABEL"); ok {
		c.DefaultLabel = v
	}
	if v, ok := get("EMOTION_MIN_LETTERS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("EMOTION_MIN_LETTERS: %w", err)
		}
		c.MinLetters = n
	}
	if v, ok := get("EMOTION_UNICODE_LETTERS"); ok {
		c.UnicodeLetters = parseBool(v)
	}
	if v, ok := get("EMOTION_SUM_TOLERANCE"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("EMOTION_SUM_TOLERANCE: %w", err)
		}
		c.SumTolerance = f
	}
	if v, ok := get("EMOTION_CACHE"); ok {
		c.CacheBackend = strings.ToLower(v)
	}
	if v, ok := get("EMOTION_CACHE_TTL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("EMOTION_CACHE_TTL: %w", err)
		}
		c.CacheTTL = d
	}
	if v, ok := get("REDIS_ADDR"); ok {
		c.Redis.Addr = v
	}
	if v, ok := get("REDIS_PASSWORD"); ok {
		c.Redis.Password = v
	}
	if v, ok := get("REDIS_DB"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("REDIS_DB: %w", err)
		}
		c.Redis.DB = n
	}
	if v, ok := get("AWS_REGION"); ok {
		c.S3.Region = v
	}
	if v, ok := get("S3_ENDPOINT"); ok {
		c.S3.Endpoint = v
	}
	if v, ok := get("AWS_ACCESS_KEY_ID"); ok {
		c.S3.AccessKeyID = v
	}
	if v, ok := get("AWS_SECRET_ACCESS_KEY"); ok {
		c.S3.SecretAccessKey = v
	}
	if v, ok := get("EMOTION_BATCH_CONCURRENCY"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("EMOTION_BATCH_CONCURRENCY: %w", err)
		}
		c.BatchConcurrency = n
	}
	if v, ok := get("LOG_LEVEL"); ok {
		if err := c.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("LOG_LEVEL: %w", err)
		}
	}
	if v, ok := get("LOG_FORMAT"); ok {
		c.LogFormat = strings.ToLower(v)
	}
	if v, ok := get("PORT"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.Port = n
	}
	return nil
}

func (c *Cfg) validate() error {
	switch c.CacheBackend {
	case CacheNone, CacheMemory, CacheRedis:
	default:
		return fmt.Errorf("unknown cache backend %q (want none, memory or redis)", c.CacheBackend)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q (want text or json)", c.LogFormat)
	}
	if c.MinLetters < 0 {
		return fmt.Errorf("minimum letter count must not be negative, got %d", c.MinLetters)
	}
	if c.MinLetters > 0 && c.MinLetters < validate.DefaultMinLetters {
		return fmt.Errorf("minimum letter count %d is below the floor of %d", c.MinLetters, validate.DefaultMinLetters)
	}
	if c.SumTolerance < 0 {
		return fmt.Errorf("sum tolerance must not be negative, got %g", c.SumTolerance)
	}
	if c.BatchConcurrency < 1 {
		return fmt.Errorf("batch concurrency must be at least 1, got %d", c.BatchConcurrency)
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	return nil
}

func parseBool(v string) bool {
	return v == "1" || strings.EqualFold(v, "true") || strings.EqualFold(v, "yes")
}
