package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	LogLevel      string        `yaml:"log_level"`
	LogJSON       bool          `yaml:"log_json"`
	JwtTTL        time.Duration `yaml:"jwt_ttl" validate:"required"`
	DirectorySeed string        `yaml:"directory_seed"` // optional yaml with users/channels/dms imported on start
	HTTP          HTTP          `yaml:"http"`
	Storage       Storage       `yaml:"storage"`
	Messages      Messages      `yaml:"messages"`
	RateLimit     RateLimit     `yaml:"rate_limit"`
}

type HTTP struct {
	Addr           string        `yaml:"addr" validate:"required"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	SecureHeaders  bool          `yaml:"secure_headers"`
}

type Storage struct {
	Driver      string `yaml:"driver" validate:"required,oneof=memory fs pebble pg sqlite redis"`
	Path        string `yaml:"path" validate:"required_if=Driver fs,required_if=Driver pebble,required_if=Driver sqlite"`
	Compression string `yaml:"compression" validate:"omitempty,oneof=none zstd"`
}

type Messages struct {
	PageSize           int `yaml:"page_size" validate:"gt=0"`
	NotificationsLimit int `yaml:"notifications_limit" validate:"gt=0"`
	MaxLength          int `yaml:"max_length" validate:"gt=0"`
	TagPreviewLength   int `yaml:"tag_preview_length" validate:"gt=0"` // chars of the message quoted in a tag notification
}

type RateLimit struct {
	RPS     float64       `yaml:"rps" validate:"gte=0"` // 0 disables per-user limiting
	Burst   int           `yaml:"burst" validate:"gte=0"`
	IdleTTL time.Duration `yaml:"idle_ttl"`
}

type Pg struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Dbname   string `yaml:"dbname"`
}

type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Key      string `yaml:"key"`
}

type Private struct {
	JwtKey string `yaml:"jwt_key" validate:"required"`
	Pg     Pg     `yaml:"pg"`
	Redis  Redis  `yaml:"redis"`
}

func (s *Config) JwtKey() string {
	return s.Private.JwtKey
}

func (s *Config) JwtTTL() time.Duration {
	return s.Public.JwtTTL
}

func loadPath(configPath string, output interface{}) error {
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("can't read config file %s: %w", configPath, err)
	}
	if err := yaml.Unmarshal(configFile, output); err != nil {
		return fmt.Errorf("can't unmarshal config file %s: %w", configPath, err)
	}
	return nil
}

func (p *Public) applyDefaults() {
	if p.Messages.PageSize == 0 {
		p.Messages.PageSize = 50
	}
	if p.Messages.NotificationsLimit == 0 {
		p.Messages.NotificationsLimit = 20
	}
	if p.Messages.MaxLength == 0 {
		p.Messages.MaxLength = 1000
	}
	if p.Messages.TagPreviewLength == 0 {
		p.Messages.TagPreviewLength = 20
	}
	if p.Storage.Compression == "" {
		p.Storage.Compression = "zstd"
	}
	if p.RateLimit.IdleTTL == 0 {
		p.RateLimit.IdleTTL = time.Hour
	}
	if p.HTTP.ReadTimeout == 0 {
		p.HTTP.ReadTimeout = 10 * time.Second
	}
	if p.HTTP.WriteTimeout == 0 {
		p.HTTP.WriteTimeout = 10 * time.Second
	}
}

// applyEnv lets secrets come from the environment (or a .env file next to
// the yaml) instead of private.yaml.
func (p *Private) applyEnv() {
	if v := os.Getenv("PARLEY_JWT_KEY"); v != "" {
		p.JwtKey = v
	}
	if v := os.Getenv("PARLEY_PG_PASSWORD"); v != "" {
		p.Pg.Password = v
	}
	if v := os.Getenv("PARLEY_REDIS_ADDR"); v != "" {
		p.Redis.Addr = v
	}
	if v := os.Getenv("PARLEY_REDIS_PASSWORD"); v != "" {
		p.Redis.Password = v
	}
	if v := os.Getenv("PARLEY_REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			p.Redis.DB = db
		}
	}
}

// Load reads public.yaml, private.yaml and an optional .env from configFolder.
// private.yaml may be absent when every secret comes from the environment.
func Load(configFolder string) (*Config, error) {
	if err := godotenv.Load(path.Join(configFolder, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("can't load .env: %w", err)
	}

	var public Public
	if err := loadPath(path.Join(configFolder, "public.yaml"), &public); err != nil {
		return nil, err
	}
	public.applyDefaults()

	var private Private
	privatePath := path.Join(configFolder, "private.yaml")
	if _, err := os.Stat(privatePath); err == nil {
		if err := loadPath(privatePath, &private); err != nil {
			return nil, err
		}
	}
	private.applyEnv()

	cfg := &Config{Public: public, Private: private}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (s *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if s.Public.Storage.Driver == "redis" && s.Private.Redis.Addr == "" {
		return errors.New("invalid config: redis storage needs private redis.addr")
	}
	if s.Public.Storage.Driver == "pg" && s.Private.Pg.Host == "" {
		return errors.New("invalid config: pg storage needs private pg.host")
	}
	return nil
}

func MustLoad(configFolder string) *Config {
	cfg, err := Load(configFolder)
	if err != nil {
		panic(err.Error())
	}
	return cfg
}
