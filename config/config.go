package config

import (
	"log"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

type MQConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type JWTConfig struct {
	Secret string `yaml:"secret"`
}

type ServerConfig struct {
	Port        string `yaml:"port"`
	MetricsPort string `yaml:"metrics_port"`
}

type EmailConfig struct {
	PostmarkServerToken  string `yaml:"postmark_server_token"`
	PostmarkAccountToken string `yaml:"postmark_account_token"`
	SenderAddress        string `yaml:"sender_address"`
	// DevDir, when set, routes outgoing mail to files on disk
	// instead of Postmark. Used in local development.
	DevDir string `yaml:"dev_dir"`
}

// AppConfig carries the notification policy knobs. They are explicit
// config rather than ambient globals so the engine stays a pure
// function of its inputs.
type AppConfig struct {
	SiteName            string `yaml:"site_name"`
	ReplyHost           string `yaml:"reply_host"`
	EmailAlertsEnabled  bool   `yaml:"email_alerts_enabled"`
	ReplyByEmailEnabled bool   `yaml:"reply_by_email_enabled"`
	// Authors below this reputation only reach administrators
	// with instant alerts on brand-new posts.
	ReputationThreshold int `yaml:"reputation_threshold"`
}

type Config struct {
	DB     DBConfig     `yaml:"db"`
	MQ     MQConfig     `yaml:"mq"`
	Redis  RedisConfig  `yaml:"redis"`
	JWT    JWTConfig    `yaml:"jwt"`
	Server ServerConfig `yaml:"server"`
	Email  EmailConfig  `yaml:"email"`
	App    AppConfig    `yaml:"app"`
}

const defaultReputationThreshold = 15

func Load() *Config {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}

	cfg, err := LoadFile(path)
	if err != nil {
		log.Fatalf("failed to load %s: %v", path, err)
	}
	return cfg
}

func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	// env overrides win over file values in production
	overrideFromEnv(&cfg)

	if cfg.App.ReputationThreshold == 0 {
		cfg.App.ReputationThreshold = defaultReputationThreshold
	}

	return &cfg, nil
}

func overrideFromEnv(cfg *Config) {
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.DB.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.DB.Port = p
		}
	}
	if user := os.Getenv("DB_USER"); user != "" {
		cfg.DB.User = user
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		cfg.DB.Password = password
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		cfg.DB.Name = name
	}

	if url := os.Getenv("MQ_URL"); url != "" {
		cfg.MQ.URL = url
	}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		cfg.Redis.Password = password
	}

	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.JWT.Secret = secret
	}

	if port := os.Getenv("SERVER_PORT"); port != "" {
		cfg.Server.Port = port
	}
	if port := os.Getenv("METRICS_PORT"); port != "" {
		cfg.Server.MetricsPort = port
	}

	if token := os.Getenv("POSTMARK_SERVER_TOKEN"); token != "" {
		cfg.Email.PostmarkServerToken = token
	}
	if token := os.Getenv("POSTMARK_ACCOUNT_TOKEN"); token != "" {
		cfg.Email.PostmarkAccountToken = token
	}
	if sender := os.Getenv("SENDER_ADDRESS"); sender != "" {
		cfg.Email.SenderAddress = sender
	}

	if name := os.Getenv("SITE_NAME"); name != "" {
		cfg.App.SiteName = name
	}
	if host := os.Getenv("REPLY_HOST"); host != "" {
		cfg.App.ReplyHost = host
	}
	if v := os.Getenv("EMAIL_ALERTS_ENABLED"); v != "" {
		cfg.App.EmailAlertsEnabled = v == "true" || v == "1"
	}
	if v := os.Getenv("REPLY_BY_EMAIL_ENABLED"); v != "" {
		cfg.App.ReplyByEmailEnabled = v == "true" || v == "1"
	}
}
