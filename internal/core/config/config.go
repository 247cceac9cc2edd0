package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
}
type AdminHTTP struct {
	Host string
	Port int
}

type App struct {
	Name  string
	Env   string
	HTTP  HTTP
	Admin AdminHTTP
}

type Log struct {
	Level string
	JSON  bool
	// File 非空时同时写入文件并切割
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

type JWT struct {
	Secret            string
	Issuer            string
	AccessTokenTTLMin int
}

type Cookie struct {
	Name     string
	Domain   string
	Secure   bool
	SameSite string // none / lax / strict
}

type CORS struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type Redis struct {
	Addr         string `mapstructure:"addr"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	SearchTTLSec int    `mapstructure:"search_ttl_sec"`
}

type DB struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

type Media struct {
	Driver        string // minio / s3 / memory
	Endpoint      string
	Region        string
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	Bucket        string
	UseSSL        bool   `mapstructure:"use_ssl"`
	PublicBaseURL string `mapstructure:"public_base_url"`
	Folder        string
	MaxFileMB     int `mapstructure:"max_file_mb"`
	MaxWidth      int `mapstructure:"max_width"`
	MaxHeight     int `mapstructure:"max_height"`
	JPEGQuality   int `mapstructure:"jpeg_quality"`
}

type NATS struct {
	URL           string
	SubjectPrefix string `mapstructure:"subject_prefix"`
}

type Limits struct {
	RPS            float64
	Burst          int
	PerIPRPS       float64 `mapstructure:"per_ip_rps"`
	PerIPBurst     int     `mapstructure:"per_ip_burst"`
	MaxConcurrent  int64   `mapstructure:"max_concurrent"`
	MaxBodyMB      int64   `mapstructure:"max_body_mb"`
	RequestTimeout int     `mapstructure:"request_timeout_sec"`
}

type Config struct {
	App    App
	Log    Log
	JWT    JWT
	Cookie Cookie
	CORS   CORS `mapstructure:"cors"`
	DB     DB
	Redis  Redis `mapstructure:"redis"`
	Media  Media
	NATS   NATS `mapstructure:"nats"`
	Limits Limits
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "classifieds-api")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 3000)
	v.SetDefault("app.http.readtimeoutsec", 15)
	v.SetDefault("app.http.writetimeoutsec", 30)
	v.SetDefault("app.http.idletimeoutsec", 60)
	v.SetDefault("app.admin.host", "127.0.0.1")
	v.SetDefault("app.admin.port", 3001)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.maxsizemb", 100)
	v.SetDefault("log.maxbackups", 7)
	v.SetDefault("log.maxagedays", 30)

	v.SetDefault("jwt.secret", "change-me")
	v.SetDefault("jwt.issuer", "classifieds-api")
	v.SetDefault("jwt.accesstokenttlmin", 7*24*60)

	v.SetDefault("cookie.name", "auth-token")
	v.SetDefault("cookie.secure", true)
	v.SetDefault("cookie.samesite", "none")

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:8080"})

	// 同上，见 Load
	v.SetDefault("db.driver", "")
	v.SetDefault("db.maxopenconns", 20)
	v.SetDefault("db.maxidleconns", 10)
	v.SetDefault("db.connmaxlifetimemin", 30)
	v.SetDefault("db.automigrate", true)
	v.SetDefault("db.loglevel", "warn")

	v.SetDefault("redis.search_ttl_sec", 30)

	// driver 留空时按 app.env 推断：local 用 sqlite + memory，其余用 postgres + minio
	v.SetDefault("media.driver", "")
	v.SetDefault("media.endpoint", "")
	v.SetDefault("media.region", "us-east-1")
	v.SetDefault("media.bucket", "classifieds-ads")
	v.SetDefault("media.folder", "olx-ads")
	v.SetDefault("media.max_file_mb", 5)
	v.SetDefault("media.max_width", 800)
	v.SetDefault("media.max_height", 600)
	v.SetDefault("media.jpeg_quality", 82)

	v.SetDefault("nats.subject_prefix", "classifieds")

	v.SetDefault("limits.rps", 200)
	v.SetDefault("limits.burst", 400)
	v.SetDefault("limits.per_ip_rps", 20)
	v.SetDefault("limits.per_ip_burst", 40)
	v.SetDefault("limits.max_concurrent", 300)
	v.SetDefault("limits.max_body_mb", 24)
	v.SetDefault("limits.request_timeout_sec", 30)
}

// Load 读取 YAML；文件不存在时只用默认值 + 环境变量（APP_ 前缀）
func Load(path string) (*Config, error) {
	v := viper.New()
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	local := c.App.Env == "local"
	if c.DB.Driver == "" {
		c.DB.Driver = "postgres"
		if local {
			c.DB.Driver = "sqlite"
			if c.DB.DSN == "" {
				c.DB.DSN = "file:classifieds.db?_pragma=busy_timeout(5000)"
			}
		}
	}
	if c.Media.Driver == "" {
		c.Media.Driver = "minio"
		if local {
			c.Media.Driver = "memory"
		}
	}
	// s3 的空 endpoint 表示走 AWS 官方地址，只给 minio 补默认值
	if c.Media.Driver == "minio" && c.Media.Endpoint == "" {
		c.Media.Endpoint = "localhost:9000"
	}
	return &c, nil
}
