package config

import (
	"os"
	"sync"

	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"
	"sigs.k8s.io/yaml"
)

type Config struct {
	// Port Settings
	Host       string `json:"host"`       // The domain name of the server.
	ServerAddr string `json:"serverAddr"` // The address the server endpoint binds to.

	// CORS origins allowed to call the API (the SPA origin).
	AllowedOrigins []string `json:"allowedOrigins"`

	Auth struct {
		AccessTokenSecret      string `json:"accessTokenSecret"`
		AccessTokenExpiryHour  int    `json:"accessTokenExpiryHour"`
		RefreshTokenExpiryHour int    `json:"refreshTokenExpiryHour"`
	} `json:"auth"`

	Postgres struct {
		Host     string `json:"host"`
		Port     string `json:"port"`
		DBName   string `json:"dbname"`
		User     string `json:"user"`
		Password string `json:"password"`
		SSLMode  string `json:"sslmode"`
		TimeZone string `json:"TimeZone"`
		// Optional DSN of a read replica, routed via dbresolver.
		ReplicaDSN string `json:"replicaDSN"`
	} `json:"postgres"`

	ObjectStore struct {
		Endpoint  string `json:"endpoint"`
		AccessKey string `json:"accessKey"`
		SecretKey string `json:"secretKey"`
		Bucket    string `json:"bucket"`
		UseSSL    bool   `json:"useSSL"`
	} `json:"objectStore"`

	// MaxUploadBytes caps document uploads. Defaults to 10 MiB when unset.
	MaxUploadBytes int64 `json:"maxUploadBytes"`

	SMTP struct {
		Enable   bool   `json:"enable"`
		Host     string `json:"host"`
		Port     int    `json:"port"`
		User     string `json:"user"`
		Password string `json:"password"`
		From     string `json:"from"`
	} `json:"smtp"`

	Webhook struct {
		Enable  bool   `json:"enable"`
		Address string `json:"address"`
	} `json:"webhook"`

	LDAP struct {
		Enable   bool   `json:"enable"`
		Address  string `json:"address"`
		UserName string `json:"userName"`
		Password string `json:"password"`
		SearchDN string `json:"searchDN"`
	} `json:"ldap"`

	Retention struct {
		// Read notifications older than this many days are purged.
		NotificationDays int `json:"notificationDays"`
		// Soft-deleted rows older than this many days are hard-deleted.
		TrashDays int `json:"trashDays"`
	} `json:"retention"`
}

var (
	once   sync.Once
	config *Config
)

func GetConfig() *Config {
	once.Do(func() {
		config = initConfig()
	})
	return config
}

func IsDebugMode() bool {
	return gin.Mode() == gin.DebugMode
}

// initConfig reads the configuration file. In debug mode it reads
// ./etc/debug-config.yaml (overridable via BIDBOARD_DEBUG_CONFIG_PATH),
// otherwise the config mounted at /etc/config/config.yaml.
func initConfig() *Config {
	config := &Config{}
	var configPath string
	if IsDebugMode() {
		if os.Getenv("BIDBOARD_DEBUG_CONFIG_PATH") != "" {
			configPath = os.Getenv("BIDBOARD_DEBUG_CONFIG_PATH")
		} else {
			configPath = "./etc/debug-config.yaml"
		}
	} else {
		configPath = "/etc/config/config.yaml"
	}
	klog.Info("config path: ", configPath)

	err := readConfig(configPath, config)
	if err != nil {
		klog.Error("init config", err)
		panic(err)
	}
	config.applyDefaults()
	return config
}

func readConfig(filePath string, config *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, config)
}

const defaultMaxUploadBytes = 10 << 20

func (c *Config) applyDefaults() {
	if c.ServerAddr == "" {
		c.ServerAddr = ":8080"
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = defaultMaxUploadBytes
	}
	if c.Auth.AccessTokenExpiryHour <= 0 {
		c.Auth.AccessTokenExpiryHour = 2
	}
	if c.Auth.RefreshTokenExpiryHour <= 0 {
		c.Auth.RefreshTokenExpiryHour = 168
	}
	if c.Retention.NotificationDays <= 0 {
		c.Retention.NotificationDays = 90
	}
	if c.Retention.TrashDays <= 0 {
		c.Retention.TrashDays = 30
	}
}
