package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store engines
const (
	StoreMemory = "memory"
	StoreBolt   = "bolt"
	StoreRedis  = "redis"
)

type (
	Config struct {
		Env          string // DEV (local; default), TEST, QA, PROD
		Build        string
		Debug        bool
		TestMode     bool
		AppName      string
		Host         string
		RollbarToken string
		Store        StoreConfig
	}

	StoreConfig struct {
		Engine    string
		KeyPrefix string

		// bolt
		BoltPath    string
		BoltBucket  string
		BoltTimeout time.Duration

		// redis
		RedisAddr     string
		RedisPassword string
		RedisDB       int
	}
)

// NewConfig loads the app config from defaults, an optional `config/.env.<env>` file and the environment.
// Environment variables are prefixed with the upper-cased env name, e.g. DEV_STORE_ENGINE=bolt.
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("build", "develop")
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("appName", "Acadify")
	v.SetDefault("host", "localhost")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("store.engine", StoreBolt)
	v.SetDefault("store.keyPrefix", "")
	v.SetDefault("store.boltPath", filepath.Join(homeDir(), ".acadify", "profile.db"))
	v.SetDefault("store.boltBucket", "acadify")
	v.SetDefault("store.boltTimeout", time.Second)
	v.SetDefault("store.redisAddr", "localhost:6379")
	v.SetDefault("store.redisPassword", "")
	v.SetDefault("store.redisDB", 0)

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
		v.SetDefault("store.engine", StoreMemory)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		Env:          env,
		Build:        v.GetString("build"),
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		AppName:      v.GetString("appName"),
		Host:         v.GetString("host"),
		RollbarToken: v.GetString("rollbarToken"),
		Store: StoreConfig{
			Engine:        strings.ToLower(v.GetString("store.engine")),
			KeyPrefix:     v.GetString("store.keyPrefix"),
			BoltPath:      v.GetString("store.boltPath"),
			BoltBucket:    v.GetString("store.boltBucket"),
			BoltTimeout:   v.GetDuration("store.boltTimeout"),
			RedisAddr:     v.GetString("store.redisAddr"),
			RedisPassword: v.GetString("store.redisPassword"),
			RedisDB:       v.GetInt("store.redisDB"),
		},
	}
}

func homeDir() string {
	if dir, err := os.UserHomeDir(); err == nil {
		return dir
	}
	return "."
}
