// Package config provides utilities to load environment variables & set config structs, it includes app, board, flight source, handling supervisor, rabbit, redis, db and http server environment variables.
package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// AppConfig contains environment variables for the application, board orchestrator, external services, queue, cache, database, and http server
type (
	AppConfig struct {
		App          *App          `mapstructure:"app"`
		Logger       *Logger       `mapstructure:"logger"`
		Board        *Board        `mapstructure:"board"`
		FlightSource *FlightSource `mapstructure:"flightSource"`
		Supervisor   *Supervisor   `mapstructure:"supervisor"`
		Rabbit       *Rabbit       `mapstructure:"rabbit"`
		Redis        *Redis        `mapstructure:"redis"`
		DB           *DB           `mapstructure:"db"`
		HTTP         *HTTP         `mapstructure:"http"`
	}

	// App contains all the environment variables for the application
	App struct {
		Name  string `mapstructure:"name"`
		Env   string `mapstructure:"env"`
		Owner string `mapstructure:"owner"`
	}

	// Board contains the orchestrator settings: capacity ceiling, the
	// candidate plane pool, the discovery interval and the dispatch mode
	// ("http" for direct calls to the handling supervisor, "queue" for
	// RabbitMQ publishing).
	Board struct {
		MaxPlanes         int           `mapstructure:"maxPlanes"`
		PlaneIDs          []string      `mapstructure:"planeIds"`
		DiscoveryInterval time.Duration `mapstructure:"discoveryInterval"`
		DispatchMode      string        `mapstructure:"dispatchMode"`
	}

	// FlightSource contains the environment variables for the external flight information panel
	FlightSource struct {
		URL      string        `mapstructure:"url"`
		Timeout  time.Duration `mapstructure:"timeout"`
		CacheTTL time.Duration `mapstructure:"cacheTtl"`
	}

	// Supervisor contains the environment variables for the external handling supervisor
	Supervisor struct {
		URL     string        `mapstructure:"url"`
		Timeout time.Duration `mapstructure:"timeout"`
	}

	// Rabbit contains the environment variables for the message queue and its task topics
	Rabbit struct {
		URL    string `mapstructure:"url"`
		Topics Topics `mapstructure:"topics"`
	}

	// Topics binds each loading task type to its queue name
	Topics struct {
		Fuel       string `mapstructure:"fuel"`
		Catering   string `mapstructure:"catering"`
		Baggage    string `mapstructure:"baggage"`
		Passengers string `mapstructure:"passengers"`
	}

	// Redis contains all the environment variables for the cache service
	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
	}

	// DB contains all the environment variables for the database
	DB struct {
		Connection string `mapstructure:"connection"`
		Host       string `mapstructure:"host"`
		Port       string `mapstructure:"port"`
		User       string `mapstructure:"user"`
		Password   string `mapstructure:"password"`
		Name       string `mapstructure:"name"`
	}

	// HTTP contains the environment variables for the http server
	HTTP struct {
		Addr string `mapstructure:"addr"`
	}

	// Logger contains all the environment variables for the logger
	Logger struct {
		Level             string                `mapstructure:"level"`
		Development       bool                  `mapstructure:"development"`
		DisableStacktrace bool                  `mapstructure:"disableStacktrace"`
		Encoding          string                `mapstructure:"encoding"`
		EncoderConfig     zapcore.EncoderConfig `mapstructure:"encoderConfig"`
	}
)

// addZapEncoderConfig fills encoder config with zapcore types
func addZapEncoderConfig(cfg *zapcore.EncoderConfig) {
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeDuration = zapcore.SecondsDurationEncoder
	cfg.EncodeCaller = zapcore.ShortCallerEncoder
	cfg.EncodeName = func(s string, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString("[" + s + "]")
	}
}

// New creates a new AppConfig instance
func New() *AppConfig {
	// Set up viper to read the config.yaml file
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/secrets/")

	viper.AutomaticEnv()
	viper.SetEnvPrefix("env")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read the config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Fatalf("config file not found: %v", err)
		} else {
			log.Fatalf("error reading config file: %v", err)
		}
	}

	// Bind the app.name key to the APP_NAME environment variable
	if err := viper.BindEnv("app.name", "APP_NAME"); err != nil {
		log.Fatalf("error finding APP_NAME env variable")
	}

	// Bind DB variables
	viper.BindEnv("db.host", "PG_HOST")
	viper.BindEnv("db.port", "PG_PORT")
	viper.BindEnv("db.user", "PG_USER")
	viper.BindEnv("db.password", "PG_PASS")
	viper.BindEnv("db.name", "PG_DB")

	// Bind Redis variables
	viper.BindEnv("redis.addr", "REDIS_ADDR")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")

	// Bind queue & external service variables
	viper.BindEnv("rabbit.url", "RABBIT_URL")
	viper.BindEnv("flightSource.url", "FLIGHT_SOURCE_URL")
	viper.BindEnv("supervisor.url", "SUPERVISOR_URL")

	// Create an instance of AppConfig
	var config *AppConfig
	if err := viper.Unmarshal(&config); err != nil {
		log.Fatalf("unable to decode into struct: %v", err)
	}
	addZapEncoderConfig(&config.Logger.EncoderConfig)

	return config
}
