package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultTimedMethods son los métodos que se miden si no se configura otra lista.
var DefaultTimedMethods = []string{
	"owners.FindByLastName",
	"owners.FindByFirstName",
	"owners.FindAll",
	"http.owners.list",
}

type Config struct {
	HTTP    HTTPConfig
	DB      DBConfig
	Log     LogConfig
	Timing  TimingConfig
	Tracing TracingConfig
}

type HTTPConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DBConfig struct {
	// Driver: "pgx" (Postgres) o "sqlite3". Vacío + DSN vacío => in-memory.
	Driver string
	DSN    string
}

func (c DBConfig) InMemory() bool { return strings.TrimSpace(c.DSN) == "" }

type LogConfig struct {
	Level  string
	Format string
	App    string
}

type TimingConfig struct {
	Methods []string
}

type TracingConfig struct {
	Enabled      bool
	OTLPEndpoint string
}

// Load lee defaults, el archivo (si path != "") y env. El env gana.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if err := bindEnv(v); err != nil {
		return Config{}, err
	}

	if strings.TrimSpace(path) != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	cfg := Config{
		HTTP: HTTPConfig{
			Addr:         addrFrom(v.GetString("http.port"), v.GetString("http.addr")),
			ReadTimeout:  v.GetDuration("http.read_timeout"),
			WriteTimeout: v.GetDuration("http.write_timeout"),
		},
		DB: DBConfig{
			Driver: strings.TrimSpace(v.GetString("db.driver")),
			DSN:    strings.TrimSpace(v.GetString("db.dsn")),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			App:    v.GetString("log.app"),
		},
		Timing: TimingConfig{
			Methods: splitList(v.GetStringSlice("timing.methods")),
		},
		Tracing: TracingConfig{
			Enabled:      v.GetBool("tracing.enabled"),
			OTLPEndpoint: v.GetString("tracing.otlp_endpoint"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.DB.Driver {
	case "pgx", "sqlite3":
	case "":
		if !c.DB.InMemory() {
			return errors.New("config: db.driver required when db.dsn is set")
		}
	default:
		return fmt.Errorf("config: unsupported db.driver %q", c.DB.Driver)
	}
	if c.Tracing.Enabled && strings.TrimSpace(c.Tracing.OTLPEndpoint) == "" {
		return errors.New("config: tracing.otlp_endpoint required when tracing is enabled")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.read_timeout", 5*time.Second)
	v.SetDefault("http.write_timeout", 10*time.Second)
	v.SetDefault("db.driver", "pgx")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.app", "petclinic")
	v.SetDefault("timing.methods", DefaultTimedMethods)
	v.SetDefault("tracing.enabled", false)
}

// Mantiene los nombres de env que ya usaba el servicio.
func bindEnv(v *viper.Viper) error {
	binds := map[string]string{
		"http.port":             "PORT",
		"db.driver":             "DB_DRIVER",
		"db.dsn":                "DB_DSN",
		"log.level":             "LOG_LEVEL",
		"log.format":            "LOG_FORMAT",
		"log.app":               "APP_NAME",
		"timing.methods":        "TIMING_METHODS",
		"tracing.enabled":       "TRACING_ENABLED",
		"tracing.otlp_endpoint": "OTEL_EXPORTER_OTLP_ENDPOINT",
	}
	for key, env := range binds {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("config: bind %s: %w", env, err)
		}
	}
	return nil
}

func addrFrom(port, addr string) string {
	if p := strings.TrimSpace(port); p != "" {
		return ":" + p
	}
	return addr
}

// Desde env llega "a,b,c" como un único elemento.
func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
