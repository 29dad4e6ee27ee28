/*
config.go - Server configuration

PURPOSE:
  Loads the server settings from an optional YAML file plus FUTS_*
  environment variables, with defaults that let the binary run with
  no configuration at all (SQLite file next to the binary).

SOURCES (later wins):
  1. Built-in defaults
  2. Config file (optional, -config flag)
  3. Environment variables, prefix FUTS_ and dots become underscores
     (http.addr -> FUTS_HTTP_ADDR)

KEYS:
  app.env               "prod" or "dev", switches log format   (prod)
  http.addr             listen address                         (:8080)
  http.allowed_origins  CORS origins, comma list in env        (dev UIs)
  db.driver             "sqlite" or "postgres"                 (sqlite)
  db.path               SQLite file, ":memory:" works          (futs.db)
  db.dsn                Postgres DSN, required for postgres    ("")
  fees.default_deposit  EUR per keg when no override           (30)
  fees.cup_wash         EUR per washed cup                     (0.15)
  fees.cup_loss         EUR per lost cup                       (1)
  metrics.enabled       expose /metrics                        (true)
  watcher.enabled       background stock alert checks          (true)
  watcher.interval      time between checks                    (1h)

SEE ALSO:
  - cmd/server/main.go: flag parsing and wiring
  - ledger/fees.go: the tariff card these strings parse into
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/lecentrallanderneau-oss/livraison-et-suivi-futs/ledger"
)

// Drivers accepted for db.driver.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	App struct {
		Env string
	} `mapstructure:"app"`

	HTTP struct {
		Addr           string
		AllowedOrigins []string `mapstructure:"allowed_origins"`
	} `mapstructure:"http"`

	DB struct {
		Driver string
		Path   string
		DSN    string
	} `mapstructure:"db"`

	Fees struct {
		DefaultDeposit string `mapstructure:"default_deposit"`
		CupWash        string `mapstructure:"cup_wash"`
		CupLoss        string `mapstructure:"cup_loss"`
	} `mapstructure:"fees"`

	Metrics struct {
		Enabled bool
	} `mapstructure:"metrics"`

	Watcher struct {
		Enabled  bool
		Interval time.Duration
	} `mapstructure:"watcher"`

	fees ledger.FeeSchedule
}

// Load reads the configuration. A missing file is fine, everything
// else about it failing is not.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("FUTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := c.validate(); err != nil {
		return Config{}, err
	}

	fees, err := parseFees(c)
	if err != nil {
		return Config{}, err
	}
	c.fees = fees
	return c, nil
}

func setDefaults(v *viper.Viper) {
	std := ledger.DefaultFees()

	v.SetDefault("app.env", "prod")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.allowed_origins", []string{})
	v.SetDefault("db.driver", DriverSQLite)
	v.SetDefault("db.path", "futs.db")
	v.SetDefault("db.dsn", "")
	v.SetDefault("fees.default_deposit", std.DefaultDeposit.String())
	v.SetDefault("fees.cup_wash", std.CupWash.String())
	v.SetDefault("fees.cup_loss", std.CupLoss.String())
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("watcher.enabled", true)
	v.SetDefault("watcher.interval", time.Hour)
}

func (c Config) validate() error {
	switch c.DB.Driver {
	case DriverSQLite:
		if c.DB.Path == "" {
			return errors.New("db.path is required with the sqlite driver")
		}
	case DriverPostgres:
		if c.DB.DSN == "" {
			return errors.New("db.dsn is required with the postgres driver")
		}
	default:
		return fmt.Errorf("unknown db.driver %q (want sqlite or postgres)", c.DB.Driver)
	}
	if c.Watcher.Enabled && c.Watcher.Interval <= 0 {
		return fmt.Errorf("watcher.interval must be positive, got %s", c.Watcher.Interval)
	}
	return nil
}

func parseFees(c Config) (ledger.FeeSchedule, error) {
	var fees ledger.FeeSchedule
	for _, f := range []struct {
		key string
		raw string
		dst *decimal.Decimal
	}{
		{"fees.default_deposit", c.Fees.DefaultDeposit, &fees.DefaultDeposit},
		{"fees.cup_wash", c.Fees.CupWash, &fees.CupWash},
		{"fees.cup_loss", c.Fees.CupLoss, &fees.CupLoss},
	} {
		d, err := decimal.NewFromString(f.raw)
		if err != nil {
			return fees, fmt.Errorf("%s: bad amount %q", f.key, f.raw)
		}
		if d.IsNegative() {
			return fees, fmt.Errorf("%s: negative amount %q", f.key, f.raw)
		}
		*f.dst = d
	}
	return fees, nil
}

// FeeSchedule returns the tariff card parsed at Load time.
func (c Config) FeeSchedule() ledger.FeeSchedule { return c.fees }
