package store

import (
	"time"

	"outreach/internal/platform/config"
)

// Config aggregates backend settings
type Config struct {
	AppName string
	Role    string

	PG PGConfig
	CH CHConfig
}

// PGConfig configures Postgres
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	ConnectRetries int
	PingTimeout    time.Duration
}

// CHConfig configures ClickHouse
type CHConfig struct {
	Enabled bool
	URL     string
	Debug   bool
}

// FromConf reads SERVICE_PGSQL_* and SERVICE_CLICKHOUSE_* from cfg
func FromConf(cfg config.Conf, appName, role string) Config {
	pg := cfg.Prefix("SERVICE_PGSQL_")
	ch := cfg.Prefix("SERVICE_CLICKHOUSE_")

	out := Config{
		AppName: appName,
		Role:    role,
		PG: PGConfig{
			Enabled:        pg.MayBool("ENABLED", true),
			URL:            pg.MayString("URL", ""),
			MaxConns:       int32(pg.MayInt("MAX_CONNS", 10)),
			LogSQL:         pg.MayBool("LOG_SQL", false),
			SlowQueryMs:    pg.MayInt("SLOW_MS", 200),
			ConnectRetries: pg.MayInt("CONNECT_RETRIES", 8),
			PingTimeout:    pg.MayDuration("PING_TIMEOUT", 3*time.Second),
		},
		CH: CHConfig{
			Enabled: ch.MayBool("ENABLED", false),
			URL:     ch.MayString("URL", ""),
			Debug:   ch.MayBool("DEBUG", false),
		},
	}
	if out.PG.Enabled && out.PG.URL == "" {
		out.PG.URL = pg.MustString("URL")
	}
	if out.CH.Enabled && out.CH.URL == "" {
		out.CH.URL = ch.MustString("URL")
	}
	return out
}
