package ch

import (
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// ClientInfo tags ClickHouse queries with the app, its role and the build,
// visible in system.query_log
func ClientInfo(app, role string) clickhouse.ClientInfo {
	host, _ := os.Hostname()
	type kv = struct{ Name, Version string }
	return clickhouse.ClientInfo{Products: []kv{
		{Name: orDefault(app, "outreach"), Version: commit()},
		{Name: "role", Version: orDefault(role, "unknown")},
		{Name: "go", Version: runtime.Version()},
		{Name: "host", Version: orDefault(host, "unknown")},
	}}
}

func commit() string {
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" && len(s.Value) >= 7 {
				return s.Value[:7]
			}
		}
	}
	return "dev"
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}
