// Package config reads typed settings from environment variables.
// Must* getters panic on missing or malformed values; May* getters log and fall back.
package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"outreach/internal/platform/logger"
)

// Conf is a prefixed view over the environment, e.g. New().Prefix("CORE_MATCH_")
type Conf struct{ prefix string }

// New returns the unprefixed view
func New() Conf { return Conf{} }

// Prefix returns a child view with p appended to the current prefix
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

func (c Conf) key(k string) string { return c.prefix + k }

func (c Conf) lookup(k string) string { return strings.TrimSpace(os.Getenv(c.key(k))) }

// must returns the raw value or panics when it is absent
func (c Conf) must(k string) string {
	v := c.lookup(k)
	if v == "" {
		logger.Get().Panic().Str("key", c.key(k)).Msg("missing required env")
	}
	return v
}

// parseOr parses a present value, logging and returning def on a parse failure
func parseOr[T any](c Conf, k string, def T, kind string, parse func(string) (T, error)) T {
	s := c.lookup(k)
	if s == "" {
		return def
	}
	v, err := parse(s)
	if err != nil {
		logger.Get().Warn().Str("key", c.key(k)).Str("value", s).Msgf("invalid %s; using default", kind)
		return def
	}
	return v
}

// mustParse parses a required value, panicking when absent or malformed
func mustParse[T any](c Conf, k, kind string, parse func(string) (T, error)) T {
	s := c.must(k)
	v, err := parse(s)
	if err != nil {
		logger.Get().Panic().Str("key", c.key(k)).Str("value", s).Msgf("invalid %s value", kind)
	}
	return v
}

// MustString returns a required value
func (c Conf) MustString(k string) string { return c.must(k) }

// MustInt returns a required int
func (c Conf) MustInt(k string) int { return mustParse(c, k, "int", strconv.Atoi) }

// MustBool returns a required bool
func (c Conf) MustBool(k string) bool { return mustParse(c, k, "bool", strconv.ParseBool) }

// MustDuration returns a required duration like 250ms or 2s
func (c Conf) MustDuration(k string) time.Duration {
	return mustParse(c, k, "duration", time.ParseDuration)
}

// MustURL returns a required absolute URL
func (c Conf) MustURL(k string) *url.URL {
	return mustParse(c, k, "absolute URL", func(s string) (*url.URL, error) {
		u, err := url.Parse(s)
		if err == nil && !u.IsAbs() {
			err = strconv.ErrSyntax
		}
		return u, err
	})
}

// MustPort returns a listen address like ":4000"
func (c Conf) MustPort(k string) string {
	p := mustParse(c, k, "TCP port", func(s string) (int, error) {
		n, err := strconv.Atoi(s)
		if err == nil && (n < 1 || n > 65535) {
			err = strconv.ErrRange
		}
		return n, err
	})
	return ":" + strconv.Itoa(p)
}

// Require panics unless every key is set
func (c Conf) Require(keys ...string) {
	for _, k := range keys {
		_ = c.must(k)
	}
}

// MayString returns the value or def
func (c Conf) MayString(k, def string) string {
	if v := c.lookup(k); v != "" {
		return v
	}
	return def
}

// MayInt returns the value or def
func (c Conf) MayInt(k string, def int) int { return parseOr(c, k, def, "int", strconv.Atoi) }

// MayFloat64 returns the value or def
func (c Conf) MayFloat64(k string, def float64) float64 {
	return parseOr(c, k, def, "float64", func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
}

// MayUnit returns a float in [0,1] or def; out of range values are logged and ignored
func (c Conf) MayUnit(k string, def float64) float64 {
	return parseOr(c, k, def, "unit float", func(s string) (float64, error) {
		v, err := strconv.ParseFloat(s, 64)
		if err == nil && (v < 0 || v > 1 || v != v) {
			err = strconv.ErrRange
		}
		return v, err
	})
}

// MayBool returns the value or def
func (c Conf) MayBool(k string, def bool) bool { return parseOr(c, k, def, "bool", strconv.ParseBool) }

// MayDuration returns the value or def
func (c Conf) MayDuration(k string, def time.Duration) time.Duration {
	return parseOr(c, k, def, "duration", time.ParseDuration)
}

// MayCSV splits a comma separated value, dropping blanks; def when nothing remains
func (c Conf) MayCSV(k string, def []string) []string {
	s := c.lookup(k)
	if s == "" {
		return def
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// MayEnum returns the lowercased value when it is one of allowed, def when unset, and panics otherwise
func (c Conf) MayEnum(k, def string, allowed ...string) string {
	v := c.MayString(k, def)
	if v == "" {
		return v
	}
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return strings.ToLower(a)
		}
	}
	logger.Get().Panic().Str("key", c.key(k)).Str("value", v).Strs("allowed", allowed).Msg("invalid enum value")
	return ""
}
