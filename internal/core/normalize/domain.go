package normalize

import (
	"net"
	"net/url"
	"strings"
)

const minDomainLen = 4

// Domain returns the bare lowercase host of a domain or URL, or "" when it is not usable.
// Scheme, www., port, path, query and fragment are dropped; the host must contain a dot.
// IP literals are not company domains and yield "".
func (n *Normalizer) Domain(s string) string {
	s = strings.ToLower(strings.TrimSpace(strings.ToValidUTF8(s, "")))
	if s == "" {
		return ""
	}

	var host string
	if strings.Contains(s, "://") || strings.HasPrefix(s, "www.") {
		raw := s
		if !strings.Contains(raw, "://") {
			raw = "http://" + raw
		}
		u, err := url.Parse(raw)
		if err != nil {
			return ""
		}
		host = u.Hostname()
	} else {
		host = bareHost(s)
	}

	for strings.HasPrefix(host, "www.") {
		host = strings.TrimPrefix(host, "www.")
	}
	host = strings.Trim(host, ".")

	if len(host) < minDomainLen || !strings.Contains(host, ".") {
		return ""
	}
	if strings.ContainsAny(host, " \t\r\n/\\@:") {
		return ""
	}
	if net.ParseIP(host) != nil {
		return ""
	}
	return host
}

// bareHost trims a scheme-less value down to its host part
func bareHost(s string) string {
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	// mailbox style input carries the domain after the last @
	if i := strings.LastIndexByte(s, '@'); i >= 0 {
		s = s[i+1:]
	}
	if i := strings.LastIndexByte(s, ':'); i >= 0 && allDigits(s[i+1:]) {
		s = s[:i]
	}
	return s
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
