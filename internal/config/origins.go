// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// NormalizeOrigin returns the form browsers send in the Origin header:
// lower-case scheme, punycode host, explicit port only when given.
// "*" is returned unchanged.
func NormalizeOrigin(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "*" {
		return raw, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("origin %q: %w", raw, err)
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", fmt.Errorf("origin %q: scheme must be http or https", raw)
	}
	if (u.Path != "" && u.Path != "/") || u.RawQuery != "" || u.Fragment != "" || u.User != nil {
		return "", fmt.Errorf("origin %q: must not carry a path, query or credentials", raw)
	}
	host := u.Hostname()
	if host == "" {
		return "", fmt.Errorf("origin %q: host is empty", raw)
	}
	if ip := net.ParseIP(host); ip == nil {
		ascii, err := idna.Lookup.ToASCII(host)
		if err != nil {
			return "", fmt.Errorf("origin %q: invalid host: %w", raw, err)
		}
		host = ascii
	} else if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	host = strings.ToLower(host)
	if port := u.Port(); port != "" {
		host += ":" + port
	}
	return scheme + "://" + host, nil
}

// normalizeOrigins rewrites every valid entry; invalid ones are kept for
// Validate to report.
func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return origins
	}
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		if n, err := NormalizeOrigin(o); err == nil {
			o = n
		}
		out = append(out, o)
	}
	return out
}
