// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package reachability probes network connectivity before an
// operation that would otherwise hang or fail obscurely. The probe is
// a cheap TCP dial against the target host; nothing is sent.
package reachability

import (
	"context"
	"errors"
	"net"
	"net/url"
	"time"
)

// ErrNoConnection indicates the target host could not be reached.
var ErrNoConnection = errors.New("no network connection")

// probeTimeout bounds a single connectivity probe.
const probeTimeout = 3 * time.Second

// Checker probes hosts for reachability.
type Checker struct {
	dialer *net.Dialer
}

// NewChecker creates a reachability checker.
func NewChecker() *Checker {
	return &Checker{
		dialer: &net.Dialer{Timeout: probeTimeout},
	}
}

// Check dials the host of the given base URL. It returns
// ErrNoConnection when the dial fails for any reason.
func (c *Checker) Check(ctx context.Context, baseURL string) error {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return ErrNoConnection
	}

	host := u.Host
	if u.Port() == "" {
		switch u.Scheme {
		case "http":
			host = net.JoinHostPort(u.Hostname(), "80")
		default:
			host = net.JoinHostPort(u.Hostname(), "443")
		}
	}

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	conn, err := c.dialer.DialContext(ctx, "tcp", host)
	if err != nil {
		return ErrNoConnection
	}
	conn.Close()
	return nil
}
