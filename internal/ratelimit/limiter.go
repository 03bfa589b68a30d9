// Copyright 2026 Greenleaf Labs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package ratelimit provides a per-IP token bucket for the HTTP boundary's
// label-generation and matching endpoints.
package ratelimit

import (
	"net"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter holds one token-bucket per client IP, evicting idle buckets so the
// map does not grow unbounded over a long-running process.
type Limiter struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	rps      rate.Limit
	burst    int
	idleTTL  time.Duration
	lastSeen time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// New builds a Limiter allowing requestsPerWindow requests per window,
// per distinct client IP.
func New(requestsPerWindow int, window time.Duration) *Limiter {
	if requestsPerWindow <= 0 {
		requestsPerWindow = 100
	}
	if window <= 0 {
		window = time.Minute
	}
	rps := rate.Limit(float64(requestsPerWindow) / window.Seconds())
	return &Limiter{
		buckets: make(map[string]*bucket),
		rps:     rps,
		burst:   requestsPerWindow,
		idleTTL: window * 10,
	}
}

// Allow reports whether the request from remoteAddr may proceed, consuming
// one token from its bucket if so.
func (l *Limiter) Allow(remoteAddr string) bool {
	ip := hostOf(remoteAddr)

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[ip]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.buckets[ip] = b
	}
	b.lastSeen = time.Now()

	l.evictLocked()

	return b.limiter.Allow()
}

// evictLocked drops buckets untouched for longer than idleTTL. Called with
// l.mu held.
func (l *Limiter) evictLocked() {
	now := time.Now()
	for ip, b := range l.buckets {
		if now.Sub(b.lastSeen) > l.idleTTL {
			delete(l.buckets, ip)
		}
	}
}

// Size reports the current number of tracked IPs, for metrics/tests.
func (l *Limiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func hostOf(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
