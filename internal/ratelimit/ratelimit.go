// File: internal/ratelimit/ratelimit.go
package ratelimit

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Limiter decides whether one more request from identifier is allowed.
type Limiter interface {
	Allow(ctx context.Context, identifier string) (*RateLimitInfo, error)
	Close() error
}

// Config holds rate limiting configuration
type Config struct {
	WindowSize    time.Duration // Time window for rate limiting
	MaxAttempts   int           // Maximum attempts per window
	CleanupPeriod time.Duration // How often to clean up old entries
	BanDuration   time.Duration // How long to block after exceeding limit; 0 blocks until the window ends
}

// PerMinuteConfig limits an identifier to perMinute requests per minute.
func PerMinuteConfig(perMinute int) *Config {
	return &Config{
		WindowSize:    time.Minute,
		MaxAttempts:   perMinute,
		CleanupPeriod: 5 * time.Minute,
	}
}

// RateLimitInfo contains information about rate limit status
type RateLimitInfo struct {
	Allowed    bool
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
	Banned     bool
}

// attemptRecord tracks attempts for an IP/identifier
type attemptRecord struct {
	Count     int
	FirstSeen time.Time
	LastSeen  time.Time
	BannedAt  *time.Time
}

// MemoryRateLimiter implements in-memory rate limiting for a single instance.
type MemoryRateLimiter struct {
	config   *Config
	attempts map[string]*attemptRecord
	mu       sync.Mutex
	stopCh   chan struct{}
	stopOnce sync.Once
	now      func() time.Time
}

// NewMemoryRateLimiter creates a new in-memory rate limiter
func NewMemoryRateLimiter(config *Config) *MemoryRateLimiter {
	limiter := &MemoryRateLimiter{
		config:   config,
		attempts: make(map[string]*attemptRecord),
		stopCh:   make(chan struct{}),
		now:      time.Now,
	}

	// Start cleanup goroutine
	go limiter.cleanupLoop()

	return limiter
}

// Allow checks if a request should be allowed
func (rl *MemoryRateLimiter) Allow(_ context.Context, identifier string) (*RateLimitInfo, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	record, exists := rl.attempts[identifier]

	// If no record exists, or the window has reset, start a new window
	if !exists || (record.BannedAt == nil && now.Sub(record.FirstSeen) >= rl.config.WindowSize) {
		rl.attempts[identifier] = &attemptRecord{Count: 1, FirstSeen: now, LastSeen: now}
		return &RateLimitInfo{
			Allowed:   true,
			Remaining: rl.config.MaxAttempts - 1,
			ResetTime: now.Add(rl.config.WindowSize),
		}, nil
	}

	// Check if currently banned
	if record.BannedAt != nil {
		banEnd := record.BannedAt.Add(rl.config.BanDuration)
		if now.Before(banEnd) {
			return &RateLimitInfo{
				Allowed:    false,
				ResetTime:  banEnd,
				RetryAfter: banEnd.Sub(now),
				Banned:     true,
			}, nil
		}
		rl.attempts[identifier] = &attemptRecord{Count: 1, FirstSeen: now, LastSeen: now}
		return &RateLimitInfo{
			Allowed:   true,
			Remaining: rl.config.MaxAttempts - 1,
			ResetTime: now.Add(rl.config.WindowSize),
		}, nil
	}

	// Increment counter
	record.Count++
	record.LastSeen = now
	resetTime := record.FirstSeen.Add(rl.config.WindowSize)

	// Check if limit exceeded
	if record.Count > rl.config.MaxAttempts {
		if rl.config.BanDuration > 0 {
			banTime := now
			record.BannedAt = &banTime
			return &RateLimitInfo{
				Allowed:    false,
				ResetTime:  now.Add(rl.config.BanDuration),
				RetryAfter: rl.config.BanDuration,
				Banned:     true,
			}, nil
		}
		return &RateLimitInfo{
			Allowed:    false,
			ResetTime:  resetTime,
			RetryAfter: resetTime.Sub(now),
		}, nil
	}

	return &RateLimitInfo{
		Allowed:   true,
		Remaining: rl.config.MaxAttempts - record.Count,
		ResetTime: resetTime,
	}, nil
}

// cleanupLoop periodically removes old records
func (rl *MemoryRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCh:
			return
		}
	}
}

// cleanup removes expired records
func (rl *MemoryRateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for identifier, record := range rl.attempts {
		windowExpired := now.Sub(record.FirstSeen) > rl.config.WindowSize
		banExpired := record.BannedAt != nil && now.Sub(*record.BannedAt) > rl.config.BanDuration

		if (windowExpired && record.BannedAt == nil) || banExpired {
			delete(rl.attempts, identifier)
		}
	}
}

// Close stops the cleanup goroutine
func (rl *MemoryRateLimiter) Close() error {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
	return nil
}

// ParseTrustedProxies turns a list of IPs and CIDRs into networks.
func ParseTrustedProxies(entries []string) ([]*net.IPNet, error) {
	nets := make([]*net.IPNet, 0, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if !strings.Contains(entry, "/") {
			ip := net.ParseIP(entry)
			if ip == nil {
				return nil, fmt.Errorf("invalid trusted proxy %q", entry)
			}
			bits := 128
			if ip.To4() != nil {
				ip, bits = ip.To4(), 32
			}
			nets = append(nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		_, network, err := net.ParseCIDR(entry)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", entry, err)
		}
		nets = append(nets, network)
	}
	return nets, nil
}

// GetClientIP extracts the client IP from the request. Forwarding headers
// are only honored when the direct peer is a trusted proxy, and the
// X-Forwarded-For chain is read from the nearest hop back to the first
// address that is not a trusted proxy.
func GetClientIP(r *http.Request, trusted []*net.IPNet) string {
	peer, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		peer = strings.TrimSpace(r.RemoteAddr)
	}
	peerIP := net.ParseIP(peer)
	if !isTrusted(peerIP, trusted) {
		return peer
	}

	if hops := parseForwardedFor(r.Header.Get("X-Forwarded-For")); len(hops) > 0 {
		for i := len(hops) - 1; i >= 0; i-- {
			if !isTrusted(hops[i], trusted) {
				return hops[i].String()
			}
		}
		return hops[0].String()
	}

	if realIP := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); realIP != nil {
		return realIP.String()
	}
	return peerIP.String()
}

func isTrusted(ip net.IP, trusted []*net.IPNet) bool {
	if ip == nil {
		return false
	}
	for _, network := range trusted {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// parseForwardedFor returns the valid addresses of a comma-separated list.
func parseForwardedFor(forwarded string) []net.IP {
	var hops []net.IP
	for _, part := range strings.Split(forwarded, ",") {
		if ip := net.ParseIP(strings.TrimSpace(part)); ip != nil {
			hops = append(hops, ip)
		}
	}
	return hops
}
