package ratelimit

import (
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(endpoints ...EndpointConfig) *Config {
	return &Config{
		Enabled:         true,
		DefaultLimit:    100,
		DefaultWindow:   time.Minute,
		Whitelist:       make(map[string]bool),
		Blacklist:       make(map[string]bool),
		EndpointConfigs: endpoints,
	}
}

// frozen returns a limiter whose clock only moves when advance is called.
func frozen(cfg *Config) (*Limiter, func(time.Duration)) {
	l := NewLimiter(cfg)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	return l, func(d time.Duration) { now = now.Add(d) }
}

func TestLimiter_BurstThenDeny(t *testing.T) {
	l, _ := frozen(testConfig(EndpointConfig{Path: "/sessions", Method: http.MethodPost, Limit: 10, Window: time.Minute, Burst: 3}))
	defer l.Stop()

	for i := 0; i < 3; i++ {
		allowed, info := l.Allow("client", "/sessions", http.MethodPost)
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 10, info.Limit)
		assert.Equal(t, 2-i, info.Remaining)
	}

	allowed, info := l.Allow("client", "/sessions", http.MethodPost)
	assert.False(t, allowed)
	assert.Equal(t, 0, info.Remaining)
	assert.Equal(t, 6*time.Second, info.RetryAfter)
}

func TestLimiter_Refill(t *testing.T) {
	l, advance := frozen(testConfig(EndpointConfig{Path: "/sessions", Method: http.MethodPost, Limit: 60, Window: time.Minute, Burst: 1}))
	defer l.Stop()

	allowed, _ := l.Allow("client", "/sessions", http.MethodPost)
	require.True(t, allowed)
	allowed, _ = l.Allow("client", "/sessions", http.MethodPost)
	require.False(t, allowed)

	advance(time.Second)
	allowed, _ = l.Allow("client", "/sessions", http.MethodPost)
	assert.True(t, allowed)
}

func TestLimiter_ClientsAreIndependent(t *testing.T) {
	l, _ := frozen(testConfig(EndpointConfig{Path: "/sessions", Method: http.MethodPost, Limit: 1, Window: time.Hour, Burst: 1}))
	defer l.Stop()

	allowed, _ := l.Allow("alice", "/sessions", http.MethodPost)
	assert.True(t, allowed)
	allowed, _ = l.Allow("alice", "/sessions", http.MethodPost)
	assert.False(t, allowed)
	allowed, _ = l.Allow("bob", "/sessions", http.MethodPost)
	assert.True(t, allowed)
}

func TestLimiter_PrefixRuleSharesBucket(t *testing.T) {
	l, _ := frozen(testConfig(EndpointConfig{Path: "/sessions/", Method: http.MethodPost, Limit: 2, Window: time.Hour, Burst: 2}))
	defer l.Stop()

	allowed, _ := l.Allow("client", "/sessions/a/generate", http.MethodPost)
	assert.True(t, allowed)
	allowed, _ = l.Allow("client", "/sessions/b/generate", http.MethodPost)
	assert.True(t, allowed)
	allowed, _ = l.Allow("client", "/sessions/c/generate", http.MethodPost)
	assert.False(t, allowed)
}

func TestLimiter_Lists(t *testing.T) {
	cfg := testConfig(EndpointConfig{Path: "/sessions", Method: http.MethodPost, Limit: 1, Window: time.Hour, Burst: 1})
	cfg.Whitelist["trusted"] = true
	cfg.Blacklist["blocked"] = true
	l, _ := frozen(cfg)
	defer l.Stop()

	for i := 0; i < 5; i++ {
		allowed, _ := l.Allow("trusted", "/sessions", http.MethodPost)
		assert.True(t, allowed)
	}
	allowed, _ := l.Allow("blocked", "/health", http.MethodGet)
	assert.False(t, allowed)
}

func TestLimiter_Disabled(t *testing.T) {
	cfg := testConfig(EndpointConfig{Path: "/sessions", Method: http.MethodPost, Limit: 1, Window: time.Hour, Burst: 1})
	cfg.Enabled = false
	l := NewLimiter(cfg)
	defer l.Stop()

	for i := 0; i < 5; i++ {
		allowed, info := l.Allow("client", "/sessions", http.MethodPost)
		assert.True(t, allowed)
		assert.True(t, info.Allowed)
	}
}

func TestLimiter_HealthIsUnlimited(t *testing.T) {
	cfg := testConfig()
	cfg.DefaultLimit = 1
	l, _ := frozen(cfg)
	defer l.Stop()

	for i := 0; i < 10; i++ {
		allowed, _ := l.Allow("client", "/health", http.MethodGet)
		assert.True(t, allowed)
	}
}

func TestLimiter_DefaultLimitApplies(t *testing.T) {
	cfg := testConfig()
	cfg.DefaultLimit = 2
	l, _ := frozen(cfg)
	defer l.Stop()

	allowed, _ := l.Allow("client", "/generations", http.MethodGet)
	assert.True(t, allowed)
	allowed, _ = l.Allow("client", "/generations", http.MethodGet)
	assert.True(t, allowed)
	allowed, _ = l.Allow("client", "/generations", http.MethodGet)
	assert.False(t, allowed)
}

func TestLimiter_CleanupRemovesIdleBuckets(t *testing.T) {
	l, advance := frozen(testConfig())
	defer l.Stop()

	l.Allow("old", "/generations", http.MethodGet)
	advance(2 * time.Hour)
	l.Allow("new", "/generations", http.MethodGet)

	l.cleanupBuckets(time.Hour)

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.Len(t, l.buckets, 1)
	for key := range l.buckets {
		assert.Contains(t, key, "new")
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	l, _ := frozen(testConfig(EndpointConfig{Path: "/sessions", Method: http.MethodPost, Limit: 50, Window: time.Hour, Burst: 50}))
	defer l.Stop()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		granted int
	)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.Allow("client", "/sessions", http.MethodPost); ok {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, granted)
}

func TestLimiter_StopIsIdempotent(t *testing.T) {
	cfg := testConfig()
	cfg.CleanupInterval = time.Millisecond
	l := NewLimiter(cfg)

	assert.NotPanics(t, func() {
		l.Stop()
		l.Stop()
	})
}

func TestMatchEndpoint(t *testing.T) {
	configs := DefaultEndpointConfigs()

	tests := []struct {
		path     string
		method   string
		wantPath string
		wantNil  bool
	}{
		{path: "/sessions", method: http.MethodPost, wantPath: "/sessions"},
		{path: "/sessions/abc/generate", method: http.MethodPost, wantPath: "/sessions/"},
		{path: "/generations/7", method: http.MethodDelete, wantPath: "/generations/"},
		{path: "/generations", method: http.MethodGet, wantNil: true},
		{path: "/health", method: http.MethodGet, wantPath: "/health"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s %s", tt.method, tt.path), func(t *testing.T) {
			got := MatchEndpoint(tt.path, tt.method, configs)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantPath, got.Path)
		})
	}
}

func TestParseIPList(t *testing.T) {
	got := ParseIPList(" 10.0.0.1, ,127.0.0.1 ")
	assert.Equal(t, map[string]bool{"10.0.0.1": true, "127.0.0.1": true}, got)
	assert.Empty(t, ParseIPList(""))
}
