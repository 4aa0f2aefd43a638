package httpserver

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zaidrahmann/sportz-websockets/internal/domain"
)

func TestGatekeeperAllowsBrowserAgent(t *testing.T) {
	gk := NewConnectionGatekeeper(10, 10, clockwork.NewRealClock())

	decision, err := gk.Check(context.Background(), domain.ClientInfo{
		IP:        "203.0.113.1",
		UserAgent: "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.GateAllow, decision)
}

func TestGatekeeperDeniesBots(t *testing.T) {
	gk := NewConnectionGatekeeper(10, 10, clockwork.NewRealClock())

	for _, agent := range []string{"curl/8.5.0", "python-requests/2.31", "Googlebot/2.1"} {
		decision, err := gk.Check(context.Background(), domain.ClientInfo{IP: "203.0.113.1", UserAgent: agent})
		require.NoError(t, err)
		assert.Equal(t, domain.GateDenied, decision, "agent %q should be denied", agent)
	}
}

func TestGatekeeperRateLimitsPerIP(t *testing.T) {
	gk := NewConnectionGatekeeper(0.001, 2, clockwork.NewRealClock())
	browser := "Mozilla/5.0"

	for i := 0; i < 2; i++ {
		decision, err := gk.Check(context.Background(), domain.ClientInfo{IP: "203.0.113.1", UserAgent: browser})
		require.NoError(t, err)
		require.Equal(t, domain.GateAllow, decision)
	}

	decision, err := gk.Check(context.Background(), domain.ClientInfo{IP: "203.0.113.1", UserAgent: browser})
	require.NoError(t, err)
	assert.Equal(t, domain.GateRateLimited, decision)

	// A different IP has its own bucket.
	decision, err = gk.Check(context.Background(), domain.ClientInfo{IP: "203.0.113.2", UserAgent: browser})
	require.NoError(t, err)
	assert.Equal(t, domain.GateAllow, decision)
}

func TestGatekeeperPrunesIdleVisitors(t *testing.T) {
	clock := clockwork.NewFakeClock()
	gk := NewConnectionGatekeeper(10, 10, clock)
	browser := "Mozilla/5.0"

	_, err := gk.Check(context.Background(), domain.ClientInfo{IP: "203.0.113.1", UserAgent: browser})
	require.NoError(t, err)
	assert.Len(t, gk.visitors, 1)

	clock.Advance(visitorExpiry + time.Second)

	_, err = gk.Check(context.Background(), domain.ClientInfo{IP: "203.0.113.2", UserAgent: browser})
	require.NoError(t, err)
	assert.Len(t, gk.visitors, 1)
}
