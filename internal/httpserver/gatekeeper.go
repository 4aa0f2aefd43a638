package httpserver

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"

	"github.com/zaidrahmann/sportz-websockets/internal/domain"
	"github.com/zaidrahmann/sportz-websockets/internal/metrics"
)

const visitorExpiry = 5 * time.Minute

// botUserAgents are denied outright before the upgrade.
var botUserAgents = []string{
	"curl/",
	"wget/",
	"python-requests",
	"go-http-client",
	"scrapy",
	"httpclient",
	"bot",
	"crawler",
	"spider",
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ConnectionGatekeeper rate-limits WebSocket connection attempts per
// client IP and denies known non-browser agents.
type ConnectionGatekeeper struct {
	ratePerSecond float64
	burst         int
	clock         clockwork.Clock

	mu       sync.Mutex
	visitors map[string]*visitor
}

func NewConnectionGatekeeper(ratePerSecond float64, burst int, clock clockwork.Clock) *ConnectionGatekeeper {
	return &ConnectionGatekeeper{
		ratePerSecond: ratePerSecond,
		burst:         burst,
		clock:         clock,
		visitors:      make(map[string]*visitor),
	}
}

func (g *ConnectionGatekeeper) Check(_ context.Context, client domain.ClientInfo) (domain.GateDecision, error) {
	if isBotAgent(client.UserAgent) {
		metrics.GatekeeperDecisionsTotal.WithLabelValues("denied").Inc()
		return domain.GateDenied, nil
	}

	if !g.allow(client.IP) {
		metrics.GatekeeperDecisionsTotal.WithLabelValues("rate_limited").Inc()
		return domain.GateRateLimited, nil
	}

	metrics.GatekeeperDecisionsTotal.WithLabelValues("allowed").Inc()
	return domain.GateAllow, nil
}

func (g *ConnectionGatekeeper) allow(ip string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.clock.Now()
	g.pruneLocked(now)

	v, ok := g.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Limit(g.ratePerSecond), g.burst)}
		g.visitors[ip] = v
	}
	v.lastSeen = now

	return v.limiter.Allow()
}

// pruneLocked drops visitors idle longer than the expiry so the map
// stays bounded by the recently active IP set.
func (g *ConnectionGatekeeper) pruneLocked(now time.Time) {
	for ip, v := range g.visitors {
		if now.Sub(v.lastSeen) > visitorExpiry {
			delete(g.visitors, ip)
		}
	}
}

func isBotAgent(userAgent string) bool {
	ua := strings.ToLower(userAgent)
	for _, marker := range botUserAgents {
		if strings.Contains(ua, marker) {
			return true
		}
	}
	return false
}
