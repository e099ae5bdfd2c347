package gate

import (
	"context"

	"github.com/google/uuid"

	"lend/pkg/cache"
	"lend/pkg/config"
	"lend/pkg/logger"
)

// Decision is the gate's verdict for one page load. The gate never returns
// an error: lower-level faults are logged and degrade to allow.
type Decision struct {
	Allowed    bool   `json:"allowed"`
	Step       Step   `json:"step"`
	RedirectTo string `json:"redirect_to,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

var allowed = Decision{Allowed: true, Step: StepNone}

// Gate evaluates the navigation rules per request. It holds no mutable
// state of its own; the only write it performs is the short-lived dedupe
// marker in the injected cache.
type Gate struct {
	src    Collaborators
	cache  cache.Cache
	cfg    config.LendingConfig
	rules  []rule
	logger logger.Logger
}

func New(src Collaborators, c cache.Cache, cfg config.LendingConfig, log logger.Logger) *Gate {
	return &Gate{
		src:    src,
		cache:  c,
		cfg:    cfg,
		rules:  rules(),
		logger: log,
	}
}

// guardEntry is the cached last decision for a user. It only suppresses
// re-evaluation for the same route; a route change always re-evaluates, so
// admin actions taken mid-session are never masked across navigation.
type guardEntry struct {
	Route    string   `json:"route"`
	Decision Decision `json:"decision"`
}

// Decide runs the rule chain for one page load. The first matching rule
// redirects; no match allows the requested route.
func (g *Gate) Decide(ctx context.Context, userID uuid.UUID, route string) Decision {
	if d, ok := g.checkGuard(ctx, userID, route); ok {
		return d
	}

	d := g.evaluate(ctx, userID, route)
	g.setGuard(ctx, userID, route, d)
	return d
}

func (g *Gate) evaluate(ctx context.Context, userID uuid.UUID, route string) Decision {
	snap := &snapshot{ctx: ctx, userID: userID, src: g.src}

	for _, r := range g.rules {
		match, err := r.eval(snap, route)
		if err != nil {
			// failOpen: the rule is treated as non-matching.
			g.logger.Warn("gate rule degraded to fail-open", map[string]interface{}{
				"user_id": userID.String(),
				"rule":    r.name,
				"policy":  string(r.policy),
				"error":   err.Error(),
			})
			continue
		}
		if !match {
			continue
		}
		target := RouteFor(r.target)
		if route == target {
			// Already where the rule would send them.
			return Decision{Allowed: true, Step: r.target}
		}
		g.logger.Info("gate redirect", map[string]interface{}{
			"user_id": userID.String(),
			"rule":    r.name,
			"route":   route,
			"target":  target,
		})
		return Decision{
			Allowed:    false,
			Step:       r.target,
			RedirectTo: target,
			Reason:     r.name,
		}
	}
	return allowed
}

// checkGuard returns the cached decision when the user re-loads the same
// route within the guard TTL.
func (g *Gate) checkGuard(ctx context.Context, userID uuid.UUID, route string) (Decision, bool) {
	if g.cache == nil {
		return Decision{}, false
	}
	var entry guardEntry
	if err := g.cache.Get(ctx, cache.GateGuardKey(userID), &entry); err != nil {
		if err != cache.ErrCacheMiss {
			g.logger.Warn("gate guard read failed", map[string]interface{}{
				"user_id": userID.String(),
				"error":   err.Error(),
			})
		}
		return Decision{}, false
	}
	if entry.Route != route {
		return Decision{}, false
	}
	return entry.Decision, true
}

func (g *Gate) setGuard(ctx context.Context, userID uuid.UUID, route string, d Decision) {
	if g.cache == nil {
		return
	}
	entry := guardEntry{Route: route, Decision: d}
	if err := g.cache.Set(ctx, cache.GateGuardKey(userID), entry, g.cfg.GateGuardTTL); err != nil {
		g.logger.Warn("gate guard write failed", map[string]interface{}{
			"user_id": userID.String(),
			"error":   err.Error(),
		})
	}
}
