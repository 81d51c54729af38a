package alerts

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"odds-arb-calculator/internal/arb"
	"odds-arb-calculator/internal/logging"
)

// Notifier logs arbitrage notices, suppressing repeats of the same
// opportunity within the cooldown.
type Notifier struct {
	mu         sync.Mutex
	lastAlerts map[string]time.Time // Dedupe alerts
	cooldown   time.Duration        // Minimum time between same alerts
	log        *logrus.Entry
}

// NewNotifier creates a new notifier
func NewNotifier(cooldown time.Duration) *Notifier {
	return &Notifier{
		lastAlerts: make(map[string]time.Time),
		cooldown:   cooldown,
		log:        logging.WithComponent("alerts"),
	}
}

// checkCooldown records key and reports whether it was seen within the cooldown.
func (n *Notifier) checkCooldown(key string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	if lastTime, ok := n.lastAlerts[key]; ok {
		if time.Since(lastTime) < n.cooldown {
			return true
		}
	}
	n.lastAlerts[key] = time.Now()
	return false
}

// opportunityKey identifies an opportunity by its priced legs, so the same
// prices reached from different raw inputs dedupe together.
func opportunityKey(source string, res arb.Result) string {
	return fmt.Sprintf("%s-%.4f-%.4f-%.0f", source, res.Quote.SideA.Cost, res.Quote.SideNotA.Cost, res.K)
}

// AlertArb logs a found arbitrage. It returns false when the result is not
// an arbitrage or the same opportunity was alerted within the cooldown.
func (n *Notifier) AlertArb(source string, res arb.Result) bool {
	if res.State != arb.StateArbFound {
		return false
	}
	if n.checkCooldown(opportunityKey(source, res)) {
		return false
	}

	n.log.WithFields(logrus.Fields{
		"source":     source,
		"edge_pct":   fmt.Sprintf("%.2f", res.Edge*100),
		"cost_no":    fmt.Sprintf("%.4f", res.Quote.SideA.Cost),
		"cost_sb":    fmt.Sprintf("%.4f", res.Quote.SideNotA.Cost),
		"payout":     fmt.Sprintf("%.2f", res.K),
		"total_cash": fmt.Sprintf("%.2f", res.TotalCash),
		"profit":     fmt.Sprintf("%.2f", res.Profit),
	}).Info("ARB: buy NO on market, bet YES on sportsbook")
	return true
}

// LogError logs an error
func (n *Notifier) LogError(context string, err error) {
	n.log.WithError(err).Errorf("ERROR [%s]", context)
}

// CleanupOldAlerts removes stale alert records
func (n *Notifier) CleanupOldAlerts() {
	n.mu.Lock()
	defer n.mu.Unlock()
	cutoff := time.Now().Add(-1 * time.Hour)
	if n.cooldown > time.Hour {
		cutoff = time.Now().Add(-n.cooldown)
	}
	for key, t := range n.lastAlerts {
		if t.Before(cutoff) {
			delete(n.lastAlerts, key)
		}
	}
}

// Tracked returns how many alert keys are currently remembered.
func (n *Notifier) Tracked() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.lastAlerts)
}
