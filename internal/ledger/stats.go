package ledger

import "math"

// Stats is the derived usage view over a tenant's counters.
type Stats struct {
	Quota       int     `json:"total_quota"`
	Used        int     `json:"used"`
	Remaining   int     `json:"remaining"`
	PercentUsed float64 `json:"usage_percentage"`
}

// StatsFor derives usage figures from the counters alone; it never scans
// ledger entries. The percentage is rounded to two decimal places.
func StatsFor(monthlyQuota, requestsUsed int) Stats {
	remaining := monthlyQuota - requestsUsed
	if remaining < 0 {
		remaining = 0
	}

	var pct float64
	if monthlyQuota > 0 {
		pct = math.Round(float64(requestsUsed)/float64(monthlyQuota)*100*100) / 100
	}

	return Stats{
		Quota:       monthlyQuota,
		Used:        requestsUsed,
		Remaining:   remaining,
		PercentUsed: pct,
	}
}
