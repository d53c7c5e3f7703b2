// Package attack implements the SDN-timeout-category classifier and the
// minimum-rate flow-table-exhaustion planner (spec.md §4.6-4.7).
package attack

import "github.com/ssmendon/sdnprobe/internal/core/domain"

// Classify maps a discovered (hard, idle) timeout pair to an attack
// category, per the table in spec.md §3.
func Classify(hardTimeout, idleTimeout int) domain.AttackCategory {
	switch {
	case hardTimeout == 0 && idleTimeout == 0:
		return domain.CategoryNoTimeout
	case hardTimeout != 0 && idleTimeout == 0:
		return domain.CategoryHardOnly
	case hardTimeout == 0 && idleTimeout != 0:
		return domain.CategoryIdleOnly
	default:
		return domain.CategoryBoth
	}
}
