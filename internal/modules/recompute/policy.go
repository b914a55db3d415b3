package recompute

import (
	"fmt"
	"strings"
)

// StalenessPolicy decides what happens to a goal plan whose profile changed
// after it was generated.
type StalenessPolicy string

const (
	// PolicyManual only marks the plan stale; the user regenerates it.
	PolicyManual StalenessPolicy = "manual"
	// PolicyAuto also enqueues a regeneration job.
	PolicyAuto StalenessPolicy = "auto"
)

func ParseStalenessPolicy(raw string) (StalenessPolicy, error) {
	switch p := StalenessPolicy(strings.ToLower(strings.TrimSpace(raw))); p {
	case "":
		return PolicyManual, nil
	case PolicyManual, PolicyAuto:
		return p, nil
	default:
		return PolicyManual, fmt.Errorf("unknown goal plan staleness policy %q", raw)
	}
}
