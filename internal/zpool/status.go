// Package zpool evaluates ZFS pool health and harvests member disk identities.
package zpool

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/rcarmo/proxmox-zpool-monitoring/internal/syscmd"
)

// Health is the classified state of a pool.
type Health int

const (
	Healthy Health = iota
	NotFound
	Degraded
)

// Verdict is the evaluated state of one pool. It is created once per run and
// never mutated afterwards.
type Verdict struct {
	Pool       string
	Health     Health
	StatusLine string
	Priority   int    // 1 healthy, 8 otherwise
	UsageLine  string // empty when any of the three usage properties was missing
	Detail     string // configuration/errors block, unhealthy pools only
}

// Evaluator classifies pools by shelling out to zpool and zfs.
type Evaluator struct {
	run syscmd.Runner
}

func NewEvaluator(run syscmd.Runner) *Evaluator {
	return &Evaluator{run: run}
}

// Evaluate derives a verdict for the pool from `zpool status -x`, plus the
// deduplicated disk identifiers found in the full status output. Identifier
// harvesting rides along here because the detailed status text is the only
// place member device ids appear.
func (e *Evaluator) Evaluate(pool string) (Verdict, []string) {
	v := Verdict{Pool: pool, Priority: 1}

	res := e.run.Run("zpool", "status", "-x", pool)
	switch {
	case res.OK() && strings.Contains(res.Stdout, fmt.Sprintf("pool '%s' is healthy", pool)):
		v.Health = Healthy
		v.StatusLine = "healthy"
	case strings.Contains(res.Stderr, "no such pool") || strings.Contains(res.Stdout, "no such pool"):
		v.Health = NotFound
		v.StatusLine = fmt.Sprintf("pool '%s' not found", pool)
		v.Priority = 8
		// Nothing else can be queried about a pool that does not exist.
		return v, nil
	default:
		v.Health = Degraded
		v.StatusLine = firstLine(res.Stdout, res.Stderr)
		v.Priority = 8
	}

	log.Debug().Str("pool", pool).Str("status", v.StatusLine).Msg("pool evaluated")

	used := e.property(pool, "used")
	avail := e.property(pool, "available")
	ratio := e.property(pool, "compressratio")
	if used != "" && avail != "" && ratio != "" {
		v.UsageLine = fmt.Sprintf("Usage: %s used, %s free (%s compression)", used, avail, ratio)
	}

	full := e.run.Run("zpool", "status", pool)
	if v.Health != Healthy && full.Stdout != "" {
		v.Detail = ExtractConfigSection(full.Stdout)
	}
	return v, HarvestDiskIDs(full.Stdout)
}

// property fetches a single zfs property value, or "" when unavailable.
func (e *Evaluator) property(pool, name string) string {
	res := e.run.Run("zfs", "get", "-H", "-o", "value", name, pool)
	if !res.OK() {
		return ""
	}
	return strings.TrimSpace(res.Stdout)
}

// firstLine returns the first non-empty line of stdout, falling back to
// stderr, falling back to a generic placeholder.
func firstLine(stdout, stderr string) string {
	for _, s := range []string{stdout, stderr} {
		for _, line := range strings.Split(s, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				return line
			}
		}
	}
	return "unknown error"
}

var (
	configSection = regexp.MustCompile(`(?s)config:.*`)
	noKnownErrors = regexp.MustCompile(`\n\s+errors: No known data errors`)
)

// ExtractConfigSection cuts the block from the configuration section through
// the trailing errors section of a full `zpool status` report, dropping the
// "no known data errors" boilerplate.
func ExtractConfigSection(statusText string) string {
	m := configSection.FindString(statusText)
	if m == "" {
		return ""
	}
	return noKnownErrors.ReplaceAllString(strings.TrimSpace(m), "")
}
