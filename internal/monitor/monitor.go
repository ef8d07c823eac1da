// Package monitor wires pool evaluation, disk resolution, SMART normalization
// and endurance estimation into one sequential check run.
package monitor

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/host"

	"github.com/rcarmo/proxmox-zpool-monitoring/internal/config"
	"github.com/rcarmo/proxmox-zpool-monitoring/internal/notify"
	"github.com/rcarmo/proxmox-zpool-monitoring/internal/smart"
	"github.com/rcarmo/proxmox-zpool-monitoring/internal/syscmd"
	"github.com/rcarmo/proxmox-zpool-monitoring/internal/zpool"
)

// Sender delivers notification events. Satisfied by notify.Dispatcher.
type Sender interface {
	Send(notify.Event)
}

// Monitor runs one full check pass. Execution is strictly sequential: one
// pool at a time, then one disk at a time, with a single running maximum for
// the aggregate priority.
type Monitor struct {
	cfg      *config.Settings
	run      syscmd.Runner
	eval     *zpool.Evaluator
	resolver zpool.Resolver
	dispatch Sender
	hostname string
	now      func() time.Time
}

func New(cfg *config.Settings, run syscmd.Runner, dispatch Sender) *Monitor {
	return &Monitor{
		cfg:      cfg,
		run:      run,
		eval:     zpool.NewEvaluator(run),
		resolver: zpool.Resolver{ByIDDir: cfg.ByIDDir, DevDir: cfg.DevDir},
		dispatch: dispatch,
		hostname: hostname(),
		now:      time.Now,
	}
}

func hostname() string {
	info, err := host.Info()
	if err != nil || info.Hostname == "" {
		log.Warn().Err(err).Msg("Could not determine hostname")
		return "unknown"
	}
	return info.Hostname
}

// Run executes one monitoring pass: every configured pool, one aggregate
// summary notification, then every discovered disk. Failure of any single
// unit never aborts the run, and the run itself never reports failure; a
// monitoring cron job should not go red because a monitored disk did.
func (m *Monitor) Run() {
	overall := 1
	diskIDs := make(map[string]struct{})
	var sections []string

	for _, pool := range m.cfg.Pools {
		verdict, ids := m.eval.Evaluate(pool)
		if verdict.Priority > overall {
			overall = verdict.Priority
		}
		sections = append(sections, m.poolSection(verdict))
		for _, id := range ids {
			diskIDs[id] = struct{}{}
		}
	}

	m.dispatch.Send(notify.Event{
		Title:    "ZFS Status Summary - " + m.hostname,
		Message:  strings.Join(sections, "\n\n---\n\n"),
		Priority: overall,
	})

	for _, id := range sortedKeys(diskIDs) {
		m.checkDisk(id)
	}

	// Completion contract: one human-readable line, exit status always zero.
	fmt.Printf("%s - Monitoring check complete.\n", m.now().Format("2006-01-02 15:04"))
}

func (m *Monitor) poolSection(v zpool.Verdict) string {
	lines := []string{fmt.Sprintf("%s Pool '%s': %s", m.hostname, v.Pool, v.StatusLine)}
	if v.UsageLine != "" {
		lines = append(lines, v.UsageLine)
	}
	if v.Detail != "" {
		lines = append(lines, "\nPool Configuration/Status:\n"+v.Detail)
	}
	return strings.Join(lines, "\n")
}

// checkDisk resolves, queries, normalizes and evaluates one disk. Anything
// unexpected is caught at this boundary and converted into a best-effort
// notification naming the disk, so the remaining disks still get checked.
func (m *Monitor) checkDisk(id string) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("id", id).Interface("panic", r).Msg("Unexpected failure processing disk")
			m.dispatch.Send(notify.Event{
				Title:    fmt.Sprintf("Error processing disk %s - %s", id, m.hostname),
				Message:  fmt.Sprintf("An unexpected error occurred while processing disk ID %s. Check logs.", id),
				Priority: 8,
			})
		}
	}()

	dev, ok := m.resolver.Resolve(id)
	if !ok {
		return
	}

	info := m.smartctl("-i", dev)
	health := m.smartctl("-H", dev)
	attrs := m.smartctl("-A", dev)
	if !info.OK() || !health.OK() || !attrs.OK() {
		log.Warn().Str("device", dev).Str("id", id).Msg("Failed to get full SMART data, skipping detailed report")
		if !health.OK() {
			m.dispatch.Send(notify.Event{
				Title:    fmt.Sprintf("Drive %s SMART error - %s", dev, m.hostname),
				Message:  fmt.Sprintf("Could not retrieve SMART health for %s (ID: %s). Check manually.", dev, id),
				Priority: 8,
			})
		}
		return
	}

	metrics := smart.Normalize(info.Stdout, health.Stdout, attrs.Stdout)
	today := m.now()
	est, calcErr := estimate(metrics, m.cfg.RatedTBW, m.cfg.AgeLimitYears, today)

	report := m.driveReport(dev, metrics, est, calcErr)
	log.Debug().Str("device", dev).Str("id", id).Msg(report)

	if ev, actionable := m.decide(dev, metrics, est, calcErr, today, report); actionable {
		m.dispatch.Send(ev)
	}
}

func (m *Monitor) smartctl(flag, dev string) syscmd.Result {
	return m.run.Run("smartctl", "--nocheck=standby", flag, filepath.Join(m.cfg.DevDir, dev))
}

// estimate wraps the estimator so an arithmetic defect degrades to a
// "calculation error" outcome instead of aborting the disk. A nil estimate
// with a nil error means the stats were simply not computable.
func estimate(metrics smart.Metrics, ratedTBW float64, ageLimitYears int, today time.Time) (est *smart.Estimate, calcErr error) {
	defer func() {
		if r := recover(); r != nil {
			est = nil
			calcErr = fmt.Errorf("endurance calculation: %v", r)
		}
	}()
	e, ok := metrics.Estimate(ratedTBW, ageLimitYears, today)
	if !ok {
		return nil, nil
	}
	return e, nil
}

// decide applies the notify-only-on-actionable-signal policy for one disk.
// Triggers: failed health verdict, imminent or exceeded replacement, and
// estimator failure. No trigger, no notification; the pool summary is the
// only unconditional push.
func (m *Monitor) decide(dev string, metrics smart.Metrics, est *smart.Estimate, calcErr error, today time.Time, report string) (notify.Event, bool) {
	title := "Drive issue"
	priority := 0
	var reasons []string

	if metrics.Health == smart.HealthFailed {
		title = "Drive failed"
		priority = 8
		reasons = append(reasons, "SMART health failed")
	}
	if p, reason, ok := est.ReplacementAlert(today); ok {
		if p > priority {
			priority = p
		}
		if est.Reason == smart.ReplaceExceeded && metrics.Health != smart.HealthFailed {
			title = "Drive capacity exceeded"
		}
		reasons = append(reasons, reason)
	}
	if calcErr != nil {
		log.Warn().Str("device", dev).Err(calcErr).Msg("Endurance calculation error")
		if priority < 5 {
			priority = 5
		}
		reasons = append(reasons, "endurance calculation error")
	}

	if priority == 0 {
		return notify.Event{}, false
	}
	return notify.Event{
		Title:    fmt.Sprintf("%s: %s - %s", title, dev, m.hostname),
		Message:  report + "\n\nReason: " + strings.Join(reasons, "; "),
		Priority: priority,
	}, true
}

// driveReport composes the human-readable per-disk summary.
func (m *Monitor) driveReport(dev string, metrics smart.Metrics, est *smart.Estimate, calcErr error) string {
	lines := []string{fmt.Sprintf("%s (%s): %s", dev, metrics.Model, metrics.Health)}

	temp, hours, days, lifeUsed := "N/A", "N/A", "days N/A", "N/A"
	if metrics.TemperatureC != nil {
		temp = strconv.Itoa(*metrics.TemperatureC)
	}
	if metrics.PowerOnHours != nil {
		hours = strconv.Itoa(*metrics.PowerOnHours)
		days = fmt.Sprintf("%.1f days", float64(*metrics.PowerOnHours)/24)
	}
	switch metrics.WearSource {
	case smart.WearDirect, smart.WearFromRemaining:
		lifeUsed = fmt.Sprintf("%d%% used", *metrics.WearPercent)
	case smart.WearLevelingCount:
		lifeUsed = fmt.Sprintf("%d%% used (WLC)", *metrics.WearPercent)
	}
	lines = append(lines, fmt.Sprintf("Temp: %s°C | Powered on: %sh (%s) | Life used: %s", temp, hours, days, lifeUsed))

	switch {
	case est != nil:
		erase := ""
		if metrics.EraseCount != "" {
			erase = " | Block erase count: " + metrics.EraseCount
		}
		yearsRem, daysRem := "N/A", "N/A"
		if est.YearsRemaining != nil {
			yearsRem = fmt.Sprintf("%.1f", *est.YearsRemaining)
		}
		if est.DaysRemaining != nil {
			daysRem = strconv.Itoa(*est.DaysRemaining)
		}
		lines = append(lines,
			fmt.Sprintf("%.1f TB written | %.1f GB/day write rate%s", est.WrittenTB, est.GBPerDay, erase),
			fmt.Sprintf("%.1f%% of rated TBW (%.0f TB) used", est.PercentUsed, m.cfg.RatedTBW),
			fmt.Sprintf("Est. remaining life: %s years (%s days)", yearsRem, daysRem),
			"Consider replacement by: "+est.ReplaceByString(),
		)
	case calcErr != nil:
		lines = append(lines, "Calculation error for endurance stats")
	default:
		lines = append(lines, "Endurance stats N/A (SSD data missing or invalid)")
	}
	return strings.Join(lines, "\n")
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
