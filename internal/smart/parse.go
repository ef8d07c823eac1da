// Package smart parses smartctl diagnostic output and estimates SSD endurance.
//
// smartctl reports the same quantities under two dialects: the ATA attribute
// table (columnar, raw value in the tenth column) and the NVMe log form
// (key: value lines). One lookup serves both; callers try the NVMe field name
// first and fall back to the ATA spelling.
package smart

import "strings"

// HealthStatus is the overall SMART self-assessment verdict.
type HealthStatus string

const (
	HealthPassed  HealthStatus = "PASSED"
	HealthFailed  HealthStatus = "FAILED"
	HealthUnknown HealthStatus = "UNKNOWN"
)

// ModelUnknown is returned when no model line is present in smartctl -i output.
const ModelUnknown = "N/A"

// LookupField extracts the raw value of a named attribute from smartctl
// output. The columnar ATA form is tried first (second token is the attribute
// name, tenth token the raw value), then the NVMe key:value form with a
// case-insensitive key match. Returns false when no line matches; malformed
// input never errors.
func LookupField(output, name string) (string, bool) {
	for _, line := range strings.Split(output, "\n") {
		parts := strings.Fields(line)
		if len(parts) >= 10 && parts[1] == name {
			return parts[9], true
		}
	}

	key := strings.ToLower(strings.TrimSpace(name))
	for _, line := range strings.Split(output, "\n") {
		k, v, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		if strings.ToLower(strings.TrimSpace(k)) == key {
			return strings.TrimSpace(v), true
		}
	}
	return "", false
}

// LookupAny tries each field name in order and returns the first value found.
func LookupAny(output string, names ...string) (string, bool) {
	for _, name := range names {
		if v, ok := LookupField(output, name); ok {
			return v, true
		}
	}
	return "", false
}

// ParseHealth classifies smartctl -H output. Unknown means no marker was
// found, never an inferred verdict.
func ParseHealth(output string) HealthStatus {
	switch {
	case strings.Contains(output, "PASSED"):
		return HealthPassed
	case strings.Contains(output, "FAILED"):
		return HealthFailed
	case strings.Contains(output, "SMART Health Status: OK"):
		// SCSI/SAS drives report this instead of the self-assessment line.
		return HealthPassed
	}
	return HealthUnknown
}

// ParseModel extracts the device model from smartctl -i output. Both label
// spellings seen in the wild are accepted.
func ParseModel(output string) string {
	for _, line := range strings.Split(output, "\n") {
		if strings.HasPrefix(line, "Device Model:") || strings.HasPrefix(line, "Device:") {
			_, v, _ := strings.Cut(line, ":")
			return strings.TrimSpace(v)
		}
	}
	return ModelUnknown
}
