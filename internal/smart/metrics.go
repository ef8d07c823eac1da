package smart

import (
	"regexp"
	"strconv"
	"strings"
)

// WearSource tags how the wear percentage was obtained.
type WearSource int

const (
	WearNone          WearSource = iota
	WearDirect                   // NVMe "Percentage Used"
	WearFromRemaining            // 100 - Percent_Lifetime_Remain
	WearLevelingCount            // raw Wear_Leveling_Count, approximation only
)

// WrittenSource tags how the bytes-written figure was obtained.
type WrittenSource int

const (
	WrittenNone      WrittenSource = iota
	WrittenBracketTB               // "[12.5 TB]" annotation inside Data Units Written
	WrittenDataUnits               // raw data-unit count, 512 bytes per unit
	WrittenLBAs                    // Total_LBAs_Written, 512-byte sectors
)

// Metrics is the normalized per-device SMART view. Every optional field may
// be absent (nil) independently of the others; absence of one never blocks
// extraction of the rest.
type Metrics struct {
	Model         string
	Health        HealthStatus
	TemperatureC  *int
	PowerOnHours  *int
	WearPercent   *int
	WearSource    WearSource
	WrittenTB     *float64
	WrittenSource WrittenSource
	EraseCount    string // Ave_Block-Erase_Count raw value, informational only
}

// bytesPerTiB is a binary terabyte; all byte conversions here use 2^40.
const bytesPerTiB = 1 << 40

var (
	leadingDigits = regexp.MustCompile(`^\s*(\d+)`)
	leadingCount  = regexp.MustCompile(`^\s*([\d,]+)`)
	bracketTB     = regexp.MustCompile(`\[\s*([\d.]+)\s*TB\s*\]`)
)

// Normalize reduces raw smartctl -i / -H / -A output to a Metrics value.
func Normalize(infoOut, healthOut, attrsOut string) Metrics {
	m := Metrics{
		Model:  ParseModel(infoOut),
		Health: ParseHealth(healthOut),
	}
	m.TemperatureC = parseTemperature(attrsOut)
	m.PowerOnHours = parseHours(attrsOut)
	m.WearPercent, m.WearSource = parseWear(attrsOut)
	m.WrittenTB, m.WrittenSource = parseWritten(attrsOut)
	if v, ok := LookupField(attrsOut, "Ave_Block-Erase_Count"); ok {
		m.EraseCount = v
	}
	return m
}

// parseTemperature keeps the leading digit run and discards any trailing unit
// text ("38 Celsius", "38 (Min/Max 21/54)").
func parseTemperature(attrsOut string) *int {
	raw, ok := LookupAny(attrsOut, "Temperature", "Temperature_Celsius")
	if !ok {
		return nil
	}
	m := leadingDigits.FindStringSubmatch(raw)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &n
}

func parseHours(attrsOut string) *int {
	raw, ok := LookupAny(attrsOut, "Power On Hours", "Power_On_Hours")
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(strings.ReplaceAll(strings.TrimSpace(raw), ",", ""))
	if err != nil || n < 0 {
		return nil
	}
	return &n
}

// parseWear resolves the wear percentage from whichever indicator the drive
// reports: direct used%, lifetime remaining, or the wear-leveling counter.
// A present-but-unparseable field yields absent rather than trying the next
// indicator; the indicators describe the same drive and disagreeing sources
// are worse than no answer.
func parseWear(attrsOut string) (*int, WearSource) {
	if raw, ok := LookupField(attrsOut, "Percentage Used"); ok {
		n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(raw), "%"))
		if err != nil || n < 0 {
			return nil, WearNone
		}
		return &n, WearDirect
	}
	if raw, ok := LookupField(attrsOut, "Percent_Lifetime_Remain"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, WearNone
		}
		used := 100 - n
		if used < 0 {
			return nil, WearNone
		}
		return &used, WearFromRemaining
	}
	if raw, ok := LookupField(attrsOut, "Wear_Leveling_Count"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || n < 0 {
			return nil, WearNone
		}
		return &n, WearLevelingCount
	}
	return nil, WearNone
}

// parseWritten resolves total terabytes written. The bracketed TB annotation
// in the NVMe field is authoritative when present; otherwise raw unit and
// sector counts are converted assuming 512-byte units.
func parseWritten(attrsOut string) (*float64, WrittenSource) {
	if raw, ok := LookupField(attrsOut, "Data Units Written"); ok {
		if m := bracketTB.FindStringSubmatch(raw); m != nil {
			if tb, err := strconv.ParseFloat(m[1], 64); err == nil {
				return &tb, WrittenBracketTB
			}
		}
		if m := leadingCount.FindStringSubmatch(raw); m != nil {
			if units, err := strconv.ParseInt(strings.ReplaceAll(m[1], ",", ""), 10, 64); err == nil && units >= 0 {
				tb := float64(units) * 512 / bytesPerTiB
				return &tb, WrittenDataUnits
			}
		}
		return nil, WrittenNone
	}
	if raw, ok := LookupField(attrsOut, "Total_LBAs_Written"); ok {
		lbas, err := strconv.ParseInt(strings.ReplaceAll(strings.TrimSpace(raw), ",", ""), 10, 64)
		if err != nil || lbas < 0 {
			return nil, WrittenNone
		}
		tb := float64(lbas) * 512 / bytesPerTiB
		return &tb, WrittenLBAs
	}
	return nil, WrittenNone
}
