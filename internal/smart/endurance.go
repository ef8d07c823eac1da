package smart

import (
	"fmt"
	"math"
	"time"
)

// ReplaceReason is the limiting factor behind a replacement recommendation.
type ReplaceReason int

const (
	ReplaceUsageLimited ReplaceReason = iota // rated TBW runs out before the age horizon
	ReplaceAgeLimited                        // age horizon arrives first
	ReplaceExceeded                          // rated TBW already consumed
)

func (r ReplaceReason) String() string {
	switch r {
	case ReplaceUsageLimited:
		return "TBW limited"
	case ReplaceAgeLimited:
		return "age limited"
	case ReplaceExceeded:
		return "TBW exceeded"
	}
	return "unknown"
}

// Estimate is the endurance projection for one disk. It is a pure function of
// the metrics and the two configured constants; identical inputs always yield
// an identical estimate.
type Estimate struct {
	WrittenTB      float64
	GBPerDay       float64
	PercentUsed    float64
	RemainingTB    float64  // negative when rated capacity is exceeded
	DaysRemaining  *int     // nil when the write rate is negligible
	YearsRemaining *float64 // nil when no projection is possible
	ReplaceBy      time.Time
	Reason         ReplaceReason
}

// negligibleRate is the GB/day floor below which a usage projection would be
// meaningless noise.
const negligibleRate = 0.001

// Estimate projects drive end-of-life from normalized metrics. ratedTBW is
// the drive's endurance rating in terabytes written, ageLimitYears the
// replacement horizon for drives that will never wear out. The second return
// is false when the inputs do not allow a projection (no bytes-written figure,
// no power-on hours, or no positive rating) - an expected state for spinning
// disks and freshly installed drives, not an error.
func (m Metrics) Estimate(ratedTBW float64, ageLimitYears int, today time.Time) (*Estimate, bool) {
	if m.WrittenTB == nil || m.PowerOnHours == nil || ratedTBW <= 0 {
		return nil, false
	}

	// Days carry the same one-decimal rounding used in the report line.
	days := math.Round(float64(*m.PowerOnHours)/24*10) / 10

	est := &Estimate{
		WrittenTB:   *m.WrittenTB,
		PercentUsed: *m.WrittenTB / ratedTBW * 100,
		RemainingTB: ratedTBW - *m.WrittenTB,
	}
	if days > 0 {
		est.GBPerDay = *m.WrittenTB * 1024 / days
	}

	ageDate := today.AddDate(0, 0, ageLimitYears*365)

	switch {
	case est.GBPerDay > negligibleRate:
		d := int(math.Floor(est.RemainingTB * 1024 / est.GBPerDay))
		est.DaysRemaining = &d
		if d < 0 {
			est.ReplaceBy = today
			est.Reason = ReplaceExceeded
			est.YearsRemaining = ptr(0.0)
			break
		}
		est.YearsRemaining = ptr(float64(d) / 365)
		usageDate := today.AddDate(0, 0, d)
		if usageDate.Before(ageDate) {
			est.ReplaceBy = usageDate
			est.Reason = ReplaceUsageLimited
		} else {
			est.ReplaceBy = ageDate
			est.Reason = ReplaceAgeLimited
		}
	case est.RemainingTB >= 0:
		// Write rate too small to project usage; only age retires the drive.
		est.ReplaceBy = ageDate
		est.Reason = ReplaceAgeLimited
	default:
		// Rating exhausted even though the drive barely writes.
		est.ReplaceBy = today
		est.Reason = ReplaceExceeded
		est.YearsRemaining = ptr(0.0)
	}

	return est, true
}

// ReplacementAlert reports whether the estimate warrants attention: priority 8
// when the rated TBW is already exceeded, priority 5 when the recommended
// replacement date falls within one year of today. The one-year check applies
// to the usage-limited and age-limited branches alike.
func (e *Estimate) ReplacementAlert(today time.Time) (priority int, reason string, ok bool) {
	if e == nil {
		return 0, "", false
	}
	if e.Reason == ReplaceExceeded {
		return 8, "rated TBW exceeded", true
	}
	if e.ReplaceBy.Before(today.AddDate(0, 0, 365)) {
		return 5, fmt.Sprintf("replacement due by %s (%s)", e.ReplaceBy.Format("2006-01"), e.Reason), true
	}
	return 0, "", false
}

// ReplaceByString renders the recommendation the way it appears in reports.
func (e *Estimate) ReplaceByString() string {
	if e == nil {
		return "N/A"
	}
	if e.Reason == ReplaceExceeded {
		return "Now (TBW exceeded)"
	}
	return fmt.Sprintf("%s (%s)", e.ReplaceBy.Format("2006-01"), e.Reason)
}

func ptr[T any](v T) *T { return &v }
