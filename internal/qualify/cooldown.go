package qualify

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/millemail/prospector/internal/model"
)

// DefaultCooldownDays is the minimum elapsed time before a domain may
// be contacted again.
const DefaultCooldownDays = 90

// ParseContactTime parses a last-contact timestamp. The store and the
// vendor APIs emit RFC 3339 with either an explicit offset or a
// trailing "Z"; the "Z" form is normalized to an explicit UTC offset so
// it is never misread as naive local time. Fractional seconds are
// accepted.
func ParseContactTime(ts string) (time.Time, error) {
	normalized := ts
	if strings.HasSuffix(ts, "Z") {
		normalized = strings.TrimSuffix(ts, "Z") + "+00:00"
	}
	t, err := time.Parse(time.RFC3339, normalized)
	if err != nil {
		// Timestamps without an offset at all (e.g. "2026-01-02T15:04:05")
		// are treated as UTC rather than rejected.
		t, err2 := time.Parse("2006-01-02T15:04:05", normalized)
		if err2 != nil {
			return time.Time{}, err
		}
		return t.UTC(), nil
	}
	return t.UTC(), nil
}

// FilterCooldown removes leads whose domain was contacted within the
// cooldown window. Leads with no domain or no recorded contact always
// pass; an unparseable timestamp also passes (fail open). The boundary
// is inclusive: a contact exactly cooldownDays old still counts as in
// cooldown, anything strictly older is eligible again.
func FilterCooldown(leads []model.Lead, lastContact map[string]string, cooldownDays int, now time.Time) []model.Lead {
	if cooldownDays <= 0 {
		cooldownDays = DefaultCooldownDays
	}
	threshold := now.UTC().Add(-time.Duration(cooldownDays) * 24 * time.Hour)

	filtered := make([]model.Lead, 0, len(leads))
	for _, lead := range leads {
		if lead.CompanyDomain == "" {
			filtered = append(filtered, lead)
			continue
		}

		ts, ok := lastContact[lead.CompanyDomain]
		if !ok || ts == "" {
			filtered = append(filtered, lead)
			continue
		}

		contactedAt, err := ParseContactTime(ts)
		if err != nil {
			zap.L().Warn("cooldown: unparseable contact timestamp, keeping lead",
				zap.String("domain", lead.CompanyDomain),
				zap.String("timestamp", ts),
			)
			filtered = append(filtered, lead)
			continue
		}

		// contactedAt after the threshold instant means the elapsed
		// time is within the window; the exact threshold instant is
		// also treated as still in cooldown.
		if !contactedAt.Before(threshold) {
			continue
		}
		filtered = append(filtered, lead)
	}
	return filtered
}
