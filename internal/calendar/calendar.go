// Package calendar computes which content-calendar months a user can open.
// It is pure: no storage, no clock of its own, callers pass time.Now().
package calendar

import (
	"time"

	"github.com/danamoreau/strandly-backend/pkg/enums"
)

var monthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// AccessStatus is the entitlement snapshot the billing layer resolves for a
// user. AccessibleMonths, when non-empty, wins over the default window.
type AccessStatus struct {
	HasAccess          bool                     `json:"hasAccess"`
	AccessibleMonths   []int                    `json:"accessibleMonths"`
	SubscriptionStatus enums.SubscriptionStatus `json:"subscriptionStatus"`
	FreeAccessEndsAt   *time.Time               `json:"freeAccessEndsAt,omitempty"`
}

// LockedCopy is the rendered copy for a locked month. Anonymous visitors see
// when the month unlocks; authenticated users get a subscribe prompt.
type LockedCopy struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	CTA   string `json:"cta"`
}

// MonthName returns the English name for a 1-based month.
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return monthNames[month-1]
}

// DefaultWindow returns the two months open by default: the current month and
// the next one, wrapping December into January.
func DefaultWindow(now time.Time) []int {
	current := int(now.UTC().Month())
	return []int{current, NextMonth(current)}
}

// NextMonth wraps 12 to 1.
func NextMonth(month int) int {
	if month >= 12 {
		return 1
	}
	return month + 1
}

// PrevMonth wraps 1 to 12.
func PrevMonth(month int) int {
	if month <= 1 {
		return 12
	}
	return month - 1
}

// AccessibleMonths resolves the month set a caller may open. A nil status
// means the caller is anonymous and gets the default window. An explicit
// month list is honored verbatim; hasAccess without a list falls back to the
// default window; everything else sees no months.
func AccessibleMonths(status *AccessStatus, now time.Time) []int {
	if status == nil {
		return DefaultWindow(now)
	}
	if len(status.AccessibleMonths) > 0 {
		return append([]int(nil), status.AccessibleMonths...)
	}
	if status.HasAccess {
		return DefaultWindow(now)
	}
	return []int{}
}

// IsMonthAccessible reports whether month appears in the accessible set.
func IsMonthAccessible(month int, months []int) bool {
	for _, m := range months {
		if m == month {
			return true
		}
	}
	return false
}

// UnlockMonth names the month whose consistent posting unlocks the given
// month, which is the month before it.
func UnlockMonth(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return monthNames[(month-2+12)%12]
}

// LockedMonthCopy builds the locked-state copy for a month the caller cannot
// open.
func LockedMonthCopy(month int, anonymous bool) LockedCopy {
	name := MonthName(month)
	if anonymous {
		return LockedCopy{
			Title: name + " is locked",
			Body:  name + " unlocks on " + UnlockMonth(month) + " 1st. Create a free account so you're ready.",
			CTA:   "Sign up",
		}
	}
	return LockedCopy{
		Title: name + " is locked",
		Body:  "Subscribe to unlock " + name + " and the full year of content.",
		CTA:   "Upgrade",
	}
}

// AllMonths returns 1..12, the set granted to paying subscribers.
func AllMonths() []int {
	months := make([]int, 12)
	for i := range months {
		months[i] = i + 1
	}
	return months
}
