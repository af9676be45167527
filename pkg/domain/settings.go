package domain

import (
	"fmt"
	"time"
)

// DefaultTimezone is the civil timezone window timestamps are interpreted
// in when a graph does not name one.
const DefaultTimezone = "America/New_York"

// windowLayout is the wall-clock format of WindowStart/WindowEnd.
const windowLayout = "2006-01-02T15:04"

// Settings is the campaign bundle persisted alongside the graph.
// WindowStart and WindowEnd are wall-clock timestamps interpreted in
// Timezone, never UTC-naive.
type Settings struct {
	CampaignName string `json:"campaignName,omitempty"`
	ResponseCap  int    `json:"responseCap,omitempty"`
	WindowStart  string `json:"windowStart,omitempty"`
	WindowEnd    string `json:"windowEnd,omitempty"`
	Timezone     string `json:"timezone,omitempty"`
	Password     string `json:"password,omitempty"`
}

// Location resolves the configured civil timezone.
func (s Settings) Location() (*time.Location, error) {
	tz := s.Timezone
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	return loc, nil
}

// Window parses the active window bounds in the configured timezone.
// A missing bound returns a zero time for that side.
func (s Settings) Window() (start, end time.Time, err error) {
	loc, err := s.Location()
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if s.WindowStart != "" {
		start, err = time.ParseInLocation(windowLayout, s.WindowStart, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid window start: %w", err)
		}
	}
	if s.WindowEnd != "" {
		end, err = time.ParseInLocation(windowLayout, s.WindowEnd, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid window end: %w", err)
		}
	}
	return start, end, nil
}

// OpenAt reports whether the campaign accepts a new visitor at the given
// instant with the given number of recorded responses. The reason names
// the gate that closed it.
func (s Settings) OpenAt(now time.Time, responses int) (bool, string) {
	if s.ResponseCap > 0 && responses >= s.ResponseCap {
		return false, "response cap reached"
	}
	start, end, err := s.Window()
	if err != nil {
		// A malformed window never locks visitors out.
		return true, ""
	}
	if !start.IsZero() && now.Before(start) {
		return false, "campaign not yet active"
	}
	if !end.IsZero() && now.After(end) {
		return false, "campaign ended"
	}
	return true, ""
}
