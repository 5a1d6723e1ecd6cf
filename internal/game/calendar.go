package game

import "time"

// DateLayout is the calendar-day key format used for mission completions.
const DateLayout = "2006-01-02"

// DayStatus is the state of one node on the campaign map.
type DayStatus string

const (
	DayCompleted DayStatus = "completed"
	DayCurrent   DayStatus = "current"
	DayLocked    DayStatus = "locked"
)

// Calendar fixes the campaign start, its length and the timezone whose
// midnight separates one day from the next. The same boundary is used for
// the campaign day and for mission completion keys.
type Calendar struct {
	Start     time.Time
	TotalDays int
	Location  *time.Location
}

// NewCalendar pins start to midnight in loc.
func NewCalendar(start time.Time, totalDays int, loc *time.Location) Calendar {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := start.Date()
	return Calendar{
		Start:     time.Date(y, m, d, 0, 0, 0, 0, loc),
		TotalDays: totalDays,
		Location:  loc,
	}
}

// Date returns the calendar-day key of t in the campaign timezone.
func (c Calendar) Date(t time.Time) string {
	return t.In(c.location()).Format(DateLayout)
}

// CurrentDay returns the campaign day index of now, clamped to [1, TotalDays].
func (c Calendar) CurrentDay(now time.Time) int {
	return CurrentDay(now.In(c.location()), c.Start, c.TotalDays)
}

func (c Calendar) location() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

// DayNode is one stop on the campaign map.
type DayNode struct {
	Day    int       `json:"day"`
	Status DayStatus `json:"status"`
}

// CampaignMap is the progress view for a given moment.
type CampaignMap struct {
	CurrentDay int       `json:"currentDay"`
	TotalDays  int       `json:"totalDays"`
	Days       []DayNode `json:"days"`
}

// Map builds the status of every day of the campaign as seen at now.
func (c Calendar) Map(now time.Time) CampaignMap {
	current := c.CurrentDay(now)
	days := make([]DayNode, 0, c.TotalDays)
	for day := 1; day <= c.TotalDays; day++ {
		days = append(days, DayNode{Day: day, Status: StatusOf(day, current)})
	}
	return CampaignMap{
		CurrentDay: current,
		TotalDays:  c.TotalDays,
		Days:       days,
	}
}

// CurrentDay computes the whole-day difference between the calendar dates of
// today and campaignStart (each read in its own location, time of day
// ignored), adds one and clamps into [1, totalDays].
func CurrentDay(today, campaignStart time.Time, totalDays int) int {
	if totalDays < 1 {
		return 1
	}
	diff := int(civilDate(today).Sub(civilDate(campaignStart)).Hours() / 24)
	day := diff + 1
	if day < 1 {
		return 1
	}
	if day > totalDays {
		return totalDays
	}
	return day
}

// civilDate drops the clock and zone so DST shifts cannot skew day counts.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// StatusOf classifies day relative to the current campaign day.
func StatusOf(day, currentDay int) DayStatus {
	switch {
	case day < currentDay:
		return DayCompleted
	case day == currentDay:
		return DayCurrent
	default:
		return DayLocked
	}
}
