package model

import "time"

// HourStamp is one entry of the calendar axis: a single UTC hour carrying
// its local-civil-time breakdown and working/holiday flags.
//
// Units: none (calendar metadata only).
type HourStamp struct {
	TSUTC   time.Time
	TSLocal time.Time

	Year    int
	Month   time.Month
	Day     int
	Hour    int
	Weekday time.Weekday

	IsWorkday bool
	IsHoliday bool
}

// IsFree reports the derived day mode used to select tariff/capacity masks:
// is_free = is_holiday OR (NOT is_workday).
func (h HourStamp) IsFree() bool {
	return h.IsHoliday || !h.IsWorkday
}

// DateKey identifies the calendar day (in local time) an hour belongs to.
// Proposer pairing and K-coefficient bucketing group by this key.
func (h HourStamp) DateKey() string {
	return h.TSLocal.Format("2006-01-02")
}

// NewCalendarAxis builds an ordered UTC hourly axis [start,end) from a
// per-hour workday/holiday lookup keyed by local date. loc is the
// configured local timezone (defaults to Europe/Warsaw at the config layer).
func NewCalendarAxis(start, end time.Time, loc *time.Location, isWorkday, isHoliday func(localDate string) bool) []HourStamp {
	if loc == nil {
		loc = time.UTC
	}
	var out []HourStamp
	for t := start.UTC(); t.Before(end.UTC()); t = t.Add(time.Hour) {
		local := t.In(loc)
		dateKey := local.Format("2006-01-02")
		out = append(out, HourStamp{
			TSUTC:     t,
			TSLocal:   local,
			Year:      local.Year(),
			Month:     local.Month(),
			Day:       local.Day(),
			Hour:      local.Hour(),
			Weekday:   local.Weekday(),
			IsWorkday: isWorkday(dateKey),
			IsHoliday: isHoliday(dateKey),
		})
	}
	return out
}

// Mode selects which (month,mode) mask table applies to an hour.
type Mode int

const (
	ModeWork Mode = iota
	ModeFree
)

func (h HourStamp) Mode() Mode {
	if h.IsFree() {
		return ModeFree
	}
	return ModeWork
}

func (m Mode) String() string {
	if m == ModeFree {
		return "free"
	}
	return "work"
}
