package service

import (
	"sort"
	"time"

	"github.com/noah-isme/studio-lessons-api/internal/models"
)

// MonthRange returns [first day 00:00, first day of next month 00:00) in loc.
func MonthRange(year, month int, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0)
}

// DayRange returns [t 00:00, next day 00:00) in loc.
func DayRange(t time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// ExpandWeekly lists every date in [start, start + months) falling on weekday,
// each set to hour:minute in loc. Only the calendar date of start is used.
func ExpandWeekly(start time.Time, weekday time.Weekday, hour, minute, months int, loc *time.Location) []time.Time {
	if loc == nil {
		loc = time.UTC
	}
	if months <= 0 {
		return nil
	}
	local := start.In(loc)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	end := day.AddDate(0, months, 0)

	shift := (int(weekday) - int(day.Weekday()) + 7) % 7
	var out []time.Time
	for d := day.AddDate(0, 0, shift); d.Before(end); d = d.AddDate(0, 0, 7) {
		out = append(out, wallClock(d, hour, minute, loc))
	}
	return out
}

// wallClock is hour:minute on d's date in loc. A time skipped by a DST gap
// moves forward by the gap, so 02:30 on a spring-forward day becomes 03:30.
func wallClock(d time.Time, hour, minute int, loc *time.Location) time.Time {
	t := time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, loc)
	if t.Hour() == hour && t.Minute() == minute {
		return t
	}
	_, before := t.Add(-12 * time.Hour).Zone()
	naive := time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, time.UTC)
	return naive.Add(-time.Duration(before) * time.Second).In(loc)
}

// mondayOffset is how many days of the first calendar week precede the 1st.
func mondayOffset(year int, month time.Month, loc *time.Location) int {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return (int(first.Weekday()) + 6) % 7
}

// WeekOfMonth places t, read in loc, in its Monday-anchored week of the month (1..6).
func WeekOfMonth(t time.Time, loc *time.Location) int {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	offset := mondayOffset(local.Year(), local.Month(), loc)
	return (local.Day()-1+offset)/7 + 1
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// BucketWeeks groups lessons of the given month into Monday-anchored weeks.
// Weeks 1 to 5 are always returned; week 6 only when it holds a lesson. A week
// lying wholly outside the month has StartDay and EndDay of 0.
func BucketWeeks(lessons []models.LessonDetail, year, month int, loc *time.Location) []models.WeekBucket {
	if loc == nil {
		loc = time.UTC
	}
	m := time.Month(month)
	offset := mondayOffset(year, m, loc)
	days := daysIn(year, m, loc)

	buckets := make([]models.WeekBucket, 6)
	for i := range buckets {
		week := i + 1
		startDay := 7*(week-1) - offset + 1
		endDay := 7*week - offset
		if startDay < 1 {
			startDay = 1
		}
		if endDay > days {
			endDay = days
		}
		if startDay > endDay {
			startDay, endDay = 0, 0
		}
		buckets[i] = models.WeekBucket{Week: week, StartDay: startDay, EndDay: endDay, Lessons: []models.LessonDetail{}}
	}

	sorted := make([]models.LessonDetail, len(lessons))
	copy(sorted, lessons)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ScheduledAt.Before(sorted[j].ScheduledAt) })

	for _, lesson := range sorted {
		local := lesson.ScheduledAt.In(loc)
		if local.Year() != year || local.Month() != m {
			continue
		}
		week := WeekOfMonth(local, loc)
		buckets[week-1].Lessons = append(buckets[week-1].Lessons, lesson)
	}

	if len(buckets[5].Lessons) == 0 {
		buckets = buckets[:5]
	}
	return buckets
}
