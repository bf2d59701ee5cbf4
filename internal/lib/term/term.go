// Package term содержит арифметику сроков членства: продление срока
// и определение того, действует ли доступ на текущий момент.
package term

import "time"

// Период продления членства: один календарный год.
const (
	periodYears  = 1
	periodMonths = 0
	periodDays   = 0
)

// AddPeriod прибавляет к дате один период продления.
func AddPeriod(t time.Time) time.Time {
	return t.AddDate(periodYears, periodMonths, periodDays)
}

// DefaultEnd возвращает дату окончания первого срока, начатого в момент start.
func DefaultEnd(start time.Time) time.Time {
	return AddPeriod(start)
}

// Extend вычисляет новые границы срока при продлении в момент at.
//
// Если текущий срок ещё не истёк (end >= at), он удлиняется на один период
// от текущей даты окончания, начало не меняется. Если срок уже истёк,
// отсчёт начинается заново: start = at, end = at + период.
func Extend(start, end, at time.Time) (time.Time, time.Time) {
	if !end.Before(at) {
		return start, AddPeriod(end)
	}
	return at, AddPeriod(at)
}

// IsActive сообщает, действует ли срок с датой окончания end в момент now.
func IsActive(end, now time.Time) bool {
	return !now.After(end)
}
