/*
 * MEW
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package value

// The civil-calendar conversions below implement Howard Hinnant's
// days-from/to-civil algorithm (https://howardhinnant.github.io/date_algorithms.html),
// the formula mandated by the specification for computing days since the
// Unix epoch including leap years.

const msPerDay = 86_400_000

// DaysFromCivil converts a (year, month, day) triple to days since the
// Unix epoch (1970-01-01). Month is 1-12, day is 1-31.
func DaysFromCivil(y int64, m, d int) int64 {
	if m <= 2 {
		y--
	}
	era := y
	if y < 0 {
		era -= 399
	}
	era /= 400
	yoe := y - era*400
	var mp int
	if m > 2 {
		mp = m - 3
	} else {
		mp = m + 9
	}
	doy := (153*mp+2)/5 + d - 1
	doe := yoe*365 + yoe/4 - yoe/100 + int64(doy)
	return era*146097 + doe - 719468
}

// CivilFromDays converts days since the Unix epoch into a (year, month, day) triple.
func CivilFromDays(days int64) (year int64, month, day int) {
	z := days + 719468
	era := z
	if z < 0 {
		era -= 146096
	}
	era /= 146097
	doe := z - era*146097
	yoe := (doe - doe/1460 + doe/36524 - doe/146096) / 365
	y := yoe + era*400
	doy := doe - (365*yoe + yoe/4 - yoe/100)
	mp := (5*doy + 2) / 153
	d := doy - (153*mp+2)/5 + 1
	var m int64
	if mp < 10 {
		m = mp + 3
	} else {
		m = mp - 9
	}
	if m <= 2 {
		y++
	}
	return y, int(m), int(d)
}

// TimestampToDate decomposes milliseconds-since-epoch into (year, month, day).
func TimestampToDate(ms int64) (year int64, month, day int) {
	days := ms / msPerDay
	if ms%msPerDay < 0 {
		days--
	}
	return CivilFromDays(days)
}

// TimestampToTime decomposes milliseconds-since-epoch into (hour, minute, second).
func TimestampToTime(ms int64) (hour, minute, second int) {
	msInDay := ms % msPerDay
	if msInDay < 0 {
		msInDay += msPerDay
	}
	totalSeconds := msInDay / 1000
	hour = int(totalSeconds / 3600)
	minute = int((totalSeconds % 3600) / 60)
	second = int(totalSeconds % 60)
	return
}

// CivilToTimestamp composes a civil date/time plus milliseconds and a UTC
// offset (in minutes, east positive) into milliseconds since the Unix epoch.
func CivilToTimestamp(y int64, mo, d, h, mi, s, ms int, offsetMinutes int) int64 {
	days := DaysFromCivil(y, mo, d)
	total := days*msPerDay + int64(h)*3600_000 + int64(mi)*60_000 + int64(s)*1000 + int64(ms)
	total -= int64(offsetMinutes) * 60_000
	return total
}
