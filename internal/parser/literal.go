/*
 * MEW
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package parser

import (
	"strconv"
	"strings"

	"github.com/bdjafer/mew/internal/mewerr"
	"github.com/bdjafer/mew/internal/value"
)

// durationSuffixes mirrors the lexer's own suffix list and check order
// (internal/lexer/lexer.go's durationSuffixes) so a literal the lexer
// accepted always parses here too.
var durationSuffixes = []string{"ms", "ns", "us", "s", "m", "h", "d", "w"}

var durationUnitMs = map[string]float64{
	"ns": 1e-6,
	"us": 1e-3,
	"ms": 1,
	"s":  1000,
	"m":  60_000,
	"h":  3_600_000,
	"d":  86_400_000,
	"w":  7 * 86_400_000,
}

// parseDurationLiteral turns a scanned duration token's text (e.g. "5d",
// "1.5h", "100ms") into a millisecond count.
func parseDurationLiteral(s string) (int64, error) {
	for _, suf := range durationSuffixes {
		if !strings.HasSuffix(s, suf) {
			continue
		}
		numPart := strings.TrimSuffix(s, suf)
		f, err := strconv.ParseFloat(numPart, 64)
		if err != nil {
			continue
		}
		return int64(f * durationUnitMs[suf]), nil
	}
	return 0, mewerr.New(mewerr.ErrInvalidDuration, s)
}

// parseTimestampLiteral turns a scanned timestamp token's text (the
// ISO-8601 form after the leading '@', e.g. "2024-01-01T00:00:00Z" or
// "2024-01-01T00:00:00.500+02:00") into milliseconds since the Unix
// epoch, via value.CivilToTimestamp's civil-calendar arithmetic.
func parseTimestampLiteral(s string) (int64, error) {
	if len(s) < 10 || s[4] != '-' || s[7] != '-' {
		return 0, mewerr.New(mewerr.ErrInvalidTimestamp, s)
	}
	year, err := strconv.ParseInt(s[0:4], 10, 64)
	if err != nil {
		return 0, mewerr.New(mewerr.ErrInvalidTimestamp, s)
	}
	month, err := strconv.Atoi(s[5:7])
	if err != nil {
		return 0, mewerr.New(mewerr.ErrInvalidTimestamp, s)
	}
	day, err := strconv.Atoi(s[8:10])
	if err != nil {
		return 0, mewerr.New(mewerr.ErrInvalidTimestamp, s)
	}

	rest := s[10:]
	var hour, min, sec, ms, offsetMinutes int

	if len(rest) > 0 {
		if rest[0] != 'T' || len(rest) < 9 || rest[3] != ':' || rest[6] != ':' {
			return 0, mewerr.New(mewerr.ErrInvalidTimestamp, s)
		}
		rest = rest[1:]
		if hour, err = strconv.Atoi(rest[0:2]); err != nil {
			return 0, mewerr.New(mewerr.ErrInvalidTimestamp, s)
		}
		if min, err = strconv.Atoi(rest[3:5]); err != nil {
			return 0, mewerr.New(mewerr.ErrInvalidTimestamp, s)
		}
		if sec, err = strconv.Atoi(rest[6:8]); err != nil {
			return 0, mewerr.New(mewerr.ErrInvalidTimestamp, s)
		}
		rest = rest[8:]

		if len(rest) > 0 && rest[0] == '.' {
			j := 1
			for j < len(rest) && rest[j] >= '0' && rest[j] <= '9' {
				j++
			}
			frac := rest[1:j]
			for len(frac) < 3 {
				frac += "0"
			}
			frac = frac[:3]
			if ms, err = strconv.Atoi(frac); err != nil {
				return 0, mewerr.New(mewerr.ErrInvalidTimestamp, s)
			}
			rest = rest[j:]
		}

		if len(rest) > 0 {
			switch rest[0] {
			case 'Z':
				offsetMinutes = 0
				rest = rest[1:]
			case '+', '-':
				sign := 1
				if rest[0] == '-' {
					sign = -1
				}
				if len(rest) < 6 || rest[3] != ':' {
					return 0, mewerr.New(mewerr.ErrInvalidTimestamp, s)
				}
				oh, err := strconv.Atoi(rest[1:3])
				if err != nil {
					return 0, mewerr.New(mewerr.ErrInvalidTimestamp, s)
				}
				om, err := strconv.Atoi(rest[4:6])
				if err != nil {
					return 0, mewerr.New(mewerr.ErrInvalidTimestamp, s)
				}
				offsetMinutes = sign * (oh*60 + om)
				rest = rest[6:]
			default:
				return 0, mewerr.New(mewerr.ErrInvalidTimestamp, s)
			}
		}

		if rest != "" {
			return 0, mewerr.New(mewerr.ErrInvalidTimestamp, s)
		}
	}

	return value.CivilToTimestamp(year, month, day, hour, min, sec, ms, offsetMinutes), nil
}
