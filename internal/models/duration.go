package models

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DurationPattern is the canonical PT#H#M#S grammar. Components are optional
// but must appear in H, M, S order.
var DurationPattern = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// Duration is an ISO-8601 time span restricted to hours, minutes and seconds.
type Duration string

// Std converts d to a time.Duration. Invalid or overflowing values yield 0.
func (d Duration) Std() time.Duration {
	m := DurationPattern.FindStringSubmatch(string(d))
	if m == nil {
		return 0
	}
	var total time.Duration
	for i, unit := range []time.Duration{time.Hour, time.Minute, time.Second} {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.ParseInt(m[i+1], 10, 64)
		if err != nil {
			return 0
		}
		total += time.Duration(n) * unit
	}
	return total
}

func (d Duration) String() string {
	return string(d)
}

var (
	clockPattern = regexp.MustCompile(`^(\d{1,2}):([0-5]?\d)$`)
	unitPattern  = regexp.MustCompile(`^(\d+)\s*([hms])$`)
	bareInteger  = regexp.MustCompile(`^\d+$`)
)

// NormalizeDuration rewrites common shorthand into the canonical grammar:
//
//	"3:00" -> PT3M, "0:45" -> PT45S, "1:30" -> PT1M30S
//	"20s" -> PT20S, "5 m" -> PT5M, "1h" -> PT1H
//	"12" -> PT12M (a bare count is read as minutes)
//
// Non-strings, values already carrying the PT prefix (in any case), and
// anything unrecognized are returned unchanged so that validation can
// reject them.
func NormalizeDuration(v any) any {
	raw, ok := v.(string)
	if !ok {
		return v
	}
	s := strings.ToLower(strings.TrimSpace(raw))

	if strings.HasPrefix(s, "pt") {
		return v
	}

	if m := clockPattern.FindStringSubmatch(s); m != nil {
		min, _ := strconv.Atoi(m[1])
		sec, _ := strconv.Atoi(m[2])
		switch {
		case min > 0 && sec > 0:
			return fmt.Sprintf("PT%dM%dS", min, sec)
		case min > 0:
			return fmt.Sprintf("PT%dM", min)
		default:
			return fmt.Sprintf("PT%dS", sec)
		}
	}

	if m := unitPattern.FindStringSubmatch(s); m != nil {
		return "PT" + trimZeros(m[1]) + strings.ToUpper(m[2])
	}

	if bareInteger.MatchString(s) {
		if n := trimZeros(s); n != "0" {
			return "PT" + n + "M"
		}
	}

	return v
}

// trimZeros strips leading zeros from a digit string without parsing it, so
// arbitrarily long counts cannot overflow.
func trimZeros(digits string) string {
	t := strings.TrimLeft(digits, "0")
	if t == "" {
		return "0"
	}
	return t
}
