package rlog

import (
	"fmt"
	"log/slog"
	"strings"
)

// Level is the severity of an Event. Levels are ordered, DEBUG being the
// lowest and CRITICAL the highest.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarning
	LevelError
	LevelCritical
)

// SlogLevelCritical is the slog level mapped to LevelCritical, for loggers
// that need a severity above ERROR.
const SlogLevelCritical = slog.LevelError + 4

var levelNames = [...]string{
	LevelDebug:    "DEBUG",
	LevelInfo:     "INFO",
	LevelWarning:  "WARNING",
	LevelError:    "ERROR",
	LevelCritical: "CRITICAL",
}

// Levels lists every severity in ascending order.
func Levels() []Level {
	return []Level{LevelDebug, LevelInfo, LevelWarning, LevelError, LevelCritical}
}

// String returns the wire name of the level, as used in routing keys.
func (l Level) String() string {
	if l < LevelDebug || l > LevelCritical {
		return fmt.Sprintf("LEVEL(%d)", int(l))
	}
	return levelNames[l]
}

// LevelFromSlog maps a slog level onto the nearest severity at or below it.
func LevelFromSlog(l slog.Level) Level {
	switch {
	case l < slog.LevelInfo:
		return LevelDebug
	case l < slog.LevelWarn:
		return LevelInfo
	case l < slog.LevelError:
		return LevelWarning
	case l < SlogLevelCritical:
		return LevelError
	default:
		return LevelCritical
	}
}

// Slog returns the slog level matching l.
func (l Level) Slog() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarning:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return SlogLevelCritical
	}
}

// ParseLevel parses a level name, case-insensitively. "WARN" is accepted
// as an alias of WARNING.
func ParseLevel(s string) (Level, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	if name == "WARN" {
		return LevelWarning, nil
	}
	for l, n := range levelNames {
		if n == name {
			return Level(l), nil
		}
	}
	return 0, fmt.Errorf("unknown level %q", s)
}
