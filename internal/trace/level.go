package trace

import (
	"fmt"
	"strings"
)

// Level controls tracing verbosity.
type Level uint8

const (
	LevelOff   Level = iota
	LevelError       // только дамп кольцевого буфера при падении
	LevelDriver
	LevelFile
	LevelStage
)

func (l Level) String() string {
	switch l {
	case LevelOff:
		return "off"
	case LevelError:
		return "error"
	case LevelDriver:
		return "driver"
	case LevelFile:
		return "file"
	case LevelStage:
		return "stage"
	default:
		return "unknown"
	}
}

// ParseLevel converts a flag value to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "off", "":
		return LevelOff, nil
	case "error":
		return LevelError, nil
	case "driver":
		return LevelDriver, nil
	case "file":
		return LevelFile, nil
	case "stage":
		return LevelStage, nil
	default:
		return LevelOff, fmt.Errorf("invalid trace level: %q (expected: off|error|driver|file|stage)", s)
	}
}

// ShouldEmit reports whether events of scope pass this level.
func (l Level) ShouldEmit(scope Scope) bool {
	switch l {
	case LevelDriver:
		return scope <= ScopeDriver
	case LevelFile:
		return scope <= ScopeFile
	case LevelStage:
		return true
	default:
		return false
	}
}
