package log

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// Level orders log verbosity from ErrorLevel (quietest) to TraceLevel.
type Level uint32

const (
	ErrorLevel Level = iota
	WarnLevel
	InfoLevel
	DebugLevel
	// TraceLevel also prints error stack traces from main.
	TraceLevel
)

var levels = []struct {
	name   string
	logrus logrus.Level
}{
	ErrorLevel: {"error", logrus.ErrorLevel},
	WarnLevel:  {"warn", logrus.WarnLevel},
	InfoLevel:  {"info", logrus.InfoLevel},
	DebugLevel: {"debug", logrus.DebugLevel},
	TraceLevel: {"trace", logrus.TraceLevel},
}

// ParseLevel accepts a level name, ignoring case and surrounding spaces.
func ParseLevel(str string) (Level, error) {
	str = strings.TrimSpace(str)

	names := make([]string, len(levels))

	for i, level := range levels {
		if strings.EqualFold(level.name, str) {
			return Level(i), nil
		}

		names[i] = level.name
	}

	return 0, fmt.Errorf("invalid level %q, supported levels: %s", str, strings.Join(names, ", "))
}

func (level Level) String() string {
	if int(level) < len(levels) {
		return levels[level].name
	}

	return fmt.Sprintf("level(%d)", uint32(level))
}

func (level Level) logrus() logrus.Level {
	if int(level) < len(levels) {
		return levels[level].logrus
	}

	return logrus.InfoLevel
}

// levelFromLogrus maps panic and fatal, which wilson never sets, to ErrorLevel.
func levelFromLogrus(lvl logrus.Level) Level {
	for i, level := range levels {
		if level.logrus == lvl {
			return Level(i)
		}
	}

	return ErrorLevel
}
