package log

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Format selects how log entries are rendered.
type Format string

const (
	TextFormat Format = "text"
	JSONFormat Format = "json"
)

// ParseFormat accepts "text" or "json" (case-insensitive).
func ParseFormat(str string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(str))) {
	case TextFormat, "":
		return TextFormat, nil
	case JSONFormat:
		return JSONFormat, nil
	}

	return "", fmt.Errorf("invalid log format %q, supported formats: %s, %s", str, TextFormat, JSONFormat)
}

func (format Format) formatter() logrus.Formatter {
	if format == JSONFormat {
		return &logrus.JSONFormatter{TimestampFormat: time.RFC3339}
	}

	return &logrus.TextFormatter{
		FullTimestamp:    true,
		TimestampFormat:  time.TimeOnly,
		DisableQuote:     true,
		QuoteEmptyFields: true,
	}
}
