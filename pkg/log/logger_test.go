package log_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/hightail/wilson-sub000/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input    string
		expected log.Level
		wantErr  bool
	}{
		{"trace", log.TraceLevel, false},
		{"DEBUG", log.DebugLevel, false},
		{" info ", log.InfoLevel, false},
		{"warn", log.WarnLevel, false},
		{"error", log.ErrorLevel, false},
		{"verbose", 0, true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()

			level, err := log.ParseLevel(tc.input)
			if tc.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expected, level)
		})
	}
}

func TestJSONFormatCarriesFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := log.New(log.WithOutput(&buf), log.WithFormat(log.JSONFormat), log.WithLevel(log.DebugLevel))
	logger.WithField(log.FieldKeyEntity, "ht-header").Debugf("resolved %d scripts", 3)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "ht-header", line[log.FieldKeyEntity])
	assert.Equal(t, "resolved 3 scripts", line["msg"])
	assert.Equal(t, "debug", line["level"])
}

func TestLevelFiltersOutput(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := log.New(log.WithOutput(&buf), log.WithLevel(log.WarnLevel))
	logger.Infof("hidden")
	assert.Empty(t, buf.String())

	logger.Warnf("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestCloneKeepsParentUntouched(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	parent := log.New(log.WithOutput(&buf), log.WithLevel(log.InfoLevel))
	child := parent.WithOptions(log.WithLevel(log.TraceLevel))

	assert.Equal(t, log.TraceLevel, child.Level())
	assert.Equal(t, log.InfoLevel, parent.Level())
}

func TestLoggerFromContext(t *testing.T) {
	t.Parallel()

	logger := log.New()
	ctx := log.ContextWithLogger(context.Background(), logger)

	assert.Same(t, logger, log.LoggerFromContext(ctx))
	assert.Equal(t, log.Default(), log.LoggerFromContext(context.Background()))
}
