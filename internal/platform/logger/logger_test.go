package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevelAndFormat(t *testing.T) {
	assert.Equal(t, Debug, ParseLevel(" DEBUG "))
	assert.Equal(t, Warn, ParseLevel("warning"))
	assert.Equal(t, Info, ParseLevel("nonsense"))
	assert.Equal(t, "error", Error.String())

	assert.Equal(t, FormatJSON, ParseFormat("json"))
	assert.Equal(t, FormatText, ParseFormat(""))
}

func TestLogger_JSONWithFields(t *testing.T) {
	var buf bytes.Buffer
	log := newWithSink(Options{Level: Info, Format: FormatJSON, App: "meds"}, zapcore.AddSync(&buf))

	log.Debug("dropped", nil)
	log.With(map[string]any{"request_id": "r1"}).Warn("slow", map[string]any{
		"ms":  120,
		"err": errors.New("timeout"),
		"":    "ignored",
	})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "slow", entry["msg"])
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "meds", entry["app"])
	assert.Equal(t, "r1", entry["request_id"])
	assert.Equal(t, "timeout", entry["err"])
	assert.EqualValues(t, 120, entry["ms"])
}

func TestNop(t *testing.T) {
	l := Nop().With(map[string]any{"a": 1})
	l.Error("nothing", nil)
	assert.NoError(t, l.Sync())
}
