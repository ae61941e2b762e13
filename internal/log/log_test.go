package log

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelsAndFormat(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(LevelInfo)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetLevel(LevelInfo)
	})

	Debug("hidden", "k", 1)
	Info("event created", "id", "e1")
	Error("save failed", errors.New("disk full"), "path", "/tmp/data.json")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `level=INFO msg="event created" id=e1`)
	assert.Contains(t, out, `err="disk full" path=/tmp/data.json`)

	buf.Reset()
	SetLevel(LevelDebug)
	Debug("shown")
	assert.Contains(t, buf.String(), "level=DEBUG msg=shown")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelError, ParseLevel(" ERROR "))
	assert.Equal(t, LevelInfo, ParseLevel("chatty"))
}
