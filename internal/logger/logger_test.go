package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// captureOutput redirects logger output to a buffer for the duration of a
// test and returns a cleanup function to restore the original output.
func captureOutput() (*bytes.Buffer, func()) {
	buf := new(bytes.Buffer)

	mu.Lock()
	originalOutput := output
	originalColor := useColor
	output = buf
	useColor = false
	mu.Unlock()
	reconfigure()

	return buf, func() {
		mu.Lock()
		output = originalOutput
		useColor = originalColor
		mu.Unlock()
		reconfigure()
	}
}

func TestLevelFiltering(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()

	SetLevel("WARN")
	Debug("hidden")
	Info("also hidden")
	Warn("visible")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible")
}

func TestTextFormatIncludesAttrs(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()

	SetLevel("DEBUG")
	SetFormat("text")
	Info("frame sent", "offset", 3, "total", 10)

	out := buf.String()
	assert.True(t, strings.Contains(out, "frame sent"))
	assert.True(t, strings.Contains(out, "offset=3"))
	assert.True(t, strings.Contains(out, "total=10"))
}

func TestJSONFormat(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()

	SetFormat("json")
	Info("hello", "key", "value")

	assert.Contains(t, buf.String(), `"msg":"hello"`)
	assert.Contains(t, buf.String(), `"key":"value"`)

	SetFormat("text")
}

func TestSetLevelIgnoresInvalid(t *testing.T) {
	SetLevel("INFO")
	SetLevel("NOT_A_LEVEL")
	assert.Equal(t, LevelInfo, Level(currentLevel.Load()))
}
