package cliout

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TS01: a non-terminal writer (bytes.Buffer) falls back to plain lines
func TestWriter_PlainWhenNotTTY(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf)

	w.Success("done")
	assert.Equal(t, "done\n", buf.String())
}

// TS02: Errorf formats like fmt.Sprintf
func TestWriter_Errorf(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf)

	w.Errorf("bad thing: %d", 7)
	assert.Equal(t, "bad thing: 7\n", buf.String())
}
