package applog

import (
	"bytes"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

var lineFormat = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2} - (INFO|ERROR) - .+\n$`)

func TestInfoMatchesLineFormat(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(&buf) })

	Info("worker pool started")
	require.Regexp(t, lineFormat, buf.String())
}

func TestErrorfFormatsMessage(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)

	Errorf("job %d failed: %v", 7, "boom")
	require.Contains(t, buf.String(), "- ERROR - job 7 failed: boom")
}
