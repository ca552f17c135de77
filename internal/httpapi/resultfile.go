package httpapi

import (
	"bytes"
	"os"
)

// readResultFile reads a job's result file in full. Kept separate from
// handleGetResults so the trailing-newline convention (one JSON value
// per line, per spec.md §6) stays in one place.
func readResultFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func trimNewline(b []byte) []byte {
	return bytes.TrimRight(b, "\n")
}
