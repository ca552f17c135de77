// Package applog provides the leveled, line-oriented logger used across
// the server. Output format and levels are fixed by the deployment
// contract: "YYYY-MM-DD HH:MM:SS - {INFO|ERROR} - {message}" in UTC,
// written to stdout, one line per call.
package applog

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"
)

const timeFormat = "2006-01-02 15:04:05"

func nowUTC() string {
	return time.Now().UTC().Format(timeFormat)
}

var (
	mu     sync.Mutex
	writer io.Writer = os.Stdout
	infoL            = log.New(writer, "", 0)
	errL             = log.New(writer, "", 0)
)

// SetOutput redirects all log output; primarily for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	writer = w
	infoL = log.New(w, "", 0)
	errL = log.New(w, "", 0)
}

func format(level, msg string) string {
	return fmt.Sprintf("%s - %s - %s", nowUTC(), level, msg)
}

// Info logs an informational line.
func Info(msg string) {
	mu.Lock()
	defer mu.Unlock()
	infoL.Print(format("INFO", msg))
}

// Infof logs a formatted informational line.
func Infof(format_ string, args ...interface{}) {
	Info(fmt.Sprintf(format_, args...))
}

// Error logs an error line.
func Error(msg string) {
	mu.Lock()
	defer mu.Unlock()
	errL.Print(format("ERROR", msg))
}

// Errorf logs a formatted error line.
func Errorf(format_ string, args ...interface{}) {
	Error(fmt.Sprintf(format_, args...))
}
