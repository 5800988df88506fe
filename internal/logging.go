package internal

import (
	"io"
	"log"
	"os"
)

// InitLogging sends log output to stdout with microsecond timestamps.
func InitLogging() {
	InitLoggingTo(os.Stdout)
}

// InitLoggingTo is InitLogging for commands whose stdout carries data.
func InitLoggingTo(w io.Writer) {
	log.SetOutput(w)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
}
