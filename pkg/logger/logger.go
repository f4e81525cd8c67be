package logger

import (
	"io"
	"log"
	"os"
	"strings"
)

var (
	// InfoLogger oddiy holat xabarlari uchun
	InfoLogger = log.New(os.Stdout, "INFO: ", log.Ldate|log.Ltime)

	// WarnLogger non-fatal xatolar uchun (sync, enrichment, paging)
	WarnLogger = log.New(os.Stdout, "WARN: ", log.Ldate|log.Ltime)

	// ErrorLogger xatolar uchun
	ErrorLogger = log.New(os.Stderr, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)
)

// Init loggerlarni LOG_FILE va LOG_QUIET env qiymatlari bo'yicha sozlaydi
func Init() {
	var out io.Writer = os.Stdout
	errOut := io.Writer(os.Stderr)

	if path := strings.TrimSpace(os.Getenv("LOG_FILE")); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err == nil {
			out = io.MultiWriter(os.Stdout, f)
			errOut = io.MultiWriter(os.Stderr, f)
		} else {
			log.Printf("LOG_FILE ochilmadi (%s): %v", path, err)
		}
	}
	if quiet := strings.ToLower(strings.TrimSpace(os.Getenv("LOG_QUIET"))); quiet == "1" || quiet == "true" {
		out = io.Discard
	}

	InfoLogger.SetOutput(out)
	WarnLogger.SetOutput(out)
	ErrorLogger.SetOutput(errOut)
}

// Discard silences every logger; tests use it to keep output clean.
func Discard() {
	InfoLogger.SetOutput(io.Discard)
	WarnLogger.SetOutput(io.Discard)
	ErrorLogger.SetOutput(io.Discard)
}
