package logx

import (
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
)

const (
	defaultLogFile    = "./logs/currency.log"
	defaultMaxSizeMB  = 100
	defaultMaxAgeDays = 7
)

// LogConfig configures the rotating log file. Zero fields fall back to the LOGFILE,
// LOGFILE_MAX_SIZE_MB and LOGFILE_MAX_AGE_DAYS env variables, then to defaults.
type LogConfig struct {
	File       string `ini:"file"`
	MaxSizeMB  int    `ini:"max_size_mb"`
	MaxAgeDays int    `ini:"max_age_days"`
}

var (
	mu     sync.RWMutex
	logger = log.New(newRotatingWriter(LogConfig{}), "", log.Ldate|log.Ltime|log.Lmicroseconds)
)

// Init points the logger at the file described by cfg.
func Init(cfg LogConfig) {
	SetOutput(newRotatingWriter(cfg))
}

// SetOutput redirects log lines, e.g. to a buffer in tests or to io.Discard.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger = log.New(w, "", log.Ldate|log.Ltime|log.Lmicroseconds)
}

func newRotatingWriter(cfg LogConfig) io.Writer {
	filename := cfg.File
	if filename == "" {
		filename = getLogFilename()
	}
	maxSize := cfg.MaxSizeMB
	if maxSize <= 0 {
		maxSize = envInt("LOGFILE_MAX_SIZE_MB", defaultMaxSizeMB)
	}
	maxAge := cfg.MaxAgeDays
	if maxAge <= 0 {
		maxAge = envInt("LOGFILE_MAX_AGE_DAYS", defaultMaxAgeDays)
	}
	return &lumberjack.Logger{
		Filename: filename,
		MaxSize:  maxSize, // megabytes
		MaxAge:   maxAge,  // days
	}
}

func getLogFilename() string {
	if logFile := os.Getenv("LOGFILE"); logFile != "" {
		return "./logs/" + logFile
	}
	return defaultLogFile
}

func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func printf(color, level, category string, content []interface{}) {
	message := fmt.Sprint(content...)
	mu.RLock()
	defer mu.RUnlock()
	logger.Printf("%s[%s][%s]%s: %s", color, level, category, ColorReset, message)
}

func Info(category string, content ...interface{}) {
	printf(ColorGreen, "INFO", category, content)
}

func Error(category string, content ...interface{}) {
	printf(ColorRed, "ERROR", category, content)
}

func Warn(category string, content ...interface{}) {
	printf(ColorYellow, "WARN", category, content)
}

func Debug(category string, content ...interface{}) {
	printf(ColorBlue, "DEBUG", category, content)
}

// Errorf logs an error message and returns a formatted error
func Errorf(format string, args ...interface{}) error {
	err := fmt.Errorf(format, args...)
	Error("ERROR", err.Error())
	return err
}
