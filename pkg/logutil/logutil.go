// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

// Package logutil configures logrus for iniedit and provides logging helpers.
package logutil

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

var (
	// loggedKeys tracks which keys have already been logged
	loggedKeys = make(map[string]struct{})
	// mutex protects access to the loggedKeys map
	mutex sync.Mutex
)

// InitLogger configures the standard logrus logger. An unknown level falls
// back to info, an unknown format falls back to text. A nil out means stderr.
func InitLogger(level string, format string, out io.Writer) {
	if out == nil {
		out = os.Stderr
	}
	logrus.SetOutput(out)
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
	if strings.EqualFold(format, FormatJSON) {
		logrus.SetFormatter(&logrus.JSONFormatter{})
		return
	}
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}

// Component returns a logger entry tagged with the given component name
func Component(name string) *logrus.Entry {
	return logrus.WithField("component", name)
}

// shouldLog checks if a message with the given key should be logged
// and marks the key as logged if it hasn't been seen before.
func shouldLog(key string) bool {
	mutex.Lock()
	defer mutex.Unlock()
	if _, exists := loggedKeys[key]; exists {
		return false
	}
	loggedKeys[key] = struct{}{}
	return true
}

// LogfOnce logs a warning with the given key only once.
// If a message with the same key has already been logged, this function does nothing.
func LogfOnce(entry *logrus.Entry, key string, format string, args ...interface{}) {
	if !shouldLog(key) {
		return
	}
	if entry == nil {
		entry = logrus.NewEntry(logrus.StandardLogger())
	}
	entry.Warnf(format, args...)
}
