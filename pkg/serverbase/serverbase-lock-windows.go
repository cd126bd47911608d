// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

//go:build windows

package serverbase

import (
	"github.com/alexflint/go-filemutex"
)

type fileMutexLock struct {
	fm *filemutex.FileMutex
}

func (l *fileMutexLock) Close() error {
	l.fm.Unlock()
	return l.fm.Close()
}

// AcquireServerLock takes an exclusive lock on the lock file without waiting.
// The lock is held until the returned FDLock is closed.
func AcquireServerLock() (FDLock, error) {
	lockFileName := GetLockPath()
	log.WithField("path", lockFileName).Debug("acquiring server lock")
	fm, err := filemutex.New(lockFileName)
	if err != nil {
		return nil, err
	}
	if err := fm.TryLock(); err != nil {
		fm.Close()
		return nil, err
	}
	return &fileMutexLock{fm: fm}, nil
}
