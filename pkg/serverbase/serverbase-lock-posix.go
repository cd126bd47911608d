// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

//go:build !windows

package serverbase

import (
	"os"

	"golang.org/x/sys/unix"
)

// AcquireServerLock takes an exclusive non-blocking flock on the lock file.
// The lock is held until the returned FDLock is closed.
func AcquireServerLock() (FDLock, error) {
	lockFileName := GetLockPath()
	log.WithField("path", lockFileName).Debug("acquiring server lock")
	fd, err := os.OpenFile(lockFileName, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, err
	}
	err = unix.Flock(int(fd.Fd()), unix.LOCK_EX|unix.LOCK_NB)
	if err != nil {
		fd.Close()
		return nil, err
	}
	return fd, nil
}
