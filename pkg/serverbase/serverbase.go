// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package serverbase

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/outrigdev/iniedit/pkg/logutil"
	"github.com/outrigdev/iniedit/pkg/settings"
	"github.com/outrigdev/iniedit/pkg/utilfn"
)

// IniEditVersion is the current version of iniedit
// This gets set from main-iniedit.go during initialization
var IniEditVersion = "v0.0.0"

// IniEditBuildTime is the build timestamp of iniedit
// This gets set from main-iniedit.go during initialization
var IniEditBuildTime = ""

const IniEditLockFile = "iniedit.lock"
const IniEditHomeEnvName = "INIEDIT_HOME"
const IniEditDevEnvName = "INIEDIT_DEV"

const DefaultIniEditHome = "~/.iniedit"
const DevIniEditHome = "~/.iniedit-dev"

// Default production port for the web server
const ProdWebServerPort = 5015

// Development port for the web server
const DevWebServerPort = 6015

var log = logutil.Component("serverbase")

type FDLock interface {
	Close() error
}

// IsDev returns true if iniedit is running in development mode
func IsDev() bool {
	return os.Getenv(IniEditDevEnvName) == "1"
}

// GetIniEditHome returns the home directory, INIEDIT_HOME wins over the
// mode default
func GetIniEditHome() string {
	if home := os.Getenv(IniEditHomeEnvName); home != "" {
		return utilfn.ExpandHomeDir(home)
	}
	if IsDev() {
		return utilfn.ExpandHomeDir(DevIniEditHome)
	}
	return utilfn.ExpandHomeDir(DefaultIniEditHome)
}

// GetWebServerPort returns the appropriate web server port based on mode
func GetWebServerPort() int {
	if IsDev() {
		return DevWebServerPort
	}
	return ProdWebServerPort
}

// GetDefaultListenAddr returns the loopback address for the current mode
func GetDefaultListenAddr() string {
	return fmt.Sprintf("127.0.0.1:%d", GetWebServerPort())
}

func GetSettingsPath() string {
	return filepath.Join(GetIniEditHome(), settings.SettingsFileName)
}

func GetLockPath() string {
	return filepath.Join(GetIniEditHome(), IniEditLockFile)
}

func EnsureHomeDir() error {
	return os.MkdirAll(GetIniEditHome(), 0755)
}
