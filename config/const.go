package config

import "strings"

// AppVersion is the version of the application, injected at build time.
var AppVersion string

// AppName is the name of the application.
const AppName = "Passfoto"

// LogWinSubDir is the sub directory for the log files on windows.
var LogWinSubDir = AppName

// LogSubDir is the sub directory for the log files.
var LogSubDir = "." + strings.ToLower(AppName)

// LogExt is the extension for the log files.
var LogExt = ".log"
