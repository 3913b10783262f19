package config

import "strings"

// AppVersion is the version of the service. Release builds override it
// through -ldflags.
var AppVersion = "0.9.0"

// AppName is the name of the service.
const AppName = "Lumen"

// LogWinSubDir is the sub directory for the log files on windows.
var LogWinSubDir = AppName

// LogSubDir is the sub directory for the log files.
var LogSubDir = "." + strings.ToLower(AppName)

// LogExt is the extension for the log files.
var LogExt = ".log"

// DefaultListenAddr is the loopback address the local bridge listens on.
const DefaultListenAddr = "127.0.0.1:49453"

// DefaultProxyBaseURL is the backend proxy that fronts all image provider APIs.
// The proxy holds the provider credentials; this service never sees them.
const DefaultProxyBaseURL = "https://proxy.lumen-tab.app"

// DefaultFavoritesURL is the local favorites service endpoint.
const DefaultFavoritesURL = "http://127.0.0.1:49452/local/favorites/default/images"
