// Package constants provides application-wide constants.
package constants

import "runtime"

// Version is the application version string
const Version = "1.0-" + runtime.GOOS + "/" + runtime.GOARCH
