// Package timezone maps a *time.Location to a zone name that database
// servers understand.
package timezone

import (
	"os"
	"strings"
	"time"
)

// Name returns the IANA name of loc. time.Local has no portable name, so it
// resolves through $TZ and then the /etc/localtime link, falling back to UTC.
func Name(loc *time.Location) string {
	if loc == nil {
		return "UTC"
	}
	if name := loc.String(); name != "Local" {
		return name
	}
	if tz := strings.TrimPrefix(os.Getenv("TZ"), ":"); tz != "" {
		if _, err := time.LoadLocation(tz); err == nil {
			return tz
		}
	}
	if target, err := os.Readlink("/etc/localtime"); err == nil {
		if i := strings.Index(target, "zoneinfo/"); i >= 0 {
			return target[i+len("zoneinfo/"):]
		}
	}
	return "UTC"
}
