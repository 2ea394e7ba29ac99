package common

import "regexp"

var syncCodeRe = regexp.MustCompile(`^[a-z0-9-]+$`)

// ValidSyncCode reports whether code is acceptable as a mirror namespace:
// lowercase alphanumerics and hyphens only. Both the client (before
// storing a code) and the server (before touching a namespace) apply it.
func ValidSyncCode(code string) bool {
	return syncCodeRe.MatchString(code)
}
