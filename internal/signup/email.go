package signup

import (
	"regexp"
	"strings"
)

// validEmailPattern is the "valid e-mail address" production browsers use
// for <input type="email">.
var validEmailPattern = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)

// ValidEmail reports whether s is a plausible email address.
func ValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) > 254 {
		return false
	}
	return validEmailPattern.MatchString(s)
}
