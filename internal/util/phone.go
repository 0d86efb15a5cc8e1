package util

import (
	"regexp"
	"strings"
)

// NormalizePhone tries to normalize user input into E.164-like format before
// it is pushed to marketing providers. The landing page serves a Portuguese
// audience, so bare national numbers get the +351 prefix.
func NormalizePhone(raw string) string {
	s := strings.TrimSpace(raw)
	re := regexp.MustCompile(`[^\d\+]+`)
	s = re.ReplaceAllString(s, "")

	if strings.HasPrefix(s, "00") {
		s = "+" + s[2:]
	} else if len(s) == 9 && (s[0] == '9' || s[0] == '2' || s[0] == '3') {
		s = "+351" + s
	} else if strings.HasPrefix(s, "351") && len(s) == 12 {
		s = "+" + s
	}

	return s
}
