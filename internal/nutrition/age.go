package nutrition

import (
	"strings"
	"time"
)

// Age returns completed years between birthDate (YYYY-MM-DD) and now, or 0
// when the date is missing or malformed.
func Age(birthDate string, now time.Time) int {
	birth, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(birthDate), now.Location())
	if err != nil {
		return 0
	}

	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}
