package validate

import (
	"strconv"
	"strings"
)

func Required(value string) bool {
	return strings.TrimSpace(value) != ""
}

// UserID parses a positive numeric user id typed by a person.
func UserID(value string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
