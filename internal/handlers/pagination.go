package handlers

import (
	"strconv"
	"strings"
)

// parseSkipLimit reads the kitchen list window. Missing values are zero and
// the service applies its own default page size.
func parseSkipLimit(skipStr, limitStr string) (int64, int64, bool) {
	var skip, limit int64

	if s := strings.TrimSpace(skipStr); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, 0, false
		}
		skip = v
	}

	if l := strings.TrimSpace(limitStr); l != "" {
		v, err := strconv.ParseInt(l, 10, 64)
		if err != nil {
			return 0, 0, false
		}
		limit = v
	}

	return skip, limit, true
}
