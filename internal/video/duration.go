package video

import (
	"regexp"
	"strconv"
	"strings"
)

var isoDuration = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// ParseISODuration converts an ISO-8601 duration such as "PT1H2M3S" into
// seconds. Missing components count as zero; input that does not parse
// yields 0.
func ParseISODuration(s string) int {
	m := isoDuration.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0
	}
	part := func(i int) int {
		n, _ := strconv.Atoi(m[i])
		return n
	}
	return part(1)*86400 + part(2)*3600 + part(3)*60 + part(4)
}
