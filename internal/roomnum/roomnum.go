package roomnum

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var labelRe = regexp.MustCompile(`^([^0-9]*)([0-9]+)$`)

const defaultPrefix = "R"

// Next derives the next sequential room label from the labels already in use
// within a hostel. A label is a non-digit prefix followed by digits ("R001");
// anything that does not parse is ignored. The result is the prefix of the
// highest-numbered label followed by max+1, zero-padded to three digits. An
// empty or fully non-numeric set starts at R001.
func Next(labels []string) string {
	prefix := defaultPrefix
	max := 0
	for _, label := range labels {
		m := labelRe.FindStringSubmatch(strings.TrimSpace(label))
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		if n > max {
			max = n
			if m[1] != "" {
				prefix = m[1]
			}
		}
	}
	return fmt.Sprintf("%s%03d", prefix, max+1)
}
