package boxid

import (
	"strconv"
	"strings"
)

const Separator = "-"

// SerialWidth is the number of trailing characters that make up the serial
// part of a box identifier, e.g. "ITEM-20240101-01-0007" -> "0007".
const SerialWidth = 4

// PrefixOf returns everything up to and including the last separator of id.
// Identifiers without a separator are returned unchanged.
func PrefixOf(id string) string {
	idx := strings.LastIndex(id, Separator)
	if idx < 0 {
		return id
	}

	return id[:idx+1]
}

// SerialOf returns the trailing serial characters of id. The result is not
// guaranteed to be numeric; it is also used as a display field.
func SerialOf(id string) string {
	if len(id) <= SerialWidth {
		return id
	}

	return id[len(id)-SerialWidth:]
}

// SerialNumber parses the trailing serial of id as an integer. The second
// return value reports whether the serial was numeric.
func SerialNumber(id string) (int, bool) {
	n, err := strconv.Atoi(SerialOf(id))
	if err != nil {
		return 0, false
	}

	return n, true
}
