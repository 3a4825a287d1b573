// Package price turns free-form price text into whole dollar amounts.
package price

import (
	"regexp"
	"strconv"
	"strings"
)

// digitRun matches the first digit run, allowing comma thousands separators.
var digitRun = regexp.MustCompile(`\d[\d,]*`)

// ToInteger returns the first number in text, ignoring any currency symbol or
// unit decoration ("$2,450/mo" -> 2450). ok is false when no usable number exists.
func ToInteger(text string) (amount int, ok bool) {
	match := digitRun.FindString(text)
	if match == "" {
		return 0, false
	}

	n, err := strconv.Atoi(strings.ReplaceAll(match, ",", ""))
	if err != nil {
		return 0, false
	}
	return n, true
}
