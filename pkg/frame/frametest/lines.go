// Package frametest builds charger lines for tests.
package frametest

import (
	"fmt"
	"strings"
)

// Slot returns the reference slot window with its id set to id.
func Slot(id int) []string {
	return []string{fmt.Sprint(id), "3", "C", "13200", "500", "0", "0", "120", "0", "1600", "15"}
}

// Line joins slot windows the way the charger sends them, terminator included.
func Line(slots ...[]string) string {
	var fields []string
	for _, s := range slots {
		fields = append(fields, s...)
	}
	return strings.Join(fields, ";") + ";\n\r"
}

// ValidLine is four reference slots with ids 1 to 4.
func ValidLine() string {
	return Line(Slot(1), Slot(2), Slot(3), Slot(4))
}
