// internal/hive/serial.go
//
// Serial-number sequence.
//
// Context
// -------
// Serial numbers are the human-facing hive identifier: a fixed prefix plus a
// zero-padded integer ("TO001", "TO002", …).  The next value is derived from
// the current maximum rather than a counter table, so NextSerial is a pure
// function over one queried string.  The result is a *suggestion*; the
// UNIQUE constraint on hive.serial_number is the only reservation, and the
// creation service retries with a fresh candidate when an insert collides.
//
// Width policy: the pad is fixed at three digits and the numeric part grows
// past it ("TO999" → "TO1000").  Repo.LastSerial orders by
// (LENGTH(serial_number), serial_number) so the max stays correct once the
// widths diverge.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package hive

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultSerialPrefix is used when the config leaves serial.prefix empty.
const DefaultSerialPrefix = "TO"

// serialPad is the minimum width of the numeric suffix.
const serialPad = 3

// NextSerial returns the candidate that follows last.  last is the current
// lexicographic-and-length maximum for the prefix, or "" when no record with
// the prefix exists yet.  An unparseable suffix restarts the sequence at 1.
func NextSerial(prefix, last string) string {
	next := 1
	if strings.HasPrefix(last, prefix) {
		if n, err := strconv.Atoi(last[len(prefix):]); err == nil && n > 0 {
			next = n + 1
		}
	}
	return fmt.Sprintf("%s%0*d", prefix, serialPad, next)
}
