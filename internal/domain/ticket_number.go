package domain

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// TicketNumberPrefix is printed on every customer receipt.
const TicketNumberPrefix = "MUZ-"

// TicketNumberGenerator produces business-facing ticket identifiers.
type TicketNumberGenerator func() string

// NewTicketNumber returns a MUZ- code with four digits in 1000..9999.
func NewTicketNumber() string {
	return fmt.Sprintf("%s%d", TicketNumberPrefix, 1000+rand.IntN(9000))
}

// NormalizeTicketNumber trims and upper-cases user input so lookups are case-insensitive.
func NormalizeTicketNumber(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}
