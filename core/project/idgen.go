package project

import (
	"fmt"
	"strings"
	"time"
)

var NowFunc = time.Now // mockable

// BuildProjectID formats a human-readable project code from a sequence number
// and a creation date: D{DD}{MON}{YYYY}KZ{NNNN}, e.g. D02SEP2026KZ0013.
func BuildProjectID(seq int, now time.Time) string {
	return fmt.Sprintf("D%02d%s%dKZ%04d", now.Day(), strings.ToUpper(now.Format("Jan")), now.Year(), seq)
}
