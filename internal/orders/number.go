package orders

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const orderNumberPrefix = "ORD"

// GenerateOrderNumber returns ORD-YYYYMMDD-XXXXXX with six random uppercase
// hex characters.
func GenerateOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return orderNumberPrefix + "-" + now.UTC().Format("20060102") + "-" + suffix
}
