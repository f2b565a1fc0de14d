package fulfillment

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

type randomIDs struct {
	now func() time.Time
}

// NewIDGenerator returns ids of the form PREFIX-<unix millis>-<8 hex chars>.
func NewIDGenerator() IDGenerator {
	return randomIDs{now: time.Now}
}

func (g randomIDs) OrderID() string       { return g.next("ORD") }
func (g randomIDs) TransactionID() string { return g.next("TXN") }

func (g randomIDs) next(prefix string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return prefix + "-" + strconv.FormatInt(g.now().UnixMilli(), 10) + "-" + suffix
}
