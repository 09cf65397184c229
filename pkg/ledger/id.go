package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Prefixes for generated transaction ids. Member dues land as TRX, admin
// expenses as EXP.
const (
	PrefixPayment = "TRX"
	PrefixExpense = "EXP"
)

// NewTransactionID builds an opaque ledger id: prefix + millisecond timestamp
// + 6 random hex chars. The timestamp keeps ids roughly sortable; the random
// tail guards against two submissions in the same millisecond. The unique
// index on transactions.transaction_id is the final arbiter.
func NewTransactionID(prefix string) string {
	tail := strings.ToUpper(uuid.NewString()[:6])
	return fmt.Sprintf("%s%d%s", prefix, time.Now().UnixMilli(), tail)
}
