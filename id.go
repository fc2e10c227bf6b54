package tracker

import (
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var idMu sync.Mutex
var idEntropy = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)

// NewTransactionID returns a new sortable unique id. Ids created in the same
// millisecond still sort in creation order.
func NewTransactionID() string {
	idMu.Lock()
	defer idMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), idEntropy).String()
}
