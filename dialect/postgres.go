package dialect

import (
	"strconv"

	"github.com/lib/pq"
)

// Postgres, PostgreSQL grameridir.
//   - Tanımlayıcılar pq.QuoteIdentifier ile sarılır.
//   - Yer tutucular numaralıdır: $1, $2, ...
//   - OFFSET tek başına yazılabilir.
func Postgres() Grammar {
	return &BaseGrammar{
		name:         "postgres",
		quote:        pq.QuoteIdentifier,
		placeholder:  func(i int) string { return "$" + strconv.Itoa(i) },
		versionQuery: "SHOW server_version",
	}
}
