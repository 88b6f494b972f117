package dialect

import "strings"

// SQLite, SQLite grameridir. OFFSET tek başına yazılamadığı için LIMIT -1 eklenir.
func SQLite() Grammar {
	return &BaseGrammar{
		name: "sqlite",
		quote: func(part string) string {
			return `"` + strings.ReplaceAll(part, `"`, `""`) + `"`
		},
		placeholder:     questionMark,
		offsetOnlyLimit: "-1",
		versionQuery:    "SELECT sqlite_version()",
	}
}
