package dialect

import "strings"

// MySQL, MySQL/MariaDB grameridir.
//   - Tanımlayıcılar backtick ile sarılır: `users`.`name`
//   - Yer tutucu: ?
//   - LIMIT olmadan OFFSET yazılamaz; en büyük unsigned BIGINT kullanılır.
//   - String literallerinde \ kaçış karakteridir.
func MySQL() Grammar {
	return &BaseGrammar{
		name: "mysql",
		quote: func(part string) string {
			return "`" + strings.ReplaceAll(part, "`", "``") + "`"
		},
		placeholder:      questionMark,
		offsetOnlyLimit:  "18446744073709551615",
		backslashEscapes: true,
		versionQuery:     "SELECT VERSION()",
	}
}

func questionMark(int) string {
	return "?"
}
