// Package orderspec, "created_at desc, name" biçimindeki kısa ORDER BY
// tanımlarını ayrıştırır.
package orderspec

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Direction, sıralama yönüdür.
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// Term, ayrıştırılmış tek bir sıralama ifadesidir.
type Term struct {
	Column    string
	Direction Direction
}

var orderLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Keyword", Pattern: `(?i)\b(asc|desc)\b`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Dot", Pattern: `\.`},
	{Name: "Comma", Pattern: `,`},
	{Name: "Whitespace", Pattern: `\s+`},
})

type rawList struct {
	Items []*rawItem `parser:"@@ ( \",\" @@ )*"`
}

type rawItem struct {
	Column    string `parser:"@Ident ( @\".\" @Ident )?"`
	Direction string `parser:"@Keyword?"`
}

var parser = participle.MustBuild[rawList](
	participle.Lexer(orderLexer),
	participle.Elide("Whitespace"),
)

// Parse, kısa sıralama tanımını terimlere çevirir. Boş tanım nil döner.
func Parse(spec string) ([]Term, error) {
	if strings.TrimSpace(spec) == "" {
		return nil, nil
	}

	raw, err := parser.ParseString("", spec)
	if err != nil {
		return nil, fmt.Errorf("fluentdb: invalid order spec %q: %w", spec, err)
	}

	terms := make([]Term, 0, len(raw.Items))
	for _, item := range raw.Items {
		dir := Asc
		if strings.EqualFold(item.Direction, string(Desc)) {
			dir = Desc
		}
		terms = append(terms, Term{Column: item.Column, Direction: dir})
	}
	return terms, nil
}
