// Package validation, sorgu oluşturucuya gelen tablo, kolon ve operatör girdilerini
// SQL metnine yazılmadan önce beyaz listeye göre doğrular.
//
// Değerler hiçbir zaman SQL metnine girmez (hepsi binding olarak gönderilir);
// metne giren tek kullanıcı girdisi tanımlayıcılar ve operatörlerdir, bu yüzden
// ikisi de burada denetlenir.
//
// @author Ahmet ALTUN
// @github github.com/biyonik
// @linkedin linkedin.com/in/biyonik
// @email ahmet.altun60@gmail.com
package validation

import (
	"regexp"
	"strings"
)

// MaxIdentifierLength, kabul edilen en uzun tanımlayıcı uzunluğudur.
const MaxIdentifierLength = 128

// identifierRegex: harf/alt çizgi ile başlar, harf, rakam, alt çizgi içerir.
// Tek bir nokta ile table.column biçimine izin verilir.
var identifierRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*(\.[a-zA-Z_][a-zA-Z0-9_]*)?$`)

// aliasRegex, "table as alias" veya "table alias" biçimlerini eşler.
var aliasRegex = regexp.MustCompile(`(?i)^([a-zA-Z_][a-zA-Z0-9_]*)\s+(?:as\s+)?([a-zA-Z_][a-zA-Z0-9_]*)$`)

// ValidateIdentifier, verilen değerin geçerli bir SQL tanımlayıcısı olup olmadığını kontrol eder.
func ValidateIdentifier(id string) error {
	if id == "" {
		return &IdentifierError{
			Identifier: id,
			Reason:     "identifier cannot be empty",
		}
	}

	if len(id) > MaxIdentifierLength {
		return &IdentifierError{
			Identifier: id,
			Reason:     "identifier exceeds maximum length of 128 characters",
		}
	}

	if !identifierRegex.MatchString(id) {
		return &IdentifierError{
			Identifier: id,
			Reason:     "identifier contains invalid characters; only letters, numbers, underscores, and dots are allowed",
		}
	}

	return nil
}

// ValidateTableWithAlias, alias içerebilen bir tablo referansını doğrular.
// Desteklenen biçimler: "table", "table alias", "table as alias".
func ValidateTableWithAlias(table string) (name, alias string, err error) {
	table = strings.TrimSpace(table)
	if table == "" {
		return "", "", &IdentifierError{
			Identifier: table,
			Reason:     "table name cannot be empty",
		}
	}

	if matches := aliasRegex.FindStringSubmatch(table); matches != nil {
		name, alias = matches[1], matches[2]

		if err := ValidateIdentifier(name); err != nil {
			return "", "", err
		}
		if err := ValidateIdentifier(alias); err != nil {
			return "", "", &IdentifierError{
				Identifier: alias,
				Reason:     "invalid alias: " + err.Error(),
			}
		}
		return name, alias, nil
	}

	if err := ValidateIdentifier(table); err != nil {
		return "", "", err
	}

	return table, "", nil
}

// SplitIdentifier, "table.column" referansını parçalarına ayırır.
// Doğrulama çağıran tarafın sorumluluğundadır.
func SplitIdentifier(id string) []string {
	return strings.Split(id, ".")
}

// IdentifierError, tanımlayıcı doğrulama hatasıdır.
type IdentifierError struct {
	Identifier string
	Reason     string
}

// Error, error arayüzünü uygular.
func (e *IdentifierError) Error() string {
	if e.Identifier == "" {
		return "fluentdb: invalid identifier: " + e.Reason
	}
	return "fluentdb: invalid identifier '" + e.Identifier + "': " + e.Reason
}
