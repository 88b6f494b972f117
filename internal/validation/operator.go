package validation

import "strings"

// allowedOperators, WHERE koşullarında kullanılabilecek operatörlerdir.
var allowedOperators = map[string]bool{
	"=":  true,
	"!=": true,
	"<>": true,
	"<":  true,
	">":  true,
	"<=": true,
	">=": true,

	"LIKE":     true,
	"NOT LIKE": true,

	"IN":     true,
	"NOT IN": true,
}

// ValidateOperator, operatörün izin verilen listede olup olmadığını kontrol eder.
func ValidateOperator(op string) error {
	_, err := NormalizeOperator(op)
	return err
}

// NormalizeOperator, operatörü büyük harfe çevirir, baş/son boşlukları ve
// iç kısımdaki fazla boşlukları temizler. Geçersiz operatörde hata döner.
func NormalizeOperator(op string) (string, error) {
	normalized := strings.ToUpper(strings.Join(strings.Fields(op), " "))

	if !allowedOperators[normalized] {
		return "", &OperatorError{
			Operator: op,
			Reason:   "operator not in allowed list",
		}
	}

	return normalized, nil
}

// IsSetOperator, operatörün değer listesi bekleyip beklemediğini (IN / NOT IN) döndürür.
func IsSetOperator(op string) bool {
	normalized := strings.ToUpper(strings.Join(strings.Fields(op), " "))
	return normalized == "IN" || normalized == "NOT IN"
}

// OperatorError, operatör doğrulama hatasıdır.
type OperatorError struct {
	Operator string
	Reason   string
}

// Error, error arayüzünü uygular.
func (e *OperatorError) Error() string {
	return "fluentdb: invalid operator '" + e.Operator + "': " + e.Reason
}
