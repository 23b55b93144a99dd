package command

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// числовой префикс строки, как его понимает parseFloat
var numberPrefix = regexp.MustCompile(`^([+-]?)(\d+(?:\.\d*)?|\.\d+)(?:[eE]([+-]?\d+))?`)

const maxExponentDigits = 2

// ParseAmount понимает «1000», «1000.50», «1 000», «1 000,50».
// Пробелы выкидываются, первая запятая становится точкой, дальше берётся
// самый длинный числовой префикс. ok == false, если числа нет.
func ParseAmount(s string) (decimal.Decimal, bool) {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	cleaned = strings.Replace(cleaned, ",", ".", 1)

	m := numberPrefix.FindStringSubmatch(cleaned)
	if m == nil {
		return decimal.Decimal{}, false
	}
	sign, body, exp := m[1], m[2], m[3]
	if strings.HasPrefix(body, ".") {
		body = "0" + body
	}
	body = strings.TrimSuffix(body, ".")
	if sign == "+" {
		sign = ""
	}
	num := sign + body
	if exp != "" {
		digits := strings.TrimLeft(strings.TrimLeft(exp, "+-"), "0")
		if len(digits) > maxExponentDigits || (len(digits) == maxExponentDigits && digits > "18") {
			return decimal.Decimal{}, false
		}
		num += "e" + exp
	}

	d, err := decimal.NewFromString(num)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}
