package finance

import (
	"html"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = "02.01.2006, 15:04"

// Money формат как в ru-RU: «1 050 000,00», от 2 до 3 знаков после запятой.
func Money(d decimal.Decimal) string {
	r := d.Round(3)
	s := r.Abs().StringFixed(3)
	intPart, frac, _ := strings.Cut(s, ".")
	frac = strings.TrimRight(frac, "0")
	for len(frac) < 2 {
		frac += "0"
	}

	var b strings.Builder
	if r.IsNegative() {
		b.WriteByte('-')
	}
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteString("\u00a0")
		}
		b.WriteRune(c)
	}
	b.WriteByte(',')
	b.WriteString(frac)
	return b.String()
}

// esc пользовательский текст в HTML-ответах.
func esc(s string) string { return html.EscapeString(s) }

func formatTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dateLayout)
}
