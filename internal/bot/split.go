package bot

import (
	"strings"
	"unicode/utf16"
)

// предел Telegram на длину сообщения, в единицах UTF-16
const maxMessageLen = 4096

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// cutUTF16 первые limit единиц UTF-16 и остаток, не разрывая руны.
func cutUTF16(s string, limit int) (string, string) {
	n := 0
	for i, r := range s {
		l := utf16.RuneLen(r)
		if n+l > limit {
			return s[:i], s[i:]
		}
		n += l
	}
	return s, ""
}

// splitText режет текст на куски не длиннее limit по границам строк.
// Строка длиннее limit режется посимвольно.
func splitText(text string, limit int) []string {
	if utf16Len(text) <= limit {
		return []string{text}
	}

	var (
		parts  []string
		cur    strings.Builder
		curLen int
	)
	flush := func() {
		if part := strings.TrimRight(cur.String(), "\n"); part != "" {
			parts = append(parts, part)
		}
		cur.Reset()
		curLen = 0
	}
	for _, line := range strings.SplitAfter(text, "\n") {
		n := utf16Len(line)
		if curLen+n > limit {
			flush()
		}
		for n > limit {
			head, rest := cutUTF16(line, limit)
			cur.WriteString(head)
			flush()
			line, n = rest, utf16Len(rest)
		}
		cur.WriteString(line)
		curLen += n
	}
	flush()
	return parts
}
