package utils

import (
	"fmt"
	"html"
	"strconv"
	"strings"
)

// FormatRupiah renders an integer amount as "Rp1.234.567".
func FormatRupiah(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	digits := strconv.FormatInt(amount, 10)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}
	return fmt.Sprintf("%sRp%s", sign, b.String())
}

// RenderMarkup converts the lightweight markup used in product
// descriptions into HTML. Supported: **bold**, *italic*, "- " list items
// and blank-line separated paragraphs. Input is escaped before any tag is
// emitted.
func RenderMarkup(src string) string {
	lines := strings.Split(strings.ReplaceAll(src, "\r\n", "\n"), "\n")

	var out strings.Builder
	var paragraph []string
	inList := false

	flushParagraph := func() {
		if len(paragraph) == 0 {
			return
		}
		out.WriteString("<p>")
		out.WriteString(renderInline(strings.Join(paragraph, "<br>")))
		out.WriteString("</p>")
		paragraph = nil
	}
	closeList := func() {
		if inList {
			out.WriteString("</ul>")
			inList = false
		}
	}

	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		switch {
		case line == "":
			flushParagraph()
			closeList()
		case strings.HasPrefix(line, "- "):
			flushParagraph()
			if !inList {
				out.WriteString("<ul>")
				inList = true
			}
			out.WriteString("<li>")
			out.WriteString(renderInline(html.EscapeString(strings.TrimPrefix(line, "- "))))
			out.WriteString("</li>")
		default:
			closeList()
			paragraph = append(paragraph, html.EscapeString(line))
		}
	}
	flushParagraph()
	closeList()

	return out.String()
}

// renderInline replaces **bold** and *italic* spans. Markers without a
// closing pair are left as-is.
func renderInline(s string) string {
	s = replacePaired(s, "**", "<strong>", "</strong>")
	s = replacePaired(s, "*", "<em>", "</em>")
	return s
}

func replacePaired(s, marker, open, close string) string {
	var b strings.Builder
	for {
		start := strings.Index(s, marker)
		if start < 0 {
			break
		}
		rest := s[start+len(marker):]
		end := strings.Index(rest, marker)
		if end < 0 {
			break
		}
		b.WriteString(s[:start])
		b.WriteString(open)
		b.WriteString(rest[:end])
		b.WriteString(close)
		s = rest[end+len(marker):]
	}
	b.WriteString(s)
	return b.String()
}
