package parser

import "strings"

// RawLine is one non-blank, trimmed line of OCR output. Index is the
// position among the kept lines and is the only ordering key downstream.
type RawLine struct {
	Index int
	Text  string
}

// Segment splits raw OCR text into trimmed, non-blank lines.
func Segment(text string) []RawLine {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var lines []RawLine
	for _, l := range strings.Split(text, "\n") {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		lines = append(lines, RawLine{Index: len(lines), Text: l})
	}
	return lines
}
