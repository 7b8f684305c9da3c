package handlers

import (
	"strings"

	"github.com/giygas/pharmainsight-api/lookup"
	"github.com/mattn/go-runewidth"
	"gopkg.in/yaml.v3"
)

// Output formats selected with ?format=
const (
	formatJSON = "json"
	formatText = "text"
	formatYAML = "yaml"
)

// textWidth is the column budget of the plain-text summary
const textWidth = 100

// RenderText renders the record as aligned, word-wrapped sections:
//
//	Identification
//	--------------
//	Brand name    Aspirin
//	Generic name  ASPIRIN
func RenderText(record *lookup.MedicineRecord) string {
	var b strings.Builder

	for i, section := range record.Sections() {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(section.Title)
		b.WriteByte('\n')
		b.WriteString(strings.Repeat("-", runewidth.StringWidth(section.Title)))
		b.WriteByte('\n')

		labelWidth := 0
		for _, field := range section.Fields {
			labelWidth = max(labelWidth, runewidth.StringWidth(field.Label))
		}
		valueWidth := max(textWidth-labelWidth-2, 20)
		indent := strings.Repeat(" ", labelWidth+2)

		for _, field := range section.Fields {
			lines := wrapWords(field.Value, valueWidth)
			b.WriteString(runewidth.FillRight(field.Label, labelWidth))
			b.WriteString("  ")
			b.WriteString(lines[0])
			b.WriteByte('\n')
			for _, line := range lines[1:] {
				b.WriteString(indent)
				b.WriteString(line)
				b.WriteByte('\n')
			}
		}
	}

	return b.String()
}

// wrapWords breaks s on whitespace into lines at most width cells wide.
// Words wider than width are split by cell. Always returns at least one line.
func wrapWords(s string, width int) []string {
	var lines []string
	var current strings.Builder
	currentWidth := 0

	flush := func() {
		if currentWidth > 0 {
			lines = append(lines, current.String())
			current.Reset()
			currentWidth = 0
		}
	}

	for _, word := range strings.Fields(s) {
		w := runewidth.StringWidth(word)

		if w > width {
			flush()
			lines = append(lines, strings.Split(runewidth.Wrap(word, width), "\n")...)
			continue
		}

		if currentWidth > 0 && currentWidth+1+w > width {
			flush()
		}
		if currentWidth > 0 {
			current.WriteByte(' ')
			currentWidth++
		}
		current.WriteString(word)
		currentWidth += w
	}
	flush()

	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}

// RenderYAML renders the record with the same keys as the JSON body
func RenderYAML(record *lookup.MedicineRecord) ([]byte, error) {
	return yaml.Marshal(record)
}
