package formatter

import (
	"fmt"
	"strings"

	"github.com/kataras/figma-keytheme/pkg/separator"
)

// ToMarkdown renders the separated table as a markdown document with a title line
// and a pipe table. Empty cells stay blank so the preview matches the CSV.
func ToMarkdown(table *separator.Table, title string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Keyboard Themes - %s\n\n", title))
	sb.WriteString(fmt.Sprintf("%d key(s) across %d theme(s).\n\n", len(table.Rows), len(table.Themes)))

	records := table.Records()
	writeMarkdownRow(&sb, records[0])

	sb.WriteString("|")
	for range records[0] {
		sb.WriteString(" --- |")
	}
	sb.WriteString("\n")

	for _, rec := range records[1:] {
		writeMarkdownRow(&sb, rec)
	}

	return sb.String()
}

func writeMarkdownRow(sb *strings.Builder, cells []string) {
	sb.WriteString("|")
	for _, c := range cells {
		sb.WriteString(" ")
		sb.WriteString(escapeMarkdownCell(c))
		sb.WriteString(" |")
	}
	sb.WriteString("\n")
}

func escapeMarkdownCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
