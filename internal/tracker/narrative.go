package tracker

import (
	"fmt"
	"strings"
	"time"
)

// Narrative is the markdown document written for each check-in.
type Narrative struct {
	Period     string
	Date       time.Time
	Intro      string
	Text       string
	Entries    []Entry
	Reflection string
	Review     string
}

// Markdown renders the document.
func (n Narrative) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Check-in %s\n\n", n.Period)
	fmt.Fprintf(&b, "**Date:** %s\n\n", n.Date.Format("2006-01-02 15:04"))
	if intro := strings.TrimSpace(n.Intro); intro != "" {
		b.WriteString(intro + "\n\n")
	}

	b.WriteString("## Goal Updates\n\n")
	if n.Text != "" {
		b.WriteString("**Note:** started from a free-text update.\n")
		fmt.Fprintf(&b, "> *\"%s\"*\n\n", n.Text)
	}
	for _, e := range n.Entries {
		fmt.Fprintf(&b, "### %s (%s)\n", e.Title, e.Category)
		fmt.Fprintf(&b, "- **Progress:** %d%% -> %d%% (%s)\n", e.OldPercent, e.NewPercent, signedPercent(e.Delta()))
		comment := e.Comment
		if comment == "" {
			comment = "-"
		}
		fmt.Fprintf(&b, "- **Comment:** %s\n\n", comment)
	}

	if n.Reflection != "" {
		b.WriteString("## Reflection\n")
		b.WriteString(n.Reflection + "\n\n")
	}
	if review := strings.TrimSpace(n.Review); review != "" {
		b.WriteString("## Summary\n")
		b.WriteString(review + "\n")
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

// signedPercent formats a delta with an explicit sign; zero reads "+0%".
func signedPercent(d int) string {
	if d >= 0 {
		return fmt.Sprintf("+%d%%", d)
	}
	return fmt.Sprintf("%d%%", d)
}
