package ui

import "fmt"

// ProgressBar renders incremental status lines to stdout as progress
// updates arrive — there is no terminal redraw trickery here, just one
// line per update, matching the non-interactive nature of the CLI.
type ProgressBar struct {
	total int
	label string
}

// NewProgressBar starts reporting progress for a job with the given total
// unit count and a short label describing what's being processed.
func NewProgressBar(total int, label string) *ProgressBar {
	return &ProgressBar{total: total, label: label}
}

// Update reports that current of total units are done, with an optional
// per-unit message.
func (p *ProgressBar) Update(current int, message string) {
	if message != "" {
		fmt.Printf("%s [%d/%d] %s\n", p.label, current, p.total, message)
		return
	}
	fmt.Printf("%s [%d/%d]\n", p.label, current, p.total)
}

// Complete prints a final status line.
func (p *ProgressBar) Complete(message string) {
	fmt.Println(SuccessStyle.Render(message))
}
