package commands

import (
	"fmt"

	"github.com/FullMetalEd/fm-dicom/cmd/fmdicom/internal/ui"
	"github.com/FullMetalEd/fm-dicom/internal/validate"
	"github.com/alexeyco/simpletable"
)

// ValidateCmd runs per-file and cross-collection compliance checks.
type ValidateCmd struct {
	Path       string `arg:"" type:"path" help:"DICOM file, directory, or ZIP archive to validate"`
	FailOnWarn bool   `name:"fail-on-warn" help:"Exit non-zero if any WARNING issue is found, not just ERROR"`
}

// Run executes the validate command.
func (c *ValidateCmd) Run(rc *RunContext) error {
	ui.PrintBanner()

	paths, release, err := ResolveInput(rc.Stager, c.Path)
	if err != nil {
		return err
	}
	defer release()

	rc.Logger.Info("Validating files", "count", len(paths))
	result := validate.ValidateCollection(paths)

	printIssuesTable(result)

	fmt.Println()
	fmt.Printf("  %s %s\n", ui.SubtleStyle.Render("Files:"), ui.InfoStyle.Render(fmt.Sprintf("%d", len(result.PerFile))))
	fmt.Printf("  %s %s\n", ui.SubtleStyle.Render("Patients / Studies / Series:"), ui.InfoStyle.Render(fmt.Sprintf("%d / %d / %d", result.Stats.UniquePatients, result.Stats.UniqueStudies, result.Stats.UniqueSeries)))

	hasErrors := false
	hasWarnings := false
	for _, fileResult := range result.PerFile {
		if fileResult.HasErrors() {
			hasErrors = true
		}
		for _, issue := range fileResult.Issues {
			if issue.Severity == validate.SeverityWarning {
				hasWarnings = true
			}
		}
	}
	for _, issue := range result.CollectionIssues {
		switch issue.Severity {
		case validate.SeverityError:
			hasErrors = true
		case validate.SeverityWarning:
			hasWarnings = true
		}
	}

	if hasErrors {
		return fmt.Errorf("validation found ERROR-severity issues")
	}
	if hasWarnings && c.FailOnWarn {
		return fmt.Errorf("validation found WARNING-severity issues (--fail-on-warn)")
	}
	return nil
}

func printIssuesTable(result *validate.CollectionResult) {
	table := simpletable.New()
	table.Header = &simpletable.Header{
		Cells: []*simpletable.Cell{
			{Text: "Severity"},
			{Text: "File"},
			{Text: "Category"},
			{Text: "Message"},
		},
	}

	for _, fileResult := range result.PerFile {
		for _, issue := range fileResult.Issues {
			table.Body.Cells = append(table.Body.Cells, issueRow(issue))
		}
	}
	for _, issue := range result.CollectionIssues {
		table.Body.Cells = append(table.Body.Cells, issueRow(issue))
	}

	if len(table.Body.Cells) == 0 {
		fmt.Println(ui.SuccessStyle.Render("No issues found."))
		return
	}

	table.SetStyle(simpletable.StyleCompactLite)
	fmt.Println(table.String())
}

func issueRow(issue validate.Issue) []*simpletable.Cell {
	severityText := string(issue.Severity)
	switch issue.Severity {
	case validate.SeverityError:
		severityText = ui.ErrorStyle.Render(severityText)
	case validate.SeverityWarning:
		severityText = ui.WarnStyle.Render(severityText)
	default:
		severityText = ui.InfoStyle.Render(severityText)
	}
	return []*simpletable.Cell{
		{Text: severityText},
		{Text: issue.FilePath},
		{Text: issue.Category},
		{Text: issue.Message},
	}
}
