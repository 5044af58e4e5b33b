package commands

import (
	"fmt"

	"github.com/FullMetalEd/fm-dicom/cmd/fmdicom/internal/ui"
	"github.com/FullMetalEd/fm-dicom/internal/hierarchy"
	"github.com/alexeyco/simpletable"
)

// TreeCmd loads a file, directory, or ZIP archive and prints the
// reconstructed Patient/Study/Series/Instance hierarchy.
type TreeCmd struct {
	Path string `arg:"" optional:"" type:"path" help:"DICOM file, directory, or ZIP archive to load"`
}

// Run executes the tree command.
func (c *TreeCmd) Run(rc *RunContext) error {
	ui.PrintBanner()

	if c.Path == "" {
		return fmt.Errorf("no path given — pass a DICOM file, directory, or ZIP archive")
	}

	paths, release, err := ResolveInput(rc.Stager, c.Path)
	if err != nil {
		return err
	}
	defer release()

	rc.Logger.Info("Loading hierarchy", "path", c.Path, "candidate_files", len(paths))

	build := hierarchy.Build(paths)
	for path, loadErr := range build.Failed {
		rc.Logger.Warn("Skipped unreadable file", "path", path, "error", loadErr)
	}

	printHierarchyTable(build.Tree)

	fmt.Println()
	fmt.Printf("  %s %s\n", ui.SubtleStyle.Render("Patients:"), ui.InfoStyle.Render(fmt.Sprintf("%d", len(build.Tree.Patients))))
	total := countInstances(build.Tree)
	fmt.Printf("  %s %s\n", ui.SubtleStyle.Render("Instances loaded:"), ui.InfoStyle.Render(fmt.Sprintf("%d", total)))
	if len(build.Failed) > 0 {
		fmt.Printf("  %s %s\n", ui.SubtleStyle.Render("Skipped:"), ui.WarnStyle.Render(fmt.Sprintf("%d", len(build.Failed))))
	}

	return nil
}

func countInstances(tree *hierarchy.Tree) int {
	total := 0
	for _, patient := range tree.Patients {
		for _, study := range patient.Studies {
			for _, series := range study.Series {
				total += len(series.Instances)
			}
		}
	}
	return total
}

func printHierarchyTable(tree *hierarchy.Tree) {
	table := simpletable.New()
	table.Header = &simpletable.Header{
		Cells: []*simpletable.Cell{
			{Align: simpletable.AlignCenter, Text: "Patient"},
			{Align: simpletable.AlignCenter, Text: "Study"},
			{Align: simpletable.AlignCenter, Text: "Series"},
			{Align: simpletable.AlignCenter, Text: "Modality"},
			{Align: simpletable.AlignCenter, Text: "Instances"},
		},
	}

	for _, patient := range tree.Patients {
		for _, study := range patient.Studies {
			for _, series := range study.Series {
				table.Body.Cells = append(table.Body.Cells, []*simpletable.Cell{
					{Text: patientLabel(patient)},
					{Text: studyLabel(study)},
					{Text: series.SeriesDescription},
					{Text: series.Modality},
					{Align: simpletable.AlignRight, Text: fmt.Sprintf("%d", len(series.Instances))},
				})
			}
		}
	}

	table.SetStyle(simpletable.StyleCompactLite)
	fmt.Println(table.String())
}

func patientLabel(p *hierarchy.Patient) string {
	if p.PatientName != "" {
		return fmt.Sprintf("%s (%s)", p.PatientName, p.PatientID)
	}
	return p.PatientID
}

func studyLabel(s *hierarchy.Study) string {
	if s.StudyDescription != "" {
		return fmt.Sprintf("%s — %s", s.StudyDate, s.StudyDescription)
	}
	return s.StudyDate
}
