package commands

import (
	"fmt"

	"github.com/FullMetalEd/fm-dicom/cmd/fmdicom/internal/ui"
	"github.com/FullMetalEd/fm-dicom/internal/hierarchy"
)

// MergeCmd folds one or more secondary tree nodes into a primary node at a
// chosen level, rewriting the secondaries' identifying tags to match the
// primary. All nodes are resolved by UID (or PatientID, at patient level)
// against the tree built from Path.
type MergeCmd struct {
	Path    string   `arg:"" type:"path" help:"DICOM file, directory, or ZIP archive to load before merging"`
	Level   string   `name:"level" required:"" enum:"patient,study,series" help:"Tree level to merge at"`
	Primary string   `name:"primary" required:"" help:"Key (PatientID, StudyInstanceUID, or SeriesInstanceUID) of the node to keep"`
	With    []string `name:"with" required:"" help:"Key of a secondary node to fold into --primary; repeatable"`
}

// Run executes the merge command.
func (c *MergeCmd) Run(rc *RunContext) error {
	ui.PrintBanner()

	paths, release, err := ResolveInput(rc.Stager, c.Path)
	if err != nil {
		return err
	}
	defer release()

	build := hierarchy.Build(paths)
	for path, loadErr := range build.Failed {
		rc.Logger.Warn("Skipped unreadable file", "path", path, "error", loadErr)
	}

	var result *hierarchy.MergeResult
	switch c.Level {
	case "patient":
		result, err = c.mergePatients(build.Tree)
	case "study":
		result, err = c.mergeStudies(build.Tree)
	case "series":
		result, err = c.mergeSeries(build.Tree)
	default:
		return fmt.Errorf("unknown merge level %q", c.Level)
	}
	if err != nil {
		return fmt.Errorf("merge: %w", err)
	}

	fmt.Println()
	fmt.Println(ui.SuccessStyle.Render("Merge complete."))
	fmt.Printf("  %s %s\n", ui.SubtleStyle.Render("Files rewritten:"), ui.InfoStyle.Render(fmt.Sprintf("%d", len(result.RewrittenFiles))))
	if len(result.Warnings) > 0 {
		fmt.Printf("  %s %s\n", ui.SubtleStyle.Render("Warnings:"), ui.WarnStyle.Render(fmt.Sprintf("%d", len(result.Warnings))))
		for _, warning := range result.Warnings {
			rc.Logger.Warn("Merge warning", "detail", warning)
		}
	}

	return nil
}

func (c *MergeCmd) mergePatients(tree *hierarchy.Tree) (*hierarchy.MergeResult, error) {
	primary := tree.FindPatient(c.Primary)
	if primary == nil {
		return nil, fmt.Errorf("no patient found with key %q", c.Primary)
	}
	secondaries := make([]*hierarchy.Patient, 0, len(c.With))
	for _, key := range c.With {
		secondary := tree.FindPatient(key)
		if secondary == nil {
			return nil, fmt.Errorf("no patient found with key %q", key)
		}
		secondaries = append(secondaries, secondary)
	}
	return hierarchy.MergePatients(primary, secondaries)
}

func (c *MergeCmd) mergeStudies(tree *hierarchy.Tree) (*hierarchy.MergeResult, error) {
	primary := tree.FindStudy(c.Primary)
	if primary == nil {
		return nil, fmt.Errorf("no study found with StudyInstanceUID %q", c.Primary)
	}
	secondaries := make([]*hierarchy.Study, 0, len(c.With))
	for _, key := range c.With {
		secondary := tree.FindStudy(key)
		if secondary == nil {
			return nil, fmt.Errorf("no study found with StudyInstanceUID %q", key)
		}
		secondaries = append(secondaries, secondary)
	}
	return hierarchy.MergeStudies(primary, secondaries)
}

func (c *MergeCmd) mergeSeries(tree *hierarchy.Tree) (*hierarchy.MergeResult, error) {
	primary := tree.FindSeries(c.Primary)
	if primary == nil {
		return nil, fmt.Errorf("no series found with SeriesInstanceUID %q", c.Primary)
	}
	secondaries := make([]*hierarchy.Series, 0, len(c.With))
	for _, key := range c.With {
		secondary := tree.FindSeries(key)
		if secondary == nil {
			return nil, fmt.Errorf("no series found with SeriesInstanceUID %q", key)
		}
		secondaries = append(secondaries, secondary)
	}
	return hierarchy.MergeSeries(primary, secondaries)
}

// DeleteCmd removes instances from disk by path, then reports how many
// instances were deleted.
type DeleteCmd struct {
	Path  string   `arg:"" type:"path" help:"DICOM file, directory, or ZIP archive to load before deleting"`
	Files []string `name:"file" required:"" help:"Path of an instance to delete; repeatable"`
}

// Run executes the delete command.
func (c *DeleteCmd) Run(rc *RunContext) error {
	ui.PrintBanner()

	paths, release, err := ResolveInput(rc.Stager, c.Path)
	if err != nil {
		return err
	}
	defer release()

	known := make(map[string]bool, len(paths))
	for _, path := range paths {
		known[path] = true
	}
	for _, target := range c.Files {
		if !known[target] {
			return fmt.Errorf("%s was not among the files loaded from %s", target, c.Path)
		}
	}

	if err := hierarchy.DeleteInstances(c.Files); err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	fmt.Println()
	fmt.Printf("%s %s\n", ui.SuccessStyle.Render("Deleted:"), ui.InfoStyle.Render(fmt.Sprintf("%d instances", len(c.Files))))
	return nil
}
