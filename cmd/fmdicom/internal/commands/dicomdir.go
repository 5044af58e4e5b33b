package commands

import (
	"fmt"

	"github.com/FullMetalEd/fm-dicom/cmd/fmdicom/internal/ui"
	"github.com/FullMetalEd/fm-dicom/internal/dicomdir"
	"github.com/FullMetalEd/fm-dicom/internal/hierarchy"
)

// DicomdirCmd builds a standard PS3.10 media storage File-set from the
// loaded files.
type DicomdirCmd struct {
	Path      string `arg:"" type:"path" help:"DICOM file, directory, or ZIP archive to build a File-set from"`
	Out       string `name:"out" type:"path" required:"" help:"Destination directory for the File-set"`
	FileSetID string `name:"file-set-id" default:"DICOM_EXPORT" help:"File-set label written to DICOMDIR"`
}

// Run executes the dicomdir command.
func (c *DicomdirCmd) Run(rc *RunContext) error {
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
	if len(build.Tree.Patients) == 0 {
		return fmt.Errorf("no readable DICOM files found under %s", c.Path)
	}

	result, err := dicomdir.BuildFileSet(build.Tree, c.Out, c.FileSetID)
	if err != nil {
		return fmt.Errorf("build File-set: %w", err)
	}

	fmt.Println()
	fmt.Printf("  %s %s\n", ui.SubtleStyle.Render("File-set ID:"), ui.InfoStyle.Render(result.FileSetID))
	fmt.Printf("  %s %s\n", ui.SubtleStyle.Render("DICOMDIR:"), ui.InfoStyle.Render(result.DicomdirPath))
	fmt.Printf("  %s %s\n", ui.SubtleStyle.Render("Instances copied:"), ui.SuccessStyle.Render(fmt.Sprintf("%d", len(result.CopiedFiles))))

	return nil
}
