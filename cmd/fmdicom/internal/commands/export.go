package commands

import (
	"fmt"

	"github.com/FullMetalEd/fm-dicom/cmd/fmdicom/internal/ui"
	"github.com/FullMetalEd/fm-dicom/internal/export"
	"github.com/FullMetalEd/fm-dicom/internal/hierarchy"
)

// ExportCmd writes loaded files out as a flat directory copy, a plain
// ZIP, or a ZIP containing the standard DICOM/PATnnnnn File-set tree plus
// a DICOMDIR at its root.
type ExportCmd struct {
	Path    string `arg:"" type:"path" help:"DICOM file, directory, or ZIP archive to export"`
	Out     string `name:"out" type:"path" required:"" help:"Destination directory (flat variant) or archive file (zip variants)"`
	Variant string `name:"variant" default:"flat" enum:"flat,zip,zip-dicomdir" help:"Export layout: flat, zip, or zip-dicomdir"`
}

// Run executes the export command.
func (c *ExportCmd) Run(rc *RunContext) error {
	ui.PrintBanner()

	paths, release, err := ResolveInput(rc.Stager, c.Path)
	if err != nil {
		return err
	}
	defer release()

	var variant export.Variant
	var tree *hierarchy.Tree

	switch c.Variant {
	case "flat":
		variant = export.FlatCopy
	case "zip":
		variant = export.PlainZip
	case "zip-dicomdir":
		variant = export.ZipWithDicomdir
		build := hierarchy.Build(paths)
		for path, loadErr := range build.Failed {
			rc.Logger.Warn("Skipped unreadable file", "path", path, "error", loadErr)
		}
		tree = build.Tree
	default:
		return fmt.Errorf("unknown export variant %q", c.Variant)
	}

	rc.Logger.Info("Exporting files", "count", len(paths), "variant", c.Variant, "dest", c.Out)
	result, err := export.Export(tree, paths, c.Out, variant)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	fmt.Println()
	fmt.Printf("  %s %s\n", ui.SubtleStyle.Render("Destination:"), ui.InfoStyle.Render(result.DestPath))
	fmt.Printf("  %s %s\n", ui.SubtleStyle.Render("Written:"), ui.SuccessStyle.Render(fmt.Sprintf("%d", result.Written)))
	if len(result.Skipped) > 0 {
		fmt.Printf("  %s %s\n", ui.SubtleStyle.Render("Skipped:"), ui.WarnStyle.Render(fmt.Sprintf("%d", len(result.Skipped))))
		for path, skipErr := range result.Skipped {
			rc.Logger.Warn("Skipped file during export", "path", path, "error", skipErr)
		}
	}

	return nil
}
