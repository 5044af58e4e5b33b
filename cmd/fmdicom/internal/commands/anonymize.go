package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/FullMetalEd/fm-dicom/cmd/fmdicom/internal/ui"
	"github.com/FullMetalEd/fm-dicom/dicom/anonymize"
	"github.com/FullMetalEd/fm-dicom/internal/config"
	"github.com/FullMetalEd/fm-dicom/internal/export"
	"github.com/FullMetalEd/fm-dicom/internal/templatestore"
)

// AnonymizeCmd runs a named anonymization template over a copy of the
// loaded files, leaving the originals untouched.
type AnonymizeCmd struct {
	Path     string `arg:"" type:"path" help:"DICOM file, directory, or ZIP archive to anonymize"`
	Template string `name:"template" required:"" help:"Template name — one of the four built-ins, or a custom template from the template store"`
	Out      string `name:"out" type:"path" required:"" help:"Directory to receive anonymized copies; originals are never modified"`
}

// Run executes the anonymize command.
func (c *AnonymizeCmd) Run(rc *RunContext) error {
	ui.PrintBanner()

	paths, release, err := ResolveInput(rc.Stager, c.Path)
	if err != nil {
		return err
	}
	defer release()

	configDir, err := config.Dir()
	if err != nil {
		return fmt.Errorf("resolve config directory: %w", err)
	}
	store, err := templatestore.Load(templatestore.Path(configDir))
	if err != nil {
		return fmt.Errorf("load template store: %w", err)
	}

	tmpl := store.Find(c.Template)
	if tmpl == nil {
		return fmt.Errorf("unknown anonymization template %q", c.Template)
	}

	rc.Logger.Info("Copying files before anonymization", "count", len(paths), "dest", c.Out)
	copyResult, err := export.Export(nil, paths, c.Out, export.FlatCopy)
	if err != nil {
		return fmt.Errorf("stage copies for anonymization: %w", err)
	}
	for path, copyErr := range copyResult.Skipped {
		rc.Logger.Warn("Skipped file before anonymization", "path", path, "error", copyErr)
	}

	destPaths, err := listRegularFiles(c.Out)
	if err != nil {
		return err
	}

	anonymizer := anonymize.New(tmpl, anonymize.NewUIDMap())
	result := anonymizer.Run(destPaths)

	fmt.Println()
	fmt.Printf("  %s %s\n", ui.SubtleStyle.Render("Template:"), ui.InfoStyle.Render(tmpl.Name))
	fmt.Printf("  %s %s\n", ui.SubtleStyle.Render("Anonymized:"), ui.SuccessStyle.Render(fmt.Sprintf("%d", len(result.Succeeded))))
	if len(result.Skipped) > 0 {
		fmt.Printf("  %s %s\n", ui.SubtleStyle.Render("Skipped (not DICOM):"), ui.WarnStyle.Render(fmt.Sprintf("%d", len(result.Skipped))))
	}
	if len(result.Failed) > 0 {
		fmt.Printf("  %s %s\n", ui.SubtleStyle.Render("Failed:"), ui.ErrorStyle.Render(fmt.Sprintf("%d", len(result.Failed))))
		for path, failErr := range result.Failed {
			rc.Logger.Error("Anonymization failed", "path", path, "error", failErr)
		}
	}
	fmt.Printf("  %s %s\n", ui.SubtleStyle.Render("UIDs remapped:"), ui.InfoStyle.Render(fmt.Sprintf("%d", len(result.UIDMap))))
	fmt.Printf("  %s %s\n", ui.SubtleStyle.Render("Duration:"), ui.InfoStyle.Render(result.Duration.String()))

	if len(result.Failed) > 0 {
		return fmt.Errorf("anonymization completed with %d failures", len(result.Failed))
	}
	return nil
}

func listRegularFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	var paths []string
	for _, entry := range entries {
		if !entry.IsDir() {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	return paths, nil
}
