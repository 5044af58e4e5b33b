package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/FullMetalEd/fm-dicom/cmd/fmdicom/internal/ui"
	"github.com/FullMetalEd/fm-dicom/internal/netsend"
)

// SendCmd transmits loaded files to a configured or ad-hoc destination via
// C-STORE, with automatic transcoding fallback for rejected encodings.
type SendCmd struct {
	Path        string        `arg:"" type:"path" help:"DICOM file, directory, or ZIP archive to send"`
	Destination string        `name:"destination" help:"Label of a destination from the configuration file's destinations list"`
	Host        string        `name:"host" help:"Remote host (overrides --destination)"`
	Port        int           `name:"port" help:"Remote port (overrides --destination)"`
	CalledAE    string        `name:"called-ae" help:"Called AE title (overrides --destination)"`
	Timeout     time.Duration `name:"timeout" default:"5m" help:"Overall send timeout"`
}

// Run executes the send command.
func (c *SendCmd) Run(rc *RunContext) error {
	ui.PrintBanner()

	paths, release, err := ResolveInput(rc.Stager, c.Path)
	if err != nil {
		return err
	}
	defer release()

	dest, err := c.resolveDestination(rc)
	if err != nil {
		return err
	}

	callingAE := rc.Settings.AETitle
	if dest.CallingAETitle != "" {
		callingAE = dest.CallingAETitle
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.Timeout)
	defer cancel()

	progress := ui.NewProgressBar(len(paths), "Sending")
	report, err := netsend.Send(ctx, dest, callingAE, paths, func(current, total int, message string) {
		progress.Update(current, message)
	})
	if err != nil {
		return fmt.Errorf("send: %w", err)
	}

	fmt.Println()
	if report.Cancelled {
		fmt.Println(ui.WarnStyle.Render("Send cancelled."))
	} else if report.Failed == 0 {
		fmt.Println(ui.SuccessStyle.Render("Send complete."))
	} else {
		fmt.Println(ui.WarnStyle.Render("Send completed with failures."))
	}
	fmt.Printf("  %s %s\n", ui.SubtleStyle.Render("Destination:"), ui.InfoStyle.Render(fmt.Sprintf("%s (%s:%d)", dest.Label, dest.Host, dest.Port)))
	fmt.Printf("  %s %s\n", ui.SubtleStyle.Render("Sent:"), ui.SuccessStyle.Render(fmt.Sprintf("%d", report.Success)))
	if report.Warnings > 0 {
		fmt.Printf("  %s %s\n", ui.SubtleStyle.Render("Warnings:"), ui.WarnStyle.Render(fmt.Sprintf("%d", report.Warnings)))
	}
	if report.ConvertedCount > 0 {
		fmt.Printf("  %s %s\n", ui.SubtleStyle.Render("Transcoded:"), ui.InfoStyle.Render(fmt.Sprintf("%d", report.ConvertedCount)))
	}
	if report.Failed > 0 {
		fmt.Printf("  %s %s\n", ui.SubtleStyle.Render("Failed:"), ui.ErrorStyle.Render(fmt.Sprintf("%d", report.Failed)))
		for _, detail := range report.ErrorDetails {
			rc.Logger.Error("Send failure", "detail", detail)
		}
	}

	if report.Failed > 0 {
		return fmt.Errorf("send completed with %d failures", report.Failed)
	}
	return nil
}

// resolveDestination builds a netsend.Destination from either a configured
// label (--destination) or explicit --host/--port/--called-ae overrides,
// which take precedence over the configured values when both are given.
func (c *SendCmd) resolveDestination(rc *RunContext) (netsend.Destination, error) {
	var dest netsend.Destination

	if c.Destination != "" {
		found := false
		for _, configured := range rc.Settings.Destinations {
			if configured.Label == c.Destination {
				dest = netsend.Destination{
					Label:          configured.Label,
					AETitle:        configured.AETitle,
					Host:           configured.Host,
					Port:           configured.Port,
					CallingAETitle: configured.CallingAETitle,
				}
				found = true
				break
			}
		}
		if !found {
			return netsend.Destination{}, fmt.Errorf("no configured destination named %q", c.Destination)
		}
	}

	if c.Host != "" {
		dest.Host = c.Host
		dest.Label = c.Host
	}
	if c.Port != 0 {
		dest.Port = c.Port
	}
	if c.CalledAE != "" {
		dest.AETitle = c.CalledAE
	}

	if dest.Host == "" || dest.Port == 0 || dest.AETitle == "" {
		return netsend.Destination{}, fmt.Errorf("destination incomplete: need host, port, and called AE title (via --destination or --host/--port/--called-ae)")
	}
	return dest, nil
}
