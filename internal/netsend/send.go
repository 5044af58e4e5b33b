package netsend

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/FullMetalEd/fm-dicom/dicom"
	"github.com/FullMetalEd/fm-dicom/dicom/tag"
	"github.com/FullMetalEd/fm-dicom/dicom/uid"
	"github.com/FullMetalEd/fm-dicom/dimse/dul"
	"github.com/FullMetalEd/fm-dicom/dimse/scu"
)

const verificationSOPClassUID = "1.2.840.10008.1.1"

// Destination identifies a remote AE to send to.
type Destination struct {
	Label            string
	AETitle          string
	Host             string
	Port             int
	CallingAETitle   string
}

// SendReport is the final result of a Send run.
type SendReport struct {
	Success        int
	Warnings       int
	Failed         int
	ErrorDetails   []string
	ConvertedCount int
	Cancelled      bool
}

func (r *SendReport) addError(format string, args ...any) {
	r.ErrorDetails = append(r.ErrorDetails, fmt.Sprintf(format, args...))
}

// fileInfo is a single instance queued to send, resolved from disk once.
type fileInfo struct {
	path           string
	sopClassUID    string
	sopInstanceUID string
	transferSyntax string
}

// Send runs the two-phase compatibility-negotiating send over paths against
// dest, reporting progress via onProgress (may be nil). It stops after the
// current file if ctx is cancelled, releasing the association and removing
// any sidecars before returning.
func Send(ctx context.Context, dest Destination, callingAETitle string, paths []string, onProgress func(current, total int, message string)) (*SendReport, error) {
	report := &SendReport{}
	if len(paths) == 0 {
		return report, nil
	}

	files, skipped := resolveFiles(paths)
	for _, s := range skipped {
		report.Failed++
		report.addError("%s: %s", s.path, s.err)
	}
	if len(files) == 0 {
		return report, nil
	}

	sidecarDir, err := os.MkdirTemp("", "netsend-sidecars-*")
	if err != nil {
		return nil, fmt.Errorf("create sidecar dir: %w", err)
	}
	defer cleanupSidecars(sidecarDir)
	defer os.RemoveAll(sidecarDir)

	progress := func(current int, message string) {
		if onProgress != nil {
			onProgress(current, len(files), message)
		}
	}

	// Phase 1: compatibility test.
	client, accepted, err := associate(ctx, dest, callingAETitle, files)
	if err != nil {
		return nil, fmt.Errorf("associate: %w", err)
	}
	defer client.Close(ctx)

	var retryQueue []fileInfo
	for i, f := range files {
		if ctx.Err() != nil {
			report.Cancelled = true
			return report, nil
		}
		progress(i+1, f.path)

		if !accepted[contextKey(f.sopClassUID, f.transferSyntax)] {
			retryQueue = append(retryQueue, f)
			continue
		}

		ds, readErr := dicom.ParseFile(f.path)
		if readErr != nil {
			report.Failed++
			report.addError("%s: %s", f.path, readErr)
			continue
		}

		sendErr := client.Store(ctx, ds, f.sopClassUID, f.sopInstanceUID)
		classifyAndRecord(report, f.path, sendErr, &retryQueue, f)
	}

	if len(retryQueue) == 0 {
		return report, nil
	}

	// Phase 2: transcode & retry.
	decoder := passthroughDecoder{}
	for i, f := range retryQueue {
		if ctx.Err() != nil {
			report.Cancelled = true
			return report, nil
		}
		progress(i+1, "transcoding "+f.path)

		transcoded, tErr := transcodeToSidecar(decoder, f.path, sidecarDir)
		if tErr != nil {
			report.addError("%s: transcode failed (%s), falling back to original file", f.path, tErr)
			sendOriginalFallback(ctx, client, report, f)
			continue
		}

		ds, readErr := dicom.ParseFile(transcoded.SidecarPath)
		if readErr != nil {
			report.Failed++
			report.addError("%s: %s", f.path, readErr)
			continue
		}

		if !client.HasPresentationContext(transcoded.SOPClassUID) {
			report.Failed++
			report.addError("%s: no accepted presentation context after transcode", f.path)
			continue
		}

		sendErr := client.Store(ctx, ds, transcoded.SOPClassUID, transcoded.SOPInstanceUID)
		if sendErr != nil {
			report.Failed++
			report.addError("%s: %s", f.path, sendErr)
			continue
		}
		report.Success++
		report.ConvertedCount++
	}

	return report, nil
}

// sendOriginalFallback is the transcode-failure fallback: attempt to send
// f exactly as it was read from disk, in its original transfer syntax,
// rather than giving up on a file this package could not transcode. The
// remote may still accept it, or reject it with a classifiable status
// that's more informative than a bare "transcode failed" error.
func sendOriginalFallback(ctx context.Context, client *scu.Client, report *SendReport, f fileInfo) {
	ds, readErr := dicom.ParseFile(f.path)
	if readErr != nil {
		report.Failed++
		report.addError("%s: %s", f.path, readErr)
		return
	}

	sendErr := client.Store(ctx, ds, f.sopClassUID, f.sopInstanceUID)
	switch classifyError(sendErr) {
	case outcomeSuccess:
		report.Success++
	case outcomeWarning:
		report.Success++
		report.Warnings++
	default:
		report.Failed++
		report.addError("%s: %s", f.path, sendErr)
	}
}

func classifyAndRecord(report *SendReport, path string, sendErr error, retryQueue *[]fileInfo, f fileInfo) {
	switch classifyError(sendErr) {
	case outcomeSuccess:
		report.Success++
	case outcomeWarning:
		report.Success++
		report.Warnings++
	case outcomeFormatIncompatible:
		*retryQueue = append(*retryQueue, f)
	default:
		report.Failed++
		report.addError("%s: %s", path, sendErr)
	}
}

type skippedFile struct {
	path string
	err  error
}

func resolveFiles(paths []string) (files []fileInfo, skipped []skippedFile) {
	for _, p := range paths {
		ds, err := dicom.ParseFile(p)
		if err != nil {
			skipped = append(skipped, skippedFile{p, err})
			continue
		}

		sopClassElem, err := ds.Get(tag.SOPClassUID)
		if err != nil {
			skipped = append(skipped, skippedFile{p, fmt.Errorf("missing SOPClassUID")})
			continue
		}
		sopInstanceElem, err := ds.Get(tag.SOPInstanceUID)
		if err != nil {
			skipped = append(skipped, skippedFile{p, fmt.Errorf("missing SOPInstanceUID")})
			continue
		}

		ts := uid.ExplicitVRLittleEndian.String()
		if meta := ds.FileMetaInformation(); meta != nil {
			if tsElem, err := meta.Get(tag.TransferSyntaxUID); err == nil {
				ts = tsElem.Value().String()
			}
		}

		files = append(files, fileInfo{
			path:           p,
			sopClassUID:    sopClassElem.Value().String(),
			sopInstanceUID: sopInstanceElem.Value().String(),
			transferSyntax: ts,
		})
	}
	return files, skipped
}

// associate builds one presentation context per unique SOPClassUID in
// files plus Verification, connects, and returns the set of accepted
// (SOPClassUID, TransferSyntaxUID) pairs.
func associate(ctx context.Context, dest Destination, callingAETitle string, files []fileInfo) (*scu.Client, map[string]bool, error) {
	sopClasses := make(map[string][]string)
	for _, f := range files {
		sopClasses[f.sopClassUID] = appendUnique(sopClasses[f.sopClassUID], f.transferSyntax)
	}

	var uniqueSOPClasses []string
	for sc := range sopClasses {
		uniqueSOPClasses = append(uniqueSOPClasses, sc)
	}
	sort.Strings(uniqueSOPClasses)

	var contexts []dul.PresentationContextRQ
	nextID := uint8(1)
	contexts = append(contexts, dul.PresentationContextRQ{
		ID:               nextID,
		AbstractSyntax:   verificationSOPClassUID,
		TransferSyntaxes: []string{uid.ImplicitVRLittleEndian.String(), uid.ExplicitVRLittleEndian.String()},
	})
	nextID += 2

	for _, sc := range uniqueSOPClasses {
		contexts = append(contexts, dul.PresentationContextRQ{
			ID:               nextID,
			AbstractSyntax:   sc,
			TransferSyntaxes: appendUnique(sopClasses[sc], uid.ExplicitVRLittleEndian.String(), uid.ImplicitVRLittleEndian.String()),
		})
		nextID += 2
	}

	client := scu.NewClient(scu.Config{
		CallingAETitle:       callingAETitle,
		CalledAETitle:        dest.AETitle,
		RemoteAddr:           fmt.Sprintf("%s:%d", dest.Host, dest.Port),
		PresentationContexts: contexts,
	})

	if err := client.Connect(ctx); err != nil {
		return nil, nil, err
	}

	if err := client.Echo(ctx); err != nil {
		client.Close(ctx)
		return nil, nil, fmt.Errorf("verification failed: %w", err)
	}

	accepted := make(map[string]bool)
	for _, sc := range uniqueSOPClasses {
		pc, ok := client.PresentationContext(sc)
		if !ok {
			continue
		}
		accepted[contextKey(sc, pc.TransferSyntax)] = true
	}

	return client, accepted, nil
}

func contextKey(sopClassUID, transferSyntaxUID string) string {
	return sopClassUID + "|" + transferSyntaxUID
}

func appendUnique(existing []string, values ...string) []string {
	seen := make(map[string]bool, len(existing))
	for _, v := range existing {
		seen[v] = true
	}
	for _, v := range values {
		if !seen[v] {
			existing = append(existing, v)
			seen[v] = true
		}
	}
	return existing
}
