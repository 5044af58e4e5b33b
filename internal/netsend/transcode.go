package netsend

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/FullMetalEd/fm-dicom/dicom"
	"github.com/FullMetalEd/fm-dicom/dicom/element"
	"github.com/FullMetalEd/fm-dicom/dicom/tag"
	"github.com/FullMetalEd/fm-dicom/dicom/uid"
	"github.com/FullMetalEd/fm-dicom/dicom/value"
	"github.com/FullMetalEd/fm-dicom/dicom/vr"
)

// ErrCodecUnavailable is returned when a file's pixel data is encoded in a
// compressed transfer syntax for which no pixel decoder is registered —
// the transcode step cannot honestly produce uncompressed pixel bytes, so
// the file is reported as a hard transcode failure rather than written
// with corrupt pixel data.
var ErrCodecUnavailable = errors.New("no pixel decoder available for this transfer syntax")

// pixelDecoder produces uncompressed pixel bytes for a dataset's encoded
// PixelData element. The engine ships one implementation, passthroughDecoder,
// which only handles the degenerate "data is already raw samples" case;
// no JPEG/JPEG2000/JPEG-LS codec library is available anywhere in the
// example corpus this engine was grounded on (see DESIGN.md), so genuinely
// encoded pixel data is reported via ErrCodecUnavailable instead of
// silently mis-decoded.
type pixelDecoder interface {
	Decode(ds *dicom.DataSet) ([]byte, error)
}

type passthroughDecoder struct{}

func (passthroughDecoder) Decode(ds *dicom.DataSet) ([]byte, error) {
	elem, err := ds.Get(tag.PixelData)
	if err != nil {
		return nil, fmt.Errorf("no PixelData element: %w", err)
	}
	bytesVal, ok := elem.Value().(*value.BytesValue)
	if !ok {
		return nil, ErrCodecUnavailable
	}
	return bytesVal.Bytes(), nil
}

// transcodeResult is the outcome of rebuilding one file as an uncompressed
// sidecar.
type transcodeResult struct {
	SidecarPath string
	SOPClassUID string
	SOPInstanceUID string
}

// transcodeToSidecar reads sourcePath's full dataset, rebuilds it with
// PixelData in Explicit VR Little Endian and regenerated file-meta, writes
// the result to a temp file under sidecarDir, and validates it round-trips.
func transcodeToSidecar(decoder pixelDecoder, sourcePath, sidecarDir string) (*transcodeResult, error) {
	ds, err := dicom.ParseFile(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", sourcePath, err)
	}

	pixelBytes, err := decoder.Decode(ds)
	if err != nil {
		return nil, fmt.Errorf("decode pixel data: %w", err)
	}

	newPixelVal, err := value.NewBytesValue(vr.OtherByte, pixelBytes)
	if err != nil {
		return nil, err
	}
	newPixelElem, err := element.NewElement(tag.PixelData, vr.OtherByte, newPixelVal)
	if err != nil {
		return nil, err
	}
	if ds.Contains(tag.PixelData) {
		if err := ds.Remove(tag.PixelData); err != nil {
			return nil, err
		}
	}
	if err := ds.Add(newPixelElem); err != nil {
		return nil, err
	}

	sopClassElem, err := ds.Get(tag.SOPClassUID)
	if err != nil {
		return nil, fmt.Errorf("missing SOPClassUID: %w", err)
	}
	sopInstanceElem, err := ds.Get(tag.SOPInstanceUID)
	if err != nil {
		return nil, fmt.Errorf("missing SOPInstanceUID: %w", err)
	}

	if err := os.MkdirAll(sidecarDir, 0o755); err != nil {
		return nil, err
	}
	sidecarFile, err := os.CreateTemp(sidecarDir, "netsend-sidecar-*.dcm")
	if err != nil {
		return nil, err
	}
	sidecarPath := sidecarFile.Name()
	sidecarFile.Close()

	explicitVRLE := uid.ExplicitVRLittleEndian
	if err := dicom.WriteFileWithOptions(sidecarPath, ds, dicom.WriteOptions{
		TransferSyntax: &explicitVRLE,
		Overwrite:      true,
		Atomic:         true,
		ValidateAfterWrite: true,
	}); err != nil {
		os.Remove(sidecarPath)
		return nil, fmt.Errorf("write sidecar: %w", err)
	}

	reread, err := dicom.ParseFile(sidecarPath)
	if err != nil {
		os.Remove(sidecarPath)
		return nil, fmt.Errorf("validate sidecar: %w", err)
	}
	rereadPixel, err := reread.Get(tag.PixelData)
	if err != nil || len(rereadPixel.Value().Bytes()) != len(pixelBytes) {
		os.Remove(sidecarPath)
		return nil, fmt.Errorf("sidecar pixel data shape mismatch")
	}

	return &transcodeResult{
		SidecarPath:    sidecarPath,
		SOPClassUID:    sopClassElem.Value().String(),
		SOPInstanceUID: sopInstanceElem.Value().String(),
	}, nil
}

// cleanupSidecars removes every temp file under sidecarDir matching the
// engine's naming pattern — called unconditionally on send completion,
// cancellation, or failure.
func cleanupSidecars(sidecarDir string) {
	matches, err := filepath.Glob(filepath.Join(sidecarDir, "netsend-sidecar-*.dcm"))
	if err != nil {
		return
	}
	for _, m := range matches {
		os.Remove(m)
	}
}
