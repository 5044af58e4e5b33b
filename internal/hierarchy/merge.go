package hierarchy

import (
	"fmt"
	"os"

	"github.com/FullMetalEd/fm-dicom/dicom"
	"github.com/FullMetalEd/fm-dicom/dicom/element"
	"github.com/FullMetalEd/fm-dicom/dicom/tag"
	"github.com/FullMetalEd/fm-dicom/dicom/value"
	"github.com/FullMetalEd/fm-dicom/dicom/vr"
)

// MergeResult reports the files rewritten by a merge and any per-file
// warnings (e.g. a Modality conflict on a Series merge).
type MergeResult struct {
	RewrittenFiles []string
	Warnings       []string
}

// MergePatients retains primary's PatientID/PatientName and rewrites those
// tags on every file under the secondary patients.
// Requires at least one secondary; never performs a partial merge.
func MergePatients(primary *Patient, secondaries []*Patient) (*MergeResult, error) {
	if len(secondaries) == 0 {
		return nil, preconditionError("patient merge requires at least 2 patient nodes selected")
	}

	result := &MergeResult{}
	for _, secondary := range secondaries {
		if secondary == primary {
			continue
		}
		for _, path := range Traversal(secondary) {
			if err := rewriteTags(path, map[tag.Tag]string{
				tag.PatientID:   primary.PatientID,
				tag.PatientName: primary.PatientName,
			}); err != nil {
				return nil, fmt.Errorf("rewrite %s: %w", path, err)
			}
			result.RewrittenFiles = append(result.RewrittenFiles, path)
		}
	}
	return result, nil
}

// MergeStudies retains primary's StudyInstanceUID/StudyDescription/StudyID
// and rewrites those tags on every file under the secondary studies.
// Requires every selected study to share the same parent patient.
func MergeStudies(primary *Study, secondaries []*Study) (*MergeResult, error) {
	if len(secondaries) == 0 {
		return nil, preconditionError("study merge requires at least 2 study nodes selected")
	}
	for _, s := range secondaries {
		if s.Patient != primary.Patient {
			return nil, preconditionError("all selected studies must share the same parent patient")
		}
	}

	result := &MergeResult{}
	for _, secondary := range secondaries {
		if secondary == primary {
			continue
		}
		for _, path := range Traversal(secondary) {
			if err := rewriteTags(path, map[tag.Tag]string{
				tag.StudyInstanceUID: primary.StudyInstanceUID,
				tag.StudyDescription: primary.StudyDescription,
				tag.StudyID:          primary.StudyID,
			}); err != nil {
				return nil, fmt.Errorf("rewrite %s: %w", path, err)
			}
			result.RewrittenFiles = append(result.RewrittenFiles, path)
		}
	}
	return result, nil
}

// MergeSeries retains primary's SeriesInstanceUID/SeriesDescription/
// SeriesNumber and rewrites those tags on every file under the secondary
// series. Modality is preserved per-file; a mismatch against primary's
// Modality is surfaced as a warning rather than overwritten.
func MergeSeries(primary *Series, secondaries []*Series) (*MergeResult, error) {
	if len(secondaries) == 0 {
		return nil, preconditionError("series merge requires at least 2 series nodes selected")
	}
	for _, s := range secondaries {
		if s.Study != primary.Study {
			return nil, preconditionError("all selected series must share the same parent study")
		}
	}

	result := &MergeResult{}
	for _, secondary := range secondaries {
		if secondary == primary {
			continue
		}
		if secondary.Modality != "" && secondary.Modality != primary.Modality {
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"series %s has Modality %q, differing from primary's %q",
				secondary.SeriesInstanceUID, secondary.Modality, primary.Modality))
		}
		for _, path := range Traversal(secondary) {
			if err := rewriteTags(path, map[tag.Tag]string{
				tag.SeriesInstanceUID: primary.SeriesInstanceUID,
				tag.SeriesDescription: primary.SeriesDescription,
				tag.SeriesNumber:      primary.SeriesNumber,
			}); err != nil {
				return nil, fmt.Errorf("rewrite %s: %w", path, err)
			}
			result.RewrittenFiles = append(result.RewrittenFiles, path)
		}
	}
	return result, nil
}

// rewriteTags reads path, inserts or replaces the given string-VR tags —
// present or not — and writes the file back to the same path, the same
// insert-or-replace pattern dataset_helpers.go's SetPatientID/
// SetStudyInstanceUID/etc. use via DataSet.Add.
func rewriteTags(path string, values map[tag.Tag]string) error {
	ds, err := dicom.ParseFile(path)
	if err != nil {
		return err
	}

	for t, v := range values {
		if v == "" {
			continue
		}
		if err := setElementString(ds, t, v); err != nil {
			return err
		}
	}

	return dicom.WriteFileWithOptions(path, ds, dicom.WriteOptions{Overwrite: true, Atomic: true})
}

func setElementString(ds *dicom.DataSet, t tag.Tag, s string) error {
	elemVR := vr.LongString
	if existing, err := ds.Get(t); err == nil {
		elemVR = existing.VR()
	} else if info, err := tag.Find(t); err == nil && len(info.VRs) > 0 {
		elemVR = info.VRs[0]
	}

	val, err := value.NewStringValue(elemVR, []string{s})
	if err != nil {
		return err
	}
	elem, err := element.NewElement(t, elemVR, val)
	if err != nil {
		return err
	}
	return ds.Add(elem)
}

// DeleteInstances removes the given files from disk. Deletion is final;
// callers must Rebuild the tree afterward.
func DeleteInstances(paths []string) error {
	for _, path := range paths {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("delete %s: %w", path, err)
		}
	}
	return nil
}
