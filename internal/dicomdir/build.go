// Package dicomdir builds a PS3.10-conformant DICOMDIR file and the
// accompanying PATnnnnn/STUnnnnn/SERnnnnn/IMGnnnnn File-set directory
// structure from a reconstructed hierarchy.Tree.
package dicomdir

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/FullMetalEd/fm-dicom/dicom"
	"github.com/FullMetalEd/fm-dicom/dicom/element"
	"github.com/FullMetalEd/fm-dicom/dicom/tag"
	"github.com/FullMetalEd/fm-dicom/dicom/uid"
	"github.com/FullMetalEd/fm-dicom/dicom/value"
	"github.com/FullMetalEd/fm-dicom/dicom/vr"
	"github.com/FullMetalEd/fm-dicom/internal/hierarchy"
)

// BuildResult reports the outcome of BuildFileSet.
type BuildResult struct {
	// DicomdirPath is the absolute path of the written DICOMDIR file.
	DicomdirPath string
	// CopiedFiles maps each source instance path to its destination path
	// inside the File-set.
	CopiedFiles map[string]string
	// FileSetID is the sanitized file-set label actually written.
	FileSetID string
}

// BuildFileSet lays out tree's instances under destDir following the
// standard directory layout, copies each instance file into place, and
// writes a DICOMDIR at destDir's root referencing them. candidateID
// is sanitized via SanitizeFileSetID before being written as FileSetID.
func BuildFileSet(tree *hierarchy.Tree, destDir, candidateID string) (*BuildResult, error) {
	fileSetID := SanitizeFileSetID(candidateID)
	assigner := NewPathAssigner()

	result := &BuildResult{CopiedFiles: make(map[string]string), FileSetID: fileSetID}
	var records [][]byte

	for pi, patient := range tree.Patients {
		patientRecord, err := buildPatientRecord(patient)
		if err != nil {
			return nil, err
		}
		records = append(records, patientRecord)

		for si, study := range patient.Studies {
			studyRecord, err := buildStudyRecord(study)
			if err != nil {
				return nil, err
			}
			records = append(records, studyRecord)

			for sei, series := range study.Series {
				seriesRecord, err := buildSeriesRecord(series)
				if err != nil {
					return nil, err
				}
				records = append(records, seriesRecord)

				for ii, instance := range series.Instances {
					relPath, components := assigner.InstancePath(pi+1, si+1, sei+1, ii+1)
					destPath := filepath.Join(destDir, filepath.FromSlash(relPath))

					if err := copyFile(instance.Path, destPath); err != nil {
						return nil, fmt.Errorf("copy %s: %w", instance.Path, err)
					}
					result.CopiedFiles[instance.Path] = destPath

					ds, _ := tree.Dataset(instance.Path)
					imageRecord, err := buildImageRecord(instance, ds, components)
					if err != nil {
						return nil, err
					}
					records = append(records, imageRecord)
				}
			}
		}
	}

	ds, err := buildDicomdirDataSet(fileSetID, records)
	if err != nil {
		return nil, err
	}

	dicomdirPath := filepath.Join(destDir, "DICOMDIR")
	if err := dicom.WriteFileWithOptions(dicomdirPath, ds, dicom.WriteOptions{
		Overwrite: true, Atomic: true, CreateDirs: true,
	}); err != nil {
		return nil, fmt.Errorf("write DICOMDIR: %w", err)
	}

	if err := validateWrittenDicomdir(dicomdirPath, fileSetID); err != nil {
		os.Remove(dicomdirPath)
		return nil, fmt.Errorf("validate written DICOMDIR: %w", err)
	}
	result.DicomdirPath = dicomdirPath

	return result, nil
}

// validateWrittenDicomdir re-parses the DICOMDIR just written and rejects
// the export if it isn't readable back, is missing FileSetID or
// DirectoryRecordSequence, or carries an empty record sequence.
func validateWrittenDicomdir(path, wantFileSetID string) error {
	ds, err := dicom.ParseFile(path)
	if err != nil {
		return fmt.Errorf("re-parse: %w", err)
	}

	fileSetElem, err := ds.Get(tag.FileSetID)
	if err != nil {
		return fmt.Errorf("missing FileSetID: %w", err)
	}
	if fileSetElem.Value().String() != wantFileSetID {
		return fmt.Errorf("FileSetID mismatch: wrote %q, read back %q", wantFileSetID, fileSetElem.Value().String())
	}

	seqElem, err := ds.Get(tag.DirectoryRecordSequence)
	if err != nil {
		return fmt.Errorf("missing DirectoryRecordSequence: %w", err)
	}
	if len(seqElem.Value().Bytes()) == 0 {
		return fmt.Errorf("DirectoryRecordSequence is empty")
	}

	return nil
}

func buildPatientRecord(p *hierarchy.Patient) ([]byte, error) {
	return buildRecord(recordPatient, []field{
		strField(tag.PatientName, vr.PersonName, p.PatientName),
		strField(tag.PatientID, vr.LongString, p.PatientID),
	})
}

func buildStudyRecord(s *hierarchy.Study) ([]byte, error) {
	return buildRecord(recordStudy, []field{
		strField(tag.StudyDate, vr.Date, s.StudyDate),
		strField(tag.StudyTime, vr.Time, s.StudyTime),
		strField(tag.StudyDescription, vr.LongString, s.StudyDescription),
		strField(tag.StudyInstanceUID, vr.UniqueIdentifier, s.StudyInstanceUID),
		strField(tag.StudyID, vr.ShortString, s.StudyID),
	})
}

func buildSeriesRecord(s *hierarchy.Series) ([]byte, error) {
	return buildRecord(recordSeries, []field{
		strField(tag.Modality, vr.CodeString, s.Modality),
		strField(tag.SeriesInstanceUID, vr.UniqueIdentifier, s.SeriesInstanceUID),
		strField(tag.SeriesNumber, vr.IntegerString, s.SeriesNumber),
		strField(tag.SeriesDescription, vr.LongString, s.SeriesDescription),
	})
}

func buildImageRecord(inst *hierarchy.Instance, ds *dicom.DataSet, pathComponents []string) ([]byte, error) {
	sopClassUID := ""
	transferSyntaxUID := uid.ExplicitVRLittleEndian.String()
	if ds != nil {
		if elem, err := ds.Get(tag.SOPClassUID); err == nil {
			sopClassUID = elem.Value().String()
		}
	}

	instanceNumber := ""
	if inst.InstanceNumber != nil {
		instanceNumber = strconv.Itoa(*inst.InstanceNumber)
	}

	return buildRecord(recordImage, []field{
		multiField(tag.ReferencedFileID, vr.CodeString, pathComponents),
		strField(tag.ReferencedSOPClassUIDInFile, vr.UniqueIdentifier, sopClassUID),
		strField(tag.ReferencedSOPInstanceUIDInFile, vr.UniqueIdentifier, inst.SOPInstanceUID),
		strField(tag.ReferencedTransferSyntaxUIDInFile, vr.UniqueIdentifier, transferSyntaxUID),
		strField(tag.InstanceNumber, vr.IntegerString, instanceNumber),
	})
}

// buildDicomdirDataSet assembles the DICOMDIR's single top-level dataset:
// the file-set header elements plus a manually-encoded DirectoryRecordSequence
// (0004,1220) holding every record item back to back, in parent-before-
// children order. Offsets are intentionally left at 0;
// record order and type alone carry the tree structure on read-back.
func buildDicomdirDataSet(fileSetID string, records [][]byte) (*dicom.DataSet, error) {
	ds := dicom.NewDataSet()

	add := func(t tag.Tag, v vr.VR, s string) error {
		val, err := value.NewStringValue(v, []string{s})
		if err != nil {
			return err
		}
		elem, err := element.NewElement(t, v, val)
		if err != nil {
			return err
		}
		return ds.Add(elem)
	}

	if err := add(tag.SOPClassUID, vr.UniqueIdentifier, uid.MediaStorageDirectoryStorage.String()); err != nil {
		return nil, err
	}
	if err := add(tag.SOPInstanceUID, vr.UniqueIdentifier, uid.Generate()); err != nil {
		return nil, err
	}
	if err := add(tag.SpecificCharacterSet, vr.CodeString, "ISO_IR 100"); err != nil {
		return nil, err
	}
	if err := add(tag.FileSetID, vr.CodeString, fileSetID); err != nil {
		return nil, err
	}

	flagVal, err := value.NewIntValue(vr.UnsignedShort, []int64{0})
	if err != nil {
		return nil, err
	}
	flagElem, err := element.NewElement(tag.FileSetConsistencyFlag, vr.UnsignedShort, flagVal)
	if err != nil {
		return nil, err
	}
	if err := ds.Add(flagElem); err != nil {
		return nil, err
	}

	var seq bytes.Buffer
	for _, record := range records {
		seq.Write(record)
	}
	seqVal, err := value.NewBytesValue(vr.SequenceOfItems, seq.Bytes())
	if err != nil {
		return nil, err
	}
	seqElem, err := element.NewElement(tag.DirectoryRecordSequence, vr.SequenceOfItems, seqVal)
	if err != nil {
		return nil, err
	}
	if err := ds.Add(seqElem); err != nil {
		return nil, err
	}

	return ds, nil
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.CreateTemp(filepath.Dir(dst), ".dicomdir-copy-*")
	if err != nil {
		return err
	}
	tempPath := out.Name()
	defer os.Remove(tempPath)

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Rename(tempPath, dst)
}

// ReferencedFilePath resolves a DICOMDIR record's ReferencedFileID string
// (backslash- or slash-joined path components, per PS3.10) to an absolute
// path relative to dicomdirDir — the directory containing the DICOMDIR
// file itself.
func ReferencedFilePath(dicomdirDir, referencedFileID string) string {
	components := SplitReferencedFileID(referencedFileID)
	return filepath.Join(append([]string{dicomdirDir}, components...)...)
}
