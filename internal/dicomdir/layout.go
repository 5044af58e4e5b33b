package dicomdir

import (
	"fmt"
	"path"
	"strings"
)

// PathAssigner lays out instances inside the standard File-set directory
// structure `DICOM/PATnnnnn/STUnnnnn/SERnnnnn/IMGnnnnn` and produces the
// relative ReferencedFileID path components (joined with "/", matching
// PS3.10's file-path separator convention) for one instance, given its
// ancestors' 1-based ordinal positions.
type PathAssigner struct {
	root string
}

// NewPathAssigner returns an assigner rooted at the conventional "DICOM"
// top-level directory used by most DICOMDIR-bearing media.
func NewPathAssigner() *PathAssigner {
	return &PathAssigner{root: "DICOM"}
}

// InstancePath returns the relative on-disk path (using "/" separators,
// per ReferencedFileID's component convention) and the corresponding
// ReferencedFileID components for the instance at position
// (patientN, studyN, seriesN, instanceN), all 1-based.
func (a *PathAssigner) InstancePath(patientN, studyN, seriesN, instanceN int) (relPath string, components []string) {
	components = []string{
		a.root,
		fmt.Sprintf("PAT%05d", patientN),
		fmt.Sprintf("STU%05d", studyN),
		fmt.Sprintf("SER%05d", seriesN),
		fmt.Sprintf("IMG%05d", instanceN),
	}
	return path.Join(components...), components
}

// SplitReferencedFileID splits a DICOMDIR ReferencedFileID's backslash- or
// slash-joined path components back into filesystem path segments.
func SplitReferencedFileID(refFileID string) []string {
	normalized := strings.ReplaceAll(refFileID, "\\", "/")
	parts := strings.Split(normalized, "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
