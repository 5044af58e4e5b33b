// Package hierarchy reconstructs the Patient→Study→Series→Instance tree
// from an unordered set of DICOM files and performs level-scoped merges
// and deletes that preserve referential integrity.
package hierarchy

import (
	"fmt"
	"runtime"
	"sort"
	"strconv"

	"github.com/FullMetalEd/fm-dicom/dicom"
	"github.com/FullMetalEd/fm-dicom/dicom/tag"
	"golang.org/x/sync/errgroup"
)

const unknownSentinel = "Unknown"

// Instance is a single DICOM file and the metadata used to place it.
type Instance struct {
	Path           string
	SOPInstanceUID string
	InstanceNumber *int
	Series         *Series
}

// Series is a node keyed by SeriesInstanceUID.
type Series struct {
	SeriesInstanceUID string
	SeriesDescription  string
	SeriesNumber       string
	Modality           string
	Study              *Study
	Instances          []*Instance
}

// Study is a node keyed by StudyInstanceUID.
type Study struct {
	StudyInstanceUID string
	StudyDescription string
	StudyID          string
	StudyDate        string
	StudyTime        string
	Patient          *Patient
	Series           []*Series
}

// Patient is a node keyed by PatientID (falling back to PatientName).
type Patient struct {
	PatientID   string
	PatientName string
	Studies     []*Study
}

// Tree is the root of the reconstructed hierarchy, plus a file-path-keyed
// metadata cache for fast re-display.
type Tree struct {
	Patients []*Patient
	cache    map[string]*dicom.DataSet

	patientIndex map[string]*Patient
	studyIndex   map[string]*Study
	seriesIndex  map[string]*Series
}

// BuildResult reports the outcome of Build.
type BuildResult struct {
	Tree    *Tree
	Failed  map[string]error
}

// Build reads metadata for every path, deriving the four identity keys
// with "Unknown" fallbacks, and inserts each into the tree. Failed reads
// are skipped, not fatal.
func Build(paths []string) *BuildResult {
	tree := &Tree{
		cache:        make(map[string]*dicom.DataSet),
		patientIndex: make(map[string]*Patient),
		studyIndex:   make(map[string]*Study),
		seriesIndex:  make(map[string]*Series),
	}
	result := &BuildResult{Tree: tree, Failed: make(map[string]error)}

	// Parsing each file is independent, so it fans out across a bounded
	// worker pool; insertion into the tree's shared indexes stays
	// sequential, in path order, since it mutates maps and slices that
	// aren't safe for concurrent writers.
	type parsedFile struct {
		ds  *dicom.DataSet
		err error
	}
	parsed := make([]parsedFile, len(paths))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			ds, err := dicom.ParseFile(path)
			parsed[i] = parsedFile{ds: ds, err: err}
			return nil
		})
	}
	_ = g.Wait() // per-file errors are recorded below, never fatal to the group

	for i, path := range paths {
		if err := parsed[i].err; err != nil {
			result.Failed[path] = err
			continue
		}
		tree.cache[path] = parsed[i].ds
		tree.insert(path, parsed[i].ds)
	}

	tree.sort()
	return result
}

func str(ds *dicom.DataSet, t tag.Tag) string {
	elem, err := ds.Get(t)
	if err != nil {
		return ""
	}
	return elem.Value().String()
}

func strOr(ds *dicom.DataSet, t tag.Tag, fallback string) string {
	if v := str(ds, t); v != "" {
		return v
	}
	return fallback
}

func (t *Tree) insert(path string, ds *dicom.DataSet) {
	patientID := strOr(ds, tag.PatientID, unknownSentinel)
	patientName := str(ds, tag.PatientName)
	patientKey := patientID
	if patientKey == unknownSentinel && patientName != "" {
		patientKey = unknownSentinel + ":" + patientName
	}

	patient, ok := t.patientIndex[patientKey]
	if !ok {
		patient = &Patient{PatientID: patientID, PatientName: patientName}
		t.patientIndex[patientKey] = patient
		t.Patients = append(t.Patients, patient)
	}

	studyUID := strOr(ds, tag.StudyInstanceUID, unknownSentinel+":"+path)
	study, ok := t.studyIndex[studyUID]
	if !ok {
		study = &Study{
			StudyInstanceUID: studyUID,
			StudyDescription: str(ds, tag.StudyDescription),
			StudyID:          str(ds, tag.StudyID),
			StudyDate:        str(ds, tag.StudyDate),
			StudyTime:        str(ds, tag.StudyTime),
			Patient:          patient,
		}
		t.studyIndex[studyUID] = study
		patient.Studies = append(patient.Studies, study)
	}

	seriesUID := strOr(ds, tag.SeriesInstanceUID, unknownSentinel+":"+path)
	series, ok := t.seriesIndex[seriesUID]
	if !ok {
		series = &Series{
			SeriesInstanceUID: seriesUID,
			SeriesDescription: str(ds, tag.SeriesDescription),
			SeriesNumber:      str(ds, tag.SeriesNumber),
			Modality:          str(ds, tag.Modality),
			Study:             study,
		}
		t.seriesIndex[seriesUID] = series
		study.Series = append(study.Series, series)
	}

	instance := &Instance{
		Path:           path,
		SOPInstanceUID: strOr(ds, tag.SOPInstanceUID, unknownSentinel+":"+path),
		InstanceNumber: parseInstanceNumber(str(ds, tag.InstanceNumber)),
		Series:         series,
	}
	series.Instances = append(series.Instances, instance)
}

func parseInstanceNumber(s string) *int {
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

// sort orders the tree for display: studies by date/time, series by
// numeric SeriesNumber, instances by numeric InstanceNumber with
// non-numeric/missing sorted last.
func (t *Tree) sort() {
	sort.Slice(t.Patients, func(i, j int) bool {
		return t.Patients[i].PatientID < t.Patients[j].PatientID
	})
	for _, patient := range t.Patients {
		sort.Slice(patient.Studies, func(i, j int) bool {
			a, b := patient.Studies[i], patient.Studies[j]
			if a.StudyDate != b.StudyDate {
				return a.StudyDate < b.StudyDate
			}
			return a.StudyTime < b.StudyTime
		})
		for _, study := range patient.Studies {
			sort.Slice(study.Series, func(i, j int) bool {
				return seriesNumberKey(study.Series[i]) < seriesNumberKey(study.Series[j])
			})
			for _, series := range study.Series {
				sort.Slice(series.Instances, func(i, j int) bool {
					a, b := series.Instances[i], series.Instances[j]
					if a.InstanceNumber == nil && b.InstanceNumber == nil {
						return a.SOPInstanceUID < b.SOPInstanceUID
					}
					if a.InstanceNumber == nil {
						return false
					}
					if b.InstanceNumber == nil {
						return true
					}
					return *a.InstanceNumber < *b.InstanceNumber
				})
			}
		}
	}
}

func seriesNumberKey(s *Series) int {
	n, err := strconv.Atoi(s.SeriesNumber)
	if err != nil {
		return 1<<31 - 1
	}
	return n
}

// Traversal collects all descendant instance file paths of node in
// document order — the primitive every downstream operation uses to turn
// a selection into a file set.
func Traversal(node any) []string {
	switch n := node.(type) {
	case *Patient:
		var paths []string
		for _, study := range n.Studies {
			paths = append(paths, Traversal(study)...)
		}
		return paths
	case *Study:
		var paths []string
		for _, series := range n.Series {
			paths = append(paths, Traversal(series)...)
		}
		return paths
	case *Series:
		paths := make([]string, 0, len(n.Instances))
		for _, inst := range n.Instances {
			paths = append(paths, inst.Path)
		}
		return paths
	case *Instance:
		return []string{n.Path}
	default:
		return nil
	}
}

// Dataset returns the cached parsed dataset for path, if Build read it.
func (t *Tree) Dataset(path string) (*dicom.DataSet, bool) {
	ds, ok := t.cache[path]
	return ds, ok
}

// FindPatient looks up a patient by its PatientID (or fallback PatientName
// key, for patients with no PatientID).
func (t *Tree) FindPatient(patientKey string) *Patient {
	return t.patientIndex[patientKey]
}

// FindStudy looks up a study by StudyInstanceUID.
func (t *Tree) FindStudy(studyInstanceUID string) *Study {
	return t.studyIndex[studyInstanceUID]
}

// FindSeries looks up a series by SeriesInstanceUID.
func (t *Tree) FindSeries(seriesInstanceUID string) *Series {
	return t.seriesIndex[seriesInstanceUID]
}

// Rebuild re-runs Build over every instance path currently in the tree —
// used after any operation that mutates identifying tags.
func (t *Tree) Rebuild() *BuildResult {
	var paths []string
	for _, patient := range t.Patients {
		paths = append(paths, Traversal(patient)...)
	}
	return Build(paths)
}

// errPrecondition is returned by merge operations whose precondition is
// not met; merges never produce partial results.
type errPrecondition struct{ msg string }

func (e *errPrecondition) Error() string { return e.msg }

func preconditionError(format string, args ...any) error {
	return &errPrecondition{msg: fmt.Sprintf(format, args...)}
}
