// Package validate applies per-file and cross-collection DICOM compliance
// rules and aggregates the findings, the way a radiology QA tool checks a
// study before it's sent or archived.
package validate

import (
	"runtime"
	"time"

	"github.com/FullMetalEd/fm-dicom/dicom"
	"golang.org/x/sync/errgroup"
)

// Severity classifies how serious a validation Issue is.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
	SeverityInfo    Severity = "INFO"
)

// Issue is one finding produced by a Rule.
type Issue struct {
	Severity     Severity
	Category     string
	Message      string
	Tag          string
	FilePath     string
	SuggestedFix string
	Timestamp    time.Time
}

// Result is the outcome of validating a single file.
type Result struct {
	FilePath     string
	Issues       []Issue
	IsValidDicom bool
}

// HasErrors reports whether any issue in the result is ERROR severity.
func (r *Result) HasErrors() bool {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Statistics summarizes a collection run.
type Statistics struct {
	ModalityHistogram  map[string]int
	TagPresenceCounts  map[string]int
	TagPresencePercent map[string]float64
	UniquePatients     int
	UniqueStudies      int
	UniqueSeries       int
	TotalInstances     int
}

// CollectionResult aggregates per-file results, collection-scoped issues,
// and derived statistics.
type CollectionResult struct {
	PerFile          []*Result
	CollectionIssues []Issue
	Stats            Statistics
}

// FileRule validates a single dataset in isolation.
type FileRule interface {
	ValidateDataset(ds *dicom.DataSet, path string) []Issue
}

// CollectionRule validates relationships across a whole set of datasets.
type CollectionRule interface {
	ValidateCollection(datasets map[string]*dicom.DataSet) []Issue
}

// fileRules is the fixed, required rule set run per-file.
func fileRules() []FileRule {
	return []FileRule{
		requiredTagsRule{},
		uidFormatRule{},
		dateTimeFormatRule{},
		personNameFormatRule{},
		valueRepresentationRule{},
		pixelDataRule{},
		transferSyntaxRule{},
	}
}

// collectionRules is the fixed, required rule set run once over the
// collection.
func collectionRules() []CollectionRule {
	return []CollectionRule{
		duplicateUIDsRule{},
		studyConsistencyRule{},
		seriesConsistencyRule{},
	}
}

// ValidateDataset runs only the per-file rules against an already-parsed
// dataset — the primitive every other entry point in this package builds on.
func ValidateDataset(ds *dicom.DataSet, path string) *Result {
	result := &Result{FilePath: path, IsValidDicom: true}
	for _, rule := range fileRules() {
		result.Issues = append(result.Issues, rule.ValidateDataset(ds, path)...)
	}
	return result
}

// ValidateFile parses path and runs the per-file rules over it. A file that
// cannot be parsed at all yields a single ERROR issue with IsValidDicom=false,
// rather than propagating the parse error: invalid DICOM is a validation
// ERROR, not a fatal error.
func ValidateFile(path string) *Result {
	ds, err := dicom.ParseFile(path)
	if err != nil {
		return &Result{
			FilePath:     path,
			IsValidDicom: false,
			Issues: []Issue{{
				Severity:  SeverityError,
				Category:  "Not a DICOM file",
				Message:   err.Error(),
				FilePath:  path,
				Timestamp: time.Now(),
			}},
		}
	}
	return ValidateDataset(ds, path)
}

// ValidateCollection runs per-file rules on each path, then collection rules
// once over every dataset that parsed successfully. Parsing and per-file
// validation are independent across paths, so they fan out across a bounded
// worker pool; each worker writes only to its own slot, so the results land
// back in path order with no shared-map writes during the fan-out.
func ValidateCollection(paths []string) *CollectionResult {
	collection := &CollectionResult{}

	type fileOutcome struct {
		ds     *dicom.DataSet
		result *Result
	}
	outcomes := make([]fileOutcome, len(paths))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			ds, err := dicom.ParseFile(path)
			if err != nil {
				outcomes[i] = fileOutcome{result: &Result{
					FilePath:     path,
					IsValidDicom: false,
					Issues: []Issue{{
						Severity:  SeverityError,
						Category:  "Not a DICOM file",
						Message:   err.Error(),
						FilePath:  path,
						Timestamp: time.Now(),
					}},
				}}
				return nil
			}
			outcomes[i] = fileOutcome{ds: ds, result: ValidateDataset(ds, path)}
			return nil
		})
	}
	_ = g.Wait() // per-file errors are recorded above, never fatal to the group

	parsed := make(map[string]*dicom.DataSet)
	for i, path := range paths {
		if outcomes[i].ds != nil {
			parsed[path] = outcomes[i].ds
		}
		collection.PerFile = append(collection.PerFile, outcomes[i].result)
	}

	for _, rule := range collectionRules() {
		collection.CollectionIssues = append(collection.CollectionIssues, rule.ValidateCollection(parsed)...)
	}

	collection.Stats = computeStatistics(parsed)
	return collection
}
