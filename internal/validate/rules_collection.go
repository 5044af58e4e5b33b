package validate

import (
	"sort"

	"github.com/FullMetalEd/fm-dicom/dicom"
	"github.com/FullMetalEd/fm-dicom/dicom/tag"
)

// duplicateUIDsRule flags any SOPInstanceUID shared by more than one file
// as an ERROR.
type duplicateUIDsRule struct{}

func (duplicateUIDsRule) ValidateCollection(datasets map[string]*dicom.DataSet) []Issue {
	byUID := make(map[string][]string)
	for path, ds := range datasets {
		uid := stringValue(ds, tag.SOPInstanceUID)
		if uid == "" {
			continue
		}
		byUID[uid] = append(byUID[uid], path)
	}

	var issues []Issue
	for uid, paths := range byUID {
		if len(paths) < 2 {
			continue
		}
		sort.Strings(paths)
		issues = append(issues, issue(SeverityError, "Duplicate UIDs",
			"SOPInstanceUID "+uid+" appears in "+joinPaths(paths), "SOPInstanceUID", "", ""))
	}
	return issues
}

// studyConsistencyRule checks that every file sharing a StudyInstanceUID
// agrees on PatientID (ERROR) and StudyDate (WARNING).
type studyConsistencyRule struct{}

func (studyConsistencyRule) ValidateCollection(datasets map[string]*dicom.DataSet) []Issue {
	type studyInfo struct {
		patientIDs map[string]bool
		studyDates map[string]bool
		paths      []string
	}
	byStudy := make(map[string]*studyInfo)

	for path, ds := range datasets {
		studyUID := stringValue(ds, tag.StudyInstanceUID)
		if studyUID == "" {
			continue
		}
		info, ok := byStudy[studyUID]
		if !ok {
			info = &studyInfo{patientIDs: map[string]bool{}, studyDates: map[string]bool{}}
			byStudy[studyUID] = info
		}
		info.paths = append(info.paths, path)
		if pid := stringValue(ds, tag.PatientID); pid != "" {
			info.patientIDs[pid] = true
		}
		if date := stringValue(ds, tag.StudyDate); date != "" {
			info.studyDates[date] = true
		}
	}

	var issues []Issue
	for studyUID, info := range byStudy {
		if len(info.patientIDs) > 1 {
			issues = append(issues, issue(SeverityError, "Study Consistency",
				"study "+studyUID+" contains files with different PatientID values", "PatientID", "", ""))
		}
		if len(info.studyDates) > 1 {
			issues = append(issues, issue(SeverityWarning, "Study Consistency",
				"study "+studyUID+" contains files with different StudyDate values", "StudyDate", "", ""))
		}
	}
	return issues
}

// seriesConsistencyRule checks that every file sharing a SeriesInstanceUID
// agrees on Modality (WARNING).
type seriesConsistencyRule struct{}

func (seriesConsistencyRule) ValidateCollection(datasets map[string]*dicom.DataSet) []Issue {
	modalitiesBySeries := make(map[string]map[string]bool)

	for _, ds := range datasets {
		seriesUID := stringValue(ds, tag.SeriesInstanceUID)
		if seriesUID == "" {
			continue
		}
		if modalitiesBySeries[seriesUID] == nil {
			modalitiesBySeries[seriesUID] = map[string]bool{}
		}
		if modality := stringValue(ds, tag.Modality); modality != "" {
			modalitiesBySeries[seriesUID][modality] = true
		}
	}

	var issues []Issue
	for seriesUID, modalities := range modalitiesBySeries {
		if len(modalities) > 1 {
			issues = append(issues, issue(SeverityWarning, "Series Consistency",
				"series "+seriesUID+" contains files with different Modality values", "Modality", "", ""))
		}
	}
	return issues
}

func joinPaths(paths []string) string {
	out := ""
	for i, p := range paths {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out
}
