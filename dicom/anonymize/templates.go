package anonymize

import "github.com/FullMetalEd/fm-dicom/dicom/tag"

// rule is a small constructor to keep BuiltinTemplates readable.
func rule(t tag.Tag, action Action, replacement string) Rule {
	return Rule{Tag: t, Action: action, Replacement: replacement}
}

func days(n int) *int { return &n }

// BuiltinTemplates returns the four named templates always available
// regardless of what a persisted template file contains.
func BuiltinTemplates() []*Template {
	return []*Template{
		researchStandard(),
		clinicalReview(),
		teachingCollection(),
		minimalAnonymization(),
	}
}

func researchStandard() *Template {
	return &Template{
		Name:    "Research Standard",
		Version: 1,
		Rules: []Rule{
			rule(tag.PatientName, ActionReplace, "RESEARCH_PATIENT"),
			rule(tag.PatientID, ActionHash, ""),
			rule(tag.PatientBirthDate, ActionBlank, ""),
			rule(tag.PatientSex, ActionKeep, ""),
			rule(tag.PatientAge, ActionKeep, ""),
			rule(tag.PatientWeight, ActionKeep, ""),
			rule(tag.PatientSize, ActionKeep, ""),
			rule(tag.OtherPatientNames, ActionRemove, ""),
			rule(tag.OtherPatientIDs, ActionRemove, ""),
			rule(tag.PatientBirthTime, ActionRemove, ""),
			rule(tag.PatientComments, ActionRemove, ""),
			rule(tag.StudyDate, ActionDateShift, ""),
			rule(tag.SeriesDate, ActionDateShift, ""),
			rule(tag.AcquisitionDate, ActionDateShift, ""),
			rule(tag.ContentDate, ActionDateShift, ""),
			rule(tag.StudyTime, ActionKeep, ""),
			rule(tag.SeriesTime, ActionKeep, ""),
			rule(tag.AcquisitionTime, ActionKeep, ""),
			rule(tag.ContentTime, ActionKeep, ""),
			rule(tag.StudyDescription, ActionKeep, ""),
			rule(tag.SeriesDescription, ActionKeep, ""),
			rule(tag.StudyInstanceUID, ActionUIDRemap, ""),
			rule(tag.SeriesInstanceUID, ActionUIDRemap, ""),
			rule(tag.SOPInstanceUID, ActionUIDRemap, ""),
			rule(tag.ReferringPhysicianName, ActionRemove, ""),
			rule(tag.PerformingPhysicianName, ActionRemove, ""),
			rule(tag.OperatorsName, ActionRemove, ""),
			rule(tag.PhysiciansOfRecord, ActionRemove, ""),
		},
		DateShiftDays:         days(-365),
		PreserveRelationships: true,
		RemovePrivateTags:     true,
	}
}

func clinicalReview() *Template {
	return &Template{
		Name:    "Clinical Review",
		Version: 1,
		Rules: []Rule{
			rule(tag.PatientName, ActionReplace, "CLINICAL_PATIENT"),
			rule(tag.PatientID, ActionHash, ""),
			rule(tag.PatientBirthDate, ActionBlank, ""),
			rule(tag.PatientSex, ActionKeep, ""),
			rule(tag.PatientAge, ActionKeep, ""),
			rule(tag.PatientWeight, ActionKeep, ""),
			rule(tag.PatientSize, ActionKeep, ""),
			rule(tag.StudyDate, ActionKeep, ""),
			rule(tag.SeriesDate, ActionKeep, ""),
			rule(tag.StudyDescription, ActionKeep, ""),
			rule(tag.SeriesDescription, ActionKeep, ""),
			rule(tag.StudyInstanceUID, ActionUIDRemap, ""),
			rule(tag.SeriesInstanceUID, ActionUIDRemap, ""),
			rule(tag.SOPInstanceUID, ActionUIDRemap, ""),
		},
		PreserveRelationships: true,
		RemovePrivateTags:     false,
	}
}

func teachingCollection() *Template {
	return &Template{
		Name:    "Teaching Collection",
		Version: 1,
		Rules: []Rule{
			rule(tag.PatientName, ActionReplace, "TEACHING_CASE"),
			rule(tag.PatientID, ActionReplace, "EDU_001"),
			rule(tag.PatientBirthDate, ActionReplace, "19800101"),
			rule(tag.PatientSex, ActionKeep, ""),
			rule(tag.PatientAge, ActionKeep, ""),
			rule(tag.StudyDate, ActionDateShift, ""),
			rule(tag.SeriesDate, ActionDateShift, ""),
			rule(tag.StudyDescription, ActionKeep, ""),
			rule(tag.SeriesDescription, ActionKeep, ""),
			rule(tag.StudyInstanceUID, ActionUIDRemap, ""),
			rule(tag.SeriesInstanceUID, ActionUIDRemap, ""),
			rule(tag.SOPInstanceUID, ActionUIDRemap, ""),
		},
		DateShiftDays:         days(-730),
		PreserveRelationships: true,
		RemovePrivateTags:     true,
	}
}

func minimalAnonymization() *Template {
	return &Template{
		Name:    "Minimal Anonymization",
		Version: 1,
		Rules: []Rule{
			rule(tag.PatientName, ActionHash, ""),
			rule(tag.PatientID, ActionHash, ""),
			rule(tag.PatientBirthDate, ActionBlank, ""),
		},
		PreserveRelationships: true,
		RemovePrivateTags:     false,
	}
}
