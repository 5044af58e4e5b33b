package validate

import (
	"strings"
	"time"

	"github.com/FullMetalEd/fm-dicom/dicom"
	"github.com/FullMetalEd/fm-dicom/dicom/datetime"
	"github.com/FullMetalEd/fm-dicom/dicom/element"
	"github.com/FullMetalEd/fm-dicom/dicom/tag"
	"github.com/FullMetalEd/fm-dicom/dicom/value"
	"github.com/FullMetalEd/fm-dicom/dicom/vr"
	"github.com/go-playground/validator/v10"
)

// fieldValidator backs the format checks below with go-playground/validator's
// Var-level validation (no struct tags needed, since the data being checked
// comes from DICOM elements rather than Go structs).
var fieldValidator = validator.New()

func issue(sev Severity, category, message, tg, path, fix string) Issue {
	return Issue{
		Severity:     sev,
		Category:     category,
		Message:      message,
		Tag:          tg,
		FilePath:     path,
		SuggestedFix: fix,
		Timestamp:    time.Now(),
	}
}

// requiredTagsRule checks presence and non-emptiness of the identifying
// tags every DICOM object must carry, plus modality-specific extras.
type requiredTagsRule struct{}

func (requiredTagsRule) ValidateDataset(ds *dicom.DataSet, path string) []Issue {
	var issues []Issue

	required := []struct {
		t       tag.Tag
		keyword string
	}{
		{tag.SOPClassUID, "SOPClassUID"},
		{tag.SOPInstanceUID, "SOPInstanceUID"},
		{tag.PatientID, "PatientID"},
		{tag.StudyInstanceUID, "StudyInstanceUID"},
		{tag.SeriesInstanceUID, "SeriesInstanceUID"},
	}
	for _, r := range required {
		if !nonEmpty(ds, r.t) {
			issues = append(issues, issue(SeverityError, "Required Tags",
				r.keyword+" is missing or empty", r.keyword, path,
				"populate "+r.keyword+" before proceeding"))
		}
	}

	modality := stringValue(ds, tag.Modality)
	switch modality {
	case "CT":
		if !nonEmpty(ds, tag.SliceThickness) {
			issues = append(issues, issue(SeverityError, "Required Tags",
				"SliceThickness is required for CT modality", "SliceThickness", path, ""))
		}
	case "MR":
		if !nonEmpty(ds, tag.RepetitionTime) {
			issues = append(issues, issue(SeverityError, "Required Tags",
				"RepetitionTime is required for MR modality", "RepetitionTime", path, ""))
		}
		if !nonEmpty(ds, tag.EchoTime) {
			issues = append(issues, issue(SeverityError, "Required Tags",
				"EchoTime is required for MR modality", "EchoTime", path, ""))
		}
	}

	return issues
}

// uidFormatRule checks every UI-VR element against the DICOM UID charset
// and length limit.
type uidFormatRule struct{}

func (uidFormatRule) ValidateDataset(ds *dicom.DataSet, path string) []Issue {
	var issues []Issue
	for _, elem := range ds.Elements() {
		if elem.VR() != vr.UniqueIdentifier {
			continue
		}
		s := elem.Value().String()
		if s == "" {
			continue
		}
		if err := fieldValidator.Var(s, "max=64"); err != nil || !isValidUIDFormat(s) {
			issues = append(issues, issue(SeverityError, "UID Format",
				"value is not a well-formed UID", elem.Tag().String(), path, ""))
		}
	}
	return issues
}

func isValidUIDFormat(s string) bool {
	if len(s) == 0 || len(s) > 64 {
		return false
	}
	parts := strings.Split(s, ".")
	for _, p := range parts {
		if p == "" {
			return false
		}
		for _, c := range p {
			if c < '0' || c > '9' {
				return false
			}
		}
	}
	return true
}

// dateTimeFormatRule checks DA/TM elements against DICOM temporal syntax
// and calendar validity.
type dateTimeFormatRule struct{}

func (dateTimeFormatRule) ValidateDataset(ds *dicom.DataSet, path string) []Issue {
	var issues []Issue
	for _, elem := range ds.Elements() {
		s := elem.Value().String()
		if s == "" {
			continue
		}
		switch elem.VR() {
		case vr.Date:
			if len(s) != 8 {
				issues = append(issues, issue(SeverityError, "Date/Time Format",
					"DA value must be YYYYMMDD", elem.Tag().String(), path, ""))
				continue
			}
			if _, err := datetime.ParseDate(s); err != nil {
				issues = append(issues, issue(SeverityError, "Date/Time Format",
					"not a valid calendar date: "+err.Error(), elem.Tag().String(), path, ""))
			}
		case vr.Time:
			if _, err := datetime.ParseTime(s); err != nil {
				issues = append(issues, issue(SeverityError, "Date/Time Format",
					"not a valid TM value: "+err.Error(), elem.Tag().String(), path, ""))
			}
		}
	}
	return issues
}

// personNameFormatRule rejects control characters (other than tab/CR/LF)
// and over-long `^`-delimited components in PN elements.
type personNameFormatRule struct{}

func (personNameFormatRule) ValidateDataset(ds *dicom.DataSet, path string) []Issue {
	var issues []Issue
	for _, elem := range ds.Elements() {
		if elem.VR() != vr.PersonName {
			continue
		}
		s := elem.Value().String()
		if s == "" {
			continue
		}
		if hasDisallowedControlChars(s) {
			issues = append(issues, issue(SeverityError, "Person Name Format",
				"contains disallowed control characters", elem.Tag().String(), path, ""))
		}
		for _, component := range strings.Split(s, "^") {
			if len(component) > 64 {
				issues = append(issues, issue(SeverityError, "Person Name Format",
					"component exceeds 64 characters", elem.Tag().String(), path, ""))
				break
			}
		}
	}
	return issues
}

func hasDisallowedControlChars(s string) bool {
	for _, r := range s {
		if r == '\t' || r == '\r' || r == '\n' {
			continue
		}
		if r < 0x20 {
			return true
		}
	}
	return false
}

// valueRepresentationRule flags elements whose VR does not match the
// dictionary's expected VR set. INFO severity: multi-VR tags exist.
type valueRepresentationRule struct{}

func (valueRepresentationRule) ValidateDataset(ds *dicom.DataSet, path string) []Issue {
	var issues []Issue
	for _, elem := range ds.Elements() {
		info, err := tag.Find(elem.Tag())
		if err != nil {
			continue
		}
		matches := false
		for _, expected := range info.VRs {
			if expected == elem.VR() {
				matches = true
				break
			}
		}
		if !matches {
			issues = append(issues, issue(SeverityInfo, "Value Representation",
				"VR "+elem.VR().String()+" does not match dictionary-expected VR for "+info.Keyword,
				elem.Tag().String(), path, ""))
		}
	}
	return issues
}

// pixelDataRule checks that image geometry tags accompany PixelData and
// that the pixel byte count is plausible.
type pixelDataRule struct{}

func (pixelDataRule) ValidateDataset(ds *dicom.DataSet, path string) []Issue {
	var issues []Issue
	pixelElem, err := ds.Get(tag.PixelData)
	if err != nil {
		return nil
	}

	for _, r := range []struct {
		t       tag.Tag
		keyword string
	}{
		{tag.Rows, "Rows"},
		{tag.Columns, "Columns"},
		{tag.BitsAllocated, "BitsAllocated"},
		{tag.BitsStored, "BitsStored"},
		{tag.HighBit, "HighBit"},
		{tag.PixelRepresentation, "PixelRepresentation"},
	} {
		if !nonEmpty(ds, r.t) {
			issues = append(issues, issue(SeverityError, "Pixel Data",
				r.keyword+" is required when PixelData is present", r.keyword, path, ""))
		}
	}

	rows := intValue(ds, tag.Rows)
	cols := intValue(ds, tag.Columns)
	bitsAllocated := intValue(ds, tag.BitsAllocated)
	if rows > 0 && cols > 0 && bitsAllocated > 0 {
		expected := rows * cols * ((bitsAllocated + 7) / 8)
		actual := pixelByteCount(pixelElem)
		if expected > 0 && actual < expected/10 {
			issues = append(issues, issue(SeverityWarning, "Pixel Data",
				"pixel data byte count is less than 10% of the expected size", "PixelData", path, ""))
		}
	}

	return issues
}

func pixelByteCount(elem *element.Element) int64 {
	if b, ok := elem.Value().(interface{ Bytes() []byte }); ok {
		return int64(len(b.Bytes()))
	}
	return 0
}

// transferSyntaxRule checks file meta carries a TransferSyntaxUID and flags
// unrecognized ones as informational.
type transferSyntaxRule struct{}

var recognizedTransferSyntaxes = map[string]bool{
	"1.2.840.10008.1.2":      true, // Implicit VR LE
	"1.2.840.10008.1.2.1":    true, // Explicit VR LE
	"1.2.840.10008.1.2.2":    true, // Explicit VR BE
	"1.2.840.10008.1.2.4.50": true, // JPEG Baseline
	"1.2.840.10008.1.2.4.90": true, // JPEG 2000 Lossless
	"1.2.840.10008.1.2.4.91": true, // JPEG 2000
	"1.2.840.10008.1.2.5":    true, // RLE Lossless
}

func (transferSyntaxRule) ValidateDataset(ds *dicom.DataSet, path string) []Issue {
	ts := stringValue(ds, tag.TransferSyntaxUID)
	if ts == "" {
		return []Issue{issue(SeverityError, "Transfer Syntax",
			"file meta is missing TransferSyntaxUID", "TransferSyntaxUID", path, "")}
	}
	if !recognizedTransferSyntaxes[ts] {
		return []Issue{issue(SeverityInfo, "Transfer Syntax",
			"transfer syntax "+ts+" is not in the recognized set", "TransferSyntaxUID", path, "")}
	}
	return nil
}

func nonEmpty(ds *dicom.DataSet, t tag.Tag) bool {
	elem, err := ds.Get(t)
	if err != nil {
		return false
	}
	return elem.Value().String() != ""
}

func stringValue(ds *dicom.DataSet, t tag.Tag) string {
	elem, err := ds.Get(t)
	if err != nil {
		return ""
	}
	return elem.Value().String()
}

func intValue(ds *dicom.DataSet, t tag.Tag) int64 {
	elem, err := ds.Get(t)
	if err != nil {
		return 0
	}
	if iv, ok := elem.Value().(*value.IntValue); ok {
		ints := iv.Ints()
		if len(ints) > 0 {
			return ints[0]
		}
	}
	return 0
}
