package validate

import (
	"testing"

	"github.com/FullMetalEd/fm-dicom/dicom"
	"github.com/FullMetalEd/fm-dicom/dicom/element"
	"github.com/FullMetalEd/fm-dicom/dicom/tag"
	"github.com/FullMetalEd/fm-dicom/dicom/value"
	"github.com/FullMetalEd/fm-dicom/dicom/vr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setString(t *testing.T, ds *dicom.DataSet, tg tag.Tag, v vr.VR, s string) {
	t.Helper()
	val, err := value.NewStringValue(v, []string{s})
	require.NoError(t, err)
	elem, err := element.NewElement(tg, v, val)
	require.NoError(t, err)
	require.NoError(t, ds.Add(elem))
}

func validDataset(t *testing.T) *dicom.DataSet {
	t.Helper()
	ds := dicom.NewDataSet()
	setString(t, ds, tag.SOPClassUID, vr.UniqueIdentifier, "1.2.840.10008.5.1.4.1.1.7")
	setString(t, ds, tag.SOPInstanceUID, vr.UniqueIdentifier, "1.2.3.4.5")
	setString(t, ds, tag.PatientID, vr.LongString, "PID001")
	setString(t, ds, tag.StudyInstanceUID, vr.UniqueIdentifier, "1.2.3.4.6")
	setString(t, ds, tag.SeriesInstanceUID, vr.UniqueIdentifier, "1.2.3.4.7")
	setString(t, ds, tag.TransferSyntaxUID, vr.UniqueIdentifier, "1.2.840.10008.1.2.1")
	setString(t, ds, tag.Modality, vr.CodeString, "CR")
	setString(t, ds, tag.PatientName, vr.PersonName, "Doe^John")
	setString(t, ds, tag.StudyDate, vr.Date, "20240101")
	return ds
}

func TestValidateDataset_CleanFileHasNoErrors(t *testing.T) {
	ds := validDataset(t)
	result := ValidateDataset(ds, "clean.dcm")
	assert.False(t, result.HasErrors())
}

func TestRequiredTagsRule_MissingElement(t *testing.T) {
	ds := dicom.NewDataSet()
	issues := requiredTagsRule{}.ValidateDataset(ds, "empty.dcm")
	assert.Len(t, issues, 5)
	for _, i := range issues {
		assert.Equal(t, SeverityError, i.Severity)
	}
}

func TestRequiredTagsRule_CTNeedsSliceThickness(t *testing.T) {
	ds := validDataset(t)
	setString(t, ds, tag.Modality, vr.CodeString, "CT")
	issues := requiredTagsRule{}.ValidateDataset(ds, "ct.dcm")
	require.Len(t, issues, 1)
	assert.Equal(t, "SliceThickness", issues[0].Tag)
}

func TestUIDFormatRule_RejectsBadUID(t *testing.T) {
	ds := validDataset(t)
	setString(t, ds, tag.SOPInstanceUID, vr.UniqueIdentifier, "not-a-uid")
	issues := uidFormatRule{}.ValidateDataset(ds, "bad.dcm")
	require.Len(t, issues, 1)
	assert.Equal(t, "UID Format", issues[0].Category)
}

func TestDateTimeFormatRule_RejectsBadDate(t *testing.T) {
	ds := validDataset(t)
	setString(t, ds, tag.StudyDate, vr.Date, "20241332")
	issues := dateTimeFormatRule{}.ValidateDataset(ds, "bad-date.dcm")
	require.Len(t, issues, 1)
	assert.Equal(t, "Date/Time Format", issues[0].Category)
}

func TestDateTimeFormatRule_RejectsShortDate(t *testing.T) {
	ds := validDataset(t)
	setString(t, ds, tag.StudyDate, vr.Date, "202401")
	issues := dateTimeFormatRule{}.ValidateDataset(ds, "short-date.dcm")
	require.Len(t, issues, 1)
}

func TestPersonNameFormatRule_RejectsLongComponent(t *testing.T) {
	ds := validDataset(t)
	long := ""
	for i := 0; i < 65; i++ {
		long += "a"
	}
	setString(t, ds, tag.PatientName, vr.PersonName, long)
	issues := personNameFormatRule{}.ValidateDataset(ds, "long-name.dcm")
	require.Len(t, issues, 1)
}

func TestTransferSyntaxRule_MissingIsError(t *testing.T) {
	ds := validDataset(t)
	require.NoError(t, ds.Remove(tag.TransferSyntaxUID))
	issues := transferSyntaxRule{}.ValidateDataset(ds, "no-ts.dcm")
	require.Len(t, issues, 1)
	assert.Equal(t, SeverityError, issues[0].Severity)
}

func TestTransferSyntaxRule_UnrecognizedIsInfo(t *testing.T) {
	ds := validDataset(t)
	setString(t, ds, tag.TransferSyntaxUID, vr.UniqueIdentifier, "1.2.9.9.9")
	issues := transferSyntaxRule{}.ValidateDataset(ds, "weird-ts.dcm")
	require.Len(t, issues, 1)
	assert.Equal(t, SeverityInfo, issues[0].Severity)
}

func TestDuplicateUIDsRule(t *testing.T) {
	a := validDataset(t)
	b := validDataset(t)

	issues := duplicateUIDsRule{}.ValidateCollection(map[string]*dicom.DataSet{
		"a.dcm": a,
		"b.dcm": b,
	})
	require.Len(t, issues, 1)
	assert.Equal(t, SeverityError, issues[0].Severity)
}

func TestStudyConsistencyRule_MismatchedPatientID(t *testing.T) {
	a := validDataset(t)
	b := validDataset(t)
	setString(t, b, tag.PatientID, vr.LongString, "DIFFERENT")

	issues := studyConsistencyRule{}.ValidateCollection(map[string]*dicom.DataSet{
		"a.dcm": a,
		"b.dcm": b,
	})
	require.Len(t, issues, 1)
	assert.Equal(t, SeverityError, issues[0].Severity)
}

func TestSeriesConsistencyRule_MismatchedModality(t *testing.T) {
	a := validDataset(t)
	b := validDataset(t)
	setString(t, b, tag.Modality, vr.CodeString, "MR")

	issues := seriesConsistencyRule{}.ValidateCollection(map[string]*dicom.DataSet{
		"a.dcm": a,
		"b.dcm": b,
	})
	require.Len(t, issues, 1)
	assert.Equal(t, SeverityWarning, issues[0].Severity)
}

func TestComputeStatistics(t *testing.T) {
	a := validDataset(t)
	b := validDataset(t)
	setString(t, b, tag.SOPInstanceUID, vr.UniqueIdentifier, "1.2.3.4.99")

	stats := computeStatistics(map[string]*dicom.DataSet{"a.dcm": a, "b.dcm": b})
	assert.Equal(t, 2, stats.TotalInstances)
	assert.Equal(t, 1, stats.UniquePatients)
	assert.Equal(t, 2, stats.ModalityHistogram["CR"])
	assert.InDelta(t, 100.0, stats.TagPresencePercent["PatientName"], 0.001)
}

func TestPixelDataRule_RequiresGeometryTags(t *testing.T) {
	ds := validDataset(t)
	bytesVal, err := value.NewBytesValue(vr.OtherByte, make([]byte, 100))
	require.NoError(t, err)
	elem, err := element.NewElement(tag.PixelData, vr.OtherByte, bytesVal)
	require.NoError(t, err)
	require.NoError(t, ds.Add(elem))

	issues := pixelDataRule{}.ValidateDataset(ds, "pixels.dcm")
	assert.Len(t, issues, 6)
	for _, i := range issues {
		assert.Equal(t, SeverityError, i.Severity)
	}
}

func TestPixelDataRule_NoPixelDataIsClean(t *testing.T) {
	ds := validDataset(t)
	issues := pixelDataRule{}.ValidateDataset(ds, "no-pixels.dcm")
	assert.Empty(t, issues)
}

func TestValidateFile_UnreadableYieldsInvalidResult(t *testing.T) {
	result := ValidateFile("/nonexistent/path/to/file.dcm")
	assert.False(t, result.IsValidDicom)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, SeverityError, result.Issues[0].Severity)
}
