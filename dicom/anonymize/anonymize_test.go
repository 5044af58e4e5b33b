package anonymize

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/FullMetalEd/fm-dicom/dicom"
	"github.com/FullMetalEd/fm-dicom/dicom/element"
	"github.com/FullMetalEd/fm-dicom/dicom/tag"
	"github.com/FullMetalEd/fm-dicom/dicom/value"
	"github.com/FullMetalEd/fm-dicom/dicom/vr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestDataSet returns a minimal but writable dataset: the SOPClassUID /
// SOPInstanceUID pair dicom.WriteFile requires, plus patient and study
// identifiers that exercise every Action.
func newTestDataSet(t *testing.T, patientID, studyUID, seriesUID, sopUID string) *dicom.DataSet {
	t.Helper()
	ds := dicom.NewDataSet()

	set := func(tg tag.Tag, v vr.VR, s string) {
		val, err := value.NewStringValue(v, []string{s})
		require.NoError(t, err)
		elem, err := element.NewElement(tg, v, val)
		require.NoError(t, err)
		require.NoError(t, ds.Add(elem))
	}

	set(tag.SOPClassUID, vr.UniqueIdentifier, "1.2.840.10008.5.1.4.1.1.7")
	set(tag.SOPInstanceUID, vr.UniqueIdentifier, sopUID)
	set(tag.StudyInstanceUID, vr.UniqueIdentifier, studyUID)
	set(tag.SeriesInstanceUID, vr.UniqueIdentifier, seriesUID)
	set(tag.PatientName, vr.PersonName, "Doe^John")
	set(tag.PatientID, vr.LongString, patientID)
	set(tag.PatientBirthDate, vr.Date, "19700101")
	set(tag.StudyDate, vr.Date, "20200615")
	set(tag.PatientSex, vr.CodeString, "M")

	return ds
}

func writeTempDICOM(t *testing.T, ds *dicom.DataSet) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.dcm")
	require.NoError(t, dicom.WriteFile(path, ds))
	return path
}

func TestBlank(t *testing.T) {
	val, err := blank(vr.Date)
	require.NoError(t, err)
	assert.Equal(t, "19000101", val.String())

	val, err = blank(vr.Time)
	require.NoError(t, err)
	assert.Equal(t, "000000", val.String())

	val, err = blank(vr.DateTime)
	require.NoError(t, err)
	assert.Equal(t, "19000101000000", val.String())

	_, err = blank(vr.UniqueIdentifier)
	require.NoError(t, err)
}

func TestShiftDate(t *testing.T) {
	shifted, ok := shiftDate("20200615", -365)
	require.True(t, ok)
	assert.Equal(t, "20190616", shifted)

	_, ok = shiftDate("not-a-date", -365)
	assert.False(t, ok)
}

func TestShiftDateTime(t *testing.T) {
	shifted, ok := shiftDateTime("20200615120000.123456", -10)
	require.True(t, ok)
	assert.Equal(t, "20200605120000.123456", shifted)

	_, ok = shiftDateTime("short", -10)
	assert.False(t, ok)
}

func TestUIDMap_StableAcrossCalls(t *testing.T) {
	m := NewUIDMap()
	first := m.Remap("1.2.3")
	second := m.Remap("1.2.3")
	assert.Equal(t, first, second)

	other := m.Remap("1.2.4")
	assert.NotEqual(t, first, other)

	snap := m.Snapshot()
	assert.Equal(t, first, snap["1.2.3"])
	assert.Equal(t, other, snap["1.2.4"])
}

func TestUIDMap_Clear(t *testing.T) {
	m := NewUIDMap()
	first := m.Remap("1.2.3")
	m.Clear()
	second := m.Remap("1.2.3")
	assert.NotEqual(t, first, second)
}

func TestAnonymizer_Run_AppliesRulesAndWritesBack(t *testing.T) {
	ds := newTestDataSet(t, "PID001", "1.2.840.1111", "1.2.840.2222", "1.2.840.3333")
	path := writeTempDICOM(t, ds)

	tmpl := &Template{
		Name:    "test-template",
		Version: 1,
		Rules: []Rule{
			{Tag: tag.PatientName, Action: ActionReplace, Replacement: "ANON"},
			{Tag: tag.PatientID, Action: ActionHash},
			{Tag: tag.PatientBirthDate, Action: ActionBlank},
			{Tag: tag.StudyDate, Action: ActionDateShift},
			{Tag: tag.PatientSex, Action: ActionKeep},
			{Tag: tag.StudyInstanceUID, Action: ActionUIDRemap},
			{Tag: tag.SeriesInstanceUID, Action: ActionUIDRemap},
		},
		DateShiftDays: days(-30),
	}

	az := New(tmpl, nil)
	result := az.Run([]string{path})

	require.Empty(t, result.Failed)
	require.Empty(t, result.Skipped)
	assert.Equal(t, []string{path}, result.Succeeded)

	reread, err := dicom.ParseFile(path)
	require.NoError(t, err)

	name, err := reread.Get(tag.PatientName)
	require.NoError(t, err)
	assert.Equal(t, "ANON", name.Value().String())

	pid, err := reread.Get(tag.PatientID)
	require.NoError(t, err)
	assert.Len(t, pid.Value().String(), 16)
	assert.NotEqual(t, "PID001", pid.Value().String())

	dob, err := reread.Get(tag.PatientBirthDate)
	require.NoError(t, err)
	assert.Equal(t, "19000101", dob.Value().String())

	studyDate, err := reread.Get(tag.StudyDate)
	require.NoError(t, err)
	assert.Equal(t, "20200516", studyDate.Value().String())

	sex, err := reread.Get(tag.PatientSex)
	require.NoError(t, err)
	assert.Equal(t, "M", sex.Value().String())

	studyUID, err := reread.Get(tag.StudyInstanceUID)
	require.NoError(t, err)
	assert.NotEqual(t, "1.2.840.1111", studyUID.Value().String())

	assert.Len(t, result.UIDMap, 2)
}

func TestAnonymizer_Run_UIDConsistencyAcrossFiles(t *testing.T) {
	ds1 := newTestDataSet(t, "PID001", "1.2.840.1111", "1.2.840.2222", "1.2.840.3333")
	ds2 := newTestDataSet(t, "PID002", "1.2.840.1111", "1.2.840.4444", "1.2.840.5555")
	path1 := writeTempDICOM(t, ds1)
	path2 := writeTempDICOM(t, ds2)

	tmpl := &Template{
		Name: "uid-consistency",
		Rules: []Rule{
			{Tag: tag.StudyInstanceUID, Action: ActionUIDRemap},
		},
		PreserveRelationships: true,
	}

	az := New(tmpl, nil)
	result := az.Run([]string{path1, path2})
	require.Empty(t, result.Failed)

	r1, err := dicom.ParseFile(path1)
	require.NoError(t, err)
	r2, err := dicom.ParseFile(path2)
	require.NoError(t, err)

	u1, err := r1.Get(tag.StudyInstanceUID)
	require.NoError(t, err)
	u2, err := r2.Get(tag.StudyInstanceUID)
	require.NoError(t, err)

	assert.Equal(t, u1.Value().String(), u2.Value().String(), "same original StudyInstanceUID must remap to the same new UID")
}

func TestAnonymizer_Run_SkipsUnreadableFiles(t *testing.T) {
	dir := t.TempDir()
	bogus := filepath.Join(dir, "not-dicom.dcm")
	require.NoError(t, os.WriteFile(bogus, []byte("not a dicom file"), 0o644))

	tmpl := &Template{Name: "noop"}
	az := New(tmpl, nil)
	result := az.Run([]string{bogus})

	assert.Empty(t, result.Succeeded)
	assert.Empty(t, result.Failed)
	assert.Equal(t, []string{bogus}, result.Skipped)
}

func TestAnonymizer_Run_ContinuesBatchOnPerFileFailure(t *testing.T) {
	ds := newTestDataSet(t, "PID001", "1.2.840.1111", "1.2.840.2222", "1.2.840.3333")
	good := writeTempDICOM(t, ds)
	missing := filepath.Join(t.TempDir(), "does-not-exist.dcm")

	tmpl := &Template{
		Name:  "partial-failure",
		Rules: []Rule{{Tag: tag.PatientName, Action: ActionKeep}},
	}
	az := New(tmpl, nil)
	result := az.Run([]string{missing, good})

	assert.Equal(t, []string{good}, result.Succeeded)
	assert.Contains(t, result.FailedPaths(), missing)
}

func TestParseRuleTag(t *testing.T) {
	got, err := ParseRuleTag("PatientName")
	require.NoError(t, err)
	assert.Equal(t, tag.PatientName, got)

	got, err = ParseRuleTag("(0010,0010)")
	require.NoError(t, err)
	assert.Equal(t, tag.PatientName, got)

	_, err = ParseRuleTag("NotARealKeyword")
	assert.Error(t, err)
}

func TestBuiltinTemplates(t *testing.T) {
	templates := BuiltinTemplates()
	require.Len(t, templates, 4)

	names := make(map[string]bool)
	for _, tmpl := range templates {
		names[tmpl.Name] = true
		assert.NotEmpty(t, tmpl.Rules)
	}
	assert.True(t, names["Research Standard"])
	assert.True(t, names["Clinical Review"])
	assert.True(t, names["Teaching Collection"])
	assert.True(t, names["Minimal Anonymization"])
}
