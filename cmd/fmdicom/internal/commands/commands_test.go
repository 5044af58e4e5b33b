package commands

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/FullMetalEd/fm-dicom/dicom"
	"github.com/FullMetalEd/fm-dicom/dicom/element"
	"github.com/FullMetalEd/fm-dicom/dicom/tag"
	"github.com/FullMetalEd/fm-dicom/dicom/value"
	"github.com/FullMetalEd/fm-dicom/dicom/vr"
	"github.com/FullMetalEd/fm-dicom/internal/config"
	"github.com/FullMetalEd/fm-dicom/internal/hierarchy"
	"github.com/FullMetalEd/fm-dicom/internal/netsend"
	"github.com/FullMetalEd/fm-dicom/internal/staging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestFile(t *testing.T, dir, name, patientID, studyUID, seriesUID, sopUID string) string {
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
	set(tag.PatientID, vr.LongString, patientID)
	set(tag.PatientName, vr.PersonName, "Doe^Jane")
	set(tag.StudyInstanceUID, vr.UniqueIdentifier, studyUID)
	set(tag.SeriesInstanceUID, vr.UniqueIdentifier, seriesUID)
	set(tag.Modality, vr.CodeString, "CT")
	set(tag.SeriesNumber, vr.IntegerString, "1")
	set(tag.InstanceNumber, vr.IntegerString, "1")

	path := filepath.Join(dir, name)
	require.NoError(t, dicom.WriteFile(path, ds))
	return path
}

func TestResolveInput_SingleFile(t *testing.T) {
	dir := t.TempDir()
	p := writeTestFile(t, dir, "a.dcm", "PID1", "1.1", "1.1.1", "1.1.1.1")

	paths, release, err := ResolveInput(staging.NewManager(), p)
	require.NoError(t, err)
	defer release()
	assert.Equal(t, []string{p}, paths)
}

func TestResolveInput_Directory(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "a.dcm", "PID1", "1.1", "1.1.1", "1.1.1.1")
	writeTestFile(t, dir, "b.dcm", "PID2", "1.2", "1.2.1", "1.2.1.1")

	paths, release, err := ResolveInput(staging.NewManager(), dir)
	require.NoError(t, err)
	defer release()
	assert.Len(t, paths, 2)
}

func TestResolveInput_Zip(t *testing.T) {
	srcDir := t.TempDir()
	p := writeTestFile(t, srcDir, "a.dcm", "PID1", "1.1", "1.1.1", "1.1.1.1")

	zipPath := filepath.Join(t.TempDir(), "archive.zip")
	zf, err := os.Create(zipPath)
	require.NoError(t, err)
	zw := zip.NewWriter(zf)
	w, err := zw.Create("a.dcm")
	require.NoError(t, err)
	data, err := os.ReadFile(p)
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, zf.Close())

	stager := staging.NewManager()
	paths, release, err := ResolveInput(stager, zipPath)
	require.NoError(t, err)
	assert.Len(t, paths, 1)
	assert.Equal(t, 1, stager.Active())

	release()
	assert.Equal(t, 0, stager.Active())
}

func TestListRegularFiles(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "a.dcm", "PID1", "1.1", "1.1.1", "1.1.1.1")
	writeTestFile(t, dir, "b.dcm", "PID2", "1.2", "1.2.1", "1.2.1.1")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))

	paths, err := listRegularFiles(dir)
	require.NoError(t, err)
	assert.Len(t, paths, 2)
}

func TestSendCmd_ResolveDestination_FromConfig(t *testing.T) {
	rc := &RunContext{
		Settings: config.Config{
			AETitle: "DCMSCU",
			Destinations: []config.Destination{
				{Label: "pacs", AETitle: "PACS_AE", Host: "10.0.0.1", Port: 104},
			},
		},
	}
	cmd := &SendCmd{Destination: "pacs"}

	dest, err := cmd.resolveDestination(rc)
	require.NoError(t, err)
	assert.Equal(t, netsend.Destination{Label: "pacs", AETitle: "PACS_AE", Host: "10.0.0.1", Port: 104}, dest)
}

func TestSendCmd_ResolveDestination_ExplicitOverride(t *testing.T) {
	rc := &RunContext{Settings: config.Config{}}
	cmd := &SendCmd{Host: "192.168.1.5", Port: 11112, CalledAE: "REMOTE_AE"}

	dest, err := cmd.resolveDestination(rc)
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.5", dest.Host)
	assert.Equal(t, 11112, dest.Port)
	assert.Equal(t, "REMOTE_AE", dest.AETitle)
}

func TestSendCmd_ResolveDestination_UnknownLabel(t *testing.T) {
	rc := &RunContext{Settings: config.Config{}}
	cmd := &SendCmd{Destination: "missing"}

	_, err := cmd.resolveDestination(rc)
	assert.Error(t, err)
}

func TestSendCmd_ResolveDestination_Incomplete(t *testing.T) {
	rc := &RunContext{Settings: config.Config{}}
	cmd := &SendCmd{Host: "10.0.0.1"}

	_, err := cmd.resolveDestination(rc)
	assert.Error(t, err)
}

func buildMergeTestTree(t *testing.T) *hierarchy.Tree {
	t.Helper()
	dir := t.TempDir()
	p1 := writeTestFile(t, dir, "a.dcm", "PID1", "1.1", "1.1.1", "1.1.1.1")
	p2 := writeTestFile(t, dir, "b.dcm", "PID2", "1.2", "1.2.1", "1.2.1.1")

	build := hierarchy.Build([]string{p1, p2})
	require.Empty(t, build.Failed)
	return build.Tree
}

func TestMergeCmd_MergePatients(t *testing.T) {
	tree := buildMergeTestTree(t)
	cmd := &MergeCmd{Level: "patient", Primary: "PID1", With: []string{"PID2"}}

	result, err := cmd.mergePatients(tree)
	require.NoError(t, err)
	assert.Len(t, result.RewrittenFiles, 1)
}

func TestMergeCmd_MergePatients_UnknownPrimary(t *testing.T) {
	tree := buildMergeTestTree(t)
	cmd := &MergeCmd{Level: "patient", Primary: "NOPE", With: []string{"PID2"}}

	_, err := cmd.mergePatients(tree)
	assert.Error(t, err)
}

func TestMergeCmd_MergeStudies_UnknownSecondary(t *testing.T) {
	tree := buildMergeTestTree(t)
	cmd := &MergeCmd{Level: "study", Primary: "1.1", With: []string{"9.9"}}

	_, err := cmd.mergeStudies(tree)
	assert.Error(t, err)
}

func TestDeleteCmd_RejectsPathNotInLoadedSet(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "a.dcm", "PID1", "1.1", "1.1.1", "1.1.1.1")

	rc := &RunContext{Stager: staging.NewManager()}
	cmd := &DeleteCmd{Path: dir, Files: []string{filepath.Join(dir, "not-loaded.dcm")}}

	err := cmd.Run(rc)
	assert.Error(t, err)
}
