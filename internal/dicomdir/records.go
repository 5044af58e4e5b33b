package dicomdir

import (
	"bytes"

	"github.com/FullMetalEd/fm-dicom/dicom"
	"github.com/FullMetalEd/fm-dicom/dicom/element"
	"github.com/FullMetalEd/fm-dicom/dicom/tag"
	"github.com/FullMetalEd/fm-dicom/dicom/value"
	"github.com/FullMetalEd/fm-dicom/dicom/vr"
)

// recordType is one of the four DirectoryRecordType strings.
type recordType string

const (
	recordPatient recordType = "PATIENT"
	recordStudy   recordType = "STUDY"
	recordSeries  recordType = "SERIES"
	recordImage   recordType = "IMAGE"
)

// field is one element to write into a directory record item, in order.
type field struct {
	tag tag.Tag
	vr  vr.VR
	str []string
}

func strField(t tag.Tag, v vr.VR, s string) field {
	return field{tag: t, vr: v, str: []string{s}}
}

func multiField(t tag.Tag, v vr.VR, ss []string) field {
	return field{tag: t, vr: v, str: ss}
}

// buildRecord assembles one directory record as a byte-encoded sequence
// item: the four required link/type fields followed by the level-specific
// required fields, each written in Explicit VR Little Endian per PS3.5 §7.5.
func buildRecord(rt recordType, fields []field) ([]byte, error) {
	all := append([]field{
		strField(tag.OffsetOfTheNextDirectoryRecord, vr.UnsignedLong, "0"),
		strField(tag.RecordInUseFlag, vr.UnsignedShort, "65535"),
		strField(tag.OffsetOfReferencedLowerLevelDirectoryEntity, vr.UnsignedLong, "0"),
		strField(tag.DirectoryRecordType, vr.CodeString, string(rt)),
	}, fields...)

	var buf bytes.Buffer
	for _, f := range all {
		if allEmpty(f.str) {
			continue
		}
		var val value.Value
		var err error
		switch f.vr {
		case vr.UnsignedLong, vr.UnsignedShort:
			val, err = intValueFromStrings(f.vr, f.str)
		default:
			val, err = value.NewStringValue(f.vr, f.str)
		}
		if err != nil {
			return nil, err
		}
		elem, err := element.NewElement(f.tag, f.vr, val)
		if err != nil {
			return nil, err
		}
		if err := dicom.WriteElementExplicitVR(&buf, elem); err != nil {
			return nil, err
		}
	}
	return itemFramed(buf.Bytes()), nil
}

func allEmpty(ss []string) bool {
	for _, s := range ss {
		if s != "" {
			return false
		}
	}
	return true
}

func intValueFromStrings(v vr.VR, ss []string) (value.Value, error) {
	ints := make([]int64, 0, len(ss))
	for _, s := range ss {
		n, err := parseUint(s)
		if err != nil {
			return nil, err
		}
		ints = append(ints, n)
	}
	return value.NewIntValue(v, ints)
}

func parseUint(s string) (int64, error) {
	var n int64
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, &parseError{s}
		}
		n = n*10 + int64(c-'0')
	}
	return n, nil
}

type parseError struct{ s string }

func (e *parseError) Error() string { return "not a valid unsigned integer: " + e.s }

// itemFramed wraps payload with a sequence item tag (FFFE,E000) and its
// explicit length (PS3.5 §7.5.1).
func itemFramed(payload []byte) []byte {
	var buf bytes.Buffer
	writeTagHeader(&buf, 0xFFFE, 0xE000, uint32(len(payload)))
	buf.Write(payload)
	return buf.Bytes()
}

func writeTagHeader(buf *bytes.Buffer, group, elem uint16, length uint32) {
	buf.WriteByte(byte(group))
	buf.WriteByte(byte(group >> 8))
	buf.WriteByte(byte(elem))
	buf.WriteByte(byte(elem >> 8))
	buf.WriteByte(byte(length))
	buf.WriteByte(byte(length >> 8))
	buf.WriteByte(byte(length >> 16))
	buf.WriteByte(byte(length >> 24))
}
