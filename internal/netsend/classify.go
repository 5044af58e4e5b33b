// Package netsend implements a compatibility-negotiating C-STORE client with
// automatic transcoding fallback, built on the dimse association/DUL/SCU
// stack.
package netsend

import (
	"strings"

	"github.com/FullMetalEd/fm-dicom/dimse/scu"
)

// outcome classifies a single C-STORE attempt, driving whether a file is
// counted as sent, flagged as a warning, retried via transcode, or treated
// as a hard failure.
type outcome int

const (
	outcomeSuccess outcome = iota
	outcomeWarning
	outcomeFormatIncompatible
	outcomeHardFailure
)

// Status codes are classified per the table below. Values beyond
// StatusSuccess are duplicated here (rather than imported from
// dimse/dimse) since several of them are not in that package's curated
// constant list.
const (
	statusWarningDataSetCoercion       uint16 = 0xB000
	statusWarningElementsDiscarded     uint16 = 0xB006
	statusWarningDataSetDoesNotMatch   uint16 = 0xB007
	statusFailureOutOfResources        uint16 = 0xA900
	statusFailureProcessingFailure     uint16 = 0xC000
	statusFailureSOPClassNotSupported  uint16 = 0x0122
	statusFailureNotAuthorized         uint16 = 0x0124
)

func classifyStatus(status uint16) outcome {
	switch status {
	case 0x0000:
		return outcomeSuccess
	case statusWarningDataSetCoercion, statusWarningElementsDiscarded, statusWarningDataSetDoesNotMatch:
		return outcomeWarning
	case statusFailureOutOfResources, statusFailureProcessingFailure,
		statusFailureSOPClassNotSupported, statusFailureNotAuthorized:
		return outcomeFormatIncompatible
	default:
		return outcomeHardFailure
	}
}

// formatIncompatiblePhrases are substrings (case-insensitive) that, when
// present in a transport/protocol error's message, indicate the remote
// peer rejected the file's encoding rather than a transport failure.
var formatIncompatiblePhrases = []string{
	"transfer syntax",
	"presentation context",
	"jpeg",
	"jpeg2000",
	"compression",
	"not accepted",
	"not supported",
	"cannot decompress",
	"no suitable presentation context",
}

// classifyError dispatches on the C-STORE result: a typed status error is
// classified by its numeric code, any other error is classified by
// scanning its message for known incompatibility phrases.
func classifyError(err error) outcome {
	if err == nil {
		return outcomeSuccess
	}
	if statusErr, ok := err.(*scu.StatusError); ok {
		return classifyStatus(statusErr.Status)
	}
	msg := strings.ToLower(err.Error())
	for _, phrase := range formatIncompatiblePhrases {
		if strings.Contains(msg, phrase) {
			return outcomeFormatIncompatible
		}
	}
	return outcomeHardFailure
}
