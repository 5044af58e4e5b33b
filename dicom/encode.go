package dicom

import (
	"io"

	"github.com/FullMetalEd/fm-dicom/dicom/element"
)

// WriteElementExplicitVR writes a single element using Explicit VR Little
// Endian encoding — the format mandated for elements nested inside a
// sequence item (PS3.5 §7.5), regardless of the enclosing dataset's
// transfer syntax. Exported so DICOMDIR's manual record/item encoding can
// reuse the same element-level encoding the main writer uses.
func WriteElementExplicitVR(w io.Writer, elem *element.Element) error {
	return writeElement(w, elem, true)
}
