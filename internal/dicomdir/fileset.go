package dicomdir

import "strings"

const defaultFileSetID = "DICOM_EXPORT"

// SanitizeFileSetID coerces a candidate file-set label into a valid CS-VR
// FileSetID: uppercase, `[A-Z0-9 _]` only, invalid characters become `_`,
// runs of space-and/or-`_` collapse to a single `_`, the result is trimmed
// and truncated to 16 characters. An empty or all-invalid input falls back
// to "DICOM_EXPORT".
func SanitizeFileSetID(candidate string) string {
	upper := strings.ToUpper(candidate)

	var b strings.Builder
	for _, r := range upper {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == ' ', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	collapsed := collapseUnderscores(b.String())
	trimmed := strings.Trim(collapsed, "_ ")
	if len(trimmed) > 16 {
		trimmed = trimmed[:16]
	}
	trimmed = strings.Trim(trimmed, "_ ")

	if trimmed == "" {
		return defaultFileSetID
	}
	return trimmed
}

// collapseUnderscores collapses each run of space-and/or-underscore runes
// into a single rune: `_` if the run contains at least one underscore
// (an invalid-char replacement sitting next to a literal space, e.g.
// "H_PITAL _1" from "Hôpital #1", collapses to "H_PITAL_1"), otherwise a
// single space (so "Research  Archive"-style runs of literal spaces stay
// space-separated rather than turning into underscores).
func collapseUnderscores(s string) string {
	var b strings.Builder
	var run []rune
	flushRun := func() {
		if len(run) == 0 {
			return
		}
		hasUnderscore := false
		for _, r := range run {
			if r == '_' {
				hasUnderscore = true
				break
			}
		}
		if hasUnderscore {
			b.WriteRune('_')
		} else {
			b.WriteRune(' ')
		}
		run = run[:0]
	}

	for _, r := range s {
		if r == '_' || r == ' ' {
			run = append(run, r)
			continue
		}
		flushRun()
		b.WriteRune(r)
	}
	flushRun()
	return b.String()
}
