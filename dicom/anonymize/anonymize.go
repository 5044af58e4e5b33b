// Package anonymize applies rule-based de-identification templates to DICOM
// datasets, maintaining a UID map and date shift consistently across a run.
package anonymize

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/FullMetalEd/fm-dicom/dicom"
	"github.com/FullMetalEd/fm-dicom/dicom/element"
	"github.com/FullMetalEd/fm-dicom/dicom/tag"
	"github.com/FullMetalEd/fm-dicom/dicom/uid"
	"github.com/FullMetalEd/fm-dicom/dicom/value"
	"github.com/FullMetalEd/fm-dicom/dicom/vr"
)

// Action is the transformation a Rule applies to every matching element.
type Action string

const (
	ActionRemove    Action = "REMOVE"
	ActionKeep      Action = "KEEP"
	ActionBlank     Action = "BLANK"
	ActionReplace   Action = "REPLACE"
	ActionHash      Action = "HASH"
	ActionDateShift Action = "DATE_SHIFT"
	ActionUIDRemap  Action = "UID_REMAP"
)

// Rule binds one Action to the elements matching a tag selector.
type Rule struct {
	Tag         tag.Tag
	Action      Action
	Replacement string
	Description string
}

// ParseRuleTag resolves a tag selector — a dictionary keyword or a literal
// "(GGGG,EEEE)" pair — to a concrete Tag.
func ParseRuleTag(selector string) (tag.Tag, error) {
	if strings.HasPrefix(strings.TrimSpace(selector), "(") {
		return tag.Parse(selector)
	}
	info, err := tag.FindByKeyword(selector)
	if err != nil {
		return tag.Tag{}, fmt.Errorf("unknown tag selector %q: %w", selector, err)
	}
	return info.Tag, nil
}

// Template is a named, versioned, persisted anonymization configuration.
type Template struct {
	Name                   string    `json:"name"`
	Version                int       `json:"version"`
	Rules                  []Rule    `json:"rules"`
	DateShiftDays          *int      `json:"date_shift_days,omitempty"`
	PreserveRelationships  bool      `json:"preserve_relationships"`
	RemovePrivateTags      bool      `json:"remove_private_tags"`
	RemoveCurves           bool      `json:"remove_curves"`
	RemoveOverlays         bool      `json:"remove_overlays"`
	Created                time.Time `json:"created"`
	Modified               time.Time `json:"modified"`
}

// UIDMap maps original UID strings to freshly generated replacements,
// scoped to a single anonymization run and safe for concurrent rule
// application across files.
type UIDMap struct {
	mu sync.Mutex
	m  map[string]string
}

// NewUIDMap returns an empty map.
func NewUIDMap() *UIDMap {
	return &UIDMap{m: make(map[string]string)}
}

// Remap returns the new UID for original, generating and storing one on
// first sight. The same original always yields the same new UID for the
// lifetime of this map.
func (u *UIDMap) Remap(original string) string {
	u.mu.Lock()
	defer u.mu.Unlock()

	if existing, ok := u.m[original]; ok {
		return existing
	}
	fresh := uid.Generate()
	u.m[original] = fresh
	return fresh
}

// Snapshot returns a copy of the map's current contents.
func (u *UIDMap) Snapshot() map[string]string {
	u.mu.Lock()
	defer u.mu.Unlock()

	out := make(map[string]string, len(u.m))
	for k, v := range u.m {
		out[k] = v
	}
	return out
}

// Clear empties the map. Used when preserve_relationships starts a fresh run.
func (u *UIDMap) Clear() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.m = make(map[string]string)
}

// Result describes the outcome of running a template over a batch of files.
type Result struct {
	Succeeded []string
	Failed    map[string]error
	Skipped   []string
	UIDMap    map[string]string
	Duration  time.Duration
}

// Anonymizer runs one Template against a set of files, owning the run-scoped
// UID map. Construct one per run; do not reuse across templates with
// different preserve_relationships semantics.
type Anonymizer struct {
	Template *Template
	UIDs     *UIDMap
}

// New builds an Anonymizer for template. If preserveUIDs is non-nil it is
// used as the run's UID map; pass nil to start with an empty one. When the
// template sets preserve_relationships the map is cleared so the run starts
// fresh; otherwise its existing mappings are kept.
func New(t *Template, preserveUIDs *UIDMap) *Anonymizer {
	uids := preserveUIDs
	if uids == nil {
		uids = NewUIDMap()
	}
	if t.PreserveRelationships {
		uids.Clear()
	}
	return &Anonymizer{Template: t, UIDs: uids}
}

// Run applies the template to every path in files, in place. Per-file
// failures are recorded and do not abort the batch.
func (a *Anonymizer) Run(files []string) *Result {
	start := time.Now()
	result := &Result{Failed: make(map[string]error)}

	for _, path := range files {
		if err := a.applyFile(path); err != nil {
			if isInvalidDicom(err) {
				result.Skipped = append(result.Skipped, path)
				continue
			}
			result.Failed[path] = err
			continue
		}
		result.Succeeded = append(result.Succeeded, path)
	}

	result.UIDMap = a.UIDs.Snapshot()
	result.Duration = time.Since(start)
	return result
}

// isInvalidDicom reports whether err stems from the file not being a
// readable DICOM stream at all — these files are skipped rather
// than counted as batch failures.
func isInvalidDicom(err error) bool {
	return errors.Is(err, dicom.ErrInvalidPreamble) ||
		errors.Is(err, dicom.ErrInvalidTag) ||
		errors.Is(err, dicom.ErrInvalidVR) ||
		errors.Is(err, dicom.ErrInvalidTransferSyntax) ||
		errors.Is(err, dicom.ErrMissingTransferSyntax)
}

func (a *Anonymizer) applyFile(path string) error {
	ds, err := dicom.ParseFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	for _, rule := range a.Template.Rules {
		if err := a.applyRule(ds, rule); err != nil {
			// Rule-level failures are warnings; continue with remaining rules.
			continue
		}
	}

	if err := a.applyCleanups(ds); err != nil {
		return fmt.Errorf("cleanup %s: %w", path, err)
	}

	if err := dicom.WriteFileWithOptions(path, ds, dicom.WriteOptions{Overwrite: true, Atomic: true}); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func (a *Anonymizer) applyRule(ds *dicom.DataSet, rule Rule) error {
	elem, err := ds.Get(rule.Tag)
	if err != nil {
		// Tag absent: REMOVE/BLANK/etc. on a missing element is a no-op.
		return nil
	}

	switch rule.Action {
	case ActionKeep:
		return nil
	case ActionRemove:
		return ds.Remove(rule.Tag)
	case ActionBlank:
		return a.blank(elem)
	case ActionReplace:
		return a.replace(elem, rule.Replacement)
	case ActionHash:
		return a.hash(elem)
	case ActionDateShift:
		return a.dateShift(elem)
	case ActionUIDRemap:
		return a.uidRemap(elem)
	default:
		return fmt.Errorf("unknown action %q", rule.Action)
	}
}

// applyCleanups runs the template-level post-rule cleanups.
func (a *Anonymizer) applyCleanups(ds *dicom.DataSet) error {
	if a.Template.RemovePrivateTags {
		if err := ds.RemovePrivateTags(); err != nil {
			return err
		}
	}
	if a.Template.RemoveCurves {
		if err := ds.RemoveGroupTags(0x5000); err != nil {
			return err
		}
	}
	if a.Template.RemoveOverlays {
		if err := ds.RemoveGroupTags(0x6000); err != nil {
			return err
		}
	}
	return nil
}

// blank holds the VR-appropriate zero value for BLANK.
func blank(v vr.VR) (value.Value, error) {
	switch v {
	case vr.Date:
		return value.NewStringValue(v, []string{"19000101"})
	case vr.Time:
		return value.NewStringValue(v, []string{"000000"})
	case vr.DateTime:
		return value.NewStringValue(v, []string{"19000101000000"})
	case vr.IntegerString, vr.DecimalString:
		return value.NewStringValue(v, []string{"0"})
	case vr.UnsignedShort, vr.SignedShort, vr.UnsignedLong, vr.SignedLong:
		return value.NewIntValue(v, []int64{0})
	case vr.FloatingPointSingle, vr.FloatingPointDouble:
		return value.NewFloatValue(v, []float64{0.0})
	default:
		if v.IsStringType() {
			return value.NewStringValue(v, []string{""})
		}
		return nil, fmt.Errorf("BLANK not supported for VR %s", v.String())
	}
}

func (a *Anonymizer) blank(elem *element.Element) error {
	val, err := blank(elem.VR())
	if err != nil {
		return err
	}
	return elem.SetValue(val)
}

// replace sets elem's value to replacement, coerced to its VR. Numeric
// coercion failures fall back to 0 / 0.0.
func (a *Anonymizer) replace(elem *element.Element, replacement string) error {
	v := elem.VR()
	switch {
	case v.IsStringType():
		val, err := value.NewStringValue(v, []string{replacement})
		if err != nil {
			return err
		}
		return elem.SetValue(val)
	case v == vr.SignedShort || v == vr.UnsignedShort || v == vr.SignedLong ||
		v == vr.UnsignedLong || v == vr.SignedVeryLong || v == vr.UnsignedVeryLong:
		n, err := strconv.ParseInt(replacement, 10, 64)
		if err != nil {
			n = 0
		}
		val, err := value.NewIntValue(v, []int64{n})
		if err != nil {
			return err
		}
		return elem.SetValue(val)
	case v == vr.FloatingPointSingle || v == vr.FloatingPointDouble:
		f, err := strconv.ParseFloat(replacement, 64)
		if err != nil {
			f = 0.0
		}
		val, err := value.NewFloatValue(v, []float64{f})
		if err != nil {
			return err
		}
		return elem.SetValue(val)
	default:
		return fmt.Errorf("REPLACE not supported for VR %s", v.String())
	}
}

// hash replaces elem's value with the first 16 hex characters of the
// SHA-256 digest of its current stringified value. PN values are prefixed
// with "HASH".
func (a *Anonymizer) hash(elem *element.Element) error {
	sum := sha256.Sum256([]byte(elem.Value().String()))
	digest := hex.EncodeToString(sum[:])[:16]

	v := elem.VR()
	if v == vr.PersonName {
		digest = "HASH" + digest
	}
	val, err := value.NewStringValue(v, []string{digest})
	if err != nil {
		return err
	}
	return elem.SetValue(val)
}

// dateShift applies the template's date_shift_days to DA/DT elements; TM is
// never shifted, and parse failures leave the value unchanged.
func (a *Anonymizer) dateShift(elem *element.Element) error {
	if a.Template.DateShiftDays == nil {
		return nil
	}
	days := *a.Template.DateShiftDays

	switch elem.VR() {
	case vr.Date:
		shifted, ok := shiftDate(elem.Value().String(), days)
		if !ok {
			return nil
		}
		val, err := value.NewStringValue(vr.Date, []string{shifted})
		if err != nil {
			return err
		}
		return elem.SetValue(val)
	case vr.DateTime:
		shifted, ok := shiftDateTime(elem.Value().String(), days)
		if !ok {
			return nil
		}
		val, err := value.NewStringValue(vr.DateTime, []string{shifted})
		if err != nil {
			return err
		}
		return elem.SetValue(val)
	case vr.Time:
		return nil
	default:
		return nil
	}
}

// shiftDate shifts a YYYYMMDD value by days, returning ok=false on parse failure.
func shiftDate(s string, days int) (string, bool) {
	t, err := time.Parse("20060102", s)
	if err != nil {
		return "", false
	}
	return t.AddDate(0, 0, days).Format("20060102"), true
}

// shiftDateTime shifts the leading YYYYMMDDHHMMSS of a DT value by days,
// preserving any trailing fraction/timezone characters unchanged.
func shiftDateTime(s string, days int) (string, bool) {
	if len(s) < 14 {
		return "", false
	}
	head, tail := s[:14], s[14:]
	t, err := time.Parse("20060102150405", head)
	if err != nil {
		return "", false
	}
	return t.AddDate(0, 0, days).Format("20060102150405") + tail, true
}

// uidRemap looks up elem's current value in the run's UID map, generating
// and storing a fresh UID on first sight.
func (a *Anonymizer) uidRemap(elem *element.Element) error {
	original := elem.Value().String()
	remapped := a.UIDs.Remap(original)

	val, err := value.NewStringValue(vr.UniqueIdentifier, []string{remapped})
	if err != nil {
		return err
	}
	return elem.SetValue(val)
}

// FailedPaths returns the failed file paths in ascending order, for
// deterministic reporting.
func (r *Result) FailedPaths() []string {
	keys := make([]string, 0, len(r.Failed))
	for k := range r.Failed {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
