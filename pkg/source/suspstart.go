package source

// suspStartKind distinguishes the three states a directory record's SUSP
// starting offset can be in before the first record has been examined.
type suspStartKind int

const (
	// suspUnknown means no record has been decoded yet; the SUSP engine
	// must speculatively try the first system-use entry as an "SP" marker
	// to discover the true starting offset.
	suspUnknown suspStartKind = iota
	// suspDisabled means a prior record's system-use area had no SUSP "SP"
	// marker, so SUSP decoding is turned off for the rest of this source.
	suspDisabled
	// suspSkip means a prior record established a fixed byte offset (the
	// SP marker's len_skp) at which every subsequent record's system-use
	// area begins.
	suspSkip
)

// SuspStart models the three-state "susp_starting_index" value tracked on a
// Source: unknown (not yet probed), disabled (probed and absent), or a fixed
// skip count (probed and present). Decoders should switch on Disabled/Skip
// rather than comparing against a sentinel int.
type SuspStart struct {
	kind suspStartKind
	skip int
}

// UnknownSuspStart returns the initial state, before any directory record
// has been examined for an SP entry.
func UnknownSuspStart() SuspStart {
	return SuspStart{kind: suspUnknown}
}

// DisabledSuspStart returns the state recorded once a record's system-use
// area has been checked and found to carry no SP marker.
func DisabledSuspStart() SuspStart {
	return SuspStart{kind: suspDisabled}
}

// SkipSuspStart returns the state recorded once an SP marker has been found,
// fixing the byte offset at which every record's system-use area begins.
func SkipSuspStart(skip int) SuspStart {
	return SuspStart{kind: suspSkip, skip: skip}
}

// IsUnknown reports whether no record has been probed yet.
func (s SuspStart) IsUnknown() bool { return s.kind == suspUnknown }

// IsDisabled reports whether SUSP decoding has been turned off.
func (s SuspStart) IsDisabled() bool { return s.kind == suspDisabled }

// Skip returns the fixed skip offset and true if this state is a resolved
// skip count; otherwise it returns (0, false).
func (s SuspStart) Skip() (int, bool) {
	if s.kind != suspSkip {
		return 0, false
	}
	return s.skip, true
}

// ExtensionID identifies a registered SUSP extension by its ER-advertised
// extension identifier and version. A zero-value ExtensionID (empty ID)
// denotes base SUSP, matched regardless of which extension is active.
type ExtensionID struct {
	ID      string
	Version uint8
}

// IsBase reports whether this ExtensionID denotes base SUSP rather than a
// named extension.
func (e ExtensionID) IsBase() bool { return e.ID == "" }
