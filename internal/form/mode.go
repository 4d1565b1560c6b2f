package form

// requiredFields lists, per mode, the row fields that must be filled before
// the form can be submitted.
var requiredFields = map[Mode][]string{
	ModeBill: {FieldQuantity, FieldUnit, FieldCostRate, FieldSellRate},
	ModeCash: {FieldCatalogRef, FieldBatches, FieldSellPerBatch},
}

// ModeController owns the active pricing mode.
type ModeController struct {
	state    *State
	editor   *Editor
	required map[Mode]bool
}

// NewModeController starts in the mode named by prior, or bill when prior is
// empty or unrecognised.
func NewModeController(state *State, editor *Editor, prior string) *ModeController {
	mode, ok := ParseMode(prior)
	if !ok {
		mode = ModeBill
	}
	m := &ModeController{state: state, editor: editor, required: make(map[Mode]bool, 2)}
	m.enter(mode)
	return m
}

// Mode returns the active mode.
func (m *ModeController) Mode() Mode {
	return m.state.Mode
}

// Switch moves to the mode named by raw. Unrecognised values are rejected and
// leave everything as it was.
func (m *ModeController) Switch(raw string) bool {
	mode, ok := ParseMode(raw)
	if !ok {
		return false
	}
	m.enter(mode)
	return true
}

// Required reports whether the fields of mode's collection are required.
func (m *ModeController) Required(mode Mode) bool {
	return m.required[mode]
}

// RequiredFields returns the field names required in the active mode.
func (m *ModeController) RequiredFields() []string {
	fields := requiredFields[m.state.Mode]
	out := make([]string, len(fields))
	copy(out, fields)
	return out
}

// enter finishes the transition before recomputing, so totals always reflect
// the collection that just became live.
func (m *ModeController) enter(mode Mode) {
	m.state.Mode = mode
	for candidate := range requiredFields {
		m.required[candidate] = candidate == mode
	}
	m.editor.Recompute()
}
