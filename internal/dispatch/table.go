package dispatch

import "fmt"

// KeyBinding maps a key chord to an action.
type KeyBinding struct {
	Trigger KeyTrigger
	Action  Action
}

// ButtonBinding maps a pointer button in a region to an action.
type ButtonBinding struct {
	Trigger ButtonTrigger
	Action  Action
}

// Table is an immutable, ordered binding table.
type Table struct {
	keys    []KeyBinding
	buttons []ButtonBinding
}

// NewTable copies the bindings and rejects duplicate triggers and mask
// arguments that could never be resolved.
func NewTable(keys []KeyBinding, buttons []ButtonBinding) (*Table, error) {
	t := &Table{
		keys:    make([]KeyBinding, len(keys)),
		buttons: make([]ButtonBinding, len(buttons)),
	}

	seenKeys := make(map[KeyTrigger]int, len(keys))
	for i, kb := range keys {
		if prev, ok := seenKeys[kb.Trigger]; ok {
			return nil, fmt.Errorf("keys[%d]: trigger %s duplicates keys[%d]", i, kb.Trigger, prev)
		}
		seenKeys[kb.Trigger] = i
		if needsClickedTag(kb.Action) {
			return nil, fmt.Errorf("keys[%d]: %s needs a non-empty tag mask", i, kb.Action.Cmd)
		}
		t.keys[i] = KeyBinding{Trigger: kb.Trigger, Action: cloneAction(kb.Action)}
	}

	seenButtons := make(map[ButtonTrigger]int, len(buttons))
	for i, bb := range buttons {
		if prev, ok := seenButtons[bb.Trigger]; ok {
			return nil, fmt.Errorf("buttons[%d]: trigger %s duplicates buttons[%d]", i, bb.Trigger, prev)
		}
		seenButtons[bb.Trigger] = i
		if bb.Trigger.Region != RegionTagBar && needsClickedTag(bb.Action) {
			return nil, fmt.Errorf("buttons[%d]: %s needs a non-empty tag mask outside the tag bar", i, bb.Action.Cmd)
		}
		t.buttons[i] = ButtonBinding{Trigger: bb.Trigger, Action: cloneAction(bb.Action)}
	}
	return t, nil
}

// needsClickedTag reports whether a mask of 0 has no meaning for a.
// view 0 means "previous tag set" and is always valid.
func needsClickedTag(a Action) bool {
	if a.Arg.Kind != ArgMask || a.Arg.Mask != 0 {
		return false
	}
	switch a.Cmd {
	case CmdToggleView, CmdTag, CmdToggleTag:
		return true
	}
	return false
}

func cloneAction(a Action) Action {
	if a.Arg.Argv != nil {
		a.Arg.Argv = append([]string(nil), a.Arg.Argv...)
	}
	return a
}

// LookupKey returns the action of the first binding whose modifier set and
// key equal trig exactly.
func (t *Table) LookupKey(trig KeyTrigger) (Action, bool) {
	if t == nil {
		return Action{}, false
	}
	for _, kb := range t.keys {
		if kb.Trigger == trig {
			return cloneAction(kb.Action), true
		}
	}
	return Action{}, false
}

// LookupButton returns the action of the first binding matching trig.
func (t *Table) LookupButton(trig ButtonTrigger) (Action, bool) {
	if t == nil {
		return Action{}, false
	}
	for _, bb := range t.buttons {
		if bb.Trigger == trig {
			return cloneAction(bb.Action), true
		}
	}
	return Action{}, false
}

// Click resolves a button press. On the tag bar, a mask argument of 0 is
// replaced by the mask of the clicked tag (tag < 0 leaves it unchanged).
func (t *Table) Click(trig ButtonTrigger, tag int) (Action, bool) {
	a, ok := t.LookupButton(trig)
	if !ok {
		return a, false
	}
	if trig.Region == RegionTagBar && a.Arg.Kind == ArgMask && a.Arg.Mask == 0 && tag >= 0 && tag < 32 {
		a.Arg.Mask = 1 << uint(tag)
	}
	return a, true
}

// Keys returns a copy of the key bindings in table order.
func (t *Table) Keys() []KeyBinding {
	if t == nil {
		return nil
	}
	out := make([]KeyBinding, len(t.keys))
	for i, kb := range t.keys {
		out[i] = KeyBinding{Trigger: kb.Trigger, Action: cloneAction(kb.Action)}
	}
	return out
}

// Buttons returns a copy of the button bindings in table order.
func (t *Table) Buttons() []ButtonBinding {
	if t == nil {
		return nil
	}
	out := make([]ButtonBinding, len(t.buttons))
	for i, bb := range t.buttons {
		out[i] = ButtonBinding{Trigger: bb.Trigger, Action: cloneAction(bb.Action)}
	}
	return out
}
