package form

import (
	"errors"
	"fmt"
)

// ErrUnknownEvent is returned for event types Dispatch does not handle.
var ErrUnknownEvent = errors.New("unknown event")

// EventType names an operator action.
type EventType string

const (
	EventAddRow      EventType = "add_row"
	EventRemoveRow   EventType = "remove_row"
	EventUpdateField EventType = "update_field"
	EventSetMode     EventType = "set_mode"
	EventSetFreight  EventType = "set_freight"
	EventSetHeader   EventType = "set_header"
)

// Event is one raw input event. Row-scoped events are keyed by Row.
type Event struct {
	Type   EventType `json:"type"`
	Mode   string    `json:"mode,omitempty"`
	Row    Handle    `json:"row,omitempty"`
	Field  string    `json:"field,omitempty"`
	Value  string    `json:"value,omitempty"`
	Values RowInit   `json:"values,omitempty"`
}

// Dispatch routes ev to the matching operation. For add_row it returns the
// new row's handle. A rejected mode value is not an error.
func (s *Session) Dispatch(ev Event) (Handle, error) {
	switch ev.Type {
	case EventAddRow:
		mode, ok := ParseMode(ev.Mode)
		if !ok {
			return "", ErrUnknownMode
		}
		return s.AddRow(mode, ev.Values)
	case EventRemoveRow:
		mode, ok := ParseMode(ev.Mode)
		if !ok {
			return "", ErrUnknownMode
		}
		return "", s.RemoveRow(mode, ev.Row)
	case EventUpdateField:
		mode, ok := ParseMode(ev.Mode)
		if !ok {
			return "", ErrUnknownMode
		}
		return "", s.UpdateField(mode, ev.Row, ev.Field, ev.Value)
	case EventSetMode:
		s.SwitchMode(ev.Value)
		return "", nil
	case EventSetFreight:
		s.SetFreight(ev.Value)
		return "", nil
	case EventSetHeader:
		return "", s.SetHeader(ev.Field, ev.Value)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Type)
	}
}
