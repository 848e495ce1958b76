package builder

import (
	"github.com/roach88/qbuilder/internal/selection"
)

// EventKind identifies a builder notification.
type EventKind int

const (
	// EventSelectionChanged follows every mutation and every catalog switch.
	EventSelectionChanged EventKind = iota

	// EventQueryTextChanged carries freshly synthesized text.
	EventQueryTextChanged

	// EventRiskFlagged is published before asking the Confirmer about a
	// selection likely to produce a crossjoin.
	EventRiskFlagged

	// EventSynthesisFailed carries a message fit for the user.
	EventSynthesisFailed

	// EventEditorTextSent is published by SendTextToEditor.
	EventEditorTextSent
)

func (k EventKind) String() string {
	switch k {
	case EventSelectionChanged:
		return "SelectionChanged"
	case EventQueryTextChanged:
		return "QueryTextChanged"
	case EventRiskFlagged:
		return "RiskFlagged"
	case EventSynthesisFailed:
		return "SynthesisFailed"
	case EventEditorTextSent:
		return "EditorTextSent"
	default:
		return "unknown"
	}
}

// Event is a builder notification. Only the fields relevant to Kind are set.
type Event struct {
	Kind    EventKind
	Change  selection.Change // EventSelectionChanged
	Text    string           // EventQueryTextChanged, EventEditorTextSent
	Message string           // EventRiskFlagged, EventSynthesisFailed
	Err     error            // EventSynthesisFailed
}

// Observer receives builder events. Notify is called synchronously on the
// goroutine that caused the event.
type Observer interface {
	Notify(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

// Notify calls f(e).
func (f ObserverFunc) Notify(e Event) {
	f(e)
}

type nopObserver struct{}

func (nopObserver) Notify(Event) {}
