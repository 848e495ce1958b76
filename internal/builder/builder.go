package builder

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/roach88/qbuilder/internal/catalog"
	"github.com/roach88/qbuilder/internal/daxgen"
	"github.com/roach88/qbuilder/internal/filter"
	"github.com/roach88/qbuilder/internal/model"
	"github.com/roach88/qbuilder/internal/selection"
	"github.com/roach88/qbuilder/internal/session"
)

// Builder is the controller of one query builder session.
type Builder struct {
	set       *selection.Set
	cat       catalog.Catalog
	synth     *daxgen.Synthesizer
	observer  Observer
	executor  Executor
	confirmer Confirmer
	ids       IDGenerator
	now       func() time.Time
	sessionID string
	policy    selection.RemovePolicy

	// Entries dropped by the last Load or SwitchCatalog.
	unresolved []session.Unresolved

	// Cached synthesis result, valid until the next change.
	cached  bool
	text    string
	textErr error
}

// Option configures a Builder.
type Option func(*Builder)

// WithSynthesizer replaces the default synthesizer.
func WithSynthesizer(s *daxgen.Synthesizer) Option {
	return func(b *Builder) {
		b.synth = s
	}
}

// WithObserver registers the event observer.
func WithObserver(o Observer) Option {
	return func(b *Builder) {
		b.observer = o
	}
}

// WithExecutor sets where RunQuery sends requests.
func WithExecutor(e Executor) Option {
	return func(b *Builder) {
		b.executor = e
	}
}

// WithConfirmer sets who decides about risky queries. Without one, risky
// queries are declined.
func WithConfirmer(c Confirmer) Option {
	return func(b *Builder) {
		b.confirmer = c
	}
}

// WithIDGenerator replaces the UUIDv7 generator.
//
// Use testutil.NewSequenceIDs for deterministic tests.
func WithIDGenerator(g IDGenerator) Option {
	return func(b *Builder) {
		b.ids = g
	}
}

// WithClock sets the time source for request timestamps.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		b.now = now
	}
}

// WithSessionID fixes the session ID instead of generating one.
func WithSessionID(id string) Option {
	return func(b *Builder) {
		b.sessionID = id
	}
}

// WithRemovePolicy sets what RemoveColumn does with dependent filters and
// order entries.
func WithRemovePolicy(p selection.RemovePolicy) Option {
	return func(b *Builder) {
		b.policy = p
	}
}

// New creates a Builder with an empty selection over cat.
func New(cat catalog.Catalog, opts ...Option) *Builder {
	b := &Builder{
		cat:       cat,
		synth:     daxgen.New(),
		observer:  nopObserver{},
		confirmer: decline{},
		ids:       UUIDv7Generator{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.sessionID == "" {
		b.sessionID = b.ids.NewID()
	}
	b.set = selection.New(
		selection.WithRemovePolicy(b.policy),
		selection.WithListener(selection.ListenerFunc(b.selectionChanged)),
	)
	return b
}

func (b *Builder) selectionChanged(c selection.Change) {
	b.invalidate()
	b.observer.Notify(Event{Kind: EventSelectionChanged, Change: c})
}

func (b *Builder) invalidate() {
	b.cached = false
	b.text = ""
	b.textErr = nil
}

// SessionID returns the ID written to saved documents and requests.
func (b *Builder) SessionID() string {
	return b.sessionID
}

// Selection returns the live selection. Mutations made through it are
// observed like any other.
func (b *Builder) Selection() *selection.Set {
	return b.set
}

// Snapshot returns a copy of the selection safe to use elsewhere.
func (b *Builder) Snapshot() selection.Snapshot {
	return b.set.Snapshot()
}

// Catalog returns the active catalog.
func (b *Builder) Catalog() catalog.Catalog {
	return b.cat
}

// Capabilities returns the capabilities of the active catalog.
func (b *Builder) Capabilities() model.Capabilities {
	return b.cat.Capabilities()
}

// SwitchCatalog makes cat the active catalog and looks every entry up again
// in it, so data types and roles follow the new model. Authored measures
// are kept as long as their table exists. Entries that no longer resolve
// leave the selection and are reported in the result and by Unresolved.
// Filters whose operator became illegal stay and are listed by
// InvalidFilters until corrected.
func (b *Builder) SwitchCatalog(cat catalog.Catalog) *session.LoadResult {
	doc := b.Save()
	b.cat = cat
	result := session.Deserialize(doc, cat)
	b.unresolved = result.Unresolved
	b.set.Replace(result.Selection, selection.ChangeModel)

	slog.Info("catalog switched",
		"model", cat.Capabilities().Model,
		"treatas", cat.Capabilities().TreatAs,
		"unresolved", len(result.Unresolved),
		"invalid_filters", len(b.InvalidFilters()))
	return result
}

// Unresolved returns the entries dropped by the last Load or SwitchCatalog
// because the catalog no longer has them.
func (b *Builder) Unresolved() []session.Unresolved {
	return slices.Clone(b.unresolved)
}

// InvalidFilters returns the filters that are illegal under the active catalog.
func (b *Builder) InvalidFilters() []int {
	return b.set.InvalidFilters(b.Capabilities())
}

// AddFilter adds a filter on col with the first operator applicable under
// the active catalog.
func (b *Builder) AddFilter(col model.Column) int {
	return b.set.AddFilter(col, b.Capabilities())
}

// SetFilterOperator changes a filter operator, checked against the active
// catalog.
func (b *Builder) SetFilterOperator(index int, op filter.Operator) error {
	return b.set.SetFilterOperator(index, op, b.Capabilities())
}

// Send is the drop target for a column dragged out of the model browser.
// The column becomes a filter when asFilter is set and a projected column
// otherwise.
func (b *Builder) Send(col model.Column, asFilter bool) error {
	if asFilter {
		b.AddFilter(col)
		return nil
	}
	return b.set.AddColumn(col)
}

// QueryText returns the query for the current selection, synthesizing it
// if the selection changed since the last call.
func (b *Builder) QueryText() (string, error) {
	if b.cached {
		return b.text, b.textErr
	}

	text, err := b.synth.BuildSnapshot(b.Capabilities(), b.set.Snapshot())
	b.cached, b.text, b.textErr = true, text, err
	if err != nil {
		slog.Debug("synthesis failed", "session", b.sessionID, "error", err)
		b.observer.Notify(Event{Kind: EventSynthesisFailed, Message: userMessage(err), Err: err})
		return "", err
	}
	b.observer.Notify(Event{Kind: EventQueryTextChanged, Text: text})
	return text, nil
}

// RunQuery synthesizes the query and submits it to the Executor. A risky
// selection is confirmed first; a refusal returns ErrCancelled.
func (b *Builder) RunQuery(ctx context.Context) (ExecutionRequest, error) {
	if !b.set.CanRunQuery() {
		return ExecutionRequest{}, ErrNothingToRun
	}
	text, err := b.QueryText()
	if err != nil {
		return ExecutionRequest{}, err
	}

	if b.executor == nil {
		return ExecutionRequest{}, ErrNoExecutor
	}

	risky := b.set.IsRisky()
	confirmed := false
	if risky {
		b.observer.Notify(Event{Kind: EventRiskFlagged, Message: RiskMessage})
		ok, err := b.confirmer.ConfirmRisky(ctx, RiskMessage)
		if err != nil {
			return ExecutionRequest{}, fmt.Errorf("confirm risky query: %w", err)
		}
		if !ok {
			slog.Info("risky query declined", "session", b.sessionID)
			return ExecutionRequest{}, ErrCancelled
		}
		confirmed = true
	}

	req := ExecutionRequest{
		ID:          b.ids.NewID(),
		SessionID:   b.sessionID,
		Query:       text,
		Target:      b.Capabilities(),
		Risky:       risky,
		Confirmed:   confirmed,
		RequestedAt: b.now(),
	}
	if err := b.executor.Submit(ctx, req); err != nil {
		return ExecutionRequest{}, fmt.Errorf("submit query %s: %w", req.ID, err)
	}

	slog.Info("query submitted",
		"id", req.ID,
		"session", req.SessionID,
		"model", req.Target.Model,
		"risky", req.Risky)
	return req, nil
}

// SendTextToEditor returns the query text for a text editor.
func (b *Builder) SendTextToEditor() (string, error) {
	if !b.set.CanSendTextToEditor() {
		return "", ErrNothingToRun
	}
	text, err := b.QueryText()
	if err != nil {
		return "", err
	}
	b.observer.Notify(Event{Kind: EventEditorTextSent, Text: text})
	return text, nil
}

// Save returns the session document for the current selection.
func (b *Builder) Save() session.Document {
	return session.Serialize(b.set.Snapshot(), b.sessionID, b.Capabilities().Model)
}

// Load replaces the selection with the resolvable parts of doc and adopts
// its session ID. The returned result lists what did not load.
func (b *Builder) Load(doc session.Document) *session.LoadResult {
	result := session.Deserialize(doc, b.cat)
	if doc.ID != "" {
		b.sessionID = doc.ID
	}
	b.unresolved = result.Unresolved
	b.set.Restore(result.Selection)

	if !result.OK() {
		slog.Warn("session loaded with problems",
			"session", b.sessionID,
			"problems", len(result.Problems),
			"unresolved", len(result.Unresolved))
	}
	return result
}

// userMessage turns a synthesis error into a sentence for the user.
func userMessage(err error) string {
	return "The query cannot be built: " + err.Error()
}
