package app

import (
	"context"
	"sync"
	"time"

	"journeygrid/domain/core"
	domain "journeygrid/domain/journey"
	"journeygrid/internal"
	"journeygrid/internal/errors"
	"journeygrid/internal/journey"
	"journeygrid/ports"
)

// Snapshot is one immutable load of the journey table
type Snapshot struct {
	ID       core.SnapshotID        `json:"id"`
	LoadedAt time.Time              `json:"loadedAt"`
	Origin   string                 `json:"origin"`
	Result   *domain.LoadResult     `json:"result"`
	Stages   []journey.StageSummary `json:"stages"`
}

// SessionState is a caller's current selections
type SessionState struct {
	ID           core.SessionID      `json:"id"`
	Stages       domain.SelectionSet `json:"stages"`
	Stakeholders domain.SelectionSet `json:"stakeholders"`
}

type session struct {
	stages       domain.SelectionSet
	stakeholders domain.SelectionSet

	cacheKey core.DerivationHash
	cached   *domain.GridView
}

// JourneyService owns the loaded snapshot and the per-session selection sets.
// Derived grids are recomputed from (snapshot, selections) and memoized per session
// by a hash of those inputs.
type JourneyService struct {
	source   ports.SourcePort
	registry *domain.Registry
	loader   *journey.Loader
	selector *journey.HighlightSelector
	policy   domain.HighlightPolicy
	logger   *internal.Logger

	mu       sync.RWMutex
	snapshot *Snapshot
	sessions map[core.SessionID]*session
}

// NewJourneyService wires the service. source may be nil when only LoadText is used.
func NewJourneyService(source ports.SourcePort, reg *domain.Registry, policy domain.HighlightPolicy, logger *internal.Logger) *JourneyService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &JourneyService{
		source:   source,
		registry: reg,
		loader:   journey.NewLoader(reg, logger),
		selector: journey.NewHighlightSelector(reg),
		policy:   policy,
		logger:   logger.With("JourneyService"),
		sessions: make(map[core.SessionID]*session),
	}
}

// Reload reads the configured source and replaces the snapshot
func (s *JourneyService) Reload(ctx context.Context) (*Snapshot, error) {
	if s.source == nil {
		return nil, errors.ConfigInvalid("no journey source configured")
	}
	table, err := s.source.Read(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read journey source")
	}
	res, err := s.loader.LoadTable(table)
	if err != nil {
		return nil, err
	}
	return s.install(res, table.Origin), nil
}

// LoadText parses CSV text and replaces the snapshot
func (s *JourneyService) LoadText(text string) (*Snapshot, error) {
	res, err := s.loader.Load(text)
	if err != nil {
		return nil, err
	}
	return s.install(res, "inline"), nil
}

// install swaps in a new snapshot and resets every session to "all selected"
func (s *JourneyService) install(res *domain.LoadResult, origin string) *Snapshot {
	snap := &Snapshot{
		ID:       core.NewSnapshotID(),
		LoadedAt: time.Now().UTC(),
		Origin:   origin,
		Result:   res,
		Stages:   journey.SummarizeStages(res.Records, res.StageAxis),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snap
	for _, sess := range s.sessions {
		s.resetLocked(sess)
	}
	s.logger.Info("snapshot %s installed (%d records, %d sessions reset)", snap.ID, len(res.Records), len(s.sessions))
	return snap
}

func (s *JourneyService) resetLocked(sess *session) {
	sess.stages = domain.NewSelectionSet(s.snapshot.Result.StageAxis)
	sess.stakeholders = domain.NewSelectionSet(s.snapshot.Result.StakeholderAxis)
	sess.cacheKey = ""
	sess.cached = nil
}

// Snapshot returns the current snapshot, or NOT_FOUND before the first load
func (s *JourneyService) Snapshot() (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return nil, errors.NotFound("journey snapshot")
	}
	return s.snapshot, nil
}

// NewSession starts a session with every value of both axes selected
func (s *JourneyService) NewSession() (SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot == nil {
		return SessionState{}, errors.NotFound("journey snapshot")
	}
	id := core.NewSessionID()
	sess := &session{}
	s.resetLocked(sess)
	s.sessions[id] = sess
	return stateOf(id, sess), nil
}

// Session returns the current selections of a session
func (s *JourneyService) Session(id core.SessionID) (SessionState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return SessionState{}, errors.NotFound("session " + id.String())
	}
	return stateOf(id, sess), nil
}

// EndSession forgets a session
func (s *JourneyService) EndSession(id core.SessionID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Toggle flips one value of an axis selection
func (s *JourneyService) Toggle(id core.SessionID, axis domain.Axis, value string) (SessionState, error) {
	return s.update(id, axis, func(set domain.SelectionSet) domain.SelectionSet { return set.Toggle(value) })
}

// SelectAll selects every value of an axis
func (s *JourneyService) SelectAll(id core.SessionID, axis domain.Axis) (SessionState, error) {
	return s.update(id, axis, domain.SelectionSet.SelectAll)
}

// Clear deselects every value of an axis
func (s *JourneyService) Clear(id core.SessionID, axis domain.Axis) (SessionState, error) {
	return s.update(id, axis, domain.SelectionSet.Clear)
}

func (s *JourneyService) update(id core.SessionID, axis domain.Axis, op func(domain.SelectionSet) domain.SelectionSet) (SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return SessionState{}, errors.NotFound("session " + id.String())
	}
	switch axis {
	case domain.AxisStage:
		sess.stages = op(sess.stages)
	case domain.AxisStakeholder:
		sess.stakeholders = op(sess.stakeholders)
	default:
		return SessionState{}, errors.InvalidInput("unknown axis " + string(axis))
	}
	return stateOf(id, sess), nil
}

// DeriveGrid returns the pruned pivot for a session's current selections
func (s *JourneyService) DeriveGrid(id core.SessionID) (domain.GridView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return domain.GridView{}, errors.NotFound("session " + id.String())
	}

	key := core.ComputeDerivationHash(s.snapshot.ID, sess.stages.Values(), sess.stakeholders.Values())
	if sess.cached != nil && sess.cacheKey == key {
		return *sess.cached, nil
	}
	view := journey.DeriveGrid(s.snapshot.Result.Records, sess.stages, sess.stakeholders)
	if view.Collisions > 0 {
		s.logger.Warn("%d records share a (stage, stakeholder) cell; later rows win", view.Collisions)
	}
	sess.cacheKey = key
	sess.cached = &view
	return view, nil
}

// HighlightsFor returns the condensed-view fields for a record under the configured policy
func (s *JourneyService) HighlightsFor(rec *domain.Record) []string {
	return s.selector.SelectWithPolicy(rec, s.policy)
}

// Registry returns the field registry records are mapped with
func (s *JourneyService) Registry() *domain.Registry {
	return s.registry
}

// Policy returns the configured highlight policy
func (s *JourneyService) Policy() domain.HighlightPolicy {
	return s.policy
}

// RecordAt finds the record shown at (stage, stakeholder); the last matching row wins
func (s *JourneyService) RecordAt(stage, stakeholder string) (*domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return nil, errors.NotFound("journey snapshot")
	}
	records := s.snapshot.Result.Records
	for i := len(records) - 1; i >= 0; i-- {
		if records[i].Stage == stage && records[i].Stakeholder == stakeholder {
			return &records[i], nil
		}
	}
	return nil, errors.NotFound("record " + stage + " / " + stakeholder)
}

func stateOf(id core.SessionID, sess *session) SessionState {
	return SessionState{ID: id, Stages: sess.stages, Stakeholders: sess.stakeholders}
}
