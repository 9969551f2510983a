package mock

import (
	"errors"
	"maps"

	ftypes "go.hackfix.me/winfw/firewall/types"
)

// Mock is an in-memory firewall policy. It records every call made to it, and
// can be configured to fail specific operations.
type Mock struct {
	Enabled map[ftypes.ProfileKind]bool
	// Submitted holds the rules added to the rule collection, in order.
	Submitted []ftypes.Rule

	// Call logs, in the order the calls were made.
	QueryCalls    []ftypes.ProfileKind
	MutationCalls []ftypes.ProfileKind

	Released      int
	RulesReleased int

	failErr      error // to simulate errors
	failQuery    map[ftypes.ProfileKind]error
	failMutation map[ftypes.ProfileKind]error
	failRules    error
	failAdd      error
}

var _ ftypes.Policy = (*Mock)(nil)

// New returns a new Mock with the given profiles enabled.
func New(enabled ...ftypes.ProfileKind) *Mock {
	m := &Mock{
		Enabled:      make(map[ftypes.ProfileKind]bool, len(ftypes.Profiles)),
		failQuery:    make(map[ftypes.ProfileKind]error),
		failMutation: make(map[ftypes.ProfileKind]error),
	}
	for _, p := range ftypes.Profiles {
		m.Enabled[p] = false
	}
	for _, p := range enabled {
		m.Enabled[p] = true
	}
	return m
}

// ProfileEnabled implements the ftypes.Policy interface.
func (m *Mock) ProfileEnabled(profile ftypes.ProfileKind) (bool, error) {
	m.QueryCalls = append(m.QueryCalls, profile)
	if m.failErr != nil {
		return false, m.failErr
	}
	if err := m.failQuery[profile]; err != nil {
		return false, err
	}
	enabled, ok := m.Enabled[profile]
	if !ok {
		return false, errors.New("unknown profile")
	}
	return enabled, nil
}

// SetProfileEnabled implements the ftypes.Policy interface.
func (m *Mock) SetProfileEnabled(profile ftypes.ProfileKind, enabled bool) error {
	m.MutationCalls = append(m.MutationCalls, profile)
	if m.failErr != nil {
		return m.failErr
	}
	if err := m.failMutation[profile]; err != nil {
		return err
	}
	if _, ok := m.Enabled[profile]; !ok {
		return errors.New("unknown profile")
	}
	m.Enabled[profile] = enabled
	return nil
}

// Rules implements the ftypes.Policy interface.
func (m *Mock) Rules() (ftypes.RuleCollection, error) {
	if m.failErr != nil {
		return nil, m.failErr
	}
	if m.failRules != nil {
		return nil, m.failRules
	}
	return &rules{m: m}, nil
}

// Release implements the ftypes.Policy interface.
func (m *Mock) Release() {
	m.Released++
}

// State returns a copy of the current profile states.
func (m *Mock) State() map[ftypes.ProfileKind]bool {
	state := make(map[ftypes.ProfileKind]bool, len(m.Enabled))
	maps.Copy(state, m.Enabled)
	return state
}

// ResetCalls clears the call logs.
func (m *Mock) ResetCalls() {
	m.QueryCalls = nil
	m.MutationCalls = nil
}

// SetFailError makes every operation fail with err.
func (m *Mock) SetFailError(err error) {
	m.failErr = err
}

// FailQuery makes reading the state of the profile fail with err.
func (m *Mock) FailQuery(profile ftypes.ProfileKind, err error) {
	m.failQuery[profile] = err
}

// FailMutation makes writing the state of the profile fail with err.
func (m *Mock) FailMutation(profile ftypes.ProfileKind, err error) {
	m.failMutation[profile] = err
}

// FailRules makes retrieving the rule collection fail with err.
func (m *Mock) FailRules(err error) {
	m.failRules = err
}

// FailAdd makes submitting rules fail with err.
func (m *Mock) FailAdd(err error) {
	m.failAdd = err
}

type rules struct {
	m *Mock
}

func (r *rules) Add(rule *ftypes.Rule) error {
	if r.m.failAdd != nil {
		return r.m.failAdd
	}
	r.m.Submitted = append(r.m.Submitted, *rule)
	return nil
}

func (r *rules) Release() {
	r.m.RulesReleased++
}
