package firewall

import (
	"errors"
	"fmt"
	"log/slog"

	ftypes "go.hackfix.me/winfw/firewall/types"
)

// Connector owns a handle to the platform firewall policy, and exposes the
// operations the application needs on it. Every operation is a synchronous
// call into the platform. A single goroutine must own the Connector from
// Initialize to Cleanup, since the Windows policy is bound to the OS thread it
// was opened on.
type Connector struct {
	policy ftypes.Policy
	opener Opener
	logger *slog.Logger
}

// New returns a Connector that takes ownership of an already acquired policy.
func New(policy ftypes.Policy, opts ...Option) (*Connector, error) {
	if policy == nil {
		return nil, errors.New("firewall policy is required")
	}

	c := &Connector{}
	if err := c.configure(opts); err != nil {
		return nil, err
	}
	c.policy = policy

	return c, nil
}

// Initialize acquires the firewall policy of the given type and returns a
// Connector owning it. Cleanup must be called exactly once on the returned
// Connector.
func Initialize(ft ftypes.FirewallType, opts ...Option) (*Connector, error) {
	c := &Connector{}
	if err := c.configure(opts); err != nil {
		return nil, err
	}

	policy, err := c.opener(ft)
	if err != nil {
		return nil, fmt.Errorf("%w: failed opening %s policy: %w", ftypes.ErrPlatformUnavailable, ft, err)
	}
	if policy == nil {
		return nil, fmt.Errorf("%w: no %s policy returned", ftypes.ErrPlatformUnavailable, ft)
	}
	c.policy = policy
	c.logger.Debug("acquired firewall policy", "type", ft)

	return c, nil
}

func (c *Connector) configure(opts []Option) error {
	opts = append(DefaultOptions(), opts...)
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// Cleanup releases the firewall policy. It's safe to call on a nil or
// uninitialized Connector, and calls after the first one do nothing.
func (c *Connector) Cleanup() {
	if c == nil || c.policy == nil {
		return
	}
	c.policy.Release()
	c.policy = nil
	c.logger.Debug("released firewall policy")
}

// IsEnabled returns true if the firewall is enabled for any profile. Profiles
// are queried in order, and querying stops at the first enabled one, so a
// failure is only returned if no enabled profile was found before it.
func (c *Connector) IsEnabled() (bool, error) {
	if c == nil || c.policy == nil {
		return false, ftypes.ErrNotInitialized
	}

	for _, p := range ftypes.Profiles {
		enabled, err := c.policy.ProfileEnabled(p)
		if err != nil {
			return false, fmt.Errorf("%w: failed reading %s profile state: %w", ftypes.ErrQueryFailed, p, err)
		}
		if enabled {
			return true, nil
		}
	}

	return false, nil
}

// ProfileStates returns the firewall state of every profile.
func (c *Connector) ProfileStates() ([]ftypes.ProfileState, error) {
	if c == nil || c.policy == nil {
		return nil, ftypes.ErrNotInitialized
	}

	states := make([]ftypes.ProfileState, 0, len(ftypes.Profiles))
	for _, p := range ftypes.Profiles {
		enabled, err := c.policy.ProfileEnabled(p)
		if err != nil {
			return nil, fmt.Errorf("%w: failed reading %s profile state: %w", ftypes.ErrQueryFailed, p, err)
		}
		states = append(states, ftypes.ProfileState{Profile: p, Enabled: enabled})
	}

	return states, nil
}

// Enable turns the firewall on for all profiles, unless it's already enabled
// for any of them.
func (c *Connector) Enable() error {
	return c.setEnabled(true)
}

// Disable turns the firewall off for all profiles, unless it's already
// disabled for all of them.
func (c *Connector) Disable() error {
	return c.setEnabled(false)
}

// setEnabled changes the state of each profile in order. The first failure
// aborts, and profiles changed before it are not reverted.
func (c *Connector) setEnabled(enabled bool) error {
	on, err := c.IsEnabled()
	if err != nil {
		return err
	}

	state := stateName(enabled)
	if on == enabled {
		c.logger.Debug("firewall is already " + state)
		return nil
	}

	for _, p := range ftypes.Profiles {
		if err = c.policy.SetProfileEnabled(p, enabled); err != nil {
			return fmt.Errorf("%w: failed turning %s profile %s: %w", ftypes.ErrMutationFailed, p, state, err)
		}
		c.logger.Debug("changed profile state", "profile", p, "state", state)
	}

	c.logger.Info("turned firewall " + state)

	return nil
}

// AddAllowRule submits a rule that allows outbound TCP traffic from the
// application on the given local ports, for all profiles.
func (c *Connector) AddAllowRule(spec ftypes.RuleSpec) error {
	if c == nil || c.policy == nil {
		return ftypes.ErrNotInitialized
	}
	if spec.Name == "" {
		return fmt.Errorf("%w: rule name is required", ftypes.ErrRuleCreationFailed)
	}
	// The platform treats an unset application or port list as "any".
	if spec.ApplicationPath == "" {
		return fmt.Errorf("%w: application path of rule '%s' is required", ftypes.ErrRuleCreationFailed, spec.Name)
	}
	if spec.LocalPorts == "" {
		return fmt.Errorf("%w: local ports of rule '%s' are required", ftypes.ErrRuleCreationFailed, spec.Name)
	}

	rules, err := c.policy.Rules()
	if err != nil {
		return fmt.Errorf("%w: failed getting rule collection: %w", ftypes.ErrRuleCreationFailed, err)
	}
	defer rules.Release()

	rule := allowRule(spec)
	if err = rules.Add(rule); err != nil {
		return fmt.Errorf("%w: failed adding rule '%s': %w", ftypes.ErrRuleCreationFailed, spec.Name, err)
	}

	c.logger.Info("added allow rule",
		"rule_name", rule.Name,
		"application", rule.ApplicationPath,
		"local_ports", rule.LocalPorts,
		"profiles", rule.Profiles.String(),
	)

	return nil
}

// allowRule returns the rule submitted for spec. Rules always apply to all
// profiles.
// TODO: Consider excluding the public profile when another profile is also
// active, so rules aren't exposed on public networks unless necessary.
func allowRule(spec ftypes.RuleSpec) *ftypes.Rule {
	return &ftypes.Rule{
		Name:            spec.Name,
		Description:     spec.Description,
		Group:           spec.Group,
		ApplicationPath: spec.ApplicationPath,
		LocalPorts:      spec.LocalPorts,
		Protocol:        ftypes.ProtocolTCP,
		Direction:       ftypes.DirectionOut,
		Action:          ftypes.ActionAllow,
		Enabled:         true,
		Profiles:        ftypes.ProfileAll,
	}
}

func stateName(enabled bool) string {
	if enabled {
		return "on"
	}
	return "off"
}
