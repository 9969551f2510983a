//go:build !windows

package netfw

import (
	"errors"
	"fmt"

	ftypes "go.hackfix.me/winfw/firewall/types"
)

var errUnsupported = fmt.Errorf("the Windows firewall policy is not available on this platform: %w",
	errors.ErrUnsupported)

// Policy is the Windows firewall policy (unavailable on non-Windows systems).
type Policy struct{}

var _ ftypes.Policy = (*Policy)(nil)

// Open always fails on non-Windows systems.
func Open() (*Policy, error) {
	return nil, errUnsupported
}

// ProfileEnabled always fails on non-Windows systems.
func (p *Policy) ProfileEnabled(ftypes.ProfileKind) (bool, error) {
	return false, errUnsupported
}

// SetProfileEnabled always fails on non-Windows systems.
func (p *Policy) SetProfileEnabled(ftypes.ProfileKind, bool) error {
	return errUnsupported
}

// Rules always fails on non-Windows systems.
func (p *Policy) Rules() (ftypes.RuleCollection, error) {
	return nil, errUnsupported
}

// Release is a no-op on non-Windows systems.
func (p *Policy) Release() {}
