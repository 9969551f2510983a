package firewall

import (
	"fmt"

	"go.hackfix.me/winfw/firewall/mock"
	"go.hackfix.me/winfw/firewall/netfw"
	ftypes "go.hackfix.me/winfw/firewall/types"
)

// Opener acquires the firewall policy of the given type.
type Opener func(ft ftypes.FirewallType) (ftypes.Policy, error)

// OpenPolicy acquires the firewall policy of the given type. The returned
// Policy must be released by the caller.
//
//nolint:ireturn // Intentional, this is a generic function.
func OpenPolicy(ft ftypes.FirewallType) (ftypes.Policy, error) {
	switch ft {
	case ftypes.FirewallMock:
		return mock.New(), nil
	case ftypes.FirewallWindows:
		policy, err := netfw.Open()
		if err != nil {
			return nil, err
		}
		return policy, nil
	}
	return nil, fmt.Errorf("unsupported firewall type '%s'", ft)
}
