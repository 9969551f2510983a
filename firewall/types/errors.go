package types

import "errors"

var (
	// ErrPlatformUnavailable is returned when the firewall policy service can't
	// be acquired.
	ErrPlatformUnavailable = errors.New("firewall platform unavailable")
	// ErrQueryFailed is returned when reading a profile state fails before the
	// firewall state could be determined.
	ErrQueryFailed = errors.New("firewall query failed")
	// ErrMutationFailed is returned when writing a profile state fails. Profiles
	// changed before the failure keep their new state.
	ErrMutationFailed = errors.New("firewall mutation failed")
	// ErrRuleCreationFailed is returned when a rule couldn't be created or
	// submitted. No part of the rule is stored.
	ErrRuleCreationFailed = errors.New("firewall rule creation failed")
	// ErrNotInitialized is returned by operations on a released connector.
	ErrNotInitialized = errors.New("firewall connector is not initialized")
)
