package types

import (
	"fmt"
	"strings"
)

// FirewallType are the supported firewall policy backends.
type FirewallType string

// All supported firewall policy backends.
const (
	FirewallMock    FirewallType = "mock"
	FirewallWindows FirewallType = "windows"
)

// FirewallTypeFromString returns a valid FirewallType for the given string, or
// an error if the value is invalid.
func FirewallTypeFromString(val string) (FirewallType, error) {
	switch FirewallType(val) {
	case FirewallMock:
		return FirewallMock, nil
	case FirewallWindows:
		return FirewallWindows, nil
	}
	return "", fmt.Errorf("unsupported firewall type '%s'", val)
}

// ProfileKind is one of the network profiles the platform tracks firewall
// state for independently. The values match the NET_FW_PROFILE_TYPE2 bitmask.
type ProfileKind int32

// The firewall network profiles.
const (
	ProfileDomain  ProfileKind = 0x1
	ProfilePrivate ProfileKind = 0x2
	ProfilePublic  ProfileKind = 0x4
)

// Profiles lists all profiles in the order they are queried and mutated.
var Profiles = []ProfileKind{ProfileDomain, ProfilePrivate, ProfilePublic}

func (p ProfileKind) String() string {
	switch p {
	case ProfileDomain:
		return "domain"
	case ProfilePrivate:
		return "private"
	case ProfilePublic:
		return "public"
	}
	return fmt.Sprintf("profile(%d)", int32(p))
}

// ProfileSet is a bitmask of profiles a rule applies to.
type ProfileSet int32

// ProfileAll is the union of all three profiles.
const ProfileAll = ProfileSet(ProfileDomain | ProfilePrivate | ProfilePublic)

// Has returns true if the set contains the profile.
func (s ProfileSet) Has(p ProfileKind) bool {
	return s&ProfileSet(p) != 0
}

func (s ProfileSet) String() string {
	names := make([]string, 0, len(Profiles))
	for _, p := range Profiles {
		if s.Has(p) {
			names = append(names, p.String())
		}
	}
	return strings.Join(names, ",")
}

// ProfileState is the firewall state of a single profile.
type ProfileState struct {
	Profile ProfileKind
	Enabled bool
}

// Protocol is an IP protocol number.
type Protocol int32

// ProtocolTCP is the only protocol rules are created for.
const ProtocolTCP Protocol = 6

// Direction is the traffic direction a rule matches (NET_FW_RULE_DIRECTION).
type Direction int32

// Rule directions.
const (
	DirectionIn  Direction = 1
	DirectionOut Direction = 2
)

// Action is the verdict of a rule (NET_FW_ACTION).
type Action int32

// Rule actions.
const (
	ActionBlock Action = 0
	ActionAllow Action = 1
)

// RuleSpec describes an outbound allow rule for an application and its local
// ports. The name is for display only, the platform allows duplicates.
type RuleSpec struct {
	Name            string
	Description     string
	Group           string
	ApplicationPath string
	LocalPorts      string
}

// Rule is a fully populated firewall rule, as submitted to the platform.
type Rule struct {
	Name            string
	Description     string
	Group           string
	ApplicationPath string
	LocalPorts      string
	Protocol        Protocol
	Direction       Direction
	Action          Action
	Enabled         bool
	Profiles        ProfileSet
}

// Policy is the interface to the platform firewall policy service.
type Policy interface {
	// ProfileEnabled returns whether the firewall is enabled for the profile.
	ProfileEnabled(profile ProfileKind) (bool, error)

	// SetProfileEnabled enables or disables the firewall for the profile.
	SetProfileEnabled(profile ProfileKind, enabled bool) error

	// Rules returns the rule collection of the policy. It must be released by
	// the caller.
	Rules() (RuleCollection, error)

	// Release frees the policy and any platform resources it holds.
	Release()
}

// RuleCollection is the set of rules stored by the platform.
type RuleCollection interface {
	// Add submits a new rule. The platform either stores the complete rule or
	// none of it.
	Add(rule *Rule) error

	// Release frees the collection.
	Release()
}
