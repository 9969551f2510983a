//go:build windows

package netfw

import (
	"errors"
	"fmt"
	"runtime"

	ole "github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
	"golang.org/x/sys/windows"

	ftypes "go.hackfix.me/winfw/firewall/types"
)

const (
	policyProgID = "HNetCfg.FwPolicy2"
	ruleProgID   = "HNetCfg.FWRule"

	// NET_FW_PROFILE2_ALL
	profile2All int32 = 0x7FFFFFFF

	sFalse = 0x1
)

// Policy is the INetFwPolicy2 object of the local system.
type Policy struct {
	disp     *ole.IDispatch
	elevated bool
}

var _ ftypes.Policy = (*Policy)(nil)

// Open initializes COM on the calling thread and instantiates the firewall
// policy object. The calling goroutine is locked to its OS thread until
// Release, so it must own the returned Policy until then.
func Open() (*Policy, error) {
	runtime.LockOSThread()

	if err := ole.CoInitializeEx(0, ole.COINIT_MULTITHREADED); err != nil {
		var oleErr *ole.OleError
		// S_FALSE means COM was already initialized on this thread, which still
		// requires a matching CoUninitialize.
		if !errors.As(err, &oleErr) || oleErr.Code() != sFalse {
			runtime.UnlockOSThread()
			return nil, fmt.Errorf("failed initializing COM: %w", err)
		}
	}

	unknown, err := oleutil.CreateObject(policyProgID)
	if err != nil {
		uninitialize()
		return nil, fmt.Errorf("failed creating %s object: %w", policyProgID, err)
	}
	disp, err := unknown.QueryInterface(ole.IID_IDispatch)
	unknown.Release()
	if err != nil {
		uninitialize()
		return nil, fmt.Errorf("failed querying %s dispatch interface: %w", policyProgID, err)
	}

	return &Policy{disp: disp, elevated: windows.GetCurrentProcessToken().IsElevated()}, nil
}

// uninitialize balances a successful CoInitializeEx and releases the thread
// lock taken by Open. It must run on the thread Open was called on.
func uninitialize() {
	ole.CoUninitialize()
	runtime.UnlockOSThread()
}

// ProfileEnabled implements the ftypes.Policy interface.
func (p *Policy) ProfileEnabled(profile ftypes.ProfileKind) (bool, error) {
	v, err := oleutil.GetProperty(p.disp, "FirewallEnabled", int32(profile))
	if err != nil {
		return false, fmt.Errorf("failed getting FirewallEnabled: %w", err)
	}
	defer v.Clear() //nolint:errcheck // Nothing to do on failure.

	enabled, ok := v.Value().(bool)
	if !ok {
		return false, fmt.Errorf("unexpected FirewallEnabled value type %d", v.VT)
	}

	return enabled, nil
}

// SetProfileEnabled implements the ftypes.Policy interface.
func (p *Policy) SetProfileEnabled(profile ftypes.ProfileKind, enabled bool) error {
	_, err := oleutil.PutProperty(p.disp, "FirewallEnabled", int32(profile), enabled)
	if err != nil {
		return p.annotate(fmt.Errorf("failed putting FirewallEnabled: %w", err))
	}
	return nil
}

// Rules implements the ftypes.Policy interface.
func (p *Policy) Rules() (ftypes.RuleCollection, error) {
	v, err := oleutil.GetProperty(p.disp, "Rules")
	if err != nil {
		return nil, fmt.Errorf("failed getting Rules: %w", err)
	}
	return &rules{disp: v.ToIDispatch(), policy: p}, nil
}

// Release implements the ftypes.Policy interface.
func (p *Policy) Release() {
	if p == nil || p.disp == nil {
		return
	}
	p.disp.Release()
	p.disp = nil
	uninitialize()
}

// annotate adds a hint to errors caused by a missing administrator token.
func (p *Policy) annotate(err error) error {
	if p.elevated {
		return err
	}
	return fmt.Errorf("%w (the process is not elevated)", err)
}

type rules struct {
	disp   *ole.IDispatch
	policy *Policy
}

// Add creates an INetFwRule object, populates it and adds it to the rule
// collection. Strings are marshaled to BSTRs per call and freed by oleutil.
func (r *rules) Add(rule *ftypes.Rule) error {
	unknown, err := oleutil.CreateObject(ruleProgID)
	if err != nil {
		return fmt.Errorf("failed creating %s object: %w", ruleProgID, err)
	}
	defer unknown.Release()

	fwRule, err := unknown.QueryInterface(ole.IID_IDispatch)
	if err != nil {
		return fmt.Errorf("failed querying %s dispatch interface: %w", ruleProgID, err)
	}
	defer fwRule.Release()

	profiles := int32(rule.Profiles)
	if rule.Profiles == ftypes.ProfileAll {
		profiles = profile2All
	}

	// LocalPorts can only be set after Protocol.
	props := []struct {
		name string
		val  any
	}{
		{"Name", rule.Name},
		{"Description", rule.Description},
		{"ApplicationName", rule.ApplicationPath},
		{"Protocol", int32(rule.Protocol)},
		{"LocalPorts", rule.LocalPorts},
		{"Direction", int32(rule.Direction)},
		{"Grouping", rule.Group},
		{"Profiles", profiles},
		{"Action", int32(rule.Action)},
		{"Enabled", rule.Enabled},
	}
	for _, prop := range props {
		if s, ok := prop.val.(string); ok && s == "" {
			continue
		}
		if _, err = oleutil.PutProperty(fwRule, prop.name, prop.val); err != nil {
			return fmt.Errorf("failed setting rule %s: %w", prop.name, err)
		}
	}

	if _, err = oleutil.CallMethod(r.disp, "Add", fwRule); err != nil {
		return r.policy.annotate(fmt.Errorf("failed adding rule to collection: %w", err))
	}

	return nil
}

func (r *rules) Release() {
	if r.disp == nil {
		return
	}
	r.disp.Release()
	r.disp = nil
}
