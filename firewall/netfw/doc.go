// Package netfw implements the firewall policy over the Windows Firewall with
// Advanced Security COM API (INetFwPolicy2). On other platforms acquiring the
// policy always fails.
package netfw
