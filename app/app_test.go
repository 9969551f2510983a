package app

import (
	"errors"
	"strings"
	"testing"

	"github.com/nrednav/cuid2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.hackfix.me/winfw/app/config"
	ftypes "go.hackfix.me/winfw/firewall/types"
)

func TestAppInit(t *testing.T) {
	t.Parallel()

	t.Run("ok/defaults_and_force", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t)
		err := app.Run("init", "--type", "mock", "--rule-group", "Deploy Agents")
		require.NoError(t, err)
		assert.Empty(t, app.stdout.String())
		assert.Contains(t, app.stderr.String(), "saved configuration")

		cfg := loadConfig(t, app)
		assert.Equal(t, ftypes.FirewallMock, cfg.Firewall.Type.V)
		assert.Equal(t, "Deploy Agents", cfg.Rules.Group.V)
		assert.False(t, cfg.Rules.Description.Valid)

		err = app.Run("init", "--type", "mock")
		require.Error(t, err)
		assert.ErrorContains(t, err, "winfw is already initialized")

		err = app.Run("init", "--type", "mock", "--rule-description", "Managed by winfw", "--force")
		require.NoError(t, err)

		cfg = loadConfig(t, app)
		assert.False(t, cfg.Rules.Group.Valid)
		assert.Equal(t, "Managed by winfw", cfg.Rules.Description.V)
	})

	t.Run("err/invalid_type", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t)
		err := app.Run("init", "--type", "nftables")
		assert.ErrorContains(t, err, "failed parsing CLI arguments")
		assert.ErrorContains(t, err, "must be one of")
	})
}

func TestAppStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		enabled   []ftypes.ProfileKind
		args      []string
		expStdout []string
	}{
		{
			name:      "ok/off",
			expStdout: []string{"firewall: off\n"},
		},
		{
			name:      "ok/on_public_only",
			enabled:   []ftypes.ProfileKind{ftypes.ProfilePublic},
			expStdout: []string{"firewall: on\n"},
		},
		{
			name:    "ok/profiles",
			enabled: []ftypes.ProfileKind{ftypes.ProfilePrivate},
			args:    []string{"--profiles"},
			expStdout: []string{
				"firewall: on\n", "PROFILE", "FIREWALL",
				"domain", "private", "public",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			app := newTestApp(t)
			for _, p := range tt.enabled {
				app.policy.Enabled[p] = true
			}

			err := app.Run(append([]string{"status"}, tt.args...)...)
			require.NoError(t, err)

			stdout := app.stdout.String()
			for _, exp := range tt.expStdout {
				assert.Contains(t, stdout, exp)
			}
			assert.Equal(t, 1, app.policy.Released)
		})
	}

	t.Run("ok/profiles_rows", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t)
		app.policy.Enabled[ftypes.ProfileDomain] = true

		err := app.Run("status", "-p")
		require.NoError(t, err)

		rows := map[string]string{}
		for _, line := range strings.Split(app.stdout.String(), "\n") {
			fields := strings.Fields(line)
			if len(fields) == 2 {
				rows[fields[0]] = fields[1]
			}
		}
		assert.Equal(t, "on", rows["domain"])
		assert.Equal(t, "off", rows["private"])
		assert.Equal(t, "off", rows["public"])
	})

	t.Run("err/query", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t)
		app.policy.FailQuery(ftypes.ProfileDomain, errors.New("RPC server is unavailable"))

		err := app.Run("status")
		require.Error(t, err)
		assert.ErrorIs(t, err, ftypes.ErrQueryFailed)
		assert.ErrorContains(t, err, "failed getting firewall status")
		assert.Empty(t, app.stdout.String())
		assert.Equal(t, 1, app.policy.Released)
	})
}

func TestAppEnableDisable(t *testing.T) {
	t.Parallel()

	t.Run("ok/enable_then_disable", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t)
		err := app.Run("enable")
		require.NoError(t, err)
		assert.Contains(t, app.stderr.String(), "turned firewall on")
		assert.Equal(t, map[ftypes.ProfileKind]bool{
			ftypes.ProfileDomain: true, ftypes.ProfilePrivate: true, ftypes.ProfilePublic: true,
		}, app.policy.State())

		err = app.Run("disable")
		require.NoError(t, err)
		assert.Contains(t, app.stderr.String(), "turned firewall off")
		assert.Equal(t, map[ftypes.ProfileKind]bool{
			ftypes.ProfileDomain: false, ftypes.ProfilePrivate: false, ftypes.ProfilePublic: false,
		}, app.policy.State())

		err = app.Run("status")
		require.NoError(t, err)
		assert.Equal(t, "firewall: off\n", app.stdout.String())
		assert.Equal(t, 3, app.policy.Released)
	})

	t.Run("ok/enable_partially_on", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t)
		app.policy.Enabled[ftypes.ProfilePrivate] = true

		err := app.Run("enable")
		require.NoError(t, err)
		assert.NotContains(t, app.stderr.String(), "turned firewall on")
		assert.Empty(t, app.policy.MutationCalls)
		assert.Equal(t, map[ftypes.ProfileKind]bool{
			ftypes.ProfileDomain: false, ftypes.ProfilePrivate: true, ftypes.ProfilePublic: false,
		}, app.policy.State())
	})

	t.Run("err/mutation", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t)
		app.policy.FailMutation(ftypes.ProfilePrivate, errors.New("access is denied"))

		err := app.Run("enable")
		require.Error(t, err)
		assert.ErrorIs(t, err, ftypes.ErrMutationFailed)
		assert.ErrorContains(t, err, "failed enabling firewall")
		assert.ErrorContains(t, err, "access is denied")
		assert.Equal(t, map[ftypes.ProfileKind]bool{
			ftypes.ProfileDomain: true, ftypes.ProfilePrivate: false, ftypes.ProfilePublic: false,
		}, app.policy.State())
	})
}

func TestAppAllow(t *testing.T) {
	t.Parallel()

	const appPath = `C:\Program Files\Agent\agent.exe`

	tests := []struct {
		name      string
		config    string
		args      []string
		expRule   ftypes.Rule
		expErr    string
		expErrIs  error
		setupMock func(*testApp)
	}{
		{
			name: "ok/basic",
			args: []string{"web", appPath, "80,443"},
			expRule: ftypes.Rule{
				Name:            "web",
				ApplicationPath: appPath,
				LocalPorts:      "80,443",
			},
		},
		{
			name:   "ok/config_defaults",
			config: `{"firewall":{"type":"mock"},"rules":{"group":"Agents","description":"Managed by winfw"}}`,
			args:   []string{"web", appPath, "8000-8010"},
			expRule: ftypes.Rule{
				Name:            "web",
				Description:     "Managed by winfw",
				Group:           "Agents",
				ApplicationPath: appPath,
				LocalPorts:      "8000-8010",
			},
		},
		{
			name:   "ok/flags_override_config",
			config: `{"rules":{"group":"Agents","description":"Managed by winfw"}}`,
			args:   []string{"rpc", appPath, "RPC", "--group", "Core", "--description", "RPC endpoint"},
			expRule: ftypes.Rule{
				Name:            "rpc",
				Description:     "RPC endpoint",
				Group:           "Core",
				ApplicationPath: appPath,
				LocalPorts:      "RPC",
			},
		},
		{
			name:   "err/invalid_port",
			args:   []string{"web", appPath, "80,70000"},
			expErr: "must be a number between 1 and 65535",
		},
		{
			name:   "err/zero_port",
			args:   []string{"web", appPath, "0"},
			expErr: "must be greater than 0",
		},
		{
			name:     "err/empty_application",
			args:     []string{"web", "", "80"},
			expErr:   "application path of rule 'web' is required",
			expErrIs: ftypes.ErrRuleCreationFailed,
		},
		{
			name:   "err/missing_ports",
			args:   []string{"web", appPath},
			expErr: "failed parsing CLI arguments",
		},
		{
			name:     "err/add",
			args:     []string{"web", appPath, "80"},
			expErr:   "failed adding allow rule",
			expErrIs: ftypes.ErrRuleCreationFailed,
			setupMock: func(app *testApp) {
				app.policy.FailAdd(errors.New("rule already exists"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			app := newTestApp(t)
			if tt.config != "" {
				writeConfig(t, app, tt.config)
			}
			if tt.setupMock != nil {
				tt.setupMock(app)
			}

			err := app.Run(append([]string{"allow"}, tt.args...)...)
			if tt.expErr != "" {
				require.Error(t, err)
				assert.ErrorContains(t, err, tt.expErr)
				if tt.expErrIs != nil {
					assert.ErrorIs(t, err, tt.expErrIs)
				}
				assert.Empty(t, app.policy.Submitted)
				return
			}

			require.NoError(t, err)
			assert.Empty(t, app.stdout.String())
			assert.Contains(t, app.stderr.String(), "added allow rule")

			require.Len(t, app.policy.Submitted, 1)
			rule := app.policy.Submitted[0]
			assert.Equal(t, tt.expRule.Name, rule.Name)
			assert.Equal(t, tt.expRule.Description, rule.Description)
			assert.Equal(t, tt.expRule.Group, rule.Group)
			assert.Equal(t, tt.expRule.ApplicationPath, rule.ApplicationPath)
			assert.Equal(t, tt.expRule.LocalPorts, rule.LocalPorts)
			assert.Equal(t, ftypes.ProtocolTCP, rule.Protocol)
			assert.Equal(t, ftypes.DirectionOut, rule.Direction)
			assert.Equal(t, ftypes.ActionAllow, rule.Action)
			assert.Equal(t, ftypes.ProfileAll, rule.Profiles)
			assert.True(t, rule.Enabled)
			assert.Equal(t, 1, app.policy.RulesReleased)
		})
	}

	t.Run("ok/unique", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t)
		for range 2 {
			err := app.Run("allow", "web", appPath, "443", "--unique")
			require.NoError(t, err)
		}

		require.Len(t, app.policy.Submitted, 2)
		names := []string{app.policy.Submitted[0].Name, app.policy.Submitted[1].Name}
		assert.NotEqual(t, names[0], names[1])
		for _, name := range names {
			suffix, found := strings.CutPrefix(name, "web-")
			require.True(t, found)
			assert.True(t, cuid2.IsCuid(suffix))
		}
		assert.Equal(t, names[1]+"\n", app.stdout.String())
	})
}

func TestAppFirewallType(t *testing.T) {
	t.Parallel()

	t.Run("ok/flag_overrides_config", func(t *testing.T) {
		t.Parallel()

		var opened []ftypes.FirewallType
		app := newTestApp(t)
		policy := app.policy
		app.ctx.OpenPolicy = func(ft ftypes.FirewallType) (ftypes.Policy, error) {
			opened = append(opened, ft)
			return policy, nil
		}
		writeConfig(t, app, `{"firewall":{"type":"windows"}}`)

		err := app.Run("--firewall-type", "mock", "status")
		require.NoError(t, err)
		assert.Equal(t, []ftypes.FirewallType{ftypes.FirewallMock}, opened)
	})

	t.Run("err/unsupported", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t)
		err := app.Run("--firewall-type", "iptables", "status")
		require.Error(t, err)
		assert.ErrorContains(t, err, "unsupported firewall type 'iptables'")
		assert.Zero(t, app.policy.Released)
	})

	t.Run("err/platform_unavailable", func(t *testing.T) {
		t.Parallel()

		app := newTestApp(t, WithPolicyOpener(func(ftypes.FirewallType) (ftypes.Policy, error) {
			return nil, errors.New("class not registered")
		}))
		err := app.Run("enable")
		require.Error(t, err)
		assert.ErrorIs(t, err, ftypes.ErrPlatformUnavailable)
		assert.ErrorContains(t, err, "failed initializing firewall")
		assert.ErrorContains(t, err, "class not registered")
	})
}

func loadConfig(t *testing.T, app *testApp) *config.Config {
	t.Helper()

	cfg := config.NewConfig(app.ctx.FS, testConfigPath)
	require.NoError(t, cfg.Load())

	return cfg
}
