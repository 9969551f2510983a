package app

import (
	"bytes"
	"io"
	"path/filepath"
	"sync"
	"testing"

	"github.com/mandelsoft/vfs/pkg/memoryfs"
	"github.com/mandelsoft/vfs/pkg/vfs"
	"github.com/stretchr/testify/require"

	"go.hackfix.me/winfw/firewall/mock"
	ftypes "go.hackfix.me/winfw/firewall/types"
)

const testConfigPath = "/winfw/config.json"

type testApp struct {
	*App
	stdout, stderr *safeBuffer
	policy         *mock.Mock
}

// newTestApp returns an App that operates on an in-memory filesystem and a
// mock firewall policy, which is shared across all runs of the app.
func newTestApp(t *testing.T, opts ...Option) *testApp {
	t.Helper()

	var (
		stdout, stderr = newSafeBuffer(), newSafeBuffer()
		policy         = mock.New()
	)

	defaultOpts := []Option{
		WithContext(t.Context()),
		WithFDs(bytes.NewReader(nil), stdout, stderr),
		WithFS(memoryfs.New()),
		WithLogger(false, false),
		WithFirewall(ftypes.FirewallMock),
		WithPolicyOpener(func(ft ftypes.FirewallType) (ftypes.Policy, error) {
			return policy, nil
		}),
	}

	app, err := New("winfw", testConfigPath, append(defaultOpts, opts...)...)
	if err != nil {
		t.Fatalf("failed creating app: %v", err)
	}

	return &testApp{App: app, stdout: stdout, stderr: stderr, policy: policy}
}

// Run resets the output buffers and runs the app with the given arguments.
func (ta *testApp) Run(args ...string) error {
	ta.stdout.Reset()
	ta.stderr.Reset()

	return ta.App.Run(args)
}

// writeConfig writes raw JSON to the configuration file of the app.
func writeConfig(t *testing.T, app *testApp, cfgJSON string) {
	t.Helper()

	err := app.ctx.FS.MkdirAll(filepath.Dir(testConfigPath), 0o755)
	require.NoError(t, err)
	err = vfs.WriteFile(app.ctx.FS, testConfigPath, []byte(cfgJSON), 0o644)
	require.NoError(t, err)
}

// safeBuffer is a thread-safe buffer.
type safeBuffer struct {
	mx  sync.RWMutex
	buf *bytes.Buffer
}

var _ io.Writer = (*safeBuffer)(nil)

func newSafeBuffer() *safeBuffer {
	return &safeBuffer{buf: &bytes.Buffer{}}
}

func (b *safeBuffer) Write(p []byte) (n int, err error) {
	b.mx.Lock()
	defer b.mx.Unlock()
	return b.buf.Write(p)
}

func (b *safeBuffer) Reset() {
	b.mx.Lock()
	defer b.mx.Unlock()
	b.buf.Reset()
}

func (b *safeBuffer) String() string {
	b.mx.RLock()
	defer b.mx.RUnlock()
	return b.buf.String()
}
