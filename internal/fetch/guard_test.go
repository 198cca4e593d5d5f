package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicAddr(t *testing.T) {
	tests := []struct {
		addr   string
		public bool
	}{
		{"93.184.216.34", true},
		{"2606:2800:220:1:248:1893:25c8:1946", true},
		{"127.0.0.1", false},
		{"::1", false},
		{"10.1.2.3", false},
		{"172.16.0.1", false},
		{"192.168.1.1", false},
		{"169.254.169.254", false},
		{"fe80::1", false},
		{"fd00::1", false},
		{"0.0.0.0", false},
		{"::", false},
		{"100.64.0.1", false},
		{"224.0.0.1", false},
		{"::ffff:127.0.0.1", false},
		{"::ffff:169.254.169.254", false},
	}
	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			assert.Equal(t, tt.public, PublicAddr(netip.MustParseAddr(tt.addr)))
		})
	}
}

func TestURL_RefusesNonPublicHosts(t *testing.T) {
	for _, raw := range []string{
		"http://127.0.0.1/",
		"http://127.0.0.1:8080/admin",
		"http://169.254.169.254/latest/meta-data/",
		"http://[::1]/",
		"http://10.0.0.5/jobs",
		"http://localhost/",
	} {
		t.Run(raw, func(t *testing.T) {
			_, err := URL(context.Background(), raw, nil)
			var fetchErr *Error
			require.ErrorAs(t, err, &fetchErr)
			assert.True(t, fetchErr.Invalid)

			var blocked *BlockedAddressError
			require.ErrorAs(t, err, &blocked)
			assert.False(t, PublicAddr(blocked.Addr))
		})
	}
}

func TestURL_LocalServerNeedsOptIn(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer server.Close()

	_, err := URL(context.Background(), server.URL, nil)
	require.Error(t, err)
	assert.Zero(t, hits.Load())

	_, err = URL(context.Background(), server.URL, localOptions())
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

func TestPublicTransport_BlocksAtDial(t *testing.T) {
	// The transport is checked on its own: a redirect or a changed DNS answer
	// reaches the dialer without passing RequirePublicHost again.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Error("request must not reach the server")
	}))
	defer server.Close()

	client := &http.Client{Transport: newPublicTransport()}
	_, err := client.Get(server.URL)
	require.Error(t, err)
	var blocked *BlockedAddressError
	require.ErrorAs(t, err, &blocked)
	assert.Equal(t, "127.0.0.1", blocked.Addr.String())

	fetchErr, ok := asBlocked(server.URL, err)
	require.True(t, ok)
	assert.True(t, fetchErr.Invalid)
}

func TestDialControl(t *testing.T) {
	assert.NoError(t, dialControl("tcp4", "93.184.216.34:443", nil))
	assert.Error(t, dialControl("tcp4", "169.254.169.254:80", nil))
	assert.Error(t, dialControl("tcp6", "[::1]:80", nil))
	assert.Error(t, dialControl("tcp", "not-an-address", nil))
}

func TestBrowserRequestAllowed(t *testing.T) {
	ctx := context.Background()
	assert.NoError(t, browserRequestAllowed(ctx, "https://93.184.216.34/job"))
	assert.NoError(t, browserRequestAllowed(ctx, "data:text/html,<p>x</p>"))
	assert.NoError(t, browserRequestAllowed(ctx, "about:blank"))

	for _, raw := range []string{
		"http://169.254.169.254/latest/meta-data/",
		"http://127.0.0.1:9222/json",
		"file:///etc/passwd",
		"no-scheme",
	} {
		err := browserRequestAllowed(ctx, raw)
		var fetchErr *Error
		require.ErrorAs(t, err, &fetchErr, raw)
		assert.True(t, fetchErr.Invalid, raw)
	}
}

func TestBrowser_RefusesPrivateHostBeforeLaunch(t *testing.T) {
	// Rejected before Chrome starts, so this runs without a browser installed.
	_, err := NewBrowser().RenderHTML(context.Background(), "http://169.254.169.254/latest/meta-data/")
	var blocked *BlockedAddressError
	require.ErrorAs(t, err, &blocked)
	assert.Equal(t, "169.254.169.254", blocked.Addr.String())
}
