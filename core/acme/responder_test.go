package acme_test

import (
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostbound/certkeeper/core/acme"
)

func startTestResponder(t *testing.T, table map[string]string) *acme.Responder {
	t.Helper()
	responder := acme.NewResponder(table, "127.0.0.1:0", nil)
	require.NoError(t, responder.Start())
	t.Cleanup(responder.Stop)
	return responder
}

func TestResponder_ServesKnownToken(t *testing.T) {
	responder := startTestResponder(t, map[string]string{"abc": "xyz"})

	resp, err := http.Get(fmt.Sprintf("http://%s/.well-known/acme-challenge/abc", responder.Addr()))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/plain")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "xyz", string(body))
}

func TestResponder_UnknownTokenIsNotFound(t *testing.T) {
	responder := startTestResponder(t, map[string]string{"abc": "xyz"})

	resp, err := http.Get(fmt.Sprintf("http://%s/.well-known/acme-challenge/unknown", responder.Addr()))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestResponder_OtherPathsAreNotFound(t *testing.T) {
	responder := startTestResponder(t, map[string]string{"abc": "xyz"})

	for _, path := range []string{"/", "/index.html", "/.well-known/other/abc", "/.well-known/acme-challenge/"} {
		resp, err := http.Get(fmt.Sprintf("http://%s%s", responder.Addr(), path))
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, "path %s", path)
	}
}

func TestResponder_TableIsSnapshot(t *testing.T) {
	table := map[string]string{"abc": "xyz"}
	responder := startTestResponder(t, table)

	// Mutations after construction must not be visible to the responder.
	table["late"] = "value"

	resp, err := http.Get(fmt.Sprintf("http://%s/.well-known/acme-challenge/late", responder.Addr()))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestResponder_StartTwiceFails(t *testing.T) {
	responder := startTestResponder(t, nil)
	assert.ErrorIs(t, responder.Start(), acme.ErrResponderAlreadyStarted)
}

func TestResponder_StopReleasesPort(t *testing.T) {
	responder := acme.NewResponder(map[string]string{"abc": "xyz"}, "127.0.0.1:0", nil)
	require.NoError(t, responder.Start())
	addr := responder.Addr()
	responder.Stop()

	_, err := http.Get(fmt.Sprintf("http://%s/.well-known/acme-challenge/abc", addr))
	assert.Error(t, err)
}

func TestResponder_StopWithoutStart(t *testing.T) {
	responder := acme.NewResponder(nil, "127.0.0.1:0", nil)
	assert.NotPanics(t, responder.Stop)
}
