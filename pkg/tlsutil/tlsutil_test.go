package tlsutil

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerAndClientConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, GenerateSelfSignedCert([]string{"127.0.0.1", "localhost"}, dir))

	serverCfg, err := LoadServerConfig(filepath.Join(dir, "server.pem"), filepath.Join(dir, "server-key.pem"))
	require.NoError(t, err)
	assert.Equal(t, uint16(tls.VersionTLS12), serverCfg.MinVersion)
	assert.Len(t, serverCfg.Certificates, 1)

	creds, err := ServerTLSConfig(filepath.Join(dir, "server.pem"), filepath.Join(dir, "server-key.pem"))
	require.NoError(t, err)
	assert.Equal(t, "tls", creds.Info().SecurityProtocol)

	srv := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	srv.TLS = serverCfg
	srv.StartTLS()
	defer srv.Close()

	clientCfg, err := ClientTLSConfig(filepath.Join(dir, "ca.pem"))
	require.NoError(t, err)
	client := &http.Client{Transport: &http.Transport{TLSClientConfig: clientCfg}}

	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestLoadServerConfig_MissingFiles(t *testing.T) {
	_, err := LoadServerConfig("missing.pem", "missing-key.pem")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tlsutil: load server key pair")

	_, err = ServerTLSConfig("missing.pem", "missing-key.pem")
	assert.Error(t, err)
}

func TestClientTLSConfig_BadCA(t *testing.T) {
	_, err := ClientTLSConfig(filepath.Join(t.TempDir(), "none.pem"))
	assert.Error(t, err)

	cfg, err := ClientTLSConfig("")
	require.NoError(t, err)
	assert.Nil(t, cfg.RootCAs)
}
