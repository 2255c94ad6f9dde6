package gateway

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNew_TimeoutAppliesToACopyOfTheClient(t *testing.T) {
	shared := &http.Client{Timeout: time.Minute}

	g, err := New("http://localhost:5000/api", WithTimeout(2*time.Second), WithHTTPClient(shared))
	require.NoError(t, err)
	require.Equal(t, 2*time.Second, g.httpClient.Timeout)
	require.Equal(t, time.Minute, shared.Timeout)

	g, err = New("http://localhost:5000/api", WithHTTPClient(shared), WithTimeout(3*time.Second))
	require.NoError(t, err)
	require.Equal(t, 3*time.Second, g.httpClient.Timeout)
	require.Equal(t, time.Minute, shared.Timeout)
}

func TestNew_DefaultTimeout(t *testing.T) {
	g, err := New("http://localhost:5000/api")
	require.NoError(t, err)
	require.Equal(t, 30*time.Second, g.httpClient.Timeout)

	g, err = New("http://localhost:5000/api", WithHTTPClient(&http.Client{}), WithTimeout(0))
	require.NoError(t, err)
	require.Zero(t, g.httpClient.Timeout)
}
