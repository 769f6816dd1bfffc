package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testProfile = `
user_agent: profile-agent/1.0
headers:
  X-Team: infra
  Accept: application/json
timeout: 30s
connect_timeout: 2s
max_redirects: 0
follow: false
proxy: proxy.test:3128
`

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadProfile(t *testing.T) {
	p, err := loadProfile(writeProfile(t, testProfile))
	require.NoError(t, err)

	assert.Equal(t, "profile-agent/1.0", p.UserAgent)
	assert.Equal(t, map[string]string{"X-Team": "infra", "Accept": "application/json"}, p.Headers)
	assert.Equal(t, 30*time.Second, p.Timeout)
	assert.Equal(t, 2*time.Second, p.ConnectTimeout)
	require.NotNil(t, p.MaxRedirects)
	assert.Equal(t, 0, *p.MaxRedirects)
	require.NotNil(t, p.Follow)
	assert.False(t, *p.Follow)
	assert.Equal(t, "proxy.test:3128", p.Proxy)
}

func TestLoadProfile_Invalid(t *testing.T) {
	_, err := loadProfile(writeProfile(t, "timeout: [not a duration"))
	assert.Error(t, err)
}

func TestProfile_FlagsWin(t *testing.T) {
	path := writeProfile(t, testProfile)
	o, err := parseFlags([]string{
		"--config", path,
		"--timeout", "1s",
		"--max-redirs", "9",
		"-H", "Accept: text/plain",
		"http://example.test/",
	})
	require.NoError(t, err)

	assert.Equal(t, "profile-agent/1.0", o.userAgent)
	assert.Equal(t, time.Second, o.timeout)
	assert.Equal(t, 2*time.Second, o.connectTimeout)
	assert.Equal(t, 9, o.maxRedirects)
	assert.True(t, o.noFollow)
	assert.Equal(t, "proxy.test:3128", o.proxy)
	assert.Equal(t, []string{
		"Accept: application/json",
		"X-Team: infra",
		"Accept: text/plain",
	}, o.headers)
}
