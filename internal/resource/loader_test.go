package resource

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	mu    sync.Mutex
	calls int
	data  string
	err   error
}

func (s *countingSource) Key() string { return "counting" }

func (s *countingSource) Fetch(context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return []byte(s.data), nil
}

func upper(b []byte) (string, error) {
	if len(b) == 0 {
		return "", errors.New("empty document")
	}
	return strings.ToUpper(string(b)), nil
}

func TestLoader_Memoizes(t *testing.T) {
	src := &countingSource{data: "hello"}
	l := NewLoader(cache.New(cache.NoExpiration, 0), src, upper)

	for i := 0; i < 3; i++ {
		v, err := l.Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "HELLO", v)
	}
	assert.Equal(t, 1, src.calls)
}

func TestLoader_ConcurrentFirstLoad(t *testing.T) {
	src := &countingSource{data: "hello"}
	l := NewLoader(cache.New(cache.NoExpiration, 0), src, upper)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = l.Load(context.Background())
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, src.calls)
}

func TestLoader_FailuresAreNotCached(t *testing.T) {
	src := &countingSource{err: errors.New("unreachable")}
	l := NewLoader(cache.New(cache.NoExpiration, 0), src, upper)

	_, err := l.Load(context.Background())
	require.Error(t, err)

	src.err = nil
	src.data = "later"
	v, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "LATER", v)
	assert.Equal(t, 2, src.calls)
}

func TestLoader_DecodeError(t *testing.T) {
	src := &countingSource{data: ""}
	l := NewLoader(cache.New(cache.NoExpiration, 0), src, upper)

	_, err := l.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty document")
}

func TestLoader_Invalidate(t *testing.T) {
	src := &countingSource{data: "a"}
	l := NewLoader(cache.New(cache.NoExpiration, 0), src, upper)

	_, err := l.Load(context.Background())
	require.NoError(t, err)
	l.Invalidate()
	_, err = l.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, src.calls)
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"a":1}`), 0o644))

	data, err := FileSource{Path: path}.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(data))

	_, err = FileSource{Path: filepath.Join(t.TempDir(), "missing.json")}.Fetch(context.Background())
	assert.Error(t, err)
}

func TestEmbeddedSource(t *testing.T) {
	fsys := fstest.MapFS{"doc.json": {Data: []byte("{}")}}

	data, err := EmbeddedSource{FS: fsys, Name: "doc.json"}.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))

	_, err = EmbeddedSource{FS: fsys, Name: "other.json"}.Fetch(context.Background())
	assert.Error(t, err)
}

func TestURLSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	data, err := URLSource{URL: srv.URL + "/doc.json", Timeout: 5 * time.Second}.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, string(data))

	_, err = URLSource{URL: srv.URL + "/missing"}.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestFromLocation(t *testing.T) {
	fallback := EmbeddedSource{Name: "default.json"}

	assert.Equal(t, fallback, FromLocation("", time.Second, fallback))
	assert.Equal(t, URLSource{URL: "https://example.com/c.json", Timeout: time.Second}, FromLocation("https://example.com/c.json", time.Second, fallback))
	assert.Equal(t, FileSource{Path: "./c.json"}, FromLocation("./c.json", time.Second, fallback))
}

func TestDownloadPublic_RefusesInternalAddresses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	// the unguarded client reaches the loopback server
	_, err := Download(context.Background(), srv.URL, 5*time.Second)
	require.NoError(t, err)

	for _, url := range []string{srv.URL, "http://10.0.0.1/", "http://169.254.169.254/latest/meta-data/", "http://[::1]:8080/"} {
		_, err := DownloadPublic(context.Background(), url, 5*time.Second)
		require.Error(t, err, url)
		assert.ErrorIs(t, err, ErrForbiddenAddress, url)
	}
}

func TestIsPublicIP(t *testing.T) {
	tests := []struct {
		ip   string
		want bool
	}{
		{"93.184.216.34", true},
		{"2606:2800:220:1::1", true},
		{"127.0.0.1", false},
		{"10.1.2.3", false},
		{"172.16.0.1", false},
		{"192.168.1.1", false},
		{"169.254.169.254", false},
		{"100.64.0.1", false},
		{"0.0.0.0", false},
		{"::1", false},
		{"fd00::1", false},
		{"fe80::1", false},
		{"::ffff:127.0.0.1", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsPublicIP(net.ParseIP(tt.ip)), tt.ip)
	}
}
