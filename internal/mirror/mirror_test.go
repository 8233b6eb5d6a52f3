package mirror

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/roach88/horizonte/internal/atomicfile"
	"github.com/roach88/horizonte/internal/config"
	"github.com/roach88/horizonte/internal/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeS3 is an in-memory bucket speaking just enough of the S3 REST API for
// path-style ListObjectsV2 and PutObject.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	failPut string
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeS3) RoundTrip(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	parts := strings.SplitN(strings.TrimPrefix(req.URL.Path, "/"), "/", 2)
	key := ""
	if len(parts) == 2 {
		key = parts[1]
	}

	switch {
	case req.Method == http.MethodGet && req.URL.Query().Get("list-type") == "2":
		prefix := req.URL.Query().Get("prefix")
		var keys []string
		for k := range f.objects {
			if strings.HasPrefix(k, prefix) {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		var b strings.Builder
		b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><ListBucketResult><IsTruncated>false</IsTruncated>`)
		for _, k := range keys {
			fmt.Fprintf(&b, "<Contents><Key>%s</Key><Size>%d</Size><LastModified>2024-01-01T00:00:00Z</LastModified></Contents>", k, len(f.objects[k]))
		}
		b.WriteString("</ListBucketResult>")
		return respond(http.StatusOK, b.String(), "application/xml"), nil

	case req.Method == http.MethodPut:
		if f.failPut != "" && strings.HasSuffix(key, f.failPut) {
			return respond(http.StatusForbidden,
				`<?xml version="1.0"?><Error><Code>AccessDenied</Code><Message>denied</Message></Error>`,
				"application/xml"), nil
		}
		body, _ := io.ReadAll(req.Body)
		f.objects[key] = body
		f.types[key] = req.Header.Get("Content-Type")
		return respond(http.StatusOK, "", ""), nil
	}
	return respond(http.StatusNotImplemented, "", ""), nil
}

func respond(status int, body, contentType string) *http.Response {
	h := http.Header{}
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	return &http.Response{
		StatusCode:    status,
		Header:        h,
		Body:          io.NopCloser(bytes.NewReader([]byte(body))),
		ContentLength: int64(len(body)),
	}
}

func (f *fakeS3) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for k := range f.objects {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func newTestMirror(t *testing.T, fake *fakeS3, prefix string) *Mirror {
	t.Helper()
	m, err := New(t.Context(), config.Mirror{
		Bucket:          "backups",
		Prefix:          prefix,
		Region:          "us-east-1",
		Endpoint:        "http://mock.s3.local",
		PathStyle:       true,
		AccessKeyID:     "AKIA",
		SecretAccessKey: "SECRET",
	}, WithHTTPClient(&http.Client{Transport: fake}), WithLogger(testutil.DiscardLogger()))
	require.NoError(t, err)
	return m
}

// writeBackups produces n backups of goals.json through the real write path.
func writeBackups(t *testing.T, n int) (*atomicfile.Store, []atomicfile.Backup) {
	t.Helper()
	root := t.TempDir()
	clk := testutil.NewStepClock(time.Date(2024, 3, 1, 10, 0, 0, 0, time.Local), time.Second)
	files := atomicfile.New(filepath.Join(root, "backups"), atomicfile.DefaultKeep, clk, testutil.DiscardLogger())
	target := filepath.Join(root, "goals.json")
	for i := range n + 1 {
		require.NoError(t, files.Write(target, []byte(fmt.Sprintf("[%d]", i)), true))
	}
	backups, err := files.Backups("goals.json")
	require.NoError(t, err)
	require.Len(t, backups, n)
	return files, backups
}

func TestNew_RequiresBucket(t *testing.T) {
	_, err := New(t.Context(), config.Mirror{Prefix: "x"})
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestKey(t *testing.T) {
	fake := newFakeS3()
	assert.Equal(t, "horizonte/a.bak", newTestMirror(t, fake, "/horizonte/").Key("a.bak"))
	assert.Equal(t, "a.bak", newTestMirror(t, fake, "").Key("a.bak"))
}

func TestPush_UploadsMissingOnly(t *testing.T) {
	fake := newFakeS3()
	m := newTestMirror(t, fake, "horizonte")
	_, backups := writeBackups(t, 6)

	res, err := m.Push(t.Context(), backups)
	require.NoError(t, err)
	assert.Len(t, res.Uploaded, 6)
	assert.Empty(t, res.Skipped)
	require.Len(t, fake.keys(), 6)
	for _, k := range fake.keys() {
		assert.True(t, strings.HasPrefix(k, "horizonte/goals.json."), k)
		assert.Equal(t, "application/json", fake.types[k])
	}

	oldest := backups[len(backups)-1]
	want, err := os.ReadFile(oldest.Path)
	require.NoError(t, err)
	assert.Contains(t, string(fake.objects[m.Key(filepath.Base(oldest.Path))]), string(want))

	res, err = m.Push(t.Context(), backups)
	require.NoError(t, err)
	assert.Empty(t, res.Uploaded)
	assert.Len(t, res.Skipped, 6)

	remote, err := m.Remote(t.Context())
	require.NoError(t, err)
	assert.Len(t, remote, 6)
}

func TestPush_FailureIsReported(t *testing.T) {
	fake := newFakeS3()
	m := newTestMirror(t, fake, "horizonte")
	_, backups := writeBackups(t, 3)
	fake.failPut = filepath.Base(backups[0].Path)

	_, err := m.Push(t.Context(), backups)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upload horizonte/"+fake.failPut)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/json", contentType("p/goals.json.20240301100000.bak"))
	assert.Equal(t, "text/markdown; charset=utf-8", contentType("2024-03-31-monthly.md.20240301100000.bak"))
	assert.Equal(t, "application/yaml", contentType("settings.yaml.20240301100000-1.bak"))
	assert.Equal(t, "application/octet-stream", contentType("random.txt"))
}
