package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/electr1fy0/bluenotes/notes"
	"github.com/electr1fy0/bluenotes/storage"
)

const snippetNote = `# Demo

intro text

[CODE][HTML]<p id="x">hi</p>[/HTML][CSS]p{color:red}[/CSS][JS]console.log(1)[/JS][/CODE]

outro`

func newTestServer(t *testing.T) (*notes.Store, *httptest.Server) {
	t.Helper()
	seed, err := json.Marshal([]notes.Note{
		{ID: "a", Content: snippetNote, IsFavorite: true},
		{ID: "b", Content: "<script>alert(1)</script>\n\nplain"},
		{ID: "c", Content: "# Gone", IsDeleted: true},
	})
	require.NoError(t, err)

	store := notes.NewStore(storage.NewMemory(map[string]string{notes.NotesKey: string(seed)}), nil)
	require.NoError(t, store.Load())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	s := New("", store, nil)
	s.Start(ctx)

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return store, ts
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestIndexListsActiveNotes(t *testing.T) {
	_, ts := newTestServer(t)

	resp, body := get(t, ts.URL+"/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `href="/notes/a"`)
	assert.Contains(t, body, "Demo")
	assert.Contains(t, body, `href="/notes/b"`)
	assert.NotContains(t, body, `href="/notes/c"`)
}

func TestNotePage(t *testing.T) {
	_, ts := newTestServer(t)

	resp, body := get(t, ts.URL+"/notes/a")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "<h1>Demo</h1>")
	assert.Contains(t, body, "intro text")
	assert.Contains(t, body, `src="/notes/a/snippets/0"`)
	assert.Contains(t, body, `sandbox="allow-scripts"`)
	assert.Contains(t, body, "outro")
}

func TestNotePageSanitizesProse(t *testing.T) {
	_, ts := newTestServer(t)

	_, body := get(t, ts.URL+"/notes/b")
	assert.NotContains(t, body, "<script>alert(1)")
	assert.Contains(t, body, "<title>&lt;script&gt;alert(1)&lt;/script&gt;</title>")
	assert.Contains(t, body, "plain")
}

func TestSnippet(t *testing.T) {
	_, ts := newTestServer(t)

	resp, body := get(t, ts.URL+"/notes/a/snippets/0")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "sandbox allow-scripts", resp.Header.Get("Content-Security-Policy"))
	assert.Contains(t, body, `<p id="x">hi</p>`)
	assert.Contains(t, body, "p{color:red}")
	assert.Contains(t, body, "console.log(1)")
}

func TestNotFound(t *testing.T) {
	_, ts := newTestServer(t)

	tests := []struct {
		name string
		path string
		code int
	}{
		{"unknown note", "/notes/zzz", http.StatusNotFound},
		{"unknown note snippet", "/notes/zzz/snippets/0", http.StatusNotFound},
		{"snippet out of range", "/notes/a/snippets/1", http.StatusNotFound},
		{"bad snippet index", "/notes/a/snippets/x", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := get(t, ts.URL+tt.path)
			assert.Equal(t, tt.code, resp.StatusCode)
		})
	}
}

func TestWebsocketPushesChanges(t *testing.T) {
	store, ts := newTestServer(t)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var hello Message
	require.NoError(t, conn.ReadJSON(&hello))
	assert.Equal(t, "hello", hello.Type)

	require.NoError(t, store.UpdateContent("a", "changed"))

	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "changed", msg.Type)
	assert.Equal(t, "a", msg.ID)
	assert.Equal(t, string(notes.EventUpdated), msg.Kind)
}
