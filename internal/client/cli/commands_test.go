package cli

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/ledgervault/internal/client/api"
	"github.com/dmitrijs2005/ledgervault/internal/client/config"
)

func newTestApp(t *testing.T, handler http.Handler) (*App, *bytes.Buffer, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	out := &bytes.Buffer{}
	cfg := &config.Config{ServerEndpointAddr: srv.URL, DownloadDir: "downloads"}
	app := &App{config: cfg, api: api.New(srv.URL, nil), out: out}
	return app, out, srv
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestUploadCommand(t *testing.T) {
	app, out, _ := newTestApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Equal(t, "notes.txt", r.FormValue("filename"))
		fmt.Fprint(w, `{"message":"File uploaded successfully","fileId":"tx-9"}`)
	}))

	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("some notes"), 0o660))

	app.upload(context.Background(), []string{path})

	require.Contains(t, out.String(), "file id: tx-9")
}

func TestUploadCommand_MissingLocalFile(t *testing.T) {
	app, out, _ := newTestApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("server must not be called")
	}))

	app.upload(context.Background(), []string{"/no/such/file.txt"})

	require.Contains(t, out.String(), "Error:")
}

func TestDownloadCommand_SavesToDownloadDir(t *testing.T) {
	app, out, _ := newTestApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Disposition", `attachment; filename="report.pdf"`)
		_, _ = w.Write([]byte("hello world"))
	}))

	chdir(t, t.TempDir())

	app.download(context.Background(), "tx-42")

	require.Contains(t, out.String(), "Saved")
	data, err := os.ReadFile(filepath.Join("downloads", "report.pdf"))
	require.NoError(t, err)
	require.Equal(t, "hello world", string(data))
}

func TestDownloadCommand_ServerError(t *testing.T) {
	app, out, _ := newTestApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"file not found"}`)
	}))

	app.download(context.Background(), "tx-missing")

	require.Contains(t, out.String(), "file not found")
}

func TestListCommand(t *testing.T) {
	app, out, _ := newTestApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"files":[{"fileId":"tx-1","filename":"a.txt","sizeBytes":10,"createdAt":"2026-08-30T09:00:00Z"}]}`)
	}))

	app.list(context.Background())

	s := out.String()
	require.Contains(t, s, "tx-1")
	require.Contains(t, s, "a.txt")
}

func TestListCommand_Empty(t *testing.T) {
	app, out, _ := newTestApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"files":[]}`)
	}))

	app.list(context.Background())

	require.True(t, strings.Contains(out.String(), "No files uploaded yet"))
}
