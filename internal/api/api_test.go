package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/starford/laguz/internal/noteservice"
	"github.com/starford/laguz/internal/storage"
)

// testEnv sets up a temp vault, service, and router. An empty authToken
// means auth is disabled.
func testEnv(t *testing.T, authToken string) (storage.Provider, http.Handler) {
	t.Helper()

	vaultDir := t.TempDir()
	store, err := storage.NewFS(vaultDir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	svc := noteservice.NewService(store, nil)
	router := NewRouter(svc, authToken != "", authToken, nil, vaultDir)
	return store, router
}

func doJSON(t *testing.T, router http.Handler, method, target string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatal(err)
		}
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, body)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateAndGetNote(t *testing.T) {
	_, router := testEnv(t, "")

	w := doJSON(t, router, http.MethodPost, "/notes", map[string]any{
		"path": "hello.md",
		"body": "# Hello\nWorld",
		"metadata": map[string]any{
			"title": "Hello",
		},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodGet, "/notes/hello.md", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	if etag := w.Header().Get("ETag"); etag == "" {
		t.Error("missing ETag header")
	}
	var note NoteDetail
	if err := json.Unmarshal(w.Body.Bytes(), &note); err != nil {
		t.Fatal(err)
	}
	if note.Path != "hello.md" || note.Body != "# Hello\nWorld" {
		t.Errorf("note = %+v", note)
	}
	if v, _ := note.Metadata.Get("title"); v != "Hello" {
		t.Errorf("title = %v", v)
	}
}

func TestCreateDuplicate(t *testing.T) {
	_, router := testEnv(t, "")

	payload := map[string]string{"path": "dup.md", "body": "a"}
	if w := doJSON(t, router, http.MethodPost, "/notes", payload); w.Code != http.StatusCreated {
		t.Fatalf("first create = %d", w.Code)
	}
	if w := doJSON(t, router, http.MethodPost, "/notes", payload); w.Code != http.StatusConflict {
		t.Errorf("duplicate create = %d, want 409", w.Code)
	}
}

func TestCreateInvalidPath(t *testing.T) {
	_, router := testEnv(t, "")

	w := doJSON(t, router, http.MethodPost, "/notes", map[string]string{
		"path": "../outside.md",
		"body": "x",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("escaping path = %d, want 400", w.Code)
	}
}

func TestUpdateNote(t *testing.T) {
	_, router := testEnv(t, "")

	doJSON(t, router, http.MethodPost, "/notes", map[string]any{
		"path":     "up.md",
		"body":     "v1",
		"metadata": map[string]any{"title": "Up"},
	})

	w := doJSON(t, router, http.MethodPut, "/notes/up.md", map[string]any{"content": "v2"})
	if w.Code != http.StatusOK {
		t.Fatalf("update = %d, body = %s", w.Code, w.Body.String())
	}
	var note NoteDetail
	if err := json.Unmarshal(w.Body.Bytes(), &note); err != nil {
		t.Fatal(err)
	}
	if note.Body != "v2" {
		t.Errorf("body = %q", note.Body)
	}
	if v, _ := note.Metadata.Get("title"); v != "Up" {
		t.Errorf("title lost on update: %v", v)
	}

	// Merge embedded frontmatter.
	w = doJSON(t, router, http.MethodPut, "/notes/up.md", map[string]any{
		"content":         "---\nstatus: done\n---\nv3",
		"update_metadata": true,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("merge update = %d", w.Code)
	}
	if err := json.Unmarshal(w.Body.Bytes(), &note); err != nil {
		t.Fatal(err)
	}
	if v, _ := note.Metadata.Get("status"); v != "done" {
		t.Errorf("status = %v", v)
	}

	w = doJSON(t, router, http.MethodPut, "/notes/absent.md", map[string]any{"content": "x"})
	if w.Code != http.StatusNotFound {
		t.Errorf("update missing = %d, want 404", w.Code)
	}
}

func TestUpdateMalformedEmbeddedFrontmatter(t *testing.T) {
	_, router := testEnv(t, "")

	doJSON(t, router, http.MethodPost, "/notes", map[string]string{"path": "m.md", "body": "x"})

	w := doJSON(t, router, http.MethodPut, "/notes/m.md", map[string]any{
		"content":         "---\n: {{{\n---\nbody",
		"update_metadata": true,
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("malformed frontmatter = %d, want 422", w.Code)
	}
}

func TestDeleteNote(t *testing.T) {
	_, router := testEnv(t, "")

	doJSON(t, router, http.MethodPost, "/notes", map[string]string{"path": "bye.md", "body": "gone"})

	if w := doJSON(t, router, http.MethodDelete, "/notes/bye.md", nil); w.Code != http.StatusNoContent {
		t.Errorf("delete = %d, want 204", w.Code)
	}
	if w := doJSON(t, router, http.MethodGet, "/notes/bye.md", nil); w.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", w.Code)
	}
	if w := doJSON(t, router, http.MethodDelete, "/notes/bye.md", nil); w.Code != http.StatusNotFound {
		t.Errorf("second delete = %d, want 404", w.Code)
	}
}

func TestMoveNote(t *testing.T) {
	store, router := testEnv(t, "")

	doJSON(t, router, http.MethodPost, "/notes", map[string]string{"path": "src.md", "body": "content"})

	w := doJSON(t, router, http.MethodPost, "/move", map[string]string{
		"source":      "src.md",
		"destination": "archive/dst.md",
	})
	if w.Code != http.StatusNoContent {
		t.Fatalf("move = %d, body = %s", w.Code, w.Body.String())
	}
	if ok, _ := store.Exists("archive/dst.md"); !ok {
		t.Error("destination missing after move")
	}

	// Missing source and taken destination.
	w = doJSON(t, router, http.MethodPost, "/move", map[string]string{
		"source":      "src.md",
		"destination": "elsewhere.md",
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("move missing source = %d, want 404", w.Code)
	}

	doJSON(t, router, http.MethodPost, "/notes", map[string]string{"path": "other.md", "body": "x"})
	w = doJSON(t, router, http.MethodPost, "/move", map[string]string{
		"source":      "other.md",
		"destination": "archive/dst.md",
	})
	if w.Code != http.StatusConflict {
		t.Errorf("move onto taken destination = %d, want 409", w.Code)
	}
}

func TestGetMetadata(t *testing.T) {
	_, router := testEnv(t, "")

	doJSON(t, router, http.MethodPost, "/notes", map[string]any{
		"path":     "meta.md",
		"body":     "b",
		"metadata": map[string]any{"status": "draft"},
	})

	w := doJSON(t, router, http.MethodGet, "/metadata/meta.md", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("metadata = %d", w.Code)
	}
	var meta map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &meta); err != nil {
		t.Fatal(err)
	}
	if meta["status"] != "draft" {
		t.Errorf("meta = %v", meta)
	}
}

func TestListNotes(t *testing.T) {
	store, router := testEnv(t, "")

	for _, p := range []string{"a.md", "b.md", "sub/c.md"} {
		if err := store.Write(p, []byte("x")); err != nil {
			t.Fatal(err)
		}
	}

	w := doJSON(t, router, http.MethodGet, "/notes?recursive=true", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list = %d", w.Code)
	}
	var resp NoteListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Notes) != 3 {
		t.Errorf("notes = %v", resp.Notes)
	}

	w = doJSON(t, router, http.MethodGet, "/notes?recursive=true&pattern=sub/*.md", nil)
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Notes) != 1 || resp.Notes[0] != "sub/c.md" {
		t.Errorf("filtered notes = %v", resp.Notes)
	}

	if w := doJSON(t, router, http.MethodGet, "/notes?folder=ghost", nil); w.Code != http.StatusNotFound {
		t.Errorf("missing folder = %d, want 404", w.Code)
	}
}

func TestSearch(t *testing.T) {
	store, router := testEnv(t, "")

	if err := store.Write("s.md", []byte("---\ntag: needle\n---\nbody needle\nplain\n")); err != nil {
		t.Fatal(err)
	}

	w := doJSON(t, router, http.MethodGet, "/search?q=needle", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("search = %d", w.Code)
	}
	var resp SearchResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Matches) != 1 || len(resp.Matches[0].Lines) != 1 || resp.Matches[0].Lines[0].Line != 4 {
		t.Errorf("matches = %+v", resp.Matches)
	}

	w = doJSON(t, router, http.MethodGet, "/search?q=needle&frontmatter=true", nil)
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Matches[0].Lines) != 2 {
		t.Errorf("frontmatter matches = %+v", resp.Matches)
	}

	if w := doJSON(t, router, http.MethodGet, "/search", nil); w.Code != http.StatusBadRequest {
		t.Errorf("missing q = %d, want 400", w.Code)
	}
}

func TestStructure(t *testing.T) {
	store, router := testEnv(t, "")

	if err := store.Write("dir/n.md", []byte("x")); err != nil {
		t.Fatal(err)
	}

	w := doJSON(t, router, http.MethodGet, "/structure", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("structure = %d", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("dir/n.md")) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestAuth(t *testing.T) {
	_, router := testEnv(t, "sekrit")

	req := httptest.NewRequest(http.MethodGet, "/notes", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no token = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/notes", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad token = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/notes", nil)
	req.Header.Set("Authorization", "Bearer sekrit")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("good token = %d, want 200", w.Code)
	}
}

func TestAttachments(t *testing.T) {
	_, router := testEnv(t, "")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "pic.png")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write([]byte("png-bytes")); err != nil {
		t.Fatal(err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/attachments", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("upload = %d, body = %s", w.Code, w.Body.String())
	}
	var resp AttachmentUploadResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Filename != "pic.png" || resp.Size != int64(len("png-bytes")) {
		t.Errorf("resp = %+v", resp)
	}

	req = httptest.NewRequest(http.MethodGet, "/attachments/pic.png", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Body.String() != "png-bytes" {
		t.Errorf("fetch = %d, body = %q", w.Code, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/attachments/absent.png", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing attachment = %d, want 404", w.Code)
	}
}
