package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestUploadVideoResumableFlow(t *testing.T) {
	videoPath := writeTempFile(t, "lesson.mp4", "fake video bytes")

	var initMeta map[string]interface{}
	var initAuth, uploadContentLength string
	var putBody []byte

	mux := http.NewServeMux()
	var server *httptest.Server
	mux.HandleFunc("/init", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("session init method = %s, want POST", r.Method)
		}
		initAuth = r.Header.Get("Authorization")
		uploadContentLength = r.Header.Get("X-Upload-Content-Length")
		if err := json.NewDecoder(r.Body).Decode(&initMeta); err != nil {
			t.Errorf("decode init metadata: %v", err)
		}
		w.Header().Set("Location", server.URL+"/session")
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/session", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("upload method = %s, want PUT", r.Method)
		}
		putBody, _ = io.ReadAll(r.Body)
		json.NewEncoder(w).Encode(map[string]string{"id": "vid123"})
	})
	server = httptest.NewServer(mux)
	defer server.Close()

	svc := &YouTubeService{
		HTTP:           server.Client(),
		UploadEndpoint: server.URL + "/init",
	}

	url, err := svc.UploadVideo(context.Background(), videoPath, "trainer-token", "Sales 101 - Intro", "lesson notes")
	if err != nil {
		t.Fatalf("UploadVideo: %v", err)
	}
	if url != "https://www.youtube.com/watch?v=vid123" {
		t.Fatalf("url = %q, want canonical watch url", url)
	}

	if initAuth != "Bearer trainer-token" {
		t.Fatalf("authorization header = %q", initAuth)
	}
	if uploadContentLength != "16" {
		t.Fatalf("X-Upload-Content-Length = %q, want 16", uploadContentLength)
	}
	if string(putBody) != "fake video bytes" {
		t.Fatalf("uploaded bytes = %q", putBody)
	}

	snippet, _ := initMeta["snippet"].(map[string]interface{})
	if snippet["title"] != "Sales 101 - Intro" {
		t.Fatalf("snippet title = %v", snippet["title"])
	}
	if snippet["categoryId"] != "27" {
		t.Fatalf("categoryId = %v, want 27 (Education)", snippet["categoryId"])
	}
	status, _ := initMeta["status"].(map[string]interface{})
	if status["privacyStatus"] != "unlisted" {
		t.Fatalf("privacyStatus = %v, want unlisted", status["privacyStatus"])
	}
}

func TestUploadVideoMissingSessionLocation(t *testing.T) {
	videoPath := writeTempFile(t, "lesson.mp4", "bytes")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK) // 没有 Location 头
	}))
	defer server.Close()

	svc := &YouTubeService{HTTP: server.Client(), UploadEndpoint: server.URL}
	if _, err := svc.UploadVideo(context.Background(), videoPath, "token", "t", "d"); err == nil {
		t.Fatalf("missing session location must fail")
	}
}

func TestUploadVideoMissingFile(t *testing.T) {
	svc := &YouTubeService{HTTP: http.DefaultClient, UploadEndpoint: "http://invalid.test"}
	if _, err := svc.UploadVideo(context.Background(), "/no/such/file.mp4", "token", "t", "d"); err == nil {
		t.Fatalf("missing local file must fail before any request")
	}
}

func TestUploadDocumentSessionInitFailure(t *testing.T) {
	docPath := writeTempFile(t, "slides.pdf", "pdf bytes")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	svc := &DriveService{HTTP: server.Client(), UploadEndpoint: server.URL}
	if _, err := svc.UploadDocument(context.Background(), docPath, "token", "slides.pdf", "application/pdf"); err == nil {
		t.Fatalf("rejected session init must fail")
	}
}
