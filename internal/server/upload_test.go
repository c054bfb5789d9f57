package server

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

func TestUploadMissingFilePart(t *testing.T) {
	srv := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("project", "demo")
	_ = mw.WriteField("filename", "a.txt")
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload?key="+testUploadKey, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := srv.do(t, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestUploadMissingOrBlankNames(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name     string
		project  string
		filename string
	}{
		{"missing project", "", "a.txt"},
		{"missing filename", "demo", ""},
		{"blank project", "   ", "a.txt"},
		{"invalid project", "de/mo", "a.txt"},
		{"oversized filename", "demo", strings.Repeat("x", 101)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := uploadFile(t, srv, testUploadKey, tt.project, tt.filename, "content")
			if rr.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rr.Code)
			}
		})
	}
}

func TestUploadNonMultipartBody(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/upload?key="+testUploadKey,
		strings.NewReader(`{"project":"demo"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := srv.do(t, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestUploadDuplicateFilePart(t *testing.T) {
	srv := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("project", "demo")
	_ = mw.WriteField("filename", "a.txt")
	for range 2 {
		fw, _ := mw.CreateFormFile("file", "x.bin")
		_, _ = fw.Write([]byte("data"))
	}
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload?key="+testUploadKey, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := srv.do(t, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}

	entries, err := os.ReadDir(srv.cfg.StagingDir)
	if err != nil {
		t.Fatalf("read staging dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("staging dir not cleaned up: %d entries", len(entries))
	}
}

func TestUploadFieldsAfterFilePart(t *testing.T) {
	srv := newTestServer(t)

	// Clients may send the file before the form fields; staging must
	// not depend on part order.
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "x.bin")
	_, _ = fw.Write([]byte("payload"))
	_ = mw.WriteField("project", "demo")
	_ = mw.WriteField("filename", "late.txt")
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload?key="+testUploadKey, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := srv.do(t, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}

	rr = srv.do(t, httptest.NewRequest(http.MethodGet, "/demo/late.txt?key="+testUploadKey, nil))
	if got := rr.Body.String(); got != "payload" {
		t.Errorf("body = %q, want payload", got)
	}
}

func TestUploadTruncatedBody(t *testing.T) {
	srv := newTestServer(t)

	// Build a valid body, then cut it off mid file part.
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("project", "demo")
	_ = mw.WriteField("filename", "a.txt")
	fw, _ := mw.CreateFormFile("file", "x.bin")
	_, _ = fw.Write(bytes.Repeat([]byte("z"), 1024))
	_ = mw.Close()
	truncated := buf.Bytes()[:buf.Len()-600]

	req := httptest.NewRequest(http.MethodPost, "/api/upload?key="+testUploadKey, bytes.NewReader(truncated))
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := srv.do(t, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}

	// No partial file was committed.
	rr = srv.do(t, httptest.NewRequest(http.MethodGet, "/demo/a.txt?key="+testUploadKey, nil))
	if rr.Code != http.StatusNotFound {
		t.Errorf("download after truncated upload = %d, want 404", rr.Code)
	}
	entries, err := os.ReadDir(srv.cfg.StagingDir)
	if err != nil {
		t.Fatalf("read staging dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("staging dir not cleaned up: %d entries", len(entries))
	}
}
