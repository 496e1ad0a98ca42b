package imagehost

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClient_Upload(t *testing.T) {
	t.Parallel()

	var gotPublicID, gotFile string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm failed: %v", err)
		}
		gotPublicID = r.PostFormValue("public_id")
		gotFile = r.PostFormValue("file")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"secure_url":"https://img.example.com/profile_pictures/user_5.png"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "preset", "key")

	hosted, err := c.Upload(context.Background(), "data:image/png;base64,AAAA", "profile_pictures/user_5")
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	if hosted != "https://img.example.com/profile_pictures/user_5.png" {
		t.Errorf("unexpected hosted URL: %s", hosted)
	}
	if gotPublicID != "profile_pictures/user_5" {
		t.Errorf("unexpected public_id: %s", gotPublicID)
	}
	if gotFile != "data:image/png;base64,AAAA" {
		t.Errorf("unexpected file payload: %s", gotFile)
	}
}

func TestClient_Upload_FallsBackToPlainURL(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"url":"http://img.example.com/p.png"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "")

	hosted, err := c.Upload(context.Background(), "data", "p")
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if hosted != "http://img.example.com/p.png" {
		t.Errorf("unexpected hosted URL: %s", hosted)
	}
}

func TestClient_Upload_UpstreamError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"quota exceeded"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "")

	_, err := c.Upload(context.Background(), "data", "p")
	if !errors.Is(err, ErrUploadFailed) {
		t.Errorf("expected ErrUploadFailed, got %v", err)
	}
}

func TestClient_Upload_EmptyResponse(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "")

	_, err := c.Upload(context.Background(), "data", "p")
	if !errors.Is(err, ErrUploadFailed) {
		t.Errorf("expected ErrUploadFailed for empty response, got %v", err)
	}
}

func TestClient_Upload_NotConfigured(t *testing.T) {
	t.Parallel()

	c := NewClient("", "", "")

	_, err := c.Upload(context.Background(), "data", "p")
	if !errors.Is(err, ErrUploadFailed) {
		t.Errorf("expected ErrUploadFailed, got %v", err)
	}
}
