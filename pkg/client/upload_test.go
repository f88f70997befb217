package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestUploadProfilePhoto(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/uploads/profile-photo" {
			http.NotFound(w, r)
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		f, hdr, err := r.FormFile("photo")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer f.Close() //nolint:errcheck
		if hdr.Filename != "me.png" {
			t.Errorf("filename = %q, want me.png", hdr.Filename)
		}
		data, _ := io.ReadAll(f) //nolint:errcheck
		if string(data) != "fake-png-bytes" {
			t.Errorf("body = %q, want file content", data)
		}
		json.NewEncoder(w).Encode(UploadResult{URL: "https://cdn.example/me.png", Filename: "me.png"}) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")
	res, err := c.UploadProfilePhoto(context.Background(), "me.png", strings.NewReader("fake-png-bytes"))
	if err != nil {
		t.Fatalf("UploadProfilePhoto() error: %v", err)
	}
	if res.URL != "https://cdn.example/me.png" {
		t.Errorf("URL = %q, want the uploaded photo URL", res.URL)
	}
}

func TestUploadProfilePhoto_MissingArgs(t *testing.T) {
	c := New("http://unused", "tok")
	if _, err := c.UploadProfilePhoto(context.Background(), "", strings.NewReader("x")); err == nil {
		t.Error("expected error for empty filename")
	}
	if _, err := c.UploadProfilePhoto(context.Background(), "x.png", nil); err == nil {
		t.Error("expected error for nil reader")
	}
}

func TestUploadProfilePhoto_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, "tok", WithUploadTimeout(50*time.Millisecond))
	_, err := c.UploadProfilePhoto(context.Background(), "me.png", strings.NewReader("data"))
	if err == nil {
		t.Fatal("expected timeout error")
	}
}
