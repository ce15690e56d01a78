package assets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestFetchHTTP(t *testing.T) {
	glb := buildTestGLB(t, false)

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write(glb)
	}))
	defer srv.Close()

	f := NewFetcher(5 * time.Second)
	url := srv.URL + "/widget-a.glb"

	model, err := f.Fetch(context.Background(), url, "Widget A")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if model.Name != "Widget A" {
		t.Errorf("unexpected model name: %s", model.Name)
	}

	// Second fetch must come from cache.
	if _, err := f.Fetch(context.Background(), url, "Widget A"); err != nil {
		t.Fatalf("cached fetch failed: %v", err)
	}
	if hits.Load() != 1 {
		t.Errorf("expected 1 HTTP hit, got %d", hits.Load())
	}
	if !f.Cached(url) {
		t.Error("expected url to be cached")
	}
}

func TestFetchConcurrentDedup(t *testing.T) {
	glb := buildTestGLB(t, false)

	var hits atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		w.Write(glb)
	}))
	defer srv.Close()

	f := NewFetcher(5 * time.Second)
	url := srv.URL + "/shared.glb"

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.Fetch(context.Background(), url, "Shared")
		}(i)
	}

	// Let all goroutines pile onto the same in-flight fetch.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("fetch %d failed: %v", i, err)
		}
	}
	if hits.Load() != 1 {
		t.Errorf("expected 1 HTTP hit for concurrent fetches, got %d", hits.Load())
	}
}

func TestFetchHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := NewFetcher(5 * time.Second)
	url := srv.URL + "/missing.glb"

	if _, err := f.Fetch(context.Background(), url, "Missing"); err == nil {
		t.Fatal("expected error for 404 response")
	}
	// Failures must not be cached: a retry hits the network again.
	if f.Cached(url) {
		t.Error("failed fetch should not be cached")
	}
}

func TestFetchDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("this is not a glb"))
	}))
	defer srv.Close()

	f := NewFetcher(5 * time.Second)
	if _, err := f.Fetch(context.Background(), srv.URL+"/bad.glb", "Bad"); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestFetchLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "local.glb")
	if err := os.WriteFile(path, buildTestGLB(t, true), 0644); err != nil {
		t.Fatalf("failed to write glb: %v", err)
	}

	f := NewFetcher(time.Second)

	model, err := f.Fetch(context.Background(), path, "Local")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if !model.HasAnimation() {
		t.Error("expected animated model")
	}

	// file:// scheme resolves to the same path.
	if _, err := f.Fetch(context.Background(), "file://"+path, "Local"); err != nil {
		t.Fatalf("file:// fetch failed: %v", err)
	}
}

func TestFetchMissingFile(t *testing.T) {
	f := NewFetcher(time.Second)
	if _, err := f.Fetch(context.Background(), "/nonexistent/model.glb", "X"); err == nil {
		t.Error("expected error for missing file")
	}
}
