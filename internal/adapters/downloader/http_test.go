package downloader

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/adamzambudio/rpa-lab/internal/core/domain"
)

func TestHTTPFetcher_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("city") != "Madrid" {
			http.Error(w, "unknown city", http.StatusNotFound)
			return
		}
		w.Write([]byte("Ciudad,Temperatura\nMadrid,19\n"))
	}))
	defer srv.Close()

	out := filepath.Join(t.TempDir(), "data", "webdata.csv")
	f := NewHTTPFetcher(srv.URL+"/weather", out, time.Second)

	ds, err := f.Fetch(context.Background(), "Madrid")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	data, err := os.ReadFile(ds.Path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "Ciudad,Temperatura\nMadrid,19\n" {
		t.Errorf("unexpected body %q", data)
	}

	_, err = f.Fetch(context.Background(), "Rome")
	if !errors.Is(err, domain.ErrFetch) {
		t.Fatalf("expected fetch error for 404, got %v", err)
	}
}
