package medication

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

const feedBody = `{"medications":[
	{"id":"1","name":"Lisinopril","dosages":["10mg","20mg"]},
	{"id":"2","name":"Metformin","dosages":["500mg","850mg","1000mg"]}
]}`

func TestList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(feedBody))
	}))
	defer srv.Close()

	cat := NewCatalog(srv.URL, time.Minute)
	meds, err := cat.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(meds) != 2 {
		t.Fatalf("got %d medications, want 2", len(meds))
	}
	if meds[0].Name != "Lisinopril" || len(meds[0].Dosages) != 2 {
		t.Errorf("unexpected first entry: %+v", meds[0])
	}
}

func TestList_CachesWithinTTL(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte(feedBody))
	}))
	defer srv.Close()

	cat := NewCatalog(srv.URL, time.Minute)
	for i := 0; i < 5; i++ {
		if _, err := cat.List(context.Background()); err != nil {
			t.Fatalf("List() error = %v", err)
		}
	}
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Errorf("upstream hits = %d, want 1", got)
	}
}

func TestList_RefetchesAfterTTL(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte(feedBody))
	}))
	defer srv.Close()

	cat := NewCatalog(srv.URL, time.Millisecond)
	if _, err := cat.List(context.Background()); err != nil {
		t.Fatalf("List() error = %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, err := cat.List(context.Background()); err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if got := atomic.LoadInt32(&hits); got != 2 {
		t.Errorf("upstream hits = %d, want 2", got)
	}
}

func TestList_UpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cat := NewCatalog(srv.URL, time.Minute)
	if _, err := cat.List(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Errorf("List() error = %v, want ErrUnavailable", err)
	}
}

func TestList_MalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"medications": "oops"`))
	}))
	defer srv.Close()

	cat := NewCatalog(srv.URL, time.Minute)
	if _, err := cat.List(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Errorf("List() error = %v, want ErrUnavailable", err)
	}
}

func TestList_EmptyCatalog(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"medications":[]}`))
	}))
	defer srv.Close()

	cat := NewCatalog(srv.URL, time.Minute)
	meds, err := cat.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if meds == nil || len(meds) != 0 {
		t.Errorf("got %v, want empty slice", meds)
	}
}
