package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"storefront/filter"
	"storefront/models"
)

func TestRetriesOnceOnServerError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"products":[],"total":0,"skip":0,"take":20}`)
	}))
	defer srv.Close()

	resp, err := New(srv.URL, WithTimeout(time.Second)).Products(context.Background(), filter.Criteria{})
	if err != nil {
		t.Fatalf("Products: %v", err)
	}
	if resp.Take != 20 {
		t.Fatalf("take = %d, want 20", resp.Take)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("calls = %d, want 2", got)
	}
}

func TestGivesUpAfterRetry(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Recommendations(context.Background(), "p1")
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("err = %v, want ErrTransport", err)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("calls = %d, want 2", got)
	}
}

func TestClientErrorsAreNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"validation failed","errors":[{"field":"minPrice","message":"Must be a number"}]}`)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Products(context.Background(), filter.Criteria{})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusBadRequest || len(apiErr.Fields) != 1 || apiErr.Fields[0].Field != "minPrice" {
		t.Fatalf("apiErr = %+v", apiErr)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("calls = %d, want 1", got)
	}
}

func TestProductNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":"product not found"}`)
	}))
	defer srv.Close()

	p, ok, err := New(srv.URL).Product(context.Background(), "missing")
	if err != nil || ok || p != nil {
		t.Fatalf("Product = %v, %v, %v; want nil, false, nil", p, ok, err)
	}
}

func TestQueryOmitsAbsentFilters(t *testing.T) {
	var rawQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		fmt.Fprint(w, `{"products":[],"total":0,"skip":0,"take":20}`)
	}))
	defer srv.Close()

	min := 50.0
	if _, err := New(srv.URL).Products(context.Background(), filter.Criteria{Gender: "Men", MinPrice: &min}); err != nil {
		t.Fatal(err)
	}
	if rawQuery != "gender=Men&minPrice=50" {
		t.Fatalf("query = %q", rawQuery)
	}
}

func TestLoginSendsJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if r.Method != http.MethodPost || r.URL.Path != "/auth/login" || r.Header.Get("Content-Type") != "application/json" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if string(body) != `{"email":"a@example.com","password":"secret"}` {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		fmt.Fprint(w, `{"user":{"id":"u1","email":"a@example.com","fullName":"A"},"token":"t"}`)
	}))
	defer srv.Close()

	resp, err := New(srv.URL).Login(context.Background(), models.LoginRequest{Email: "a@example.com", Password: "secret"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.Token != "t" || resp.User.ID != "u1" {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New("http://127.0.0.1:1").Products(ctx, filter.Criteria{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
