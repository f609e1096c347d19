package notary

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"attestd/internal/domain"
	"attestd/internal/infra/cachemem"
)

const testPem = "-----BEGIN PUBLIC KEY-----\nMFkw\n-----END PUBLIC KEY-----"

func TestClientFetchPublicKey(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/info" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"publicKey":"` + "-----BEGIN PUBLIC KEY-----\\nMFkw\\n-----END PUBLIC KEY-----" + `"}`))
	}))
	defer ts.Close()

	client := &Client{}
	pem, err := client.FetchPublicKey(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pem != testPem {
		t.Fatalf("pem = %q", pem)
	}
}

func TestClientFetchPublicKey_BadResponses(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) }},
		{"not json", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("nope")) }},
		{"no key field", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(`{"version":"1"}`)) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ts := httptest.NewServer(tc.handler)
			defer ts.Close()
			if _, err := (&Client{}).FetchPublicKey(context.Background(), ts.URL); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestResolver_PayloadKeyWins(t *testing.T) {
	resolver := &Resolver{EnvFallback: "env-pem"}
	pem, source, err := resolver.Resolve(context.Background(), map[string]any{"notaryPublicKeyPem": testPem})
	if err != nil {
		t.Fatal(err)
	}
	if pem != testPem || source != "attestation" {
		t.Fatalf("pem=%q source=%q", pem, source)
	}
}

func TestResolver_EnvFallback(t *testing.T) {
	resolver := &Resolver{EnvFallback: testPem}
	pem, source, err := resolver.Resolve(context.Background(), map[string]any{})
	if err != nil {
		t.Fatal(err)
	}
	if pem != testPem || source != "env" {
		t.Fatalf("pem=%q source=%q", pem, source)
	}
}

func TestResolver_FetchThenCache(t *testing.T) {
	fetches := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches++
		w.Write([]byte(`{"publicKey":"fetched-pem"}`))
	}))
	defer ts.Close()

	resolver := &Resolver{
		Client:   &Client{},
		Cache:    cachemem.New(),
		CacheTTL: time.Minute,
	}
	attestation := map[string]any{"meta": map[string]any{"notaryUrl": ts.URL}}

	pem, source, err := resolver.Resolve(context.Background(), attestation)
	if err != nil {
		t.Fatal(err)
	}
	if pem != "fetched-pem" || source != "notary" {
		t.Fatalf("pem=%q source=%q", pem, source)
	}

	pem, source, err = resolver.Resolve(context.Background(), attestation)
	if err != nil {
		t.Fatal(err)
	}
	if pem != "fetched-pem" || source != "cache" {
		t.Fatalf("second resolve: pem=%q source=%q", pem, source)
	}
	if fetches != 1 {
		t.Fatalf("fetches = %d, want 1", fetches)
	}
}

func TestResolver_NoPathAvailable(t *testing.T) {
	resolver := &Resolver{}
	_, _, err := resolver.Resolve(context.Background(), map[string]any{})
	if !errors.Is(err, domain.ErrNotaryKeyMissing) {
		t.Fatalf("err = %v", err)
	}

	// URL present but no client wired.
	_, _, err = resolver.Resolve(context.Background(), map[string]any{"notaryUrl": "https://notary.example.com"})
	if !errors.Is(err, domain.ErrNotaryKeyMissing) {
		t.Fatalf("err = %v", err)
	}
}

func TestResolver_FetchFailureWrapsSentinel(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	resolver := &Resolver{Client: &Client{}}
	_, _, err := resolver.Resolve(context.Background(), map[string]any{"notaryUrl": ts.URL})
	if !errors.Is(err, domain.ErrNotaryKeyMissing) {
		t.Fatalf("err = %v, want ErrNotaryKeyMissing", err)
	}
}
