package toncenter

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(url string, attempts int) *Client {
	return New(&Config{
		BaseURL:       url,
		APIKey:        "test-key",
		RetryAttempts: attempts,
		RetryWait:     0,
	})
}

func TestGetTokenData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/getTokenData" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.Header.Get("X-API-Key") != "test-key" {
			t.Errorf("missing API key header")
		}
		if r.URL.Query().Get("address") != "EQjetton" {
			t.Errorf("unexpected address %q", r.URL.Query().Get("address"))
		}

		fmt.Fprint(w, `{"ok":true,"result":{"total_supply":1000000,"mintable":true,"admin_address":"EQadmin","contract_type":"jetton_master"}}`)
	}))
	defer server.Close()

	data, err := newTestClient(server.URL, 1).GetTokenData(context.Background(), "EQjetton")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if data.TotalSupply.String() != "1000000" {
		t.Errorf("total supply is %s", data.TotalSupply)
	}

	if !data.Mintable {
		t.Error("expected mintable")
	}
}

func TestGetAddressState(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ok":true,"result":"active"}`)
	}))
	defer server.Close()

	state, err := newTestClient(server.URL, 1).GetAddressState(context.Background(), "EQwallet")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if state != StateActive {
		t.Errorf("state is %q, want %q", state, StateActive)
	}
}

func TestCall_APIErrorIsNotRetried(t *testing.T) {
	var requests int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		fmt.Fprint(w, `{"ok":false,"error":"address is invalid","code":416}`)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL, 5).GetTokenData(context.Background(), "bad")
	if err == nil {
		t.Fatal("expected an error")
	}

	if requests != 1 {
		t.Errorf("API-level errors should not be retried, got %d requests", requests)
	}
}

func TestCall_RetriesServerErrors(t *testing.T) {
	var requests int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"ok":true,"result":"active"}`)
	}))
	defer server.Close()

	state, err := newTestClient(server.URL, 5).GetAddressState(context.Background(), "EQwallet")
	if err != nil {
		t.Fatalf("unexpected error after retries: %v", err)
	}

	if state != StateActive {
		t.Errorf("state is %q", state)
	}

	if requests != 3 {
		t.Errorf("expected 3 requests, got %d", requests)
	}
}

func TestCall_GivesUpAfterRetryBudget(t *testing.T) {
	var requests int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL, 3).GetAddressState(context.Background(), "EQwallet")
	if err == nil {
		t.Fatal("expected an error after exhausting retries")
	}

	if requests != 3 {
		t.Errorf("expected 3 requests, got %d", requests)
	}
}
