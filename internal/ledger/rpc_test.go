package ledger

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/opdev7/LendTez/internal/contract"
)

func TestNewRPCValidation(t *testing.T) {
	if _, err := NewRPC("", "KT1c"); err == nil {
		t.Fatalf("expected error for empty url")
	}
	if _, err := NewRPC("http://node", "  "); err == nil {
		t.Fatalf("expected error for empty contract address")
	}
	l, err := NewRPC(" http://node ", "KT1c")
	if err != nil {
		t.Fatalf("NewRPC: %v", err)
	}
	if l.httpURL != "http://node" {
		t.Fatalf("url not trimmed: %q", l.httpURL)
	}
}

func TestRPCApplyEncodesBatch(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{"result":"opAbc123"}`))
	}))
	defer srv.Close()

	l, err := NewRPC(srv.URL, "KT1contract")
	if err != nil {
		t.Fatalf("NewRPC: %v", err)
	}
	err = l.Apply(context.Background(), []contract.Transfer{
		{Token: contract.Token{Kind: contract.KindNative}, From: "KT1contract", To: "tz1bob", Amount: 5},
		{Token: contract.Token{Kind: contract.KindFungible, Address: "KT1fa"}, From: "tz1alice", To: "tz1bob", Amount: 7},
		{Token: contract.Token{Kind: contract.KindMultiAsset, Address: "KT1ma", SubID: 3}, From: "tz1alice", To: "tz1bob", Amount: 9},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	var req struct {
		Method string `json:"method"`
		Params []struct {
			Source     string            `json:"source"`
			Operations []json.RawMessage `json:"operations"`
		} `json:"params"`
	}
	if err := json.Unmarshal(gotBody, &req); err != nil {
		t.Fatalf("decode request: %v", err)
	}
	if req.Method != "apply_batch" {
		t.Fatalf("method = %q", req.Method)
	}
	if len(req.Params) != 1 || req.Params[0].Source != "KT1contract" {
		t.Fatalf("params = %+v", req.Params)
	}
	ops := req.Params[0].Operations
	if len(ops) != 3 {
		t.Fatalf("operations = %d", len(ops))
	}

	// The token contracts consume positional payloads, so the serialized
	// field order is part of the protocol.
	wants := []string{
		`{"entrypoint":"send","payload":{"destination":"tz1bob","value":5}}`,
		`{"token":"KT1fa","entrypoint":"transfer","payload":{"source":"tz1alice","destination":"tz1bob","value":7}}`,
		`{"token":"KT1ma","entrypoint":"transfer","payload":{"source":"tz1alice","transfers":[{"destination":"tz1bob","sub_id":3,"amount":9}]}}`,
	}
	for i, want := range wants {
		if got := string(ops[i]); got != want {
			t.Errorf("operation %d:\n got  %s\n want %s", i, got, want)
		}
	}
}

func TestRPCApplyRejections(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		wantSub string
	}{
		{"rpc error", http.StatusOK, `{"error":{"code":-32000,"message":"balance too low"}}`, "balance too low"},
		{"empty hash", http.StatusOK, `{"result":""}`, "empty operation hash"},
		{"http error", http.StatusBadGateway, `boom`, "status 502"},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			w.Write([]byte(tc.body))
		}))
		l, _ := NewRPC(srv.URL, "KT1contract")
		err := l.Apply(context.Background(), []contract.Transfer{
			{Token: contract.Token{Kind: contract.KindNative}, From: "KT1contract", To: "tz1bob", Amount: 1},
		})
		srv.Close()
		if err == nil || !strings.Contains(err.Error(), tc.wantSub) {
			t.Errorf("%s: err = %v, want substring %q", tc.name, err, tc.wantSub)
		}
	}
}

func TestRPCNativeBalance(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req struct {
			Method string   `json:"method"`
			Params []string `json:"params"`
		}
		if err := json.Unmarshal(body, &req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Method != "native_balance" || len(req.Params) != 1 || req.Params[0] != "tz1alice" {
			t.Errorf("request = %+v", req)
		}
		w.Write([]byte(`{"result":314159}`))
	}))
	defer srv.Close()

	l, _ := NewRPC(srv.URL, "KT1contract")
	got, err := l.NativeBalance(context.Background(), "tz1alice")
	if err != nil {
		t.Fatalf("NativeBalance: %v", err)
	}
	if got != 314159 {
		t.Fatalf("balance = %d", got)
	}
}

func TestRPCSetDelegate(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{"result":"opDel"}`))
	}))
	defer srv.Close()

	l, _ := NewRPC(srv.URL, "KT1contract")
	baker := "tz1baker"
	if err := l.SetDelegate(context.Background(), &baker); err != nil {
		t.Fatalf("SetDelegate: %v", err)
	}

	var req struct {
		Method string `json:"method"`
		Params []struct {
			Source   string  `json:"source"`
			Delegate *string `json:"delegate"`
		} `json:"params"`
	}
	if err := json.Unmarshal(gotBody, &req); err != nil {
		t.Fatalf("decode request: %v", err)
	}
	if req.Method != "set_delegate" || req.Params[0].Delegate == nil || *req.Params[0].Delegate != baker {
		t.Fatalf("request = %+v", req)
	}

	if err := l.SetDelegate(context.Background(), nil); err != nil {
		t.Fatalf("SetDelegate clear: %v", err)
	}
	if err := json.Unmarshal(gotBody, &req); err != nil {
		t.Fatalf("decode request: %v", err)
	}
	if req.Params[0].Delegate != nil {
		t.Fatalf("delegate not cleared in request")
	}
}
