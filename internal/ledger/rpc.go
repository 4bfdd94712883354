package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/opdev7/LendTez/internal/contract"
)

// RPC talks to the host node that executes value movements on behalf of the
// contract. A whole transfer batch is submitted as one request, so the node
// applies it atomically; a rejected batch has no effect.
type RPC struct {
	httpURL      string
	contractAddr string
	httpClient   *http.Client
}

func NewRPC(httpURL, contractAddr string) (*RPC, error) {
	if strings.TrimSpace(httpURL) == "" {
		return nil, fmt.Errorf("missing LEDGER_RPC_URL")
	}
	if strings.TrimSpace(contractAddr) == "" {
		return nil, fmt.Errorf("missing CONTRACT_ADDRESS")
	}
	return &RPC{
		httpURL:      strings.TrimSpace(httpURL),
		contractAddr: strings.TrimSpace(contractAddr),
		httpClient:   &http.Client{Timeout: 20 * time.Second},
	}, nil
}

// Wire shapes for the two token standards. Field order matters to the token
// contracts, and encoding/json preserves struct order.

type singlePairTransfer struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Value       uint64 `json:"value"`
}

type batchedTransferItem struct {
	Destination string `json:"destination"`
	SubID       uint64 `json:"sub_id"`
	Amount      uint64 `json:"amount"`
}

type batchedTransfer struct {
	Source    string                `json:"source"`
	Transfers []batchedTransferItem `json:"transfers"`
}

type nativeSend struct {
	Destination string `json:"destination"`
	Value       uint64 `json:"value"`
}

type operation struct {
	Token      string `json:"token,omitempty"`
	Entrypoint string `json:"entrypoint"`
	Payload    any    `json:"payload"`
}

func planOperation(tr contract.Transfer) operation {
	switch tr.Token.Kind {
	case contract.KindFungible:
		return operation{
			Token:      tr.Token.Address,
			Entrypoint: "transfer",
			Payload:    singlePairTransfer{Source: tr.From, Destination: tr.To, Value: tr.Amount},
		}
	case contract.KindMultiAsset:
		return operation{
			Token:      tr.Token.Address,
			Entrypoint: "transfer",
			Payload: batchedTransfer{
				Source:    tr.From,
				Transfers: []batchedTransferItem{{Destination: tr.To, SubID: tr.Token.SubID, Amount: tr.Amount}},
			},
		}
	default:
		return operation{
			Entrypoint: "send",
			Payload:    nativeSend{Destination: tr.To, Value: tr.Amount},
		}
	}
}

func (l *RPC) Apply(ctx context.Context, transfers []contract.Transfer) error {
	ops := make([]operation, 0, len(transfers))
	for _, tr := range transfers {
		ops = append(ops, planOperation(tr))
	}
	var opHash string
	if err := l.rpc(ctx, "apply_batch", []any{map[string]any{"source": l.contractAddr, "operations": ops}}, &opHash); err != nil {
		return err
	}
	if opHash == "" {
		return fmt.Errorf("empty operation hash response")
	}
	return nil
}

func (l *RPC) NativeBalance(ctx context.Context, owner string) (uint64, error) {
	var balance uint64
	if err := l.rpc(ctx, "native_balance", []any{owner}, &balance); err != nil {
		return 0, err
	}
	return balance, nil
}

func (l *RPC) SetDelegate(ctx context.Context, delegate *string) error {
	var opHash string
	return l.rpc(ctx, "set_delegate", []any{map[string]any{"source": l.contractAddr, "delegate": delegate}}, &opHash)
}

func (l *RPC) rpc(ctx context.Context, method string, params []any, out any) error {
	reqBody, _ := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
		"params":  params,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.httpURL, bytes.NewReader(reqBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ledger rpc status %d", resp.StatusCode)
	}

	var rpcResp struct {
		Result json.RawMessage `json:"result"`
		Error  *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return err
	}
	if rpcResp.Error != nil {
		return fmt.Errorf("ledger rpc error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message)
	}
	if out != nil && len(rpcResp.Result) > 0 {
		return json.Unmarshal(rpcResp.Result, out)
	}
	return nil
}
