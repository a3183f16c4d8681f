package wallet

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"walletgw/credentials"
)

// Ledger operation endpoints under {LedgerURL}/wallet/.
const (
	opBalance     = "balance"
	opWager       = "wager"
	opPayout      = "payout"
	opWagerPayout = "wagerpayout"
	opCancel      = "cancel"
	opResettle    = "resettle"
	opBonus       = "bonus"
	opTransferIn  = "transferin"
	opTransferOut = "transferout"
)

// Ledger status codes, fixed wire contract owned by the ledger service.
const (
	statusOK                 = 0
	statusPlayerNotFound     = 1
	statusInsufficientFunds  = 2
	statusTransactionMissing = 3
	statusAlreadySettled     = 4
	statusDuplicate          = 5
	statusInvalidRequest     = 6
)

type walletRequest struct {
	PlayID   string `json:"play_id,omitempty"`
	Currency string `json:"currency,omitempty"`
	TxnID    string `json:"txn_id,omitempty"`

	Amount *decimal.Decimal `json:"amount,omitempty"`

	WagerTxnID   string           `json:"wager_txn_id,omitempty"`
	WagerAmount  *decimal.Decimal `json:"wager_amount,omitempty"`
	PayoutTxnID  string           `json:"payout_txn_id,omitempty"`
	PayoutAmount *decimal.Decimal `json:"payout_amount,omitempty"`

	RefTxnID     string `json:"ref_txn_id,omitempty"`
	BetID        string `json:"bet_id,omitempty"`
	SettledTxnID string `json:"settled_txn_id,omitempty"`
	BetTime      string `json:"bet_time,omitempty"`

	Report *Report `json:"report,omitempty"`
}

type walletResponse struct {
	Status  int    `json:"status"`
	Balance string `json:"balance"`
	Msg     string `json:"msg"`
}

// Client is the concrete ledger RPC client. Dial-level failures retry
// with exponential backoff because no bytes reached the ledger; once a
// request may have been received, a failure is ambiguous and is never
// retried here — the caller must reconcile before any corrective action.
type Client struct {
	httpc       *http.Client
	maxAttempts int
	backoff     time.Duration
}

func NewClient(timeout time.Duration, maxAttempts int, backoff time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}
	return &Client{
		httpc:       &http.Client{Timeout: timeout},
		maxAttempts: maxAttempts,
		backoff:     backoff,
	}
}

func (c *Client) Balance(ctx context.Context, creds credentials.Credentials, playID string) (decimal.Decimal, error) {
	return c.call(ctx, creds, opBalance, true, walletRequest{PlayID: playID})
}

func (c *Client) Wager(ctx context.Context, creds credentials.Credentials, playID, currency, txnID string, amount decimal.Decimal, report *Report) (decimal.Decimal, error) {
	return c.call(ctx, creds, opWager, false, walletRequest{
		PlayID:   playID,
		Currency: currency,
		TxnID:    txnID,
		Amount:   &amount,
		Report:   report,
	})
}

func (c *Client) Payout(ctx context.Context, creds credentials.Credentials, playID, currency, txnID string, amount decimal.Decimal, report *Report) (decimal.Decimal, error) {
	return c.call(ctx, creds, opPayout, false, walletRequest{
		PlayID:   playID,
		Currency: currency,
		TxnID:    txnID,
		Amount:   &amount,
		Report:   report,
	})
}

func (c *Client) WagerAndPayout(ctx context.Context, creds credentials.Credentials, playID, currency, wagerTxnID string, wagerAmount decimal.Decimal, payoutTxnID string, payoutAmount decimal.Decimal, report *Report) (decimal.Decimal, error) {
	return c.call(ctx, creds, opWagerPayout, false, walletRequest{
		PlayID:       playID,
		Currency:     currency,
		WagerTxnID:   wagerTxnID,
		WagerAmount:  &wagerAmount,
		PayoutTxnID:  payoutTxnID,
		PayoutAmount: &payoutAmount,
		Report:       report,
	})
}

func (c *Client) Cancel(ctx context.Context, creds credentials.Credentials, txnID string, amount decimal.Decimal, refTxnID string) (decimal.Decimal, error) {
	return c.call(ctx, creds, opCancel, false, walletRequest{
		TxnID:    txnID,
		Amount:   &amount,
		RefTxnID: refTxnID,
	})
}

func (c *Client) Resettle(ctx context.Context, creds credentials.Credentials, playID, currency, txnID string, amount decimal.Decimal, betID, settledTxnID string, betTime time.Time) (decimal.Decimal, error) {
	return c.call(ctx, creds, opResettle, false, walletRequest{
		PlayID:       playID,
		Currency:     currency,
		TxnID:        txnID,
		Amount:       &amount,
		BetID:        betID,
		SettledTxnID: settledTxnID,
		BetTime:      betTime.UTC().Format(time.RFC3339),
	})
}

func (c *Client) Bonus(ctx context.Context, creds credentials.Credentials, playID, currency, txnID string, amount decimal.Decimal, report *Report) (decimal.Decimal, error) {
	return c.call(ctx, creds, opBonus, false, walletRequest{
		PlayID:   playID,
		Currency: currency,
		TxnID:    txnID,
		Amount:   &amount,
		Report:   report,
	})
}

func (c *Client) TransferIn(ctx context.Context, creds credentials.Credentials, playID, currency, txnID string, amount decimal.Decimal, betTime time.Time) (decimal.Decimal, error) {
	return c.call(ctx, creds, opTransferIn, false, walletRequest{
		PlayID:   playID,
		Currency: currency,
		TxnID:    txnID,
		Amount:   &amount,
		BetTime:  betTime.UTC().Format(time.RFC3339),
	})
}

func (c *Client) TransferOut(ctx context.Context, creds credentials.Credentials, playID, currency, txnID string, amount decimal.Decimal, betTime time.Time) (decimal.Decimal, error) {
	return c.call(ctx, creds, opTransferOut, false, walletRequest{
		PlayID:   playID,
		Currency: currency,
		TxnID:    txnID,
		Amount:   &amount,
		BetTime:  betTime.UTC().Format(time.RFC3339),
	})
}

// call performs one ledger RPC. readonly operations are always safe to
// retry; writes retry only while the failure is provably pre-send.
func (c *Client) call(ctx context.Context, creds credentials.Credentials, op string, readonly bool, req walletRequest) (decimal.Decimal, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return decimal.Zero, Wrap(KindInvalidProviderRequest, "encode wallet request", err)
	}

	backoff := c.backoff
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		balance, err := c.post(ctx, creds, op, body)
		if err == nil {
			return balance, nil
		}
		lastErr = err

		we := Normalize(err)
		if !we.Kind.Retryable() && !(readonly && we.Kind == KindAmbiguousResult) {
			return decimal.Zero, we
		}
		if attempt == c.maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return decimal.Zero, Wrap(KindTransportError, "wallet call canceled", ctx.Err())
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return decimal.Zero, Wrap(KindTransportError,
		fmt.Sprintf("ledger %s unreachable after %d attempts", op, c.maxAttempts), lastErr)
}

func (c *Client) post(ctx context.Context, creds credentials.Credentials, op string, body []byte) (decimal.Decimal, error) {
	url := creds.LedgerURL + "/wallet/" + op
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return decimal.Zero, Wrap(KindTransportError, "build wallet request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Auth-Token", creds.AuthToken)
	httpReq.Header.Set("X-Signature", sign(body, creds.Secret))

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		if dialFailure(err) {
			return decimal.Zero, Wrap(KindTransportError, "ledger connect failed", err)
		}
		// The request may have reached the ledger before the failure.
		return decimal.Zero, Wrap(KindAmbiguousResult, "ledger call failed mid-flight", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return decimal.Zero, Wrap(KindAmbiguousResult, "read ledger response", err)
	}

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode >= http.StatusInternalServerError {
			return decimal.Zero, Wrap(KindAmbiguousResult,
				fmt.Sprintf("ledger returned HTTP %d", resp.StatusCode), nil)
		}
		return decimal.Zero, E(KindTransportError,
			fmt.Sprintf("ledger rejected request with HTTP %d", resp.StatusCode))
	}

	var wr walletResponse
	if err := json.Unmarshal(raw, &wr); err != nil {
		return decimal.Zero, Wrap(KindAmbiguousResult, "decode ledger response", err)
	}

	if wr.Status != statusOK {
		// Balance-at-failure is best effort on declines.
		balance, _ := decimal.NewFromString(wr.Balance)
		return decimal.Zero, normalizeStatus(wr.Status, wr.Msg, balance)
	}

	balance, err := decimal.NewFromString(wr.Balance)
	if err != nil {
		// The write was acknowledged but the response is unusable; the
		// outcome on the ledger side cannot be trusted as known.
		return decimal.Zero, Wrap(KindAmbiguousResult, "malformed balance in ledger response", err)
	}
	return balance, nil
}

// normalizeStatus maps a ledger decline onto the canonical taxonomy.
// Declines are deterministic: the ledger already decided, retrying
// cannot change the outcome.
func normalizeStatus(status int, msg string, balance decimal.Decimal) *Error {
	var kind Kind
	switch status {
	case statusPlayerNotFound:
		kind = KindPlayerNotFound
	case statusInsufficientFunds:
		return E(KindInsufficientFunds, msg).WithBalance(balance)
	case statusTransactionMissing:
		kind = KindTransactionNotFound
	case statusAlreadySettled:
		kind = KindTransactionAlreadySettled
	case statusDuplicate:
		kind = KindTransactionAlreadyExists
	case statusInvalidRequest:
		kind = KindInvalidProviderRequest
	default:
		return E(KindTransportError, fmt.Sprintf("unknown ledger status %d: %s", status, msg))
	}
	return E(kind, msg)
}

func dialFailure(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

func sign(body []byte, secret string) string {
	h := sha256.New()
	h.Write(body)
	h.Write([]byte(secret))
	return hex.EncodeToString(h.Sum(nil))
}
