package wallet

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"walletgw/credentials"
)

// fakeLedger implements the ledger wire contract in-process.
type fakeLedger struct {
	mu      sync.Mutex
	balance decimal.Decimal
	applied map[string]bool
	hits    map[string]int
	delay   time.Duration
	fail    int // respond HTTP 503 for the first N requests
}

func newFakeLedger(balance string) *fakeLedger {
	return &fakeLedger{
		balance: decimal.RequireFromString(balance),
		applied: make(map[string]bool),
		hits:    make(map[string]int),
	}
}

func (f *fakeLedger) handler(w http.ResponseWriter, r *http.Request) {
	op := strings.TrimPrefix(r.URL.Path, "/wallet/")

	f.mu.Lock()
	f.hits[op]++
	delay := f.delay
	shouldFail := f.fail > 0
	if shouldFail {
		f.fail--
	}
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if shouldFail {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	var req walletRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	f.mu.Lock()
	defer f.mu.Unlock()

	reply := func(status int, msg string) {
		_ = json.NewEncoder(w).Encode(walletResponse{
			Status:  status,
			Balance: f.balance.StringFixed(2),
			Msg:     msg,
		})
	}

	switch op {
	case opBalance:
		reply(statusOK, "")
	case opWager:
		if f.applied[req.TxnID] {
			reply(statusDuplicate, "Duplicate Transaction")
			return
		}
		if req.Amount.GreaterThan(f.balance) {
			reply(statusInsufficientFunds, "Insufficient Funds")
			return
		}
		f.applied[req.TxnID] = true
		f.balance = f.balance.Sub(*req.Amount)
		reply(statusOK, "")
	case opPayout, opBonus, opTransferIn:
		if f.applied[req.TxnID] {
			reply(statusDuplicate, "Duplicate Transaction")
			return
		}
		f.applied[req.TxnID] = true
		f.balance = f.balance.Add(*req.Amount)
		reply(statusOK, "")
	case opTransferOut:
		if req.Amount.GreaterThan(f.balance) {
			reply(statusInsufficientFunds, "Insufficient Funds")
			return
		}
		f.applied[req.TxnID] = true
		f.balance = f.balance.Sub(*req.Amount)
		reply(statusOK, "")
	case opWagerPayout:
		if f.applied[req.WagerTxnID] {
			reply(statusDuplicate, "Duplicate Transaction")
			return
		}
		if req.WagerAmount.GreaterThan(f.balance) {
			reply(statusInsufficientFunds, "Insufficient Funds")
			return
		}
		f.applied[req.WagerTxnID] = true
		f.applied[req.PayoutTxnID] = true
		f.balance = f.balance.Sub(*req.WagerAmount).Add(*req.PayoutAmount)
		reply(statusOK, "")
	case opCancel, opResettle:
		f.applied[req.TxnID] = true
		f.balance = f.balance.Add(*req.Amount)
		reply(statusOK, "")
	default:
		reply(statusInvalidRequest, "unknown operation")
	}
}

func (f *fakeLedger) hitCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[op]
}

func startLedger(t *testing.T, f *fakeLedger) credentials.Credentials {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(f.handler))
	t.Cleanup(srv.Close)
	return credentials.Credentials{
		Provider:   "sbo",
		LedgerURL:  srv.URL,
		AuthToken:  "token",
		Secret:     "secret",
		Multiplier: decimal.NewFromInt(1),
	}
}

func TestWagerDebitsAndReturnsNewBalance(t *testing.T) {
	ledger := newFakeLedger("500.00")
	creds := startLedger(t, ledger)
	client := NewClient(time.Second, 3, 10*time.Millisecond)

	balance, err := client.Wager(context.Background(), creds, "player-1", "USD",
		"wagerpayout-R123", decimal.RequireFromString("10.00"), &Report{RoundID: "R123"})
	require.NoError(t, err)

	assert.Equal(t, "490.00", balance.StringFixed(2))
	assert.Equal(t, 1, ledger.hitCount(opWager))
}

func TestInsufficientFundsCarriesBalanceAndIsNotRetried(t *testing.T) {
	ledger := newFakeLedger("5.00")
	creds := startLedger(t, ledger)
	client := NewClient(time.Second, 3, 10*time.Millisecond)

	_, err := client.Wager(context.Background(), creds, "player-1", "USD",
		"wagerpayout-R1", decimal.RequireFromString("10.00"), nil)

	var we *Error
	require.ErrorAs(t, err, &we)
	assert.Equal(t, KindInsufficientFunds, we.Kind)
	assert.True(t, we.HasBalance)
	assert.Equal(t, "5.00", we.Balance.StringFixed(2))
	assert.Equal(t, 1, ledger.hitCount(opWager))
}

func TestDuplicateStatusMapsToAlreadyExists(t *testing.T) {
	ledger := newFakeLedger("100.00")
	creds := startLedger(t, ledger)
	client := NewClient(time.Second, 3, 10*time.Millisecond)
	ctx := context.Background()

	_, err := client.Wager(ctx, creds, "player-1", "USD", "wagerpayout-R2", decimal.RequireFromString("1.00"), nil)
	require.NoError(t, err)

	_, err = client.Wager(ctx, creds, "player-1", "USD", "wagerpayout-R2", decimal.RequireFromString("1.00"), nil)
	assert.Equal(t, KindTransactionAlreadyExists, KindOf(err))
}

func TestDialFailureSurfacesTransportError(t *testing.T) {
	// Grab a port nothing listens on.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	creds := credentials.Credentials{LedgerURL: "http://" + addr, Multiplier: decimal.NewFromInt(1)}
	client := NewClient(time.Second, 3, 5*time.Millisecond)

	_, err = client.Wager(context.Background(), creds, "player-1", "USD",
		"wagerpayout-R3", decimal.RequireFromString("1.00"), nil)

	kind := KindOf(err)
	assert.Equal(t, KindTransportError, kind)
	assert.True(t, kind.Retryable())
}

func TestTimeoutAfterSendIsAmbiguousAndNotRetried(t *testing.T) {
	ledger := newFakeLedger("100.00")
	ledger.delay = 300 * time.Millisecond
	creds := startLedger(t, ledger)
	client := NewClient(50*time.Millisecond, 3, 5*time.Millisecond)

	_, err := client.Wager(context.Background(), creds, "player-1", "USD",
		"wagerpayout-R4", decimal.RequireFromString("1.00"), nil)

	kind := KindOf(err)
	assert.Equal(t, KindAmbiguousResult, kind)
	assert.False(t, kind.Retryable())

	// Let the in-flight handler drain, then verify no retry happened.
	time.Sleep(400 * time.Millisecond)
	assert.Equal(t, 1, ledger.hitCount(opWager))
}

func TestBalanceRetriesThroughTransientServerErrors(t *testing.T) {
	ledger := newFakeLedger("250.00")
	ledger.fail = 1
	creds := startLedger(t, ledger)
	client := NewClient(time.Second, 3, 5*time.Millisecond)

	balance, err := client.Balance(context.Background(), creds, "player-1")
	require.NoError(t, err)
	assert.Equal(t, "250.00", balance.StringFixed(2))
	assert.Equal(t, 2, ledger.hitCount(opBalance))
}

func TestWagerAndPayoutMatchesSequentialCalls(t *testing.T) {
	combined := newFakeLedger("500.00")
	sequential := newFakeLedger("500.00")
	combinedCreds := startLedger(t, combined)
	sequentialCreds := startLedger(t, sequential)
	client := NewClient(time.Second, 3, 10*time.Millisecond)
	ctx := context.Background()

	bet := decimal.RequireFromString("10.00")
	win := decimal.RequireFromString("15.00")

	combinedBalance, err := client.WagerAndPayout(ctx, combinedCreds, "player-1", "USD",
		"wagerpayout-R5", bet, "payout-R5", win, nil)
	require.NoError(t, err)

	_, err = client.Wager(ctx, sequentialCreds, "player-1", "USD", "wagerpayout-R5", bet, nil)
	require.NoError(t, err)
	sequentialBalance, err := client.Payout(ctx, sequentialCreds, "player-1", "USD", "payout-R5", win, nil)
	require.NoError(t, err)

	assert.True(t, combinedBalance.Equal(sequentialBalance),
		"combined %s != sequential %s", combinedBalance, sequentialBalance)
}

func TestMalformedBalanceOnOKIsAmbiguous(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_ = json.NewEncoder(w).Encode(walletResponse{Status: statusOK, Balance: "not-a-number"})
	}))
	t.Cleanup(srv.Close)

	creds := credentials.Credentials{LedgerURL: srv.URL, Multiplier: decimal.NewFromInt(1)}
	client := NewClient(time.Second, 3, 5*time.Millisecond)

	// The ledger said OK but we cannot trust a reply we cannot decode;
	// the write may well have applied, so this is not a retryable failure.
	_, err := client.Wager(context.Background(), creds, "player-1", "USD",
		"wagerpayout-R6", decimal.RequireFromString("1.00"), nil)

	kind := KindOf(err)
	assert.Equal(t, KindAmbiguousResult, kind)
	assert.False(t, kind.Retryable())
	assert.Equal(t, 1, hits)
}

func TestRequestsAreSigned(t *testing.T) {
	var gotToken, gotSig string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Auth-Token")
		gotSig = r.Header.Get("X-Signature")
		_ = json.NewEncoder(w).Encode(walletResponse{Status: statusOK, Balance: "0"})
	}))
	t.Cleanup(srv.Close)

	creds := credentials.Credentials{LedgerURL: srv.URL, AuthToken: "tok", Secret: "sec"}
	client := NewClient(time.Second, 1, time.Millisecond)

	_, err := client.Balance(context.Background(), creds, "player-1")
	require.NoError(t, err)
	assert.Equal(t, "tok", gotToken)
	assert.Len(t, gotSig, 64)
}
