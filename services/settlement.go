// Package services holds the outbound provider API clients used by the
// background scheduler, separate from the money-moving ledger calls.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"walletgw/credentials"
)

// reportClient bounds every provider report call. The scheduler runs
// these synchronously in its ticker loop; an unbounded request would
// stall every later sweep.
var reportClient = &http.Client{Timeout: 15 * time.Second}

// SettledBet is one row of a provider's settled-bet report.
type SettledBet struct {
	RefNo      string  `json:"ref_no"`
	Username   string  `json:"username"`
	WinLoss    float64 `json:"win_loss"`
	Status     string  `json:"status"`
	SettleTime string  `json:"settle_time"`
}

// FetchSettledBets pulls the provider's settlement report for a time
// window. Read-only against the provider; never touches the ledger.
func FetchSettledBets(ctx context.Context, creds credentials.Credentials, start, end time.Time) ([]SettledBet, error) {
	payload := map[string]any{
		"api_key":   creds.APIKey,
		"startDate": start.UTC().Format(time.RFC3339),
		"endDate":   end.UTC().Format(time.RFC3339),
	}

	body, _ := json.Marshal(payload)
	url := creds.APIURL + "/report/get-settled-bet-list"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := reportClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	rawResp, _ := io.ReadAll(resp.Body)

	var result struct {
		Result []SettledBet `json:"result"`
		Error  struct {
			ID  int    `json:"id"`
			Msg string `json:"msg"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rawResp, &result); err != nil {
		return nil, fmt.Errorf("decode error: %v", err)
	}

	if result.Error.ID != 0 {
		return nil, fmt.Errorf("API error: %s", result.Error.Msg)
	}
	return result.Result, nil
}
