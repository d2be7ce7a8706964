// ledger/lookup.go
package ledger

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"walletflow-service/internal/domain"
)

// ResolveWallet looks up the counterparty behind a wallet id. A 404 maps to
// domain.ErrRecipientNotFound; every other failure passes through.
func (c *Client) ResolveWallet(ctx context.Context, walletID string) (*domain.Recipient, error) {
	var res struct {
		ID          int64  `json:"id"`
		DisplayName string `json:"display_name"`
		WalletID    string `json:"wallet_id"`
	}
	err := c.doJSON(ctx, http.MethodGet, "/wallet/"+walletID, nil, &res)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, domain.ErrRecipientNotFound
		}
		return nil, err
	}
	if res.WalletID == "" {
		res.WalletID = walletID
	}
	return &domain.Recipient{
		ID:          res.ID,
		DisplayName: res.DisplayName,
		WalletID:    res.WalletID,
	}, nil
}

// GetRail fetches the payment rail descriptor for a deposit account.
func (c *Client) GetRail(ctx context.Context, accountID string) (*domain.RailDescriptor, error) {
	var res struct {
		Category      string            `json:"category"`
		Fields        map[string]string `json:"fields"`
		DialCode      string            `json:"dial_code"`
		WalletAddress string            `json:"wallet_address"`
		Network       string            `json:"network"`
		Instructions  string            `json:"instructions"`
	}
	err := c.doJSON(ctx, http.MethodGet, "/accounts/"+accountID+"/rail", nil, &res)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, domain.ErrRailNotFound
		}
		return nil, err
	}

	category, ok := domain.ParseRailCategory(res.Category)
	if !ok {
		return nil, fmt.Errorf("unrecognized rail category %q", res.Category)
	}
	return &domain.RailDescriptor{
		Category:             category,
		Fields:               res.Fields,
		DialCode:             res.DialCode,
		WalletAddress:        res.WalletAddress,
		Network:              res.Network,
		FreeTextInstructions: res.Instructions,
	}, nil
}

// GetProfile fetches the authoritative account balance.
func (c *Client) GetProfile(ctx context.Context) (*domain.Balance, error) {
	var res struct {
		Balance  float64 `json:"balance"`
		Currency string  `json:"currency"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/profile", nil, &res); err != nil {
		return nil, err
	}
	return &domain.Balance{
		Available: res.Balance,
		Currency:  res.Currency,
		FetchedAt: time.Now().UTC(),
	}, nil
}
