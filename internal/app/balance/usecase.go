package balance

import (
	"context"
	"errors"
	"strings"

	"deceit/internal/app/ports"
)

var ErrInvalidRequest = errors.New("invalid balance request")

type Request struct {
	Address string
}

type Response struct {
	Address         string  `json:"address"`
	CoinType        string  `json:"coin_type"`
	CoinObjectCount int64   `json:"coinObjectCount"`
	TotalBalance    float64 `json:"totalBalance"`
}

type UseCase struct {
	Balances ports.BalanceReader
	CoinType string
}

// Execute returns ports.ErrNotFound when the chain has no balance entry for
// the address.
func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	address := strings.TrimSpace(req.Address)
	if address == "" || strings.TrimSpace(u.CoinType) == "" {
		return Response{}, ErrInvalidRequest
	}
	bal, found, err := u.Balances.CoinBalance(ctx, address, u.CoinType)
	if err != nil {
		return Response{}, err
	}
	if !found {
		return Response{}, ports.ErrNotFound
	}
	return Response{
		Address:         address,
		CoinType:        u.CoinType,
		CoinObjectCount: bal.CoinObjectCount,
		TotalBalance:    bal.TotalBalance,
	}, nil
}
