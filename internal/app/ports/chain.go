package ports

import (
	"context"

	"deceit/internal/domain/collection"
)

// PageSource fetches one page of a remote collection. found is false when
// the addressed object does not exist; that is not an error.
type PageSource interface {
	FetchPage(ctx context.Context, q collection.Query, after *string) (page collection.Page, found bool, err error)
}

type GameRecord struct {
	ObjectID string
	RoomID   string
	Name     string
	BlobID   string
	Players  []string
	Winners  []string
}

type CoinBalance struct {
	CoinObjectCount int64
	TotalBalance    float64
}

// ObjectReader resolves contract objects by id. Missing objects yield
// ErrNotFound.
type ObjectReader interface {
	TableID(ctx context.Context, objectID, field string) (string, error)
	GameRecord(ctx context.Context, objectID string) (GameRecord, error)
}

type BalanceReader interface {
	CoinBalance(ctx context.Context, address, coinType string) (CoinBalance, bool, error)
}
