package watchlist

import (
	"context"
	"errors"
	"fmt"
	"strings"

	appcollection "deceit/internal/app/collection"
	"deceit/internal/app/ports"
	"deceit/internal/domain/collection"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"golang.org/x/sync/errgroup"
)

const (
	RecordsField       = "game_records"
	DefaultConcurrency = 8
	unknown            = "Unknown"
)

var ErrNotConfigured = errors.New("watch list state object is not configured")

type Request struct {
	Page     int
	PageSize int
}

type Game struct {
	ObjectID string   `json:"object_id"`
	RoomID   string   `json:"room_id"`
	Name     string   `json:"name"`
	BlobID   string   `json:"blob_id"`
	Players  []string `json:"players"`
	Winners  []string `json:"winners"`
}

type Response struct {
	Games      []Game `json:"games"`
	Total      int    `json:"total"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
	TotalPages int    `json:"total_pages"`
}

type UseCase struct {
	Objects       ports.ObjectReader
	Drainer       appcollection.Drainer
	StateObjectID string
	FetchSize     int
	Concurrency   int
}

// Execute lists finished games in table order. Games whose detail object
// cannot be read are left out of the listing.
func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	if strings.TrimSpace(u.StateObjectID) == "" {
		return Response{}, ErrNotConfigured
	}
	tableID, err := u.Objects.TableID(ctx, u.StateObjectID, RecordsField)
	if err != nil {
		return Response{}, fmt.Errorf("resolve game records table: %w", err)
	}
	records, found, err := u.Drainer.Drain(ctx, collection.Query{ObjectID: tableID, PageSize: u.FetchSize})
	if err != nil {
		return Response{}, err
	}
	if !found {
		return Response{}, ports.ErrNotFound
	}

	games, err := u.details(ctx, records)
	if err != nil {
		return Response{}, err
	}
	w := collection.PageWindow(len(games), req.Page, req.PageSize)
	return Response{
		Games:      games[w.Start:w.End],
		Total:      len(games),
		Page:       w.Page,
		PageSize:   w.PageSize,
		TotalPages: w.TotalPages,
	}, nil
}

func (u UseCase) details(ctx context.Context, records []collection.Record) ([]Game, error) {
	limit := u.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	slots := make([]*Game, len(records))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, r := range records {
		objectID := strings.TrimSpace(r.Value)
		g.Go(func() error {
			rec, err := u.Objects.GameRecord(gctx, objectID)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				hlog.CtxWarnf(ctx, "watch list: dropping game %s: %v", objectID, err)
				return nil
			}
			game := toGame(objectID, rec)
			slots[i] = &game
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	games := make([]Game, 0, len(slots))
	for _, game := range slots {
		if game != nil {
			games = append(games, *game)
		}
	}
	return games, nil
}

func toGame(objectID string, rec ports.GameRecord) Game {
	game := Game{
		ObjectID: objectID,
		RoomID:   orUnknown(rec.RoomID),
		Name:     orUnknown(rec.Name),
		BlobID:   orUnknown(rec.BlobID),
		Players:  rec.Players,
		Winners:  rec.Winners,
	}
	if game.Players == nil {
		game.Players = []string{}
	}
	if game.Winners == nil {
		game.Winners = []string{}
	}
	return game
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return unknown
	}
	return s
}
