package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	appcollection "deceit/internal/app/collection"
	"deceit/internal/app/ports"
	"deceit/internal/domain/collection"

	"github.com/cloudwego/hertz/pkg/common/hlog"
)

// ScoreField names the table on the contract state object that maps player
// addresses to scores.
const ScoreField = "score"

var ErrNotConfigured = errors.New("leaderboard state object is not configured")

type Request struct {
	Page     int
	PageSize int
}

type RankEntry struct {
	Rank    int    `json:"rank"`
	Address string `json:"address"`
	Score   uint64 `json:"score"`
}

type Response struct {
	Entries    []RankEntry `json:"entries"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalPages int         `json:"total_pages"`
}

type UseCase struct {
	Objects       ports.ObjectReader
	Drainer       appcollection.Drainer
	StateObjectID string
	FetchSize     int
}

func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	if strings.TrimSpace(u.StateObjectID) == "" {
		return Response{}, ErrNotConfigured
	}
	tableID, err := u.Objects.TableID(ctx, u.StateObjectID, ScoreField)
	if err != nil {
		return Response{}, fmt.Errorf("resolve score table: %w", err)
	}
	records, found, err := u.Drainer.Drain(ctx, collection.Query{ObjectID: tableID, PageSize: u.FetchSize})
	if err != nil {
		return Response{}, err
	}
	if !found {
		return Response{}, ports.ErrNotFound
	}

	ranked := make([]RankEntry, 0, len(records))
	for _, r := range records {
		score, err := strconv.ParseUint(strings.TrimSpace(r.Value), 10, 64)
		if err != nil {
			hlog.CtxWarnf(ctx, "leaderboard: score for %s is not numeric: %q", r.Name, r.Value)
		}
		ranked = append(ranked, RankEntry{Address: r.Name, Score: score})
	}
	slices.SortStableFunc(ranked, func(a, b RankEntry) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})

	w := collection.PageWindow(len(ranked), req.Page, req.PageSize)
	entries := make([]RankEntry, 0, w.End-w.Start)
	for i := w.Start; i < w.End; i++ {
		e := ranked[i]
		e.Rank = i + 1
		entries = append(entries, e)
	}
	return Response{
		Entries:    entries,
		Total:      len(ranked),
		Page:       w.Page,
		PageSize:   w.PageSize,
		TotalPages: w.TotalPages,
	}, nil
}
