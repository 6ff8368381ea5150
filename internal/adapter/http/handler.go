package httpadapter

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"deceit/internal/adapter/eventlog/wire"
	"deceit/internal/app/balance"
	appcollection "deceit/internal/app/collection"
	"deceit/internal/app/leaderboard"
	"deceit/internal/app/ports"
	"deceit/internal/app/spectate"
	"deceit/internal/app/watchlist"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/adaptor"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

var ErrInvalidLogPayload = errors.New("invalid event log payload")

type Handler struct {
	Rooms         *spectate.Rooms
	LeaderboardUC leaderboard.UseCase
	WatchListUC   watchlist.UseCase
	BalanceUC     balance.UseCase
	KPI           kpiSnapshotProvider
	Metrics       http.Handler
	CORSOrigin    string
}

func (h Handler) RegisterRoutes(s *server.Hertz) {
	s.Use(corsMiddleware(h.CORSOrigin))

	rooms := s.Group("/api/rooms")
	rooms.POST("/:room_id/watch", h.watch)
	rooms.DELETE("/:room_id/watch", h.unwatch)
	rooms.GET("/:room_id/snapshot", h.snapshot)
	rooms.PUT("/:room_id/log", h.ingestLog)

	s.GET("/api/leaderboard", h.leaderboard)
	s.GET("/api/games", h.watchList)
	s.GET("/api/balance/:address", h.balance)

	s.GET("/healthz", h.healthz)
	s.GET("/ops/kpi", h.kpi)
	if h.Metrics != nil {
		s.GET("/metrics", adaptor.HertzHandler(h.Metrics))
	}
}

func (h Handler) watch(c context.Context, ctx *app.RequestContext) {
	resp, err := h.Rooms.Watch(c, spectate.WatchRequest{RoomID: ctx.Param("room_id")})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) unwatch(c context.Context, ctx *app.RequestContext) {
	if err := h.Rooms.Unwatch(c, ctx.Param("room_id")); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.Status(consts.StatusNoContent)
}

func (h Handler) snapshot(c context.Context, ctx *app.RequestContext) {
	resp, err := h.Rooms.Snapshot(c, spectate.SnapshotRequest{RoomID: ctx.Param("room_id")})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

// ingestLog accepts a match log in the game server's wire shape. The room
// id in the path wins over any id inside the payload.
func (h Handler) ingestLog(c context.Context, ctx *app.RequestContext) {
	roomID := strings.TrimSpace(ctx.Param("room_id"))
	log, err := wire.DecodeRoom(bytes.NewReader(ctx.Request.Body()), roomID)
	if err != nil {
		hlog.CtxInfof(c, "room %s: rejected log payload: %v", roomID, err)
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_log", ErrInvalidLogPayload.Error()+": "+err.Error())
		return
	}
	resp, err := h.Rooms.Ingest(c, spectate.IngestRequest{Log: log})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) leaderboard(c context.Context, ctx *app.RequestContext) {
	page, size := pageParams(ctx)
	resp, err := h.LeaderboardUC.Execute(c, leaderboard.Request{Page: page, PageSize: size})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) watchList(c context.Context, ctx *app.RequestContext) {
	page, size := pageParams(ctx)
	resp, err := h.WatchListUC.Execute(c, watchlist.Request{Page: page, PageSize: size})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) balance(c context.Context, ctx *app.RequestContext) {
	resp, err := h.BalanceUC.Execute(c, balance.Request{Address: ctx.Param("address")})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) healthz(_ context.Context, ctx *app.RequestContext) {
	body := map[string]any{"status": "ok"}
	if h.Rooms != nil {
		body["watching"] = len(h.Rooms.Watching())
	}
	ctx.JSON(consts.StatusOK, body)
}

type kpiSnapshotProvider interface {
	SnapshotAny() any
}

func (h Handler) kpi(_ context.Context, ctx *app.RequestContext) {
	if h.KPI == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "kpi provider not configured")
		return
	}
	ctx.JSON(consts.StatusOK, h.KPI.SnapshotAny())
}

// pageParams reads page and page_size; invalid values fall back to the
// defaults applied by the listing use cases.
func pageParams(ctx *app.RequestContext) (int, int) {
	page, _ := strconv.Atoi(ctx.Query("page"))
	size, _ := strconv.Atoi(ctx.Query("page_size"))
	return page, size
}

func writeError(ctx *app.RequestContext, err error) {
	switch {
	case errors.Is(err, spectate.ErrInvalidRequest),
		errors.Is(err, balance.ErrInvalidRequest),
		errors.Is(err, appcollection.ErrInvalidQuery):
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, spectate.ErrNoLog):
		writeErrorBody(ctx, consts.StatusNotFound, "no_event_log", err.Error())
	case errors.Is(err, spectate.ErrNoSession):
		writeErrorBody(ctx, consts.StatusNotFound, "not_watching", err.Error())
	case errors.Is(err, ports.ErrNotFound):
		writeErrorBody(ctx, consts.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, leaderboard.ErrNotConfigured),
		errors.Is(err, watchlist.ErrNotConfigured):
		writeErrorBody(ctx, consts.StatusServiceUnavailable, "not_configured", err.Error())
	case errors.Is(err, appcollection.ErrStalledPagination),
		errors.Is(err, appcollection.ErrPageLimitExceeded):
		writeErrorBody(ctx, consts.StatusBadGateway, "pagination_failed", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeErrorBody(ctx, consts.StatusGatewayTimeout, "upstream_timeout", err.Error())
	case errors.Is(err, appcollection.ErrFetchFailure),
		errors.Is(err, ports.ErrUpstream):
		writeErrorBody(ctx, consts.StatusBadGateway, "upstream_error", err.Error())
	default:
		writeErrorBody(ctx, consts.StatusInternalServerError, "internal_error", "internal error")
	}
}

func writeErrorBody(ctx *app.RequestContext, status int, code, message string) {
	ctx.JSON(status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
