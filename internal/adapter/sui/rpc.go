package sui

import (
	"context"
	"fmt"

	"deceit/internal/app/ports"

	"github.com/tidwall/gjson"
)

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

var _ ports.ObjectReader = (*Client)(nil)

// objectFields returns content.fields of a Move object, or ErrNotFound.
func (c *Client) objectFields(ctx context.Context, objectID string) (gjson.Result, error) {
	body, err := c.postJSON(ctx, c.cfg.RPCURL, rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "sui_getObject",
		Params:  []any{objectID, map[string]bool{"showContent": true}},
	})
	if err != nil {
		return gjson.Result{}, err
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, fmt.Errorf("%w: rpc response is not json", ErrUpstream)
	}
	res := gjson.ParseBytes(body)
	if e := res.Get("error"); e.Exists() && e.Type != gjson.Null {
		return gjson.Result{}, fmt.Errorf("%w: rpc %d: %s", ErrUpstream, e.Get("code").Int(), e.Get("message").String())
	}
	if code := res.Get("result.error.code"); code.Exists() {
		if code.String() == "notExists" || code.String() == "deleted" {
			return gjson.Result{}, fmt.Errorf("%w: object %s", ports.ErrNotFound, objectID)
		}
		return gjson.Result{}, fmt.Errorf("%w: object %s: %s", ErrUpstream, objectID, code.String())
	}
	fields := res.Get("result.data.content.fields")
	if !fields.IsObject() {
		return gjson.Result{}, fmt.Errorf("%w: object %s has no move content", ports.ErrNotFound, objectID)
	}
	return fields, nil
}

// TableID resolves the id of a Table held in field of a Move object.
func (c *Client) TableID(ctx context.Context, objectID, field string) (string, error) {
	fields, err := c.objectFields(ctx, objectID)
	if err != nil {
		return "", err
	}
	id := fields.Get(gjson.Escape(field) + ".fields.id.id").String()
	if id == "" {
		return "", fmt.Errorf("%w: table field %s on %s", ports.ErrNotFound, field, objectID)
	}
	return id, nil
}

func (c *Client) GameRecord(ctx context.Context, objectID string) (ports.GameRecord, error) {
	fields, err := c.objectFields(ctx, objectID)
	if err != nil {
		return ports.GameRecord{}, err
	}
	return ports.GameRecord{
		ObjectID: objectID,
		RoomID:   fields.Get("room_id").String(),
		Name:     fields.Get("name").String(),
		BlobID:   fields.Get("blob_id").String(),
		Players:  stringList(fields.Get("players")),
		Winners:  stringList(fields.Get("winners")),
	}, nil
}

func stringList(v gjson.Result) []string {
	out := []string{}
	for _, item := range v.Array() {
		out = append(out, item.String())
	}
	return out
}
