package sui

import (
	"context"
	"fmt"
	"strings"

	"deceit/internal/app/ports"
	"deceit/internal/domain/collection"

	"github.com/tidwall/gjson"
)

const dynamicFieldsQuery = `query DynamicFields($address: SuiAddress!, $first: Int, $after: String) {
  object(address: $address) {
    dynamicFields(first: $first, after: $after) {
      pageInfo { hasNextPage endCursor }
      nodes {
        name { json }
        value { ... on MoveValue { json } }
      }
    }
  }
}`

const balanceQuery = `query Balance($address: SuiAddress!, $type: String) {
  address(address: $address) {
    balance(type: $type) { coinObjectCount totalBalance }
  }
}`

// mistPerCoin converts on-chain base units into whole coins.
const mistPerCoin = 1e9

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

var (
	_ ports.PageSource    = (*Client)(nil)
	_ ports.BalanceReader = (*Client)(nil)
)

func (c *Client) graphQL(ctx context.Context, query string, vars map[string]any) (gjson.Result, error) {
	body, err := c.postJSON(ctx, c.cfg.GraphQLURL, graphQLRequest{Query: query, Variables: vars})
	if err != nil {
		return gjson.Result{}, err
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, fmt.Errorf("%w: graphql response is not json", ErrUpstream)
	}
	res := gjson.ParseBytes(body)
	if errs := res.Get("errors"); errs.IsArray() && len(errs.Array()) > 0 {
		var msgs []string
		for _, e := range errs.Array() {
			msgs = append(msgs, e.Get("message").String())
		}
		return gjson.Result{}, fmt.Errorf("%w: graphql: %s", ErrUpstream, strings.Join(msgs, "; "))
	}
	return res.Get("data"), nil
}

// FetchPage reads one page of an object's dynamic fields. A null object
// means the id does not exist.
func (c *Client) FetchPage(ctx context.Context, q collection.Query, after *string) (collection.Page, bool, error) {
	vars := map[string]any{"address": q.ObjectID}
	if q.PageSize > 0 {
		vars["first"] = q.PageSize
	}
	if after != nil {
		vars["after"] = *after
	}
	data, err := c.graphQL(ctx, dynamicFieldsQuery, vars)
	if err != nil {
		return collection.Page{}, false, err
	}
	obj := data.Get("object")
	if !obj.Exists() || obj.Type == gjson.Null {
		return collection.Page{}, false, nil
	}

	fields := obj.Get("dynamicFields")
	page := collection.Page{Records: []collection.Record{}}
	page.Info.HasNextPage = fields.Get("pageInfo.hasNextPage").Bool()
	if cur := fields.Get("pageInfo.endCursor"); cur.Exists() && cur.Type != gjson.Null {
		s := cur.String()
		page.Info.EndCursor = &s
	}
	for _, node := range fields.Get("nodes").Array() {
		page.Records = append(page.Records, collection.Record{
			Name:  moveScalar(node.Get("name.json"), "name"),
			Value: moveScalar(node.Get("value.json"), "value"),
		})
	}
	return page, true, nil
}

// CoinBalance reports found=false when the address has no balance entry
// for coinType.
func (c *Client) CoinBalance(ctx context.Context, address, coinType string) (ports.CoinBalance, bool, error) {
	data, err := c.graphQL(ctx, balanceQuery, map[string]any{"address": address, "type": coinType})
	if err != nil {
		return ports.CoinBalance{}, false, err
	}
	bal := data.Get("address.balance")
	if !bal.Exists() || bal.Type == gjson.Null {
		return ports.CoinBalance{}, false, nil
	}
	return ports.CoinBalance{
		CoinObjectCount: bal.Get("coinObjectCount").Int(),
		TotalBalance:    bal.Get("totalBalance").Float() / mistPerCoin,
	}, true, nil
}

// moveScalar unwraps a Move struct with a single named field, falling back
// to the raw json for plain values.
func moveScalar(v gjson.Result, field string) string {
	if v.IsObject() {
		if inner := v.Get(field); inner.Exists() {
			return inner.String()
		}
		return v.Raw
	}
	return v.String()
}
