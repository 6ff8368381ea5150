package collection

// Record is one decoded node of a paged on-chain table.
type Record struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// PageInfo mirrors the remote connection's page metadata. A nil EndCursor
// means the source issued no continuation token.
type PageInfo struct {
	HasNextPage bool
	EndCursor   *string
}

type Page struct {
	Info    PageInfo
	Records []Record
}

// Query addresses one paged collection.
type Query struct {
	ObjectID string
	PageSize int
}
