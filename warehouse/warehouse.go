package warehouse

import (
	"context"
	"encoding/json"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

type Warehouse interface {
	Query(ctx context.Context, query string) QueryResult
	Ping(ctx context.Context) error
	Stats() Stats
	Close() error
}

type Row = *orderedmap.OrderedMap[string, any]

type Field struct {
	Name       string `json:"name"`
	DataTypeID uint32 `json:"dataTypeID"`
}

type Failure struct {
	Error string `json:"error"`
	Query string `json:"query"`
}

// QueryResult is either a row set or a Failure, never both.
type QueryResult struct {
	Rows     []Row
	RowCount int
	Fields   []Field
	Failure  *Failure
}

type Stats struct {
	MaxOpenConnections int `json:"maxOpenConnections"`
	OpenConnections    int `json:"openConnections"`
	InUse              int `json:"inUse"`
	Idle               int `json:"idle"`
}

type rowSet struct {
	Rows     []Row   `json:"rows"`
	RowCount int     `json:"rowCount"`
	Fields   []Field `json:"fields"`
}

func Failed(query string, reason string) QueryResult {
	return QueryResult{
		Failure: &Failure{Error: reason, Query: query},
	}
}

func (r QueryResult) Failed() bool {
	return r.Failure != nil
}

func (r QueryResult) MarshalJSON() ([]byte, error) {
	if r.Failure != nil {
		return json.Marshal(r.Failure)
	}

	set := rowSet{
		Rows:     r.Rows,
		RowCount: r.RowCount,
		Fields:   r.Fields,
	}
	if set.Rows == nil {
		set.Rows = []Row{}
	}
	if set.Fields == nil {
		set.Fields = []Field{}
	}

	return json.Marshal(set)
}

func (r *QueryResult) UnmarshalJSON(data []byte) error {
	var probe struct {
		Error *string `json:"error"`
		Query string  `json:"query"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}

	if probe.Error != nil {
		*r = Failed(probe.Query, *probe.Error)
		return nil
	}

	var set rowSet
	if err := json.Unmarshal(data, &set); err != nil {
		return err
	}

	*r = QueryResult{
		Rows:     set.Rows,
		RowCount: set.RowCount,
		Fields:   set.Fields,
	}

	return nil
}
