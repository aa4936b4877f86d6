// Package connections derives a participant's incoming and outgoing
// trustline rows from the rendered graph, and tracks cycle and connection
// highlight state.
package connections

import (
	"sort"

	"trustmap/internal/graph"
	"trustmap/internal/snapshot"
)

// DefaultPageSize is the number of rows per connections page.
const DefaultPageSize = 25

// Row is one trustline seen from the selected participant.
type Row struct {
	CounterpartyPID  string `json:"counterparty_pid"`
	CounterpartyName string `json:"counterparty_name"`
	Equivalent       string `json:"equivalent"`
	Status           string `json:"status"`
	Limit            string `json:"limit"`
	Used             string `json:"used"`
	Available        string `json:"available"`
	Bottleneck       bool   `json:"bottleneck"`
	// EdgeKey identifies the underlying graph edge.
	EdgeKey string `json:"edge_key"`
}

// Connections partitions rows: Incoming edges point at the participant,
// Outgoing edges leave it.
type Connections struct {
	PID      string `json:"pid"`
	Incoming []Row  `json:"incoming"`
	Outgoing []Row  `json:"outgoing"`
}

// Rows collects pid's edges from g. Counterparty names come from idx and
// are empty for unknown PIDs.
func Rows(idx *snapshot.Index, g *graph.Graph, pid string) Connections {
	c := Connections{PID: pid, Incoming: []Row{}, Outgoing: []Row{}}
	for _, e := range g.Edges {
		switch pid {
		case e.To:
			c.Incoming = append(c.Incoming, rowFor(idx, e, e.From))
		case e.From:
			c.Outgoing = append(c.Outgoing, rowFor(idx, e, e.To))
		}
	}
	SortRows(c.Incoming)
	SortRows(c.Outgoing)
	return c
}

func rowFor(idx *snapshot.Index, e graph.Edge, counterparty string) Row {
	return Row{
		CounterpartyPID:  counterparty,
		CounterpartyName: idx.DisplayName(counterparty),
		Equivalent:       e.Equivalent,
		Status:           string(e.Status),
		Limit:            e.Limit,
		Used:             e.Used,
		Available:        e.Available,
		Bottleneck:       e.Bottleneck,
		EdgeKey:          e.Key(),
	}
}

// SortRows orders by equivalent, bottlenecks first, then counterparty PID.
func SortRows(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Equivalent != b.Equivalent {
			return a.Equivalent < b.Equivalent
		}
		if a.Bottleneck != b.Bottleneck {
			return a.Bottleneck
		}
		return a.CounterpartyPID < b.CounterpartyPID
	})
}

// Page is one slice of rows.
type Page struct {
	Rows       []Row `json:"rows"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalRows  int   `json:"total_rows"`
	TotalPages int   `json:"total_pages"`
}

// Paginate returns the 1-based page of rows. A page whose first row lies
// past the end of the list, or any page below 1, falls back to page 1.
func Paginate(rows []Row, page, pageSize int) Page {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	total := len(rows)
	pages := (total + pageSize - 1) / pageSize
	if pages == 0 {
		pages = 1
	}
	if page < 1 || (page-1)*pageSize >= total {
		page = 1
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if end > total {
		end = total
	}
	out := make([]Row, end-start)
	copy(out, rows[start:end])
	return Page{Rows: out, Page: page, PageSize: pageSize, TotalRows: total, TotalPages: pages}
}
