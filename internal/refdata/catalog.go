package refdata

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Catalog is the read-only, indexed cache of every reference table. It is
// built once and shared without locking.
type Catalog struct {
	tables  map[TableName]*indexedTable
	missing []TableName
}

type indexedTable struct {
	spec   TableSpec
	rows   []Row
	tokens map[string][]int
}

// Load reads every registered table from store. Optional tables the store does
// not carry are recorded in Missing; any other absence fails the load.
func Load(ctx context.Context, store Store) (*Catalog, error) {
	data := make(map[TableName][]Row, len(specs))
	var missing []TableName
	for _, spec := range specs {
		rows, err := store.Rows(ctx, spec.Name)
		if errors.Is(err, ErrTableNotFound) && spec.Optional {
			missing = append(missing, spec.Name)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", spec.Name, err)
		}
		data[spec.Name] = rows
	}
	c := NewCatalog(data)
	c.missing = missing
	return c, nil
}

// NewCatalog indexes the supplied rows. Tables not present are empty. Rows are
// copied so later mutation of the input does not leak into the catalog.
func NewCatalog(data map[TableName][]Row) *Catalog {
	c := &Catalog{tables: make(map[TableName]*indexedTable, len(specs))}
	for _, spec := range specs {
		src := data[spec.Name]
		t := &indexedTable{spec: spec, rows: make([]Row, len(src)), tokens: make(map[string][]int)}
		for i, row := range src {
			t.rows[i] = row.clone()
			for _, tok := range tokens(row.Get(spec.KeyColumn)) {
				t.tokens[tok] = append(t.tokens[tok], i)
			}
		}
		c.tables[spec.Name] = t
	}
	return c
}

// tokens splits a key cell into upper-cased underscore-separated tokens.
func tokens(cell string) []string {
	if cell == "" {
		return nil
	}
	parts := strings.Split(strings.ToUpper(cell), "_")
	out := parts[:0]
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// Missing lists optional tables that were absent at load time.
func (c *Catalog) Missing() []TableName {
	return append([]TableName(nil), c.missing...)
}

// Len reports the number of rows held for table.
func (c *Catalog) Len(table TableName) int {
	t, ok := c.tables[table]
	if !ok {
		return 0
	}
	return len(t.rows)
}

// Rows implements Store so a catalog can seed another backend. Returned rows
// are copies.
func (c *Catalog) Rows(_ context.Context, table TableName) ([]Row, error) {
	t, ok := c.tables[table]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, table)
	}
	out := make([]Row, len(t.rows))
	for i, r := range t.rows {
		out[i] = r.clone()
	}
	return out, nil
}

// Lookup returns the rows whose key cell contains nuclide as a whole
// underscore-separated token, compared case-insensitively. "I-131" matches
// "I-131_CH3I" but not "I-1310". Returned rows are shared and must not be
// modified.
func (c *Catalog) Lookup(table TableName, nuclide string) []Row {
	t, ok := c.tables[table]
	if !ok {
		return nil
	}
	key := strings.ToUpper(strings.TrimSpace(nuclide))
	if key == "" {
		return nil
	}
	idx := t.tokens[key]
	if len(idx) == 0 {
		return nil
	}
	out := make([]Row, len(idx))
	for i, n := range idx {
		out[i] = t.rows[n]
	}
	return out
}

// Exact returns the rows whose column equals value after trimming.
func (c *Catalog) Exact(table TableName, column, value string) []Row {
	t, ok := c.tables[table]
	if !ok {
		return nil
	}
	value = strings.TrimSpace(value)
	var out []Row
	for _, r := range t.rows {
		if r.Get(column) == value {
			out = append(out, r)
		}
	}
	return out
}

// First returns the first row whose key column equals value exactly.
func (c *Catalog) First(table TableName, value string) (Row, bool) {
	t, ok := c.tables[table]
	if !ok {
		return nil, false
	}
	rows := c.Exact(table, t.spec.KeyColumn, value)
	if len(rows) == 0 {
		return nil, false
	}
	return rows[0], true
}

// Keys returns the distinct key cells of table in sorted order.
func (c *Catalog) Keys(table TableName) []string {
	t, ok := c.tables[table]
	if !ok {
		return nil
	}
	seen := make(map[string]struct{}, len(t.rows))
	var out []string
	for _, r := range t.rows {
		k := r.Get(t.spec.KeyColumn)
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
