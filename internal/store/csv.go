package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/erazemk/foodrescue/internal/db"
	"github.com/erazemk/foodrescue/internal/model"
)

// ExportFilename is the suggested name for the exported table.
const ExportFilename = "surplus.csv"

// Export writes the persisted table as CSV, one row per post in insertion
// order, values exactly as stored. The header is db.PostColumns.
func (s *PostStore) Export(ctx context.Context, w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+strings.Join(db.PostColumns, ", ")+` FROM posts ORDER BY seq`,
	)
	if err != nil {
		return fmt.Errorf("exporting posts: %w", err)
	}
	defer rows.Close()

	cw := csv.NewWriter(w)
	if err := cw.Write(db.PostColumns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for rows.Next() {
		raw, err := scanRaw(rows)
		if err != nil {
			return fmt.Errorf("scanning post: %w", err)
		}
		if err := cw.Write(raw); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("exporting posts: %w", err)
	}
	cw.Flush()
	return cw.Error()
}

// ImportResult counts what Import did.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// Import appends posts from a CSV table with a header row, matching columns by
// name. Unknown columns are ignored and missing ones read as empty. Rows with
// no id, or with an id already stored or seen earlier in the file, are skipped.
// Values go through the same lenient parsing as a load.
func (s *PostStore) Import(ctx context.Context, r io.Reader) (ImportResult, error) {
	var res ImportResult

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return res, nil
	}
	if err != nil {
		return res, fmt.Errorf("reading header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	if _, ok := index["id"]; !ok {
		return res, fmt.Errorf("import: header has no id column")
	}

	var incoming []model.Post
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, fmt.Errorf("reading row: %w", err)
		}

		cols := make([]string, len(db.PostColumns))
		for i, name := range db.PostColumns {
			if j, ok := index[name]; ok && j < len(rec) {
				cols[i] = rec[j]
			}
		}
		incoming = append(incoming, decodePost(cols, s.loc))
	}

	err = s.Update(ctx, func(posts []model.Post) ([]model.Post, error) {
		seen := make(map[string]bool, len(posts))
		for _, p := range posts {
			seen[p.ID] = true
		}
		for _, p := range incoming {
			if p.ID == "" || seen[p.ID] {
				res.Skipped++
				continue
			}
			seen[p.ID] = true
			posts = append(posts, p)
			res.Imported++
		}
		return posts, nil
	})
	if err != nil {
		return ImportResult{}, err
	}
	return res, nil
}
