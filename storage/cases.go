package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/pulsodigital/site/content"
)

const caseColumns = `id, created_at, title, slug, description, challenge, solution, results,
	client_name, client_industry, client_size, client_testimonial, client_role,
	duration, image_url, featured, tools, metrics, gallery, status`

func scanCase(sc rowScanner) (content.CaseRow, error) {
	var r content.CaseRow
	var featured int
	var tools, metrics, gallery string
	err := sc.Scan(&r.ID, &r.CreatedAt, &r.Title, &r.Slug, &r.Description, &r.Challenge,
		&r.Solution, &r.Results, &r.ClientName, &r.ClientIndustry, &r.ClientSize,
		&r.ClientTestimonial, &r.ClientRole, &r.Duration, &r.ImageURL, &featured,
		&tools, &metrics, &gallery, &r.Status)
	if err != nil {
		return content.CaseRow{}, err
	}
	r.Featured = featured == 1
	if err := json.Unmarshal([]byte(tools), &r.Tools); err != nil {
		r.Tools = []string{}
	}
	if err := json.Unmarshal([]byte(metrics), &r.Metrics); err != nil {
		r.Metrics = []content.Metric{}
	}
	if gallery != "" && gallery != "[]" {
		if err := json.Unmarshal([]byte(gallery), &r.Gallery); err != nil {
			r.Gallery = nil
		}
	}
	return r, nil
}

// caseLists encodes the owned sub-collections as JSON column values,
// preserving their order.
func caseLists(r content.CaseRow) (tools, metrics, gallery string, err error) {
	if r.Tools == nil {
		r.Tools = []string{}
	}
	if r.Metrics == nil {
		r.Metrics = []content.Metric{}
	}
	t, err := json.Marshal(r.Tools)
	if err != nil {
		return "", "", "", err
	}
	m, err := json.Marshal(r.Metrics)
	if err != nil {
		return "", "", "", err
	}
	g := []byte("[]")
	if r.Gallery != nil {
		if g, err = json.Marshal(r.Gallery); err != nil {
			return "", "", "", err
		}
	}
	return string(t), string(m), string(g), nil
}

func (s *Store) selectCases(ctx context.Context) ([]json.RawMessage, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+caseColumns+` FROM cases ORDER BY created_at DESC`)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	var out []json.RawMessage
	for rows.Next() {
		r, err := scanCase(rows)
		if err != nil {
			return nil, storeErr(err)
		}
		raw, err := json.Marshal(r)
		if err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(err)
	}
	return out, nil
}

func (s *Store) getCase(ctx context.Context, id string) (content.CaseRow, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+caseColumns+` FROM cases WHERE id = ?`, id)
	r, err := scanCase(row)
	if errors.Is(err, sql.ErrNoRows) {
		return content.CaseRow{}, &content.StoreError{Code: content.CodeNotFound, Message: "case not found"}
	}
	if err != nil {
		return content.CaseRow{}, storeErr(err)
	}
	return r, nil
}

func (s *Store) insertCase(ctx context.Context, record json.RawMessage) (json.RawMessage, error) {
	var r content.CaseRow
	if err := json.Unmarshal(record, &r); err != nil {
		return nil, &content.StoreError{Code: "400", Message: err.Error()}
	}
	return s.insertCaseRow(ctx, r)
}

func (s *Store) insertCaseRow(ctx context.Context, r content.CaseRow) (json.RawMessage, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	if r.Status == "" {
		r.Status = content.StatusDraft
	}
	tools, metrics, gallery, err := caseLists(r)
	if err != nil {
		return nil, err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO cases (`+caseColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.CreatedAt, r.Title, r.Slug, r.Description, r.Challenge, r.Solution, r.Results,
		r.ClientName, r.ClientIndustry, r.ClientSize, r.ClientTestimonial, r.ClientRole,
		r.Duration, r.ImageURL, boolInt(r.Featured), tools, metrics, gallery, r.Status)
	if err != nil {
		return nil, storeErr(err)
	}
	raw, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	s.notify.publish(content.Event{Type: content.EventInsert, Table: content.TableCases, Record: raw})
	return raw, nil
}

func (s *Store) updateCase(ctx context.Context, id string, record json.RawMessage) (json.RawMessage, error) {
	var r content.CaseRow
	if err := json.Unmarshal(record, &r); err != nil {
		return nil, &content.StoreError{Code: "400", Message: err.Error()}
	}
	if r.Status == "" {
		r.Status = content.StatusDraft
	}
	tools, metrics, gallery, err := caseLists(r)
	if err != nil {
		return nil, err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE cases SET title = ?, slug = ?, description = ?, challenge = ?, solution = ?,
			results = ?, client_name = ?, client_industry = ?, client_size = ?,
			client_testimonial = ?, client_role = ?, duration = ?, image_url = ?,
			featured = ?, tools = ?, metrics = ?, gallery = ?, status = ? WHERE id = ?`,
		r.Title, r.Slug, r.Description, r.Challenge, r.Solution,
		r.Results, r.ClientName, r.ClientIndustry, r.ClientSize,
		r.ClientTestimonial, r.ClientRole, r.Duration, r.ImageURL,
		boolInt(r.Featured), tools, metrics, gallery, r.Status, id)
	if err != nil {
		return nil, storeErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, &content.StoreError{Code: content.CodeNotFound, Message: "case not found"}
	}
	stored, err := s.getCase(ctx, id)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(stored)
	if err != nil {
		return nil, err
	}
	s.notify.publish(content.Event{Type: content.EventUpdate, Table: content.TableCases, Record: raw})
	return raw, nil
}

func (s *Store) upsertCase(ctx context.Context, record json.RawMessage) error {
	var r content.CaseRow
	if err := json.Unmarshal(record, &r); err != nil {
		return &content.StoreError{Code: "400", Message: err.Error()}
	}
	if r.ID == "" {
		_, err := s.insertCaseRow(ctx, r)
		return err
	}
	if _, err := s.getCase(ctx, r.ID); err != nil {
		var se *content.StoreError
		if errors.As(err, &se) && se.Code == content.CodeNotFound {
			_, err = s.insertCaseRow(ctx, r)
		}
		return err
	}
	raw, err := json.Marshal(r)
	if err != nil {
		return err
	}
	_, err = s.updateCase(ctx, r.ID, raw)
	return err
}
