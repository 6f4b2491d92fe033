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

const postColumns = `id, created_at, title, excerpt, content, category, author, date, read_time, image_url, featured, status`

// rowScanner lets scan helpers work over both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(sc rowScanner) (content.PostRow, error) {
	var r content.PostRow
	var featured int
	err := sc.Scan(&r.ID, &r.CreatedAt, &r.Title, &r.Excerpt, &r.Content, &r.Category,
		&r.Author, &r.Date, &r.ReadTime, &r.ImageURL, &featured, &r.Status)
	if err != nil {
		return content.PostRow{}, err
	}
	r.Featured = featured == 1
	return r, nil
}

func (s *Store) selectPosts(ctx context.Context) ([]json.RawMessage, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+postColumns+` FROM posts ORDER BY date DESC, created_at DESC`)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	var out []json.RawMessage
	for rows.Next() {
		r, err := scanPost(rows)
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

func (s *Store) getPost(ctx context.Context, id string) (content.PostRow, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = ?`, id)
	r, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return content.PostRow{}, &content.StoreError{Code: content.CodeNotFound, Message: "post not found"}
	}
	if err != nil {
		return content.PostRow{}, storeErr(err)
	}
	return r, nil
}

func (s *Store) insertPost(ctx context.Context, record json.RawMessage) (json.RawMessage, error) {
	var r content.PostRow
	if err := json.Unmarshal(record, &r); err != nil {
		return nil, &content.StoreError{Code: "400", Message: err.Error()}
	}
	return s.insertPostRow(ctx, r)
}

func (s *Store) insertPostRow(ctx context.Context, r content.PostRow) (json.RawMessage, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	if r.Status == "" {
		r.Status = content.StatusDraft
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO posts (`+postColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.CreatedAt, r.Title, r.Excerpt, r.Content, r.Category,
		r.Author, r.Date, r.ReadTime, r.ImageURL, boolInt(r.Featured), r.Status)
	if err != nil {
		return nil, storeErr(err)
	}
	raw, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	s.notify.publish(content.Event{Type: content.EventInsert, Table: content.TablePosts, Record: raw})
	return raw, nil
}

func (s *Store) updatePost(ctx context.Context, id string, record json.RawMessage) (json.RawMessage, error) {
	var r content.PostRow
	if err := json.Unmarshal(record, &r); err != nil {
		return nil, &content.StoreError{Code: "400", Message: err.Error()}
	}
	if r.Status == "" {
		r.Status = content.StatusDraft
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE posts SET title = ?, excerpt = ?, content = ?, category = ?, author = ?,
			date = ?, read_time = ?, image_url = ?, featured = ?, status = ? WHERE id = ?`,
		r.Title, r.Excerpt, r.Content, r.Category, r.Author,
		r.Date, r.ReadTime, r.ImageURL, boolInt(r.Featured), r.Status, id)
	if err != nil {
		return nil, storeErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, &content.StoreError{Code: content.CodeNotFound, Message: "post not found"}
	}
	stored, err := s.getPost(ctx, id)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(stored)
	if err != nil {
		return nil, err
	}
	s.notify.publish(content.Event{Type: content.EventUpdate, Table: content.TablePosts, Record: raw})
	return raw, nil
}

func (s *Store) upsertPost(ctx context.Context, record json.RawMessage) error {
	var r content.PostRow
	if err := json.Unmarshal(record, &r); err != nil {
		return &content.StoreError{Code: "400", Message: err.Error()}
	}
	if r.ID == "" {
		_, err := s.insertPostRow(ctx, r)
		return err
	}
	if _, err := s.getPost(ctx, r.ID); err != nil {
		var se *content.StoreError
		if errors.As(err, &se) && se.Code == content.CodeNotFound {
			_, err = s.insertPostRow(ctx, r)
		}
		return err
	}
	raw, err := json.Marshal(r)
	if err != nil {
		return err
	}
	_, err = s.updatePost(ctx, r.ID, raw)
	return err
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
