// Package repository stores job postings, purchases, screening questions and
// organization memberships.
package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/ncobase/recruit/data"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("record not found")

// Set groups the posting repositories.
type Set struct {
	Postings  PostingRepository
	Purchases PurchaseRepository
	Questions QuestionRepository
	Members   MemberRepository
}

// NewSet creates every posting repository on d.
func NewSet(d *data.Data) *Set {
	return &Set{
		Postings:  NewPostingRepository(d),
		Purchases: NewPurchaseRepository(d),
		Questions: NewQuestionRepository(d),
		Members:   NewMemberRepository(d),
	}
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}

func int64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}

func affected(res sql.Result, err error) (bool, error) {
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
