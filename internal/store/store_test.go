package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestRecordMatchUpserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := OpenWithDB(db)
	m := Match{
		QueryID:        "q1",
		EventID:        42,
		EventTimestamp: time.Unix(1000, 0).UTC(),
		MatchedAt:      time.Unix(2000, 0).UTC(),
	}

	mock.ExpectExec("INSERT INTO matches").
		WithArgs(m.QueryID, m.EventID, m.EventTimestamp, m.MatchedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := s.RecordMatch(context.Background(), m); err != nil {
		t.Fatalf("RecordMatch: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRecordMatchPropagatesExecError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := OpenWithDB(db)
	mock.ExpectExec("INSERT INTO matches").WillReturnError(context.DeadlineExceeded)

	m := Match{QueryID: "q1", EventID: 1}
	if err := s.RecordMatch(context.Background(), m); err == nil {
		t.Fatal("expected an error from a failing exec")
	}
}

func TestCountMatches(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := OpenWithDB(db)
	rows := sqlmock.NewRows([]string{"count"}).AddRow(3)
	mock.ExpectQuery("SELECT count").WithArgs("q1").WillReturnRows(rows)

	n, err := s.CountMatches(context.Background(), "q1")
	if err != nil {
		t.Fatalf("CountMatches: %v", err)
	}
	if n != 3 {
		t.Fatalf("CountMatches = %d, want 3", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
