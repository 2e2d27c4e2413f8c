package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

const reserveSQL = "UPDATE tour_dates SET people_booked = people_booked + ? WHERE id = ? AND tour_id = ? AND people_booked + ? <= max_people"

func TestTourRepo_ReserveTx(t *testing.T) {
	boom := errors.New("lock wait timeout")
	tests := []struct {
		name     string
		affected int64
		owner    *sqlmock.Rows // nil: the owner lookup is not expected
		ownerErr error
		wantErr  error
	}{
		{name: "reserved", affected: 1},
		{name: "date missing", owner: sqlmock.NewRows([]string{"tour_id"}), wantErr: ErrNotFound},
		{name: "date of another tour", owner: sqlmock.NewRows([]string{"tour_id"}).AddRow("tour-2"), wantErr: ErrNotFound},
		{name: "date full", owner: sqlmock.NewRows([]string{"tour_id"}).AddRow("tour-1"), wantErr: ErrCapacityExceeded},
		{name: "lookup fails", ownerErr: boom, wantErr: boom},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			mock.ExpectBegin()
			mock.ExpectExec(regexp.QuoteMeta(reserveSQL)).
				WithArgs(5, "date-1", "tour-1", 5).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))
			lookup := regexp.QuoteMeta("SELECT tour_id FROM tour_dates WHERE id = ?")
			switch {
			case tt.owner != nil:
				mock.ExpectQuery(lookup).WithArgs("date-1").WillReturnRows(tt.owner)
			case tt.ownerErr != nil:
				mock.ExpectQuery(lookup).WithArgs("date-1").WillReturnError(tt.ownerErr)
			}
			mock.ExpectRollback()

			tx, err := db.Begin()
			if err != nil {
				t.Fatal(err)
			}
			err = NewTourRepo(db).ReserveTx(context.Background(), tx, "date-1", "tour-1", 5)
			_ = tx.Rollback()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ReserveTx() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestTourRepo_SetMaxPeopleTx(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		wantErr  error
	}{
		{name: "raised", affected: 1},
		{name: "below people booked", affected: 0, wantErr: ErrCapacityExceeded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			mock.ExpectBegin()
			mock.ExpectExec(regexp.QuoteMeta("UPDATE tour_dates SET max_people = ? WHERE id = ? AND people_booked <= ?")).
				WithArgs(12, "date-1", 12).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))
			mock.ExpectRollback()

			tx, err := db.Begin()
			if err != nil {
				t.Fatal(err)
			}
			err = NewTourRepo(db).SetMaxPeopleTx(context.Background(), tx, "date-1", 12)
			_ = tx.Rollback()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("SetMaxPeopleTx() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestTxManager_RunInTx(t *testing.T) {
	failed := errors.New("insert failed")
	tests := []struct {
		name    string
		fnErr   error
		wantErr error
	}{
		{name: "commit", fnErr: nil},
		{name: "rollback", fnErr: failed, wantErr: failed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			mock.ExpectBegin()
			mock.ExpectExec("INSERT INTO products").WillReturnResult(sqlmock.NewResult(0, 1))
			if tt.fnErr == nil {
				mock.ExpectCommit()
			} else {
				mock.ExpectRollback()
			}

			err := NewTxManager(db).RunInTx(context.Background(), func(tx *sql.Tx) error {
				if _, err := tx.Exec("INSERT INTO products (id) VALUES ('p-1')"); err != nil {
					return err
				}
				return tt.fnErr
			})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("RunInTx() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
