package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/dantour/internal/model"
)

// PaymentAccountRepo stores payout accounts.  Every optional column holds
// ciphertext produced by the caller; this layer never sees plaintext.
type PaymentAccountRepo struct{ db *sql.DB }

func NewPaymentAccountRepo(db *sql.DB) *PaymentAccountRepo { return &PaymentAccountRepo{db: db} }

const paymentAccountColumns = `id, user_id, payment_method, bank_name, account_type, account_number,
	holder_name, email, blink_wallet_address, fingerprint, created_at, updated_at`

func paymentAccountDest(a *model.PaymentAccount) []any {
	return []any{&a.ID, &a.UserID, &a.PaymentMethod, &a.BankName, &a.AccountType, &a.AccountNumber,
		&a.HolderName, &a.Email, &a.BlinkWalletAddress, &a.Fingerprint, &a.CreatedAt, &a.UpdatedAt}
}

// Create inserts an account.  An already registered account (same
// fingerprint) returns ErrDuplicate.
func (r *PaymentAccountRepo) Create(ctx context.Context, a model.PaymentAccount) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO payment_accounts (id, user_id, payment_method, bank_name,
		account_type, account_number, holder_name, email, blink_wallet_address, fingerprint)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.PaymentMethod, a.BankName, a.AccountType, a.AccountNumber,
		a.HolderName, a.Email, a.BlinkWalletAddress, a.Fingerprint)
	if isDuplicate(err) {
		return ErrDuplicate
	}
	return err
}

func (r *PaymentAccountRepo) GetByID(ctx context.Context, id string) (model.PaymentAccount, error) {
	var a model.PaymentAccount
	err := r.db.QueryRowContext(ctx, "SELECT "+paymentAccountColumns+" FROM payment_accounts WHERE id = ?", id).
		Scan(paymentAccountDest(&a)...)
	if errors.Is(err, sql.ErrNoRows) {
		return a, ErrNotFound
	}
	return a, err
}

func (r *PaymentAccountRepo) ListByUser(ctx context.Context, userID string) ([]model.PaymentAccount, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+paymentAccountColumns+" FROM payment_accounts WHERE user_id = ? ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.PaymentAccount{}
	for rows.Next() {
		var a model.PaymentAccount
		if err := rows.Scan(paymentAccountDest(&a)...); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Update rewrites every stored column of the account.
func (r *PaymentAccountRepo) Update(ctx context.Context, a model.PaymentAccount) error {
	res, err := r.db.ExecContext(ctx, `UPDATE payment_accounts SET payment_method = ?, bank_name = ?,
		account_type = ?, account_number = ?, holder_name = ?, email = ?, blink_wallet_address = ?, fingerprint = ?
		WHERE id = ?`,
		a.PaymentMethod, a.BankName, a.AccountType, a.AccountNumber, a.HolderName, a.Email,
		a.BlinkWalletAddress, a.Fingerprint, a.ID)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	n, err := res.RowsAffected()
	return rowsOrNotFound(n, err)
}

func (r *PaymentAccountRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM payment_accounts WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	return rowsOrNotFound(n, err)
}
