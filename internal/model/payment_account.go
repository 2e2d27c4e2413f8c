package model

import "time"

// Payout methods of a payment account.
const (
	PaymentMethodBank  = "bank"
	PaymentMethodBlink = "blink"
)

// PaymentAccount is where a host receives payouts.  The optional string
// fields are plaintext here; the repository only ever sees ciphertext.
// Fingerprint is a keyed hash of the identifying value and is unique.
type PaymentAccount struct {
	ID                 string    `json:"id"`
	UserID             string    `json:"user_id"`
	PaymentMethod      string    `json:"payment_method"`
	BankName           *string   `json:"bank_name,omitempty"`
	AccountType        *string   `json:"account_type,omitempty"`
	AccountNumber      *string   `json:"account_number,omitempty"`
	HolderName         *string   `json:"holder_name,omitempty"`
	Email              *string   `json:"email,omitempty"`
	BlinkWalletAddress *string   `json:"blink_wallet_address,omitempty"`
	Fingerprint        string    `json:"-"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
