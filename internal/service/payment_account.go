package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/iliyamo/dantour/internal/model"
)

type PaymentAccountStore interface {
	Create(ctx context.Context, a model.PaymentAccount) error
	GetByID(ctx context.Context, id string) (model.PaymentAccount, error)
	ListByUser(ctx context.Context, userID string) ([]model.PaymentAccount, error)
	Update(ctx context.Context, a model.PaymentAccount) error
	Delete(ctx context.Context, id string) error
}

// FieldSealer encrypts single column values.  *crypto.FieldCipher
// implements it.
type FieldSealer interface {
	EncryptPtr(v *string) (*string, error)
	DecryptPtr(v *string) (*string, error)
	NeedsRotation(stored string) bool
	Fingerprint(parts ...string) string
}

// PaymentAccountInput is a create or update request.  On update nil
// fields keep their stored value.
type PaymentAccountInput struct {
	PaymentMethod      *string `json:"payment_method"`
	BankName           *string `json:"bank_name"`
	AccountType        *string `json:"account_type"`
	AccountNumber      *string `json:"account_number"`
	HolderName         *string `json:"holder_name"`
	Email              *string `json:"email"`
	BlinkWalletAddress *string `json:"blink_wallet_address"`
}

// PaymentAccountService stores payout accounts encrypted at rest.
type PaymentAccountService struct {
	store  PaymentAccountStore
	sealer FieldSealer
}

func NewPaymentAccountService(store PaymentAccountStore, sealer FieldSealer) *PaymentAccountService {
	if store == nil || sealer == nil {
		panic("nil dependency passed to NewPaymentAccountService")
	}
	return &PaymentAccountService{store: store, sealer: sealer}
}

func trimPtr(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

// normalize validates a plaintext account and clears the fields that do
// not belong to its method.
func normalize(a *model.PaymentAccount) error {
	a.PaymentMethod = strings.ToLower(strings.TrimSpace(a.PaymentMethod))
	a.BankName, a.AccountType, a.AccountNumber = trimPtr(a.BankName), trimPtr(a.AccountType), trimPtr(a.AccountNumber)
	a.HolderName, a.Email, a.BlinkWalletAddress = trimPtr(a.HolderName), trimPtr(a.Email), trimPtr(a.BlinkWalletAddress)
	switch a.PaymentMethod {
	case "":
		return invalid("payment_method", "is required")
	case model.PaymentMethodBlink:
		if a.BlinkWalletAddress == nil {
			return invalid("blink_wallet_address", "is required for blink accounts")
		}
		a.BankName, a.AccountType, a.AccountNumber, a.HolderName = nil, nil, nil, nil
	default:
		for _, f := range []struct {
			name string
			v    *string
		}{{"bank_name", a.BankName}, {"account_type", a.AccountType}, {"account_number", a.AccountNumber},
			{"holder_name", a.HolderName}, {"email", a.Email}} {
			if f.v == nil {
				return invalid(f.name, "is required for bank accounts")
			}
		}
		a.BlinkWalletAddress = nil
	}
	return nil
}

func (s *PaymentAccountService) fingerprint(a model.PaymentAccount) string {
	if a.PaymentMethod == model.PaymentMethodBlink {
		return s.sealer.Fingerprint(model.PaymentMethodBlink, a.UserID, strings.ToLower(deref(a.BlinkWalletAddress)))
	}
	return s.sealer.Fingerprint(model.PaymentMethodBank, deref(a.AccountNumber))
}

// seal returns a copy of a with every optional field encrypted.
func (s *PaymentAccountService) seal(a model.PaymentAccount) (model.PaymentAccount, error) {
	out := a
	for _, f := range []struct{ dst, src **string }{
		{&out.BankName, &a.BankName}, {&out.AccountType, &a.AccountType}, {&out.AccountNumber, &a.AccountNumber},
		{&out.HolderName, &a.HolderName}, {&out.Email, &a.Email}, {&out.BlinkWalletAddress, &a.BlinkWalletAddress},
	} {
		v, err := s.sealer.EncryptPtr(*f.src)
		if err != nil {
			return out, err
		}
		*f.dst = v
	}
	return out, nil
}

// open decrypts every optional field and reports whether any of them was
// sealed with a retired key.
func (s *PaymentAccountService) open(a model.PaymentAccount) (model.PaymentAccount, bool, error) {
	out := a
	stale := false
	for _, f := range []struct{ dst, src **string }{
		{&out.BankName, &a.BankName}, {&out.AccountType, &a.AccountType}, {&out.AccountNumber, &a.AccountNumber},
		{&out.HolderName, &a.HolderName}, {&out.Email, &a.Email}, {&out.BlinkWalletAddress, &a.BlinkWalletAddress},
	} {
		if *f.src != nil && s.sealer.NeedsRotation(**f.src) {
			stale = true
		}
		v, err := s.sealer.DecryptPtr(*f.src)
		if err != nil {
			return out, false, err
		}
		*f.dst = v
	}
	return out, stale, nil
}

func (s *PaymentAccountService) Create(ctx context.Context, userID string, in PaymentAccountInput) (model.PaymentAccount, error) {
	a := model.PaymentAccount{
		ID:                 uuid.NewString(),
		UserID:             userID,
		PaymentMethod:      deref(in.PaymentMethod),
		BankName:           in.BankName,
		AccountType:        in.AccountType,
		AccountNumber:      in.AccountNumber,
		HolderName:         in.HolderName,
		Email:              in.Email,
		BlinkWalletAddress: in.BlinkWalletAddress,
	}
	if err := normalize(&a); err != nil {
		return model.PaymentAccount{}, err
	}
	a.Fingerprint = s.fingerprint(a)
	sealed, err := s.seal(a)
	if err != nil {
		return model.PaymentAccount{}, err
	}
	if err := s.store.Create(ctx, sealed); err != nil {
		return model.PaymentAccount{}, fromRepo(err, "payment account")
	}
	return a, nil
}

// List returns the decrypted accounts of userID.  Accounts sealed with a
// retired key are re-encrypted with the active one on the way.
func (s *PaymentAccountService) List(ctx context.Context, userID string) ([]model.PaymentAccount, error) {
	rows, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]model.PaymentAccount, 0, len(rows))
	for _, row := range rows {
		a, stale, err := s.open(row)
		if err != nil {
			return nil, err
		}
		if stale {
			s.reseal(ctx, a)
		}
		out = append(out, a)
	}
	return out, nil
}

func (s *PaymentAccountService) reseal(ctx context.Context, a model.PaymentAccount) {
	sealed, err := s.seal(a)
	if err == nil {
		err = s.store.Update(ctx, sealed)
	}
	if err != nil {
		zlog.Ctx(ctx).Warn().Err(err).Str("account_id", a.ID).Msg("payment account key rotation failed")
	}
}

// owned loads and decrypts an account of callerID.
func (s *PaymentAccountService) owned(ctx context.Context, id, callerID string) (model.PaymentAccount, error) {
	row, err := s.store.GetByID(ctx, id)
	if err != nil {
		return model.PaymentAccount{}, fromRepo(err, "payment account")
	}
	if row.UserID != callerID {
		return model.PaymentAccount{}, &ForbiddenError{Message: "not your payment account"}
	}
	a, _, err := s.open(row)
	return a, err
}

func (s *PaymentAccountService) Update(ctx context.Context, id, callerID string, in PaymentAccountInput) (model.PaymentAccount, error) {
	a, err := s.owned(ctx, id, callerID)
	if err != nil {
		return model.PaymentAccount{}, err
	}
	if in.PaymentMethod != nil {
		a.PaymentMethod = *in.PaymentMethod
	}
	for _, f := range []struct{ dst, src **string }{
		{&a.BankName, &in.BankName}, {&a.AccountType, &in.AccountType}, {&a.AccountNumber, &in.AccountNumber},
		{&a.HolderName, &in.HolderName}, {&a.Email, &in.Email}, {&a.BlinkWalletAddress, &in.BlinkWalletAddress},
	} {
		if *f.src != nil {
			*f.dst = *f.src
		}
	}
	if err := normalize(&a); err != nil {
		return model.PaymentAccount{}, err
	}
	a.Fingerprint = s.fingerprint(a)
	sealed, err := s.seal(a)
	if err != nil {
		return model.PaymentAccount{}, err
	}
	if err := s.store.Update(ctx, sealed); err != nil {
		return model.PaymentAccount{}, fromRepo(err, "payment account")
	}
	return a, nil
}

func (s *PaymentAccountService) Delete(ctx context.Context, id, callerID string) error {
	if _, err := s.owned(ctx, id, callerID); err != nil {
		return err
	}
	return fromRepo(s.store.Delete(ctx, id), "payment account")
}

// LightningAddress returns the Blink address of the first Blink account
// of userID.
func (s *PaymentAccountService) LightningAddress(ctx context.Context, userID string) (string, error) {
	accounts, err := s.List(ctx, userID)
	if err != nil {
		return "", err
	}
	for _, a := range accounts {
		if a.PaymentMethod == model.PaymentMethodBlink && a.BlinkWalletAddress != nil {
			return *a.BlinkWalletAddress, nil
		}
	}
	return "", notFound("lightning address")
}
