package mockapi

import (
	"strings"
	"sync"

	"github.com/google/uuid"
	sperrors "github.com/jrsteele09/sportify-auth-client/internal/errors"
	"github.com/jrsteele09/sportify-auth-client/users"
)

// Account is a registered user of the mock API.
type Account struct {
	ID           string
	FullName     string
	Email        string
	Role         users.Role
	PasswordHash string
	ProfileImage string

	// Players must confirm their email before they can sign in
	Verified bool
	// Managers must be approved by an administrator before they can sign in
	Approved  bool
	TwoFactor bool

	CompanyName    string
	NationalID     string
	PhoneNumber    string
	AttachmentName string
}

// AccountStore keeps accounts in memory, indexed by id and email.
type AccountStore struct {
	accounts map[string]*Account
	emailIds map[string]string // email to account id
	lock     sync.RWMutex
}

func NewAccountStore() *AccountStore {
	return &AccountStore{
		accounts: make(map[string]*Account),
		emailIds: make(map[string]string),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create adds a new account. Emails are unique, ignoring case.
func (s *AccountStore) Create(account *Account) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	email := normalizeEmail(account.Email)
	if _, ok := s.emailIds[email]; ok {
		return sperrors.Wrapf(sperrors.ErrValidation, "[AccountStore.Create] %s already registered", email)
	}
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	account.Email = email
	s.accounts[account.ID] = account
	s.emailIds[email] = account.ID
	return nil
}

// GetByEmail returns a copy of the account.
func (s *AccountStore) GetByEmail(email string) (Account, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	id, ok := s.emailIds[normalizeEmail(email)]
	if !ok {
		return Account{}, sperrors.ErrNotFound
	}
	return *s.accounts[id], nil
}

func (s *AccountStore) GetByID(id string) (Account, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	account, ok := s.accounts[id]
	if !ok {
		return Account{}, sperrors.ErrNotFound
	}
	return *account, nil
}

// Update applies fn to the stored account.
func (s *AccountStore) Update(email string, fn func(*Account)) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	id, ok := s.emailIds[normalizeEmail(email)]
	if !ok {
		return sperrors.ErrNotFound
	}
	fn(s.accounts[id])
	return nil
}

func (s *AccountStore) SetVerified(email string) error {
	return s.Update(email, func(a *Account) { a.Verified = true })
}

func (s *AccountStore) SetApproved(email string) error {
	return s.Update(email, func(a *Account) { a.Approved = true })
}

func (s *AccountStore) SetPassword(email, password string) error {
	hash, err := users.HashPassword(password)
	if err != nil {
		return sperrors.Wrapf(err, "[AccountStore.SetPassword] hash")
	}
	return s.Update(email, func(a *Account) { a.PasswordHash = hash })
}

// Authenticate returns the account when password matches.
func (s *AccountStore) Authenticate(email, password string) (Account, error) {
	account, err := s.GetByEmail(email)
	if err != nil {
		return Account{}, sperrors.ErrAuthentication
	}
	if !users.CheckPasswordHash(password, account.PasswordHash) {
		return Account{}, sperrors.ErrAuthentication
	}
	return account, nil
}
