// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DefianceCraft Contributors

// Package economy wraps the user store with currency operations.
//
// Operations here run synchronously so callers needing an immediate
// answer (shop hooks, third-party bridges) get one; offloading to the
// executor is the caller's choice.
package economy

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"

	"github.com/defiancecraft/defiancecore/internal/store"
	"github.com/defiancecraft/defiancecore/internal/user"
)

// ErrInsufficientFunds is returned when a withdrawal would take a
// balance below zero.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrAccountPending is returned when a balance update matched no row.
// The usual cause is a freshly created account whose fire-and-forget
// insert has not landed yet, so the error is marked transient and
// executor-driven callers retry until the row exists. Returning it
// instead of success keeps a racing update from being silently lost.
var ErrAccountPending = errors.New("account record not yet persisted")

// accountPending wraps ErrAccountPending with context for logs.
func accountPending(name string) error {
	return store.MarkTransient(oops.Code("ECONOMY_ACCOUNT_PENDING").
		With("name", name).
		Wrap(ErrAccountPending))
}

// Config holds the currency display settings.
type Config struct {
	Singular string `koanf:"singular" yaml:"singular"`
	Plural   string `koanf:"plural" yaml:"plural"`
	Symbol   string `koanf:"symbol" yaml:"symbol"`
	Format   string `koanf:"format" yaml:"format"`
}

// DefaultConfig returns the built-in currency settings.
func DefaultConfig() Config {
	return Config{
		Singular: "token",
		Plural:   "tokens",
		Symbol:   "T",
		Format:   "{symbol}{amount}",
	}
}

// LoadConfig reads currency settings from a YAML file. A missing file
// is not an error; defaults apply.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return cfg, oops.Code("ECONOMY_CONFIG_LOAD_FAILED").With("path", path).Wrap(err)
	}
	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, oops.Code("ECONOMY_CONFIG_PARSE_FAILED").With("path", path).Wrap(err)
	}
	return cfg, nil
}

// Service exposes balance operations over the user service.
type Service struct {
	cfg   Config
	users *user.Service
}

// NewService creates an economy service.
func NewService(cfg Config, users *user.Service) *Service {
	return &Service{cfg: cfg, users: users}
}

// Format renders an amount using the configured currency format.
func (s *Service) Format(amount float64) string {
	return strings.NewReplacer(
		"{symbol}", s.cfg.Symbol,
		"{amount}", strconv.FormatFloat(amount, 'f', -1, 64),
	).Replace(s.cfg.Format)
}

// CurrencyName returns the singular or plural currency name for the
// given amount.
func (s *Service) CurrencyName(amount float64) string {
	if amount == 1 {
		return s.cfg.Singular
	}
	return s.cfg.Plural
}

// Balance returns a player's balance by name. Unknown players have a
// zero balance rather than an error.
func (s *Service) Balance(ctx context.Context, name string) (float64, error) {
	rec, err := s.users.ByName(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return rec.Balance, nil
}

// Withdraw removes an amount from a player's balance. Returns
// store.ErrNotFound for unknown players and ErrInsufficientFunds when
// the balance would go negative.
func (s *Service) Withdraw(ctx context.Context, name string, amount float64) error {
	rec, err := s.users.ByName(ctx, name)
	if err != nil {
		return err
	}
	if rec.Balance-amount < 0 {
		return ErrInsufficientFunds
	}
	matched, err := s.users.Users().AddBalance(ctx, rec.ID, -amount)
	if err != nil {
		return err
	}
	if !matched {
		return accountPending(name)
	}
	return nil
}

// Deposit adds an amount to a player's balance, creating the account
// when the player is unknown to the store.
func (s *Service) Deposit(ctx context.Context, name string, amount float64) error {
	rec, err := s.users.ByNameOrCreate(ctx, name)
	if err != nil {
		return err
	}
	matched, err := s.users.Users().AddBalance(ctx, rec.ID, amount)
	if err != nil {
		return err
	}
	if !matched {
		return accountPending(name)
	}
	return nil
}

// SetBalance overwrites a player's balance, creating the account when
// the player is unknown to the store.
func (s *Service) SetBalance(ctx context.Context, name string, amount float64) error {
	rec, err := s.users.ByNameOrCreate(ctx, name)
	if err != nil {
		return err
	}
	matched, err := s.users.Users().SetBalance(ctx, rec.ID, amount)
	if err != nil {
		return err
	}
	if !matched {
		return accountPending(name)
	}
	return nil
}
