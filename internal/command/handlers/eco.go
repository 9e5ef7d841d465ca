// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DefianceCraft Contributors

package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/defiancecraft/defiancecore/internal/command"
	"github.com/defiancecraft/defiancecore/internal/economy"
	"github.com/defiancecraft/defiancecore/internal/store"
)

// Permission tokens for the eco command set. The bare balance check is
// ungated for sessions; the mutating sub-commands are operator-grade.
const (
	EcoBalanceOther = "defiancecraft.eco.bal.other"
	EcoGive         = "defiancecraft.eco.give"
	EcoTake         = "defiancecraft.eco.take"
	EcoSet          = "defiancecraft.eco.set"
)

// RegisterEconomyCommands registers the eco command module into the
// table. The parent label reports the caller's own balance.
func RegisterEconomyCommands(t *command.Table, s *Services) error {
	if err := t.RegisterUniversal("eco", "", s.ecoBalance); err != nil {
		return err
	}

	subs := []struct {
		name    string
		perm    string
		handler command.Handler
	}{
		{"bal", EcoBalanceOther, s.ecoBalanceOther},
		{"give", EcoGive, s.ecoGive},
		{"take", EcoTake, s.ecoTake},
		{"set", EcoSet, s.ecoSet},
	}
	for _, sub := range subs {
		if err := t.RegisterUniversalSub("eco", sub.name, sub.perm, sub.handler); err != nil {
			return err
		}
	}
	return nil
}

// ecoBalance handles a bare /eco from a session: the caller's own
// balance. Operators have no balance of their own and get usage.
func (s *Services) ecoBalance(_ context.Context, caller command.Caller, _ []string) error {
	if caller.Context() != command.CallerSession {
		s.reply(caller, "Usage: /eco <bal|give|take|set> ...")
		return nil
	}

	name := caller.Name()
	_, err := s.Exec.Run("eco.balance", func(ctx context.Context) error {
		bal, err := s.Economy.Balance(ctx, name)
		if err != nil {
			return s.storeFailure(caller, "balance lookup failed", err)
		}
		s.reply(caller, fmt.Sprintf("&aYou have %s.", s.Economy.Format(bal)))
		return nil
	})
	return err
}

// ecoBalanceOther handles /eco bal <user>.
func (s *Services) ecoBalanceOther(_ context.Context, caller command.Caller, args []string) error {
	if len(args) != 1 {
		s.reply(caller, "Usage: /eco bal <user>")
		return nil
	}
	target := args[0]

	_, err := s.Exec.Run("eco.balance", func(ctx context.Context) error {
		// Unknown players report a zero balance rather than an error.
		bal, err := s.Economy.Balance(ctx, target)
		if err != nil {
			return s.storeFailure(caller, "balance lookup failed", err)
		}
		s.reply(caller, fmt.Sprintf("&a%s has %s.", target, s.Economy.Format(bal)))
		return nil
	})
	return err
}

func (s *Services) ecoGive(_ context.Context, caller command.Caller, args []string) error {
	return s.ecoMutate(caller, args, "give", "eco.give", func(ctx context.Context, target string, amount float64) (string, error) {
		if err := s.Economy.Deposit(ctx, target, amount); err != nil {
			return "", err
		}
		return fmt.Sprintf("&aGave %s to %s.", s.Economy.Format(amount), target), nil
	})
}

func (s *Services) ecoTake(_ context.Context, caller command.Caller, args []string) error {
	return s.ecoMutate(caller, args, "take", "eco.take", func(ctx context.Context, target string, amount float64) (string, error) {
		if err := s.Economy.Withdraw(ctx, target, amount); err != nil {
			if errors.Is(err, economy.ErrInsufficientFunds) {
				return fmt.Sprintf("&c%s does not have %s.", target, s.Economy.Format(amount)), nil
			}
			return "", err
		}
		return fmt.Sprintf("&aTook %s from %s.", s.Economy.Format(amount), target), nil
	})
}

func (s *Services) ecoSet(_ context.Context, caller command.Caller, args []string) error {
	return s.ecoMutate(caller, args, "set", "eco.set", func(ctx context.Context, target string, amount float64) (string, error) {
		if err := s.Economy.SetBalance(ctx, target, amount); err != nil {
			return "", err
		}
		return fmt.Sprintf("&aSet balance of %s to %s.", target, s.Economy.Format(amount)), nil
	})
}

// ecoMutate handles the shared shape of the mutating sub-commands:
// /eco <op> <user> <amount>, with the store work on the executor.
// The op callback returns the message for the caller; a returned error
// is an internal failure. Not-found is reported uniformly here.
func (s *Services) ecoMutate(caller command.Caller, args []string, usage, task string, op func(ctx context.Context, target string, amount float64) (string, error)) error {
	if len(args) != 2 {
		s.reply(caller, fmt.Sprintf("Usage: /eco %s <user> <amount>", usage))
		return nil
	}
	target := args[0]
	amount, err := strconv.ParseFloat(args[1], 64)
	if err != nil || amount < 0 {
		s.reply(caller, "&cAmount must be a non-negative number.")
		return nil
	}

	s.reply(caller, "&7Updating balance...")
	_, err = s.Exec.Run(task, func(ctx context.Context) error {
		msg, err := op(ctx, target, amount)
		if errors.Is(err, store.ErrNotFound) {
			s.reply(caller, fmt.Sprintf("&cCould not find user with name '%s'", target))
			return nil
		}
		if err != nil {
			return s.storeFailure(caller, "balance update failed", err)
		}
		s.reply(caller, msg)
		return nil
	})
	return err
}
