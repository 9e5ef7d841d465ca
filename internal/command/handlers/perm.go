// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DefianceCraft Contributors

package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/defiancecraft/defiancecore/internal/command"
	"github.com/defiancecraft/defiancecore/internal/store"
)

// Permission tokens for the perm command set.
const (
	PermHelp           = "defiancecraft.perm.help"
	PermAddGroup       = "defiancecraft.perm.addgroup"
	PermRemGroup       = "defiancecraft.perm.remgroup"
	PermSetUserPrefix  = "defiancecraft.perm.setuserprefix"
	PermSetUserSuffix  = "defiancecraft.perm.setusersuffix"
	PermReload         = "defiancecraft.perm.reload"
	PermCreateGroup    = "defiancecraft.perm.creategroup"
	PermAddPerm        = "defiancecraft.perm.addperm"
	PermRemPerm        = "defiancecraft.perm.remperm"
	PermSetGroupPrefix = "defiancecraft.perm.setgroupprefix"
	PermSetGroupSuffix = "defiancecraft.perm.setgroupsuffix"
	PermSetPriority    = "defiancecraft.perm.setpriority"
)

const permHelpText = "&9&lPermissions Help\n" +
	"&3&oUser Commands:\n" +
	"&b- /perm addgroup <user> <group>\n" +
	"&b- /perm remgroup <user> <group>\n" +
	"&b- /perm setuserprefix <user> [prefix]\n" +
	"&b- /perm setusersuffix <user> [suffix]\n" +
	"&3&oGroup Commands:\n" +
	"&b- /perm reload\n" +
	"&b- /perm creategroup <group>\n" +
	"&b- /perm addperm <group> <perm>\n" +
	"&b- /perm remperm <group> <perm>\n" +
	"&b- /perm setgroupprefix <group> [prefix]\n" +
	"&b- /perm setgroupsuffix <group> [suffix]\n" +
	"&b- /perm setpriority <group> <priority>"

// RegisterPermissionCommands registers the perm command module into
// the table. The parent label shows help; every administrative
// operation is an individually-gated sub-command.
func RegisterPermissionCommands(t *command.Table, s *Services) error {
	if err := t.RegisterUniversal("perm", PermHelp, s.permHelp); err != nil {
		return err
	}

	subs := []struct {
		name    string
		perm    string
		handler command.Handler
	}{
		{"addgroup", PermAddGroup, s.permAddGroup},
		{"remgroup", PermRemGroup, s.permRemGroup},
		{"setuserprefix", PermSetUserPrefix, s.permSetUserPrefix},
		{"setusersuffix", PermSetUserSuffix, s.permSetUserSuffix},
		{"reload", PermReload, s.permReload},
		{"creategroup", PermCreateGroup, s.permCreateGroup},
		{"addperm", PermAddPerm, s.permAddPerm},
		{"remperm", PermRemPerm, s.permRemPerm},
		{"setgroupprefix", PermSetGroupPrefix, s.permSetGroupPrefix},
		{"setgroupsuffix", PermSetGroupSuffix, s.permSetGroupSuffix},
		{"setpriority", PermSetPriority, s.permSetPriority},
	}
	for _, sub := range subs {
		if err := t.RegisterUniversalSub("perm", sub.name, sub.perm, sub.handler); err != nil {
			return err
		}
	}
	return nil
}

func (s *Services) permHelp(_ context.Context, caller command.Caller, _ []string) error {
	s.reply(caller, permHelpText)
	return nil
}

// permAddGroup handles /perm addgroup <user> <group>. The caller gets
// immediate feedback; the store work runs on the executor and the
// online target, if any, is refreshed afterwards.
func (s *Services) permAddGroup(_ context.Context, caller command.Caller, args []string) error {
	if len(args) != 2 {
		s.reply(caller, "Usage: /perm addgroup <user> <group>")
		return nil
	}
	userName, group := args[0], args[1]

	s.reply(caller, "&7Adding group...")
	_, err := s.Exec.Run("perm.addgroup", func(ctx context.Context) error {
		rec, err := s.Users.ByNameOrCreate(ctx, userName)
		if errors.Is(err, store.ErrNotFound) {
			s.reply(caller, fmt.Sprintf("&cCould not find user with name '%s'", userName))
			return nil
		}
		if err != nil {
			return s.storeFailure(caller, "addgroup lookup failed", err)
		}

		added, err := s.Users.AddGroup(ctx, rec.ID, group)
		if err != nil {
			return s.storeFailure(caller, "addgroup update failed", err)
		}
		if !added {
			s.reply(caller, "&cCould not add group to user; database error")
			return nil
		}

		if err := s.refreshOnline(ctx, rec.ID); err != nil {
			return err
		}
		s.reply(caller, fmt.Sprintf("&aSuccessfully added group '%s' to user '%s'.", group, userName))
		return nil
	})
	return err
}

// permRemGroup handles /perm remgroup <user> <group>. Unlike addgroup
// it never creates the user.
func (s *Services) permRemGroup(_ context.Context, caller command.Caller, args []string) error {
	if len(args) != 2 {
		s.reply(caller, "Usage: /perm remgroup <user> <group>")
		return nil
	}
	userName, group := args[0], args[1]

	s.reply(caller, "&7Removing group...")
	_, err := s.Exec.Run("perm.remgroup", func(ctx context.Context) error {
		rec, err := s.Users.ByName(ctx, userName)
		if errors.Is(err, store.ErrNotFound) {
			s.reply(caller, fmt.Sprintf("&cCould not find user with name '%s'", userName))
			return nil
		}
		if err != nil {
			return s.storeFailure(caller, "remgroup lookup failed", err)
		}

		removed, err := s.Users.RemoveGroup(ctx, rec.ID, group)
		if err != nil {
			return s.storeFailure(caller, "remgroup update failed", err)
		}
		if !removed {
			s.reply(caller, fmt.Sprintf("&cFailed to remove group '%s' from user '%s'", group, userName))
			return nil
		}

		if err := s.refreshOnline(ctx, rec.ID); err != nil {
			return err
		}
		s.reply(caller, fmt.Sprintf("&aSuccessfully removed group '%s' from user '%s'.", group, userName))
		return nil
	})
	return err
}

func (s *Services) permSetUserPrefix(_ context.Context, caller command.Caller, args []string) error {
	return s.setUserMeta(caller, args, "setuserprefix", s.Users.SetPrefix)
}

func (s *Services) permSetUserSuffix(_ context.Context, caller command.Caller, args []string) error {
	return s.setUserMeta(caller, args, "setusersuffix", s.Users.SetSuffix)
}

// setUserMeta handles the shared shape of the per-user override
// commands: /perm setuserprefix <user> [value]. An omitted value
// clears the override.
func (s *Services) setUserMeta(caller command.Caller, args []string, op string, set func(context.Context, uuid.UUID, string) (bool, error)) error {
	if len(args) < 1 {
		s.reply(caller, fmt.Sprintf("Usage: /perm %s <user> [value]", op))
		return nil
	}
	userName := args[0]
	value := strings.Join(args[1:], " ")

	s.reply(caller, "&7Updating user...")
	_, err := s.Exec.Run("perm."+op, func(ctx context.Context) error {
		rec, err := s.Users.ByName(ctx, userName)
		if errors.Is(err, store.ErrNotFound) {
			s.reply(caller, fmt.Sprintf("&cCould not find user with name '%s'", userName))
			return nil
		}
		if err != nil {
			return s.storeFailure(caller, op+" lookup failed", err)
		}

		updated, err := set(ctx, rec.ID, value)
		if err != nil {
			return s.storeFailure(caller, op+" update failed", err)
		}
		if !updated {
			s.reply(caller, "&cCould not update user; database error")
			return nil
		}

		if err := s.refreshOnline(ctx, rec.ID); err != nil {
			return err
		}
		s.reply(caller, fmt.Sprintf("&aSuccessfully updated user '%s'.", userName))
		return nil
	})
	return err
}

// permReload re-reads the group configuration and re-applies it to
// every connected session. Runs on the control thread by design: the
// engine's state is owned there.
func (s *Services) permReload(ctx context.Context, caller command.Caller, _ []string) error {
	if err := s.Engine.ReloadConfig(); err != nil {
		s.replyInternalError(caller, "permission config reload failed", err)
		return err
	}
	s.Engine.Reload(ctx)
	s.reply(caller, "&aPermissions configuration reloaded.")
	return nil
}

func (s *Services) permCreateGroup(_ context.Context, caller command.Caller, args []string) error {
	if len(args) != 1 {
		s.reply(caller, "Usage: /perm creategroup <group>")
		return nil
	}
	group := args[0]

	if !s.Engine.Config().CreateGroup(group) {
		s.reply(caller, fmt.Sprintf("&cGroup '%s' already exists.", group))
		return nil
	}
	s.saveConfig(caller, fmt.Sprintf("&aCreated group '%s'.", group))
	return nil
}

func (s *Services) permAddPerm(_ context.Context, caller command.Caller, args []string) error {
	return s.editGroup(caller, args, 2, "addperm <group> <perm>", func(group string, rest []string) (bool, string) {
		return s.Engine.Config().AddPermission(group, rest[0]),
			fmt.Sprintf("&aAdded permission '%s' to group '%s'.", rest[0], group)
	})
}

func (s *Services) permRemPerm(_ context.Context, caller command.Caller, args []string) error {
	return s.editGroup(caller, args, 2, "remperm <group> <perm>", func(group string, rest []string) (bool, string) {
		return s.Engine.Config().RemovePermission(group, rest[0]),
			fmt.Sprintf("&aRemoved permission '%s' from group '%s'.", rest[0], group)
	})
}

func (s *Services) permSetGroupPrefix(_ context.Context, caller command.Caller, args []string) error {
	return s.editGroup(caller, args, 1, "setgroupprefix <group> [prefix]", func(group string, rest []string) (bool, string) {
		return s.Engine.Config().SetGroupPrefix(group, strings.Join(rest, " ")),
			fmt.Sprintf("&aUpdated prefix of group '%s'.", group)
	})
}

func (s *Services) permSetGroupSuffix(_ context.Context, caller command.Caller, args []string) error {
	return s.editGroup(caller, args, 1, "setgroupsuffix <group> [suffix]", func(group string, rest []string) (bool, string) {
		return s.Engine.Config().SetGroupSuffix(group, strings.Join(rest, " ")),
			fmt.Sprintf("&aUpdated suffix of group '%s'.", group)
	})
}

func (s *Services) permSetPriority(_ context.Context, caller command.Caller, args []string) error {
	if len(args) != 2 {
		s.reply(caller, "Usage: /perm setpriority <group> <priority>")
		return nil
	}
	priority, err := strconv.Atoi(args[1])
	if err != nil {
		s.reply(caller, "&cPriority must be a number.")
		return nil
	}

	if !s.Engine.Config().SetGroupPriority(args[0], priority) {
		s.reply(caller, fmt.Sprintf("&cGroup '%s' was not found.", args[0]))
		return nil
	}
	s.saveConfig(caller, fmt.Sprintf("&aUpdated priority of group '%s'.", args[0]))
	return nil
}

// editGroup handles the shared shape of in-memory group edits followed
// by a wholesale config save.
func (s *Services) editGroup(caller command.Caller, args []string, minArgs int, usage string, edit func(group string, rest []string) (bool, string)) error {
	if len(args) < minArgs {
		s.reply(caller, "Usage: /perm "+usage)
		return nil
	}

	found, successMsg := edit(args[0], args[1:])
	if !found {
		s.reply(caller, fmt.Sprintf("&cGroup '%s' was not found.", args[0]))
		return nil
	}
	s.saveConfig(caller, successMsg)
	return nil
}

// saveConfig persists the configuration and reports the outcome. A
// failed save leaves the in-memory edit in place; the edit is already
// live and will persist on the next successful save.
func (s *Services) saveConfig(caller command.Caller, successMsg string) {
	if err := s.Engine.SaveConfig(); err != nil {
		s.replyInternalError(caller, "failed to save permission config", err)
		return
	}
	s.reply(caller, successMsg)
}
