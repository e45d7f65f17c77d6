// Package users creates system users and groups without duplicating existing entries.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/peachcloud/peach-config/internal/domain/peach"
	"github.com/peachcloud/peach-config/internal/logger"
	"github.com/peachcloud/peach-config/internal/system/command"
)

// getentNotFound is the exit status of getent when the key is missing.
const getentNotFound = 2

// Manager queries and updates the user and group databases through a Runner.
type Manager struct {
	runner command.Runner
}

// NewManager returns a Manager running commands through runner.
func NewManager(runner command.Runner) *Manager {
	return &Manager{runner: runner}
}

// GroupExists reports whether the group database has an entry for name.
func (m *Manager) GroupExists(ctx context.Context, name string) (bool, error) {
	return m.lookup(ctx, "group", name)
}

// UserExists reports whether the user database has an entry for name.
func (m *Manager) UserExists(ctx context.Context, name string) (bool, error) {
	return m.lookup(ctx, "passwd", name)
}

// CreateGroupIfAbsent creates the group unless it already exists.
func (m *Manager) CreateGroupIfAbsent(ctx context.Context, name string) error {
	exists, err := m.GroupExists(ctx, name)
	if err != nil {
		return err
	}

	if exists {
		logger.DebugKV(ctx, "Group already exists", "group", name)
		return nil
	}

	if _, err = m.runner.Run(ctx, "/usr/sbin/groupadd", name); err != nil {
		return fmt.Errorf("create group %s: %w", name, err)
	}

	return nil
}

// CreateSystemUserIfAbsent creates a non-login system user without a home
// directory in group, unless the user already exists.
func (m *Manager) CreateSystemUserIfAbsent(ctx context.Context, name, group string) error {
	exists, err := m.UserExists(ctx, name)
	if err != nil {
		return err
	}

	if exists {
		logger.DebugKV(ctx, "User already exists", "user", name)
		return nil
	}

	_, err = m.runner.Run(ctx, "/usr/sbin/adduser", "--system", "--no-create-home", "--ingroup", group, name)
	if err != nil {
		return fmt.Errorf("create system user %s: %w", name, err)
	}

	return nil
}

// AddToGroups appends user to each supplementary group.
func (m *Manager) AddToGroups(ctx context.Context, user string, groups ...string) error {
	for _, group := range groups {
		if _, err := m.runner.Run(ctx, "/usr/sbin/usermod", "-a", "-G", group, user); err != nil {
			return fmt.Errorf("add %s to group %s: %w", user, group, err)
		}
	}

	return nil
}

// lookup runs getent against database and matches the first field exactly.
func (m *Manager) lookup(ctx context.Context, database, name string) (bool, error) {
	output, err := command.RunText(ctx, m.runner, "getent", database, name)
	if err != nil {
		var perr *peach.Error
		if errors.As(err, &perr) && perr.Kind == peach.KindCommandFailed && perr.ExitCode == getentNotFound {
			return false, nil
		}

		return false, fmt.Errorf("look up %s %s: %w", database, name, err)
	}

	for line := range strings.SplitSeq(output, "\n") {
		if entry, _, _ := strings.Cut(line, ":"); entry == name {
			return true, nil
		}
	}

	return false, nil
}
