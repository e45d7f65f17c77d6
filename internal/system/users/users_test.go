package users

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/peachcloud/peach-config/internal/system/command/commandtest"
)

var errTestRun = errors.New("test run error")

// TestGroupExists covers found, not found (exit 2) and failing lookups.
func TestGroupExists(t *testing.T) {
	t.Parallel()

	runner := commandtest.New().
		Stub("peach:x:1001:peach\n", "getent", "group", "peach").
		StubExit(2, "", "getent", "group", "gpio-user").
		StubExit(1, "broken nss", "getent", "group", "netdev")
	m := NewManager(runner)

	exists, err := m.GroupExists(context.Background(), "peach")
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = m.GroupExists(context.Background(), "gpio-user")
	require.NoError(t, err)
	require.False(t, exists)

	_, err = m.GroupExists(context.Background(), "netdev")
	require.ErrorContains(t, err, "broken nss")
}

// TestGroupExists_PrefixIsNotAMatch ensures a similarly named entry does not count.
func TestGroupExists_PrefixIsNotAMatch(t *testing.T) {
	t.Parallel()

	runner := commandtest.New().Stub("peach-web:x:1002:\n", "getent", "group", "peach")

	exists, err := NewManager(runner).GroupExists(context.Background(), "peach")
	require.NoError(t, err)
	require.False(t, exists)
}

// TestCreateGroupIfAbsent_Idempotent runs creation twice against a stateful fake:
// the second call must neither fail nor create the group again.
func TestCreateGroupIfAbsent_Idempotent(t *testing.T) {
	t.Parallel()

	runner := commandtest.New().StubExit(2, "", "getent", "group", "peach")
	m := NewManager(runner)

	require.NoError(t, m.CreateGroupIfAbsent(context.Background(), "peach"))
	require.True(t, runner.Ran("/usr/sbin/groupadd", "peach"))

	// The group now exists on the host.
	runner.Stub("peach:x:1001:\n", "getent", "group", "peach")

	require.NoError(t, m.CreateGroupIfAbsent(context.Background(), "peach"))

	require.Equal(t, []string{
		"getent group peach",
		"/usr/sbin/groupadd peach",
		"getent group peach",
	}, runner.Commands())
}

// TestCreateGroupIfAbsent_PropagatesErrors ensures a failed groupadd aborts.
func TestCreateGroupIfAbsent_PropagatesErrors(t *testing.T) {
	t.Parallel()

	runner := commandtest.New().
		StubExit(2, "", "getent", "group").
		StubError(errTestRun, "/usr/sbin/groupadd")

	err := NewManager(runner).CreateGroupIfAbsent(context.Background(), "peach")
	require.ErrorIs(t, err, errTestRun)
}

// TestCreateSystemUserIfAbsent verifies adduser runs only for missing users.
func TestCreateSystemUserIfAbsent(t *testing.T) {
	t.Parallel()

	runner := commandtest.New().
		Stub("peach-web:x:998:1001::/home/peach-web:/usr/sbin/nologin\n", "getent", "passwd", "peach-web").
		StubExit(2, "", "getent", "passwd", "peach-oled")
	m := NewManager(runner)

	require.NoError(t, m.CreateSystemUserIfAbsent(context.Background(), "peach-web", "peach"))
	require.NoError(t, m.CreateSystemUserIfAbsent(context.Background(), "peach-oled", "peach"))

	require.False(t, runner.Ran("/usr/sbin/adduser", "--system", "--no-create-home", "--ingroup", "peach", "peach-web"))
	require.True(t, runner.Ran("/usr/sbin/adduser", "--system", "--no-create-home", "--ingroup", "peach", "peach-oled"))
}

// TestAddToGroups verifies one usermod per group and abort on failure.
func TestAddToGroups(t *testing.T) {
	t.Parallel()

	runner := commandtest.New().StubError(errTestRun, "/usr/sbin/usermod", "-a", "-G", "i2c")
	m := NewManager(runner)

	err := m.AddToGroups(context.Background(), "peach-oled", "gpio-user", "i2c", "netdev")
	require.ErrorIs(t, err, errTestRun)
	require.Equal(t, []string{
		"/usr/sbin/usermod -a -G gpio-user peach-oled",
		"/usr/sbin/usermod -a -G i2c peach-oled",
	}, runner.Commands())
}
