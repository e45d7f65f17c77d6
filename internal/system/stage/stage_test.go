package stage

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestResolverPath verifies staged names are joined onto the root without touching the filesystem.
func TestResolverPath(t *testing.T) {
	t.Parallel()

	r := New("/var/lib/peachcloud/conf")

	require.Equal(t, "/var/lib/peachcloud/conf/peach.conf", r.Path("peach.conf"))
	require.Equal(t, "/var/lib/peachcloud/conf/network/04-wired.network", r.Path("network/04-wired.network"))
	require.Equal(t, "/tmp/conf/missing", New("/tmp/conf/").Path("missing"))
}
