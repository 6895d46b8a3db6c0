package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const sourceTemplate = `namespace %s {
    function %s(k : Int) : Int { return 2 * k; }
    newtype Pair = (Int, Int);
}
`

const snapshotTemplate = `version: 1
files:
  - uri: %[1]s
namespaces:
  - name: %[2]s
    callables:
      - name: %[3]s
        kind: function
        source: %[1]s
        location: {offset: [1, 4], range: [0, 9, 0, %[4]d]}
        parameters:
          items:
            - decl: {name: k, type: Int}
        returnType: Int
    types:
      - name: Pair
        source: %[1]s
        location: {offset: [2, 4], range: [0, 8, 0, 12]}
        underlying: (Int, Int)
`

// writeProject writes a source file declaring namespace.callable and a
// snapshot describing it; the snapshot does not inline the source text.
func writeProject(t *testing.T, dir, namespace, callable string) string {
	t.Helper()

	require.NoError(t, os.MkdirAll(dir, 0o755))

	src := filepath.Join(dir, callable+".qs")
	require.NoError(t, os.WriteFile(src, fmt.Appendf(nil, sourceTemplate, namespace, callable), 0o644))

	snap := filepath.Join(dir, callable+".qsnap.yaml")
	data := fmt.Appendf(nil, snapshotTemplate, PathToURI(src), namespace, callable, 9+len(callable))
	require.NoError(t, os.WriteFile(snap, data, 0o644))

	return snap
}
