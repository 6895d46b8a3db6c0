package analysis

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/CWBudde/go-qs-lsp/internal/syntax"
	"github.com/CWBudde/go-qs-lsp/internal/testutil"
)

// queryResults is everything the engine answers for one position.
type queryResults struct {
	References  []Location
	Completions []string
	Signature   *SignatureHelp
	Locals      []string
}

func queryAll(d *testutil.Demo, pos syntax.Position) (queryResults, error) {
	var out queryResults

	refs, err := ReferencesAt(d.Compilation, testutil.MainURI, pos)
	if err != nil {
		return out, err
	}

	if refs != nil {
		out.References = refs.All(true)
	}

	for _, c := range CompletionsAt(d.Compilation, testutil.MainURI, pos) {
		out.Completions = append(out.Completions, fmt.Sprintf("%d:%s", c.Kind, c.Label))
	}

	out.Signature = SignatureHelpAt(d.Compilation, testutil.MainURI, pos)

	if _, spec, ok := d.Compilation.CallableAt(testutil.MainURI, pos); ok && spec != nil {
		out.Locals = localNames(LocalsInScope(spec.Body, pos, true))
	}

	return out, nil
}

func TestQueriesAreSafeForConcurrentUse(t *testing.T) {
	d := testutil.NewDemo()
	main := d.Main

	positions := []syntax.Position{
		main.Pos(7, "theta"),
		main.Pos(12, "total"),
		main.Pos(20, "aux"),
		main.Pos(22, "angle"),
		main.Pos(26, "+ x"),
		main.Pos(27, "Square"),
		main.After(27, "M.Square(x), "),
		main.Pos(35, "attempt"),
		main.Pos(44, "Prepare"),
		main.After(44, "(q, (1.0, "),
	}

	expected := make([]queryResults, len(positions))

	for i, pos := range positions {
		res, err := queryAll(d, pos)
		require.NoError(t, err)

		expected[i] = res
	}

	require.NotEmpty(t, expected[1].References, "fixture should resolve a local")
	require.NotNil(t, expected[6].Signature, "fixture should have a call under the cursor")

	const workers = 16

	results := make([][]queryResults, workers)

	var g errgroup.Group

	for w := range workers {
		g.Go(func() error {
			out := make([]queryResults, len(positions))

			// Each worker starts at a different position so the same query
			// runs against different ones at the same time.
			for n := range positions {
				i := (n + w) % len(positions)

				res, err := queryAll(d, positions[i])
				if err != nil {
					return fmt.Errorf("%s: %w", positions[i], err)
				}

				out[i] = res
			}

			results[w] = out

			return nil
		})
	}

	require.NoError(t, g.Wait())

	for w, out := range results {
		for i := range positions {
			assert.Equal(t, expected[i].References, out[i].References, "worker %d at %s", w, positions[i])
			assert.ElementsMatch(t, expected[i].Completions, out[i].Completions, "worker %d at %s", w, positions[i])
			assert.Equal(t, expected[i].Signature, out[i].Signature, "worker %d at %s", w, positions[i])
			assert.Equal(t, expected[i].Locals, out[i].Locals, "worker %d at %s", w, positions[i])
		}
	}
}
