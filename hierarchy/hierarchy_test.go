package hierarchy

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fstwave/fst/format"
	"github.com/fstwave/fst/varint"
)

func cstr(s string) []byte { return append([]byte(s), 0) }

// buildRecords assembles a raw (uncompressed) hierarchy body: one scope
// "top" containing four variable declarations, the third aliasing the
// second (spec.md §8 scenario 5).
func buildRecords() []byte {
	var recs []byte

	recs = append(recs, tagScopeOpen)
	recs = append(recs, 0) // scope type
	recs = append(recs, cstr("top")...)
	recs = append(recs, cstr("")...)

	// var0: wire, 1 bit, no alias.
	recs = append(recs, 0) // tag = var type
	recs = append(recs, 0) // direction
	recs = append(recs, cstr("a")...)
	recs = varint.AppendVarint(recs, 1)
	recs = varint.AppendVarint(recs, 0)

	// var1: wire, 4 bits, no alias.
	recs = append(recs, 0)
	recs = append(recs, 0)
	recs = append(recs, cstr("b")...)
	recs = varint.AppendVarint(recs, 4)
	recs = varint.AppendVarint(recs, 0)

	// var2: aliases VarId 1 (alias field == 2).
	recs = append(recs, 0)
	recs = append(recs, 0)
	recs = append(recs, cstr("c")...)
	recs = varint.AppendVarint(recs, 4)
	recs = varint.AppendVarint(recs, 2)

	// var3: new declaration, continues at VarId 2.
	recs = append(recs, 0)
	recs = append(recs, 0)
	recs = append(recs, cstr("d")...)
	recs = varint.AppendVarint(recs, 1)
	recs = varint.AppendVarint(recs, 0)

	recs = append(recs, tagScopeClose)

	return recs
}

func wrapRawBody(recs []byte) []byte {
	head := make([]byte, 8)
	binary.BigEndian.PutUint64(head, uint64(len(recs)))

	return append(head, recs...)
}

func TestParseHierarchyRaw(t *testing.T) {
	body := wrapRawBody(buildRecords())

	tree, err := Parse(body, format.BlockHierarchy)
	require.NoError(t, err)
	require.Equal(t, 3, tree.NumVars)

	require.Len(t, tree.Root.Scopes, 1)
	top := tree.Root.Scopes[0]
	require.Equal(t, "top", top.Name)
	require.Len(t, top.Vars, 4)

	require.Equal(t, 0, top.Vars[0].VarID)
	require.False(t, top.Vars[0].IsAlias)

	require.Equal(t, 1, top.Vars[1].VarID)
	require.False(t, top.Vars[1].IsAlias)

	require.Equal(t, 1, top.Vars[2].VarID)
	require.True(t, top.Vars[2].IsAlias)

	require.Equal(t, 2, top.Vars[3].VarID)
	require.False(t, top.Vars[3].IsAlias)
}

func TestTreeWalkAndPath(t *testing.T) {
	body := wrapRawBody(buildRecords())
	tree, err := Parse(body, format.BlockHierarchy)
	require.NoError(t, err)

	var paths []string
	tree.Walk(func(path string, s *Scope) {
		paths = append(paths, path)
	})
	require.Equal(t, []string{"top"}, paths)

	path, err := tree.Path(0)
	require.NoError(t, err)
	require.Equal(t, "top.a", path)

	_, err = tree.Path(99)
	require.Error(t, err)
}

func TestTreeScopesAndVars(t *testing.T) {
	body := wrapRawBody(buildRecords())
	tree, err := Parse(body, format.BlockHierarchy)
	require.NoError(t, err)

	scopes := tree.Scopes()
	require.Len(t, scopes, 1)
	require.Equal(t, "top", scopes[0].Name)

	vars := tree.Vars()
	require.Len(t, vars, 4)
	require.Equal(t, "a", vars[0].Name)
	require.Equal(t, "b", vars[1].Name)
	require.Equal(t, "c", vars[2].Name)
	require.Equal(t, "d", vars[3].Name)
}

func TestParseHierarchyMissingScopeOpenFirst(t *testing.T) {
	recs := []byte{tagScopeClose}
	body := wrapRawBody(recs)

	_, err := Parse(body, format.BlockHierarchy)
	require.Error(t, err)
}
