package tree

import (
	"errors"
	"math/rand/v2"
	"testing"

	"regiontree/pkg/common"
	"regiontree/pkg/geom"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var unit = geom.Box2(0, 0, 1, 1)

func randomPoints(rng *rand.Rand, n int) []geom.Point {
	pts := make([]geom.Point, n)
	for i := range pts {
		pts[i] = geom.Pt(rng.Float64(), rng.Float64())
	}
	return pts
}

func randomBoxes(rng *rand.Rand, n int, maxSide float64) []geom.Box {
	boxes := make([]geom.Box, n)
	for i := range boxes {
		w, h := rng.Float64()*maxSide, rng.Float64()*maxSide
		x, y := rng.Float64()*(1-w), rng.Float64()*(1-h)
		boxes[i] = geom.Box2(x, y, x+w, y+h)
	}
	return boxes
}

func pointTree(t *testing.T, maxNodeSize int, pts []geom.Point) *MutableTree[geom.Point, int] {
	t.Helper()
	tr, err := NewMutable[geom.Point, int](unit, maxNodeSize)
	require.NoError(t, err)
	for i, p := range pts {
		require.NoError(t, tr.Insert(p, i))
	}
	return tr
}

func TestNewMutableValidation(t *testing.T) {
	_, err := NewMutable[geom.Point, int](unit, 0)
	require.ErrorIs(t, err, common.ErrConstruction)
	var nse *common.NodeSizeError
	require.ErrorAs(t, err, &nse)
	assert.Equal(t, 0, nse.Size)

	_, err = NewMutable[geom.Point, int](unit, -3)
	assert.ErrorIs(t, err, common.ErrConstruction)

	p, err := geom.NewPoint(0)
	require.NoError(t, err)
	line, err := geom.NewBox(p, p)
	require.NoError(t, err)
	_, err = Build[geom.Point, int](line, 4, nil)
	var de *common.DimensionsError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, 1, de.Dims)

	tr, err := NewMutable[geom.Point, int](unit, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, tr.MaxNodeSize())
	assert.Equal(t, 2, tr.Dims())
	assert.True(t, tr.Bounds().Same(unit))
	assert.True(t, tr.IsEmpty())
}

func TestInsertOutOfBounds(t *testing.T) {
	tr := pointTree(t, 4, []geom.Point{geom.Pt(0.5, 0.5)})
	it := tr.Iter()

	err := tr.Insert(geom.Pt(1.5, 0.5), 99)
	require.ErrorIs(t, err, common.ErrOutOfBounds)
	var oob *common.OutOfBoundsError
	require.ErrorAs(t, err, &oob)
	assert.Equal(t, "(1.5, 0.5)", oob.Key)

	assert.Equal(t, 1, tr.Size())
	assert.False(t, tr.ContainsValue(99))
	// A rejected insert is not a modification.
	require.True(t, it.Next())
	assert.NoError(t, it.Err())

	err = tr.Insert(geom.Pt3(0.5, 0.5, 0.5), 1)
	assert.ErrorIs(t, err, common.ErrConstruction)
	assert.Equal(t, 1, tr.Size())
}

func TestInsertOnBoundary(t *testing.T) {
	tr := pointTree(t, 1, []geom.Point{
		geom.Pt(0, 0), geom.Pt(1, 1), geom.Pt(0.5, 0.5), geom.Pt(0, 1), geom.Pt(1, 0),
	})
	assert.Equal(t, 5, tr.Size())
	for _, p := range []geom.Point{geom.Pt(0, 0), geom.Pt(1, 1), geom.Pt(0.5, 0.5)} {
		assert.True(t, tr.ContainsKey(p), p.String())
	}
	require.NoError(t, tr.CheckIntegrity())
}

func TestContainsAfterInsert(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	pts := randomPoints(rng, 400)
	tr := pointTree(t, 6, pts)

	for i, p := range pts {
		assert.True(t, tr.ContainsKey(p))
		assert.True(t, tr.Contains(p, i))
		assert.True(t, tr.ContainsValue(i))
	}
	assert.False(t, tr.Contains(pts[0], -1))
	assert.False(t, tr.ContainsKey(geom.Pt(2, 2)))
	assert.False(t, tr.ContainsValue(-1))
	require.NoError(t, tr.CheckIntegrity())
}

func TestSizeMatchesTraversal(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	pts := randomPoints(rng, 300)
	tr := pointTree(t, 3, pts)

	for _, p := range pts[:100] {
		_, err := tr.Remove(p)
		require.NoError(t, err)
	}
	assert.Equal(t, 200, tr.Size())
	assert.Len(t, tr.Entries(), 200)
	assert.Len(t, tr.Keys(), 200)
	assert.Len(t, tr.Values(), 200)

	count := 0
	for _, err := range tr.EntrySeq() {
		require.NoError(t, err)
		count++
	}
	assert.Equal(t, 200, count)
	require.NoError(t, tr.CheckIntegrity())
}

func TestRemoveByKey(t *testing.T) {
	tr := pointTree(t, 2, nil)
	shared := geom.Pt(0.25, 0.75)
	require.NoError(t, tr.Insert(shared, 1))
	require.NoError(t, tr.Insert(geom.Pt(0.8, 0.1), 2))
	require.NoError(t, tr.Insert(shared, 3))
	require.NoError(t, tr.Insert(geom.Pt(0.3, 0.3), 4))
	require.NoError(t, tr.Insert(shared, 3))

	removed, err := tr.Remove(shared)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{1, 3, 3}, removed)
	assert.False(t, tr.ContainsKey(shared))
	assert.Equal(t, 2, tr.Size())

	removed, err = tr.Remove(shared)
	require.NoError(t, err)
	assert.Empty(t, removed)

	removed, err = tr.Remove(geom.Pt(5, 5))
	require.NoError(t, err)
	assert.Empty(t, removed)

	_, err = tr.Remove(geom.Pt3(0, 0, 0))
	assert.ErrorIs(t, err, common.ErrConstruction)
}

func TestRemoveEntry(t *testing.T) {
	tr := pointTree(t, 2, nil)
	k := geom.Pt(0.6, 0.6)
	require.NoError(t, tr.Insert(k, 1))
	require.NoError(t, tr.Insert(k, 2))
	require.NoError(t, tr.Insert(geom.Pt(0.1, 0.1), 1))

	removed, err := tr.RemoveEntry(k, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, removed)
	assert.True(t, tr.ContainsKey(k))
	assert.True(t, tr.Contains(k, 2))
	assert.False(t, tr.Contains(k, 1))
	assert.True(t, tr.ContainsValue(1))
	assert.Equal(t, 2, tr.Size())
}

func TestRemoveValue(t *testing.T) {
	rng := rand.New(rand.NewPCG(8, 9))
	tr, err := NewMutable[geom.Point, string](unit, 3)
	require.NoError(t, err)
	for i, p := range randomPoints(rng, 100) {
		v := "even"
		if i%2 == 1 {
			v = "odd"
		}
		require.NoError(t, tr.Insert(p, v))
	}

	removed, err := tr.RemoveValue("odd")
	require.NoError(t, err)
	assert.Len(t, removed, 50)
	assert.False(t, tr.ContainsValue("odd"))
	assert.Equal(t, 50, tr.Size())

	// Only the lower-left quadrant is searched.
	lowerLeft := geom.Box2(0, 0, 0.5, 0.5)
	hint := func(r geom.Box) bool { return r.Within(lowerLeft) }
	expected := 0
	for _, e := range tr.Entries() {
		if e.Key.Within(geom.Box2(0, 0, 0.5, 0.5)) {
			expected++
		}
	}
	removed, err = tr.RemoveValueHinted("even", hint)
	require.NoError(t, err)
	assert.Len(t, removed, expected)
	assert.Equal(t, 50-expected, tr.Size())
	require.NoError(t, tr.CheckIntegrity())
}

func TestRemoveKeys(t *testing.T) {
	rng := rand.New(rand.NewPCG(10, 11))
	pts := randomPoints(rng, 30)
	tr := pointTree(t, 4, pts)

	removed, err := tr.RemoveKeys(pts[:10]...)
	require.NoError(t, err)
	assert.Len(t, removed, 10)
	assert.Equal(t, 20, tr.Size())
}

func TestInsertAllIsAtomic(t *testing.T) {
	tr := pointTree(t, 2, nil)
	batch := []Entry[geom.Point, int]{
		NewEntry(geom.Pt(0.1, 0.1), 1),
		NewEntry(geom.Pt(0.2, 0.2), 2),
		NewEntry(geom.Pt(1.2, 0.2), 3),
	}
	err := tr.InsertAll(batch)
	require.ErrorIs(t, err, common.ErrOutOfBounds)
	assert.True(t, tr.IsEmpty())

	require.NoError(t, tr.InsertAll(batch[:2]))
	assert.Equal(t, 2, tr.Size())
}

func TestClear(t *testing.T) {
	rng := rand.New(rand.NewPCG(12, 13))
	tr := pointTree(t, 2, randomPoints(rng, 50))
	before := tr.Stats()
	require.Greater(t, before.Nodes, 1)

	it := tr.Iter()
	require.NoError(t, tr.Clear())
	assert.True(t, tr.IsEmpty())
	assert.Empty(t, tr.Entries())
	assert.Equal(t, 1, tr.Stats().Nodes)
	assert.True(t, tr.Bounds().Same(unit))
	require.NoError(t, tr.CheckIntegrity())

	assert.False(t, it.Next())
	assert.ErrorIs(t, it.Err(), common.ErrConcurrentModification)

	require.NoError(t, tr.Insert(geom.Pt(0.5, 0.5), 1))
	assert.Equal(t, 1, tr.Size())
}

func TestImmutableRejectsMutation(t *testing.T) {
	tr, err := Build(unit, 4, []Entry[geom.Point, int]{NewEntry(geom.Pt(0.5, 0.5), 1)})
	require.NoError(t, err)

	var idx Index[geom.Point, int] = tr
	errs := []error{
		idx.Insert(geom.Pt(0.1, 0.1), 2),
		idx.InsertAll(nil),
		idx.Clear(),
	}
	_, e := idx.Remove(geom.Pt(0.5, 0.5))
	errs = append(errs, e)
	_, e = idx.RemoveEntry(geom.Pt(0.5, 0.5), 1)
	errs = append(errs, e)
	_, e = idx.RemoveKeys(geom.Pt(0.5, 0.5))
	errs = append(errs, e)
	_, e = idx.RemoveValue(1)
	errs = append(errs, e)
	_, e = idx.RemoveValueHinted(1, Everything)
	errs = append(errs, e)

	for _, err := range errs {
		assert.ErrorIs(t, err, common.ErrUnsupported)
		assert.True(t, errors.Is(err, errors.ErrUnsupported))
		var uoe *common.UnsupportedOperationError
		assert.ErrorAs(t, err, &uoe)
	}
	assert.Equal(t, 1, tr.Size())
	assert.True(t, tr.Contains(geom.Pt(0.5, 0.5), 1))
}

func TestBuildRejectsOutOfBounds(t *testing.T) {
	_, err := Build(unit, 4, []Entry[geom.Point, int]{
		NewEntry(geom.Pt(0.5, 0.5), 1),
		NewEntry(geom.Pt(-0.5, 0.5), 2),
	})
	assert.ErrorIs(t, err, common.ErrOutOfBounds)
}

func TestScenarioCopyAndDrain(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 42))
	pts := randomPoints(rng, 500)
	tr := pointTree(t, 5, pts)
	require.Equal(t, 500, tr.Size())
	require.NoError(t, tr.CheckIntegrity())

	cp, err := NewMutableFrom[geom.Point, int](tr, 5)
	require.NoError(t, err)
	assert.True(t, cp.Bounds().Same(tr.Bounds()))
	assert.Equal(t, 500, cp.Size())
	for _, e := range tr.Entries() {
		assert.True(t, cp.Contains(e.Key, e.Value))
	}

	for _, p := range pts {
		_, err := cp.Remove(p)
		require.NoError(t, err)
	}
	assert.True(t, cp.IsEmpty())
	assert.Empty(t, cp.Entries())
	assert.Equal(t, 500, tr.Size())
}

func TestCopyWithDifferentNodeSize(t *testing.T) {
	rng := rand.New(rand.NewPCG(14, 15))
	src := pointTree(t, 2, randomPoints(rng, 200))

	cp, err := From[geom.Point, int](src, 50)
	require.NoError(t, err)
	assert.Equal(t, 50, cp.MaxNodeSize())
	assert.ElementsMatch(t, src.Entries(), cp.Entries())
	assert.Less(t, cp.Stats().Nodes, src.Stats().Nodes)
	require.NoError(t, cp.CheckIntegrity())
}

func TestZOrderBuildMatches(t *testing.T) {
	rng := rand.New(rand.NewPCG(16, 17))
	var entries []Entry[geom.Point, int]
	for i, p := range randomPoints(rng, 300) {
		entries = append(entries, NewEntry(p, i))
	}

	plain, err := Build(unit, 4, entries)
	require.NoError(t, err)
	zo, err := Build(unit, 4, entries, WithZOrder())
	require.NoError(t, err)

	assert.ElementsMatch(t, plain.Entries(), zo.Entries())
	require.NoError(t, zo.CheckIntegrity())
}

func TestBoxKeys(t *testing.T) {
	rng := rand.New(rand.NewPCG(18, 19))
	boxes := randomBoxes(rng, 200, 0.2)
	tr, err := NewMutable[geom.Box, int](unit, 4)
	require.NoError(t, err)
	for i, b := range boxes {
		require.NoError(t, tr.Insert(b, i))
	}
	require.NoError(t, tr.CheckIntegrity())

	for i, b := range boxes {
		assert.True(t, tr.Contains(b, i))
	}

	q := geom.Box2(0.2, 0.2, 0.6, 0.6)
	var want []int
	for i, b := range boxes {
		if b.Within(q) {
			want = append(want, i)
		}
	}
	var got []int
	for _, e := range tr.SearchWithin(q) {
		got = append(got, e.Value)
	}
	assert.ElementsMatch(t, want, got)

	err = tr.Insert(geom.Box2(0.5, 0.5, 1.5, 0.7), -1)
	assert.ErrorIs(t, err, common.ErrOutOfBounds)

	removed, err := tr.Remove(boxes[0])
	require.NoError(t, err)
	assert.Contains(t, removed, 0)
	require.NoError(t, tr.CheckIntegrity())
}

func TestOctTree(t *testing.T) {
	rng := rand.New(rand.NewPCG(20, 21))
	bounds := geom.Box3(-10, -10, -10, 10, 10, 10)
	tr, err := NewMutable[geom.Point, int](bounds, 8)
	require.NoError(t, err)

	pts := make([]geom.Point, 1000)
	for i := range pts {
		pts[i] = geom.Pt3(rng.Float64()*20-10, rng.Float64()*20-10, rng.Float64()*20-10)
		require.NoError(t, tr.Insert(pts[i], i))
	}
	require.NoError(t, tr.CheckIntegrity())
	assert.Equal(t, 1000, tr.Size())

	center := geom.Pt3(1, 2, 3)
	var want []int
	for i, p := range pts {
		if d, _ := p.Distance(center); d <= 4 {
			want = append(want, i)
		}
	}
	var got []int
	for _, e := range tr.SearchRadius(center, 4) {
		got = append(got, e.Value)
	}
	assert.ElementsMatch(t, want, got)

	_, err = tr.RemoveKeys(pts...)
	require.NoError(t, err)
	assert.True(t, tr.IsEmpty())
}

func TestStats(t *testing.T) {
	tr := pointTree(t, 4, []geom.Point{
		geom.Pt(0, 0), geom.Pt(0.01, 0.01), geom.Pt(0.02, 0.02), geom.Pt(0.03, 0.03), geom.Pt(0.03, 0.03),
	})
	s := tr.Stats()
	assert.Equal(t, 5, s.Entries)
	assert.Equal(t, tr.root.nodeCount(), s.Nodes)
	assert.Equal(t, tr.root.depth(), s.Depth)
	assert.LessOrEqual(t, s.LargestNode, 4)
}
