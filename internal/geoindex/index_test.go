package geoindex

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/banshee-data/geohash/internal/config"
	"github.com/banshee-data/geohash/internal/monitoring"
	"github.com/banshee-data/geohash/internal/testutil"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func identityFrame(t *testing.T) Frame {
	t.Helper()
	f, err := BuildFrame(Point{}, Point{X: 1}, Point{Y: 1})
	require.NoError(t, err)
	return f
}

func TestNew_InvalidBinSize(t *testing.T) {
	for _, bs := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err := New(bs, 0)
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("New(%g): expected ErrInvalidInput, got %v", bs, err)
		}
	}
}

func TestNew_InvalidOptions(t *testing.T) {
	_, err := New(1, 0, WithBinPolicy(BinPolicy(7)))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = New(1, 0, WithColinearThreshold(-1))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = New(1, math.NaN())
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestNew_Accessors(t *testing.T) {
	g, err := New(0.5, 3, WithBinPolicy(BinFloor), WithColinearThreshold(0.2))
	require.NoError(t, err)

	assert.Equal(t, 0.5, g.BinSize())
	assert.Equal(t, 3.0, g.Thresh())
	assert.Equal(t, BinFloor, g.Policy())
	assert.Equal(t, 0, g.FrameCount())

	// Threshold option reaches the method form of BuildFrame.
	_, err = g.BuildFrame(Point{}, Point{X: 0.5}, Point{Y: 0.5})
	assert.NoError(t, err)
}

func TestNewFromConfig(t *testing.T) {
	defer monitoring.SetDebug(false)

	cfg := config.DefaultIndexConfig()
	*cfg.BinSize = 2
	*cfg.BinPolicy = config.BinPolicyFloor
	*cfg.Thresh = 4

	g, err := NewFromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, 2.0, g.BinSize())
	assert.Equal(t, BinFloor, g.Policy())
	assert.Equal(t, 4.0, g.Thresh())

	g, err = NewFromConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, g.BinSize())
	assert.Equal(t, BinTruncate, g.Policy())

	bad := config.EmptyIndexConfig()
	zero := 0.0
	bad.BinSize = &zero
	_, err = NewFromConfig(bad)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestNewFromConfig_DefaultsFile(t *testing.T) {
	g, err := NewFromConfig(config.MustLoadDefaultConfig())
	require.NoError(t, err)
	assert.True(t, g.IsEmpty())
}

func TestIsEmpty_Lifecycle(t *testing.T) {
	g, err := New(1.0, 0)
	require.NoError(t, err)
	assert.True(t, g.IsEmpty(), "empty after construction")

	_, err = g.Insert(identityFrame(t), testutil.Cube(Point{}, 1))
	require.NoError(t, err)
	assert.False(t, g.IsEmpty(), "not empty after insert")

	g.Clear()
	assert.True(t, g.IsEmpty(), "empty after clear")
	assert.Equal(t, 0, g.FrameCount())
	assert.Equal(t, IndexStats{}, g.Stats())
	_, ok := g.Frame(0)
	assert.False(t, ok)
}

func TestInsert_EmptyPointSetStillAssignsID(t *testing.T) {
	g, err := New(1.0, 0)
	require.NoError(t, err)

	local, err := g.Insert(identityFrame(t), nil)
	require.NoError(t, err)
	assert.Empty(t, local)
	assert.False(t, g.IsEmpty())
	assert.Equal(t, 1, g.FrameCount())
}

func TestInsert_SequentialIDs(t *testing.T) {
	g, err := New(1.0, 0)
	require.NoError(t, err)

	pts := []Point{{X: 5.5, Y: 5.5, Z: 5.5}}
	for i := 0; i < 5; i++ {
		before := g.FrameCount()
		_, err := g.Insert(identityFrame(t), pts)
		require.NoError(t, err)
		assert.Equal(t, before+1, g.FrameCount())

		_, ok := g.Frame(FrameID(i))
		assert.True(t, ok, "frame %d stored", i)
	}

	ids, ok := g.Lookup(pts[0])
	require.True(t, ok)
	if diff := cmp.Diff([]FrameID{0, 1, 2, 3, 4}, ids); diff != "" {
		t.Errorf("bin IDs mismatch (-want +got):\n%s", diff)
	}

	// IDs restart at zero after Clear.
	g.Clear()
	_, err = g.Insert(identityFrame(t), pts)
	require.NoError(t, err)
	ids, ok = g.Lookup(pts[0])
	require.True(t, ok)
	assert.Equal(t, []FrameID{0}, ids)
}

func TestInsert_LookupRoundTrip(t *testing.T) {
	g, err := New(0.75, 0)
	require.NoError(t, err)

	model := testutil.Rotate(testutil.Cube(Point{X: 1, Y: -2, Z: 0.3}, 3), Point{X: 0.3, Y: 1, Z: -0.4}, 1.1)
	f0, err := g.BuildFrame(model[0], model[1], model[2])
	require.NoError(t, err)
	f1, err := g.BuildFrame(model[7], model[4], model[2])
	require.NoError(t, err)

	for want, f := range []Frame{f0, f1} {
		local, err := g.Insert(f, model)
		require.NoError(t, err)
		require.Len(t, local, len(model))

		for i, x := range local {
			testutil.AssertVecNear(t, f.ToWorld(x), model[i], 1e-9)

			ids, ok := g.Lookup(x)
			require.True(t, ok, "point %d", i)
			assert.Contains(t, ids, FrameID(want), "point %d", i)
		}
	}
}

func TestInsert_DuplicateEntriesInOneBin(t *testing.T) {
	g, err := New(1.0, 0)
	require.NoError(t, err)

	// Both points fall in bin (0,0,0).
	_, err = g.Insert(identityFrame(t), []Point{{X: 0.1, Y: 0.1, Z: 0.1}, {X: 0.9, Y: 0.2, Z: 0.3}})
	require.NoError(t, err)

	ids, ok := g.Lookup(Point{X: 0.5, Y: 0.5, Z: 0.5})
	require.True(t, ok)
	assert.Equal(t, []FrameID{0, 0}, ids)
	assert.Equal(t, []FrameID{0}, g.DistinctFrames(Point{X: 0.5, Y: 0.5, Z: 0.5}))

	s := g.Stats()
	assert.Equal(t, IndexStats{Frames: 1, Bins: 1, Entries: 2, DistinctFrames: 1, MaxBinLoad: 2}, s)
}

func TestLookup_NotFound(t *testing.T) {
	g, err := New(1.0, 0)
	require.NoError(t, err)

	ids, ok := g.Lookup(Point{X: 3, Y: 3, Z: 3})
	assert.False(t, ok)
	assert.Nil(t, ids)
	assert.Nil(t, g.DistinctFrames(Point{X: 3, Y: 3, Z: 3}))

	_, err = g.Insert(identityFrame(t), []Point{{X: 0.5, Y: 0.5, Z: 0.5}})
	require.NoError(t, err)

	_, ok = g.Lookup(Point{X: 3, Y: 3, Z: 3})
	assert.False(t, ok)
	_, ok = g.LookupKey(BinKey{})
	assert.True(t, ok)
}

func TestLookup_ReturnsCopy(t *testing.T) {
	g, err := New(1.0, 0)
	require.NoError(t, err)
	_, err = g.Insert(identityFrame(t), []Point{{X: 0.5}})
	require.NoError(t, err)

	ids, _ := g.Lookup(Point{X: 0.5})
	ids[0] = 42

	again, _ := g.Lookup(Point{X: 0.5})
	assert.Equal(t, []FrameID{0}, again)
}

func TestInsert_RejectsBadInputWithoutMutation(t *testing.T) {
	g, err := New(1.0, 0)
	require.NoError(t, err)

	_, err = g.Insert(Frame{}, []Point{{X: 1}})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = g.Insert(identityFrame(t), []Point{{X: 1}, {Y: math.Inf(-1)}})
	assert.ErrorIs(t, err, ErrInvalidInput)

	singular, err := FrameFromMatrix(mat.NewDense(3, 3, []float64{1, 2, 3, 1, 2, 3, 0, 0, 1}))
	require.NoError(t, err)
	_, err = g.Insert(singular, []Point{{X: 1}})
	assert.ErrorIs(t, err, ErrSingularFrame)

	assert.True(t, g.IsEmpty())
	assert.Equal(t, IndexStats{}, g.Stats())
}

func TestStats_MultipleFrames(t *testing.T) {
	g, err := New(1.0, 0)
	require.NoError(t, err)

	_, err = g.Insert(identityFrame(t), []Point{{X: 0.5}, {X: 1.5}})
	require.NoError(t, err)
	_, err = g.Insert(identityFrame(t), []Point{{X: 0.5}, {X: 7.5}})
	require.NoError(t, err)

	s := g.Stats()
	assert.Equal(t, 2, s.Frames)
	assert.Equal(t, 3, s.Bins)
	assert.Equal(t, 4, s.Entries)
	assert.Equal(t, 2, s.DistinctFrames)
	assert.Equal(t, 2, s.MaxBinLoad)
}

func TestInsert_DebugLogsEveryPoint(t *testing.T) {
	original := monitoring.Logf
	defer func() {
		monitoring.Logf = original
		monitoring.SetDebug(false)
	}()

	var lines []string
	monitoring.SetLogger(func(format string, v ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, v...))
	})
	monitoring.SetDebug(true)

	g, err := New(1.0, 0)
	require.NoError(t, err)
	_, err = g.Insert(identityFrame(t), testutil.Cube(Point{}, 1))
	require.NoError(t, err)

	require.Len(t, lines, 8)
	assert.True(t, strings.Contains(lines[7], "bin=(1,1,1)"), "got %q", lines[7])
}
