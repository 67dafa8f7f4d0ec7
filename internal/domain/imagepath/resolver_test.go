package imagepath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"nested path", "static/uploads/abc.jpg", "abc.jpg"},
		{"leading slash", "/uploads/x.png", "x.png"},
		{"no separator", "board.jpg", "board.jpg"},
		{"trailing slash", "static/uploads/", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Basename(tt.input))
		})
	}
}

func TestCandidates(t *testing.T) {
	t.Run("full fallback order", func(t *testing.T) {
		got := Candidates("static/uploads/abc.jpg", "")
		assert.Equal(t, []string{
			"/static/uploads/abc.jpg",
			"/uploads/abc.jpg",
			"/src/static/uploads/abc.jpg",
			DefaultPlaceholder,
		}, got, "duplicate of the rooted path is dropped")
	})

	t.Run("legacy src prefix", func(t *testing.T) {
		got := Candidates("src/static/uploads/abc.jpg", "/ph.svg")
		assert.Equal(t, []string{
			"/src/static/uploads/abc.jpg",
			"/static/uploads/abc.jpg",
			"/uploads/abc.jpg",
			"/ph.svg",
		}, got)
	})

	t.Run("bare filename", func(t *testing.T) {
		got := Candidates("abc.jpg", "")
		assert.Equal(t, []string{
			"/abc.jpg",
			"/static/uploads/abc.jpg",
			"/uploads/abc.jpg",
			"/src/static/uploads/abc.jpg",
			DefaultPlaceholder,
		}, got)
	})

	t.Run("absent path", func(t *testing.T) {
		assert.Equal(t, []string{DefaultPlaceholder}, Candidates("  ", ""))
	})

	for _, path := range []string{"", "a", "a/b/c.png", "/static/images/placeholder.svg", "uploads/"} {
		cands := Candidates(path, "")
		require.NotEmpty(t, cands)
		assert.Equal(t, DefaultPlaceholder, cands[len(cands)-1], "path %q", path)

		seen := map[string]bool{}
		for _, c := range cands {
			assert.False(t, seen[c], "duplicate candidate %q for %q", c, path)
			seen[c] = true
		}
	}
}

func TestResolver_AdvancesUntilPlaceholder(t *testing.T) {
	r := NewResolver("static/uploads/abc.jpg", "")
	cands := r.Candidates()
	require.Len(t, cands, 4)

	assert.Equal(t, cands[0], r.Current())
	assert.False(t, r.Done())

	for i := 1; i < len(cands); i++ {
		next, ok := r.Fail()
		require.True(t, ok)
		assert.Equal(t, cands[i], next)
		assert.Equal(t, cands[i], r.Current(), "bound source never stays on a failed URL")
	}

	assert.True(t, r.Terminal())
	assert.Equal(t, AltNotAvailable, r.Bind("Board").Alt)

	next, ok := r.Fail()
	assert.False(t, ok)
	assert.Equal(t, DefaultPlaceholder, next)
	assert.True(t, r.Done())
	assert.True(t, r.Exhausted())
	assert.False(t, r.Loaded())

	// further failures are absorbed
	next, ok = r.Fail()
	assert.False(t, ok)
	assert.Equal(t, DefaultPlaceholder, next)

	attempts := r.Attempts()
	require.Len(t, attempts, 4)
	assert.Equal(t, OutcomeFailed, attempts[0].Outcome)
	assert.Equal(t, OutcomePlaceholder, attempts[3].Outcome)
}

func TestResolver_SucceedStops(t *testing.T) {
	r := NewResolver("x/y.png", "")
	_, ok := r.Fail()
	require.True(t, ok)
	r.Succeed()

	assert.True(t, r.Loaded())
	assert.True(t, r.Done())
	assert.Equal(t, "/static/uploads/y.png", r.Current())

	cur, ok := r.Fail()
	assert.False(t, ok)
	assert.Equal(t, "/static/uploads/y.png", cur)

	attempts := r.Attempts()
	require.Len(t, attempts, 2)
	assert.Equal(t, OutcomeLoaded, attempts[1].Outcome)
}

func TestBind(t *testing.T) {
	t.Run("absent path binds placeholder", func(t *testing.T) {
		b := Bind("", "Board A", "")
		assert.Equal(t, DefaultPlaceholder, b.Src)
		assert.Equal(t, AltNoImage, b.Alt)
	})

	t.Run("declared path binds first candidate", func(t *testing.T) {
		b := Bind("static/uploads/a.jpg", "Board A", "")
		assert.Equal(t, "/static/uploads/a.jpg", b.Src)
		assert.Equal(t, "Board A", b.Alt)
		assert.Len(t, b.Candidates, 4)
	})
}
