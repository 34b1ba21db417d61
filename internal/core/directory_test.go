package core

import (
	"math/rand"
	"testing"

	"github.com/dkeye/meetsync/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectory_Merge(t *testing.T) {
	tcases := []struct {
		name     string
		seed     []domain.Candidate
		merge    domain.Candidate
		expected domain.Profile
		changed  bool
	}{
		{
			name:     "new entry",
			merge:    domain.Candidate{ID: "u1", Profile: domain.Profile{FirstName: "Ann"}},
			expected: domain.Profile{FirstName: "Ann"},
			changed:  true,
		},
		{
			name:     "placeholder keeps known fields",
			seed:     []domain.Candidate{{ID: "u1", Profile: domain.Profile{FirstName: "Ann", Email: "ann@example.com"}}},
			merge:    domain.Candidate{ID: "u1"},
			expected: domain.Profile{FirstName: "Ann", Email: "ann@example.com"},
			changed:  false,
		},
		{
			name:     "fills gaps",
			seed:     []domain.Candidate{{ID: "u1", Profile: domain.Profile{FirstName: "Ann"}}},
			merge:    domain.Candidate{ID: "u1", Profile: domain.Profile{LastName: "Lee"}},
			expected: domain.Profile{FirstName: "Ann", LastName: "Lee"},
			changed:  true,
		},
		{
			name:     "non-empty value replaces",
			seed:     []domain.Candidate{{ID: "u1", Profile: domain.Profile{FirstName: "Ann"}}},
			merge:    domain.Candidate{ID: "u1", Profile: domain.Profile{FirstName: "Anna"}},
			expected: domain.Profile{FirstName: "Anna"},
			changed:  true,
		},
		{
			name:     "blank value does not replace",
			seed:     []domain.Candidate{{ID: "u1", Profile: domain.Profile{FirstName: "Ann"}}},
			merge:    domain.Candidate{ID: "u1", Profile: domain.Profile{FirstName: "  "}},
			expected: domain.Profile{FirstName: "Ann"},
			changed:  false,
		},
		{
			name:     "same values are not a change",
			seed:     []domain.Candidate{{ID: "u1", Profile: domain.Profile{FirstName: "Ann"}}},
			merge:    domain.Candidate{ID: "u1", Profile: domain.Profile{FirstName: "Ann"}},
			expected: domain.Profile{FirstName: "Ann"},
			changed:  false,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			d := NewDirectory()
			d.Merge(tc.seed...)

			changed := d.Merge(tc.merge)
			assert.Equal(t, tc.changed, changed, "unexpected changed flag")

			p, _ := d.Lookup(tc.merge.ID)
			assert.Equal(t, tc.expected, p)
		})
	}
}

func TestDirectory_MergeIgnoresMissingID(t *testing.T) {
	d := NewDirectory()
	changed := d.Merge(domain.Candidate{Profile: domain.Profile{FirstName: "Ghost"}})
	assert.False(t, changed)
	assert.Equal(t, 0, d.Len())
}

func TestDirectory_PlaceholderForUnknownIDIsNotAWrite(t *testing.T) {
	d := NewDirectory()
	assert.False(t, d.Merge(domain.Candidate{ID: "u9"}))
	_, ok := d.Lookup("u9")
	assert.False(t, ok)
}

func TestDirectory_MergeIdempotent(t *testing.T) {
	batch := []domain.Candidate{
		{ID: "u1", Profile: domain.Profile{FirstName: "Ann"}},
		{ID: "u2", Profile: domain.Profile{Email: "bo@example.com"}},
		{ID: "u1", Profile: domain.Profile{LastName: "Lee"}},
	}

	once := NewDirectory()
	once.Merge(batch...)

	twice := NewDirectory()
	twice.Merge(batch...)
	assert.False(t, twice.Merge(batch...), "second merge should not report a change")

	assert.Equal(t, once.Snapshot(), twice.Snapshot())
}

func TestDirectory_MergeMonotonic(t *testing.T) {
	ids := []domain.UserID{"u1", "u2", "u3"}
	values := []string{"", "", "a", "b", "  "}
	rng := rand.New(rand.NewSource(42))

	d := NewDirectory()
	seen := make(map[domain.UserID]domain.Profile)

	for i := 0; i < 2000; i++ {
		c := domain.Candidate{
			ID: ids[rng.Intn(len(ids))],
			Profile: domain.Profile{
				FirstName: values[rng.Intn(len(values))],
				LastName:  values[rng.Intn(len(values))],
				Email:     values[rng.Intn(len(values))],
			},
		}
		d.Merge(c)

		p, _ := d.Lookup(c.ID)
		prev := seen[c.ID]
		if prev.FirstName != "" {
			require.NotEmpty(t, p.FirstName, "first name regressed at step %d", i)
		}
		if prev.LastName != "" {
			require.NotEmpty(t, p.LastName, "last name regressed at step %d", i)
		}
		if prev.Email != "" {
			require.NotEmpty(t, p.Email, "email regressed at step %d", i)
		}
		seen[c.ID] = p
	}
}

func TestDirectory_DisplayName(t *testing.T) {
	d := NewDirectory()
	d.Merge(
		domain.Candidate{ID: "u1", Profile: domain.Profile{FirstName: "Ann", LastName: "Lee"}},
		domain.Candidate{ID: "u2", Profile: domain.Profile{Email: "bo@example.com"}},
	)

	assert.Equal(t, "Ann Lee", d.DisplayName("u1"))
	assert.Equal(t, "bo@example.com", d.DisplayName("u2"))
	assert.Equal(t, PlaceholderName, d.DisplayName("u3"))

	assert.False(t, d.NeedsProfile("u1"))
	assert.True(t, d.NeedsProfile("u2"))
	assert.True(t, d.NeedsProfile("u3"))
}
