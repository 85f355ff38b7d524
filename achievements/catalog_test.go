package achievements

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCatalog(t *testing.T) {
	require.NoError(t, ValidateCatalog())
}

func TestCatalogIDsUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, def := range All() {
		assert.False(t, seen[def.ID], "duplicate catalog id %s", def.ID)
		seen[def.ID] = true
	}
}

func TestCatalogDisplayOrder(t *testing.T) {
	// All() must already be in display order: category order, then
	// sort order within each category.
	lastCat := -1
	lastSort := 0
	for _, def := range All() {
		rank, ok := categoryRank[def.Category]
		require.True(t, ok, "%s: unknown category %s", def.ID, def.Category)
		if rank != lastCat {
			assert.Greater(t, rank, lastCat, "%s: category out of order", def.ID)
			lastCat = rank
			lastSort = 0
		}
		assert.Greater(t, def.SortOrder, lastSort, "%s: sort order out of order", def.ID)
		lastSort = def.SortOrder
	}
}

func TestByCategoryGroupsEverything(t *testing.T) {
	grouped := ByCategory()

	total := 0
	for _, defs := range grouped {
		total += len(defs)
	}
	assert.Equal(t, len(All()), total)

	for _, cat := range Categories() {
		assert.NotEmpty(t, grouped[cat], "category %s has no badges", cat)
	}
}

func TestByID(t *testing.T) {
	def, ok := ByID("first_session")
	require.True(t, ok)
	assert.Equal(t, "First Steps", def.Name)
	assert.Equal(t, KindSessionsCompleted, def.Criteria.Kind)
	assert.Equal(t, 1, def.Criteria.Threshold)

	_, ok = ByID("nope")
	assert.False(t, ok)
}
