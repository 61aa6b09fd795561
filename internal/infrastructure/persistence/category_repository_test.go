package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sisl/eshop/internal/domain/catalog"
	"github.com/sisl/eshop/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildTree creates Drives -> Inverters -> Compact, plus an unrelated PLC root
func buildTree(t *testing.T, repo *GormCategoryRepository) (drives, inverters, compact, plc *catalog.Category) {
	t.Helper()
	ctx := context.Background()

	var err error
	drives, err = catalog.NewCategory("Drives", nil)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, drives))

	inverters, err = catalog.NewCategory("Inverters", &drives.ID)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, inverters))

	compact, err = catalog.NewCategory("Compact", &inverters.ID)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, compact))

	plc, err = catalog.NewCategory("PLC", nil)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, plc))
	return
}

func TestGormCategoryRepository_FindByName(t *testing.T) {
	repo := NewGormCategoryRepository(setupTestDB(t))
	ctx := context.Background()
	_, _, _, plc := buildTree(t, repo)

	found, err := repo.FindByName(ctx, "plc")
	require.NoError(t, err)
	assert.Equal(t, plc.ID, found.ID)

	_, err = repo.FindByName(ctx, "HMI")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormCategoryRepository_Tree(t *testing.T) {
	repo := NewGormCategoryRepository(setupTestDB(t))
	ctx := context.Background()
	drives, inverters, compact, plc := buildTree(t, repo)

	t.Run("roots are ordered by name", func(t *testing.T) {
		roots, err := repo.FindRoots(ctx)
		require.NoError(t, err)
		require.Len(t, roots, 2)
		assert.Equal(t, drives.ID, roots[0].ID)
		assert.Equal(t, plc.ID, roots[1].ID)
	})

	t.Run("children", func(t *testing.T) {
		children, err := repo.FindChildren(ctx, drives.ID)
		require.NoError(t, err)
		require.Len(t, children, 1)
		assert.Equal(t, inverters.ID, children[0].ID)
		require.NotNil(t, children[0].ParentID)
		assert.Equal(t, drives.ID, *children[0].ParentID)
	})

	t.Run("lineage walks to the root", func(t *testing.T) {
		lineage, err := repo.FindLineage(ctx, compact.ID)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{compact.ID, inverters.ID, drives.ID}, lineage)
	})

	t.Run("lineage of unknown category", func(t *testing.T) {
		_, err := repo.FindLineage(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("subtree includes root and descendants", func(t *testing.T) {
		ids, err := repo.FindSubtreeIDs(ctx, drives.ID)
		require.NoError(t, err)
		assert.ElementsMatch(t, []uuid.UUID{drives.ID, inverters.ID, compact.ID}, ids)
	})

	t.Run("leaf subtree is itself", func(t *testing.T) {
		ids, err := repo.FindSubtreeIDs(ctx, plc.ID)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{plc.ID}, ids)
	})
}

func TestGormCategoryRepository_ExistsByName(t *testing.T) {
	repo := NewGormCategoryRepository(setupTestDB(t))
	ctx := context.Background()
	drives, _, _, _ := buildTree(t, repo)

	exists, err := repo.ExistsByName(ctx, "DRIVES", nil)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByName(ctx, "Drives", &drives.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = repo.ExistsByName(ctx, "Servo", nil)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGormCategoryRepository_SaveDuplicateName(t *testing.T) {
	repo := NewGormCategoryRepository(setupTestDB(t))
	ctx := context.Background()
	buildTree(t, repo)

	dup, err := catalog.NewCategory("PLC", nil)
	require.NoError(t, err)

	err = repo.Save(ctx, dup)
	requireDomainCode(t, err, "CATEGORY_NAME_EXISTS")
}

func TestGormCategoryRepository_FindAllAndCount(t *testing.T) {
	repo := NewGormCategoryRepository(setupTestDB(t))
	ctx := context.Background()
	drives, _, _, _ := buildTree(t, repo)

	tests := []struct {
		name   string
		filter shared.Filter
		want   []string
	}{
		{
			name:   "all by name",
			filter: shared.Filter{OrderBy: "name", OrderDir: "asc"},
			want:   []string{"Compact", "Drives", "Inverters", "PLC"},
		},
		{
			name:   "search is case-insensitive",
			filter: shared.Filter{Search: "VERT"},
			want:   []string{"Inverters"},
		},
		{
			name:   "by parent",
			filter: shared.Filter{Filters: map[string]interface{}{"parent_id": drives.ID}},
			want:   []string{"Inverters"},
		},
		{
			name:   "paged",
			filter: shared.Filter{Page: 2, PageSize: 3, OrderBy: "name", OrderDir: "asc"},
			want:   []string{"PLC"},
		},
		{
			name:   "wildcards are literal",
			filter: shared.Filter{Search: "%"},
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			categories, err := repo.FindAll(ctx, tt.filter)
			require.NoError(t, err)
			names := make([]string, 0, len(categories))
			for _, c := range categories {
				names = append(names, c.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}

	count, err := repo.Count(ctx, shared.Filter{Search: "i"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestGormCategoryRepository_DeleteSubtree(t *testing.T) {
	repo := NewGormCategoryRepository(setupTestDB(t))
	ctx := context.Background()
	_, inverters, compact, plc := buildTree(t, repo)

	require.NoError(t, repo.DeleteSubtree(ctx, inverters.ID))

	_, err := repo.FindByID(ctx, inverters.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	_, err = repo.FindByID(ctx, compact.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = repo.FindByID(ctx, plc.ID)
	assert.NoError(t, err)

	err = repo.DeleteSubtree(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
