package engagement

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rehaber/rehaber-backend/internal/content"
	"github.com/rehaber/rehaber-backend/testhelper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngagement(userID uuid.UUID, ref content.Ref, kind Kind, at time.Time) *Engagement {
	return &Engagement{
		ID:          uuid.New(),
		UserID:      userID,
		ContentID:   ref.ID,
		ContentType: ref.Type,
		Kind:        kind,
		CreatedAt:   at,
	}
}

func TestRepositoryInsertDelete(t *testing.T) {
	repo := NewRepository(testhelper.SetupTestDB(t))
	ctx := context.Background()
	user := uuid.New()
	ref := content.NewRef(uuid.New(), content.TypeVideo)
	key := Key{UserID: user, Ref: ref, Kind: KindLike}

	exists, err := repo.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)

	inserted, err := repo.Insert(ctx, newEngagement(user, ref, KindLike, time.Now().UTC()))
	require.NoError(t, err)
	assert.True(t, inserted)

	// the unique key absorbs a duplicate
	inserted, err = repo.Insert(ctx, newEngagement(user, ref, KindLike, time.Now().UTC()))
	require.NoError(t, err)
	assert.False(t, inserted)

	// a different kind on the same content is a separate row
	inserted, err = repo.Insert(ctx, newEngagement(user, ref, KindFavorite, time.Now().UTC()))
	require.NoError(t, err)
	assert.True(t, inserted)

	exists, err = repo.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	removed, err := repo.Delete(ctx, key)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.Delete(ctx, key)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestRepositoryCounts(t *testing.T) {
	repo := NewRepository(testhelper.SetupTestDB(t))
	ctx := context.Background()
	a := content.NewRef(uuid.New(), content.TypeComment)
	b := content.NewRef(uuid.New(), content.TypeComment)
	c := content.NewRef(uuid.New(), content.TypeComment)
	viewer := uuid.New()

	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		_, err := repo.Insert(ctx, newEngagement(uuid.New(), a, KindLike, now))
		require.NoError(t, err)
	}
	_, err := repo.Insert(ctx, newEngagement(viewer, b, KindLike, now))
	require.NoError(t, err)

	count, err := repo.Count(ctx, a, KindLike)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	counts, err := repo.CountMany(ctx, content.TypeComment, KindLike, []uuid.UUID{a.ID, b.ID, c.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(3), counts[a.ID])
	assert.Equal(t, int64(1), counts[b.ID])
	assert.Zero(t, counts[c.ID])

	engaged, err := repo.EngagedIDs(ctx, viewer, content.TypeComment, KindLike, []uuid.UUID{a.ID, b.ID})
	require.NoError(t, err)
	assert.Equal(t, map[uuid.UUID]bool{b.ID: true}, engaged)

	empty, err := repo.CountMany(ctx, content.TypeComment, KindLike, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRepositoryListAndPurge(t *testing.T) {
	repo := NewRepository(testhelper.SetupTestDB(t))
	ctx := context.Background()
	user := uuid.New()
	video := content.NewRef(uuid.New(), content.TypeVideo)
	news := content.NewRef(uuid.New(), content.TypeNews)

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	_, err := repo.Insert(ctx, newEngagement(user, video, KindFavorite, base))
	require.NoError(t, err)
	_, err = repo.Insert(ctx, newEngagement(user, news, KindFavorite, base.Add(time.Minute)))
	require.NoError(t, err)
	_, err = repo.Insert(ctx, newEngagement(user, news, KindLike, base.Add(2*time.Minute)))
	require.NoError(t, err)

	all, err := repo.ListByUser(ctx, user, KindFavorite, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, news, all[0].Ref())
	assert.Equal(t, video, all[1].Ref())

	videos, err := repo.ListByUser(ctx, user, KindFavorite, content.TypeVideo)
	require.NoError(t, err)
	require.Len(t, videos, 1)
	assert.Equal(t, video.ID, videos[0].ContentID)

	removed, err := repo.DeleteByContent(ctx, news)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	all, err = repo.ListByUser(ctx, user, KindFavorite, "")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
