package packagestats

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/SlpAus/sistatistics-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 每次运行使用新的题包ID，避免与之前残留的数据冲突
func freshPackageID() uint {
	return uint(time.Now().UnixNano()%1_000_000_000) + 1
}

func TestPostgresConcurrentMerge(t *testing.T) {
	db := testutil.PostgresDB(t, Models()...)
	const writers = 16
	repo := NewRepository(db, writers+1, nil)
	ctx := context.Background()
	id := freshPackageID()

	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- repo.Merge(ctx, nil, id, completed(1, map[string]QuestionStats{"q": {PlayerSeenCount: 2}}))
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := repo.Load(ctx, nil, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, writers, got.TopLevelStats.CompletedGameCount)
	assert.Equal(t, 2*writers, got.QuestionStats["q"].PlayerSeenCount)
}

func TestPostgresUncommittedMergeIsInvisible(t *testing.T) {
	db := testutil.PostgresDB(t, Models()...)
	repo := NewRepository(db, 3, nil)
	ctx := context.Background()
	id := freshPackageID()

	tx := testutil.Tx(t, db)
	require.NoError(t, repo.Merge(ctx, tx, id, completed(4, nil)))

	inside, err := repo.Load(ctx, tx, id)
	require.NoError(t, err)
	require.NotNil(t, inside)
	assert.Equal(t, 4, inside.TopLevelStats.CompletedGameCount)

	outside, err := repo.Load(ctx, nil, id)
	require.NoError(t, err)
	assert.Nil(t, outside)
}
