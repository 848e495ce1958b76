package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qbuilder/internal/testutil"
)

func TestLogRequest_ListNewestFirst(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for i, id := range []string{"r1", "r2", "r3"} {
		require.NoError(t, s.LogRequest(ctx, RequestRecord{
			ID:          id,
			SessionID:   "sess",
			Model:       "Sales",
			Query:       "EVALUATE\n{ BLANK() }\n",
			Risky:       i == 1,
			Confirmed:   i == 1,
			RequestedAt: testutil.Epoch.Add(time.Duration(i) * time.Minute),
		}))
	}

	recs, err := s.ListRequests(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "r3", recs[0].ID)
	assert.Equal(t, "r1", recs[2].ID)
	assert.Greater(t, recs[0].Seq, recs[1].Seq)

	assert.Equal(t, RequestRecord{
		Seq:         recs[1].Seq,
		ID:          "r2",
		SessionID:   "sess",
		Model:       "Sales",
		Query:       "EVALUATE\n{ BLANK() }\n",
		Risky:       true,
		Confirmed:   true,
		RequestedAt: testutil.Epoch.Add(time.Minute),
	}, recs[1])

	recs, err = s.ListRequests(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "r3", recs[0].ID)
	assert.Equal(t, "r2", recs[1].ID)
}

func TestLogRequest_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	rec := RequestRecord{ID: "dup", Query: "first", RequestedAt: testutil.Epoch}
	require.NoError(t, s.LogRequest(ctx, rec))
	rec.Query = "second"
	require.NoError(t, s.LogRequest(ctx, rec))

	recs, err := s.ListRequests(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "first", recs[0].Query)
}

func TestLogRequest_RequiresID(t *testing.T) {
	s := createTestStore(t)
	assert.Error(t, s.LogRequest(context.Background(), RequestRecord{Query: "q"}))
}

func TestListRequests_Empty(t *testing.T) {
	s := createTestStore(t)
	recs, err := s.ListRequests(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
}
