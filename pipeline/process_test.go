package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	fitapp "github.com/juan-esteban-berger/fit-app"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fptr(v float64) *float64 { return &v }
func iptr(v int64) *int64     { return &v }

func runDoc(id, start string, speeds ...float64) fitapp.Document {
	t0, err := time.Parse(fitapp.QueryLayout, start)
	if err != nil {
		t0 = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	}
	doc := fitapp.Document{
		ID: id,
		SessionMesgs: []fitapp.SessionMesg{{
			Sport: "running", SubSport: "trail", StartTime: start,
			TotalDistance: fptr(5000), TotalElapsedTime: fptr(1500), EnhancedAvgSpeed: fptr(3.3),
		}},
	}
	for i, s := range speeds {
		doc.RecordMesgs = append(doc.RecordMesgs, fitapp.RecordMesg{
			Timestamp:        t0.Add(time.Duration(i) * time.Second).Format(fitapp.QueryLayout),
			EnhancedSpeed:    fptr(s),
			EnhancedAltitude: fptr(100 + float64(i)),
			PositionLat:      iptr(int64(i+1) << 20),
			PositionLong:     iptr(int64(i+1) << 21),
		})
	}
	return doc
}

func TestProcessPartialFailure(t *testing.T) {
	docs := []fitapp.Document{
		runDoc("first", "2024-06-01T08:00:00", 2.5, 3),
		runDoc("broken", "yesterday-ish", 4),
		runDoc("third", "2024-06-01T18:00:00", 5),
	}
	logger, hook := test.NewNullLogger()
	runID := uuid.New()

	res := Process(context.Background(), docs, time.UTC, Options{Logger: logger, RunID: runID})

	require.Len(t, res.Activities, 2)
	assert.Equal(t, "first", res.Activities[0].ID)
	assert.Equal(t, "third", res.Activities[1].ID)

	require.Len(t, res.Diagnostics, 1)
	diag := res.Diagnostics[0]
	assert.Equal(t, 1, diag.Index)
	assert.Equal(t, "broken", diag.ActivityID)
	assert.Equal(t, "malformed_timestamp", diag.Kind)
	assert.Equal(t, "session_mesgs[0].start_time", diag.Field)

	require.Len(t, hook.Entries, 1)
	entry := hook.LastEntry()
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "broken", entry.Data["activity_id"])
	assert.Equal(t, "session_mesgs[0].start_time", entry.Data["field"])
	assert.Equal(t, runID.String(), entry.Data["run_id"])
}

func TestProcessRendersEachActivityFromItsOwnRecords(t *testing.T) {
	docs := []fitapp.Document{
		runDoc("a", "2024-06-01T08:00:00", 2.5, 5),
		runDoc("b", "2024-06-01T09:00:00", 4, 4, 4),
	}
	logger, _ := test.NewNullLogger()
	res := Process(context.Background(), docs, time.UTC, Options{Logger: logger})
	require.Len(t, res.Activities, 2)

	paceA, ok := res.Activities[0].Derivation.Channel(fitapp.ChannelPace)
	require.True(t, ok)
	paceB, ok := res.Activities[1].Derivation.Channel(fitapp.ChannelPace)
	require.True(t, ok)

	require.Len(t, paceA.Values, 2)
	require.Len(t, paceB.Values, 3)
	assert.InDelta(t, 1000/2.5/60, paceA.Values[0], 1e-12)
	assert.InDelta(t, 1000/4.0/60, paceB.Values[0], 1e-12)

	assert.Equal(t, 9, res.Activities[1].Derivation.Timestamps[0].Hour())
	require.NotNil(t, res.Activities[1].Path)
	assert.Len(t, res.Activities[1].Path.Points, 3)
}

func TestProcessLocalizesInRequestedZone(t *testing.T) {
	loc, err := fitapp.LoadLocation("America/Denver")
	require.NoError(t, err)
	logger, _ := test.NewNullLogger()

	res := Process(context.Background(), []fitapp.Document{runDoc("a", "2024-06-01T10:00:00", 3)}, loc, Options{Logger: logger})
	require.Len(t, res.Activities, 1)
	a := res.Activities[0]
	assert.Equal(t, "2024-06-01 04:00:00_running_trail", a.Session.Title)
	assert.Equal(t, "America/Denver", res.Timezone)
	for _, ts := range a.Derivation.Timestamps {
		assert.Equal(t, loc, ts.Location())
	}
}

func TestProcessDefaultVariantRendersNothingFurther(t *testing.T) {
	doc := runDoc("swim", "2024-06-01T07:00:00", 1)
	doc.SessionMesgs[0].Sport = "swimming"
	doc.SessionMesgs[0].SubSport = "lap_swimming"
	doc.SessionMesgs[0].TotalDistance = nil
	logger, _ := test.NewNullLogger()

	res := Process(context.Background(), []fitapp.Document{doc}, time.UTC, Options{Logger: logger})
	require.Len(t, res.Activities, 1)
	assert.Empty(t, res.Diagnostics)
	a := res.Activities[0]
	assert.Equal(t, fitapp.VariantDefault, a.Derivation.Variant)
	assert.Empty(t, a.Derivation.Card)
	assert.Empty(t, a.Derivation.Series)
	assert.Nil(t, a.Path)
}

func TestProcessMissingRequiredSessionField(t *testing.T) {
	doc := runDoc("short", "2024-06-01T07:00:00", 1)
	doc.SessionMesgs[0].TotalDistance = nil
	logger, _ := test.NewNullLogger()

	res := Process(context.Background(), []fitapp.Document{doc}, time.UTC, Options{Logger: logger})
	assert.Empty(t, res.Activities)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, "validation", res.Diagnostics[0].Kind)
	assert.Equal(t, "session_mesgs[0].total_distance", res.Diagnostics[0].Field)
}

type countingCache struct {
	Cache
	gets, hits int
}

func (c *countingCache) Get(ctx context.Context, key string) (*RenderedActivity, bool, error) {
	c.gets++
	r, ok, err := c.Cache.Get(ctx, key)
	if ok {
		c.hits++
	}
	return r, ok, err
}

func TestProcessUsesRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	loc, err := fitapp.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	cache := &countingCache{Cache: NewRedisCache(client, time.Hour)}
	logger, _ := test.NewNullLogger()
	docs := []fitapp.Document{runDoc("cached", "2024-06-01T10:00:00", 3, 0), runDoc("", "2024-06-01T11:00:00", 3)}

	first := Process(context.Background(), docs, loc, Options{Logger: logger, Cache: cache})
	require.Len(t, first.Activities, 2)
	assert.True(t, mr.Exists(CacheKey("cached", loc)))
	assert.Equal(t, 1, cache.gets)
	assert.Equal(t, 0, cache.hits)

	second := Process(context.Background(), docs, loc, Options{Logger: logger, Cache: cache})
	require.Len(t, second.Activities, 2)
	assert.Equal(t, 2, cache.gets)
	assert.Equal(t, 1, cache.hits)

	got := second.Activities[0]
	want := first.Activities[0]
	assert.Equal(t, want.Session.Title, got.Session.Title)
	assert.Equal(t, want.Derivation.Card, got.Derivation.Card)
	assert.Equal(t, loc, got.Derivation.Timestamps[0].Location())
	assert.True(t, want.Derivation.Timestamps[1].Equal(got.Derivation.Timestamps[1]))

	pace, _ := got.Derivation.Channel(fitapp.ChannelPace)
	assert.Equal(t, 0.0, pace.Values[1])
}

func TestRedisCacheMissAndTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	cache := NewRedisCache(client, time.Minute)
	ctx := context.Background()

	_, ok, err := cache.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Set(ctx, "k", &RenderedActivity{ID: "x"}))
	assert.Equal(t, time.Minute, mr.TTL("k"))

	mr.FastForward(2 * time.Minute)
	_, ok, err = cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, mr.Set("bad", "{not json"))
	_, _, err = cache.Get(ctx, "bad")
	assert.Error(t, err)
}
