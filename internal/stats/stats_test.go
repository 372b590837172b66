package stats

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neo-mofox/webui/internal/domain"
)

type fixedMessages struct {
	domain.MessageRepository
	messages []domain.ChatMessage
	count    int
}

func (f *fixedMessages) Since(ctx context.Context, since float64) ([]domain.ChatMessage, error) {
	var out []domain.ChatMessage
	for _, m := range f.messages {
		if m.Time >= since {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fixedMessages) Count(ctx context.Context) (int, error) { return f.count, nil }

type fixedStreams struct {
	domain.StreamRepository
	count int
}

func (f *fixedStreams) Count(ctx context.Context) (int, error) { return f.count, nil }

type fixedPersons struct {
	domain.PersonRepository
	count int
}

func (f *fixedPersons) Count(ctx context.Context, platform string) (int, error) {
	return f.count, nil
}

func TestOverviewTotals(t *testing.T) {
	c := NewCollector(&fixedStreams{count: 3}, &fixedMessages{count: 42}, &fixedPersons{count: 2})

	ov := c.Overview(context.Background())
	assert.Equal(t, 42, ov.TotalMessages)
	assert.Equal(t, 3, ov.TotalStreams)
	assert.Equal(t, 2, ov.VirtualUsers)
	assert.Greater(t, ov.Goroutines, 0)
	assert.NotEmpty(t, ov.Uptime)
}

func TestMessageStatsBucketsByHour(t *testing.T) {
	now := time.Now()
	msgs := &fixedMessages{messages: []domain.ChatMessage{
		{Time: float64(now.Unix()), IsBot: true},
		{Time: float64(now.Unix()), IsBot: false},
		{Time: float64(now.Add(-time.Hour).Unix()), IsBot: false},
		{Time: float64(now.Add(-48 * time.Hour).Unix()), IsBot: false}, // outside window
	}}
	c := NewCollector(&fixedStreams{}, msgs, &fixedPersons{})

	buckets, err := c.MessageStats(context.Background(), 24)
	require.NoError(t, err)
	require.Len(t, buckets, 24)

	last := buckets[len(buckets)-1]
	assert.Equal(t, 1, last.Sent)
	assert.Equal(t, 1, last.Received)

	prev := buckets[len(buckets)-2]
	assert.Equal(t, 1, prev.Received)

	total := 0
	for _, b := range buckets {
		total += b.Sent + b.Received
	}
	assert.Equal(t, 3, total, "messages outside the window are excluded")
}

func TestMessageStatsClampsHours(t *testing.T) {
	c := NewCollector(&fixedStreams{}, &fixedMessages{}, &fixedPersons{})

	buckets, err := c.MessageStats(context.Background(), -5)
	require.NoError(t, err)
	assert.Len(t, buckets, 24)

	buckets, err = c.MessageStats(context.Background(), 10000)
	require.NoError(t, err)
	assert.Len(t, buckets, 24)
}

func TestChatStatsRanksStreams(t *testing.T) {
	now := float64(time.Now().Unix())
	msgs := &fixedMessages{messages: []domain.ChatMessage{
		{StreamID: "a", Platform: "qq", Time: now},
		{StreamID: "a", Platform: "qq", Time: now},
		{StreamID: "a", Platform: "qq", Time: now},
		{StreamID: "b", Platform: "telegram", Time: now},
		{StreamID: "c", Platform: "qq", Time: now},
		{StreamID: "c", Platform: "qq", Time: now},
	}}
	c := NewCollector(&fixedStreams{}, msgs, &fixedPersons{})

	ranked, err := c.ChatStats(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, "a", ranked[0].StreamID)
	assert.Equal(t, 3, ranked[0].Count)
	assert.Equal(t, "c", ranked[1].StreamID)
}

func TestDailyQuoteIsDeterministic(t *testing.T) {
	day := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	sameDay := time.Date(2026, 8, 25, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, DailyQuote(day), DailyQuote(sameDay))

	// Over a month of days, at least two distinct quotes must appear.
	seen := make(map[string]struct{})
	for i := 0; i < 31; i++ {
		q := DailyQuote(day.AddDate(0, 0, i))
		seen[q.Text] = struct{}{}
	}
	assert.Greater(t, len(seen), 1)
}

func TestFormatUptime(t *testing.T) {
	assert.Equal(t, "2m 5s", formatUptime(2*time.Minute+5*time.Second))
	assert.Equal(t, "3h 4m 5s", formatUptime(3*time.Hour+4*time.Minute+5*time.Second))
	assert.Equal(t, "2d 1h 30m", formatUptime(49*time.Hour+30*time.Minute))
}
