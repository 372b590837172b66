package stats

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"time"

	"github.com/neo-mofox/webui/internal/chatroom"
	"github.com/neo-mofox/webui/internal/domain"
)

// chatStatsWindow bounds how far back the per-stream ranking looks.
const chatStatsWindow = 7 * 24 * time.Hour

// Overview is the dashboard summary card.
type Overview struct {
	Uptime        string `json:"uptime"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Goroutines    int    `json:"goroutines"`
	MemoryAllocMB uint64 `json:"memory_alloc_mb"`
	MemorySysMB   uint64 `json:"memory_sys_mb"`
	TotalMessages int    `json:"total_messages"`
	TotalStreams  int    `json:"total_streams"`
	VirtualUsers  int    `json:"virtual_users"`
}

// HourBucket is one hour of message traffic.
type HourBucket struct {
	Hour     string `json:"hour"`
	Sent     int    `json:"sent"`
	Received int    `json:"received"`
}

// StreamCount ranks one stream by recent traffic.
type StreamCount struct {
	StreamID string `json:"stream_id"`
	Platform string `json:"platform"`
	Count    int    `json:"count"`
}

// Collector computes dashboard statistics from the stores.
type Collector struct {
	streams   domain.StreamRepository
	messages  domain.MessageRepository
	persons   domain.PersonRepository
	startedAt time.Time
}

// NewCollector creates a stats collector. Uptime counts from now.
func NewCollector(streams domain.StreamRepository, messages domain.MessageRepository, persons domain.PersonRepository) *Collector {
	return &Collector{streams: streams, messages: messages, persons: persons, startedAt: time.Now()}
}

// Overview gathers the summary card. Store failures degrade the totals to
// zero rather than failing the whole card.
func (c *Collector) Overview(ctx context.Context) Overview {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	uptime := time.Since(c.startedAt)
	ov := Overview{
		Uptime:        formatUptime(uptime),
		UptimeSeconds: int64(uptime.Seconds()),
		Goroutines:    runtime.NumGoroutine(),
		MemoryAllocMB: mem.Alloc / (1 << 20),
		MemorySysMB:   mem.Sys / (1 << 20),
	}
	if n, err := c.messages.Count(ctx); err == nil {
		ov.TotalMessages = n
	}
	if n, err := c.streams.Count(ctx); err == nil {
		ov.TotalStreams = n
	}
	if n, err := c.persons.Count(ctx, chatroom.Platform); err == nil {
		ov.VirtualUsers = n
	}
	return ov
}

// MessageStats buckets the last N hours of traffic per hour, oldest first.
// Bot messages count as sent, everything else as received.
func (c *Collector) MessageStats(ctx context.Context, hours int) ([]HourBucket, error) {
	if hours <= 0 || hours > 168 {
		hours = 24
	}

	now := time.Now()
	cutoff := now.Add(-time.Duration(hours) * time.Hour)
	messages, err := c.messages.Since(ctx, float64(cutoff.Unix()))
	if err != nil {
		return nil, err
	}

	buckets := make([]HourBucket, hours)
	base := now.Truncate(time.Hour).Add(-time.Duration(hours-1) * time.Hour)
	for i := range buckets {
		buckets[i].Hour = base.Add(time.Duration(i) * time.Hour).Format("15:00")
	}

	for _, msg := range messages {
		at := time.Unix(int64(msg.Time), 0)
		idx := int(at.Truncate(time.Hour).Sub(base) / time.Hour)
		if idx < 0 || idx >= hours {
			continue
		}
		if msg.IsBot {
			buckets[idx].Sent++
		} else {
			buckets[idx].Received++
		}
	}
	return buckets, nil
}

// ChatStats ranks streams by message count over the last week.
func (c *Collector) ChatStats(ctx context.Context, topN int) ([]StreamCount, error) {
	if topN <= 0 {
		topN = 10
	}

	cutoff := time.Now().Add(-chatStatsWindow)
	messages, err := c.messages.Since(ctx, float64(cutoff.Unix()))
	if err != nil {
		return nil, err
	}

	counts := make(map[string]*StreamCount)
	for _, msg := range messages {
		sc, ok := counts[msg.StreamID]
		if !ok {
			sc = &StreamCount{StreamID: msg.StreamID, Platform: msg.Platform}
			counts[msg.StreamID] = sc
		}
		sc.Count++
	}

	ranked := make([]StreamCount, 0, len(counts))
	for _, sc := range counts {
		ranked = append(ranked, *sc)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].StreamID < ranked[j].StreamID
	})
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked, nil
}

func formatUptime(d time.Duration) string {
	d = d.Round(time.Second)
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}
