package aggregate

import (
	"fmt"
	"math"
	"sort"

	"github.com/nerrad567/agrosirius-core/internal/crop"
	"github.com/nerrad567/agrosirius-core/internal/geo"
	"github.com/nerrad567/agrosirius-core/internal/sowing"
)

// DateLayout is the calendar-day form used by Timeline.
const DateLayout = "2006-01-02"

// unclassified labels claimed area reported without a crop.
const unclassified = "Sin clasificar"

// CropClaim is the area crews reported for one crop.
type CropClaim struct {
	Crop     string  `json:"crop"`
	Hectares float64 `json:"hectares"`
	Color    string  `json:"color"`
	Emoji    string  `json:"emoji"`
	Share    string  `json:"share"`
}

// NodeStats summarises the reports of one field node.
type NodeStats struct {
	Node     string      `json:"node"`
	Events   int         `json:"events"`
	Hectares float64     `json:"hectares"`
	Share    string      `json:"share"`
	ByCrop   []CropClaim `json:"by_crop"`
}

// DayCount is the number of reports received on one calendar day (UTC).
type DayCount struct {
	Date   string `json:"date"`
	Events int    `json:"events"`
}

// FilterEvents keeps events matching cropName and node. An empty filter
// matches everything.
func FilterEvents(events []sowing.Event, cropName, node string) []sowing.Event {
	out := []sowing.Event{}
	for _, e := range events {
		if cropName != "" && e.Crop != cropName {
			continue
		}
		if node != "" && e.Node != node {
			continue
		}
		out = append(out, e)
	}
	return out
}

// UniqueNodes returns the sorted non-empty node names.
func UniqueNodes(events []sowing.Event) []string {
	return uniqueSorted(events, func(e sowing.Event) string { return e.Node })
}

// UniqueCrops returns the sorted non-empty crop names.
func UniqueCrops(events []sowing.Event) []string {
	return uniqueSorted(events, func(e sowing.Event) string { return e.Crop })
}

func uniqueSorted(events []sowing.Event, field func(sowing.Event) string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, e := range events {
		v := field(e)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// ClaimedHectares sums the hectares reported in events. It is unrelated
// to the surveyed area of any plot.
func ClaimedHectares(events []sowing.Event) float64 {
	var total float64
	for _, e := range events {
		total += e.ClaimedHectares
	}
	return total
}

// LatestEvent returns the newest event. Equal timestamps keep the first.
func LatestEvent(events []sowing.Event) (sowing.Event, bool) {
	if len(events) == 0 {
		return sowing.Event{}, false
	}
	latest := events[0]
	for _, e := range events[1:] {
		if e.Timestamp.After(latest.Timestamp) {
			latest = e
		}
	}
	return latest, true
}

// ClaimsByCrop groups reported hectares by crop in order of first
// appearance. Share is each crop's part of the events' total.
func ClaimsByCrop(events []sowing.Event) []CropClaim {
	claims := []CropClaim{}
	index := make(map[string]int)
	for _, e := range events {
		name := e.Crop
		if name == "" {
			name = unclassified
		}
		i, ok := index[name]
		if !ok {
			style := crop.Lookup(name)
			claims = append(claims, CropClaim{Crop: name, Color: style.Color, Emoji: style.Emoji})
			i = len(claims) - 1
			index[name] = i
		}
		claims[i].Hectares += e.ClaimedHectares
	}

	total := ClaimedHectares(events)
	for i := range claims {
		claims[i].Share = Percentage(claims[i].Hectares, total)
		claims[i].Hectares = geo.Round2(claims[i].Hectares)
	}
	return claims
}

// ByNode returns per-node statistics, sorted by node name. Share is the
// node's part of all claimed hectares.
func ByNode(events []sowing.Event) []NodeStats {
	total := ClaimedHectares(events)
	nodes := UniqueNodes(events)

	out := make([]NodeStats, 0, len(nodes))
	for _, node := range nodes {
		mine := FilterEvents(events, "", node)
		hectares := ClaimedHectares(mine)
		out = append(out, NodeStats{
			Node:     node,
			Events:   len(mine),
			Hectares: geo.Round2(hectares),
			Share:    Percentage(hectares, total),
			ByCrop:   ClaimsByCrop(mine),
		})
	}
	return out
}

// Timeline counts events per UTC calendar day, oldest first.
func Timeline(events []sowing.Event) []DayCount {
	counts := make(map[string]int)
	for _, e := range events {
		counts[e.Timestamp.UTC().Format(DateLayout)]++
	}

	days := make([]DayCount, 0, len(counts))
	for date, n := range counts {
		days = append(days, DayCount{Date: date, Events: n})
	}
	// DateLayout sorts lexically in calendar order.
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days
}

// Percentage renders value as a whole-number share of total, e.g. "42%".
func Percentage(value, total float64) string {
	if total == 0 {
		return "0%"
	}
	return fmt.Sprintf("%d%%", int64(math.Round(value/total*100)))
}

