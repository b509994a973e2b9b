package api

import (
	"net/http"
	"runtime"
	"time"
)

// SystemMetrics represents the complete system metrics response.
type SystemMetrics struct {
	Timestamp     string         `json:"timestamp"`
	Version       string         `json:"version"`
	UptimeSeconds int64          `json:"uptime_seconds"`
	Runtime       RuntimeMetrics `json:"runtime"`
	MQTT          BackendMetrics `json:"mqtt"`
	InfluxDB      BackendMetrics `json:"influxdb"`
	Farm          *FarmMetrics   `json:"farm,omitempty"`
}

// RuntimeMetrics contains Go runtime statistics.
type RuntimeMetrics struct {
	Goroutines    int     `json:"goroutines"`
	MemoryAllocMB float64 `json:"memory_alloc_mb"`
	MemoryTotalMB float64 `json:"memory_total_mb"`
	NumGC         uint32  `json:"num_gc"`
}

// BackendMetrics reports an optional backend's connection.
type BackendMetrics struct {
	Connected bool `json:"connected"`
}

// FarmMetrics contains the plot and ledger sizes of the current snapshot.
type FarmMetrics struct {
	Plots         int     `json:"plots"`
	Sown          int     `json:"sown"`
	Events        int     `json:"events"`
	TotalHectares float64 `json:"total_hectares"`
}

// handleMetrics returns runtime, backend and farm metrics. A failing
// snapshot omits the farm section rather than failing the request.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	metrics := SystemMetrics{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.started).Seconds()),
		Runtime: RuntimeMetrics{
			Goroutines:    runtime.NumGoroutine(),
			MemoryAllocMB: float64(memStats.Alloc) / 1024 / 1024,
			MemoryTotalMB: float64(memStats.TotalAlloc) / 1024 / 1024,
			NumGC:         memStats.NumGC,
		},
	}

	if s.mqtt != nil {
		metrics.MQTT.Connected = s.mqtt.IsConnected()
	}
	if s.influx != nil {
		metrics.InfluxDB.Connected = s.influx.IsConnected()
	}

	if snap, err := s.farm.Snapshot(r.Context()); err == nil {
		metrics.Farm = &FarmMetrics{
			Plots:         snap.Summary.Counts.Sectors,
			Sown:          snap.Summary.Counts.Sown,
			Events:        len(snap.Events),
			TotalHectares: snap.Summary.TotalHectares,
		}
	} else {
		s.logger.Warn("metrics snapshot failed", "error", err)
	}

	writeJSON(w, http.StatusOK, metrics)
}
