package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names.
const (
	MeasurementCropArea   = "crop_area"
	MeasurementPlotCounts = "plot_counts"
	MeasurementSowing     = "sowing_report"
)

// WriteCropArea records the painted area for one crop at a snapshot time.
func (c *Client) WriteCropArea(crop string, hectares float64, plots int, at time.Time) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(cropAreaPoint(crop, hectares, plots, at))
}

// WritePlotCounts records the farm-level counts at a snapshot time.
func (c *Client) WritePlotCounts(blocks, sectors, sown, empty int, totalHectares float64, at time.Time) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(plotCountsPoint(blocks, sectors, sown, empty, totalHectares, at))
}

// WriteSowingReport records one accepted sowing report, stamped with the
// report's own time.
func (c *Client) WriteSowingReport(node, crop, block string, claimedHectares float64, at time.Time) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(sowingPoint(node, crop, block, claimedHectares, at))
}

func cropAreaPoint(crop string, hectares float64, plots int, at time.Time) *write.Point {
	return write.NewPoint(
		MeasurementCropArea,
		map[string]string{"crop": crop},
		map[string]any{"hectares": hectares, "plots": plots},
		at,
	)
}

func plotCountsPoint(blocks, sectors, sown, empty int, totalHectares float64, at time.Time) *write.Point {
	return write.NewPoint(
		MeasurementPlotCounts,
		nil,
		map[string]any{
			"blocks":         blocks,
			"sectors":        sectors,
			"sown":           sown,
			"empty":          empty,
			"total_hectares": totalHectares,
		},
		at,
	)
}

func sowingPoint(node, crop, block string, claimedHectares float64, at time.Time) *write.Point {
	return write.NewPoint(
		MeasurementSowing,
		map[string]string{"node": node, "crop": crop, "block": block},
		map[string]any{"claimed_hectares": claimedHectares},
		at,
	)
}
