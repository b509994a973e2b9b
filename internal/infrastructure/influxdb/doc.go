// Package influxdb records farm metrics in InfluxDB v2.
//
// Each published snapshot becomes one plot_counts point and one crop_area
// point per sown crop, so dashboards can chart how the planted area grows
// over the season. Accepted sowing reports are written as sowing_report
// points stamped with the report time.
//
// InfluxDB is optional. Connect returns ErrDisabled when it is switched off
// and the caller simply runs without metrics.
package influxdb
