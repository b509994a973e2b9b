// Package mqtt provides the broker connection for Agro Sirius Core.
//
// Field nodes publish sowing reports on agrosirius/sowing/{node}; the core
// subscribes to those and publishes the retained farm summary on
// agrosirius/core/summary. Its own online/offline status (including the
// Last Will) goes to agrosirius/system/status.
//
// The client reconnects automatically and restores tracked subscriptions.
// Handlers run on paho's goroutines with panic recovery; an error returned
// from a handler is logged and otherwise ignored.
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Subscribe(mqtt.Topics{}.AllSowingReports(), 1, handler)
package mqtt
