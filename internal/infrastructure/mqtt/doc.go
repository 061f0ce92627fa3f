// Package mqtt publishes http2sql events to an MQTT broker.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Event publishing with QoS guarantees
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// The publisher is optional. When enabled, every successful schema or data
// change made through the gateway is announced on http2sql/events/{kind}
// so downstream consumers can invalidate caches or replicate changes.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT, logger)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.PublishJSON(mqtt.Topics{}.Event("table_created"), payload)
package mqtt
