// Package telemetry fans gateway events out to the optional MQTT and
// InfluxDB sinks.
//
// A Recorder is installed as the gateway's Observer. Observe never blocks
// the request: events are queued and delivered by a single background
// worker, and a full queue drops the event with a warning. Sink failures
// are logged and never reach the client.
//
//	rec := telemetry.NewRecorder(logger, telemetry.WithPublisher(mqttClient))
//	rec.Start(ctx)
//	defer rec.Close()
//	gw := gateway.NewService(pool, rec, logger)
package telemetry
