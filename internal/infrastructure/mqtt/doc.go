// Package mqtt wraps paho.mqtt.golang for the live device state feed.
//
// The server publishes every confirmed device state change to
// {base}/device/{id}/state with the plain state string as payload. This
// package owns the broker connection (auto-reconnect, LWT presence,
// restored subscriptions) and the topic scheme; interpreting payloads
// belongs to the push receiver that subscribes through it.
package mqtt
