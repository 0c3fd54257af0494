// Package push bridges the MQTT broker and the client core.
//
// Live device state arrives over MQTT; the receiver folds it into the
// observable snapshot and the local state history. Commands published
// on the broker flow the other way, through the command dispatcher. It
// also registers the platform push token with the server on demand.
package push
