// Package command turns user intent into device actions.
//
// Commands apply optimistically: the snapshot reflects the requested
// state immediately, then settles on the server's confirmed value or
// rolls back when the round trip fails.
package command
