// Package home defines the client-side home and room models.
//
// Homes and rooms are owned by the remote service; this package mirrors
// the server's JSON shape and provides the local validation that runs
// before create requests reach the network.
package home
