// Package ws provides the websocket endpoints.
//
// /ws/phones/:player streams phone updates to the NUI. The first message is a
// full snapshot; after that every layout, state, visibility, call and units
// change the session publishes is forwarded. Slow streams are dropped.
//
// /ws/bridge is the game-server push channel. Each message is one
// {type, player, payload} event and is answered with an ack or an error.
package ws
