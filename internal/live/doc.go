// Package live drives an engine in real time and streams its samples.
//
// A Host is the real-time host collaborator: a time.Ticker fires at the
// engine's base rate and every tick the host advances the engine once and
// evaluates the scenario's probes. Each sample is encoded as JSON and handed
// to a Sink, normally a Hub that fans it out to websocket clients.
//
// Clients may send {"type":"reset"}; the next step then re-anchors every
// transition probe, the way a key press restarts an animation. A Watcher
// reloads the scenario file when it changes on disk and the host swaps to a
// fresh engine.
//
// CONCURRENCY:
//   - All engine access happens on the goroutine running Host.Run.
//   - The Hub owns its client set on the goroutine running Hub.Run.
//   - Resets and reloads reach the host only through channels.
//
// Messages sent to clients:
//
//	{"scenario":"orbit","tick":12,"type":"sample","values":{"x":83.000000}}
//	{"scenario":"orbit","type":"reload"}
//	{"message":"...","type":"error"}
package live
