// Package engine implements the ebb value-shaping engine.
//
// The engine turns a caller-supplied "live" value into a time-shifted or
// time-shaped value. Everything is keyed by a single logical tick counter that
// the host advances exactly once per simulation step.
//
// ARCHITECTURE:
//
// Primitives:
//   - Frames: cycle through a fixed sequence at a given rate
//   - Delay: shift register returning the value observed N calls ago
//   - Throttle: sample-and-hold limiting how often a value may change
//   - Transition: precomputed linear tween between two endpoints, resettable
//   - Blink, Wave, Bounce: stateless oscillators derived from the tick
//
// Stateful primitives (Delay, Throttle, Transition) keep one entry per caller
// identifier. Each primitive owns its own namespace, so the same identifier
// used with Delay and Throttle never collides. Entries are created lazily on
// first use and live for the lifetime of the Engine unless evicted explicitly.
//
// Per-Step Contract:
//  1. Host calls Engine.Advance() once per frame
//  2. Host queries any number of primitives with literal arguments
//  3. Each query reads the tick and mutates at most one entry of its own store
//
// Calling Advance more or less than once per frame changes the perceived rate
// of every primitive.
//
// CONCURRENCY:
//
// The engine is single-writer and holds no locks. A host that shares an
// Engine across goroutines must serialize every call itself.
//
// ERRORS:
//
// Precondition violations (non-positive fps or time, empty sequence, unknown
// wave function, invalid identifier) return an *Error with code
// INVALID_ARGUMENT. Nothing is retried; every operation is a deterministic
// function of its inputs and the engine's state.
package engine
