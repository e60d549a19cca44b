// Package harness runs declarative probe scenarios against the ebb engine.
//
// A scenario plays the role of the host collaborator: it advances the clock
// once per step and queries a fixed list of probes with literal arguments.
// Every step produces one trace sample holding each probe's output.
//
// # Scenario Format
//
// Scenarios are YAML (or CUE) files with the following structure:
//
//	name: orbit
//	description: "Orbiting dot with a delayed follower"
//	ticks: 120
//	probes:
//	  - name: x
//	    primitive: wave
//	    min: 0
//	    max: 85
//	    rate: 60
//	  - name: y
//	    primitive: wave
//	    min: 0
//	    max: 85
//	    rate: 60
//	    wave: cos
//	  - name: follower
//	    primitive: delay
//	    id: orbit_follower
//	    inputs: [x, y]
//	    time: 3
//	  - name: color
//	    primitive: frames
//	    fps: 3
//	    values: [red, green, blue]
//	resets: [60]
//	assertions:
//	  - type: value
//	    probe: x
//	    tick: 15
//	    value: 85
//	  - type: range
//	    probe: x
//	    min: 0
//	    max: 85
//
// Probes are evaluated in declaration order. A probe's input must name an
// earlier probe; its current output becomes the live value. With inputs, the
// live value is the list of those outputs. Without either, delay and
// throttle probes cycle through their values list.
//
// Settings can also follow earlier outputs: from_input and to_input replace a
// transition's endpoints, and min_input and max_input replace the range of a
// wave or bounce. They are read every step, though a transition only uses
// its endpoints when it anchors.
//
// # Assertion Types
//
//   - value: the probe's output at a tick equals value (numbers within tolerance)
//   - range: every output of the probe lies within [min, max]
//   - count: the probe output equals value on exactly count ticks
//
// # Deterministic Testing
//
// Every run uses a fresh engine, so the same scenario always produces a
// byte-identical canonical trace. Golden files under testdata/golden store
// the expected traces; regenerate them with:
//
//	go test ./internal/harness -update
package harness
