// Package harness runs declarative scenarios against a host binding.
//
// A scenario names an initial property set, a mapper built from derivation
// ops, a set of actions built from action ops, and a list of steps that push
// inputs, invoke actions or tear the binding down. The harness records every
// output snapshot the binding applies, in order, and evaluates the scenario's
// expectations and assertions against that trace.
//
// # Scenario Format
//
// Scenarios are YAML (strict: unknown fields are rejected) or CUE files:
//
//	name: counter
//	description: "Actions patch state alongside the combined props"
//	binding_id: counter-1
//	initial: { label: clicks }
//	mapper:
//	  - { op: copy, key: title, from: label }
//	actions:
//	  inc: { op: accumulate, key: count }
//	steps:
//	  - invoke: inc
//	    arg: 1
//	  - input: { label: taps }
//	  - teardown: true
//	assertions:
//	  - { type: final_state, expect: { count: 1, title: "taps" } }
//
// # Mapper Ops
//
// Ops run in order and build one derived record per input snapshot. Each op
// reads from the keys earlier ops produced first, then from the input.
//
//   - copy: key = from
//   - set: key = value
//   - sum: key = sum of the numeric fields (missing fields count as 0)
//   - concat: key = fields joined by sep
//   - drop_unless: the snapshot derives nothing unless from is truthy
//
// # Action Ops
//
//   - patch: emits {key: arg}, or {key: value} when value is set
//   - accumulate: emits {key: running sum of args}, seeded with value
//   - merge_arg: emits the argument itself when it is a record
//   - toggle: emits {key: !previous}, seeded with value
//
// Any action op also takes skip, which ignores the first skip arguments,
// and limit, which stops the action after limit accepted arguments.
//
// # Assertion Types
//
//   - output_count: the trace has exactly count snapshots
//   - output_contains: some snapshot contains every key of output
//   - final_state: the final state contains every key of expect
//   - no_adjacent_duplicates: no two consecutive snapshots are shallowly equal
//
// # Deterministic Testing
//
// Every run uses a fixed binding ID (testutil.FixedTokenGenerator) and a
// fresh logical clock (testutil.SeqClock), and traces are rendered
// with internal/canonical, so the same scenario always produces identical
// bytes for golden comparison.
package harness
