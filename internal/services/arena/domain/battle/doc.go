// Package battle runs a deterministic auto-battle between two teams.
//
// A Simulation unpacks both teams into a private entity graph, then steps
// through turns: the two frontline fusions strike each other, reactions
// fire on battle events and every effect becomes an Action. Actions are
// applied through a single queue whose follow-ups are pushed to the front,
// so the consequences of an action resolve before anything queued after it.
// Every applied action is appended to the Log together with the logical
// time at which it happened; the log is the only output external playback
// needs, and its chain hash is identical for identical (teams, seed).
package battle
