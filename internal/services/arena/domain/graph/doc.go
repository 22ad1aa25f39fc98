// Package graph stores in-battle entities and the links between them.
//
// Every node is addressed by a stable numeric ID and backed by a donburi
// entity handle, so component storage stays an arena of typed tables while
// callers only ever see IDs. Nodes are connected by two kinds of links:
//
//   - owned links: the child belongs to exactly one owner and is deleted
//     together with it (a fusion's units, a unit's representation);
//   - reference links: non-owning edges that may fan in and out (a status
//     instance pointing at its representation).
//
// Each node also carries a NodeState: per-variable timed histories that the
// battle engine writes and external playback reads back by timestamp.
//
// Recursive walks are breadth-first and guard against cycles with a visited
// set even though well-formed battles never produce one.
package graph
