// Package domain contains the core entities of the day planner: identities,
// boards, tasks and time entries, together with their validation rules and
// state-transition invariants. Entities are plain data plus behavior; they
// hold no references to storage or transport.
package domain
