// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package driver

import "fmt"

// State is the state of a [Session].
type State int

// Session states in the order they are passed.
const (
	Idle State = iota
	Compiling
	Succeeded
	Failed
	Flushing
	Flushed
	Running
	RunSucceeded
	RunFailed
)

var stateNames = [...]string{
	Idle:         "idle",
	Compiling:    "compiling",
	Succeeded:    "succeeded",
	Failed:       "failed",
	Flushing:     "flushing",
	Flushed:      "flushed",
	Running:      "running",
	RunSucceeded: "run succeeded",
	RunFailed:    "run failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("unknown(%d)", int(s))
	}

	return stateNames[s]
}

// compiled returns true if artifacts are complete and can be flushed,
// exported or run.
func (s State) compiled() bool {
	return s == Succeeded || s == Flushed
}
