// Copyright (C) 2024-2026 the TMD Restorer Authors. All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// SPDX-License-Identifier: BSD-3-Clause
//

//Package shutdown works with lists of tasks to be performed at teardown.
//Like defer, it is last-in first-out. Tasks can be removed from a list via
//filter functions, then assigning the filtered result to the list. To
//process the list of tasks, call Perform. Its bool arg indicates
//success/fail of the run - most tasks ignore it, but some (notably the
//exit handshake) want to know.
package shutdown

type Fun func(success bool)
type Task struct {
	Name string
	Func Fun
}
type List struct{ tasks []*Task }

type Filter func(t *Task) bool

//return subset of given list where filter matches (only positives)
func (l *List) Filter(filter Filter) List {
	var out List
	for _, entry := range l.tasks {
		if filter(entry) {
			out.tasks = append(out.tasks, entry)
		}
	}
	return out
}

//return subset of given list where filter does not match (remove positives)
func (l *List) FilterOut(filter Filter) List {
	//simply invert the filter
	return l.Filter(func(t *Task) bool { return !filter(t) })
}

func (l *List) Perform(success bool) {
	//go through list, last first. Remove tasks as they are done.
	for {
		n := len(l.tasks)
		if n == 0 {
			return
		}
		l.tasks[n-1].Func(success)
		l.tasks = l.tasks[:n-1]
	}
}

func (l *List) Clear() { l.tasks = nil }

func (l *List) Add(t *Task) {
	l.tasks = append(l.tasks, t)
}
func (l *List) AddFirst(t *Task) {
	l.tasks = append([]*Task{t}, l.tasks...)
}

var Tasks List
