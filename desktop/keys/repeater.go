// Package keys turns held keyboard keys into repeated game actions.
package keys

import (
	"slices"

	"github.com/kamstrup/intmap"
)

// Key is a keyboard key code. The desktop client converts ebiten keys.
type Key int

// Held movement keys repeat after RepeatDelay frames, then every
// RepeatEvery frames.
const (
	RepeatDelay = 12
	RepeatEvery = 4
)

// Repeater maps bound keys to actions. It remembers the frame at which each
// key was pressed and last fired.
type Repeater struct {
	bindings map[Key]string
	order    []Key
	noRepeat map[string]bool

	frame     int
	lastFired *intmap.Map[Key, int]
	pressedAt *intmap.Map[Key, int]
}

// NewRepeater binds keys to actions. Actions listed in noRepeat fire once
// per press.
func NewRepeater(bindings map[Key]string, noRepeat ...string) *Repeater {
	r := &Repeater{
		bindings:  bindings,
		noRepeat:  map[string]bool{},
		lastFired: intmap.New[Key, int](len(bindings)),
		pressedAt: intmap.New[Key, int](len(bindings)),
	}
	for key := range bindings {
		r.order = append(r.order, key)
	}
	slices.Sort(r.order)
	for _, action := range noRepeat {
		r.noRepeat[action] = true
	}
	return r
}

// Step advances one frame. pressed reports whether a key is down. Each
// action appears at most once per frame, even when several of its keys
// fire together, and actions come out in key order.
func (r *Repeater) Step(pressed func(Key) bool) []string {
	r.frame++

	var actions []string
	fire := func(action string) {
		if !slices.Contains(actions, action) {
			actions = append(actions, action)
		}
	}

	for _, key := range r.order {
		action := r.bindings[key]
		if !pressed(key) {
			r.lastFired.Del(key)
			r.pressedAt.Del(key)
			continue
		}

		start, held := r.pressedAt.Get(key)
		if !held {
			r.pressedAt.Put(key, r.frame)
			r.lastFired.Put(key, r.frame)
			fire(action)
			continue
		}

		if r.noRepeat[action] {
			continue
		}
		last, _ := r.lastFired.Get(key)
		if r.frame-start >= RepeatDelay && r.frame-last >= RepeatEvery {
			r.lastFired.Put(key, r.frame)
			fire(action)
		}
	}
	return actions
}
