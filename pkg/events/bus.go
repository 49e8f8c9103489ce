// Package events is the notification registry of a view.
//
// The view state publishes an [Event] after every committed change.
// Consumers subscribe per [Kind] and get back an [Unsubscribe] handle, or
// register under a name with [Bus.Set] when a kind has exactly one current
// subscriber per role (the renderer, the control panel): registering the
// same name again replaces the previous callback.
//
// Callbacks run synchronously on the publishing goroutine, in subscription
// order. The bus does not hold its lock while calling them, so a callback
// may subscribe or unsubscribe.
package events

import "sync"

// Kind identifies a state transition.
type Kind int

const (
	FilterChanged Kind = iota
	VisibilityChanged
	TransformChanged
	HeaderChanged
	AppearanceChanged
	ConfigChanged
	LayoutTick
	LayoutEnded
	SelectionChanged
	DirtyChanged
	SnapshotApplied
)

var kindNames = [...]string{
	FilterChanged:     "filter_changed",
	VisibilityChanged: "visibility_changed",
	TransformChanged:  "transform_changed",
	HeaderChanged:     "header_changed",
	AppearanceChanged: "appearance_changed",
	ConfigChanged:     "config_changed",
	LayoutTick:        "layout_tick",
	LayoutEnded:       "layout_ended",
	SelectionChanged:  "selection_changed",
	DirtyChanged:      "dirty_changed",
	SnapshotApplied:   "snapshot_applied",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Kinds lists every event kind.
func Kinds() []Kind {
	out := make([]Kind, len(kindNames))
	for i := range kindNames {
		out[i] = Kind(i)
	}
	return out
}

// Event is a notification. Payload depends on the kind and may be nil.
type Event struct {
	Kind    Kind
	Payload any
}

// Handler receives events.
type Handler func(Event)

// Unsubscribe removes a subscription. Calling it more than once is harmless.
type Unsubscribe func()

type subscription struct {
	id   uint64
	name string
	fn   Handler
}

// Bus dispatches events to subscribers. The zero value is ready to use.
type Bus struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[Kind][]subscription
}

// Subscribe registers fn for kind.
func (b *Bus) Subscribe(kind Kind, fn Handler) Unsubscribe {
	return b.add(kind, "", fn)
}

// Set registers fn for kind under name, replacing any callback previously
// registered under the same kind and name. The replaced callback keeps its
// position in the dispatch order.
func (b *Bus) Set(kind Kind, name string, fn Handler) Unsubscribe {
	return b.add(kind, name, fn)
}

func (b *Bus) add(kind Kind, name string, fn Handler) Unsubscribe {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs == nil {
		b.subs = make(map[Kind][]subscription)
	}

	b.nextID++
	sub := subscription{id: b.nextID, name: name, fn: fn}
	replaced := false
	if name != "" {
		for i, s := range b.subs[kind] {
			if s.name == name {
				b.subs[kind][i] = sub
				replaced = true
				break
			}
		}
	}
	if !replaced {
		b.subs[kind] = append(b.subs[kind], sub)
	}

	id := sub.id
	return func() { b.remove(kind, id) }
}

func (b *Bus) remove(kind Kind, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subs[kind]
	for i, s := range subs {
		if s.id == id {
			b.subs[kind] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// Publish delivers e to the current subscribers of its kind.
func (b *Bus) Publish(e Event) {
	b.mu.Lock()
	subs := append([]subscription(nil), b.subs[e.Kind]...)
	b.mu.Unlock()

	for _, s := range subs {
		s.fn(e)
	}
}

// Count returns the number of subscribers of kind.
func (b *Bus) Count(kind Kind) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[kind])
}

// Clear removes every subscription.
func (b *Bus) Clear() {
	b.mu.Lock()
	b.subs = nil
	b.mu.Unlock()
}
