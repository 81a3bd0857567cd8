package review

// Navigation describes the previous/next targets around the finding being
// edited.
type Navigation struct {
	HasPrev bool   `json:"hasPrev"`
	HasNext bool   `json:"hasNext"`
	PrevID  string `json:"prevId,omitempty"`
	NextID  string `json:"nextId,omitempty"`
}

// Navigator computes adjacent edit targets by position in the store's
// sequence. Every call re-reads the current sequence, because deletes and
// sorts move positions between navigations; nothing is cached.
type Navigator struct {
	store *Store
}

func NewNavigator(store *Store) *Navigator {
	return &Navigator{store: store}
}

// State reports the neighbors of id in the current sequence. An id that is
// no longer present has no neighbors.
func (n *Navigator) State(id string) Navigation {
	seq := n.store.Findings()
	for i, f := range seq {
		if f.ID != id {
			continue
		}
		var nav Navigation
		if i > 0 {
			nav.HasPrev = true
			nav.PrevID = seq[i-1].ID
		}
		if i < len(seq)-1 {
			nav.HasNext = true
			nav.NextID = seq[i+1].ID
		}
		return nav
	}
	return Navigation{}
}

// Prev returns the preceding finding id. Navigating past the start is a
// no-op.
func (n *Navigator) Prev(id string) (string, bool) {
	nav := n.State(id)
	return nav.PrevID, nav.HasPrev
}

// Next returns the following finding id. Navigating past the end is a
// no-op.
func (n *Navigator) Next(id string) (string, bool) {
	nav := n.State(id)
	return nav.NextID, nav.HasNext
}
