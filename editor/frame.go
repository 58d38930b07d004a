package editor

// FrameScheduler coalesces high frequency work into one run per frame.
// Scheduling the same key again before the next Flush replaces the
// pending function, so a burst of pointer moves costs a single update.
type FrameScheduler struct {
	order   []string
	pending map[string]func()
}

// NewFrameScheduler creates an idle scheduler.
func NewFrameScheduler() *FrameScheduler {
	return &FrameScheduler{pending: make(map[string]func())}
}

// Schedule queues fn under key, replacing any pending function for it.
func (f *FrameScheduler) Schedule(key string, fn func()) {
	if _, ok := f.pending[key]; !ok {
		f.order = append(f.order, key)
	}
	f.pending[key] = fn
}

// Run executes the pending function for key immediately, if any.
func (f *FrameScheduler) Run(key string) {
	fn, ok := f.pending[key]
	if !ok {
		return
	}
	f.remove(key)
	fn()
}

// Cancel drops the pending function for key without running it.
func (f *FrameScheduler) Cancel(key string) {
	f.remove(key)
}

// Pending returns the number of queued functions.
func (f *FrameScheduler) Pending() int { return len(f.order) }

// Flush runs every queued function in the order keys were first scheduled.
// Work scheduled while flushing waits for the next frame.
func (f *FrameScheduler) Flush() {
	keys := f.order
	fns := f.pending
	f.order = nil
	f.pending = make(map[string]func())
	for _, k := range keys {
		fns[k]()
	}
}

func (f *FrameScheduler) remove(key string) {
	if _, ok := f.pending[key]; !ok {
		return
	}
	delete(f.pending, key)
	for i, k := range f.order {
		if k == key {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
}
