package buffer

// TextEditEvent describes a single mutation in byte-offset terms, the form
// the parse engine and LSP document sync consume. Point computation (line/
// column) is deliberately left to those consumers so the buffer's write path
// never pays for it.
type TextEditEvent struct {
	StartByte      ByteOffset
	OldEndByte     ByteOffset
	NewEndByte     ByteOffset
	ContentVersion uint64
}

// EditListener receives edit events after they have been applied to the rope.
type EditListener func(TextEditEvent)

// Subscribe registers a listener invoked after every successful mutation.
// It returns a function that removes the listener.
func (b *Buffer) Subscribe(l EditListener) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := len(b.listeners)
	b.listeners = append(b.listeners, l)
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if id < len(b.listeners) {
			b.listeners[id] = nil
		}
	}
}

// notifyEdit fires all registered listeners. Callers must hold b.mu.
func (b *Buffer) notifyEdit(ev TextEditEvent) {
	for _, l := range b.listeners {
		if l != nil {
			l(ev)
		}
	}
}
