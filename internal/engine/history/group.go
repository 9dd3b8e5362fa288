package history

import (
	"github.com/dshills/keystorm/internal/engine/buffer"
	"github.com/dshills/keystorm/internal/engine/cursor"
)

// Transaction runs fn inside an undo group. When fn fails the group is
// cancelled; commands it already executed stay applied to the buffer
// but never reach the undo stack.
func (h *History) Transaction(name string, fn func() error) error {
	h.BeginGroup(name)
	if err := fn(); err != nil {
		h.CancelGroup()
		return err
	}
	h.EndGroup()
	return nil
}

// ExecuteGrouped runs several commands as one undo step. A single
// command skips the grouping machinery; a failure part-way cancels the
// group.
func (h *History) ExecuteGrouped(name string, buf *buffer.Buffer, cursors *cursor.CursorSet, cmds ...Command) error {
	switch len(cmds) {
	case 0:
		return nil
	case 1:
		return h.Execute(cmds[0], buf, cursors)
	}

	h.BeginGroup(name)
	for _, cmd := range cmds {
		if err := h.Execute(cmd, buf, cursors); err != nil {
			h.CancelGroup()
			return err
		}
	}
	h.EndGroup()
	return nil
}
