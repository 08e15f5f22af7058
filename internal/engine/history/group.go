package history

// BeginGroup starts a command group.
// Commands pushed while grouping are combined into a single undo unit.
// Nested calls are ignored.
func (h *History) BeginGroup(name string) {
	if h.grouping {
		return
	}

	h.grouping = true
	h.groupName = name
	h.groupCmds = nil
}

// EndGroup closes the group and records its commands as one
// CompoundCommand. An empty group records nothing.
func (h *History) EndGroup() {
	if !h.grouping {
		return
	}

	h.grouping = false
	cmds := h.groupCmds
	h.groupCmds = nil
	if len(cmds) == 0 {
		return
	}

	h.Push(NewCompoundCommand(h.groupName, cmds...))
}

// CancelGroup closes the group without recording it.
// Commands already executed still affect the buffer.
func (h *History) CancelGroup() {
	h.grouping = false
	h.groupCmds = nil
}

// RollbackGroup undoes the group's commands on t, newest first, and closes
// the group without recording it. On error the remaining commands are
// left applied.
func (h *History) RollbackGroup(t *Target) error {
	cmds := h.groupCmds
	h.CancelGroup()

	for i := len(cmds) - 1; i >= 0; i-- {
		if err := cmds[i].Undo(t); err != nil {
			return err
		}
	}
	return nil
}

// IsGrouping returns true if currently in a command group.
func (h *History) IsGrouping() bool {
	return h.grouping
}

