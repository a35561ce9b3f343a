package shell

import (
	"nimbos/kernel/keyboard"
	"nimbos/kernel/task"
)

// shellTask drains every decoded keypress currently available, feeding each
// into the line editor, then registers for the next wake-up. Like
// keyboard's printTask it never reports Ready.
type shellTask struct{}

// NewTask returns the task that drives the shell off the decoded keyboard
// character stream. Init must have been called first.
//
// The scancode stream has a single waker cell (kernel/keyboard/stream.go),
// so at most one task may own it at a time: a boot flow spawns either this
// task or keyboard.NewPrintTask(), never both.
func NewTask() *task.Task {
	return task.NewTask(shellTask{})
}

func (shellTask) Poll(w *task.Waker) task.PollState {
	for {
		c, ok := keyboard.NextChar(w)
		if !ok {
			return task.Pending
		}
		HandleByte(c)
	}
}
