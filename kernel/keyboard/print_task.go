package keyboard

import (
	"nimbos/kernel/kfmt"
	"nimbos/kernel/task"
)

// printTask drains every scancode currently available, echoing the
// decoded character for each, then registers for the next wake-up. It
// never reports Ready: a task which never completes simply keeps its
// executor slot for the life of the kernel.
type printTask struct{}

// NewPrintTask returns the task that echoes decoded keypresses to the
// console sink.
func NewPrintTask() *task.Task {
	return task.NewTask(printTask{})
}

func (printTask) Poll(w *task.Waker) task.PollState {
	for {
		c, ok := NextChar(w)
		if !ok {
			return task.Pending
		}
		kfmt.Printf("%c", c)
	}
}
