package keyboard

import (
	"nimbos/kernel/task"
	"testing"
)

func resetStreamState() {
	scancodes = queue{}
	wakerLock.Release()
	waker = nil
}

func TestAddScancodeWakesRegisteredWaker(t *testing.T) {
	resetStreamState()
	defer resetStreamState()

	e := task.NewExecutor()
	var printed []byte
	printFn := pollOnceFuture{out: &printed}
	e.Spawn(task.NewTask(printFn))
	e.RunPending() // first poll: queue is empty, so it registers its waker

	AddScancode(0x1e) // 'a' make code: pushes, then wakes the registered waker
	e.RunPending()    // second poll: the task should now see the byte

	if len(printed) != 1 || printed[0] != 0x1e {
		t.Fatalf("task did not observe the scancode after being woken: %v", printed)
	}
}

// pollOnceFuture calls pollNext exactly once per poll, recording any byte
// it receives into out, and always reports Pending (matching printTask's
// never-completes contract).
type pollOnceFuture struct {
	out *[]byte
}

func (f pollOnceFuture) Poll(w *task.Waker) task.PollState {
	if b, ok := pollNext(w); ok {
		*f.out = append(*f.out, b)
	}
	return task.Pending
}

func TestPollNextReturnsQueuedByteWithoutRegisteringWaker(t *testing.T) {
	resetStreamState()
	defer resetStreamState()

	scancodes.push(0x1e)
	b, ok := pollNext(nil)
	if !ok || b != 0x1e {
		t.Fatalf("pollNext = (%#x, %v), want (0x1e, true)", b, ok)
	}
}

func TestNextCharSkipsUndecodableScancodesBeforeReturning(t *testing.T) {
	resetStreamState()
	defer resetStreamState()

	scancodes.push(0x1e | 0x80) // 'a' break code: decodes to nothing
	scancodes.push(0x1e)        // 'a' make code

	c, ok := NextChar(nil)
	if !ok || c != 'a' {
		t.Fatalf("NextChar = (%c, %v), want ('a', true)", c, ok)
	}
}

func TestNextCharEmptyRegistersWaker(t *testing.T) {
	resetStreamState()
	defer resetStreamState()

	w := &task.Waker{}
	if _, ok := NextChar(w); ok {
		t.Fatalf("NextChar on an empty queue reported data available")
	}

	wakerLock.Acquire()
	got := waker
	wakerLock.Release()
	if got != w {
		t.Fatalf("NextChar did not register the waiting waker")
	}
}

func TestPollNextEmptyRegistersWaker(t *testing.T) {
	resetStreamState()
	defer resetStreamState()

	w := &task.Waker{}
	if _, ok := pollNext(w); ok {
		t.Fatalf("pollNext on an empty queue reported data available")
	}

	wakerLock.Acquire()
	got := waker
	wakerLock.Release()
	if got != w {
		t.Fatalf("pollNext did not register the waiting waker")
	}
}
