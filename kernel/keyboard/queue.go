// Package keyboard owns the scancode stream: a bounded queue the keyboard
// IRQ handler feeds and a single task drains, plus a minimal Scan Code
// Set 1 decoder good enough to echo typed characters to the console.
package keyboard

import (
	"nimbos/kernel/config"
	"nimbos/kernel/sync"
)

// queue is a single-producer (the IRQ handler), single-consumer (the print
// task) bounded byte ring, guarded by a spinlock rather than made truly
// lock-free: the producer side runs with interrupts disabled already, so
// there is no reentrancy hazard, and a spinlock is what every other
// cross-context resource in this kernel already uses.
type queue struct {
	lock              sync.Spinlock
	buf               [config.ScancodeQueueCapacity]byte
	head, tail, count int
}

func (q *queue) push(b byte) bool {
	q.lock.Acquire()
	defer q.lock.Release()
	if q.count == len(q.buf) {
		return false
	}
	q.buf[q.tail] = b
	q.tail = (q.tail + 1) % len(q.buf)
	q.count++
	return true
}

func (q *queue) pop() (byte, bool) {
	q.lock.Acquire()
	defer q.lock.Release()
	if q.count == 0 {
		return 0, false
	}
	b := q.buf[q.head]
	q.head = (q.head + 1) % len(q.buf)
	q.count--
	return b, true
}
