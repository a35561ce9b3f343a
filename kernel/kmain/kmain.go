// Package kmain wires every subsystem package together into the kernel's
// boot sequence. It is a separate package from kernel (rather than a
// kernel.Kmain function) for the same reason gopheros keeps its own
// kmain package split out: gdt/idt/vmm/heap/task all import kernel for
// kernel.Error and kernel.BootInfo, so Kmain itself cannot live in that
// package without an import cycle.
package kmain

import (
	"nimbos/kernel"
	"nimbos/kernel/config"
	"nimbos/kernel/console"
	"nimbos/kernel/cpu"
	"nimbos/kernel/gdt"
	"nimbos/kernel/goruntime"
	"nimbos/kernel/heap"
	"nimbos/kernel/idt"
	"nimbos/kernel/keyboard"
	"nimbos/kernel/kfmt"
	"nimbos/kernel/mem/pmm"
	"nimbos/kernel/mem/vmm"
	"nimbos/kernel/task"
)

var errKmainReturned = &kernel.Error{Module: "kmain", Message: "Kmain returned"}

// reserveBase is the virtual address the Go runtime's own arena growth
// (goruntime.SetMemory) starts carving address space from. It sits well
// past the fixed kernel heap region so the two never collide.
const reserveBase = config.HeapStart + config.HeapSize + 0x1000_0000

// earlySink hands PrefixWriter whatever kfmt.GetOutputSink currently
// returns, falling back to kfmt.Printf (and so the early ring buffer)
// before kfmt.SetOutputSink installs the real console. This lets the same
// stageLog call sites run unchanged on both sides of that boundary.
type earlySink struct{}

func (earlySink) Write(p []byte) (int, error) {
	if sink := kfmt.GetOutputSink(); sink != nil {
		return sink.Write(p)
	}
	kfmt.Printf("%s", p)
	return len(p), nil
}

// stageLog returns a kfmt.PrefixWriter tagging every line written to it
// with prefix, the way gopheros's hal.probe tags each driver's init output.
func stageLog(prefix string) *kfmt.PrefixWriter {
	return &kfmt.PrefixWriter{Sink: earlySink{}, Prefix: []byte(prefix)}
}

// Kmain is the kernel's entry point, called by cmd/nimbos's trampoline once
// the bootloader has established long mode and handed over bi. It is not
// expected to return; if it does, that is a fatal error.
//
// Boot order: GDT, then IDT with the PIC remapped and unmasked, then
// interrupts go on immediately - before paging, the heap or the console
// exist. Everything kfmt writes up to that point lands in kfmt's early ring
// buffer, and scancodes from keyboard IRQs, which can now land at any
// moment, wait in the keyboard package's scancode queue; only
// once the page mapper, frame allocator, Go runtime allocator hooks, fixed
// kernel heap and console sink are all built does SetOutputSink flush that
// backlog out to VGA/serial. The executor and its initial tasks are
// constructed last, immediately before it runs forever.
//
//go:noinline
func Kmain(bi kernel.BootInfo) {
	gdt.Init()
	kfmt.Fprintf(stageLog("[gdt] "), "initialized\n")

	idt.Init()
	idt.SetKeyboardHandler(keyboard.AddScancode)
	kfmt.Fprintf(stageLog("[idt] "), "initialized, PICs remapped and unmasked\n")

	cpu.EnableInterrupts()
	kfmt.Fprintf(stageLog("[idt] "), "interrupts enabled\n")

	mapper := vmm.NewMapper(bi.PhysicalMemoryOffset)
	frameAlloc := pmm.NewFrameAllocator(bi.MemoryMap)
	kfmt.Fprintf(stageLog("[vmm] "), "mapper and frame allocator ready\n")

	goruntime.SetMemory(mapper, frameAlloc, reserveBase)
	if err := goruntime.Init(); err != nil {
		kfmt.Panic(err)
	}
	kfmt.Fprintf(stageLog("[goruntime] "), "Go allocator hooks installed\n")

	if err := mapper.MapRegion(config.HeapStart, config.HeapSize, vmm.FlagPresent|vmm.FlagWritable, frameAlloc); err != nil {
		kfmt.Panic(err)
	}
	heap.SetGlobal(&heap.FixedSizeBlockAllocator{}, config.HeapStart, config.HeapSize)
	kfmt.Fprintf(stageLog("[heap] "), "mapped and installed\n")

	vga := console.NewVGAText(bi.PhysicalMemoryOffset)
	serial := console.NewSerial(config.SerialPort)
	sink := console.NewGlobal(vga, serial)
	kfmt.SetOutputSink(sink)
	kfmt.Fprintf(stageLog("[console] "), "vga+serial sink wired, early ring buffer flushed\n")

	executor := task.NewExecutor()
	executor.Spawn(keyboard.NewPrintTask())
	kfmt.Fprintf(stageLog("[task] "), "executor running\n")

	executor.Run()

	kfmt.Panic(errKmainReturned)
}
