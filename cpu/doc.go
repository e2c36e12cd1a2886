// Package cpu implements the interpreter core for the μCPU system.
//
// The CPU consists of eight 8-bit general purpose registers (r0-r7), sixteen
// bytes of flat memory, a call-return stack, and an instruction pointer that
// indexes the raw lines of the loaded Program. The Parser builds the label
// table ahead of execution; the executor decodes and runs one statement per
// tick, with wraparound (mod 256) arithmetic throughout.
package cpu
