// Package console implements the display sink for the μCPU machine: it
// retains the most recent register and memory dumps plus a capped log of run
// events, and renders them as a human readable listing.
package console

import (
	"fmt"
	"io"
	"slices"

	"github.com/ezrec/ucpu/machine"
)

// Console is a Display that records the latest machine state.
type Console struct {
	Registers []uint8  // Latest register dump.
	Memory    []uint8  // Latest memory dump.
	Events    EventLog // Run event log.
}

var _ machine.Display = (*Console)(nil)

// ShowRegisters retains a copy of the register dump.
func (con *Console) ShowRegisters(registers []uint8) {
	con.Registers = slices.Clone(registers)
}

// ShowMemory retains a copy of the memory dump.
func (con *Console) ShowMemory(memory []uint8) {
	con.Memory = slices.Clone(memory)
}

// Log appends an event to the capped event log.
func (con *Console) Log(event string) {
	con.Events.Append(event)
}

// Render writes the retained state as a human readable listing.
func (con *Console) Render(out io.Writer) (err error) {
	for n, val := range con.Registers {
		_, err = fmt.Fprintf(out, "r%d: %3d (0x%02x)\n", n, val, val)
		if err != nil {
			return
		}
	}

	if len(con.Memory) > 0 {
		_, err = fmt.Fprintf(out, "mem:")
		if err != nil {
			return
		}
		for _, val := range con.Memory {
			_, err = fmt.Fprintf(out, " %02x", val)
			if err != nil {
				return
			}
		}
		_, err = fmt.Fprintln(out)
		if err != nil {
			return
		}
	}

	for event := range con.Events.Events() {
		_, err = fmt.Fprintf(out, "| %v\n", event)
		if err != nil {
			return
		}
	}

	return
}
