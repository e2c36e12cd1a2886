// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package machine drives the CPU interpreter from an external heartbeat. It
// owns the run state, the tick interval derived from the rate control, and
// the wiring to the source, display, and rate collaborators. All execution is
// single threaded: Stop is observed only at a tick boundary and never
// interrupts an in-flight instruction.
package machine

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"
	"strings"
	"time"

	"github.com/ezrec/ucpu/cpu"
	"github.com/ezrec/ucpu/internal"
)

const (
	RATE_MIN = 1    // Minimum execution rate, instructions per second.
	RATE_MAX = 2000 // Maximum execution rate, instructions per second.
)

var _machine_defines = map[string]string{
	"RATE_MIN": fmt.Sprintf("%v", RATE_MIN),
	"RATE_MAX": fmt.Sprintf("%v", RATE_MAX),
}

// SourceProvider supplies the current program text. It is read once per
// Start.
type SourceProvider interface {
	Source() string
}

// Display accepts state dumps and human readable event strings. Dumps are
// refreshed once per executed tick; the event log is append-only.
type Display interface {
	ShowRegisters(registers []uint8)
	ShowMemory(memory []uint8)
	Log(event string)
}

// RateControl supplies the execution rate, in instructions per second. It is
// read once per Start; later changes do not alter an already computed
// interval.
type RateControl interface {
	Rate() int
}

// SourceText is a SourceProvider for a fixed program text.
type SourceText string

func (st SourceText) Source() string {
	return string(st)
}

// FixedRate is a RateControl with a constant rate.
type FixedRate int

func (fr FixedRate) Rate() int {
	return int(fr)
}

// Machine couples a Cpu to its collaborators and schedules execution.
type Machine struct {
	Verbose bool     // Set to enable verbose logging.
	Cpu     *cpu.Cpu // Reference to the interpreter state.

	Source  SourceProvider
	Display Display
	Rate    RateControl

	state    State
	interval time.Duration
	elapsed  time.Duration
}

// NewMachine creates a machine around a fresh CPU.
func NewMachine(source SourceProvider, display Display, rate RateControl) (m *Machine) {
	m = &Machine{
		Cpu:     cpu.NewCpu(),
		Source:  source,
		Display: display,
		Rate:    rate,
	}

	return
}

// Defines returns an iterator over all of the defines.
func (m *Machine) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_machine_defines),
		m.Cpu.Defines(),
	)
}

// State returns the current run state.
func (m *Machine) State() State {
	return m.state
}

// Interval returns the tick interval computed by the last Start.
func (m *Machine) Interval() time.Duration {
	return m.interval
}

// tickInterval converts an instruction rate to a tick interval. The rate is
// clamped to [RATE_MIN, RATE_MAX], which also guards the division.
func tickInterval(rate int) time.Duration {
	rate = min(max(rate, RATE_MIN), RATE_MAX)

	return time.Second / time.Duration(rate)
}

// Start (re)parses the source text and begins execution from index zero.
// Registers and memory persist across runs; only the program, the call
// stack, and the instruction pointer are rewound. Calling Start while already
// running restarts the program.
func (m *Machine) Start() (err error) {
	parser := &cpu.Parser{Verbose: m.Verbose}
	for name, value := range m.Defines() {
		parser.Predefine(name, value)
	}

	prog, err := parser.Parse(strings.NewReader(m.Source.Source()))
	if err != nil {
		m.state = STATE_IDLE
		m.Display.Log(f("load failed: %v", err))
		return
	}

	m.Cpu.Load(prog)
	m.interval = tickInterval(m.Rate.Rate())
	m.elapsed = 0
	m.state = STATE_RUNNING

	if m.Verbose {
		log.Printf("machine: started, %v lines, interval %v", prog.Len(), m.interval)
	}

	return
}

// Stop pauses execution; the run can be resumed from index zero with another
// Start. Stopping an idle or halted machine is a no-op.
func (m *Machine) Stop() {
	if m.state != STATE_RUNNING {
		return
	}

	m.state = STATE_IDLE
	m.Display.Log(f("run stopped"))

	if m.Verbose {
		log.Printf("machine: stopped at %v", m.Cpu.Ip)
	}
}

// Tick accumulates elapsed time and, once the interval has passed, executes
// exactly one instruction and refreshes the display. Instruction errors never
// propagate: recoverable ones are logged and the run continues, fatal ones
// halt the run.
func (m *Machine) Tick(elapsed time.Duration) {
	if m.state != STATE_RUNNING {
		return
	}

	m.elapsed += elapsed
	if m.elapsed < m.interval {
		return
	}
	m.elapsed = 0

	lineno := m.Cpu.Ip + 1

	err := m.Cpu.Tick()
	switch {
	case err == nil:
		// pass
	case errors.Is(err, cpu.ErrProgramEnd):
		m.halt(err.Error())
	case errors.Is(err, cpu.ErrHalted), errors.Is(err, cpu.ErrStackEmpty):
		m.halt((&ErrRuntime{LineNo: lineno, Err: err}).Error())
	default:
		// Recoverable: the instruction was abandoned, the run goes on.
		m.Display.Log((&ErrRuntime{LineNo: lineno, Err: err}).Error())
	}

	m.refresh()
}

// halt moves to the terminal run state.
func (m *Machine) halt(event string) {
	m.state = STATE_HALTED
	m.Display.Log(event)

	if m.Verbose {
		log.Printf("machine: %v", event)
	}
}

// refresh pushes the register and memory dumps to the display.
func (m *Machine) refresh() {
	m.Display.ShowRegisters(m.Cpu.Register[:])
	m.Display.ShowMemory(m.Cpu.Memory[:])
}
