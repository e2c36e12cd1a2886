// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/ezrec/ucpu/console"
	"github.com/ezrec/ucpu/machine"
)

const frame = time.Millisecond

func main() {
	var rate int
	var verbose bool

	flag.IntVar(&rate, "r", 100, "Execution rate, instructions per second")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatalf("%v: expected a single program file", os.Args[0])
	}

	text, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatalf("%v: %v", flag.Arg(0), err)
	}

	con := &console.Console{}

	m := machine.NewMachine(machine.SourceText(text), con, machine.FixedRate(rate))
	m.Verbose = verbose

	err = m.Start()
	if err != nil {
		log.Fatalf("%v: %v", flag.Arg(0), err)
	}

	ticker := time.NewTicker(frame)
	defer ticker.Stop()

	last := time.Now()
	for m.State() == machine.STATE_RUNNING {
		now := <-ticker.C
		m.Tick(now.Sub(last))
		last = now
	}

	con.Render(os.Stdout)
}
