package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/colorfulnotion/neovm/interop"
	"github.com/colorfulnotion/neovm/storage"
	"github.com/colorfulnotion/neovm/vm"
)

const debugHelp = `commands:
  s, step          execute one instruction
  n, over          step over calls
  o, out           run until the current context returns
  c, run           run to breakpoint or completion
  b, break <off>   toggle a breakpoint at script offset
  st, stack        show the current evaluation stack
  r, result        show the result stack
  d, disasm        disassemble the entry script
  w, where         show the current instruction
  g, gas           show gas consumed / remaining
  q, quit          leave the debugger`

// runDebugger drives an interactive step session over script.
func runDebugger(code []byte, snapshot storage.Snapshot, gasLimit int64) error {
	ae := interop.NewApplicationEngine(interop.Application, snapshot, gasLimit)
	script, err := vm.NewScript(code)
	if err != nil {
		return err
	}
	if _, err := ae.LoadScript(script, -1); err != nil {
		return err
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:      "neovm> ",
		HistoryFile: "/tmp/neovm_debug_history.txt",
	})
	if err != nil {
		return fmt.Errorf("failed to start readline: %w", err)
	}
	defer rl.Close()

	fmt.Println(debugHelp)
	printLocation(ae.Engine)

	for ae.State() != vm.HaltState && ae.State() != vm.FaultState {
		line, err := rl.Readline()
		if err != nil { // io.EOF or interrupt
			return nil
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "s", "step":
			ae.StepInto()
			printLocation(ae.Engine)
		case "n", "over":
			ae.StepOver()
			printLocation(ae.Engine)
		case "o", "out":
			ae.StepOut()
			printLocation(ae.Engine)
		case "c", "run", "continue":
			ae.Run()
			printLocation(ae.Engine)
		case "b", "break":
			if len(fields) != 2 {
				fmt.Println("usage: break <offset>")
				continue
			}
			offset, err := strconv.Atoi(fields[1])
			if err != nil {
				fmt.Printf("bad offset: %v\n", err)
				continue
			}
			ae.AddBreakpoint(script, offset)
			fmt.Printf("breakpoint at %d\n", offset)
		case "st", "stack":
			fmt.Print(renderEvalStack(ae.Engine))
		case "r", "result":
			fmt.Print(renderResultStack(ae.Engine))
		case "d", "disasm":
			text, _ := vm.DisassembleString(code)
			fmt.Print(text)
		case "w", "where":
			printLocation(ae.Engine)
		case "g", "gas":
			fmt.Printf("consumed %d, remaining %d\n", ae.GasConsumed(), ae.GasLeft())
		case "q", "quit", "exit":
			return nil
		case "h", "help":
			fmt.Println(debugHelp)
		default:
			fmt.Printf("unknown command %q (h for help)\n", fields[0])
		}
	}

	fmt.Printf("State:        %s\n", ae.State())
	fmt.Printf("Gas consumed: %d\n", ae.GasConsumed())
	if err := ae.FaultError(); err != nil {
		fmt.Printf("Fault:        %v\n", err)
	}
	fmt.Print(renderResultStack(ae.Engine))
	return nil
}

func printLocation(e *vm.Engine) {
	if e.State() == vm.HaltState || e.State() == vm.FaultState {
		fmt.Printf("[%s]\n", e.State())
		return
	}
	ctx := e.Context()
	if ctx == nil {
		return
	}
	in, err := ctx.Script().InstructionAt(ctx.IP())
	if err != nil {
		fmt.Printf("%04d  <end>\n", ctx.IP())
		return
	}
	fmt.Printf("%04d  %s\n", ctx.IP(), in)
}
