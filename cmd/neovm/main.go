// neovm - standalone runner and debugger for contract bytecode.
package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"

	"github.com/colorfulnotion/neovm/interop"
	"github.com/colorfulnotion/neovm/log"
	"github.com/colorfulnotion/neovm/storage"
	"github.com/colorfulnotion/neovm/vm"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)

// loadScript reads bytecode from a hex argument (with or without 0x prefix)
// or, with a leading @, from a file of raw bytes.
func loadScript(arg string) ([]byte, error) {
	if strings.HasPrefix(arg, "@") {
		return os.ReadFile(arg[1:])
	}
	if strings.HasPrefix(arg, "0x") {
		return hexutil.Decode(arg)
	}
	return hex.DecodeString(arg)
}

func openSnapshot(dbPath string) (storage.Snapshot, error) {
	if dbPath == "" {
		return storage.NewMemoryStore(), nil
	}
	return storage.NewLevelDBStore(dbPath)
}

func main() {
	var rootCmd = &cobra.Command{
		Use:   "neovm",
		Short: "Deterministic gas-metered contract VM",
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	var (
		gasLimit int64
		dbPath   string
		logLevel string
		debug    string
	)
	rootCmd.PersistentFlags().Int64Var(&gasLimit, "gas", -1, "gas limit in base fee units (-1 = unmetered)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "LevelDB path for contract storage (empty = in-memory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "loglevel", "info", "log level (trace/debug/info/warn/error)")
	rootCmd.PersistentFlags().StringVar(&debug, "debug", "", "comma-separated log modules to enable (vm_mod,interop_mod,store_mod,cli_mod)")

	var runCmd = &cobra.Command{
		Use:   "run <script-hex | @file>",
		Short: "Execute a script to completion and print the result stack",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			log.InitLogger(logLevel)
			log.EnableModules(debug)

			code, err := loadScript(args[0])
			if err != nil {
				fmt.Printf("Failed to read script: %v\n", err)
				os.Exit(1)
			}
			snapshot, err := openSnapshot(dbPath)
			if err != nil {
				fmt.Printf("Failed to open storage: %v\n", err)
				os.Exit(1)
			}
			defer snapshot.Close()

			ae := interop.NewApplicationEngine(interop.Application, snapshot, gasLimit)
			if _, err := ae.LoadScriptBytes(code); err != nil {
				fmt.Printf("Failed to load script: %v\n", err)
				os.Exit(1)
			}
			runErr := ae.Run()

			fmt.Printf("State:        %s\n", ae.State())
			fmt.Printf("Gas consumed: %d\n", ae.GasConsumed())
			if runErr != nil {
				fmt.Printf("Fault:        %v\n", runErr)
			}
			for _, n := range ae.Notifications() {
				fmt.Printf("Notification: %x %s %s\n", n.ScriptHash, n.Name, n.State)
			}
			fmt.Print(renderResultStack(ae.Engine))
			if ae.State() == vm.FaultState {
				os.Exit(1)
			}
		},
	}

	var disasmCmd = &cobra.Command{
		Use:   "disasm <script-hex | @file>",
		Short: "Disassemble a script",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			code, err := loadScript(args[0])
			if err != nil {
				fmt.Printf("Failed to read script: %v\n", err)
				os.Exit(1)
			}
			text, err := vm.DisassembleString(code)
			fmt.Print(text)
			if err != nil {
				fmt.Printf("Decode stopped: %v\n", err)
				os.Exit(1)
			}
		},
	}

	var debugCmd = &cobra.Command{
		Use:   "debug <script-hex | @file>",
		Short: "Step through a script interactively",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			log.InitLogger(logLevel)
			log.EnableModules(debug)

			code, err := loadScript(args[0])
			if err != nil {
				fmt.Printf("Failed to read script: %v\n", err)
				os.Exit(1)
			}
			snapshot, err := openSnapshot(dbPath)
			if err != nil {
				fmt.Printf("Failed to open storage: %v\n", err)
				os.Exit(1)
			}
			defer snapshot.Close()

			if err := runDebugger(code, snapshot, gasLimit); err != nil {
				fmt.Printf("Debugger error: %v\n", err)
				os.Exit(1)
			}
		},
	}

	var versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("neovm %s (commit %s, built %s)\n", Version, Commit, BuildTime)
		},
	}

	rootCmd.AddCommand(runCmd, disasmCmd, debugCmd, versionCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
