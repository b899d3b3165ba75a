package main

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use: "rvkernel",
	Short: "rvkernel simulates the trap and interrupt handling of a " +
		"small RISC-V kernel.",
	Long: `rvkernel simulates the trap and interrupt handling of a small ` +
		`RISC-V kernel: system calls, timer preemption, demand paging of ` +
		`memory-mapped files, and an e1000 network device.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
