// Package main is the rvkernel command-line tool. It runs workloads on
// the simulated RISC-V machine.
package main

func main() {
	Execute()
}
