package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/rvkernel/simulation"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the demo workload on the simulated machine.",
	Run: func(cmd *cobra.Command, _ []string) {
		runDemo(cmd)
	},
}

func init() {
	runCmd.Flags().Bool("no-monitor", false,
		"disable the monitoring server")
	runCmd.Flags().Int("monitor-port", 0,
		"port for the monitoring server, 0 picks a free one")
	runCmd.Flags().Bool("open-dashboard", false,
		"open the monitoring dashboard in a browser")
	runCmd.Flags().String("output", "",
		"name of the recording database, without the .sqlite3 suffix")
	runCmd.Flags().Uint64("timer-interval", 0,
		"timer interrupt interval in cycles, 0 keeps the default")
	runCmd.Flags().Int("timer-budget", 8,
		"number of timer interrupts to deliver before stopping")
	runCmd.Flags().Bool("debug-events", false,
		"log every event the engine triggers")

	rootCmd.AddCommand(runCmd)
}

func runDemo(cmd *cobra.Command) {
	// flags win over .env, .env wins over built-in defaults
	_ = godotenv.Load()

	logger := log.New(os.Stdout, "", 0)
	b := builderFromFlags(cmd, logger)
	s := b.Build()

	noMonitor, _ := cmd.Flags().GetBool("no-monitor")
	if !noMonitor {
		logger.Printf("monitoring dashboard at %s", s.MonitorURL())

		openDashboard, _ := cmd.Flags().GetBool("open-dashboard")
		if openDashboard {
			if err := browser.OpenURL(s.MonitorURL()); err != nil {
				logger.Printf("cannot open browser: %s", err)
			}
		}
	}

	if err := s.RunDemo(logger); err != nil {
		atexit.Fatalf("demo failed: %s", err)
	}

	s.Terminate()
	atexit.Exit(0)
}

func builderFromFlags(
	cmd *cobra.Command,
	logger *log.Logger,
) simulation.Builder {
	b := simulation.MakeBuilder().WithLogger(logger)

	if noMonitor, _ := cmd.Flags().GetBool("no-monitor"); noMonitor {
		b = b.WithoutMonitoring()
	} else if port, _ := cmd.Flags().GetInt("monitor-port"); port != 0 {
		b = b.WithMonitorPort(port)
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		output = os.Getenv("RVKERNEL_OUTPUT")
	}
	if output != "" {
		b = b.WithOutputFileName(output)
	}

	if interval, _ := cmd.Flags().GetUint64("timer-interval"); interval != 0 {
		b = b.WithTimerInterval(interval)
	}
	if budget, _ := cmd.Flags().GetInt("timer-budget"); budget != 0 {
		b = b.WithTimerBudget(budget)
	}
	if debug, _ := cmd.Flags().GetBool("debug-events"); debug {
		b = b.WithEventLogging()
	}

	return b
}
