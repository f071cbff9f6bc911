package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

var configFile string

func main() {
	rootCmd := &cobra.Command{
		Use:   "chaos-echo-server",
		Short: "HTTP/TCP/UDP echo server with chaos injection and request metrics",
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", getEnv("ECHO_CONFIG_FILE", "echo.yaml"), "path to YAML config file")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "start",
			Short: "Start the server in the foreground",
			RunE:  runStart,
		},
		&cobra.Command{
			Use:   "stop",
			Short: "Stop a running server",
			RunE:  runStop,
		},
		&cobra.Command{
			Use:   "status",
			Short: "Check whether the server is running",
			RunE:  runStatus,
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the version",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Printf("chaos-echo-server %s\n", version)
			},
		},
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runStart(cmd *cobra.Command, args []string) error {
	store, chaos, err := initializeServer(configFile)
	if err != nil {
		return err
	}

	configLock.RLock()
	pidFile := config.PIDFile
	configLock.RUnlock()

	if pidFile != "" {
		if err := writePIDFile(pidFile); err != nil {
			return err
		}
		defer func() {
			if err := removePIDFile(pidFile); err != nil {
				log.Printf("Warning: failed to remove PID file: %v", err)
			}
		}()
		log.Printf("Server PID %d written to %s", os.Getpid(), pidFile)
	}

	return runServer(store, chaos)
}

func runStop(cmd *cobra.Command, args []string) error {
	pidFile := pidFilePath()
	pid, err := readPIDFile(pidFile)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Printf("Server not running (PID file %s not found).\n", pidFile)
			return nil
		}
		return err
	}

	if !processRunning(pid) {
		fmt.Printf("Process %d not found. It might have already stopped.\n", pid)
		return removePIDFile(pidFile)
	}

	fmt.Printf("Stopping server (PID: %d)...\n", pid)
	if err := stopProcess(pid); err != nil {
		return fmt.Errorf("failed to signal process %d: %w", pid, err)
	}
	fmt.Printf("Termination signal sent to process %d.\n", pid)
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	pidFile := pidFilePath()
	pid, err := readPIDFile(pidFile)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Printf("Server is stopped (PID file %s not found).\n", pidFile)
			return nil
		}
		return err
	}

	if processRunning(pid) {
		fmt.Printf("Server is running (PID: %d).\n", pid)
	} else {
		fmt.Printf("Server is stopped (PID file %s found, but process %d not running).\n", pidFile, pid)
	}
	return nil
}

// pidFilePath resolves the PID file location for stop/status, which run
// without a full validated config.
func pidFilePath() string {
	cfg, err := loadConfig(configFile)
	if err != nil {
		return defaultConfig().PIDFile
	}
	return cfg.PIDFile
}
