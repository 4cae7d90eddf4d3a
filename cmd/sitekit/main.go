// Command sitekit runs the XpertAI marketing site and admin console with
// the default views. Most deployments embed the sitekit package in their own
// binary instead; this entrypoint exists for the stock setup.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/xpertai/sitekit"
	"github.com/xpertai/sitekit/views"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to config YAML (env vars override)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("sitekit %s\n", version)
		return
	}

	cfg, err := sitekit.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	app := sitekit.New(*cfg, views.Default())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		app.Close()
		os.Exit(0)
	}()

	if err := app.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
