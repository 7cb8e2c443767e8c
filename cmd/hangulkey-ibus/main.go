//go:build linux

// hangulkey-ibus is the Linux IBus input method engine.
//
// Installation:
//  1. Copy the binary to /usr/local/bin/hangulkey-ibus
//  2. Run: hangulkey-ibus -install
//  3. Enable via ibus-setup or GNOME Settings > Keyboard > Input Sources
//
// IBus starts the engine with -ibus. Configuration changes are picked up
// without a restart.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"hangulkey/internal/config"
	"hangulkey/internal/ime"
	"hangulkey/internal/logging"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	installFlag := flag.Bool("install", false, "Install IBus component")
	uninstallFlag := flag.Bool("uninstall", false, "Uninstall IBus component")
	ibusFlag := flag.Bool("ibus", false, "Run as an engine launched by IBus")
	flag.Parse()

	loader := config.NewLoader(*configPath)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if *installFlag || *uninstallFlag {
		if err := manageComponent(cfg, *installFlag); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if !*ibusFlag {
		fmt.Fprintln(os.Stderr, "hangulkey-ibus is started by IBus. Use -install to register it.")
	}

	settings, err := logging.FromSettings(cfg.Logging, "ibus")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error configuring logging: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(settings)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()
	logging.SetDefault(logger)

	if err := run(loader, cfg, logger); err != nil {
		logging.Error("engine stopped", "error", err)
		logger.Sync()
		os.Exit(1)
	}
}

func run(loader *config.Loader, cfg *config.Config, logger *logging.Logger) error {
	service, err := ime.NewIBusService(cfg, logger)
	if err != nil {
		return err
	}
	defer service.Stop()

	if err := service.Start(); err != nil {
		return err
	}

	loader.OnChange(func(c *config.Config) {
		logging.Debug("config changed", "path", loader.Path())
		if err := service.ApplyConfig(c); err != nil {
			logging.Warn("config not applied", "error", err)
		}
	})
	if err := loader.Watch(); err != nil {
		logging.Warn("config watch unavailable", "error", err)
	}
	defer loader.Close()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case err := <-loader.Errors():
			logging.Warn("config reload failed", "path", loader.Path(), "error", err)
		case sig := <-sigChan:
			logging.Info("shutting down", "signal", sig.String())
			return nil
		}
	}
}

func manageComponent(cfg *config.Config, install bool) error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return err
	}

	platform := ime.NewPlatform(ime.PlatformConfig{IBus: cfg.IBus, Exec: exe})
	if !platform.Available() {
		return fmt.Errorf("IBus is not installed")
	}

	if !install {
		if err := platform.Uninstall(); err != nil {
			return err
		}
		fmt.Println("Uninstalled successfully.")
		return nil
	}

	if err := platform.Install(); err != nil {
		return err
	}
	fmt.Printf("Installed %s. Add it under Settings > Keyboard > Input Sources.\n", cfg.IBus.EngineName)
	return nil
}
