// goveectl - Govee cloud session monitor
//
// This is the main entry point for the goveectl CLI. It logs into the
// Govee cloud, loads the account's device list, and then streams device
// state changes from the vendor's message broker until interrupted.
//
// Configuration is read from a YAML file (GOVEE_CONFIG environment
// variable, or configs/config.yaml) with GOVEE_* environment overrides
// for credentials.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	govee "github.com/towlerj/govee-api"
	"github.com/towlerj/govee-api/certstore"
	"github.com/towlerj/govee-api/internal/infrastructure/config"
	"github.com/towlerj/govee-api/internal/infrastructure/logging"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting goveectl",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)

	// Open the broker certificate store
	certs, err := certstore.NewDir(cfg.Certificates.Dir)
	if err != nil {
		return fmt.Errorf("opening certificate store: %w", err)
	}
	log.Info("certificate store opened", "dir", cfg.Certificates.Dir)

	// Create the cloud session
	session, err := govee.New(govee.Config{
		Email:      cfg.Account.Email,
		Password:   cfg.Account.Password,
		ClientID:   cfg.Account.ClientID,
		APIHost:    cfg.API.Host,
		APIKey:     cfg.API.Key,
		BrokerHost: cfg.Broker.Host,
		BrokerPort: cfg.Broker.Port,
	}, certs)
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	defer func() {
		log.Info("closing session")
		session.Close()
	}()

	session.SetLogger(log)
	session.SetEventSink(govee.EventFuncs{
		NewDevice: func(_ *govee.Session, d *govee.Device) {
			log.Info("device discovered",
				"id", d.ID(),
				"sku", d.SKU(),
				"name", d.Name(),
				"kind", d.Kind().FriendlyName(),
			)
		},
		DeviceUpdate: func(_ *govee.Session, d *govee.Device) {
			logDeviceState(log, d)
		},
	})

	// The client identifier is generated on first run; log it so the
	// operator can persist it in config and keep a stable broker identity.
	log.Info("client identity", "client_id", session.ClientID())

	// Log in and establish the broker connection
	if err := session.Login(ctx); err != nil {
		return fmt.Errorf("logging in: %w", err)
	}
	log.Info("logged in")

	// Load the account's device list (also polls each device for state)
	if err := session.RefreshDeviceList(ctx); err != nil {
		return fmt.Errorf("loading device list: %w", err)
	}
	log.Info("device list loaded", "devices", len(session.Devices()))

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses GOVEE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("GOVEE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// logDeviceState logs the current known state of a device after an update.
// Unknown fields are omitted rather than logged as zero values.
func logDeviceState(log *logging.Logger, d *govee.Device) {
	args := []any{
		"id", d.ID(),
		"name", d.Name(),
	}

	if connected, known := d.Connected().Bool(); known {
		args = append(args, "connected", connected)
	}
	if on, known := d.Power().Bool(); known {
		args = append(args, "power", on)
	}
	if brightness, known := d.Brightness(); known {
		args = append(args, "brightness", fmt.Sprintf("%.0f%%", brightness*100))
	}
	if c, known := d.Color(); known {
		args = append(args, "color", fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
	}
	if kelvin, known := d.ColorTemperature(); known {
		args = append(args, "color_temp_k", kelvin)
	}

	log.Info("device update", args...)
}
