// Command pixeld is the central coordination server for a fleet of
// networked pixel devices: it accepts device registrations, supervises
// one renderer child process per device, and fans monitoring packages
// out to subscribed GUI monitor clients.
//
// Usage:
//
//	pixeld -config /etc/pixeld/config.yaml
//
// Flags:
//
//	-config string     Configuration file path (required)
//	-log-level string  Log level: debug, info, warn, error (default "info")
//	-protocol-log string  File path for protocol event logging (CBOR format)
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/airpixel-go/pixeld/internal/config"
	"github.com/airpixel-go/pixeld/internal/registry"
	"github.com/airpixel-go/pixeld/internal/router"
	"github.com/airpixel-go/pixeld/internal/server"
	"github.com/airpixel-go/pixeld/pkg/discovery"
	pixellog "github.com/airpixel-go/pixeld/pkg/log"
)

func main() {
	configPath := flag.String("config", "", "Configuration file path")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	protocolLogPath := flag.String("protocol-log", "", "File path for protocol event logging (CBOR format)")
	flag.Parse()

	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "pixeld: -config is required")
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(*logLevel)}))
	slog.SetDefault(logger)

	if err := run(*configPath, logger, *protocolLogPath); err != nil {
		logger.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func run(configPath string, logger *slog.Logger, protocolLogPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	eventLogger, closeEventLogger, err := buildEventLogger(logger, protocolLogPath)
	if err != nil {
		return err
	}
	defer closeEventLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sup := registry.NewSupervisor(cfg.Profiles(), registry.WithLogger(eventLogger))
	defer sup.Cleanup()

	sender, err := router.NewUDPSender()
	if err != nil {
		return fmt.Errorf("pixeld: monitoring fan-out socket: %w", err)
	}
	defer sender.Close()
	rtr := router.NewRouter(sender, router.WithLogger(eventLogger))

	registrationAddr := fmt.Sprintf("%s:%d", cfg.Address, cfg.Port)
	keepaliveAddr := fmt.Sprintf("%s:%d", cfg.Address, cfg.UDPPort)
	subscriptionAddr := fmt.Sprintf("%s:%d", cfg.Address, cfg.SubscriptionPort)
	monitorKeepaliveAddr := fmt.Sprintf("%s:%d", cfg.Address, cfg.MonitorKeepalivePort)

	registrationListener, err := server.NewRegistrationListener(registrationAddr, sup, uint16(cfg.UDPPort), eventLogger)
	if err != nil {
		return fmt.Errorf("pixeld: registration listener: %w", err)
	}
	keepaliveListener, err := server.NewDeviceKeepaliveListener(keepaliveAddr, sup, eventLogger)
	if err != nil {
		return fmt.Errorf("pixeld: device keepalive listener: %w", err)
	}
	ingestListener, err := server.NewUnixIngestListener(cfg.UnixSocket, rtr)
	if err != nil {
		return fmt.Errorf("pixeld: monitoring ingest listener: %w", err)
	}
	subscriptionListener, err := server.NewSubscriptionListener(subscriptionAddr, rtr, uint16(cfg.MonitorKeepalivePort), eventLogger)
	if err != nil {
		return fmt.Errorf("pixeld: subscription listener: %w", err)
	}
	monitorKeepaliveListener, err := server.NewMonitorKeepaliveListener(monitorKeepaliveAddr, rtr)
	if err != nil {
		return fmt.Errorf("pixeld: monitor keepalive listener: %w", err)
	}

	registrationListener.Start()
	defer registrationListener.Stop()
	keepaliveListener.Start()
	defer keepaliveListener.Stop()
	ingestListener.Start()
	defer ingestListener.Stop()
	subscriptionListener.Start()
	defer subscriptionListener.Stop()
	monitorKeepaliveListener.Start()
	defer monitorKeepaliveListener.Stop()

	go sup.RunPurgeLoop(ctx, cfg.DeviceTimeout.Duration())
	go rtr.RunPurgeLoop(ctx, cfg.SubscriptionTimeout.Duration())

	var advertiser discovery.Advertiser
	if cfg.MDNS.Enabled {
		err := advertiser.Advertise(cfg.MDNS.Instance, discovery.Ports{
			Registration:     cfg.Port,
			DeviceKeepalive:  cfg.UDPPort,
			Subscription:     cfg.SubscriptionPort,
			MonitorKeepalive: cfg.MonitorKeepalivePort,
		})
		if err != nil {
			logger.Warn("mdns advertisement failed", "err", err)
		} else {
			defer advertiser.Stop()
		}
	}

	logger.Info("pixeld started",
		"registration_addr", registrationAddr,
		"keepalive_addr", keepaliveAddr,
		"subscription_addr", subscriptionAddr,
		"monitor_keepalive_addr", monitorKeepaliveAddr,
		"unix_socket", cfg.UnixSocket,
	)

	<-ctx.Done()
	logger.Info("shutting down")
	return nil
}

// buildEventLogger wires the CBOR protocol-event logger alongside the
// slog adapter, fanning every event to both when a protocol log path
// is configured.
func buildEventLogger(logger *slog.Logger, protocolLogPath string) (pixellog.Logger, func(), error) {
	slogAdapter := pixellog.NewSlogAdapter(logger)
	if protocolLogPath == "" {
		return slogAdapter, func() {}, nil
	}

	fileLogger, err := pixellog.NewFileLogger(protocolLogPath)
	if err != nil {
		return nil, nil, fmt.Errorf("pixeld: protocol log %s: %w", protocolLogPath, err)
	}

	combined := pixellog.NewMultiLogger(slogAdapter, fileLogger)
	return combined, func() { _ = fileLogger.Close() }, nil
}
