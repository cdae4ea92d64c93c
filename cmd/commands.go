package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"fireplace_cli/internal/config"
	"fireplace_cli/internal/display"
	"fireplace_cli/internal/handlers"
	"fireplace_cli/internal/mcpserver"
	"fireplace_cli/internal/models"
	"fireplace_cli/internal/server"
	"fireplace_cli/internal/service"
	"fireplace_cli/internal/simulator"

	"github.com/spf13/cobra"
)

// operation is one appliance command, prepared from its arguments.
type operation struct {
	start string
	// done is printed on completion; empty for queries.
	done string
	call func(ctx context.Context, ctrl *service.Controller) (service.Report, error)
}

// valueArgs requires one value argument followed by an optional IP.
func valueArgs(missing string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errors.New(missing)
		}
		return cobra.MaximumNArgs(2)(cmd, args)
	}
}

// fireplaceCmd wires an appliance command. The address and the arguments are
// validated before any connection is opened.
func (a *app) fireplaceCmd(cmd *cobra.Command, prepare func(args []string) (operation, error)) *cobra.Command {
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		ip, err := a.resolveAddress(args)
		if err != nil {
			return err
		}
		op, err := prepare(args)
		if err != nil {
			return err
		}

		repos, closeJournal, err := a.openJournal()
		if err != nil {
			return err
		}
		defer closeJournal()
		ctrl, closeCtrl := a.newController(cmd.Context(), ip, repos)
		defer closeCtrl()

		fmt.Fprintln(a.out, op.start)
		rep, err := op.call(cmd.Context(), ctrl)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, display.StatusCard(rep.Status, rep.Reachable, a.cfg.Unit))
		switch {
		case op.done == "":
		case !rep.Completed:
			fmt.Fprintf(a.out, "Fireplace is igniting. Run '%s' again in about a minute to finish.\n", cmd.CommandPath())
		default:
			fmt.Fprintln(a.out, "✓ "+op.done)
		}
		return nil
	}
	return cmd
}

func (a *app) onCmd() *cobra.Command {
	return a.fireplaceCmd(&cobra.Command{
		Use:   "on [ip]",
		Short: "Turn on the fireplace",
		Args:  cobra.MaximumNArgs(1),
	}, func([]string) (operation, error) {
		return operation{
			start: "Turning on fireplace...",
			done:  "Fireplace turned on",
			call: func(ctx context.Context, c *service.Controller) (service.Report, error) {
				return c.TurnOn(ctx)
			},
		}, nil
	})
}

func (a *app) offCmd() *cobra.Command {
	return a.fireplaceCmd(&cobra.Command{
		Use:   "off [ip]",
		Short: "Turn off the fireplace",
		Args:  cobra.MaximumNArgs(1),
	}, func([]string) (operation, error) {
		return operation{
			start: "Turning off fireplace...",
			done:  "Fireplace turned off",
			call: func(ctx context.Context, c *service.Controller) (service.Report, error) {
				return c.TurnOff(ctx)
			},
		}, nil
	})
}

func (a *app) statusCmd() *cobra.Command {
	return a.fireplaceCmd(&cobra.Command{
		Use:   "status [ip]",
		Short: "Get current fireplace status",
		Args:  cobra.MaximumNArgs(1),
	}, func([]string) (operation, error) {
		return operation{
			start: "Getting fireplace status...",
			call: func(ctx context.Context, c *service.Controller) (service.Report, error) {
				return c.Status(ctx)
			},
		}, nil
	})
}

func (a *app) modeCmd() *cobra.Command {
	return a.fireplaceCmd(&cobra.Command{
		Use:   "mode <manual|eco|temperature|off> [ip]",
		Short: "Set operation mode",
		Args:  valueArgs("mode command requires a mode argument. Valid modes: manual, eco, temperature, off"),
	}, func(args []string) (operation, error) {
		mode, err := models.ParseOperationMode(args[0])
		if err != nil {
			return operation{}, err
		}
		return operation{
			start: fmt.Sprintf("Setting mode to %s...", mode),
			done:  "Mode set to " + mode.String(),
			call: func(ctx context.Context, c *service.Controller) (service.Report, error) {
				return c.SetMode(ctx, mode)
			},
		}, nil
	})
}

func (a *app) temperatureCmd() *cobra.Command {
	return a.fireplaceCmd(&cobra.Command{
		Use:     "temperature <value> [ip]",
		Aliases: []string{"temp"},
		Short:   "Set the target temperature in the display unit",
		Long:    "Set the target temperature in the display unit. " + rangeHelp() + ".",
		Args:    valueArgs("temperature command requires a temperature value. " + rangeHelp()),
	}, func(args []string) (operation, error) {
		v, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return operation{}, fmt.Errorf("invalid temperature '%s'. %s", args[0], display.RangeMessage(a.cfg.Unit))
		}
		celsius, err := display.ValidateAndConvert(v, a.cfg.Unit)
		if err != nil {
			return operation{}, err
		}
		formatted := display.FormatTemperature(celsius, a.cfg.Unit)
		return operation{
			start: fmt.Sprintf("Setting temperature to %s...", formatted),
			done:  "Temperature set to " + formatted,
			call: func(ctx context.Context, c *service.Controller) (service.Report, error) {
				return c.SetTemperature(ctx, celsius)
			},
		}, nil
	})
}

func (a *app) historyCmd() *cobra.Command {
	var entryType, since string
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the operation journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repos, closeJournal, err := a.openJournal()
			if err != nil {
				return err
			}
			defer closeJournal()
			if repos == nil {
				return errJournalMissing
			}

			filter := service.JournalFilter{Type: entryType}
			if since != "" {
				if d, derr := time.ParseDuration(since); derr == nil {
					filter.From = time.Now().Add(-d)
				} else if filter.From, err = handlers.ParseQueryTime(since); err != nil {
					return fmt.Errorf("invalid --since: %w", err)
				}
			}

			entries, err := service.NewJournalService(repos.Journal).List(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(a.out, "No journal entries.")
				return nil
			}
			for _, e := range entries {
				fmt.Fprintf(a.out, "%s  %-15s  %s\n", e.OccurredAt.Local().Format("2006-01-02 15:04:05"), e.Type, e.Description)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&entryType, "type", "", "only entries of this type, e.g. TURN_ON")
	cmd.Flags().StringVar(&since, "since", "", "start of range, a date (2026-10-01) or a duration (24h)")
	return cmd
}

func (a *app) serveCmd() *cobra.Command {
	var poll time.Duration
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP bridge",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			ip, err := a.cfg.ResolveAddress(nil)
			if err != nil {
				return fmt.Errorf("%w. serve needs %s or --ip", err, config.KeyFireplaceIP)
			}
			repos, closeJournal, err := a.openJournal()
			if err != nil {
				return err
			}
			defer closeJournal()

			secret := []byte(a.cfg.JWTSecret)
			if len(secret) == 0 {
				if secret, err = randomSecret(); err != nil {
					return err
				}
				a.log.Warnw("jwt_secret_generated", "hint", "set "+config.KeyJWTSecret+" so tokens survive restarts")
			}
			if a.cfg.APIKeyHash == "" && repos == nil {
				a.log.Warnw("no_api_clients", "hint", "set "+config.KeyAPIKeyHash+" or enable the journal and register clients")
			}

			ctrl, closeCtrl := a.newController(ctx, ip, repos)
			defer closeCtrl()
			monitor := service.NewMonitor(ctrl, a.log)
			ctrl.AddPublisher(monitor)
			services := service.NewService(repos, ctrl, monitor, service.AuthConfig{Secret: secret, APIKeyHash: a.cfg.APIKeyHash})
			apiHandler := handlers.NewHandler(services, a.log, a.cfg.Unit)

			go monitor.Run(ctx, poll)

			srv := &server.Server{}
			errc := make(chan error, 1)
			go func() { errc <- srv.Run(a.cfg.HTTPPort, apiHandler.InitRoutes()) }()
			a.log.Infow("http_listening", "port", a.cfg.HTTPPort, "fireplace", ip)

			select {
			case err := <-errc:
				return fmt.Errorf("http server: %w", err)
			case <-ctx.Done():
			}

			a.log.Infow("shutting down server...")
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(sctx)
		},
	}
	cmd.Flags().DurationVar(&poll, "poll", defaultPollInterval, "status poll interval, 0 disables polling")
	return cmd
}

func (a *app) mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp [ip]",
		Short: "Serve the fireplace tools over MCP on stdio",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ip, err := a.resolveAddress(args)
			if err != nil {
				return err
			}
			repos, closeJournal, err := a.openJournal()
			if err != nil {
				return err
			}
			defer closeJournal()
			ctrl, closeCtrl := a.newController(cmd.Context(), ip, repos)
			defer closeCtrl()

			return mcpserver.New(ctrl, a.cfg.Unit, version, a.log).Serve(cmd.Context(), cmd.InOrStdin(), a.out)
		},
	}
}

func (a *app) hashKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-key <key>",
		Short: "Print the bcrypt hash of an API key for " + config.KeyAPIKeyHash,
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			hash, err := service.HashAPIKey(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, hash)
			return nil
		},
	}
}

func (a *app) registerClientCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register-client <name> <key>",
		Short: "Allow a named client to request API tokens",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			repos, closeJournal, err := a.openJournal()
			if err != nil {
				return err
			}
			defer closeJournal()
			if repos == nil {
				return errJournalMissing
			}
			name := strings.TrimSpace(args[0])
			id, err := service.NewAuthService(repos.Clients, service.AuthConfig{}).RegisterClient(name, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "✓ Registered client %s (id %d)\n", name, id)
			return nil
		},
	}
}

func (a *app) simulateCmd() *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a simulated fireplace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sim, err := simulator.Listen(listen, simulator.WithLogger(a.log))
			if err != nil {
				return err
			}
			defer func() { _ = sim.Close() }()
			go sim.Run(cmd.Context(), defaultSimTick)

			fmt.Fprintf(a.out, "Simulated fireplace listening on %s. Press Ctrl+C to stop.\n", sim.Addr())
			<-cmd.Context().Done()
			return nil
		},
	}
	cmd.Flags().StringVar(&listen, "listen", defaultSimAddr, "address to listen on")
	return cmd
}
