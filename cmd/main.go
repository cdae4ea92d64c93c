package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "fireplace_cli/docs"
	"fireplace_cli/internal/config"
	"fireplace_cli/internal/display"
	"fireplace_cli/internal/logger"
	"fireplace_cli/internal/mqtt"
	"fireplace_cli/internal/protocol"
	"fireplace_cli/internal/repository"
	"fireplace_cli/internal/repository/db"
	"fireplace_cli/internal/service"
	"fireplace_cli/internal/session"

	"github.com/spf13/cobra"
)

const (
	version = "1.0.0"

	defaultPollInterval = time.Minute
	defaultSimAddr      = "127.0.0.1:2000"
	defaultSimTick      = time.Second
	shutdownTimeout     = 10 * time.Second
)

var (
	errMissingCommand = errors.New("missing command")
	errJournalMissing = errors.New("this command needs the journal: set JOURNAL_PATH or --journal")
)

// @title                       Fireplace Bridge API
// @version                     1.0
// @description                 Remote control for a networked fireplace appliance.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// app carries what every command needs. cfg and log are set before any RunE.
type app struct {
	cfg *config.Config
	log *logger.Logger
	out io.Writer
}

func run(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{out: stdout}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if a.log != nil {
		_ = a.log.Sync()
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		fmt.Fprintf(stderr, "Run '%s --help' for usage.\n", root.Name())
		return 1
	}
	return 0
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "fireplace_cli",
		Short: "Control your fireplace from the terminal",
		Long: fmt.Sprintf(`Control your fireplace from the terminal.

Settings are read from %s (searched in the working directory and its parents),
then from the environment, then from flags:
  %-20s IP address of your fireplace
  %-20s display unit, F (Fahrenheit) or C (Celsius), default F
  %-20s SQLite journal path, empty disables the journal
  %-20s broker for status reports, e.g. mqtt://localhost:1883`,
			config.FileName, config.KeyFireplaceIP, config.KeyTemperatureUnit,
			config.KeyJournalPath, config.KeyMQTTURL),
		Example: `  fireplace_cli status 192.168.1.100
  fireplace_cli on 192.168.1.100
  fireplace_cli mode temperature 192.168.1.100
  fireplace_cli temp 72 192.168.1.100`,
		Version:           version,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error { return a.load(cmd.Root()) },
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = cmd.Help()
			return errMissingCommand
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	config.BindFlags(root.PersistentFlags())

	root.AddCommand(
		a.onCmd(),
		a.offCmd(),
		a.statusCmd(),
		a.modeCmd(),
		a.temperatureCmd(),
		a.historyCmd(),
		a.serveCmd(),
		a.mcpCmd(),
		a.hashKeyCmd(),
		a.registerClientCmd(),
		a.simulateCmd(),
	)
	return root
}

// load resolves the configuration from the root's persistent flags.
func (a *app) load(root *cobra.Command) error {
	cfg, err := config.Load("", root.PersistentFlags())
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logger.Get(cfg.LogLevel)
	if cfg.FileErr != nil {
		a.log.Warnw("config_file_ignored", "file", cfg.File, "err", cfg.FileErr)
	}
	return nil
}

// resolveAddress validates the appliance address before any network activity.
func (a *app) resolveAddress(args []string) (string, error) {
	ip, err := a.cfg.ResolveAddress(args)
	if err != nil {
		return "", fmt.Errorf("%w. Either set %s, pass --ip or provide the IP as the last argument (e.g. fireplace_cli status 192.168.1.100)",
			err, config.KeyFireplaceIP)
	}
	return ip, nil
}

// openJournal opens the SQLite journal when configured. repos is nil when the
// journal is disabled; the returned close func is always safe to call.
func (a *app) openJournal() (*repository.Repository, func(), error) {
	if a.cfg.JournalPath == "" {
		return nil, func() {}, nil
	}
	conn, err := db.InitDB(a.cfg.JournalPath)
	if err != nil {
		return nil, nil, err
	}
	return repository.NewRepository(conn), func() {
		if cerr := conn.Close(); cerr != nil {
			a.log.Warnw("journal_close_failed", "err", cerr)
		}
	}, nil
}

// newController builds the operation controller for the appliance at ip, with
// the journal and the MQTT publisher attached when they are configured.
func (a *app) newController(ctx context.Context, ip string, repos *repository.Repository) (*service.Controller, func()) {
	opts := []service.ControllerOption{service.WithLogger(a.log)}
	closers := []func(){}

	if repos != nil {
		opts = append(opts, service.WithJournal(service.NewJournalService(repos.Journal)))
	}
	if a.cfg.MQTT.Enabled() {
		pub, err := mqtt.Connect(ctx, mqtt.Config{
			URL:      a.cfg.MQTT.URL,
			Topic:    a.cfg.MQTT.Topic,
			Username: a.cfg.MQTT.Username,
			Password: a.cfg.MQTT.Password,
		}, a.log)
		if err != nil {
			a.log.Warnw("mqtt_disabled", "err", err)
		} else {
			opts = append(opts, service.WithPublisher(pub))
			closers = append(closers, func() {
				cctx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				_ = pub.Close(cctx)
			})
		}
	}

	addr := net.JoinHostPort(ip, strconv.Itoa(protocol.Port))
	ctrl := service.NewController(service.SessionFactoryFor(addr, session.WithLogger(a.log)), opts...)
	return ctrl, func() {
		for _, c := range closers {
			c()
		}
	}
}

func randomSecret() ([]byte, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("generate jwt secret: %w", err)
	}
	return []byte(hex.EncodeToString(buf)), nil
}

// rangeHelp lists the accepted temperature range for both display units.
func rangeHelp() string {
	flo, fhi := display.Bounds(display.Fahrenheit)
	clo, chi := display.Bounds(display.Celsius)
	return fmt.Sprintf("Valid range: %.0f-%.0f°F or %.0f-%.0f°C", flo, fhi, clo, chi)
}
