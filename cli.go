package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"namedesk/internal/api"
	"namedesk/internal/app"
	"namedesk/internal/bridge"
	"namedesk/internal/types"
	"namedesk/internal/ui"

	"github.com/urfave/cli/v3"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the backend over loopback HTTP without a window",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, log, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if addr := cmd.String("address"); addr != "" {
				cfg.Server.Address = addr
			}
			return app.RunHeadless(ctx, cfg, log)
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "address",
				Aliases: []string{"a"},
				Usage:   "Listen address, overrides server.address",
			},
		},
	}
}

// session is a UI model bound to a running headless server
type session struct {
	client *api.Client
	model  *ui.Model
	out    io.Writer
}

func openSession(ctx context.Context, cmd *cli.Command) (*session, error) {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	addr := cmd.String("server")
	if addr == "" {
		addr = cfg.Server.Address
	}
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}

	client := api.NewClient(addr, nil, log)
	if err := client.Ready(ctx); err != nil {
		return nil, fmt.Errorf("server at %s is not ready: %w", addr, err)
	}
	model := ui.NewModel(bridge.NewClient(client), client, ui.WithWarningTimeout(cfg.UI.WarningTimeout))
	return &session{client: client, model: model, out: output(cmd)}, nil
}

func output(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func (s *session) printRecords(records []types.Record) {
	if len(records) == 0 {
		fmt.Fprintln(s.out, "no records")
		return
	}
	for _, r := range records {
		fmt.Fprintf(s.out, "%s\t%s\n", r.ID, r.Name)
	}
}

func (s *session) printEntries(entries []string) {
	for _, e := range entries {
		fmt.Fprintln(s.out, e)
	}
}

func failure(msg string) error {
	if msg == "" {
		msg = "request failed"
	}
	return errors.New(msg)
}

func clientCommand() *cli.Command {
	return &cli.Command{
		Name:  "client",
		Usage: "Talk to a running namedesk serve",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Aliases: []string{"s"},
				Usage:   "Server address, defaults to server.address",
				Sources: cli.EnvVars("NAMEDESK_SERVER_ADDRESS"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List stored records",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					s, err := openSession(ctx, cmd)
					if err != nil {
						return err
					}
					defer s.model.Close()
					res := s.model.Refresh(ctx)
					if !res.Success {
						return failure(res.Error)
					}
					s.printRecords(res.Records)
					return nil
				},
			},
			{
				Name:      "add",
				Usage:     "Add a record with a generated id",
				ArgsUsage: "NAME",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					s, err := openSession(ctx, cmd)
					if err != nil {
						return err
					}
					defer s.model.Close()
					s.model.SetName(strings.Join(cmd.Args().Slice(), " "))
					if res := s.model.Submit(ctx); !res.Success {
						return failure(res.Error)
					}
					s.printRecords(s.model.View().Records)
					return nil
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete the record matching id and name",
				ArgsUsage: "ID NAME",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.NArg() != 2 {
						return fmt.Errorf("delete takes ID and NAME, got %d arguments", cmd.NArg())
					}
					s, err := openSession(ctx, cmd)
					if err != nil {
						return err
					}
					defer s.model.Close()
					record := types.Record{ID: cmd.Args().Get(0), Name: cmd.Args().Get(1)}
					if res := s.model.Delete(ctx, record); !res.Success {
						return failure(res.Error)
					}
					s.printRecords(s.model.View().Records)
					return nil
				},
			},
			{
				Name:      "ls",
				Usage:     "List a directory recursively",
				ArgsUsage: "DIR",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "watch",
						Aliases: []string{"w"},
						Usage:   "Keep listening and print the listing again on every change",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					dir, err := filepath.Abs(cmd.Args().First())
					if err != nil {
						return err
					}
					s, err := openSession(ctx, cmd)
					if err != nil {
						return err
					}
					defer s.model.Close()

					res := s.model.OpenDirectory(ctx, dir)
					if !res.Success {
						return failure(res.Error)
					}
					s.printEntries(res.Entries)
					if !cmd.Bool("watch") {
						return nil
					}
					return s.watch(ctx)
				},
			},
			{
				Name:      "ping",
				Usage:     "Send a ping the backend logs",
				ArgsUsage: "[N]",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					n := 1
					if arg := cmd.Args().First(); arg != "" {
						v, err := strconv.Atoi(arg)
						if err != nil {
							return fmt.Errorf("ping value must be an integer: %w", err)
						}
						n = v
					}
					s, err := openSession(ctx, cmd)
					if err != nil {
						return err
					}
					defer s.model.Close()
					s.model.Ping(n)
					return nil
				},
			},
		},
	}
}

// watch prints the listing on every pushed change until interrupted
func (s *session) watch(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	last := strings.Join(s.model.View().Entries, "\n")
	unsubscribe := s.model.OnChange(func(v ui.View) {
		current := strings.Join(v.Entries, "\n")
		if current == last {
			return
		}
		last = current
		fmt.Fprintf(s.out, "--- %s changed at %s\n", v.Directory, time.Now().Format(time.TimeOnly))
		s.printEntries(v.Entries)
	})
	defer unsubscribe()

	return s.client.Listen(ctx)
}
