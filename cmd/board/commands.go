package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"workboard/board"
	"workboard/domain"
)

type options struct {
	server   string
	interval time.Duration
	view     string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "board",
		Short:         "Terminal client for the work item board",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	server := os.Getenv("BOARD_SERVER")
	if server == "" {
		server = "http://localhost:3000"
	}
	root.PersistentFlags().StringVarP(&opts.server, "server", "s", server, "Item service base URL")
	root.PersistentFlags().DurationVarP(&opts.interval, "interval", "i", board.DefaultPollInterval, "Refresh interval for watch")
	root.PersistentFlags().StringVar(&opts.view, "view", "kanban", "Presentation (kanban, table)")

	root.AddCommand(watchCmd(opts))
	root.AddCommand(listCmd(opts))
	root.AddCommand(addCmd(opts))
	root.AddCommand(moveCmd(opts))
	return root
}

func (o *options) viewState() (board.ViewState, error) {
	switch o.view {
	case "kanban":
		return board.ViewState{Mode: board.KanbanMode}, nil
	case "table":
		return board.ViewState{Mode: board.TableMode}, nil
	}
	return board.ViewState{}, fmt.Errorf("unknown view %q", o.view)
}

func (o *options) newBoard(out io.Writer, onRender func(board.View)) *board.Board {
	logger := log.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(log.GetLevel())
	return board.New(board.NewClient(o.server, nil), board.Options{
		Alert:    func(msg string) { fmt.Fprintln(out, msg) },
		OnRender: onRender,
		Logger:   logger,
	})
}

func watchCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Show the board and keep it up to date",
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := opts.viewState()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			b := opts.newBoard(out, func(v board.View) {
				fmt.Fprint(out, "\033[H\033[2J")
				fmt.Fprintln(out, board.RenderText(v, state))
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			_ = b.Refresh(ctx)
			go followLoop(ctx, b, board.NewClient(opts.server, nil), opts.interval)
			b.Poll(ctx, opts.interval)
			return nil
		},
	}
}

// followLoop reconnects to the change stream after it drops. Polling keeps
// the board current in the meantime.
func followLoop(ctx context.Context, b *board.Board, src board.ChangeSource, wait time.Duration) {
	for {
		if err := b.Follow(ctx, src); err != nil {
			log.WithError(err).Debug("change stream unavailable")
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

func listCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the board once",
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := opts.viewState()
			if err != nil {
				return err
			}
			b := opts.newBoard(cmd.OutOrStdout(), nil)
			if err := b.Refresh(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), board.RenderText(b.View(), state))
			return nil
		},
	}
}

func addCmd(opts *options) *cobra.Command {
	var in domain.NewItem
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a new item",
		RunE: func(cmd *cobra.Command, args []string) error {
			if in.Project == "" {
				return fmt.Errorf("--project is required")
			}
			b := opts.newBoard(cmd.ErrOrStderr(), nil)
			b.OpenForm()
			b.SetFormFields(in)
			if err := b.SubmitForm(cmd.Context()); err != nil {
				return err
			}
			// the service does not return the new id
			fmt.Fprintf(cmd.OutOrStdout(), "added %s\n", in.Project)
			return nil
		},
	}
	cmd.Flags().StringVarP(&in.Project, "project", "p", "", "Project name")
	cmd.Flags().StringVarP(&in.Description, "description", "d", "", "Description")
	cmd.Flags().StringVar(&in.DueDate, "due", "", "Due date")
	cmd.Flags().StringVar(&in.Priority, "priority", "Medium", "Priority (Low, Medium, High)")
	cmd.Flags().StringVar(&in.Requester, "requester", "", "Requester")
	cmd.Flags().StringVar(&in.Assignee, "assignee", "", "Assignee")
	cmd.Flags().StringVar(&in.Category, "category", "", "Category")
	return cmd
}

func moveCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "move [id] [progress]",
		Short: "Move an item to another progress column",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid item id %q", args[0])
			}
			progress, err := domain.ParseProgress(args[1])
			if err != nil {
				return err
			}
			b := opts.newBoard(cmd.ErrOrStderr(), nil)
			if err := b.Refresh(cmd.Context()); err != nil {
				return err
			}
			if err := b.MoveItem(cmd.Context(), id, progress); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "moved #%d to %s\n", id, progress)
			return nil
		},
	}
}
