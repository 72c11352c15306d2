package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ytget/m3u8-downloader/internal/api"
	"github.com/ytget/m3u8-downloader/internal/config"
	"github.com/ytget/m3u8-downloader/internal/download"
	"github.com/ytget/m3u8-downloader/internal/model"
	"github.com/ytget/m3u8-downloader/internal/platform"
	"github.com/ytget/m3u8-downloader/internal/probe"
	"github.com/ytget/m3u8-downloader/internal/store"
)

// purgeItemTimeout is the budget per purge in empty-bin
const purgeItemTimeout = time.Second

type globalOptions struct {
	runtime config.Runtime
	server  string
	timeout time.Duration
}

// cliSettings serves the controller from command-line flags
type cliSettings struct {
	cfg config.Config
	dir string
}

func (s *cliSettings) Load() config.Config { return s.cfg }

func (s *cliSettings) Save(cfg config.Config) config.Config {
	s.cfg = cfg.Clamp()
	return s.cfg
}

func (s *cliSettings) GetDownloadDirectory() string {
	if s.dir != "" {
		return s.dir
	}
	if dir, err := platform.GetHomeDownloadsDir(); err == nil {
		return dir
	}
	return "."
}

// session is one controller bound to a freshly listed task store
type session struct {
	client  *api.Client
	service *download.Service
	tasks   *store.TaskStore
}

func (o *globalOptions) client() *api.Client {
	return api.NewClient(o.server, o.timeout)
}

// open lists the service's tasks into a new store and builds a controller on it
func (o *globalOptions) open(ctx context.Context, settings *cliSettings) (*session, error) {
	client := o.client()
	listed, err := client.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	tasks := store.New()
	tasks.UpsertAll(listed)

	if settings == nil {
		settings = &cliSettings{cfg: config.DefaultConfig()}
	}
	opts := download.OptionsFromRuntime(o.runtime)
	opts.CommandTimeout = o.timeout
	return &session{
		client:  client,
		service: download.NewService(client, tasks, settings, opts),
		tasks:   tasks,
	}, nil
}

// printTasks writes one line per task, newest first
func printTasks(w io.Writer, tasks []model.Task) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tPROGRESS\tSIZE\tCREATED\tNAME")
	for _, task := range tasks {
		created := "-"
		if !task.CreatedAt.IsZero() {
			created = humanize.Time(task.CreatedAt)
		}
		size := task.FileSize
		if size == "" {
			size = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d%%\t%s\t%s\t%s\n",
			task.ID, task.Status, task.Percent(), size, created, task.GetDisplayTitle())
	}
	return tw.Flush()
}

func listCmd(opts *globalOptions) *cobra.Command {
	var view string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks of one view (active, completed, recycle_bin) or all",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()
			s, err := opts.open(ctx, nil)
			if err != nil {
				return err
			}

			var tasks []model.Task
			switch view {
			case "", "all":
				tasks = s.tasks.All()
			case model.PartitionActive.String():
				tasks = s.tasks.ViewActive()
			case model.PartitionCompleted.String():
				tasks = s.tasks.ViewCompleted()
			case model.PartitionRecycleBin.String():
				tasks = s.tasks.ViewRecycleBin()
			default:
				return fmt.Errorf("unknown view %q", view)
			}
			return printTasks(cmd.OutOrStdout(), tasks)
		},
	}
	cmd.Flags().StringVarP(&view, "view", "v", "all", "View to list")
	return cmd
}

func infoCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show service status",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()
			info, err := opts.client().GetSystemInfo(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Service:     %s\n", opts.server)
			fmt.Fprintf(out, "Version:     %s\n", info.Version)
			fmt.Fprintf(out, "Status:      %s\n", info.Status)
			fmt.Fprintf(out, "Tasks:       %d active / %d total\n", info.ActiveTasks, info.TotalTasks)
			if info.MaxConcurrentTasks > 0 {
				fmt.Fprintf(out, "Concurrency: %d (limit %d)\n", info.MaxConcurrentTasks, info.MaxConcurrentLimit)
			}
			fmt.Fprintf(out, "Directory:   %s\n", info.DownloadDir)
			if info.DiskUsage != "" {
				fmt.Fprintf(out, "Disk usage:  %s in %d files\n", info.DiskUsage, info.FileCount)
			}
			if info.NextCleanup != "" {
				fmt.Fprintf(out, "Next cleanup: %s\n", info.NextCleanup)
			}
			return nil
		},
	}
}

func addCmd(opts *globalOptions) *cobra.Command {
	var (
		filename   string
		threads    int
		speedLimit float64
		cookies    string
		quality    string
	)
	cmd := &cobra.Command{
		Use:   "add <url>",
		Short: "Create a download task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			settings := &cliSettings{cfg: config.Config{
				MaxThreads:         threads,
				MaxConcurrentTasks: config.DefaultMaxConcurrentTasks,
			}.Clamp()}
			svc := download.NewService(opts.client(), store.New(), settings, download.Options{CommandTimeout: opts.timeout})

			if filename == "" {
				filename = probe.SuggestFilename(args[0])
			}
			create := download.CreateOptions{
				URL:        args[0],
				Filename:   filename,
				Cookies:    cookies,
				QualityURL: quality,
			}
			if cmd.Flags().Changed("speed-limit") {
				create.SpeedLimit = &speedLimit
			}

			task, err := svc.CreateTask(ctx, create)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s)\n", task.ID, task.Status)
			return nil
		},
	}
	cmd.Flags().StringVarP(&filename, "name", "n", "", "Output file name (derived from the URL when empty)")
	cmd.Flags().IntVarP(&threads, "threads", "t", config.DefaultMaxThreads, "Download threads (1-20)")
	cmd.Flags().Float64Var(&speedLimit, "speed-limit", 0, "Speed limit in MB/s")
	cmd.Flags().StringVar(&cookies, "cookies", "", "Cookie header sent with playlist requests")
	cmd.Flags().StringVar(&quality, "quality-url", "", "Variant playlist URL chosen from a master playlist")
	return cmd
}

func probeCmd(opts *globalOptions) *cobra.Command {
	var cookies string
	cmd := &cobra.Command{
		Use:   "probe <url>",
		Short: "Show the variants or segments of a playlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()
			result, err := probe.NewProber(opts.timeout).Probe(ctx, args[0], cookies)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !result.Master {
				fmt.Fprintf(out, "media playlist: %d segments, %s, live=%v\n",
					result.Segments, result.Duration.Round(time.Second), result.Live)
				return nil
			}
			for i, v := range result.Variants {
				fmt.Fprintf(out, "%d. %s\n   %s\n", i+1, v.Label(), v.URL)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&cookies, "cookies", "", "Cookie header sent with the request")
	return cmd
}

// lifecycleCmds returns the single-task commands that go through the controller
func lifecycleCmds(opts *globalOptions) []*cobra.Command {
	type command struct {
		use, short string
		run        func(*download.Service) func(context.Context, string) error
	}
	commands := []command{
		{"pause", "Pause a downloading task", func(s *download.Service) func(context.Context, string) error { return s.Pause }},
		{"resume", "Resume a paused task", func(s *download.Service) func(context.Context, string) error { return s.Resume }},
		{"delete", "Move a task to the recycle bin", func(s *download.Service) func(context.Context, string) error { return s.SoftDelete }},
		{"restore", "Restore a task from the recycle bin", func(s *download.Service) func(context.Context, string) error { return s.Restore }},
		{"purge", "Permanently delete a task and its files", func(s *download.Service) func(context.Context, string) error { return s.Purge }},
	}

	cmds := make([]*cobra.Command, 0, len(commands))
	for _, c := range commands {
		c := c
		cmds = append(cmds, &cobra.Command{
			Use:   c.use + " <task-id>",
			Short: c.short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx, cancel := context.WithTimeout(cmd.Context(), 2*opts.timeout)
				defer cancel()
				s, err := opts.open(ctx, nil)
				if err != nil {
					return err
				}

				id := args[0]
				before, ok := s.tasks.Get(id)
				if !ok {
					return fmt.Errorf("task %s not found", id)
				}
				if err := c.run(s.service)(ctx, id); err != nil {
					return err
				}

				after, ok := s.tasks.Get(id)
				switch {
				case !ok:
					fmt.Fprintf(cmd.OutOrStdout(), "%s removed\n", id)
				case after.Status == before.Status:
					fmt.Fprintf(cmd.OutOrStdout(), "%s unchanged (%s)\n", id, after.Status)
				default:
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s -> %s\n", id, before.Status, after.Status)
				}
				return nil
			},
		})
	}
	return cmds
}

func emptyBinCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "empty-bin",
		Short: "Permanently delete every task in the recycle bin",
		RunE: func(cmd *cobra.Command, args []string) error {
			listCtx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			s, err := opts.open(listCtx, nil)
			cancel()
			if err != nil {
				return err
			}

			count := len(s.tasks.ViewRecycleBin())
			ctx, cancel := context.WithTimeout(cmd.Context(), max(opts.timeout, time.Duration(count)*purgeItemTimeout))
			defer cancel()
			err = s.service.EmptyRecycleBin(ctx)
			var bulk *download.BulkError
			if errors.As(err, &bulk) {
				fmt.Fprintf(cmd.OutOrStdout(), "purged %d of %d\n", count-len(bulk.Failed), count)
				return err
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "purged %d\n", count)
			return nil
		},
	}
}

func saveCmd(opts *globalOptions) *cobra.Command {
	var dir, name string
	cmd := &cobra.Command{
		Use:   "save <task-id>",
		Short: "Retrieve a completed task's file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			listCtx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			s, err := opts.open(listCtx, &cliSettings{cfg: config.DefaultConfig(), dir: dir})
			cancel()
			if err != nil {
				return err
			}

			path, err := s.service.Download(cmd.Context(), args[0], name)
			if err != nil {
				return err
			}
			if path == "" {
				return fmt.Errorf("task %s is not completed", args[0])
			}
			if info, err := os.Stat(path); err == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "saved %s (%s)\n", path, humanize.Bytes(uint64(info.Size())))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Target directory (default: ~/Downloads)")
	cmd.Flags().StringVarP(&name, "name", "n", "", "File name (default: task file name)")
	return cmd
}

func concurrencyCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "concurrency <n>",
		Short: "Set the service's concurrent task budget (1-10)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid number %q", args[0])
			}
			cfg := config.Config{MaxThreads: config.DefaultMaxThreads, MaxConcurrentTasks: n}.Clamp()

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()
			if err := opts.client().UpdateConcurrency(ctx, cfg.MaxConcurrentTasks); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "concurrency set to %d\n", cfg.MaxConcurrentTasks)
			return nil
		},
	}
}

func cleanupCmd(opts *globalOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete every task and file on the service",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to clean up without --yes")
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()
			result, err := opts.client().CleanupAll(ctx)
			if err != nil {
				return err
			}
			msg := strings.TrimSpace(result.Message)
			if msg == "" {
				msg = "cleanup done"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d files, %d records\n", msg, result.DeletedFiles, result.DeletedRecords)
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deletion")
	return cmd
}
