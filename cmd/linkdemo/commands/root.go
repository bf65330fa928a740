// Package commands implements the linkdemo CLI.
package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Workiva/go-datastructures/queue"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/srediag/mumble-link/adapter"
	"github.com/srediag/mumble-link/link"
	"github.com/srediag/mumble-link/pkg/shm"
)

const metricsNamespace = "linkdemo"

var rootCmd = &cobra.Command{
	Use:   "linkdemo",
	Short: "Positional audio link demo",
	Long: `linkdemo keeps a resilient link open and moves the player around on
command. Type a command and press enter:

  left, right, middle, distant  move the player
  red, blue                     change the context
  free                          deactivate the link
  exit                          quit`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.RunE = func(cmd *cobra.Command, _ []string) error {
		opts, err := loadOptions(cmd.Flags())
		if err != nil {
			return err
		}
		return run(cmd.Context(), opts, cmd.InOrStdin(), cmd.OutOrStdout())
	}
	addFlags(rootCmd.Flags())
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// PrintErr prints an error message to stderr.
func PrintErr(format string, args ...any) {
	rootCmd.PrintErrf(format+"\n", args...)
}

func run(ctx context.Context, opts *Options, in io.Reader, out io.Writer) error {
	link.SetLogLevel(opts.LogLevel)
	conf := opts.linkConfig()
	conf.LogOutput = out
	if heap, ok := conf.Backend.(*shm.Heap); ok {
		// nobody else can create an in-process segment
		host, err := heap.Open(ctx, shm.OpenOptions{Name: conf.SegmentName, Create: true})
		if err != nil {
			return err
		}
		defer host.Close()
	}

	fmt.Fprintln(out, "Attempting to open Link...")
	session, err := link.NewShared(ctx, opts.Name, opts.Description, conf)
	if err != nil {
		return err
	}
	defer session.Close()

	reader := bufio.NewReader(in)
	identity := opts.Identity
	if identity == "" {
		fmt.Fprintln(out, "Enter an identity:")
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		identity = strings.TrimSpace(line)
	}
	session.SetIdentity(identity)

	if opts.MetricsAddr != "" {
		srv := serveMetrics(opts.MetricsAddr, session)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	commands := queue.New(16)
	defer commands.Dispose()
	fmt.Fprintln(out, help)
	go func() {
		if err := readCommands(reader, commands, out); err != nil {
			fmt.Fprintln(out, "reading commands:", err)
		}
	}()

	p := newPlayer(session, commands, out, opts.StatusEvery)
	ticker := time.NewTicker(time.Second / time.Duration(opts.FPS))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(out, "Exiting")
			return nil
		case <-ticker.C:
			if !p.frame() {
				fmt.Fprintln(out, "Exiting")
				return nil
			}
		}
	}
}

func serveMetrics(addr string, session *link.SharedLink) *http.Server {
	reg := prometheus.NewRegistry()
	reg.MustRegister(adapter.NewCollector(metricsNamespace, session))
	health := adapter.NewHealthHandler(reg, metricsNamespace, session, 5*time.Second)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.Handle("/", health)

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			PrintErr("metrics server: %v", err)
		}
	}()
	return srv
}
