package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/daemon"
	"fintrack/internal/logger"
	"fintrack/internal/notify"

	"github.com/spf13/cobra"
)

// watchRuntime is written next to the running daemon so `watch status`
// and `watch stop` can find it.
type watchRuntime struct {
	PID       int       `json:"pid"`
	Addr      string    `json:"addr"`
	StartedAt time.Time `json:"started_at"`
	BaseURL   string    `json:"base_url"`
}

var (
	flagWatchAddr         string
	flagWatchInterval     time.Duration
	flagWatchDetach       bool
	flagWatchStateFile    string
	flagWatchLogFile      string
	flagWatchEventsBuffer int
	flagWatchChild        bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the budget watch daemon with HTTP/SSE/websocket endpoints",
	RunE:  runWatch,
}

var watchStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show watch daemon process and budget status",
	RunE:  runWatchStatus,
}

var watchStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running watch daemon",
	RunE:  runWatchStop,
}

func init() {
	defaultState := filepath.Join(config.DataDir(), "fintrack-watch.json")
	defaultLog := filepath.Join(config.DataDir(), "fintrack-watch.log")

	watchCmd.PersistentFlags().StringVar(&flagWatchAddr, "addr", "", "HTTP listen address (default from config)")
	watchCmd.PersistentFlags().DurationVar(&flagWatchInterval, "interval", 0, "Polling interval (default from config)")
	watchCmd.PersistentFlags().StringVar(&flagWatchStateFile, "state-file", defaultState, "Runtime file holding the daemon pid and address")
	watchCmd.PersistentFlags().StringVar(&flagWatchLogFile, "log-file", defaultLog, "Log file path for detached mode")
	watchCmd.PersistentFlags().IntVar(&flagWatchEventsBuffer, "events-buffer", 200, "Max in-memory events retained")

	watchCmd.Flags().BoolVar(&flagWatchDetach, "detach", false, "Run daemon as a background process")
	watchCmd.Flags().BoolVar(&flagWatchChild, "child", false, "Internal: mark detached child process")
	_ = watchCmd.Flags().MarkHidden("child")

	watchCmd.AddCommand(watchStatusCmd)
	watchCmd.AddCommand(watchStopCmd)
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if flagWatchDetach && flagWatchChild {
		return errors.New("invalid watch launch mode")
	}

	if flagWatchDetach {
		return startWatchDetached()
	}

	return runWatchForeground(cmd.Context())
}

func startWatchDetached() error {
	if _, running := liveWatch(flagWatchStateFile); running {
		return errors.New("watch daemon already running")
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}

	args := filterDetachArg(os.Args[1:])
	args = append(args, "--child")

	if err := os.MkdirAll(filepath.Dir(flagWatchLogFile), 0o750); err != nil {
		return fmt.Errorf("create daemon log directory: %w", err)
	}

	//nolint:gosec // log path is configured by the local user
	logf, err := os.OpenFile(flagWatchLogFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open daemon log file: %w", err)
	}
	defer func() { _ = logf.Close() }()

	child := exec.Command(exe, args...) //nolint:gosec // exe/args come from current process invocation
	child.Stdout = logf
	child.Stderr = logf
	child.Stdin = nil
	child.Env = os.Environ()

	if err := child.Start(); err != nil {
		return fmt.Errorf("start detached daemon: %w", err)
	}

	fmt.Printf("  Started watch daemon (pid %d)\n", child.Process.Pid)
	fmt.Printf("  State file: %s\n", flagWatchStateFile)
	fmt.Printf("  Log: %s\n", flagWatchLogFile)
	return nil
}

func runWatchForeground(ctx context.Context) error {
	if rt, running := liveWatch(flagWatchStateFile); running {
		return fmt.Errorf("watch daemon already running (pid %d)", rt.PID)
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	addr := flagWatchAddr
	if addr == "" {
		addr = s.cfg.Watch.Listen
	}
	interval := flagWatchInterval
	if interval == 0 {
		interval = s.cfg.Interval()
	}

	err = writeWatchRuntime(flagWatchStateFile, watchRuntime{
		PID:       os.Getpid(),
		Addr:      addr,
		StartedAt: time.Now(),
		BaseURL:   s.cfg.API.BaseURL,
	})
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(flagWatchStateFile) }()

	var pub notify.Publisher = notify.Nop{}
	if s.cfg.Watch.AMQPURL != "" {
		amqpPub, err := notify.DialAMQP(s.cfg.Watch.AMQPURL, s.cfg.Watch.AMQPExchange, logger.Component(s.log, "notify"))
		if err != nil {
			return err
		}
		pub = amqpPub
	}
	defer func() { _ = pub.Close() }()

	svc := daemon.New(daemon.Config{
		Interval:     interval,
		Addr:         addr,
		EventsBuffer: flagWatchEventsBuffer,
		BaseURL:      s.cfg.API.BaseURL,
	}, s.client, s.state, pub, logger.Component(s.log, "watch"))

	fmt.Printf("  fintrack watch listening on http://%s\n", addr)
	fmt.Printf("  Polling %s every %s\n", s.cfg.API.BaseURL, interval)
	if s.cfg.Watch.AMQPURL != "" {
		fmt.Printf("  Publishing alerts to exchange %s\n", s.cfg.Watch.AMQPExchange)
	}
	fmt.Printf("  Stop with: fintrack watch stop --state-file %s\n", flagWatchStateFile)

	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runWatchStatus(_ *cobra.Command, _ []string) error {
	rt, running := liveWatch(flagWatchStateFile)
	if !running {
		fmt.Printf("  Watch daemon: not running\n")
		return nil
	}

	addr := rt.Addr
	if flagWatchAddr != "" {
		addr = flagWatchAddr
	}
	if addr == "" {
		cfg, _ := config.Load()
		addr = cfg.Watch.Listen
	}

	fmt.Printf("  Daemon PID: %d\n", rt.PID)
	fmt.Printf("  Address: http://%s\n", addr)

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get("http://" + addr + "/v1/status") //nolint:noctx // short status probe
	if err != nil {
		fmt.Printf("  API status: unreachable (%v)\n", err)
		return nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("  API status: HTTP %d\n", resp.StatusCode)
		return nil
	}

	var st daemon.Status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		fmt.Printf("  API status: malformed response (%v)\n", err)
		return nil
	}

	if st.LastPollAt.IsZero() {
		fmt.Printf("  Last poll: pending\n")
	} else {
		fmt.Printf("  Last poll: %s\n", st.LastPollAt.Local().Format(time.RFC3339))
	}
	fmt.Printf("  Poll count: %d\n", st.PollCount)
	fmt.Printf("  Month: %s\n", st.Snapshot.Month)
	fmt.Printf("  Expense: %s\n", cli.FormatMoney(st.Snapshot.Summary.Expense))
	fmt.Printf("  Events: %d (%d subscribers)\n", st.EventCount, st.SubscriberCount)
	for _, a := range st.Snapshot.Alerts {
		fmt.Printf("  %s %s / %s (%d%%)\n",
			cli.SeverityStyle(a.Severity).Render(fmt.Sprintf("%-14s", a.Category)),
			cli.FormatMoney(a.Spent), cli.FormatMoney(a.Limit), a.Percent)
	}
	if st.LastError != "" {
		fmt.Printf("  Last error: %s\n", st.LastError)
	}
	return nil
}

func runWatchStop(_ *cobra.Command, _ []string) error {
	rt, running := liveWatch(flagWatchStateFile)
	if !running {
		return errors.New("watch daemon is not running")
	}
	pid := rt.PID

	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("find daemon process: %w", err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("signal daemon process: %w", err)
	}

	deadline := time.Now().Add(8 * time.Second)
	for time.Now().Before(deadline) {
		if !processAlive(pid) {
			_ = os.Remove(flagWatchStateFile)
			fmt.Printf("  Stopped watch daemon (pid %d)\n", pid)
			return nil
		}
		time.Sleep(150 * time.Millisecond)
	}

	return fmt.Errorf("watch daemon (pid %d) did not exit in time", pid)
}

func filterDetachArg(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if a == "--detach" || strings.HasPrefix(a, "--detach=") {
			continue
		}
		out = append(out, a)
	}
	return out
}

// liveWatch reads the runtime file and reports whether its process is
// still alive. A file left behind by a dead process is removed.
func liveWatch(path string) (watchRuntime, bool) {
	rt, err := readWatchRuntime(path)
	if err != nil {
		return rt, false
	}
	if !processAlive(rt.PID) {
		_ = os.Remove(path)
		return rt, false
	}
	return rt, true
}

func writeWatchRuntime(path string, rt watchRuntime) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create daemon directory: %w", err)
	}
	data, err := json.MarshalIndent(rt, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}

func readWatchRuntime(path string) (watchRuntime, error) {
	var rt watchRuntime
	//nolint:gosec // state path is configured by the local user
	data, err := os.ReadFile(path)
	if err != nil {
		return rt, err
	}
	if err := json.Unmarshal(data, &rt); err != nil {
		return rt, fmt.Errorf("parsing %s: %w", path, err)
	}
	if rt.PID <= 0 {
		return rt, fmt.Errorf("invalid pid in %s", path)
	}
	return rt, nil
}

func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}
