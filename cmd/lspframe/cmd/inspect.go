package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/lspframe/lspframe/internal/config"
	"github.com/lspframe/lspframe/internal/lspevent"
	"github.com/lspframe/lspframe/internal/lspmetrics"
	"github.com/lspframe/lspframe/internal/lsprole"
	"github.com/lspframe/lspframe/internal/lsptrace"
	"github.com/lspframe/lspframe/pkg/lspengine"
	"github.com/lspframe/lspframe/pkg/lspjsonrpc"
)

var (
	inspectFile string
	inspectRole string
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Decode a single framed message from a file or stdin",
	Long: `Reads one Content-Length-framed message (header block plus body)
from --file or stdin, feeds it through the framing engine as the given
role, and prints the parsed header and decoded JSON-RPC body.

This is a debugging aid, not a server: it decodes exactly one message
and exits. It does not drive a request/response exchange.`,
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().StringVarP(&inspectFile, "file", "f", "", "file to read (default: stdin)")
	inspectCmd.Flags().StringVar(&inspectRole, "role", "server", `role to decode as: "client" or "server"`)
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	data, err := readInspectInput()
	if err != nil {
		return err
	}

	opts := []lspengine.Option{
		lspengine.WithLogger(logger),
		lspengine.WithStrictHeaders(cfg.Header.StrictUnknownFields),
		lspengine.WithMaxContentLength(cfg.Header.MaxContentLength),
	}
	if cfg.Policy.Expression != "" {
		opts = append(opts, lspengine.WithHeaderPolicy(cfg.Policy.Expression))
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, lspengine.WithMetrics(lspmetrics.New(prometheus.DefaultRegisterer, cfg.Metrics.Namespace)))
	}
	if cfg.Tracing.Enabled {
		tp, err := lsptrace.NewStdoutTracerProvider()
		if err != nil {
			return fmt.Errorf("failed to build tracer provider: %w", err)
		}
		opts = append(opts, lspengine.WithTracerProvider(tp))
	}
	conn, err := lspengine.New(inspectRole, opts...)
	if err != nil {
		return fmt.Errorf("failed to construct connection: %w", err)
	}

	// A client's next_event precondition requires having already sent
	// its own request (our_state=DONE); inspect only ever decodes an
	// inbound message, so fast-forward a client past that guard the
	// same way the engine's own request/response cycle would.
	if conn.OurRole() == lsprole.Client {
		if _, err := conn.SendJSON(json.RawMessage(`{}`)); err != nil {
			return fmt.Errorf("failed to prime client state: %w", err)
		}
	}

	conn.Receive(data)

	var header map[string]string
	for {
		event, err := conn.NextEvent()
		if errors.Is(err, lspengine.ErrNeedData) {
			return errors.New("inspect: input is incomplete (Content-Length exceeds body bytes available)")
		}
		if err != nil {
			return fmt.Errorf("inspect: %w", err)
		}
		if h, ok := lspevent.IsHeaderEvent(event); ok {
			header = headerFieldsToMap(h)
		}
		if _, ok := event.(lspevent.MessageEnd); ok {
			break
		}
	}

	fields, body, err := conn.GetReceivedData(true)
	if err != nil {
		return fmt.Errorf("inspect: %w", err)
	}
	if header == nil {
		header = fields
	}

	rawBody, _ := body.([]byte)
	fmt.Println("# header")
	for k, v := range header {
		fmt.Printf("%s: %s\n", k, v)
	}
	fmt.Println("# body")
	if msg, err := lspjsonrpc.Wrap(rawBody, conn.TheirRole()); err == nil {
		printJSON(msg.Decoded)
	} else {
		fmt.Println(string(rawBody))
	}
	return nil
}

func readInspectInput() ([]byte, error) {
	if inspectFile != "" {
		return os.ReadFile(inspectFile)
	}
	return io.ReadAll(os.Stdin)
}

func headerFieldsToMap(h lspevent.HeaderFields) map[string]string {
	m := map[string]string{
		"Content-Length": fmt.Sprintf("%d", h.ContentLength),
	}
	if h.ContentType != "" {
		m["Content-Type"] = h.ContentType
	}
	return m
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%+v\n", v)
		return
	}
	fmt.Println(string(out))
}
