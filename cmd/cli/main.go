package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type options struct {
	baseURL string
	timeout time.Duration
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "gobank-cli",
		Short:         "GoBank CLI tool",
		Long:          `A command line interface for interacting with the GoBank API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(out)

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", "http://localhost:8080", "Base URL of the GoBank API")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(accountCmd(opts), transferCmd(opts), healthCmd(opts))

	return rootCmd
}

func accountCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Account operations",
	}

	var initialBalance string
	create := &cobra.Command{
		Use:   "create <holder-name> <cpf>",
		Short: "Open a new account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]string{"holder_name": args[0], "cpf": args[1]}
			if initialBalance != "" {
				body["initial_balance"] = initialBalance
			}
			return do(cmd, opts, http.MethodPost, "/api/v1/accounts", body)
		},
	}
	create.Flags().StringVar(&initialBalance, "initial-balance", "", "Opening balance")

	get := &cobra.Command{
		Use:   "get <account-number>",
		Short: "Show an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return do(cmd, opts, http.MethodGet, accountPath(args[0], ""), nil)
		},
	}

	lookup := &cobra.Command{
		Use:   "lookup <cpf>",
		Short: "Find the account owned by a CPF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return do(cmd, opts, http.MethodGet, "/api/v1/accounts?cpf="+url.QueryEscape(args[0]), nil)
		},
	}

	remove := &cobra.Command{
		Use:   "delete <account-number>",
		Short: "Delete a closed account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return do(cmd, opts, http.MethodDelete, accountPath(args[0], ""), nil)
		},
	}

	cmd.AddCommand(create, get, lookup, remove)

	for _, action := range []string{"approve", "unblock", "reactivate", "close"} {
		cmd.AddCommand(transitionCmd(opts, action, false))
	}

	for _, action := range []string{"reject", "block"} {
		cmd.AddCommand(transitionCmd(opts, action, true))
	}

	for _, action := range []string{"deposit", "withdraw"} {
		cmd.AddCommand(moveCmd(opts, action))
	}

	return cmd
}

func transitionCmd(opts *options, action string, withReason bool) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   action + " <account-number>",
		Short: strings.ToUpper(action[:1]) + action[1:] + " an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var body any
			if withReason && reason != "" {
				body = map[string]string{"reason": reason}
			}
			return do(cmd, opts, http.MethodPost, accountPath(args[0], action), body)
		},
	}

	if withReason {
		cmd.Flags().StringVar(&reason, "reason", "", "Reason recorded with the event")
	}

	return cmd
}

func moveCmd(opts *options, action string) *cobra.Command {
	return &cobra.Command{
		Use:   action + " <account-number> <amount>",
		Short: strings.ToUpper(action[:1]) + action[1:] + " money",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return do(cmd, opts, http.MethodPost, accountPath(args[0], action), map[string]string{"amount": args[1]})
		},
	}
}

func transferCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Transfer operations",
	}

	var idempotencyKey string
	send := &cobra.Command{
		Use:   "send <from-account> <to-account> <amount>",
		Short: "Request an asynchronous transfer",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if idempotencyKey == "" {
				idempotencyKey = uuid.NewString()
			}
			cmd.SetContext(withIdempotencyKey(cmd.Context(), idempotencyKey))

			return do(cmd, opts, http.MethodPost, "/api/v1/transfers", map[string]string{
				"from_account": args[0],
				"to_account":   args[1],
				"amount":       args[2],
			})
		},
	}
	send.Flags().StringVar(&idempotencyKey, "idempotency-key", "", "Idempotency key (random when empty)")

	status := &cobra.Command{
		Use:   "status <transfer-id>",
		Short: "Show the progress of a transfer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return do(cmd, opts, http.MethodGet, "/api/v1/transfers/"+url.PathEscape(args[0]), nil)
		},
	}

	cmd.AddCommand(send, status)

	return cmd
}

func healthCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "ready",
		Short: "Check API readiness",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return do(cmd, opts, http.MethodGet, "/ready", nil)
		},
	}
}

func accountPath(number, action string) string {
	p := "/api/v1/accounts/" + url.PathEscape(number)
	if action != "" {
		p += "/" + action
	}
	return p
}

type idempotencyKeyCtx struct{}

func withIdempotencyKey(ctx context.Context, key string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, idempotencyKeyCtx{}, key)
}

// do sends one request and prints the JSON response. Non-2xx answers are
// returned as errors carrying the server's message.
func do(cmd *cobra.Command, opts *options, method, path string, body any) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(opts.baseURL, "/")+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if key, ok := ctx.Value(idempotencyKeyCtx{}).(string); ok {
		req.Header.Set("Idempotency-Key", key)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("request failed (status %d): %s", resp.StatusCode, truncate(strings.TrimSpace(string(raw)), 200))
	}

	if len(raw) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "OK (%d)\n", resp.StatusCode)
		return nil
	}

	return printJSON(cmd.OutOrStdout(), raw)
}

func printJSON(w io.Writer, raw []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		_, err = fmt.Fprintln(w, string(raw))
		return err
	}

	buf.WriteByte('\n')
	_, err := buf.WriteTo(w)

	return err
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
