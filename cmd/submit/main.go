// Command fma-submit sends a completed registration form to a running API,
// the same way the browser front end does.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/fma-academy/registration-service/internal/adapters/apiclient"
	"github.com/fma-academy/registration-service/internal/core/form"
	"github.com/fma-academy/registration-service/internal/core/ports"
	"github.com/fma-academy/registration-service/internal/core/services"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "fma-submit",
		Short:        "Submit FMA membership registrations to the registration API",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(submitCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [form.json]",
		Short: "Check a form file against every field rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := readForm(args[0])
			if err != nil {
				return err
			}
			res := form.NewValidator().ValidateAll(state)
			if res.Valid {
				fmt.Fprintln(cmd.OutOrStdout(), "form is valid")
				return nil
			}
			printFields(cmd.OutOrStdout(), res.Errors)
			return res.Err()
		},
	}
}

func submitCmd() *cobra.Command {
	var (
		apiURL         string
		userAgent      string
		idempotencyKey string
		notifyTimeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "submit [form.json]",
		Short: "Create the registration, queue the confirmation and print the payment link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := readForm(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			client := apiclient.New(apiURL)

			lookup := apiclient.StartAddressLookup(ctx, client)
			select {
			case <-lookup.Done():
			case <-time.After(2 * time.Second):
			}

			pipeline := services.NewPipeline(form.NewValidator(), client, client, client,
				services.WithNotifyTimeout(notifyTimeout),
				services.WithNonCriticalHook(func(err error) {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
				}),
			)

			res, err := pipeline.Submit(ctx, state, ports.ClientInfo{
				IPAddress: lookup.Address(),
				UserAgent: userAgent,
			}, idempotencyKey, printNavigator{w: cmd.OutOrStdout()})
			if err != nil {
				var verr *form.ValidationError
				if errors.As(err, &verr) {
					printFields(cmd.ErrOrStderr(), verr.Fields)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "user id: %s\n", res.UserID)
			return nil
		},
	}

	cmd.Flags().StringVar(&apiURL, "api", envOr("FMA_API_URL", "http://localhost:8080"), "Registration API base URL")
	cmd.Flags().StringVar(&userAgent, "user-agent", "fma-submit", "User agent recorded with the signature")
	cmd.Flags().StringVar(&idempotencyKey, "idempotency-key", "", "Key for replaying a submission")
	cmd.Flags().DurationVar(&notifyTimeout, "notify-timeout", services.DefaultNotifyTimeout, "Time allowed for the confirmation request")
	return cmd
}

// printNavigator prints the payment page instead of opening it.
type printNavigator struct {
	w io.Writer
}

func (n printNavigator) Navigate(ctx context.Context, url string) error {
	_, err := fmt.Fprintf(n.w, "payment page: %s\n", url)
	return err
}

// readForm overlays the file onto a fresh form so omitted fields keep their
// defaults.
func readForm(path string) (form.State, error) {
	state := form.NewState()
	raw, err := os.ReadFile(path)
	if err != nil {
		return state, fmt.Errorf("read form: %w", err)
	}
	if err := json.Unmarshal(raw, &state); err != nil {
		return state, fmt.Errorf("decode form: %w", err)
	}
	return state, nil
}

func printFields(w io.Writer, fields map[string]string) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s: %s\n", name, fields[name])
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
