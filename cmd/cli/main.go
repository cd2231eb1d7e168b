package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/iho/gosettle/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/gosettle/internal/adapter/repository/postgres"
	"github.com/iho/gosettle/internal/iso20022"
	"github.com/iho/gosettle/internal/usecase"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "gosettle-cli",
		Short:         "GoSettle CLI tool",
		Long:          `A command line interface for converting MT103 messages and interacting with the GoSettle API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the GoSettle API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	// Ledger commands
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}
	ledgerCmd.AddCommand(consistencyCmd())

	rootCmd.AddCommand(convertCmd(), payCmd(), ledgerCmd)
	return rootCmd
}

func convertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <file|->",
		Short: "Convert an MT103 message to pacs.008 XML locally",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			idGen := postgresRepo.NewULIDGenerator()
			converter := usecase.NewPaymentUseCase(usecase.PaymentUseCaseConfig{
				IDGen:     idGen,
				Enricher:  usecase.NewEnricher(usecase.EnricherConfig{IDGen: idGen, Logger: zerolog.Nop()}),
				Generator: iso20022.NewGenerator(nil),
				Logger:    zerolog.Nop(),
			})

			result, err := converter.ConvertLegacyMessage(cmd.Context(), raw)
			if err != nil {
				return fmt.Errorf("convert: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), result.SettlementXML)
			return nil
		},
	}
}

func readInput(stdin io.Reader, name string) (string, error) {
	if name == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}

	b, err := os.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	return string(b), nil
}

func payCmd() *cobra.Command {
	var (
		from, to, currency, idempotencyKey string
		amount                             string
	)

	cmd := &cobra.Command{
		Use:   "pay",
		Short: "Create a payment between two ledger accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", amount, err)
			}

			body, err := json.Marshal(map[string]any{
				"sender_account_id":   from,
				"receiver_account_id": to,
				"amount":              value,
				"currency":            strings.ToUpper(currency),
			})
			if err != nil {
				return err
			}

			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodPost, baseURL+"/api/v1/payments/", bytes.NewReader(body))
			if err != nil {
				return err
			}
			req.Header.Set("Content-Type", "application/json")
			if idempotencyKey != "" {
				req.Header.Set(middleware.IdempotencyKeyHeader, idempotencyKey)
			}

			status, respBody, err := send(req)
			if err != nil {
				return err
			}

			printJSON(cmd.OutOrStdout(), respBody)
			if status != http.StatusCreated {
				return fmt.Errorf("payment not settled (status %d)", status)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Sender account ID")
	cmd.Flags().StringVar(&to, "to", "", "Receiver account ID")
	cmd.Flags().StringVar(&amount, "amount", "", "Amount to transfer")
	cmd.Flags().StringVar(&currency, "currency", "USD", "ISO 4217 currency code")
	cmd.Flags().StringVar(&idempotencyKey, "idempotency-key", "", "Idempotency-Key header value")
	for _, name := range []string{"from", "to", "amount"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func consistencyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "consistency",
		Short: "Check ledger consistency",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, baseURL+"/api/v1/ledger/consistency", nil)
			if err != nil {
				return err
			}

			status, body, err := send(req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if status != http.StatusOK {
				fmt.Fprintf(out, "Consistency check FAILED (Status: %d)\n", status)
				printJSON(out, body)
				return errors.New("ledger is inconsistent")
			}

			var result struct {
				Consistent       bool   `json:"consistent"`
				TotalEntryAmount string `json:"total_entry_amount"`
			}
			if err := json.Unmarshal(body, &result); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			fmt.Fprintf(out, "Consistency check PASSED\n")
			fmt.Fprintf(out, "Consistent: %v\n", result.Consistent)
			fmt.Fprintf(out, "Total entry amount: %s\n", result.TotalEntryAmount)
			return nil
		},
	}
}

func send(req *http.Request) (int, []byte, error) {
	ctx, cancel := context.WithTimeout(req.Context(), timeout)
	defer cancel()

	resp, err := http.DefaultClient.Do(req.WithContext(ctx))
	if err != nil {
		return 0, nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

// printJSON indents body when it is JSON and prints it as is otherwise.
func printJSON(w io.Writer, body []byte) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		fmt.Fprintln(w, string(body))
		return
	}
	fmt.Fprintln(w, strings.TrimRight(buf.String(), "\n"))
}
