// cmd/contactctl/main.go
// 維運工具 - 檢查設定、發送測試信、輸出狀態

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"contact-relay/internal/config"
	"contact-relay/internal/contact"
	"contact-relay/internal/logger"
	"contact-relay/internal/models"
	"contact-relay/internal/services"
)

// errNoProvider 沒有任何通知供應商
var errNoProvider = errors.New("no email provider configured: set a mail API key, EMAILJS_* or SMTP_* together with CONTACT_TO")

func main() {
	if err := newRootCmd(config.Load).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newRootCmd 建立根指令，load 提供設定
func newRootCmd(load func() *config.Config) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "contactctl",
		Short:         "Operator tool for the contact relay",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newCheckEnvCmd(load))
	rootCmd.AddCommand(newSendTestCmd(load))
	rootCmd.AddCommand(newStatusCmd(load))

	return rootCmd
}

func newCheckEnvCmd(load func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "check-env",
		Short: "Verify at least one notification provider is configured",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheckEnv(cmd.OutOrStdout(), load())
		},
	}
}

func runCheckEnv(out io.Writer, cfg *config.Config) error {
	report := services.BuildStatusReport(cfg)

	if report.Services.MailAPI {
		fmt.Fprintf(out, "OK: mail API configured (%s)\n", report.MailAPIVendor)
	}
	if report.Services.EmailJS {
		fmt.Fprintln(out, "OK: EmailJS configured")
	}
	if report.Services.SMTP {
		fmt.Fprintln(out, "OK: SMTP configured")
	}
	if report.Services.Store {
		fmt.Fprintln(out, "OK: contact store configured")
	}

	if !cfg.AnyProviderConfigured() {
		return errNoProvider
	}
	return nil
}

func newSendTestCmd(load func() *config.Config) *cobra.Command {
	var to string

	cmd := &cobra.Command{
		Use:   "send-test",
		Short: "Send one test message through the provider chain",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := load()
			if to != "" {
				cfg.ContactTo = to
			}
			return runSendTest(cmd.OutOrStdout(), cfg)
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "recipient override (defaults to CONTACT_TO)")
	return cmd
}

func runSendTest(out io.Writer, cfg *config.Config) error {
	if cfg.ContactFrom == "" {
		cfg.ContactFrom = cfg.ContactTo
	}

	senders, err := services.NewProviderChain(cfg)
	if err != nil {
		return err
	}

	log := logger.New(cfg.LogLevel, "console")
	router := services.NewMailRouter(log, cfg.ProviderTimeout, senders...)

	sub := models.ContactSubmission{
		Name:    "Local Test",
		Email:   testSenderEmail(cfg),
		Message: "This is a test message sent by contactctl send-test.",
	}
	report := router.Deliver(contact.BuildMail(sub, cfg.ContactFrom, cfg.ContactTo))

	for _, attempt := range report.Attempts {
		line := fmt.Sprintf("%-16s %s", attempt.Provider, attempt.Status)
		if attempt.Err != nil {
			line += ": " + attempt.Err.Error()
		}
		fmt.Fprintln(out, line)
	}

	switch report.Outcome.Status {
	case models.DeliverySent:
		fmt.Fprintf(out, "sent via %s\n", report.Outcome.Provider)
		return nil
	case models.DeliveryNotConfigured:
		return errNoProvider
	default:
		return fmt.Errorf("all providers failed, last error: %w", report.Outcome.Err)
	}
}

// testSenderEmail 測試信的訪客 Email
func testSenderEmail(cfg *config.Config) string {
	if email := os.Getenv("TEST_FROM_EMAIL"); email != "" {
		return email
	}
	if contact.IsValidEmail(cfg.SMTPUser) {
		return cfg.SMTPUser
	}
	return "no-reply@example.com"
}

func newStatusCmd(load func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print which services are configured",
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(services.BuildStatusReport(load()))
		},
	}
}
