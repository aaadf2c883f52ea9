package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/gem-arcade/internal/membership"
	"github.com/vovakirdan/gem-arcade/internal/storage"
)

var flagMembersConfig string

var membersCmd = &cobra.Command{
	Use:   "members",
	Short: "Manage accounts and membership requests",
	Long: `Operator commands for the membership ledger.

A player registers an account, files a membership request (a payment
claim for the configured price), and an operator approves it once the
payment is confirmed.

Examples:
  arcade members register alice
  arcade members request alice
  arcade members pending
  arcade members approve 3
  arcade members revoke alice`,
}

var membersRegisterCmd = &cobra.Command{
	Use:   "register <user>",
	Short: "Create an account (prompts for a password)",
	Args:  cobra.ExactArgs(1),
	Run: withMembers(func(svc *membership.Service, args []string) {
		password, err := readPassword()
		if err != nil {
			fail("reading password: %v", err)
		}
		account, err := svc.Register(args[0], password)
		if err != nil {
			fail("%v", err)
		}
		fmt.Printf("Registered %s.\n", account.Username)
	}),
}

var membersRequestCmd = &cobra.Command{
	Use:   "request <user>",
	Short: "File a membership request for a user",
	Args:  cobra.ExactArgs(1),
	Run: withMembers(func(svc *membership.Service, args []string) {
		req, err := svc.RequestMembership(args[0])
		if err != nil {
			fail("%v", err)
		}
		fmt.Printf("Payment request #%d for %s: %d credits (%s).\n", req.ID, req.Username, req.Amount, req.Status)
	}),
}

var membersPendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List payment requests awaiting approval",
	Args:  cobra.NoArgs,
	Run: withMembers(func(svc *membership.Service, _ []string) {
		reqs, err := svc.Pending()
		if err != nil {
			fail("%v", err)
		}
		printPayments(os.Stdout, reqs)
	}),
}

var membersApproveCmd = &cobra.Command{
	Use:   "approve <payment-id>",
	Short: "Verify a payment and grant membership",
	Args:  cobra.ExactArgs(1),
	Run: withMembers(func(svc *membership.Service, args []string) {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			fail("invalid payment id %q", args[0])
		}
		req, err := svc.Approve(id)
		if err != nil {
			fail("%v", err)
		}
		fmt.Printf("Approved #%d: %s is now a member.\n", req.ID, req.Username)
	}),
}

var membersRevokeCmd = &cobra.Command{
	Use:   "revoke <user>",
	Short: "Remove membership from a user",
	Args:  cobra.ExactArgs(1),
	Run: withMembers(func(svc *membership.Service, args []string) {
		if err := svc.Revoke(args[0]); err != nil {
			fail("%v", err)
		}
		fmt.Printf("Revoked membership of %s.\n", membership.NormalizeUsername(args[0]))
	}),
}

func init() {
	membersCmd.PersistentFlags().StringVar(&flagMembersConfig, "config", "", "Path to custom gems config YAML (membership price)")
	membersCmd.AddCommand(membersRegisterCmd, membersRequestCmd, membersPendingCmd, membersApproveCmd, membersRevokeCmd)
}

// withMembers opens the database for a members subcommand.
func withMembers(fn func(svc *membership.Service, args []string)) func(*cobra.Command, []string) {
	return func(_ *cobra.Command, args []string) {
		store, err := storage.Open(flagDBPath)
		if err != nil {
			fail("opening database: %v", err)
		}
		defer store.Close()
		fn(newMembers(store, flagMembersConfig), args)
	}
}

// readPassword prompts on a terminal, or reads one line from piped stdin.
func readPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && err != io.EOF {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprint(os.Stderr, "Password: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	fmt.Fprint(os.Stderr, "Repeat password: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), nil
}

func printPayments(w io.Writer, reqs []storage.PaymentRequest) {
	if len(reqs) == 0 {
		fmt.Fprintln(w, "No pending requests.")
		return
	}
	fmt.Fprintf(w, "  %-6s  %-16s  %-8s  %s\n", "ID", "User", "Amount", "Requested")
	fmt.Fprintf(w, "  %-6s  %-16s  %-8s  %s\n", "--", "----", "------", "---------")
	for _, r := range reqs {
		fmt.Fprintf(w, "  %-6d  %-16s  %-8d  %s\n", r.ID, r.Username, r.Amount, r.CreatedAt.Format("2006-01-02 15:04"))
	}
}
