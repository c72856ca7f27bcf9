package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// NewConstructCommand creates the construct command.
func NewConstructCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "construct",
		Short:         "Make the token's account the registry owner",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts, func(ctx context.Context, c *Client, out *OutputFormatter) error {
				state, err := c.Construct(ctx)
				if err != nil {
					return err
				}
				return out.Success(state, fmt.Sprintf("registry owner: %s", state.Owner))
			})
		},
	}
}

// VerifyOptions holds flags for the verify command.
type VerifyOptions struct {
	*RootOptions
	Score      int
	Level      string
	Sanctioned bool
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VerifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "verify <wallet-address>",
		Short: "Record a verification for one wallet",
		Long: `Record a verification for one wallet. Re-verifying replaces the stored record.

Example:
  walletctl verify 0x52908400098527886e0f7030069857d2e4169ee7 --score 40 --level medium`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, rootOpts, func(ctx context.Context, c *Client, out *OutputFormatter) error {
				record, err := c.Verify(ctx, VerifyInput{
					WalletAddress: args[0],
					RiskScore:     opts.Score,
					RiskLevel:     opts.Level,
					IsSanctioned:  opts.Sanctioned,
				})
				if err != nil {
					return err
				}
				return out.Success(record, formatVerification(*record))
			})
		},
	}

	cmd.Flags().IntVar(&opts.Score, "score", 0, "risk score (0-100)")
	cmd.Flags().StringVar(&opts.Level, "level", "", "risk level (low|medium|high)")
	cmd.Flags().BoolVar(&opts.Sanctioned, "sanctioned", false, "wallet is sanctioned")
	_ = cmd.MarkFlagRequired("score")
	_ = cmd.MarkFlagRequired("level")

	return cmd
}

// NewBatchCommand creates the batch command.
func NewBatchCommand(opts *RootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Record verifications from a JSON file",
		Long: `Record verifications from a JSON array of entries, each with
wallet_address, risk_score, risk_level and optional is_sanctioned.
Entries with an out-of-range score are skipped by the registry.

Example:
  walletctl batch --file entries.json
  cat entries.json | walletctl batch --file -`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := readEntries(cmd.InOrStdin(), file)
			if err != nil {
				return WrapExitError(ExitCommandError, "read batch entries", err)
			}
			return run(cmd, opts, func(ctx context.Context, c *Client, out *OutputFormatter) error {
				out.VerboseLog("submitting %d entries", len(entries))
				result, err := c.VerifyBatch(ctx, entries)
				if err != nil {
					return err
				}
				return out.Success(result, fmt.Sprintf("applied %d of %d entries", result.Applied, result.Submitted))
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", `JSON entries file ("-" for stdin)`)
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

// NewGetCommand creates the get command.
func NewGetCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "get <wallet-address>",
		Short:         "Show the stored verification for a wallet",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(ctx context.Context, c *Client, out *OutputFormatter) error {
				record, err := c.Get(ctx, args[0])
				if err != nil {
					return err
				}
				return out.Success(record, formatVerification(*record))
			})
		},
	}
}

// NewStatusCommand creates the status command.
func NewStatusCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "status <wallet-address>",
		Short:         "Report whether a wallet has been verified",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(ctx context.Context, c *Client, out *OutputFormatter) error {
				status, err := c.Status(ctx, args[0])
				if err != nil {
					return err
				}
				return out.Success(status, fmt.Sprintf("%s verified=%t", status.WalletAddress, status.Verified))
			})
		},
	}
}

// NewLookupCommand creates the lookup command.
func NewLookupCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "lookup <wallet-address>...",
		Short:         "Fetch verifications for several wallets at once",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, func(ctx context.Context, c *Client, out *OutputFormatter) error {
				result, err := c.Lookup(ctx, args)
				if err != nil {
					return err
				}
				var b strings.Builder
				for _, address := range args {
					if record, ok := result.Verifications[strings.ToLower(strings.TrimSpace(address))]; ok {
						fmt.Fprintln(&b, formatVerification(record))
					}
				}
				for _, address := range result.Missing {
					fmt.Fprintf(&b, "%s not verified\n", address)
				}
				return out.Success(result, strings.TrimRight(b.String(), "\n"))
			})
		},
	}
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "stats",
		Short:         "Show the total number of applied verifications",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts, func(ctx context.Context, c *Client, out *OutputFormatter) error {
				stats, err := c.Stats(ctx)
				if err != nil {
					return err
				}
				return out.Success(stats, fmt.Sprintf("total verifications: %d", stats.TotalVerifications))
			})
		},
	}
}

// NewOwnerCommand creates the owner command.
func NewOwnerCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "owner",
		Short:         "Show the registry owner",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts, func(ctx context.Context, c *Client, out *OutputFormatter) error {
				owner, err := c.Owner(ctx)
				if err != nil {
					return err
				}
				return out.Success(map[string]string{"owner": owner}, owner)
			})
		},
	}
}

// run executes fn against the configured server and renders API errors.
func run(cmd *cobra.Command, opts *RootOptions, fn func(ctx context.Context, c *Client, out *OutputFormatter) error) error {
	out := opts.formatter(cmd)
	out.VerboseLog("server: %s", opts.Server)
	return out.report(fn(cmd.Context(), opts.client(), out))
}

func readEntries(stdin io.Reader, file string) ([]VerifyInput, error) {
	var r io.Reader = stdin
	if file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	var entries []VerifyInput
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode entries: %w", err)
	}
	return entries, nil
}

func formatVerification(v Verification) string {
	return fmt.Sprintf("%s score=%d level=%s sanctioned=%t verified_at=%s verified_by=%s",
		v.WalletAddress, v.RiskScore, v.RiskLevel, v.IsSanctioned,
		v.VerifiedAt.Format("2006-01-02T15:04:05Z07:00"), v.VerifiedBy)
}
