package app

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/apd/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/trac-network/tap-authority/keys"
	"github.com/trac-network/tap-authority/ops"
)

func keygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate a fresh secp256k1 authority key pair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kp, err := keys.Generate()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "private key: %s\npublic key:  %s\n", kp.PrivateKeyHex(), kp.PublicKeyHex())
			return nil
		},
	}
}

func privilegeAuthCmd() *cobra.Command {
	var message, salt string

	cmd := &cobra.Command{
		Use:   "privilege-auth",
		Short: "Sign an authority declaration over a freeform JSON message",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var payload map[string]any
			if err := json.Unmarshal([]byte(message), &payload); err != nil {
				return fmt.Errorf("parse --message: %w", err)
			}

			kp, err := loadKeyPair()
			if err != nil {
				return err
			}
			op, report, err := ops.BuildAuthorityDeclaration(kp, payload, salt)
			if err != nil {
				return err
			}
			return emit(cmd, op, report)
		},
	}

	cmd.Flags().StringVar(&message, "message", "", "JSON object to attest (required)")
	cmd.Flags().StringVar(&salt, "salt", ops.NewSalt(), "uniqueness salt")
	_ = cmd.MarkFlagRequired("message")
	return cmd
}

func tokenMintCmd() *cobra.Command {
	var ticker, amount, address, salt string

	cmd := &cobra.Command{
		Use:   "token-mint",
		Short: "Sign a token mint delegation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			amt, _, err := apd.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("parse --amount: %w", err)
			}

			kp, err := loadKeyPair()
			if err != nil {
				return err
			}
			op, report, err := ops.BuildTokenMint(kp, ticker, amt, address, salt)
			if err != nil {
				return err
			}
			return emit(cmd, op, report)
		},
	}

	cmd.Flags().StringVar(&ticker, "ticker", "", "token ticker (required)")
	cmd.Flags().StringVar(&amount, "amount", "", "decimal amount to mint (required)")
	cmd.Flags().StringVar(&address, "address", "", "recipient address (required)")
	cmd.Flags().StringVar(&salt, "salt", ops.NewSalt(), "uniqueness salt")
	for _, f := range []string{"ticker", "amount", "address"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

func dmtMintCmd() *cobra.Command {
	var ticker, dependency, address, salt string
	var block uint64

	cmd := &cobra.Command{
		Use:   "dmt-mint",
		Short: "Sign a DMT element mint delegation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kp, err := loadKeyPair()
			if err != nil {
				return err
			}
			op, report, err := ops.BuildDmtMint(kp, ticker, block, dependency, address, salt)
			if err != nil {
				return err
			}
			return emit(cmd, op, report)
		},
	}

	cmd.Flags().StringVar(&ticker, "ticker", "", "element ticker (required)")
	cmd.Flags().Uint64Var(&block, "block", 0, "block number the mint is bound to")
	cmd.Flags().StringVar(&dependency, "dependency", "", "dependency inscription id (required)")
	cmd.Flags().StringVar(&address, "address", "", "recipient address (required)")
	cmd.Flags().StringVar(&salt, "salt", ops.NewSalt(), "uniqueness salt")
	for _, f := range []string{"ticker", "dependency", "address"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

func provenanceCmd() *cobra.Command {
	var authority, collection, contentHash, address, salt string
	var sequence int64

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Sign a provenance verification for a content hash",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kp, err := loadKeyPair()
			if err != nil {
				return err
			}
			op, report, err := ops.BuildProvenanceVerification(kp, authority, collection, contentHash, sequence, address, salt)
			if err != nil {
				return err
			}
			return emit(cmd, op, report)
		},
	}

	cmd.Flags().StringVar(&authority, "authority", "", "authority id (required)")
	cmd.Flags().StringVar(&collection, "collection", "", "collection name (required)")
	cmd.Flags().StringVar(&contentHash, "content-hash", "", "content hash to attest (required)")
	cmd.Flags().Int64Var(&sequence, "sequence", 0, "sequence number within the collection")
	cmd.Flags().StringVar(&address, "address", "", "holder address (required)")
	cmd.Flags().StringVar(&salt, "salt", ops.NewSalt(), "uniqueness salt")
	for _, f := range []string{"authority", "collection", "content-hash", "address"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

// emit prints the publishable op text on stdout and logs the diagnostic
// verification report, which is never part of the published payload.
func emit(cmd *cobra.Command, op ops.Op, report *ops.VerificationReport) error {
	text, err := op.Encode()
	if err != nil {
		return err
	}

	zap.L().Info("self-verification report",
		zap.Bool("valid", report.Valid),
		zap.String("signer_public_key", hex.EncodeToString(report.SignerPublicKey)),
		zap.String("recovered_public_key", hex.EncodeToString(report.RecoveredPublicKey)))

	if !report.Valid {
		return fmt.Errorf("self-verification failed, refusing to emit op")
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(text))
	return nil
}
