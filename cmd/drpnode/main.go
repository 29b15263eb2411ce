// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Command drpnode is a thin wiring binary around the node package: it loads
// configuration, derives or generates a node's signing identity, and
// reports what it found. Joining an actual transport mesh is the embedding
// application's job, via its own network.Adapter passed to node.NewNode.
package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/luxfi/log"

	"github.com/luxfi/drp/config"
	"github.com/luxfi/drp/node"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "drpnode",
	Short: "Tools for running and inspecting a DRP node's identity and configuration",
	Long: `drpnode loads a node's YAML configuration, derives its secp256k1 and BLS
signing identity, and validates the configured finality and discovery
parameters. It does not itself speak any wire transport: an embedding
application wires a network.Adapter into node.NewNode to actually join a
network.`,
}

func main() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to a YAML configuration file (defaults unset fields)")
	rootCmd.AddCommand(keygenCmd(), identityCmd(), validateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	if cfgPath == "" {
		return config.Default(), nil
	}
	return config.Load(cfgPath)
}

func keygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate a fresh identity and print its peer id and BLS key",
		Long: `Generates a fresh secp256k1/BLS keychain, unrelated to any configured seed,
and prints the peer id and BLS public key it derives. The keys are random,
not derived from a seed, and no seed is printed, so the identity cannot be
reproduced later.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			kc, err := node.NewKeychain(config.Keychain{})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "peer id:  %s\n", kc.PeerID())
			fmt.Fprintf(cmd.OutOrStdout(), "bls key:  %s\n", hex.EncodeToString(kc.BLSPublicKeyCompressed()))
			fmt.Fprintln(cmd.OutOrStdout(), "note: no deterministic seed was requested; rerun with a configured")
			fmt.Fprintln(cmd.OutOrStdout(), "keychain.private_key_seed to reproduce this identity across restarts")
			return nil
		},
	}
}

func identityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "identity",
		Short: "Print the peer id and BLS public key the configured seed derives",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			kc, err := node.NewKeychain(cfg.Keychain)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "peer id:  %s\n", kc.PeerID())
			fmt.Fprintf(cmd.OutOrStdout(), "bls key:  %s\n", hex.EncodeToString(kc.BLSPublicKeyCompressed()))
			return nil
		},
	}
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate a configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := log.NewLogger("drpnode")
			cfg, err := loadConfig()
			if err != nil {
				logger.Error("configuration invalid", "path", cfgPath, "err", err)
				return err
			}
			if err := cfg.Valid(); err != nil {
				logger.Error("configuration invalid", "path", cfgPath, "err", err)
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", configSource())
			return nil
		},
	}
}

func configSource() string {
	if cfgPath == "" {
		return "(default configuration)"
	}
	return cfgPath
}
