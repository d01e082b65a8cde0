// Copyright (c) 2026 ToeiRei
// Keyferry - Bitwarden SSH key loader
// This source code is licensed under the MIT license found in the LICENSE file.

// main.go sets up the command-line interface for Keyferry using the Cobra
// library and drives the batch: session, folder lookup, item listing, and
// the per-item resolve-and-load loop. Before any of that, main() checks
// whether this very process was launched by ssh-add as its askpass helper
// and, if so, answers and exits without touching anything else.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/toeirei/keyferry/buildvars"
	"github.com/toeirei/keyferry/internal/agent"
	"github.com/toeirei/keyferry/internal/bitwarden"
	"github.com/toeirei/keyferry/internal/config"
	"github.com/toeirei/keyferry/internal/i18n"
	"github.com/toeirei/keyferry/internal/logging"
	"github.com/toeirei/keyferry/internal/resolver"
	"github.com/toeirei/keyferry/internal/security"
	"github.com/toeirei/keyferry/internal/sshkey"
)

var cfgFile string

var rootCmd *cobra.Command

// addToAgent is an injection point for tests; production code never
// changes it.
var addToAgent = agent.Add

// main is the entry point of the application. The askpass identity check
// must stay first: when ssh-add calls us back, nothing else may run.
func main() {
	if agent.IsAskpass() {
		agent.RunAskpass(os.Stdout)
		return
	}
	if err := rootCmd.Execute(); err != nil {
		// The error is already printed by Cobra on failure.
		os.Exit(1)
	}
}

func init() {
	rootCmd = newRootCmd()
}

// newRootCmd creates and configures a new root cobra command. This function
// is used to create the main application command as well as fresh instances
// for isolated testing.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keyferry",
		Short: "Keyferry loads SSH keys from a Bitwarden vault into the running ssh-agent.",
		Long: `Keyferry extracts SSH private keys stored as Bitwarden vault items
and adds them to the running ssh-agent via ssh-add. Keys live either in
the structured SSH key field of an item or, in legacy mode, in file
attachments and notes. Passphrase-protected keys are unlocked through
an askpass helper: this same binary, re-invoked by ssh-add.`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := config.Load(cmd, cfgFile)
			if err != nil {
				logging.Fatalf(i18n.T("config.error_load"), err)
			}
			logging.Configure(cfg.Debug, cfg.Quiet)
			i18n.Init(cfg.Language)

			if err := run(cfg); err != nil {
				logging.Fatalf(i18n.T("main.critical"), err)
			}
		},
	}

	cmd.Version = buildvars.VersionOrDefault("dev")

	cmd.Flags().BoolP("debug", "d", false, "show debug output")
	cmd.Flags().BoolP("quiet", "q", false, "only show warnings and errors")
	cmd.Flags().StringP("foldername", "f", "ssh-agent", "folder name to search for SSH keys")
	cmd.Flags().StringP("customfield", "c", "private", "custom field naming the private key attachment")
	cmd.Flags().StringP("passphrasefield", "p", "passphrase", "custom field holding the key passphrase")
	cmd.Flags().StringP("passphrase", "w", "", "default passphrase for the SSH keys")
	cmd.Flags().BoolP("legacymode", "l", false, "also fetch keys from attachments and notes")
	cmd.Flags().StringP("session", "s", "", "Bitwarden session token")
	cmd.Flags().String("lang", "en", `output language ("en", "de")`)
	cmd.Flags().StringVar(&cfgFile, "config", "", "config file (default is keyferry.yaml in the user config dir)")

	return cmd
}

// run drives one batch: session, folder, items, then the per-item loop.
// Errors returned here are fatal for the whole run; per-item failures are
// handled inside addKeys and never bubble up.
func run(cfg config.Config) error {
	bw := bitwarden.New()

	logging.Infof(i18n.T("main.getting_session"))
	session, err := bw.GetSession(cfg.Session)
	if err != nil {
		return err
	}
	defer session.Zero()

	logging.Infof(i18n.T("main.getting_folders"))
	folderID, err := bw.GetFolderID(session, cfg.FolderName)
	if err != nil {
		return err
	}

	logging.Infof(i18n.T("main.getting_items"))
	items, err := bw.ListItems(session, folderID)
	if err != nil {
		return err
	}

	logging.Infof(i18n.T("main.adding_keys"))
	addKeys(bw, session, items, cfg)
	return nil
}

// addKeys processes every item in sequence. Each item is fully isolated:
// resolution failures are logged and skipped, agent failures are logged as
// warnings, and in all cases the loop moves on to the next item.
func addKeys(f resolver.Fetcher, session security.Secret, items []bitwarden.Item, cfg config.Config) {
	opts := resolver.Options{KeyField: cfg.CustomField, Legacy: cfg.LegacyMode}
	fallback := security.FromString(cfg.Passphrase)

	for _, item := range items {
		logging.Infof("----------------------------------")
		logging.Infof(i18n.T("main.processing_item"), item.Name)

		key, err := resolver.Resolve(f, session, item, opts)
		if err != nil {
			logging.Errorf("%v", err)
			continue
		}

		describeKey(key)

		passphrase := resolver.Passphrase(item, cfg.PassphraseField, fallback)
		if err := addToAgent(key, passphrase, cfg.Quiet); err != nil {
			logging.Warnf(i18n.T("main.add_failed"), item.Name)
			logging.Debugf("%v", err)
		}
	}
}

// describeKey logs what kind of key is about to be loaded. Identification
// is informational only; failures never block loading.
func describeKey(key string) {
	info, err := sshkey.Describe(key)
	if err != nil {
		logging.Debugf(i18n.T("main.key_unparsed"), err)
		return
	}
	if info.Encrypted {
		logging.Infof(i18n.T("main.key_encrypted"), info.Type)
		return
	}
	logging.Infof(i18n.T("main.key_info"), info.Type, info.Fingerprint)
}
