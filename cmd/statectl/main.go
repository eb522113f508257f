// Command statectl inspects and edits the on-device settings store. It is a
// development and support tool: dump redacts credentials and derived secrets
// by default so a pasted dump never leaks them.
package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/studykit/devicestate/internal/config"
	"github.com/studykit/devicestate/internal/crypto"
	"github.com/studykit/devicestate/internal/kvstore"
	"github.com/studykit/devicestate/internal/logutil"
	"github.com/studykit/devicestate/internal/messages"
	"github.com/studykit/devicestate/internal/obs"
	"github.com/studykit/devicestate/internal/state"
	"github.com/studykit/devicestate/internal/survey"
)

var showSecrets bool

// noopNotifier satisfies messages.Notifier for read-only inspection.
type noopNotifier struct{}

func (noopNotifier) ShowMessageNotification(context.Context, string) {}

func (noopNotifier) DismissNotification(context.Context, string, bool) {}

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// NewRootCmd constructs the root CLI command; exposed for unit testing.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "statectl",
		Short:         "Inspect and edit the on-device settings store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			obs.Init()
		},
	}

	rootCmd.PersistentFlags().BoolVar(&showSecrets, "show-secrets", false,
		"Print sensitive values instead of redacting them")

	rootCmd.AddCommand(newDumpCmd())
	rootCmd.AddCommand(newGetCmd())
	rootCmd.AddCommand(newSetCmd())
	rootCmd.AddCommand(newSurveysCmd())
	rootCmd.AddCommand(newMessagesCmd())
	return rootCmd
}

// openStore loads config and opens the settings store. The caller closes
// the returned map.
func openStore() (*state.Store, *kvstore.Map, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	var key []byte
	if cfg.Encrypted() {
		key = crypto.DeriveStoreKey(cfg.MasterKeyBytes(), cfg.DeviceID)
	}

	kv, err := kvstore.Open(cfg.DataDir, key)
	if err != nil {
		return nil, nil, err
	}

	store, err := state.Open(kv, state.Options{AutoLogoutFallback: cfg.AutoLogout})
	if err != nil {
		kv.Close()
		return nil, nil, err
	}
	return store, kv, nil
}

func newDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "Print every stored key and value",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, kv, err := openStore()
			if err != nil {
				return err
			}
			defer kv.Close()

			keys, err := store.Keys("")
			if err != nil {
				return err
			}
			sort.Strings(keys)
			for _, key := range keys {
				value, err := store.String(key, "")
				if err != nil {
					return err
				}
				if !showSecrets {
					value = logutil.RedactValue(key, value)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", key, logutil.TruncateForLog(value, 200))
			}
			return nil
		},
	}
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get KEY",
		Short: "Print one stored value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, kv, err := openStore()
			if err != nil {
				return err
			}
			defer kv.Close()

			key := args[0]
			has, err := store.Has(key)
			if err != nil {
				return err
			}
			if !has {
				return fmt.Errorf("key not found: %s", key)
			}
			value, err := store.String(key, "")
			if err != nil {
				return err
			}
			if !showSecrets {
				value = logutil.RedactValue(key, value)
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	}
}

func newSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Write one stored value as a string",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, kv, err := openStore()
			if err != nil {
				return err
			}
			defer kv.Close()

			return store.SetString(args[0], args[1])
		},
	}
}

func newSurveysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "surveys",
		Short: "List known surveys and their question memory",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, kv, err := openStore()
			if err != nil {
				return err
			}
			defer kv.Close()

			registry := survey.NewRegistry(store)
			ids, err := registry.SurveyIDs()
			if err != nil {
				return err
			}
			for _, id := range ids {
				surveyType, err := registry.Type(id)
				if err != nil {
					return err
				}
				memory, err := registry.QuestionMemory(id)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\ttype=%s\tquestions_shown=%d\n", id, surveyType, len(memory))
			}
			return nil
		},
	}
}

func newMessagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "messages",
		Short: "List stored inbox messages",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, kv, err := openStore()
			if err != nil {
				return err
			}
			defer kv.Close()

			inbox := messages.NewInbox(store, noopNotifier{})
			all, err := inbox.All()
			if err != nil {
				return err
			}

			ids := make([]string, 0, len(all))
			for id := range all {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			for _, id := range ids {
				msg := all[id]
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n",
					id, msg.ReceivedOn, logutil.TruncateForLog(msg.Content, 80))
			}
			return nil
		},
	}
}
