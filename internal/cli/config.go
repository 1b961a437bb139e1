package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/store"
	"github.com/matzehuels/kintree/pkg/viewconfig"
)

// configCommand creates the view settings command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show and change view settings",
		Long: `Show and change view settings.

Accepted keys: ` + strings.Join(viewconfig.AcceptedKeys, ", ") + `.`,
	}

	cmd.AddCommand(c.configShowCommand())
	cmd.AddCommand(c.configSetCommand())
	cmd.AddCommand(c.configResetViewCommand())

	return cmd
}

func (c *CLI) configShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print stored view settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			values, err := st.Config(cmd.Context())
			if err != nil {
				return err
			}
			if len(values) == 0 {
				printInfo("No view settings stored")
				return nil
			}
			for _, k := range values.Keys() {
				printKeyValue(k, values[k])
			}
			if _, problems := viewconfig.Parse(values); len(problems) > 0 {
				printNewline()
				for _, p := range problems {
					printWarning("%s", errors.UserMessage(p))
				}
			}
			return nil
		},
	}
}

func (c *CLI) configSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY=VALUE...",
		Short: "Set view settings (an empty value deletes the key)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := parsePatch(args)
			if err != nil {
				return err
			}

			st, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.PatchConfig(cmd.Context(), patch); err != nil {
				return err
			}
			for _, k := range viewconfig.Values(patch).Keys() {
				if patch[k] == "" {
					printSuccess("Deleted %s", k)
				} else {
					printSuccess("Set %s", k)
				}
			}
			return nil
		},
	}
}

// parsePatch parses KEY=VALUE arguments. Unknown keys are rejected here
// rather than silently dropped by the store.
func parsePatch(args []string) (viewconfig.Patch, error) {
	patch := make(viewconfig.Patch, len(args))
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "expected KEY=VALUE, got %q", arg)
		}
		k = strings.TrimSpace(k)
		if !viewconfig.IsAccepted(k) {
			return nil, errors.New(errors.ErrCodeInvalidInput, "unknown view setting %q", k)
		}
		patch[k] = v
	}
	return patch, nil
}

func (c *CLI) configResetViewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-view",
		Short: "Forget saved positions so the tree is fitted again",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			if err := store.ResetView(cmd.Context(), st); err != nil {
				return fmt.Errorf("reset view: %w", err)
			}
			printSuccess("View reset")
			return nil
		},
	}
}
