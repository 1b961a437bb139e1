package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/pkg/family"
	kio "github.com/matzehuels/kintree/pkg/io"
	"github.com/matzehuels/kintree/pkg/store"
	"github.com/matzehuels/kintree/pkg/viewconfig"
)

// memberCommand creates the member management command.
func (c *CLI) memberCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "member",
		Aliases: []string{"members"},
		Short:   "Manage family members",
	}

	cmd.AddCommand(c.memberListCommand())
	cmd.AddCommand(c.memberAddCommand())
	cmd.AddCommand(c.memberRemoveCommand())
	cmd.AddCommand(c.memberImportCommand())
	cmd.AddCommand(c.memberExportCommand())

	return cmd
}

func (c *CLI) memberListCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List members",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			members, err := st.ListMembers(cmd.Context())
			if err != nil {
				return err
			}
			if format != "" {
				return kio.WriteMembers(c.out, members, format)
			}
			if len(members) == 0 {
				printInfo("No members yet")
				printNextStep("Add one", appName+" member add --name \"Ada\" --generation 1")
				return nil
			}
			fmt.Fprintln(c.out, memberTable(members))
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "print as json or yaml instead of a table")
	return cmd
}

func (c *CLI) memberAddCommand() *cobra.Command {
	var (
		m           family.Member
		gender      string
		childOrder  int
		spouseOrder int
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a member",
		Long: `Add a member.

Without --id a random UUID is assigned. Naming a spouse who has no spouse
yet links them back automatically.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m.Gender = family.Gender(gender)
			if cmd.Flags().Changed("child-order") {
				m.ChildOrder = family.IntPtr(childOrder)
			}
			if cmd.Flags().Changed("spouse-order") {
				m.SpouseOrder = family.IntPtr(spouseOrder)
			}

			st, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			created, err := store.Create(cmd.Context(), st, m)
			if err != nil {
				return err
			}
			printSuccess("Added %s", StyleHighlight.Render(created.Name))
			printKeyValue("ID", created.ID.String())
			printKeyValue("Generation", fmt.Sprint(created.Gen()))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar((*string)(&m.ID), "id", "", "member id (default: random UUID)")
	f.StringVar(&m.Name, "name", "", "display name")
	f.StringVar(&gender, "gender", "", "male, female or other")
	f.IntVar(&m.Generation, "generation", 1, "generation, 1 is the oldest row")
	f.StringVar(&m.BirthDate, "birth", "", "birth date (free text, year is extracted)")
	f.StringVar(&m.DeathDate, "death", "", "death date")
	f.StringVar((*string)(&m.FatherID), "father", "", "father's id")
	f.StringVar((*string)(&m.MotherID), "mother", "", "mother's id")
	f.StringVar((*string)(&m.SpouseID), "spouse", "", "spouse's id")
	f.IntVar(&childOrder, "child-order", 0, "position among siblings")
	f.IntVar(&spouseOrder, "spouse-order", 0, "position next to the spouse")
	f.StringVar(&m.PhotoURL, "photo", "", "photo URL")
	f.StringVar(&m.Notes, "notes", "", "free-form notes")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func (c *CLI) memberRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID...",
		Aliases: []string{"remove"},
		Short:   "Remove members and every reference to them",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			for _, id := range args {
				if err := store.Delete(cmd.Context(), st, family.ID(id)); err != nil {
					return err
				}
				printSuccess("Removed %s", id)
			}
			return nil
		},
	}
}

func (c *CLI) memberImportCommand() *cobra.Command {
	var replace bool
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import members from a JSON or YAML file",
		Long: `Import members from a JSON or YAML file.

The file holds either a list of members or an object with "members" and an
optional "config" map of view settings. Members with an existing id are
replaced; --replace removes every member not in the file first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			doc, err := kio.ImportFile(args[0])
			if err != nil {
				return err
			}

			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			n, err := store.Import(ctx, st, doc.Members, replace)
			if err != nil {
				return fmt.Errorf("import stopped after %d members: %w", n, err)
			}
			if len(doc.Config) > 0 {
				if err := st.PatchConfig(ctx, viewconfig.Patch(doc.Config)); err != nil {
					return fmt.Errorf("import config: %w", err)
				}
			}
			printSuccess("Imported %d members", n)
			printDetail("From: %s", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&replace, "replace", false, "delete members missing from the file")
	return cmd
}

func (c *CLI) memberExportCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export [FILE]",
		Short: "Export members and view settings",
		Long: `Export members and view settings.

The format follows the file extension (.json, .yaml, .yml). Without FILE
the document is written to stdout in --format.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			members, err := st.ListMembers(ctx)
			if err != nil {
				return err
			}
			values, err := st.Config(ctx)
			if err != nil {
				return err
			}
			doc := kio.Document{Members: members, Config: values}

			if len(args) == 0 {
				return kio.WriteDocument(c.out, doc, format)
			}
			if err := kio.ExportFile(args[0], doc); err != nil {
				return err
			}
			printSuccess("Exported %d members", len(members))
			printFile(args[0])
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", kio.FormatJSON, "stdout format: json or yaml")
	return cmd
}
