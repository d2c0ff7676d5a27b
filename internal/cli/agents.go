package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/soyeahso/agentdeck/internal/bundle"
	"github.com/soyeahso/agentdeck/internal/config"
	"github.com/soyeahso/agentdeck/internal/prompt"
)

func newAgentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agents",
		Short: "Inspect filesystem agent bundles",
	}

	cmd.AddCommand(newAgentsListCmd())
	cmd.AddCommand(newAgentsShowCmd())
	cmd.AddCommand(newAgentsPromptCmd())
	return cmd
}

// bundleLoader builds a loader against the configured bundles directory.
func bundleLoader() *bundle.Loader {
	cfg, err := config.Load(paths.Config)
	if err != nil {
		cfg = config.Defaults()
	}
	return bundle.NewLoader(paths.BundlesDir(cfg), log)
}

func newAgentsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List agent bundles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			metas := bundleLoader().List()
			if len(metas) == 0 {
				fmt.Println("no agent bundles found")
				return nil
			}
			for _, m := range metas {
				fmt.Printf("  %-20s %-24s %s\n", m.Name, m.DisplayName, m.Category)
			}
			return nil
		},
	}
}

func newAgentsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [name]",
		Short: "Show details about an agent bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loader := bundleLoader()
			b := loader.Load(args[0])
			if !b.HasPersona() {
				return fmt.Errorf("agent bundle not found: %s", args[0])
			}
			meta := loader.Metadata(args[0])

			fmt.Printf("Agent: %s (%s)\n", meta.Name, meta.DisplayName)
			fmt.Printf("  Category:  %s\n", meta.Category)
			fmt.Printf("  Knowledge: %d fragment(s)\n", len(b.Knowledge))
			for _, f := range b.Knowledge {
				fmt.Printf("    - %s\n", f.Name)
			}
			fmt.Printf("  Skills:    %d fragment(s)\n", len(b.Skills))
			for _, f := range b.Skills {
				fmt.Printf("    - %s\n", f.Name)
			}
			fmt.Printf("  Workflows: %d fragment(s)\n", len(b.Workflows))
			for _, f := range b.Workflows {
				fmt.Printf("    - %s\n", f.Name)
			}
			return nil
		},
	}
}

func newAgentsPromptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prompt [name]",
		Short: "Print the assembled system prompt for an agent bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b := bundleLoader().Load(args[0])
			if !b.HasPersona() {
				return fmt.Errorf("agent bundle not found: %s", args[0])
			}
			fmt.Println(prompt.Assemble(b))
			return nil
		},
	}
}
