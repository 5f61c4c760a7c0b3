package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/fatih/color"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	hubURL     string
	logLevel   string
	jsonOutput bool

	groupTitleColor   = color.New(color.FgCyan, color.Bold)
	sectionTitleColor = color.New(color.FgBlue, color.Bold)
)

// rootCmd is the root command for navigator.
var rootCmd = &cobra.Command{
	Use:     "navigator",
	Version: "dev",
	Short:   "Drive the simulated robot to its goal",
	Long: `navigator plans a collision-free route for the simulated robot and follows it through
the command hub, replanning whenever the simulator reports a collision.

Grid mode plans over the known obstacle list; vision mode plans over what a captured
frame of the simulator canvas shows.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

// SetVersion sets the version printed by --version. An empty v keeps "dev".
func SetVersion(v string) {
	if v == "" {
		return
	}
	rootCmd.Version = v
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

// customHelpFunc prints usage, then the subcommands under their colored group titles, then
// the flags. Subcommands without a group, such as `navigate grid`, are listed under
// "Commands:".
func customHelpFunc(cmd *cobra.Command, args []string) {
	var help strings.Builder

	if cmd.Long != "" {
		help.WriteString(cmd.Long)
		help.WriteString("\n\n")
	}
	writeSection(&help, sectionTitleColor.Sprint("Usage:"), "  "+cmd.UseLine()+"\n")

	visible := lo.Filter(cmd.Commands(), func(c *cobra.Command, _ int) bool {
		return c.IsAvailableCommand()
	})
	for _, group := range cmd.Groups() {
		writeCommands(&help, groupTitleColor.Sprint(group.Title), lo.Filter(visible, func(c *cobra.Command, _ int) bool {
			return c.GroupID == group.ID
		}))
	}
	writeCommands(&help, sectionTitleColor.Sprint("Commands:"), lo.Filter(visible, func(c *cobra.Command, _ int) bool {
		return c.GroupID == ""
	}))

	if cmd.HasAvailableLocalFlags() || cmd.HasAvailablePersistentFlags() {
		writeSection(&help, sectionTitleColor.Sprint("Flags:"),
			cmd.LocalFlags().FlagUsages()+cmd.InheritedFlags().FlagUsages())
	}

	fmt.Fprintf(&help, "Use \"%s [command] --help\" for more information about a command.\n", cmd.CommandPath())
	fmt.Fprint(cmd.OutOrStdout(), help.String())
}

// writeCommands lists cmds under title. Nothing is written for an empty list.
func writeCommands(help *strings.Builder, title string, cmds []*cobra.Command) {
	if len(cmds) == 0 {
		return
	}
	var body strings.Builder
	for _, c := range cmds {
		fmt.Fprintf(&body, "  %-11s %s\n", c.Name(), c.Short)
	}
	writeSection(help, title, body.String())
}

func writeSection(help *strings.Builder, title, body string) {
	help.WriteString(title)
	help.WriteString("\n")
	help.WriteString(body)
	help.WriteString("\n")
}

func init() {
	rootCmd.SetHelpFunc(customHelpFunc)

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a JSON config file")
	rootCmd.PersistentFlags().StringVar(&hubURL, "hub", "", "Command hub URL (overrides the config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error (overrides the config)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	rootCmd.AddGroup(&cobra.Group{
		ID:    "navigation",
		Title: "Navigation:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "simulator",
		Title: "Simulator Control:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "offline",
		Title: "Offline Tools:",
	})

	navigateCmd.GroupID = "navigation"
	rootCmd.AddCommand(navigateCmd)

	resetCmd.GroupID = "simulator"
	goalCmd.GroupID = "simulator"
	obstaclesCmd.GroupID = "simulator"
	stopCmd.GroupID = "simulator"
	statusCmd.GroupID = "simulator"
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(goalCmd)
	rootCmd.AddCommand(obstaclesCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(statusCmd)

	detectCmd.GroupID = "offline"
	planCmd.GroupID = "offline"
	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(planCmd)
}

// Execute runs the root command. An interrupt cancels the running command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}
