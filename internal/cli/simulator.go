package cli

import (
	"fmt"
	"strings"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"robot-navigator/internal/config"
	"robot-navigator/internal/hub"
)

var (
	goalCorner     string
	randomCount    int
	obstaclesFile  string
	cornerInset    = 20.0
	validCornerSet = []string{"NE", "NW", "SE", "SW"}
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset collisions, the goal flag and obstacles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := loadSettings()
		if err != nil {
			return err
		}
		if err := st.client().Reset(cmd.Context()); err != nil {
			return err
		}
		printSuccess(cmd.OutOrStdout(), "Simulator reset")
		return nil
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the robot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := loadSettings()
		if err != nil {
			return err
		}
		if err := st.client().Stop(cmd.Context()); err != nil {
			return err
		}
		printSuccess(cmd.OutOrStdout(), "Robot stopped")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the hub status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := loadSettings()
		if err != nil {
			return err
		}
		status, err := st.client().Status(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return outputJSON(out, status)
		}
		printSection(out, "Hub "+st.cfg.Hub.URL)
		printLabelValue(out, "Simulators", status.ConnectedSimulators)
		printLabelValue(out, "Collisions", status.CollisionCount)
		printLabelValue(out, "Goal", status.GoalReached)
		if status.RobotPosition != nil {
			printLabelValue(out, "Robot", formatPoint(r2Of(*status.RobotPosition)))
		}
		return nil
	},
}

var goalCmd = &cobra.Command{
	Use:   "goal [x,y]",
	Short: "Place the goal at a position or a corner",
	Long: `Place the goal on the simulator canvas, either at an explicit pixel position or in
one of the corners (NE, NW, SE, SW).`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := goalRequest(goalCorner, args)
		if err != nil {
			return err
		}
		st, err := loadSettings()
		if err != nil {
			return err
		}
		if err := st.client().SetGoal(cmd.Context(), req); err != nil {
			return err
		}

		where := req.Corner
		if where == "" {
			where = formatPoint(r2.Point{X: *req.X, Y: *req.Y})
		}
		printSuccess(cmd.OutOrStdout(), "Goal set at "+where)
		return nil
	},
}

var obstaclesCmd = &cobra.Command{
	Use:   "obstacles",
	Short: "List or change the simulator obstacles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := loadSettings()
		if err != nil {
			return err
		}
		obstacles, err := st.client().Obstacles(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return outputJSON(out, obstacles)
		}
		printSection(out, fmt.Sprintf("%d obstacles", len(obstacles)))
		for i, o := range obstacles {
			printLabelValue(out, fmt.Sprintf("#%d", i+1), fmt.Sprintf("%s size %.0f", formatPoint(o.Center), 2*o.Radius))
		}
		return nil
	},
}

var obstaclesRandomCmd = &cobra.Command{
	Use:   "random",
	Short: "Scatter obstacles at random",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if randomCount <= 0 {
			return errors.Errorf("--count must be positive, got %d", randomCount)
		}
		st, err := loadSettings()
		if err != nil {
			return err
		}
		placed, err := st.client().RandomObstacles(cmd.Context(), randomCount)
		if err != nil {
			return err
		}
		printSuccess(cmd.OutOrStdout(), fmt.Sprintf("Placed %d obstacles", len(placed)))
		return nil
	},
}

var obstaclesSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Replace the obstacles with the ones in a file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		obstacles, err := loadObstacleFile(obstaclesFile)
		if err != nil {
			return err
		}
		st, err := loadSettings()
		if err != nil {
			return err
		}
		if err := st.client().SetObstacles(cmd.Context(), obstacles); err != nil {
			return err
		}
		printSuccess(cmd.OutOrStdout(), fmt.Sprintf("Set %d obstacles", len(obstacles)))
		return nil
	},
}

func init() {
	goalCmd.Flags().StringVar(&goalCorner, "corner", "", "Corner to place the goal in: NE, NW, SE or SW")

	obstaclesRandomCmd.Flags().IntVar(&randomCount, "count", 5, "Number of obstacles")
	obstaclesSetCmd.Flags().StringVarP(&obstaclesFile, "file", "f", "", "Obstacle file, JSON or GeoJSON")
	_ = obstaclesSetCmd.MarkFlagRequired("file")
	obstaclesCmd.AddCommand(obstaclesRandomCmd)
	obstaclesCmd.AddCommand(obstaclesSetCmd)
}

// goalRequest builds the body of POST /goal from the --corner flag or an x,y argument.
func goalRequest(corner string, args []string) (hub.GoalRequest, error) {
	switch {
	case corner != "" && len(args) > 0:
		return hub.GoalRequest{}, errors.New("give either --corner or x,y, not both")
	case corner != "":
		if _, err := hub.CornerPoint(corner, 650, 600, cornerInset); err != nil {
			return hub.GoalRequest{}, errors.Wrapf(err, "expected one of %s", strings.Join(validCornerSet, ", "))
		}
		return hub.GoalRequest{Corner: strings.ToUpper(corner)}, nil
	case len(args) == 1:
		p, err := parsePoint(args[0])
		if err != nil {
			return hub.GoalRequest{}, err
		}
		return hub.GoalRequest{X: &p.X, Y: &p.Y}, nil
	default:
		return hub.GoalRequest{}, errors.New("give --corner or an x,y position")
	}
}

func loadObstacleFile(path string) ([]hub.ObstacleSpec, error) {
	obstacles, err := config.LoadObstacles(path)
	if err != nil {
		return nil, err
	}
	if len(obstacles) == 0 {
		return nil, errors.Errorf("%s lists no obstacles", path)
	}
	return obstacles, nil
}

func r2Of(p hub.Point) r2.Point {
	return r2.Point{X: p.X, Y: p.Y}
}
