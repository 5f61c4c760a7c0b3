package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"robot-navigator/internal/navigator"
	"robot-navigator/internal/naverr"
	"robot-navigator/internal/planner"
	"robot-navigator/internal/render"
	"robot-navigator/internal/vision"
)

var (
	navStart        string
	navGoal         string
	navObstacleFile string
	navReportPath   string
	navRenderPath   string
	navAllowPartial bool
	navMaxReplans   int
)

var navigateCmd = &cobra.Command{
	Use:   "navigate",
	Short: "Drive the robot to the goal",
	Long: `Plan a route to the goal, follow it through the hub and replan after every reported
collision until the goal is reached or the run fails.`,
}

var navigateGridCmd = &cobra.Command{
	Use:   "grid",
	Short: "Navigate on a cell grid over the known obstacles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := loadNavigateSettings(cmd)
		if err != nil {
			return err
		}
		g := st.cfg.Grid

		start, goal := r2Of(g.Start), r2Of(g.Goal)
		if navStart != "" {
			if start, err = parsePoint(navStart); err != nil {
				return err
			}
		}
		if navGoal != "" {
			if goal, err = parsePoint(navGoal); err != nil {
				return err
			}
		}

		client := st.client()
		obstacles := st.obstacles()
		sensor := navigator.NewStaticSensor(client, client, start, goal, obstacles, st.logger)
		strategy := navigator.NewGridStrategy(g.GridConfig, st.logger)

		nav := navigator.New(st.navConfig(navigator.ModeGrid), sensor, strategy, client, client, st.logger)
		res, runErr := nav.Run(cmd.Context())

		grid := planner.NewGrid(g.GridConfig, lastSeen(res, obstacles))
		return finishRun(cmd.OutOrStdout(), st, res, runErr, grid)
	},
}

var navigateVisionCmd = &cobra.Command{
	Use:   "vision",
	Short: "Navigate over what a captured simulator frame shows",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := loadNavigateSettings(cmd)
		if err != nil {
			return err
		}
		v := st.cfg.Vision

		client := st.client()
		sensor := navigator.NewVisionSensor(client, vision.NewDetector(v.Detector), st.logger)
		strategy := navigator.NewVisionStrategy(v.Planner, st.logger)

		nav := navigator.New(st.navConfig(navigator.ModeVision), sensor, strategy, client, client, st.logger)
		res, runErr := nav.Run(cmd.Context())
		return finishRun(cmd.OutOrStdout(), st, res, runErr, nil)
	},
}

func init() {
	for _, c := range []*cobra.Command{navigateGridCmd, navigateVisionCmd} {
		c.Flags().StringVar(&navReportPath, "report", "", "Write the run report as JSON to this file")
		c.Flags().StringVar(&navRenderPath, "render", "", "Render the run to this PNG file")
		c.Flags().IntVar(&navMaxReplans, "max-replans", -1, "Bound on collision replans, 0 for none (default from config)")
	}
	navigateGridCmd.Flags().StringVar(&navStart, "start", "", "Start position x,y in pixels (default from config)")
	navigateGridCmd.Flags().StringVar(&navGoal, "goal", "", "Goal position x,y in pixels (default from config)")
	navigateGridCmd.Flags().StringVar(&navObstacleFile, "obstacles", "", "Obstacle file, JSON or GeoJSON")
	navigateVisionCmd.Flags().BoolVar(&navAllowPartial, "allow-partial", false,
		"Follow the partial path of a capped direct walk instead of failing")

	navigateCmd.AddCommand(navigateGridCmd)
	navigateCmd.AddCommand(navigateVisionCmd)
}

// loadNavigateSettings applies the navigate flags over the loaded settings.
func loadNavigateSettings(cmd *cobra.Command) (*settings, error) {
	st, err := loadSettings()
	if err != nil {
		return nil, err
	}
	e := &st.cfg.Execution
	if navReportPath != "" {
		e.ReportPath = navReportPath
	}
	if navRenderPath != "" {
		e.RenderPath = navRenderPath
	}
	if navMaxReplans >= 0 {
		e.MaxReplans = navMaxReplans
	}
	if cmd.Flags().Changed("allow-partial") {
		e.AllowPartialFallback = navAllowPartial
	}
	if navObstacleFile != "" && cmd.Flags().Lookup("obstacles") != nil {
		if st.cfg.Grid.Obstacles, err = loadObstacleFile(navObstacleFile); err != nil {
			return nil, err
		}
	}
	return st, nil
}

// navConfig converts the execution section for mode.
func (s *settings) navConfig(mode navigator.Mode) navigator.Config {
	e := s.cfg.Execution
	cfg := navigator.Config{
		Mode:                 mode,
		Settle:               e.GridSettle.Std(),
		CheckEvery:           e.GridCheckEvery,
		MaxReplans:           e.MaxReplans,
		AllowPartialFallback: e.AllowPartialFallback,
	}
	if mode == navigator.ModeVision {
		cfg.Settle = e.VisionSettle.Std()
		cfg.CheckEvery = e.VisionCheckEvery
	}
	return cfg
}

func lastSeen(res *navigator.Result, fallback []planner.Obstacle) []planner.Obstacle {
	if res == nil || len(res.Cycles) == 0 {
		return fallback
	}
	return res.Cycles[len(res.Cycles)-1].Seen
}

// finishRun prints the summary and writes the optional report and render. The run error
// wins over output errors.
func finishRun(w io.Writer, st *settings, res *navigator.Result, runErr error, grid *planner.Grid) error {
	e := st.cfg.Execution
	if e.ReportPath != "" {
		if err := navigator.SaveReport(res, e.ReportPath); err != nil {
			st.logger.Warnf("could not write report: %v", err)
		}
	}
	if e.RenderPath != "" {
		v := st.cfg.Vision.Planner
		width, height := int(v.CanvasWidth), int(v.CanvasHeight)
		if grid != nil {
			width = int(float64(grid.Cfg.Width) * grid.Cfg.CellSize)
			height = int(float64(grid.Cfg.Height) * grid.Cfg.CellSize)
		}
		scene := render.FromResult(res, width, height, nil)
		scene.Grid = grid
		scene.RobotRadius = v.RobotRadius
		if err := render.SavePNG(e.RenderPath, scene); err != nil {
			st.logger.Warnf("could not render run: %v", err)
		}
	}

	if jsonOutput {
		if err := outputJSON(w, res); err != nil {
			return err
		}
		return runErr
	}

	printSection(w, fmt.Sprintf("Navigation %s (%s mode)", res.RunID, res.Mode))
	printLabelValue(w, "State", res.State)
	printLabelValue(w, "Steps", res.Steps)
	printLabelValue(w, "Replans", res.Replans)
	printLabelValue(w, "Cycles", len(res.Cycles))
	printLabelValue(w, "Elapsed", res.Elapsed())
	for _, c := range res.Cycles {
		switch {
		case c.Fallback:
			printWarning(w, fmt.Sprintf("cycle %d used the direct walk fallback", c.Index))
		case res.Mode == navigator.ModeVision:
			printLabelValue(w, fmt.Sprintf("Cycle %d", c.Index), fmt.Sprintf("margin %.0f, %d waypoints", c.Margin, len(c.Waypoints)))
		default:
			printLabelValue(w, fmt.Sprintf("Cycle %d", c.Index), fmt.Sprintf("%d of %d waypoints", c.Executed, len(c.Waypoints)))
		}
	}

	if runErr != nil {
		printFailure(w, fmt.Sprintf("%s: %v", naverr.KindOf(runErr), runErr))
		return runErr
	}
	printSuccess(w, "Goal reached")
	return nil
}
