package cli

import (
	"fmt"

	"github.com/fogleman/gg"
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"robot-navigator/internal/navigator"
	"robot-navigator/internal/planner"
	"robot-navigator/internal/render"
	"robot-navigator/internal/vision"
)

var (
	imagePath string
	planOut   string
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Locate robot, goal and obstacles in a saved frame",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := loadSettings()
		if err != nil {
			return err
		}
		det, err := detectImage(st, imagePath)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return outputJSON(out, det)
		}
		printSection(out, "Detection "+imagePath)
		printLabelValue(out, "Robot", formatPoint(det.Robot))
		printLabelValue(out, "Goal", formatPoint(det.Goal))
		printLabelValue(out, "Obstacles", len(det.Obstacles))
		for i, o := range det.Obstacles {
			printLabelValue(out, fmt.Sprintf("#%d", i+1), formatPoint(o))
		}
		return nil
	},
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Plan a route without moving the robot",
	Long: `Plan a route offline. With --image the scene is detected in a saved frame and planned
in pixels; without it the configured grid scene is planned on the grid.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := loadSettings()
		if err != nil {
			return err
		}

		var (
			scene    navigator.Scene
			strategy navigator.Strategy
			grid     *planner.Grid
		)
		if imagePath != "" {
			det, err := detectImage(st, imagePath)
			if err != nil {
				return err
			}
			scene = navigator.Scene{Robot: det.Robot, Goal: det.Goal}
			for _, p := range det.Obstacles {
				scene.Obstacles = append(scene.Obstacles, planner.Obstacle{Center: p})
			}
			strategy = navigator.NewVisionStrategy(st.cfg.Vision.Planner, st.logger)
		} else {
			g := st.cfg.Grid
			scene = navigator.Scene{Robot: r2Of(g.Start), Goal: r2Of(g.Goal), Obstacles: st.obstacles()}
			strategy = navigator.NewGridStrategy(g.GridConfig, st.logger)
			grid = planner.NewGrid(g.GridConfig, scene.Obstacles)
		}

		plan, planErr := strategy.Plan(scene)
		if planOut != "" && len(plan.Waypoints) > 0 {
			v := st.cfg.Vision.Planner
			if err := render.SavePNG(planOut, render.Scene{
				Width:       int(v.CanvasWidth),
				Height:      int(v.CanvasHeight),
				Grid:        grid,
				Obstacles:   scene.Obstacles,
				PointSize:   25,
				Robot:       scene.Robot,
				Goal:        scene.Goal,
				RobotRadius: v.RobotRadius,
				Planned:     [][]r2.Point{plan.Waypoints},
			}); err != nil {
				return err
			}
		}
		if planErr != nil {
			return planErr
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return outputJSON(out, plan)
		}
		printSection(out, "Plan")
		printLabelValue(out, "Waypoints", len(plan.Waypoints))
		printLabelValue(out, "Searched", plan.RawLength)
		printLabelValue(out, "Length", fmt.Sprintf("%.1f px", planner.PathLength(plan.Waypoints)))
		if imagePath != "" {
			if plan.Fallback {
				printWarning(out, "margin ladder exhausted, direct walk used")
			} else {
				printLabelValue(out, "Margin", plan.Margin)
			}
		}
		return nil
	},
}

func init() {
	detectCmd.Flags().StringVarP(&imagePath, "image", "i", "", "PNG or JPEG frame of the simulator canvas")
	_ = detectCmd.MarkFlagRequired("image")
	planCmd.Flags().StringVarP(&imagePath, "image", "i", "", "Plan over this frame instead of the grid scene")
	planCmd.Flags().StringVarP(&planOut, "out", "o", "", "Render the plan to this PNG file")
}

func detectImage(st *settings, path string) (vision.Detection, error) {
	img, err := gg.LoadImage(path)
	if err != nil {
		return vision.Detection{}, errors.Wrapf(err, "loading %s", path)
	}
	return vision.NewDetector(st.cfg.Vision.Detector).Detect(img)
}
