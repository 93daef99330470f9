package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/turtacn/TrajMap/pkg/types/trajectory"
)

// TraclusOutput reports a TRACLUS run.
type TraclusOutput struct {
	Status string                   `json:"status"`
	Params trajectory.TraclusParams `json:"params"`
}

func (o TraclusOutput) String() string {
	return fmt.Sprintf("TRACLUS run %s (epsilon=%s, min_neighbors=%d, min_num_trajectories_in_cluster=%d, min_vertical_lines=%d, min_prev_dist=%s)",
		o.Status, fmtFloat(o.Params.Epsilon), o.Params.MinNeighbors, o.Params.MinNumTrajectoriesInCluster,
		o.Params.MinVerticalLines, fmtFloat(o.Params.MinPrevDist))
}

// TableHeaders implements tableProvider.
func (o TraclusOutput) TableHeaders() []string { return []string{"PARAMETER", "VALUE"} }

// TableRows implements tableProvider.
func (o TraclusOutput) TableRows() [][]string {
	return [][]string{
		{"status", o.Status},
		{"epsilon", fmtFloat(o.Params.Epsilon)},
		{"min_neighbors", strconv.Itoa(o.Params.MinNeighbors)},
		{"min_num_trajectories_in_cluster", strconv.Itoa(o.Params.MinNumTrajectoriesInCluster)},
		{"min_vertical_lines", strconv.Itoa(o.Params.MinVerticalLines)},
		{"min_prev_dist", fmtFloat(o.Params.MinPrevDist)},
	}
}

// AnnealOutput reports a simulated annealing run.
type AnnealOutput struct {
	BestEpsilon float64                    `json:"best_epsilon"`
	Params      trajectory.AnnealingParams `json:"params"`
}

func (o AnnealOutput) String() string {
	return fmt.Sprintf("best epsilon %s after %d steps from %s", fmtFloat(o.BestEpsilon), o.Params.NumSteps, fmtFloat(o.Params.Epsilon))
}

// TableHeaders implements tableProvider.
func (o AnnealOutput) TableHeaders() []string { return []string{"PARAMETER", "VALUE"} }

// TableRows implements tableProvider.
func (o AnnealOutput) TableRows() [][]string {
	return [][]string{
		{"best_epsilon", fmtFloat(o.BestEpsilon)},
		{"epsilon", fmtFloat(o.Params.Epsilon)},
		{"num_steps", strconv.Itoa(o.Params.NumSteps)},
		{"max_epsilon_jump", fmtFloat(o.Params.MaxEpsilonJump)},
	}
}

func fmtFloat(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }

// NewTraclusCmd triggers a TRACLUS run on the backend.
func NewTraclusCmd() *cobra.Command {
	var p trajectory.TraclusParams
	cmd := &cobra.Command{
		Use:   "traclus",
		Short: "Run TRACLUS partition-and-group on the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd, cliCtx)
			defer cancel()

			res, err := cliCtx.Service.RunTraclus(ctx, p)
			if err != nil {
				return err
			}
			out := TraclusOutput{Status: "completed", Params: p}
			if res != nil && res.Status != "" {
				out.Status = res.Status
			}
			return PrintResult(cmd, out)
		},
	}
	f := cmd.Flags()
	f.Float64Var(&p.Epsilon, "epsilon", 0.00016, "neighbourhood radius")
	f.IntVar(&p.MinNeighbors, "min-neighbors", 2, "minimum neighbouring segments for a core segment")
	f.IntVar(&p.MinNumTrajectoriesInCluster, "min-trajectories", 2, "minimum distinct trajectories per cluster")
	f.IntVar(&p.MinVerticalLines, "min-vertical-lines", 2, "minimum segments crossing a sweep line of the representative")
	f.Float64Var(&p.MinPrevDist, "min-prev-dist", 0.0002, "minimum spacing between representative points")
	return cmd
}

// NewAnnealCmd runs the simulated annealing epsilon search on the backend.
func NewAnnealCmd() *cobra.Command {
	var p trajectory.AnnealingParams
	cmd := &cobra.Command{
		Use:   "anneal",
		Short: "Search for a good TRACLUS epsilon with simulated annealing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd, cliCtx)
			defer cancel()

			res, err := cliCtx.Service.RunAnnealing(ctx, p)
			if err != nil {
				return err
			}
			out := AnnealOutput{Params: p}
			if res != nil {
				out.BestEpsilon = res.BestEpsilon
			}
			return PrintResult(cmd, out)
		},
	}
	f := cmd.Flags()
	f.Float64Var(&p.Epsilon, "epsilon", 0.0001, "starting epsilon")
	f.IntVar(&p.NumSteps, "steps", 100, "number of annealing steps")
	f.Float64Var(&p.MaxEpsilonJump, "max-jump", 0.00005, "largest epsilon change per step")
	return cmd
}

//Personal.AI order the ending
