package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kilianp07/trainbalancer/core/model"
)

var (
	stepCount       int
	stepInteractive bool
)

var stepCmd = &cobra.Command{
	Use:   "step",
	Short: "Run a fixed number of cycles and print each station",
	RunE:  step,
}

func init() {
	stepCmd.Flags().IntVarP(&stepCount, "count", "n", 10, "number of cycles (0 with --interactive runs until EOF)")
	stepCmd.Flags().BoolVar(&stepInteractive, "interactive", false, "wait for Enter between cycles")
	rootCmd.AddCommand(stepCmd)
}

func step(cmd *cobra.Command, args []string) error {
	if stepCount < 0 || (stepCount == 0 && !stepInteractive) {
		return fmt.Errorf("count must be positive, got %d", stepCount)
	}
	svc, err := loadService()
	if err != nil {
		return err
	}
	defer closeService(svc)

	ctx := commandContext(cmd)
	out := cmd.OutOrStdout()
	in := bufio.NewReader(cmd.InOrStdin())
	for i := 0; stepCount == 0 || i < stepCount; i++ {
		rep, err := svc.Step(ctx)
		if err != nil {
			return fmt.Errorf("cycle %d: %w", i+1, err)
		}
		printReport(out, rep)
		if stepInteractive && (stepCount == 0 || i < stepCount-1) {
			if _, err := in.ReadString('\n'); err == io.EOF {
				return nil
			} else if err != nil {
				return err
			}
		}
	}
	return nil
}

func printReport(w io.Writer, rep model.CycleReport) {
	for _, st := range rep.Stations {
		fmt.Fprintf(w, "Station %s: %s%% with %d en-route\n",
			st.Name, formatPercentage(st.Result.PercentageStored, rep.Precision), st.EnRouteAfter)
	}
}

// formatPercentage renders pct, expressed in 1/precision, as a percent.
func formatPercentage(pct, precision int64) string {
	if precision <= 0 {
		return strconv.FormatInt(pct, 10)
	}
	return strconv.FormatFloat(float64(pct)*100/float64(precision), 'f', -1, 64)
}
