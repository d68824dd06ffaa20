package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kilianp07/trainbalancer/core/balancer"
	"github.com/kilianp07/trainbalancer/core/model"
)

var (
	evalPoint  model.PointConfig
	evalObs    model.CycleObservation
	evalOutput string
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate one station for a single cycle",
	Args:  cobra.NoArgs,
	RunE:  evaluate,
}

func init() {
	f := evaluateCmd.Flags()
	f.Int64Var(&evalPoint.Capacity, "capacity", 0, "units the station can hold")
	f.Int64Var(&evalPoint.LoadUnitSize, "load", 0, "units delivered by one vehicle")
	f.Int64Var(&evalPoint.QueueLimit, "queue", 0, "vehicles the station can queue")
	f.Int64Var(&evalObs.Precision, "precision", 1000, "percentage scale")
	f.Int64Var(&evalObs.PointCount, "points", 1, "stations in the network")
	f.Int64Var(&evalObs.NetworkTotalPercentage, "total", 0, "sum of all stations' percentages last cycle")
	f.Int64Var(&evalObs.LocalUnitsStored, "units", 0, "units stored at the station")
	f.Int64Var(&evalObs.VehiclesEnRoute, "en-route", 0, "vehicles heading to or stopped at the station")
	f.Int64Var(&evalObs.StoppedVehicleID, "stopped", 0, "id of the vehicle unloading, 0 for none")
	f.StringVarP(&evalOutput, "output", "o", "text", "output format: text, json or yaml")
	for _, name := range []string{"capacity", "load"} {
		_ = evaluateCmd.MarkFlagRequired(name)
	}
	rootCmd.AddCommand(evaluateCmd)
}

func evaluate(cmd *cobra.Command, args []string) error {
	alloc, err := balancer.New(evalPoint)
	if err != nil {
		return err
	}
	res, err := alloc.Evaluate(evalObs)
	if err != nil {
		return err
	}
	return writeResult(cmd.OutOrStdout(), evalOutput, res)
}

func writeResult(w io.Writer, format string, res model.CycleResult) error {
	switch format {
	case "text", "":
		_, err := fmt.Fprintf(w, "percentage_stored=%d vehicles_recommended=%d\n", res.PercentageStored, res.VehiclesRecommended)
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(res)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
