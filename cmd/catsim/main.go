// Command catsim drives a configured multi-CAT controller over a
// fixture item pool and prints θ/SE trajectories, without touching
// any real examinee data. It exercises the engine end-to-end; it is
// not the engine.
package main

import (
	"fmt"
	"log"
	"math/rand"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/adaptivecat/engine/internal/cat"
	"github.com/adaptivecat/engine/internal/multicat"
	"github.com/adaptivecat/engine/internal/multicat/stopping"
)

var rootCmd = &cobra.Command{
	Use:   "catsim",
	Short: "Offline simulator for the adaptive-testing engine",
	Long:  "catsim drives a configured multi-CAT controller over a fixture item pool and prints θ/SE trajectories.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	runCmd.Flags().String("config", "", "Path to a TOML run configuration file (required)")
	runCmd.Flags().String("pool", "", "Path to a YAML item pool fixture (required)")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one simulated examinee through the configured constructs",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		poolPath, _ := cmd.Flags().GetString("pool")
		if configPath == "" || poolPath == "" {
			return fmt.Errorf("--config and --pool are both required")
		}
		return runSimulation(configPath, poolPath)
	},
}

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runSimulation(configPath, poolPath string) error {
	runID := uuid.New().String()
	log.Printf("catsim run %s starting", runID)

	cfg, err := loadRunConfig(configPath)
	if err != nil {
		return err
	}
	pool, err := loadPool(poolPath)
	if err != nil {
		return err
	}

	sessionOpts := make(map[string]cat.CatOptions, len(cfg.Constructs))
	for name, cc := range cfg.Constructs {
		sessionOpts[name] = cc.toCatOptions(cfg.Seed)
	}

	stopCtrl := buildStoppingController(cfg.Stopping)

	ctrl, err := multicat.NewController(pool, sessionOpts, stopCtrl, cfg.Seed)
	if err != nil {
		return fmt.Errorf("build controller: %w", err)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))

	for name := range cfg.Constructs {
		simulateConstruct(runID, ctrl, name, rng)
	}

	log.Printf("catsim run %s finished", runID)
	return nil
}

// simulateConstruct repeatedly selects and answers items for one
// construct until the controller reports a stopping reason or the
// pool runs dry, logging θ/SE after every step.
func simulateConstruct(runID string, ctrl *multicat.Controller, construct string, rng *rand.Rand) {
	for {
		state, stimulus, err := ctrl.UpdateAndSelect(multicat.UpdateAndSelectOptions{CatToSelect: construct})
		if err != nil {
			log.Printf("run %s [%s]: select error: %v", runID, construct, err)
			return
		}
		if stimulus == nil {
			log.Printf("run %s [%s]: stopped — %s", runID, construct, state.StoppingReason)
			return
		}

		answer := rng.Intn(2)
		state, _, err = ctrl.UpdateAndSelect(multicat.UpdateAndSelectOptions{
			CatToSelect:  construct,
			CatsToUpdate: []string{construct},
			Items:        []multicat.Stimulus{*stimulus},
			Answers:      []int{answer},
		})
		if err != nil {
			log.Printf("run %s [%s]: update error: %v", runID, construct, err)
			return
		}

		log.Printf("run %s [%s]: item=%v answer=%d theta=%.3f se=%.3f n_items=%d",
			runID, construct, stimulus.ID, answer, state.Thetas[construct], state.SEs[construct], state.NItems[construct])

		if state.StoppingReason != "" {
			log.Printf("run %s [%s]: stopped — %s", runID, construct, state.StoppingReason)
			return
		}
	}
}

func buildStoppingController(sc stoppingConfig) stopping.Controller {
	op := stopping.Operator(sc.Operator)
	switch sc.Kind {
	case "n_items":
		return stopping.NewStopAfterNItems(op, sc.Required)
	case "se_plateau":
		return stopping.NewStopOnSEPlateau(op, sc.Patience, sc.Tolerance)
	case "se_threshold":
		return stopping.NewStopIfSEBelowThreshold(op, sc.Threshold, sc.Patience, sc.Tolerance)
	default:
		return nil
	}
}
