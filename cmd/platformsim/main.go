// Command platformsim runs levels headlessly from an input script and
// reports what happened.
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/milk9111/gustpath/common"
	"github.com/milk9111/gustpath/levels"
	"github.com/milk9111/gustpath/prefabs"
	"github.com/milk9111/gustpath/sim"
	"github.com/spf13/cobra"
)

const (
	defaultScript          = "idle*30,right*600"
	defaultControllerTicks = 600
)

var (
	prefabDir string
	logLevel  string
	script    string
	scriptSrc string
	maxTicks  int
	strict    bool
	debug     bool
	plot      bool
	every     int
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "platformsim",
		Short:        "headless platformer simulation",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := common.ConfigureLogging(cmd.ErrOrStderr(), logLevel); err != nil {
				return fmt.Errorf("log level: %w", err)
			}
			prefabs.Dir = prefabDir
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&prefabDir, "prefabs", prefabs.Dir, "directory checked for prefab overrides")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "debug, info, warn or error")

	runCmd := &cobra.Command{
		Use:   "run [level]",
		Short: "run a level with a scripted input",
		Long: `Run a level with a scripted input.

Scripts are comma separated steps of '+' joined actions with an optional
'*n' repeat, for example "idle*30,right*60,jump+right*20". Actions are
left, right, jump, freeze and idle.

--script-file runs a tengo controller instead. It is evaluated every tick
with the globals tick, player and state and answers through move, jump
and freeze. --ticks bounds the run (600 when unset).`,
		Args: cobra.ExactArgs(1),
		RunE: runLevel,
	}
	runCmd.Flags().StringVar(&script, "script", defaultScript, "input script")
	runCmd.Flags().StringVar(&scriptSrc, "script-file", "", "tengo controller script")
	runCmd.MarkFlagsMutuallyExclusive("script", "script-file")
	runCmd.Flags().IntVar(&maxTicks, "ticks", 0, "pad or cut the script to this many ticks (0 keeps it)")
	runCmd.Flags().BoolVar(&strict, "strict", false, "fail on malformed contacts")
	runCmd.Flags().BoolVar(&debug, "debug", false, "report non-player bodies leaving the level")
	runCmd.Flags().BoolVar(&plot, "plot", false, "plot the player velocity")
	runCmd.Flags().IntVar(&every, "samples", 0, "print the player state every n ticks (0 disables)")

	levelsCmd := &cobra.Command{
		Use:   "levels",
		Short: "list embedded levels",
		Args:  cobra.NoArgs,
		RunE:  listLevels,
	}

	validateCmd := &cobra.Command{
		Use:   "validate [level...]",
		Short: "check level documents and prefabs",
		Args:  cobra.ArbitraryArgs,
		RunE:  validate,
	}

	rootCmd.AddCommand(runCmd, levelsCmd, validateCmd)
	return rootCmd
}

func runLevel(cmd *cobra.Command, args []string) error {
	lvl, err := levels.Load(args[0])
	if err != nil {
		return err
	}
	tuning, err := prefabs.LoadTuning()
	if err != nil {
		return err
	}
	s, err := sim.New(lvl, tuning, sim.Options{
		Strict: strict,
		Debug:  debug,
		Logger: log.Default(),
	})
	if err != nil {
		return err
	}

	var (
		sum    sim.Summary
		runErr error
	)
	if scriptSrc != "" {
		src, err := os.ReadFile(scriptSrc)
		if err != nil {
			return err
		}
		ctrl, err := sim.CompileController(src)
		if err != nil {
			return err
		}
		ticks := maxTicks
		if ticks <= 0 {
			ticks = defaultControllerTicks
		}
		sum, runErr = s.RunController(ctrl, ticks)
	} else {
		steps, err := sim.ParseInputScript(script)
		if err != nil {
			return err
		}
		sum, runErr = s.RunScript(fitTicks(steps, maxTicks))
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderSummary(sum, s.Anomalies()))
	fmt.Fprintln(out, renderEvents(sum.Events))
	if every > 0 {
		fmt.Fprintln(out, renderSamples(sum.Samples, every))
	}
	if plot {
		fmt.Fprintln(out, plotVelocity(sum.Samples))
	}
	return runErr
}

// fitTicks pads steps with idle ticks or cuts them to exactly n ticks.
func fitTicks(steps []sim.ScriptStep, n int) []sim.ScriptStep {
	if n <= 0 {
		return steps
	}
	total := sim.TotalTicks(steps)
	if total < n {
		return append(steps, sim.ScriptStep{Ticks: n - total})
	}

	var out []sim.ScriptStep
	left := n
	for _, st := range steps {
		if left == 0 {
			break
		}
		if st.Ticks > left {
			st.Ticks = left
		}
		out = append(out, st)
		left -= st.Ticks
	}
	return out
}

func listLevels(cmd *cobra.Command, args []string) error {
	names, err := levels.List()
	if err != nil {
		return err
	}
	var docs []*levels.Level
	for _, name := range names {
		lvl, err := levels.LoadLevelFromFS(name)
		if err != nil {
			return err
		}
		docs = append(docs, lvl)
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderLevels(docs))
	return nil
}

func validate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	failed := 0

	if _, err := prefabs.LoadTuning(); err != nil {
		failed++
		fmt.Fprintln(out, failStyle.Render("prefabs")+" "+err.Error())
	} else {
		fmt.Fprintln(out, okStyle.Render("prefabs")+" ok")
	}

	if len(args) == 0 {
		names, err := levels.List()
		if err != nil {
			return err
		}
		args = names
	}
	for _, name := range args {
		if _, err := levels.Load(name); err != nil {
			failed++
			fmt.Fprintln(out, failStyle.Render(name)+" "+err.Error())
			continue
		}
		fmt.Fprintln(out, okStyle.Render(name)+" ok")
	}

	if failed > 0 {
		return fmt.Errorf("%d document(s) failed validation", failed)
	}
	return nil
}
