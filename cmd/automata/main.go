// Command automata runs, tests, validates, converts and serves automaton
// definitions stored as structured JSON or interchange XML.
package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"automata/machine"
	"automata/server"
	"automata/sim"
)

func main() {
	if err := rootCommand().Execute(); err != nil {
		log.Fatal(err)
	}
}

func rootCommand() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "automata",
		Short: "Simulate DFA, NFA, PDA and Turing machines",
		PersistentPreRun: func(*cobra.Command, []string) {
			if verbose {
				log.SetLevel(log.DebugLevel)
			}
		},
	}
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	cmd.AddCommand(runCommand(), testCommand(), validateCommand(), convertCommand(), serveCommand())
	return cmd
}

// loadMachineFile reads a machine definition, picking the format by
// extension: .xml and .jff are interchange XML, everything else is the
// structured JSON form.
func loadMachineFile(path string) (machine.Machine, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml", ".jff":
		return machine.FromInterchangeXML(f)
	default:
		rec, err := machine.DecodeStructured(f)
		if err != nil {
			return nil, err
		}
		return machine.Load(rec)
	}
}

func runCommand() *cobra.Command {
	var input string
	var maxSteps int
	var showTrace bool
	cmd := &cobra.Command{
		Use:   "run <machine-file>",
		Short: "Run the machine on an input string and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadMachineFile(args[0])
			if err != nil {
				return err
			}
			if report := m.Validate(); !report.Valid() {
				for _, e := range report.Errors {
					log.Error(e)
				}
				return fmt.Errorf("machine is not valid")
			}
			m.InitSimulation(input)
			accepted := machine.Run(m, maxSteps)
			if showTrace {
				for _, e := range m.Base().Trace {
					fmt.Printf("%3d  %-24v %v\n", e.Step, "{"+strings.Join(e.States, ",")+"}", e.Description)
				}
			}
			fmt.Printf("%v\n", verdictWord(accepted))
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "input string")
	cmd.Flags().IntVar(&maxSteps, "max-steps", 0, "step budget (0 = kind default)")
	cmd.Flags().BoolVar(&showTrace, "trace", false, "print the step trace")
	return cmd
}

func testCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test <machine-file> <input>...",
		Short: "Batch-test input strings against the machine",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadMachineFile(args[0])
			if err != nil {
				return err
			}
			results, err := sim.New(m).RunBatchTests(args[1:])
			if err != nil {
				return err
			}
			for _, r := range results {
				input := r.Input
				if input == "" {
					input = machine.EpsilonGlyph
				}
				fmt.Printf("%-20v %v\n", input, verdictWord(r.Accepted))
			}
			return nil
		},
	}
	return cmd
}

func validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <machine-file>",
		Short: "Check the machine against the contract of its kind",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadMachineFile(args[0])
			if err != nil {
				return err
			}
			report := m.Validate()
			for _, e := range report.Errors {
				fmt.Printf("error: %v\n", e)
			}
			for _, w := range report.Warnings {
				fmt.Printf("warning: %v\n", w)
			}
			if !report.Valid() {
				return fmt.Errorf("%v error(s)", len(report.Errors))
			}
			fmt.Println("ok")
			return nil
		},
	}
}

func convertCommand() *cobra.Command {
	var out string
	var toDFA bool
	cmd := &cobra.Command{
		Use:   "convert <machine-file>",
		Short: "Convert between JSON and interchange XML, optionally determinizing an NFA",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadMachineFile(args[0])
			if err != nil {
				return err
			}
			if toDFA {
				n, ok := m.(*machine.NFA)
				if !ok {
					return fmt.Errorf("--dfa requires an NFA, got %v", m.Kind())
				}
				m = n.ToDFA()
			}
			w := os.Stdout
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			target := out
			if target == "" {
				target = args[0]
			}
			switch strings.ToLower(filepath.Ext(target)) {
			case ".xml", ".jff":
				return machine.ToInterchangeXML(m, w)
			default:
				return m.ToStructured().Encode(w)
			}
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout, format by extension)")
	cmd.Flags().BoolVar(&toDFA, "dfa", false, "determinize an NFA before writing")
	return cmd
}

func serveCommand() *cobra.Command {
	var addr string
	var file string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the machine API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			srv := server.New(log.StandardLogger())
			if file != "" {
				m, err := loadMachineFile(file)
				if err != nil {
					return err
				}
				srv.Load(m)
			}
			log.WithField("addr", addr).Info("listening")
			return http.ListenAndServe(addr, srv)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8243", "listen address")
	cmd.Flags().StringVarP(&file, "file", "f", "", "machine definition to preload")
	return cmd
}

func verdictWord(accepted bool) string {
	if accepted {
		return "accepted"
	}
	return "rejected"
}
