// Command sampler runs the sample player on a host. Pads are configured in
// a YAML file; note events arrive through an in-process MIDI transport and
// the mix is played on the sound card (or a ticker when built with the
// headless tag) and optionally recorded to a wav file.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
)

type command interface {
	Name() string
	Help() string
	Run() error
	Register(*flag.FlagSet)
}

type cli struct {
	args []string
}

func (c *cli) run() int {
	cmdName, args := parseArgs(c.args)
	if cmdName == "" {
		printUsage()
		return errorExitCode
	}

	for _, cmd := range commands {
		if cmd.Name() != cmdName {
			continue
		}
		flags := flag.NewFlagSet(cmdName, flag.ContinueOnError)
		cmd.Register(flags)
		if err := flags.Parse(args); err != nil {
			return errorExitCode
		}
		if err := cmd.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Command failed: %v\n", err)
			return errorExitCode
		}
		return successExitCode
	}
	printUsage()
	return errorExitCode
}

var (
	successExitCode = 0
	errorExitCode   = 1
	commands        = []command{&playCommand{}, &checkCommand{}}
)

func main() {
	c := cli{
		args: os.Args,
	}
	os.Exit(c.run())
}

func parseArgs(args []string) (string, []string) {
	if len(args) < 2 {
		return "", nil
	}
	return args[1], args[2:]
}

func printUsage() {
	fmt.Println("Sampler plays samples triggered by MIDI notes")
	fmt.Println()
	fmt.Println("Usage: sampler <command>")
	fmt.Println()
	fmt.Println("Commands:")
	for _, cmd := range commands {
		fmt.Printf("\t%s\t%s\n", cmd.Name(), cmd.Help())
	}
}

// noteList is a comma separated list of MIDI notes.
type noteList []uint8

func (l *noteList) String() string {
	s := make([]string, len(*l))
	for i, n := range *l {
		s[i] = strconv.Itoa(int(n))
	}
	return strings.Join(s, ",")
}

func (l *noteList) Set(value string) error {
	for _, v := range strings.Split(value, ",") {
		n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 7)
		if err != nil {
			return fmt.Errorf("invalid note %q", v)
		}
		*l = append(*l, uint8(n))
	}
	return nil
}
