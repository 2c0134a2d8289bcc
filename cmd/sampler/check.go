package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dudk/sampler/config"
)

type checkCommand struct {
	config string
}

func (cmd *checkCommand) Name() string {
	return "check"
}

func (cmd *checkCommand) Help() string {
	return "Validate the configuration and list the pads"
}

func (cmd *checkCommand) Register(fs *flag.FlagSet) {
	fs.StringVar(&cmd.config, "config", "sampler.yaml", "configuration file")
}

func (cmd *checkCommand) Run() error {
	cfg, err := loadConfig(cmd.config)
	if err != nil {
		return err
	}
	fmt.Printf("sample rate %d, %d blocks, copier %s\n", cfg.SampleRate, cfg.PoolCapacity, cfg.Copier)
	for _, p := range cfg.Pads {
		source := p.File
		if p.Builtin != "" {
			source = "builtin:" + p.Builtin
		}
		fmt.Printf("\t%d\t%s\tgain %.2f\tstretch %.2f\tgate %t\n", p.Note, source, p.Gain, p.Stretch, p.Gate)
	}
	return nil
}

func loadConfig(path string) (config.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return config.Config{}, err
	}
	defer f.Close()
	return config.Load(f)
}
