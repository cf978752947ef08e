// rvenc resolves RISC-V instruction encodings from YAML definitions.
//
// THE PIPELINE:
//  1. Config selects the definition files (glob patterns)
//  2. Each file is loaded and validated against the CUE schema
//  3. The resolver turns match strings and bit locations into fields,
//     classifies the format, and tiles the bitfield layout
//  4. Fact tables are built and validated against the CUE contract
//  5. OPA evaluates data-quality policies against the tables
//  6. A static HTML site with SVG diagrams is generated
package main

import (
	"fmt"
	"os"

	"github.com/rvtools/rvenc/internal/config"
	"github.com/rvtools/rvenc/internal/indexer"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]

	switch cmd {
	case "init":
		runInit()
	case "-v", "--verbose":
		if len(os.Args) < 3 {
			printUsage()
			os.Exit(1)
		}
		run(os.Args[2], true)
	case "-h", "--help", "help":
		printUsage()
	case "-c", "--config":
		if len(os.Args) < 4 {
			printUsage()
			os.Exit(1)
		}
		runWithConfig(os.Args[2], os.Args[3])
	default:
		run(cmd, false)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: rvenc [command] [options] <path>

Commands:
  init              Create an rvenc.json configuration file
  <path>            Resolve instruction definitions under the given path

Options:
  -v, --verbose     Enable verbose output
  -c, --config      Specify config file: rvenc -c config.json <path>
  -h, --help        Show this help message

Configuration:
  rvenc looks for configuration in:
    1. ./rvenc.json
    2. ./.rvenc.json
    3. ~/.config/rvenc/config.json

  Run 'rvenc init' to create a default configuration file.`)
}

func runInit() {
	configPath := "rvenc.json"

	// Check if file already exists
	if _, err := os.Stat(configPath); err == nil {
		fmt.Printf("Config file %s already exists. Overwrite? [y/N]: ", configPath)
		var response string
		fmt.Scanln(&response)
		if response != "y" && response != "Y" {
			fmt.Println("Aborted.")
			return
		}
	}

	cfg := config.DefaultConfig()
	if err := cfg.Save(configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Created %s\n", configPath)
	fmt.Println("\nEdit this file to configure:")
	fmt.Println("  - Corpus file patterns")
	fmt.Println("  - Site output directory and title")
	fmt.Println("  - Policy rule severities")
}

func run(path string, verbose bool) {
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Printf("Warning: Could not load config: %v (using defaults)\n", err)
		cfg = config.DefaultConfig()
	}

	idx := indexer.NewWithConfig(cfg)
	idx.Verbose = verbose
	if err := idx.Run(path); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runWithConfig(configPath, corpusPath string) {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config %s: %v\n", configPath, err)
		os.Exit(1)
	}

	idx := indexer.NewWithConfig(cfg)
	if err := idx.Run(corpusPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
