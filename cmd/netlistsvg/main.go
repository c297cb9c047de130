package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/netlistsvg/netlistsvg-go/pkg/netlist"
	"github.com/netlistsvg/netlistsvg-go/pkg/schematic"
	"github.com/netlistsvg/netlistsvg-go/pkg/skin"
)

const version = "1.0.0"

var (
	netlistPath = flag.String("netlist", "", "Path to the netlist JSON file (required)")
	skinPath    = flag.String("skin", "", "Path to the skin XML template file (required)")
	configPath  = flag.String("config", "", "Path to a YAML render configuration file (optional)")
	outputPath  = flag.String("output", "out.svg", "Output SVG file path")
	verbose     = flag.Bool("verbose", false, "Enable verbose output")
	versionF    = flag.Bool("version", false, "Print version and exit")
	help        = flag.Bool("help", false, "Show help message")
)

func main() {
	flag.Parse()

	if *versionF {
		fmt.Printf("netlistsvg version %s\n", version)
		os.Exit(0)
	}
	if *help {
		printHelp()
		os.Exit(0)
	}
	if *netlistPath == "" || *skinPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -netlist and -skin flags are required")
		printUsage()
		os.Exit(1)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// nolint:gocyclo // Complexity acceptable: CLI argument handling and output formatting
func run() error {
	ctx := context.Background()

	var cfg *schematic.Config
	if *configPath != "" {
		if *verbose {
			fmt.Printf("Loading configuration from %s\n", *configPath)
		}
		loaded, err := schematic.LoadConfig(*configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	} else {
		cfg = schematic.DefaultConfig()
	}

	if *verbose {
		fmt.Printf("Reading netlist from %s\n", *netlistPath)
	}
	netlistData, err := os.ReadFile(*netlistPath)
	if err != nil {
		return fmt.Errorf("failed to read netlist: %w", err)
	}
	doc, err := netlist.Decode(netlistData)
	if err != nil {
		return fmt.Errorf("failed to decode netlist: %w", err)
	}

	if *verbose {
		fmt.Printf("Reading skin from %s\n", *skinPath)
	}
	skinFile, err := os.Open(*skinPath)
	if err != nil {
		return fmt.Errorf("failed to open skin: %w", err)
	}
	defer skinFile.Close()
	skinLib, err := skin.Parse(skinFile)
	if err != nil {
		return fmt.Errorf("failed to parse skin: %w", err)
	}

	renderer := schematic.NewRenderer()

	start := time.Now()
	if *verbose {
		fmt.Println("Rendering schematic...")
	}
	out, err := renderer.Render(ctx, doc, skinLib, cfg)
	if err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	elapsed := time.Since(start)

	if *verbose {
		fmt.Printf("Render completed in %v\n", elapsed)
	}

	outFile, err := os.Create(*outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer outFile.Close()
	if err := skin.Write(outFile, out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if *verbose {
		info, _ := os.Stat(*outputPath)
		fmt.Printf("  Wrote %d bytes\n", info.Size())
	}

	fmt.Printf("Successfully rendered %s in %v\n", *outputPath, elapsed)
	return nil
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "\nUsage: netlistsvg -netlist <netlist.json> -skin <skin.svg> [options]")
	fmt.Fprintln(os.Stderr, "\nRun 'netlistsvg -help' for detailed help")
}

func printHelp() {
	fmt.Printf("netlistsvg version %s\n\n", version)
	fmt.Println("Renders a digital logic netlist as a schematic SVG diagram.")
	fmt.Println("\nUsage:")
	fmt.Println("  netlistsvg -netlist <netlist.json> -skin <skin.svg> [options]")
	fmt.Println("\nRequired Flags:")
	fmt.Println("  -netlist string")
	fmt.Println("        Path to the netlist JSON file")
	fmt.Println("  -skin string")
	fmt.Println("        Path to the skin XML template file")
	fmt.Println("\nOptional Flags:")
	fmt.Println("  -config string")
	fmt.Println("        Path to a YAML render configuration file")
	fmt.Println("  -output string")
	fmt.Println("        Output SVG file path (default: out.svg)")
	fmt.Println("  -verbose")
	fmt.Println("        Enable verbose output")
	fmt.Println("  -version")
	fmt.Println("        Print version and exit")
	fmt.Println("  -help")
	fmt.Println("        Show this help message")
	fmt.Println("\nExamples:")
	fmt.Println("  netlistsvg -netlist adder.json -skin default.svg -output adder.svg")
	fmt.Println("  netlistsvg -netlist adder.json -skin default.svg -config render.yaml -verbose")
}
