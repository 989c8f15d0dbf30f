// wexview is a CLI utility for inspecting WexBIM geometry files.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/strukt3d/wexview/internal/config"
	"github.com/strukt3d/wexview/internal/logger"
	"github.com/strukt3d/wexview/pkg/scene"
	"github.com/strukt3d/wexview/pkg/wexbim"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	command := args[0]
	rest := args[1:]

	switch command {
	case "info":
		cmdInfo(cfg, rest)
	case "regions":
		cmdRegions(cfg, rest)
	case "styles":
		cmdStyles(cfg, rest)
	case "products":
		cmdProducts(cfg, rest)
	case "dump":
		cmdDump(cfg, rest)
	case "validate":
		cmdValidate(cfg, rest)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`wexview - WexBIM geometry inspector

Usage:
  wexview [flags] <command> <file.wexbim>

Commands:
  info <file>      Show header and summary counts
  regions <file>   List spatial regions
  styles <file>    List the style palette
  products <file>  List product records
  dump <file>      Print per-node mesh statistics
  validate <file>  Decode fully and report diagnostics

Flags:
  -config <path>   Config file
  -debug           Debug logging
  -strict          Fail on corrupt geometry blocks
  -progress        Report decode progress
  -log-file <path> Write logs to file

Examples:
  wexview info building.wexbim
  wexview -strict validate building.wexbim`)
}

// readFile loads the whole stream; the decoder works on in-memory buffers.
func readFile(args []string, command string) []byte {
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "Usage: wexview %s <file.wexbim>\n", command)
		os.Exit(1)
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return data
}

func decode(cfg *config.Config, data []byte) *wexbim.Model {
	opts := []wexbim.Option{wexbim.WithLogger(logger.Log)}
	if cfg.Decoder.Progress {
		opts = append(opts, wexbim.WithProgress(func(consumed, total int) {
			fmt.Fprintf(os.Stderr, "\r%d/%d bytes", consumed, total)
			if consumed == total {
				fmt.Fprintln(os.Stderr)
			}
		}))
	}

	model, err := wexbim.NewDecoder(opts...).Decode(data)
	if err != nil {
		logger.Error("decode failed", zap.Error(err))
		os.Exit(1)
	}
	if cfg.Decoder.Strict {
		dropped := 0
		for _, d := range model.Diagnostics {
			if d.Kind.Dropped() {
				dropped++
			}
		}
		if dropped > 0 {
			for _, d := range model.Diagnostics {
				fmt.Fprintln(os.Stderr, d)
			}
			logger.Error("strict mode: corrupt geometry blocks dropped", zap.Int("count", dropped))
			os.Exit(1)
		}
	}
	return model
}

func cmdInfo(cfg *config.Config, args []string) {
	model := decode(cfg, readFile(args, "info"))
	h := model.Header

	fmt.Printf("Version:    %d\n", h.Version)
	fmt.Printf("Meter:      %g\n", h.MeterFactor)
	if h.Version > 3 {
		fmt.Printf("Origin:     (%g, %g, %g)\n", h.WorldOrigin[0], h.WorldOrigin[1], h.WorldOrigin[2])
	}
	fmt.Printf("Shapes:     %d\n", h.ShapeCount)
	fmt.Printf("Vertices:   %d\n", h.VertexCount)
	fmt.Printf("Triangles:  %d\n", h.TriangleCount)
	fmt.Printf("Products:   %d\n", h.ProductCount)
	fmt.Printf("Styles:     %d\n", h.StyleCount)
	fmt.Printf("Regions:    %d\n", h.RegionCount)
	fmt.Printf("Blocks:     %d decoded, %d diagnostics\n", len(model.Blocks), len(model.Diagnostics))
}

func cmdRegions(cfg *config.Config, args []string) {
	model := decode(cfg, readFile(args, "regions"))
	for i, r := range model.Regions {
		fmt.Printf("region %d: population=%d centre=(%g, %g, %g)\n",
			i, r.Population, r.Centre[0], r.Centre[1], r.Centre[2])
		fmt.Printf("  bounds min=(%g, %g, %g) max=(%g, %g, %g)\n",
			r.Bounds.Min[0], r.Bounds.Min[1], r.Bounds.Min[2],
			r.Bounds.Max[0], r.Bounds.Max[1], r.Bounds.Max[2])
	}
}

func cmdStyles(cfg *config.Config, args []string) {
	model := decode(cfg, readFile(args, "styles"))
	for i := 0; i < model.Styles.Len(); i++ {
		s := model.Styles.At(i)
		transparency := "opaque"
		if s.Transparent {
			transparency = fmt.Sprintf("transparent %.3f", s.Opacity)
		}
		fmt.Printf("style %d: rgba=(%.3f, %.3f, %.3f, %.3f) %s\n",
			s.ID, s.RGBA[0], s.RGBA[1], s.RGBA[2], s.RGBA[3], transparency)
	}
}

func cmdProducts(cfg *config.Config, args []string) {
	model := decode(cfg, readFile(args, "products"))
	// Stable output: render order is parse order.
	byRenderID := make([]*wexbim.Product, len(model.Products))
	for _, p := range model.Products {
		byRenderID[p.RenderID-1] = p
	}
	for _, p := range byRenderID {
		hidden := ""
		if p.Hidden {
			hidden = " (hidden)"
		}
		fmt.Printf("product %d: type=%d renderId=%d%s\n", p.Label, p.Type, p.RenderID, hidden)
	}
}

func cmdDump(cfg *config.Config, args []string) {
	data := readFile(args, "dump")

	opts := []scene.Option{scene.WithLogger(logger.Log)}
	s, err := scene.Load(data, opts...)
	if err != nil {
		logger.Error("load failed", zap.Error(err))
		os.Exit(1)
	}

	fmt.Printf("model %s: %d nodes\n", s.ModelID, len(s.Nodes))
	for i, n := range s.Nodes {
		kind := "mesh"
		detail := ""
		if n.Instanced() {
			kind = "instanced"
			detail = fmt.Sprintf(" x%d", len(n.Instances))
		}
		fmt.Printf("node %d: %s%s product=%d style=%d vertices=%d triangles=%d\n",
			i, kind, detail, n.UserData.ProductLabel, n.UserData.StyleID,
			n.Geometry.VertexCount(), n.Geometry.TriangleCount())
	}
	b := s.Bounds()
	fmt.Printf("bounds min=(%g, %g, %g) max=(%g, %g, %g)\n",
		b.Min[0], b.Min[1], b.Min[2], b.Max[0], b.Max[1], b.Max[2])
}

func cmdValidate(cfg *config.Config, args []string) {
	model := decode(cfg, readFile(args, "validate"))

	if len(model.Diagnostics) == 0 {
		fmt.Printf("OK: %d blocks decoded cleanly\n", len(model.Blocks))
		return
	}
	dropped := 0
	for _, d := range model.Diagnostics {
		fmt.Println(d)
		if d.Kind.Dropped() {
			dropped++
		}
	}
	fmt.Printf("%d blocks decoded, %d dropped, %d diagnostics\n",
		len(model.Blocks), dropped, len(model.Diagnostics))
	if dropped > 0 {
		os.Exit(1)
	}
}
