// Posterkit - AI-assisted product posters for artisans.
//
// Usage:
//
//	posterkit -o <file> --image <photo> [--category <id>] [options]
//	posterkit -o <file> --image <photo> --state <state.json>
//	posterkit serve [--port 8080]
//	posterkit categories
//	posterkit portfolio list | export <id> -o <file>
//	posterkit init
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/disintegration/imaging"

	"github.com/xob0t/posterkit/clients/server"
	"github.com/xob0t/posterkit/configs"
	"github.com/xob0t/posterkit/pkg/generator"
	"github.com/xob0t/posterkit/pkg/portfolio"
	"github.com/xob0t/posterkit/pkg/poster"
	"github.com/xob0t/posterkit/pkg/render"
	"github.com/xob0t/posterkit/pkg/session"
	"github.com/xob0t/posterkit/pkg/suggest"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "init":
		err = runInit(os.Args[2:])
	case "categories":
		err = runCategories()
	case "portfolio":
		err = runPortfolio(os.Args[2:])
	case "serve":
		err = server.RunServe(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	default:
		err = run(os.Args[1:])
	}
	if err != nil {
		fatal(err)
	}
}

type options struct {
	output      string
	imagePath   string
	statePath   string
	category    string
	description string
	brand       string
	tagline     string
	language    string
	layout      string
	duration    int
}

func run(args []string) error {
	fs := flag.NewFlagSet("posterkit", flag.ExitOnError)

	var o options
	fs.StringVar(&o.output, "o", "", "Output file path (.png, .jpg, .bmp or .avi)")
	fs.StringVar(&o.output, "output", "", "Output file path (.png, .jpg, .bmp or .avi)")
	fs.StringVar(&o.imagePath, "image", "", "Product photo")
	fs.StringVar(&o.statePath, "state", "", "StyleState JSON to render instead of asking Gemini")
	fs.StringVar(&o.category, "category", poster.DefaultCategory, "Style category (see `posterkit categories`)")
	fs.StringVar(&o.description, "description", "", "Short product description")
	fs.StringVar(&o.brand, "brand", "", "Brand name (overrides the suggested headline)")
	fs.StringVar(&o.tagline, "tagline", "", "Tagline (overrides the suggested tagline)")
	fs.StringVar(&o.language, "language", "", "Language for generated copy")
	fs.StringVar(&o.layout, "layout", "", "Force layout: modern or ornate")
	fs.IntVar(&o.duration, "duration", 3, "Duration in seconds (AVI only)")

	fs.Usage = printUsage
	if err := fs.Parse(args); err != nil {
		return err
	}

	if o.output == "" {
		printUsage()
		return fmt.Errorf("output file is required (-o)")
	}
	if o.imagePath == "" {
		return fmt.Errorf("product photo is required (--image)")
	}
	if o.layout != "" && !poster.LayoutStyle(o.layout).Valid() {
		return fmt.Errorf("unknown layout %q: use modern or ornate", o.layout)
	}

	cfg, err := configs.Load()
	if err != nil {
		return err
	}
	engine := render.NewEngine(render.Options{
		MaxDimension: cfg.Render.MaxDimension,
		Fonts:        render.NewFontCatalog(cfg.Render.FontDir),
	})

	if o.statePath != "" {
		return renderState(engine, o)
	}
	return generate(cfg, engine, o)
}

// renderState renders a saved StyleState without calling Gemini.
func renderState(engine *render.Engine, o options) error {
	st, err := poster.LoadStateFile(o.statePath)
	if err != nil {
		return err
	}
	if o.layout != "" {
		st.LayoutStyle = poster.LayoutStyle(o.layout)
	}
	img, err := imaging.Open(o.imagePath, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("open image: %w", err)
	}

	fmt.Printf("Rendering %s layout: %s\n", st.LayoutStyle, o.output)
	out, err := engine.Render(st, img)
	if err != nil {
		return err
	}
	return write(out, o)
}

// generate asks Gemini for copy and colours, then renders the result.
func generate(cfg *configs.Config, engine *render.Engine, o options) error {
	if cfg.Gemini.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is not set; use --state to render without AI")
	}
	data, err := os.ReadFile(o.imagePath)
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}

	ctx := context.Background()
	temp := cfg.Gemini.Temperature
	client, err := suggest.NewGeminiClient(ctx, suggest.Config{
		APIKey:      cfg.Gemini.APIKey,
		Model:       cfg.Gemini.ModelName,
		Temperature: &temp,
		Timeout:     cfg.Gemini.RequestTimeout,
	})
	if err != nil {
		return err
	}

	sess := session.New(session.Options{
		Suggester: client,
		Engine:    engine,
		Language:  cfg.Gemini.Language,
	})
	if err := sess.UploadImage(data); err != nil {
		return err
	}

	fmt.Printf("Asking %s for a %s poster...\n", cfg.Gemini.ModelName, o.category)
	st, err := sess.Generate(ctx, session.GenerateRequest{
		Description:     o.description,
		Category:        o.category,
		Language:        o.language,
		ManualBrandName: o.brand,
		ManualTagline:   o.tagline,
	})
	if err != nil {
		return err
	}
	if o.layout != "" {
		layout := poster.LayoutStyle(o.layout)
		if st, err = sess.EditField(poster.StylePatch{LayoutStyle: &layout}); err != nil {
			return err
		}
	}
	fmt.Printf("Headline: %s\nTagline:  %s\n", st.Headline, st.Tagline)

	out, err := sess.Render()
	if err != nil {
		return err
	}
	return write(out, o)
}

func write(img image.Image, o options) error {
	if err := generator.WriteFile(o.output, img, generator.Config{Duration: o.duration}); err != nil {
		return err
	}
	fmt.Printf("Done: %s\n", o.output)
	return nil
}

func runCategories() error {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tLABEL\tLAYOUT\tDESCRIPTION")
	for _, c := range poster.Categories {
		d := poster.DefaultsFor(c.ID)
		fmt.Fprintf(tw, "%s\t%s\t%s/%s\t%s\n", c.ID, c.Label, d.LayoutStyle, d.BgMode, c.Description)
	}
	return tw.Flush()
}

// runPortfolio lists or exports posters saved through the API server. It
// needs REDIS_ADDR; the in-memory store does not outlive the server.
func runPortfolio(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: posterkit portfolio list | export <id> -o <file>")
	}
	cfg, err := configs.Load()
	if err != nil {
		return err
	}
	if cfg.Portfolio.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR is not set")
	}
	client, err := portfolio.ConnectRedis(cfg.Portfolio.RedisAddr, cfg.Portfolio.RedisPassword, cfg.Portfolio.RedisDB)
	if err != nil {
		return err
	}
	defer client.Close()
	store := portfolio.NewRedisStore(client, cfg.Portfolio.Key)
	ctx := context.Background()

	switch args[0] {
	case "list":
		recs, err := store.List(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tDATE\tLAYOUT\tHEADLINE")
		for _, r := range recs {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", r.ID, r.Date, r.Details.LayoutStyle, r.Details.Headline)
		}
		return tw.Flush()

	case "export":
		fs := flag.NewFlagSet("export", flag.ExitOnError)
		var output string
		fs.StringVar(&output, "o", "", "Output file (default: kala-portfolio-<id>.png)")
		if len(args) < 2 {
			return fmt.Errorf("usage: posterkit portfolio export <id> [-o file]")
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid poster id %q", args[1])
		}
		if err := fs.Parse(args[2:]); err != nil {
			return err
		}
		rec, err := store.Get(ctx, id)
		if err != nil {
			return err
		}
		img, err := generator.DecodeDataURL(rec.ImageDataURL)
		if err != nil {
			return err
		}
		if output == "" {
			output = rec.DownloadName()
		}
		return write(img, options{output: output, duration: 3})

	default:
		return fmt.Errorf("unknown portfolio command %q", args[0])
	}
}

func runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	var stateOut string
	fs.StringVar(&stateOut, "state", "state.json", "Output path for the sample state")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := os.WriteFile(stateOut, []byte(poster.ExampleStateJSON()), 0644); err != nil {
		return fmt.Errorf("write state: %w", err)
	}

	fmt.Printf("Created: %s\n", stateOut)
	fmt.Printf("Run: posterkit -o poster.png --image photo.jpg --state %s\n", stateOut)
	return nil
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func printUsage() {
	fmt.Print(`Posterkit - AI Product Posters for Artisans

USAGE:
    posterkit -o <file> --image <photo> [--category <id>] [options]
    posterkit -o <file> --image <photo> --state <state.json>
    posterkit serve [--port 8080]
    posterkit categories
    posterkit portfolio list | export <id> [-o file]
    posterkit init [--state state.json]

GENERATE MODE (needs GEMINI_API_KEY):
    --image <path>          Product photo (JPEG, PNG, WebP, BMP, GIF)
    --category <id>         Style category (default: festival)
    --description <text>    What the product is
    --brand <name>          Brand name, replaces the suggested headline
    --tagline <text>        Tagline, replaces the suggested tagline
    --language <name>       Language of the generated copy (default: English)
    --layout <name>         Force modern or ornate
    -o, --output <path>     Output file (.png, .jpg, .bmp or .avi)
    --duration <sec>        Video duration in seconds (default: 3)

STATE MODE:
    --state <path>          Render a StyleState JSON file, no AI call

API SERVER:
    posterkit serve [--port 8080]       Start the HTTP API

EXAMPLES:
    posterkit init
    posterkit -o poster.png --image pot.jpg --state state.json
    posterkit -o poster.png --image pot.jpg --category traditional --brand "Ritu's Pottery"
    posterkit -o story.avi --image pot.jpg --category modern --duration 5
    posterkit categories
`)
}
