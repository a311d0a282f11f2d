package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"mapview/internal/cache"
	"mapview/internal/config"
	"mapview/internal/debug"
	"mapview/internal/fetch"
	"mapview/internal/geo"
	"mapview/internal/mapreq"
	"mapview/internal/metrics"
	"mapview/internal/ui"
	"mapview/internal/viewer"
	"mapview/internal/viewport"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "mapview",
	Short: "Terminal-based interactive map viewer",
	Long: `mapview shows a static map image in the terminal. Arrow keys pan,
PgUp/PgDn zoom, / searches for a place, r resets, t switches the map style.`,
	Args: cobra.NoArgs,
	Run:  run,
}

func init() {
	rootCmd.Flags().StringVar(&configFile, "config", "", "Config file (default: ./config.yaml or ~/.mapview/config.yaml)")
	rootCmd.Flags().Int("scale", 50, "Initial scale percent (1-100)")
	rootCmd.Flags().StringP("debug-log", "d", "", "Debug log file (e.g., debug.log)")
	rootCmd.Flags().String("cache", "", "Cache directory for map data (default: ~/.mapview/data)")
	rootCmd.Flags().String("geocoder", config.ProviderYandex, "Geocoder provider: yandex or local")
	rootCmd.Flags().Bool("places", false, "Download populated places to name the area in view")
	rootCmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g., :9100)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Set up debug logging if requested
	if cfg.Log.File != "" {
		logFile, err := os.Create(cfg.Log.File)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to create debug log: %v\n", err)
		} else {
			defer logFile.Close()
			debug.SetOutput(logFile, cfg.Log.Level)
			debug.Log("mapview debug log started")
			fmt.Printf("Debug logging enabled: %s\n", cfg.Log.File)
		}
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintf(os.Stderr, "Error: mapview needs an interactive terminal\n")
		os.Exit(1)
	}

	state, err := viewport.New(cfg.Scale)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Initialize cache manager
	cacheManager, err := cache.NewManager(cfg.Cache.Dir, cfg.HTTP.UserAgent)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize cache: %v\n", err)
		os.Exit(1)
	}

	var gazetteer *geo.Gazetteer
	if cfg.NeedsPlaces() {
		fmt.Println("Checking Natural Earth populated places...")
		if err := cacheManager.EnsurePlaces(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to download populated places: %v\n", err)
			os.Exit(1)
		}

		loader := geo.NewShapefileLoader(cacheManager.GetCacheDir())
		gazetteer, err = loader.LoadGazetteer()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to load populated places: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Loaded %d places\n", gazetteer.Size())
	}

	if cfg.Metrics.Addr != "" {
		srv := metrics.Serve(cfg.Metrics.Addr, func(err error) {
			debug.Warn("metrics server stopped", "error", err)
		})
		defer metrics.Shutdown(srv)
		fmt.Printf("Serving metrics on %s/metrics\n", cfg.Metrics.Addr)
	}

	builder := mapreq.NewBuilder(mapreq.Options{
		MapEndpoint:     cfg.Map.Endpoint,
		GeocodeEndpoint: cfg.Geocode.Endpoint,
		APIKey:          cfg.Geocode.APIKey,
		MarkerIcon:      cfg.Map.MarkerIcon,
	})
	images := cacheManager.Images()
	defer func() {
		if err := images.Purge(); err != nil {
			debug.Warn("failed to purge cached images", "error", err)
		}
	}()
	client := fetch.NewClient(cfg.HTTP.Timeout, cfg.HTTP.UserAgent, fetch.WithImageStore(images))

	var geocoder viewer.Geocoder = viewer.NewRemoteGeocoder(builder, client)
	if cfg.Geocode.Provider == config.ProviderLocal {
		geocoder = viewer.NewPlaceGeocoder(gazetteer)
	}

	session := viewer.NewSession(state, builder, client, geocoder, gazetteer, viewer.Options{
		Width:  cfg.Map.Width,
		Height: cfg.Map.Height,
		Step:   cfg.Map.Step,
	})

	fmt.Printf("Loading map (zoom %d)...\n", state.Zoom())
	if err := session.Start(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var rf *fetch.RequestFailedError
		if errors.As(err, &rf) {
			fmt.Fprintf(os.Stderr, "Request: %s\n", rf.URL)
		}
		os.Exit(1)
	}

	// Create and run application
	app, err := ui.NewApp(session)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create application: %v\n", err)
		os.Exit(1)
	}

	// Run with panic recovery to ensure terminal is always restored
	func() {
		defer func() {
			if r := recover(); r != nil {
				fmt.Fprintf(os.Stderr, "\nPanic: %v\n", r)
			}
		}()

		if err := app.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}()

	fmt.Println("\nGoodbye!")
}
