package config

import "flag"

var (
	flags      = flag.NewFlagSet("midgard-editor", flag.ContinueOnError)
	flagConfig = flags.String("config", "", "Path to config file")
	flagDebug  = flags.Bool("debug", false, "Enable debug logging")
	flagRadius = flags.Float64("radius", 0, "Brush radius")
	flagPower  = flags.Float64("power", 0, "Brush power")
	flagAddr   = flags.String("addr", "", "Websocket listen address")
	flagUndo   = flags.Int("undo-depth", 0, "Number of undo steps kept")
)

// ParseFlags parses the editor flags from args and returns the remaining
// arguments.
func ParseFlags(args []string) ([]string, error) {
	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	return flags.Args(), nil
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagRadius > 0 {
		cfg.Brush.Radius = float32(*flagRadius)
	}
	if *flagPower > 0 {
		cfg.Brush.Power = float32(*flagPower)
	}
	if *flagAddr != "" {
		cfg.Server.Addr = *flagAddr
	}
	if *flagUndo > 0 {
		cfg.Editor.UndoDepth = *flagUndo
	}
}
