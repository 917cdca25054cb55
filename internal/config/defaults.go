package config

const (
	defaultDataDir          = "~/.local/share/contourqa"
	defaultLogDir           = "~/.local/share/contourqa/logs"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultPointsTolerance  = 1.0
	defaultVCutsTolerance   = 0.5
	defaultAdditional       = 1.5
	defaultPointsColor      = "#2e7d32"
	defaultVCutsColor       = "#c62828"
	defaultAdditionalColor  = "#1565c0"
	defaultLedgerListLimit  = 100
	defaultBusyTimeoutMS    = 5000
	defaultElementThickness = 18.0
	maxToleranceMM          = 50.0
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Tolerance: Tolerance{
			Points:          defaultPointsTolerance,
			VCuts:           defaultVCutsTolerance,
			Additional:      defaultAdditional,
			PointsColor:     defaultPointsColor,
			VCutsColor:      defaultVCutsColor,
			AdditionalColor: defaultAdditionalColor,
		},
		Ledger: Ledger{
			ListLimit:     defaultLedgerListLimit,
			BusyTimeoutMS: defaultBusyTimeoutMS,
		},
		Vision: Vision{
			ElementThickness: defaultElementThickness,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
