package config

const (
	defaultSourceRoot      = "~/datasets/autopet/train"
	defaultSplitPath       = "~/datasets/autopet/splits_final.json"
	defaultDestinationRoot = "~/datasets/autopet/preprocessed"
	defaultLogDir          = "~/.local/share/voxprep/logs"
	defaultSamplesPerFile  = 15
	defaultSeed            = 42
	defaultWorkers         = 3
	defaultMinFreeGiB      = 10
	defaultLesionRate      = 0.01
	defaultLogFormat       = "auto"
	defaultLogLevel        = "info"
)

// defaultTargetShape is the fixed training sample shape in voxels.
func defaultTargetShape() []int { return []int{128, 160, 112} }

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			SourceRoot:      defaultSourceRoot,
			SplitPath:       defaultSplitPath,
			DestinationRoot: defaultDestinationRoot,
			LogDir:          defaultLogDir,
		},
		Generate: Generate{
			Fold:           0,
			SamplesPerFile: defaultSamplesPerFile,
			Seed:           defaultSeed,
			Workers:        defaultWorkers,
			Resume:         false,
			MinFreeGiB:     defaultMinFreeGiB,
		},
		Transform: Transform{
			TargetShape: defaultTargetShape(),
			LesionRate:  defaultLesionRate,
		},
		Outlier: Outlier{
			Enabled: false,
			MinMean: -1.0,
			MaxMean: 1.0,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
