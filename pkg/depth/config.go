package depth

import(
	"fmt"
	"io/ioutil"

	"gopkg.in/yaml.v2"
)

// Config holds the tunables of the estimator. The defaults from
// NewConfig are the values the algorithm was developed with; a yaml file
// only needs to name the fields it changes.
type Config struct {
	AlphaMin             float64  // first focus parameter of the sweep
	DepthResolution      int      // number of steps from AlphaMin up to (and including) alpha max
	LaplacianKernelSize  int      // aperture of the second derivative filters in the defocus response
	DefocusWindow        int      // box mean width for the defocus response
	CorrespondenceWindow int      // box mean width for the correspondence response

	Epsilon              float64  // smallest denominator we'll divide by
	DegeneratePolicy     string   // what to do when no pixel is confident: "error", "zero"

	Fusion               FusionConfig
}

type FusionConfig struct {
	Strategy             string     // how to pick a cue per pixel: "mrf", "maxconfidence"
	Pairwise             string     // pairwise term of the MRF: "none", "potts"
	LambdaSource         []float64  // data cost weight per label
	LambdaSmooth         float64    // weight of the second derivative in the flatness+smoothness cost
	LambdaPairwise       float64    // cost of neighbours disagreeing, for "potts"
	EnergyKernelSize     int        // aperture of the derivative filters on the alpha grids
	ConvergenceThreshold float64    // stop once the RMS label change is no bigger than this
	MaxIterations        int
	AcceptUnconverged    bool       // on hitting MaxIterations, use the last labels instead of failing
}

func NewConfig() Config {
	return Config{
		AlphaMin:             0.2,
		DepthResolution:      25,
		LaplacianKernelSize:  9,
		DefocusWindow:        9,
		CorrespondenceWindow: 9,
		Epsilon:              1e-6,
		DegeneratePolicy:     "error",
		Fusion: FusionConfig{
			Strategy:             "mrf",
			Pairwise:             "none",
			LambdaSource:         []float64{1, 1},
			LambdaSmooth:         2,
			LambdaPairwise:       1,
			EnergyKernelSize:     3,
			ConvergenceThreshold: 1,
			MaxIterations:        50,
		},
	}
}

func newConfigFromYaml(b []byte) (Config, error) {
	c := NewConfig()
	err := yaml.Unmarshal(b, &c)
	return c, err
}

// LoadConfig reads a yaml file over the top of the defaults, and checks the result.
func LoadConfig(filename string) (Config, error) {
	contents, err := ioutil.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("LoadConfig, read '%s': %w", filename, err)
	}
	c, err := newConfigFromYaml(contents)
	if err != nil {
		return Config{}, fmt.Errorf("LoadConfig, parse '%s': %w", filename, err)
	}
	if err := c.Finalize(); err != nil {
		return Config{}, fmt.Errorf("LoadConfig '%s': %w", filename, err)
	}
	return c, nil
}

func (c Config)AsYaml() string {
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Sprintf("# can't marshal config: %v\n", err)
	}
	return string(b)
}

// Finalize fills in anything left empty, and rejects values the
// estimator can't run with.
func (c *Config)Finalize() error {
	if c.DegeneratePolicy == "" { c.DegeneratePolicy = "error" }
	if c.Fusion.Strategy == "" { c.Fusion.Strategy = "mrf" }
	if c.Fusion.Pairwise == "" { c.Fusion.Pairwise = "none" }

	switch {
	case c.AlphaMin <= 0:
		return fmt.Errorf("config: alphamin must be positive, got %f", c.AlphaMin)
	case c.DepthResolution < 1:
		return fmt.Errorf("config: depthresolution must be at least 1, got %d", c.DepthResolution)
	case c.LaplacianKernelSize < 3 || c.LaplacianKernelSize%2 == 0:
		return fmt.Errorf("config: laplaciankernelsize must be odd and >= 3, got %d", c.LaplacianKernelSize)
	case c.DefocusWindow < 1 || c.CorrespondenceWindow < 1:
		return fmt.Errorf("config: window sizes must be positive, got %d, %d", c.DefocusWindow, c.CorrespondenceWindow)
	case c.Epsilon <= 0:
		return fmt.Errorf("config: epsilon must be positive, got %g", c.Epsilon)
	case len(c.Fusion.LambdaSource) != 2:
		return fmt.Errorf("config: fusion.lambdasource needs one weight per cue, got %v", c.Fusion.LambdaSource)
	case c.Fusion.EnergyKernelSize < 3 || c.Fusion.EnergyKernelSize%2 == 0:
		return fmt.Errorf("config: fusion.energykernelsize must be odd and >= 3, got %d", c.Fusion.EnergyKernelSize)
	case c.Fusion.ConvergenceThreshold < 0:
		return fmt.Errorf("config: fusion.convergencethreshold can't be negative, got %f", c.Fusion.ConvergenceThreshold)
	case c.Fusion.MaxIterations < 1:
		return fmt.Errorf("config: fusion.maxiterations must be at least 1, got %d", c.Fusion.MaxIterations)
	}

	switch c.DegeneratePolicy {
	case "error", "zero":
	default:
		return fmt.Errorf("config: no degeneratepolicy named '%s'", c.DegeneratePolicy)
	}
	switch c.Fusion.Strategy {
	case "mrf", "maxconfidence":
	default:
		return fmt.Errorf("config: no fusion strategy named '%s'", c.Fusion.Strategy)
	}
	switch c.Fusion.Pairwise {
	case "none", "potts":
	default:
		return fmt.Errorf("config: no pairwise term named '%s'", c.Fusion.Pairwise)
	}

	return nil
}
