package main

// lfdepth estimates depth maps from light field directories.
//
//	lfdepth [flags] dir1 [dir2 ...]
//
// Each directory holds a lightfield.yaml and one image per view. For
// every directory, NAME-depth.hdr, NAME-depth.png, NAME-confidence.png
// and NAME-edof.png are written into the output directory.

import(
	"flag"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/5kejun/Scene-reconstruction-from-light-field-data/pkg/depth"
	"github.com/5kejun/Scene-reconstruction-from-light-field-data/pkg/lightfield"
)

var(
	Log *logrus.Logger

	fVerbosity int
	fConfigFile string
	fOutputDir string
	fWorkers int
	fScale float64
	fResolution int
	fStrategy string
	fPairwise string
	fDegenerate string
	fAcceptUnconverged bool
	fSynthetic string
	fSyntheticAlpha float64
)

func init() {
	flag.IntVar(&fVerbosity, "v", 0, "how verbose to get")
	flag.StringVar(&fConfigFile, "config", "", "yaml file of estimator config (defaults otherwise)")
	flag.StringVar(&fOutputDir, "o", ".", "directory to write outputs into")
	flag.IntVar(&fWorkers, "workers", 2, "how many light fields to estimate at once")
	flag.Float64Var(&fScale, "scale", 0, "if in (0,1), downscale the views by this much on load")

	flag.IntVar(&fResolution, "resolution", 0, "number of focus steps in the sweep (0: from config)")
	flag.StringVar(&fStrategy, "strategy", "", "how to fuse the cues: mrf, maxconfidence")
	flag.StringVar(&fPairwise, "pairwise", "", "pairwise MRF term: none, potts")
	flag.StringVar(&fDegenerate, "degenerate", "", "when no pixel is confident: error, zero")
	flag.BoolVar(&fAcceptUnconverged, "acceptunconverged", false, "use the last labels if the MRF doesn't converge")

	flag.StringVar(&fSynthetic, "synthetic", "", "write a synthetic textured plane light field into this dir, and estimate it")
	flag.Float64Var(&fSyntheticAlpha, "syntheticalpha", 0.5, "focus parameter of the synthetic plane")
	flag.Parse()

	Log = initLogger(fVerbosity)
}

func initLogger(verbosity int) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	if verbosity > 0 {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02 15:04:05"})
	}
	return logger
}

func loadConfig() (depth.Config, error) {
	c := depth.NewConfig()
	if fConfigFile != "" {
		var err error
		if c, err = depth.LoadConfig(fConfigFile); err != nil {
			return c, err
		}
	}

	// Override the config file with command line args, if relevant
	if fResolution > 0 { c.DepthResolution = fResolution }
	if fStrategy != "" { c.Fusion.Strategy = fStrategy }
	if fPairwise != "" { c.Fusion.Pairwise = fPairwise }
	if fDegenerate != "" { c.DegeneratePolicy = fDegenerate }
	if fAcceptUnconverged { c.Fusion.AcceptUnconverged = true }

	return c, c.Finalize()
}

func writeSynthetic(dir string) error {
	meta := lightfield.Metadata{
		Name:                "synthetic-" + uuid.New().String()[:8],
		AngularWidth:        5,
		AngularHeight:       5,
		FocalLength:         10,
		ImageToLensDistance: 40,
		LambdaInfinity:      1.0,
	}
	lf := lightfield.NewTexturedPlane(meta, image.Point{128, 96}, fSyntheticAlpha, 1)
	return lightfield.WriteDir(dir, lf)
}

func main() {
	c, err := loadConfig()
	if err != nil {
		Log.Fatal(err)
	}
	if fVerbosity > 0 {
		Log.Debugf("Final configuration:-\n\n%s\n", c.AsYaml())
	}

	dirs := flag.Args()
	if fSynthetic != "" {
		if err := writeSynthetic(fSynthetic); err != nil {
			Log.Fatal(err)
		}
		Log.WithField("dir", fSynthetic).Info("Wrote synthetic light field")
		dirs = append(dirs, fSynthetic)
	}
	if len(dirs) == 0 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] lightfielddir ...\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}

	jobs := []depth.Job{}
	for _, dir := range dirs {
		job := depth.Job{Name: filepath.Base(filepath.Clean(dir)), Dir: dir, Scale: fScale}
		jobs = append(jobs, job)
	}

	nFailed := 0
	for _, job := range depth.EstimateConcurrently(c, jobs, fWorkers, Log) {
		log := Log.WithField("job", job.Name)
		if job.Err != nil {
			log.Errorf("Estimation failed: %v", job.Err)
			nFailed++
			continue
		}

		written, err := job.Result.WriteFiles(fOutputDir, job.Name)
		if err != nil {
			log.Errorf("Writing outputs: %v", err)
			nFailed++
			continue
		}
		log.WithFields(logrus.Fields{
			"files": written,
			"passes": job.Result.Iterations,
		}).Info("Done")
		h := job.Result.DepthHistogram()
		log.Debugf("Depth histogram (min %.1fmm to max %.1fmm):\n%v",
			job.Result.DepthMap.Min(), job.Result.DepthMap.Max(), h)
	}

	if nFailed > 0 {
		os.Exit(1)
	}
}
