package depth

import(
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/5kejun/Scene-reconstruction-from-light-field-data/pkg/lightfield"
)

// A Job is one light field to estimate. If LightField is nil, it is
// loaded from Dir, downscaled by Scale if that is in (0,1).
type Job struct {
	// Inputs
	Name       string
	Dir        string
	Scale      float64
	LightField lightfield.LightField

	// Outputs
	Result     *Result
	Err        error
}

// EstimateConcurrently runs the jobs through a pool of workers, each
// with its own Estimator, and returns them (in input order) with
// their outputs filled in. A nil log means the standard logger.
func EstimateConcurrently(c Config, jobs []Job, nWorkers int, log logrus.FieldLogger) []Job {
	if nWorkers < 1 {
		nWorkers = 1
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	type indexedJob struct {
		i   int
		job Job
	}

	var wg sync.WaitGroup
	jobsChan    := make(chan indexedJob, len(jobs))
	resultsChan := make(chan indexedJob, len(jobs))

	// Kick off worker pool
	for w:=0; w<nWorkers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for ij := range jobsChan {
				ij.job.Result, ij.job.Err = runJob(c, ij.job, log.WithFields(logrus.Fields{"worker": w, "job": ij.job.Name}))
				resultsChan<- ij
			}
		}(w)
	}

	// Feed in jobs
	for i, job := range jobs {
		jobsChan<- indexedJob{i, job}
	}
	close(jobsChan)
	wg.Wait()
	close(resultsChan)

	out := make([]Job, len(jobs))
	for ij := range resultsChan {
		out[ij.i] = ij.job
	}
	return out
}

func runJob(c Config, job Job, log logrus.FieldLogger) (*Result, error) {
	lf := job.LightField
	if lf == nil {
		p, err := lightfield.LoadDirScaled(job.Dir, job.Scale, log)
		if err != nil {
			return nil, err
		}
		lf = p
	}

	e, err := NewEstimator(c, nil, log)
	if err != nil {
		return nil, err
	}
	res, err := e.Estimate(lf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", job.Name, err)
	}
	return res, nil
}
