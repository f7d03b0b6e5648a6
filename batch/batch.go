/*******************************************************************************
 * Copyright (c) 2025 Talavera-Lopez Lab
 *
 * Permission is hereby granted, free of charge, to any person obtaining
 * a copy of this software and associated documentation files (the
 * "Software"), to deal in the Software without restriction, including
 * without limitation the rights to use, copy, modify, merge, publish,
 * distribute, sublicense, and/or sell copies of the Software, and to
 * permit persons to whom the Software is furnished to do so, subject to
 * the following conditions:
 *
 * The above copyright notice and this permission notice shall be included
 * in all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
 * EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
 * MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.
 * IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY
 * CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT,
 * TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN CONNECTION WITH THE
 * SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
 ******************************************************************************/

// package batch sequences resolve, detect and map for each sample of a run,
// aggregating results into an ordered report.

package batch

import (
	"path/filepath"

	"github.com/Talavera-Lopez-Lab/Mapping-Scripts/detect"
	"github.com/Talavera-Lopez-Lab/Mapping-Scripts/types"
	"github.com/inconshreveable/log15"
)

type Error string

func (e Error) Error() string { return string(e) }

const ErrInvalidPolicy = Error("invalid failure policy")

// MappedSubdir is the directory under the output directory that per-sample
// STAR output goes into.
const MappedSubdir = "StarMapped"

// Policy says what a failed sample does to the rest of the batch.
type Policy string

const (
	// PolicyAbort stops the batch at the first failed sample, leaving later
	// samples unattempted. This is the default.
	PolicyAbort Policy = "abort"

	// PolicyContinue records the failure and carries on with the next sample.
	PolicyContinue Policy = "continue"
)

// StringToPolicy converts a string to a Policy. Blank strings are treated as
// PolicyAbort.
func StringToPolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyAbort, Policy(""):
		return PolicyAbort, nil
	case PolicyContinue:
		return PolicyContinue, nil
	default:
		return "", ErrInvalidPolicy
	}
}

// Resolver resolves a sample to its pair of read files.
type Resolver interface {
	Resolve(sample *types.Sample) (*types.SampleRecord, error)
}

// Detector determines chemistry parameters from a pair of read files.
type Detector interface {
	Detect(r1, r2 string) (*detect.Parameters, error)
}

// Invoker maps a read pair into an output directory with the given
// parameters, returning the external tool's combined output text.
type Invoker interface {
	Map(r1, r2, outputDir string, params *detect.Parameters) (string, error)
}

// Result records the outcome of one sample. Diagnostics holds the captured
// output of a failed mapping.
type Result struct {
	SampleID    string
	Success     bool
	OutputDir   string
	Diagnostics string
}

// Report is the ordered per-sample results of a run.
type Report []Result

// Orchestrator runs each sample of a batch through resolution, detection and
// mapping, one sample at a time. Samples share no state; each gets its own
// parameters and scratch space.
type Orchestrator struct {
	resolver  Resolver
	detector  Detector
	invoker   Invoker
	outputDir string
	policy    Policy
	logger    log15.Logger
}

// New returns an Orchestrator that maps samples into
// outputDir/StarMapped/<sampleID> and applies the given failure policy.
func New(resolver Resolver, detector Detector, invoker Invoker,
	outputDir string, policy Policy, logger log15.Logger) *Orchestrator {
	return &Orchestrator{
		resolver:  resolver,
		detector:  detector,
		invoker:   invoker,
		outputDir: outputDir,
		policy:    policy,
		logger:    logger,
	}
}

// Run processes the given samples in order. Under PolicyAbort, the first
// failure stops the batch: the error is returned along with the report built
// so far, and later samples are not attempted. Failed resolutions and
// detections don't get report entries; failed mappings do, carrying the
// mapper's captured output as diagnostics.
//
// Under PolicyContinue every failure is recorded: resolution and detection
// failures get an entry too, with the error text as diagnostics, so the
// report accounts for every sample of the run.
func (o *Orchestrator) Run(samples []*types.Sample) (Report, error) {
	var report Report

	for _, sample := range samples {
		result, err := o.runSample(sample)
		if result == nil && err != nil && o.policy == PolicyContinue {
			result = &Result{
				SampleID:    sample.SampleID,
				Diagnostics: err.Error(),
			}
		}

		if result != nil {
			report = append(report, *result)
		}

		if err != nil {
			o.logger.Error("sample failed", "sample", sample.SampleID, "err", err)

			if o.policy == PolicyAbort {
				return report, err
			}
		}
	}

	return report, nil
}

func (o *Orchestrator) runSample(sample *types.Sample) (*Result, error) {
	o.logger.Info("processing sample", "sample", sample.SampleID)

	record, err := o.resolver.Resolve(sample)
	if err != nil {
		return nil, err
	}

	o.logger.Info("found fastq files", "sample", sample.SampleID,
		"r1", record.R1, "r2", record.R2)

	params, err := o.detector.Detect(record.R1, record.R2)
	if err != nil {
		return nil, err
	}

	outputDir := filepath.Join(o.outputDir, MappedSubdir, sample.SampleID)

	out, err := o.invoker.Map(record.R1, record.R2, outputDir, params)
	if err != nil {
		return &Result{
			SampleID:    sample.SampleID,
			Success:     false,
			OutputDir:   outputDir,
			Diagnostics: out,
		}, err
	}

	o.logger.Info("successfully processed sample", "sample", sample.SampleID)

	return &Result{
		SampleID:  sample.SampleID,
		Success:   true,
		OutputDir: outputDir,
	}, nil
}
