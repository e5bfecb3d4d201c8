// Package pipeline runs a clip job: load every input, clip it to the
// region and write the outputs.
package pipeline

import (
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/omniscale/clipwater/config"
	"github.com/omniscale/clipwater/feature"
	"github.com/omniscale/clipwater/geom/clip"
	"github.com/omniscale/clipwater/log"
	"github.com/omniscale/clipwater/reader"
	"github.com/omniscale/clipwater/writer"
)

const SuccessMessage = "Clipping completed successfully!"

// Run executes job and prints SuccessMessage to stdout when all outputs
// are written. All inputs are loaded before anything is written, a
// missing input leaves no outputs behind. Outputs written before a later
// failure are not removed.
func Run(job config.Job, stdout io.Writer) error {
	if err := job.Validate(); err != nil {
		return errors.Wrap(err, "invalid job")
	}
	region := job.BBox()

	formats := make([][]writer.Format, len(job.Layers))
	for i, l := range job.Layers {
		for _, o := range l.Outputs {
			f, err := outputFormat(o)
			if err != nil {
				return err
			}
			formats[i] = append(formats[i], f)
		}
	}

	step := log.Step("Loading")
	inputs := make([]*feature.Collection, len(job.Layers))
	for i, l := range job.Layers {
		coll, err := reader.Load(l.Input)
		if err != nil {
			return err
		}
		inputs[i] = coll
	}
	step()

	step = log.Step(fmt.Sprintf("Clipping to %s", region))
	clipped := make([]*feature.Collection, len(job.Layers))
	for i, l := range job.Layers {
		coll, _, err := clip.Collection(inputs[i], region)
		if err != nil {
			return errors.Wrapf(err, "clipping %s", l.Input)
		}
		coll.Name = l.CollectionName()
		clipped[i] = coll
		inputs[i] = nil
	}
	step()

	// first output of every layer, then the second of every layer, ...
	step = log.Step("Writing")
	for j := 0; j < maxOutputs(job); j++ {
		for i, l := range job.Layers {
			if j >= len(l.Outputs) {
				continue
			}
			if err := writer.Write(clipped[i], l.Outputs[j].Path, formats[i][j]); err != nil {
				return err
			}
		}
	}
	step()

	fmt.Fprintln(stdout, SuccessMessage)
	return nil
}

func maxOutputs(job config.Job) int {
	n := 0
	for _, l := range job.Layers {
		if len(l.Outputs) > n {
			n = len(l.Outputs)
		}
	}
	return n
}

func outputFormat(o config.Output) (writer.Format, error) {
	if o.Format != "" {
		return writer.ParseFormat(o.Format)
	}
	return writer.FormatFromPath(o.Path)
}
