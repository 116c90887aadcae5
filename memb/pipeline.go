// Package memb provides in-memory byte streams used by pipelines and I/O.
/*
 * Copyright (c) 2026, Skyrod Authors. All rights reserved.
 */
package memb

import (
	"golang.org/x/sync/errgroup"

	"github.com/skyrod/wirenet/cmn/nlog"
)

// ExecMode selects how a pipeline runs its stages.
type ExecMode int

const (
	// Sync runs the whole chain on the caller's goroutine; the result is
	// fully materialized before Process returns. Requires the input stream
	// to be complete (EOF posted).
	Sync ExecMode = iota
	// Async runs each stage on its own goroutine, streaming bytes through.
	// A failing stage posts Error on its output; the terminal consumer's
	// status is the pipeline's status.
	Async
)

// Stage transforms one byte stream into another. It must read in to
// completion and write the transformed bytes to out; the pipeline closes
// out when the stage returns (with Error status if the stage failed).
type Stage func(in *Consumer, out *Producer) error

// Pipeline is an ordered chain of stages. The zero value (and an empty
// chain) is the identity: Process forwards the input consumer unchanged.
type Pipeline struct {
	stages []Stage
}

func NewPipeline(stages ...Stage) *Pipeline { return &Pipeline{stages: stages} }

func (pl *Pipeline) Add(st Stage) *Pipeline {
	pl.stages = append(pl.stages, st)
	return pl
}

func (pl *Pipeline) Len() int {
	if pl == nil {
		return 0
	}
	return len(pl.stages)
}

// Process runs the chain over in and returns the terminal consumer.
func (pl *Pipeline) Process(in *Consumer, mode ExecMode) *Consumer {
	if pl.Len() == 0 {
		return in
	}
	if mode == Sync {
		for _, st := range pl.stages {
			prod, cons := New()
			if err := st(in, prod); err != nil {
				prod.CloseWithError(err)
			}
			prod.Close()
			in = cons
		}
		return in
	}

	group := &errgroup.Group{}
	for _, st := range pl.stages {
		var (
			st         = st
			prod, cons = New()
			stageIn    = in
		)
		group.Go(func() error {
			err := st(stageIn, prod)
			if err != nil {
				prod.CloseWithError(err)
				return err
			}
			prod.Close()
			return nil
		})
		in = cons
	}
	go func() {
		if err := group.Wait(); err != nil {
			nlog.Verbln("pipeline stage failed:", err)
		}
	}()
	return in
}
