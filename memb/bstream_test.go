// Package memb provides in-memory byte streams used by pipelines and I/O.
/*
 * Copyright (c) 2026, Skyrod Authors. All rights reserved.
 */
package memb_test

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/skyrod/wirenet/memb"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Producer/Consumer", func() {
	It("should deliver bytes in FIFO order", func() {
		prod, cons := memb.New()
		_, err := prod.Write([]byte("hello "))
		Expect(err).ToNot(HaveOccurred())
		_, err = prod.Write([]byte("world"))
		Expect(err).ToNot(HaveOccurred())
		Expect(cons.AvailableBytes()).To(Equal(11))

		b, err := cons.TryRead(6)
		Expect(err).ToNot(HaveOccurred())
		Expect(string(b)).To(Equal("hello "))
		b, err = cons.TryRead(0)
		Expect(err).ToNot(HaveOccurred())
		Expect(string(b)).To(Equal("world"))
	})

	It("should return no bytes, not block, while the stream is open and empty", func() {
		_, cons := memb.New()
		b, err := cons.TryRead(16)
		Expect(err).ToNot(HaveOccurred())
		Expect(b).To(BeEmpty())
		Expect(cons.IsEOF()).To(BeFalse())
		Expect(cons.IsWritable()).To(BeTrue())
	})

	It("should keep EOF sticky and drain the remainder first", func() {
		prod, cons := memb.New()
		prod.Write([]byte("tail"))
		prod.Close()
		Expect(cons.IsEOF()).To(BeTrue())
		Expect(cons.IsWritable()).To(BeFalse())

		b, err := cons.TryRead(0)
		Expect(err).ToNot(HaveOccurred())
		Expect(string(b)).To(Equal("tail"))
		Expect(cons.IsEOF()).To(BeTrue())
	})

	It("should reject writes after EOF", func() {
		prod, _ := memb.New()
		prod.Close()
		_, err := prod.Write([]byte("x"))
		Expect(err).To(HaveOccurred())
	})

	It("should surface the producer's error on the consumer", func() {
		prod, cons := memb.New()
		prod.Write([]byte("partial"))
		prod.CloseWithError(errors.New("stage blew up"))
		Expect(cons.Status()).To(Equal(memb.StatusError))
		_, err := cons.TryRead(0)
		Expect(err).To(MatchError("stage blew up"))
	})

	It("should block ExtractUntilEOF until the stream completes", func() {
		prod, cons := memb.New()
		go func() {
			defer GinkgoRecover()
			prod.Write([]byte("first,"))
			time.Sleep(10 * time.Millisecond)
			prod.Write([]byte("second"))
			prod.Close()
		}()
		b, err := cons.ExtractUntilEOF()
		Expect(err).ToNot(HaveOccurred())
		Expect(string(b)).To(Equal("first,second"))
	})

	It("should implement io.Reader over the stream", func() {
		prod, cons := memb.New()
		go func() {
			defer GinkgoRecover()
			io.Copy(prod, strings.NewReader(strings.Repeat("z", 100_000)))
			prod.Close()
		}()
		all, err := io.ReadAll(cons)
		Expect(err).ToNot(HaveOccurred())
		Expect(all).To(HaveLen(100_000))
	})
})

var _ = Describe("FIFO", func() {
	It("should queue, drop, and extract", func() {
		f := memb.NewFIFO()
		f.Write([]byte("abcdef"))
		Expect(f.Size()).To(Equal(6))
		f.Drop(2)
		Expect(string(f.Next(2))).To(Equal("cd"))
		Expect(string(f.Extract())).To(Equal("ef"))
		Expect(f.Size()).To(BeZero())
	})

	It("should hand its contents to a consumer at EOF", func() {
		f := memb.NewFIFO()
		f.WriteString("payload")
		cons := f.Consumer()
		Expect(cons.IsEOF()).To(BeTrue())
		b, err := cons.ExtractUntilEOF()
		Expect(err).ToNot(HaveOccurred())
		Expect(string(b)).To(Equal("payload"))
	})
})

var _ = Describe("Pipeline", func() {
	double := func(in *memb.Consumer, out *memb.Producer) error {
		b, err := in.ExtractUntilEOF()
		if err != nil {
			return err
		}
		_, err = out.Write(append(b, b...))
		return err
	}
	upper := func(in *memb.Consumer, out *memb.Producer) error {
		b, err := in.ExtractUntilEOF()
		if err != nil {
			return err
		}
		_, err = out.Write(bytes.ToUpper(b))
		return err
	}

	It("should forward the input unchanged when empty", func() {
		pl := &memb.Pipeline{}
		in := memb.ConsumerOf([]byte("asis"))
		Expect(pl.Process(in, memb.Sync)).To(BeIdenticalTo(in))
	})

	It("should chain stages in order, synchronously", func() {
		pl := memb.NewPipeline(double, upper)
		out := pl.Process(memb.ConsumerOf([]byte("ab")), memb.Sync)
		b, err := out.ExtractUntilEOF()
		Expect(err).ToNot(HaveOccurred())
		Expect(string(b)).To(Equal("ABAB"))
	})

	It("should stream through stages asynchronously", func() {
		pl := memb.NewPipeline(double, double)
		out := pl.Process(memb.ConsumerOf(bytes.Repeat([]byte("x"), 1000)), memb.Async)
		b, err := out.ExtractUntilEOF()
		Expect(err).ToNot(HaveOccurred())
		Expect(b).To(HaveLen(4000))
	})

	It("should propagate a failing stage as the terminal status bit", func() {
		boom := func(in *memb.Consumer, _ *memb.Producer) error {
			_, _ = in.ExtractUntilEOF()
			return errors.New("boom")
		}
		pl := memb.NewPipeline(boom, double)
		out := pl.Process(memb.ConsumerOf([]byte("doomed")), memb.Async)
		_, err := out.ExtractUntilEOF()
		Expect(err).To(HaveOccurred())
		Expect(out.Status()).To(Equal(memb.StatusError))
	})
})
