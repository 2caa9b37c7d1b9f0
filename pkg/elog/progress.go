package elog

import (
	"io"
	"os"
	"sync/atomic"

	"github.com/cloudfoundry/bytefmt"
	"github.com/vbauerster/mpb/v5"
	"github.com/vbauerster/mpb/v5/decor"
)

type barProgress struct {
	container *mpb.Progress
	bar       *mpb.Bar
	done      bool
}

func newBarProgress(label, units string, total int64) *barProgress {

	p := mpb.New(mpb.WithOutput(os.Stderr), mpb.WithWidth(40))

	var counters decor.Decorator
	switch units {
	case "KiB":
		counters = decor.CountersKibiByte("% .1f / % .1f")
	case "":
		counters = decor.CurrentNoUnit("%d")
	default:
		counters = decor.CountersNoUnit("%d / %d " + units)
	}

	bar := p.AddBar(total,
		mpb.PrependDecorators(decor.Name(label, decor.WC{W: len(label) + 1, C: decor.DidentRight})),
		mpb.AppendDecorators(decor.OnComplete(counters, "done")),
	)

	return &barProgress{
		container: p,
		bar:       bar,
	}

}

func (p *barProgress) ProxyReader(r io.Reader) io.ReadCloser {
	return p.bar.ProxyReader(r)
}

func (p *barProgress) Finish(success bool) {
	if p.done {
		return
	}
	p.done = true
	if success {
		p.bar.SetTotal(p.bar.Current(), true)
	} else {
		p.bar.Abort(false)
	}
	p.container.Wait()
}

// quietProgress is used when nothing is attached to the terminal. It logs a
// single line on completion instead of drawing.
type quietProgress struct {
	log   *CLI
	label string
	n     int64
}

type countingReader struct {
	io.Reader
	p *quietProgress
}

func (r *countingReader) Read(b []byte) (int, error) {
	n, err := r.Reader.Read(b)
	atomic.AddInt64(&r.p.n, int64(n))
	return n, err
}

func (r *countingReader) Close() error {
	if c, ok := r.Reader.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (p *quietProgress) ProxyReader(r io.Reader) io.ReadCloser {
	return &countingReader{Reader: r, p: p}
}

func (p *quietProgress) Finish(success bool) {
	n := uint64(atomic.LoadInt64(&p.n))
	if success {
		p.log.Debugf("%s done (%s)", p.label, bytefmt.ByteSize(n))
	} else {
		p.log.Debugf("%s failed after %s", p.label, bytefmt.ByteSize(n))
	}
}
