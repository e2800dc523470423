package progress

import (
	"io"

	"github.com/cheggaaa/pb/v3"
)

const barTemplate pb.ProgressBarTemplate = `{{string . "prefix"}} {{counters . }} {{bar . }} {{percent . }} {{speed . }}`

// Tracker renders byte progress of asset transfers. A nil Tracker tracks nothing.
type Tracker struct {
	w io.Writer
}

// New creates a Tracker writing progress bars to w
func New(w io.Writer) *Tracker {
	return &Tracker{w: w}
}

// Reader wraps r so that bytes read through it advance a progress bar labeled with name.
// Closing the returned reader finishes the bar and closes r.
func (t *Tracker) Reader(name string, total int64, r io.ReadCloser) io.ReadCloser {
	if t == nil {
		return r
	}

	bar := barTemplate.New(0).
		SetTotal(total).
		SetWriter(t.w).
		Set(pb.Bytes, true).
		Set("prefix", name)
	bar.Start()

	return &reader{
		Reader: bar.NewProxyReader(r),
		closer: r,
		bar:    bar,
	}
}

type reader struct {
	io.Reader
	closer io.Closer
	bar    *pb.ProgressBar
}

func (r *reader) Close() error {
	r.bar.Finish()
	return r.closer.Close()
}
