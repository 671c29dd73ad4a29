package httpfetch

import (
	"fmt"
	"io"
)

// progressStep is how many bytes pass between progress lines.
const progressStep = 8 << 20

// progressReader reports transfer progress as carriage-return lines.
type progressReader struct {
	r        io.Reader
	out      io.Writer
	name     string
	total    int64
	read     int64
	reported int64
}

func newProgressReader(r io.Reader, out io.Writer, name string, total int64) *progressReader {
	return &progressReader{r: r, out: out, name: name, total: total}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.read += int64(n)
	if p.read-p.reported >= progressStep {
		p.report()
	}
	if err == io.EOF {
		p.report()
		fmt.Fprintln(p.out)
	}
	return n, err
}

func (p *progressReader) report() {
	p.reported = p.read
	if p.total > 0 {
		pct := float64(p.read) / float64(p.total) * 100
		fmt.Fprintf(p.out, "\rDownloading %s: %s / %s (%.0f%%)", p.name, humanBytes(p.read), humanBytes(p.total), pct)
		return
	}
	fmt.Fprintf(p.out, "\rDownloading %s: %s", p.name, humanBytes(p.read))
}

// humanBytes renders n with a binary unit ("512 B", "1.5 MiB").
func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
