package filesystem

import (
	"context"
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/charlievieth/fastwalk"
	"github.com/gabriel-vasile/mimetype"
	"github.com/saintfish/chardet"
)

// sniffLimit bounds how much of a file is read for charset detection.
const sniffLimit = 4096

// DiskUsage totals the size of regular files below path. Unreadable entries
// are skipped. The walk runs in parallel and stops when ctx is cancelled.
func (l *Local) DiskUsage(ctx context.Context, path string) (Usage, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return Usage{}, Classify("du", path, err)
	}
	if !info.IsDir() {
		if info.Mode().IsRegular() {
			return Usage{Bytes: info.Size(), Files: 1}, nil
		}
		return Usage{}, nil
	}

	var total, files atomic.Int64
	conf := fastwalk.Config{Follow: false}

	err = fastwalk.Walk(&conf, path, func(p string, d os.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil || !d.Type().IsRegular() {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			return nil
		}
		total.Add(fi.Size())
		files.Add(1)
		return nil
	})
	if err != nil {
		return Usage{}, Classify("du", path, err)
	}

	return Usage{Bytes: total.Load(), Files: int(files.Load())}, nil
}

// DetectContent sniffs the MIME type of path and, for text, its charset.
func (l *Local) DetectContent(ctx context.Context, path string) (ContentInfo, error) {
	if err := ctx.Err(); err != nil {
		return ContentInfo{}, err
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return ContentInfo{}, Classify("detect", path, err)
	}

	result := ContentInfo{
		MIME:      mtype.String(),
		Extension: mtype.Extension(),
		IsText:    isText(mtype),
	}
	if result.IsText {
		result.Charset = detectCharset(path)
	}
	return result, nil
}

func isText(mtype *mimetype.MIME) bool {
	for m := mtype; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return strings.HasPrefix(mtype.String(), "text/") ||
		mtype.Is("application/json") ||
		mtype.Is("application/xml") ||
		mtype.Is("application/javascript")
}

func detectCharset(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	sample, err := io.ReadAll(io.LimitReader(f, sniffLimit))
	if err != nil || len(sample) == 0 {
		return ""
	}

	best, err := chardet.NewTextDetector().DetectBest(sample)
	if err != nil {
		return ""
	}
	return best.Charset
}
