package deflate

import (
	"bytes"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/golang/snappy"
	"github.com/pierrec/lz4/v4"
)

// corpus returns a synthetic but realistically-compressible text sample,
// standing in for the reference corpora (e.g. Isaac.Newton-Opticks.txt)
// the teacher's own codec benchmarks compare against.
func corpus() []byte {
	return bytes.Repeat([]byte(
		"Whether Light be a Body. The Reflections and Colours made by thin "+
			"Plates or Bubbles, are various in various Positions of the Eye, "+
			"besides the variety which arises from the bulk of their parts. "),
		2000)
}

// BenchmarkEncode measures this package's own encoder across the level
// range, the way the teacher's per-codec benchmark files each report a
// BenchmarkEncode for their own MatchFinder/Encoder pairing.
func BenchmarkEncode(b *testing.B) {
	data := corpus()
	for level := 1; level <= 9; level++ {
		level := level
		b.Run(levelName(level), func(b *testing.B) {
			b.SetBytes(int64(len(data)))
			b.ReportAllocs()
			var buf bytes.Buffer
			w := NewWriter(&buf, level)
			w.Write(data)
			w.Close()
			b.ReportMetric(float64(len(data))/float64(buf.Len()), "ratio")
			for i := 0; i < b.N; i++ {
				buf.Reset()
				w := NewWriter(&buf, level)
				w.Write(data)
				w.Close()
			}
		})
	}
}

// BenchmarkEncodeGolangSnappy compares against golang/snappy's own block
// format, which this package's wire format is not compatible with (see
// the DOMAIN STACK notes), so it is exercised only as a ratio/speed
// reference point rather than wired into BlockWriter.
func BenchmarkEncodeGolangSnappy(b *testing.B) {
	data := corpus()
	b.SetBytes(int64(len(data)))
	b.ReportAllocs()
	encoded := snappy.Encode(nil, data)
	b.ReportMetric(float64(len(data))/float64(len(encoded)), "ratio")
	for i := 0; i < b.N; i++ {
		snappy.Encode(nil, data)
	}
}

// BenchmarkEncodeLZ4 is the same comparison against pierrec/lz4/v4.
func BenchmarkEncodeLZ4(b *testing.B) {
	data := corpus()
	b.SetBytes(int64(len(data)))
	b.ReportAllocs()
	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	zw.Write(data)
	zw.Close()
	b.ReportMetric(float64(len(data))/float64(buf.Len()), "ratio")
	for i := 0; i < b.N; i++ {
		buf.Reset()
		zw := lz4.NewWriter(&buf)
		zw.Write(data)
		zw.Close()
	}
}

// BenchmarkEncodeBrotli is the same comparison against andybalholm/brotli.
func BenchmarkEncodeBrotli(b *testing.B) {
	data := corpus()
	b.SetBytes(int64(len(data)))
	b.ReportAllocs()
	var buf bytes.Buffer
	bw := brotli.NewWriterLevel(&buf, brotli.DefaultCompression)
	bw.Write(data)
	bw.Close()
	b.ReportMetric(float64(len(data))/float64(buf.Len()), "ratio")
	for i := 0; i < b.N; i++ {
		buf.Reset()
		bw := brotli.NewWriterLevel(&buf, brotli.DefaultCompression)
		bw.Write(data)
		bw.Close()
	}
}

func levelName(level int) string {
	names := [...]string{0: "0", 1: "1", 2: "2", 3: "3", 4: "4", 5: "5", 6: "6", 7: "7", 8: "8", 9: "9"}
	return "level" + names[level]
}
