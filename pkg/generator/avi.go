// avi.go - MJPEG AVI writer. The poster is encoded once as JPEG and repeated
// as every frame, giving a still clip that messaging apps accept as video.
package generator

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
)

const aviFPS = 15

// riffWriter writes little-endian RIFF fields and keeps the first error.
type riffWriter struct {
	w   io.Writer
	err error
}

func (r *riffWriter) write(p []byte) {
	if r.err == nil {
		_, r.err = r.w.Write(p)
	}
}

func (r *riffWriter) fourCC(s string) { r.write([]byte(s)) }

func (r *riffWriter) u32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	r.write(b[:])
}

func (r *riffWriter) u16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	r.write(b[:])
}

// writeAVI writes a durationSec-long MJPEG AVI showing img.
func writeAVI(w io.Writer, img image.Image, durationSec, quality int) error {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return fmt.Errorf("failed to encode JPEG frame: %w", err)
	}
	frame := buf.Bytes()
	frameSize := uint32(len(frame))
	padded := frameSize + frameSize%2 // chunks are word aligned

	width := uint32(img.Bounds().Dx())
	height := uint32(img.Bounds().Dy())
	totalFrames := uint32(max(durationSec, 1)) * aviFPS

	chunkSize := 8 + padded // "00dc" + size + data
	moviSize := 4 + totalFrames*chunkSize
	idx1Size := 8 + totalFrames*16
	hdrlSize := uint32(4 + 64 + 124) // "hdrl" + avih + strl LIST
	fileSize := 4 + (8 + hdrlSize) + (8 + moviSize) + idx1Size

	rw := &riffWriter{w: w}

	rw.fourCC("RIFF")
	rw.u32(fileSize)
	rw.fourCC("AVI ")

	rw.fourCC("LIST")
	rw.u32(hdrlSize)
	rw.fourCC("hdrl")

	// avih
	rw.fourCC("avih")
	rw.u32(56)
	rw.u32(1_000_000 / aviFPS) // µs per frame
	rw.u32(frameSize * aviFPS) // max bytes per second
	rw.u32(0)                  // padding granularity
	rw.u32(0x10)               // AVIF_HASINDEX
	rw.u32(totalFrames)
	rw.u32(0) // initial frames
	rw.u32(1) // streams
	rw.u32(frameSize)
	rw.u32(width)
	rw.u32(height)
	for range 4 {
		rw.u32(0) // reserved
	}

	rw.fourCC("LIST")
	rw.u32(116) // "strl" + strh(64) + strf(48)
	rw.fourCC("strl")

	// strh
	rw.fourCC("strh")
	rw.u32(56)
	rw.fourCC("vids")
	rw.fourCC("MJPG")
	rw.u32(0) // flags
	rw.u16(0) // priority
	rw.u16(0) // language
	rw.u32(0) // initial frames
	rw.u32(1) // scale
	rw.u32(aviFPS)
	rw.u32(0) // start
	rw.u32(totalFrames)
	rw.u32(frameSize)
	rw.u32(0) // quality
	rw.u32(0) // sample size
	rw.u16(0)
	rw.u16(0)
	rw.u16(uint16(width))
	rw.u16(uint16(height))

	// strf (BITMAPINFOHEADER)
	rw.fourCC("strf")
	rw.u32(40)
	rw.u32(40)
	rw.u32(width)
	rw.u32(height)
	rw.u16(1)  // planes
	rw.u16(24) // bit count
	rw.fourCC("MJPG")
	rw.u32(width * height * 3)
	for range 4 {
		rw.u32(0)
	}

	rw.fourCC("LIST")
	rw.u32(moviSize)
	rw.fourCC("movi")
	for range totalFrames {
		rw.fourCC("00dc")
		rw.u32(frameSize)
		rw.write(frame)
		if padded != frameSize {
			rw.write([]byte{0})
		}
	}

	rw.fourCC("idx1")
	rw.u32(totalFrames * 16)
	offset := uint32(4) // relative to "movi"
	for range totalFrames {
		rw.fourCC("00dc")
		rw.u32(0x10) // AVIIF_KEYFRAME
		rw.u32(offset)
		rw.u32(frameSize)
		offset += chunkSize
	}

	return rw.err
}
