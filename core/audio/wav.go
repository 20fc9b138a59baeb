package audio

import (
	"fmt"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/jungtin/notion-to-audio/core/output"
)

const (
	bitDepth     = 16
	numChannels  = 1
	wavFormatPCM = 1
)

// WriteWAV writes mono 16-bit PCM samples to path atomically.
func WriteWAV(path string, samples []int, sampleRate int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("invalid sample rate %d", sampleRate)
	}
	return output.WriteAtomicFunc(path, func(f *os.File) error {
		enc := wav.NewEncoder(f, sampleRate, bitDepth, numChannels, wavFormatPCM)
		buf := &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: numChannels, SampleRate: sampleRate},
			Data:           samples,
			SourceBitDepth: bitDepth,
		}
		if err := enc.Write(buf); err != nil {
			return fmt.Errorf("encoding wav: %w", err)
		}
		return enc.Close()
	})
}
