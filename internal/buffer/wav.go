package buffer

import (
	"fmt"
	"os"

	gaudio "github.com/go-audio/audio"
	gwav "github.com/go-audio/wav"
	"github.com/ik5/audpbx/utils"
)

// WriteWAV writes the buffer to path as 16-bit PCM WAV at the buffer's
// sample rate and channel count. Samples outside [-1, 1] are clamped here;
// the mastering limiter is responsible for keeping them in range upstream.
func (b *Buffer) WriteWAV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	enc := gwav.NewEncoder(f, b.SampleRate, 16, b.Channels, 1)

	data := make([]int, len(b.Samples))
	for i, s := range b.Samples {
		data[i] = int(utils.Float32ToInt16(s))
	}

	ib := &gaudio.IntBuffer{
		Format: &gaudio.Format{
			NumChannels: b.Channels,
			SampleRate:  b.SampleRate,
		},
		Data:           data,
		SourceBitDepth: 16,
	}

	if err := enc.Write(ib); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalize %s: %w", path, err)
	}
	return nil
}
