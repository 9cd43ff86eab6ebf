package transcode

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/braheezy/shine-mp3/pkg/mp3"

	"learnpod/internal/fileutil"
	"learnpod/internal/media/wav"
	"learnpod/internal/services"
)

// Shine encodes MP3 in-process with the shine encoder. It accepts 16-bit PCM only.
type Shine struct{}

// Name identifies the strategy in logs.
func (Shine) Name() string { return "shine" }

// Transcode encodes wavPath into mp3Path.
func (Shine) Transcode(ctx context.Context, wavPath, mp3Path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := os.ReadFile(wavPath)
	if err != nil {
		return services.Wrap(services.ErrNotFound, "audio", "shine", "read wav", err)
	}
	format, pcm, err := wav.Decode(data)
	if err != nil {
		return services.Wrap(services.ErrInvalidFormat, "audio", "shine", "decode wav", err)
	}
	if format.BitsPerSample != 16 {
		return services.Wrap(services.ErrInvalidFormat, "audio", "shine",
			fmt.Sprintf("unsupported bit depth %d", format.BitsPerSample), nil)
	}

	var out bytes.Buffer
	encoder := mp3.NewEncoder(format.SampleRate, format.Channels)
	if err := encoder.Write(&out, wav.Samples16(pcm)); err != nil {
		return services.Wrap(services.ErrExternalTool, "audio", "shine", "encode", err)
	}
	if out.Len() == 0 {
		return services.Wrap(services.ErrExternalTool, "audio", "shine", "encoder produced no data", nil)
	}
	return fileutil.WriteFileAtomic(mp3Path, out.Bytes())
}
