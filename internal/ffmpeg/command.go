package ffmpeg

import (
	"github.com/five82/tubeprep/internal/errors"
	"github.com/five82/tubeprep/internal/util"
)

// baseArgs start every invocation: no banner, no stdin, overwrite outputs.
func baseArgs() []string {
	return []string{"-hide_banner", "-nostdin", "-y"}
}

// ExtractAudioMP3 pulls the audio track out of a video as VBR MP3.
func ExtractAudioMP3(input, output string) []string {
	return append(baseArgs(), "-i", input, "-q:a", "0", "-map", "a", output)
}

// ConvertAudioMP3 re-encodes an audio file to MP3 with libmp3lame.
func ConvertAudioMP3(input, output string) []string {
	return append(baseArgs(), "-i", input, "-codec:a", "libmp3lame", "-qscale:a", "2", output)
}

// ToMP3 chooses between extraction and conversion based on the input extension.
func ToMP3(input, output string) ([]string, error) {
	switch {
	case util.IsVideoPath(input):
		return ExtractAudioMP3(input, output), nil
	case util.IsAudioPath(input):
		return ConvertAudioMP3(input, output), nil
	default:
		return nil, errors.NewUnsupportedFormatError(util.Ext(input))
	}
}

// DecodePCM16 decodes any input's audio to a 16-bit little-endian WAV while
// keeping the source sample rate and channel count.
func DecodePCM16(input, output string) []string {
	return append(baseArgs(), "-i", input, "-vn", "-acodec", "pcm_s16le", "-f", "wav", output)
}

// audioCodecArgs maps an output extension to encoder arguments.
var audioCodecArgs = map[string][]string{
	".mp3":  {"-codec:a", "libmp3lame", "-qscale:a", "2"},
	".m4a":  {"-codec:a", "aac", "-b:a", "192k"},
	".ogg":  {"-codec:a", "libvorbis", "-qscale:a", "5"},
	".flac": {"-codec:a", "flac"},
	".wav":  {"-codec:a", "pcm_s16le"},
}

// EncodeFromWAV encodes a PCM WAV into the format implied by output's extension.
func EncodeFromWAV(input, output string) ([]string, error) {
	codec, ok := audioCodecArgs[util.Ext(output)]
	if !ok {
		return nil, errors.NewUnsupportedFormatError(util.Ext(output))
	}
	args := append(baseArgs(), "-i", input, "-vn")
	args = append(args, codec...)
	return append(args, output), nil
}
