package audio

import (
	"bytes"
	"errors"
	"io"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"
)

// Player воспроизводит голосовые ответы ассистента в терминальном клиенте.
type Player interface {
	Play(mimeType string, data []byte) error
}

// Default реализует Player и поддерживает audio/mpeg и audio/wav.
type Default struct{ volumeDB float64 }

// New создаёт плеер без изменения громкости (0 dB).
func New() *Default { return &Default{volumeDB: 0} }

// NewWithVolume создаёт плеер с предустановленной громкостью в dB (отрицательные — тише).
func NewWithVolume(db float64) *Default { return &Default{volumeDB: db} }

func (d *Default) Play(mimeType string, data []byte) error {
	r := io.NopCloser(bytes.NewReader(data))
	switch mimeType {
	case "audio/wav", "audio/x-wav":
		return playWAV(r, d.volumeDB)
	case "audio/mpeg", "audio/mp3":
		return playMP3(r, d.volumeDB)
	default:
		return errors.New("unsupported mime type for direct playback; use mp3 or wav")
	}
}

func playWAV(r io.ReadCloser, volDB float64) error {
	streamer, format, err := wav.Decode(r)
	if err != nil {
		return err
	}
	defer streamer.Close()
	return play(streamer, format, volDB)
}

func playMP3(r io.ReadCloser, volDB float64) error {
	streamer, format, err := mp3.Decode(r)
	if err != nil {
		return err
	}
	defer streamer.Close()
	return play(streamer, format, volDB)
}

func play(streamer beep.Streamer, format beep.Format, volDB float64) error {
	if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
		return err
	}
	vol := &effects.Volume{
		Streamer: streamer,
		Base:     2,
		Volume:   volDB,
		Silent:   false,
	}
	done := make(chan struct{})
	speaker.Play(beep.Seq(vol, beep.Callback(func() { close(done) })))
	<-done
	return nil
}
