package rhachis

import (
	"math"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/speaker"
)

// Audio mixes any number of streams into one output with a master volume
// and pause switch. Without a speaker it can still be pulled through Output.
type Audio struct {
	sampleRate beep.SampleRate
	mixer      *beep.Mixer
	ctrl       *beep.Ctrl
	volume     *effects.Volume
	gain       float64
	speaker    bool
}

func NewAudio(sampleRate int, gain float64) *Audio {
	a := &Audio{
		sampleRate: beep.SampleRate(sampleRate),
		mixer:      &beep.Mixer{},
	}
	a.ctrl = &beep.Ctrl{Streamer: a.mixer}
	a.volume = &effects.Volume{Streamer: a.ctrl, Base: 2}
	a.setGain(gain)
	return a
}

func (a *Audio) lock() {
	if a.speaker {
		speaker.Lock()
	}
}

func (a *Audio) unlock() {
	if a.speaker {
		speaker.Unlock()
	}
}

func (a *Audio) SampleRate() beep.SampleRate { return a.sampleRate }

// Output is the head of the mix chain. The speaker pulls from it when one
// was opened.
func (a *Audio) Output() beep.Streamer { return a.volume }

// Play mixes streamers already at the output sample rate.
func (a *Audio) Play(streamers ...beep.Streamer) {
	a.lock()
	defer a.unlock()
	a.mixer.Add(streamers...)
}

// PlayFormat resamples s from format to the output rate when they differ.
func (a *Audio) PlayFormat(s beep.Streamer, format beep.Format) {
	if format.SampleRate != a.sampleRate {
		s = beep.Resample(4, format.SampleRate, a.sampleRate, s)
	}
	a.Play(s)
}

// Playing is the number of streams still in the mix.
func (a *Audio) Playing() int {
	a.lock()
	defer a.unlock()
	return a.mixer.Len()
}

func (a *Audio) Clear() {
	a.lock()
	defer a.unlock()
	a.mixer.Clear()
}

func (a *Audio) SetPaused(paused bool) {
	a.lock()
	defer a.unlock()
	a.ctrl.Paused = paused
}

func (a *Audio) Paused() bool {
	a.lock()
	defer a.unlock()
	return a.ctrl.Paused
}

// SetVolume sets the linear master gain. Zero mutes.
func (a *Audio) SetVolume(gain float64) {
	a.lock()
	defer a.unlock()
	a.setGain(gain)
}

func (a *Audio) Volume() float64 {
	a.lock()
	defer a.unlock()
	return a.gain
}

func (a *Audio) setGain(gain float64) {
	if gain < 0 {
		gain = 0
	}
	a.gain = gain
	a.volume.Silent = gain == 0
	if gain > 0 {
		a.volume.Volume = math.Log2(gain)
	}
}

func (a *Audio) close() {
	if a.speaker {
		speaker.Clear()
		a.speaker = false
	}
	a.mixer.Clear()
}

var openSpeaker = speaker.Init

// AudioModule opens the default output device with the [audio] config
// section. When audio is disabled, or the device cannot be opened, the mixer
// still exists but nothing plays it.
type AudioModule struct{}

func (AudioModule) Install(app *App) error {
	cfg := app.config.Audio
	audio := NewAudio(cfg.SampleRate, cfg.Volume)
	if cfg.Enabled {
		sr := audio.SampleRate()
		if err := openSpeaker(sr, sr.N(time.Duration(cfg.BufferMs)*time.Millisecond)); err != nil {
			app.Logger().Warnf("audio disabled, cannot open output device: %v", err)
		} else {
			audio.speaker = true
			speaker.Play(audio.Output())
			app.Logger().Debugf("audio: %d Hz, %d ms buffer", cfg.SampleRate, cfg.BufferMs)
		}
	}
	app.audio = NewGuard(audio)
	return nil
}
