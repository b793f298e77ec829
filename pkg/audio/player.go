package audio

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// ErrUnavailable is returned when no audio device could be opened
var ErrUnavailable = errors.New("audio: output device unavailable")

// The oto context can only be created once per process
var (
	globalAudioCtx     *oto.Context
	globalAudioFormat  Format
	globalAudioCtxOnce sync.Once
	globalAudioCtxErr  error
)

// Player loops a sound until stopped
type Player struct {
	stopChan chan struct{}
	done     chan struct{}
	stopped  bool
	mu       sync.Mutex
}

func initAudioContext(format Format) error {
	globalAudioCtxOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   format.SampleRate,
			ChannelCount: format.Channels,
			Format:       oto.FormatSignedInt16LE,
		}

		ctx, readyChan, err := oto.NewContext(op)
		if err != nil {
			globalAudioCtxErr = fmt.Errorf("%w: %v", ErrUnavailable, err)
			return
		}

		// Wait for the hardware audio devices to be ready
		<-readyChan

		globalAudioCtx = ctx
		globalAudioFormat = format
		log.Printf("[AUDIO] Context initialized (%d Hz, %d ch)", format.SampleRate, format.Channels)
	})

	if globalAudioCtxErr != nil {
		return globalAudioCtxErr
	}
	if globalAudioFormat.SampleRate != format.SampleRate || globalAudioFormat.Channels != format.Channels {
		return fmt.Errorf("audio: context is %d Hz/%d ch, sound is %d Hz/%d ch",
			globalAudioFormat.SampleRate, globalAudioFormat.Channels, format.SampleRate, format.Channels)
	}
	return nil
}

// Play starts looping the given WAV data in the background
func Play(wavData []byte) (*Player, error) {
	format, pcm, err := ParseWAV(wavData)
	if err != nil {
		return nil, err
	}

	if err := initAudioContext(format); err != nil {
		return nil, err
	}

	p := &Player{
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
	go p.playLoop(pcm)

	return p, nil
}

func (p *Player) playLoop(pcm []byte) {
	defer close(p.done)

	for {
		player := globalAudioCtx.NewPlayer(bytes.NewReader(pcm))
		player.Play()

		for player.IsPlaying() {
			select {
			case <-p.stopChan:
				player.Pause()
				if err := player.Close(); err != nil {
					log.Printf("[AUDIO] Failed to close player: %v", err)
				}
				return
			case <-time.After(10 * time.Millisecond):
			}
		}

		if err := player.Close(); err != nil {
			log.Printf("[AUDIO] Failed to close player: %v", err)
		}

		select {
		case <-p.stopChan:
			return
		default:
		}
	}
}

// Stop ends playback and waits for the loop to exit. Safe to call on nil
// and more than once.
func (p *Player) Stop() {
	if p == nil {
		return
	}

	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.stopChan)
	p.mu.Unlock()

	<-p.done
	log.Println("[AUDIO] Playback stopped")
}
