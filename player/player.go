// Package player 是 pontos 播放器的状态机，驱动一个共享的音频元素
package player

import (
	"sync"
	"time"

	"simpleink/logger"
	"simpleink/model"
)

// DefaultVolume 是初始音量
const DefaultVolume = 0.7

// Element is the single audio element the player drives.
type Element interface {
	SetSource(url string)
	Source() string
	Load()
	Play() error
	Pause()
	SetCurrentTime(sec float64)
	CurrentTime() float64
	Duration() float64
	SetVolume(v float64)
}

// Status is the playback status.
type Status int

const (
	Idle Status = iota
	Loading
	Playing
	Paused
	Ended
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Ended:
		return "ended"
	default:
		return "unknown"
	}
}

// State 是播放器状态的快照
type State struct {
	Ponto       *model.Ponto `json:"ponto,omitempty"`
	Status      Status       `json:"status"`
	Source      string       `json:"source"`
	CurrentTime float64      `json:"currentTime"`
	Duration    float64      `json:"duration"`
	Volume      float64      `json:"volume"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// IsPlaying reports whether audio is (or is about to be) audible.
func (s State) IsPlaying() bool {
	return s.Status == Playing
}

// Player drives one Element through a list of pontos. Safe for concurrent use.
type Player struct {
	mutex     sync.Mutex
	el        Element
	baseURL   string
	pontos    []model.Ponto
	state     State
	retried   bool // alternative URL already tried for the current ponto
	listeners []chan State
	now       func() time.Time
}

// New creates a player for el. baseURL is the API server root used to resolve
// relative audio paths.
func New(el Element, baseURL string) *Player {
	p := &Player{
		el:      el,
		baseURL: baseURL,
		now:     time.Now,
	}
	p.state = State{Status: Idle, Volume: DefaultVolume, UpdatedAt: p.now()}
	el.SetVolume(DefaultVolume)
	return p
}

// State returns a copy of the current state.
func (p *Player) State() State {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.snapshot()
}

// SetPontos replaces the ordered list used by PlayNext and PlayPrevious.
func (p *Player) SetPontos(pontos []model.Ponto) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.pontos = append([]model.Ponto(nil), pontos...)
}

// PlayPonto loads ponto and waits in Loading until HandleCanPlay reports the
// element is ready.
func (p *Player) PlayPonto(ponto model.Ponto) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.load(ponto)
}

func (p *Player) load(ponto model.Ponto) {
	current := ponto
	p.state.Ponto = &current
	p.state.CurrentTime = 0
	p.state.Duration = 0
	p.retried = false

	var audioPath string
	if ponto.AudioURL != nil {
		audioPath = *ponto.AudioURL
	}
	src := ResolveAudioURL(p.baseURL, audioPath)
	p.state.Source = src
	if src == "" {
		logger.Warn("Ponto has no audio", logger.String("ponto", ponto.ID))
		p.state.Status = Paused
		p.changed()
		return
	}

	logger.Debug("Loading audio", logger.String("ponto", ponto.ID), logger.String("src", src))
	p.el.SetSource(src)
	p.el.SetVolume(p.state.Volume)
	p.el.Load()
	p.state.Status = Loading
	p.changed()
}

// HandleCanPlay is the element's readiness event. A pending load starts playing.
func (p *Player) HandleCanPlay() {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.state.Status != Loading {
		return
	}
	p.play()
}

// play must be called with the lock held.
func (p *Player) play() {
	if err := p.el.Play(); err != nil {
		logger.Error("Audio playback error", logger.String("src", p.el.Source()), logger.ErrorField(err))
		p.state.Status = Paused
	} else {
		p.state.Status = Playing
	}
	p.changed()
}

// TogglePlay pauses a playing ponto or resumes a paused one.
func (p *Player) TogglePlay() {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.state.Ponto == nil {
		return
	}

	switch p.state.Status {
	case Playing:
		p.el.Pause()
		p.state.Status = Paused
		p.changed()
	case Loading:
		// 还没开始播放，取消即将到来的播放
		p.state.Status = Paused
		p.changed()
	default:
		p.play()
	}
}

// PlayNext moves to the following ponto. No-op on the last one.
func (p *Player) PlayNext() {
	p.step(1)
}

// PlayPrevious moves to the preceding ponto. No-op on the first one.
func (p *Player) PlayPrevious() {
	p.step(-1)
}

func (p *Player) step(delta int) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.state.Ponto == nil || len(p.pontos) == 0 {
		return
	}
	idx := -1
	for i := range p.pontos {
		if p.pontos[i].ID == p.state.Ponto.ID {
			idx = i
			break
		}
	}
	next := idx + delta
	if idx < 0 || next < 0 || next >= len(p.pontos) {
		return
	}
	p.load(p.pontos[next])
}

// Seek moves the playback position.
func (p *Player) Seek(sec float64) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if sec < 0 {
		sec = 0
	}
	if p.state.Duration > 0 && sec > p.state.Duration {
		sec = p.state.Duration
	}
	p.el.SetCurrentTime(sec)
	p.state.CurrentTime = sec
	p.changed()
}

// SetVolume sets the volume, clamped to [0, 1].
func (p *Player) SetVolume(v float64) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	switch {
	case v < 0:
		v = 0
	case v > 1:
		v = 1
	}
	p.el.SetVolume(v)
	p.state.Volume = v
	p.changed()
}

func (p *Player) HandleTimeUpdate() {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.state.CurrentTime = p.el.CurrentTime()
	p.changed()
}

func (p *Player) HandleLoadedMetadata() {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.state.Duration = p.el.Duration()
	p.changed()
}

// HandleEnded rewinds the element and stops.
func (p *Player) HandleEnded() {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.el.SetCurrentTime(0)
	p.state.CurrentTime = 0
	p.state.Status = Ended
	p.changed()
}

// HandleError tries the imagens bucket once while a ponto is loading or playing,
// then gives up. Errors in any other state are only logged.
func (p *Player) HandleError() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	current := p.el.Source()
	if p.state.Ponto == nil || (p.state.Status != Loading && p.state.Status != Playing) {
		logger.Warn("Audio element error ignored",
			logger.String("src", current),
			logger.String("status", p.state.Status.String()),
		)
		return
	}

	if alt := AlternativeAudioURL(p.baseURL, current); !p.retried && alt != current {
		p.retried = true
		logger.Warn("Audio element error, trying alternative URL",
			logger.String("src", current),
			logger.String("alternative", alt),
		)
		p.el.SetSource(alt)
		p.el.Load()
		p.state.Source = alt
		p.state.Status = Loading
		p.changed()
		return
	}

	logger.Error("Audio element error", logger.String("src", current))
	p.state.Status = Paused
	p.changed()
}

// Subscribe returns a channel that receives every state change.
func (p *Player) Subscribe() <-chan State {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	ch := make(chan State, 10)
	p.listeners = append(p.listeners, ch)
	return ch
}

// Unsubscribe closes and removes ch.
func (p *Player) Unsubscribe(ch <-chan State) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	for i, listener := range p.listeners {
		if listener == ch {
			close(listener)
			p.listeners = append(p.listeners[:i], p.listeners[i+1:]...)
			return
		}
	}
}

func (p *Player) snapshot() State {
	s := p.state
	if s.Ponto != nil {
		ponto := *s.Ponto
		s.Ponto = &ponto
	}
	return s
}

// changed stamps the state and notifies listeners. Must be called with the lock held.
// A listener whose buffer is full is dropped.
func (p *Player) changed() {
	p.state.UpdatedAt = p.now()
	kept := p.listeners[:0]
	for _, listener := range p.listeners {
		select {
		case listener <- p.snapshot():
			kept = append(kept, listener)
		default:
			close(listener)
		}
	}
	p.listeners = kept
}
