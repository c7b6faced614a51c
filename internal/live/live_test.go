package live

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestEncodeDecodePCM16(t *testing.T) {
	samples := []float32{0, 0.5, -0.5, 1, -1, 2, -2}
	data := EncodePCM16(samples)
	require.Len(t, data, len(samples)*2)

	decoded := DecodePCM16(data)
	require.Len(t, decoded, len(samples))
	assert.Equal(t, float32(0), decoded[0])
	assert.InDelta(t, 0.5, decoded[1], 1e-4)
	assert.InDelta(t, -0.5, decoded[2], 1e-4)
	// clamped to the int16 range
	assert.InDelta(t, 32767.0/32768.0, decoded[3], 1e-6)
	assert.Equal(t, float32(-1), decoded[4])
	assert.InDelta(t, 32767.0/32768.0, decoded[5], 1e-6)
	assert.Equal(t, float32(-1), decoded[6])
}

func TestDecodePCM16OddLength(t *testing.T) {
	assert.Len(t, DecodePCM16([]byte{1, 2, 3}), 1)
	assert.Empty(t, DecodePCM16(nil))
}

func TestResample(t *testing.T) {
	in := make([]float32, 4800)
	for i := range in {
		in[i] = float32(i) / float32(len(in))
	}

	assert.Len(t, Resample(in, 48000, 16000), 1600)
	assert.Len(t, Resample(in, 8000, 16000), 9600)
	assert.Equal(t, in, Resample(in, 16000, 16000))

	up := Resample([]float32{0, 1}, 1, 2)
	require.Len(t, up, 4)
	assert.InDelta(t, 0.0, up[0], 1e-6)
	assert.InDelta(t, 0.5, up[1], 1e-6)
	assert.InDelta(t, 1.0, up[2], 1e-6)
	assert.InDelta(t, 1.0, up[3], 1e-6)
}

func TestDuration(t *testing.T) {
	assert.Equal(t, time.Second, Duration(OutputSampleRate, OutputSampleRate))
	assert.Equal(t, 256*time.Millisecond, Duration(FrameSize, InputSampleRate))
	assert.Zero(t, Duration(10, 0))
}

func TestTransition(t *testing.T) {
	tests := []struct {
		from State
		ev   eventKind
		want State
	}{
		{StateConnecting, evOpened, StateListening},
		{StateConnecting, evFailure, StateError},
		{StateConnecting, evAudio, StateConnecting},
		{StateListening, evAudio, StateSpeaking},
		{StateSpeaking, evAudio, StateSpeaking},
		{StateSpeaking, evTurnComplete, StateListening},
		{StateSpeaking, evInterrupted, StateListening},
		{StateListening, evTurnComplete, StateListening},
		{StateListening, evClose, StateClosed},
		{StateSpeaking, evRemoteClosed, StateClosed},
		{StateSpeaking, evFailure, StateError},
		{StateError, evOpened, StateError},
		{StateClosed, evFailure, StateClosed},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, transition(tt.from, tt.ev), "%s + %d", tt.from, tt.ev)
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "listening", StateListening.String())
	assert.Equal(t, "speaking", StateSpeaking.String())
	assert.True(t, StateError.Terminal())
	assert.True(t, StateClosed.Terminal())
	assert.False(t, StateListening.Terminal())
}

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestSchedulerBackToBack(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := &manualClock{now: t0}
	s := NewScheduler(clock.Now)

	d1, d2, d3 := 100*time.Millisecond, 250*time.Millisecond, 50*time.Millisecond

	start, gap := s.Schedule(d1)
	assert.Equal(t, t0, start)
	assert.Zero(t, gap)

	start, _ = s.Schedule(d2)
	assert.Equal(t, t0.Add(d1), start)

	start, _ = s.Schedule(d3)
	assert.Equal(t, t0.Add(d1+d2), start)
	assert.Equal(t, t0.Add(d1+d2+d3), s.End())
}

func TestSchedulerIdleGap(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := &manualClock{now: t0}
	s := NewScheduler(clock.Now)

	s.Schedule(time.Second)
	clock.Advance(3 * time.Second)

	start, gap := s.Schedule(time.Second)
	assert.Equal(t, t0.Add(3*time.Second), start)
	assert.Equal(t, 2*time.Second, gap)

	s.Reset()
	start, gap = s.Schedule(time.Second)
	assert.Equal(t, t0.Add(3*time.Second), start)
	assert.Zero(t, gap)
}

func TestPlayerPadsGaps(t *testing.T) {
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := &manualClock{now: t0}

	var out bytes.Buffer
	p := NewPlayer(&out, NewScheduler(clock.Now), true)

	chunk := EncodePCM16(make([]float32, 2400)) // 100ms
	_, err := p.Play(chunk)
	require.NoError(t, err)
	clock.Advance(200 * time.Millisecond)
	_, err = p.Play(chunk)
	require.NoError(t, err)

	// two chunks plus 100ms of silence
	assert.Equal(t, len(chunk)*2+2400*2, out.Len())

	var plain bytes.Buffer
	p = NewPlayer(&plain, NewScheduler(clock.Now), false)
	p.Play(chunk)
	clock.Advance(time.Second)
	p.Play(chunk)
	assert.Equal(t, len(chunk)*2, plain.Len())
}

func TestConvertMessage(t *testing.T) {
	msg := &genai.LiveServerMessage{
		ServerContent: &genai.LiveServerContent{
			ModelTurn: &genai.Content{Parts: []*genai.Part{
				{InlineData: &genai.Blob{Data: []byte{1, 2}, MIMEType: "audio/pcm;rate=24000"}},
				{Text: "ignored"},
				{InlineData: &genai.Blob{Data: []byte{3, 4}}},
			}},
			OutputTranscription: &genai.Transcription{Text: "hello"},
			TurnComplete:        true,
		},
	}

	got := convertMessage(msg)
	assert.Equal(t, [][]byte{{1, 2}, {3, 4}}, got.Audio)
	assert.Equal(t, "hello", got.Transcript)
	assert.True(t, got.TurnComplete)
	assert.False(t, got.Interrupted)

	assert.Equal(t, &Message{}, convertMessage(&genai.LiveServerMessage{}))
	assert.Equal(t, &Message{}, convertMessage(nil))
}

func TestConnectConfig(t *testing.T) {
	cfg := ConnectConfig(Config{Model: "m", Language: "en-US"})

	assert.Equal(t, []genai.Modality{genai.ModalityAudio}, cfg.ResponseModalities)
	assert.Equal(t, DefaultVoice, cfg.SpeechConfig.VoiceConfig.PrebuiltVoiceConfig.VoiceName)
	assert.Equal(t, "en-US", cfg.SpeechConfig.LanguageCode)
	assert.NotNil(t, cfg.OutputAudioTranscription)
	assert.Equal(t, DefaultSystemInstruction, cfg.SystemInstruction.Parts[0].Text)

	cfg = ConnectConfig(Config{Voice: "Puck", SystemInstruction: "custom"})
	assert.Equal(t, "Puck", cfg.SpeechConfig.VoiceConfig.PrebuiltVoiceConfig.VoiceName)
	assert.Equal(t, "custom", cfg.SystemInstruction.Parts[0].Text)
}

// fakeConn replays scripted messages once start is closed.
type fakeConn struct {
	mu      sync.Mutex
	sent    [][]byte
	ended   bool
	closed  bool
	script  []*Message
	endErr  error
	start   chan struct{}
	startMu sync.Once
	done    chan struct{}
}

func newFakeConn(script ...*Message) *fakeConn {
	return &fakeConn{script: script, start: make(chan struct{}), done: make(chan struct{})}
}

func (c *fakeConn) begin() { c.startMu.Do(func() { close(c.start) }) }

func (c *fakeConn) SendAudio(pcm []byte) error {
	c.mu.Lock()
	c.sent = append(c.sent, pcm)
	c.mu.Unlock()
	return nil
}

func (c *fakeConn) EndAudio() error {
	c.mu.Lock()
	c.ended = true
	c.mu.Unlock()
	c.begin()
	return nil
}

func (c *fakeConn) Receive() (*Message, error) {
	select {
	case <-c.start:
	case <-c.done:
		return nil, errors.New("use of closed connection")
	}

	c.mu.Lock()
	if len(c.script) > 0 {
		msg := c.script[0]
		c.script = c.script[1:]
		c.mu.Unlock()
		return msg, nil
	}
	endErr := c.endErr
	c.mu.Unlock()

	if endErr != nil {
		return nil, endErr
	}
	<-c.done
	return nil, errors.New("use of closed connection")
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.done)
	}
	return nil
}

type fakeDialer struct {
	conn  *fakeConn
	err   error
	calls int
	cfg   Config
}

func (d *fakeDialer) Dial(ctx context.Context, cfg Config) (Conn, error) {
	d.calls++
	d.cfg = cfg
	if d.err != nil {
		return nil, d.err
	}
	return d.conn, nil
}

type trackedReader struct {
	io.Reader
	closed bool
}

func (r *trackedReader) Close() error {
	r.closed = true
	return nil
}

func recordStates(s *Session) *[]State {
	var states []State
	s.OnState = func(st State) { states = append(states, st) }
	return &states
}

func TestSessionInputUnavailable(t *testing.T) {
	dialer := &fakeDialer{conn: newFakeConn()}
	open := func() (io.ReadCloser, error) { return nil, errors.New("permission denied") }

	s := NewSession(dialer, Config{}, open, io.Discard, nil)
	states := recordStates(s)

	err := s.Run(context.Background())
	assert.ErrorIs(t, err, ErrInputUnavailable)
	assert.Equal(t, StateError, s.State())
	assert.Equal(t, []State{StateConnecting, StateError}, *states)
	assert.Zero(t, dialer.calls)
}

func TestSessionDialFailure(t *testing.T) {
	dialer := &fakeDialer{err: errors.New("handshake failed")}
	in := &trackedReader{Reader: bytes.NewReader(nil)}

	s := NewSession(dialer, Config{}, func() (io.ReadCloser, error) { return in, nil }, io.Discard, nil)
	err := s.Run(context.Background())

	assert.Error(t, err)
	assert.Equal(t, StateError, s.State())
	assert.True(t, in.closed, "input released on dial failure")
}

func TestSessionConversation(t *testing.T) {
	chunk1 := EncodePCM16(make([]float32, 240))
	chunk2 := EncodePCM16([]float32{0.25, -0.25})
	conn := newFakeConn(
		&Message{Audio: [][]byte{chunk1}, Transcript: "Hello"},
		&Message{Audio: [][]byte{chunk2}, Transcript: " there."},
		&Message{TurnComplete: true},
	)
	dialer := &fakeDialer{conn: conn}

	// two full frames and a partial one
	input := EncodePCM16(make([]float32, FrameSize*2+100))
	in := &trackedReader{Reader: bytes.NewReader(input)}

	var out bytes.Buffer
	cfg := Config{Model: "live-model", Voice: "Zephyr"}
	s := NewSession(dialer, cfg, func() (io.ReadCloser, error) { return in, nil }, &out, nil)
	states := recordStates(s)
	var fragments []string
	s.OnTranscript = func(text string) { fragments = append(fragments, text) }

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Run(ctx))

	assert.Equal(t, []State{StateConnecting, StateListening, StateSpeaking, StateListening, StateClosed}, *states)
	assert.Equal(t, "Hello there.", s.Transcript())
	assert.Equal(t, []string{"Hello", " there."}, fragments)
	assert.Equal(t, append(append([]byte{}, chunk1...), chunk2...), out.Bytes())

	require.Len(t, conn.sent, 3)
	assert.Len(t, conn.sent[0], FrameSize*2)
	assert.Len(t, conn.sent[1], FrameSize*2)
	assert.Len(t, conn.sent[2], 200)
	assert.True(t, conn.ended)
	assert.True(t, conn.closed)
	assert.True(t, in.closed)
	assert.Equal(t, "live-model", dialer.cfg.Model)
}

func TestSessionResamplesInput(t *testing.T) {
	conn := newFakeConn(&Message{TurnComplete: true})
	input := EncodePCM16(make([]float32, FrameSize))
	in := &trackedReader{Reader: bytes.NewReader(input)}

	s := NewSession(&fakeDialer{conn: conn}, Config{InputRate: 48000}, func() (io.ReadCloser, error) { return in, nil }, io.Discard, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Run(ctx))

	require.Len(t, conn.sent, 1)
	// 4096 samples at 48 kHz become 1365 samples at 16 kHz
	assert.Len(t, conn.sent[0], 1365*2)
}

func TestSessionRemoteClose(t *testing.T) {
	conn := newFakeConn(&Message{Audio: [][]byte{{0, 0}}})
	conn.endErr = ErrClosed
	in := &trackedReader{Reader: bytes.NewReader(nil)}

	s := NewSession(&fakeDialer{conn: conn}, Config{}, func() (io.ReadCloser, error) { return in, nil }, io.Discard, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, s.Run(ctx))
	assert.Equal(t, StateClosed, s.State())
	assert.True(t, conn.closed)
}

func TestSessionStreamError(t *testing.T) {
	conn := newFakeConn()
	conn.endErr = errors.New("connection reset")
	in := &trackedReader{Reader: bytes.NewReader(nil)}

	s := NewSession(&fakeDialer{conn: conn}, Config{}, func() (io.ReadCloser, error) { return in, nil }, io.Discard, nil)
	states := recordStates(s)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := s.Run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Equal(t, StateError, s.State())
	assert.Equal(t, StateError, (*states)[len(*states)-1])
	assert.True(t, conn.closed)
	assert.True(t, in.closed)
}

// blockingReader never returns data until closed.
type blockingReader struct {
	done chan struct{}
	once sync.Once
}

func (r *blockingReader) Read(p []byte) (int, error) {
	<-r.done
	return 0, io.ErrClosedPipe
}

func (r *blockingReader) Close() error {
	r.once.Do(func() { close(r.done) })
	return nil
}

func TestSessionUserClose(t *testing.T) {
	conn := newFakeConn(&Message{Audio: [][]byte{{1, 0}}}, &Message{TurnComplete: true})
	conn.begin()
	in := &blockingReader{done: make(chan struct{})}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewSession(&fakeDialer{conn: conn}, Config{}, func() (io.ReadCloser, error) { return in, nil }, io.Discard, nil)
	var states []State
	s.OnState = func(st State) {
		states = append(states, st)
		// close after the first full turn
		if st == StateListening && len(states) > 2 {
			cancel()
		}
	}

	require.NoError(t, s.Run(ctx))
	assert.Equal(t, []State{StateConnecting, StateListening, StateSpeaking, StateListening, StateClosed}, states)
	assert.True(t, conn.closed)
}

func TestSessionUserCloseIdleInput(t *testing.T) {
	conn := newFakeConn()
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Close on the input does not interrupt the pending read.
	s := NewSession(&fakeDialer{conn: conn}, Config{}, func() (io.ReadCloser, error) { return io.NopCloser(pr), nil }, io.Discard, nil)
	s.OnState = func(st State) {
		if st == StateListening {
			time.AfterFunc(50*time.Millisecond, cancel)
		}
	}

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after the session was closed")
	}
	assert.Equal(t, StateClosed, s.State())
	assert.True(t, conn.closed)
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) { return 0, errors.New("broken pipe") }

func TestSessionOutputFailure(t *testing.T) {
	conn := newFakeConn(&Message{Audio: [][]byte{{1, 0}}})
	conn.begin()
	in := &blockingReader{done: make(chan struct{})}

	s := NewSession(&fakeDialer{conn: conn}, Config{}, func() (io.ReadCloser, error) { return in, nil }, failingWriter{}, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := s.Run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken pipe")
	assert.Equal(t, StateError, s.State())
}
