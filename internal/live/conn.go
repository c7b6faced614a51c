package live

import (
	"context"
	"fmt"

	"github.com/gorilla/websocket"
	"google.golang.org/genai"
)

// DefaultVoice is the prebuilt voice used when none is configured.
const DefaultVoice = "Zephyr"

// DefaultSystemInstruction is the live session persona.
const DefaultSystemInstruction = "You are Nexus Live. Be helpful, quick, and conversational."

// Message is one server message reduced to what the session uses.
type Message struct {
	// Audio holds raw 24 kHz 16-bit PCM chunks in arrival order.
	Audio        [][]byte
	Transcript   string
	TurnComplete bool
	Interrupted  bool
}

// Conn is an open bidirectional audio session.
type Conn interface {
	SendAudio(pcm []byte) error
	EndAudio() error
	Receive() (*Message, error)
	Close() error
}

// Dialer opens sessions.
type Dialer interface {
	Dial(ctx context.Context, cfg Config) (Conn, error)
}

// GenAIDialer opens sessions with the Gemini Live API.
type GenAIDialer struct {
	Client *genai.Client
}

// ConnectConfig builds the SDK connect options for cfg.
func ConnectConfig(cfg Config) *genai.LiveConnectConfig {
	voice := cfg.Voice
	if voice == "" {
		voice = DefaultVoice
	}
	instruction := cfg.SystemInstruction
	if instruction == "" {
		instruction = DefaultSystemInstruction
	}

	return &genai.LiveConnectConfig{
		ResponseModalities: []genai.Modality{genai.ModalityAudio},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: voice},
			},
			LanguageCode: cfg.Language,
		},
		OutputAudioTranscription: &genai.AudioTranscriptionConfig{},
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: instruction}},
		},
	}
}

// Dial connects to the live model.
func (d GenAIDialer) Dial(ctx context.Context, cfg Config) (Conn, error) {
	if d.Client == nil {
		return nil, fmt.Errorf("live client is not configured")
	}
	session, err := d.Client.Live.Connect(ctx, cfg.Model, ConnectConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to connect live session: %w", err)
	}
	return &genaiConn{session: session}, nil
}

type genaiConn struct {
	session *genai.Session
}

func (c *genaiConn) SendAudio(pcm []byte) error {
	return c.session.SendRealtimeInput(genai.LiveRealtimeInput{
		Audio: &genai.Blob{Data: pcm, MIMEType: InputMIMEType},
	})
}

func (c *genaiConn) EndAudio() error {
	return c.session.SendRealtimeInput(genai.LiveRealtimeInput{AudioStreamEnd: true})
}

func (c *genaiConn) Receive() (*Message, error) {
	msg, err := c.session.Receive()
	if err != nil {
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			return nil, fmt.Errorf("%w: %v", ErrClosed, err)
		}
		return nil, err
	}
	return convertMessage(msg), nil
}

func (c *genaiConn) Close() error {
	return c.session.Close()
}

// convertMessage extracts audio, transcript and turn signals.
func convertMessage(msg *genai.LiveServerMessage) *Message {
	out := &Message{}
	if msg == nil || msg.ServerContent == nil {
		return out
	}

	sc := msg.ServerContent
	if sc.ModelTurn != nil {
		for _, part := range sc.ModelTurn.Parts {
			if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
				out.Audio = append(out.Audio, part.InlineData.Data)
			}
		}
	}
	if sc.OutputTranscription != nil {
		out.Transcript = sc.OutputTranscription.Text
	}
	out.TurnComplete = sc.TurnComplete
	out.Interrupted = sc.Interrupted
	return out
}

var (
	_ Dialer = GenAIDialer{}
	_ Conn   = (*genaiConn)(nil)
)
