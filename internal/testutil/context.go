package testutil

import (
	"sync"

	telebot "gopkg.in/telebot.v3"
)

// Sent records one outbound call made through a FakeContext.
type Sent struct {
	What any
	Opts []any
}

// Text returns the payload when it was a plain string.
func (s Sent) Text() string {
	text, _ := s.What.(string)
	return text
}

// Markup returns the first reply markup among the options, if any.
func (s Sent) Markup() *telebot.ReplyMarkup {
	for _, opt := range s.Opts {
		if markup, ok := opt.(*telebot.ReplyMarkup); ok {
			return markup
		}
	}
	return nil
}

// FakeContext is a telebot.Context for handler tests. Methods that are not
// overridden panic through the nil embedded interface.
type FakeContext struct {
	telebot.Context

	mu        sync.Mutex
	chat      *telebot.Chat
	text      string
	callback  *telebot.Callback
	store     map[string]any
	sent      []Sent
	edited    []Sent
	responses []*telebot.CallbackResponse

	SendErr error
}

// NewFakeContext builds a text update from chatID.
func NewFakeContext(chatID int64, text string) *FakeContext {
	return &FakeContext{
		chat:  &telebot.Chat{ID: chatID},
		text:  text,
		store: make(map[string]any),
	}
}

// NewFakeCallback builds an inline button press from chatID carrying data.
func NewFakeCallback(chatID int64, data string) *FakeContext {
	c := NewFakeContext(chatID, "")
	c.callback = &telebot.Callback{ID: "cb", Data: data}
	return c
}

func (c *FakeContext) Chat() *telebot.Chat { return c.chat }

func (c *FakeContext) Sender() *telebot.User {
	if c.chat == nil {
		return nil
	}
	return &telebot.User{ID: c.chat.ID}
}

func (c *FakeContext) Text() string { return c.text }

func (c *FakeContext) Callback() *telebot.Callback { return c.callback }

func (c *FakeContext) Send(what any, opts ...any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.SendErr != nil {
		return c.SendErr
	}
	c.sent = append(c.sent, Sent{What: what, Opts: opts})
	return nil
}

func (c *FakeContext) Edit(what any, opts ...any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.edited = append(c.edited, Sent{What: what, Opts: opts})
	return nil
}

func (c *FakeContext) Respond(resp ...*telebot.CallbackResponse) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(resp) == 0 {
		c.responses = append(c.responses, &telebot.CallbackResponse{})
		return nil
	}
	c.responses = append(c.responses, resp...)
	return nil
}

func (c *FakeContext) Get(key string) any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store[key]
}

func (c *FakeContext) Set(key string, val any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[key] = val
}

// Sent returns the messages sent so far.
func (c *FakeContext) Sent() []Sent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Sent(nil), c.sent...)
}

// Edited returns the message edits made so far.
func (c *FakeContext) Edited() []Sent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Sent(nil), c.edited...)
}

// Responses returns the callback answers made so far.
func (c *FakeContext) Responses() []*telebot.CallbackResponse {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*telebot.CallbackResponse(nil), c.responses...)
}

// LastText returns the text of the most recent Send, or "" when nothing was sent.
func (c *FakeContext) LastText() string {
	sent := c.Sent()
	if len(sent) == 0 {
		return ""
	}
	return sent[len(sent)-1].Text()
}
