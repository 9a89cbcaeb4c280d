package views

import (
	"context"
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/classnotes/internal/stores"
	"github.com/matheus3301/classnotes/internal/tui/ui"
	"github.com/rivo/tview"
)

// ChatThread is the live chat of one group. It owns a ChatFeed: Start
// follows the group and Stop releases the subscription.
type ChatThread struct {
	*tview.Flex
	theme    *ui.Theme
	feed     *stores.ChatFeed
	messages *tview.TextView
	composer *tview.InputField
	queue    func(func())
	onError  func(error)

	mu     sync.Mutex
	group  stores.Group
	uid    string
	cancel context.CancelFunc
	gen    uint64 // bumped by every Start
}

// NewChatThread builds the view. queue runs a function on the UI
// goroutine and redraws, onError reports feed and send failures.
func NewChatThread(theme *ui.Theme, feed *stores.ChatFeed, queue func(func()), onError func(error)) *ChatThread {
	messages := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWordWrap(true)
	messages.SetBorder(true)
	messages.SetBorderColor(theme.BorderColor)
	messages.SetBackgroundColor(theme.BgColor)
	messages.SetTextColor(theme.FgColor)
	messages.SetTitleColor(theme.TitleColor)

	composer := tview.NewInputField().
		SetLabel(" > ").
		SetFieldWidth(0)
	composer.SetBorder(true)
	composer.SetBorderColor(theme.BorderColor)
	composer.SetBackgroundColor(theme.BgColor)
	composer.SetFieldBackgroundColor(theme.BgColor)
	composer.SetFieldTextColor(theme.FgColor)
	composer.SetLabelColor(theme.MenuKeyColor)
	composer.SetTitle(" Message (i to focus, Esc to leave) ")
	composer.SetTitleColor(theme.TitleColor)

	ct := &ChatThread{
		Flex: tview.NewFlex().
			SetDirection(tview.FlexRow).
			AddItem(messages, 0, 1, true).
			AddItem(composer, 3, 0, false),
		theme:    theme,
		feed:     feed,
		messages: messages,
		composer: composer,
		queue:    queue,
		onError:  onError,
	}
	composer.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		text := composer.GetText()
		if text == "" {
			return
		}
		composer.SetText("")
		go func() {
			if err := feed.Send(context.Background(), text); err != nil {
				ct.onError(err)
			}
		}()
	})
	return ct
}

// SetGroup selects the group followed on the next Start.
func (ct *ChatThread) SetGroup(g stores.Group, uid string) {
	ct.mu.Lock()
	ct.group, ct.uid = g, uid
	ct.mu.Unlock()
	ct.messages.SetTitle(" " + clean(g.Name) + " chat ")
	ct.messages.Clear()
}

func (ct *ChatThread) Name() string {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	return ct.group.Name + " chat"
}

func (ct *ChatThread) Hints() []ui.MenuHint { return nil }

// Start opens the feed and redraws on every snapshot until Stop.
func (ct *ChatThread) Start() {
	ct.mu.Lock()
	groupID := ct.group.ID
	ctx, cancel := context.WithCancel(context.Background())
	ct.cancel = cancel
	ct.gen++
	gen := ct.gen
	ct.mu.Unlock()

	go ct.follow(ctx, gen, groupID)
}

// follow renders the subscription it opened until ctx ends. The
// subscription lives until Stop or Release, not until ctx ends, because a
// later Start of the same group may share it.
func (ct *ChatThread) follow(ctx context.Context, gen uint64, groupID string) {
	sub, err := ct.feed.Open(context.Background(), groupID)
	if err != nil {
		if ctx.Err() == nil {
			ct.onError(err)
		}
		return
	}

	// Stopped while the subscription was being opened: release it unless a
	// newer Start already owns the feed.
	ct.mu.Lock()
	stale := ctx.Err() != nil
	if stale && ct.gen == gen {
		ct.feed.Release(sub)
	}
	ct.mu.Unlock()
	if stale {
		return
	}

	updates := sub.Snapshots()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-updates:
			if !ok || ctx.Err() != nil {
				return
			}
			msgs := ct.feed.Messages()
			ct.queue(func() { ct.render(msgs) })
		}
	}
}

// Stop releases the chat subscription.
func (ct *ChatThread) Stop() {
	ct.mu.Lock()
	if ct.cancel != nil {
		ct.cancel()
		ct.cancel = nil
	}
	ct.mu.Unlock()
	ct.feed.Close()
}

func (ct *ChatThread) render(msgs []stores.Message) {
	ct.mu.Lock()
	uid := ct.uid
	ct.mu.Unlock()

	ct.messages.Clear()
	own := colorHex(ct.theme.OwnMessageColor)
	for _, m := range msgs {
		sender := m.SenderName
		if sender == "" {
			sender = "unknown"
		}
		color := "::b"
		if m.SenderID == uid {
			sender = "You"
			color = own + "::b"
		}
		_, _ = fmt.Fprintf(ct.messages, "[%s]%s[-:-:-] [::d]%s[-:-:-]\n%s\n\n",
			color, clean(sender), formatMillis(m.CreatedAt), clean(m.Content))
	}
	ct.messages.ScrollToEnd()
}

// Composer returns the input field for focus management.
func (ct *ChatThread) Composer() *tview.InputField {
	return ct.composer
}

// Messages returns the message pane for focus management.
func (ct *ChatThread) Messages() *tview.TextView {
	return ct.messages
}
