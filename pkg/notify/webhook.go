package notify

import (
	"context"
	"fmt"

	"github.com/imroc/req/v3"

	"github.com/propline/bidboard/dao/model"
	"github.com/propline/bidboard/pkg/config"
)

// webhookChannel posts notification text to a chat-robot webhook, for
// teams that watch bid activity in a group channel.
type webhookChannel struct {
	client  *req.Client
	address string
}

type webhookMessage struct {
	Msgtype string `json:"msgtype"`
	Text    struct {
		Content string `json:"content"`
	} `json:"text"`
}

func newWebhookChannel() channel {
	return &webhookChannel{
		client:  req.C(),
		address: config.GetConfig().Webhook.Address,
	}
}

func (w *webhookChannel) Name() string { return "webhook" }

func (w *webhookChannel) SendTo(ctx context.Context, recipient *model.User, n *model.Notification) error {
	msg := webhookMessage{Msgtype: "text"}
	msg.Text.Content = fmt.Sprintf("[%s] %s: %s (to %s)", n.Type, n.Title, n.Body, recipient.Name)

	resp, err := w.client.R().
		SetContext(ctx).
		SetBodyJsonMarshal(msg).
		Post(w.address)
	if err != nil {
		return err
	}
	if resp.IsErrorState() {
		return fmt.Errorf("webhook returned %s", resp.Status)
	}
	return nil
}
