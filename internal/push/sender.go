// Package push delivers Web Push notifications to stored browser
// subscriptions using VAPID keys.
package push

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"

	webpush "github.com/SherClockHolmes/webpush-go"

	"github.com/pewos/backend/internal/storage/models"
)

// ErrSubscriptionGone marks a subscription the push service no longer
// accepts. Callers should delete the stored subscription on this error.
var ErrSubscriptionGone = errors.New("push subscription gone")

// Payload is the JSON body shown by the receiving browser.
type Payload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Tag   string `json:"tag,omitempty"`
	URL   string `json:"url,omitempty"`
}

// Sender sends Web Push messages signed with a VAPID key pair.
type Sender struct {
	publicKey  string
	privateKey string
	subscriber string
	ttl        int
}

// NewSender creates a sender with the given VAPID keys. subscriber is the
// contact address the push service may use, typically a mailto: URL.
func NewSender(publicKey, privateKey, subscriber string) (*Sender, error) {
	if publicKey == "" || privateKey == "" {
		return nil, errors.New("VAPID keys are required")
	}
	if subscriber == "" {
		subscriber = "mailto:admin@pewos.app"
	}
	return &Sender{
		publicKey:  publicKey,
		privateKey: privateKey,
		subscriber: subscriber,
		ttl:        3600,
	}, nil
}

// NewSenderFromEnv reads VAPID_PUBLIC_KEY, VAPID_PRIVATE_KEY and
// VAPID_SUBJECT from the environment.
func NewSenderFromEnv() (*Sender, error) {
	return NewSender(
		os.Getenv("VAPID_PUBLIC_KEY"),
		os.Getenv("VAPID_PRIVATE_KEY"),
		os.Getenv("VAPID_SUBJECT"),
	)
}

// PublicKey returns the VAPID public key clients need to subscribe.
func (s *Sender) PublicKey() string {
	return s.publicKey
}

// Send pushes the payload to one stored subscription. A 404 or 410 from
// the push service is reported as ErrSubscriptionGone.
func (s *Sender) Send(sub *models.PushSubscription, p Payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode push payload: %w", err)
	}

	target := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}
	resp, err := webpush.SendNotification(body, target, &webpush.Options{
		Subscriber:      s.subscriber,
		VAPIDPublicKey:  s.publicKey,
		VAPIDPrivateKey: s.privateKey,
		TTL:             s.ttl,
	})
	if err != nil {
		return fmt.Errorf("send push: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return ErrSubscriptionGone
	case resp.StatusCode >= 400:
		return fmt.Errorf("push service returned %d", resp.StatusCode)
	}
	return nil
}
