// Package notify turns domain events into queued email jobs.
package notify

import (
	"context"

	"github.com/oksasatya/go-social-api/internal/domain/entity"
	"github.com/oksasatya/go-social-api/pkg/mailer"
	mailtpl "github.com/oksasatya/go-social-api/pkg/mailer/templates"
)

// Publisher is satisfied by helpers.RabbitPublisher.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

type EmailNotifier struct {
	Pub     Publisher
	AppName string
}

func NewEmailNotifier(pub Publisher, appName string) *EmailNotifier {
	return &EmailNotifier{Pub: pub, AppName: appName}
}

func (n *EmailNotifier) UserRegistered(ctx context.Context, u *entity.User) error {
	return n.Pub.PublishJSON(ctx, mailer.EmailJob{
		To:       u.Email,
		Template: mailtpl.Welcome,
		Data: map[string]any{
			"AppName":  n.AppName,
			"Name":     u.Name,
			"Username": u.Username,
		},
	})
}

func (n *EmailNotifier) UserFollowed(ctx context.Context, actor, target *entity.User) error {
	return n.Pub.PublishJSON(ctx, mailer.EmailJob{
		To:       target.Email,
		Template: mailtpl.NewFollower,
		Data: map[string]any{
			"AppName":          n.AppName,
			"Name":             target.Name,
			"FollowerName":     actor.Name,
			"FollowerUsername": actor.Username,
		},
	})
}
