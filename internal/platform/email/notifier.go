package email

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/agrokadry/agrojob-core/internal/core/application"
	"github.com/agrokadry/agrojob-core/internal/core/resume"
)

// ResumeReader は通知先メールアドレスの解決に使う履歴書参照の抽象です。
type ResumeReader interface {
	FindByID(ctx context.Context, id int64) (*resume.Resume, error)
}

// StatusNotifier は応募のステータス変更を応募者へメールで通知します。
// 宛先は応募に添付された履歴書の連絡先から解決します。配送は非同期で、
// 失敗してもログに記録するだけで応募処理には影響しません。
type StatusNotifier struct {
	client  *Client
	resumes ResumeReader
	logger  zerolog.Logger
	timeout time.Duration
}

// NewStatusNotifier は StatusNotifier を生成します。
func NewStatusNotifier(client *Client, resumes ResumeReader, logger zerolog.Logger) *StatusNotifier {
	return &StatusNotifier{
		client:  client,
		resumes: resumes,
		logger:  logger,
		timeout: 15 * time.Second,
	}
}

var subjectByStatus = map[application.Status]string{
	application.StatusViewed:   "Your application has been viewed",
	application.StatusInvited:  "You have been invited to an interview",
	application.StatusAccepted: "Congratulations, your application was accepted",
	application.StatusRejected: "Update on your application",
}

// StatusChanged は application.Notifier を実装します。
func (n *StatusNotifier) StatusChanged(_ context.Context, app *application.Application) {
	go n.deliver(app)
}

func (n *StatusNotifier) deliver(app *application.Application) {
	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()

	if app.ResumeID == nil {
		n.logger.Debug().Int64("application_id", app.ID).Msg("status notification skipped: no resume attached")
		return
	}

	res, err := n.resumes.FindByID(ctx, *app.ResumeID)
	if err != nil {
		n.logger.Error().Err(err).Int64("application_id", app.ID).Msg("status notification failed: resume lookup")
		return
	}
	if res.Email == nil {
		n.logger.Debug().Int64("application_id", app.ID).Msg("status notification skipped: no contact email")
		return
	}

	subject, ok := subjectByStatus[app.Status]
	if !ok {
		subject = "Update on your application"
	}

	text := fmt.Sprintf("The status of your application #%d is now %q.", app.ID, app.Status)
	if app.EmployerComment != nil {
		text += "\n\nMessage from the employer:\n" + *app.EmployerComment
	}

	to := Address{Name: res.FullName, Email: *res.Email}
	if err := n.client.SendText(ctx, to, subject, text); err != nil {
		n.logger.Error().Err(err).Int64("application_id", app.ID).Msg("status notification failed: send")
		return
	}

	n.logger.Info().Int64("application_id", app.ID).Str("status", string(app.Status)).Msg("status notification sent")
}
